package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/events"
	"github.com/the-hive-labs/hive-timebank/pkg/httpsrv"
)

type Server struct {
	sp  *Service
	pub events.Publisher
}

func NewServer(s *Service, pub events.Publisher) *Server {
	return &Server{
		sp:  s,
		pub: pub,
	}
}

func (s *Server) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/signup", s.signup).Methods(http.MethodPost)
	public.HandleFunc("/login", s.login).Methods(http.MethodPost)

	protected.HandleFunc("/session/", s.session).Methods(http.MethodGet)
	protected.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	protected.HandleFunc("/profile/", s.updateProfile).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{id}/", s.getUser).Methods(http.MethodGet)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httpsrv.DecodeJSON(r, &req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.sp.Signup(r.Context(), req)
	switch {
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword):
		httpsrv.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("signup")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusCreated, OwnProfile(u))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpsrv.DecodeJSON(r, &req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, u, err := s.sp.Login(r.Context(), req)
	if errors.Is(err, ErrInvalidCredentials) {
		httpsrv.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("login")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, AuthResponse{
		Token: token,
		User:  OwnProfile(u),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	u, err := s.sp.GetByID(viewerID)
	if err != nil {
		log.Error().Err(err).Msgf("get user by id: %s", viewerID)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, OwnProfile(u))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := httpsrv.SessionID(r.Context())

	if err := s.sp.Logout(sessionID); err != nil {
		log.Error().Err(err).Msg("logout")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusNoContent, nil)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	var req UpdateProfileRequest
	if err := httpsrv.DecodeJSON(r, &req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.sp.UpdateProfile(viewerID, req)
	if err != nil {
		log.Error().Err(err).Msg("update profile")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.pub.UserUpdated(r.Context(), events.UserUpdatedPayload{
		UserID:     u.ID,
		OccurredAt: time.Now(),
	}); err != nil {
		log.Warn().Err(err).Msg("publish user updated")
	}

	httpsrv.WriteJSON(w, http.StatusOK, OwnProfile(u))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	u, err := s.sp.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpsrv.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msgf("get user by id: %s", id)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, PublicProfile(u))
}
