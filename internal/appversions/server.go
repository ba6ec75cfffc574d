package appversions

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/the-hive-labs/hive-timebank/internal/user"
	"github.com/the-hive-labs/hive-timebank/pkg/httpsrv"
)

type UserProvider interface {
	GetByID(id uuid.UUID) (*user.User, error)
}

type checkResponse struct {
	Outdated bool `json:"outdated"`
}

type Server struct {
	sp    *Service
	users UserProvider
}

func NewServer(s *Service, users UserProvider) *Server {
	return &Server{
		sp:    s,
		users: users,
	}
}

func (s *Server) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/app-versions/", s.list).Methods(http.MethodGet)
	public.HandleFunc("/app-versions/check/", s.check).Methods(http.MethodGet)

	protected.HandleFunc("/app-versions/", s.publish).Methods(http.MethodPost)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	pl := PlatformWeb
	if q := r.URL.Query().Get("platform"); q != "" {
		pl = Platform(q)
	}

	list, err := s.sp.GetListByPlatform(pl)
	if err != nil {
		log.Error().Err(err).Msg("list app versions")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	pl := PlatformWeb
	if q := r.URL.Query().Get("platform"); q != "" {
		pl = Platform(q)
	}

	outdated, err := s.sp.IsOutdated(pl, r.URL.Query().Get("version"))
	if err != nil {
		log.Error().Err(err).Msg("check app version")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, checkResponse{Outdated: outdated})
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	viewer, err := s.users.GetByID(viewerID)
	if err != nil {
		log.Error().Err(err).Msg("get user")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !viewer.IsAdmin {
		httpsrv.WriteError(w, http.StatusForbidden, "admin access required")
		return
	}

	var info Info
	if err := httpsrv.DecodeJSON(r, &info); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = s.sp.Publish(info)
	switch {
	case errors.Is(err, ErrInvalidPlatform), errors.Is(err, ErrInvalidVersion):
		httpsrv.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("publish app version")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusCreated, info)
}
