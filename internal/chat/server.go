package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/proposal"
	"github.com/the-hive-labs/hive-timebank/pkg/httpsrv"
)

const defaultPageSize = 50

type sendRequest struct {
	Body string `json:"body"`
}

type unreadResponse struct {
	Unread int64 `json:"unread"`
}

type Server struct {
	sp *Service
}

func NewServer(s *Service) *Server {
	return &Server{
		sp: s,
	}
}

func (s *Server) RegisterRoutes(_, protected *mux.Router) {
	protected.HandleFunc("/proposals/{id}/messages/", s.thread).Methods(http.MethodGet)
	protected.HandleFunc("/proposals/{id}/messages/", s.send).Methods(http.MethodPost)
	protected.HandleFunc("/messages/unread/", s.unread).Methods(http.MethodGet)
}

func (s *Server) thread(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	proposalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid proposal ID")
		return
	}

	offset, limit := pagination(r)

	list, err := s.sp.Thread(viewerID, proposalID, offset, limit)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "proposal not found")
		return
	case errors.Is(err, proposal.ErrNotParticipant):
		httpsrv.WriteError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msgf("get thread: %s", proposalID)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	proposalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid proposal ID")
		return
	}

	var req sendRequest
	if err := httpsrv.DecodeJSON(r, &req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.sp.Send(r.Context(), viewerID, proposalID, req.Body)
	switch {
	case errors.Is(err, ErrEmptyMessage):
		httpsrv.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "proposal not found")
		return
	case errors.Is(err, proposal.ErrNotParticipant):
		httpsrv.WriteError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msgf("send message: %s", proposalID)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusCreated, m)
}

func (s *Server) unread(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	count, err := s.sp.UnreadCount(viewerID)
	if err != nil {
		log.Error().Err(err).Msg("count unread messages")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, unreadResponse{Unread: count})
}

func pagination(r *http.Request) (int, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}

	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return offset, limit
}
