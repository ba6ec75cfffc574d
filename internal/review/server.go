package review

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

const defaultPageSize = 20

type ratingResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Average *float64  `json:"average_rating"`
}

type Server struct {
	sp *Service
}

func NewServer(s *Service) *Server {
	return &Server{
		sp: s,
	}
}

func (s *Server) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/reviews/", s.list).Methods(http.MethodGet)
	public.HandleFunc("/users/{id}/rating/", s.rating).Methods(http.MethodGet)

	protected.HandleFunc("/reviews/", s.create).Methods(http.MethodPost)
	protected.HandleFunc("/reviews/check/{proposalID}/", s.check).Methods(http.MethodGet)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	filters := []Filter{pageFilter(r)}

	if reviewee := r.URL.Query().Get("reviewee"); reviewee != "" {
		filters = append(filters, RevieweeFilter{RevieweeID: reviewee})
	}
	if proposalID := r.URL.Query().Get("proposal"); proposalID != "" {
		filters = append(filters, ProposalFilter{ProposalID: proposalID})
	}

	list, err := s.sp.GetByFilters(filters)
	if err != nil {
		log.Error().Err(err).Msg("list reviews")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	var req CreateRequest
	if err := httpsrv.DecodeJSON(r, &req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rev, err := s.sp.Create(viewerID, req)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "proposal not found")
		return
	case errors.Is(err, proposal.ErrNotParticipant):
		httpsrv.WriteError(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, ErrInvalidRating):
		httpsrv.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, ErrNotEligible), errors.Is(err, ErrAlreadyReviewed):
		httpsrv.WriteError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("create review")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusCreated, rev)
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	proposalID, err := uuid.Parse(mux.Vars(r)["proposalID"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid proposal ID")
		return
	}

	check, err := s.sp.CheckProposal(viewerID, proposalID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "proposal not found")
		return
	case errors.Is(err, proposal.ErrNotParticipant):
		httpsrv.WriteError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msgf("review check: %s", proposalID)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, check)
}

func (s *Server) rating(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	avg, err := s.sp.AverageRating(userID)
	if err != nil {
		log.Error().Err(err).Msgf("user rating: %s", userID)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, ratingResponse{UserID: userID, Average: avg})
}

func pageFilter(r *http.Request) PageFilter {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}

	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return PageFilter{Offset: offset, Limit: limit}
}
