package proposal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
	"github.com/the-hive-labs/hive-timebank/pkg/httpsrv"
)

const defaultPageSize = 20

type action int

const (
	actionNone action = iota
	actionAccept
	actionDecline
	actionApprove
	actionCancelNegotiation
	actionCancelJob
)

var errAmbiguousUpdate = errors.New("request selects no action or more than one")

// dispatch maps the set fields of a partial update onto exactly one
// lifecycle action.
func dispatch(req UpdateRequest) (action, error) {
	selected := actionNone

	pick := func(a action) error {
		if selected != actionNone {
			return errAmbiguousUpdate
		}
		selected = a
		return nil
	}

	if req.Status != nil {
		var a action
		switch *req.Status {
		case lifecycle.StatusAccepted:
			a = actionAccept
		case lifecycle.StatusDeclined:
			a = actionDecline
		case lifecycle.StatusCancelled:
			a = actionCancelNegotiation
		default:
			return actionNone, errAmbiguousUpdate
		}
		if err := pick(a); err != nil {
			return actionNone, err
		}
	}

	if (req.ProviderApproved != nil && *req.ProviderApproved) ||
		(req.RequesterApproved != nil && *req.RequesterApproved) {
		if err := pick(actionApprove); err != nil {
			return actionNone, err
		}
	}

	if req.DeclineJob {
		if err := pick(actionCancelJob); err != nil {
			return actionNone, err
		}
	}

	if selected == actionNone {
		return actionNone, errAmbiguousUpdate
	}

	return selected, nil
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
	protected.HandleFunc("/proposals/", s.list).Methods(http.MethodGet)
	protected.HandleFunc("/proposals/", s.create).Methods(http.MethodPost)
	protected.HandleFunc("/proposals/{id}/", s.get).Methods(http.MethodGet)
	protected.HandleFunc("/proposals/{id}/", s.update).Methods(http.MethodPatch)
	protected.HandleFunc("/proposals/{id}/eligibility/", s.eligibility).Methods(http.MethodGet)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	// Listing is always scoped to the viewer's own proposals.
	filters := []Filter{
		ParticipantFilter{UserID: viewerID.String()},
		pageFilter(r),
	}

	if postID := r.URL.Query().Get("post"); postID != "" {
		filters = append(filters, PostFilter{PostID: postID})
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filters = append(filters, StatusFilter{Status: lifecycle.Status(status)})
	}

	list, err := s.sp.GetByFilters(filters)
	if err != nil {
		log.Error().Err(err).Msg("list proposals")
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

	p, err := s.sp.Create(r.Context(), viewerID, req)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "post not found")
		return
	case errors.Is(err, ErrSelfProposal),
		errors.Is(err, ErrDuplicateProposal),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, lifecycle.ErrHoursNotPositive),
		errors.Is(err, lifecycle.ErrHoursFractional),
		errors.Is(err, lifecycle.ErrMissingLocation),
		errors.Is(err, lifecycle.ErrInvalidSchedule),
		errors.Is(err, lifecycle.ErrInsufficientLead):
		httpsrv.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("create proposal")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid proposal ID")
		return
	}

	p, err := s.sp.GetByID(viewerID, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "proposal not found")
		return
	case errors.Is(err, ErrNotParticipant):
		httpsrv.WriteError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msgf("get proposal: %s", id)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid proposal ID")
		return
	}

	var req UpdateRequest
	if err := httpsrv.DecodeJSON(r, &req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	selected, err := dispatch(req)
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p *Proposal
	switch selected {
	case actionAccept:
		p, err = s.sp.Accept(r.Context(), viewerID, id, req.ResponseMessage)
	case actionDecline:
		p, err = s.sp.Decline(r.Context(), viewerID, id, req.ResponseMessage)
	case actionApprove:
		p, err = s.sp.Approve(r.Context(), viewerID, id)
	case actionCancelNegotiation:
		p, err = s.sp.CancelNegotiation(r.Context(), viewerID, id)
	case actionCancelJob:
		p, err = s.sp.CancelJob(r.Context(), viewerID, id, lifecycle.CancellationReason(req.CancellationReason))
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "proposal not found")
		return
	case errors.Is(err, ErrNotParticipant):
		httpsrv.WriteError(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, ErrActionUnavailable):
		httpsrv.WriteError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msgf("update proposal: %s", id)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) eligibility(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid proposal ID")
		return
	}

	decision, err := s.sp.Eligibility(viewerID, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "proposal not found")
		return
	case errors.Is(err, ErrNotParticipant):
		httpsrv.WriteError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msgf("proposal eligibility: %s", id)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, decision)
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
