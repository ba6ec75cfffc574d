package ledger

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/the-hive-labs/hive-timebank/pkg/httpsrv"
)

const defaultPageSize = 20

// PendingProvider reports hours already promised as payer on live proposals.
type PendingProvider interface {
	PendingPayerHours(userID uuid.UUID) (int, error)
}

type balanceResponse struct {
	Balance   decimal.Decimal `json:"balance"`
	Pending   int             `json:"pending_hours"`
	Available decimal.Decimal `json:"available"`
}

type Server struct {
	sp      *Service
	pending PendingProvider
}

func NewServer(s *Service, pending PendingProvider) *Server {
	return &Server{
		sp:      s,
		pending: pending,
	}
}

func (s *Server) RegisterRoutes(_, protected *mux.Router) {
	protected.HandleFunc("/balance/", s.balance).Methods(http.MethodGet)
	protected.HandleFunc("/balance/history/", s.history).Methods(http.MethodGet)
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	balance, err := s.sp.Balance(viewerID)
	if err != nil {
		log.Error().Err(err).Msg("get balance")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pending, err := s.pending.PendingPayerHours(viewerID)
	if err != nil {
		log.Error().Err(err).Msg("sum pending hours")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, balanceResponse{
		Balance:   balance,
		Pending:   pending,
		Available: balance.Sub(decimal.NewFromInt(int64(pending))),
	})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	filters := []Filter{pageFilter(r)}

	if t := r.URL.Query().Get("type"); t != "" {
		filters = append(filters, TypeFilter{Type: EntryType(t)})
	}
	if proposalID := r.URL.Query().Get("proposal"); proposalID != "" {
		filters = append(filters, ProposalFilter{ProposalID: proposalID})
	}

	entries, err := s.sp.History(viewerID, filters)
	if err != nil {
		log.Error().Err(err).Msg("get balance history")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, entries)
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
