package post

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

type Server struct {
	sp *Service
}

func NewServer(s *Service) *Server {
	return &Server{
		sp: s,
	}
}

func (s *Server) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/posts/", s.list).Methods(http.MethodGet)
	public.HandleFunc("/posts/{id}/", s.get).Methods(http.MethodGet)

	protected.HandleFunc("/posts/", s.create).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{id}/", s.update).Methods(http.MethodPatch)
	protected.HandleFunc("/posts/{id}/", s.delete).Methods(http.MethodDelete)
	protected.HandleFunc("/posts/{id}/summary/", s.summary).Methods(http.MethodGet)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	filters := []Filter{pageFilter(r)}

	if t := r.URL.Query().Get("type"); t != "" {
		filters = append(filters, TypeFilter{Type: lifecycle.PostType(t)})
	}
	if owner := r.URL.Query().Get("owner"); owner != "" {
		filters = append(filters, OwnerFilter{OwnerID: owner})
	}
	if q := r.URL.Query().Get("search"); q != "" {
		filters = append(filters, SearchFilter{Query: q})
	}

	list, err := s.sp.List(filters)
	if err != nil {
		log.Error().Err(err).Msg("list posts")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	p, err := s.sp.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpsrv.WriteError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msgf("get post: %s", id)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	var p Post
	if err := httpsrv.DecodeJSON(r, &p); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.sp.Create(viewerID, p)
	switch {
	case errors.Is(err, ErrInvalidPost), errors.Is(err, ErrInvalidPostType):
		httpsrv.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("create post")
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	var changes Post
	if err := httpsrv.DecodeJSON(r, &changes); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.sp.Update(viewerID, id, changes)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "post not found")
		return
	case errors.Is(err, ErrNotOwner):
		httpsrv.WriteError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msgf("update post: %s", id)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	err = s.sp.Delete(viewerID, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "post not found")
		return
	case errors.Is(err, ErrNotOwner):
		httpsrv.WriteError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msgf("delete post: %s", id)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusNoContent, nil)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := httpsrv.UserID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	summary, err := s.sp.GetAISummary(r.Context(), viewerID, id)
	switch {
	case errors.Is(err, ErrRequestLimitExceeded):
		httpsrv.WriteError(w, http.StatusTooManyRequests, err.Error())
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpsrv.WriteError(w, http.StatusNotFound, "post not found")
		return
	case err != nil:
		log.Error().Err(err).Msgf("post summary: %s", id)
		httpsrv.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, map[string]string{"summary": summary})
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
