package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/feed"
)

// FeedResponse is the body of every /feeds endpoint except DELETE.
// Error carries the message of the last failed fetch; the events loaded
// before it are still returned.
type FeedResponse struct {
	ID         uuid.UUID       `json:"id"`
	Data       []domain.Event  `json:"data"`
	Pagination domain.PageMeta `json:"pagination"`
	HasMore    bool            `json:"has_more"`
	Error      string          `json:"error,omitempty"`
}

// CreateFeed handles POST /feeds.
// The body is the same filter GET /events accepts as query parameters.
// The first page is loaded before responding.
func (s *Server) CreateFeed(w http.ResponseWriter, r *http.Request) {
	var in filterInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		requestError(w, "invalid request body: "+err.Error())
		return
	}
	req, err := in.eventRequest()
	if err != nil {
		requestError(w, err.Error())
		return
	}
	f, err := s.events.ResolveFilter(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, st, err := s.feeds.Create(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "feed created", "feed_id", id, "events", len(st.Events))
	writeJSON(w, http.StatusCreated, s.feedResponse(r, id, st))
}

// GetFeed handles GET /feeds/{id}.
func (s *Server) GetFeed(w http.ResponseWriter, r *http.Request) {
	id, err := uuidPathParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	st, err := s.feeds.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.feedResponse(r, id, st))
}

// LoadMoreFeed handles POST /feeds/{id}/more.
// Loading past the last page is not an error; the unchanged feed is
// returned with has_more=false. An upstream failure is reported in the
// body's error field alongside everything loaded so far.
func (s *Server) LoadMoreFeed(w http.ResponseWriter, r *http.Request) {
	id, err := uuidPathParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	st, err := s.feeds.LoadMore(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeError(w, r, err)
			return
		}
		s.log.WarnContext(r.Context(), "feed load more failed", "feed_id", id, "error", err)
	}
	writeJSON(w, http.StatusOK, s.feedResponse(r, id, st))
}

// DeleteFeed handles DELETE /feeds/{id}.
func (s *Server) DeleteFeed(w http.ResponseWriter, r *http.Request) {
	id, err := uuidPathParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.feeds.Delete(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) feedResponse(r *http.Request, id uuid.UUID, st feed.State) FeedResponse {
	resp := FeedResponse{
		ID:         id,
		Data:       s.events.Decorate(r.Context(), st.Events),
		Pagination: st.Pagination,
		HasMore:    st.HasMore,
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	return resp
}
