// Package api exposes the post store over HTTP. It is a thin adapter
// over the blog engine: transport-level validation and the mapping of
// engine error kinds to statuses happen here, domain logic does not.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/masterblog/masterblog/internal/blog"
	"github.com/masterblog/masterblog/internal/observability"
	"github.com/masterblog/masterblog/internal/storage"
)

var (
	allowedSortFields = map[string]bool{"title": true, "author": true, "date": true, "content": true}
	allowedPageSizes  = map[int]bool{10: true, 20: true, 50: true, 100: true}
	supportedMedia    = map[string]bool{"application/json": true, "application/xml": true}
)

// Mutating and search routes share a budget of 20 requests per minute
// per client.
const (
	defaultRateLimit = rate.Limit(20.0 / 60.0)
	defaultRateBurst = 20
)

// Server is the HTTP front of the post store.
type Server struct {
	engine  *blog.Engine
	log     *observability.Logger
	metrics *observability.MetricsCollector
	limiter *visitorLimiter
	started time.Time
}

// NewServer creates a server around an engine. log and metrics may be
// nil, in which case defaults are used.
func NewServer(engine *blog.Engine, log *observability.Logger, metrics *observability.MetricsCollector) *Server {
	if log == nil {
		log = observability.NewLogger("api", nil)
	}
	if metrics == nil {
		metrics = observability.NewMetricsCollector(0)
	}
	return &Server{
		engine:  engine,
		log:     log,
		metrics: metrics,
		limiter: newVisitorLimiter(defaultRateLimit, defaultRateBurst),
		started: time.Now(),
	}
}

// Handler returns the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/posts", s.handleList)
	mux.HandleFunc("POST /api/posts", s.handleCreate)
	mux.HandleFunc("GET /api/posts/search", s.rateLimited(s.handleSearch))
	mux.HandleFunc("PUT /api/posts/{id}", s.rateLimited(s.handleUpdate))
	mux.HandleFunc("DELETE /api/posts/{id}", s.rateLimited(s.handleDelete))
	mux.HandleFunc("POST /api/like/{id}", s.rateLimited(s.handleLike))

	return cors.AllowAll().Handler(s.withRequestLog(mux))
}

// postsResponse is the JSON body of list and search results.
type postsResponse struct {
	Posts      []storage.Post `json:"posts"`
	TotalPosts int            `json:"totalPosts"`
}

// postRequest is the JSON body of create and update requests. Absent and
// empty fields are equivalent.
type postRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

type healthResponse struct {
	Status     string           `json:"status"`
	Uptime     string           `json:"uptime"`
	TotalPosts int              `json:"totalPosts"`
	Counters   map[string]int64 `json:"counters,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Uptime:     time.Since(s.started).String(),
		TotalPosts: s.engine.Count(),
		Counters:   s.metrics.Snapshot(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, total := s.engine.List(params.sortBy, params.direction, params.page, params.pageSize)
	s.metrics.Increment("store_list")
	writeJSON(w, http.StatusOK, postsResponse{Posts: posts, TotalPosts: total})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params, err := parseListParams(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	searchBy := q.Get("search_by")
	if searchBy == "" {
		searchBy = "title"
	}
	if !allowedSortFields[searchBy] {
		writeError(w, http.StatusBadRequest, "Bad Request: Invalid search_by value")
		return
	}

	posts, total := s.engine.Search(searchBy, q.Get("search_for"),
		params.sortBy, params.direction, params.page, params.pageSize)
	s.metrics.Increment("store_search")
	writeJSON(w, http.StatusOK, postsResponse{Posts: posts, TotalPosts: total})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	post, err := s.engine.Create(req.Title, req.Author, req.Content)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.metrics.Increment("store_create")
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	post, err := s.engine.Update(id, blog.PostUpdate{
		Title:   req.Title,
		Author:  req.Author,
		Content: req.Content,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.metrics.Increment("store_update")
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := s.engine.Delete(id); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.metrics.Increment("store_delete")
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    fmt.Sprintf("Post with id %d has been deleted successfully.", id),
		"totalPosts": s.engine.Count(),
	})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := s.engine.Like(id); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.metrics.Increment("store_like")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post Liked successfully"})
}

// listParams are the validated sort and pagination query parameters.
type listParams struct {
	sortBy    string
	direction string
	page      int
	pageSize  int
}

func parseListParams(q url.Values) (listParams, error) {
	params := listParams{direction: "asc", page: 1, pageSize: 10}

	params.sortBy = q.Get("sort")
	if params.sortBy != "" && !allowedSortFields[params.sortBy] {
		return params, errors.New("Bad Request: Invalid sort value")
	}

	if d := q.Get("direction"); d != "" {
		if d != "asc" && d != "desc" {
			return params, errors.New("Bad Request: Invalid direction value")
		}
		params.direction = d
	}

	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !allowedPageSizes[n] {
			return params, errors.New("Bad Request: Invalid pageSize value")
		}
		params.pageSize = n
	}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return params, errors.New("Bad Request: Invalid page value")
		}
		params.page = n
	}

	return params, nil
}

// decodeBody enforces the Content-Type contract and parses the JSON
// body. It writes the failure response itself and reports success.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		writeError(w, http.StatusBadRequest, "Content-Type header is missing")
		return false
	}
	media, _, err := mime.ParseMediaType(ct)
	if err != nil || !supportedMedia[media] {
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported media type")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to decode JSON object.")
		return false
	}
	return true
}

// idParam extracts the {id} path segment. Anything non-numeric gets a
// not-found response, matching the route contract of an integer id.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "The requested post was not found.")
		return 0, false
	}
	return id, true
}

// writeEngineError maps engine error kinds to client responses without
// inspecting message text beyond the validation message itself.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var ve *blog.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	if errors.Is(err, blog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "The requested post was not found.")
		return
	}
	var pe *blog.PersistenceError
	if errors.As(err, &pe) {
		s.metrics.Increment("persist_failures")
		s.log.Error("durable write failed", "op", pe.Op, "err", pe.Err)
		writeError(w, http.StatusInternalServerError, "Failed to save posts. The operation was not applied.")
		return
	}
	s.log.Error("unexpected engine error", "err", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
