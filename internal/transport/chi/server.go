// Package chi exposes the recommender over HTTP.
package chi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/domain"
	domact "github.com/kailas-cloud/furnidex/internal/domain/activity"
	domrec "github.com/kailas-cloud/furnidex/internal/domain/recommend"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
	logpkg "github.com/kailas-cloud/furnidex/internal/logger"
	healthuc "github.com/kailas-cloud/furnidex/internal/usecase/health"
	"github.com/kailas-cloud/furnidex/internal/version"
)

// DefaultMaxUploadBytes caps photo uploads.
const DefaultMaxUploadBytes = 10 << 20

// Recommender is the retrieval orchestrator.
type Recommender interface {
	Recommend(ctx context.Context, q domrec.Query) (domrec.Response, error)
	SimilarTo(ctx context.Context, id string, space vector.Space, limit int) ([]domrec.Candidate, error)
	ByImage(
		ctx context.Context, data []byte, mime string, space vector.Space, category string, limit int,
	) ([]domrec.Scored, error)
}

// ActivityLog records and summarizes shopper events.
type ActivityLog interface {
	Record(ctx context.Context, e domact.Event) (domact.Event, error)
	Summary(ctx context.Context, userID string) (domact.Summary, error)
}

// HealthChecker aggregates component checks.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	recommender    Recommender
	activity       ActivityLog
	health         HealthChecker
	logger         *zap.Logger
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates the HTTP handlers. activity may be nil, which disables the activity routes.
func NewServer(rec Recommender, activity ActivityLog, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		recommender:    rec,
		activity:       activity,
		health:         health,
		logger:         logger,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidImage, http.StatusBadRequest, CodeInvalidImage),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable, CodeUpstreamUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusServiceUnavailable, CodeEmbeddingProviderError),
	}
	return s
}

// WithMaxUploadBytes overrides the photo upload cap.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// RecommendSmart handles POST /recommend/smart.
func (s *Server) RecommendSmart(w http.ResponseWriter, r *http.Request) {
	s.recommend(w, r, domrec.PolicyStrict)
}

// RecommendText handles POST /recommend/text.
func (s *Server) RecommendText(w http.ResponseWriter, r *http.Request) {
	s.recommend(w, r, domrec.PolicyLoose)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, policy domrec.Policy) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	if msg := validateStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
		return
	}

	resp, err := s.recommender.Recommend(r.Context(), domrec.Query{
		Text:     req.Query,
		Category: req.Category,
		Limit:    req.Limit,
		Policy:   policy,
	})
	logpkg.AddFields(r.Context(), zap.String("policy", string(policy)))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	logpkg.AddFields(r.Context(),
		zap.String("outcome", string(resp.Outcome)),
		zap.String("strategy", string(resp.Strategy)),
		zap.Int("results", resp.Results.Len()),
	)
	writeJSON(w, http.StatusOK, recommendToResponse(resp))
}

// RecommendImage handles POST /recommend/image (multipart field "image").
func (s *Server) RecommendImage(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, CodeInvalidImage, "image too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeInvalidImage, "image too large")
			return
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "expected multipart form with an image field")
		return
	}
	file, hdr, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "image is required")
		return
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidImage, "unreadable image")
		return
	}
	mime := hdr.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}

	values := url.Values{}
	for k, v := range r.URL.Query() {
		values[k] = v
	}
	for k, v := range r.MultipartForm.Value {
		values[k] = v
	}
	params, ok := bindSearchParams(w, values, vector.Image)
	if !ok {
		return
	}

	results, err := s.recommender.ByImage(r.Context(), data, mime, params.space, params.category, params.limit)
	logpkg.AddFields(r.Context(), zap.String("space", string(params.space)), zap.Int("image_bytes", len(data)))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	out := make([]ProductResult, 0, len(results))
	for _, sc := range results {
		out = append(out, productFromScored(sc))
	}
	writeJSON(w, http.StatusOK, SearchResponse{Space: string(params.space), Results: out, Total: len(out)})
}

// SimilarProducts handles GET /products/{id}/similar.
func (s *Server) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	params, ok := bindSearchParams(w, r.URL.Query(), vector.Text)
	if !ok {
		return
	}

	results, err := s.recommender.SimilarTo(r.Context(), id, params.space, params.limit)
	logpkg.AddFields(r.Context(), zap.String("space", string(params.space)), zap.Int("results", len(results)))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	out := make([]ProductResult, 0, len(results))
	for _, c := range results {
		out = append(out, productFromItem(c.Item, c.Similarity, string(c.Space)))
	}
	writeJSON(w, http.StatusOK, SearchResponse{Space: string(params.space), Results: out, Total: len(out)})
}

// RecordActivity handles POST /activity.
func (s *Server) RecordActivity(w http.ResponseWriter, r *http.Request) {
	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	if msg := validateStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
		return
	}
	e, err := s.activity.Record(r.Context(), req.toEvent())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// ActivitySummary handles GET /activity/{user_id}.
func (s *Server) ActivitySummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.activity.Summary(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:   string(report.Status),
		Checks:   checks,
		Products: report.Products,
		Version:  version.Version,
	})
}

type searchParams struct {
	space    vector.Space
	category string
	limit    int
}

// bindSearchParams reads the optional space, category and limit parameters.
// It writes a 400 and returns false on malformed input.
func bindSearchParams(w http.ResponseWriter, values url.Values, defaultSpace vector.Space) (searchParams, bool) {
	var (
		space    = string(defaultSpace)
		category string
		limit    int
	)
	if err := runtime.BindQueryParameter("form", true, false, "space", values, &space); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid parameter: space")
		return searchParams{}, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", values, &category); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid parameter: category")
		return searchParams{}, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", values, &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid parameter: limit")
		return searchParams{}, false
	}
	sp, err := vector.ParseSpace(space)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return searchParams{}, false
	}
	if limit < 0 || limit > domrec.MaxLimit {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "limit must be between 1 and 50")
		return searchParams{}, false
	}
	return searchParams{space: sp, category: category, limit: limit}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error
// and answers with the sentinel's own message.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("request failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
