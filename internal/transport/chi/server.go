// Package chi serves the query API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JIG555ERA/llm-api/internal/domain"
	"github.com/JIG555ERA/llm-api/internal/logger"
	"github.com/JIG555ERA/llm-api/internal/metrics"
	healthuc "github.com/JIG555ERA/llm-api/internal/usecase/health"
	"github.com/JIG555ERA/llm-api/internal/usecase/resolve"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a specific domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the HTTP handlers.
type Server struct {
	resolver      Resolver
	health        HealthChecker
	model         string
	logger        *zap.Logger
	now           func() time.Time
	errorHandlers []errorHandler
}

// NewServer creates a new HTTP server. model is reported by GET /.
func NewServer(resolver Resolver, health HealthChecker, model string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		resolver: resolver,
		health:   health,
		model:    model,
		logger:   logger,
		now:      time.Now,
	}
	s.errorHandlers = []errorHandler{
		s.invalidRequestHandler,
		s.sentinelHandler(domain.ErrNoCandidates, http.StatusNotFound),
		s.sentinelHandler(domain.ErrUpstreamFetch, http.StatusBadGateway),
	}
	return s
}

// Routes builds the router with the full middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(CORSMiddleware())
	r.Use(metrics.Middleware())

	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/", s.Root)
	r.Post("/generate", s.Generate)
	r.Post("/books/search", s.SearchBooks)
	r.Post("/book-summary", s.BookSummary)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Status: "online", Model: s.model})
}

// Generate handles POST /generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}

	var details []string
	prompt, ok := requiredString(req.Prompt)
	if !ok {
		details = append(details, resolve.MsgPromptRequired)
	}
	maxTokens, ok := optionalInt(req.MaxTokens)
	if !ok {
		details = append(details, resolve.MsgMaxTokensRange)
	}
	temperature, ok := optionalNumber(req.Temperature)
	if !ok {
		details = append(details, resolve.MsgTemperatureRange)
	}
	limit, ok := optionalInt(req.Limit)
	if !ok {
		details = append(details, resolve.MsgLimitRange)
	}
	sessionID, ok := optionalString(req.SessionID)
	if !ok {
		details = append(details, msgSessionID)
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	opts := resolve.Options{MaxTokens: maxTokens, Temperature: temperature, Limit: limit}
	flags := []struct {
		name string
		raw  json.RawMessage
		dst  *bool
	}{
		{"include_quotes", req.IncludeQuotes, &opts.IncludeQuotes},
		{"include_takeaways", req.IncludeTakeaways, &opts.IncludeTakeaways},
		{"include_similar", req.IncludeSimilar, &opts.IncludeSimilar},
	}
	for _, f := range flags {
		v, ok := optionalBool(f.raw)
		if !ok {
			details = append(details, fmt.Sprintf(msgIncludeBoolean, f.name))
			continue
		}
		*f.dst = v
	}
	details = append(details, opts.Validate()...)
	if len(details) > 0 {
		s.writeValidation(w, details)
		return
	}

	ctx, usage := domain.NewContextWithUsage(logger.With(r.Context(), zap.String("session_id", sessionID)))
	res, err := s.resolver.Resolve(ctx, prompt, opts)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)

	display := res.Display
	writeJSON(w, http.StatusOK, generateResponse{
		RequestTimestamp: s.timestamp(),
		Result:           res.Text,
		TokenUsage:       res.TokenUsage,
		MatchedBooks:     nonNilItems(res.Items),
		MatchedAuthors:   res.Authors,
		Display:          &display,
	})
}

// SearchBooks handles POST /books/search.
func (s *Server) SearchBooks(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}

	var details []string
	q, ok := requiredString(req.Query)
	if !ok {
		details = append(details, resolve.MsgQueryRequired)
	}
	limit, ok := optionalInt(req.Limit)
	if !ok {
		details = append(details, resolve.MsgLimitRange)
	}
	opts := resolve.Options{Limit: limit}
	details = append(details, opts.Validate()...)
	if len(details) > 0 {
		s.writeValidation(w, details)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.resolver.Search(ctx, q, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)

	writeJSON(w, http.StatusOK, searchResponse{
		RequestTimestamp: s.timestamp(),
		Query:            strings.TrimSpace(q),
		Results:          nonNilItems(res.Items),
		Intent:           toIntentView(res.Decision),
		Constraints:      toConstraintsView(&res.Constraints),
	})
}

// BookSummary handles POST /book-summary.
func (s *Server) BookSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !s.decode(w, r, &req) {
		return
	}

	var details []string
	title, ok := requiredString(req.Title)
	if !ok {
		details = append(details, resolve.MsgTitleRequired)
	}
	author, ok := optionalString(req.Author)
	if !ok {
		details = append(details, msgAuthorString)
	}
	maxTokens, ok := optionalInt(req.MaxTokens)
	if !ok {
		details = append(details, resolve.MsgMaxTokensRange)
	}
	opts := resolve.Options{MaxTokens: maxTokens}
	details = append(details, opts.Validate()...)
	if len(details) > 0 {
		s.writeValidation(w, details)
		return
	}

	sum, err := s.resolver.Summarize(r.Context(), resolve.SummaryRequest{
		Title:     title,
		Author:    author,
		MaxTokens: maxTokens,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		RequestTimestamp: s.timestamp(),
		Title:            sum.Title,
		Authors:          nonNilStrings(sum.Authors),
		Categories:       nonNilStrings(sum.Categories),
		Source:           sum.Source,
		Summary:          sum.Text,
		TokenUsage:       sum.TokenUsage,
	})
}

// HealthCheck handles GET /health. Degraded still answers 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.FormatInt(usage.TotalTokens(), 10))
	}
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	s.writeError(w, http.StatusNotFound, msgNotFound)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	s.writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// decode reads a JSON object body into dst, answering 422 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		logger.FromContext(r.Context()).Debug("invalid request body", zap.Error(err))
		s.writeValidation(w, []string{msgBodyObject})
		return false
	}
	return true
}

func (s *Server) timestamp() string {
	return formatTimestamp(s.now())
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail, RequestTimestamp: s.timestamp()})
}

func (s *Server) writeValidation(w http.ResponseWriter, details []string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: details, RequestTimestamp: s.timestamp()})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrNoCandidates,
		domain.ErrUpstreamFetch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func (s *Server) sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		s.writeError(w, status, msg)
		return true
	}
}

// invalidRequestHandler answers 422 with the validation messages carried by err.
func (s *Server) invalidRequestHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	detail, found := strings.CutPrefix(err.Error(), domain.ErrInvalidRequest.Error()+": ")
	if !found || detail == "" {
		detail = msg
	}
	s.writeValidation(w, []string{detail})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal error")
}
