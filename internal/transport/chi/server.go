// Package chi exposes search, chat and health over HTTP with a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	chatuc "github.com/kailas-cloud/shopsearch/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
)

// maxBodyBytes bounds request bodies; queries are short.
const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	search        Searcher
	chat          Chatter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, chat Chatter, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		chat:   chat,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusBadGateway, ErrorResponseCodeCatalogUnavailable),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/vector-search", s.VectorSearch)
	r.Get("/vector-search", s.VectorSearchGet)
	r.Post("/chat", s.Chat)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// VectorSearch handles POST /vector-search.
func (s *Server) VectorSearch(w http.ResponseWriter, r *http.Request) {
	var req VectorSearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.runSearch(w, r, req.Query, deref(req.Category), derefInt(req.Limit))
}

// VectorSearchGet handles GET /vector-search.
func (s *Server) VectorSearchGet(w http.ResponseWriter, r *http.Request) {
	var params VectorSearchParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "query", q, &params.Query); err != nil {
		writeInvalidParam(w, "query", err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", q, &params.Category); err != nil {
		writeInvalidParam(w, "category", err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &params.Limit); err != nil {
		writeInvalidParam(w, "limit", err)
		return
	}
	s.runSearch(w, r, params.Query, deref(params.Category), derefInt(params.Limit))
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, text, category string, limit int) {
	q, err := query.New(text, category, limit, s.search.DefaultLimit())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.search.SearchCached(ctx, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, outcomeToResponse(out))
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var profile chatuc.Profile
	if req.Profile != nil {
		profile = chatuc.Profile{Name: req.Profile.Name, PreferredCategory: req.Profile.PreferredCategory}
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	reply, err := s.chat.SendMessage(ctx, req.Message, profile)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := ChatResponse{
		ID:      reply.ID.String(),
		Answer:  reply.Answer,
		Intent:  string(reply.Intent),
		Emotion: string(reply.Emotion),
	}
	if reply.Outcome != nil {
		resp.Products = resultsToItems(reply.Outcome.Results)
		resp.BestScore = reply.Outcome.BestScore
		resp.HasLowRelevance = reply.Outcome.HasLowRelevance
		resp.IsTextFallback = reply.Outcome.IsTextFallback
		resp.Category = reply.Outcome.Category
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeInvalidParam(w http.ResponseWriter, name string, err error) {
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
		fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
}

// safeDomainMessage returns the validation detail for invalid queries and
// only the sentinel text otherwise, so internals never reach the client.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) {
		return err.Error()
	}
	if errors.Is(err, domain.ErrCatalogUnavailable) {
		return domain.ErrCatalogUnavailable.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func outcomeToResponse(o outcome.Outcome) VectorSearchResponse {
	resp := VectorSearchResponse{
		Results:         resultsToItems(o.Results),
		BestScore:       o.BestScore,
		HasLowRelevance: o.HasLowRelevance,
		IsTextFallback:  o.IsTextFallback,
	}
	if o.Category != "" {
		c := o.Category
		resp.Category = &c
	}
	return resp
}

func resultsToItems(results []outcome.ScoredResult) []SearchResultItem {
	items := make([]SearchResultItem, len(results))
	for i := range results {
		p := results[i].Product()
		items[i] = SearchResultItem{
			ID:       p.ID(),
			Name:     p.Name(),
			Price:    p.Price(),
			Category: p.Category(),
			Image:    p.ImageURL(),
			Score:    results[i].Score(),
		}
	}
	return items
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
