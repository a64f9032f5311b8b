package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/request"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/health"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/orchestrator"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/version"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Chatter runs one chat turn.
type Chatter interface {
	Chat(ctx context.Context, query string) (orchestrator.Reply, error)
}

// SemanticSearcher runs similarity search.
type SemanticSearcher interface {
	Search(ctx context.Context, req request.Request) ([]result.Item, error)
}

// StructuredFilter runs attribute matching.
type StructuredFilter interface {
	Filter(ctx context.Context, c filter.Criteria) ([]result.Item, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Server holds the HTTP handlers.
type Server struct {
	chat          Chatter
	similarity    SemanticSearcher
	filter        StructuredFilter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat Chatter,
	similarity SemanticSearcher,
	flt StructuredFilter,
	hc HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		chat:          chat,
		similarity:    similarity,
		filter:        flt,
		health:        hc,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Response       string   `json:"response"`
	Strategy       string   `json:"strategy"`
	ConversationID string   `json:"conversation_id,omitempty"`
	ResultCount    int      `json:"result_count"`
	Fallbacks      []string `json:"fallbacks,omitempty"`
}

// Chat handles POST /api/v1/chat. The conversation id is echoed, never stored.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	reply, err := s.chat.Chat(ctx, req.Message)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := chatResponse{
		Response:       reply.Response,
		Strategy:       reply.Strategy.String(),
		ConversationID: req.ConversationID,
		ResultCount:    len(reply.Items),
	}
	for _, f := range reply.Fallbacks {
		resp.Fallbacks = append(resp.Fallbacks, string(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

type semanticRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SemanticSearch handles POST /api/v1/search/semantic.
func (s *Server) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	var body semanticRequest
	if !s.decode(w, r, &body) {
		return
	}

	req, err := request.New(body.Query, body.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	items, err := s.similarity.Search(ctx, req)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: itemsToDTO(items)})
}

type structuredRequest struct {
	Brand        string   `json:"brand,omitempty"`
	Category     string   `json:"category,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	NameContains string   `json:"name_contains,omitempty"`
}

// StructuredSearch handles POST /api/v1/search/structured.
func (s *Server) StructuredSearch(w http.ResponseWriter, r *http.Request) {
	var body structuredRequest
	if !s.decode(w, r, &body) {
		return
	}

	c, err := filter.NewCriteria(body.Brand, body.Category, body.NameContains, body.MinPrice, body.MaxPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	items, err := s.filter.Filter(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: itemsToDTO(items)})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != health.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Banner handles GET /.
func (s *Server) Banner(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "productfinder",
		"version": version.Version,
		"commit":  version.Commit,
	})
}

// decode reads a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.TurnUsage) {
	if n := usage.EmbeddingTokens(); n > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.FormatInt(n, 10))
	}
	if n := usage.LLMCalls(); n > 0 {
		w.Header().Set("X-LLM-Calls", strconv.FormatInt(n, 10))
	}
}

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: codeInternal, Message: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
