package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	logpkg "github.com/duylongpro99/rag-agentic-ecommerce/internal/logger"
)

// Error codes returned in the "code" field.
const (
	codeBadRequest           = "bad_request"
	codeValidationFailed     = "validation_failed"
	codeUnauthorized         = "unauthorized"
	codeInvalidQuery         = "invalid_query"
	codeNotFound             = "not_found"
	codeDimensionMismatch    = "dimension_mismatch"
	codeEmbeddingUnavailable = "embedding_unavailable"
	codeLLMUnavailable       = "llm_unavailable"
	codeCompositionFailed    = "composition_failed"
	codeInternal             = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers is ordered: wrapping sentinels come before the causes they wrap.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		invalidQueryHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusInternalServerError, codeDimensionMismatch),
		sentinelHandler(domain.ErrCompositionFailed, http.StatusBadGateway, codeCompositionFailed),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrLLMUnavailable, http.StatusBadGateway, codeLLMUnavailable),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees only the sentinel text.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// invalidQueryHandler exposes the validation detail, which never carries internals.
func invalidQueryHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidQuery) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeInvalidQuery, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
