package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solana-wallet-tokens/internal/api/middleware"
	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/jupiter"
	"solana-wallet-tokens/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeInvalidAddress   ErrorCode = "invalid_address"
	errCodeNotFound         ErrorCode = "not_found"
	errCodeValidationFailed ErrorCode = "validation_failed"

	// Server errors (5xx)
	errCodeInternalError        ErrorCode = "internal_error"
	errCodeMalformedAccountData ErrorCode = "malformed_account_data"
	errCodeChainQuery           ErrorCode = "chain_query_error"
	errCodeUpstreamFetch        ErrorCode = "upstream_fetch_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondValidationError sends a 400 with a validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, errCodeValidationFailed, "Validation failed", details)
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string) {
	respondWithError(c, http.StatusNotFound, errCodeNotFound, message)
}

// respondError classifies err by kind. Upstream fetch is checked before chain query
// because a metadata failure inside enrichment carries both kinds. Timeouts and
// cancellations surface through the kind of the call they interrupted.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		respondWithError(c, http.StatusBadRequest, errCodeInvalidAddress, "Invalid public key format.", err.Error())
	case errors.Is(err, jupiter.ErrInvalidRequest):
		respondValidationError(c, err.Error())
	case errors.Is(err, domain.ErrTokenNotFound):
		respondNotFound(c, "Token not found or not verified")
	case errors.Is(err, domain.ErrMalformedAccountData):
		logError(c, err)
		respondWithError(c, http.StatusInternalServerError, errCodeMalformedAccountData, "Token account data could not be decoded", err.Error())
	case errors.Is(err, jupiter.ErrMissingTransaction):
		respondWithError(c, http.StatusBadGateway, errCodeUpstreamFetch, "Swap transaction missing in Jupiter response")
	case errors.Is(err, domain.ErrUpstreamFetch):
		respondWithError(c, http.StatusBadGateway, errCodeUpstreamFetch, "Upstream service request failed", err.Error())
	case errors.Is(err, domain.ErrChainQuery):
		respondWithError(c, http.StatusBadGateway, errCodeChainQuery, "Error fetching token accounts", err.Error())
	default:
		logError(c, err)
		respondWithError(c, http.StatusInternalServerError, errCodeInternalError, "Internal server error")
	}
}

func logError(c *gin.Context, err error) {
	logger.ErrorCtx(c.Request.Context(), err,
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.Request.URL.Path))
}
