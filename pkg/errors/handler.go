package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON body sent for every failed request.
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Code      string                 `json:"code,omitempty"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler translates errors into HTTP responses. Domain errors carry
// their own status code and error code; anything else becomes an opaque
// 500 so internals never leak to clients.
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates an error handler. With debug enabled, unhandled
// error messages are returned to the client instead of being masked.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the response for err and logs it.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	requestID := r.Header.Get("X-Request-ID")

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		status := domainErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}

		fields := []zap.Field{
			zap.String("error_type", string(domainErr.Type)),
			zap.String("error_code", domainErr.Code),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
		}
		if domainErr.Cause != nil {
			fields = append(fields, zap.Error(domainErr.Cause))
		}
		if status >= http.StatusInternalServerError {
			h.logger.Error(domainErr.Message, fields...)
		} else {
			h.logger.Warn(domainErr.Message, fields...)
		}

		h.sendJSON(w, status, ErrorResponse{
			Error:     true,
			Type:      string(domainErr.Type),
			Code:      domainErr.Code,
			Message:   domainErr.Message,
			Details:   domainErr.Details,
			Retryable: domainErr.Retryable,
			RequestID: requestID,
		})
		return
	}

	h.logger.Error("Unhandled error",
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID),
	)

	message := "An internal error occurred"
	if h.debug {
		message = err.Error()
	}
	h.sendJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:     true,
		Type:      string(DomainInfrastructureError),
		Message:   message,
		RequestID: requestID,
	})
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}
