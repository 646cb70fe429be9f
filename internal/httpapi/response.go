package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/Taichi-iskw/enki/internal/errors"
)

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, ErrorResponse{Error: APIError{Code: code, Message: message, RequestID: requestID}})
}

// statusOf maps an AppError code to its HTTP status
func statusOf(code string) int {
	switch code {
	case apperrors.CodeInvalidArg, apperrors.CodeUnsupportedCategory:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeDependency:
		return http.StatusUnprocessableEntity
	case apperrors.CodeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError renders err as the JSON error envelope. Internal errors are logged
// and their message hidden from the client.
func writeAppError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	requestID := RequestIDFromContext(r.Context())
	code := apperrors.CodeOf(err)
	status := statusOf(code)

	message := "Internal server error"
	var appErr *apperrors.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	WriteError(w, status, code, message, requestID)
}
