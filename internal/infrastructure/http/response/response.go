// Package response writes the JSON envelope shared by every API endpoint
package response

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success  bool                    `json:"success"`
	Data     interface{}             `json:"data,omitempty"`
	Error    *apperrors.ErrorDetails `json:"error,omitempty"`
	Message  string                  `json:"message,omitempty"`
	Warnings []apperrors.Warning     `json:"warnings,omitempty"`
}

// JSON writes payload with the given status
func JSON(w http.ResponseWriter, logger *zap.Logger, status int, payload APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// OK writes a successful envelope. Storage resets collected on the request
// context are listed under warnings and lead the message.
func OK(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, data interface{}, message string) {
	warnings := apperrors.WarningsFrom(r.Context()).Warnings()
	if len(warnings) > 0 {
		notices := make([]string, 0, len(warnings)+1)
		for _, warning := range warnings {
			notices = append(notices, warning.UserMessage())
		}
		if message != "" {
			notices = append(notices, message)
		}
		message = strings.Join(notices, " ")
	}
	JSON(w, logger, status, APIResponse{Success: true, Data: data, Message: message, Warnings: warnings})
}

// Error maps err onto its AppError status and writes a failed envelope.
// Server side failures are logged with the request id.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := apperrors.Wrap(err, "An unexpected error occurred")
	requestID := chimiddleware.GetReqID(r.Context())
	status := appErr.StatusCode()

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.String("details", appErr.Details),
			zap.Error(err),
		)
	}

	details := apperrors.ToErrorResponse(appErr, requestID).Error
	JSON(w, logger, status, APIResponse{Success: false, Error: &details, Message: appErr.Message})
}
