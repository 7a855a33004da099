package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Reason: reason})
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		validation *domain.ValidationError
		violation  *domain.RuleViolation
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "invalid_argument",
			Field:  validation.Field,
			Reason: validation.Reason,
		})
	case errors.Is(err, domain.ErrDuplicateMember) && errors.As(err, &violation):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: violation.Code, Reason: violation.Reason})
	case errors.As(err, &violation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: violation.Code, Reason: violation.Reason})
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		logger.Warn("dependency unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "unavailable"})
	default:
		logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal"})
	}
}
