package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/logger"
	"planvault-backend/internal/security"
)

type errorResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int64  `json:"retry_after_seconds,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors become a
// generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	if notReady, ok := domain.IsCollectionNotReady(err); ok {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:             notReady.Error(),
			RetryAfterSeconds: int64(math.Ceil(notReady.Remaining.Seconds())),
		})
		return
	}

	var status int
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrPlanNotFound),
		errors.Is(err, domain.ErrInstanceNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAmountOutOfRange),
		errors.Is(err, domain.ErrNotAnUpgrade),
		errors.Is(err, domain.ErrNotExpired),
		errors.Is(err, domain.ErrReferralCodeUnknown):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAlreadyHasActivePlan),
		errors.Is(err, domain.ErrNoActivePlan),
		errors.Is(err, domain.ErrPlanExpired),
		errors.Is(err, domain.ErrEntryNotPending),
		errors.Is(err, domain.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrWrongTokenType):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountBlocked),
		errors.Is(err, domain.ErrWithdrawNotEligible):
		status = http.StatusForbidden
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}
