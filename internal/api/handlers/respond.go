package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/pfopt/internal/contracts"
	"github.com/wonny/pfopt/internal/marketdata"
	"github.com/wonny/pfopt/internal/runs"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// errorStatus maps domain errors onto HTTP status codes
// ⭐ SSOT: 도메인 에러 → HTTP 상태 매핑은 여기서만
func errorStatus(err error) int {
	switch {
	case errors.Is(err, marketdata.ErrUnknownCountry), errors.Is(err, runs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrInvalidParameter),
		errors.Is(err, contracts.ErrInsufficientData),
		errors.Is(err, contracts.ErrEmptyCandidateSet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError 5xx는 내부 메시지 숨김
func respondDomainError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		respondError(w, status, "Internal server error")
		return
	}
	respondError(w, status, err.Error())
}
