package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/wonny/pfopt/internal/advisor"
	"github.com/wonny/pfopt/pkg/logger"
)

// maxBodyBytes request body cap (10 tickers × many years of daily prices)
const maxBodyBytes = 8 << 20

// SimulationHandler handles simulation API endpoints
// ⭐ SSOT: 시뮬레이션 API 핸들러는 이 구조체에서만
type SimulationHandler struct {
	advisor   *advisor.Advisor
	validator *validator.Validate
	logger    *logger.Logger
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(adv *advisor.Advisor, log *logger.Logger) *SimulationHandler {
	return &SimulationHandler{
		advisor:   adv,
		validator: NewValidator(),
		logger:    log.WithComponent("api.simulation"),
	}
}

// decode parses and validates a request; the returned status is 0 on success
func (h *SimulationHandler) decode(data []byte) (advisor.Request, int, string) {
	var req SimulationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return advisor.Request{}, http.StatusBadRequest, "Invalid request body"
	}
	if err := h.validator.Struct(req); err != nil {
		return advisor.Request{}, http.StatusBadRequest, validationMessage(err)
	}

	areq, err := req.AdvisorRequest()
	if err != nil {
		return advisor.Request{}, errorStatus(err), err.Error()
	}
	return areq, 0, ""
}

// Create runs a simulation and returns the recommendation
// POST /api/simulations
func (h *SimulationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, status, msg := h.decode(raw)
	if status != 0 {
		respondError(w, status, msg)
		return
	}

	rec, err := h.advisor.Recommend(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).Warn("Simulation failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// Get returns a stored run
// GET /api/simulations/{id}
func (h *SimulationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := h.advisor.Run(r.Context(), id)
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("run_id", id).Error("Failed to get run")
		}
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// List returns the most recent stored runs
// GET /api/simulations?limit=20
func (h *SimulationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	list, err := h.advisor.RecentRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  list,
		"count": len(list),
	})
}
