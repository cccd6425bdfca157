package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/pfopt/internal/marketdata"
	"github.com/wonny/pfopt/pkg/logger"
)

// CountryHandler serves the country risk table
type CountryHandler struct {
	market marketdata.Provider
	logger *logger.Logger
}

// NewCountryHandler creates a new country handler
func NewCountryHandler(market marketdata.Provider, log *logger.Logger) *CountryHandler {
	return &CountryHandler{
		market: market,
		logger: log.WithComponent("api.country"),
	}
}

// List returns every country with its premia
// GET /api/countries
func (h *CountryHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.market.Countries()
	out := make([]marketdata.CountryRiskData, 0, len(names))
	for _, name := range names {
		c, err := h.market.Lookup(name)
		if err != nil {
			continue
		}
		out = append(out, c)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"countries": out,
		"count":     len(out),
	})
}

// Get returns one country
// GET /api/countries/{country}
func (h *CountryHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.market.Lookup(mux.Vars(r)["country"])
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"country":    c.Country,
		"erp":        c.ERP,
		"crp":        c.CRP,
		"rf":         c.RF,
		"mature_erp": c.MatureERP(),
	})
}
