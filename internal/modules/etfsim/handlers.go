package etfsim

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/amarinov/finance-api/internal/modules/simulator"
)

// Handler handles ETF simulator HTTP requests.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new ETF simulator handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "etfsim").Logger(),
	}
}

// HandleSimulate runs one ETF simulation.
// POST /tools/etf-simulator
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Simulate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, simulator.ErrInvalidAllocation), errors.Is(err, simulator.ErrUnknownTicker):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, simulator.ErrDataGap):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, simulator.ErrUpstreamUnavailable):
			h.writeError(w, http.StatusBadGateway, err.Error())
		default:
			h.log.Error().Err(err).Msg("ETF simulation failed")
			h.writeError(w, http.StatusInternalServerError, "simulation failed")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
