package simulator

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles portfolio simulator HTTP requests.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new simulator handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "simulator").Logger(),
	}
}

// HandleSimulate runs one portfolio simulation.
// POST /tools/portfolio-simulator
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
		h.writeSimulationError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// writeSimulationError maps the simulation error taxonomy onto HTTP status
// codes. Bad input is 400, a data gap mid-window is 422, and a provider
// outage is 502 so callers know it is retryable.
func (h *Handler) writeSimulationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidAllocation), errors.Is(err, ErrUnknownTicker):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDataGap):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrUpstreamUnavailable):
		h.writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.log.Error().Err(err).Msg("Simulation failed")
		h.writeError(w, http.StatusInternalServerError, "simulation failed")
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
