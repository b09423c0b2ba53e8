package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"
)

type GeocodeHandler struct {
	Geocoder ports.Geocoder
	Logger   *slog.Logger
}

// Search returns up to five candidate places for the q parameter.
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	cands, err := h.Geocoder.Search(r.Context(), r.URL.Query().Get("q"))
	if errors.Is(err, domain.ErrInvalidInput) {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if err != nil {
		h.Logger.WarnContext(r.Context(), "geocoding failed", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusBadGateway, "geocoding service unavailable")
		return
	}
	if cands == nil {
		cands = []ports.GeocodeCandidate{}
	}
	writeJSON(w, r, http.StatusOK, cands)
}
