package handlers

import (
	"context"
	"net/http"
	"roadbook-service/internal/api/dto"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/ports"
	"time"
)

var (
	probeFrom = domain.NewPoint("Montpellier", 43.6117, 3.8777)
	probeTo   = domain.NewPoint("Lyon", 45.7640, 4.8357)
)

// DebugHandler reports whether the routing provider is configured and
// reachable. Router is nil when no API key is set.
type DebugHandler struct {
	Router  ports.Router
	KeyHint string
}

func (h *DebugHandler) Routing(w http.ResponseWriter, r *http.Request) {
	res := dto.RoutingProbeResponse{HasKey: h.Router != nil, KeyMasked: h.KeyHint}
	if h.Router == nil {
		res.Error = "no routing API key configured"
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	leg, err := h.Router.Route(ctx, probeFrom, probeTo, domain.ModeRapide, domain.DefaultProfile)
	if err != nil {
		res.Error = err.Error()
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	res.OK = true
	res.DistanceKm = leg.DistanceKm
	res.DurationMin = leg.DurationMin
	writeJSON(w, r, http.StatusOK, res)
}
