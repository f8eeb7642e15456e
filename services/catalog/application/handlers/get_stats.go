package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// GetStatsHandler handles GET /items/stats requests.
type GetStatsHandler struct {
	svc  *appsvcs.Services
	resp *errhttp.Responder
}

// NewGetStatsHandler returns a GetStatsHandler backed by the given services.
func NewGetStatsHandler(svc *appsvcs.Services, resp *errhttp.Responder) *GetStatsHandler {
	return &GetStatsHandler{svc: svc, resp: resp}
}

// Execute returns min, max, and average price over the whole catalog.
func (h *GetStatsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Item.PriceStats(r.Context())
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, stats)
}
