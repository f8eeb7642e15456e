package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// GetItemHandler handles GET /items/{id} requests.
type GetItemHandler struct {
	svc  *appsvcs.Services
	resp *errhttp.Responder
}

// NewGetItemHandler returns a GetItemHandler backed by the given services.
func NewGetItemHandler(svc *appsvcs.Services, resp *errhttp.Responder) *GetItemHandler {
	return &GetItemHandler{svc: svc, resp: resp}
}

// Execute fetches a single item by id.
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}

	item, err := h.svc.Item.GetByID(r.Context(), id)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, NewItemResponse(item))
}
