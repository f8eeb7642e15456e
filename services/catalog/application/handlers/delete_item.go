package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// DeleteItemResponse confirms a successful delete.
type DeleteItemResponse struct {
	Message string `json:"message"`
}

// DeleteItemHandler handles DELETE /items/{id} requests.
type DeleteItemHandler struct {
	svc  *appsvcs.Services
	resp *errhttp.Responder
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, resp *errhttp.Responder) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, resp: resp}
}

// Execute deletes an item. Deleting an already-deleted id reports not found
// again rather than succeeding silently.
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}

	if err := h.svc.Item.Delete(r.Context(), id); err != nil {
		h.resp.WriteError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, DeleteItemResponse{Message: "Item deleted successfully"})
}
