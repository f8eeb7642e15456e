package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	pkgvalidator "github.com/ghuser/catalog/pkg/validator"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	domain "github.com/ghuser/catalog/services/catalog/domain"
)

// UpdateStockRequest is the request body for PATCH /items/{id}/stock. At
// least one of the two fields must be supplied.
type UpdateStockRequest struct {
	InStock  *bool    `json:"inStock"`
	Quantity *float64 `json:"quantity" validate:"omitempty,gte=0"`
}

// PatchStockHandler handles PATCH /items/{id}/stock requests.
type PatchStockHandler struct {
	svc  *appsvcs.Services
	resp *errhttp.Responder
}

// NewPatchStockHandler returns a PatchStockHandler backed by the given services.
func NewPatchStockHandler(svc *appsvcs.Services, resp *errhttp.Responder) *PatchStockHandler {
	return &PatchStockHandler{svc: svc, resp: resp}
}

// Execute updates only the stock flag and/or quantity of an item.
func (h *PatchStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}

	req, err := pkgvalidator.DecodeValid[UpdateStockRequest](r)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}
	if req.InStock == nil && req.Quantity == nil {
		h.resp.WriteError(w, r, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "body", Message: "inStock or quantity is required"},
		}})
		return
	}

	item, err := h.svc.Item.UpdateStock(r.Context(), id, req.InStock, req.Quantity)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, NewItemResponse(item))
}
