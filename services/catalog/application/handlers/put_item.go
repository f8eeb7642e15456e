package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	pkgvalidator "github.com/ghuser/catalog/pkg/validator"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// UpdateItemRequest is the request body for PUT /items/{id}. Every field is
// optional; a supplied price must be non-negative at the transport layer.
// Unlike create, a negative price here is rejected, not clamped.
type UpdateItemRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Price       *float64       `json:"price" validate:"omitempty,gte=0"`
	Category    *string        `json:"category"`
	SKU         *string        `json:"sku"`
	Quantity    *float64       `json:"quantity"`
	InStock     *bool          `json:"inStock"`
	Metadata    map[string]any `json:"metadata"`
}

func (req *UpdateItemRequest) patch() *models.Patch {
	return &models.Patch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		SKU:         req.SKU,
		Quantity:    req.Quantity,
		InStock:     req.InStock,
		Metadata:    req.Metadata,
	}
}

// PutItemHandler handles PUT /items/{id} requests.
type PutItemHandler struct {
	svc  *appsvcs.Services
	resp *errhttp.Responder
}

// NewPutItemHandler returns a PutItemHandler backed by the given services.
func NewPutItemHandler(svc *appsvcs.Services, resp *errhttp.Responder) *PutItemHandler {
	return &PutItemHandler{svc: svc, resp: resp}
}

// Execute applies a partial update to an existing item.
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}

	req, err := pkgvalidator.DecodeValid[UpdateItemRequest](r)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}

	item, err := h.svc.Item.Update(r.Context(), id, req.patch())
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, NewItemResponse(item))
}
