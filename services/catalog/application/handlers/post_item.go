package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	pkgvalidator "github.com/ghuser/catalog/pkg/validator"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// CreateItemRequest is the request body for POST /items. Only name and price
// are required at the transport layer; the domain layer validates the rest
// field by field so all violations are reported together. Pointer fields
// distinguish "absent" from zero values, and price 0 is legal.
type CreateItemRequest struct {
	Name        *string        `json:"name" validate:"required"`
	Description *string        `json:"description"`
	Price       *float64       `json:"price" validate:"required"`
	Category    *string        `json:"category"`
	SKU         *string        `json:"sku"`
	Quantity    *float64       `json:"quantity"`
	InStock     *bool          `json:"inStock"`
	Metadata    map[string]any `json:"metadata"`
}

func (req *CreateItemRequest) patch() *models.Patch {
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

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	svc  *appsvcs.Services
	resp *errhttp.Responder
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services, resp *errhttp.Responder) *PostItemHandler {
	return &PostItemHandler{svc: svc, resp: resp}
}

// Execute creates a new catalog item.
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, err := pkgvalidator.DecodeValid[CreateItemRequest](r)
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}

	item, err := h.svc.Item.Create(r.Context(), req.patch())
	if err != nil {
		h.resp.WriteError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, NewItemResponse(item))
}
