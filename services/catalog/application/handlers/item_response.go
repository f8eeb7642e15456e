package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	domain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// ItemResponse is the wire representation of a catalog item. Field names are
// camelCase to match the public API contract.
type ItemResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Price       float64        `json:"price"`
	Category    string         `json:"category"`
	SKU         *string        `json:"sku"`
	Quantity    int            `json:"quantity"`
	InStock     bool           `json:"inStock"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewItemResponse maps a domain item to its wire representation.
func NewItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Category:    string(item.Category),
		SKU:         item.SKU,
		Quantity:    item.Quantity,
		InStock:     item.InStock,
		Metadata:    item.Metadata,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// NewItemResponses maps a slice of domain items, returning an empty (non-nil)
// slice for an empty input so the JSON encoding is [] rather than null.
func NewItemResponses(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewItemResponse(item))
	}
	return out
}

// itemID extracts and parses the {id} URL parameter. A malformed id is a
// validation error, not a not-found.
func itemID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "id", Message: "Invalid item id", Value: raw},
		}}
	}
	return id, nil
}
