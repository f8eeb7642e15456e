package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of item categories.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryOther       Category = "other"
)

// Categories lists every valid category value.
var Categories = []Category{CategoryElectronics, CategoryClothing, CategoryBooks, CategoryOther}

// ValidCategory reports whether s names a known category.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Item is the core aggregate for this bounded context: one catalog record.
// Description and SKU are nil when absent; a nil SKU is excluded from the
// uniqueness constraint.
type Item struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Price       float64
	Category    Category
	SKU         *string
	Quantity    int
	InStock     bool
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Patch carries the client-supplied fields of a create or partial-update
// request. A nil pointer means the field was not supplied. Quantity is a
// float at the boundary: fractional input is accepted and truncated toward
// zero during normalization.
type Patch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	SKU         *string
	Quantity    *float64
	InStock     *bool
	Metadata    map[string]any
}

// Normalize mutates the patch in place: string fields are trimmed, a
// negative price is clamped to zero rather than rejected, and quantity is
// truncated toward zero. Runs before validation.
func (p *Patch) Normalize() {
	if p.Name != nil {
		*p.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		*p.Description = strings.TrimSpace(*p.Description)
	}
	if p.SKU != nil {
		*p.SKU = strings.TrimSpace(*p.SKU)
	}
	if p.Category != nil {
		*p.Category = strings.TrimSpace(*p.Category)
	}
	if p.Price != nil && *p.Price < 0 {
		*p.Price = 0
	}
	if p.Quantity != nil {
		*p.Quantity = math.Trunc(*p.Quantity)
	}
}

// NewItem constructs an Item from a normalized create patch, generating the
// ID and timestamps and applying field defaults (category other, quantity 0,
// in stock, empty metadata). The patch must already be validated.
func NewItem(p *Patch) *Item {
	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.New(),
		Category:  CategoryOther,
		InStock:   true,
		Metadata:  map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	item.Apply(p)
	item.CreatedAt = now
	item.UpdatedAt = now
	return item
}

// Apply copies all supplied patch fields onto the item and refreshes
// UpdatedAt. An empty SKU or description is stored as absent; an empty
// category is treated as unset and keeps the current value.
func (i *Item) Apply(p *Patch) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		if *p.Description == "" {
			i.Description = nil
		} else {
			i.Description = p.Description
		}
	}
	if p.Price != nil {
		i.Price = *p.Price
	}
	if p.Category != nil && *p.Category != "" {
		i.Category = Category(*p.Category)
	}
	if p.SKU != nil {
		if *p.SKU == "" {
			i.SKU = nil
		} else {
			i.SKU = p.SKU
		}
	}
	if p.Quantity != nil {
		i.Quantity = int(*p.Quantity)
	}
	if p.InStock != nil {
		i.InStock = *p.InStock
	}
	if p.Metadata != nil {
		i.Metadata = p.Metadata
	}
	i.UpdatedAt = time.Now().UTC()
}
