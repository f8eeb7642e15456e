package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// DefaultPageSize bounds unconstrained list queries.
const DefaultPageSize = 100

// ListOptions contains filter, pagination, and sort parameters for List.
// SortBy uses wire-level (camelCase) field names; the repository translates
// them to column names and rejects anything outside the mapping.
type ListOptions struct {
	Category  string // empty means no category filter
	Limit     int
	Offset    int
	SortBy    string // wire field name, e.g. "createdAt"
	SortOrder string // "asc" or "desc"
}

// PriceStats is the aggregate over all item prices. All fields are zero
// when the table is empty.
type PriceStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
type ItemRepository interface {
	// Insert persists a new Item. Returns a ConflictError when the SKU
	// collides with an existing non-null value.
	Insert(ctx context.Context, item *models.Item) error

	// GetByID returns the item or ErrItemNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)

	// GetBySKU returns the item with the given SKU, or nil with no error
	// when absent.
	GetBySKU(ctx context.Context, sku string) (*models.Item, error)

	// List returns items per opts. An unknown category yields an empty
	// slice, not an error.
	List(ctx context.Context, opts ListOptions) ([]*models.Item, error)

	// ListInStock returns all items whose stock flag is true.
	ListInStock(ctx context.Context) ([]*models.Item, error)

	// Update persists all fields of an existing Item. Returns
	// ErrItemNotFound when the id is absent and ConflictError on SKU
	// collision.
	Update(ctx context.Context, item *models.Item) error

	// Delete removes an item by ID. Returns ErrItemNotFound when absent,
	// so a repeated delete of the same id keeps reporting not found.
	Delete(ctx context.Context, id uuid.UUID) error

	// PriceStats returns min/max/avg price over all items.
	PriceStats(ctx context.Context) (PriceStats, error)
}
