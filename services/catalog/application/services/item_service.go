package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgcache "github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	domainsvcs "github.com/ghuser/catalog/services/catalog/domain/services"
)

// ItemService orchestrates normalization, validation, and persistence of
// catalog items. Event publishing is handled by the repository layer (outbox
// pattern). Single-record reads are served from the Redis cache when
// available; the worker keeps it warm from item lifecycle events.
type ItemService struct {
	repo  repositories.ItemRepository
	cache *pkgcache.ItemCache
}

// NewItemService returns an ItemService wired with the given repository and
// cache. The cache may be nil, in which case all reads hit Postgres.
func NewItemService(repo repositories.ItemRepository, itemCache *pkgcache.ItemCache) *ItemService {
	return &ItemService{repo: repo, cache: itemCache}
}

// Create normalizes and validates a create patch, then persists a new Item.
// Normalization runs first: strings trimmed, negative price clamped to zero,
// fractional quantity truncated. Validation reports all violations together.
func (s *ItemService) Create(ctx context.Context, patch *models.Patch) (*models.Item, error) {
	patch.Normalize()
	if err := domainsvcs.ValidateCreate(patch); err != nil {
		return nil, err
	}

	item := models.NewItem(patch)
	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	return item, nil
}

// GetByID retrieves an Item using a read-through cache pattern:
//  1. Check Redis first.
//  2. On cache miss (or cache error), query Postgres.
//  3. Asynchronously warm the cache with the Postgres result.
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		// Any cache error, miss or otherwise, falls through to Postgres.
		if cached, err := s.cache.Get(ctx, id); err == nil {
			return fromCached(cached), nil
		}
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		go func() {
			_ = s.cache.Set(context.Background(), toCached(item))
		}()
	}

	return item, nil
}

// GetBySKU returns the item with the given SKU, or nil when absent.
// Absence is not an error.
func (s *ItemService) GetBySKU(ctx context.Context, sku string) (*models.Item, error) {
	return s.repo.GetBySKU(ctx, sku)
}

// List returns items filtered, paginated, and sorted per opts. Unset limit
// and sort fall back to the repository defaults (100 rows, createdAt desc).
func (s *ItemService) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Item, error) {
	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ListInStock returns all items whose stock flag is true.
func (s *ItemService) ListInStock(ctx context.Context) ([]*models.Item, error) {
	items, err := s.repo.ListInStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list in-stock items: %w", err)
	}
	return items, nil
}

// Update applies a partial-field update. Only supplied fields are
// re-validated; updatedAt is refreshed on success. Returns ErrItemNotFound
// when the id is absent and ConflictError on SKU collision.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, patch *models.Patch) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Normalize()
	if err := domainsvcs.ValidateUpdate(patch); err != nil {
		return nil, err
	}

	item.Apply(patch)
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Delete(context.Background(), id)
	}
	return item, nil
}

// UpdateStock is the narrow mutation: it toggles the stock flag and/or
// adjusts quantity without touching any other field.
func (s *ItemService) UpdateStock(ctx context.Context, id uuid.UUID, inStock *bool, quantity *float64) (*models.Item, error) {
	return s.Update(ctx, id, &models.Patch{InStock: inStock, Quantity: quantity})
}

// Delete removes an item by ID. Repeated deletes of the same id keep
// reporting ErrItemNotFound after the first success.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(context.Background(), id)
	}
	return nil
}

// PriceStats returns min/max/avg price across all items, zero-valued when
// the catalog is empty.
func (s *ItemService) PriceStats(ctx context.Context) (repositories.PriceStats, error) {
	stats, err := s.repo.PriceStats(ctx)
	if err != nil {
		return repositories.PriceStats{}, fmt.Errorf("price stats: %w", err)
	}
	return stats, nil
}

func toCached(item *models.Item) *pkgcache.CachedItem {
	return &pkgcache.CachedItem{
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

func fromCached(c *pkgcache.CachedItem) *models.Item {
	meta := c.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return &models.Item{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price,
		Category:    models.Category(c.Category),
		SKU:         c.SKU,
		Quantity:    c.Quantity,
		InStock:     c.InStock,
		Metadata:    meta,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
