package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Item is the wire representation of a catalog item as the API returns it.
type Item struct {
	ID          string         `json:"id"`
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

// ItemPayload carries the fields of a create or update request. Nil fields
// are omitted from the JSON body.
type ItemPayload struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Category    *string        `json:"category,omitempty"`
	SKU         *string        `json:"sku,omitempty"`
	Quantity    *float64       `json:"quantity,omitempty"`
	InStock     *bool          `json:"inStock,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// StockPayload carries the fields of a stock-only update.
type StockPayload struct {
	InStock  *bool    `json:"inStock,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
}

// CategoryAll selects every category in the filtered view.
const CategoryAll = "all"

// ItemStore is an in-memory cache of fetched items with derived
// filtered/sorted views and async mutation actions. Derived views are
// recomputed on every read, never stored.
//
// Actions are not serialized against each other: two overlapping mutations
// apply last-write-wins to the cache when responses arrive out of order.
type ItemStore struct {
	gw *Gateway

	mu               sync.Mutex
	items            []Item
	loading          bool
	lastErr          string
	selectedCategory string
	sortBy           string
	sortOrder        string
}

// NewItemStore returns a store with the default view settings: all
// categories, sorted by createdAt descending.
func NewItemStore(gw *Gateway) *ItemStore {
	return &ItemStore{
		gw:               gw,
		items:            []Item{},
		selectedCategory: CategoryAll,
		sortBy:           "createdAt",
		sortOrder:        "desc",
	}
}

// Items returns a copy of the full cached set.
func (s *ItemStore) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Loading reports whether an action is in flight.
func (s *ItemStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the display message captured by the most recent failed
// action, empty when the last action succeeded.
func (s *ItemStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// SetCategory changes the category filter. CategoryAll disables filtering.
func (s *ItemStore) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedCategory = category
}

// SetSort changes the active sort field and direction.
func (s *ItemStore) SetSort(field, order string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortBy = field
	s.sortOrder = order
}

// FilteredItems returns the category-filtered subset, stably sorted by the
// active field. Date fields compare by timestamp, numeric fields by value,
// everything else by natural string order.
func (s *ItemStore) FilteredItems() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if s.selectedCategory == CategoryAll || item.Category == s.selectedCategory {
			filtered = append(filtered, item)
		}
	}

	asc := s.sortOrder == "asc"
	field := s.sortBy
	sort.SliceStable(filtered, func(i, j int) bool {
		less := lessByField(&filtered[i], &filtered[j], field)
		if asc {
			return less
		}
		return lessByField(&filtered[j], &filtered[i], field)
	})
	return filtered
}

// Categories returns the distinct categories present in the cache, prefixed
// with CategoryAll, in first-seen order.
func (s *ItemStore) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []string{CategoryAll}
	seen := map[string]bool{}
	for _, item := range s.items {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		out = append(out, item.Category)
	}
	return out
}

// TotalValue sums price across the full cached set, ignoring the active
// category filter.
func (s *ItemStore) TotalValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum float64
	for _, item := range s.items {
		sum += item.Price
	}
	return sum
}

// GetItemByID returns the cached item with the given id, if present.
func (s *ItemStore) GetItemByID(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Fetch replaces the cache with the server's item list.
func (s *ItemStore) Fetch(ctx context.Context) ([]Item, error) {
	s.begin()
	var items []Item
	err := s.gw.Get(ctx, "/items", &items)
	if err != nil {
		s.fail(err, "Could not fetch items")
		return nil, err
	}

	s.mu.Lock()
	if items == nil {
		items = []Item{}
	}
	s.items = items
	s.loading = false
	s.mu.Unlock()
	return items, nil
}

// Create posts a new item and appends the server's copy to the cache.
func (s *ItemStore) Create(ctx context.Context, payload ItemPayload) (*Item, error) {
	s.begin()
	var created Item
	if err := s.gw.Post(ctx, "/items", payload, &created); err != nil {
		s.fail(err, "Could not create item")
		return nil, err
	}

	s.mu.Lock()
	s.items = append(s.items, created)
	s.loading = false
	s.mu.Unlock()
	return &created, nil
}

// Update puts a partial update and replaces the cached copy in place.
func (s *ItemStore) Update(ctx context.Context, id string, payload ItemPayload) (*Item, error) {
	s.begin()
	var updated Item
	if err := s.gw.Put(ctx, fmt.Sprintf("/items/%s", id), payload, &updated); err != nil {
		s.fail(err, "Could not update item")
		return nil, err
	}

	s.replace(updated)
	return &updated, nil
}

// UpdateStock patches only the stock flag and quantity.
func (s *ItemStore) UpdateStock(ctx context.Context, id string, payload StockPayload) (*Item, error) {
	s.begin()
	var updated Item
	if err := s.gw.Patch(ctx, fmt.Sprintf("/items/%s/stock", id), payload, &updated); err != nil {
		s.fail(err, "Could not update stock")
		return nil, err
	}

	s.replace(updated)
	return &updated, nil
}

// Delete removes the item remotely, then filters it out of the cache.
func (s *ItemStore) Delete(ctx context.Context, id string) error {
	s.begin()
	if err := s.gw.Delete(ctx, fmt.Sprintf("/items/%s", id)); err != nil {
		s.fail(err, "Could not delete item")
		return err
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.loading = false
	s.mu.Unlock()
	return nil
}

func (s *ItemStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

// fail records the server-derived display message, falling back to a generic
// one when the failure carried no message.
func (s *ItemStore) fail(err error, fallback string) {
	msg := fallback
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}

	s.mu.Lock()
	s.lastErr = msg
	s.loading = false
	s.mu.Unlock()
}

func (s *ItemStore) replace(updated Item) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == updated.ID {
			s.items[i] = updated
			break
		}
	}
	s.loading = false
	s.mu.Unlock()
}

func lessByField(a, b *Item, field string) bool {
	switch field {
	case "createdAt":
		return a.CreatedAt.Before(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Before(b.UpdatedAt)
	case "price":
		return a.Price < b.Price
	case "quantity":
		return a.Quantity < b.Quantity
	case "category":
		return strings.Compare(a.Category, b.Category) < 0
	default:
		return strings.Compare(a.Name, b.Name) < 0
	}
}
