package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics for item lifecycle events.
const (
	TopicItemCreated = "item.created"
	TopicItemUpdated = "item.updated"
	TopicItemDeleted = "item.deleted"
)

// ItemEvent is published after an item mutation is persisted. Created and
// updated events carry the full record snapshot so subscribers can maintain
// read models without querying back; deleted events carry only the id.
type ItemEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID     uuid.UUID `json:"item_id"`
	Name       string    `json:"name,omitempty"`
	Price      float64   `json:"price,omitempty"`
	Category   string    `json:"category,omitempty"`
	SKU        *string   `json:"sku,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	InStock    bool      `json:"in_stock,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
