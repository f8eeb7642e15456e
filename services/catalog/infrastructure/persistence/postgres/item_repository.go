package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/events"
	domain "github.com/ghuser/catalog/services/catalog/domain"
	domainevents "github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
)

// columnByField maps wire-level (camelCase) field names to storage columns.
// The translation between client naming and column naming happens exactly
// once, here at the persistence boundary; sort parameters outside this map
// are rejected.
var columnByField = map[string]string{
	"id":          "id",
	"name":        "name",
	"description": "description",
	"price":       "price",
	"category":    "category",
	"sku":         "sku",
	"quantity":    "quantity",
	"inStock":     "in_stock",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

const selectColumns = "id, name, description, price, category, sku, quantity, in_stock, metadata, created_at, updated_at"

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewItemRepository returns an ItemRepository backed by the given pool and
// event bus. The bus publishes item lifecycle events in the same transaction
// as the write; pass nil to disable publishing.
func NewItemRepository(db *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: db, bus: bus}
}

// Insert persists a new Item and publishes item.created within the same
// transaction. A unique violation on the partial SKU index surfaces as a
// ConflictError.
func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		meta, err := json.Marshal(item.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (`+selectColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			item.ID, item.Name, item.Description, item.Price, string(item.Category),
			item.SKU, item.Quantity, item.InStock, meta, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return skuConflict(item.SKU)
			}
			return fmt.Errorf("insert item: %w", err)
		}

		if r.bus != nil {
			if err := r.publish(tx, domainevents.TopicItemCreated, item, item.CreatedAt); err != nil {
				return fmt.Errorf("publish item created: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves an Item by ID. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// GetBySKU retrieves an Item by SKU. Absence is not an error: returns
// (nil, nil) when no item carries the SKU.
func (r *ItemRepository) GetBySKU(ctx context.Context, sku string) (*models.Item, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM items WHERE sku = $1`, sku)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query item by sku: %w", err)
	}
	return item, nil
}

// List retrieves items filtered, paginated, and sorted per opts.
func (r *ItemRepository) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Item, error) {
	column, ok := columnByField[opts.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		direction = "ASC"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = repositories.DefaultPageSize
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + selectColumns + ` FROM items`
	args := []any{}
	if opts.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, opts.Category)
	}
	query += fmt.Sprintf(` ORDER BY %s %s LIMIT %d OFFSET %d`, column, direction, limit, offset)

	return r.queryItems(ctx, query, args...)
}

// ListInStock returns all items whose stock flag is true.
func (r *ItemRepository) ListInStock(ctx context.Context) ([]*models.Item, error) {
	return r.queryItems(ctx,
		`SELECT `+selectColumns+` FROM items WHERE in_stock = TRUE ORDER BY created_at DESC`)
}

// Update persists all fields of an existing Item and publishes item.updated
// within the same transaction.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		meta, err := json.Marshal(item.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE items
			SET name = $2, description = $3, price = $4, category = $5, sku = $6,
			    quantity = $7, in_stock = $8, metadata = $9, updated_at = $10
			WHERE id = $1`,
			item.ID, item.Name, item.Description, item.Price, string(item.Category),
			item.SKU, item.Quantity, item.InStock, meta, item.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return skuConflict(item.SKU)
			}
			return fmt.Errorf("update item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		if n == 0 {
			return domain.ErrItemNotFound
		}

		if r.bus != nil {
			if err := r.publish(tx, domainevents.TopicItemUpdated, item, item.UpdatedAt); err != nil {
				return fmt.Errorf("publish item updated: %w", err)
			}
		}
		return nil
	})
}

// Delete removes an item by ID and publishes item.deleted within the same
// transaction. Returns ErrItemNotFound when no row matches, so repeated
// deletes keep failing the same way.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if n == 0 {
			return domain.ErrItemNotFound
		}

		if r.bus != nil {
			evt := domainevents.ItemEvent{
				EventID:    uuid.New(),
				Version:    1,
				ItemID:     id,
				OccurredAt: time.Now().UTC(),
			}
			if err := r.publishEvent(tx, domainevents.TopicItemDeleted, evt); err != nil {
				return fmt.Errorf("publish item deleted: %w", err)
			}
		}
		return nil
	})
}

// PriceStats returns min/max/avg price across all items, zero-valued when
// the table is empty.
func (r *ItemRepository) PriceStats(ctx context.Context) (repositories.PriceStats, error) {
	var stats repositories.PriceStats
	err := r.db.DB().QueryRowContext(ctx, `
		SELECT COALESCE(MIN(price), 0), COALESCE(MAX(price), 0), COALESCE(AVG(price), 0)
		FROM items`).Scan(&stats.Min, &stats.Max, &stats.Avg)
	if err != nil {
		return repositories.PriceStats{}, fmt.Errorf("query price stats: %w", err)
	}
	return stats, nil
}

func (r *ItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	items := []*models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) publish(tx *sql.Tx, topic string, item *models.Item, occurredAt time.Time) error {
	return r.publishEvent(tx, topic, domainevents.ItemEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemID:     item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Category:   string(item.Category),
		SKU:        item.SKU,
		Quantity:   item.Quantity,
		InStock:    item.InStock,
		OccurredAt: occurredAt,
	})
}

func (r *ItemRepository) publishEvent(tx *sql.Tx, topic string, evt domainevents.ItemEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", evt.EventID.String())
	msg.Metadata.Set("event_version", "1")
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return p.Publish(topic, msg)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.Item, error) {
	var (
		item     models.Item
		category string
		meta     []byte
	)
	err := s.Scan(
		&item.ID, &item.Name, &item.Description, &item.Price, &category,
		&item.SKU, &item.Quantity, &item.InStock, &meta, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Category = models.Category(category)
	item.Metadata = map[string]any{}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &item.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &item, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func skuConflict(sku *string) error {
	var value any
	if sku != nil {
		value = *sku
	}
	return &domain.ConflictError{Field: "sku", Value: value}
}
