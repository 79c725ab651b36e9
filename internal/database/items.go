package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const itemColumns = `id, name, description, available, owner_id, request_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item      models.Item
		requestID sql.NullInt64
	)
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Available,
		&item.OwnerID, &requestID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if requestID.Valid {
		item.RequestID = &requestID.Int64
	}
	return &item, nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...interface{}) ([]*models.Item, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateItem добавляет вещь в каталог
func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	now := time.Now()
	id, err := db.insert(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.OwnerID, nullInt64(item.RequestID), utc(now), utc(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", classify(err))
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// GetItemByID возвращает вещь по ID
func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	item, err := scanItem(db.queryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, classify(err))
	}
	return item, nil
}

// GetItemsByOwner возвращает страницу вещей владельца в порядке ID
func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error) {
	items, err := db.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of owner %d: %w", ownerID, err)
	}
	return items, nil
}

// GetItemsByRequestIDs возвращает вещи, созданные в ответ на запросы
func (db *DB) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return []*models.Item{}, nil
	}
	args := make([]interface{}, len(requestIDs))
	for i, id := range requestIDs {
		args[i] = id
	}
	items, err := db.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE request_id IN (`+placeholders(len(args))+`) ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items by requests: %w", err)
	}
	return items, nil
}

// SearchItems ищет доступные вещи по подстроке в названии или описании без учета регистра
func (db *DB) SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	items, err := db.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items
         WHERE available = ?
           AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')
         ORDER BY id LIMIT ? OFFSET ?`,
		true, pattern, pattern, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

// UpdateItem сохраняет изменяемые поля вещи
func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	now := time.Now()
	result, err := db.exec(ctx,
		`UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, utc(now), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	if err := checkAffected(result, ErrNotFound); err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	item.UpdatedAt = now
	return nil
}

// DeleteItem удаляет вещь вместе с бронированиями и комментариями
func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.exec(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	if err := checkAffected(result, ErrNotFound); err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
