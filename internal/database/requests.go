package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

const requestColumns = `id, description, requestor_id, created`

func (db *DB) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*models.ItemRequest, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*models.ItemRequest, 0)
	for rows.Next() {
		var r models.ItemRequest
		if err := rows.Scan(&r.ID, &r.Description, &r.RequestorID, &r.Created); err != nil {
			return nil, err
		}
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}

// CreateRequest публикует запрос на вещь
func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	id, err := db.insert(ctx,
		`INSERT INTO item_requests (description, requestor_id, created) VALUES (?, ?, ?)`,
		request.Description, request.RequestorID, utc(request.Created),
	)
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", classify(err))
	}
	request.ID = id
	return nil
}

// GetRequestByID возвращает запрос по ID
func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var r models.ItemRequest
	err := db.queryRow(ctx, `SELECT `+requestColumns+` FROM item_requests WHERE id = ?`, id).
		Scan(&r.ID, &r.Description, &r.RequestorID, &r.Created)
	if err != nil {
		return nil, fmt.Errorf("failed to get item request %d: %w", id, classify(err))
	}
	return &r, nil
}

// GetRequestsByRequestor возвращает запросы пользователя, новые сначала
func (db *DB) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	requests, err := db.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM item_requests WHERE requestor_id = ? ORDER BY created DESC, id DESC`,
		requestorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests of user %d: %w", requestorID, err)
	}
	return requests, nil
}

// GetRequestsNotOwned возвращает страницу чужих запросов, новые сначала
func (db *DB) GetRequestsNotOwned(ctx context.Context, userID int64, offset, limit int) ([]*models.ItemRequest, error) {
	requests, err := db.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM item_requests WHERE requestor_id <> ? ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests of other users: %w", err)
	}
	return requests, nil
}
