package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_date, b.end_date, b.item_id, b.booker_id, b.status,
       b.created_at, b.updated_at, i.name, i.owner_id
  FROM bookings b
  JOIN items i ON i.id = b.item_id`

func scanBooking(row rowScanner) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(&booking.ID, &booking.Start, &booking.End, &booking.ItemID, &booking.BookerID,
		&booking.Status, &booking.CreatedAt, &booking.UpdatedAt, &booking.ItemName, &booking.ItemOwnerID)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// CreateBooking создает бронирование; ItemName и ItemOwnerID заполняются вызывающим
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	id, err := db.insert(ctx,
		`INSERT INTO bookings (start_date, end_date, item_id, booker_id, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		utc(booking.Start), utc(booking.End), booking.ItemID, booking.BookerID, booking.Status, utc(now), utc(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", classify(err))
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

// GetBooking возвращает бронирование по ID
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := scanBooking(db.queryRow(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, classify(err))
	}
	return booking, nil
}

// UpdateBookingStatus переводит бронирование из WAITING в новый статус.
// Если бронирование уже рассмотрено, возвращает ErrConcurrentModification.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	result, err := db.exec(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		status, utc(time.Now()), id, models.StatusWaiting,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if err := checkAffected(result, ErrConcurrentModification); err != nil {
		return fmt.Errorf("failed to update booking %d status: %w", id, err)
	}
	return nil
}

// stateFilter возвращает условие выборки для состояния бронирования.
func stateFilter(state models.BookingState, now time.Time) (string, []interface{}) {
	now = utc(now)
	switch state {
	case models.StateCurrent:
		return ` AND b.start_date < ? AND b.end_date > ?`, []interface{}{now, now}
	case models.StatePast:
		return ` AND b.end_date < ?`, []interface{}{now}
	case models.StateFuture:
		return ` AND b.start_date > ?`, []interface{}{now}
	case models.StateWaiting:
		return ` AND b.status = ?`, []interface{}{models.StatusWaiting}
	case models.StateRejected:
		return ` AND b.status = ?`, []interface{}{models.StatusRejected}
	default:
		return "", nil
	}
}

func (db *DB) listBookings(ctx context.Context, column string, userID int64, state models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error) {
	filter, args := stateFilter(state, now)
	query := bookingSelect + ` WHERE ` + column + ` = ?` + filter + ` ORDER BY b.start_date DESC, b.id DESC LIMIT ? OFFSET ?`

	all := make([]interface{}, 0, len(args)+3)
	all = append(all, userID)
	all = append(all, args...)
	all = append(all, limit, offset)

	bookings, err := db.queryBookings(ctx, query, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetBookerBookings возвращает бронирования пользователя, новые сначала
func (db *DB) GetBookerBookings(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error) {
	return db.listBookings(ctx, "b.booker_id", bookerID, state, now, offset, limit)
}

// GetOwnerBookings возвращает бронирования вещей владельца, новые сначала
func (db *DB) GetOwnerBookings(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error) {
	return db.listBookings(ctx, "i.owner_id", ownerID, state, now, offset, limit)
}

func (db *DB) optionalBooking(ctx context.Context, query string, args ...interface{}) (*models.Booking, error) {
	booking, err := scanBooking(db.queryRow(ctx, query, args...))
	if errors.Is(classify(err), ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// GetLastBooking возвращает последнее начавшееся подтвержденное бронирование вещи или nil
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	booking, err := db.optionalBooking(ctx,
		bookingSelect+` WHERE b.item_id = ? AND b.status = ? AND b.start_date < ? ORDER BY b.end_date DESC LIMIT 1`,
		itemID, models.StatusApproved, utc(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking of item %d: %w", itemID, err)
	}
	return booking, nil
}

// GetNextBooking возвращает ближайшее будущее подтвержденное бронирование вещи или nil
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	booking, err := db.optionalBooking(ctx,
		bookingSelect+` WHERE b.item_id = ? AND b.status = ? AND b.start_date > ? ORDER BY b.start_date ASC LIMIT 1`,
		itemID, models.StatusApproved, utc(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking of item %d: %w", itemID, err)
	}
	return booking, nil
}

// HasFinishedBooking проверяет, что пользователь завершил подтвержденное бронирование вещи
func (db *DB) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	var count int
	err := db.queryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE item_id = ? AND booker_id = ? AND status = ? AND end_date < ?`,
		itemID, bookerID, models.StatusApproved, utc(now),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}
