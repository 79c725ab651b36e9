package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

const userColumns = `id, name, email, created_at, updated_at`

// CreateUser создает пользователя; занятый email дает ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	id, err := db.insert(ctx,
		`INSERT INTO users (name, email, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		user.Name, user.Email, utc(now), utc(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err))
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetUserByID возвращает пользователя по ID
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := db.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, classify(err))
	}
	return &user, nil
}

// GetUserByEmail ищет пользователя по email
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := db.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", classify(err))
	}
	return &user, nil
}

// GetAllUsers возвращает всех пользователей
func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := db.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// UpdateUser сохраняет имя и email пользователя
func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	result, err := db.exec(ctx,
		`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
		user.Name, user.Email, utc(now), user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, classify(err))
	}
	if err := checkAffected(result, ErrNotFound); err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	user.UpdatedAt = now
	return nil
}

// DeleteUser удаляет пользователя вместе с его вещами, бронированиями и запросами
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if err := checkAffected(result, ErrNotFound); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

func (db *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int
	if err := db.queryRow(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", id, err)
	}
	return count > 0, nil
}
