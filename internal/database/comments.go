package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

// CreateComment сохраняет отзыв; AuthorName заполняется вызывающим
func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	id, err := db.insert(ctx,
		`INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`,
		comment.Text, comment.ItemID, comment.AuthorID, utc(comment.Created),
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", classify(err))
	}
	comment.ID = id
	return nil
}

// GetCommentsByItem возвращает отзывы о вещи в порядке создания
func (db *DB) GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	rows, err := db.query(ctx,
		`SELECT c.id, c.text, c.item_id, c.author_id, u.name, c.created
           FROM comments c
           JOIN users u ON u.id = c.author_id
          WHERE c.item_id = ?
          ORDER BY c.created, c.id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of item %d: %w", itemID, err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Created); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
