package models

import "time"

type Comment struct {
	ID         int64
	Text       string
	ItemID     int64
	AuthorID   int64
	AuthorName string
	Created    time.Time
}

type NewComment struct {
	Text string `json:"text" binding:"notblank"`
}

type CommentResponse struct {
	ID         int64    `json:"id"`
	Text       string   `json:"text"`
	AuthorName string   `json:"authorName"`
	Created    DateTime `json:"created"`
}
