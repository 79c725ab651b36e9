package models

import "time"

type Item struct {
	ID          int64
	Name        string
	Description string
	Available   bool
	OwnerID     int64
	RequestID   *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemUpdate carries a partial update; nil fields are left untouched.
type ItemUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

func (u ItemUpdate) Apply(item *Item) {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Description != nil {
		item.Description = *u.Description
	}
	if u.Available != nil {
		item.Available = *u.Available
	}
}

// IsEmpty reports whether the update changes nothing.
func (u ItemUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Available == nil
}

type NewItem struct {
	Name        string `json:"name" binding:"notblank"`
	Description string `json:"description" binding:"notblank"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"requestId"`
}

type ItemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

// ItemDetailsResponse is an item with its booking window and comments.
// LastBooking and NextBooking are filled only for the item owner.
type ItemDetailsResponse struct {
	ItemResponse
	LastBooking *BookingShort     `json:"lastBooking"`
	NextBooking *BookingShort     `json:"nextBooking"`
	Comments    []CommentResponse `json:"comments"`
}

type BookingShort struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}
