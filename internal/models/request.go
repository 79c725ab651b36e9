package models

import "time"

// ItemRequest is a user's public ask for an item that is not in the catalog yet.
type ItemRequest struct {
	ID          int64
	Description string
	RequestorID int64
	Created     time.Time
}

type NewItemRequest struct {
	Description string `json:"description" binding:"notblank"`
}

type ItemRequestResponse struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Created     DateTime `json:"created"`
}

type ItemRequestWithItemsResponse struct {
	ItemRequestResponse
	Items []ItemResponse `json:"items"`
}
