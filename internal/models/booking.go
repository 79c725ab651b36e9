package models

import (
	"fmt"
	"strings"
	"time"
)

type Booking struct {
	ID        int64
	Start     time.Time
	End       time.Time
	ItemID    int64
	BookerID  int64
	Status    BookingStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	// Filled from the items table on read.
	ItemName    string
	ItemOwnerID int64
}

// BookingState filters booking lists relative to the current time or status.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var bookingStates = []BookingState{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// ParseBookingState accepts a state name case-insensitively. Empty means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StateAll, nil
	}
	for _, s := range bookingStates {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("Unknown state: %s", raw)
}

type NewBooking struct {
	ItemID *int64    `json:"itemId" binding:"required"`
	Start  *DateTime `json:"start" binding:"required,presentorfuture"`
	End    *DateTime `json:"end" binding:"required,future"`
}

type BookingResponse struct {
	ID     int64         `json:"id"`
	Start  DateTime      `json:"start"`
	End    DateTime      `json:"end"`
	Status BookingStatus `json:"status"`
	Booker BookerRef     `json:"booker"`
	Item   ItemRef       `json:"item"`
}

type BookerRef struct {
	ID int64 `json:"id"`
}

type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
