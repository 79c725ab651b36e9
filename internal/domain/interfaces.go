package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	GetBookerBookings(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error)
	GetOwnerBookings(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error)
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetRequestsNotOwned(ctx context.Context, userID int64, offset, limit int) ([]*models.ItemRequest, error)
}

// ItemFinder resolves items that fulfill item requests.
type ItemFinder interface {
	FindByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64][]models.ItemResponse, error)
}

// RateLimitStore counts calls per key in fixed windows.
type RateLimitStore interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
