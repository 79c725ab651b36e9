package service

import (
	"context"
	"io"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

var testLogger = zerolog.New(io.Discard)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserRepo) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *mockUserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserRepo) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockUserRepo) UserExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) CreateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockItemRepo) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}
func (m *mockItemRepo) GetItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockItemRepo) GetItemsByRequestIDs(ctx context.Context, ids []int64) ([]*models.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockItemRepo) SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error) {
	args := m.Called(ctx, text, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockItemRepo) UpdateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockItemRepo) DeleteItem(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBookingRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingRepo) UpdateBookingStatus(ctx context.Context, id int64, s models.BookingStatus) error {
	return m.Called(ctx, id, s).Error(0)
}
func (m *mockBookingRepo) GetBookerBookings(ctx context.Context, id int64, st models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error) {
	args := m.Called(ctx, id, st, now, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockBookingRepo) GetOwnerBookings(ctx context.Context, id int64, st models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error) {
	args := m.Called(ctx, id, st, now, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockBookingRepo) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	args := m.Called(ctx, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingRepo) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	args := m.Called(ctx, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingRepo) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, itemID, bookerID, now)
	return args.Bool(0), args.Error(1)
}

type mockCommentRepo struct {
	mock.Mock
}

func (m *mockCommentRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCommentRepo) GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

type mockRequestRepo struct {
	mock.Mock
}

func (m *mockRequestRepo) CreateRequest(ctx context.Context, r *models.ItemRequest) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRequestRepo) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemRequest), args.Error(1)
}
func (m *mockRequestRepo) GetRequestsByRequestor(ctx context.Context, id int64) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequest), args.Error(1)
}
func (m *mockRequestRepo) GetRequestsNotOwned(ctx context.Context, id int64, offset, limit int) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, id, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequest), args.Error(1)
}

type mockItemFinder struct {
	mock.Mock
}

func (m *mockItemFinder) FindByRequestIDs(ctx context.Context, ids []int64) (map[int64][]models.ItemResponse, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]models.ItemResponse), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
