package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	bookings  *mockBookingRepo
	items     *mockItemRepo
	users     *mockUserRepo
	publisher *mockPublisher
	service   *BookingService
	now       time.Time
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings:  new(mockBookingRepo),
		items:     new(mockItemRepo),
		users:     new(mockUserRepo),
		publisher: new(mockPublisher),
		now:       time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewBookingService(f.bookings, f.items, f.users, f.publisher, &testLogger)
	f.service.now = fixedClock(f.now)
	return f
}

func newBookingRequest(itemID int64, start, end time.Time) models.NewBooking {
	s, e := models.NewDateTime(start), models.NewDateTime(end)
	return models.NewBooking{ItemID: &itemID, Start: &s, End: &e}
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)
	item := &models.Item{ID: 10, Name: "Drill", Available: true, OwnerID: 1}

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture()
		f.items.On("GetItemByID", ctx, int64(10)).Return(item, nil).Once()
		f.users.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		f.bookings.On("CreateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Status == models.StatusWaiting && b.BookerID == 2 && b.ItemID == 10
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 100
		}).Return(nil).Once()
		f.publisher.On("PublishJSON", events.EventBookingCreated, mock.MatchedBy(func(p events.BookingEventPayload) bool {
			return p.BookingID == 100 && p.OwnerID == 1 && p.Status == "WAITING"
		})).Return(nil).Once()

		resp, err := f.service.Create(ctx, 2, newBookingRequest(10, start, end))
		require.NoError(t, err)
		assert.Equal(t, int64(100), resp.ID)
		assert.Equal(t, models.StatusWaiting, resp.Status)
		assert.Equal(t, int64(2), resp.Booker.ID)
		assert.Equal(t, "Drill", resp.Item.Name)
		f.bookings.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("StartEqualsEnd", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.service.Create(ctx, 2, newBookingRequest(10, start, start))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
		f.items.AssertNotCalled(t, "GetItemByID", mock.Anything, mock.Anything)
	})

	t.Run("StartAfterEnd", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.service.Create(ctx, 2, newBookingRequest(10, end, start))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("MissingFields", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.service.Create(ctx, 2, models.NewBooking{})
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("ItemNotFound", func(t *testing.T) {
		f := newBookingFixture()
		f.items.On("GetItemByID", ctx, int64(10)).Return(nil, database.ErrNotFound).Once()
		_, err := f.service.Create(ctx, 2, newBookingRequest(10, start, end))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("OwnerBooksOwnItem", func(t *testing.T) {
		f := newBookingFixture()
		f.items.On("GetItemByID", ctx, int64(10)).Return(item, nil).Once()
		_, err := f.service.Create(ctx, 1, newBookingRequest(10, start, end))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("ItemUnavailable", func(t *testing.T) {
		f := newBookingFixture()
		unavailable := *item
		unavailable.Available = false
		f.items.On("GetItemByID", ctx, int64(10)).Return(&unavailable, nil).Once()
		_, err := f.service.Create(ctx, 2, newBookingRequest(10, start, end))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
		assert.Equal(t, "Item id=10 is not available", err.Error())
	})

	t.Run("BookerNotFound", func(t *testing.T) {
		f := newBookingFixture()
		f.items.On("GetItemByID", ctx, int64(10)).Return(item, nil).Once()
		f.users.On("UserExists", ctx, int64(2)).Return(false, nil).Once()
		_, err := f.service.Create(ctx, 2, newBookingRequest(10, start, end))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_Approve(t *testing.T) {
	ctx := context.Background()
	waiting := func() *models.Booking {
		return &models.Booking{ID: 5, ItemID: 10, BookerID: 2, ItemOwnerID: 1, Status: models.StatusWaiting, ItemName: "Drill"}
	}

	t.Run("Approve", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()
		f.users.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
		f.bookings.On("UpdateBookingStatus", ctx, int64(5), models.StatusApproved).Return(nil).Once()
		f.publisher.On("PublishJSON", events.EventBookingApproved, mock.Anything).Return(nil).Once()

		resp, err := f.service.Approve(ctx, 1, 5, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, resp.Status)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Reject", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()
		f.users.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
		f.bookings.On("UpdateBookingStatus", ctx, int64(5), models.StatusRejected).Return(nil).Once()
		f.publisher.On("PublishJSON", events.EventBookingRejected, mock.Anything).Return(nil).Once()

		resp, err := f.service.Approve(ctx, 1, 5, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, resp.Status)
	})

	t.Run("NotOwner", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()
		f.users.On("UserExists", ctx, int64(3)).Return(true, nil).Once()

		_, err := f.service.Approve(ctx, 3, 5, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("BookerApprovesOwnBooking", func(t *testing.T) {
		f := newBookingFixture()
		b := waiting()
		b.BookerID = 1
		f.bookings.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()
		f.users.On("UserExists", ctx, int64(1)).Return(true, nil).Once()

		_, err := f.service.Approve(ctx, 1, 5, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		f := newBookingFixture()
		b := waiting()
		b.Status = models.StatusApproved
		f.bookings.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()
		f.users.On("UserExists", ctx, int64(1)).Return(true, nil).Once()

		_, err := f.service.Approve(ctx, 1, 5, true)
		assert.ErrorIs(t, err, domain.ErrBadRequest)
		f.bookings.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentDecision", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()
		f.users.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
		f.bookings.On("UpdateBookingStatus", ctx, int64(5), models.StatusApproved).Return(database.ErrConcurrentModification).Once()

		_, err := f.service.Approve(ctx, 1, 5, true)
		assert.ErrorIs(t, err, domain.ErrBadRequest)
		f.publisher.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	})

	t.Run("BookingNotFound", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetBooking", ctx, int64(5)).Return(nil, database.ErrNotFound).Once()

		_, err := f.service.Approve(ctx, 1, 5, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "Booking id=5 not found", err.Error())
	})
}

func TestBookingService_Get(t *testing.T) {
	ctx := context.Background()
	b := &models.Booking{ID: 5, BookerID: 2, ItemOwnerID: 1, Status: models.StatusWaiting}

	for _, userID := range []int64{1, 2} {
		f := newBookingFixture()
		f.bookings.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()
		resp, err := f.service.Get(ctx, userID, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.ID)
	}

	f := newBookingFixture()
	f.bookings.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()
	_, err := f.service.Get(ctx, 3, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("ByBooker", func(t *testing.T) {
		f := newBookingFixture()
		f.users.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		f.bookings.On("GetBookerBookings", ctx, int64(2), models.StateCurrent, f.now, 0, 20).
			Return([]*models.Booking{{ID: 1}, {ID: 2}}, nil).Once()

		list, err := f.service.ListByBooker(ctx, 2, "current", models.Page{From: -1})
		require.NoError(t, err)
		assert.Len(t, list, 2)
		f.bookings.AssertExpectations(t)
	})

	t.Run("ByOwner", func(t *testing.T) {
		f := newBookingFixture()
		f.users.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
		f.bookings.On("GetOwnerBookings", ctx, int64(1), models.StateAll, f.now, 5, 5).
			Return([]*models.Booking{}, nil).Once()

		list, err := f.service.ListByOwner(ctx, 1, "", models.Page{From: 5, Size: 5})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("UnknownState", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.service.ListByBooker(ctx, 2, "UNSUPPORTED_STATUS", models.Page{})
		assert.ErrorIs(t, err, domain.ErrBadRequest)
		assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", err.Error())
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := newBookingFixture()
		f.users.On("UserExists", ctx, int64(9)).Return(false, nil).Once()
		_, err := f.service.ListByOwner(ctx, 9, "ALL", models.Page{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
