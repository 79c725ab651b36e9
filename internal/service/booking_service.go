package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	bookings domain.BookingRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(
	bookings domain.BookingRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		eventBus: eventBus,
		logger:   logging.Component(logger, "booking_service"),
		now:      time.Now,
	}
}

func (s *BookingService) Create(ctx context.Context, bookerID int64, req models.NewBooking) (*models.BookingResponse, error) {
	if req.ItemID == nil || req.Start == nil || req.End == nil {
		return nil, domain.BadRequestf("itemId, start and end are required")
	}
	start, end := req.Start.Time(), req.End.Time()

	// Проверяем порядок дат
	if !start.Before(end) {
		return nil, domain.BadRequestf("Start date must be before end date")
	}

	item, err := s.items.GetItemByID(ctx, *req.ItemID)
	if err != nil {
		return nil, notFoundOr(err, itemNotFoundMessage, *req.ItemID)
	}
	if item.OwnerID == bookerID {
		s.logger.Warn().Int64("item_id", item.ID).Int64("user_id", bookerID).Msg("Owner tried to book own item")
		return nil, domain.NotFoundf(notSupportedMessage)
	}
	if !item.Available {
		return nil, domain.BadRequestf("Item id=%d is not available", item.ID)
	}
	if err := requireUser(ctx, s.users, bookerID); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Start:       start,
		End:         end,
		ItemID:      item.ID,
		BookerID:    bookerID,
		Status:      models.StatusWaiting,
		ItemName:    item.Name,
		ItemOwnerID: item.OwnerID,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", item.ID).Int64("booker_id", bookerID).Msg("Booking created")
	s.publishEvent(events.EventBookingCreated, booking, bookerID)

	resp := toBookingResponse(booking)
	return &resp, nil
}

// Approve records the owner's decision on a WAITING booking.
func (s *BookingService) Approve(ctx context.Context, userID, bookingID int64, approved bool) (*models.BookingResponse, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, bookingNotFoundMessage, bookingID)
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if booking.ItemOwnerID != userID {
		s.logger.Warn().Int64("booking_id", bookingID).Int64("user_id", userID).Msg("Approve by non-owner")
		return nil, domain.NotFoundf("User id=%d is not item owner", userID)
	}
	if booking.BookerID == userID {
		return nil, domain.NotFoundf(notSupportedMessage)
	}
	if booking.Status != models.StatusWaiting {
		return nil, domain.BadRequestf(notSupportedMessage)
	}

	status, eventType := models.StatusRejected, events.EventBookingRejected
	if approved {
		status, eventType = models.StatusApproved, events.EventBookingApproved
	}

	if err := s.bookings.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		if errors.Is(err, database.ErrConcurrentModification) {
			s.logger.Warn().Int64("booking_id", bookingID).Msg("Booking was decided concurrently")
			return nil, domain.BadRequestf(notSupportedMessage)
		}
		return nil, err
	}
	booking.Status = status

	s.logger.Info().Int64("booking_id", bookingID).Str("status", string(status)).Msg("Booking decided")
	s.publishEvent(eventType, booking, userID)

	resp := toBookingResponse(booking)
	return &resp, nil
}

// Get returns a booking visible to its booker or the item owner.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (*models.BookingResponse, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, bookingNotFoundMessage, bookingID)
	}
	if booking.BookerID != userID && booking.ItemOwnerID != userID {
		return nil, domain.NotFoundf(notSupportedMessage)
	}
	resp := toBookingResponse(booking)
	return &resp, nil
}

func (s *BookingService) ListByBooker(ctx context.Context, userID int64, rawState string, page models.Page) ([]models.BookingResponse, error) {
	return s.list(ctx, userID, rawState, page, s.bookings.GetBookerBookings)
}

func (s *BookingService) ListByOwner(ctx context.Context, userID int64, rawState string, page models.Page) ([]models.BookingResponse, error) {
	return s.list(ctx, userID, rawState, page, s.bookings.GetOwnerBookings)
}

type bookingLister func(ctx context.Context, userID int64, state models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error)

func (s *BookingService) list(ctx context.Context, userID int64, rawState string, page models.Page, fetch bookingLister) ([]models.BookingResponse, error) {
	state, err := models.ParseBookingState(rawState)
	if err != nil {
		return nil, domain.BadRequestf("%s", err.Error())
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	page = page.Normalize()
	bookings, err := fetch(ctx, userID, state, s.now(), page.From, page.Size)
	if err != nil {
		return nil, err
	}
	return toBookingResponses(bookings), nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		ItemName:  booking.ItemName,
		BookerID:  booking.BookerID,
		OwnerID:   booking.ItemOwnerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
