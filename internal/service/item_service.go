package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/logging"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	items    domain.ItemRepository
	users    domain.UserRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	requests domain.RequestRepository
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemService(
	items domain.ItemRepository,
	users domain.UserRepository,
	bookings domain.BookingRepository,
	comments domain.CommentRepository,
	requests domain.RequestRepository,
	logger *zerolog.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		requests: requests,
		logger:   logging.Component(logger, "item_service"),
		now:      time.Now,
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, req models.NewItem) (*models.ItemResponse, error) {
	if err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	if req.RequestID != nil {
		if _, err := s.requests.GetRequestByID(ctx, *req.RequestID); err != nil {
			return nil, notFoundOr(err, requestNotFoundMessage, *req.RequestID)
		}
	}

	item := &models.Item{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
		RequestID:   req.RequestID,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("Item created")
	resp := toItemResponse(item)
	return &resp, nil
}

// Update applies a partial update. Only the owner may change an item.
func (s *ItemService) Update(ctx context.Context, userID, itemID int64, upd models.ItemUpdate) (*models.ItemResponse, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, notFoundOr(err, itemNotFoundMessage, itemID)
	}
	if item.OwnerID != userID {
		s.logger.Warn().Int64("item_id", itemID).Int64("user_id", userID).Msg("Item update by non-owner")
		return nil, domain.Forbiddenf("User id=%d is not the owner of item id=%d", userID, itemID)
	}

	if !upd.IsEmpty() {
		upd.Apply(item)
		if err := s.items.UpdateItem(ctx, item); err != nil {
			return nil, notFoundOr(err, itemNotFoundMessage, itemID)
		}
	}

	resp := toItemResponse(item)
	return &resp, nil
}

// Get returns the item with comments. Booking windows are filled only
// when the caller owns the item.
func (s *ItemService) Get(ctx context.Context, callerID, itemID int64) (*models.ItemDetailsResponse, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, notFoundOr(err, itemNotFoundMessage, itemID)
	}
	return s.details(ctx, callerID, item)
}

func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.ItemDetailsResponse, error) {
	page = page.Normalize()
	items, err := s.items.GetItemsByOwner(ctx, ownerID, page.From, page.Size)
	if err != nil {
		return nil, err
	}

	out := make([]models.ItemDetailsResponse, 0, len(items))
	for _, item := range items {
		d, err := s.details(ctx, ownerID, item)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *ItemService) Delete(ctx context.Context, itemID int64) error {
	if err := s.items.DeleteItem(ctx, itemID); err != nil {
		return notFoundOr(err, itemNotFoundMessage, itemID)
	}
	s.logger.Info().Int64("item_id", itemID).Msg("Item deleted")
	return nil
}

// Search matches available items by name or description. Blank text
// yields an empty list without a storage call.
func (s *ItemService) Search(ctx context.Context, text string, page models.Page) ([]models.ItemResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.ItemResponse{}, nil
	}
	page = page.Normalize()
	items, err := s.items.SearchItems(ctx, text, page.From, page.Size)
	if err != nil {
		return nil, err
	}
	return toItemResponses(items), nil
}

// FindByRequestIDs groups items by the request they answer.
func (s *ItemService) FindByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64][]models.ItemResponse, error) {
	grouped := make(map[int64][]models.ItemResponse, len(requestIDs))
	if len(requestIDs) == 0 {
		return grouped, nil
	}
	items, err := s.items.GetItemsByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		grouped[*item.RequestID] = append(grouped[*item.RequestID], toItemResponse(item))
	}
	return grouped, nil
}

// AddComment stores feedback from a user who has finished an approved
// booking of the item.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, req models.NewComment) (*models.CommentResponse, error) {
	if _, err := s.items.GetItemByID(ctx, itemID); err != nil {
		return nil, notFoundOr(err, itemNotFoundMessage, itemID)
	}
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, notFoundOr(err, userNotFoundMessage, authorID)
	}

	now := s.now()
	finished, err := s.bookings.HasFinishedBooking(ctx, itemID, authorID, now)
	if err != nil {
		return nil, err
	}
	if !finished {
		s.logger.Warn().Int64("item_id", itemID).Int64("user_id", authorID).Msg("Comment without finished booking")
		return nil, domain.BadRequestf("User id=%d has no finished bookings of item id=%d", authorID, itemID)
	}

	comment := &models.Comment{
		Text:       req.Text,
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	resp := toCommentResponse(comment)
	return &resp, nil
}

func (s *ItemService) details(ctx context.Context, callerID int64, item *models.Item) (*models.ItemDetailsResponse, error) {
	resp := &models.ItemDetailsResponse{ItemResponse: toItemResponse(item)}

	if callerID == item.OwnerID {
		now := s.now()
		last, err := s.bookings.GetLastBooking(ctx, item.ID, now)
		if err != nil {
			return nil, err
		}
		next, err := s.bookings.GetNextBooking(ctx, item.ID, now)
		if err != nil {
			return nil, err
		}
		resp.LastBooking = toBookingShort(last)
		resp.NextBooking = toBookingShort(next)
	}

	comments, err := s.comments.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	resp.Comments = toCommentResponses(comments)
	return resp, nil
}

var _ domain.ItemFinder = (*ItemService)(nil)
