package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/logging"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	requests domain.RequestRepository
	users    domain.UserRepository
	items    domain.ItemFinder
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewRequestService(requests domain.RequestRepository, users domain.UserRepository, items domain.ItemFinder, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		requests: requests,
		users:    users,
		items:    items,
		logger:   logging.Component(logger, "request_service"),
		now:      time.Now,
	}
}

func (s *RequestService) Create(ctx context.Context, requestorID int64, req models.NewItemRequest) (*models.ItemRequestResponse, error) {
	if err := requireUser(ctx, s.users, requestorID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		Description: req.Description,
		RequestorID: requestorID,
		Created:     s.now(),
	}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("user_id", requestorID).Msg("Item request created")
	resp := toRequestResponse(request)
	return &resp, nil
}

// ListOwn returns the caller's requests, newest first.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]models.ItemRequestWithItemsResponse, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	requests, err := s.requests.GetRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// ListOthers returns a page of requests made by other users, newest first.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, page models.Page) ([]models.ItemRequestWithItemsResponse, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	page = page.Normalize()
	requests, err := s.requests.GetRequestsNotOwned(ctx, userID, page.From, page.Size)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.ItemRequestWithItemsResponse, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	request, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, requestNotFoundMessage, requestID)
	}
	out, err := s.withItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]models.ItemRequestWithItemsResponse, error) {
	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}
	grouped, err := s.items.FindByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ItemRequestWithItemsResponse, 0, len(requests))
	for _, r := range requests {
		items := grouped[r.ID]
		if items == nil {
			items = []models.ItemResponse{}
		}
		out = append(out, models.ItemRequestWithItemsResponse{
			ItemRequestResponse: toRequestResponse(r),
			Items:               items,
		})
	}
	return out, nil
}
