package service

import "shareit/internal/models"

func toItemResponse(item *models.Item) models.ItemResponse {
	return models.ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		RequestID:   item.RequestID,
	}
}

func toItemResponses(items []*models.Item) []models.ItemResponse {
	out := make([]models.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

func toBookingShort(b *models.Booking) *models.BookingShort {
	if b == nil {
		return nil
	}
	return &models.BookingShort{ID: b.ID, BookerID: b.BookerID}
}

func toBookingResponse(b *models.Booking) models.BookingResponse {
	return models.BookingResponse{
		ID:     b.ID,
		Start:  models.NewDateTime(b.Start),
		End:    models.NewDateTime(b.End),
		Status: b.Status,
		Booker: models.BookerRef{ID: b.BookerID},
		Item:   models.ItemRef{ID: b.ItemID, Name: b.ItemName},
	}
}

func toBookingResponses(bookings []*models.Booking) []models.BookingResponse {
	out := make([]models.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

func toCommentResponse(c *models.Comment) models.CommentResponse {
	return models.CommentResponse{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    models.NewDateTime(c.Created),
	}
}

func toCommentResponses(comments []*models.Comment) []models.CommentResponse {
	out := make([]models.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	return out
}

func toRequestResponse(r *models.ItemRequest) models.ItemRequestResponse {
	return models.ItemRequestResponse{
		ID:          r.ID,
		Description: r.Description,
		Created:     models.NewDateTime(r.Created),
	}
}
