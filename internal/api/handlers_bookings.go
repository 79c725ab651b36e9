package api

import (
	"net/http"

	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req models.NewBooking
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.services.Bookings.Create(r.Context(), bookerID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "bookingId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	approved, err := parseApproved(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.services.Bookings.Approve(r.Context(), userID, bookingID, approved)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "bookingId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.services.Bookings.Get(r.Context(), userID, bookingID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	bookings, err := s.services.Bookings.ListByBooker(r.Context(), userID, r.URL.Query().Get("state"), pageParams(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	bookings, err := s.services.Bookings.ListByOwner(r.Context(), userID, r.URL.Query().Get("state"), pageParams(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}
