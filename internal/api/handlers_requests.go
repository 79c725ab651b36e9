package api

import (
	"net/http"

	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req models.NewItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	request, err := s.services.Requests.Create(r.Context(), userID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	requests, err := s.services.Requests.ListOwn(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	requests, err := s.services.Requests.ListOthers(r.Context(), userID, pageParams(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	request, err := s.services.Requests.Get(r.Context(), userID, requestID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}
