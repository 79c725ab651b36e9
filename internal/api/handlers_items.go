package api

import (
	"net/http"

	"shareit/internal/identity"
	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req models.NewItem
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	item, err := s.services.Items.Create(r.Context(), ownerID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var upd models.ItemUpdate
	if err := decodeJSON(r, &upd); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	item, err := s.services.Items.Update(r.Context(), userID, itemID, upd)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleGetItem serves anonymous callers too; only the owner sees the
// booking window.
func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var callerID int64
	if user, ok := identity.FromContext(r.Context()); ok {
		callerID = user.ID
	}

	item, err := s.services.Items.Get(r.Context(), callerID, itemID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleListOwnerItems(w http.ResponseWriter, r *http.Request) {
	ownerID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	items, err := s.services.Items.ListByOwner(r.Context(), ownerID, pageParams(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.services.Items.Delete(r.Context(), itemID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Items.Search(r.Context(), r.URL.Query().Get("text"), pageParams(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	authorID, err := caller(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req models.NewComment
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	comment, err := s.services.Items.AddComment(r.Context(), authorID, itemID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
