package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/joelohman/birthday-reminder-be/internal/auth"
	"github.com/joelohman/birthday-reminder-be/internal/models"
	"github.com/joelohman/birthday-reminder-be/internal/services"
)

// BirthdayHandler handles HTTP requests for birthday records.
type BirthdayHandler struct {
	service services.BirthdayServiceProvider
}

// NewBirthdayHandler creates a new BirthdayHandler.
func NewBirthdayHandler(service services.BirthdayServiceProvider) *BirthdayHandler {
	return &BirthdayHandler{service: service}
}

// ownedBirthday loads a birthday and checks it belongs to the authenticated
// user. Records owned by someone else are reported as not found.
func (h *BirthdayHandler) ownedBirthday(w http.ResponseWriter, r *http.Request) (models.Birthday, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return models.Birthday{}, false
	}

	id := chi.URLParam(r, "id")
	birthday, err := h.service.GetBirthdayByID(id)
	if err != nil || birthday.OwnerID != user.ID {
		http.Error(w, "Birthday not found", http.StatusNotFound)
		return models.Birthday{}, false
	}
	return birthday, true
}

// GetAll handles the request to list the authenticated user's birthdays.
func (h *BirthdayHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	birthdays, err := h.service.GetBirthdaysForOwner(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list birthdays")
		http.Error(w, "Failed to retrieve birthdays: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if birthdays == nil {
		birthdays = []models.Birthday{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(birthdays)
}

// Get handles the request to fetch a single birthday record.
func (h *BirthdayHandler) Get(w http.ResponseWriter, r *http.Request) {
	birthday, ok := h.ownedBirthday(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(birthday)
}

// Create handles the request to create a new birthday record for the
// authenticated user.
func (h *BirthdayHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var birthday models.Birthday
	if err := json.NewDecoder(r.Body).Decode(&birthday); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	birthday.OwnerID = user.ID

	created, err := h.service.CreateBirthday(birthday)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to create birthday")
		http.Error(w, "Failed to create birthday: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// Update handles the request to update an existing birthday record.
func (h *BirthdayHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedBirthday(w, r)
	if !ok {
		return
	}

	var birthday models.Birthday
	if err := json.NewDecoder(r.Body).Decode(&birthday); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateBirthday(existing.ID, birthday)
	if err != nil {
		log.Warn().Err(err).Str("birthday_id", existing.ID).Msg("Failed to update birthday")
		http.Error(w, "Failed to update birthday: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// Delete handles the request to delete a birthday record.
func (h *BirthdayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	birthday, ok := h.ownedBirthday(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBirthday(birthday.ID); err != nil {
		log.Error().Err(err).Str("birthday_id", birthday.ID).Msg("Failed to delete birthday")
		http.Error(w, "Failed to delete birthday", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
