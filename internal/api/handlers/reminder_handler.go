package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/joelohman/birthday-reminder-be/internal/scheduler"
)

// ReminderHandler exposes the reminder scheduler over HTTP: schedule
// introspection and a manual trigger.
type ReminderHandler struct {
	scheduler *scheduler.Scheduler
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(s *scheduler.Scheduler) *ReminderHandler {
	return &ReminderHandler{scheduler: s}
}

// GetSchedule reports the configured cron expression and the next firing time.
func (h *ReminderHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"schedule":  h.scheduler.Spec(),
		"nextRunAt": h.scheduler.NextRun().Format(time.RFC3339),
	})
}

// RunNow triggers a reminder pass immediately. The pass the scheduler would
// run later is unaffected; a manual run can double-send for the day.
func (h *ReminderHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduler.RunPass(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Manual reminder pass failed")
		http.Error(w, "Reminder pass failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
