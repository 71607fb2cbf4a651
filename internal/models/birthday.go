package models

import (
	"encoding/json"
	"time"
)

// MaxNoteLength bounds the free-text note on a birthday record.
const MaxNoteLength = 250

// Birthday represents a single birthday reminder record owned by a user.
type Birthday struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	BirthDate time.Time `json:"birthDate"` // Historical birth date; the year is never checked against.
	OwnerID   string    `json:"ownerId"`
	// ReminderOffsets holds the days-before-birthday counts at which a
	// reminder should fire. 0 means "on the day".
	ReminderOffsets []int     `json:"reminderOffsets"`
	OffsetsJSON     string    `json:"-"` // Stored as JSON array string
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PrepareForDB marshals the reminder offsets into their JSON column form before saving.
func (b *Birthday) PrepareForDB() {
	data, err := json.Marshal(b.ReminderOffsets)
	if err != nil || b.ReminderOffsets == nil {
		b.OffsetsJSON = "[]"
		return
	}
	b.OffsetsJSON = string(data)
}

// PrepareForAPI unmarshals the JSON offsets column for API responses and the
// reminder pass. A malformed column yields no offsets, which simply never matches.
func (b *Birthday) PrepareForAPI() {
	b.ReminderOffsets = nil
	if b.OffsetsJSON == "" {
		return
	}
	var offsets []int
	if err := json.Unmarshal([]byte(b.OffsetsJSON), &offsets); err != nil {
		return
	}
	b.ReminderOffsets = offsets
}

// FullName returns the record's display name.
func (b *Birthday) FullName() string {
	return b.FirstName + " " + b.LastName
}
