// Package reminder implements the birthday reminder matching pass: project a
// historical birth date onto the current year, compute the whole-day distance
// from today, and emit a notification request when that distance is one of
// the record's configured reminder offsets.
package reminder

import (
	"time"

	"github.com/joelohman/birthday-reminder-be/internal/models"
)

// Fault reports a birthday that could not be processed during a pass, most
// commonly a record whose owner no longer exists. Faults never abort the
// sweep; the caller surfaces them for operator visibility.
type Fault struct {
	BirthdayID string
	OwnerID    string
	Reason     string
}

// Pass evaluates every birthday in the snapshot against today and returns one
// notification request per match, addressed to the owning user's email.
//
// The pass is pure: it performs no I/O, keeps no memory of previous
// invocations, and recomputes from scratch every time. Handing the requests
// to a mail sender is the caller's responsibility.
func Pass(birthdays []models.Birthday, users []models.User, today time.Time) ([]models.NotificationRequest, []Fault) {
	owners := make(map[string]models.User, len(users))
	for _, u := range users {
		owners[u.ID] = u
	}

	var requests []models.NotificationRequest
	var faults []Fault

	for _, b := range birthdays {
		daysUntil, ok := Evaluate(b, today)
		if !ok {
			continue
		}

		owner, ok := owners[b.OwnerID]
		if !ok {
			faults = append(faults, Fault{
				BirthdayID: b.ID,
				OwnerID:    b.OwnerID,
				Reason:     "owner not found in user snapshot",
			})
			continue
		}

		requests = append(requests, models.NotificationRequest{
			RecipientAddress: owner.Email,
			Birthday:         b,
			DaysUntil:        daysUntil,
		})
	}

	return requests, faults
}
