// Package scheduler drives the daily reminder pass. The cadence comes from a
// cron expression owned by the host configuration; the reminder engine itself
// is a plain function with no knowledge of how or how often it is invoked.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/joelohman/birthday-reminder-be/internal/mail"
	"github.com/joelohman/birthday-reminder-be/internal/models"
	"github.com/joelohman/birthday-reminder-be/internal/reminder"
	"github.com/joelohman/birthday-reminder-be/internal/services"
)

// Broadcaster pushes activity messages to connected frontend clients.
// Implemented by the websocket hub.
type Broadcaster interface {
	BroadcastMessage(action string, payload interface{})
}

// PassResult summarizes one reminder pass for logging and the manual
// trigger endpoint.
type PassResult struct {
	Matched int `json:"matched"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Faults  int `json:"faults"`
}

// Scheduler runs the reminder pass on a cron schedule.
//
// Each pass re-evaluates the full snapshot with no record of prior sends, so
// a pass repeated on the same day sends the same reminders again. Known gap:
// there is no duplicate-send ledger and no overlap guard.
type Scheduler struct {
	birthdaySvc services.BirthdayServiceProvider
	userSvc     services.UserServiceProvider
	eventSvc    services.EventServiceProvider
	sender      mail.Sender
	broadcaster Broadcaster

	spec     string
	schedule cron.Schedule
	now      func() time.Time
	ticker   *time.Ticker
	done     chan bool
}

// New creates a scheduler firing per the given cron expression.
func New(spec string, birthdaySvc services.BirthdayServiceProvider, userSvc services.UserServiceProvider, eventSvc services.EventServiceProvider, sender mail.Sender, broadcaster Broadcaster) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return &Scheduler{
		birthdaySvc: birthdaySvc,
		userSvc:     userSvc,
		eventSvc:    eventSvc,
		sender:      sender,
		broadcaster: broadcaster,
		spec:        spec,
		schedule:    schedule,
		now:         time.Now,
		done:        make(chan bool),
	}, nil
}

// Spec returns the configured cron expression.
func (s *Scheduler) Spec() string {
	return s.spec
}

// NextRun returns the next time the reminder pass will fire.
func (s *Scheduler) NextRun() time.Time {
	return s.schedule.Next(s.now())
}

// Run starts the scheduler's ticking loop.
func (s *Scheduler) Run() {
	log.Info().Str("schedule", s.spec).Msg("Starting reminder scheduler")
	s.ticker = time.NewTicker(1 * time.Minute)
	defer s.ticker.Stop()

	nextRun := s.schedule.Next(s.now())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping reminder scheduler")
			return
		case <-s.ticker.C:
			now := s.now()
			if now.After(nextRun) {
				go s.runPass()
				nextRun = s.schedule.Next(now)
			}
		}
	}
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	s.done <- true
}

func (s *Scheduler) runPass() {
	result, err := s.RunPass(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Reminder pass failed")
		return
	}
	log.Info().
		Int("matched", result.Matched).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Int("faults", result.Faults).
		Msg("Reminder pass complete")
}

// RunPass performs one full sweep: fetch the birthday and user snapshots, run
// the matching engine, render and hand each match to the mail sender.
//
// Delivery failures are logged and recorded as events, never retried, and
// never stop the remaining sends. Only a failure to fetch the snapshots
// aborts the pass.
func (s *Scheduler) RunPass(ctx context.Context) (PassResult, error) {
	birthdays, err := s.birthdaySvc.GetAllBirthdays()
	if err != nil {
		return PassResult{}, fmt.Errorf("failed to fetch birthday snapshot: %w", err)
	}
	users, err := s.userSvc.GetAllUsers()
	if err != nil {
		return PassResult{}, fmt.Errorf("failed to fetch user snapshot: %w", err)
	}

	today := s.now()
	requests, faults := reminder.Pass(birthdays, users, today)

	for _, fault := range faults {
		log.Error().
			Str("birthday_id", fault.BirthdayID).
			Str("owner_id", fault.OwnerID).
			Msg("Skipping birthday: " + fault.Reason)
		msg := fmt.Sprintf("Birthday %s references missing owner %s; reminder skipped.", fault.BirthdayID, fault.OwnerID)
		s.eventSvc.CreateEvent("reminder.owner.missing", "error", msg, nil)
	}

	result := PassResult{Matched: len(requests), Faults: len(faults)}

	for _, req := range requests {
		if err := s.deliver(ctx, req); err != nil {
			result.Failed++
			continue
		}
		result.Sent++
	}

	return result, nil
}

func (s *Scheduler) deliver(ctx context.Context, req models.NotificationRequest) error {
	msg, err := mail.RenderReminder(req)
	if err != nil {
		log.Error().Err(err).Str("birthday_id", req.Birthday.ID).Msg("Failed to render reminder")
		s.eventSvc.CreateEvent("reminder.render.fail", "error", err.Error(), &req.Birthday.OwnerID)
		return err
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("to", msg.To).Str("birthday_id", req.Birthday.ID).Msg("Failed to send reminder")
		eventMsg := fmt.Sprintf("Reminder for '%s' to %s failed: %v", req.Birthday.FullName(), msg.To, err)
		s.eventSvc.CreateEvent("reminder.send.fail", "error", eventMsg, &req.Birthday.OwnerID)
		return err
	}

	log.Info().Str("to", msg.To).Int("days_until", req.DaysUntil).Msg("Reminder sent")
	eventMsg := fmt.Sprintf("Reminder for '%s' sent (%d days until birthday).", req.Birthday.FullName(), req.DaysUntil)
	s.eventSvc.CreateEvent("reminder.sent", "info", eventMsg, &req.Birthday.OwnerID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage("reminder_sent", map[string]interface{}{
			"birthdayId": req.Birthday.ID,
			"ownerId":    req.Birthday.OwnerID,
			"daysUntil":  req.DaysUntil,
		})
	}
	return nil
}
