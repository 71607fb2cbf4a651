package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelohman/birthday-reminder-be/internal/mail"
	"github.com/joelohman/birthday-reminder-be/internal/models"
)

type stubBirthdayService struct {
	birthdays []models.Birthday
	err       error
}

func (s *stubBirthdayService) GetAllBirthdays() ([]models.Birthday, error) {
	return s.birthdays, s.err
}
func (s *stubBirthdayService) CreateBirthday(models.Birthday) (models.Birthday, error) {
	return models.Birthday{}, nil
}
func (s *stubBirthdayService) GetBirthdayByID(string) (models.Birthday, error) {
	return models.Birthday{}, nil
}
func (s *stubBirthdayService) GetBirthdaysForOwner(string) ([]models.Birthday, error) {
	return nil, nil
}
func (s *stubBirthdayService) UpdateBirthday(string, models.Birthday) (models.Birthday, error) {
	return models.Birthday{}, nil
}
func (s *stubBirthdayService) DeleteBirthday(string) error { return nil }

type stubUserService struct {
	users []models.User
}

func (s *stubUserService) GetAllUsers() ([]models.User, error)     { return s.users, nil }
func (s *stubUserService) GetUserByID(string) (models.User, error) { return models.User{}, nil }
func (s *stubUserService) GetUserByAccessToken(string) (models.User, error) {
	return models.User{}, nil
}
func (s *stubUserService) CreateUser(string, string) (models.User, error) {
	return models.User{}, nil
}
func (s *stubUserService) UpdatePassword(string, string, string) error { return nil }
func (s *stubUserService) DeleteUser(string) error                     { return nil }
func (s *stubUserService) AuthenticateUser(string, string) (models.User, error) {
	return models.User{}, nil
}

type recordedEvent struct {
	eventType string
	level     string
}

type stubEventService struct {
	events []recordedEvent
}

func (s *stubEventService) CreateEvent(eventType, level, _ string, _ *string) error {
	s.events = append(s.events, recordedEvent{eventType: eventType, level: level})
	return nil
}
func (s *stubEventService) GetRecentEvents(int) ([]models.Event, error) { return nil, nil }

// recordingSender records sends and optionally fails for specific recipients.
type recordingSender struct {
	sent    []mail.Message
	failFor map[string]error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	if err, ok := s.failFor[msg.To]; ok {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func fixedToday() time.Time {
	return time.Date(2022, time.July, 1, 7, 0, 0, 0, time.UTC)
}

func newTestScheduler(t *testing.T, birthdays *stubBirthdayService, users *stubUserService, events *stubEventService, sender *recordingSender) *Scheduler {
	t.Helper()
	s, err := New("0 7 * * *", birthdays, users, events, sender, nil)
	require.NoError(t, err)
	s.now = fixedToday
	return s
}

func TestNewRejectsInvalidCronExpression(t *testing.T) {
	_, err := New("not a cron spec", &stubBirthdayService{}, &stubUserService{}, &stubEventService{}, &recordingSender{}, nil)
	assert.Error(t, err)
}

func TestRunPassSendsMatchedReminders(t *testing.T) {
	birthdays := &stubBirthdayService{birthdays: []models.Birthday{
		{
			ID:              "b1",
			FirstName:       "Mrs. Testy",
			LastName:        "McTestersson",
			BirthDate:       time.Date(1995, time.July, 1, 0, 0, 0, 0, time.UTC),
			OwnerID:         "u1",
			ReminderOffsets: []int{0, 2, 7, 30},
		},
		{
			ID:              "b2",
			FirstName:       "Nina",
			LastName:        "Nomatch",
			BirthDate:       time.Date(1988, time.October, 2, 0, 0, 0, 0, time.UTC),
			OwnerID:         "u1",
			ReminderOffsets: []int{0},
		},
	}}
	users := &stubUserService{users: []models.User{{ID: "u1", Email: "testy@mctestersson.com"}}}
	events := &stubEventService{}
	sender := &recordingSender{}

	s := newTestScheduler(t, birthdays, users, events, sender)
	result, err := s.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PassResult{Matched: 1, Sent: 1}, result)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "testy@mctestersson.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTMLBody, "TODAY! 🎈🎈")
	require.Len(t, events.events, 1)
	assert.Equal(t, "reminder.sent", events.events[0].eventType)
}

func TestRunPassContinuesAfterDeliveryFailure(t *testing.T) {
	bday := func(id, owner string) models.Birthday {
		return models.Birthday{
			ID:              id,
			BirthDate:       time.Date(1995, time.July, 1, 0, 0, 0, 0, time.UTC),
			OwnerID:         owner,
			ReminderOffsets: []int{0},
		}
	}
	birthdays := &stubBirthdayService{birthdays: []models.Birthday{bday("b1", "u1"), bday("b2", "u2")}}
	users := &stubUserService{users: []models.User{
		{ID: "u1", Email: "broken@example.com"},
		{ID: "u2", Email: "fine@example.com"},
	}}
	events := &stubEventService{}
	sender := &recordingSender{failFor: map[string]error{
		"broken@example.com": errors.New("smtp: connection refused"),
	}}

	s := newTestScheduler(t, birthdays, users, events, sender)
	result, err := s.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PassResult{Matched: 2, Sent: 1, Failed: 1}, result)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "fine@example.com", sender.sent[0].To)

	var types []string
	for _, e := range events.events {
		types = append(types, e.eventType)
	}
	assert.Contains(t, types, "reminder.send.fail")
	assert.Contains(t, types, "reminder.sent")
}

func TestRunPassReportsDanglingOwner(t *testing.T) {
	birthdays := &stubBirthdayService{birthdays: []models.Birthday{{
		ID:              "orphan",
		BirthDate:       time.Date(1995, time.July, 1, 0, 0, 0, 0, time.UTC),
		OwnerID:         "gone",
		ReminderOffsets: []int{0},
	}}}
	users := &stubUserService{}
	events := &stubEventService{}
	sender := &recordingSender{}

	s := newTestScheduler(t, birthdays, users, events, sender)
	result, err := s.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PassResult{Faults: 1}, result)
	assert.Empty(t, sender.sent)
	require.Len(t, events.events, 1)
	assert.Equal(t, "reminder.owner.missing", events.events[0].eventType)
	assert.Equal(t, "error", events.events[0].level)
}

func TestRunPassAbortsWhenSnapshotFetchFails(t *testing.T) {
	birthdays := &stubBirthdayService{err: errors.New("database is locked")}
	s := newTestScheduler(t, birthdays, &stubUserService{}, &stubEventService{}, &recordingSender{})

	_, err := s.RunPass(context.Background())
	assert.Error(t, err)
}

func TestNextRunFollowsSchedule(t *testing.T) {
	s := newTestScheduler(t, &stubBirthdayService{}, &stubUserService{}, &stubEventService{}, &recordingSender{})

	// Fixed "now" is 07:00 on July 1; the next 07:00 trigger is July 2.
	next := s.NextRun()
	assert.Equal(t, time.Date(2022, time.July, 2, 7, 0, 0, 0, time.UTC), next)
	assert.Equal(t, "0 7 * * *", s.Spec())
}
