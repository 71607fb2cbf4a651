package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelohman/birthday-reminder-be/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestProjectToCurrentWindow(t *testing.T) {
	tests := []struct {
		name      string
		birthDate time.Time
		now       time.Time
		want      time.Time
	}{
		{
			name:      "non january birthday keeps current year",
			birthDate: date(1991, time.September, 9),
			now:       date(2022, time.June, 1),
			want:      date(2022, time.September, 9),
		},
		{
			name:      "january birthday seen from december moves to next year",
			birthDate: date(1991, time.January, 9),
			now:       date(2022, time.December, 20),
			want:      date(2023, time.January, 9),
		},
		{
			name:      "january birthday seen from january stays in current year",
			birthDate: date(1991, time.January, 9),
			now:       date(2023, time.January, 2),
			want:      date(2023, time.January, 9),
		},
		{
			name:      "december birthday is never adjusted",
			birthDate: date(1980, time.December, 31),
			now:       date(2022, time.December, 20),
			want:      date(2022, time.December, 31),
		},
		{
			name:      "leap day onto non leap year rolls to march 1",
			birthDate: date(2000, time.February, 29),
			now:       date(2022, time.February, 10),
			want:      date(2022, time.March, 1),
		},
		{
			name:      "leap day onto leap year is kept",
			birthDate: date(2000, time.February, 29),
			now:       date(2024, time.February, 10),
			want:      date(2024, time.February, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectToCurrentWindow(tt.birthDate, tt.now)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestMidnightUTC(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	// 00:30 local on July 2 is still July 1 in UTC.
	local := time.Date(2022, time.July, 2, 0, 30, 0, 0, loc)
	assert.Equal(t, date(2022, time.July, 1), MidnightUTC(local))

	midday := time.Date(2022, time.July, 2, 13, 45, 12, 0, time.UTC)
	assert.Equal(t, date(2022, time.July, 2), MidnightUTC(midday))
}

func TestEvaluate(t *testing.T) {
	birthday := func(birthDate time.Time, offsets []int) models.Birthday {
		return models.Birthday{
			ID:              "b1",
			FirstName:       "Testy",
			LastName:        "McTestersson",
			BirthDate:       birthDate,
			OwnerID:         "u1",
			ReminderOffsets: offsets,
		}
	}

	tests := []struct {
		name          string
		birthday      models.Birthday
		today         time.Time
		wantDaysUntil int
		wantMatch     bool
	}{
		{
			name:          "matches on the day when zero is configured",
			birthday:      birthday(date(1991, time.September, 9), []int{0, 2, 7, 30}),
			today:         date(2022, time.September, 9),
			wantDaysUntil: 0,
			wantMatch:     true,
		},
		{
			name:          "december viewpoint on january birthday",
			birthday:      birthday(date(1991, time.January, 9), []int{20}),
			today:         date(2022, time.December, 20),
			wantDaysUntil: 20,
			wantMatch:     true,
		},
		{
			name:          "membership is exact, eight days with offset seven",
			birthday:      birthday(date(1991, time.September, 9), []int{7}),
			today:         date(2022, time.September, 1),
			wantDaysUntil: 8,
			wantMatch:     false,
		},
		{
			name:          "thirty day offset",
			birthday:      birthday(date(1995, time.July, 31), []int{0, 2, 7, 30}),
			today:         date(2022, time.July, 1),
			wantDaysUntil: 30,
			wantMatch:     true,
		},
		{
			name:          "no offsets never matches",
			birthday:      birthday(date(1991, time.September, 9), nil),
			today:         date(2022, time.September, 9),
			wantDaysUntil: 0,
			wantMatch:     false,
		},
		{
			name:          "passed birthday yields negative difference and no match",
			birthday:      birthday(date(1991, time.March, 1), []int{0, 7}),
			today:         date(2022, time.March, 15),
			wantDaysUntil: -14,
			wantMatch:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			daysUntil, ok := Evaluate(tt.birthday, tt.today)
			assert.Equal(t, tt.wantDaysUntil, daysUntil)
			assert.Equal(t, tt.wantMatch, ok)
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	b := models.Birthday{
		BirthDate:       date(1991, time.January, 9),
		ReminderOffsets: []int{20},
	}
	today := date(2022, time.December, 20)

	first, firstOK := Evaluate(b, today)
	second, secondOK := Evaluate(b, today)
	assert.Equal(t, first, second)
	assert.Equal(t, firstOK, secondOK)
}

func TestEvaluateNormalizesClockTime(t *testing.T) {
	b := models.Birthday{
		BirthDate:       date(1991, time.September, 9),
		ReminderOffsets: []int{2},
	}
	// Late in the evening, two calendar days before: still a whole-day match.
	today := time.Date(2022, time.September, 7, 23, 15, 41, 0, time.UTC)

	daysUntil, ok := Evaluate(b, today)
	assert.Equal(t, 2, daysUntil)
	assert.True(t, ok)
}

func TestPass(t *testing.T) {
	today := date(2022, time.July, 1)
	users := []models.User{
		{ID: "u1", Email: "testy@mctestersson.com"},
		{ID: "u2", Email: "other@example.com"},
	}

	t.Run("empty snapshot yields no requests", func(t *testing.T) {
		requests, faults := Pass(nil, users, today)
		assert.Empty(t, requests)
		assert.Empty(t, faults)
	})

	t.Run("exactly one request per matching birthday", func(t *testing.T) {
		birthdays := []models.Birthday{
			{
				ID:              "b1",
				FirstName:       "Mrs. Testy",
				LastName:        "McTestersson",
				BirthDate:       date(1995, time.July, 31),
				OwnerID:         "u1",
				ReminderOffsets: []int{0, 2, 7, 30},
			},
			{
				ID:              "b2",
				FirstName:       "Nina",
				LastName:        "Nomatch",
				BirthDate:       date(1988, time.October, 2),
				OwnerID:         "u2",
				ReminderOffsets: []int{0, 7},
			},
		}

		requests, faults := Pass(birthdays, users, today)
		require.Len(t, requests, 1)
		assert.Empty(t, faults)
		assert.Equal(t, "testy@mctestersson.com", requests[0].RecipientAddress)
		assert.Equal(t, "b1", requests[0].Birthday.ID)
		assert.Equal(t, 30, requests[0].DaysUntil)
	})

	t.Run("dangling owner is reported and skipped", func(t *testing.T) {
		birthdays := []models.Birthday{
			{
				ID:              "orphan",
				BirthDate:       date(1995, time.July, 1),
				OwnerID:         "gone",
				ReminderOffsets: []int{0},
			},
			{
				ID:              "b1",
				BirthDate:       date(1995, time.July, 1),
				OwnerID:         "u1",
				ReminderOffsets: []int{0},
			},
		}

		requests, faults := Pass(birthdays, users, today)
		require.Len(t, requests, 1)
		assert.Equal(t, "b1", requests[0].Birthday.ID)
		require.Len(t, faults, 1)
		assert.Equal(t, "orphan", faults[0].BirthdayID)
		assert.Equal(t, "gone", faults[0].OwnerID)
	})
}
