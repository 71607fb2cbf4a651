package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/joelohman/birthday-reminder-be/internal/models"
)

// BirthdayServiceProvider defines the interface for birthday services.
type BirthdayServiceProvider interface {
	CreateBirthday(birthday models.Birthday) (models.Birthday, error)
	GetBirthdayByID(id string) (models.Birthday, error)
	GetBirthdaysForOwner(ownerID string) ([]models.Birthday, error)
	GetAllBirthdays() ([]models.Birthday, error)
	UpdateBirthday(id string, birthday models.Birthday) (models.Birthday, error)
	DeleteBirthday(id string) error
}

// BirthdayService provides business logic for birthday record management.
type BirthdayService struct {
	db           *sql.DB
	eventService EventServiceProvider
}

// NewBirthdayService creates a new BirthdayService.
func NewBirthdayService(db *sql.DB, eventService EventServiceProvider) *BirthdayService {
	return &BirthdayService{
		db:           db,
		eventService: eventService,
	}
}

// validateBirthday checks the fields the store requires.
func validateBirthday(b models.Birthday) error {
	if b.FirstName == "" || b.LastName == "" {
		return fmt.Errorf("first and last name are required")
	}
	if b.BirthDate.IsZero() {
		return fmt.Errorf("birth date is required")
	}
	if b.OwnerID == "" {
		return fmt.Errorf("owner is required")
	}
	if len(b.Note) > models.MaxNoteLength {
		return fmt.Errorf("note must be at most %d characters", models.MaxNoteLength)
	}
	for _, offset := range b.ReminderOffsets {
		if offset < 0 {
			return fmt.Errorf("reminder offsets must be non-negative")
		}
	}
	return nil
}

// CreateBirthday validates and saves a new birthday record.
func (s *BirthdayService) CreateBirthday(birthday models.Birthday) (models.Birthday, error) {
	if err := validateBirthday(birthday); err != nil {
		return models.Birthday{}, err
	}

	birthday.ID = uuid.New().String()
	birthday.PrepareForDB()

	stmt, err := s.db.Prepare(`
		INSERT INTO birthdays (id, first_name, last_name, birth_date, owner_id, reminder_offsets_json, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return models.Birthday{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(birthday.ID, birthday.FirstName, birthday.LastName, birthday.BirthDate, birthday.OwnerID, birthday.OffsetsJSON, birthday.Note)
	if err != nil {
		return models.Birthday{}, err
	}

	s.eventService.CreateEvent("birthday.create", "info", fmt.Sprintf("Birthday reminder for '%s' created.", birthday.FullName()), &birthday.OwnerID)
	return s.GetBirthdayByID(birthday.ID)
}

// GetBirthdayByID retrieves a single birthday record by its ID.
func (s *BirthdayService) GetBirthdayByID(id string) (models.Birthday, error) {
	row := s.db.QueryRow(`
		SELECT id, first_name, last_name, birth_date, owner_id, reminder_offsets_json, note, created_at
		FROM birthdays WHERE id = ?`, id)
	return s.scanBirthday(row)
}

// GetBirthdaysForOwner retrieves all birthday records owned by a user.
func (s *BirthdayService) GetBirthdaysForOwner(ownerID string) ([]models.Birthday, error) {
	rows, err := s.db.Query(`
		SELECT id, first_name, last_name, birth_date, owner_id, reminder_offsets_json, note, created_at
		FROM birthdays WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanBirthdays(rows)
}

// GetAllBirthdays retrieves the full birthday snapshot for the reminder pass.
func (s *BirthdayService) GetAllBirthdays() ([]models.Birthday, error) {
	rows, err := s.db.Query(`
		SELECT id, first_name, last_name, birth_date, owner_id, reminder_offsets_json, note, created_at
		FROM birthdays`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanBirthdays(rows)
}

// UpdateBirthday updates an existing birthday record. The owner cannot be changed.
func (s *BirthdayService) UpdateBirthday(id string, birthday models.Birthday) (models.Birthday, error) {
	existing, err := s.GetBirthdayByID(id)
	if err != nil {
		return models.Birthday{}, err
	}

	birthday.OwnerID = existing.OwnerID
	if err := validateBirthday(birthday); err != nil {
		return models.Birthday{}, err
	}
	birthday.PrepareForDB()

	stmt, err := s.db.Prepare(`
		UPDATE birthdays
		SET first_name = ?, last_name = ?, birth_date = ?, reminder_offsets_json = ?, note = ?
		WHERE id = ?
	`)
	if err != nil {
		return models.Birthday{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(birthday.FirstName, birthday.LastName, birthday.BirthDate, birthday.OffsetsJSON, birthday.Note, id)
	if err != nil {
		return models.Birthday{}, err
	}

	s.eventService.CreateEvent("birthday.update", "info", fmt.Sprintf("Birthday reminder for '%s' updated.", birthday.FullName()), &existing.OwnerID)
	return s.GetBirthdayByID(id)
}

// DeleteBirthday removes a birthday record from the database.
func (s *BirthdayService) DeleteBirthday(id string) error {
	birthday, err := s.GetBirthdayByID(id)
	if err != nil {
		return fmt.Errorf("could not find birthday to delete: %w", err)
	}

	_, err = s.db.Exec("DELETE FROM birthdays WHERE id = ?", id)
	if err == nil {
		s.eventService.CreateEvent("birthday.delete", "warn", fmt.Sprintf("Birthday reminder for '%s' was deleted.", birthday.FullName()), &birthday.OwnerID)
	}
	return err
}

// scanBirthdays is a helper function to scan multiple rows into a slice of Birthdays.
func (s *BirthdayService) scanBirthdays(rows *sql.Rows) ([]models.Birthday, error) {
	var birthdays []models.Birthday
	for rows.Next() {
		birthday, err := s.scanBirthday(rows)
		if err != nil {
			return nil, err
		}
		birthdays = append(birthdays, birthday)
	}
	return birthdays, rows.Err()
}

// scanBirthday is a helper function to scan a single row into a Birthday struct.
func (s *BirthdayService) scanBirthday(scanner interface{ Scan(...interface{}) error }) (models.Birthday, error) {
	var birthday models.Birthday
	var offsetsJSON, note sql.NullString
	err := scanner.Scan(
		&birthday.ID,
		&birthday.FirstName,
		&birthday.LastName,
		&birthday.BirthDate,
		&birthday.OwnerID,
		&offsetsJSON,
		&note,
		&birthday.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Birthday{}, fmt.Errorf("birthday not found")
		}
		return models.Birthday{}, err
	}
	if offsetsJSON.Valid {
		birthday.OffsetsJSON = offsetsJSON.String
	}
	if note.Valid {
		birthday.Note = note.String
	}
	birthday.PrepareForAPI()
	return birthday, nil
}
