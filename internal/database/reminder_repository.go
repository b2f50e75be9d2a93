package database

import (
	"database/sql"
	"fmt"
	"time"

	"cineday/models"

	"github.com/google/uuid"
)

// ReminderRepository persists showtime reminder records.
type ReminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates a repository over an open connection.
func NewReminderRepository(db *sql.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create inserts a reminder, assigning an id and creation time when unset.
func (r *ReminderRepository) Create(rem *models.Reminder) error {
	if rem.ID == "" {
		rem.ID = uuid.NewString()
	}
	if rem.CreatedAt.IsZero() {
		rem.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`
		INSERT INTO reminders (id, movie_key, title, cinema, showtime_at, remind_at, created_at, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rem.ID, rem.MovieKey, rem.Title, rem.Cinema, rem.ShowtimeAt, rem.RemindAt, rem.CreatedAt, rem.DeliveredAt)
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// Delete removes a reminder by id, reporting whether it existed.
func (r *ReminderRepository) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get returns a reminder by id, or nil when absent.
func (r *ReminderRepository) Get(id string) (*models.Reminder, error) {
	row := r.db.QueryRow(`
		SELECT id, movie_key, title, cinema, showtime_at, remind_at, created_at, delivered_at
		FROM reminders WHERE id = ?`, id)
	rem, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return rem, nil
}

// ListUpcoming returns reminders whose showtime has not passed, soonest
// first.
func (r *ReminderRepository) ListUpcoming(now time.Time) ([]models.Reminder, error) {
	rows, err := r.db.Query(`
		SELECT id, movie_key, title, cinema, showtime_at, remind_at, created_at, delivered_at
		FROM reminders WHERE showtime_at >= ? ORDER BY showtime_at`, now)
	if err != nil {
		return nil, fmt.Errorf("list upcoming reminders: %w", err)
	}
	defer rows.Close()
	return collectReminders(rows)
}

// ListDue returns undelivered reminders whose alert instant has arrived.
func (r *ReminderRepository) ListDue(now time.Time) ([]models.Reminder, error) {
	rows, err := r.db.Query(`
		SELECT id, movie_key, title, cinema, showtime_at, remind_at, created_at, delivered_at
		FROM reminders
		WHERE remind_at IS NOT NULL AND remind_at <= ? AND delivered_at IS NULL
		ORDER BY remind_at`, now)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()
	return collectReminders(rows)
}

// MarkDelivered records the delivery instant for a reminder.
func (r *ReminderRepository) MarkDelivered(id string, at time.Time) error {
	_, err := r.db.Exec(`UPDATE reminders SET delivered_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("mark reminder delivered: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	var rem models.Reminder
	var remindAt, deliveredAt sql.NullTime
	if err := row.Scan(&rem.ID, &rem.MovieKey, &rem.Title, &rem.Cinema,
		&rem.ShowtimeAt, &remindAt, &rem.CreatedAt, &deliveredAt); err != nil {
		return nil, err
	}
	if remindAt.Valid {
		t := remindAt.Time
		rem.RemindAt = &t
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		rem.DeliveredAt = &t
	}
	return &rem, nil
}

func collectReminders(rows *sql.Rows) ([]models.Reminder, error) {
	var rems []models.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		rems = append(rems, *rem)
	}
	return rems, rows.Err()
}
