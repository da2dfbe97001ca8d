package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.Score,
		&u.ConductPoints,
		&u.ScholarshipLevel,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.TutorID,
		&a.Name,
		&a.StartTime,
		&a.EndTime,
		&a.Place,
		&a.Mode,
		&a.MaxSlot,
		&a.CurrentSlots,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

const appointmentColumns = `id, tutor_id, name, start_time, end_time, place, mode, max_slot, current_slots, status, created_at, updated_at`

// Interface methods

func (r *PgRepository) GetUser(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, role, score, conduct_points, scholarship_level, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *PgRepository) CreateUser(ctx context.Context, u *User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, role, score, conduct_points, scholarship_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	`, u.ID, u.Name, u.Email, u.Role, u.Score, u.ConductPoints, u.ScholarshipLevel)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateUserProfile(ctx context.Context, id string, patch ProfilePatch) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET score             = COALESCE($2, score),
		    conduct_points    = COALESCE($3, conduct_points),
		    scholarship_level = COALESCE($4, scholarship_level),
		    updated_at        = now()
		WHERE id = $1
		RETURNING id, name, email, role, score, conduct_points, scholarship_level, created_at, updated_at
	`, id, patch.Score, patch.ConductPoints, patch.ScholarshipLevel)
	return scanUser(row)
}

func (r *PgRepository) ListAppointments(ctx context.Context, tutorID string) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		ORDER BY created_at ASC
	`
	args := []any{}
	if tutorID != "" {
		query = `
			SELECT ` + appointmentColumns + `
			FROM appointments
			WHERE tutor_id = $1
			ORDER BY created_at ASC
		`
		args = append(args, tutorID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, tutor_id, name, start_time, end_time, place, mode, max_slot, current_slots, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	`, a.ID, a.TutorID, a.Name, a.StartTime, a.EndTime, a.Place, a.Mode, a.MaxSlot, a.CurrentSlots, a.Status)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateSchedule(ctx context.Context, id uuid.UUID, a *Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET start_time = $2,
		    end_time   = $3,
		    place      = $4,
		    mode       = $5,
		    max_slot   = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, a.StartTime, a.EndTime, a.Place, a.Mode, a.MaxSlot)
	return scanAppointment(row)
}

func (r *PgRepository) SetBookings(ctx context.Context, id uuid.UUID, slots []string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET current_slots = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, slots)
	return scanAppointment(row)
}

func (r *PgRepository) SaveMinutes(ctx context.Context, m *MinutesRecord) error {
	results, err := json.Marshal(m.StudentResults)
	if err != nil {
		return fmt.Errorf("encode student results: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO minutes (appointment_id, content, file_link, student_results, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (appointment_id) DO UPDATE
		SET content = EXCLUDED.content,
		    file_link = EXCLUDED.file_link,
		    student_results = EXCLUDED.student_results,
		    created_at = EXCLUDED.created_at
	`, m.AppointmentID, m.Content, m.FileLink, results, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert minutes: %w", err)
	}
	return nil
}

func (r *PgRepository) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) InsertNotification(ctx context.Context, n *Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.UserID, n.Title, n.Message, n.Link, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *PgRepository) MarkNotificationRead(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1
		  AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PgRepository) InsertResource(ctx context.Context, res *Resource) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO resources (id, uploader_id, title, link, course_code, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, res.ID, res.UploaderID, res.Title, res.Link, res.CourseCode, res.Description, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}
