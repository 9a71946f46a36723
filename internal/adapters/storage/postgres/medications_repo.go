package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ipnow2025/medinote/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, user_id,
			name, dosage,
			frequency, frequency_count,
			start_date, end_date,
			active,
			category, notes, side_effects,
			reminder_enabled, reminder_times,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		m.ID,
		m.UserID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.FrequencyCount,
		m.StartDate,
		toNullTime(m.EndDate),
		m.Active,
		m.Category,
		m.Notes,
		joinList(m.SideEffects),
		m.ReminderEnabled,
		joinList(m.ReminderTimes),
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			name = $2,
			dosage = $3,
			frequency = $4,
			frequency_count = $5,
			start_date = $6,
			end_date = $7,
			active = $8,
			category = $9,
			notes = $10,
			side_effects = $11,
			reminder_enabled = $12,
			reminder_times = $13,
			updated_at = $14
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.FrequencyCount,
		m.StartDate,
		toNullTime(m.EndDate),
		m.Active,
		m.Category,
		m.Notes,
		joinList(m.SideEffects),
		m.ReminderEnabled,
		joinList(m.ReminderTimes),
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const medicationColumns = `
	id, user_id,
	name, dosage,
	frequency, frequency_count,
	start_date, end_date,
	active,
	category, notes, side_effects,
	reminder_enabled, reminder_times,
	created_at, updated_at
`

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) ListByUser(ctx context.Context, userID string) ([]medications.Medication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE user_id = $1
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMedication(row scanner) (medications.Medication, error) {
	var m medications.Medication
	var endDate sql.NullTime
	var sideEffects, reminderTimes string

	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Dosage,
		&m.Frequency,
		&m.FrequencyCount,
		&m.StartDate,
		&endDate,
		&m.Active,
		&m.Category,
		&m.Notes,
		&sideEffects,
		&m.ReminderEnabled,
		&reminderTimes,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}

	if endDate.Valid {
		t := endDate.Time
		m.EndDate = &t
	}
	m.SideEffects = splitList(sideEffects)
	m.ReminderTimes = splitList(reminderTimes)
	return m, nil
}

// helpers

// Las listas (horarios, efectos secundarios) se guardan como texto
// separado por comas; los valores nunca contienen comas (HH:MM y campos
// saneados en el dominio).
func joinList(in []string) string {
	return strings.Join(in, ",")
}

func splitList(in string) []string {
	if strings.TrimSpace(in) == "" {
		return []string{}
	}
	parts := strings.Split(in, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
