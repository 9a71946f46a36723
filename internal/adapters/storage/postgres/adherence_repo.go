package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ipnow2025/medinote/internal/domain/adherence"
)

type AdherenceRepo struct {
	db *sql.DB
}

func NewAdherenceRepo(db *sql.DB) *AdherenceRepo {
	return &AdherenceRepo{db: db}
}

func (r *AdherenceRepo) UpsertDayState(ctx context.Context, st adherence.DoseState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dose_states (
			user_id, medication_id, date, ordinal,
			completed, completed_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id, medication_id, date, ordinal)
		DO UPDATE SET
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
	`,
		st.UserID,
		st.MedicationID,
		st.Date,
		st.Ordinal,
		st.Completed,
		toNullTime(st.CompletedAt),
		st.UpdatedAt,
	)
	return err
}

func (r *AdherenceRepo) ListDayStates(ctx context.Context, userID, date string) ([]adherence.DoseState, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			user_id, medication_id, date, ordinal,
			completed, completed_at, updated_at
		FROM dose_states
		WHERE user_id = $1 AND date = $2
	`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adherence.DoseState, 0)
	for rows.Next() {
		var st adherence.DoseState
		var completedAt sql.NullTime

		if err := rows.Scan(
			&st.UserID,
			&st.MedicationID,
			&st.Date,
			&st.Ordinal,
			&st.Completed,
			&completedAt,
			&st.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if completedAt.Valid {
			t := completedAt.Time
			st.CompletedAt = &t
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *AdherenceRepo) AppendLog(ctx context.Context, e adherence.LogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adherence_logs (
			id, user_id,
			medication_id, medication_name, dosage,
			ordinal,
			taken_at, skipped, notes,
			recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		e.ID,
		e.UserID,
		e.MedicationID,
		e.MedicationName,
		e.Dosage,
		e.Ordinal,
		toNullTime(e.TakenAt),
		e.Skipped,
		e.Notes,
		e.RecordedAt,
	)
	return err
}

func (r *AdherenceRepo) ListLogs(ctx context.Context, userID string, f adherence.LogFilter) ([]adherence.LogEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, user_id,
			medication_id, medication_name, dosage,
			ordinal,
			taken_at, skipped, notes,
			recorded_at
		FROM adherence_logs
		WHERE user_id = $1
	`)

	args := []any{userID}
	argN := 2

	if strings.TrimSpace(f.MedicationID) != "" {
		sb.WriteString(fmt.Sprintf(" AND medication_id = $%d", argN))
		args = append(args, f.MedicationID)
		argN++
	}
	if f.From != nil {
		sb.WriteString(fmt.Sprintf(" AND recorded_at >= $%d", argN))
		args = append(args, *f.From)
		argN++
	}
	if f.To != nil {
		sb.WriteString(fmt.Sprintf(" AND recorded_at <= $%d", argN))
		args = append(args, *f.To)
		argN++
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY recorded_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adherence.LogEntry, 0)
	for rows.Next() {
		var e adherence.LogEntry
		var takenAt sql.NullTime

		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.MedicationID,
			&e.MedicationName,
			&e.Dosage,
			&e.Ordinal,
			&takenAt,
			&e.Skipped,
			&e.Notes,
			&e.RecordedAt,
		); err != nil {
			return nil, err
		}

		if takenAt.Valid {
			t := takenAt.Time
			e.TakenAt = &t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
