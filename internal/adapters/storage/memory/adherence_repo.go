package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/ipnow2025/medinote/internal/domain/adherence"
)

type stateKey struct {
	userID       string
	medicationID string
	date         string
	ordinal      int
}

type adherenceRepo struct {
	mu     sync.RWMutex
	states map[stateKey]adherence.DoseState
	logs   []adherence.LogEntry
}

func NewAdherenceRepo() adherence.Repository {
	return &adherenceRepo{
		states: make(map[stateKey]adherence.DoseState),
	}
}

func (r *adherenceRepo) UpsertDayState(ctx context.Context, st adherence.DoseState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(st.UserID) == "" || strings.TrimSpace(st.MedicationID) == "" || st.Date == "" {
		return errors.New("dose state key required")
	}

	r.states[stateKey{
		userID:       st.UserID,
		medicationID: st.MedicationID,
		date:         st.Date,
		ordinal:      st.Ordinal,
	}] = st
	return nil
}

func (r *adherenceRepo) ListDayStates(ctx context.Context, userID, date string) ([]adherence.DoseState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adherence.DoseState, 0)
	for k, st := range r.states {
		if k.userID == userID && k.date == date {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *adherenceRepo) AppendLog(ctx context.Context, e adherence.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("log entry id required")
	}
	for _, existing := range r.logs {
		if existing.ID == e.ID {
			return errors.New("log entry already exists")
		}
	}

	r.logs = append(r.logs, e)
	return nil
}

func (r *adherenceRepo) ListLogs(ctx context.Context, userID string, f adherence.LogFilter) ([]adherence.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]adherence.LogEntry, 0)
	for _, e := range r.logs {
		if e.UserID != userID {
			continue
		}
		if f.MedicationID != "" && e.MedicationID != f.MedicationID {
			continue
		}
		if f.From != nil && e.RecordedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.RecordedAt.After(*f.To) {
			continue
		}
		out = append(out, e)
	}

	// más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
