package adherence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ipnow2025/medinote/internal/domain/medications"
	"github.com/ipnow2025/medinote/internal/domain/schedule"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownDoseInstance: la clave no corresponde a ninguna instancia
	// generable (día fuera de ventana, ordinal inválido, medicamento ajeno
	// o inexistente).
	ErrUnknownDoseInstance = errors.New("unknown dose instance")
)

// MedicationSource es lo que el tracker necesita del registro.
type MedicationSource interface {
	GetByID(ctx context.Context, userID, id string) (medications.Medication, error)
	ListByUser(ctx context.Context, userID string) ([]medications.Medication, error)
}

// Service es el tracker de adherencia: registra toggles y skips contra
// instancias generadas y mantiene el historial append-only.
type Service struct {
	meds MedicationSource
	repo Repository
	now  func() time.Time

	// serializa mutaciones por usuario: dos "completar" concurrentes
	// sobre la misma clave no deben duplicar entradas del historial
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(meds MedicationSource, repo Repository) *Service {
	return &Service{
		meds:  meds,
		repo:  repo,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// ToggleCompletion invierte el estado de completado de la instancia.
// Al completar fija CompletedAt y agrega una entrada al historial; al
// des-completar solo limpia CompletedAt — el historial no se toca
// (deshacer es estado transitorio, no una corrección del pasado).
// Medicamentos sin instancias generadas (필요시 o recordatorios apagados)
// aceptan ordinal 0 como toma manual del día.
func (s *Service) ToggleCompletion(ctx context.Context, userID string, key schedule.Key) (schedule.DoseInstance, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.TrimSpace(key.MedicationID) == "" || key.Ordinal < 0 {
		return schedule.DoseInstance{}, ErrInvalidInput
	}

	unlock := s.lockUser(userID)
	defer unlock()

	inst, med, err := s.resolveInstance(ctx, userID, key)
	if err != nil {
		return schedule.DoseInstance{}, err
	}

	st, err := s.currentState(ctx, userID, key)
	if err != nil {
		return schedule.DoseInstance{}, err
	}

	now := s.now()
	st.Completed = !st.Completed
	st.UpdatedAt = now
	if st.Completed {
		st.CompletedAt = &now
	} else {
		st.CompletedAt = nil
	}

	if err := s.repo.UpsertDayState(ctx, st); err != nil {
		return schedule.DoseInstance{}, err
	}

	if st.Completed {
		entry := LogEntry{
			ID:             uuid.NewString(),
			UserID:         userID,
			MedicationID:   med.ID,
			MedicationName: med.Name,
			Dosage:         med.Dosage,
			Ordinal:        key.Ordinal,
			TakenAt:        &now,
			Skipped:        false,
			RecordedAt:     now,
		}
		if err := s.repo.AppendLog(ctx, entry); err != nil {
			return schedule.DoseInstance{}, err
		}
	}

	inst.Completed = st.Completed
	inst.CompletedAt = st.CompletedAt
	return inst, nil
}

// RecordSkip agrega una entrada salteada al historial. Medicamentos sin
// instancias generadas (필요시 o recordatorios apagados) se registran con
// ordinal 0 contra el día.
func (s *Service) RecordSkip(ctx context.Context, userID string, key schedule.Key, notes string) (LogEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.TrimSpace(key.MedicationID) == "" || key.Ordinal < 0 {
		return LogEntry{}, ErrInvalidInput
	}

	unlock := s.lockUser(userID)
	defer unlock()

	_, med, err := s.resolveInstance(ctx, userID, key)
	if err != nil {
		return LogEntry{}, err
	}

	now := s.now()
	entry := LogEntry{
		ID:             uuid.NewString(),
		UserID:         userID,
		MedicationID:   med.ID,
		MedicationName: med.Name,
		Dosage:         med.Dosage,
		Ordinal:        key.Ordinal,
		TakenAt:        nil,
		Skipped:        true,
		Notes:          strings.TrimSpace(notes),
		RecordedAt:     now,
	}

	if err := s.repo.AppendLog(ctx, entry); err != nil {
		return LogEntry{}, err
	}
	return entry, nil
}

// DayInstances devuelve las instancias del día con su estado de
// completado superpuesto.
func (s *Service) DayInstances(ctx context.Context, userID string, date time.Time) ([]schedule.DoseInstance, error) {
	meds, err := s.meds.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	instances, err := schedule.Daily(meds, date)
	if err != nil {
		return nil, err
	}

	states, err := s.repo.ListDayStates(ctx, userID, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	byKey := make(map[schedule.Key]DoseState, len(states))
	for _, st := range states {
		byKey[schedule.Key{MedicationID: st.MedicationID, Date: st.Date, Ordinal: st.Ordinal}] = st
	}

	for i := range instances {
		if st, ok := byKey[instances[i].Key()]; ok {
			instances[i].Completed = st.Completed
			instances[i].CompletedAt = st.CompletedAt
		}
	}
	return instances, nil
}

func (s *Service) History(ctx context.Context, userID string, f LogFilter) ([]LogEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListLogs(ctx, userID, f)
}

// adHoc: medicamentos que no generan instancias — a demanda (필요시) o con
// recordatorios apagados. Se registran con ordinal 0 contra el día.
func adHoc(m medications.Medication) bool {
	return m.FrequencyCount == 0 || !m.ReminderEnabled
}

func (s *Service) resolveInstance(ctx context.Context, userID string, key schedule.Key) (schedule.DoseInstance, medications.Medication, error) {
	med, err := s.meds.GetByID(ctx, userID, key.MedicationID)
	if err != nil {
		return schedule.DoseInstance{}, medications.Medication{}, ErrUnknownDoseInstance
	}

	date, err := time.Parse("2006-01-02", key.Date)
	if err != nil {
		return schedule.DoseInstance{}, medications.Medication{}, ErrInvalidInput
	}

	if adHoc(med) {
		if key.Ordinal != 0 || !med.Active || !med.InWindow(date) {
			return schedule.DoseInstance{}, medications.Medication{}, ErrUnknownDoseInstance
		}
		return schedule.DoseInstance{
			MedicationID:   med.ID,
			MedicationName: med.Name,
			Dosage:         med.Dosage,
			Date:           key.Date,
			Ordinal:        0,
		}, med, nil
	}

	instances, err := schedule.Daily([]medications.Medication{med}, date)
	if err != nil {
		return schedule.DoseInstance{}, medications.Medication{}, err
	}

	inst, ok := schedule.Find(instances, key)
	if !ok {
		return schedule.DoseInstance{}, medications.Medication{}, ErrUnknownDoseInstance
	}
	return inst, med, nil
}

func (s *Service) currentState(ctx context.Context, userID string, key schedule.Key) (DoseState, error) {
	states, err := s.repo.ListDayStates(ctx, userID, key.Date)
	if err != nil {
		return DoseState{}, err
	}
	for _, st := range states {
		if st.MedicationID == key.MedicationID && st.Ordinal == key.Ordinal {
			return st, nil
		}
	}
	return DoseState{
		UserID:       userID,
		MedicationID: key.MedicationID,
		Date:         key.Date,
		Ordinal:      key.Ordinal,
	}, nil
}

func (s *Service) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
