package medications

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidDateRange = errors.New("end date before start date")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
)

// Service es el registro de medicamentos: dueño del CRUD y del ciclo
// activo/inactivo. Todo lo demás (horarios, adherencia, reportes) lee de acá.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name      string
	Dosage    string
	Frequency string

	StartDate time.Time
	EndDate   *time.Time

	Category    string
	Notes       string
	SideEffects []string

	ReminderEnabled bool
	// ReminderTimes opcional: si viene vacío se usan los horarios
	// recomendados del descriptor de frecuencia.
	ReminderTimes []string
}

func (s *Service) Add(ctx context.Context, userID string, in CreateInput) (Medication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Dosage) == "" {
		return Medication{}, ErrInvalidInput
	}
	if in.StartDate.IsZero() {
		return Medication{}, ErrInvalidInput
	}
	if in.EndDate != nil && in.EndDate.Format(dateLayout) < in.StartDate.Format(dateLayout) {
		return Medication{}, ErrInvalidDateRange
	}

	count, defaults, err := ResolveFrequency(in.Frequency)
	if err != nil {
		return Medication{}, err
	}

	times := defaults
	if len(in.ReminderTimes) > 0 {
		times, err = normalizeTimes(in.ReminderTimes)
		if err != nil {
			return Medication{}, err
		}
	}

	if err := checkTimesInvariant(in.ReminderEnabled, count, times); err != nil {
		return Medication{}, err
	}

	now := s.now()
	m := Medication{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            strings.TrimSpace(in.Name),
		Dosage:          strings.TrimSpace(in.Dosage),
		Frequency:       strings.TrimSpace(in.Frequency),
		FrequencyCount:  count,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Active:          true,
		Category:        strings.TrimSpace(in.Category),
		Notes:           strings.TrimSpace(in.Notes),
		SideEffects:     cleanList(in.SideEffects),
		ReminderEnabled: in.ReminderEnabled,
		ReminderTimes:   times,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// UpdateInput es un patch: nil = no tocar el campo.
type UpdateInput struct {
	Name      *string
	Dosage    *string
	Frequency *string

	StartDate *time.Time
	EndDate   *time.Time
	// ClearEndDate permite distinguir "end_date": null de campo ausente.
	ClearEndDate bool

	Category    *string
	Notes       *string
	SideEffects []string

	ReminderEnabled *bool
	ReminderTimes   []string
}

// Update aplica el patch. Si cambia el descriptor de frecuencia, los
// horarios se REEMPLAZAN por los recomendados (no se mezclan con los
// anteriores); ediciones manuales de horarios solo sobreviven mientras
// la frecuencia no cambie.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Medication, error) {
	m, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return Medication{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Dosage != nil {
		if strings.TrimSpace(*in.Dosage) == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.StartDate != nil {
		m.StartDate = *in.StartDate
	}
	if in.ClearEndDate {
		m.EndDate = nil
	} else if in.EndDate != nil {
		m.EndDate = in.EndDate
	}
	if in.Category != nil {
		m.Category = strings.TrimSpace(*in.Category)
	}
	if in.Notes != nil {
		m.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.SideEffects != nil {
		m.SideEffects = cleanList(in.SideEffects)
	}
	if in.ReminderEnabled != nil {
		m.ReminderEnabled = *in.ReminderEnabled
	}

	if in.Frequency != nil && strings.TrimSpace(*in.Frequency) != m.Frequency {
		count, defaults, err := ResolveFrequency(*in.Frequency)
		if err != nil {
			return Medication{}, err
		}
		m.Frequency = strings.TrimSpace(*in.Frequency)
		m.FrequencyCount = count
		m.ReminderTimes = defaults
	}

	if in.ReminderTimes != nil {
		times, err := normalizeTimes(in.ReminderTimes)
		if err != nil {
			return Medication{}, err
		}
		m.ReminderTimes = times
	}

	if m.EndDate != nil && m.EndDate.Format(dateLayout) < m.StartDate.Format(dateLayout) {
		return Medication{}, ErrInvalidDateRange
	}
	if err := checkTimesInvariant(m.ReminderEnabled, m.FrequencyCount, m.ReminderTimes); err != nil {
		return Medication{}, err
	}

	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// SetActive es el soft-delete reversible (중단 / 복용중).
func (s *Service) SetActive(ctx context.Context, userID, id string, active bool) (Medication, error) {
	m, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return Medication{}, err
	}
	if m.Active == active {
		return m, nil
	}
	m.Active = active
	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// Remove es el hard delete. Los registros de adherencia que referencien
// este medicamento se conservan como historial huérfano, no se borran.
func (s *Service) Remove(ctx context.Context, userID, id string) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, userID, id string) (Medication, error) {
	return s.getOwned(ctx, userID, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Medication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// orden estable para UI y export: nombre asc
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *Service) getOwned(ctx context.Context, userID, id string) (Medication, error) {
	userID = strings.TrimSpace(userID)
	id = strings.TrimSpace(id)
	if userID == "" || id == "" {
		return Medication{}, ErrInvalidInput
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Medication{}, ErrNotFound
	}
	if m.UserID != userID {
		return Medication{}, ErrForbidden
	}
	return m, nil
}

// normalizeTimes valida horarios HH:MM 24h, los ordena ascendente y
// rechaza duplicados.
func normalizeTimes(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}

	for _, raw := range in {
		t, err := time.Parse("15:04", strings.TrimSpace(raw))
		if err != nil {
			return nil, ErrInvalidInput
		}
		hm := t.Format("15:04")
		if _, dup := seen[hm]; dup {
			return nil, ErrInvalidInput
		}
		seen[hm] = struct{}{}
		out = append(out, hm)
	}

	sort.Strings(out)
	return out, nil
}

func checkTimesInvariant(reminderEnabled bool, count int, times []string) error {
	if !reminderEnabled {
		return nil
	}
	if len(times) != count {
		return ErrInvalidInput
	}
	return nil
}

// cleanList normaliza elementos de listas libres (efectos secundarios).
// Sin comas: las listas se persisten y exportan separadas por coma.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", " "))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
