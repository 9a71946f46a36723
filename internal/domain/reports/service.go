package reports

import (
	"context"
	"time"

	"github.com/ipnow2025/medinote/internal/domain/adherence"
	"github.com/ipnow2025/medinote/internal/domain/medications"
	"github.com/ipnow2025/medinote/internal/domain/schedule"
)

// Service agrega registro + tracker en vistas de solo lectura.
type Service struct {
	meds    *medications.Service
	tracker *adherence.Service
}

func NewService(meds *medications.Service, tracker *adherence.Service) *Service {
	return &Service{
		meds:    meds,
		tracker: tracker,
	}
}

// Summary es el resumen de cumplimiento de un día.
// Con cero tomas programadas se reporta Rate 0 y NoDoses true: la UI
// muestra "sin tomas programadas" en lugar de un porcentaje engañoso.
type Summary struct {
	Date      string
	Completed int
	Total     int
	Rate      float64 // [0,1]
	NoDoses   bool
}

func (s *Service) TodaySummary(ctx context.Context, userID string, date time.Time) (Summary, error) {
	instances, err := s.tracker.DayInstances(ctx, userID, date)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Date: date.Format("2006-01-02"), Total: len(instances)}
	for _, inst := range instances {
		if inst.Completed {
			sum.Completed++
		}
	}

	if sum.Total == 0 {
		sum.NoDoses = true
		return sum, nil
	}
	sum.Rate = float64(sum.Completed) / float64(sum.Total)
	return sum, nil
}

// DaySchedule expone las instancias del día con estado superpuesto.
func (s *Service) DaySchedule(ctx context.Context, userID string, date time.Time) ([]schedule.DoseInstance, error) {
	return s.tracker.DayInstances(ctx, userID, date)
}

// History devuelve el historial de tomas, más reciente primero.
func (s *Service) History(ctx context.Context, userID string, f adherence.LogFilter) ([]adherence.LogEntry, error) {
	return s.tracker.History(ctx, userID, f)
}

// ExportRows devuelve las filas planas del registro para descarga CSV.
func (s *Service) ExportRows(ctx context.Context, userID string) ([]medications.ExportRow, error) {
	return s.meds.ExportRows(ctx, userID)
}
