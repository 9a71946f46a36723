package adherence

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ipnow2025/medinote/internal/domain/medications"
	"github.com/ipnow2025/medinote/internal/domain/schedule"
	"github.com/ipnow2025/medinote/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/schedule/daily", func(sr chi.Router) {
		sr.Get("/", dailyScheduleHandler(svc))
		sr.Post("/complete", toggleCompletionHandler(svc))
		sr.Post("/skip", recordSkipHandler(svc))
	})
}

// doseKeyRequest identifica una instancia de toma.
type doseKeyRequest struct {
	MedicationID string `json:"medication_id"`
	Date         string `json:"date"` // YYYY-MM-DD
	Ordinal      int    `json:"ordinal"`
	Notes        string `json:"notes,omitempty"` // solo para skip
}

// doseInstanceResponse es una toma del día con su estado actual.
type doseInstanceResponse struct {
	MedicationID   string     `json:"medication_id"`
	MedicationName string     `json:"medication_name"`
	Dosage         string     `json:"dosage"`
	Date           string     `json:"date"`
	ScheduledTime  string     `json:"scheduled_time"`
	Ordinal        int        `json:"ordinal"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type logEntryResponse struct {
	ID             string     `json:"id"`
	MedicationID   string     `json:"medication_id"`
	MedicationName string     `json:"medication_name"`
	Dosage         string     `json:"dosage"`
	Ordinal        int        `json:"ordinal"`
	TakenAt        *time.Time `json:"taken_at,omitempty"`
	Skipped        bool       `json:"skipped"`
	Notes          string     `json:"notes,omitempty"`
	RecordedAt     time.Time  `json:"recorded_at"`
}

// dailyScheduleHandler godoc
// @Summary Tomas programadas de un día
// @Description Deriva las instancias de toma del día (medicamentos activos, en ventana, con recordatorios) con su estado de completado superpuesto. Sin `date` usa hoy.
// @Tags schedule
// @Produce json
// @Param date query string false "Fecha YYYY-MM-DD (default hoy)"
// @Success 200 {array} doseInstanceResponse
// @Failure 400 {string} string "date inválida"
// @Failure 401 {string} string "unauthorized"
// @Router /schedule/daily [get]
func dailyScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		date := time.Now()
		if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = t
		}

		instances, err := svc.DayInstances(r.Context(), claims.UserID, date)
		if err != nil {
			writeTrackerError(w, err)
			return
		}

		out := make([]doseInstanceResponse, 0, len(instances))
		for _, inst := range instances {
			out = append(out, toDoseInstanceResponse(inst))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// toggleCompletionHandler godoc
// @Summary Alternar completado de una toma
// @Description Toggle idempotente: completar fija completed_at y agrega una entrada al historial; des-completar solo limpia el estado del día (el historial no se borra).
// @Tags schedule
// @Accept json
// @Produce json
// @Param payload body doseKeyRequest true "Clave de la instancia (medication_id + date + ordinal)"
// @Success 200 {object} doseInstanceResponse
// @Failure 400 {string} string "invalid json / clave inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "unknown dose instance"
// @Router /schedule/daily/complete [post]
func toggleCompletionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req doseKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		inst, err := svc.ToggleCompletion(r.Context(), claims.UserID, schedule.Key{
			MedicationID: req.MedicationID,
			Date:         req.Date,
			Ordinal:      req.Ordinal,
		})
		if err != nil {
			writeTrackerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseInstanceResponse(inst))
	}
}

// recordSkipHandler godoc
// @Summary Registrar toma salteada
// @Description Agrega una entrada salteada (con nota opcional) al historial append-only. Medicamentos 필요시 o con recordatorios apagados se registran con ordinal 0.
// @Tags schedule
// @Accept json
// @Produce json
// @Param payload body doseKeyRequest true "Clave de la instancia + nota opcional"
// @Success 201 {object} logEntryResponse
// @Failure 400 {string} string "invalid json / clave inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "unknown dose instance"
// @Router /schedule/daily/skip [post]
func recordSkipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req doseKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		entry, err := svc.RecordSkip(r.Context(), claims.UserID, schedule.Key{
			MedicationID: req.MedicationID,
			Date:         req.Date,
			Ordinal:      req.Ordinal,
		}, req.Notes)
		if err != nil {
			writeTrackerError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toLogEntryResponse(entry))
	}
}

func toDoseInstanceResponse(d schedule.DoseInstance) doseInstanceResponse {
	return doseInstanceResponse{
		MedicationID:   d.MedicationID,
		MedicationName: d.MedicationName,
		Dosage:         d.Dosage,
		Date:           d.Date,
		ScheduledTime:  d.ScheduledTime,
		Ordinal:        d.Ordinal,
		Completed:      d.Completed,
		CompletedAt:    d.CompletedAt,
	}
}

func toLogEntryResponse(e LogEntry) logEntryResponse {
	return logEntryResponse{
		ID:             e.ID,
		MedicationID:   e.MedicationID,
		MedicationName: e.MedicationName,
		Dosage:         e.Dosage,
		Ordinal:        e.Ordinal,
		TakenAt:        e.TakenAt,
		Skipped:        e.Skipped,
		Notes:          e.Notes,
		RecordedAt:     e.RecordedAt,
	}
}

func writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownDoseInstance):
		http.Error(w, "unknown dose instance", http.StatusNotFound)
	case errors.Is(err, schedule.ErrScheduleInvariant):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, medications.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
