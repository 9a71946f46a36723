package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ipnow2025/medinote/internal/domain/adherence"
	"github.com/ipnow2025/medinote/internal/domain/familyshare"
	"github.com/ipnow2025/medinote/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, sharesSvc *familyshare.Service) {
	r.Route("/reports", func(rr chi.Router) {
		rr.Get("/today", todaySummaryHandler(svc))
		rr.Get("/history", historyHandler(svc))
	})

	// Resumen de un diario compartido: familiar con scope adherence:read
	r.Get("/share/{ownerID}/reports/today", sharedTodaySummaryHandler(svc, sharesSvc))
}

// summaryResponse es el resumen de cumplimiento de un día.
type summaryResponse struct {
	Date      string  `json:"date"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`     // [0,1]
	NoDoses   bool    `json:"no_doses"` // true: mostrar "sin tomas programadas"
}

type historyEntryResponse struct {
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

// todaySummaryHandler godoc
// @Summary Resumen de cumplimiento del día
// @Description Tomas completadas / programadas y tasa del día. Con cero tomas programadas devuelve rate 0 y no_doses true. Sin `date` usa hoy.
// @Tags reports
// @Produce json
// @Param date query string false "Fecha YYYY-MM-DD (default hoy)"
// @Success 200 {object} summaryResponse
// @Failure 400 {string} string "date inválida"
// @Failure 401 {string} string "unauthorized"
// @Router /reports/today [get]
func todaySummaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		date, err := parseDateParam(r, "date")
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		sum, err := svc.TodaySummary(r.Context(), claims.UserID, date)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toSummaryResponse(sum))
	}
}

// historyHandler godoc
// @Summary Historial de tomas
// @Description Entradas del historial append-only (tomadas y salteadas), más reciente primero. Filtros opcionales por medicamento y rango de fechas.
// @Tags reports
// @Produce json
// @Param medication_id query string false "Filtrar por medicamento"
// @Param from query string false "Fecha mínima YYYY-MM-DD"
// @Param to query string false "Fecha máxima YYYY-MM-DD"
// @Param limit query int false "Máximo de entradas (1-200). Por defecto 50"
// @Success 200 {array} historyEntryResponse
// @Failure 400 {string} string "filtros inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /reports/history [get]
func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f := adherence.LogFilter{Limit: 50}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
				f.Limit = n
			}
		}
		if v := strings.TrimSpace(r.URL.Query().Get("medication_id")); v != "" {
			f.MedicationID = v
		}
		if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			f.From = &t
		}
		if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			// incluye todo el día "to"
			end := t.Add(24*time.Hour - time.Nanosecond)
			f.To = &end
		}

		items, err := svc.History(r.Context(), claims.UserID, f)
		if err != nil {
			if errors.Is(err, adherence.ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]historyEntryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, historyEntryResponse{
				ID:             e.ID,
				MedicationID:   e.MedicationID,
				MedicationName: e.MedicationName,
				Dosage:         e.Dosage,
				Ordinal:        e.Ordinal,
				TakenAt:        e.TakenAt,
				Skipped:        e.Skipped,
				Notes:          e.Notes,
				RecordedAt:     e.RecordedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// sharedTodaySummaryHandler godoc
// @Summary Resumen del día de un diario compartido
// @Description Un familiar con grant activo y scope `adherence:read` puede ver el resumen de cumplimiento del dueño.
// @Tags share
// @Produce json
// @Param ownerID path string true "ID del dueño del diario"
// @Param date query string false "Fecha YYYY-MM-DD (default hoy)"
// @Success 200 {object} summaryResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /share/{ownerID}/reports/today [get]
func sharedTodaySummaryHandler(svc *Service, sharesSvc *familyshare.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ownerID := chi.URLParam(r, "ownerID")
		if ownerID != claims.UserID {
			g, err := sharesSvc.ActiveGrant(r.Context(), ownerID, claims.UserID)
			if err != nil || !familyshare.HasScope(g, familyshare.ScopeAdhRead) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		date, err := parseDateParam(r, "date")
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		sum, err := svc.TodaySummary(r.Context(), ownerID, date)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toSummaryResponse(sum))
	}
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", v)
}

func toSummaryResponse(s Summary) summaryResponse {
	return summaryResponse{
		Date:      s.Date,
		Completed: s.Completed,
		Total:     s.Total,
		Rate:      s.Rate,
		NoDoses:   s.NoDoses,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
