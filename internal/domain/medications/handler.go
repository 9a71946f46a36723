package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ipnow2025/medinote/internal/domain/familyshare"
	"github.com/ipnow2025/medinote/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, sharesSvc *familyshare.Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/", listMedicationsHandler(svc))
		mr.Get("/export", exportMedicationsHandler(svc))

		mr.Get("/{medicationID}", getMedicationHandler(svc))
		mr.Patch("/{medicationID}", updateMedicationHandler(svc))
		mr.Post("/{medicationID}/toggle-active", toggleActiveHandler(svc))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc))
	})

	// Diario compartido: familiar con scope meds:read
	r.Get("/share/{ownerID}/medications", listSharedMedicationsHandler(svc, sharesSvc))
}

// createMedicationRequest es el cuerpo para registrar un medicamento.
type createMedicationRequest struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency" enums:"1일 1회,1일 2회,1일 3회,1일 4회,필요시"`

	StartDate string `json:"start_date"`         // YYYY-MM-DD
	EndDate   string `json:"end_date,omitempty"` // YYYY-MM-DD opcional

	Category    string   `json:"category"`
	Notes       string   `json:"notes"`
	SideEffects []string `json:"side_effects"`

	ReminderEnabled bool     `json:"reminder_enabled"`
	ReminderTimes   []string `json:"reminder_times"` // vacío = horarios recomendados
}

type updateMedicationRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string `json:"name"`
	Dosage    *string `json:"dosage"`
	Frequency *string `json:"frequency"`

	StartDate *string `json:"start_date"`
	// Sin puntero: un puntero a RawMessage se anula ante un null literal
	// antes de llegar a UnmarshalJSON y "null" sería indistinguible de
	// campo ausente. Como RawMessage plano, ausente = nil y null = "null".
	EndDate json.RawMessage `json:"end_date"` // "YYYY-MM-DD" o null para limpiar

	Category    *string  `json:"category"`
	Notes       *string  `json:"notes"`
	SideEffects []string `json:"side_effects"`

	ReminderEnabled *bool    `json:"reminder_enabled"`
	ReminderTimes   []string `json:"reminder_times"`
}

// medicationResponse representa un medicamento devuelto por la API.
type medicationResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Dosage         string   `json:"dosage"`
	Frequency      string   `json:"frequency"`
	FrequencyCount int      `json:"frequency_count"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date,omitempty"`
	Active         bool     `json:"active"`
	Category       string   `json:"category"`
	Notes          string   `json:"notes"`
	SideEffects    []string `json:"side_effects"`

	ReminderEnabled bool     `json:"reminder_enabled"`
	ReminderTimes   []string `json:"reminder_times"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createMedicationHandler godoc
// @Summary Registrar medicamento
// @Description Registra un medicamento del usuario autenticado. La frecuencia se resuelve a cantidad de tomas + horarios recomendados; reminder_times explícitos la pisan. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags medications
// @Accept json
// @Produce json
// @Param payload body createMedicationRequest true "Datos del medicamento; fechas YYYY-MM-DD"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / frecuencia o fechas inválidas"
// @Failure 401 {string} string "unauthorized"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		var end *time.Time
		if strings.TrimSpace(req.EndDate) != "" {
			t, err := time.Parse("2006-01-02", req.EndDate)
			if err != nil {
				http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			end = &t
		}

		m, err := svc.Add(r.Context(), claims.UserID, CreateInput{
			Name:            req.Name,
			Dosage:          req.Dosage,
			Frequency:       req.Frequency,
			StartDate:       start,
			EndDate:         end,
			Category:        req.Category,
			Notes:           req.Notes,
			SideEffects:     req.SideEffects,
			ReminderEnabled: req.ReminderEnabled,
			ReminderTimes:   req.ReminderTimes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicamentos
// @Description Lista los medicamentos del usuario autenticado, nombre ascendente.
// @Tags medications
// @Produce json
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.GetByID(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// updateMedicationHandler godoc
// @Summary Actualizar medicamento (PATCH)
// @Description Aplica un patch parcial. Si cambia `frequency`, `reminder_times` se reemplaza por los horarios recomendados del nuevo descriptor.
// @Tags medications
// @Accept json
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param payload body updateMedicationRequest true "Campos a modificar"
// @Success 200 {object} medicationResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [patch]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Name:            req.Name,
			Dosage:          req.Dosage,
			Frequency:       req.Frequency,
			Category:        req.Category,
			Notes:           req.Notes,
			SideEffects:     req.SideEffects,
			ReminderEnabled: req.ReminderEnabled,
			ReminderTimes:   req.ReminderTimes,
		}

		if req.StartDate != nil {
			t, err := time.Parse("2006-01-02", *req.StartDate)
			if err != nil {
				http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.StartDate = &t
		}

		// end_date presente: "YYYY-MM-DD" actualiza, null limpia
		if len(req.EndDate) > 0 {
			raw := strings.TrimSpace(string(req.EndDate))
			if raw == "null" {
				in.ClearEndDate = true
			} else {
				var s string
				if err := json.Unmarshal(req.EndDate, &s); err != nil {
					http.Error(w, "end_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					http.Error(w, "end_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				in.EndDate = &t
			}
		}

		m, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// toggleActiveHandler godoc
// @Summary Alternar estado 복용중/중단
// @Description Soft delete reversible: invierte el flag activo del medicamento.
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID}/toggle-active [post]
func toggleActiveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "medicationID")
		m, err := svc.GetByID(r.Context(), claims.UserID, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		updated, err := svc.SetActive(r.Context(), claims.UserID, id, !m.Active)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(updated))
	}
}

// deleteMedicationHandler godoc
// @Summary Eliminar medicamento
// @Description Hard delete irreversible. El historial de adherencia que lo referencia se conserva como registro huérfano.
// @Tags medications
// @Param medicationID path string true "ID del medicamento"
// @Success 204 {string} string "sin contenido"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Remove(r.Context(), claims.UserID, chi.URLParam(r, "medicationID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// exportMedicationsHandler godoc
// @Summary Exportar medicamentos (CSV)
// @Description Descarga el registro como CSV con orden de columnas fijo: 약품명,복용량,복용빈도,시작일,종료일,상태,카테고리,메모.
// @Tags medications
// @Produce plain
// @Success 200 {string} string "contenido CSV"
// @Failure 401 {string} string "unauthorized"
// @Router /medications/export [get]
func exportMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := svc.ExportRows(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		lines := make([]string, 0, len(rows)+1)
		lines = append(lines, ExportHeader)
		for _, row := range rows {
			lines = append(lines, strings.Join(row.Fields(), ","))
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="medications.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	}
}

// listSharedMedicationsHandler godoc
// @Summary Listar medicamentos de un diario compartido
// @Description Un familiar con grant activo y scope `meds:read` puede ver los medicamentos del dueño.
// @Tags share
// @Produce json
// @Param ownerID path string true "ID del dueño del diario"
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /share/{ownerID}/medications [get]
func listSharedMedicationsHandler(svc *Service, sharesSvc *familyshare.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ownerID := chi.URLParam(r, "ownerID")
		if ownerID != claims.UserID {
			g, err := sharesSvc.ActiveGrant(r.Context(), ownerID, claims.UserID)
			if err != nil || !familyshare.HasScope(g, familyshare.ScopeMedsRead) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		items, err := svc.ListByUser(r.Context(), ownerID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	end := ""
	if m.EndDate != nil {
		end = m.EndDate.Format(dateLayout)
	}
	return medicationResponse{
		ID:              m.ID,
		Name:            m.Name,
		Dosage:          m.Dosage,
		Frequency:       m.Frequency,
		FrequencyCount:  m.FrequencyCount,
		StartDate:       m.StartDate.Format(dateLayout),
		EndDate:         end,
		Active:          m.Active,
		Category:        m.Category,
		Notes:           m.Notes,
		SideEffects:     m.SideEffects,
		ReminderEnabled: m.ReminderEnabled,
		ReminderTimes:   m.ReminderTimes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrInvalidFrequency),
		errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
