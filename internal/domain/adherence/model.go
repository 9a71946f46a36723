package adherence

import "time"

// DoseState es el estado de completado persistido de una instancia de
// toma (medicamento + día + ordinal). Es mutable: refleja el último
// toggle del día, no la historia.
type DoseState struct {
	UserID       string
	MedicationID string
	Date         string // YYYY-MM-DD
	Ordinal      int

	Completed   bool
	CompletedAt *time.Time

	UpdatedAt time.Time
}

// LogEntry es un hecho del pasado: una toma confirmada o salteada.
// Inmutable una vez creado; nunca se actualiza ni se borra, y sobrevive
// al borrado del medicamento (Name/Dosage son snapshot, no referencia).
type LogEntry struct {
	ID     string
	UserID string

	MedicationID   string
	MedicationName string
	Dosage         string

	Ordinal int

	TakenAt *time.Time // nil cuando Skipped
	Skipped bool
	Notes   string

	RecordedAt time.Time
}

type LogFilter struct {
	MedicationID string
	From         *time.Time
	To           *time.Time
	Limit        int
}
