package schedule

import "time"

// Key identifica una instancia de toma sin id generado: la identidad es
// (medicamento, día, ordinal) y es estable entre regeneraciones.
type Key struct {
	MedicationID string
	Date         string // YYYY-MM-DD
	Ordinal      int
}

// DoseInstance es una toma esperada de un medicamento en un día concreto.
// Se deriva del registro, no se persiste; el estado de completado se
// superpone desde el tracker de adherencia.
type DoseInstance struct {
	MedicationID   string
	MedicationName string
	Dosage         string // snapshot para mostrar

	Date          string // YYYY-MM-DD
	ScheduledTime string // HH:MM
	Ordinal       int    // 0-based, por hora ascendente dentro del día

	Completed   bool
	CompletedAt *time.Time
}

func (d DoseInstance) Key() Key {
	return Key{
		MedicationID: d.MedicationID,
		Date:         d.Date,
		Ordinal:      d.Ordinal,
	}
}
