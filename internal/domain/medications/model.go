package medications

import "time"

// Medication representa un medicamento registrado por el usuario.
// ReminderTimes define los horarios del día (HH:MM, 24h) y su longitud
// debe coincidir con FrequencyCount cuando ReminderEnabled es true.
type Medication struct {
	ID     string
	UserID string

	Name   string
	Dosage string // texto libre: "5mg", "500mg", etc.

	Frequency      string // descriptor: "1일 1회" .. "1일 4회", o "필요시"
	FrequencyCount int    // tomas por día; 0 = a demanda (필요시)

	StartDate time.Time
	EndDate   *time.Time // nil = sin fecha de fin

	Active bool

	Category    string // "고혈압", "당뇨병", "영양제", ...
	Notes       string
	SideEffects []string

	ReminderEnabled bool
	ReminderTimes   []string // ordenados ascendente, distintos

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InWindow indica si la fecha (solo día, sin hora) cae dentro de
// [StartDate, EndDate]. EndDate nil = ventana abierta.
func (m Medication) InWindow(date time.Time) bool {
	day := date.Format(dateLayout)
	if day < m.StartDate.Format(dateLayout) {
		return false
	}
	if m.EndDate != nil && day > m.EndDate.Format(dateLayout) {
		return false
	}
	return true
}

const dateLayout = "2006-01-02"
