package schedule

import (
	"errors"
	"sort"
	"time"

	"github.com/ipnow2025/medinote/internal/domain/medications"
)

var (
	// ErrScheduleInvariant: un medicamento con recordatorios activos no
	// puede tener cero horarios. Indica que el registro salteó la
	// resolución de frecuencia; no se degrada a "cero instancias".
	ErrScheduleInvariant = errors.New("reminder enabled with no reminder times")
)

const dateLayout = "2006-01-02"

// Daily deriva las instancias de toma de un día a partir del estado del
// registro. Función pura y determinista: mismas entradas, mismas
// identidades (medicamento + fecha + ordinal).
//
// Quedan afuera: medicamentos inactivos, fuera de ventana, sin
// recordatorios, o a demanda (필요시).
func Daily(meds []medications.Medication, date time.Time) ([]DoseInstance, error) {
	day := date.Format(dateLayout)

	out := make([]DoseInstance, 0)
	for _, m := range meds {
		if !m.Active || !m.ReminderEnabled {
			continue
		}
		if m.FrequencyCount == 0 {
			// a demanda: solo registros manuales, nunca instancias
			continue
		}
		if !m.InWindow(date) {
			continue
		}
		if len(m.ReminderTimes) == 0 {
			return nil, ErrScheduleInvariant
		}

		times := make([]string, len(m.ReminderTimes))
		copy(times, m.ReminderTimes)
		sort.Strings(times)

		for i, hm := range times {
			out = append(out, DoseInstance{
				MedicationID:   m.ID,
				MedicationName: m.Name,
				Dosage:         m.Dosage,
				Date:           day,
				ScheduledTime:  hm,
				Ordinal:        i,
			})
		}
	}

	// orden de presentación: hora asc, luego nombre (igual que la vista
	// "오늘의 복용 일정")
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledTime != out[j].ScheduledTime {
			return out[i].ScheduledTime < out[j].ScheduledTime
		}
		return out[i].MedicationName < out[j].MedicationName
	})

	return out, nil
}

// Find busca la instancia que corresponde a la clave dentro del día
// generado. ok=false si la clave no existe (día fuera de ventana,
// ordinal inválido, medicamento sin recordatorios).
func Find(instances []DoseInstance, key Key) (DoseInstance, bool) {
	for _, d := range instances {
		if d.Key() == key {
			return d, true
		}
	}
	return DoseInstance{}, false
}
