package medications

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInvalidFrequency = errors.New("invalid frequency descriptor")
)

// FrequencyAsNeeded es el descriptor centinela para tomas a demanda:
// no genera instancias programadas, solo registros manuales.
const FrequencyAsNeeded = "필요시"

// defaultTimesByCount son los horarios recomendados por cantidad de tomas.
// Mismo esquema que usaba la pantalla original de medicamentos.
var defaultTimesByCount = map[int][]string{
	1: {"08:00"},
	2: {"08:00", "20:00"},
	3: {"08:00", "13:00", "19:00"},
	4: {"08:00", "12:00", "17:00", "21:00"},
}

// ResolveFrequency mapea un descriptor "1일 N회" (N 1..4) o "필요시" a la
// cantidad canónica de tomas diarias y sus horarios por defecto.
// Es una función pura; el caller decide cuándo pisar ReminderTimes.
func ResolveFrequency(descriptor string) (count int, defaultTimes []string, err error) {
	d := strings.TrimSpace(descriptor)
	if d == "" {
		return 0, nil, ErrInvalidFrequency
	}
	if d == FrequencyAsNeeded {
		return 0, nil, nil
	}

	rest, ok := strings.CutPrefix(d, "1일")
	if !ok {
		return 0, nil, ErrInvalidFrequency
	}
	rest = strings.TrimSpace(rest)
	num, ok := strings.CutSuffix(rest, "회")
	if !ok {
		return 0, nil, ErrInvalidFrequency
	}

	n, convErr := strconv.Atoi(strings.TrimSpace(num))
	if convErr != nil {
		return 0, nil, ErrInvalidFrequency
	}

	times, ok := defaultTimesByCount[n]
	if !ok {
		return 0, nil, ErrInvalidFrequency
	}

	// la tabla es compartida; nunca se devuelve por referencia
	out := make([]string, len(times))
	copy(out, times)
	return n, out, nil
}
