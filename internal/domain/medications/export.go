package medications

import (
	"context"
	"strings"
)

// ExportHeader es la primera fila del CSV. El orden de columnas es
// superficie de contrato: no cambiarlo entre versiones.
const ExportHeader = "약품명,복용량,복용빈도,시작일,종료일,상태,카테고리,메모"

const (
	statusActive   = "복용중"
	statusInactive = "중단"
)

// ExportRow es una fila plana lista para serializar como CSV:
// sin saltos de línea ni comas embebidas.
type ExportRow struct {
	Name      string
	Dosage    string
	Frequency string
	StartDate string // YYYY-MM-DD
	EndDate   string // vacío si no hay
	Status    string // 복용중 / 중단
	Category  string
	Notes     string
}

func (r ExportRow) Fields() []string {
	return []string{
		r.Name,
		r.Dosage,
		r.Frequency,
		r.StartDate,
		r.EndDate,
		r.Status,
		r.Category,
		r.Notes,
	}
}

// ExportRows devuelve una fila por medicamento del usuario, en el mismo
// orden que ListByUser (nombre asc).
func (s *Service) ExportRows(ctx context.Context, userID string) ([]ExportRow, error) {
	items, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ExportRow, 0, len(items))
	for _, m := range items {
		end := ""
		if m.EndDate != nil {
			end = m.EndDate.Format(dateLayout)
		}
		status := statusActive
		if !m.Active {
			status = statusInactive
		}
		out = append(out, ExportRow{
			Name:      sanitizeField(m.Name),
			Dosage:    sanitizeField(m.Dosage),
			Frequency: sanitizeField(m.Frequency),
			StartDate: m.StartDate.Format(dateLayout),
			EndDate:   end,
			Status:    status,
			Category:  sanitizeField(m.Category),
			Notes:     sanitizeField(m.Notes),
		})
	}
	return out, nil
}

// sanitizeField deja el campo apto para una fila CSV simple.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, ",", " ")
	return strings.TrimSpace(s)
}
