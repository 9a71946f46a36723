package reports

import (
	"context"
	"testing"
	"time"

	"github.com/ipnow2025/medinote/internal/adapters/storage/memory"
	"github.com/ipnow2025/medinote/internal/domain/adherence"
	"github.com/ipnow2025/medinote/internal/domain/medications"
	"github.com/ipnow2025/medinote/internal/domain/schedule"
)

func newTestService() (*Service, *medications.Service, *adherence.Service) {
	medsSvc := medications.NewService(memory.NewMedicationsRepo())
	trackerSvc := adherence.NewService(medsSvc, memory.NewAdherenceRepo())
	return NewService(medsSvc, trackerSvc), medsSvc, trackerSvc
}

func TestTodaySummary_Rates(t *testing.T) {
	svc, medsSvc, tracker := newTestService()
	ctx := context.Background()

	m, err := medsSvc.Add(ctx, "user-1", medications.CreateInput{
		Name:            "혈압약",
		Dosage:          "5mg",
		Frequency:       "1일 2회",
		StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ReminderEnabled: true,
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	sum, err := svc.TodaySummary(ctx, "user-1", day)
	if err != nil {
		t.Fatalf("TodaySummary error: %v", err)
	}
	if sum.Total != 2 || sum.Completed != 0 || sum.Rate != 0 || sum.NoDoses {
		t.Fatalf("unexpected summary before completion: %+v", sum)
	}

	if _, err := tracker.ToggleCompletion(ctx, "user-1",
		schedule.Key{MedicationID: m.ID, Date: "2026-01-15", Ordinal: 0}); err != nil {
		t.Fatalf("ToggleCompletion error: %v", err)
	}

	sum, err = svc.TodaySummary(ctx, "user-1", day)
	if err != nil {
		t.Fatalf("TodaySummary error: %v", err)
	}
	if sum.Completed != 1 || sum.Total != 2 {
		t.Fatalf("expected 1/2 completed, got %+v", sum)
	}
	if sum.Rate != 0.5 {
		t.Fatalf("expected rate 0.5, got %v", sum.Rate)
	}
	if sum.Date != "2026-01-15" {
		t.Fatalf("expected date 2026-01-15, got %s", sum.Date)
	}
}

func TestTodaySummary_NoDoses(t *testing.T) {
	svc, _, _ := newTestService()

	sum, err := svc.TodaySummary(context.Background(), "user-1",
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("TodaySummary error: %v", err)
	}
	if !sum.NoDoses {
		t.Fatalf("expected NoDoses with empty schedule, got %+v", sum)
	}
	if sum.Rate != 0 || sum.Total != 0 || sum.Completed != 0 {
		t.Fatalf("expected zeroed summary, got %+v", sum)
	}
}

func TestHistory_MostRecentFirst(t *testing.T) {
	svc, medsSvc, tracker := newTestService()
	ctx := context.Background()

	m, err := medsSvc.Add(ctx, "user-1", medications.CreateInput{
		Name:            "혈압약",
		Dosage:          "5mg",
		Frequency:       "1일 2회",
		StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ReminderEnabled: true,
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	if _, err := tracker.ToggleCompletion(ctx, "user-1",
		schedule.Key{MedicationID: m.ID, Date: "2026-01-14", Ordinal: 0}); err != nil {
		t.Fatalf("ToggleCompletion error: %v", err)
	}
	if _, err := tracker.ToggleCompletion(ctx, "user-1",
		schedule.Key{MedicationID: m.ID, Date: "2026-01-15", Ordinal: 0}); err != nil {
		t.Fatalf("ToggleCompletion error: %v", err)
	}

	entries, err := svc.History(ctx, "user-1", adherence.LogFilter{})
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RecordedAt.Before(entries[1].RecordedAt) {
		t.Fatalf("expected most recent first")
	}
}
