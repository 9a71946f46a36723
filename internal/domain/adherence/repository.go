package adherence

import "context"

type Repository interface {
	UpsertDayState(ctx context.Context, st DoseState) error
	ListDayStates(ctx context.Context, userID, date string) ([]DoseState, error)

	// AppendLog agrega una entrada al historial. El historial es
	// append-only: no hay Update ni Delete.
	AppendLog(ctx context.Context, e LogEntry) error
	ListLogs(ctx context.Context, userID string, f LogFilter) ([]LogEntry, error)
}
