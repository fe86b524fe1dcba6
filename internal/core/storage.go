package core

import "context"

// DocumentStore persists the full memory document. Load degrades to an empty
// document on absence or corruption; Save replaces the document atomically.
type DocumentStore interface {
	Load(ctx context.Context) (MemoryDocument, error)
	Save(ctx context.Context, doc MemoryDocument) error
}

// AuditRepository records the trail the TaskObserver produces.
type AuditRepository interface {
	InsertStep(ctx context.Context, runID string, iteration int, step EpisodeStep) error
	InsertRun(ctx context.Context, runID, task, status string, iterations int) error
}
