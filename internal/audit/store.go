package audit

import "context"

// Store is the append-only sink for audit entries. Entries are never updated
// or deleted.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context) ([]Entry, error)
	ListByApplication(ctx context.Context, applicationID string) ([]Entry, error)
}
