package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit entries from a channel and persists them. It keeps
// background processing testable without wiring queue implementations.
// Store failures are logged and skipped; the audit trail is best-effort and
// must never take the service down.
type Worker struct {
	store  Store
	inbox  <-chan Entry
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Entry, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is canceled. On shutdown it flushes
// whatever is already buffered before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case entry := <-w.inbox:
			w.append(ctx, entry)
		}
	}
}

func (w *Worker) flush() {
	for {
		select {
		case entry := <-w.inbox:
			w.append(context.Background(), entry)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, entry Entry) {
	if err := w.store.Append(ctx, entry); err != nil && w.logger != nil {
		w.logger.Error("audit append failed",
			"application_id", entry.ApplicationID,
			"action", entry.Action,
			"error", err,
		)
	}
}
