package audit

import (
	"context"
	"fmt"

	"certpay/pkg/requestcontext"
)

// Publisher hands audit entries to the background worker over a buffered
// channel so request handlers never block on the audit store. A full buffer
// surfaces as an error; callers decide whether that is fatal for them.
type Publisher struct {
	inbox chan<- Entry
}

func NewPublisher(inbox chan<- Entry) *Publisher {
	return &Publisher{inbox: inbox}
}

func (p *Publisher) Emit(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	select {
	case p.inbox <- entry:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("audit buffer full, dropping %s for %s", entry.Action, entry.ApplicationID)
	}
}
