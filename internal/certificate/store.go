package certificate

import "context"

// Store persists certificates. At most one certificate exists per
// application; Create enforces that and returns sentinel.ErrAlreadyUsed when
// the application already has one.
type Store interface {
	Create(ctx context.Context, cert *Certificate) error
	FindByID(ctx context.Context, id string) (*Certificate, error)
	FindByApplication(ctx context.Context, applicationID string) (*Certificate, error)
	List(ctx context.Context) ([]*Certificate, error)
	Execute(ctx context.Context, id string, validate func(*Certificate) error, mutate func(*Certificate)) (*Certificate, error)
}
