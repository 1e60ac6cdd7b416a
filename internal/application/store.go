package application

import "context"

// Store persists application records.
//
// Execute is the atomic validate-then-mutate primitive: the store holds its
// lock (mutex or SELECT ... FOR UPDATE) across both callbacks so status
// transitions cannot interleave. Stores return sentinel errors; the service
// translates them into domain errors.
type Store interface {
	Create(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, id string) (*Application, error)
	List(ctx context.Context) ([]*Application, error)
	Execute(ctx context.Context, id string, validate func(*Application) error, mutate func(*Application)) (*Application, error)
}
