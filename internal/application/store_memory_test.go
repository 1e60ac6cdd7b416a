package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certpay/pkg/platform/sentinel"
)

func newStoredApplication(id string, submittedAt time.Time) *Application {
	return &Application{
		ID:              id,
		Name:            "Tan Wei Ming",
		CertificateType: CertTypeUSBToken,
		Status:          StatusPending,
		SubmittedAt:     submittedAt,
		Attachments:     []string{"receipt.pdf"},
	}
}

func TestInMemoryStoreCreate(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	app := newStoredApplication("APP202603150001", time.Now())

	require.NoError(t, store.Create(ctx, app))

	err := store.Create(ctx, app)
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

func TestInMemoryStoreFindByID(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	app := newStoredApplication("APP202603150001", time.Now())
	require.NoError(t, store.Create(ctx, app))

	found, err := store.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, found.ID)

	// The store must hand out copies, not its own record.
	found.Status = StatusCertificateRevoked
	found.Attachments[0] = "tampered.pdf"
	again, err := store.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
	assert.Equal(t, "receipt.pdf", again.Attachments[0])

	_, err = store.FindByID(ctx, "APP209901010001")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	base := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, newStoredApplication("APP202603150003", base.Add(2*time.Minute))))
	require.NoError(t, store.Create(ctx, newStoredApplication("APP202603150001", base)))
	require.NoError(t, store.Create(ctx, newStoredApplication("APP202603150002", base.Add(time.Minute))))

	apps, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, "APP202603150001", apps[0].ID)
	assert.Equal(t, "APP202603150002", apps[1].ID)
	assert.Equal(t, "APP202603150003", apps[2].ID)
}

func TestInMemoryStoreExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("validate failure leaves record unchanged", func(t *testing.T) {
		store := NewInMemoryStore()
		require.NoError(t, store.Create(ctx, newStoredApplication("APP202603150001", time.Now())))

		wantErr := errors.New("not allowed")
		_, err := store.Execute(ctx, "APP202603150001",
			func(*Application) error { return wantErr },
			func(a *Application) { a.Status = StatusCertificateIssued },
		)
		assert.ErrorIs(t, err, wantErr)

		app, err := store.FindByID(ctx, "APP202603150001")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, app.Status)
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		store := NewInMemoryStore()
		_, err := store.Execute(ctx, "APP209901010001", nil, func(*Application) {})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("concurrent guarded transitions admit one winner", func(t *testing.T) {
		store := NewInMemoryStore()
		require.NoError(t, store.Create(ctx, newStoredApplication("APP202603150001", time.Now())))

		const goroutines = 32
		var wg sync.WaitGroup
		outcomes := make([]error, goroutines)

		for i := range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, outcomes[i] = store.Execute(ctx, "APP202603150001",
					func(a *Application) error {
						if a.CertificateIssued {
							return sentinel.ErrInvalidState
						}
						return nil
					},
					func(a *Application) { a.CertificateIssued = true },
				)
			}()
		}
		wg.Wait()

		winners := 0
		for _, err := range outcomes {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, sentinel.ErrInvalidState)
			}
		}
		assert.Equal(t, 1, winners)
	})
}
