package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certpay/internal/audit"
	dErrors "certpay/pkg/domain-errors"
	"certpay/pkg/platform/httputil"
)

// Handler exposes the audit trail read endpoint.
type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

// New constructs an audit handler.
func New(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-trail", h.HandleList)
}

// HandleList handles GET /audit-trail requests, optionally filtered by
// application_id.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		entries []audit.Entry
		err     error
	)
	if applicationID := r.URL.Query().Get("application_id"); applicationID != "" {
		entries, err = h.store.ListByApplication(ctx, applicationID)
	} else {
		entries, err = h.store.List(ctx)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "audit trail read failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"audit_trail": entries})
}
