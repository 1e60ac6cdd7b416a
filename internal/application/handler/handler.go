package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certpay/internal/application"
	"certpay/pkg/platform/httputil"
	"certpay/pkg/requestcontext"
)

// Service defines the interface for application operations.
type Service interface {
	Submit(ctx context.Context, in application.SubmitInput) (*application.Application, error)
	Get(ctx context.Context, id string) (*application.Application, error)
	List(ctx context.Context) ([]*application.Application, error)
}

// Handler wires application endpoints to the application service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an application handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts application endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.HandleSubmit)
	r.Get("/applications", h.HandleList)
	r.Get("/applications/{applicationID}", h.HandleGet)
	r.Get("/machine-pools", h.HandleMachinePools)
}

// HandleSubmit handles POST /applications requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.Submit(ctx, req.Input())
	if err != nil {
		h.logger.ErrorContext(ctx, "application submission failed",
			"request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application submitted",
		"request_id", requestID,
		"application_id", app.ID,
		"certificate_type", app.CertificateType,
		"machine_id", app.AssignedMachine.ID,
	)

	httputil.WriteJSON(w, http.StatusCreated, app)
}

// HandleGet handles GET /applications/{applicationID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Get(r.Context(), chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleList handles GET /applications requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"applications": apps,
		"total_count":  len(apps),
	})
}

// HandleMachinePools handles GET /machine-pools requests.
func (h *Handler) HandleMachinePools(w http.ResponseWriter, r *http.Request) {
	pools := application.MachinePools()
	total := 0
	for _, machines := range pools {
		total += len(machines)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"machine_pools":  pools,
		"total_machines": total,
	})
}
