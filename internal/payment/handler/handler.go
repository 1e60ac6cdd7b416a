package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"certpay/internal/application"
	"certpay/internal/payment"
	"certpay/pkg/platform/httputil"
	"certpay/pkg/requestcontext"
)

// Validator defines the interface for the payment validation engine.
type Validator interface {
	Validate(ctx context.Context, sub payment.Submission) (*payment.Verdict, error)
}

// Applications is the slice of the application service the payment endpoint
// needs: existence lookup before validation, payment recording after.
type Applications interface {
	Get(ctx context.Context, id string) (*application.Application, error)
	RecordValidatedPayment(ctx context.Context, id string, rec application.PaymentRecord) (*application.Application, error)
}

// Handler wires the payment validation endpoint to the engine.
type Handler struct {
	validator Validator
	apps      Applications
	logger    *slog.Logger
}

// New constructs a payment handler with its dependencies.
func New(validator Validator, apps Applications, logger *slog.Logger) *Handler {
	return &Handler{
		validator: validator,
		apps:      apps,
		logger:    logger,
	}
}

// Register mounts payment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/payments/validate", h.HandleValidate)
}

// HandleValidate handles POST /payments/validate requests.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	// The engine treats application_id as opaque; existence is this layer's
	// concern.
	if _, err := h.apps.Get(ctx, req.ApplicationID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	verdict, err := h.validator.Validate(ctx, req.Submission())
	if err != nil {
		h.logger.ErrorContext(ctx, "payment validation failed",
			"request_id", requestID,
			"application_id", req.ApplicationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if verdict.Valid {
		rec := application.PaymentRecord{
			PaymentType: req.PaymentType,
			BankName:    req.BankName,
			Amount:      req.Amount,
			ReferenceNo: req.ReferenceNo,
			ProofURL:    req.ProofURL,
		}
		if _, err := h.apps.RecordValidatedPayment(ctx, req.ApplicationID, rec); err != nil {
			// The reference is already spent; surfacing the record failure is
			// more honest than reporting a verdict the application never saw.
			h.logger.ErrorContext(ctx, "recording validated payment failed",
				"request_id", requestID,
				"application_id", req.ApplicationID,
				"reference_no", req.ReferenceNo,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
	}

	h.logger.InfoContext(ctx, "payment validated",
		"request_id", requestID,
		"application_id", req.ApplicationID,
		"valid", verdict.Valid,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromVerdict(req.ApplicationID, verdict))
}
