package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"certpay/internal/certificate"
	dErrors "certpay/pkg/domain-errors"
	"certpay/pkg/platform/httputil"
	"certpay/pkg/requestcontext"
)

// Service defines the interface for certificate operations.
type Service interface {
	Issue(ctx context.Context, applicationID string) (*certificate.Certificate, error)
	Get(ctx context.Context, id string) (*certificate.Certificate, error)
	FindByApplication(ctx context.Context, applicationID string) (*certificate.Certificate, error)
	List(ctx context.Context) ([]*certificate.Certificate, error)
	Revoke(ctx context.Context, id string) (*certificate.Certificate, error)
}

// IssueRequest is the HTTP request body for POST /certificates/issue.
type IssueRequest struct {
	ApplicationID string `json:"application_id"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ApplicationID = strings.TrimSpace(r.ApplicationID)
	if r.ApplicationID == "" {
		return dErrors.New(dErrors.CodeValidation, "application_id is required")
	}
	return nil
}

// Handler wires certificate endpoints to the certificate service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a certificate handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts certificate endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/certificates/issue", h.HandleIssue)
	r.Get("/certificates", h.HandleList)
	r.Get("/certificates/{certificateID}", h.HandleGet)
	r.Post("/certificates/{certificateID}/revoke", h.HandleRevoke)
	r.Get("/applications/{applicationID}/certificate", h.HandleGetByApplication)
}

// HandleIssue handles POST /certificates/issue requests.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cert, err := h.service.Issue(ctx, req.ApplicationID)
	if err != nil {
		h.logger.ErrorContext(ctx, "certificate issuance failed",
			"request_id", requestID,
			"application_id", req.ApplicationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "certificate issued",
		"request_id", requestID,
		"application_id", req.ApplicationID,
		"certificate_id", cert.ID,
	)

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"certificate_id":      cert.ID,
		"application_id":      cert.ApplicationID,
		"status":              "CERTIFICATE_ISSUED",
		"certificate_details": cert,
	})
}

// HandleGet handles GET /certificates/{certificateID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cert, err := h.service.Get(r.Context(), chi.URLParam(r, "certificateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cert)
}

// HandleGetByApplication handles GET /applications/{applicationID}/certificate requests.
func (h *Handler) HandleGetByApplication(w http.ResponseWriter, r *http.Request) {
	cert, err := h.service.FindByApplication(r.Context(), chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cert)
}

// HandleList handles GET /certificates requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	certs, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"certificates": certs,
		"total_count":  len(certs),
	})
}

// HandleRevoke handles POST /certificates/{certificateID}/revoke requests.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cert, err := h.service.Revoke(ctx, chi.URLParam(r, "certificateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "certificate revoked",
		"request_id", requestcontext.RequestID(ctx),
		"certificate_id", cert.ID,
		"application_id", cert.ApplicationID,
	)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"certificate_id": cert.ID,
		"status":         cert.Status,
		"message":        "Certificate revoked successfully",
	})
}
