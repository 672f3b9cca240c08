// Package handler exposes the verification pipeline over HTTP.
package handler

import (
	"context"
	"image"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kycgate/internal/platform/imaging"
	"kycgate/internal/verification"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/httputil"
	"kycgate/pkg/requestcontext"
)

// Form field names of POST /api/kyc/verify.
const (
	FieldFront    = "id_front"
	FieldBack     = "id_back"
	FieldSelfie   = "selfie"
	FieldFullName = "full_name"
	FieldDOB      = "dob"
)

// Service runs verifications.
type Service interface {
	Verify(ctx context.Context, req verification.Request) (*verification.Result, error)
}

// Handler handles HTTP requests for verifications.
type Handler struct {
	service   Service
	logger    *slog.Logger
	maxPixels int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithMaxPixels rejects uploads whose declared width×height exceeds n.
func WithMaxPixels(n int64) Option {
	return func(h *Handler) {
		h.maxPixels = n
	}
}

// New creates a verification handler.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the handler routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/kyc/verify", h.HandleVerify)
}

// HandleVerify handles POST /api/kyc/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !httputil.ParseMultipart(w, r, h.logger, ctx, requestID) {
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup
		}
	}()

	req, err := h.readRequest(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid verification upload",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Verify(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) readRequest(r *http.Request) (verification.Request, error) {
	front, err := h.readImage(r, FieldFront, true)
	if err != nil {
		return verification.Request{}, err
	}
	selfie, err := h.readImage(r, FieldSelfie, true)
	if err != nil {
		return verification.Request{}, err
	}
	back, err := h.readImage(r, FieldBack, false)
	if err != nil {
		return verification.Request{}, err
	}
	return verification.Request{
		DocumentFront: front,
		DocumentBack:  back,
		Selfie:        selfie,
		FullName:      httputil.FormValue(r, FieldFullName),
		DOB:           httputil.FormValue(r, FieldDOB),
	}, nil
}

// readImage returns nil for an absent optional upload.
func (h *Handler) readImage(r *http.Request, field string, required bool) (image.Image, error) {
	data, err := httputil.FormFile(r, field, required)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "Invalid image upload: "+err.Error())
	}
	if data == nil {
		return nil, nil
	}
	img, _, err := imaging.Decode(data, h.maxPixels)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "Invalid image upload: "+field+": "+err.Error())
	}
	return img, nil
}
