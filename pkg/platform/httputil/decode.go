package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	dErrors "kycgate/pkg/domain-errors"
)

// DefaultMultipartMemory is the in-memory budget for parsed multipart forms.
// Larger parts spill to temporary files.
const DefaultMultipartMemory = 32 << 20

// ParseMultipart parses a multipart/form-data body.
// On failure it writes an error response and returns false.
func ParseMultipart(w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) bool {
	if err := r.ParseMultipartForm(DefaultMultipartMemory); err != nil {
		logger.WarnContext(ctx, "failed to parse multipart body",
			"error", err,
			"request_id", requestID,
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error":             "request_too_large",
				"error_description": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
			return false
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return false
	}
	return true
}

// FormFile reads an uploaded file part fully.
// A missing optional part returns (nil, nil); a missing required part is a bad request.
func FormFile(r *http.Request, field string, required bool) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			if required {
				return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s is required", field))
			}
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("invalid %s upload", field))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("failed to read %s upload", field))
	}
	return data, nil
}

// FormValue returns a trimmed form value, or nil when it is absent or blank.
func FormValue(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	if v == "" {
		return nil
	}
	return &v
}
