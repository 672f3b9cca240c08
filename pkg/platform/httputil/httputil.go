// Package httputil is the only place domain error codes become HTTP
// statuses, plus the multipart helpers the upload endpoints share.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "kycgate/pkg/domain-errors"
)

const internalDescription = "Internal Server Error"

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type codeMapping struct {
	status int
	code   string
}

var codeMappings = map[dErrors.Code]codeMapping{
	dErrors.CodeBadRequest:    {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput:  {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:    {http.StatusBadRequest, "validation_error"},
	dErrors.CodeUnprocessable: {http.StatusUnprocessableEntity, "unprocessable"},
	dErrors.CodeUnauthorized:  {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeForbidden:     {http.StatusForbidden, "forbidden"},
	dErrors.CodeNotFound:      {http.StatusNotFound, "not_found"},
	dErrors.CodeTimeout:       {http.StatusGatewayTimeout, "timeout"},
	dErrors.CodeUnavailable:   {http.StatusServiceUnavailable, "service_unavailable"},
}

var internalMapping = codeMapping{http.StatusInternalServerError, "internal_error"}

func mappingFor(code dErrors.Code) codeMapping {
	if m, ok := codeMappings[code]; ok {
		return m
	}
	return internalMapping
}

// WriteJSON encodes body with status. Encoding errors are dropped since the
// status line is already sent.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError writes err as an ErrorResponse. Errors without a domain code,
// and internal ones, are reported with a fixed description so their detail
// stays in the server log.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code == dErrors.CodeInternal {
		WriteJSON(w, internalMapping.status, ErrorResponse{
			Error:            internalMapping.code,
			ErrorDescription: internalDescription,
		})
		return
	}
	m := mappingFor(domainErr.Code)
	WriteJSON(w, m.status, ErrorResponse{Error: m.code, ErrorDescription: domainErr.Message})
}
