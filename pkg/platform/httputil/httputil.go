// Package httputil holds the JSON plumbing shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "storeops/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies; face payloads carry a base64 image.
const maxBodyBytes = 2 << 20

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Metadata         any    `json:"metadata,omitempty"`
}

// MetadataCarrier is implemented by error causes that expose structured
// details to the client, such as a store-hours denial.
type MetadataCarrier interface {
	ErrorMetadata() any
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and writes the envelope.
// Internal errors never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
		}
		var mc MetadataCarrier
		if errors.As(err, &mc) {
			resp.Metadata = mc.ErrorMetadata()
		}
	}
	WriteJSON(w, StatusFor(code), resp)
}

// StatusFor returns the HTTP status for an error code.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput,
		dErrors.CodeAlreadyClockedIn, dErrors.CodeAlreadyClockedOut, dErrors.CodeNotClockedIn:
		return http.StatusBadRequest
	case dErrors.CodeNotFound, dErrors.CodeFaceNotRecognized:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeOutsideClockWindow, dErrors.CodeStoreClosedLogin:
		return http.StatusForbidden
	case dErrors.CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON body into T. On failure it writes a 400 and returns false.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var req T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "failed to decode request body", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return nil, false
	}
	return &req, true
}

// Validatable requests check and normalize their own fields after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndValidate decodes T and runs its Validate method. On failure it
// writes the error response and returns false.
func DecodeAndValidate[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (PT, bool) {
	req, ok := Decode[T](w, r, logger)
	if !ok {
		return nil, false
	}
	p := PT(req)
	if err := p.Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return p, true
}
