package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
)

// maxBodyBytes bounds request bodies accepted by the API.
const maxBodyBytes = 64 << 10

// envelope is the response shape of every API endpoint.
type envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Code    apperrors.ErrorCode `json:"code,omitempty"`
	Field   string              `json:"field,omitempty"`
}

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{
			Code: http.StatusBadRequest,
			Err:  apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"),
		})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// WriteData writes a successful envelope.
func WriteData(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, envelope{Success: true, Data: data})
}

// ErrorParams groups parameters for WriteError.
// Code is optional; it is derived from the error code when zero.
type ErrorParams struct {
	Code int
	Err  error
}

// WriteError writes a failed envelope. Only the displayable message is exposed.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	status := p.Code
	if status == 0 {
		status = StatusFor(apperrors.CodeOf(p.Err))
	}
	WriteJSON(w, status, envelope{
		Error: apperrors.Message(p.Err, http.StatusText(status)),
		Code:  apperrors.CodeOf(p.Err),
		Field: apperrors.FieldOf(p.Err),
	})
}

// StatusFor maps an application error code onto an HTTP status.
func StatusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeCredential:
		return http.StatusUnauthorized
	case apperrors.ErrCodeTransport:
		return http.StatusBadGateway
	case apperrors.ErrCodeConflict, apperrors.ErrCodeStale:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
