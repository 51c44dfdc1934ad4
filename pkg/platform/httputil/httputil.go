// Package httputil holds the shared response and decoding helpers for HTTP
// handlers. Handlers stay thin: decode, call the service, write.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "nilclear/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies so a client cannot stream an unbounded
// payload into the decoder.
const maxBodyBytes = 1 << 20

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeInvalidSplit:       http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeInvariantViolation: http.StatusConflict,

	dErrors.CodeInvalidStateTransition:  http.StatusConflict,
	dErrors.CodeAlreadyExecuted:         http.StatusConflict,
	dErrors.CodeJurisdictionNotApproved: http.StatusUnprocessableEntity,
	dErrors.CodeSanctionsHit:            http.StatusUnprocessableEntity,
	dErrors.CodeComplianceRejected:      http.StatusUnprocessableEntity,
	dErrors.CodeTransferFailed:          http.StatusBadGateway,
}

// ToHTTPStatus maps a domain error code to a response status. Unknown codes
// collapse to 500.
func ToHTTPStatus(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as the JSON response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope. Internal
// errors keep their detail out of the response body.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		body["error_description"] = dErrors.MessageOf(err)
	}
	WriteJSON(w, ToHTTPStatus(code), body)
}

// Validatable constrains request payloads to pointer types that check their
// own shape after decoding.
type Validatable[T any] interface {
	*T
	Validate() error
}

// DecodeAndPrepare decodes the JSON body into T and validates it. On failure
// it writes the error response and returns ok=false; the handler just
// returns.
func DecodeAndPrepare[T any, PT Validatable[T]](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	req := PT(new(T))
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
