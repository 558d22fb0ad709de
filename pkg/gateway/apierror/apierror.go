// Package apierror maps domain errors onto the wire error envelope.
package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/dhozzi-app/dhozzi/pkg/billing"
	"github.com/dhozzi-app/dhozzi/pkg/core/chat"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

// Error is the JSON body of every non-2xx response.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Param     string `json:"param,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Envelope struct {
	Error *Error `json:"error"`
}

const (
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodePaymentRequired  = "payment_required"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeRateLimited      = "rate_limited"
	CodeGenerationFailed = "generation_failed"
	CodeTimeout          = "timeout"
	CodeInternal         = "internal"
)

// FromError classifies err into an Error and HTTP status. Unrecognized
// errors become opaque 500s; the original text stays in the server log only.
func FromError(err error, requestID string) (*Error, int) {
	e := &Error{RequestID: requestID}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, chat.ErrChatNotFound):
		e.Code = CodeNotFound
		e.Message = err.Error()
		return e, http.StatusNotFound
	case errors.Is(err, store.ErrEmailTaken):
		e.Code = CodeConflict
		e.Message = err.Error()
		return e, http.StatusConflict
	case errors.Is(err, billing.ErrInsufficientKRX):
		e.Code = CodePaymentRequired
		e.Message = err.Error()
		return e, http.StatusPaymentRequired
	case errors.Is(err, billing.ErrInvalidAmount), errors.Is(err, billing.ErrUnknownPlan):
		e.Code = CodeBadRequest
		e.Message = err.Error()
		return e, http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		e.Code = CodeTimeout
		e.Message = "request timed out"
		return e, http.StatusGatewayTimeout
	default:
		e.Code = CodeInternal
		e.Message = "internal error"
		return e, http.StatusInternalServerError
	}
}
