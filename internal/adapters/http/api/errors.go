package api

import (
	"fmt"

	"github.com/aimehq/aime/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = types.Tag(types.ErrValidation, "bad request")
	ErrMissingPartner = types.Tag(types.ErrValidation, "partner query parameter is required")
	ErrBodyTooLarge   = types.Tag(types.ErrValidation, "request body too large")
	ErrExportFormat   = types.Tag(types.ErrValidation, "export format must be csv or xlsx")
)

// Wrap prefixes err with the operation name.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind tags err with kind so the boundary can map it to a status code.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind returns a bare error of kind for op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// errorCode maps an error to its HTTP status and wire code.
func errorCode(err error) (int, string) {
	switch types.KindOf(err) {
	case types.ErrNotFound:
		return statusNotFound, "not_found"
	case types.ErrValidation, types.ErrParse:
		return statusBadRequest, "bad_request"
	case types.ErrPrecondition:
		return statusPreconditionFailed, "precondition_failed"
	}
	return statusInternalError, "internal_error"
}
