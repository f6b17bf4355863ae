package partner

import "github.com/aimehq/aime/internal/domain/types"

// Sentinel kinds for partner errors.
var (
	ErrPartnerNotFound = types.Tag(types.ErrNotFound, "partner not found")
	ErrInvalidConfig   = types.Tag(types.ErrValidation, "invalid partner config")
	ErrInvalidSignal   = types.Tag(types.ErrValidation, "invalid signal")
)
