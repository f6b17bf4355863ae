package persona

import "github.com/aimehq/aime/internal/domain/types"

// Error constants.
var (
	ErrPersonaNotFound   = types.Tag(types.ErrNotFound, "persona not found")
	ErrUnknownDefinition = types.Tag(types.ErrNotFound, "unknown persona definition")
	ErrInvalidPersona    = types.Tag(types.ErrValidation, "invalid persona")
	ErrPersonaExists     = types.Tag(types.ErrValidation, "persona already exists")
	ErrInvalidPatch      = types.Tag(types.ErrParse, "invalid persona patch")
)
