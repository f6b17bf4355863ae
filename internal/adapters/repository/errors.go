package repository

import (
	"errors"

	"github.com/aimehq/aime/internal/domain/types"
)

// Sentinel kinds for partner store errors.
var (
	ErrNoPartners   = errors.New("no partner configs loaded")
	ErrUnsupported  = types.Tag(types.ErrParse, "unsupported fixture format")
	ErrMalformed    = types.Tag(types.ErrParse, "malformed fixture")
	ErrSourceFailed = types.Tag(types.ErrIO, "fixture source unreadable")

	ErrMissingPartnerID = types.Tag(types.ErrValidation, "missing partner_id in payload")
)
