package store

import (
	"github.com/xtxerr/meterload/internal/errors"
)

var (
	ErrUnavailable  = errors.ErrStoreUnavailable
	ErrClosed       = errors.ErrStoreClosed
	ErrMalformed    = errors.ErrStoreMalformed
	ErrUnknownMeter = errors.ErrUnknownMeter
)
