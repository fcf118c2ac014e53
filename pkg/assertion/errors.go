package assertion

import "errors"

// Usage errors. These report a misuse of the engine, never a
// failed check; failed checks surface as *primitive.AssertionError.
var (
	ErrUnknownCheck   = errors.New("unknown check")
	ErrDuplicateCheck = errors.New("check already registered")
	ErrCatalogFrozen  = errors.New("catalog is frozen")
	ErrInvalidCheck   = errors.New("invalid check")
	ErrBadArguments   = errors.New("bad check arguments")
)
