package ports

import "github.com/bft-labs/offramp/pkg/log"

// Logger is the structured logging port. It aliases pkg/log so
// internal packages depend only on ports.
type Logger = log.Logger

// Field aliases the pkg/log field type.
type Field = log.Field

// Field constructors re-exported for internal callers.
var (
	String   = log.String
	Int      = log.Int
	Uint64   = log.Uint64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
