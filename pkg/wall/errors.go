package wall

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error codespace for wall geometry failures.
const Codespace = "reverb/wall"

// Construction and query failures. Call sites wrap these with context;
// match them with errors.Is. A segment that misses a wall is not an error.
var (
	ErrDegenerate     = errorsmod.Register(Codespace, 2, "degenerate polygon")
	ErrNonPlanar      = errorsmod.Register(Codespace, 3, "corners are not coplanar")
	ErrInvalidNumeric = errorsmod.Register(Codespace, 4, "non-finite coordinate")
)
