package receiver

import (
	"errors"
	"fmt"
)

// ErrPkg is the sentinel every error in this package wraps, following the
// nrf24.ErrPkg pattern: callers can errors.Is(err, receiver.ErrPkg) without
// depending on a specific variant.
var ErrPkg = errors.New("receiver")

// ErrNotConfigured is returned by NewEngine when a required collaborator
// (facade, storage, sink, button reader or LED output) is nil.
var ErrNotConfigured = fmt.Errorf("%w: not configured", ErrPkg)
