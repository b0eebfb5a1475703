package frontier

import "errors"

// ErrDrained is returned by Next when every accepted target has been
// handed out and completed. It is the frontier's terminal state; a
// drained frontier never accepts new work.
var ErrDrained = errors.New("frontier drained")
