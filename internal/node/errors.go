package node

import "errors"

// ErrStopped is returned by Submit when the loop is not running.
var ErrStopped = errors.New("node: loop stopped")
