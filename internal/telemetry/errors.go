package telemetry

import "errors"

var (
	// ErrEmptyAction is returned when a command payload names no action.
	ErrEmptyAction = errors.New("telemetry: command action is empty")

	// ErrInvalidAction is returned for actions that cannot map to a route.
	ErrInvalidAction = errors.New("telemetry: invalid command action")
)
