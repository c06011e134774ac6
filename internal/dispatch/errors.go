package dispatch

import "errors"

var (
	// ErrDuplicateRoute is returned when a route table repeats a method and path.
	ErrDuplicateRoute = errors.New("dispatch: duplicate route")

	// ErrEmptyResult is returned by Encode for a result with neither body nor document.
	ErrEmptyResult = errors.New("dispatch: empty result")
)
