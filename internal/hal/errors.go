package hal

import "errors"

var (
	// ErrUnknownDriver is returned by Open for an unrecognised board driver.
	ErrUnknownDriver = errors.New("hal: unknown board driver")

	// ErrPinNotFound is returned when a configured pin name is not registered.
	ErrPinNotFound = errors.New("hal: pin not found")

	// ErrADCRange is returned when an ADC reading cannot be parsed.
	ErrADCRange = errors.New("hal: invalid adc reading")
)
