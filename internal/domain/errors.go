package domain

import "errors"

var (
	// ErrEmptyInput indicates that no rows survived tabular reading.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnrecognizedStructure indicates that no known header or section layout was found.
	ErrUnrecognizedStructure = errors.New("unrecognized structure")
	// ErrUnsupportedBroker indicates a broker id missing from the registry.
	ErrUnsupportedBroker = errors.New("unsupported broker")
	// ErrUnsupportedExtension indicates a file extension no import path accepts.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)
