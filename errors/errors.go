package errors

import "fmt"

// ParseError wraps a specific error with context about the CSV data row it came from.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("parse error at row %d (%s): %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("parse error at row %d (%s=%q): %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Define specific error types for better error handling
var (
	ErrMissingTimestamp   = fmt.Errorf("missing timestamp")
	ErrInvalidTimestamp   = fmt.Errorf("invalid timestamp")
	ErrEmptyFile          = fmt.Errorf("empty file")
	ErrUnknownSDR         = fmt.Errorf("unknown sdr")
	ErrBlockNotFound      = fmt.Errorf("block not found")
	ErrDatasetUnavailable = fmt.Errorf("dataset unavailable")
	ErrInvalidRoster      = fmt.Errorf("invalid roster")
)
