package generation

import "fmt"

// ValidationError reports missing or invalid caller input. It is the only
// error Pipeline.Run returns for a known use case.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ParseError reports a model reply that could not be turned into a payload,
// either because no JSON was found or because required fields are missing.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
