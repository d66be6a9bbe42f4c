package fetchjson

import "fmt"

// SerializationError reports a fetch body that could not be encoded as JSON.
type SerializationError struct {
	ActionType string
	URL        string
	Err        error
}

func (e *SerializationError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("fetchjson: encode %s body: %v", e.ActionType, e.Err)
	}
	return fmt.Sprintf("fetchjson: encode %s body for %s: %v", e.ActionType, e.URL, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
