// Package action defines the messages that flow through a dispatch pipeline.
package action

import (
	"encoding/json"
)

// TypeFetch is the default type marker of a fetch action.
const TypeFetch = "EFFECT_FETCH"

// Action is a message tagged with a type and carrying a payload.
// Fetch actions carry a *FetchPayload; other payloads are opaque.
type Action struct {
	Type    string
	Payload any
	Meta    json.RawMessage
	Error   bool

	// Extra holds top-level fields not modeled above.
	Extra map[string]json.RawMessage
}

// FetchPayload describes an outgoing network request.
type FetchPayload struct {
	URL    string
	Params *Params

	// Extra holds payload fields not modeled above.
	Extra map[string]json.RawMessage
}

// Params holds the transport options of a fetch.
type Params struct {
	Method  string
	Body    Body
	Headers Headers
	// HeaderExtra holds header entries whose value is not a string. They are
	// carried through untouched and never match a header lookup.
	HeaderExtra map[string]json.RawMessage

	// Extra holds transport fields not modeled above (mode, credentials, ...).
	Extra map[string]json.RawMessage
}

// Headers maps header names to values. Keys are case-sensitive as given.
// A nil Headers means the request declares no headers at all.
type Headers map[string]string

// Has reports whether key is present exactly as given.
func (h Headers) Has(key string) bool {
	_, ok := h[key]
	return ok
}

// Fetch returns the fetch payload of a, if it carries one.
func (a *Action) Fetch() (*FetchPayload, bool) {
	if a == nil {
		return nil, false
	}
	p, ok := a.Payload.(*FetchPayload)
	return p, ok && p != nil
}
