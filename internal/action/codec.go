package action

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidAction is returned when wire data does not describe an action.
var ErrInvalidAction = errors.New("invalid action")

// Codec converts actions to and from their JSON wire form.
type Codec struct {
	// FetchType is the type marker whose payload decodes into *FetchPayload.
	FetchType string
}

// NewCodec returns a Codec for the given fetch marker, defaulting to TypeFetch.
func NewCodec(fetchType string) Codec {
	if fetchType == "" {
		fetchType = TypeFetch
	}
	return Codec{FetchType: fetchType}
}

// wireAction mirrors Action with an undecoded payload.
type wireAction struct {
	Type    *string         `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Meta    json.RawMessage `json:"meta,omitempty"`
	Error   bool            `json:"error,omitempty"`
}

// Decode parses data into an Action.
func (c Codec) Decode(data []byte) (*Action, error) {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}
	if w.Type == nil {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidAction)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}
	for _, k := range []string{"type", "payload", "meta", "error"} {
		delete(fields, k)
	}

	a := &Action{Type: *w.Type, Meta: w.Meta, Error: w.Error}
	if len(fields) > 0 {
		a.Extra = fields
	}
	if len(w.Payload) == 0 || string(w.Payload) == "null" {
		return a, nil
	}

	if a.Type != c.fetchType() {
		a.Payload = w.Payload
		return a, nil
	}

	var p FetchPayload
	if err := json.Unmarshal(w.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrInvalidAction, err)
	}
	a.Payload = &p
	return a, nil
}

// Encode renders a as JSON.
func (c Codec) Encode(a *Action) ([]byte, error) {
	return json.Marshal(a)
}

// MarshalJSON implements json.Marshaler.
func (a Action) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+4)
	for k, v := range a.Extra {
		out[k] = v
	}
	out["type"] = a.Type
	if a.Payload != nil {
		out["payload"] = a.Payload
	}
	if len(a.Meta) > 0 {
		out["meta"] = a.Meta
	}
	if a.Error {
		out["error"] = true
	}
	return json.Marshal(out)
}

func (c Codec) fetchType() string {
	if c.FetchType == "" {
		return TypeFetch
	}
	return c.FetchType
}

// MarshalJSON implements json.Marshaler.
func (p FetchPayload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+2)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.URL != "" {
		out["url"] = p.URL
	}
	if p.Params != nil {
		out["params"] = p.Params
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *FetchPayload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = FetchPayload{}
	if raw, ok := fields["url"]; ok {
		if err := json.Unmarshal(raw, &p.URL); err != nil {
			return fmt.Errorf("url: %w", err)
		}
		delete(fields, "url")
	}
	if raw, ok := fields["params"]; ok {
		if string(raw) != "null" {
			p.Params = &Params{}
			if err := json.Unmarshal(raw, p.Params); err != nil {
				return fmt.Errorf("params: %w", err)
			}
		}
		delete(fields, "params")
	}
	if len(fields) > 0 {
		p.Extra = fields
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Headers are emitted whenever they
// are non-nil, so an empty set stays distinguishable from an absent one.
func (p Params) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Method != "" {
		out["method"] = p.Method
	}
	if p.Body.Kind() != BodyNone {
		out["body"] = p.Body
	}
	if p.Headers != nil || p.HeaderExtra != nil {
		h := make(map[string]any, len(p.Headers)+len(p.HeaderExtra))
		for k, v := range p.HeaderExtra {
			h[k] = v
		}
		for k, v := range p.Headers {
			h[k] = v
		}
		out["headers"] = h
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Params) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = Params{}
	if raw, ok := fields["method"]; ok {
		if err := json.Unmarshal(raw, &p.Method); err != nil {
			return fmt.Errorf("method: %w", err)
		}
		delete(fields, "method")
	}
	if raw, ok := fields["body"]; ok {
		if err := p.Body.UnmarshalJSON(raw); err != nil {
			return err
		}
		delete(fields, "body")
	}
	if raw, ok := fields["headers"]; ok {
		if p.unmarshalHeaders(raw) {
			delete(fields, "headers")
		}
	}
	if len(fields) > 0 {
		p.Extra = fields
	}
	return nil
}

// unmarshalHeaders splits a headers object into string entries and opaque
// ones. It reports false when raw is not an object or null, leaving the value
// for Extra so the request is forwarded as it came.
func (p *Params) unmarshalHeaders(raw json.RawMessage) bool {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return false
	}
	if entries == nil {
		return true
	}

	p.Headers = make(Headers, len(entries))
	for k, v := range entries {
		var s string
		if len(v) > 0 && v[0] == '"' && json.Unmarshal(v, &s) == nil {
			p.Headers[k] = s
			continue
		}
		if p.HeaderExtra == nil {
			p.HeaderExtra = make(map[string]json.RawMessage)
		}
		p.HeaderExtra[k] = v
	}
	return true
}
