// Package fetchjson provides a dispatch middleware that encodes structured
// fetch bodies as JSON.
//
// The middleware intercepts fetch actions and encodes their body when
//
//   - the request declares Content-Type: application/json, and
//   - the body is structured (not already text).
//
// In that case it also adds Accept: application/json unless an Accept header
// is already present. Install it before the stage that performs the fetch.
package fetchjson

import (
	"bytes"
	"context"
	"encoding/json"
	"maps"

	"fetchjson-go/internal/action"
	"fetchjson-go/internal/dispatch"
)

const (
	// MIMEApplicationJSON is the only content type that triggers encoding.
	MIMEApplicationJSON = "application/json"

	headerContentType = "Content-Type"
	headerAccept      = "Accept"
)

// MarshalFunc serializes a structured body to JSON text.
type MarshalFunc func(v any) ([]byte, error)

type options struct {
	actionType string
	marshal    MarshalFunc
}

// Option configures EncodeJSON.
type Option func(*options)

// WithActionType sets the type marker of fetch actions.
func WithActionType(t string) Option {
	return func(o *options) {
		if t != "" {
			o.actionType = t
		}
	}
}

// WithMarshaler replaces the body serializer.
func WithMarshaler(fn MarshalFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.marshal = fn
		}
	}
}

// EncodeJSON returns the JSON body encoding middleware.
func EncodeJSON(opts ...Option) dispatch.MiddlewareFunc {
	o := options{
		actionType: action.TypeFetch,
		marshal:    Marshal,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next dispatch.HandlerFunc) dispatch.HandlerFunc {
		return func(ctx context.Context, a *action.Action) (any, error) {
			if a == nil || a.Type != o.actionType {
				return next(ctx, a)
			}
			out, err := o.maybeConvert(a)
			if err != nil {
				return nil, err
			}
			return next(ctx, out)
		}
	}
}

// maybeConvert returns a copy of a with an encoded body, or a itself when
// the request does not qualify.
func (o *options) maybeConvert(a *action.Action) (*action.Action, error) {
	payload, ok := a.Fetch()
	if !ok || !ShouldConvert(payload.Params) {
		return a, nil
	}

	value, _ := payload.Params.Body.Value()
	text, err := o.marshal(value)
	if err != nil {
		return nil, &SerializationError{ActionType: a.Type, URL: payload.URL, Err: err}
	}

	params := *payload.Params
	params.Body = action.RawBody(string(text))
	if _, ok := payload.Params.HeaderExtra[headerAccept]; !ok {
		params.Headers = WithAcceptHeader(payload.Params.Headers)
	}

	p := *payload
	p.Params = &params

	out := *a
	out.Payload = &p
	return &out, nil
}

// ShouldConvert reports whether a request with params may have its body
// encoded as JSON.
func ShouldConvert(params *action.Params) bool {
	return params != nil &&
		params.Body.IsStructured() &&
		params.Headers != nil &&
		params.Headers[headerContentType] == MIMEApplicationJSON
}

// WithAcceptHeader returns headers unchanged if they already hold an Accept
// key, and otherwise a copy with Accept: application/json added.
func WithAcceptHeader(headers action.Headers) action.Headers {
	if headers.Has(headerAccept) {
		return headers
	}
	out := make(action.Headers, len(headers)+1)
	maps.Copy(out, headers)
	out[headerAccept] = MIMEApplicationJSON
	return out
}

// Marshal encodes v as compact JSON without escaping <, > and &.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
