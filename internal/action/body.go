package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// BodyKind discriminates the variants of Body.
type BodyKind uint8

const (
	// BodyNone is an absent or null body.
	BodyNone BodyKind = iota
	// BodyRaw is a body that is already text.
	BodyRaw
	// BodyLiteral is a JSON number or boolean kept as its source text.
	BodyLiteral
	// BodyStructured is a value that still needs serializing.
	BodyStructured
)

func (k BodyKind) String() string {
	switch k {
	case BodyNone:
		return "none"
	case BodyRaw:
		return "raw"
	case BodyLiteral:
		return "literal"
	case BodyStructured:
		return "structured"
	default:
		return fmt.Sprintf("BodyKind(%d)", uint8(k))
	}
}

// Body is the request body of a fetch. The zero value is BodyNone.
type Body struct {
	kind    BodyKind
	raw     string
	literal json.RawMessage
	value   any
}

// RawBody returns a body holding text s.
func RawBody(s string) Body {
	return Body{kind: BodyRaw, raw: s}
}

// StructuredBody returns a body holding v. A nil v, including a nil map,
// slice or pointer, yields a BodyNone body.
func StructuredBody(v any) Body {
	if v == nil {
		return Body{}
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		if rv.IsNil() {
			return Body{}
		}
	}
	return Body{kind: BodyStructured, value: v}
}

// LiteralBody returns a body holding a JSON scalar such as 42 or true.
func LiteralBody(text json.RawMessage) Body {
	return Body{kind: BodyLiteral, literal: text}
}

// Kind returns the variant held by b.
func (b Body) Kind() BodyKind { return b.kind }

// IsStructured reports whether b holds a value that needs serializing.
func (b Body) IsStructured() bool { return b.kind == BodyStructured }

// Raw returns the text of a BodyRaw body.
func (b Body) Raw() (string, bool) {
	return b.raw, b.kind == BodyRaw
}

// Value returns the value of a BodyStructured body.
func (b Body) Value() (any, bool) {
	return b.value, b.kind == BodyStructured
}

// MarshalJSON implements json.Marshaler.
func (b Body) MarshalJSON() ([]byte, error) {
	switch b.kind {
	case BodyRaw:
		return json.Marshal(b.raw)
	case BodyLiteral:
		return b.literal, nil
	case BodyStructured:
		return json.Marshal(b.value)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Objects and arrays are kept as
// canonical json.RawMessage: member order survives, numbers take their
// shortest form and the last of duplicate keys wins.
func (b *Body) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("body: empty value")
	}
	switch data[0] {
	case 'n':
		*b = Body{}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("body: %w", err)
		}
		*b = RawBody(s)
	case '{', '[':
		canon, err := canonicalJSON(data)
		if err != nil {
			return fmt.Errorf("body: invalid JSON: %w", err)
		}
		*b = StructuredBody(json.RawMessage(canon))
	default:
		if !json.Valid(data) {
			return fmt.Errorf("body: invalid JSON")
		}
		*b = LiteralBody(append(json.RawMessage(nil), data...))
	}
	return nil
}
