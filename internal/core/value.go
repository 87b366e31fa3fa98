package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type valueKind uint8

const (
	valueNone valueKind = iota
	valueString
	valueNumber
	valueInvalid
)

// Value is the optional scalar argument of a rule: a string, a number, or absent.
// Each rule kind coerces it explicitly with Text or Float.
//
// A decoded value of any other shape (boolean, list, object) is kept as an
// invalid value so the campaign still loads; Text and Float reject it and the
// rule using it is skipped.
type Value struct {
	kind valueKind
	str  string
	num  float64
	raw  string // JSON text of an invalid value
}

// StringValue returns a string rule value.
func StringValue(s string) Value { return Value{kind: valueString, str: s} }

// NumberValue returns a numeric rule value.
func NumberValue(f float64) Value { return Value{kind: valueNumber, num: f} }

// IsSet reports whether a value was provided.
func (v Value) IsSet() bool { return v.kind != valueNone }

// Text returns the value rendered as text. Numbers use FormatNumber.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case valueString:
		return v.str, true
	case valueNumber:
		return FormatNumber(v.num), true
	default:
		return "", false
	}
}

// Float returns the value as a number. Strings are parsed after trimming spaces.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case valueNumber:
		return v.num, true
	case valueString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	if v.kind == valueInvalid {
		return "<invalid>"
	}
	s, ok := v.Text()
	if !ok {
		return "<none>"
	}
	return s
}

func invalidValue(raw []byte) Value {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return Value{kind: valueInvalid, raw: "null"}
	}
	return Value{kind: valueInvalid, raw: buf.String()}
}

// MarshalJSON encodes strings as JSON strings, numbers as JSON numbers and
// absent values as null. Invalid values are written back as decoded.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueString:
		return json.Marshal(v.str)
	case valueNumber:
		return json.Marshal(v.num)
	case valueInvalid:
		return []byte(v.raw), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON string, number or null. Booleans, arrays and
// objects decode as invalid values.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case c != '-' && (c < '0' || c > '9'):
		*v = invalidValue(data)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("rule value must be a string or number: %s", data)
	}
	*v = NumberValue(f)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case valueString:
		return v.str, nil
	case valueNumber:
		return v.num, nil
	case valueInvalid:
		var out any
		if err := json.Unmarshal([]byte(v.raw), &out); err != nil {
			return nil, fmt.Errorf("invalid rule value %s: %w", v.raw, err)
		}
		return out, nil
	default:
		return nil, nil
	}
}

// UnmarshalYAML accepts a YAML scalar. Unquoted numbers decode as numbers,
// everything else as strings. Sequences and mappings decode as invalid values.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		var decoded any
		if err := node.Decode(&decoded); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		raw, err := json.Marshal(decoded)
		if err != nil {
			raw = []byte("null")
		}
		*v = invalidValue(raw)
		return nil
	}
	switch node.Tag {
	case "!!null":
		*v = Value{}
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			*v = StringValue(node.Value)
			return nil
		}
		*v = NumberValue(f)
	default:
		*v = StringValue(node.Value)
	}
	return nil
}
