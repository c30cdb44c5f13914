package value

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/pretty"
)

const (
	// DefaultWidth is the max column width for single-line arrays in pretty output.
	DefaultWidth = 80
	// DefaultIndent is the indentation used for pretty output.
	DefaultIndent = "  "
)

// EncodeOptions controls JSON rendering.
type EncodeOptions struct {
	// Indent is the per-level indentation. Empty means DefaultIndent.
	Indent string
	// Width is the max column width for single-line arrays. Zero means DefaultWidth.
	Width int
	// SortKeys orders map keys lexically instead of by insertion.
	SortKeys bool
	// Compact disables pretty printing.
	Compact bool
	// Color adds ANSI colors for terminal output.
	Color bool
}

// DecodeJSON parses a single JSON document. Map key order is preserved.
// Integers that fit in int64 decode as KindInt, every other number as KindFloat.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.Wrap(ErrDecode, "trailing data after JSON document")
	}

	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, errors.Wrapf(ErrDecode, "reading JSON token: %v", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return Value{}, errors.Wrapf(ErrDecode, "unexpected delimiter %q", t)
		}
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return parseNumber(t.String())
	case string:
		return String(t), nil
	default:
		return Value{}, errors.Wrapf(ErrDecode, "unexpected token %T", tok)
	}
}

func decodeJSONObject(dec *json.Decoder) (Value, error) {
	m := NewMap()

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, errors.Wrapf(ErrDecode, "reading object key: %v", err)
		}

		key, ok := tok.(string)
		if !ok {
			return Value{}, errors.Wrapf(ErrDecode, "object key is %T, expected string", tok)
		}

		v, err := decodeJSONValue(dec)
		if err != nil {
			return Value{}, errors.Wrapf(err, "decoding %q", key)
		}

		m.Set(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return Value{}, errors.Wrapf(ErrDecode, "closing object: %v", err)
	}

	return FromMap(m), nil
}

func decodeJSONArray(dec *json.Decoder) (Value, error) {
	items := []Value{}

	for dec.More() {
		v, err := decodeJSONValue(dec)
		if err != nil {
			return Value{}, errors.Wrapf(err, "decoding index %d", len(items))
		}

		items = append(items, v)
	}

	if _, err := dec.Token(); err != nil {
		return Value{}, errors.Wrapf(ErrDecode, "closing array: %v", err)
	}

	return List(items...), nil
}

func parseNumber(s string) (Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i), nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, errors.Wrapf(ErrDecode, "parsing number %q", s)
	}

	return Float(f), nil
}

// MarshalJSON renders v as compact JSON with map keys in insertion order.
// Opaque values render as null; Undefined cannot be encoded.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	if err := appendJSON(&buf, v, false); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON document into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeJSON(data)
	if err != nil {
		return err
	}

	*v = decoded

	return nil
}

// EncodeJSON renders v as JSON using opts.
func EncodeJSON(v Value, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer

	if err := appendJSON(&buf, v, opts.SortKeys); err != nil {
		return nil, err
	}

	out := buf.Bytes()

	if !opts.Compact {
		indent := opts.Indent
		if indent == "" {
			indent = DefaultIndent
		}

		width := opts.Width
		if width <= 0 {
			width = DefaultWidth
		}

		out = pretty.PrettyOptions(out, &pretty.Options{
			Width:  width,
			Indent: indent,
		})
	}

	if opts.Color {
		out = pretty.Color(out, pretty.TerminalStyle)
	}

	return bytes.TrimSuffix(out, []byte("\n")), nil
}

func appendJSON(buf *bytes.Buffer, v Value, sortKeys bool) error {
	switch v.kind {
	case KindNull, KindOpaque:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		s, err := formatFloat(v.f)
		if err != nil {
			return err
		}

		buf.WriteString(s)
	case KindString:
		return appendString(buf, v.s)
	case KindList:
		buf.WriteByte('[')

		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := appendJSON(buf, item, sortKeys); err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	case KindMap:
		keys := v.m.Keys()
		if sortKeys {
			keys = v.m.SortedKeys()
		}

		buf.WriteByte('{')

		for i, key := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := appendString(buf, key); err != nil {
				return err
			}

			buf.WriteByte(':')

			item, _ := v.m.Get(key)
			if err := appendJSON(buf, item, sortKeys); err != nil {
				return errors.Wrapf(err, "encoding %q", key)
			}
		}

		buf.WriteByte('}')
	default:
		return errors.Wrapf(ErrEncode, "cannot encode %s value", v.kind)
	}

	return nil
}

// appendString writes s as a JSON string without escaping <, > and &.
func appendString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return errors.Wrap(ErrEncode, err.Error())
	}

	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)

	return nil
}

// formatFloat keeps a fractional part on integral floats so they decode back
// as KindFloat.
func formatFloat(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", errors.Wrapf(ErrEncode, "unsupported float %v", f)
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	if integral(f) && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s, nil
}
