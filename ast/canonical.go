package ast

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Obj is a JSON object for canonical encoding. Use SortedKeys for
// deterministic iteration.
type Obj map[string]any

// Arr is a JSON array for canonical encoding.
type Arr []any

// MarshalCanonical produces RFC 8785 canonical JSON. This is the only
// serialization used for fingerprints, journal hashes, and golden traces.
//
// Properties:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & stay literal)
//  3. Strings are NFC normalized
//  4. No floats (error), no null (error)
//  5. Values encode by their canonical string form (rationals as "p/q")
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		writeCanonicalString(buf, val)
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
		return nil
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	case Path:
		writeCanonicalString(buf, string(val))
		return nil
	case NumValue:
		// Rationals encode as their exact string form, never JSON numbers.
		writeCanonicalString(buf, val.String())
		return nil
	case BoolValue:
		return marshalCanonical(buf, bool(val))
	case PathValue:
		writeCanonicalString(buf, string(val))
		return nil
	case Value:
		writeCanonicalString(buf, val.String())
		return nil
	case Arr:
		return marshalCanonicalArr(buf, val)
	case []any:
		return marshalCanonicalArr(buf, Arr(val))
	case []string:
		arr := make(Arr, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalCanonicalArr(buf, arr)
	case Obj:
		return marshalCanonicalObj(buf, val)
	case map[string]any:
		return marshalCanonicalObj(buf, Obj(val))
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalCanonicalArr(buf *bytes.Buffer, arr Arr) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalCanonical(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalCanonicalObj(buf *bytes.Buffer, obj Obj) error {
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalString(buf, k)
		buf.WriteByte(':')
		if err := marshalCanonical(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which orders supplementary-plane
// characters differently; the UTF-16 comparison is required.
func (obj Obj) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 compares strings by UTF-16 code units with correct surrogate
// handling.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := len(a16)
	if len(b16) < n {
		n = len(b16)
	}
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

const hexDigits = "0123456789abcdef"

// writeCanonicalString writes an NFC-normalized JSON string. Per RFC 8785
// only quote, backslash, and control characters escape; the two-character
// forms \b \t \n \f \r are preferred, \u00xx otherwise. Everything else,
// including < > & U+2028 U+2029, stays literal, so the stock json.Encoder
// (which escapes for HTML and JavaScript embedding) cannot be used here.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < 0x20 || c == '"' || c == '\\' {
			switch c {
			case '"':
				buf.WriteString(`\"`)
			case '\\':
				buf.WriteString(`\\`)
			case '\b':
				buf.WriteString(`\b`)
			case '\t':
				buf.WriteString(`\t`)
			case '\n':
				buf.WriteString(`\n`)
			case '\f':
				buf.WriteString(`\f`)
			case '\r':
				buf.WriteString(`\r`)
			default:
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[c>>4])
				buf.WriteByte(hexDigits[c&0xf])
			}
			i++
			continue
		}
		if c < utf8.RuneSelf {
			buf.WriteByte(c)
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		buf.WriteString(s[i : i+size])
		i += size
	}
	buf.WriteByte('"')
}
