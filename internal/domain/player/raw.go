package player

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type rawKind uint8

const (
	rawNull rawKind = iota
	rawText
	rawNumber
)

// RawValue is one untyped upstream value: null, a string, or a number kept as
// its literal text so decimal metrics never pass through float64.
type RawValue struct {
	kind rawKind
	text string
}

func NullValue() RawValue {
	return RawValue{kind: rawNull}
}

func TextValue(s string) RawValue {
	return RawValue{kind: rawText, text: s}
}

func NumberValue(literal string) RawValue {
	return RawValue{kind: rawNumber, text: literal}
}

// ValueOf converts a decoded JSON value. Decoders must use json.Number for
// numbers; float64 input is accepted but formatted with the shortest
// representation that round-trips.
func ValueOf(v any) RawValue {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case string:
		return TextValue(t)
	case json.Number:
		return NumberValue(t.String())
	case float64:
		return NumberValue(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		return NumberValue(strconv.Itoa(t))
	case int64:
		return NumberValue(strconv.FormatInt(t, 10))
	case bool:
		return TextValue(strconv.FormatBool(t))
	default:
		return TextValue(fmt.Sprint(t))
	}
}

func (v RawValue) IsNull() bool {
	return v.kind == rawNull
}

// Text returns the trimmed textual form; blank means null.
func (v RawValue) Text() (string, bool) {
	if v.kind == rawNull {
		return "", false
	}
	s := strings.TrimSpace(v.text)
	return s, s != ""
}

func (v RawValue) String() string {
	if v.kind == rawNull {
		return "<null>"
	}
	return v.text
}

// RawRecord is one upstream record before normalization.
type RawRecord map[string]RawValue

// RecordOf converts a decoded JSON object into a RawRecord.
func RecordOf(obj map[string]any) RawRecord {
	out := make(RawRecord, len(obj))
	for k, v := range obj {
		out[k] = ValueOf(v)
	}
	return out
}

// lookup returns the first present, non-null value among keys.
func (r RawRecord) lookup(keys ...string) (RawValue, bool) {
	for _, key := range keys {
		if v, ok := r[key]; ok && !v.IsNull() {
			return v, true
		}
	}
	return NullValue(), false
}
