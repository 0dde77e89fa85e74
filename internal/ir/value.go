package ir

import (
	"strconv"
	"strings"
)

// Value is a sealed interface for condition literals. Only String, Int and
// Float implement it. The extractor decides the concrete type by attempting
// a numeric parse first and falling back to a string literal, so an
// ambiguous literal never raises.
type Value interface {
	literal() // Sealed - only types in this package implement it
}

// String is a string literal. Rendered single-quoted in relational text and
// as a BSON string in pipeline stages.
type String string

func (String) literal() {}

// Int is an integer literal. Rendered unquoted in relational text and as a
// BSON int64 in pipeline stages.
type Int int64

func (Int) literal() {}

// Float is a floating-point literal. Rendered unquoted in relational text
// and as a BSON double in pipeline stages.
type Float float64

func (Float) literal() {}

// ParseValue types a captured literal: int parse first, then float, then
// string fallback. Surrounding single or double quotes are stripped before
// parsing so quoted digits stay strings only when the caller keeps them
// quoted in the raw capture.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return String(s[1 : len(s)-1])
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	return String(s)
}

// Native returns the Go value suitable for handing to a driver: string,
// int64 or float64.
func Native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	default:
		return nil
	}
}

// RenderLiteral renders a value for inclusion in relational query text.
// Numeric literals are rendered unquoted, everything else single-quoted
// with embedded quotes doubled.
func RenderLiteral(v Value) string {
	switch val := v.(type) {
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case String:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	default:
		return "''"
	}
}
