// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occi

import (
	"strconv"
	"strings"
)

// AttributeType enumerates the primitive types an attribute value can
// take on the wire and in memory.
type AttributeType int

// The supported attribute types.  In-memory representations are
// string, int64, float64, bool, and []string respectively.
const (
	TypeString AttributeType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeStringList
)

func (t AttributeType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeStringList:
		return "list"
	}
	return "unknown"
}

// Parse coerces a raw wire string into the type's in-memory value.
// Returns an ErrTypeMismatch naming the attribute if the value does
// not parse.
func (t AttributeType) Parse(name, raw string) (interface{}, error) {
	switch t {
	case TypeString:
		return raw, nil
	case TypeInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, ErrTypeMismatch{Name: name, Value: raw}
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, ErrTypeMismatch{Name: name, Value: raw}
		}
		return v, nil
	case TypeBool:
		switch raw {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, ErrTypeMismatch{Name: name, Value: raw}
	case TypeStringList:
		return parseStringList(name, raw)
	}
	return nil, ErrTypeMismatch{Name: name, Value: raw}
}

// Format renders an in-memory value in its canonical wire form.  The
// result is unquoted; renderers decide quoting from the type (Quoted).
func (t AttributeType) Format(value interface{}) string {
	switch t {
	case TypeString:
		s, _ := value.(string)
		return s
	case TypeInt:
		switch v := value.(type) {
		case int64:
			return strconv.FormatInt(v, 10)
		case int:
			return strconv.Itoa(v)
		}
	case TypeFloat:
		if v, ok := value.(float64); ok {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
	case TypeBool:
		if v, ok := value.(bool); ok {
			return strconv.FormatBool(v)
		}
	case TypeStringList:
		if v, ok := value.([]string); ok {
			return formatStringList(v)
		}
	}
	return ""
}

// Quoted reports whether values of this type are quoted on the wire.
// Numbers, booleans, and bracketed lists render unquoted.
func (t AttributeType) Quoted() bool {
	return t == TypeString
}

// Equal compares two in-memory values of this type.  Used to decide
// whether re-setting an immutable attribute actually changes it.
func (t AttributeType) Equal(a, b interface{}) bool {
	if t != TypeStringList {
		return a == b
	}
	as, aok := a.([]string)
	bs, bok := b.([]string)
	if !aok || !bok || len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// formatStringList renders a list value as a bracketed,
// comma-separated sequence of quoted strings.
func formatStringList(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('"')
		for _, c := range []byte(item) {
			if c == '"' || c == '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		}
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return b.String()
}

func parseStringList(name, raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, ErrTypeMismatch{Name: name, Value: raw}
	}
	s = s[1 : len(s)-1]
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}
	var (
		items  []string
		buf    strings.Builder
		quote  bool
		escape bool
		seen   bool
	)
	flush := func() error {
		if !seen {
			return ErrTypeMismatch{Name: name, Value: raw}
		}
		items = append(items, buf.String())
		buf.Reset()
		seen = false
		return nil
	}
	for _, c := range []byte(s) {
		switch {
		case escape:
			buf.WriteByte(c)
			escape = false
		case c == '\\' && quote:
			escape = true
		case c == '"':
			quote = !quote
			seen = true
		case c == ',' && !quote:
			if err := flush(); err != nil {
				return nil, err
			}
		case quote:
			buf.WriteByte(c)
		case c == ' ' || c == '\t':
			// whitespace between items
		default:
			return nil, ErrTypeMismatch{Name: name, Value: raw}
		}
	}
	if quote || escape {
		return nil, ErrTypeMismatch{Name: name, Value: raw}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return items, nil
}

// AttributeDefinition describes one attribute a category contributes
// to the entities it governs.
type AttributeDefinition struct {
	// Name is the dotted-namespace attribute name,
	// e.g. "occi.core.title".
	Name string

	// Type is the primitive type of the attribute value.
	Type AttributeType

	// Required indicates the attribute must be present on a valid
	// entity of this category.
	Required bool

	// Mutable indicates the attribute may be changed after it has
	// been set.  Immutable attributes may be set once.
	Mutable bool

	// Default, if non-nil, is applied to new entities that do not
	// supply the attribute.  It must already be of the in-memory
	// type matching Type.
	Default interface{}
}
