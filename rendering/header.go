// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package rendering

// This file contains the low-level quoting and folding machinery the
// header-based renderings are built on.  A logical OCCI field is a
// sequence of items; on the wire it appears as one or more header
// instances whose values, joined back together, are the items
// separated by ", ".

import (
	"strings"

	"github.com/cloudfoam/go-occi/occi"
)

// MaxHeaderLength is the byte bound the folder packs header instance
// values to.  A single item longer than the bound occupies an
// instance of its own, whole.
const MaxHeaderLength = 4096

// escapeQuotes escapes the quote character, and the escape character
// itself, within a quoted-string body.
func escapeQuotes(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// splitQuoted splits s on delim wherever delim is not escaped, not
// inside a quoted string, and not inside square brackets.  An escaped
// quote does not change the quote state; list attribute values carry
// commas inside their brackets.
func splitQuoted(s string, delim byte) []string {
	var (
		parts  []string
		buf    strings.Builder
		quote  bool
		escape bool
		depth  int
	)
	for _, c := range []byte(s) {
		switch {
		case escape:
			escape = false
		case c == '\\':
			escape = true
		case c == '"':
			quote = !quote
		case quote:
			// Brackets and delimiters inside a quoted string are
			// just content.
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case c == delim && depth == 0:
			parts = append(parts, buf.String())
			buf.Reset()
			continue
		}
		buf.WriteByte(c)
	}
	parts = append(parts, buf.String())
	return parts
}

// unquote removes surrounding quotes from a parameter value, if
// present, and resolves escapes inside it.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]
	var (
		b      strings.Builder
		escape bool
	)
	for _, c := range []byte(s) {
		if !escape && c == '\\' {
			escape = true
			continue
		}
		escape = false
		b.WriteByte(c)
	}
	return b.String()
}

// parameter is one key-value pair in a directive's parameter list.
type parameter struct {
	Key   string
	Value string
}

// parseDirective splits a single directive, e.g.
//
//     compute; scheme="http://..."; class="kind"
//
// into its leading item and its parameter list.
func parseDirective(s string) (string, []parameter, error) {
	parts := splitQuoted(s, ';')
	item := strings.TrimSpace(parts[0])
	if item == "" {
		return "", nil, occi.ErrMalformedRepresentation{Reason: "empty directive"}
	}
	var params []parameter
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := splitQuoted(part, '=')
		if len(kv) != 2 {
			return "", nil, occi.ErrMalformedRepresentation{
				Reason: "cannot parse directive parameter " + part,
			}
		}
		params = append(params, parameter{
			Key:   strings.TrimSpace(kv[0]),
			Value: unquote(kv[1]),
		})
	}
	return item, params, nil
}

// formatDirective is the inverse of parseDirective.  All parameter
// values are quoted.
func formatDirective(item string, params []parameter) string {
	var b strings.Builder
	b.WriteString(item)
	for _, p := range params {
		b.WriteString("; ")
		b.WriteString(p.Key)
		b.WriteString("=\"")
		b.WriteString(escapeQuotes(p.Value))
		b.WriteByte('"')
	}
	return b.String()
}

// foldField turns a logical field's items into header instance
// values, packing as many comma-separated items into each value as
// fit in limit bytes.  Items never split mid-item: intermediaries
// strip leading whitespace from header values, so a continuation
// marker would not survive transport.  An item longer than the bound
// gets an instance of its own, whole.
func foldField(items []string, limit int) []string {
	var (
		values []string
		buf    strings.Builder
	)
	flush := func() {
		if buf.Len() > 0 {
			values = append(values, buf.String())
			buf.Reset()
		}
	}
	for _, item := range items {
		if buf.Len() > 0 && buf.Len()+2+len(item) > limit {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(item)
	}
	flush()
	return values
}

// unfoldField reassembles a logical field's items from its header
// instance values.  Items never span instances, so each value splits
// independently.
func unfoldField(values []string) []string {
	var items []string
	for _, value := range values {
		for _, item := range splitQuoted(value, ',') {
			item = strings.TrimSpace(item)
			if item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}
