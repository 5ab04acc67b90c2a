// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package rendering

import (
	"net/http"
	"strings"

	"github.com/cloudfoam/go-occi/occi"
)

// TextPlainCodec renders the same directives as text/occi, but as
// "Name: value" lines in the message body.
type TextPlainCodec struct{}

// ContentType implements Codec.
func (TextPlainCodec) ContentType() string { return MediaTypeTextPlain }

// Decode implements Codec.  A body line starting with whitespace
// continues the previous line's value.
func (TextPlainCodec) Decode(header http.Header, body []byte) (*Representation, error) {
	rep := &Representation{}
	for _, line := range joinContinuations(string(body)) {
		name, value, err := splitLine(line)
		if err != nil {
			return nil, err
		}
		var items []string
		for _, item := range splitQuoted(value, ',') {
			item = strings.TrimSpace(item)
			if item != "" {
				items = append(items, item)
			}
		}
		if err = decodeItems(rep, canonicalField(name), items); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// EncodeOne implements Codec.
func (TextPlainCodec) EncodeOne(rep *Representation, header http.Header) ([]byte, error) {
	header.Set("Content-Type", MediaTypeTextPlain)
	var b strings.Builder
	for _, field := range encodeFields(rep) {
		for _, item := range field.items {
			b.WriteString(field.name)
			b.WriteString(": ")
			b.WriteString(item)
			b.WriteString("\r\n")
		}
	}
	return []byte(b.String()), nil
}

// EncodeList implements Codec.
func (TextPlainCodec) EncodeList(reps []*Representation, header http.Header) ([]byte, error) {
	header.Set("Content-Type", MediaTypeTextPlain)
	var b strings.Builder
	for _, rep := range reps {
		for _, location := range rep.Locations {
			b.WriteString(fieldLocation)
			b.WriteString(": ")
			b.WriteString(location)
			b.WriteString("\r\n")
		}
	}
	return []byte(b.String()), nil
}

// EncodeError implements Codec.
func (TextPlainCodec) EncodeError(err error, header http.Header) []byte {
	header.Set("Content-Type", MediaTypeTextPlain)
	return []byte(err.Error() + "\r\n")
}

// joinContinuations splits a body into logical lines, appending
// whitespace-led lines to their predecessor.
func joinContinuations(body string) []string {
	var lines []string
	for _, raw := range strings.Split(body, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if raw == "" {
			continue
		}
		if (raw[0] == ' ' || raw[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += " " + strings.TrimSpace(raw)
			continue
		}
		lines = append(lines, raw)
	}
	return lines
}

func splitLine(line string) (string, string, error) {
	colon := strings.Index(line, ":")
	if colon < 0 {
		return "", "", occi.ErrMalformedRepresentation{
			Reason: line + ": body line is not a directive",
		}
	}
	return strings.TrimSpace(line[:colon]), strings.TrimSpace(line[colon+1:]), nil
}

// canonicalField maps a case-insensitive body line name onto the
// logical field it carries.
func canonicalField(name string) string {
	switch strings.ToLower(name) {
	case "category":
		return fieldCategory
	case "link":
		return fieldLink
	case "x-occi-attribute":
		return fieldAttribute
	case "x-occi-location":
		return fieldLocation
	}
	return name
}
