// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package rendering

import (
	"net/http"
	"strings"

	"github.com/cloudfoam/go-occi/occi"
)

// Media types produced by the codecs in this package.
const (
	MediaTypeTextOCCI  = "text/occi"
	MediaTypeTextPlain = "text/plain"
	MediaTypeURIList   = "text/uri-list"
	MediaTypeJSON      = "application/occi+json"
)

// Logical field names shared by the text/occi and text/plain
// renderings.
const (
	fieldCategory  = "Category"
	fieldLink      = "Link"
	fieldAttribute = "X-OCCI-Attribute"
	fieldLocation  = "X-OCCI-Location"
)

// TextOCCICodec renders entirely in HTTP headers; request and
// response bodies stay empty.
type TextOCCICodec struct{}

// ContentType implements Codec.
func (TextOCCICodec) ContentType() string { return MediaTypeTextOCCI }

// Decode implements Codec.  The body is ignored.
func (TextOCCICodec) Decode(header http.Header, body []byte) (*Representation, error) {
	rep := &Representation{}
	for _, field := range []string{fieldCategory, fieldLink, fieldAttribute, fieldLocation} {
		if err := decodeItems(rep, field, unfoldField(header.Values(field))); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// EncodeOne implements Codec.
func (TextOCCICodec) EncodeOne(rep *Representation, header http.Header) ([]byte, error) {
	header.Set("Content-Type", MediaTypeTextOCCI)
	for _, field := range encodeFields(rep) {
		for _, value := range foldField(field.items, MaxHeaderLength) {
			header.Add(field.name, value)
		}
	}
	return nil, nil
}

// EncodeList implements Codec.  Only locations fit in a header
// rendering of a collection.
func (TextOCCICodec) EncodeList(reps []*Representation, header http.Header) ([]byte, error) {
	header.Set("Content-Type", MediaTypeTextOCCI)
	var locations []string
	for _, rep := range reps {
		locations = append(locations, rep.Locations...)
	}
	for _, value := range foldField(locations, MaxHeaderLength) {
		header.Add(fieldLocation, value)
	}
	return nil, nil
}

// EncodeError implements Codec.
func (TextOCCICodec) EncodeError(err error, header http.Header) []byte {
	header.Set("Content-Type", MediaTypeTextPlain)
	return []byte(err.Error() + "\r\n")
}

// field is one logical field ready for folding.
type field struct {
	name  string
	items []string
}

// encodeFields renders a representation into its logical fields, in
// the category, link, attribute, location order the wire formats
// share.
func encodeFields(rep *Representation) []field {
	var fields []field
	if len(rep.Categories) > 0 {
		items := make([]string, len(rep.Categories))
		for i, ref := range rep.Categories {
			items[i] = categoryDirective(ref)
		}
		fields = append(fields, field{fieldCategory, items})
	}
	if len(rep.Links) > 0 {
		items := make([]string, len(rep.Links))
		for i, ref := range rep.Links {
			items[i] = linkDirective(ref)
		}
		fields = append(fields, field{fieldLink, items})
	}
	if len(rep.Attributes) > 0 {
		items := make([]string, len(rep.Attributes))
		for i, attr := range rep.Attributes {
			items[i] = attributeDirective(attr)
		}
		fields = append(fields, field{fieldAttribute, items})
	}
	if len(rep.Locations) > 0 {
		fields = append(fields, field{fieldLocation, rep.Locations})
	}
	return fields
}

func categoryDirective(ref CategoryRef) string {
	params := []parameter{{"scheme", ref.ID.Scheme}}
	if ref.Class != "" {
		params = append(params, parameter{"class", ref.Class})
	}
	if ref.Title != "" {
		params = append(params, parameter{"title", ref.Title})
	}
	if ref.Rel != "" {
		params = append(params, parameter{"rel", ref.Rel})
	}
	if len(ref.Attributes) > 0 {
		params = append(params, parameter{"attributes", strings.Join(ref.Attributes, " ")})
	}
	if len(ref.Actions) > 0 {
		params = append(params, parameter{"actions", strings.Join(ref.Actions, " ")})
	}
	if ref.Location != "" {
		params = append(params, parameter{"location", ref.Location})
	}
	return formatDirective(ref.ID.Term, params)
}

func linkDirective(ref LinkRef) string {
	params := []parameter{{"rel", ref.Rel}}
	if ref.Self != "" {
		params = append(params, parameter{"self", ref.Self})
	}
	if ref.Category != "" {
		params = append(params, parameter{"category", ref.Category})
	}
	for _, attr := range ref.Attributes {
		params = append(params, parameter{attr.Name, attr.Value})
	}
	return formatDirective("<"+ref.Target+">", params)
}

func attributeDirective(attr Attribute) string {
	if attr.Quoted {
		return attr.Name + "=\"" + escapeQuotes(attr.Value) + "\""
	}
	return attr.Name + "=" + attr.Value
}

// decodeItems folds a logical field's parsed items into a
// representation.  Shared by the text/occi and text/plain decoders.
func decodeItems(rep *Representation, name string, items []string) error {
	switch name {
	case fieldCategory:
		for _, item := range items {
			ref, err := decodeCategory(item)
			if err != nil {
				return err
			}
			rep.Categories = append(rep.Categories, ref)
		}
	case fieldLink:
		for _, item := range items {
			ref, err := decodeLink(item)
			if err != nil {
				return err
			}
			rep.Links = append(rep.Links, ref)
		}
	case fieldAttribute:
		for _, item := range items {
			attr, err := decodeAttribute(item)
			if err != nil {
				return err
			}
			rep.Attributes = append(rep.Attributes, attr)
		}
	case fieldLocation:
		rep.Locations = append(rep.Locations, items...)
	}
	return nil
}

func decodeCategory(item string) (CategoryRef, error) {
	term, params, err := parseDirective(item)
	if err != nil {
		return CategoryRef{}, err
	}
	ref := CategoryRef{ID: occi.CategoryID{Term: term}}
	for _, p := range params {
		switch p.Key {
		case "scheme":
			ref.ID.Scheme = p.Value
		case "class":
			ref.Class = strings.ToLower(p.Value)
		case "title":
			ref.Title = p.Value
		case "rel":
			ref.Rel = p.Value
		case "attributes":
			ref.Attributes = strings.Fields(p.Value)
		case "actions":
			ref.Actions = strings.Fields(p.Value)
		case "location":
			ref.Location = p.Value
		}
	}
	if ref.ID.Scheme == "" {
		return CategoryRef{}, occi.ErrMalformedRepresentation{
			Reason: term + ": Category scheme not specified",
		}
	}
	return ref, nil
}

func decodeLink(item string) (LinkRef, error) {
	target, params, err := parseDirective(item)
	if err != nil {
		return LinkRef{}, err
	}
	if len(target) < 2 || target[0] != '<' || target[len(target)-1] != '>' {
		return LinkRef{}, occi.ErrMalformedRepresentation{
			Reason: item + ": Link target not in <brackets>",
		}
	}
	ref := LinkRef{Target: target[1 : len(target)-1]}
	for _, p := range params {
		switch p.Key {
		case "rel":
			ref.Rel = p.Value
		case "self":
			ref.Self = p.Value
		case "category":
			ref.Category = p.Value
		default:
			ref.Attributes = append(ref.Attributes, Attribute{
				Name:   p.Key,
				Value:  p.Value,
				Quoted: true,
			})
		}
	}
	return ref, nil
}

func decodeAttribute(item string) (Attribute, error) {
	kv := splitQuoted(item, '=')
	if len(kv) != 2 {
		return Attribute{}, occi.ErrMalformedRepresentation{
			Reason: item + ": cannot parse attribute",
		}
	}
	name := strings.TrimSpace(kv[0])
	raw := strings.TrimSpace(kv[1])
	if name == "" || raw == "" {
		return Attribute{}, occi.ErrMalformedRepresentation{
			Reason: item + ": cannot parse attribute",
		}
	}
	quoted := raw[0] == '"'
	return Attribute{Name: name, Value: unquote(raw), Quoted: quoted}, nil
}
