// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package rendering converts between OCCI entities and their wire
// representations.  The package is transport-neutral: codecs consume
// and produce http.Header maps and body byte slices, and an HTTP
// front end decides where those actually live in a request.
//
// Four content types are supported: text/occi carries everything in
// headers; text/plain carries the same directives as body lines;
// text/uri-list carries bare locations; application/occi+json is a
// structured rendering.
package rendering

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloudfoam/go-occi/occi"
)

// CategoryRef is one Category directive in a representation: an
// identity plus the rendering parameters that came with it.  The
// discovery fields (Rel, Attributes, Actions, Location) are only
// populated when rendering the query interface.
type CategoryRef struct {
	ID         occi.CategoryID
	Class      string
	Title      string
	Rel        string
	Attributes []string
	Actions    []string
	Location   string
}

// Classes a category directive can carry.
const (
	ClassKind   = "kind"
	ClassMixin  = "mixin"
	ClassAction = "action"
)

// LinkRef is one Link directive: a target URI plus the link's own
// identity and attributes when the link is an entity of its own.
// Rel names the target's kind; Category names the link's own kind,
// when the directive carries one.
type LinkRef struct {
	Target     string
	Rel        string
	Self       string
	Category   string
	Attributes []Attribute
}

// Attribute is one name-value pair in wire form.  The value is the
// canonical string rendering; typing happens against a schema, which
// the rendering layer does not have.
type Attribute struct {
	Name  string
	Value string

	// Quoted records whether the value renders as a quoted
	// string.  Numbers, booleans, and lists render bare.
	Quoted bool
}

// Representation is the transport-neutral decode result and encode
// input: everything one OCCI message can say.
type Representation struct {
	Categories []CategoryRef
	Attributes []Attribute
	Links      []LinkRef
	Locations  []string
}

// Codec reads and writes one content type.
type Codec interface {
	// ContentType returns the exact media type this codec
	// produces.
	ContentType() string

	// Decode reads a request's representation from wherever this
	// content type keeps it.
	Decode(header http.Header, body []byte) (*Representation, error)

	// EncodeOne writes a single entity or discovery
	// representation, setting headers and returning the body.
	EncodeOne(rep *Representation, header http.Header) ([]byte, error)

	// EncodeList writes a collection.  Only locations are
	// guaranteed to survive a list rendering.
	EncodeList(reps []*Representation, header http.Header) ([]byte, error)

	// EncodeError writes an error message in this content type.
	EncodeError(err error, header http.Header) []byte
}

// Codecs is a set of codecs keyed by content type.
type Codecs struct {
	byType map[string]Codec
}

// NewCodecs creates a codec set with the standard content types
// registered: text/occi, text/plain, text/uri-list, and
// application/occi+json.
func NewCodecs() *Codecs {
	c := &Codecs{byType: make(map[string]Codec)}
	c.Register(TextOCCICodec{})
	c.Register(TextPlainCodec{})
	c.Register(URIListCodec{})
	c.Register(NewJSONCodec())
	return c
}

// Register adds a codec, replacing any previous codec for the same
// content type.
func (c *Codecs) Register(codec Codec) {
	c.byType[codec.ContentType()] = codec
}

// ForContentType returns the codec for a Content-Type header value,
// ignoring media type parameters.  An absent content type falls back
// to text/occi, matching a header-only request.
func (c *Codecs) ForContentType(contentType string) (Codec, error) {
	if contentType == "" {
		return c.byType[MediaTypeTextOCCI], nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, occi.ErrMalformedRepresentation{Reason: "invalid Content-Type: header"}
	}
	if codec, known := c.byType[mediaType]; known {
		return codec, nil
	}
	return nil, occi.ErrMalformedRepresentation{
		Reason: contentType + ": Content-Type not supported",
	}
}

// Negotiate returns the codec for a response body, following the
// path laid out in RFC 7231 section 5.3.  An empty Accept header
// means anything; nothing acceptable is ErrNotAcceptable.
func (c *Codecs) Negotiate(accept string) (Codec, error) {
	if accept == "" {
		accept = "*/*"
	}
	bestType := ""
	bestQ := 0.0
	for _, mediaRange := range strings.Split(accept, ",") {
		mediaRange = strings.TrimSpace(mediaRange)
		mediaType, params, err := mime.ParseMediaType(mediaRange)
		if err != nil {
			return nil, occi.ErrMalformedRepresentation{Reason: "invalid Accept: header"}
		}

		// What is the "q" ("quality") parameter for this type?
		// If it is less than the best known so far, skip it
		q := 1.0
		if qStr, haveQ := params["q"]; haveQ {
			q, err = strconv.ParseFloat(qStr, 64)
			if err != nil || q < 0.0 || q > 1.0 {
				return nil, occi.ErrMalformedRepresentation{Reason: "invalid Accept: header"}
			}
		}
		if q < bestQ {
			continue
		}

		// This is acceptable if we have a codec for it, or if
		// it's one of a couple of specific wildcards.  Also
		// need to handle wildcard precedence.  So:
		if mediaType == "*/*" {
			// Doesn't override anything.
			if q > bestQ {
				bestType = mediaType
				bestQ = q
			}
		} else if mediaType == "text/*" || mediaType == "application/*" {
			// Only overrides "*/*".
			if q > bestQ || bestType == "*/*" {
				bestType = mediaType
				bestQ = q
			}
		} else if _, knownType := c.byType[mediaType]; knownType {
			// Overrides any wildcard.  We want the first one
			// at a given q to win.
			if q > bestQ || bestType == "*/*" || bestType == "text/*" || bestType == "application/*" {
				bestType = mediaType
				bestQ = q
			}
		}
		// Otherwise we don't recognize this type at all, so
		// just drop it.
	}
	if bestQ == 0.0 {
		return nil, occi.ErrNotAcceptable
	}
	switch bestType {
	case "*/*", "text/*":
		bestType = MediaTypeTextPlain
	case "application/*":
		bestType = MediaTypeJSON
	}
	return c.byType[bestType], nil
}
