// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package rendering

import (
	"net/http"
	"strconv"

	"github.com/ugorji/go/codec"

	"github.com/cloudfoam/go-occi/occi"
)

// JSONCodec renders the structured application/occi+json content
// type.  Category directives become objects, attribute values keep
// their native JSON types, and collections are wrapped in an object
// rather than a bare array.
type JSONCodec struct {
	handle *codec.JsonHandle
}

// NewJSONCodec creates the application/occi+json codec.
func NewJSONCodec() JSONCodec {
	handle := &codec.JsonHandle{}
	handle.Canonical = true
	return JSONCodec{handle: handle}
}

// ContentType implements Codec.
func (JSONCodec) ContentType() string { return MediaTypeJSON }

type jsonCategory struct {
	Term       string   `codec:"term"`
	Scheme     string   `codec:"scheme"`
	Title      string   `codec:"title,omitempty"`
	Related    string   `codec:"related,omitempty"`
	Attributes []string `codec:"attributes,omitempty"`
	Actions    []string `codec:"actions,omitempty"`
	Location   string   `codec:"location,omitempty"`
}

type jsonLink struct {
	TargetURI  string                 `codec:"target_uri"`
	LinkURI    string                 `codec:"link_uri,omitempty"`
	LinkType   string                 `codec:"link_type,omitempty"`
	Kind       string                 `codec:"kind,omitempty"`
	Attributes map[string]interface{} `codec:"attributes,omitempty"`
}

type jsonObject struct {
	Kind       *jsonCategory          `codec:"kind,omitempty"`
	Kinds      []jsonCategory         `codec:"kinds,omitempty"`
	Mixins     []jsonCategory         `codec:"mixins,omitempty"`
	Categories []jsonCategory         `codec:"categories,omitempty"`
	Links      []jsonLink             `codec:"links,omitempty"`
	Attributes map[string]interface{} `codec:"attributes,omitempty"`
	Location   string                 `codec:"location,omitempty"`
}

type jsonCollection struct {
	Collection []jsonObject `codec:"collection"`
}

type jsonError struct {
	Error string `codec:"error"`
}

// Decode implements Codec.
func (c JSONCodec) Decode(header http.Header, body []byte) (*Representation, error) {
	if len(body) == 0 {
		return &Representation{}, nil
	}
	var obj jsonObject
	if err := codec.NewDecoderBytes(body, c.handle).Decode(&obj); err != nil {
		return nil, occi.ErrMalformedRepresentation{Reason: "invalid JSON body: " + err.Error()}
	}
	rep := &Representation{}
	if obj.Kind != nil {
		rep.Categories = append(rep.Categories, jsonToCategoryRef(*obj.Kind, ClassKind))
	}
	for _, cat := range obj.Kinds {
		rep.Categories = append(rep.Categories, jsonToCategoryRef(cat, ClassKind))
	}
	for _, cat := range obj.Mixins {
		rep.Categories = append(rep.Categories, jsonToCategoryRef(cat, ClassMixin))
	}
	for _, cat := range obj.Categories {
		rep.Categories = append(rep.Categories, jsonToCategoryRef(cat, ClassAction))
	}
	for _, link := range obj.Links {
		ref := LinkRef{
			Target:   link.TargetURI,
			Self:     link.LinkURI,
			Rel:      link.LinkType,
			Category: link.Kind,
		}
		for name, value := range link.Attributes {
			attr, err := jsonToAttribute(name, value)
			if err != nil {
				return nil, err
			}
			ref.Attributes = append(ref.Attributes, attr)
		}
		rep.Links = append(rep.Links, ref)
	}
	for name, value := range obj.Attributes {
		attr, err := jsonToAttribute(name, value)
		if err != nil {
			return nil, err
		}
		rep.Attributes = append(rep.Attributes, attr)
	}
	if obj.Location != "" {
		rep.Locations = append(rep.Locations, obj.Location)
	}
	return rep, nil
}

// EncodeOne implements Codec.
func (c JSONCodec) EncodeOne(rep *Representation, header http.Header) ([]byte, error) {
	header.Set("Content-Type", MediaTypeJSON+"; charset=utf-8")
	var body []byte
	err := codec.NewEncoderBytes(&body, c.handle).Encode(c.jsonObj(rep))
	return body, err
}

// EncodeList implements Codec.  The collection is wrapped in an
// object to work around the JSON array vulnerability in browser
// JavaScript implementations.
func (c JSONCodec) EncodeList(reps []*Representation, header http.Header) ([]byte, error) {
	header.Set("Content-Type", MediaTypeJSON+"; charset=utf-8")
	collection := jsonCollection{Collection: []jsonObject{}}
	for _, rep := range reps {
		collection.Collection = append(collection.Collection, c.jsonObj(rep))
	}
	var body []byte
	err := codec.NewEncoderBytes(&body, c.handle).Encode(collection)
	return body, err
}

// EncodeError implements Codec.
func (c JSONCodec) EncodeError(err error, header http.Header) []byte {
	header.Set("Content-Type", MediaTypeJSON+"; charset=utf-8")
	var body []byte
	if encErr := codec.NewEncoderBytes(&body, c.handle).Encode(jsonError{Error: err.Error()}); encErr != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return body
}

func (c JSONCodec) jsonObj(rep *Representation) jsonObject {
	obj := jsonObject{}
	for _, ref := range rep.Categories {
		cat := categoryRefToJSON(ref)
		switch ref.Class {
		case ClassKind:
			if obj.Kind == nil {
				obj.Kind = &cat
			} else {
				obj.Kinds = append(obj.Kinds, cat)
			}
		case ClassMixin:
			obj.Mixins = append(obj.Mixins, cat)
		default:
			obj.Categories = append(obj.Categories, cat)
		}
	}
	for _, ref := range rep.Links {
		link := jsonLink{
			TargetURI: ref.Target,
			LinkURI:   ref.Self,
			LinkType:  ref.Rel,
			Kind:      ref.Category,
		}
		if len(ref.Attributes) > 0 {
			link.Attributes = make(map[string]interface{})
			for _, attr := range ref.Attributes {
				link.Attributes[attr.Name] = attributeToJSON(attr)
			}
		}
		obj.Links = append(obj.Links, link)
	}
	if len(rep.Attributes) > 0 {
		obj.Attributes = make(map[string]interface{})
		for _, attr := range rep.Attributes {
			obj.Attributes[attr.Name] = attributeToJSON(attr)
		}
	}
	if len(rep.Locations) > 0 {
		obj.Location = rep.Locations[0]
	}
	return obj
}

func categoryRefToJSON(ref CategoryRef) jsonCategory {
	return jsonCategory{
		Term:       ref.ID.Term,
		Scheme:     ref.ID.Scheme,
		Title:      ref.Title,
		Related:    ref.Rel,
		Attributes: ref.Attributes,
		Actions:    ref.Actions,
		Location:   ref.Location,
	}
}

func jsonToCategoryRef(cat jsonCategory, class string) CategoryRef {
	return CategoryRef{
		ID:         occi.CategoryID{Scheme: cat.Scheme, Term: cat.Term},
		Class:      class,
		Title:      cat.Title,
		Rel:        cat.Related,
		Attributes: cat.Attributes,
		Actions:    cat.Actions,
		Location:   cat.Location,
	}
}

// attributeToJSON keeps unquoted values as native JSON types.
func attributeToJSON(attr Attribute) interface{} {
	if attr.Quoted {
		return attr.Value
	}
	if len(attr.Value) > 0 && attr.Value[0] == '[' {
		if items, err := occi.TypeStringList.Parse(attr.Name, attr.Value); err == nil {
			return items
		}
	}
	if i, err := strconv.ParseInt(attr.Value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(attr.Value, 64); err == nil {
		return f
	}
	if attr.Value == "true" || attr.Value == "false" {
		return attr.Value == "true"
	}
	return attr.Value
}

// jsonToAttribute renders a native JSON value back into canonical
// wire form.
func jsonToAttribute(name string, value interface{}) (Attribute, error) {
	switch v := value.(type) {
	case string:
		return Attribute{Name: name, Value: v, Quoted: true}, nil
	case bool:
		return Attribute{Name: name, Value: strconv.FormatBool(v)}, nil
	case int64:
		return Attribute{Name: name, Value: strconv.FormatInt(v, 10)}, nil
	case uint64:
		return Attribute{Name: name, Value: strconv.FormatUint(v, 10)}, nil
	case float64:
		return Attribute{Name: name, Value: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	case []interface{}:
		items := make([]string, len(v))
		for i, item := range v {
			s, isString := item.(string)
			if !isString {
				return Attribute{}, occi.ErrMalformedRepresentation{
					Reason: name + ": list attribute values must be strings",
				}
			}
			items[i] = s
		}
		return Attribute{Name: name, Value: occi.TypeStringList.Format(items)}, nil
	}
	return Attribute{}, occi.ErrMalformedRepresentation{
		Reason: name + ": unsupported attribute value type",
	}
}
