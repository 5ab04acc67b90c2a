// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package server implements the OCCI protocol dispatcher.  It is
// transport-neutral: a front end hands Handle an abstract request and
// relays the abstract response onto whatever it is listening on.  The
// dispatcher holds no per-request state; the registry is read-only
// and the backend is the only synchronization boundary.
package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudfoam/go-occi/occi"
	"github.com/cloudfoam/go-occi/rendering"
)

// Request is the abstract inbound request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Response is the abstract outbound response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Server dispatches abstract OCCI requests.
type Server struct {
	Registry *occi.Registry
	Backend  occi.Backend
	Codecs   *rendering.Codecs
}

// New creates a dispatcher over a registry and a backend, with the
// standard codecs registered.
func New(registry *occi.Registry, backend occi.Backend) *Server {
	return &Server{
		Registry: registry,
		Backend:  backend,
		Codecs:   rendering.NewCodecs(),
	}
}

// errMethodNotAllowed flags a verb the resolved path does not
// support.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

// ErrorStatus allows an error to dictate its own outward status.
type ErrorStatus interface {
	HTTPStatus() int
}

// statusFor maps the model's error kinds onto stable status codes.
func statusFor(err error) int {
	if errS, hasStatus := err.(ErrorStatus); hasStatus {
		return errS.HTTPStatus()
	}
	if err == occi.ErrNotAcceptable {
		return http.StatusNotAcceptable
	}
	switch err.(type) {
	case occi.ErrNotFound:
		return http.StatusNotFound
	case occi.ErrConflict:
		return http.StatusConflict
	case occi.ErrUnknownCategory, occi.ErrUnknownAttribute,
		occi.ErrTypeMismatch, occi.ErrImmutableAttribute,
		occi.ErrMixinNotApplicable, occi.ErrActionNotSupported,
		occi.ErrMalformedRepresentation:
		return http.StatusBadRequest
	case occi.ErrBackendFailure:
		return http.StatusInternalServerError
	case errMethodNotAllowed:
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

// Handle is the single synchronous entry point: one abstract request
// in, one abstract response out.  Errors never escape; they come
// back rendered in the negotiated content type where possible.
func (s *Server) Handle(req *Request) *Response {
	out, negotiateErr := s.Codecs.Negotiate(req.Header.Get("Accept"))
	if negotiateErr != nil {
		// Gotta pick something to render the error itself.
		return s.fail(rendering.TextPlainCodec{}, negotiateErr)
	}
	resp, err := s.dispatch(req, out)
	if err != nil {
		return s.fail(out, err)
	}
	return resp
}

func (s *Server) fail(out rendering.Codec, err error) *Response {
	resp := &Response{
		Status: statusFor(err),
		Header: make(http.Header),
	}
	resp.Body = out.EncodeError(err, resp.Header)
	return resp
}

func (s *Server) dispatch(req *Request, out rendering.Codec) (*Response, error) {
	path := strings.Trim(req.Path, "/")

	if path == "-" {
		return s.discovery(req, out)
	}
	if instance, isMixinPath := splitMixinPath(path); isMixinPath {
		return s.mixinResource(req, out, instance)
	}
	if kind := s.Registry.KindByLocation(path); kind != nil {
		if req.Query.Get("action") != "" {
			return s.collectionAction(req, out, kind.ID)
		}
		return s.kindCollection(req, out, kind)
	}
	if mixin := s.Registry.MixinByLocation(path); mixin != nil {
		if req.Query.Get("action") != "" {
			return s.collectionAction(req, out, mixin.ID)
		}
		return s.mixinCollection(req, out, mixin)
	}
	if req.Query.Get("action") != "" {
		return s.action(req, out, path)
	}
	return s.instance(req, out, path)
}

// splitMixinPath recognizes the mixin association sub-resource of an
// instance path.
func splitMixinPath(path string) (string, bool) {
	if instance := strings.TrimSuffix(path, "/mixins"); instance != path && instance != "" {
		return instance, true
	}
	return "", false
}

// decodeRequest parses the request representation using the codec
// named by the request's own content type.
func (s *Server) decodeRequest(req *Request) (*rendering.Representation, error) {
	in, err := s.Codecs.ForContentType(req.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return in.Decode(req.Header, req.Body)
}

// resolveTarget lets renderings describe a link by its target's kind
// when the target is an entity of this service.
func (s *Server) resolveTarget(location string) (occi.CategoryID, bool) {
	ent, err := s.Backend.Retrieve(strings.TrimPrefix(location, "/"))
	if err != nil {
		return occi.CategoryID{}, false
	}
	return ent.Kind().ID, true
}

func (s *Server) encodeEntity(ent occi.Entity, out rendering.Codec, status int) (*Response, error) {
	rep, err := rendering.FromEntity(ent, s.resolveTarget)
	if err != nil {
		return nil, err
	}
	resp := &Response{Status: status, Header: make(http.Header)}
	resp.Body, err = out.EncodeOne(rep, resp.Header)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Server) encodeCollection(ents []occi.Entity, out rendering.Codec) (*Response, error) {
	reps := make([]*rendering.Representation, 0, len(ents))
	for _, ent := range ents {
		rep, err := rendering.FromEntity(ent, s.resolveTarget)
		if err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	resp := &Response{Status: http.StatusOK, Header: make(http.Header)}
	var err error
	resp.Body, err = out.EncodeList(reps, resp.Header)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// discovery renders the query interface: every registered category,
// optionally filtered by the categories the request names.
func (s *Server) discovery(req *Request, out rendering.Codec) (*Response, error) {
	if req.Method != "GET" && req.Method != "HEAD" {
		return nil, errMethodNotAllowed{Method: req.Method}
	}
	filter, _, err := s.requestFilter(req)
	if err != nil {
		return nil, err
	}
	rep := rendering.FromRegistry(s.Registry, filter.Categories)
	resp := &Response{Status: http.StatusOK, Header: make(http.Header)}
	resp.Body, err = out.EncodeOne(rep, resp.Header)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// requestFilter builds a collection filter from the category query
// parameters, the remaining query parameters as attribute matches,
// and the decoded request representation.  It also returns the
// decoded representation for handlers that need more than a filter.
func (s *Server) requestFilter(req *Request) (occi.Filter, *rendering.Representation, error) {
	filter := occi.Filter{}
	for key, values := range req.Query {
		if key == "action" {
			continue
		}
		if key == "category" {
			for _, value := range values {
				for _, item := range strings.Split(value, ",") {
					id, err := occi.ParseCategoryID(strings.TrimSpace(item))
					if err != nil {
						return filter, nil, err
					}
					filter.Categories = append(filter.Categories, id)
				}
			}
			continue
		}
		if filter.Attributes == nil {
			filter.Attributes = make(map[string]interface{})
		}
		filter.Attributes[key] = values[0]
	}

	rep, err := s.decodeRequest(req)
	if err != nil {
		return filter, nil, err
	}
	for _, ref := range rep.Categories {
		filter.Categories = append(filter.Categories, ref.ID)
	}
	for _, attr := range rep.Attributes {
		if filter.Attributes == nil {
			filter.Attributes = make(map[string]interface{})
		}
		filter.Attributes[attr.Name] = attr.Value
	}
	return filter, rep, nil
}

// kindCollection handles a kind's collection path: list, create, or
// delete everything in the collection.
func (s *Server) kindCollection(req *Request, out rendering.Codec, kind *occi.Kind) (*Response, error) {
	switch req.Method {
	case "GET", "HEAD":
		filter, _, err := s.requestFilter(req)
		if err != nil {
			return nil, err
		}
		filter.Categories = append(filter.Categories, kind.ID)
		ents, err := s.Backend.List(filter)
		if err != nil {
			return nil, err
		}
		return s.encodeCollection(ents, out)

	case "POST":
		rep, err := s.decodeRequest(req)
		if err != nil {
			return nil, err
		}
		// A representation with no kind of its own creates an
		// instance of the collection's kind.
		if !s.hasKind(rep) {
			rep.Categories = append(rep.Categories, rendering.CategoryRef{
				ID:    kind.ID,
				Class: rendering.ClassKind,
			})
		}
		return s.create(rep, out)

	case "DELETE":
		ents, err := s.Backend.List(occi.Filter{
			Categories: []occi.CategoryID{kind.ID},
		})
		if err != nil {
			return nil, err
		}
		for _, ent := range ents {
			if err := s.Backend.Delete(ent.ID()); err != nil {
				if _, gone := err.(occi.ErrNotFound); gone {
					// A cascade got there first.
					continue
				}
				return nil, err
			}
		}
		return &Response{Status: http.StatusNoContent, Header: make(http.Header)}, nil
	}
	return nil, errMethodNotAllowed{Method: req.Method}
}

// hasKind reports whether a representation names a kind of its own.
// A class-less category only counts when the registry resolves it to
// a kind; one naming a mixin leaves it to the collection's kind to
// fill in.
func (s *Server) hasKind(rep *rendering.Representation) bool {
	for _, ref := range rep.Categories {
		switch ref.Class {
		case rendering.ClassKind:
			return true
		case "":
			if _, err := s.Registry.Kind(ref.ID); err == nil {
				return true
			}
		}
	}
	return false
}

// mixinCollection handles a mixin's collection path: list members,
// or associate and dissociate the entities the request locates.
func (s *Server) mixinCollection(req *Request, out rendering.Codec, mixin *occi.Mixin) (*Response, error) {
	switch req.Method {
	case "GET", "HEAD":
		filter, _, err := s.requestFilter(req)
		if err != nil {
			return nil, err
		}
		filter.Categories = append(filter.Categories, mixin.ID)
		ents, err := s.Backend.List(filter)
		if err != nil {
			return nil, err
		}
		return s.encodeCollection(ents, out)

	case "POST", "DELETE":
		rep, err := s.decodeRequest(req)
		if err != nil {
			return nil, err
		}
		if len(rep.Locations) == 0 {
			return nil, occi.ErrMalformedRepresentation{
				Reason: "no entity locations to associate with " + mixin.ID.String(),
			}
		}
		for _, location := range rep.Locations {
			ent, err := s.Backend.Retrieve(strings.Trim(location, "/"))
			if err != nil {
				return nil, err
			}
			if req.Method == "POST" {
				err = ent.AssociateMixin(mixin.ID)
			} else {
				err = ent.DissociateMixin(mixin.ID)
			}
			if err != nil {
				return nil, err
			}
			if err = s.Backend.Update(ent); err != nil {
				return nil, err
			}
		}
		return &Response{Status: http.StatusOK, Header: make(http.Header)}, nil
	}
	return nil, errMethodNotAllowed{Method: req.Method}
}

// create validates a decoded representation and stores the new
// entity, along with any link entities the representation carries.
func (s *Server) create(rep *rendering.Representation, out rendering.Codec) (*Response, error) {
	ent, err := rendering.ToEntity(s.Registry, rep)
	if err != nil {
		return nil, err
	}
	if err = ent.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err = ent.Validate(); err != nil {
		return nil, err
	}
	if err = s.Backend.Create(ent); err != nil {
		return nil, err
	}
	if err = s.createLinks(ent, rep.Links); err != nil {
		return nil, err
	}
	return s.created(ent, out)
}

// createLinks stores the link entities a resource representation
// carries in its Link directives, sourced at the new resource.  A
// link entity's own directive just restates its endpoints, so it
// contributes nothing.
func (s *Server) createLinks(source occi.Entity, refs []rendering.LinkRef) error {
	if _, isResource := source.(*occi.Resource); !isResource {
		return nil
	}
	for _, ref := range refs {
		kind, err := s.linkKind(ref)
		if err != nil {
			return err
		}
		link, err := occi.NewLink(s.Registry, kind.ID,
			source.ID(), strings.TrimPrefix(ref.Target, "/"))
		if err != nil {
			return err
		}
		if ref.Self != "" {
			link.SetID(strings.TrimPrefix(ref.Self, "/"))
		}
		var attrs []rendering.Attribute
		for _, attr := range ref.Attributes {
			switch attr.Name {
			case rendering.AttrID, rendering.AttrSource, rendering.AttrTarget:
				continue
			}
			attrs = append(attrs, attr)
		}
		if err = rendering.ApplyAttributes(link, attrs); err != nil {
			return err
		}
		if err = link.ApplyDefaults(); err != nil {
			return err
		}
		if err = link.Validate(); err != nil {
			return err
		}
		if err = s.Backend.Create(link); err != nil {
			return err
		}
	}
	return nil
}

// linkKind resolves the kind a link directive describes.  The
// directive's own category parameter wins; a rel naming a registered
// link kind serves when no category is given.
func (s *Server) linkKind(ref rendering.LinkRef) (*occi.Kind, error) {
	if ref.Category != "" {
		id, err := occi.ParseCategoryID(ref.Category)
		if err != nil {
			return nil, err
		}
		kind, err := s.Registry.Kind(id)
		if err != nil {
			return nil, err
		}
		if !kind.IsLink {
			return nil, occi.ErrMalformedRepresentation{
				Reason: ref.Category + ": not a link kind",
			}
		}
		return kind, nil
	}
	if id, err := occi.ParseCategoryID(ref.Rel); err == nil {
		if kind, kindErr := s.Registry.Kind(id); kindErr == nil && kind.IsLink {
			return kind, nil
		}
	}
	return nil, occi.ErrMalformedRepresentation{
		Reason: "link directive to " + ref.Target + " does not name a link kind",
	}
}

// created renders the standard creation response: the new entity's
// location, both as a header and as a location-list body.
func (s *Server) created(ent occi.Entity, out rendering.Codec) (*Response, error) {
	rep, err := rendering.FromEntity(ent, s.resolveTarget)
	if err != nil {
		return nil, err
	}
	resp := &Response{Status: http.StatusCreated, Header: make(http.Header)}
	resp.Body, err = out.EncodeList([]*rendering.Representation{rep}, resp.Header)
	if err != nil {
		return nil, err
	}
	resp.Header.Set("Location", "/"+ent.ID())
	return resp, nil
}

// instance handles an opaque entity path.
func (s *Server) instance(req *Request, out rendering.Codec, id string) (*Response, error) {
	switch req.Method {
	case "GET", "HEAD":
		ent, err := s.Backend.Retrieve(id)
		if err != nil {
			return nil, err
		}
		return s.encodeEntity(ent, out, http.StatusOK)

	case "POST":
		// Partial update: merge attribute changes.
		rep, err := s.decodeRequest(req)
		if err != nil {
			return nil, err
		}
		ent, err := s.Backend.Retrieve(id)
		if err != nil {
			return nil, err
		}
		if err = rendering.ApplyAttributes(ent, rep.Attributes); err != nil {
			return nil, err
		}
		if err = s.Backend.Update(ent); err != nil {
			return nil, err
		}
		return s.encodeEntity(ent, out, http.StatusOK)

	case "PUT":
		return s.put(req, out, id)

	case "DELETE":
		if err := s.Backend.Delete(id); err != nil {
			return nil, err
		}
		return &Response{Status: http.StatusNoContent, Header: make(http.Header)}, nil
	}
	return nil, errMethodNotAllowed{Method: req.Method}
}

// put replaces an instance, or creates it under the client-supplied
// id.  A representation carrying a kind is taken as the full new
// state; one without a kind merges attributes into the stored entity.
func (s *Server) put(req *Request, out rendering.Codec, id string) (*Response, error) {
	rep, err := s.decodeRequest(req)
	if err != nil {
		return nil, err
	}

	existing, retrieveErr := s.Backend.Retrieve(id)
	if _, absent := retrieveErr.(occi.ErrNotFound); absent {
		ent, err := rendering.ToEntity(s.Registry, rep)
		if err != nil {
			return nil, err
		}
		ent.SetID(id)
		if err = ent.ApplyDefaults(); err != nil {
			return nil, err
		}
		if err = ent.Validate(); err != nil {
			return nil, err
		}
		if err = s.Backend.Create(ent); err != nil {
			return nil, err
		}
		if err = s.createLinks(ent, rep.Links); err != nil {
			return nil, err
		}
		return s.created(ent, out)
	}
	if retrieveErr != nil {
		return nil, retrieveErr
	}

	if s.hasKind(rep) {
		ent, err := rendering.ToEntity(s.Registry, rep)
		if err != nil {
			return nil, err
		}
		if ent.Kind().ID != existing.Kind().ID {
			return nil, occi.ErrMalformedRepresentation{
				Reason: "cannot change the kind of " + id,
			}
		}
		ent.SetID(id)
		if err = ent.ApplyDefaults(); err != nil {
			return nil, err
		}
		if err = ent.Validate(); err != nil {
			return nil, err
		}
		if err = s.Backend.Update(ent); err != nil {
			return nil, err
		}
		return s.encodeEntity(ent, out, http.StatusOK)
	}

	if err = rendering.ApplyAttributes(existing, rep.Attributes); err != nil {
		return nil, err
	}
	if err = s.Backend.Update(existing); err != nil {
		return nil, err
	}
	return s.encodeEntity(existing, out, http.StatusOK)
}

// mixinResource handles an instance's mixin association
// sub-resource.
func (s *Server) mixinResource(req *Request, out rendering.Codec, id string) (*Response, error) {
	if req.Method != "POST" && req.Method != "DELETE" {
		return nil, errMethodNotAllowed{Method: req.Method}
	}
	rep, err := s.decodeRequest(req)
	if err != nil {
		return nil, err
	}
	if len(rep.Categories) == 0 {
		return nil, occi.ErrMalformedRepresentation{
			Reason: "no mixin category in request",
		}
	}
	ent, err := s.Backend.Retrieve(id)
	if err != nil {
		return nil, err
	}
	for _, ref := range rep.Categories {
		if req.Method == "POST" {
			err = ent.AssociateMixin(ref.ID)
		} else {
			err = ent.DissociateMixin(ref.ID)
		}
		if err != nil {
			return nil, err
		}
	}
	if err = s.Backend.Update(ent); err != nil {
		return nil, err
	}
	return s.encodeEntity(ent, out, http.StatusOK)
}

// action handles action invocation: POST {id}?action={term}.
func (s *Server) action(req *Request, out rendering.Codec, id string) (*Response, error) {
	if req.Method != "POST" {
		return nil, errMethodNotAllowed{Method: req.Method}
	}
	term := req.Query.Get("action")
	rep, err := s.decodeRequest(req)
	if err != nil {
		return nil, err
	}

	ent, err := s.Backend.Retrieve(id)
	if err != nil {
		return nil, err
	}
	action, err := s.resolveAction(ent, term, rep)
	if err != nil {
		return nil, err
	}
	params, err := actionParameters(action, rep.Attributes)
	if err != nil {
		return nil, err
	}
	result, err := s.Backend.InvokeAction(id, action, params)
	if err != nil {
		return nil, err
	}
	return s.encodeEntity(result, out, http.StatusOK)
}

// collectionAction invokes an action on every member of a kind or
// mixin collection: POST {location}?action={term}.  The resulting
// entity states come back as a collection.
func (s *Server) collectionAction(req *Request, out rendering.Codec, category occi.CategoryID) (*Response, error) {
	if req.Method != "POST" {
		return nil, errMethodNotAllowed{Method: req.Method}
	}
	term := req.Query.Get("action")
	rep, err := s.decodeRequest(req)
	if err != nil {
		return nil, err
	}
	ents, err := s.Backend.List(occi.Filter{
		Categories: []occi.CategoryID{category},
	})
	if err != nil {
		return nil, err
	}
	results := make([]occi.Entity, 0, len(ents))
	for _, ent := range ents {
		action, err := s.resolveAction(ent, term, rep)
		if err != nil {
			return nil, err
		}
		params, err := actionParameters(action, rep.Attributes)
		if err != nil {
			return nil, err
		}
		result, err := s.Backend.InvokeAction(ent.ID(), action, params)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return s.encodeCollection(results, out)
}

// resolveAction finds the action the request names, preferring the
// full category in the body over the bare term in the query string.
// Either way it must be in the entity's effective action set.
func (s *Server) resolveAction(ent occi.Entity, term string, rep *rendering.Representation) (*occi.Action, error) {
	available := ent.AvailableActions()
	for _, ref := range rep.Categories {
		if ref.Class != rendering.ClassAction && ref.Class != "" {
			continue
		}
		for _, action := range available {
			if action.ID == ref.ID {
				if term != "" && action.ID.Term != term {
					return nil, occi.ErrMalformedRepresentation{
						Reason: "action category does not match query parameter " + term,
					}
				}
				return action, nil
			}
		}
		return nil, occi.ErrActionNotSupported{Action: ref.ID}
	}
	for _, action := range available {
		if action.ID.Term == term {
			return action, nil
		}
	}
	return nil, occi.ErrActionNotSupported{Action: occi.CategoryID{Term: term}}
}

// actionParameters types the request's attribute directives against
// the action's own attribute definitions.
func actionParameters(action *occi.Action, attrs []rendering.Attribute) (map[string]interface{}, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	defs := make(map[string]occi.AttributeDefinition, len(action.Attributes))
	for _, def := range action.Attributes {
		defs[def.Name] = def
	}
	params := make(map[string]interface{}, len(attrs))
	for _, attr := range attrs {
		def, declared := defs[attr.Name]
		if !declared {
			return nil, occi.ErrUnknownAttribute{Name: attr.Name}
		}
		value, err := def.Type.Parse(def.Name, attr.Value)
		if err != nil {
			return nil, err
		}
		params[attr.Name] = value
	}
	return params, nil
}
