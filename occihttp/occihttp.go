// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package occihttp adapts the transport-neutral OCCI dispatcher onto
// net/http.  The dispatcher itself resolves paths, so the adapter's
// job is small: read the body, strip the mount prefix, relay the
// abstract response, and put the prefix back on outbound locations.
package occihttp

import (
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/cloudfoam/go-occi/server"
)

// NewRouter creates an HTTP handler serving all OCCI requests at the
// URL path root.  For more control over the setup, create a
// mux.Router and call PopulateRouter instead.
func NewRouter(s *server.Server) http.Handler {
	r := mux.NewRouter()
	PopulateRouter(r, s)
	return r
}

// PopulateRouter adds the OCCI handler to an existing
// github.com/gorilla/mux router at the path root.  To mount the
// interface under a subpath, register a Handler with its Prefix set:
//
//	r := mux.NewRouter()
//	r.PathPrefix("/occi/").Handler(&Handler{Server: srv, Prefix: "/occi"})
func PopulateRouter(r *mux.Router, s *server.Server) {
	r.PathPrefix("/").Name("occi").Handler(&Handler{Server: s})
}

// Handler serves OCCI requests over HTTP.
type Handler struct {
	// Server is the dispatcher requests are relayed to.
	Server *server.Server

	// Prefix, if set, is stripped from inbound request paths and
	// prepended to the Location header of outbound responses.
	Prefix string

	// Log, if non-nil, receives a debug record per request.
	Log *logrus.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = ioutil.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	path := r.URL.Path
	if h.Prefix != "" {
		stripped := strings.TrimPrefix(path, h.Prefix)
		if stripped == path {
			http.NotFound(w, r)
			return
		}
		path = stripped
	}

	start := time.Now()
	resp := h.Server.Handle(&server.Request{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.Query(),
		Header: r.Header,
		Body:   body,
	})

	if h.Log != nil {
		h.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   resp.Status,
			"duration": time.Since(start),
		}).Debug("request")
	}

	header := w.Header()
	for key, values := range resp.Header {
		header[key] = values
	}
	if location := resp.Header.Get("Location"); location != "" && h.Prefix != "" {
		header.Set("Location", h.Prefix+location)
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
