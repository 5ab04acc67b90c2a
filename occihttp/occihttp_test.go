// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occihttp_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudfoam/go-occi/memory"
	"github.com/cloudfoam/go-occi/occi/occitest"
	"github.com/cloudfoam/go-occi/occihttp"
	"github.com/cloudfoam/go-occi/rendering"
	"github.com/cloudfoam/go-occi/server"
)

func newServer() *server.Server {
	reg := occitest.NewRegistry()
	return server.New(reg, memory.New(reg))
}

func request(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Accept", "text/plain")
	if body != "" {
		req.Header.Set("Content-Type", "text/plain")
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRoundTrip(t *testing.T) {
	handler := occihttp.NewRouter(newServer())

	w := request(t, handler, "POST", "/compute/",
		"X-OCCI-Attribute: occi.compute.hostname=\"vm0\"\r\n")
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/compute/"))

	w = request(t, handler, "GET", location, "")
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Contains(t, w.Body.String(), "occi.compute.hostname=\"vm0\"")
}

func TestDiscovery(t *testing.T) {
	handler := occihttp.NewRouter(newServer())
	w := request(t, handler, "GET", "/-/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "compute")
}

func TestNotFoundStatus(t *testing.T) {
	handler := occihttp.NewRouter(newServer())
	w := request(t, handler, "GET", "/compute/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrefix(t *testing.T) {
	handler := &occihttp.Handler{Server: newServer(), Prefix: "/occi"}

	w := request(t, handler, "POST", "/occi/compute/",
		"X-OCCI-Attribute: occi.compute.hostname=\"vm0\"\r\n")
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/occi/compute/"))

	w = request(t, handler, "GET", location, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Paths outside the mount point do not reach the dispatcher.
	w = request(t, handler, "GET", "/other/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLargeAttributeOverHTTP(t *testing.T) {
	// Real HTTP transport trims leading whitespace from header
	// values, so an attribute too large to share a header instance
	// has to ride whole in an instance of its own.  Run the value
	// through an actual server and client to prove it survives.
	ts := httptest.NewServer(occihttp.NewRouter(newServer()))
	defer ts.Close()

	hostname := strings.Repeat("a", 5000)
	req, err := http.NewRequest("PUT", ts.URL+"/compute/big",
		strings.NewReader("Category: compute; scheme=\"http://schemas.ogf.org/occi/infrastructure#\"; class=\"kind\"\r\n"+
			"X-OCCI-Attribute: occi.compute.hostname=\""+hostname+"\"\r\n"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "text/plain")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, err = http.NewRequest("GET", ts.URL+"/compute/big", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/occi")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rep, err := rendering.TextOCCICodec{}.Decode(resp.Header, nil)
	require.NoError(t, err)
	got := ""
	for _, attr := range rep.Attributes {
		if attr.Name == "occi.compute.hostname" {
			got = attr.Value
		}
	}
	assert.Equal(t, hostname, got)
}

func TestMountedUnderSubpath(t *testing.T) {
	r := mux.NewRouter()
	r.PathPrefix("/api/").Handler(&occihttp.Handler{
		Server: newServer(),
		Prefix: "/api",
	})

	req := httptest.NewRequest("GET", "/api/-/", nil)
	req.Header.Set("Accept", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
}
