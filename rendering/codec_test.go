// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package rendering

import (
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugorji/go/codec"

	"github.com/cloudfoam/go-occi/occi"
)

func sampleRepresentation() *Representation {
	return &Representation{
		Categories: []CategoryRef{
			{
				ID: occi.CategoryID{
					Scheme: "http://schemas.ogf.org/occi/infrastructure#",
					Term:   "compute",
				},
				Class: ClassKind,
				Title: "Compute Resource",
			},
			{
				ID: occi.CategoryID{
					Scheme: "http://schemas.ogf.org/occi/infrastructure/credentials#",
					Term:   "ssh_key",
				},
				Class: ClassMixin,
			},
		},
		Attributes: []Attribute{
			{Name: "occi.compute.cores", Value: "4"},
			{Name: "occi.compute.hostname", Value: `vm "zero", rack 1`, Quoted: true},
			{Name: "occi.compute.throttle", Value: "0.5"},
		},
		Links: []LinkRef{
			{
				Target:   "network/lan",
				Rel:      "http://schemas.ogf.org/occi/infrastructure#network",
				Self:     "link/networkinterface/n0",
				Category: "http://schemas.ogf.org/occi/infrastructure#networkinterface",
				Attributes: []Attribute{
					{Name: "occi.networkinterface.interface", Value: "eth0", Quoted: true},
				},
			},
		},
		Locations: []string{"compute/123"},
	}
}

func TestTextOCCIRoundTrip(t *testing.T) {
	rep := sampleRepresentation()
	header := make(http.Header)
	body, err := TextOCCICodec{}.EncodeOne(rep, header)
	require.NoError(t, err)
	assert.Empty(t, body)
	assert.Equal(t, MediaTypeTextOCCI, header.Get("Content-Type"))
	assert.Contains(t, header.Get("Category"), `compute; scheme="http://schemas.ogf.org/occi/infrastructure#"; class="kind"`)
	assert.Contains(t, header.Get("X-Occi-Attribute"), "occi.compute.cores=4")

	back, err := TextOCCICodec{}.Decode(header, nil)
	require.NoError(t, err)
	assert.Equal(t, rep.Categories, back.Categories)
	assert.Equal(t, rep.Attributes, back.Attributes)
	assert.Equal(t, rep.Links, back.Links)
	assert.Equal(t, rep.Locations, back.Locations)
}

func TestTextOCCIEncodeList(t *testing.T) {
	reps := []*Representation{
		{Locations: []string{"compute/1"}},
		{Locations: []string{"compute/2"}},
	}
	header := make(http.Header)
	body, err := TextOCCICodec{}.EncodeList(reps, header)
	require.NoError(t, err)
	assert.Empty(t, body)
	assert.Equal(t, "compute/1, compute/2", header.Get("X-Occi-Location"))
}

func TestTextPlainRoundTrip(t *testing.T) {
	rep := sampleRepresentation()
	header := make(http.Header)
	body, err := TextPlainCodec{}.EncodeOne(rep, header)
	require.NoError(t, err)
	assert.Equal(t, MediaTypeTextPlain, header.Get("Content-Type"))
	assert.Contains(t, string(body), "Category: compute;")
	assert.Contains(t, string(body), "X-OCCI-Attribute: occi.compute.cores=4\r\n")
	assert.Contains(t, string(body), "X-OCCI-Location: compute/123\r\n")

	back, err := TextPlainCodec{}.Decode(make(http.Header), body)
	require.NoError(t, err)
	assert.Equal(t, rep.Categories, back.Categories)
	assert.Equal(t, rep.Attributes, back.Attributes)
	assert.Equal(t, rep.Links, back.Links)
	assert.Equal(t, rep.Locations, back.Locations)
}

func TestListAttributeRoundTrip(t *testing.T) {
	rep := &Representation{
		Attributes: []Attribute{
			{Name: "occi.compute.tags", Value: `["web, public", "zone \"a\""]`},
			{Name: "occi.compute.cores", Value: "4"},
		},
	}

	t.Run("text/occi", func(t *testing.T) {
		header := make(http.Header)
		_, err := TextOCCICodec{}.EncodeOne(rep, header)
		require.NoError(t, err)
		back, err := TextOCCICodec{}.Decode(header, nil)
		require.NoError(t, err)
		assert.Equal(t, rep.Attributes, back.Attributes)
	})

	t.Run("text/plain", func(t *testing.T) {
		header := make(http.Header)
		body, err := TextPlainCodec{}.EncodeOne(rep, header)
		require.NoError(t, err)
		back, err := TextPlainCodec{}.Decode(make(http.Header), body)
		require.NoError(t, err)
		assert.Equal(t, rep.Attributes, back.Attributes)
	})

	t.Run("json", func(t *testing.T) {
		c := NewJSONCodec()
		header := make(http.Header)
		body, err := c.EncodeOne(rep, header)
		require.NoError(t, err)
		// Lists render as native JSON arrays.
		var decoded map[string]interface{}
		jh := &codec.JsonHandle{}
		jh.MapType = reflect.TypeOf(map[string]interface{}(nil))
		require.NoError(t, codec.NewDecoderBytes(body, jh).Decode(&decoded))
		attrs := decoded["attributes"].(map[string]interface{})
		assert.Len(t, attrs["occi.compute.tags"], 2)

		back, err := c.Decode(header, body)
		require.NoError(t, err)
		byName := map[string]Attribute{}
		for _, attr := range back.Attributes {
			byName[attr.Name] = attr
		}
		assert.Equal(t, rep.Attributes[0], byName["occi.compute.tags"])
	})
}

func TestTextPlainContinuationLines(t *testing.T) {
	body := "Category: network; scheme=\"http://schemas.ogf.org/occi/infrastructure#\";\r\n" +
		"    class=\"kind\";\r\n" +
		"    title=\"Network Resource\"\r\n" +
		"X-OCCI-Attribute: occi.network.label=\"intranet\"\r\n"
	rep, err := TextPlainCodec{}.Decode(make(http.Header), []byte(body))
	require.NoError(t, err)
	require.Len(t, rep.Categories, 1)
	assert.Equal(t, "network", rep.Categories[0].ID.Term)
	assert.Equal(t, ClassKind, rep.Categories[0].Class)
	assert.Equal(t, "Network Resource", rep.Categories[0].Title)
	require.Len(t, rep.Attributes, 1)
	assert.Equal(t, "intranet", rep.Attributes[0].Value)
}

func TestTextPlainMalformed(t *testing.T) {
	tests := []struct{ name, body string }{
		{"no colon", "this is not a directive\r\n"},
		{"no scheme", "Category: compute; class=\"kind\"\r\n"},
		{"bad attribute", "X-OCCI-Attribute: novalue\r\n"},
		{"bad link", "Link: network/lan; rel=\"x\"\r\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(tt *testing.T) {
			_, err := TextPlainCodec{}.Decode(make(http.Header), []byte(test.body))
			if assert.Error(tt, err) {
				assert.IsType(tt, occi.ErrMalformedRepresentation{}, err)
			}
		})
	}
}

func TestURIListRoundTrip(t *testing.T) {
	reps := []*Representation{
		{Locations: []string{"compute/1"}},
		{Locations: []string{"compute/2", "compute/3"}},
	}
	header := make(http.Header)
	body, err := URIListCodec{}.EncodeList(reps, header)
	require.NoError(t, err)
	assert.Equal(t, MediaTypeURIList, header.Get("Content-Type"))
	assert.Equal(t, "compute/1\r\ncompute/2\r\ncompute/3\r\n", string(body))

	back, err := URIListCodec{}.Decode(make(http.Header), []byte("# a comment\r\ncompute/1\r\n\r\ncompute/2\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"compute/1", "compute/2"}, back.Locations)
}

func TestJSONRoundTrip(t *testing.T) {
	rep := sampleRepresentation()
	header := make(http.Header)
	c := NewJSONCodec()
	body, err := c.EncodeOne(rep, header)
	require.NoError(t, err)
	assert.Equal(t, MediaTypeJSON+"; charset=utf-8", header.Get("Content-Type"))

	var decoded map[string]interface{}
	jh := &codec.JsonHandle{}
	jh.MapType = reflect.TypeOf(map[string]interface{}(nil))
	require.NoError(t, codec.NewDecoderBytes(body, jh).Decode(&decoded))
	kind := decoded["kind"].(map[string]interface{})
	assert.Equal(t, "compute", kind["term"])
	assert.Equal(t, "compute/123", decoded["location"])

	back, err := c.Decode(header, body)
	require.NoError(t, err)
	assert.Equal(t, rep.Categories[0].ID, back.Categories[0].ID)
	assert.Equal(t, rep.Locations, back.Locations)
	// Attribute order is not preserved through a JSON map.
	byName := map[string]Attribute{}
	for _, attr := range back.Attributes {
		byName[attr.Name] = attr
	}
	assert.Equal(t, Attribute{Name: "occi.compute.cores", Value: "4"}, byName["occi.compute.cores"])
	assert.Equal(t, `vm "zero", rack 1`, byName["occi.compute.hostname"].Value)
	assert.True(t, byName["occi.compute.hostname"].Quoted)
	assert.Equal(t, "0.5", byName["occi.compute.throttle"].Value)
}

func TestJSONEncodeList(t *testing.T) {
	header := make(http.Header)
	c := NewJSONCodec()
	body, err := c.EncodeList([]*Representation{
		{Locations: []string{"compute/1"}},
	}, header)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, codec.NewDecoderBytes(body, &codec.JsonHandle{}).Decode(&decoded))
	collection := decoded["collection"].([]interface{})
	require.Len(t, collection, 1)
}

func TestJSONDecodeMalformed(t *testing.T) {
	_, err := NewJSONCodec().Decode(make(http.Header), []byte("{not json"))
	if assert.Error(t, err) {
		assert.IsType(t, occi.ErrMalformedRepresentation{}, err)
	}
}

func TestEncodeError(t *testing.T) {
	err := occi.ErrNotFound{ID: "compute/missing"}
	for _, c := range []Codec{TextOCCICodec{}, TextPlainCodec{}, URIListCodec{}} {
		header := make(http.Header)
		body := c.EncodeError(err, header)
		assert.Contains(t, string(body), "compute/missing")
	}
	header := make(http.Header)
	body := NewJSONCodec().EncodeError(err, header)
	assert.True(t, strings.HasPrefix(string(body), `{"error":`), "body %q", body)
}

func TestNegotiate(t *testing.T) {
	codecs := NewCodecs()
	tests := []struct {
		name   string
		accept string
		want   string
		fails  bool
	}{
		{"empty", "", MediaTypeTextPlain, false},
		{"wildcard", "*/*", MediaTypeTextPlain, false},
		{"text wildcard", "text/*", MediaTypeTextPlain, false},
		{"application wildcard", "application/*", MediaTypeJSON, false},
		{"exact", "text/occi", MediaTypeTextOCCI, false},
		{"uri list", "text/uri-list", MediaTypeURIList, false},
		{"quality", "text/occi;q=0.5, application/occi+json", MediaTypeJSON, false},
		{"wildcard outranks lower q", "*/*, text/occi;q=0.9", MediaTypeTextPlain, false},
		{"specific beats wildcard", "*/*;q=0.8, text/occi", MediaTypeTextOCCI, false},
		{"unknown then known", "image/png, text/occi", MediaTypeTextOCCI, false},
		{"nothing acceptable", "image/png, image/jpeg", "", true},
		{"zero quality", "text/occi;q=0", "", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(tt *testing.T) {
			c, err := codecs.Negotiate(test.accept)
			if test.fails {
				assert.Equal(tt, occi.ErrNotAcceptable, err)
			} else if assert.NoError(tt, err) {
				assert.Equal(tt, test.want, c.ContentType())
			}
		})
	}
}

func TestForContentType(t *testing.T) {
	codecs := NewCodecs()

	c, err := codecs.ForContentType("")
	require.NoError(t, err)
	assert.Equal(t, MediaTypeTextOCCI, c.ContentType())

	c, err = codecs.ForContentType("text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, MediaTypeTextPlain, c.ContentType())

	_, err = codecs.ForContentType("application/not-supported")
	assert.Error(t, err)
}
