// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package rendering

import (
	"net/http"
	"strings"
)

// URIListCodec renders bare locations, one per line, as RFC 2483
// describes.  This codec always returns URIs, even if just one
// object is rendered.
type URIListCodec struct{}

// ContentType implements Codec.
func (URIListCodec) ContentType() string { return MediaTypeURIList }

// Decode implements Codec.  Lines starting with "#" are comments.
func (URIListCodec) Decode(header http.Header, body []byte) (*Representation, error) {
	rep := &Representation{}
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rep.Locations = append(rep.Locations, line)
	}
	return rep, nil
}

// EncodeOne implements Codec.
func (c URIListCodec) EncodeOne(rep *Representation, header http.Header) ([]byte, error) {
	return c.EncodeList([]*Representation{rep}, header)
}

// EncodeList implements Codec.
func (URIListCodec) EncodeList(reps []*Representation, header http.Header) ([]byte, error) {
	header.Set("Content-Type", MediaTypeURIList)
	var b strings.Builder
	for _, rep := range reps {
		for _, location := range rep.Locations {
			b.WriteString(location)
			b.WriteString("\r\n")
		}
	}
	return []byte(b.String()), nil
}

// EncodeError implements Codec.
func (URIListCodec) EncodeError(err error, header http.Header) []byte {
	header.Set("Content-Type", MediaTypeTextPlain)
	return []byte(err.Error() + "\r\n")
}
