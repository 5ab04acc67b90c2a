// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudfoam/go-occi/backend"
	"github.com/cloudfoam/go-occi/occi/occitest"
)

func TestSet(t *testing.T) {
	for _, test := range []struct {
		param          string
		implementation string
		address        string
		valid          bool
	}{
		{"memory", "memory", "", true},
		{"postgres", "postgres", "", true},
		{"postgres://u:p@localhost/occi", "postgres", "//u:p@localhost/occi", true},
		{"riak:whatever", "riak", "whatever", false},
	} {
		t.Run(test.param, func(t *testing.T) {
			var b backend.Backend
			err := b.Set(test.param)
			if !test.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.implementation, b.Implementation)
			assert.Equal(t, test.address, b.Address)
		})
	}
}

func TestString(t *testing.T) {
	b := backend.Backend{Implementation: "memory"}
	assert.Equal(t, "memory", b.String())
	b = backend.Backend{Implementation: "postgres", Address: "//localhost/occi"}
	assert.Equal(t, "postgres://localhost/occi", b.String())
}

func TestMemoryBackend(t *testing.T) {
	b := backend.Backend{Implementation: "memory"}
	store, err := b.Backend(occitest.NewRegistry())
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestUnknownBackend(t *testing.T) {
	b := backend.Backend{Implementation: "riak"}
	_, err := b.Backend(occitest.NewRegistry())
	assert.Error(t, err)
}
