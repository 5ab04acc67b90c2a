// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package infrastructure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudfoam/go-occi/infrastructure"
	"github.com/cloudfoam/go-occi/occi"
)

func TestRegister(t *testing.T) {
	reg := occi.NewRegistry()
	require.NoError(t, infrastructure.Register(reg))
	// Registration of the same vocabulary twice is a no-op.
	require.NoError(t, infrastructure.Register(reg))

	assert.Len(t, reg.Kinds(), 8)
	assert.Len(t, reg.Mixins(), 2)
	assert.Len(t, reg.Actions(), 11)
}

func TestComputeSchema(t *testing.T) {
	reg := infrastructure.NewRegistry()

	schema, err := reg.EffectiveAttributes(infrastructure.ComputeID, nil)
	require.NoError(t, err)
	// Core attributes are inherited through the kind chain.
	assert.Contains(t, schema, "occi.core.title")
	assert.Contains(t, schema, "occi.core.summary")
	assert.Contains(t, schema, "occi.compute.cores")

	def := schema["occi.compute.state"]
	assert.False(t, def.Mutable)
	assert.Equal(t, "inactive", def.Default)
}

func TestLocations(t *testing.T) {
	reg := infrastructure.NewRegistry()
	for location, want := range map[string]occi.CategoryID{
		"compute/":               infrastructure.ComputeID,
		"network/":               infrastructure.NetworkID,
		"storage/":               infrastructure.StorageID,
		"link/networkinterface/": infrastructure.NetworkInterfaceID,
		"link/storage/":          infrastructure.StorageLinkID,
	} {
		kind := reg.KindByLocation(location)
		require.NotNil(t, kind, location)
		assert.Equal(t, want, kind.ID)
	}

	mixin := reg.MixinByLocation("ipnetwork/")
	require.NotNil(t, mixin)
	assert.Equal(t, infrastructure.IPNetworkID, mixin.ID)
}

func TestLinkKinds(t *testing.T) {
	reg := infrastructure.NewRegistry()
	for _, id := range []occi.CategoryID{
		infrastructure.LinkID,
		infrastructure.NetworkInterfaceID,
		infrastructure.StorageLinkID,
	} {
		kind, err := reg.Kind(id)
		require.NoError(t, err)
		assert.True(t, kind.IsLink, id.String())
	}
}

func TestStorageActions(t *testing.T) {
	reg := infrastructure.NewRegistry()
	actions, err := reg.EffectiveActions(infrastructure.StorageID, nil)
	require.NoError(t, err)

	terms := make([]string, len(actions))
	for i, action := range actions {
		terms[i] = action.ID.Term
	}
	assert.ElementsMatch(t,
		[]string{"online", "offline", "backup", "snapshot", "resize"}, terms)
}
