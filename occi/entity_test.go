// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudfoam/go-occi/occi"
)

func TestNewResourceWrongClass(t *testing.T) {
	reg := testRegistry(t)

	_, err := occi.NewResource(reg, nicID)
	assert.Error(t, err)

	_, err = occi.NewLink(reg, computeID, "compute/a", "compute/b")
	assert.Error(t, err)

	_, err = occi.NewResource(reg, occi.CategoryID{Scheme: "http://x#", Term: "y"})
	if assert.Error(t, err) {
		assert.IsType(t, occi.ErrUnknownCategory{}, err)
	}
}

func TestSetAttribute(t *testing.T) {
	reg := testRegistry(t)
	res := testCompute(t, reg)

	require.NoError(t, res.SetAttribute("occi.compute.cores", "4"))
	value, present := res.Attribute("occi.compute.cores")
	assert.True(t, present)
	assert.Equal(t, int64(4), value)

	// Typed values work too.
	require.NoError(t, res.SetAttribute("occi.compute.cores", int64(8)))
	value, _ = res.Attribute("occi.compute.cores")
	assert.Equal(t, int64(8), value)

	err := res.SetAttribute("occi.compute.cores", "four")
	if assert.Error(t, err) {
		assert.IsType(t, occi.ErrTypeMismatch{}, err)
	}

	err = res.SetAttribute("occi.compute.ram", "2048")
	if assert.Error(t, err) {
		assert.IsType(t, occi.ErrUnknownAttribute{}, err)
	}
}

func TestImmutableAttribute(t *testing.T) {
	reg := testRegistry(t)
	res := testCompute(t, reg)

	// Setting an unset immutable attribute is allowed, as is
	// re-setting it to the same value.
	require.NoError(t, res.SetAttribute("occi.compute.state", "active"))
	require.NoError(t, res.SetAttribute("occi.compute.state", "active"))

	err := res.SetAttribute("occi.compute.state", "inactive")
	if assert.Error(t, err) {
		assert.IsType(t, occi.ErrImmutableAttribute{}, err)
	}

	err = res.UnsetAttribute("occi.compute.state")
	if assert.Error(t, err) {
		assert.IsType(t, occi.ErrImmutableAttribute{}, err)
	}
	require.NoError(t, res.UnsetAttribute("occi.compute.cores"))
}

func TestApplyDefaults(t *testing.T) {
	reg := testRegistry(t)
	res := testCompute(t, reg)

	require.NoError(t, res.ApplyDefaults())
	value, present := res.Attribute("occi.compute.state")
	assert.True(t, present)
	assert.Equal(t, "inactive", value)

	// A default never clobbers an explicit value.
	res2 := testCompute(t, reg)
	require.NoError(t, res2.SetAttribute("occi.compute.state", "active"))
	require.NoError(t, res2.ApplyDefaults())
	value, _ = res2.Attribute("occi.compute.state")
	assert.Equal(t, "active", value)
}

func TestValidate(t *testing.T) {
	reg := testRegistry(t)

	res, err := occi.NewResource(reg, computeID)
	require.NoError(t, err)
	assert.Error(t, res.Validate())

	require.NoError(t, res.SetAttribute("occi.compute.hostname", "vm0"))
	assert.NoError(t, res.Validate())
}

func TestMixinAssociation(t *testing.T) {
	reg := testRegistry(t)
	res := testCompute(t, reg)

	// The ssh_key attribute is invisible before association.
	err := res.SetAttribute("occi.credentials.ssh.publickey", "ssh-rsa AAAA")
	assert.Error(t, err)

	require.NoError(t, res.AssociateMixin(sshKeyID))
	require.NoError(t, res.AssociateMixin(sshKeyID)) // idempotent
	require.Len(t, res.Mixins(), 1)
	require.NoError(t, res.SetAttribute("occi.credentials.ssh.publickey", "ssh-rsa AAAA"))

	require.NoError(t, res.DissociateMixin(sshKeyID))
	require.NoError(t, res.DissociateMixin(sshKeyID)) // idempotent
	assert.Empty(t, res.Mixins())

	// The mixin's attribute values went away with it.
	_, present := res.Attribute("occi.credentials.ssh.publickey")
	assert.False(t, present)
}

func TestMixinNotApplicable(t *testing.T) {
	reg := testRegistry(t)

	// Something that is not a compute descendant.
	res, err := occi.NewResource(reg, resourceID)
	require.NoError(t, err)

	err = res.AssociateMixin(sshKeyID)
	if assert.Error(t, err) {
		assert.IsType(t, occi.ErrMixinNotApplicable{}, err)
	}

	// The unconstrained mixin applies to anything.
	assert.NoError(t, res.AssociateMixin(taggedID))
}

func TestMixinAssociationOrder(t *testing.T) {
	reg := testRegistry(t)
	res := testCompute(t, reg)

	require.NoError(t, res.AssociateMixin(taggedID))
	require.NoError(t, res.AssociateMixin(sshKeyID))
	ids := res.MixinIDs()
	require.Len(t, ids, 2)
	assert.Equal(t, taggedID, ids[0])
	assert.Equal(t, sshKeyID, ids[1])
}

func TestAvailableActions(t *testing.T) {
	reg := testRegistry(t)
	res := testCompute(t, reg)

	actions := res.AvailableActions()
	require.Len(t, actions, 2)
	assert.Equal(t, startID, actions[0].ID)
}

func TestLinks(t *testing.T) {
	reg := testRegistry(t)
	res := testCompute(t, reg)
	res.SetID("compute/a")

	link, err := occi.NewLink(reg, nicID, "compute/a", "network/lan")
	require.NoError(t, err)
	link.SetID("link/networkinterface/n0")
	assert.Equal(t, "compute/a", link.Source())
	assert.Equal(t, "network/lan", link.Target())

	res.AddLink(link)
	res.AddLink(link) // idempotent by ID
	require.Len(t, res.Links(), 1)

	res.RemoveLink("link/networkinterface/n0")
	res.RemoveLink("link/networkinterface/n0")
	assert.Empty(t, res.Links())
}

func TestFilterMatches(t *testing.T) {
	reg := testRegistry(t)
	res := testCompute(t, reg)
	res.SetID("compute/a")
	require.NoError(t, res.SetAttribute("occi.compute.cores", int64(4)))
	require.NoError(t, res.AssociateMixin(sshKeyID))

	tests := []struct {
		name    string
		filter  occi.Filter
		matches bool
	}{
		{"empty", occi.Filter{}, true},
		{"own kind", occi.Filter{Categories: []occi.CategoryID{computeID}}, true},
		{"ancestor kind", occi.Filter{Categories: []occi.CategoryID{resourceID}}, true},
		{"mixin", occi.Filter{Categories: []occi.CategoryID{sshKeyID}}, true},
		{"unrelated kind", occi.Filter{Categories: []occi.CategoryID{linkID}}, false},
		{"absent mixin", occi.Filter{Categories: []occi.CategoryID{taggedID}}, false},
		{"attribute", occi.Filter{Attributes: map[string]interface{}{
			"occi.compute.cores": "4"}}, true},
		{"attribute mismatch", occi.Filter{Attributes: map[string]interface{}{
			"occi.compute.cores": "8"}}, false},
		{"attribute unset", occi.Filter{Attributes: map[string]interface{}{
			"occi.compute.state": "active"}}, false},
		{"prefix", occi.Filter{LocationPrefix: "compute/"}, true},
		{"wrong prefix", occi.Filter{LocationPrefix: "network/"}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(tt *testing.T) {
			assert.Equal(tt, test.matches, test.filter.Matches(reg, res))
		})
	}
}
