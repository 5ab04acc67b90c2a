// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudfoam/go-occi/memory"
	"github.com/cloudfoam/go-occi/occi"
)

// TestLifecycleScenario walks one entity through the whole model:
// vocabulary registration, creation, mixin association, schema
// enforcement, action checks, and deletion.
func TestLifecycleScenario(t *testing.T) {
	reg := occi.NewRegistry()
	kindID := occi.CategoryID{Scheme: "http://example.com/scenario#", Term: "compute"}
	mixinID := occi.CategoryID{Scheme: "http://example.com/scenario#", Term: "ssh_key"}

	require.NoError(t, reg.RegisterKind(occi.Kind{
		Category: occi.Category{
			ID: kindID,
			Attributes: []occi.AttributeDefinition{
				{Name: "title", Type: occi.TypeString, Mutable: true},
				{Name: "cores", Type: occi.TypeInt, Required: true, Mutable: true},
			},
		},
		Location: "compute/",
	}))
	require.NoError(t, reg.RegisterMixin(occi.Mixin{
		Category: occi.Category{
			ID: mixinID,
			Attributes: []occi.AttributeDefinition{
				{Name: "public_key", Type: occi.TypeString, Mutable: true},
			},
		},
		AppliesTo: &kindID,
		Location:  "ssh_key/",
	}))

	backend := memory.New(reg)

	ent, err := occi.NewResource(reg, kindID)
	require.NoError(t, err)
	require.NoError(t, ent.SetAttribute("cores", "2"))
	require.NoError(t, ent.SetAttribute("title", "vm1"))
	require.NoError(t, ent.Validate())
	require.NoError(t, backend.Create(ent))

	schema, err := reg.EffectiveAttributes(kindID, nil)
	require.NoError(t, err)
	assert.Len(t, schema, 2)

	require.NoError(t, ent.AssociateMixin(mixinID))
	require.NoError(t, ent.SetAttribute("public_key", "AAAAB3NzaC1yc2E"))
	schema, err = reg.EffectiveAttributes(kindID, ent.MixinIDs())
	require.NoError(t, err)
	assert.Contains(t, schema, "public_key")

	err = ent.SetAttribute("cores", "lots")
	assert.IsType(t, occi.ErrTypeMismatch{}, err)

	undeclared := &occi.Action{Category: occi.Category{
		ID: occi.CategoryID{Scheme: "http://example.com/scenario#", Term: "reboot"},
	}}
	_, err = backend.InvokeAction(ent.ID(), undeclared, nil)
	assert.IsType(t, occi.ErrActionNotSupported{}, err)

	require.NoError(t, backend.Delete(ent.ID()))
	_, err = backend.Retrieve(ent.ID())
	assert.IsType(t, occi.ErrNotFound{}, err)
}
