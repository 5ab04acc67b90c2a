// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occi_test

import (
	"github.com/stretchr/testify/require"
	"testing"

	"github.com/cloudfoam/go-occi/occi"
)

var (
	resourceID = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/core#", Term: "resource"}
	linkID     = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/core#", Term: "link"}
	computeID  = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure#", Term: "compute"}
	nicID      = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure#", Term: "networkinterface"}
	sshKeyID   = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure/credentials#", Term: "ssh_key"}
	taggedID   = occi.CategoryID{Scheme: "http://example.com/tags#", Term: "tagged"}
	startID    = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure/compute/action#", Term: "start"}
	stopID     = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure/compute/action#", Term: "stop"}
)

// testRegistry builds a registry with a small compute vocabulary:
// the core resource and link kinds, a compute kind with start/stop
// actions, a network interface link kind, an ssh_key mixin scoped to
// compute, and an unconstrained tagged mixin.
func testRegistry(t *testing.T) *occi.Registry {
	reg := occi.NewRegistry()

	require.NoError(t, reg.RegisterKind(occi.Kind{
		Category: occi.Category{ID: resourceID, Title: "Resource"},
		Location: "resource/",
	}))
	require.NoError(t, reg.RegisterKind(occi.Kind{
		Category: occi.Category{ID: linkID, Title: "Link"},
		Location: "link/",
		IsLink:   true,
	}))
	require.NoError(t, reg.RegisterKind(occi.Kind{
		Category: occi.Category{
			ID:    computeID,
			Title: "Compute Resource",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.compute.cores", Type: occi.TypeInt, Mutable: true},
				{Name: "occi.compute.hostname", Type: occi.TypeString, Required: true, Mutable: true},
				{Name: "occi.compute.state", Type: occi.TypeString, Default: "inactive"},
			},
		},
		Parent: &resourceID,
		Actions: []occi.Action{
			{Category: occi.Category{ID: startID, Title: "Start Compute"}},
			{Category: occi.Category{
				ID:    stopID,
				Title: "Stop Compute",
				Attributes: []occi.AttributeDefinition{
					{Name: "method", Type: occi.TypeString, Mutable: true},
				},
			}},
		},
		Location: "compute/",
	}))
	require.NoError(t, reg.RegisterKind(occi.Kind{
		Category: occi.Category{
			ID:    nicID,
			Title: "Network Interface",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.networkinterface.interface", Type: occi.TypeString, Mutable: true},
			},
		},
		Parent:   &linkID,
		Location: "link/networkinterface/",
		IsLink:   true,
	}))
	require.NoError(t, reg.RegisterMixin(occi.Mixin{
		Category: occi.Category{
			ID:    sshKeyID,
			Title: "SSH Key",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.credentials.ssh.publickey", Type: occi.TypeString, Mutable: true},
			},
		},
		AppliesTo: &computeID,
		Location:  "ssh_key/",
	}))
	require.NoError(t, reg.RegisterMixin(occi.Mixin{
		Category: occi.Category{
			ID:    taggedID,
			Title: "Tagged",
			Attributes: []occi.AttributeDefinition{
				{Name: "tags", Type: occi.TypeStringList, Mutable: true},
			},
		},
		Location: "tagged/",
	}))

	return reg
}

// testCompute creates a compute resource with its required
// attributes set.
func testCompute(t *testing.T, reg *occi.Registry) *occi.Resource {
	res, err := occi.NewResource(reg, computeID)
	require.NoError(t, err)
	require.NoError(t, res.SetAttribute("occi.compute.hostname", "vm0"))
	return res
}
