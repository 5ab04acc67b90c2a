// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package occitest provides generic functional tests for the Backend
// interface.  A typical backend test module needs to wrap Suite to
// create its backend:
//
//     package mybackend
//
//     import (
//             "testing"
//             "github.com/cloudfoam/go-occi/occi/occitest"
//             "github.com/stretchr/testify/suite"
//     )
//
//     // Suite is the per-backend generic test suite.
//     type Suite struct{
//             occitest.Suite
//     }
//
//     // SetupSuite does global setup for the test suite.
//     func (s *Suite) SetupSuite() {
//             s.Suite.SetupSuite()
//             s.Backend = NewWithClock(s.Registry, s.Clock)
//     }
//
//     // TestBackend runs the Backend generic tests.
//     func TestBackend(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
package occitest

import (
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"

	"github.com/cloudfoam/go-occi/occi"
)

// Identities of the categories every conformance registry carries.
var (
	ResourceID = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/core#", Term: "resource"}
	LinkID     = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/core#", Term: "link"}
	ComputeID  = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure#", Term: "compute"}
	NetworkID  = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure#", Term: "network"}
	NicID      = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure#", Term: "networkinterface"}
	SSHKeyID   = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure/credentials#", Term: "ssh_key"}
	StartID    = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure/compute/action#", Term: "start"}
	StopID     = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure/compute/action#", Term: "stop"}
	UpID       = occi.CategoryID{Scheme: "http://schemas.ogf.org/occi/infrastructure/network/action#", Term: "up"}
)

// Suite is the generic Backend test suite.
type Suite struct {
	suite.Suite

	// Clock contains the alternate time source to be used in
	// tests.  It is pre-initialized to a mock clock.
	Clock *clock.Mock

	// Registry holds the conformance vocabulary the backend under
	// test was constructed with.
	Registry *occi.Registry

	// Backend contains the implementation under test.  It is set
	// by importing packages.
	Backend occi.Backend
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
	s.Clock = clock.NewMock()
	s.Registry = NewRegistry()
}

// NewRegistry builds the conformance vocabulary: compute and network
// kinds under the core resource kind, a network interface link kind,
// and an ssh_key mixin scoped to compute.
func NewRegistry() *occi.Registry {
	reg := occi.NewRegistry()
	for _, kind := range []occi.Kind{
		{
			Category: occi.Category{ID: ResourceID, Title: "Resource"},
			Location: "resource/",
		},
		{
			Category: occi.Category{ID: LinkID, Title: "Link"},
			Location: "link/",
			IsLink:   true,
		},
		{
			Category: occi.Category{
				ID:    ComputeID,
				Title: "Compute Resource",
				Attributes: []occi.AttributeDefinition{
					{Name: "occi.compute.cores", Type: occi.TypeInt, Mutable: true},
					{Name: "occi.compute.hostname", Type: occi.TypeString, Mutable: true},
					{Name: "occi.compute.state", Type: occi.TypeString, Default: "inactive"},
				},
			},
			Parent: &ResourceID,
			Actions: []occi.Action{
				{Category: occi.Category{ID: StartID, Title: "Start Compute"}},
				{Category: occi.Category{ID: StopID, Title: "Stop Compute"}},
			},
			Location: "compute/",
		},
		{
			Category: occi.Category{
				ID:    NetworkID,
				Title: "Network Resource",
				Attributes: []occi.AttributeDefinition{
					{Name: "occi.network.label", Type: occi.TypeString, Mutable: true},
				},
			},
			Parent: &ResourceID,
			Actions: []occi.Action{
				{Category: occi.Category{ID: UpID, Title: "Bring Network Up"}},
			},
			Location: "network/",
		},
		{
			Category: occi.Category{
				ID:    NicID,
				Title: "Network Interface",
				Attributes: []occi.AttributeDefinition{
					{Name: "occi.networkinterface.interface", Type: occi.TypeString, Mutable: true},
				},
			},
			Parent:   &LinkID,
			Location: "link/networkinterface/",
			IsLink:   true,
		},
	} {
		if err := reg.RegisterKind(kind); err != nil {
			panic(err)
		}
	}
	err := reg.RegisterMixin(occi.Mixin{
		Category: occi.Category{
			ID:    SSHKeyID,
			Title: "SSH Key",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.credentials.ssh.publickey", Type: occi.TypeString, Mutable: true},
			},
		},
		AppliesTo: &ComputeID,
		Location:  "ssh_key/",
	})
	if err != nil {
		panic(err)
	}
	return reg
}
