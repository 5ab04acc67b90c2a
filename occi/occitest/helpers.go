// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occitest

import (
	"github.com/cloudfoam/go-occi/occi"
)

// Compute creates a compute resource with a hostname and stores it,
// letting the backend pick an ID.
func (s *Suite) Compute(hostname string) *occi.Resource {
	res, err := occi.NewResource(s.Registry, ComputeID)
	s.Require().NoError(err)
	s.Require().NoError(res.SetAttribute("occi.compute.hostname", hostname))
	s.Require().NoError(res.ApplyDefaults())
	s.Require().NoError(s.Backend.Create(res))
	s.Require().NotEmpty(res.ID())
	return res
}

// Network creates a network resource with a label and stores it.
func (s *Suite) Network(label string) *occi.Resource {
	res, err := occi.NewResource(s.Registry, NetworkID)
	s.Require().NoError(err)
	s.Require().NoError(res.SetAttribute("occi.network.label", label))
	s.Require().NoError(s.Backend.Create(res))
	return res
}

// Nic creates a network interface link between two stored entities.
func (s *Suite) Nic(source *occi.Resource, target string) *occi.Link {
	link, err := occi.NewLink(s.Registry, NicID, source.ID(), target)
	s.Require().NoError(err)
	s.Require().NoError(s.Backend.Create(link))
	return link
}

// RetrieveResource retrieves an ID and requires it to be a resource.
func (s *Suite) RetrieveResource(id string) *occi.Resource {
	ent, err := s.Backend.Retrieve(id)
	s.Require().NoError(err)
	res, isResource := ent.(*occi.Resource)
	s.Require().True(isResource, "entity %q is not a resource", id)
	return res
}

// Destroy deletes the entities, most recently created first,
// ignoring entities a cascade already removed.
func (s *Suite) Destroy(ents ...occi.Entity) {
	for i := len(ents) - 1; i >= 0; i-- {
		err := s.Backend.Delete(ents[i].ID())
		if err != nil {
			s.Require().IsType(occi.ErrNotFound{}, err)
		}
	}
}

// IDs projects a list of entities onto their IDs.
func IDs(ents []occi.Entity) []string {
	ids := make([]string, len(ents))
	for i, ent := range ents {
		ids[i] = ent.ID()
	}
	return ids
}
