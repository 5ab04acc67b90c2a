// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occitest

import (
	"sort"

	"github.com/cloudfoam/go-occi/occi"
)

// TestListByKind filters the store down to one kind's instances.
func (s *Suite) TestListByKind() {
	c1 := s.Compute("list-kind-1")
	c2 := s.Compute("list-kind-2")
	net := s.Network("list-kind-net")
	defer s.Destroy(c1, c2, net)

	ents, err := s.Backend.List(occi.Filter{
		Categories: []occi.CategoryID{ComputeID},
	})
	s.Require().NoError(err)
	ids := IDs(ents)
	s.Contains(ids, c1.ID())
	s.Contains(ids, c2.ID())
	s.NotContains(ids, net.ID())
	s.True(sort.StringsAreSorted(ids), "list not in ID order: %v", ids)
}

// TestListByAncestorKind lists a parent kind's collection and sees
// descendant kind instances.
func (s *Suite) TestListByAncestorKind() {
	c := s.Compute("list-ancestor")
	net := s.Network("list-ancestor-net")
	defer s.Destroy(c, net)

	ents, err := s.Backend.List(occi.Filter{
		Categories: []occi.CategoryID{ResourceID},
	})
	s.Require().NoError(err)
	ids := IDs(ents)
	s.Contains(ids, c.ID())
	s.Contains(ids, net.ID())
}

// TestListByMixin filters on mixin association.
func (s *Suite) TestListByMixin() {
	with := s.Compute("list-mixin-with")
	without := s.Compute("list-mixin-without")
	defer s.Destroy(with, without)
	s.Require().NoError(with.AssociateMixin(SSHKeyID))
	s.Require().NoError(s.Backend.Update(with))

	ents, err := s.Backend.List(occi.Filter{
		Categories: []occi.CategoryID{SSHKeyID},
	})
	s.Require().NoError(err)
	ids := IDs(ents)
	s.Contains(ids, with.ID())
	s.NotContains(ids, without.ID())
}

// TestListByAttribute filters on an attribute value.
func (s *Suite) TestListByAttribute() {
	c1 := s.Compute("list-attr-1")
	c2 := s.Compute("list-attr-2")
	defer s.Destroy(c1, c2)

	ents, err := s.Backend.List(occi.Filter{
		Categories: []occi.CategoryID{ComputeID},
		Attributes: map[string]interface{}{
			"occi.compute.hostname": "list-attr-1",
		},
	})
	s.Require().NoError(err)
	ids := IDs(ents)
	s.Contains(ids, c1.ID())
	s.NotContains(ids, c2.ID())
}

// TestListByLocationPrefix filters on an ID prefix.
func (s *Suite) TestListByLocationPrefix() {
	c := s.Compute("list-prefix")
	net := s.Network("list-prefix-net")
	defer s.Destroy(c, net)

	ents, err := s.Backend.List(occi.Filter{LocationPrefix: "network/"})
	s.Require().NoError(err)
	ids := IDs(ents)
	s.Contains(ids, net.ID())
	s.NotContains(ids, c.ID())
}

// TestListEmpty filters down to nothing.
func (s *Suite) TestListEmpty() {
	ents, err := s.Backend.List(occi.Filter{
		Categories: []occi.CategoryID{ComputeID},
		Attributes: map[string]interface{}{
			"occi.compute.hostname": "no-such-hostname",
		},
	})
	s.Require().NoError(err)
	s.Empty(ents)
}
