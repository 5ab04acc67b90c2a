// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occitest

import (
	"strings"

	"github.com/cloudfoam/go-occi/occi"
)

// TestCreateRetrieve stores a resource and reads it back.
func (s *Suite) TestCreateRetrieve() {
	res := s.Compute("create-retrieve")
	defer s.Destroy(res)

	s.True(strings.HasPrefix(res.ID(), "compute/"),
		"assigned ID %q not under the kind location", res.ID())

	back := s.RetrieveResource(res.ID())
	s.Equal(res.ID(), back.ID())
	s.Equal(ComputeID, back.Kind().ID)
	hostname, present := back.Attribute("occi.compute.hostname")
	s.True(present)
	s.Equal("create-retrieve", hostname)
	state, present := back.Attribute("occi.compute.state")
	s.True(present)
	s.Equal("inactive", state)
}

// TestCreateExplicitID stores a resource under a caller-chosen ID and
// refuses a second create under the same ID.
func (s *Suite) TestCreateExplicitID() {
	res, err := occi.NewResource(s.Registry, ComputeID)
	s.Require().NoError(err)
	res.SetID("compute/explicit")
	s.Require().NoError(s.Backend.Create(res))
	defer s.Destroy(res)

	again, err := occi.NewResource(s.Registry, ComputeID)
	s.Require().NoError(err)
	again.SetID("compute/explicit")
	err = s.Backend.Create(again)
	if s.Error(err) {
		s.IsType(occi.ErrConflict{}, err)
	}
}

// TestRetrieveNotFound retrieves an ID that does not exist.
func (s *Suite) TestRetrieveNotFound() {
	_, err := s.Backend.Retrieve("compute/no-such-entity")
	if s.Error(err) {
		s.IsType(occi.ErrNotFound{}, err)
	}
}

// TestUpdate replaces a stored resource's attributes.
func (s *Suite) TestUpdate() {
	res := s.Compute("update-before")
	defer s.Destroy(res)

	s.Require().NoError(res.SetAttribute("occi.compute.hostname", "update-after"))
	s.Require().NoError(res.SetAttribute("occi.compute.cores", int64(4)))
	s.Require().NoError(s.Backend.Update(res))

	back := s.RetrieveResource(res.ID())
	hostname, _ := back.Attribute("occi.compute.hostname")
	s.Equal("update-after", hostname)
	cores, _ := back.Attribute("occi.compute.cores")
	s.Equal(int64(4), cores)
}

// TestUpdateNotFound updates an entity that was never stored.
func (s *Suite) TestUpdateNotFound() {
	res, err := occi.NewResource(s.Registry, ComputeID)
	s.Require().NoError(err)
	res.SetID("compute/never-stored")
	err = s.Backend.Update(res)
	if s.Error(err) {
		s.IsType(occi.ErrNotFound{}, err)
	}
}

// TestUpdateMixins persists a mixin association through an update.
func (s *Suite) TestUpdateMixins() {
	res := s.Compute("update-mixins")
	defer s.Destroy(res)

	s.Require().NoError(res.AssociateMixin(SSHKeyID))
	s.Require().NoError(res.SetAttribute("occi.credentials.ssh.publickey", "ssh-rsa AAAA"))
	s.Require().NoError(s.Backend.Update(res))

	back := s.RetrieveResource(res.ID())
	s.Equal([]occi.CategoryID{SSHKeyID}, back.MixinIDs())
	key, _ := back.Attribute("occi.credentials.ssh.publickey")
	s.Equal("ssh-rsa AAAA", key)
}

// TestDelete removes a stored resource; both a later retrieve and a
// second delete report absence.
func (s *Suite) TestDelete() {
	res := s.Compute("delete-me")
	s.Require().NoError(s.Backend.Delete(res.ID()))

	_, err := s.Backend.Retrieve(res.ID())
	if s.Error(err) {
		s.IsType(occi.ErrNotFound{}, err)
	}
	err = s.Backend.Delete(res.ID())
	if s.Error(err) {
		s.IsType(occi.ErrNotFound{}, err)
	}
}

// TestLinkLifecycle stores a link, sees it on its source resource,
// and watches it go away when the source does.
func (s *Suite) TestLinkLifecycle() {
	src := s.Compute("link-source")
	net := s.Network("link-target")
	defer s.Destroy(src, net)
	link := s.Nic(src, net.ID())

	s.True(strings.HasPrefix(link.ID(), "link/networkinterface/"),
		"assigned ID %q not under the kind location", link.ID())

	back := s.RetrieveResource(src.ID())
	links := back.Links()
	if s.Len(links, 1) {
		s.Equal(link.ID(), links[0].ID())
		s.Equal(src.ID(), links[0].Source())
		s.Equal(net.ID(), links[0].Target())
	}

	// Deleting the source cascades to its links but not to the
	// target resource.
	s.Require().NoError(s.Backend.Delete(src.ID()))
	_, err := s.Backend.Retrieve(link.ID())
	if s.Error(err) {
		s.IsType(occi.ErrNotFound{}, err)
	}
	_, err = s.Backend.Retrieve(net.ID())
	s.NoError(err)
}

// TestDeleteLink removes a link by itself and detaches it from the
// source resource.
func (s *Suite) TestDeleteLink() {
	src := s.Compute("delete-link-source")
	net := s.Network("delete-link-target")
	defer s.Destroy(src, net)
	link := s.Nic(src, net.ID())

	s.Require().NoError(s.Backend.Delete(link.ID()))
	back := s.RetrieveResource(src.ID())
	s.Empty(back.Links())
}

// TestForeignLinkTarget stores a link whose target is not an entity
// in this service.
func (s *Suite) TestForeignLinkTarget() {
	src := s.Compute("foreign-link-source")
	defer s.Destroy(src)
	link, err := occi.NewLink(s.Registry, NicID, src.ID(), "http://example.com/network/ext")
	s.Require().NoError(err)
	s.Require().NoError(s.Backend.Create(link))
	defer s.Destroy(link)

	back := s.RetrieveResource(src.ID())
	links := back.Links()
	if s.Len(links, 1) {
		s.Equal("http://example.com/network/ext", links[0].Target())
	}
}

// TestInvokeAction invokes an action the entity's kind declares.
func (s *Suite) TestInvokeAction() {
	res := s.Compute("invoke-action")
	defer s.Destroy(res)

	action, err := s.Registry.Action(StartID)
	s.Require().NoError(err)
	ent, err := s.Backend.InvokeAction(res.ID(), action, nil)
	if s.NoError(err) {
		s.Equal(res.ID(), ent.ID())
	}
}

// TestInvokeActionNotSupported invokes an action none of the
// entity's categories declare.
func (s *Suite) TestInvokeActionNotSupported() {
	net := s.Network("invoke-unsupported")
	defer s.Destroy(net)

	action, err := s.Registry.Action(StartID)
	s.Require().NoError(err)
	_, err = s.Backend.InvokeAction(net.ID(), action, nil)
	if s.Error(err) {
		s.IsType(occi.ErrActionNotSupported{}, err)
	}
}

// TestInvokeActionNotFound invokes an action on an absent entity.
func (s *Suite) TestInvokeActionNotFound() {
	action, err := s.Registry.Action(StartID)
	s.Require().NoError(err)
	_, err = s.Backend.InvokeAction("compute/no-such-entity", action, nil)
	if s.Error(err) {
		s.IsType(occi.ErrNotFound{}, err)
	}
}
