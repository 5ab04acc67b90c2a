// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package infrastructure carries the standard IaaS vocabulary:
// compute, network, and storage resources, the links binding them,
// and their lifecycle actions.  Register installs the whole set,
// including the core entity, resource, and link kinds everything
// descends from.
package infrastructure

import "github.com/cloudfoam/go-occi/occi"

// Schemes of the vocabulary.
const (
	CoreScheme          = "http://schemas.ogf.org/occi/core#"
	Scheme              = "http://schemas.ogf.org/occi/infrastructure#"
	NetworkScheme       = "http://schemas.ogf.org/occi/infrastructure/network#"
	ComputeActionScheme = "http://schemas.ogf.org/occi/infrastructure/compute/action#"
	NetworkActionScheme = "http://schemas.ogf.org/occi/infrastructure/network/action#"
	StorageActionScheme = "http://schemas.ogf.org/occi/infrastructure/storage/action#"
)

// Identities of the core kinds.
var (
	EntityID   = occi.CategoryID{Scheme: CoreScheme, Term: "entity"}
	ResourceID = occi.CategoryID{Scheme: CoreScheme, Term: "resource"}
	LinkID     = occi.CategoryID{Scheme: CoreScheme, Term: "link"}
)

// Identities of the infrastructure kinds and mixins.
var (
	ComputeID            = occi.CategoryID{Scheme: Scheme, Term: "compute"}
	NetworkID            = occi.CategoryID{Scheme: Scheme, Term: "network"}
	StorageID            = occi.CategoryID{Scheme: Scheme, Term: "storage"}
	NetworkInterfaceID   = occi.CategoryID{Scheme: Scheme, Term: "networkinterface"}
	StorageLinkID        = occi.CategoryID{Scheme: Scheme, Term: "storagelink"}
	IPNetworkID          = occi.CategoryID{Scheme: NetworkScheme, Term: "ipnetwork"}
	IPNetworkInterfaceID = occi.CategoryID{Scheme: Scheme, Term: "ipnetworkinterface"}
)

// Register installs the core and infrastructure vocabulary into a
// registry.
func Register(reg *occi.Registry) error {
	for _, kind := range kinds {
		if err := reg.RegisterKind(kind); err != nil {
			return err
		}
	}
	for _, mixin := range mixins {
		if err := reg.RegisterMixin(mixin); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry builds a registry carrying the full vocabulary, or
// panics.  Registration of a static vocabulary only fails on a
// defective vocabulary.
func NewRegistry() *occi.Registry {
	reg := occi.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

func computeAction(term, title string) occi.Action {
	return occi.Action{Category: occi.Category{
		ID:    occi.CategoryID{Scheme: ComputeActionScheme, Term: term},
		Title: title,
		Attributes: []occi.AttributeDefinition{
			{Name: "method", Type: occi.TypeString, Mutable: true},
		},
	}}
}

var kinds = []occi.Kind{
	{
		Category: occi.Category{
			ID:    EntityID,
			Title: "Entity type",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.core.title", Type: occi.TypeString, Mutable: true},
			},
		},
		// Abstract; no location means no collection.
	},
	{
		Category: occi.Category{
			ID:    ResourceID,
			Title: "Resource type",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.core.summary", Type: occi.TypeString, Mutable: true},
			},
		},
		Parent:   &EntityID,
		Location: "resource/",
	},
	{
		Category: occi.Category{
			ID:    LinkID,
			Title: "Link type",
		},
		Parent:   &EntityID,
		Location: "link/",
		IsLink:   true,
	},
	{
		Category: occi.Category{
			ID:    ComputeID,
			Title: "Compute Resource",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.compute.architecture", Type: occi.TypeString},
				{Name: "occi.compute.cores", Type: occi.TypeInt, Mutable: true},
				{Name: "occi.compute.hostname", Type: occi.TypeString, Mutable: true},
				{Name: "occi.compute.speed", Type: occi.TypeFloat, Mutable: true},
				{Name: "occi.compute.memory", Type: occi.TypeFloat, Mutable: true},
				{Name: "occi.compute.state", Type: occi.TypeString, Default: "inactive"},
			},
		},
		Parent: &ResourceID,
		Actions: []occi.Action{
			computeAction("start", "Start Compute Resource"),
			computeAction("stop", "Stop Compute Resource"),
			computeAction("restart", "Restart Compute Resource"),
			computeAction("suspend", "Suspend Compute Resource"),
		},
		Location: "compute/",
	},
	{
		Category: occi.Category{
			ID:    NetworkID,
			Title: "Network Resource",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.network.vlan", Type: occi.TypeInt, Mutable: true},
				{Name: "occi.network.label", Type: occi.TypeString, Mutable: true},
				{Name: "occi.network.state", Type: occi.TypeString, Default: "inactive"},
			},
		},
		Parent: &ResourceID,
		Actions: []occi.Action{
			{Category: occi.Category{
				ID:    occi.CategoryID{Scheme: NetworkActionScheme, Term: "up"},
				Title: "Bring up Network Resource",
			}},
			{Category: occi.Category{
				ID:    occi.CategoryID{Scheme: NetworkActionScheme, Term: "down"},
				Title: "Take down Network Resource",
			}},
		},
		Location: "network/",
	},
	{
		Category: occi.Category{
			ID:    StorageID,
			Title: "Storage Resource",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.storage.size", Type: occi.TypeFloat, Required: true, Mutable: true},
				{Name: "occi.storage.state", Type: occi.TypeString, Default: "offline"},
			},
		},
		Parent: &ResourceID,
		Actions: []occi.Action{
			{Category: occi.Category{
				ID:    occi.CategoryID{Scheme: StorageActionScheme, Term: "online"},
				Title: "Bring Storage Resource online",
			}},
			{Category: occi.Category{
				ID:    occi.CategoryID{Scheme: StorageActionScheme, Term: "offline"},
				Title: "Bring Storage Resource offline",
			}},
			{Category: occi.Category{
				ID:    occi.CategoryID{Scheme: StorageActionScheme, Term: "backup"},
				Title: "Backup Storage Resource",
			}},
			{Category: occi.Category{
				ID:    occi.CategoryID{Scheme: StorageActionScheme, Term: "snapshot"},
				Title: "Take snapshot of Storage Resource",
			}},
			{Category: occi.Category{
				ID:    occi.CategoryID{Scheme: StorageActionScheme, Term: "resize"},
				Title: "Resize Storage Resource",
				Attributes: []occi.AttributeDefinition{
					{Name: "size", Type: occi.TypeFloat, Required: true, Mutable: true},
				},
			}},
		},
		Location: "storage/",
	},
	{
		Category: occi.Category{
			ID:    NetworkInterfaceID,
			Title: "NetworkInterface Link",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.networkinterface.interface", Type: occi.TypeString, Mutable: true},
				{Name: "occi.networkinterface.mac", Type: occi.TypeString, Mutable: true},
				{Name: "occi.networkinterface.state", Type: occi.TypeString},
			},
		},
		Parent:   &LinkID,
		Location: "link/networkinterface/",
		IsLink:   true,
	},
	{
		Category: occi.Category{
			ID:    StorageLinkID,
			Title: "Storage Link",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.storagelink.deviceid", Type: occi.TypeString, Required: true, Mutable: true},
				{Name: "occi.storagelink.mountpoint", Type: occi.TypeString, Mutable: true},
				{Name: "occi.storagelink.state", Type: occi.TypeString},
			},
		},
		Parent:   &LinkID,
		Location: "link/storage/",
		IsLink:   true,
	},
}

var mixins = []occi.Mixin{
	{
		Category: occi.Category{
			ID:    IPNetworkID,
			Title: "IPNetworking Mixin",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.network.address", Type: occi.TypeString, Mutable: true},
				{Name: "occi.network.gateway", Type: occi.TypeString, Mutable: true},
				{Name: "occi.network.allocation", Type: occi.TypeString, Mutable: true},
			},
		},
		AppliesTo: &NetworkID,
		Location:  "ipnetwork/",
	},
	{
		Category: occi.Category{
			ID:    IPNetworkInterfaceID,
			Title: "IPNetworkInterface Link",
			Attributes: []occi.AttributeDefinition{
				{Name: "occi.networkinterface.ip", Type: occi.TypeString, Mutable: true},
				{Name: "occi.networkinterface.gateway", Type: occi.TypeString, Mutable: true},
				{Name: "occi.networkinterface.allocation", Type: occi.TypeString, Required: true, Mutable: true},
			},
		},
		AppliesTo: &NetworkInterfaceID,
		Location:  "link/ipnetworkinterface/",
	},
}
