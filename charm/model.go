// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"github.com/juju/errors"

	"github.com/charmed-hpc/hpc-libs/core/status"
)

// ErrRelationDataUnavailable is returned by a Relation when its databags
// cannot currently be read, for example while the relation is being torn
// down. Callers treat the relation as inactive.
const ErrRelationDataUnavailable = errors.ConstError("relation data unavailable")

// Databag is the application scoped key/value store of one side of a
// relation. Values are JSON encoded strings.
type Databag map[string]string

// Copy returns a shallow copy of the databag.
func (d Databag) Copy() Databag {
	if d == nil {
		return nil
	}
	out := make(Databag, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Relation is one integration between the local application and a remote
// application, as seen from the local unit.
type Relation interface {
	// Id returns the integer id of the relation.
	Id() int

	// Endpoint returns the name of the local endpoint of the relation.
	Endpoint() string

	// RemoteApp returns the name of the remote application.
	RemoteApp() string

	// Units returns the names of the remote units in the relation.
	Units() []string

	// LocalAppData returns the local application databag.
	LocalAppData() (Databag, error)

	// RemoteAppData returns the remote application databag.
	RemoteAppData() (Databag, error)

	// UpdateLocalAppData merges settings into the local application
	// databag. An empty value deletes the key. Only the leader may call
	// it; other units get an error satisfying errors.Forbidden.
	UpdateLocalAppData(settings map[string]string) error
}

// Unit is the local unit.
type Unit interface {
	status.StatusGetter
	status.StatusSetter

	// Name returns the unit name, eg. "slurmctld/0".
	Name() string

	// IsLeader returns whether the unit is the application leader.
	IsLeader() (bool, error)
}

// Secret is a secret owned by the local application.
type Secret interface {
	// ID returns the unique id of the secret.
	ID() string

	// Label returns the owner label of the secret.
	Label() string

	// Content returns the latest revision of the secret content.
	Content() (map[string]string, error)

	// SetContent creates a new revision with the given content.
	SetContent(content map[string]string) error

	// Grant gives the remote application of the relation read access.
	Grant(rel Relation) error

	// RemoveAllRevisions removes the secret and all of its revisions.
	RemoveAllRevisions() error
}

// SecretStore gives access to the secrets of the local application.
type SecretStore interface {
	// AddSecret creates a new application owned secret.
	AddSecret(label string, content map[string]string) (Secret, error)

	// SecretByLabel returns the secret with the given owner label or an
	// error satisfying errors.NotFound.
	SecretByLabel(label string) (Secret, error)

	// SecretByID returns the secret with the given id or an error
	// satisfying errors.NotFound.
	SecretByID(id string) (Secret, error)
}

// NetworkInfo holds the addresses bound to an endpoint.
type NetworkInfo struct {
	BindAddresses    []string
	IngressAddresses []string
	EgressSubnets    []string
}

// Model is the view a charm has of the host runtime.
type Model interface {
	// Name returns the model name.
	Name() string

	// AppName returns the local application name.
	AppName() string

	// Unit returns the local unit.
	Unit() Unit

	// Relations returns the relations established on the endpoint.
	Relations(endpoint string) ([]Relation, error)

	// Secrets returns the secret store of the local application.
	Secrets() SecretStore

	// NetworkInfo returns the network information of an endpoint, or an
	// error satisfying errors.NotFound when it has no binding.
	NetworkInfo(endpoint string) (NetworkInfo, error)

	// Config returns the charm config.
	Config() (map[string]interface{}, error)
}

// RelationByID returns the relation with the given id on the endpoint, or
// an error satisfying errors.NotFound.
func RelationByID(model Model, endpoint string, id int) (Relation, error) {
	rels, err := model.Relations(endpoint)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, rel := range rels {
		if rel.Id() == id {
			return rel, nil
		}
	}
	return nil, errors.NotFoundf("relation %d on endpoint %q", id, endpoint)
}
