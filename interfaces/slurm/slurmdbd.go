// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package slurm

import (
	"github.com/juju/errors"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/interfaces"
)

// Events derived from the slurmdbd integration on slurmctld.
const (
	SlurmdbdConnected    = "slurmdbd-connected"
	SlurmdbdReady        = "slurmdbd-ready"
	SlurmdbdDisconnected = "slurmdbd-disconnected"
)

const waitingForDatabase = "Waiting for database data"

// DatabaseData is the data published by the slurmdbd application leader.
type DatabaseData struct {
	// Hostname is the address slurmctld contacts slurmdbd on.
	Hostname string `json:"hostname"`
}

var slurmdbdSchema = interfaces.ReadinessSchema{
	"auth_key_id": interfaces.NotEmptyString,
	"jwt_key_id":  interfaces.NotEmptyString,
}

var databaseSchema = interfaces.ReadinessSchema{
	"hostname": nil,
}

// SlurmdbdProvider runs on the slurmdbd leader to read the controller
// data published by slurmctld and publish the database address. Other
// slurmdbd units ignore the integration.
type SlurmdbdProvider struct {
	*SlurmctldRequirer
}

// NewSlurmdbdProvider returns the slurmdbd side of the slurmdbd interface.
func NewSlurmdbdProvider(fw *charm.Framework, endpoint string) *SlurmdbdProvider {
	return &SlurmdbdProvider{
		SlurmctldRequirer: newSlurmctldRequirer(fw, endpoint, slurmdbdSchema, leaderOnly),
	}
}

// SetDatabaseData publishes data on the integrations with the given ids,
// or on every integration when no id is given. It does nothing on a unit
// that is not the leader.
func (p *SlurmdbdProvider) SetDatabaseData(data DatabaseData, ids ...int) error {
	return errors.Trace(p.SaveIntegrationData(data, ids...))
}

// IngressDatabaseData returns database data naming the ingress address of
// the local unit on the endpoint.
func (p *SlurmdbdProvider) IngressDatabaseData() (DatabaseData, error) {
	addr, err := charm.IngressAddress(p.Model(), p.Endpoint())
	if err != nil {
		return DatabaseData{}, errors.Trace(err)
	}
	return DatabaseData{Hostname: addr}, nil
}

// SlurmdbdRequirer runs on the slurmctld leader to read the database
// address published by slurmdbd and provide it controller data.
type SlurmdbdRequirer struct {
	*SlurmctldProvider
}

// NewSlurmdbdRequirer returns the slurmctld side of the slurmdbd
// interface.
func NewSlurmdbdRequirer(fw *charm.Framework, endpoint string) *SlurmdbdRequirer {
	return &SlurmdbdRequirer{
		SlurmctldProvider: newSlurmctldProvider(fw, endpoint, databaseSchema, lifecycle{
			connected:    SlurmdbdConnected,
			ready:        SlurmdbdReady,
			disconnected: SlurmdbdDisconnected,
			waiting:      waitingForDatabase,
		}),
	}
}

// GetDatabaseData reads the database data published on rel, or on the
// integration with the given id, or on the only integration.
func (r *SlurmdbdRequirer) GetDatabaseData(rel charm.Relation, ids ...int) (DatabaseData, error) {
	var data DatabaseData
	rel, err := r.Resolve(rel, ids...)
	if err != nil {
		return data, errors.Trace(err)
	}
	if err := r.LoadIntegrationData(rel, &data); err != nil {
		return data, errors.Trace(err)
	}
	return data, nil
}

// DatabaseNotReady holds while slurmdbd has not published its address.
func DatabaseNotReady(r *SlurmdbdRequirer) charm.Condition {
	return r.NotReady(waitingForDatabase)
}
