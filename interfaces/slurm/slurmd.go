// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package slurm

import (
	"github.com/juju/errors"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/interfaces"
)

// Events derived from the slurmd integration on slurmctld.
const (
	SlurmdConnected    = "slurmd-connected"
	SlurmdReady        = "slurmd-ready"
	SlurmdDisconnected = "slurmd-disconnected"
)

const waitingForPartition = "Waiting for partition data"

// Partition holds the options of a Slurm partition keyed by option name.
type Partition map[string]interface{}

// Name returns the partition name.
func (p Partition) Name() string {
	name, _ := p["partitionname"].(string)
	return name
}

// ComputeData is the data published by the slurmd application leader.
type ComputeData struct {
	Partition Partition `json:"partition"`
}

var slurmdSchema = interfaces.ReadinessSchema{
	"auth_key_id": interfaces.NotEmptyString,
	"controllers": interfaces.NotEmptyList,
	"nhc_args":    nil,
}

var partitionSchema = interfaces.ReadinessSchema{
	"partition": nil,
}

// SlurmdProvider runs on slurmd units to read the controller data
// published by slurmctld. The slurmd leader publishes the partition the
// units form.
type SlurmdProvider struct {
	*SlurmctldRequirer
}

// NewSlurmdProvider returns the slurmd side of the slurmd interface. Only
// the leader reacts to the integration being created.
func NewSlurmdProvider(fw *charm.Framework, endpoint string) *SlurmdProvider {
	return &SlurmdProvider{
		SlurmctldRequirer: newSlurmctldRequirer(fw, endpoint, slurmdSchema, leaderCreated),
	}
}

// SetComputeData publishes data on the integrations with the given ids, or
// on every integration when no id is given. It does nothing on a unit
// that is not the leader.
func (p *SlurmdProvider) SetComputeData(data ComputeData, ids ...int) error {
	return errors.Trace(p.SaveIntegrationData(data, ids...))
}

// SlurmdRequirer runs on the slurmctld leader to enlist slurmd partitions
// and provide them controller data.
type SlurmdRequirer struct {
	*SlurmctldProvider
}

// NewSlurmdRequirer returns the slurmctld side of the slurmd interface.
func NewSlurmdRequirer(fw *charm.Framework, endpoint string) *SlurmdRequirer {
	return &SlurmdRequirer{
		SlurmctldProvider: newSlurmctldProvider(fw, endpoint, partitionSchema, lifecycle{
			connected:    SlurmdConnected,
			ready:        SlurmdReady,
			disconnected: SlurmdDisconnected,
			waiting:      waitingForPartition,
		}),
	}
}

// GetComputeData reads the compute data published on rel, or on the
// integration with the given id, or on the only integration.
func (r *SlurmdRequirer) GetComputeData(rel charm.Relation, ids ...int) (ComputeData, error) {
	var data ComputeData
	rel, err := r.Resolve(rel, ids...)
	if err != nil {
		return data, errors.Trace(err)
	}
	if err := r.LoadIntegrationData(rel, &data); err != nil {
		return data, errors.Trace(err)
	}
	return data, nil
}

// PartitionNotReady holds while a slurmd application has not published
// its partition.
func PartitionNotReady(r *SlurmdRequirer) charm.Condition {
	return r.NotReady(waitingForPartition)
}
