// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package slurm

import (
	"github.com/juju/errors"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/interfaces"
)

// Events derived from the OCI runtime integration on slurmctld.
const (
	OCIRuntimeReady        = "oci-runtime-ready"
	OCIRuntimeDisconnected = "oci-runtime-disconnected"
)

const waitingForOCIRuntime = "Waiting for OCI runtime data"

// OCIConfig holds oci.conf options keyed by option name.
type OCIConfig map[string]interface{}

// OCIRuntimeData is the data published by the OCI runtime application
// leader.
type OCIRuntimeData struct {
	OCIConfig OCIConfig `json:"ociconfig"`
}

var ociRuntimeSchema = interfaces.ReadinessSchema{
	"ociconfig": nil,
}

// OCIRuntimeProvider runs on the leader of an OCI runtime application to
// publish the oci.conf options slurmctld must apply.
type OCIRuntimeProvider struct {
	*SlurmctldRequirer
}

// NewOCIRuntimeProvider returns the runtime side of the OCI runtime
// interface.
func NewOCIRuntimeProvider(fw *charm.Framework, endpoint string) *OCIRuntimeProvider {
	return &OCIRuntimeProvider{
		SlurmctldRequirer: newSlurmctldRequirer(fw, endpoint, interfaces.ReadinessSchema{}, leaderOnly),
	}
}

// SetOCIRuntimeData publishes data on the integrations with the given ids,
// or on every integration when no id is given. It does nothing on a unit
// that is not the leader.
func (p *OCIRuntimeProvider) SetOCIRuntimeData(data OCIRuntimeData, ids ...int) error {
	return errors.Trace(p.SaveIntegrationData(data, ids...))
}

// OCIRuntimeRequirer runs on the slurmctld leader to read the oci.conf
// options published by an OCI runtime.
type OCIRuntimeRequirer struct {
	*SlurmctldProvider
}

// NewOCIRuntimeRequirer returns the slurmctld side of the OCI runtime
// interface.
func NewOCIRuntimeRequirer(fw *charm.Framework, endpoint string) *OCIRuntimeRequirer {
	return &OCIRuntimeRequirer{
		SlurmctldProvider: newSlurmctldProvider(fw, endpoint, ociRuntimeSchema, lifecycle{
			ready:        OCIRuntimeReady,
			disconnected: OCIRuntimeDisconnected,
			waiting:      waitingForOCIRuntime,
		}),
	}
}

// GetOCIRuntimeData reads the runtime data published on rel, or on the
// integration with the given id, or on the only integration.
func (r *OCIRuntimeRequirer) GetOCIRuntimeData(rel charm.Relation, ids ...int) (OCIRuntimeData, error) {
	var data OCIRuntimeData
	rel, err := r.Resolve(rel, ids...)
	if err != nil {
		return data, errors.Trace(err)
	}
	if err := r.LoadIntegrationData(rel, &data); err != nil {
		return data, errors.Trace(err)
	}
	return data, nil
}

// OCIRuntimeNotReady holds while the OCI runtime has not published its
// configuration.
func OCIRuntimeNotReady(r *OCIRuntimeRequirer) charm.Condition {
	return r.NotReady(waitingForOCIRuntime)
}
