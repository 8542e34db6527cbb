// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"

	"github.com/juju/errors"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/core/secrets"
	"github.com/charmed-hpc/hpc-libs/hook"
	"github.com/charmed-hpc/hpc-libs/interfaces"
	"github.com/charmed-hpc/hpc-libs/interfaces/slurm"
)

// role is one side of an integration the replay command can run.
type role struct {
	// endpoint is the endpoint used when the scenario names none.
	endpoint string

	// publishes names the data the role publishes, if any.
	publishes string

	// events are the events derived by the role.
	events []string

	setup func(fw *charm.Framework, endpoint string, r *replay) error
}

var controllerEvents = []string{
	slurm.SlurmctldConnected,
	slurm.SlurmctldReady,
	slurm.SlurmctldDisconnected,
}

var roles = map[string]role{
	"slurmctld-provider": {
		endpoint:  "slurmctld",
		publishes: "controller data",
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			p := slurm.NewSlurmctldProvider(fw, endpoint, interfaces.ReadinessSchema{})
			return errors.Trace(r.publishController(p))
		},
	},
	"slurmctld-requirer": {
		endpoint: "slurmctld",
		events:   controllerEvents,
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			r.receiveController(slurm.NewSlurmctldRequirer(fw, endpoint))
			return nil
		},
	},
	"sackd-provider": {
		endpoint: "slurmctld",
		events:   controllerEvents,
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			r.receiveController(slurm.NewSackdProvider(fw, endpoint).SlurmctldRequirer)
			return nil
		},
	},
	"sackd-requirer": {
		endpoint:  "sackd",
		publishes: "controller data",
		events:    []string{slurm.SackdConnected},
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			p := slurm.NewSackdRequirer(fw, endpoint)
			return errors.Trace(r.publishController(p.SlurmctldProvider))
		},
	},
	"slurmd-provider": {
		endpoint:  "slurmctld",
		publishes: "compute data",
		events:    controllerEvents,
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			p := slurm.NewSlurmdProvider(fw, endpoint)
			r.receiveController(p.SlurmctldRequirer)
			var data slurm.ComputeData
			return errors.Trace(r.publish(p.Interface, &data, func(id int) error {
				return p.SetComputeData(data, id)
			}))
		},
	},
	"slurmd-requirer": {
		endpoint:  "slurmd",
		publishes: "controller data",
		events:    []string{slurm.SlurmdConnected, slurm.SlurmdReady, slurm.SlurmdDisconnected},
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			req := slurm.NewSlurmdRequirer(fw, endpoint)
			r.receive(req.Interface, slurm.SlurmdReady, func(rel charm.Relation) (interface{}, error) {
				return req.GetComputeData(rel)
			})
			return errors.Trace(r.publishController(req.SlurmctldProvider))
		},
	},
	"slurmdbd-provider": {
		endpoint:  "slurmctld",
		publishes: "database data",
		events:    controllerEvents,
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			p := slurm.NewSlurmdbdProvider(fw, endpoint)
			r.receiveController(p.SlurmctldRequirer)
			var data slurm.DatabaseData
			return errors.Trace(r.publish(p.Interface, &data, func(id int) error {
				if data.Hostname == "" {
					ingress, err := p.IngressDatabaseData()
					if err != nil {
						return errors.Trace(err)
					}
					data = ingress
				}
				return p.SetDatabaseData(data, id)
			}))
		},
	},
	"slurmdbd-requirer": {
		endpoint:  "slurmdbd",
		publishes: "controller data",
		events:    []string{slurm.SlurmdbdConnected, slurm.SlurmdbdReady, slurm.SlurmdbdDisconnected},
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			req := slurm.NewSlurmdbdRequirer(fw, endpoint)
			r.receive(req.Interface, slurm.SlurmdbdReady, func(rel charm.Relation) (interface{}, error) {
				return req.GetDatabaseData(rel)
			})
			return errors.Trace(r.publishController(req.SlurmctldProvider))
		},
	},
	"slurmrestd-provider": {
		endpoint: "slurmctld",
		events:   controllerEvents,
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			r.receiveController(slurm.NewSlurmrestdProvider(fw, endpoint).SlurmctldRequirer)
			return nil
		},
	},
	"slurmrestd-requirer": {
		endpoint:  "slurmrestd",
		publishes: "controller data",
		events:    []string{slurm.SlurmrestdConnected},
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			p := slurm.NewSlurmrestdRequirer(fw, endpoint)
			return errors.Trace(r.publishController(p.SlurmctldProvider))
		},
	},
	"oci-runtime-provider": {
		endpoint:  "slurmctld",
		publishes: "runtime data",
		events:    controllerEvents,
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			p := slurm.NewOCIRuntimeProvider(fw, endpoint)
			r.receiveController(p.SlurmctldRequirer)
			var data slurm.OCIRuntimeData
			return errors.Trace(r.publish(p.Interface, &data, func(id int) error {
				return p.SetOCIRuntimeData(data, id)
			}))
		},
	},
	"oci-runtime-requirer": {
		endpoint:  "oci-runtime",
		publishes: "controller data",
		events:    []string{slurm.OCIRuntimeReady, slurm.OCIRuntimeDisconnected},
		setup: func(fw *charm.Framework, endpoint string, r *replay) error {
			req := slurm.NewOCIRuntimeRequirer(fw, endpoint)
			r.receive(req.Interface, slurm.OCIRuntimeReady, func(rel charm.Relation) (interface{}, error) {
				return req.GetOCIRuntimeData(rel)
			})
			return errors.Trace(r.publishController(req.SlurmctldProvider))
		},
	},
}

// publish decodes the scenario's published data into data and calls set
// with the integration id whenever an integration is created.
func (r *replay) publish(iface *interfaces.Interface, data interface{}, set func(id int) error) error {
	if err := decodePublish(r.scenario.Publish, data); err != nil {
		return errors.Trace(err)
	}
	iface.Observe(hook.RelationCreated, func(_ context.Context, e *charm.Event) error {
		return errors.Trace(set(e.Relation.Id()))
	})
	return nil
}

func (r *replay) publishController(p *slurm.SlurmctldProvider) error {
	var data slurm.ControllerData
	return errors.Trace(r.publish(p.Interface, &data, func(id int) error {
		return p.SetControllerData(data, id)
	}))
}

// receive records the data read with get when the named event is emitted.
func (r *replay) receive(iface *interfaces.Interface, name string, get func(charm.Relation) (interface{}, error)) {
	iface.On(name, func(_ context.Context, e *charm.Event) error {
		data, err := get(e.Relation)
		if err != nil {
			return errors.Trace(err)
		}
		r.received[e.Relation.Id()] = data
		return nil
	})
}

func (r *replay) receiveController(req *slurm.SlurmctldRequirer) {
	r.receive(req.Interface, slurm.SlurmctldReady, func(rel charm.Relation) (interface{}, error) {
		data, err := req.GetControllerData(rel)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if !r.showSecrets {
			if data.AuthKey != "" {
				data.AuthKey = secrets.Redacted
			}
			if data.JWTKey != "" {
				data.JWTKey = secrets.Redacted
			}
		}
		return data, nil
	})
}
