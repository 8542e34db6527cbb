// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package slurm

import (
	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/interfaces"
)

// SackdConnected is emitted on slurmctld when a sackd application is
// integrated.
const SackdConnected = "sackd-connected"

// SackdProvider runs on sackd units, typically login nodes, to read the
// controller data published by slurmctld.
type SackdProvider struct {
	*SlurmctldRequirer
}

// NewSackdProvider returns the sackd side of the sackd interface.
func NewSackdProvider(fw *charm.Framework, endpoint string) *SackdProvider {
	return &SackdProvider{
		SlurmctldRequirer: newSlurmctldRequirer(fw, endpoint, controllerSchema, allUnits),
	}
}

// SackdRequirer runs on the slurmctld leader to provide controller data
// to sackd applications.
type SackdRequirer struct {
	*SlurmctldProvider
}

// NewSackdRequirer returns the slurmctld side of the sackd interface.
func NewSackdRequirer(fw *charm.Framework, endpoint string) *SackdRequirer {
	return &SackdRequirer{
		SlurmctldProvider: newSlurmctldProvider(fw, endpoint, interfaces.ReadinessSchema{}, lifecycle{
			connected: SackdConnected,
		}),
	}
}
