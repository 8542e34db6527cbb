// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package slurm

import (
	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/interfaces"
)

// SlurmrestdConnected is emitted on slurmctld when a slurmrestd
// application is integrated.
const SlurmrestdConnected = "slurmrestd-connected"

var slurmrestdSchema = interfaces.ReadinessSchema{
	"auth_key_id": interfaces.NotEmptyString,
	"slurmconfig": interfaces.NotEmptyObject,
}

// SlurmrestdProvider runs on slurmrestd units to read the controller data,
// including slurm.conf, published by slurmctld.
type SlurmrestdProvider struct {
	*SlurmctldRequirer
}

// NewSlurmrestdProvider returns the slurmrestd side of the slurmrestd
// interface.
func NewSlurmrestdProvider(fw *charm.Framework, endpoint string) *SlurmrestdProvider {
	return &SlurmrestdProvider{
		SlurmctldRequirer: newSlurmctldRequirer(fw, endpoint, slurmrestdSchema, allUnits),
	}
}

// SlurmrestdRequirer runs on the slurmctld leader to provide controller
// data to slurmrestd applications.
type SlurmrestdRequirer struct {
	*SlurmctldProvider
}

// NewSlurmrestdRequirer returns the slurmctld side of the slurmrestd
// interface.
func NewSlurmrestdRequirer(fw *charm.Framework, endpoint string) *SlurmrestdRequirer {
	return &SlurmrestdRequirer{
		SlurmctldProvider: newSlurmctldProvider(fw, endpoint, interfaces.ReadinessSchema{}, lifecycle{
			connected: SlurmrestdConnected,
		}),
	}
}
