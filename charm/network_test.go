// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/charm/charmtest"
)

type networkSuite struct{}

var _ = gc.Suite(&networkSuite{})

func (s *networkSuite) TestIngressAddress(c *gc.C) {
	model, err := charmtest.NewModel("slurmdbd/0")
	c.Assert(err, jc.ErrorIsNil)
	model.SetNetworkInfo("slurmctld", charm.NetworkInfo{
		BindAddresses:    []string{"10.0.0.5"},
		IngressAddresses: []string{"10.0.0.5", "192.168.1.5"},
	})

	addr, err := charm.IngressAddress(model, "slurmctld")
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(addr, gc.Equals, "10.0.0.5")
}

func (s *networkSuite) TestIngressAddressNotFound(c *gc.C) {
	model, err := charmtest.NewModel("slurmdbd/0")
	c.Assert(err, jc.ErrorIsNil)

	_, err = charm.IngressAddress(model, "slurmctld")
	c.Assert(err, jc.ErrorIs, charm.ErrIngressAddressNotFound)

	model.SetNetworkInfo("slurmctld", charm.NetworkInfo{})
	_, err = charm.IngressAddress(model, "slurmctld")
	c.Assert(err, jc.ErrorIs, charm.ErrIngressAddressNotFound)
	c.Assert(err, gc.ErrorMatches, `endpoint "slurmctld": ingress address not found`)
}
