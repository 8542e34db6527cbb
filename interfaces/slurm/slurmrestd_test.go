// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package slurm_test

import (
	"context"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/charm/charmtest"
	"github.com/charmed-hpc/hpc-libs/interfaces/slurm"
)

type slurmrestdSuite struct {
	baseSuite
}

var _ = gc.Suite(&slurmrestdSuite{})

func (s *slurmrestdSuite) TestControllerPublishesConfig(c *gc.C) {
	var slurmrestd *slurm.SlurmrestdRequirer
	s.setUpCharm(c, "slurmctld/0", true, func(fw *charm.Framework) error {
		slurmrestd = slurm.NewSlurmrestdRequirer(fw, "slurmrestd")
		slurmrestd.On(slurm.SlurmrestdConnected, func(_ context.Context, e *charm.Event) error {
			return slurmrestd.SetControllerData(slurm.ControllerData{
				AuthKey:     exampleAuthKey,
				JWTKey:      exampleJWTKey,
				Controllers: exampleControllers,
				SlurmConfig: slurm.SlurmConfig{"clustername": "osd-cluster"},
			}, e.Relation.Id())
		})
		return nil
	})
	rel := s.model.AddRelation("slurmrestd", "slurmrestd", "slurmrestd/0")

	c.Assert(s.harness.Run(s.ctx, charmtest.RelationCreated(rel)), jc.ErrorIsNil)
	local := rel.LocalData()
	c.Assert(local["slurmconfig"], gc.Equals, `{"clustername":"osd-cluster"}`)
	c.Assert(local["auth_key"], gc.Equals, `"***"`)
	c.Assert(local["jwt_key"], gc.Equals, `"***"`)

	c.Assert(s.harness.Run(s.ctx, charmtest.RelationBroken(rel, "")), jc.ErrorIsNil)
	c.Assert(s.model.SecretStore().Len(), gc.Equals, 0)
}

func (s *slurmrestdSuite) TestProviderNeedsSlurmConfig(c *gc.C) {
	s.setUpCharm(c, "slurmrestd/1", false, func(fw *charm.Framework) error {
		slurm.NewSlurmrestdProvider(fw, "slurmctld")
		return nil
	})
	s.harness.Record("slurmctld/" + slurm.SlurmctldReady)
	rel := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	rel.SetRemoteData(map[string]string{
		"auth_key_id": `"secret:1"`,
		"controllers": `["127.0.0.1"]`,
		"slurmconfig": `{}`,
	})

	c.Assert(s.harness.Run(s.ctx, charmtest.RelationChanged(rel)), jc.ErrorIsNil)
	c.Assert(s.harness.Recorder.Events, gc.HasLen, 0)
	c.Assert(s.status(c).Message, gc.Equals, "Waiting for controller data")

	rel.SetRemoteData(map[string]string{
		"auth_key_id": `"secret:1"`,
		"controllers": `["127.0.0.1"]`,
		"slurmconfig": `{"clustername":"osd-cluster"}`,
	})
	c.Assert(s.harness.Run(s.ctx, charmtest.RelationChanged(rel)), jc.ErrorIsNil)
	c.Assert(s.harness.Recorder.Count("slurmctld/"+slurm.SlurmctldReady), gc.Equals, 2)
}
