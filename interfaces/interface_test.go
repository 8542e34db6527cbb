// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package interfaces_test

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/charm/charmtest"
	"github.com/charmed-hpc/hpc-libs/core/status"
	"github.com/charmed-hpc/hpc-libs/hook"
	"github.com/charmed-hpc/hpc-libs/interfaces"
)

type interfaceSuite struct {
	testing.IsolationSuite

	model *charmtest.Model
	fw    *charm.Framework
	iface *interfaces.Interface
}

var _ = gc.Suite(&interfaceSuite{})

func (s *interfaceSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	model, err := charmtest.NewModel("slurmd/0")
	c.Assert(err, jc.ErrorIsNil)
	s.model = model
	s.fw, err = charm.NewFramework(charm.FrameworkConfig{Model: model})
	c.Assert(err, jc.ErrorIsNil)
	s.iface = interfaces.New(s.fw, "slurmctld", controllerSchema)
}

var readyData = map[string]string{
	"auth_key_id": `"secret:1"`,
	"controllers": `["10.0.0.1"]`,
	"nhc_args":    `""`,
}

func (s *interfaceSuite) TestAccessors(c *gc.C) {
	c.Assert(s.iface.Endpoint(), gc.Equals, "slurmctld")
	c.Assert(s.iface.Model(), gc.Equals, charm.Model(s.model))
	c.Assert(s.iface.Framework(), gc.Equals, s.fw)
	c.Assert(s.iface.EventKind("slurmctld-ready"), gc.Equals, "slurmctld/slurmctld-ready")
}

func (s *interfaceSuite) TestIntegrationsSkipsInactive(c *gc.C) {
	rel1 := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	rel2 := s.model.AddRelation("slurmctld", "other", "other/0")
	s.model.AddRelation("slurmdbd", "slurmdbd", "slurmdbd/0")
	rel2.SetUnavailable(true)

	rels, err := s.iface.Integrations()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(rels, gc.HasLen, 1)
	c.Assert(rels[0].Id(), gc.Equals, rel1.Id())

	joined, err := s.iface.IsJoined()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(joined, jc.IsTrue)
}

func (s *interfaceSuite) TestIntegrationsError(c *gc.C) {
	s.model.SetErrors(errors.New("boom"))
	_, err := s.iface.Integrations()
	c.Assert(err, gc.ErrorMatches, `getting "slurmctld" integrations: boom`)
}

func (s *interfaceSuite) TestIntegration(c *gc.C) {
	rel := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")

	got, err := s.iface.Integration(rel.Id())
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(got.Id(), gc.Equals, rel.Id())

	_, err = s.iface.Integration(99)
	c.Assert(err, jc.ErrorIs, interfaces.IntegrationNotFound)
	c.Assert(err, gc.ErrorMatches, `slurmctld:99: integration not found`)
}

func (s *interfaceSuite) TestSoleIntegration(c *gc.C) {
	_, err := s.iface.SoleIntegration()
	c.Assert(err, jc.ErrorIs, interfaces.IntegrationNotFound)

	rel := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	got, err := s.iface.SoleIntegration()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(got.Id(), gc.Equals, rel.Id())

	s.model.AddRelation("slurmctld", "slurmctld-b", "slurmctld-b/0")
	_, err = s.iface.SoleIntegration()
	c.Assert(err, jc.ErrorIs, interfaces.AmbiguousIntegration)
	c.Assert(err, gc.ErrorMatches, `2 integrations on endpoint "slurmctld": ambiguous integration`)
}

func (s *interfaceSuite) TestResolve(c *gc.C) {
	rel1 := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	rel2 := s.model.AddRelation("slurmctld", "slurmctld-b", "slurmctld-b/0")

	got, err := s.iface.Resolve(rel1)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(got.Id(), gc.Equals, rel1.Id())

	got, err = s.iface.Resolve(nil, rel2.Id())
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(got.Id(), gc.Equals, rel2.Id())

	_, err = s.iface.Resolve(nil)
	c.Assert(err, jc.ErrorIs, interfaces.AmbiguousIntegration)
}

func (s *interfaceSuite) TestIsReady(c *gc.C) {
	ready, err := s.iface.IsReady()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ready, jc.IsFalse)

	rel1 := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	ready, err = s.iface.IsReady()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ready, jc.IsFalse)

	rel1.SetRemoteData(readyData)
	ready, err = s.iface.IsReady()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ready, jc.IsTrue)

	rel2 := s.model.AddRelation("slurmctld", "slurmctld-b", "slurmctld-b/0")
	ready, err = s.iface.IsReady()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ready, jc.IsFalse)

	ready, err = s.iface.IsIntegrationReady(rel1.Id())
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ready, jc.IsTrue)
	ready, err = s.iface.IsIntegrationReady(rel2.Id())
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ready, jc.IsFalse)
	_, err = s.iface.IsIntegrationReady(99)
	c.Assert(err, jc.ErrorIs, interfaces.IntegrationNotFound)
}

func (s *interfaceSuite) TestReadyWithoutRemoteApp(c *gc.C) {
	rel := s.model.AddRelation("slurmctld", "")
	rel.SetRemoteData(readyData)
	c.Assert(s.iface.Ready(rel), jc.IsFalse)
}

func (s *interfaceSuite) TestReadyUnavailable(c *gc.C) {
	rel := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	rel.SetRemoteData(readyData)
	rel.SetUnavailable(true)
	c.Assert(s.iface.Ready(rel), jc.IsFalse)
}

type computeData struct {
	Partition map[string]interface{} `json:"partition"`
	Note      string                 `json:"note,omitempty"`
}

func (s *interfaceSuite) TestSaveIntegrationDataNotLeader(c *gc.C) {
	rel := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	err := s.iface.SaveIntegrationData(computeData{Partition: map[string]interface{}{"name": "all"}})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(rel.LocalData(), gc.HasLen, 0)
	s.model.CheckCallNames(c, "IsLeader")
}

func (s *interfaceSuite) TestSaveIntegrationData(c *gc.C) {
	s.model.SetLeader(true)
	rel1 := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	rel2 := s.model.AddRelation("slurmctld", "slurmctld-b", "slurmctld-b/0")

	err := s.iface.SaveIntegrationData(computeData{Partition: map[string]interface{}{"name": "all"}})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(rel1.LocalData(), jc.DeepEquals, charm.Databag{"partition": `{"name":"all"}`})
	c.Assert(rel2.LocalData(), jc.DeepEquals, charm.Databag{"partition": `{"name":"all"}`})

	err = s.iface.SaveIntegrationData(computeData{Note: "only b"}, rel2.Id())
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(rel1.LocalData(), jc.DeepEquals, charm.Databag{"partition": `{"name":"all"}`})
	c.Assert(rel2.LocalData(), jc.DeepEquals, charm.Databag{"partition": "null", "note": `"only b"`})
}

func (s *interfaceSuite) TestSaveIntegrationDataUnknownID(c *gc.C) {
	s.model.SetLeader(true)
	err := s.iface.SaveIntegrationData(computeData{}, 42)
	c.Assert(err, jc.ErrorIs, interfaces.IntegrationNotFound)
}

func (s *interfaceSuite) TestSaveIntegrationDataError(c *gc.C) {
	s.model.SetLeader(true)
	rel := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	s.model.SetErrors(nil, nil, errors.New("write failed"))
	err := s.iface.SaveIntegrationData(computeData{})
	c.Assert(err, gc.ErrorMatches, `saving data on integration slurmctld:1: write failed`)
	c.Assert(rel.LocalData(), gc.HasLen, 0)
}

func (s *interfaceSuite) TestLoadIntegrationData(c *gc.C) {
	rel := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	rel.SetRemoteData(map[string]string{"partition": `{"name":"all","nodes":2}`})
	var data computeData
	c.Assert(s.iface.LoadIntegrationData(rel, &data), jc.ErrorIsNil)
	c.Assert(data.Partition, jc.DeepEquals, map[string]interface{}{"name": "all", "nodes": float64(2)})

	rel.SetRemoteData(map[string]string{"partition": `nope`})
	err := s.iface.LoadIntegrationData(rel, &data)
	c.Assert(err, gc.ErrorMatches, `loading integration slurmctld:1: decoding "partition": .*`)
}

func (s *interfaceSuite) TestNotReady(c *gc.C) {
	rel1 := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	rel2 := s.model.AddRelation("slurmctld", "slurmctld-b", "slurmctld-b/0")
	rel1.SetRemoteData(readyData)
	cond := s.iface.NotReady("Waiting for controller data")

	holds, msg := cond(&charm.Event{Name: "relation-changed", Endpoint: "slurmctld", Relation: rel1})
	c.Assert(holds, jc.IsFalse)
	c.Assert(msg, gc.Equals, "")

	holds, msg = cond(&charm.Event{Name: "relation-changed", Endpoint: "slurmctld", Relation: rel2})
	c.Assert(holds, jc.IsTrue)
	c.Assert(msg, gc.Equals, "Waiting for controller data")

	holds, _ = cond(&charm.Event{Name: "config-changed"})
	c.Assert(holds, jc.IsTrue)

	rel2.SetRemoteData(readyData)
	holds, _ = cond(&charm.Event{Name: "config-changed"})
	c.Assert(holds, jc.IsFalse)
}

func (s *interfaceSuite) TestIntegrationExists(c *gc.C) {
	exists := interfaces.IntegrationExists(s.model, "slurmctld")
	notExists := interfaces.IntegrationNotExists(s.model, "slurmctld")

	holds, msg := exists(nil)
	c.Assert(holds, jc.IsFalse)
	c.Assert(msg, gc.Equals, "")
	holds, msg = notExists(nil)
	c.Assert(holds, jc.IsTrue)
	c.Assert(msg, gc.Equals, "Waiting for integrations: [`slurmctld`]")

	s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	holds, msg = exists(nil)
	c.Assert(holds, jc.IsTrue)
	c.Assert(msg, gc.Equals, "")
	holds, msg = notExists(nil)
	c.Assert(holds, jc.IsFalse)
	c.Assert(msg, gc.Equals, "")
}

func (s *interfaceSuite) TestBlockWhenIntegrationNotExists(c *gc.C) {
	called := false
	h := charm.Chain(func(context.Context, *charm.Event) error {
		called = true
		return nil
	}, charm.Refresh(s.model, nil), charm.BlockWhen(interfaces.IntegrationNotExists(s.model, "slurmctld")))

	c.Assert(h(context.Background(), &charm.Event{Name: "config-changed"}), jc.ErrorIsNil)
	c.Assert(called, jc.IsFalse)
	st, err := s.model.Unit().Status()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(st.Status, gc.Equals, status.Blocked)
	c.Assert(st.Message, gc.Equals, "Waiting for integrations: [`slurmctld`]")

	s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	c.Assert(h(context.Background(), &charm.Event{Name: "config-changed"}), jc.ErrorIsNil)
	c.Assert(called, jc.IsTrue)
}

func (s *interfaceSuite) TestObserveAndEmit(c *gc.C) {
	rel := s.model.AddRelation("slurmctld", "slurmctld", "slurmctld/0")
	var got []*charm.Event
	s.iface.Observe(hook.RelationChanged, func(ctx context.Context, e *charm.Event) error {
		return s.iface.Emit(ctx, e, "slurmctld-ready")
	})
	s.fw.Observe(s.iface.EventKind("slurmctld-ready"), func(_ context.Context, e *charm.Event) error {
		got = append(got, e)
		return nil
	})

	err := s.fw.Dispatch(context.Background(), charmtest.RelationChanged(rel))
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(got, gc.HasLen, 1)
	c.Assert(got[0].Kind(), gc.Equals, "slurmctld/slurmctld-ready")
	c.Assert(got[0].Relation.Id(), gc.Equals, rel.Id())
	c.Assert(got[0].App, gc.Equals, "slurmctld")
}

func (s *interfaceSuite) TestIsDeparting(c *gc.C) {
	c.Assert(s.iface.IsDeparting(&charm.Event{DepartingUnit: "slurmd/0"}), jc.IsTrue)
	c.Assert(s.iface.IsDeparting(&charm.Event{DepartingUnit: "slurmctld/0"}), jc.IsFalse)
	c.Assert(s.iface.IsDeparting(&charm.Event{}), jc.IsFalse)
}
