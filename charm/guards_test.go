// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm_test

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/charm/charmtest"
	"github.com/charmed-hpc/hpc-libs/core/status"
)

type guardsSuite struct {
	testing.IsolationSuite

	model *charmtest.Model
	calls int
}

var _ = gc.Suite(&guardsSuite{})

func (s *guardsSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	model, err := charmtest.NewModel("slurmd/0")
	c.Assert(err, jc.ErrorIsNil)
	s.model = model
	s.calls = 0
}

func (s *guardsSuite) handler(context.Context, *charm.Event) error {
	s.calls++
	return nil
}

func (s *guardsSuite) unitStatus(c *gc.C) status.StatusInfo {
	st, err := s.model.Unit().Status()
	c.Assert(err, jc.ErrorIsNil)
	st.Since = nil
	return st
}

func holds(msg string) charm.Condition {
	return func(*charm.Event) (bool, string) { return true, msg }
}

func fails(msg string) charm.Condition {
	return func(*charm.Event) (bool, string) { return false, msg }
}

func (s *guardsSuite) TestLeader(c *gc.C) {
	h := charm.Chain(s.handler, charm.Leader(s.model))
	e := &charm.Event{Name: "config-changed"}

	c.Assert(h(context.Background(), e), jc.ErrorIsNil)
	c.Assert(s.calls, gc.Equals, 0)
	c.Assert(e.Deferred(), jc.IsFalse)

	s.model.SetLeader(true)
	c.Assert(h(context.Background(), e), jc.ErrorIsNil)
	c.Assert(s.calls, gc.Equals, 1)
}

func (s *guardsSuite) TestLeaderError(c *gc.C) {
	s.model.SetErrors(errors.New("no leadership"))
	h := charm.Chain(s.handler, charm.Leader(s.model))
	err := h(context.Background(), &charm.Event{Name: "config-changed"})
	c.Assert(err, gc.ErrorMatches, "checking leadership: no leadership")
	c.Assert(s.calls, gc.Equals, 0)
}

func (s *guardsSuite) TestWaitWhen(c *gc.C) {
	h := charm.Chain(s.handler, charm.WaitWhen(fails("never"), holds("Waiting for controller data")))
	e := &charm.Event{Name: "relation-changed", Endpoint: "slurmctld"}

	err := h(context.Background(), e)
	var stop *charm.StopCharm
	c.Assert(errors.As(err, &stop), jc.IsTrue)
	c.Assert(stop.Status, jc.DeepEquals, status.NewWaiting("Waiting for controller data"))
	c.Assert(e.Deferred(), jc.IsTrue)
	c.Assert(s.calls, gc.Equals, 0)
}

func (s *guardsSuite) TestBlockWhenNoConditionHolds(c *gc.C) {
	h := charm.Chain(s.handler, charm.BlockWhen(fails("a"), fails("b")))
	e := &charm.Event{Name: "config-changed"}
	c.Assert(h(context.Background(), e), jc.ErrorIsNil)
	c.Assert(e.Deferred(), jc.IsFalse)
	c.Assert(s.calls, gc.Equals, 1)
}

func (s *guardsSuite) TestUnless(c *gc.C) {
	e := &charm.Event{Name: "config-changed"}
	h := charm.Chain(s.handler, charm.BlockUnless(holds("ok"), fails("Missing integration")))
	err := h(context.Background(), e)
	c.Assert(err, gc.ErrorMatches, "charm stopped: blocked: Missing integration")
	c.Assert(e.Deferred(), jc.IsTrue)

	e = &charm.Event{Name: "config-changed"}
	h = charm.Chain(s.handler, charm.WaitUnless(holds("ok")))
	c.Assert(h(context.Background(), e), jc.ErrorIsNil)
	c.Assert(s.calls, gc.Equals, 1)
}

func (s *guardsSuite) TestRefreshSetsStopStatus(c *gc.C) {
	h := charm.Chain(s.handler,
		charm.Refresh(s.model, func() status.StatusInfo { return status.NewActive("") }),
		charm.WaitWhen(holds("Waiting for database data")),
	)
	e := &charm.Event{Name: "relation-changed", Endpoint: "slurmdbd"}
	c.Assert(h(context.Background(), e), jc.ErrorIsNil)
	c.Assert(s.unitStatus(c), jc.DeepEquals, status.NewWaiting("Waiting for database data"))
	c.Assert(e.Deferred(), jc.IsTrue)
}

func (s *guardsSuite) TestRefreshSetsCheckStatus(c *gc.C) {
	h := charm.Chain(s.handler, charm.Refresh(s.model, func() status.StatusInfo { return status.NewActive("") }))
	c.Assert(h(context.Background(), &charm.Event{Name: "start"}), jc.ErrorIsNil)
	c.Assert(s.unitStatus(c), jc.DeepEquals, status.NewActive(""))
	c.Assert(s.calls, gc.Equals, 1)
}

func (s *guardsSuite) TestRefreshWithoutCheck(c *gc.C) {
	h := charm.Chain(s.handler, charm.Refresh(s.model, nil))
	c.Assert(h(context.Background(), &charm.Event{Name: "start"}), jc.ErrorIsNil)
	c.Assert(s.unitStatus(c).Status, gc.Equals, status.Unknown)
	s.model.CheckCallNames(c)
}

func (s *guardsSuite) TestRefreshPropagatesErrors(c *gc.C) {
	h := charm.Chain(func(context.Context, *charm.Event) error {
		return errors.New("boom")
	}, charm.Refresh(s.model, func() status.StatusInfo { return status.NewActive("") }))
	c.Assert(h(context.Background(), &charm.Event{Name: "start"}), gc.ErrorMatches, "boom")
	c.Assert(s.unitStatus(c).Status, gc.Equals, status.Unknown)
}

func (s *guardsSuite) TestReconfigure(c *gc.C) {
	reconfigured := 0
	reconfigure := charm.Reconfigure(func(context.Context) error {
		reconfigured++
		return nil
	})

	h := charm.Chain(s.handler, reconfigure)
	c.Assert(h(context.Background(), &charm.Event{Name: "config-changed"}), jc.ErrorIsNil)
	c.Assert(reconfigured, gc.Equals, 1)

	h = charm.Chain(s.handler, reconfigure, charm.WaitWhen(holds("not yet")))
	err := h(context.Background(), &charm.Event{Name: "config-changed"})
	c.Assert(err, gc.FitsTypeOf, &charm.StopCharm{})
	c.Assert(reconfigured, gc.Equals, 1)
}

func (s *guardsSuite) TestReconfigureError(c *gc.C) {
	h := charm.Chain(s.handler, charm.Reconfigure(func(context.Context) error {
		return errors.New("restart failed")
	}))
	err := h(context.Background(), &charm.Event{Name: "config-changed"})
	c.Assert(err, gc.ErrorMatches, "reconfiguring: restart failed")
}

func (s *guardsSuite) TestReconfigureNilHook(c *gc.C) {
	h := charm.Chain(s.handler, charm.Reconfigure(nil))
	c.Assert(h(context.Background(), &charm.Event{Name: "config-changed"}), jc.ErrorIsNil)
	c.Assert(s.calls, gc.Equals, 1)
}

func (s *guardsSuite) TestChainOrder(c *gc.C) {
	var order []string
	guard := func(name string) charm.Guard {
		return func(next charm.Handler) charm.Handler {
			return func(ctx context.Context, e *charm.Event) error {
				order = append(order, name)
				return next(ctx, e)
			}
		}
	}
	h := charm.Chain(s.handler, guard("outer"), guard("inner"))
	c.Assert(h(context.Background(), &charm.Event{Name: "start"}), jc.ErrorIsNil)
	c.Assert(order, jc.DeepEquals, []string{"outer", "inner"})
	c.Assert(s.calls, gc.Equals, 1)
}
