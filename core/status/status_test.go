// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/charmed-hpc/hpc-libs/core/status"
)

type statusSuite struct{}

var _ = gc.Suite(&statusSuite{})

func (s *statusSuite) TestValidWorkloadStatus(c *gc.C) {
	for _, st := range []status.Status{
		status.Active, status.Blocked, status.Maintenance, status.Waiting, status.Unknown,
	} {
		c.Check(status.ValidWorkloadStatus(st), jc.IsTrue, gc.Commentf("%s", st))
	}
	c.Check(status.ValidWorkloadStatus(status.Error), jc.IsFalse)
	c.Check(status.ValidWorkloadStatus("bogus"), jc.IsFalse)
}

func (s *statusSuite) TestString(c *gc.C) {
	c.Check(status.NewWaiting("Waiting for controller data").String(), gc.Equals, "waiting: Waiting for controller data")
	c.Check(status.NewActive("").String(), gc.Equals, "active")
}

func (s *statusSuite) TestConstructors(c *gc.C) {
	c.Check(status.NewBlocked("x"), jc.DeepEquals, status.StatusInfo{Status: status.Blocked, Message: "x"})
	c.Check(status.NewMaintenance("y"), jc.DeepEquals, status.StatusInfo{Status: status.Maintenance, Message: "y"})
}
