// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package secrets_test

import (
	"strings"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/charmed-hpc/hpc-libs/core/secrets"
)

type SecretsSuite struct{}

var _ = gc.Suite(&SecretsSuite{})

func (s *SecretsSuite) TestIntegrationLabel(c *gc.C) {
	c.Assert(secrets.IntegrationLabel(1, secrets.AuthKind), gc.Equals, "integration-1-auth-key-secret")
	c.Assert(secrets.IntegrationLabel(42, secrets.JWTKind), gc.Equals, "integration-42-jwt-key-secret")
}

func (s *SecretsSuite) TestParseIntegrationLabel(c *gc.C) {
	id, kind, err := secrets.ParseIntegrationLabel("integration-7-jwt-key-secret")
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(id, gc.Equals, 7)
	c.Assert(kind, gc.Equals, secrets.JWTKind)
}

func (s *SecretsSuite) TestParseIntegrationLabelInvalid(c *gc.C) {
	for _, label := range []string{
		"",
		"integration-x-auth-key-secret",
		"integration-1-auth",
		"integration-1-munge-key-secret",
	} {
		_, _, err := secrets.ParseIntegrationLabel(label)
		c.Check(err, jc.ErrorIs, errors.NotValid, gc.Commentf("label %q", label))
	}
}

func (s *SecretsSuite) TestKindValidate(c *gc.C) {
	c.Assert(secrets.AuthKind.Validate(), jc.ErrorIsNil)
	c.Assert(secrets.JWTKind.Validate(), jc.ErrorIsNil)
	c.Assert(secrets.Kind("munge").Validate(), gc.ErrorMatches, `secret kind "munge" not valid`)
}

func (s *SecretsSuite) TestContent(c *gc.C) {
	c.Assert(secrets.NewContent("xyz"), jc.DeepEquals, map[string]string{"key": "xyz"})
	c.Assert(secrets.IDField("auth_key"), gc.Equals, "auth_key_id")
	c.Assert(secrets.IsRedacted("***"), jc.IsTrue)
	c.Assert(secrets.IsRedacted("xyz"), jc.IsFalse)
}

func (s *SecretsSuite) TestNewID(c *gc.C) {
	a, b := secrets.NewID(), secrets.NewID()
	c.Assert(strings.HasPrefix(a, "secret:"), jc.IsTrue)
	c.Assert(a, gc.Not(gc.Equals), b)
}
