// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"strings"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/charmed-hpc/hpc-libs/auth"
	"github.com/charmed-hpc/hpc-libs/charm/charmtest"
)

type keysSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&keysSuite{})

func (s *keysSuite) TestKeygenAuth(c *gc.C) {
	code, stdout, _ := runCommand(c, newContext(c), nil, "keygen")
	c.Assert(code, gc.Equals, 0)
	raw, err := auth.DecodeKey(strings.TrimSpace(stdout))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(raw, gc.HasLen, auth.AuthKeyLength)
}

func (s *keysSuite) TestKeygenJWT(c *gc.C) {
	code, stdout, _ := runCommand(c, newContext(c), nil, "keygen", "--kind", "jwt")
	c.Assert(code, gc.Equals, 0)
	raw, err := auth.DecodeKey(strings.TrimSpace(stdout))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(raw, gc.HasLen, auth.JWTKeyLength)
}

func (s *keysSuite) TestKeygenBadKind(c *gc.C) {
	code, _, stderr := runCommand(c, newContext(c), nil, "keygen", "--kind", "munge")
	c.Assert(code, gc.Equals, 2)
	c.Check(stderr, gc.Matches, `(?s)ERROR secret kind "munge" not valid\n.*`)
}

type tokenSuite struct {
	testing.IsolationSuite

	clock *testclock.Clock
}

var _ = gc.Suite(&tokenSuite{})

func (s *tokenSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.clock = testclock.NewClock(charmtest.Epoch)
}

func (s *tokenSuite) issue(c *gc.C) (string, string) {
	key, err := auth.NewJWTKey()
	c.Assert(err, jc.ErrorIsNil)
	ctx := newContext(c)
	writeFile(c, ctx, "jwt.key", key+"\n")
	code, stdout, stderr := runCommand(c, ctx, s.clock, "token", "--key-file", "jwt.key", "--lifetime", "1h", "alice")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	return ctx.Dir, strings.TrimSpace(stdout)
}

func (s *tokenSuite) TestIssueAndVerify(c *gc.C) {
	dir, token := s.issue(c)
	ctx := newContext(c)
	ctx.Dir = dir
	code, stdout, stderr := runCommand(c, ctx, s.clock, "verify-token", "--key-file", "jwt.key", token)
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	c.Check(stdout, jc.Contains, "issuer: slurmctld\n")
	c.Check(stdout, jc.Contains, "slurm-user: alice\n")
	c.Check(stdout, jc.Contains, "expires-at: 2025-01-01T01:00:00Z\n")
}

func (s *tokenSuite) TestVerifyExpired(c *gc.C) {
	dir, token := s.issue(c)
	s.clock.Advance(2 * time.Hour)
	ctx := newContext(c)
	ctx.Dir = dir
	code, _, stderr := runCommand(c, ctx, s.clock, "verify-token", "--key-file", "jwt.key", token)
	c.Assert(code, gc.Equals, 1)
	c.Check(stderr, gc.Matches, `ERROR invalid token: .*expired.*\n`)
}

func (s *tokenSuite) TestVerifyWrongIssuer(c *gc.C) {
	dir, token := s.issue(c)
	ctx := newContext(c)
	ctx.Dir = dir
	code, _, stderr := runCommand(c, ctx, s.clock, "verify-token", "--key-file", "jwt.key", "--issuer", "other", token)
	c.Assert(code, gc.Equals, 1)
	c.Check(stderr, gc.Matches, `ERROR invalid token: .*\n`)
}

func (s *tokenSuite) TestTokenRequiresKeyFile(c *gc.C) {
	code, _, stderr := runCommand(c, newContext(c), s.clock, "token", "alice")
	c.Assert(code, gc.Equals, 2)
	c.Check(stderr, gc.Matches, `(?s)ERROR --key-file is required\n.*`)
}

func (s *tokenSuite) TestTokenRequiresUser(c *gc.C) {
	code, _, stderr := runCommand(c, newContext(c), s.clock, "token", "--key-file", "jwt.key")
	c.Assert(code, gc.Equals, 2)
	c.Check(stderr, gc.Matches, `(?s)ERROR no slurm user specified\n.*`)
}
