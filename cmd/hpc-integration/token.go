// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/charmed-hpc/hpc-libs/auth"
	"github.com/charmed-hpc/hpc-libs/cmd"
)

const defaultIssuer = "slurmctld"

// keyFlags holds the flags locating a JWT signing key.
type keyFlags struct {
	keyFile cmd.FileVar
	issuer  string
}

func (k *keyFlags) setFlags(f *gnuflag.FlagSet) {
	f.Var(&k.keyFile, "key-file", "File holding the base64 encoded JWT key")
	f.StringVar(&k.issuer, "issuer", defaultIssuer, "Token issuer")
}

func (k *keyFlags) validate() error {
	if k.keyFile.Path == "" {
		return errors.New("--key-file is required")
	}
	return nil
}

func (k *keyFlags) newIssuer(ctx *cmd.Context, clk clock.Clock) (*auth.Issuer, error) {
	key, err := k.keyFile.Read(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "reading jwt key")
	}
	issuer, err := auth.NewIssuer(k.issuer, strings.TrimSpace(string(key)), clk)
	return issuer, errors.Trace(err)
}

type tokenCommand struct {
	keyFlags
	clock    clock.Clock
	username string
	lifetime time.Duration
}

func newTokenCommand(clk clock.Clock) cmd.Command {
	return &tokenCommand{clock: clk}
}

// Info is part of the cmd.Command interface.
func (c *tokenCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:        "token",
		Args:        "<slurm-user>",
		Purpose:     "Issue a slurmrestd token for a Slurm user.",
		Doc:         "Issue a JWT, signed with the key shared by slurmctld, authenticating\nrequests to slurmrestd as the given Slurm user.",
		Intersperse: true,
	}
}

// SetFlags is part of the cmd.Command interface.
func (c *tokenCommand) SetFlags(f *gnuflag.FlagSet) {
	c.keyFlags.setFlags(f)
	f.DurationVar(&c.lifetime, "lifetime", auth.DefaultTokenLifetime, "Token lifetime")
}

// Init is part of the cmd.Command interface.
func (c *tokenCommand) Init(args []string) error {
	if err := c.keyFlags.validate(); err != nil {
		return errors.Trace(err)
	}
	if len(args) == 0 {
		return errors.New("no slurm user specified")
	}
	c.username = args[0]
	return cmd.CheckEmpty(args[1:])
}

// Run is part of the cmd.Command interface.
func (c *tokenCommand) Run(ctx *cmd.Context) error {
	issuer, err := c.newIssuer(ctx, c.clock)
	if err != nil {
		return errors.Trace(err)
	}
	token, err := issuer.Issue(c.username, c.lifetime)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = fmt.Fprintln(ctx.Stdout, token)
	return errors.Trace(err)
}

type verifyTokenCommand struct {
	keyFlags
	clock clock.Clock
	token string
	out   cmd.Output
}

func newVerifyTokenCommand(clk clock.Clock) cmd.Command {
	return &verifyTokenCommand{clock: clk}
}

// Info is part of the cmd.Command interface.
func (c *verifyTokenCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:        "verify-token",
		Args:        "<token>",
		Purpose:     "Verify a slurmrestd token and show its claims.",
		Intersperse: true,
	}
}

// SetFlags is part of the cmd.Command interface.
func (c *verifyTokenCommand) SetFlags(f *gnuflag.FlagSet) {
	c.keyFlags.setFlags(f)
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters)
}

// Init is part of the cmd.Command interface.
func (c *verifyTokenCommand) Init(args []string) error {
	if err := c.keyFlags.validate(); err != nil {
		return errors.Trace(err)
	}
	if len(args) == 0 {
		return errors.New("no token specified")
	}
	c.token = args[0]
	return cmd.CheckEmpty(args[1:])
}

type tokenInfo struct {
	ID        string    `yaml:"id" json:"id"`
	Issuer    string    `yaml:"issuer" json:"issuer"`
	SlurmUser string    `yaml:"slurm-user" json:"slurm-user"`
	IssuedAt  time.Time `yaml:"issued-at" json:"issued-at"`
	ExpiresAt time.Time `yaml:"expires-at" json:"expires-at"`
}

// Run is part of the cmd.Command interface.
func (c *verifyTokenCommand) Run(ctx *cmd.Context) error {
	issuer, err := c.newIssuer(ctx, c.clock)
	if err != nil {
		return errors.Trace(err)
	}
	claims, err := issuer.Parse(strings.TrimSpace(c.token))
	if err != nil {
		return errors.Trace(err)
	}
	info := tokenInfo{
		ID:        claims.ID,
		Issuer:    claims.Issuer,
		SlurmUser: claims.SlurmUsername,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return c.out.Write(ctx, info)
}
