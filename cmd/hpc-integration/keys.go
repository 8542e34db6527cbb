// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/charmed-hpc/hpc-libs/auth"
	"github.com/charmed-hpc/hpc-libs/cmd"
	"github.com/charmed-hpc/hpc-libs/core/secrets"
)

const keygenDoc = `
Generate a base64 encoded key suitable for sharing over an integration:
an auth/slurm key for authenticating Slurm daemons, or a JWT signing key
for slurmrestd and slurmdbd.
`

type keygenCommand struct {
	kind string
	gen  map[secrets.Kind]func() (string, error)
}

func newKeygenCommand() cmd.Command {
	return &keygenCommand{
		gen: map[secrets.Kind]func() (string, error){
			secrets.AuthKind: auth.NewAuthKey,
			secrets.JWTKind:  auth.NewJWTKey,
		},
	}
}

// Info is part of the cmd.Command interface.
func (c *keygenCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:        "keygen",
		Purpose:     "Generate an auth or JWT key.",
		Doc:         keygenDoc,
		Intersperse: true,
	}
}

// SetFlags is part of the cmd.Command interface.
func (c *keygenCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.kind, "kind", string(secrets.AuthKind), "Kind of key (auth|jwt)")
}

// Init is part of the cmd.Command interface.
func (c *keygenCommand) Init(args []string) error {
	if err := secrets.Kind(c.kind).Validate(); err != nil {
		return errors.Trace(err)
	}
	return cmd.CheckEmpty(args)
}

// Run is part of the cmd.Command interface.
func (c *keygenCommand) Run(ctx *cmd.Context) error {
	key, err := c.gen[secrets.Kind(c.kind)]()
	if err != nil {
		return errors.Trace(err)
	}
	_, err = fmt.Fprintln(ctx.Stdout, key)
	return errors.Trace(err)
}
