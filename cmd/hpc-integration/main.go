// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Command hpc-integration exercises the Slurm integration interfaces
// outside of a charm: it replays relation hooks on an in-memory unit and
// generates the keys and tokens the integrations share.
package main

import (
	"fmt"
	"os"

	"github.com/juju/clock"
	"github.com/juju/loggo/v2"

	"github.com/charmed-hpc/hpc-libs/cmd"
)

var logger = loggo.GetLogger("hpc.cmd.integration")

const version = "0.1.0"

const integrationDoc = `
hpc-integration runs the Slurm integration interfaces outside of a charm.
`

func main() {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.Main(NewSuperCommand(clock.WallClock), ctx, os.Args[1:]))
}

// NewSuperCommand returns the hpc-integration command with all its
// subcommands registered.
func NewSuperCommand(clk clock.Clock) *cmd.SuperCommand {
	super := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:    "hpc-integration",
		Purpose: "Exercise Slurm integration interfaces.",
		Doc:     integrationDoc,
		Version: version,
	})
	super.Register(newReplayCommand())
	super.Register(newKeygenCommand())
	super.Register(newTokenCommand(clk))
	super.Register(newVerifyTokenCommand(clk))
	return super
}
