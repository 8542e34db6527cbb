// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
)

// SuperCommandParams provides a way to have default parameter to the
// NewSuperCommand call.
type SuperCommandParams struct {
	Name    string
	Purpose string
	Doc     string
	Version string
}

// SuperCommand is a Command that selects a subcommand and assumes its
// properties.
type SuperCommand struct {
	params  SuperCommandParams
	subcmds map[string]Command
	subcmd  Command

	logConfig string
	verbose   bool
}

// NewSuperCommand creates and initializes a new SuperCommand.
func NewSuperCommand(p SuperCommandParams) *SuperCommand {
	return &SuperCommand{
		params:  p,
		subcmds: make(map[string]Command),
	}
}

// Register makes a subcommand available for use on the command line.
func (c *SuperCommand) Register(subcmd Command) {
	name := subcmd.Info().Name
	if _, found := c.subcmds[name]; found {
		panic(fmt.Sprintf("command already registered: %q", name))
	}
	c.subcmds[name] = subcmd
}

// Info is part of the Command interface.
func (c *SuperCommand) Info() *Info {
	if c.subcmd != nil {
		info := *c.subcmd.Info()
		info.Name = fmt.Sprintf("%s %s", c.params.Name, info.Name)
		return &info
	}
	return &Info{
		Name:    c.params.Name,
		Args:    "<command> ...",
		Purpose: c.params.Purpose,
		Doc:     strings.TrimSpace(c.params.Doc) + "\n\n" + c.describeCommands(),
	}
}

func (c *SuperCommand) describeCommands() string {
	names := make([]string, 0, len(c.subcmds))
	longest := 0
	for name := range c.subcmds {
		names = append(names, name)
		if len(name) > longest {
			longest = len(name)
		}
	}
	sort.Strings(names)
	lines := []string{"Commands:"}
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("    %-*s - %s", longest, name, c.subcmds[name].Info().Purpose))
	}
	return strings.Join(lines, "\n")
}

// SetFlags is part of the Command interface.
// Once a subcommand is selected only its flags are added.
func (c *SuperCommand) SetFlags(f *gnuflag.FlagSet) {
	if c.subcmd != nil {
		c.subcmd.SetFlags(f)
		return
	}
	f.StringVar(&c.logConfig, "logging-config", "", "Specify log levels for modules")
	f.BoolVar(&c.verbose, "verbose", false, "Show more verbose output")
	f.BoolVar(&c.verbose, "v", false, "")
}

// Init is part of the Command interface. It selects the subcommand named
// by the first argument and parses the remaining arguments with it.
func (c *SuperCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("no command specified")
	}
	subcmd, found := c.subcmds[args[0]]
	if !found {
		return errors.Errorf("unrecognized command: %s %s", c.params.Name, args[0])
	}
	c.subcmd = subcmd
	f := NewFlagSet(c)
	if err := f.Parse(subcmd.Info().Intersperse, args[1:]); err != nil {
		return err
	}
	return c.subcmd.Init(f.Args())
}

// Run is part of the Command interface.
func (c *SuperCommand) Run(ctx *Context) error {
	if c.subcmd == nil {
		return errors.New("no command specified")
	}
	config := c.logConfig
	if config == "" && c.verbose {
		config = "<root>=DEBUG"
	}
	if config != "" {
		if err := loggo.ConfigureLoggers(config); err != nil {
			return errors.Annotate(err, "configuring loggers")
		}
	}
	logger.Infof("running %s [%s %s %s]", c.subcmd.Info().Name, c.params.Version, runtime.Compiler, runtime.Version())
	return c.subcmd.Run(ctx)
}
