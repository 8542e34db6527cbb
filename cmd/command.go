// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package cmd holds the small command framework used by the hpc-libs
// command line tools.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("hpc.cmd")

// ErrSilent can be returned from Run to signal that Main should exit with
// code 1 without producing error output.
const ErrSilent = errors.ConstError("cmd: error out silently")

// Context represents the run context of a Command. Command implementations
// should interpret file names relative to Dir (see AbsPath below), and print
// output and errors to Stdout and Stderr respectively.
type Context struct {
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultContext returns a Context suitable for use in non-hosted
// situations.
func DefaultContext() (*Context, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Trace(err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Context{
		Dir:    abs,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// AbsPath returns an absolute representation of path, with relative paths
// interpreted as relative to ctx.Dir.
func (ctx *Context) AbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ctx.Dir, path)
}

// Info describes a command for usage and help output.
type Info struct {
	Name    string
	Args    string
	Purpose string
	Doc     string

	// Intersperse allows flags after positional arguments.
	Intersperse bool
}

// Usage returns the one line usage of the command.
func (i *Info) Usage() string {
	if i.Args == "" {
		return i.Name
	}
	return fmt.Sprintf("%s %s", i.Name, i.Args)
}

// Command is implemented by types that interpret command-line arguments.
type Command interface {
	Info() *Info

	// SetFlags adds command specific flags to the flag set.
	SetFlags(f *gnuflag.FlagSet)

	// Init initializes the command from the positional arguments left
	// once the flags were parsed.
	Init(args []string) error

	// Run runs the command once Parse succeeded.
	Run(ctx *Context) error
}

// NewFlagSet returns a flag set holding the flags of c.
func NewFlagSet(c Command) *gnuflag.FlagSet {
	f := gnuflag.NewFlagSet(c.Info().Name, gnuflag.ContinueOnError)
	f.SetOutput(io.Discard)
	c.SetFlags(f)
	return f
}

// PrintUsage prints usage information for c to w.
func PrintUsage(c Command, w io.Writer) {
	i := c.Info()
	fmt.Fprintf(w, "Usage: %s\n", i.Usage())
	fmt.Fprintf(w, "\nSummary:\n%s\n", i.Purpose)
	f := NewFlagSet(c)
	f.SetOutput(w)
	fmt.Fprintf(w, "\nOptions:\n")
	f.PrintDefaults()
	if i.Doc != "" {
		fmt.Fprintf(w, "\nDetails:\n%s\n", strings.TrimSpace(i.Doc))
	}
}

// Parse applies args to the flags of c and initializes it with the
// remaining positional arguments.
func Parse(c Command, args []string) error {
	f := NewFlagSet(c)
	if err := f.Parse(c.Info().Intersperse, args); err != nil {
		return err
	}
	return c.Init(f.Args())
}

// CheckEmpty fails if any positional argument is left.
func CheckEmpty(args []string) error {
	if len(args) != 0 {
		return errors.Errorf("unrecognized args: %q", args)
	}
	return nil
}

// Main runs the Command specified by c, with the supplied arguments, and
// returns the exit code.
func Main(c Command, ctx *Context, args []string) int {
	if err := Parse(c, args); err != nil {
		if errors.Is(err, gnuflag.ErrHelp) {
			PrintUsage(c, ctx.Stdout)
			return 0
		}
		fmt.Fprintf(ctx.Stderr, "ERROR %v\n", err)
		PrintUsage(c, ctx.Stderr)
		return 2
	}
	if err := c.Run(ctx); err != nil {
		if errors.Is(err, ErrSilent) {
			return 1
		}
		logger.Debugf("%s command failed: %s", c.Info().Name, errors.ErrorStack(err))
		fmt.Fprintf(ctx.Stderr, "ERROR %v\n", err)
		return 1
	}
	return 0
}
