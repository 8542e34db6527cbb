// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"gopkg.in/yaml.v3"
)

// Formatter writes an arbitrary value to w.
type Formatter func(w io.Writer, value interface{}) error

// FormatYaml writes value to w yaml-formatted, unless value is nil.
func FormatYaml(w io.Writer, value interface{}) error {
	if value == nil {
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(enc.Close())
}

// FormatJson writes value to w json-formatted, followed by a newline.
func FormatJson(w io.Writer, value interface{}) error {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return errors.Trace(err)
}

// DefaultFormatters holds the formatters every command supports.
var DefaultFormatters = map[string]Formatter{
	"yaml": FormatYaml,
	"json": FormatJson,
}

// formatChoice is the gnuflag.Value behind --format.
type formatChoice struct {
	selected string
	choices  map[string]Formatter
}

func newFormatChoice(selected string, choices map[string]Formatter) *formatChoice {
	v := &formatChoice{choices: choices}
	if err := v.Set(selected); err != nil {
		panic(err)
	}
	return v
}

// Set selects the named formatter.
func (v *formatChoice) Set(name string) error {
	if _, ok := v.choices[name]; !ok {
		return errors.Errorf("unknown format %q", name)
	}
	v.selected = name
	return nil
}

func (v *formatChoice) String() string {
	return v.selected
}

func (v *formatChoice) usage() string {
	names := make([]string, 0, len(v.choices))
	for name := range v.choices {
		names = append(names, name)
	}
	sort.Strings(names)
	return "Specify output format (" + strings.Join(names, "|") + ")"
}

// Output handles the --format and --output flags of a command, writing
// results to stdout unless a file is named.
type Output struct {
	format  *formatChoice
	outPath string
}

// AddFlags registers --format, -o and --output on f.
func (c *Output) AddFlags(f *gnuflag.FlagSet, defaultFormat string, formatters map[string]Formatter) {
	c.format = newFormatChoice(defaultFormat, formatters)
	f.Var(c.format, "format", c.format.usage())
	f.StringVar(&c.outPath, "o", "", "Specify an output file")
	f.StringVar(&c.outPath, "output", "", "")
}

// Name returns the name of the chosen formatter.
func (c *Output) Name() string {
	return c.format.selected
}

// Write formats value with the selected formatter.
func (c *Output) Write(ctx *Context, value interface{}) (err error) {
	var target io.Writer = ctx.Stdout
	if c.outPath != "" {
		f, err := os.Create(ctx.AbsPath(c.outPath))
		if err != nil {
			return errors.Trace(err)
		}
		defer func() {
			if closeErr := f.Close(); err == nil {
				err = errors.Trace(closeErr)
			}
		}()
		target = f
	}
	return errors.Trace(c.format.choices[c.format.selected](target, value))
}
