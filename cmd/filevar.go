// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"io"
	"os"

	"github.com/juju/errors"
)

// FileVar represents a path to a file. A path of "-" reads from stdin.
type FileVar struct {
	Path string
}

// Set is part of the gnuflag.Value interface.
func (f *FileVar) Set(v string) error {
	f.Path = v
	return nil
}

// String is part of the gnuflag.Value interface.
func (f *FileVar) String() string {
	return f.Path
}

// Open returns a io.ReadCloser to the file relative to the context.
func (f *FileVar) Open(ctx *Context) (io.ReadCloser, error) {
	if f.Path == "" {
		return nil, errors.NotValidf("empty path")
	}
	if f.Path == "-" {
		return io.NopCloser(ctx.Stdin), nil
	}
	file, err := os.Open(ctx.AbsPath(f.Path))
	return file, errors.Trace(err)
}

// Read returns the contents of the file.
func (f *FileVar) Read(ctx *Context) ([]byte, error) {
	r, err := f.Open(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	return data, errors.Trace(err)
}
