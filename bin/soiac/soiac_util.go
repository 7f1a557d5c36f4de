// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"go.soia-lang.org/soia/compiler"
	"go.soia-lang.org/soia/syntax"
)

func splitPath(path string) []string {
	var out []string
	for {
		dir, file := filepath.Split(path)
		if dir == "" {
			out = append(out, file)
			slices.Reverse(out)
			return out
		}
		out = append(out, file)
		path = dir[:len(dir)-1]
	}
}

// isHidden reports whether any component of a relative path starts with a
// dot, as in ".git/config".
func isHidden(path string) bool {
	for _, part := range splitPath(filepath.Clean(path)) {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// rootFs returns a filesystem whose root is the module root directory.
func rootFs(fsys afero.Fs, root string) afero.Fs {
	if filepath.Clean(root) == "." {
		return fsys
	}
	return afero.NewBasePathFs(fsys, root)
}

// compileRoot resolves every module under the configured root, in path
// order.
func (e *env) compileRoot(cfg *projectConfig) ([]*compiler.Result, error) {
	source := compiler.NewFsReader(rootFs(e.fs, cfg.Root))
	paths, err := source.ListModules(cfg.Extension)
	if err != nil {
		return nil, fmt.Errorf("listing modules in %s: %w", cfg.Root, err)
	}
	resolver := compiler.NewResolver(
		cfg.Root,
		source,
		compiler.WithLogger(e.log),
		compiler.WithExtension(cfg.Extension),
	)
	results := make([]*compiler.Result, 0, len(paths))
	for _, modulePath := range paths {
		results = append(results, resolver.ParseAndResolve(modulePath))
	}
	return results, nil
}

type diagnosticPrinter struct {
	w        io.Writer
	location *color.Color
	code     *color.Color
}

func newDiagnosticPrinter(e *env) *diagnosticPrinter {
	p := &diagnosticPrinter{
		w:        e.stderr,
		location: color.New(color.Bold),
		code:     color.New(color.FgRed, color.Bold),
	}
	if !e.color {
		p.location.DisableColor()
		p.code.DisableColor()
	}
	return p
}

// print writes one "path:line:column: E<code>: message" line per error, with
// paths relative to the working directory. It returns the number of errors.
func (p *diagnosticPrinter) print(root string, errs []*syntax.Error) int {
	for _, err := range errs {
		location := filepath.Join(root, filepath.FromSlash(err.Location()))
		p.location.Fprintf(p.w, "%s:", location)
		p.code.Fprintf(p.w, " E%d:", err.Code())
		fmt.Fprintf(p.w, " %s\n", err.Message())
	}
	return len(errs)
}

func (p *diagnosticPrinter) printResults(root string, results []*compiler.Result) int {
	var n int
	for _, result := range results {
		n += p.print(root, result.Errors)
	}
	return n
}
