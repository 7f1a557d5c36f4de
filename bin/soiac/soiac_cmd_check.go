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
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/pflag"

	"go.soia-lang.org/soia/compiler"
)

type cmdCheck struct {
	env       *env
	jobs      int
	extension string
}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check ROOT...",
		summary: "Check independent module roots in parallel",
	}
}

func (cmd *cmdCheck) flags(flags *pflag.FlagSet) {
	flags.IntVarP(&cmd.jobs, "jobs", "j", runtime.NumCPU(), "Number of roots to check at once")
	flags.StringVar(&cmd.extension, "extension", compiler.DefaultExtension, "File extension of modules")
}

func (cmd *cmdCheck) run(ctx context.Context, argv []string) int {
	e := cmd.env
	if len(argv) == 0 {
		e.printf("No roots specified\n")
		return 1
	}
	newSource := func(root string) compiler.ModuleSource {
		return compiler.NewFsReader(rootFs(e.fs, root))
	}
	results, err := compiler.CheckAll(ctx, argv, cmd.jobs, newSource,
		compiler.WithLogger(e.log),
		compiler.WithExtension(cmd.extension),
	)
	if err != nil {
		e.printf("%v\n", err)
		return 1
	}

	printer := newDiagnosticPrinter(e)
	rc := 0
	for _, result := range results {
		n := printer.printResults(result.Root, result.Modules)
		fmt.Fprintf(e.stdout, "%s: %d module(s), %d error(s)\n", result.Root, len(result.Modules), n)
		if n > 0 {
			rc = 1
		}
	}
	return rc
}
