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
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"go.soia-lang.org/soia/compiler"
	"go.soia-lang.org/soia/encoding/soiatext"
)

type cmdCompile struct {
	env     *env
	root    string
	outPath string
	format  string
}

func (*cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile",
		summary: "Check every module under the root and print the resolved schema",
	}
}

func (cmd *cmdCompile) flags(flags *pflag.FlagSet) {
	flags.StringVar(&cmd.root, "root", ".", "Project directory, containing soia.yml or the modules themselves")
	flags.StringVarP(&cmd.outPath, "output", "o", "", "Write the schema to this file instead of stdout")
	flags.StringVarP(&cmd.format, "format", "f", "text", "Output format: 'text' or 'yaml'")
}

func (cmd *cmdCompile) run(ctx context.Context, argv []string) int {
	e := cmd.env
	if len(argv) > 0 {
		e.printf("Unexpected argument %q (use --root= to select the project)\n", argv[0])
		return 1
	}
	switch cmd.format {
	case "text", "soiatext", "yaml":
	default:
		e.printf("Unsupported output format %q\n", cmd.format)
		return 1
	}

	cfg, err := loadConfig(e.fs, cmd.root)
	if err != nil {
		e.printf("%v\n", err)
		return 1
	}
	results, err := e.compileRoot(cfg)
	if err != nil {
		e.printf("%v\n", err)
		return 1
	}
	if n := newDiagnosticPrinter(e).printResults(cfg.Root, results); n > 0 {
		e.printf("%d error(s)\n", n)
		return 1
	}

	output, err := renderSchema(results, cmd.format)
	if err != nil {
		e.printf("%v\n", err)
		return 1
	}
	if cmd.outPath == "" {
		if _, err := fmt.Fprint(e.stdout, output); err != nil {
			e.printf("%v\n", err)
			return 1
		}
		return 0
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	fp, err := e.fs.OpenFile(cmd.outPath, openFlags, 0o666)
	if err != nil {
		e.printf("%v\n", err)
		return 1
	}
	_, writeErr := fp.WriteString(output)
	closeErr := fp.Close()
	if writeErr != nil {
		e.printf("%v\n", writeErr)
		return 1
	}
	if closeErr != nil {
		e.printf("%v\n", closeErr)
		return 1
	}
	return 0
}

func renderSchema(results []*compiler.Result, format string) (string, error) {
	if format == "yaml" {
		out, err := yaml.Marshal(newSchemaDoc(results))
		if err != nil {
			return "", fmt.Errorf("encoding schema as YAML: %w", err)
		}
		return string(out), nil
	}
	var buf strings.Builder
	for _, result := range results {
		if result.Module == nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		if err := soiatext.EncodeTo(result.Module, &buf); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
