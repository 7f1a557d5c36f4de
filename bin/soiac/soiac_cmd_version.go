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

	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

type cmdVersion struct {
	env *env
}

func (*cmdVersion) help() *commandHelp {
	return &commandHelp{
		usage:   "version",
		summary: "Print the compiler version",
	}
}

func (*cmdVersion) flags(flags *pflag.FlagSet) {}

func (cmd *cmdVersion) run(ctx context.Context, argv []string) int {
	v := color.New(color.FgGreen, color.Bold)
	if !cmd.env.color {
		v.DisableColor()
	}
	v.Fprintf(cmd.env.stdout, "soiac %s\n", version)
	return 0
}
