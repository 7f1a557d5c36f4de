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
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const version = "0.1.0"

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
}

// env is the process state shared by every command.
type env struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	log    *logrus.Logger
	color  bool
}

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	e := &env{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    log,
		color:  !color.NoColor,
	}
	os.Exit(run(context.Background(), e, os.Args[1:]))
}

func run(ctx context.Context, e *env, args []string) int {
	exitCode := 0
	var verbose bool

	soiacCmd := &cobra.Command{
		Use:           "soiac [options] COMMAND",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	soiacCmd.SetOut(e.stdout)
	soiacCmd.SetErr(e.stderr)
	soiacCmd.SetArgs(args)
	soiacCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log resolver activity")
	soiacCmd.PersistentPreRun = func(*cobra.Command, []string) {
		if verbose {
			e.log.SetLevel(logrus.DebugLevel)
		}
	}
	soiacCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(e.stderr, soiacCmd.UsageString())
		exitCode = 1
		return nil
	}

	commands := []command{
		&cmdCompile{env: e},
		&cmdCheck{env: e},
		&cmdWatch{env: e},
		&cmdCodegen{env: e},
		&cmdVersion{env: e},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			RunE: func(_ *cobra.Command, args []string) error {
				exitCode = cmd.run(ctx, args)
				return nil
			},
		}
		soiacCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	if err := soiacCmd.ExecuteContext(ctx); err != nil {
		e.printf("%v\n", err)
		return 1
	}
	return exitCode
}

func (e *env) printf(format string, a ...any) {
	fmt.Fprintf(e.stderr, format, a...)
}
