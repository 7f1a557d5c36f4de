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
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

type cmdWatch struct {
	env  *env
	root string
}

func (*cmdWatch) help() *commandHelp {
	return &commandHelp{
		usage:   "watch",
		summary: "Check the modules under the root again whenever one changes",
	}
}

func (cmd *cmdWatch) flags(flags *pflag.FlagSet) {
	flags.StringVar(&cmd.root, "root", ".", "Project directory, containing soia.yml or the modules themselves")
}

func (cmd *cmdWatch) run(ctx context.Context, argv []string) int {
	e := cmd.env
	cfg, err := loadConfig(e.fs, cmd.root)
	if err != nil {
		e.printf("%v\n", err)
		return 1
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		e.printf("%v\n", err)
		return 1
	}
	defer watcher.Close()
	if err := watchDirs(e.fs, watcher, cfg.Root); err != nil {
		e.printf("%v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	check := func() {
		results, err := e.compileRoot(cfg)
		if err != nil {
			e.printf("%v\n", err)
			return
		}
		if n := newDiagnosticPrinter(e).printResults(cfg.Root, results); n > 0 {
			e.printf("%d error(s)\n", n)
			return
		}
		fmt.Fprintf(e.stdout, "%d module(s) OK\n", len(results))
	}
	check()

	w := &watchLoop{
		events:    watcher.Events,
		errors:    watcher.Errors,
		extension: cfg.Extension,
		log:       e.log,
		onChange:  check,
		onNewDir: func(dir string) {
			if err := watchDirs(e.fs, watcher, dir); err != nil {
				e.log.WithError(err).WithField("dir", dir).Warn("Cannot watch directory")
			}
		},
	}
	w.run(ctx)
	return 0
}

// watchDirs adds root and every directory below it to the watcher, except
// hidden ones. A root that is not a directory is ignored.
func watchDirs(fsys afero.Fs, watcher *fsnotify.Watcher, root string) error {
	return afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(root, p); isHidden(rel) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

type watchLoop struct {
	events    <-chan fsnotify.Event
	errors    <-chan error
	extension string
	log       logrus.FieldLogger
	onChange  func()
	onNewDir  func(dir string)
}

// run reacts to filesystem events until ctx is done or the watcher is
// closed. Each batch of events that is already queued triggers one
// onChange.
func (w *watchLoop) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.events:
			if !ok {
				return
			}
			changed, open := w.drain(ev)
			if changed {
				w.onChange()
			}
			if !open {
				return
			}
		case err, ok := <-w.errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("Watcher error")
		}
	}
}

// drain handles ev and every event already queued behind it. It reports
// whether any module changed, and whether the watcher is still open.
func (w *watchLoop) drain(ev fsnotify.Event) (changed, open bool) {
	changed = w.handle(ev)
	for {
		select {
		case ev, ok := <-w.events:
			if !ok {
				return changed, false
			}
			changed = w.handle(ev) || changed
		default:
			return changed, true
		}
	}
}

func (w *watchLoop) handle(ev fsnotify.Event) bool {
	if isHidden(filepath.Base(ev.Name)) {
		return false
	}
	if ev.Has(fsnotify.Create) && w.onNewDir != nil {
		w.onNewDir(ev.Name)
	}
	if !strings.HasSuffix(ev.Name, w.extension) {
		return false
	}
	if ev.Op == fsnotify.Chmod {
		return false
	}
	w.log.WithFields(logrus.Fields{
		"path": ev.Name,
		"op":   ev.Op.String(),
	}).Debug("Module changed")
	return true
}
