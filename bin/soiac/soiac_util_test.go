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
	"errors"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"go.soia-lang.org/soia/internal/testutil"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := loadConfig(afero.NewMemMapFs(), "proj")
	require.NoError(t, err)
	assert.Equal(t, "proj", cfg.Root)
	assert.Equal(t, ".soia", cfg.Extension)
	assert.Empty(t, cfg.Generators)
}

func TestLoadConfigYaml(t *testing.T) {
	t.Parallel()
	fs := testutil.MemFs(t, map[string]string{
		"proj/soia.yml": `
			root: schemas
			extension: .sa
			compiler: ">= 0.1, < 1"
			generators:
			  - plugin: plugins/gen.wasm
			    out: generated
		`,
	})
	cfg, err := loadConfig(fs, "proj")
	require.NoError(t, err)
	assert.Equal(t, "proj/schemas", cfg.Root)
	assert.Equal(t, ".sa", cfg.Extension)
	assert.Equal(t, []generatorConfig{
		{Plugin: "proj/plugins/gen.wasm", Out: "proj/generated"},
	}, cfg.Generators)
}

func TestLoadConfigToml(t *testing.T) {
	t.Parallel()
	fs := testutil.MemFs(t, map[string]string{
		"proj/soia.toml": `
			root = "schemas"
			compiler = "^0.1"

			[[generators]]
			plugin = "gen.wasm"
			out = "out"
		`,
	})
	cfg, err := loadConfig(fs, "proj")
	require.NoError(t, err)
	assert.Equal(t, "proj/schemas", cfg.Root)
	assert.Equal(t, ".soia", cfg.Extension)
	assert.Equal(t, []generatorConfig{
		{Plugin: "proj/gen.wasm", Out: "proj/out"},
	}, cfg.Generators)
}

func TestLoadConfigYamlTakesPrecedence(t *testing.T) {
	t.Parallel()
	fs := testutil.MemFs(t, map[string]string{
		"soia.yml":  "root: from_yaml\n",
		"soia.toml": "root = \"from_toml\"\n",
	})
	cfg, err := loadConfig(fs, ".")
	require.NoError(t, err)
	assert.Equal(t, "from_yaml", cfg.Root)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "unknown yaml key",
			files: map[string]string{"soia.yml": "rooot: x\n"},
			want:  "soia.yml: failed to parse YAML",
		},
		{
			name:  "unknown toml key",
			files: map[string]string{"soia.toml": "rooot = \"x\"\n"},
			want:  "soia.toml: unknown key rooot",
		},
		{
			name:  "empty toml root",
			files: map[string]string{"soia.toml": "root = \"\"\n"},
			want:  "soia.toml: root must not be empty",
		},
		{
			name:  "extension without dot",
			files: map[string]string{"soia.yml": "extension: soia\n"},
			want:  "soia.yml: extension \"soia\" must start with '.'",
		},
		{
			name:  "incompatible compiler",
			files: map[string]string{"soia.yml": "compiler: \">= 2\"\n"},
			want:  "soia.yml: project requires compiler >= 2, but this is soiac " + version,
		},
		{
			name:  "invalid constraint",
			files: map[string]string{"soia.yml": "compiler: \"not a version\"\n"},
			want:  "soia.yml: invalid compiler constraint",
		},
		{
			name:  "generator without out",
			files: map[string]string{"soia.yml": "generators:\n  - plugin: gen.wasm\n"},
			want:  "soia.yml: generator 0 needs both plugin and out",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadConfig(testutil.MemFs(t, test.files), ".")
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.want)
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()
	p, err := outputPath("out", []string{"pkg", "schema.go"})
	require.NoError(t, err)
	assert.Equal(t, "out/pkg/schema.go", p)

	for _, parts := range [][]string{
		nil,
		{""},
		{"."},
		{"pkg", ".."},
		{"/etc"},
		{"a/b"},
	} {
		_, err := outputPath("out", parts)
		assert.Error(t, err, parts)
	}
}

func TestWriteOutputFiles(t *testing.T) {
	t.Parallel()
	buf, err := msgpack.Marshal(&codegenResponse{
		OutputFiles: []outputFile{
			{Path: []string{"a.go"}, Content: []byte("package a\n")},
			{Path: []string{"sub", "b.go"}, Content: []byte("package sub\n")},
		},
	})
	require.NoError(t, err)
	var response codegenResponse
	require.NoError(t, msgpack.Unmarshal(buf, &response))

	fs := afero.NewMemMapFs()
	require.NoError(t, writeOutputFiles(fs, "gen", response.OutputFiles))
	a, err := afero.ReadFile(fs, "gen/a.go")
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(a))
	b, err := afero.ReadFile(fs, "gen/sub/b.go")
	require.NoError(t, err)
	assert.Equal(t, "package sub\n", string(b))

	err = writeOutputFiles(fs, "gen", []outputFile{{Path: []string{".."}}})
	assert.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b", "c.soia"}, splitPath("a/b/c.soia"))
	assert.False(t, isHidden("."))
	assert.False(t, isHidden("a/b.soia"))
	assert.False(t, isHidden("../a.soia"))
	assert.True(t, isHidden(".git"))
	assert.True(t, isHidden("a/.cache/b.soia"))
}

func newTestWatchLoop(events chan fsnotify.Event, errs chan error, log logrus.FieldLogger) (*watchLoop, *int, *[]string) {
	changes := 0
	var newDirs []string
	return &watchLoop{
		events:    events,
		errors:    errs,
		extension: ".soia",
		log:       log,
		onChange:  func() { changes++ },
		onNewDir:  func(dir string) { newDirs = append(newDirs, dir) },
	}, &changes, &newDirs
}

func TestWatchLoopBatchesEvents(t *testing.T) {
	t.Parallel()
	log, _ := logtest.NewNullLogger()
	events := make(chan fsnotify.Event, 8)
	events <- fsnotify.Event{Name: "a.soia", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "sub", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "b.soia", Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: ".a.soia.swp", Op: fsnotify.Create}
	close(events)

	w, changes, newDirs := newTestWatchLoop(events, nil, log)
	w.run(context.Background())
	assert.Equal(t, 1, *changes)
	assert.Equal(t, []string{"sub"}, *newDirs)
}

func TestWatchLoopIgnoresOtherFiles(t *testing.T) {
	t.Parallel()
	log, _ := logtest.NewNullLogger()
	events := make(chan fsnotify.Event, 2)
	events <- fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}
	close(events)

	w, changes, _ := newTestWatchLoop(events, nil, log)
	w.run(context.Background())
	assert.Equal(t, 0, *changes)
}

func TestWatchLoopLogsErrors(t *testing.T) {
	t.Parallel()
	log, hook := logtest.NewNullLogger()
	errs := make(chan error, 1)
	errs <- errors.New("overflow")
	close(errs)

	w, changes, _ := newTestWatchLoop(nil, errs, log)
	w.run(context.Background())
	assert.Equal(t, 0, *changes)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, "Watcher error", entry.Message)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
}

func TestWatchLoopStopsOnCancel(t *testing.T) {
	t.Parallel()
	log, _ := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w, changes, _ := newTestWatchLoop(make(chan fsnotify.Event), make(chan error), log)
	w.run(ctx)
	assert.Equal(t, 0, *changes)
}
