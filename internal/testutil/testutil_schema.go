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

package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// MemFs returns an in-memory filesystem populated with the given files. Keys
// are slash-separated paths relative to the filesystem root.
func MemFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		path = filepath.FromSlash(path)
		if dir := filepath.Dir(path); dir != "." {
			AssertNoError(t, fs.MkdirAll(dir, 0o755))
		}
		AssertNoError(t, afero.WriteFile(fs, path, []byte(Dedent(content)), 0o644))
	}
	return fs
}

// Dedent removes a leading newline and the indentation common to all
// non-blank lines, so that schemas can be written as indented raw strings.
func Dedent(src string) string {
	src = strings.TrimPrefix(src, "\n")
	lines := strings.Split(src, "\n")
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first || strings.HasPrefix(prefix, indent) {
			prefix = indent
			first = false
		}
	}
	for ii, line := range lines {
		lines[ii] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
