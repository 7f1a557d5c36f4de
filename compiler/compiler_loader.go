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

package compiler

import (
	"errors"
	"io/fs"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// A ModuleReader loads the source of a module given its root-relative path.
// A module that does not exist is reported with ok == false and a nil error.
type ModuleReader interface {
	ReadModule(modulePath string) (src string, ok bool, err error)
}

// A ModuleSource is a ModuleReader that can also enumerate its modules.
type ModuleSource interface {
	ModuleReader
	ListModules(extension string) ([]string, error)
}

// FsReader reads modules from a filesystem whose root is the module root.
// Use afero.NewBasePathFs to serve a directory of the host filesystem.
type FsReader struct {
	fs afero.Fs
}

var _ ModuleSource = (*FsReader)(nil)

func NewFsReader(fs afero.Fs) *FsReader {
	return &FsReader{fs: fs}
}

func (r *FsReader) ReadModule(modulePath string) (string, bool, error) {
	data, err := afero.ReadFile(r.fs, filepath.FromSlash(modulePath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// ListModules returns the root-relative paths of every file with the given
// extension, sorted. Files and directories whose name starts with a dot are
// skipped.
func (r *FsReader) ListModules(extension string) ([]string, error) {
	var paths []string
	err := afero.Walk(r.fs, ".", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p != "." && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), extension) {
			return nil
		}
		paths = append(paths, filepath.ToSlash(p))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

// MapReader serves modules from memory, keyed by path.
type MapReader map[string]string

var _ ModuleSource = MapReader(nil)

func (m MapReader) ReadModule(modulePath string) (string, bool, error) {
	src, ok := m[modulePath]
	return src, ok, nil
}

func (m MapReader) ListModules(extension string) ([]string, error) {
	var paths []string
	for _, p := range slices.Sorted(maps.Keys(m)) {
		if strings.HasSuffix(p, extension) {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// resolveImportPath returns the root-relative path of a module imported by
// another. Paths starting with "./" or "../" are relative to the importing
// module; other paths are relative to the root.
func resolveImportPath(importer, target string) (string, bool) {
	var p string
	if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
		p = path.Join(path.Dir(importer), target)
	} else {
		p = path.Clean(target)
	}
	if p == "." || p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p) {
		return "", false
	}
	return p, true
}
