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
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"go.soia-lang.org/soia/compiler"
)

const (
	yamlConfigName = "soia.yml"
	tomlConfigName = "soia.toml"
)

// projectConfig is read from soia.yml or soia.toml in the project directory.
type projectConfig struct {
	Root       string            `yaml:"root" toml:"root"`
	Extension  string            `yaml:"extension" toml:"extension"`
	Compiler   string            `yaml:"compiler" toml:"compiler"`
	Generators []generatorConfig `yaml:"generators" toml:"generators"`

	path string
}

type generatorConfig struct {
	Plugin string `yaml:"plugin" toml:"plugin"`
	Out    string `yaml:"out" toml:"out"`
}

// loadConfig reads the project file in dir. Without one, dir itself is the
// module root. Paths in the file are relative to dir.
func loadConfig(fsys afero.Fs, dir string) (*projectConfig, error) {
	cfg := &projectConfig{}
	found, err := loadYamlConfig(fsys, filepath.Join(dir, yamlConfigName), cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		if _, err := loadTomlConfig(fsys, filepath.Join(dir, tomlConfigName), cfg); err != nil {
			return nil, err
		}
	}

	cfg.Root = filepath.Join(dir, filepath.FromSlash(cfg.Root))
	if cfg.Extension == "" {
		cfg.Extension = compiler.DefaultExtension
	}
	if !strings.HasPrefix(cfg.Extension, ".") {
		return nil, fmt.Errorf("%s: extension %q must start with '.'", cfg.describe(), cfg.Extension)
	}
	if err := checkCompilerVersion(cfg.Compiler); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.describe(), err)
	}
	for ii := range cfg.Generators {
		gen := &cfg.Generators[ii]
		if gen.Plugin == "" || gen.Out == "" {
			return nil, fmt.Errorf("%s: generator %d needs both plugin and out", cfg.describe(), ii)
		}
		gen.Plugin = filepath.Join(dir, filepath.FromSlash(gen.Plugin))
		gen.Out = filepath.Join(dir, filepath.FromSlash(gen.Out))
	}
	return cfg, nil
}

func (cfg *projectConfig) describe() string {
	if cfg.path == "" {
		return "command line"
	}
	return cfg.path
}

func loadYamlConfig(fsys afero.Fs, path string, cfg *projectConfig) (bool, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	cfg.path = path
	return true, nil
}

func loadTomlConfig(fsys afero.Fs, path string, cfg *projectConfig) (bool, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return false, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return false, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("root") && strings.TrimSpace(cfg.Root) == "" {
		return false, fmt.Errorf("%s: root must not be empty", path)
	}
	cfg.path = path
	return true, nil
}

// checkCompilerVersion checks this compiler against the semver constraint a
// project places on it, such as ">= 0.1, < 1".
func checkCompilerVersion(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid compiler constraint %q: %w", constraint, err)
	}
	if !c.Check(semver.MustParse(version)) {
		return fmt.Errorf("project requires compiler %s, but this is soiac %s", constraint, version)
	}
	return nil
}
