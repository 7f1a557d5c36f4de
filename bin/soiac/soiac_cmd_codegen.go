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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	wasm "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	pluginAllocate = "soia_codegen_allocate"
	pluginGenerate = "soia_codegen_generate"
)

type codegenRequest struct {
	Schema *schemaDoc `msgpack:"schema"`
}

type codegenResponse struct {
	Error       string       `msgpack:"error"`
	OutputFiles []outputFile `msgpack:"output_files"`
}

type outputFile struct {
	Path    []string `msgpack:"path"`
	Content []byte   `msgpack:"content"`
}

type cmdCodegen struct {
	env        *env
	root       string
	outDir     string
	pluginPath string
}

func (*cmdCodegen) help() *commandHelp {
	return &commandHelp{
		usage:   "codegen",
		summary: "Run code generator plugins over the resolved schema",
	}
}

func (cmd *cmdCodegen) flags(flags *pflag.FlagSet) {
	flags.StringVar(&cmd.root, "root", ".", "Project directory, containing soia.yml or the modules themselves")
	flags.StringVarP(&cmd.outDir, "output", "o", "", "Directory for the generated files")
	flags.StringVar(&cmd.pluginPath, "plugin", "", "Generator plugin (.wasm), instead of those in soia.yml")
}

func (cmd *cmdCodegen) run(ctx context.Context, argv []string) int {
	e := cmd.env
	cfg, err := loadConfig(e.fs, cmd.root)
	if err != nil {
		e.printf("%v\n", err)
		return 1
	}
	generators := cfg.Generators
	if cmd.pluginPath != "" {
		if cmd.outDir == "" {
			e.printf("No output directory specified (set --output=)\n")
			return 1
		}
		generators = []generatorConfig{{Plugin: cmd.pluginPath, Out: cmd.outDir}}
	}
	if len(generators) == 0 {
		e.printf("No plugin specified (set --plugin= or add generators to %s)\n", yamlConfigName)
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
	requestBuf, err := msgpack.Marshal(&codegenRequest{Schema: newSchemaDoc(results)})
	if err != nil {
		e.printf("%v\n", err)
		return 1
	}

	for _, gen := range generators {
		log := e.log.WithField("plugin", gen.Plugin)
		pluginBin, err := afero.ReadFile(e.fs, gen.Plugin)
		if err != nil {
			e.printf("%v\n", err)
			return 1
		}
		log.Debug("Running plugin")
		response, err := cmd.runPlugin(ctx, pluginBin, requestBuf)
		if err != nil {
			e.printf("%s: %v\n", gen.Plugin, err)
			return 1
		}
		if err := writeOutputFiles(e.fs, gen.Out, response.OutputFiles); err != nil {
			e.printf("%s: %v\n", gen.Plugin, err)
			return 1
		}
		log.WithField("files", len(response.OutputFiles)).Debug("Plugin finished")
	}
	return 0
}

// runPlugin instantiates a generator compiled to WebAssembly and passes it
// the request. The plugin writes the address of its response to a pointer
// allocated by the host. The response is a little-endian uint32 length
// followed by that many bytes of msgpack.
func (cmd *cmdCodegen) runPlugin(ctx context.Context, pluginBin, requestBuf []byte) (*codegenResponse, error) {
	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(16384)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)

	pluginExe, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, err
	}
	moduleConfig := wasm.NewModuleConfig().WithStderr(cmd.env.stderr)
	plugin, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		return nil, err
	}
	mem := plugin.Memory()

	wasmAlloc := plugin.ExportedFunction(pluginAllocate)
	wasmGenerate := plugin.ExportedFunction(pluginGenerate)
	if wasmAlloc == nil || wasmGenerate == nil {
		return nil, fmt.Errorf("plugin does not export %s and %s", pluginAllocate, pluginGenerate)
	}

	results, err := wasmAlloc.Call(ctx, uint64(len(requestBuf)))
	if err != nil {
		return nil, err
	}
	requestPtr := results[0]
	if !mem.Write(uint32(requestPtr), requestBuf) {
		return nil, errors.New("Failed to write request message")
	}

	results, err = wasmAlloc.Call(ctx, 4)
	if err != nil {
		return nil, err
	}
	responsePtrPtr := uint32(results[0])

	results, err = wasmGenerate.Call(ctx, requestPtr, uint64(len(requestBuf)), uint64(responsePtrPtr))
	if err != nil {
		return nil, err
	}
	rc := uint8(results[0])

	responsePtr, _ := mem.ReadUint32Le(responsePtrPtr)
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, errors.New("Failed to read response message length")
	}
	responseBuf, ok := mem.Read(responsePtr+4, responseLen)
	if !ok {
		return nil, errors.New("Failed to read response message")
	}

	response := &codegenResponse{}
	if err := msgpack.Unmarshal(responseBuf, response); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if rc != 0 {
		return nil, errors.New(strings.TrimRight(response.Error, "\n"))
	}
	if len(response.OutputFiles) == 0 {
		return nil, errors.New("Plugin did not generate any output files")
	}
	return response, nil
}

func writeOutputFiles(fsys afero.Fs, outDir string, files []outputFile) error {
	if err := fsys.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, file := range files {
		outPath, err := outputPath(outDir, file.Path)
		if err != nil {
			return err
		}
		if err := fsys.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := afero.WriteFile(fsys, outPath, file.Content, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func outputPath(outDir string, parts []string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("Invalid output path %#v: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("Invalid output path %#v: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return "", fmt.Errorf("Invalid output path %#v: absolute path component %q", parts, part)
		}
		if strings.Contains(part, "/") {
			return "", fmt.Errorf("Invalid output path %#v: component %q contains '/'", parts, part)
		}
	}
	return filepath.Join(append([]string{outDir}, parts...)...), nil
}
