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
	"go.soia-lang.org/soia/compiler"
	"go.soia-lang.org/soia/syntax"
)

// schemaDoc is the resolved schema in the form written by "compile
// --format=yaml" and sent to code generator plugins.
type schemaDoc struct {
	Compiler string      `yaml:"compiler" msgpack:"compiler"`
	Modules  []moduleDoc `yaml:"modules" msgpack:"modules"`
}

type moduleDoc struct {
	Path       string         `yaml:"path" msgpack:"path"`
	Imports    []importDoc    `yaml:"imports,omitempty" msgpack:"imports"`
	Records    []recordDoc    `yaml:"records,omitempty" msgpack:"records"`
	Procedures []procedureDoc `yaml:"procedures,omitempty" msgpack:"procedures"`
	Constants  []constantDoc  `yaml:"constants,omitempty" msgpack:"constants"`
}

type importDoc struct {
	Path  string   `yaml:"path" msgpack:"path"`
	Alias string   `yaml:"alias,omitempty" msgpack:"alias,omitempty"`
	Names []string `yaml:"names,omitempty" msgpack:"names,omitempty"`
}

type recordDoc struct {
	Key       string     `yaml:"key" msgpack:"key"`
	Name      string     `yaml:"name" msgpack:"name"`
	Kind      string     `yaml:"kind" msgpack:"kind"`
	Numbering string     `yaml:"numbering" msgpack:"numbering"`
	Removed   []int32    `yaml:"removed,omitempty" msgpack:"removed,omitempty"`
	Fields    []fieldDoc `yaml:"fields,omitempty" msgpack:"fields"`
}

type fieldDoc struct {
	Name      string `yaml:"name" msgpack:"name"`
	Number    int32  `yaml:"number" msgpack:"number"`
	Type      string `yaml:"type,omitempty" msgpack:"type,omitempty"`
	TypeKey   string `yaml:"type_key,omitempty" msgpack:"type_key,omitempty"`
	KeyType   string `yaml:"key_type,omitempty" msgpack:"key_type,omitempty"`
	Recursive bool   `yaml:"recursive,omitempty" msgpack:"recursive,omitempty"`
}

type procedureDoc struct {
	Name     string `yaml:"name" msgpack:"name"`
	Number   uint32 `yaml:"number" msgpack:"number"`
	Request  string `yaml:"request" msgpack:"request"`
	Response string `yaml:"response" msgpack:"response"`
}

type constantDoc struct {
	Name  string `yaml:"name" msgpack:"name"`
	Type  string `yaml:"type" msgpack:"type"`
	Value any    `yaml:"value" msgpack:"value"`
}

func newSchemaDoc(results []*compiler.Result) *schemaDoc {
	doc := &schemaDoc{Compiler: version}
	for _, result := range results {
		if result.Module != nil {
			doc.Modules = append(doc.Modules, newModuleDoc(result.Module))
		}
	}
	return doc
}

func newModuleDoc(module *compiler.Module) moduleDoc {
	doc := moduleDoc{Path: module.Path()}
	imported := module.PathToImportedNames()
	for _, modulePath := range module.ImportedModulePaths() {
		names := imported[modulePath]
		doc.Imports = append(doc.Imports, importDoc{
			Path:  modulePath,
			Alias: names.Alias(),
			Names: names.Names(),
		})
	}
	for _, record := range module.Records() {
		rd := recordDoc{
			Key:       string(record.Key()),
			Name:      record.QualifiedName(),
			Kind:      record.Kind().String(),
			Numbering: record.Numbering().String(),
			Removed:   record.RemovedNumbers(),
		}
		for _, field := range record.Fields() {
			rd.Fields = append(rd.Fields, newFieldDoc(field))
		}
		doc.Records = append(doc.Records, rd)
	}
	for _, procedure := range module.Procedures() {
		doc.Procedures = append(doc.Procedures, procedureDoc{
			Name:     procedure.Name(),
			Number:   procedure.Number(),
			Request:  typeString(procedure.RequestType()),
			Response: typeString(procedure.ResponseType()),
		})
	}
	for _, constant := range module.Constants() {
		doc.Constants = append(doc.Constants, constantDoc{
			Name:  constant.Name(),
			Type:  typeString(constant.Type()),
			Value: valueDoc(constant.Value()),
		})
	}
	return doc
}

func newFieldDoc(field *compiler.Field) fieldDoc {
	doc := fieldDoc{
		Name:      field.Name(),
		Number:    field.Number(),
		Recursive: field.IsRecursive(),
	}
	t := field.Type()
	if t == nil {
		return doc
	}
	doc.Type = t.String()
	for {
		switch tt := t.(type) {
		case *compiler.NullableType:
			t = tt.Value()
			continue
		case *compiler.ArrayType:
			if keyPath := tt.KeyPath(); keyPath != nil && keyPath.KeyType() != nil {
				doc.KeyType = keyPath.KeyType().String()
			}
			t = tt.Item()
			continue
		case *compiler.RecordRefType:
			doc.TypeKey = string(tt.Key())
		}
		return doc
	}
}

func typeString(t compiler.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// valueDoc converts a constant's value to plain maps, slices and literal
// strings. Literals keep their source spelling.
func valueDoc(value syntax.Value) any {
	switch value := value.(type) {
	case *syntax.LiteralValue:
		return value.Token().Text()
	case *syntax.ArrayValue:
		items := make([]any, 0, len(value.Items()))
		for _, item := range value.Items() {
			items = append(items, valueDoc(item))
		}
		return items
	case *syntax.ObjectValue:
		entries := make(map[string]any, len(value.Entries()))
		for _, entry := range value.Entries() {
			entries[entry.Name().Text()] = valueDoc(entry.Value())
		}
		return entries
	}
	panic("unreachable")
}
