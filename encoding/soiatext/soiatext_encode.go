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

// Package soiatext renders a resolved module as indented text. The output is
// deterministic, for use in golden tests and by "soiac compile".
package soiatext

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.soia-lang.org/soia/compiler"
	"go.soia-lang.org/soia/syntax"
)

func Encode(module *compiler.Module) string {
	var buf strings.Builder
	EncodeTo(module, &buf)
	return buf.String()
}

func EncodeTo(module *compiler.Module, w io.Writer) error {
	e := encoder{w: w}
	e.visitModule(module)
	return e.err
}

type encoder struct {
	w      io.Writer
	indent int
	err    error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	if indent := strings.Repeat("\t", e.indent); indent != "" {
		if _, err := io.WriteString(e.w, indent); err != nil {
			e.err = err
			return
		}
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = err
		return
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		e.err = err
		return
	}
}

func (e *encoder) linef(format string, a ...any) {
	e.line(fmt.Sprintf(format, a...))
}

func (e *encoder) block(format string, a ...any) func() {
	e.linef(format+" {", a...)
	e.indent += 1
	return func() {
		e.indent -= 1
		e.line("}")
	}
}

func (e *encoder) visitModule(module *compiler.Module) {
	e.linef("module = %s", quote(module.Path()))
	imported := module.PathToImportedNames()
	for _, modulePath := range module.ImportedModulePaths() {
		names := imported[modulePath]
		end := e.block("import %s", quote(modulePath))
		if alias := names.Alias(); alias != "" {
			e.linef("alias = %s", quote(alias))
		} else {
			e.linef("names = %s", quoteList(names.Names()))
		}
		end()
	}
	for _, record := range module.Records() {
		e.visitRecord(record)
	}
	for _, procedure := range module.Procedures() {
		end := e.block("procedure %s", procedure.Name())
		e.linef("number = %d", procedure.Number())
		e.linef("request = %s", fmtType(procedure.RequestType()))
		e.linef("response = %s", fmtType(procedure.ResponseType()))
		end()
	}
	for _, constant := range module.Constants() {
		end := e.block("const %s", constant.Name())
		e.linef("type = %s", fmtType(constant.Type()))
		e.linef("value = %s", fmtValue(constant.Value()))
		end()
	}
}

func (e *encoder) visitRecord(record *compiler.Record) {
	end := e.block("%s %s", record.Kind(), record.QualifiedName())
	defer end()
	e.linef("numbering = .%s", record.Numbering())
	if removed := record.RemovedNumbers(); len(removed) > 0 {
		items := make([]string, len(removed))
		for ii, n := range removed {
			items[ii] = strconv.FormatInt(int64(n), 10)
		}
		e.linef("removed = [%s]", strings.Join(items, ", "))
	}
	for _, field := range record.Fields() {
		if field.IsConstant() {
			endField := e.block("constant %s", field.Name())
			e.linef("number = %d", field.Number())
			e.linef("accessor = %s", quote(syntax.ConvertCase(
				field.Name(), syntax.UpperUnderscore, syntax.UpperCamel,
			)))
			endField()
			continue
		}
		endField := e.block("field %s", field.Name())
		e.linef("number = %d", field.Number())
		e.linef("accessor = %s", quote(syntax.ConvertCase(
			field.Name(), syntax.LowerUnderscore, syntax.LowerCamel,
		)))
		e.linef("type = %s", fmtType(field.Type()))
		if keyType := fieldKeyType(field.Type()); keyType != nil {
			e.linef("key_type = %s", fmtType(keyType))
		}
		if field.IsRecursive() {
			e.line("recursive = .true")
		}
		endField()
	}
}

func fieldKeyType(t compiler.Type) compiler.Type {
	for {
		switch tt := t.(type) {
		case *compiler.NullableType:
			t = tt.Value()
		case *compiler.ArrayType:
			if tt.KeyPath() == nil {
				return nil
			}
			return tt.KeyPath().KeyType()
		default:
			return nil
		}
	}
}

func fmtType(t compiler.Type) string {
	if t == nil {
		return ".unresolved"
	}
	return t.String()
}

func fmtValue(value syntax.Value) string {
	switch value := value.(type) {
	case *syntax.LiteralValue:
		return value.Token().Text()
	case *syntax.ArrayValue:
		items := make([]string, 0, len(value.Items()))
		for _, item := range value.Items() {
			items = append(items, fmtValue(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *syntax.ObjectValue:
		entries := make([]string, 0, len(value.Entries()))
		for _, entry := range value.Entries() {
			entries = append(entries, entry.Name().Text()+": "+fmtValue(entry.Value()))
		}
		return "{" + strings.Join(entries, ", ") + "}"
	}
	panic("unreachable")
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for ii, item := range items {
		quoted[ii] = quote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if c == '\t' {
			buf.WriteString("\\t")
			continue
		}
		if c == '\n' {
			buf.WriteString("\\n")
			continue
		}
		if c < 0x20 || c == 0x7F {
			fmt.Fprintf(&buf, "\\x%02X", c)
			continue
		}
		buf.WriteRune(c)
	}
	buf.WriteByte('"')
	return buf.String()
}
