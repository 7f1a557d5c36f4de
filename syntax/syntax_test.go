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

package syntax_test

import (
	"fmt"
	"testing"

	"go.soia-lang.org/soia/internal/testutil"
	"go.soia-lang.org/soia/syntax"
)

func parse(t *testing.T, src string) (*syntax.Module, []*syntax.Error) {
	t.Helper()
	module, errs := syntax.ParseSource(testutil.Dedent(src), "m.soia")
	testutil.AssertTrue(t, module != nil)
	return module, errs
}

func parseOK(t *testing.T, src string) *syntax.Module {
	t.Helper()
	module, errs := parse(t, src)
	testutil.ExpectNoErrors(t, errs)
	return module
}

func fieldNames(record *syntax.Record) []string {
	var names []string
	for _, field := range record.Fields() {
		names = append(names, fmt.Sprintf("%s=%d", field.Name().Text(), field.Number()))
	}
	return names
}

func TestParseModule(t *testing.T) {
	t.Parallel()
	module := parseOK(t, `
		import Bar from "./bar.soia";
		import * as other from "other.soia";

		struct Foo {
			a: int32;
			b: [Bar|id]?;
			struct Inner {
				x: string;
			}
			c: Inner;
			d: .other.Thing;
		}

		enum Color {
			RED;
			GREEN;
			custom: string;
		}

		procedure GetFoo(Foo): Color;
		procedure Ping(bool): bool = 7;
		const MAX_SIZE: int32 = -5;
	`)

	testutil.ExpectEq(t, "m.soia", module.Path())
	testutil.ExpectEq(t, 7, len(module.Declarations()))
	testutil.ExpectEq(t, 2, len(module.Imports()))

	var records []string
	for _, record := range module.Records() {
		records = append(records, record.Name().Text())
	}
	testutil.ExpectSliceEq(t, []string{"Inner", "Foo", "Color"}, records)

	decl, ok := module.Declaration("Foo")
	testutil.AssertTrue(t, ok)
	foo := decl.(*syntax.Record)
	testutil.ExpectEq(t, syntax.RecordType_STRUCT, foo.RecordType())
	testutil.ExpectEq(t, syntax.NumberingImplicit, foo.Numbering())
	testutil.ExpectSliceEq(t, []string{"a=0", "b=1", "c=2", "d=3"}, fieldNames(foo))
	testutil.ExpectEq(t, syntax.RecordKey(fmt.Sprintf("m.soia:%d", foo.Name().Position())), foo.Key())
	testutil.ExpectEq(t, 1, len(foo.NestedRecords()))

	b, ok := foo.Declaration("b")
	testutil.AssertTrue(t, ok)
	nullable, ok := b.(*syntax.Field).Type().(*syntax.NullableTypeExpr)
	testutil.AssertTrue(t, ok)
	array, ok := nullable.Value().(*syntax.ArrayTypeExpr)
	testutil.AssertTrue(t, ok)
	testutil.ExpectSliceEq(t, []string{"id"}, testutil.TokenTexts(array.KeyPath()))
	item := array.Item().(*syntax.RecordRefExpr)
	testutil.ExpectFalse(t, item.Absolute())
	testutil.ExpectSliceEq(t, []string{"Bar"}, testutil.TokenTexts(item.NameParts()))

	d, _ := foo.Declaration("d")
	ref := d.(*syntax.Field).Type().(*syntax.RecordRefExpr)
	testutil.ExpectTrue(t, ref.Absolute())
	testutil.ExpectEq(t, ".", ref.FirstToken().Text())
	testutil.ExpectSliceEq(t, []string{"other", "Thing"}, testutil.TokenTexts(ref.NameParts()))

	decl, _ = module.Declaration("Color")
	color := decl.(*syntax.Record)
	testutil.ExpectEq(t, syntax.RecordType_ENUM, color.RecordType())
	testutil.ExpectSliceEq(t, []string{"RED=0", "GREEN=1", "custom=2"}, fieldNames(color))
	testutil.ExpectTrue(t, color.Fields()[0].Type() == nil)

	procedures := module.Procedures()
	testutil.AssertTrue(t, len(procedures) == 2)
	testutil.ExpectFalse(t, procedures[0].HasExplicitNumber())
	testutil.ExpectEq(t, syntax.ProcedureNumber("m.soia", "GetFoo"), procedures[0].Number())
	testutil.ExpectTrue(t, procedures[1].HasExplicitNumber())
	testutil.ExpectEq(t, uint32(7), procedures[1].Number())

	constants := module.Constants()
	testutil.AssertTrue(t, len(constants) == 1)
	value := constants[0].Value().(*syntax.LiteralValue)
	testutil.ExpectEq(t, "-5", value.Token().Text())
	testutil.ExpectTrue(t, syntax.LiteralHasType(value.Token(), syntax.Primitive_INT32))
}

func TestParseImports(t *testing.T) {
	t.Parallel()
	module := parseOK(t, `
		import A, B from "x.soia";
		import * as y from 'y.soia';
	`)
	imports := module.Imports()
	testutil.AssertTrue(t, len(imports) == 3)
	a := imports[0].(*syntax.Import)
	b := imports[1].(*syntax.Import)
	testutil.ExpectEq(t, "A", a.Name().Text())
	testutil.ExpectEq(t, "B", b.Name().Text())
	testutil.ExpectTrue(t, a.ModulePath() == b.ModulePath())
	alias := imports[2].(*syntax.ImportAlias)
	testutil.ExpectEq(t, "y", alias.Name().Text())
	testutil.ExpectEq(t, "'y.soia'", alias.ModulePath().Text())
}

func TestParseExplicitNumbering(t *testing.T) {
	t.Parallel()
	module := parseOK(t, `
		struct Foo {
			a: int32 = 1;
			b: int32 = 0;
			removed 2-3, 5;
			c: int32 = 4;
		}
		enum E {
			A = 1;
			b: string = 0;
		}
	`)
	foo := module.Records()[0]
	testutil.ExpectEq(t, syntax.NumberingExplicit, foo.Numbering())
	testutil.ExpectSliceEq(t, []string{"a=1", "b=0", "c=4"}, fieldNames(foo))
	testutil.ExpectSliceEq(t, []int32{2, 3, 5}, foo.RemovedNumbers())
	testutil.ExpectEq(t, 4, len(foo.Declarations()))

	e := module.Records()[1]
	testutil.ExpectEq(t, syntax.NumberingExplicit, e.Numbering())
	testutil.ExpectSliceEq(t, []string{"A=1", "b=0"}, fieldNames(e))
}

func TestParseImplicitRemoved(t *testing.T) {
	t.Parallel()
	module := parseOK(t, `
		struct Foo {
			a: int32;
			removed;
			b: int32;
		}
	`)
	foo := module.Records()[0]
	testutil.ExpectSliceEq(t, []string{"a=0", "b=2"}, fieldNames(foo))
	testutil.ExpectSliceEq(t, []int32{1}, foo.RemovedNumbers())
}

func TestParseConstantValues(t *testing.T) {
	t.Parallel()
	module := parseOK(t, `
		const X: Foo = {a: [1, 2,], b: "s", c: null, d: {e: true},};
		const EMPTY: [int32] = [];
	`)
	object := module.Constants()[0].Value().(*syntax.ObjectValue)
	testutil.ExpectEq(t, 4, len(object.Entries()))
	a, ok := object.Entry("a")
	testutil.AssertTrue(t, ok)
	testutil.ExpectEq(t, 2, len(a.Value().(*syntax.ArrayValue).Items()))
	c, _ := object.Entry("c")
	testutil.ExpectTrue(t, c.Value().(*syntax.LiteralValue).IsNull())
	_, ok = object.Entry("z")
	testutil.ExpectFalse(t, ok)

	empty := module.Constants()[1].Value().(*syntax.ArrayValue)
	testutil.ExpectEq(t, 0, len(empty.Items()))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "mixed numbering",
			src:  "struct Foo { a: int32; b: int32 = 1; c: int32 = 5; }",
			want: []string{"m.soia:1:24: Cannot mix implicit and explicit numbering"},
		},
		{
			name: "explicit field after implicit",
			src:  "struct A { a: bool; b: bool = 1; }",
			want: []string{"m.soia:1:21: Cannot mix implicit and explicit numbering"},
		},
		{
			name: "implicit field after explicit",
			src:  "struct A { a: bool = 0; b: bool; }",
			want: []string{"m.soia:1:25: Cannot mix implicit and explicit numbering"},
		},
		{
			name: "mixed numbering with removed",
			src:  "struct Foo { a: int32 = 0; removed; }",
			want: []string{"m.soia:1:28: Cannot mix implicit and explicit numbering"},
		},
		{
			name: "duplicate number",
			src:  "struct Foo { a: int32 = 0; b: int32 = 0; }",
			want: []string{"m.soia:1:28: Duplicate field number 0"},
		},
		{
			name: "duplicate removed number",
			src:  "struct Foo { a: int32 = 0; removed 0; }",
			want: []string{"m.soia:1:28: Duplicate field number 0"},
		},
		{
			name: "missing number",
			src:  "struct Foo { a: int32 = 0; b: int32 = 2; }",
			want: []string{"m.soia:1:8: Missing field number 1"},
		},
		{
			name: "empty enum",
			src:  "enum E {}",
			want: []string{"m.soia:1:6: Enum must have at least one field"},
		},
		{
			name: "duplicate identifier",
			src:  "struct Foo {} struct Foo {}",
			want: []string{"m.soia:1:22: Duplicate identifier"},
		},
		{
			name: "duplicate field",
			src:  "struct Foo { a: int32; a: bool; }",
			want: []string{"m.soia:1:24: Duplicate identifier"},
		},
		{
			name: "casing",
			src:  "struct foo { A: int32; }",
			want: []string{
				"m.soia:1:8: Expected UpperCamel",
				"m.soia:1:14: Expected lower_underscore",
			},
		},
		{
			name: "enum constant casing",
			src:  "enum E { red; }",
			want: []string{"m.soia:1:10: Expected UPPER_UNDERSCORE"},
		},
		{
			name: "unterminated record",
			src:  "struct Foo { a: int32;",
			want: []string{"m.soia:1:23: Expected '}'"},
		},
		{
			name: "invalid field number",
			src:  "struct Foo { a: int32 = 1.5; }",
			want: []string{"m.soia:1:25: Field number must be an integer in [0, 2147483647]"},
		},
		{
			name: "invalid removed range",
			src:  "struct Foo { removed 3-1; }",
			want: []string{"m.soia:1:24: Invalid range of removed numbers"},
		},
		{
			name: "stray token",
			src:  "} struct A {}",
			want: []string{
				"m.soia:1:1: Expected one of: 'struct', 'enum', 'import', 'procedure', 'const'",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, errs := parse(t, test.src)
			testutil.ExpectErrors(t, test.want, errs)
		})
	}
}

func TestParseRecovery(t *testing.T) {
	t.Parallel()
	module, errs := parse(t, `
		struct Foo {
			a: ;
			b: int32;
		}
		struct Bar {
			c int32;
		}
		enum Baz {
			X;
		}
	`)
	testutil.ExpectErrors(t, []string{
		"m.soia:2:5: Expected one of: '[', identifier, '.'",
		"m.soia:6:4: Expected ':'",
	}, errs)

	records := module.Records()
	testutil.AssertTrue(t, len(records) == 3)
	testutil.ExpectSliceEq(t, []string{"b=0"}, fieldNames(records[0]))
	testutil.ExpectEq(t, 0, len(records[1].Fields()))
	testutil.ExpectSliceEq(t, []string{"X=0"}, fieldNames(records[2]))
}

func TestParseRecoverySkipsBlock(t *testing.T) {
	t.Parallel()
	module, errs := parse(t, `
		struct Foo Bar {
			a: int32;
		}
		struct Baz {}
	`)
	testutil.ExpectErrors(t, []string{
		"m.soia:1:12: Expected '{'",
	}, errs)
	testutil.AssertTrue(t, len(module.Records()) == 1)
	testutil.ExpectEq(t, "Baz", module.Records()[0].Name().Text())
}

func TestParseSourceLexicalErrors(t *testing.T) {
	t.Parallel()
	module, errs := syntax.ParseSource("struct Foo { a: int32 = 01; }", "m.soia")
	testutil.ExpectTrue(t, module == nil)
	testutil.ExpectErrors(t, []string{"m.soia:1:25: Invalid number"}, errs)
}
