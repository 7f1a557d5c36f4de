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
	"math"
	"testing"

	"go.soia-lang.org/soia/internal/testutil"
	"go.soia-lang.org/soia/syntax"
)

func literal(t *testing.T, src string) *syntax.Token {
	t.Helper()
	if len(src) > 0 && src[0] == '-' {
		line := syntax.NewCodeLine(0, src, 0, "m.soia")
		return syntax.NewToken(src, syntax.T_NUMBER, 0, line, 0)
	}
	tokens, errs := syntax.Tokenize(src, "m.soia")
	testutil.ExpectNoErrors(t, errs)
	testutil.AssertTrue(t, len(tokens) == 2)
	return tokens[0]
}

func TestLiteralHasType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src       string
		primitive syntax.Primitive
		want      bool
	}{
		{"true", syntax.Primitive_BOOL, true},
		{"false", syntax.Primitive_BOOL, true},
		{"1", syntax.Primitive_BOOL, false},
		{"null", syntax.Primitive_BOOL, false},

		{"2147483647", syntax.Primitive_INT32, true},
		{"-2147483648", syntax.Primitive_INT32, true},
		{"2147483648", syntax.Primitive_INT32, false},
		{"2147483648", syntax.Primitive_INT64, true},
		{"1.5", syntax.Primitive_INT32, false},
		{"-1", syntax.Primitive_INT64, true},
		{"-1", syntax.Primitive_UINT64, false},
		{"18446744073709551615", syntax.Primitive_UINT64, true},
		{"18446744073709551616", syntax.Primitive_UINT64, false},

		{"1.5", syntax.Primitive_FLOAT32, true},
		{"-3", syntax.Primitive_FLOAT64, true},
		{`"NaN"`, syntax.Primitive_FLOAT64, true},
		{`'-Infinity'`, syntax.Primitive_FLOAT32, true},
		{`"nan"`, syntax.Primitive_FLOAT64, false},

		{`"2024-01-02T03:04:05Z"`, syntax.Primitive_TIMESTAMP, true},
		{`"2024-01-02T03:04:05.123+02:00"`, syntax.Primitive_TIMESTAMP, true},
		{`"2024-01-02"`, syntax.Primitive_TIMESTAMP, false},
		{"8640000000000000", syntax.Primitive_TIMESTAMP, true},
		{"8640000000000001", syntax.Primitive_TIMESTAMP, false},

		{`'x'`, syntax.Primitive_STRING, true},
		{"1", syntax.Primitive_STRING, false},

		{`"hex:0a1B"`, syntax.Primitive_BYTES, true},
		{`"hex:"`, syntax.Primitive_BYTES, true},
		{`"hex:0a1"`, syntax.Primitive_BYTES, false},
		{`"abc"`, syntax.Primitive_BYTES, false},
	}
	for _, test := range tests {
		t.Run(test.primitive.String()+"/"+test.src, func(t *testing.T) {
			got := syntax.LiteralHasType(literal(t, test.src), test.primitive)
			testutil.ExpectEq(t, test.want, got)
		})
	}
}

func TestUnquoteString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{`"plain"`, "plain"},
		{`"a\nb\tc"`, "a\nb\tc"},
		{`'it\'s'`, "it's"},
		{`"\/\\\""`, `/\"`},
		{`"été"`, "été"},
		{`"\u00e9t\u00e9"`, "été"},
		{`"\ud83d\ude00!"`, "😀!"},
		{`"\u0041\ud83d\ude00"`, "A😀"},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			got, err := syntax.UnquoteString(literal(t, test.src))
			testutil.AssertNoError(t, err)
			testutil.ExpectEq(t, test.want, got)
		})
	}
}

func TestParseFloat(t *testing.T) {
	t.Parallel()
	f, ok := syntax.ParseFloat(literal(t, "2.5"))
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, 2.5, f)

	f, ok = syntax.ParseFloat(literal(t, `"Infinity"`))
	testutil.ExpectTrue(t, ok)
	testutil.ExpectTrue(t, math.IsInf(f, 1))

	f, ok = syntax.ParseFloat(literal(t, `"NaN"`))
	testutil.ExpectTrue(t, ok)
	testutil.ExpectTrue(t, math.IsNaN(f))

	_, ok = syntax.ParseFloat(literal(t, `"1.5"`))
	testutil.ExpectFalse(t, ok)
}

func TestPrimitiveByName(t *testing.T) {
	t.Parallel()
	p, ok := syntax.PrimitiveByName("timestamp")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, syntax.Primitive_TIMESTAMP, p)

	_, ok = syntax.PrimitiveByName("Timestamp")
	testutil.ExpectFalse(t, ok)
}
