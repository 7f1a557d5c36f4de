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

type strToken struct {
	kind    syntax.TokenKind
	content string
}

func tokenize(t *testing.T, src string) []strToken {
	t.Helper()
	tokens, errs := syntax.Tokenize(src, "m.soia")
	testutil.ExpectNoErrors(t, errs)
	out := make([]strToken, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, strToken{token.Kind(), token.Text()})
	}
	return out
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	got := tokenize(t, "struct Foo{a:[int32|x.y]?=1.5;} // done\n")
	want := []strToken{
		{syntax.T_IDENT, "struct"},
		{syntax.T_IDENT, "Foo"},
		{syntax.T_OPEN_CURL, "{"},
		{syntax.T_IDENT, "a"},
		{syntax.T_COLON, ":"},
		{syntax.T_OPEN_SQUARE, "["},
		{syntax.T_IDENT, "int32"},
		{syntax.T_PIPE, "|"},
		{syntax.T_IDENT, "x"},
		{syntax.T_DOT, "."},
		{syntax.T_IDENT, "y"},
		{syntax.T_CLOSE_SQUARE, "]"},
		{syntax.T_QUESTION, "?"},
		{syntax.T_EQ, "="},
		{syntax.T_NUMBER, "1.5"},
		{syntax.T_SEMICOLON, ";"},
		{syntax.T_CLOSE_CURL, "}"},
		{syntax.T_EOF, ""},
	}
	testutil.ExpectSliceEq(t, want, got)
}

func TestTokenizeComments(t *testing.T) {
	t.Parallel()
	got := tokenize(t, "// line\n/* block\n comment */ z /**/")
	testutil.ExpectSliceEq(t, []strToken{
		{syntax.T_IDENT, "z"},
		{syntax.T_EOF, ""},
	}, got)
}

func TestTokenizeStrings(t *testing.T) {
	t.Parallel()
	got := tokenize(t, `"a\"b" 'c\'d' "😀" 'é\n'`)
	testutil.ExpectSliceEq(t, []strToken{
		{syntax.T_STRING_LIT, `"a\"b"`},
		{syntax.T_STRING_LIT, `'c\'d'`},
		{syntax.T_STRING_LIT, `"😀"`},
		{syntax.T_STRING_LIT, `'é\n'`},
		{syntax.T_EOF, ""},
	}, got)
}

func TestTokenizeNumberFollowedByDot(t *testing.T) {
	t.Parallel()
	got := tokenize(t, "1. 0 10.25")
	testutil.ExpectSliceEq(t, []strToken{
		{syntax.T_NUMBER, "1"},
		{syntax.T_DOT, "."},
		{syntax.T_NUMBER, "0"},
		{syntax.T_NUMBER, "10.25"},
		{syntax.T_EOF, ""},
	}, got)
}

func TestTokenPositions(t *testing.T) {
	t.Parallel()
	src := "struct Foo {\r\n  é: int32;\n}"
	tokens, errs := syntax.Tokenize(src, "dir/m.soia")
	// 'é' is not an identifier character.
	testutil.ExpectErrors(t, []string{
		"dir/m.soia:2:3: Invalid sequence of characters",
	}, errs)

	colon := tokens[3]
	testutil.ExpectEq(t, ":", colon.Text())
	testutil.ExpectEq(t, uint32(16), colon.Position())
	testutil.ExpectEq(t, uint32(1), colon.Line().LineNumber())
	testutil.ExpectEq(t, uint32(14), colon.Line().Position())
	testutil.ExpectEq(t, "  é: int32;", colon.Line().Line())
	testutil.ExpectEq(t, uint32(3), colon.Column())
	testutil.ExpectEq(t, "dir/m.soia:2:4", colon.Location())
	testutil.ExpectTrue(t, tokens[4].Line() == colon.Line())

	eof := tokens[len(tokens)-1]
	testutil.ExpectEq(t, syntax.T_EOF, eof.Kind())
	testutil.ExpectEq(t, "", eof.Text())
	testutil.ExpectEq(t, uint32(len(src)), eof.Position())
	testutil.ExpectEq(t, "dir/m.soia:3:2", eof.Location())
}

func TestTokenizeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{"a /* b", "m.soia:1:3: Unterminated multi-line comment"},
		{"0123", "m.soia:1:1: Invalid number"},
		{"x 12abc", "m.soia:1:3: Invalid number"},
		{"1.5e3", "m.soia:1:1: Invalid number"},
		{"_foo", "m.soia:1:1: Invalid identifier"},
		{"foo_", "m.soia:1:1: Invalid identifier"},
		{"a__b", "m.soia:1:1: Invalid identifier"},
		{"a_1", "m.soia:1:1: Invalid identifier"},
		{"x = 'abc\n", "m.soia:1:5: Unterminated string literal"},
		{`"abc`, "m.soia:1:1: Unterminated string literal"},
		{"x = \"ab\\\ncd", "m.soia:1:5: Unterminated string literal"},
		{"x = 'ab\\\r\ncd", "m.soia:1:5: Unterminated string literal"},
		{`"a\qb"`, "m.soia:1:1: String literal contains invalid escape sequence"},
		{`"\u12"`, "m.soia:1:1: String literal contains invalid escape sequence"},
		{`"\ud800"`, "m.soia:1:1: String literal contains lone surrogates"},
		{`"\ude00\ud83d"`, "m.soia:1:1: String literal contains lone surrogates"},
		{`"\ud83dx"`, "m.soia:1:1: String literal contains lone surrogates"},
		{"a # b", "m.soia:1:3: Invalid sequence of characters"},
		{"a @$ b", "m.soia:1:3: Invalid sequence of characters"},
		{"a \xff", "m.soia:1:3: Source file contains invalid UTF-8"},
	}
	for ii, test := range tests {
		t.Run(fmt.Sprintf("%d", ii), func(t *testing.T) {
			t.Parallel()
			tokens, errs := syntax.Tokenize(test.src, "m.soia")
			testutil.ExpectErrors(t, []string{test.want}, errs)
			testutil.ExpectEq(t, syntax.T_EOF, tokens[len(tokens)-1].Kind())
		})
	}
}

func TestTokenizeContinuesAfterError(t *testing.T) {
	t.Parallel()
	tokens, errs := syntax.Tokenize("a $ b # c", "m.soia")
	testutil.ExpectErrors(t, []string{
		"m.soia:1:3: Invalid sequence of characters",
		"m.soia:1:7: Invalid sequence of characters",
	}, errs)
	testutil.ExpectSliceEq(t, []string{"a", "$", "b", "#", "c"}, testutil.TokenTexts(tokens))
}

func TestTokenizeStringEndsAtLineBreak(t *testing.T) {
	t.Parallel()
	tokens, errs := syntax.Tokenize("const X: string = \"ab\\\ncd\";", "m.soia")
	testutil.ExpectErrors(t, []string{
		"m.soia:1:19: Unterminated string literal",
		"m.soia:2:3: Unterminated string literal",
	}, errs)
	str := tokens[5]
	testutil.ExpectEq(t, syntax.T_STRING_LIT, str.Kind())
	testutil.ExpectEq(t, `"ab\`, str.Text())
	testutil.ExpectEq(t, "cd", tokens[6].Text())
	testutil.ExpectEq(t, "m.soia:2:1", tokens[6].Location())
}

func TestTokenizeEmpty(t *testing.T) {
	t.Parallel()
	got := tokenize(t, "")
	testutil.ExpectSliceEq(t, []strToken{{syntax.T_EOF, ""}}, got)
}
