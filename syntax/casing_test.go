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
	"testing"

	"go.soia-lang.org/soia/internal/testutil"
	"go.soia-lang.org/soia/syntax"
)

func TestHasCasing(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text   string
		casing syntax.Casing
		want   bool
	}{
		{"user_id", syntax.LowerUnderscore, true},
		{"a1_b2", syntax.LowerUnderscore, true},
		{"userId", syntax.LowerUnderscore, false},
		{"User_id", syntax.LowerUnderscore, false},
		{"UserId", syntax.UpperCamel, true},
		{"U2", syntax.UpperCamel, true},
		{"userId", syntax.UpperCamel, false},
		{"User_Id", syntax.UpperCamel, false},
		{"MAX_SIZE", syntax.UpperUnderscore, true},
		{"A", syntax.UpperUnderscore, true},
		{"Max_SIZE", syntax.UpperUnderscore, false},
		{"userId", syntax.LowerCamel, true},
		{"UserId", syntax.LowerCamel, false},
		{"user_id", syntax.LowerCamel, false},
	}
	for _, test := range tests {
		t.Run(test.casing.String()+"/"+test.text, func(t *testing.T) {
			testutil.ExpectEq(t, test.want, syntax.HasCasing(test.text, test.casing))
		})
	}
}

func TestCheckCasing(t *testing.T) {
	t.Parallel()
	tokens, errs := syntax.Tokenize("fooBar", "m.soia")
	testutil.ExpectNoErrors(t, errs)

	testutil.ExpectTrue(t, syntax.CheckCasing(tokens[0], syntax.LowerCamel) == nil)

	err := syntax.CheckCasing(tokens[0], syntax.UpperCamel)
	testutil.AssertTrue(t, err != nil)
	testutil.ExpectEq(t, "UpperCamel", err.Expected())
	testutil.ExpectEq(t, "Expected UpperCamel", err.Message())
	testutil.ExpectEq(t, "E2001: Expected UpperCamel", err.Error())
}

func TestConvertCase(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text     string
		from, to syntax.Casing
		want     string
	}{
		{"user_id", syntax.LowerUnderscore, syntax.LowerCamel, "userId"},
		{"user_id", syntax.LowerUnderscore, syntax.UpperCamel, "UserId"},
		{"UserId", syntax.UpperCamel, syntax.UpperUnderscore, "USER_ID"},
		{"MAX_SIZE", syntax.UpperUnderscore, syntax.UpperCamel, "MaxSize"},
		{"fooBarBaz", syntax.LowerCamel, syntax.LowerUnderscore, "foo_bar_baz"},
		{"a", syntax.LowerUnderscore, syntax.UpperCamel, "A"},
	}
	for _, test := range tests {
		t.Run(test.text, func(t *testing.T) {
			testutil.ExpectEq(t, test.want, syntax.ConvertCase(test.text, test.from, test.to))
		})
	}
}
