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
	"fmt"
	"strings"
	"testing"

	"go.soia-lang.org/soia/syntax"
)

// FormatErrors renders diagnostics one per line as
// "path:line:column: message", in the order they were reported.
func FormatErrors(errs []*syntax.Error) string {
	var b strings.Builder
	for _, err := range errs {
		fmt.Fprintf(&b, "%s: %s\n", err.Location(), err.Message())
	}
	return b.String()
}

// ExpectErrors compares diagnostics against their expected rendering, one
// "path:line:column: message" per line.
func ExpectErrors(t *testing.T, want []string, got []*syntax.Error) {
	t.Helper()
	var wantText string
	if len(want) > 0 {
		wantText = strings.Join(want, "\n") + "\n"
	}
	ExpectNoDiff(t, wantText, FormatErrors(got))
}

func ExpectNoErrors(t *testing.T, errs []*syntax.Error) {
	t.Helper()
	if len(errs) > 0 {
		t.Errorf("Expected no errors, got:\n%s", FormatErrors(errs))
	}
}

// TokenTexts returns the text of each token, without the final T_EOF.
func TokenTexts(tokens []*syntax.Token) []string {
	var texts []string
	for _, token := range tokens {
		if token.Kind() == syntax.T_EOF {
			break
		}
		texts = append(texts, token.Text())
	}
	return texts
}
