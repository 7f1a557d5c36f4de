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

package syntax

import (
	"fmt"
	"strings"
)

// An Error is a diagnostic attached to the token that caused it. Errors are
// collected rather than returned one at a time, so that a single pass can
// report every problem in a module.
type Error struct {
	code     uint32
	token    *Token
	message  string
	expected string
}

var _ error = (*Error)(nil)

// NewError is used by later compilation stages to report diagnostics in the
// same form as the parser.
func NewError(code uint32, token *Token, message string) *Error {
	return &Error{
		code:    code,
		token:   token,
		message: message,
	}
}

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.Message())
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Token() *Token {
	return err.token
}

// Message is the human-readable description. For "expected ..." errors it is
// derived from Expected.
func (err *Error) Message() string {
	if err.message != "" {
		return err.message
	}
	return "Expected " + err.expected
}

// Expected describes what the parser was looking for, or is empty if the
// error is not of that kind.
func (err *Error) Expected() string {
	return err.expected
}

func (err *Error) Location() string {
	return err.token.Location()
}

func errSourceTooLong(token *Token, srcLen int) *Error {
	return &Error{
		code:  1000,
		token: token,
		message: fmt.Sprintf(
			"Source file size (%d bytes) exceeds maximum (%d bytes)",
			srcLen, maxSrcLen,
		),
	}
}

func errInvalidUtf8(token *Token) *Error {
	return &Error{
		code:    1001,
		token:   token,
		message: "Source file contains invalid UTF-8",
	}
}

func errInvalidSequence(token *Token) *Error {
	return &Error{
		code:    1002,
		token:   token,
		message: "Invalid sequence of characters",
	}
}

func errInvalidNumber(token *Token) *Error {
	return &Error{
		code:    1003,
		token:   token,
		message: "Invalid number",
	}
}

func errInvalidIdent(token *Token) *Error {
	return &Error{
		code:    1004,
		token:   token,
		message: "Invalid identifier",
	}
}

func errUnterminatedComment(token *Token) *Error {
	return &Error{
		code:    1005,
		token:   token,
		message: "Unterminated multi-line comment",
	}
}

func errUnterminatedString(token *Token) *Error {
	return &Error{
		code:    1006,
		token:   token,
		message: "Unterminated string literal",
	}
}

func errInvalidEscape(token *Token) *Error {
	return &Error{
		code:    1007,
		token:   token,
		message: "String literal contains invalid escape sequence",
	}
}

func errLoneSurrogates(token *Token) *Error {
	return &Error{
		code:    1008,
		token:   token,
		message: "String literal contains lone surrogates",
	}
}

func errExpected(token *Token, expected []string) *Error {
	var want string
	if len(expected) == 1 {
		want = expected[0]
	} else {
		want = "one of: " + strings.Join(expected, ", ")
	}
	return &Error{
		code:     2000,
		token:    token,
		expected: want,
	}
}

func errCasing(token *Token, casing Casing) *Error {
	return &Error{
		code:     2001,
		token:    token,
		expected: casing.String(),
	}
}

func errDuplicateIdentifier(token *Token) *Error {
	return &Error{
		code:    2002,
		token:   token,
		message: "Duplicate identifier",
	}
}

func errMixedNumbering(token *Token) *Error {
	return &Error{
		code:    2003,
		token:   token,
		message: "Cannot mix implicit and explicit numbering",
	}
}

func errDuplicateFieldNumber(token *Token, number int32) *Error {
	return &Error{
		code:    2004,
		token:   token,
		message: fmt.Sprintf("Duplicate field number %d", number),
	}
}

func errMissingFieldNumber(token *Token, number int32) *Error {
	return &Error{
		code:    2005,
		token:   token,
		message: fmt.Sprintf("Missing field number %d", number),
	}
}

func errEmptyEnum(token *Token) *Error {
	return &Error{
		code:    2006,
		token:   token,
		message: "Enum must have at least one field",
	}
}

func errInvalidFieldNumber(token *Token) *Error {
	return &Error{
		code:    2007,
		token:   token,
		message: "Field number must be an integer in [0, 2147483647]",
	}
}

func errInvalidRemovedRange(token *Token) *Error {
	return &Error{
		code:    2008,
		token:   token,
		message: "Invalid range of removed numbers",
	}
}

func errInvalidProcedureNumber(token *Token) *Error {
	return &Error{
		code:    2009,
		token:   token,
		message: "Procedure number must be an integer in [0, 4294967295]",
	}
}
