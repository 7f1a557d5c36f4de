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

type Casing uint8

const (
	LowerUnderscore Casing = iota // lower_underscore
	UpperCamel                    // UpperCamel
	UpperUnderscore               // UPPER_UNDERSCORE
	LowerCamel                    // lowerCamel
)

func (c Casing) String() string {
	switch c {
	case LowerUnderscore:
		return "lower_underscore"
	case UpperCamel:
		return "UpperCamel"
	case UpperUnderscore:
		return "UPPER_UNDERSCORE"
	case LowerCamel:
		return "lowerCamel"
	default:
		return fmt.Sprintf("Casing(%d)", uint8(c))
	}
}

// CheckCasing returns a non-fatal diagnostic if the token's text does not
// follow the casing convention, or nil if it does.
func CheckCasing(token *Token, casing Casing) *Error {
	if HasCasing(token.text, casing) {
		return nil
	}
	return errCasing(token, casing)
}

func HasCasing(text string, casing Casing) bool {
	if text == "" {
		return false
	}
	switch casing {
	case LowerUnderscore:
		return isUnderscoreCase(text, isLower)
	case UpperUnderscore:
		return isUnderscoreCase(text, isUpper)
	case UpperCamel:
		return isUpper(text[0]) && isAlnum(text)
	case LowerCamel:
		return isLower(text[0]) && isAlnum(text)
	default:
		panic("unreachable")
	}
}

// isUnderscoreCase reports whether the text is a sequence of words joined by
// single underscores, each word starting with a letter in the given case and
// containing no letters of the other case.
func isUnderscoreCase(text string, isCase func(byte) bool) bool {
	for _, word := range strings.Split(text, "_") {
		if word == "" || !isCase(word[0]) {
			return false
		}
		for ii := 1; ii < len(word); ii++ {
			if !isCase(word[ii]) && !isDigit(word[ii]) {
				return false
			}
		}
	}
	return true
}

func isAlnum(text string) bool {
	for ii := 0; ii < len(text); ii++ {
		if !isLetter(text[ii]) && !isDigit(text[ii]) {
			return false
		}
	}
	return true
}

// ConvertCase re-spells an identifier written in one casing convention in
// another, e.g. "user_id" from LowerUnderscore to LowerCamel is "userId".
func ConvertCase(text string, from, to Casing) string {
	words := splitWords(text, from)
	var b strings.Builder
	for ii, word := range words {
		switch to {
		case LowerUnderscore:
			if ii > 0 {
				b.WriteByte('_')
			}
			b.WriteString(strings.ToLower(word))
		case UpperUnderscore:
			if ii > 0 {
				b.WriteByte('_')
			}
			b.WriteString(strings.ToUpper(word))
		case UpperCamel:
			b.WriteString(capitalize(word))
		case LowerCamel:
			if ii == 0 {
				b.WriteString(strings.ToLower(word))
			} else {
				b.WriteString(capitalize(word))
			}
		default:
			panic("unreachable")
		}
	}
	return b.String()
}

func splitWords(text string, casing Casing) []string {
	switch casing {
	case LowerUnderscore, UpperUnderscore:
		return strings.Split(text, "_")
	case UpperCamel, LowerCamel:
		var words []string
		start := 0
		for ii := 1; ii < len(text); ii++ {
			if isUpper(text[ii]) {
				words = append(words, text[start:ii])
				start = ii
			}
		}
		return append(words, text[start:])
	default:
		panic("unreachable")
	}
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}
