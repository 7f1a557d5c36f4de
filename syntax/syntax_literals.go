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
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"
)

type Primitive uint8

const (
	Primitive_BOOL Primitive = iota + 1
	Primitive_INT32
	Primitive_INT64
	Primitive_UINT64
	Primitive_FLOAT32
	Primitive_FLOAT64
	Primitive_TIMESTAMP
	Primitive_STRING
	Primitive_BYTES
)

var builtinTypes = map[string]Primitive{
	"bool":      Primitive_BOOL,
	"int32":     Primitive_INT32,
	"int64":     Primitive_INT64,
	"uint64":    Primitive_UINT64,
	"float32":   Primitive_FLOAT32,
	"float64":   Primitive_FLOAT64,
	"timestamp": Primitive_TIMESTAMP,
	"string":    Primitive_STRING,
	"bytes":     Primitive_BYTES,
}

// PrimitiveByName returns the primitive type spelled by a type name such as
// "int32".
func PrimitiveByName(name string) (Primitive, bool) {
	p, ok := builtinTypes[name]
	return p, ok
}

func (p Primitive) String() string {
	switch p {
	case Primitive_BOOL:
		return "bool"
	case Primitive_INT32:
		return "int32"
	case Primitive_INT64:
		return "int64"
	case Primitive_UINT64:
		return "uint64"
	case Primitive_FLOAT32:
		return "float32"
	case Primitive_FLOAT64:
		return "float64"
	case Primitive_TIMESTAMP:
		return "timestamp"
	case Primitive_STRING:
		return "string"
	case Primitive_BYTES:
		return "bytes"
	default:
		return fmt.Sprintf("Primitive(%d)", uint8(p))
	}
}

// Timestamps must be within 100,000,000 days of the Unix epoch.
const maxTimestampMillis = 8_640_000_000_000_000

// UnquoteString returns the value of a string literal token, with escape
// sequences decoded and UTF-16 surrogate pairs joined.
func UnquoteString(token *Token) (string, error) {
	text := token.text
	if token.kind != T_STRING_LIT || len(text) < 2 || text[len(text)-1] != text[0] {
		return "", fmt.Errorf("not a string literal: %s", token)
	}
	text = text[1 : len(text)-1]
	if !strings.ContainsRune(text, '\\') {
		return text, nil
	}

	var b strings.Builder
	var units []uint16
	flushUnits := func() {
		if len(units) > 0 {
			b.WriteString(string(utf16.Decode(units)))
			units = units[:0]
		}
	}
	for len(text) > 0 {
		if text[0] != '\\' {
			flushUnits()
			r, size := utf8.DecodeRuneInString(text)
			b.WriteRune(r)
			text = text[size:]
			continue
		}
		if len(text) < 2 {
			return "", fmt.Errorf("invalid escape sequence in %s", token)
		}
		esc := text[1]
		text = text[2:]
		if esc == 'u' {
			unit, ok := parseHex4(text, 0)
			if !ok {
				return "", fmt.Errorf("invalid escape sequence in %s", token)
			}
			units = append(units, unit)
			text = text[4:]
			continue
		}
		flushUnits()
		switch esc {
		case '\\', '"', '\'', '/':
			b.WriteByte(esc)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		default:
			return "", fmt.Errorf("invalid escape sequence in %s", token)
		}
	}
	flushUnits()
	return b.String(), nil
}

// LiteralHasType reports whether a literal token is a valid value of the
// primitive type. Negative numbers are expected as a single token whose text
// starts with '-'.
func LiteralHasType(token *Token, p Primitive) bool {
	switch token.kind {
	case T_IDENT:
		return p == Primitive_BOOL && (token.text == "true" || token.text == "false")
	case T_NUMBER:
		return numberHasType(token.text, p)
	case T_STRING_LIT:
		value, err := UnquoteString(token)
		if err != nil {
			return false
		}
		return stringHasType(value, p)
	}
	return false
}

func numberHasType(text string, p Primitive) bool {
	isInt := !strings.Contains(text, ".")
	switch p {
	case Primitive_INT32:
		_, err := strconv.ParseInt(text, 10, 32)
		return isInt && err == nil
	case Primitive_INT64:
		_, err := strconv.ParseInt(text, 10, 64)
		return isInt && err == nil
	case Primitive_UINT64:
		_, err := strconv.ParseUint(text, 10, 64)
		return isInt && err == nil
	case Primitive_FLOAT32:
		_, err := strconv.ParseFloat(text, 32)
		return err == nil
	case Primitive_FLOAT64:
		_, err := strconv.ParseFloat(text, 64)
		return err == nil
	case Primitive_TIMESTAMP:
		millis, err := strconv.ParseInt(text, 10, 64)
		return isInt && err == nil && inTimestampRange(millis)
	}
	return false
}

func stringHasType(value string, p Primitive) bool {
	switch p {
	case Primitive_STRING:
		return true
	case Primitive_FLOAT32, Primitive_FLOAT64:
		return value == "NaN" || value == "Infinity" || value == "-Infinity"
	case Primitive_TIMESTAMP:
		_, ok := ParseTimestamp(value)
		return ok
	case Primitive_BYTES:
		_, ok := ParseBytes(value)
		return ok
	}
	return false
}

// ParseTimestamp parses an RFC 3339 date-time and returns its offset from
// the Unix epoch in milliseconds.
func ParseTimestamp(value string) (int64, bool) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return 0, false
	}
	millis := t.UnixMilli()
	if !inTimestampRange(millis) {
		return 0, false
	}
	return millis, true
}

// ParseBytes decodes a bytes literal of the form "hex:0a1b".
func ParseBytes(value string) ([]byte, bool) {
	digits, ok := strings.CutPrefix(value, "hex:")
	if !ok {
		return nil, false
	}
	buf, err := hex.DecodeString(digits)
	if err != nil {
		return nil, false
	}
	return buf, true
}

func inTimestampRange(millis int64) bool {
	return millis >= -maxTimestampMillis && millis <= maxTimestampMillis
}

// ParseFloat returns the value of a float literal, which is either a number
// or one of the strings "NaN", "Infinity" and "-Infinity".
func ParseFloat(token *Token) (float64, bool) {
	if token.kind == T_NUMBER {
		f, err := strconv.ParseFloat(token.text, 64)
		return f, err == nil
	}
	value, err := UnquoteString(token)
	if err != nil {
		return 0, false
	}
	switch value {
	case "NaN":
		return math.NaN(), true
	case "Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	return 0, false
}
