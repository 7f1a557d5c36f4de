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
	"unicode/utf8"

	"fortio.org/safecast"
)

const maxSrcLen = 0x7FFFFFFF // (2**31)-1

// A CodeLine is one physical line of a module's source. All tokens that start
// on the line share the same *CodeLine.
type CodeLine struct {
	lineNumber uint32
	line       string
	position   uint32
	modulePath string
}

func NewCodeLine(lineNumber uint32, line string, position uint32, modulePath string) *CodeLine {
	return &CodeLine{
		lineNumber: lineNumber,
		line:       line,
		position:   position,
		modulePath: modulePath,
	}
}

// LineNumber is 0-based.
func (l *CodeLine) LineNumber() uint32 {
	return l.lineNumber
}

// Line is the text of the line, without its line terminator.
func (l *CodeLine) Line() string {
	return l.line
}

// Position is the byte offset of the line's first character in the module.
func (l *CodeLine) Position() uint32 {
	return l.position
}

func (l *CodeLine) ModulePath() string {
	return l.modulePath
}

type Token struct {
	text     string
	position uint32
	line     *CodeLine
	column   uint32
	kind     TokenKind
}

func NewToken(text string, kind TokenKind, position uint32, line *CodeLine, column uint32) *Token {
	return &Token{
		text:     text,
		position: position,
		line:     line,
		column:   column,
		kind:     kind,
	}
}

func (t *Token) Text() string {
	return t.text
}

func (t *Token) Kind() TokenKind {
	return t.kind
}

// Position is the byte offset of the token in the module.
func (t *Token) Position() uint32 {
	return t.position
}

func (t *Token) Line() *CodeLine {
	return t.line
}

// Column is the 0-based offset of the token within its line, in characters.
func (t *Token) Column() uint32 {
	return t.column
}

func (t *Token) ModulePath() string {
	return t.line.modulePath
}

// Location renders the token's position as "path:line:column", 1-based.
func (t *Token) Location() string {
	return fmt.Sprintf(
		"%s:%d:%d",
		t.line.modulePath,
		t.line.lineNumber+1,
		t.column+1,
	)
}

func (t *Token) String() string {
	if t.kind == T_EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.text)
}

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_IDENT
	T_NUMBER
	T_STRING_LIT

	T_OPEN_CURL
	T_CLOSE_CURL
	T_OPEN_SQUARE
	T_CLOSE_SQUARE
	T_OPEN_PAREN
	T_CLOSE_PAREN
	T_LT
	T_GT
	T_SEMICOLON
	T_COLON
	T_COMMA
	T_DOT
	T_EQ
	T_PIPE
	T_QUESTION
	T_STAR
	T_MINUS

	T_INVALID
)

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_IDENT:
		return "IDENT"
	case T_NUMBER:
		return "NUMBER"
	case T_STRING_LIT:
		return "STRING_LIT"
	case T_OPEN_CURL:
		return "OPEN_CURL"
	case T_CLOSE_CURL:
		return "CLOSE_CURL"
	case T_OPEN_SQUARE:
		return "OPEN_SQUARE"
	case T_CLOSE_SQUARE:
		return "CLOSE_SQUARE"
	case T_OPEN_PAREN:
		return "OPEN_PAREN"
	case T_CLOSE_PAREN:
		return "CLOSE_PAREN"
	case T_LT:
		return "LT"
	case T_GT:
		return "GT"
	case T_SEMICOLON:
		return "SEMICOLON"
	case T_COLON:
		return "COLON"
	case T_COMMA:
		return "COMMA"
	case T_DOT:
		return "DOT"
	case T_EQ:
		return "EQ"
	case T_PIPE:
		return "PIPE"
	case T_QUESTION:
		return "QUESTION"
	case T_STAR:
		return "STAR"
	case T_MINUS:
		return "MINUS"
	case T_INVALID:
		return "INVALID"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

var sigils = map[byte]TokenKind{
	'{': T_OPEN_CURL,
	'}': T_CLOSE_CURL,
	'[': T_OPEN_SQUARE,
	']': T_CLOSE_SQUARE,
	'(': T_OPEN_PAREN,
	')': T_CLOSE_PAREN,
	'<': T_LT,
	'>': T_GT,
	';': T_SEMICOLON,
	':': T_COLON,
	',': T_COMMA,
	'.': T_DOT,
	'=': T_EQ,
	'|': T_PIPE,
	'?': T_QUESTION,
	'*': T_STAR,
	'-': T_MINUS,
}

// Tokenize splits a module's source into tokens. Comments and whitespace are
// dropped. The returned slice always ends with a T_EOF token whose text is
// empty, even when lexical errors were reported.
func Tokenize(src string, modulePath string) ([]*Token, []*Error) {
	t := &tokenizer{
		src:        src,
		modulePath: modulePath,
	}
	if len(src) > maxSrcLen {
		t.lines = []*CodeLine{NewCodeLine(0, "", 0, modulePath)}
		t.src = ""
		t.errors = append(t.errors, errSourceTooLong(t.token(0, 0, T_INVALID), len(src)))
		t.emit(0, 0, T_EOF)
		return t.tokens, t.errors
	}
	t.splitLines()
	if !utf8.ValidString(src) {
		off := invalidUtf8Offset(src)
		t.errors = append(t.errors, errInvalidUtf8(t.token(off, off+1, T_INVALID)))
		t.emit(len(src), len(src), T_EOF)
		return t.tokens, t.errors
	}
	t.scan()
	t.emit(len(src), len(src), T_EOF)
	return t.tokens, t.errors
}

type tokenizer struct {
	src        string
	modulePath string
	offset     int
	lines      []*CodeLine
	lineIdx    int
	tokens     []*Token
	errors     []*Error
}

func (t *tokenizer) splitLines() {
	start := 0
	for lineNumber := 0; ; lineNumber++ {
		end := strings.IndexByte(t.src[start:], '\n')
		last := end < 0
		if last {
			end = len(t.src)
		} else {
			end += start
		}
		text := strings.TrimSuffix(t.src[start:end], "\r")
		t.lines = append(t.lines, NewCodeLine(
			offset32(lineNumber),
			text,
			offset32(start),
			t.modulePath,
		))
		if last {
			return
		}
		start = end + 1
	}
}

// lineAt returns the line containing the byte offset. Lookups are expected to
// be mostly increasing, so the search resumes from the previous hit.
func (t *tokenizer) lineAt(offset int) *CodeLine {
	if t.lineIdx >= len(t.lines) || int(t.lines[t.lineIdx].position) > offset {
		t.lineIdx = 0
	}
	for t.lineIdx+1 < len(t.lines) && int(t.lines[t.lineIdx+1].position) <= offset {
		t.lineIdx++
	}
	return t.lines[t.lineIdx]
}

func (t *tokenizer) token(start, end int, kind TokenKind) *Token {
	line := t.lineAt(start)
	lineStart := int(line.position)
	column := utf8.RuneCountInString(t.src[lineStart:start])
	return NewToken(
		t.src[start:end],
		kind,
		offset32(start),
		line,
		offset32(column),
	)
}

func (t *tokenizer) emit(start, end int, kind TokenKind) *Token {
	token := t.token(start, end, kind)
	t.tokens = append(t.tokens, token)
	return token
}

func (t *tokenizer) scan() {
	for t.offset < len(t.src) {
		c := t.src[t.offset]
		switch {
		case isSpace(c):
			t.offset++
		case c == '/' && t.peekByte(1) == '/':
			t.skipLineComment()
		case c == '/' && t.peekByte(1) == '*':
			t.skipBlockComment()
		case isDigit(c):
			t.nextNumber()
		case isLetter(c) || c == '_':
			t.nextWord()
		case c == '"' || c == '\'':
			t.nextStringLit()
		default:
			if kind, ok := sigils[c]; ok {
				t.emit(t.offset, t.offset+1, kind)
				t.offset++
				continue
			}
			t.nextInvalid()
		}
	}
}

func (t *tokenizer) peekByte(n int) byte {
	if t.offset+n < len(t.src) {
		return t.src[t.offset+n]
	}
	return 0
}

func (t *tokenizer) skipLineComment() {
	end := strings.IndexByte(t.src[t.offset:], '\n')
	if end < 0 {
		t.offset = len(t.src)
		return
	}
	t.offset += end + 1
}

func (t *tokenizer) skipBlockComment() {
	end := strings.Index(t.src[t.offset+2:], "*/")
	if end < 0 {
		token := t.token(t.offset, t.offset+2, T_INVALID)
		t.errors = append(t.errors, errUnterminatedComment(token))
		t.offset = len(t.src)
		return
	}
	t.offset += 2 + end + 2
}

func (t *tokenizer) nextNumber() {
	start := t.offset
	end := scanWord(t.src, start)
	if end < len(t.src) && t.src[end] == '.' && end+1 < len(t.src) && isDigit(t.src[end+1]) {
		end = scanWord(t.src, end+1)
	}
	token := t.emit(start, end, T_NUMBER)
	t.offset = end
	if !isValidNumber(token.text) {
		t.errors = append(t.errors, errInvalidNumber(token))
	}
}

func (t *tokenizer) nextWord() {
	start := t.offset
	end := scanWord(t.src, start)
	token := t.emit(start, end, T_IDENT)
	t.offset = end
	if !isValidIdent(token.text) {
		t.errors = append(t.errors, errInvalidIdent(token))
	}
}

func (t *tokenizer) nextStringLit() {
	start := t.offset
	quote := t.src[start]
	var badEscape, loneSurrogate bool
	var pendingHigh bool
	off := start + 1
	for {
		if off >= len(t.src) || t.src[off] == '\n' || t.src[off] == '\r' {
			token := t.emit(start, off, T_STRING_LIT)
			t.errors = append(t.errors, errUnterminatedString(token))
			t.offset = off
			return
		}
		c := t.src[off]
		if c == quote {
			off++
			break
		}
		if c != '\\' {
			if pendingHigh {
				loneSurrogate = true
				pendingHigh = false
			}
			off++
			continue
		}
		if off+1 >= len(t.src) {
			off++
			continue
		}
		esc := t.src[off+1]
		if esc == '\n' || esc == '\r' {
			off++
			continue
		}
		if esc != 'u' {
			if pendingHigh {
				loneSurrogate = true
				pendingHigh = false
			}
			if !isSimpleEscape(esc) {
				badEscape = true
			}
			off += 2
			continue
		}
		unit, ok := parseHex4(t.src, off+2)
		if !ok {
			badEscape = true
			off += 2
			continue
		}
		off += 6
		switch {
		case unit >= 0xD800 && unit <= 0xDBFF:
			if pendingHigh {
				loneSurrogate = true
			}
			pendingHigh = true
		case unit >= 0xDC00 && unit <= 0xDFFF:
			if !pendingHigh {
				loneSurrogate = true
			}
			pendingHigh = false
		default:
			if pendingHigh {
				loneSurrogate = true
			}
			pendingHigh = false
		}
	}
	if pendingHigh {
		loneSurrogate = true
	}
	token := t.emit(start, off, T_STRING_LIT)
	t.offset = off
	if badEscape {
		t.errors = append(t.errors, errInvalidEscape(token))
	}
	if loneSurrogate {
		t.errors = append(t.errors, errLoneSurrogates(token))
	}
}

// nextInvalid consumes the maximal run of characters that cannot start any
// token.
func (t *tokenizer) nextInvalid() {
	start := t.offset
	end := start
	for end < len(t.src) {
		c := t.src[end]
		if isSpace(c) || isDigit(c) || isLetter(c) || c == '_' || c == '"' || c == '\'' {
			break
		}
		if _, ok := sigils[c]; ok {
			break
		}
		if c == '/' && end+1 < len(t.src) && (t.src[end+1] == '/' || t.src[end+1] == '*') {
			break
		}
		_, size := utf8.DecodeRuneInString(t.src[end:])
		end += size
	}
	token := t.emit(start, end, T_INVALID)
	t.errors = append(t.errors, errInvalidSequence(token))
	t.offset = end
}

func scanWord(src string, off int) int {
	for off < len(src) && (isLetter(src[off]) || isDigit(src[off]) || src[off] == '_') {
		off++
	}
	return off
}

func isValidNumber(text string) bool {
	intPart, fracPart, hasFrac := strings.Cut(text, ".")
	if intPart == "" || !allDigits(intPart) {
		return false
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return false
	}
	if hasFrac && (fracPart == "" || !allDigits(fracPart)) {
		return false
	}
	return true
}

func isValidIdent(text string) bool {
	if text == "" || text[0] == '_' || text[len(text)-1] == '_' {
		return false
	}
	for ii := 1; ii < len(text); ii++ {
		if text[ii-1] != '_' {
			continue
		}
		if text[ii] == '_' || isDigit(text[ii]) {
			return false
		}
	}
	return true
}

func isSimpleEscape(c byte) bool {
	switch c {
	case '\\', '"', '\'', 'n', 'r', 't', '/', 'b', 'f':
		return true
	}
	return false
}

func parseHex4(src string, off int) (uint16, bool) {
	if off+4 > len(src) {
		return 0, false
	}
	var unit uint16
	for _, c := range []byte(src[off : off+4]) {
		var digit byte
		switch {
		case '0' <= c && c <= '9':
			digit = c - '0'
		case 'a' <= c && c <= 'f':
			digit = c - 'a' + 10
		case 'A' <= c && c <= 'F':
			digit = c - 'A' + 10
		default:
			return 0, false
		}
		unit = unit<<4 | uint16(digit)
	}
	return unit, true
}

func allDigits(s string) bool {
	for ii := 0; ii < len(s); ii++ {
		if !isDigit(s[ii]) {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isUpper(c byte) bool {
	return 'A' <= c && c <= 'Z'
}

func isLower(c byte) bool {
	return 'a' <= c && c <= 'z'
}

func invalidUtf8Offset(src string) int {
	off := 0
	for off < len(src) {
		r, size := utf8.DecodeRuneInString(src[off:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		off += size
	}
	return off
}

func offset32(n int) uint32 {
	n32, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Sprintf("offset %d out of range: %v", n, err))
	}
	return n32
}
