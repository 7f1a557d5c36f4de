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
	"hash/fnv"
	"slices"
	"strconv"
	"strings"
)

// ParseSource tokenizes and parses a module. Lexical errors stop compilation
// before parsing, so if any are reported the returned module is nil.
func ParseSource(src string, modulePath string) (*Module, []*Error) {
	tokens, errs := Tokenize(src, modulePath)
	if len(errs) > 0 {
		return nil, errs
	}
	return Parse(tokens, modulePath)
}

// Parse builds the syntax tree of a module from its tokens. Parsing recovers
// from malformed statements, so the returned module is non-nil and contains
// every declaration that could be parsed, even when errors are reported.
func Parse(tokens []*Token, modulePath string) (*Module, []*Error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].kind != T_EOF {
		line := NewCodeLine(0, "", 0, modulePath)
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].line
		}
		tokens = append(slices.Clip(tokens), NewToken("", T_EOF, line.position, line, 0))
	}
	ctx := &parseCtx{
		tokens:     tokens,
		modulePath: modulePath,
	}
	module := &Module{
		path:              modulePath,
		tokens:            tokens,
		nameToDeclaration: make(map[string]Declaration),
	}
	ctx.statements(T_EOF, func() bool {
		return ctx.parseDeclaration(module)
	})
	for _, decl := range module.declarations {
		if record, ok := decl.(*Record); ok {
			module.records = appendRecords(module.records, record)
		}
	}
	return module, ctx.errors
}

func appendRecords(records []*Record, record *Record) []*Record {
	for _, nested := range record.nestedRecords {
		records = appendRecords(records, nested)
	}
	return append(records, record)
}

type parseCtx struct {
	tokens     []*Token
	index      int
	modulePath string
	errors     []*Error
}

func (ctx *parseCtx) error(err *Error) {
	ctx.errors = append(ctx.errors, err)
}

func (ctx *parseCtx) peek() *Token {
	return ctx.tokens[ctx.index]
}

func (ctx *parseCtx) consumeToken() *Token {
	token := ctx.tokens[ctx.index]
	if token.kind != T_EOF {
		ctx.index++
	}
	return token
}

func (ctx *parseCtx) checkCasing(token *Token, casing Casing) {
	if err := CheckCasing(token, casing); err != nil {
		ctx.error(err)
	}
}

type matcher struct {
	desc string
	test func(*Token) bool
}

var (
	matchIdent = matcher{
		desc: "identifier",
		test: func(t *Token) bool { return t.kind == T_IDENT },
	}
	matchNumber = matcher{
		desc: "number",
		test: func(t *Token) bool { return t.kind == T_NUMBER },
	}
	matchString = matcher{
		desc: "string literal",
		test: func(t *Token) bool { return t.kind == T_STRING_LIT },
	}
)

func sigil(kind TokenKind, text string) matcher {
	return matcher{
		desc: "'" + text + "'",
		test: func(t *Token) bool { return t.kind == kind },
	}
}

func keyword(text string) matcher {
	return matcher{
		desc: "'" + text + "'",
		test: func(t *Token) bool { return t.kind == T_IDENT && t.text == text },
	}
}

var (
	matchOpenCurl    = sigil(T_OPEN_CURL, "{")
	matchCloseCurl   = sigil(T_CLOSE_CURL, "}")
	matchOpenSquare  = sigil(T_OPEN_SQUARE, "[")
	matchCloseSquare = sigil(T_CLOSE_SQUARE, "]")
	matchOpenParen   = sigil(T_OPEN_PAREN, "(")
	matchCloseParen  = sigil(T_CLOSE_PAREN, ")")
	matchSemicolon   = sigil(T_SEMICOLON, ";")
	matchColon       = sigil(T_COLON, ":")
	matchComma       = sigil(T_COMMA, ",")
	matchDot         = sigil(T_DOT, ".")
	matchEq          = sigil(T_EQ, "=")
	matchPipe        = sigil(T_PIPE, "|")
	matchStar        = sigil(T_STAR, "*")
	matchMinus       = sigil(T_MINUS, "-")
)

// expect consumes the next token if it satisfies one of the matchers, and
// returns it along with the index of the matcher. Otherwise it reports what
// was expected and returns (nil, -1) without consuming anything.
func (ctx *parseCtx) expect(matchers ...matcher) (*Token, int) {
	token := ctx.peek()
	for ii, m := range matchers {
		if m.test(token) {
			ctx.consumeToken()
			return token, ii
		}
	}
	expected := make([]string, 0, len(matchers))
	for _, m := range matchers {
		expected = append(expected, m.desc)
	}
	ctx.error(errExpected(token, expected))
	return nil, -1
}

func (ctx *parseCtx) sigil(m matcher) bool {
	_, which := ctx.expect(m)
	return which == 0
}

func (ctx *parseCtx) trySigil(kind TokenKind) bool {
	if ctx.peek().kind != kind {
		return false
	}
	ctx.consumeToken()
	return true
}

func (ctx *parseCtx) ident() *Token {
	token, _ := ctx.expect(matchIdent)
	return token
}

// statements runs parse once per statement until the closing token or the
// end of input. When a statement fails, the parser skips ahead so that the
// rest of the input can still be checked.
func (ctx *parseCtx) statements(end TokenKind, parse func() bool) {
	for {
		token := ctx.peek()
		if token.kind == T_EOF || token.kind == end {
			return
		}
		start := ctx.index
		if parse() {
			continue
		}
		if ctx.index == start {
			ctx.consumeToken()
			continue
		}
		switch ctx.tokens[ctx.index-1].kind {
		case T_SEMICOLON, T_CLOSE_CURL:
			continue
		}
		ctx.skip()
	}
}

// skip discards tokens up to and including the next ';' or '}' that closes
// the current statement. Braces opened while skipping are balanced, and an
// unbalanced '}' is left for the enclosing record.
func (ctx *parseCtx) skip() {
	depth := 0
	for {
		token := ctx.peek()
		switch token.kind {
		case T_EOF:
			return
		case T_OPEN_CURL:
			depth++
		case T_CLOSE_CURL:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				ctx.consumeToken()
				return
			}
		case T_SEMICOLON:
			if depth == 0 {
				ctx.consumeToken()
				return
			}
		}
		ctx.consumeToken()
	}
}

func (ctx *parseCtx) parseDeclaration(module *Module) bool {
	_, which := ctx.expect(
		keyword("struct"),
		keyword("enum"),
		keyword("import"),
		keyword("procedure"),
		keyword("const"),
	)
	addDecl := func(decl Declaration) bool {
		name := decl.Name()
		if _, dup := module.nameToDeclaration[name.text]; dup {
			ctx.error(errDuplicateIdentifier(name))
			return false
		}
		module.nameToDeclaration[name.text] = decl
		module.declarations = append(module.declarations, decl)
		return true
	}
	switch which {
	case 0, 1:
		recordType := RecordType_STRUCT
		if which == 1 {
			recordType = RecordType_ENUM
		}
		record, ok := ctx.parseRecord(recordType)
		if record != nil {
			addDecl(record)
		}
		return ok
	case 2:
		imports, ok := ctx.parseImport()
		for _, decl := range imports {
			if addDecl(decl) {
				module.imports = append(module.imports, decl)
			}
		}
		return ok
	case 3:
		procedure := ctx.parseProcedure()
		if procedure == nil {
			return false
		}
		if addDecl(procedure) {
			module.procedures = append(module.procedures, procedure)
		}
		return true
	case 4:
		constant := ctx.parseConstant()
		if constant == nil {
			return false
		}
		if addDecl(constant) {
			module.constants = append(module.constants, constant)
		}
		return true
	}
	return false
}

// parseRecord parses a struct or enum after its keyword. The record is
// returned even if its body is incomplete.
func (ctx *parseCtx) parseRecord(recordType RecordType) (*Record, bool) {
	name := ctx.ident()
	if name == nil {
		return nil, false
	}
	ctx.checkCasing(name, UpperCamel)
	if !ctx.sigil(matchOpenCurl) {
		return nil, false
	}
	b := newRecordBuilder(ctx, name, recordType)
	ctx.statements(T_CLOSE_CURL, func() bool {
		return ctx.parseRecordMember(b)
	})
	ok := ctx.sigil(matchCloseCurl)
	return b.build(), ok
}

func (ctx *parseCtx) parseRecordMember(b *recordBuilder) bool {
	token, which := ctx.expect(
		keyword("struct"),
		keyword("enum"),
		keyword("removed"),
		matchIdent,
	)
	switch which {
	case 0, 1:
		recordType := RecordType_STRUCT
		if which == 1 {
			recordType = RecordType_ENUM
		}
		record, ok := ctx.parseRecord(recordType)
		if record != nil {
			b.addNested(record)
		}
		return ok
	case 2:
		return ctx.parseRemoved(b, token)
	case 3:
		return ctx.parseField(b, token)
	}
	return false
}

func (ctx *parseCtx) parseField(b *recordBuilder, name *Token) bool {
	field := &Field{name: name}
	var hasType bool
	if b.record.recordType == RecordType_STRUCT {
		if !ctx.sigil(matchColon) {
			return false
		}
		hasType = true
	} else {
		_, which := ctx.expect(matchColon, matchEq, matchSemicolon)
		switch which {
		case -1:
			return false
		case 0:
			hasType = true
		case 1:
			if !ctx.parseFieldNumber(field) {
				return false
			}
			if !ctx.sigil(matchSemicolon) {
				return false
			}
			ctx.checkCasing(name, UpperUnderscore)
			b.addField(field)
			return true
		case 2:
			ctx.checkCasing(name, UpperUnderscore)
			b.addField(field)
			return true
		}
	}
	if hasType {
		ctx.checkCasing(name, LowerUnderscore)
		field.fieldType = ctx.parseType()
		if field.fieldType == nil {
			return false
		}
	}
	_, which := ctx.expect(matchEq, matchSemicolon)
	switch which {
	case -1:
		return false
	case 0:
		if !ctx.parseFieldNumber(field) {
			return false
		}
		if !ctx.sigil(matchSemicolon) {
			return false
		}
	}
	b.addField(field)
	return true
}

func (ctx *parseCtx) parseFieldNumber(field *Field) bool {
	token, _ := ctx.expect(matchNumber)
	if token == nil {
		return false
	}
	number, ok := parseFieldNumber(token)
	if !ok {
		ctx.error(errInvalidFieldNumber(token))
		return false
	}
	field.number = number
	field.numberToken = token
	return true
}

func parseFieldNumber(token *Token) (int32, bool) {
	if strings.Contains(token.text, ".") {
		return 0, false
	}
	n, err := strconv.ParseInt(token.text, 10, 32)
	if err != nil || n < 0 {
		return 0, false
	}
	return int32(n), true
}

func (ctx *parseCtx) parseRemoved(b *recordBuilder, keyword *Token) bool {
	if ctx.trySigil(T_SEMICOLON) {
		b.addRemoved(&Removed{keyword: keyword}, false)
		return true
	}
	removed := &Removed{keyword: keyword}
	for {
		lo, _ := ctx.expect(matchNumber)
		if lo == nil {
			return false
		}
		loNum, ok := parseFieldNumber(lo)
		if !ok {
			ctx.error(errInvalidFieldNumber(lo))
			return false
		}
		hiNum := loNum
		if ctx.trySigil(T_MINUS) {
			hi, _ := ctx.expect(matchNumber)
			if hi == nil {
				return false
			}
			if hiNum, ok = parseFieldNumber(hi); !ok {
				ctx.error(errInvalidFieldNumber(hi))
				return false
			}
			if hiNum < loNum {
				ctx.error(errInvalidRemovedRange(hi))
				return false
			}
		}
		for n := loNum; n <= hiNum; n++ {
			removed.numbers = append(removed.numbers, n)
		}
		_, which := ctx.expect(matchComma, matchSemicolon)
		if which < 0 {
			return false
		}
		if which == 1 {
			break
		}
	}
	b.addRemoved(removed, true)
	return true
}

func (ctx *parseCtx) parseType() TypeExpr {
	token, which := ctx.expect(matchOpenSquare, matchIdent, matchDot)
	var typeExpr TypeExpr
	switch which {
	case -1:
		return nil
	case 0:
		item := ctx.parseType()
		if item == nil {
			return nil
		}
		array := &ArrayTypeExpr{open: token, item: item}
		_, which := ctx.expect(matchPipe, matchCloseSquare)
		if which < 0 {
			return nil
		}
		if which == 0 {
			array.keyPath = ctx.dottedName()
			if array.keyPath == nil || !ctx.sigil(matchCloseSquare) {
				return nil
			}
		}
		typeExpr = array
	case 1:
		if primitive, ok := builtinTypes[token.text]; ok {
			typeExpr = &PrimitiveTypeExpr{token: token, primitive: primitive}
			break
		}
		parts := []*Token{token}
		for ctx.trySigil(T_DOT) {
			part := ctx.ident()
			if part == nil {
				return nil
			}
			parts = append(parts, part)
		}
		typeExpr = &RecordRefExpr{firstToken: token, nameParts: parts}
	case 2:
		parts := ctx.dottedName()
		if parts == nil {
			return nil
		}
		typeExpr = &RecordRefExpr{firstToken: token, absolute: true, nameParts: parts}
	}
	if ctx.trySigil(T_QUESTION) {
		typeExpr = &NullableTypeExpr{value: typeExpr}
	}
	return typeExpr
}

// dottedName parses "a.b.c", returning nil on error.
func (ctx *parseCtx) dottedName() []*Token {
	var parts []*Token
	for {
		part := ctx.ident()
		if part == nil {
			return nil
		}
		parts = append(parts, part)
		if !ctx.trySigil(T_DOT) {
			return parts
		}
	}
}

func (ctx *parseCtx) parseImport() ([]Declaration, bool) {
	token, which := ctx.expect(matchStar, matchIdent)
	switch which {
	case 0:
		if _, which := ctx.expect(keyword("as")); which < 0 {
			return nil, false
		}
		alias := ctx.ident()
		if alias == nil {
			return nil, false
		}
		ctx.checkCasing(alias, LowerUnderscore)
		modulePath := ctx.importFrom()
		if modulePath == nil {
			return nil, false
		}
		return []Declaration{&ImportAlias{name: alias, modulePath: modulePath}}, true
	case 1:
		names := []*Token{token}
		for ctx.trySigil(T_COMMA) {
			name := ctx.ident()
			if name == nil {
				return nil, false
			}
			names = append(names, name)
		}
		modulePath := ctx.importFrom()
		if modulePath == nil {
			return nil, false
		}
		imports := make([]Declaration, 0, len(names))
		for _, name := range names {
			imports = append(imports, &Import{name: name, modulePath: modulePath})
		}
		return imports, true
	}
	return nil, false
}

func (ctx *parseCtx) importFrom() *Token {
	if _, which := ctx.expect(keyword("from")); which < 0 {
		return nil
	}
	modulePath, _ := ctx.expect(matchString)
	if modulePath == nil || !ctx.sigil(matchSemicolon) {
		return nil
	}
	return modulePath
}

func (ctx *parseCtx) parseProcedure() *Procedure {
	name := ctx.ident()
	if name == nil {
		return nil
	}
	ctx.checkCasing(name, UpperCamel)
	procedure := &Procedure{name: name}
	if !ctx.sigil(matchOpenParen) {
		return nil
	}
	if procedure.requestType = ctx.parseType(); procedure.requestType == nil {
		return nil
	}
	if !ctx.sigil(matchCloseParen) || !ctx.sigil(matchColon) {
		return nil
	}
	if procedure.responseType = ctx.parseType(); procedure.responseType == nil {
		return nil
	}
	_, which := ctx.expect(matchEq, matchSemicolon)
	switch which {
	case -1:
		return nil
	case 0:
		token, _ := ctx.expect(matchNumber)
		if token == nil {
			return nil
		}
		number, err := strconv.ParseUint(token.text, 10, 32)
		if err != nil {
			ctx.error(errInvalidProcedureNumber(token))
			return nil
		}
		if !ctx.sigil(matchSemicolon) {
			return nil
		}
		procedure.number = uint32(number)
		procedure.numberToken = token
	case 1:
		procedure.number = ProcedureNumber(ctx.modulePath, name.text)
	}
	return procedure
}

// ProcedureNumber is the number of a procedure declared without one: the
// 32-bit FNV-1a hash of "modulePath:Name".
func ProcedureNumber(modulePath, name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(modulePath + ":" + name))
	return h.Sum32()
}

func (ctx *parseCtx) parseConstant() *Constant {
	name := ctx.ident()
	if name == nil {
		return nil
	}
	ctx.checkCasing(name, UpperUnderscore)
	constant := &Constant{name: name}
	if !ctx.sigil(matchColon) {
		return nil
	}
	if constant.constType = ctx.parseType(); constant.constType == nil {
		return nil
	}
	if !ctx.sigil(matchEq) {
		return nil
	}
	if constant.value = ctx.parseValue(); constant.value == nil {
		return nil
	}
	if !ctx.sigil(matchSemicolon) {
		return nil
	}
	return constant
}

func (ctx *parseCtx) parseValue() Value {
	token, which := ctx.expect(
		matchOpenCurl,
		matchOpenSquare,
		matchString,
		matchNumber,
		matchMinus,
		keyword("true"),
		keyword("false"),
		keyword("null"),
	)
	switch which {
	case -1:
		return nil
	case 0:
		object := &ObjectValue{open: token}
		for !ctx.trySigil(T_CLOSE_CURL) {
			name := ctx.ident()
			if name == nil || !ctx.sigil(matchColon) {
				return nil
			}
			value := ctx.parseValue()
			if value == nil {
				return nil
			}
			object.entries = append(object.entries, &ObjectEntry{name: name, value: value})
			if ctx.trySigil(T_COMMA) {
				continue
			}
			if !ctx.sigil(matchCloseCurl) {
				return nil
			}
			break
		}
		return object
	case 1:
		array := &ArrayValue{open: token}
		for !ctx.trySigil(T_CLOSE_SQUARE) {
			item := ctx.parseValue()
			if item == nil {
				return nil
			}
			array.items = append(array.items, item)
			if ctx.trySigil(T_COMMA) {
				continue
			}
			if !ctx.sigil(matchCloseSquare) {
				return nil
			}
			break
		}
		return array
	case 4:
		number, _ := ctx.expect(matchNumber)
		if number == nil {
			return nil
		}
		negative := NewToken("-"+number.text, T_NUMBER, token.position, token.line, token.column)
		return &LiteralValue{token: negative}
	}
	return &LiteralValue{token: token}
}

// recordBuilder assigns field numbers as a record body is parsed, and checks
// that a record does not mix numbering styles or reuse numbers.
type recordBuilder struct {
	ctx          *parseCtx
	record       *Record
	nextImplicit int32
	numbers      map[int32]bool
}

func newRecordBuilder(ctx *parseCtx, name *Token, recordType RecordType) *recordBuilder {
	return &recordBuilder{
		ctx: ctx,
		record: &Record{
			key:               newRecordKey(ctx.modulePath, name),
			name:              name,
			recordType:        recordType,
			nameToDeclaration: make(map[string]Declaration),
		},
		numbers: make(map[int32]bool),
	}
}

func (b *recordBuilder) addName(decl Declaration) bool {
	name := decl.Name()
	if _, dup := b.record.nameToDeclaration[name.text]; dup {
		b.ctx.error(errDuplicateIdentifier(name))
		return false
	}
	b.record.nameToDeclaration[name.text] = decl
	return true
}

func (b *recordBuilder) setNumbering(numbering Numbering, token *Token) bool {
	r := b.record
	switch r.numbering {
	case NumberingBroken:
		return false
	case NumberingUnset:
		r.numbering = numbering
	case numbering:
	default:
		b.ctx.error(errMixedNumbering(token))
		r.numbering = NumberingBroken
		return false
	}
	return true
}

func (b *recordBuilder) claim(number int32, token *Token) {
	if b.numbers[number] {
		b.ctx.error(errDuplicateFieldNumber(token, number))
		return
	}
	b.numbers[number] = true
}

func (b *recordBuilder) nextNumber() int32 {
	number := b.nextImplicit
	b.nextImplicit++
	return number
}

func (b *recordBuilder) addField(field *Field) {
	if !b.addName(field) {
		return
	}
	if field.numberToken == nil {
		if b.setNumbering(NumberingImplicit, field.name) {
			field.number = b.nextNumber()
			b.claim(field.number, field.name)
		}
	} else if b.setNumbering(NumberingExplicit, field.name) {
		b.claim(field.number, field.name)
	}
	b.record.fields = append(b.record.fields, field)
	b.record.declarations = append(b.record.declarations, field)
}

func (b *recordBuilder) addRemoved(removed *Removed, explicit bool) {
	if !explicit {
		if b.setNumbering(NumberingImplicit, removed.keyword) {
			number := b.nextNumber()
			b.claim(number, removed.keyword)
			removed.numbers = []int32{number}
		}
	} else if b.setNumbering(NumberingExplicit, removed.keyword) {
		for _, number := range removed.numbers {
			b.claim(number, removed.keyword)
		}
	}
	b.record.removedNumbers = append(b.record.removedNumbers, removed.numbers...)
	b.record.declarations = append(b.record.declarations, removed)
}

func (b *recordBuilder) addNested(record *Record) {
	if !b.addName(record) {
		return
	}
	b.record.nestedRecords = append(b.record.nestedRecords, record)
	b.record.declarations = append(b.record.declarations, record)
}

func (b *recordBuilder) build() *Record {
	r := b.record
	if r.recordType == RecordType_ENUM && len(r.fields) == 0 {
		b.ctx.error(errEmptyEnum(r.name))
	}
	if r.numbering == NumberingExplicit {
		count := int32(len(b.numbers))
		for n := int32(0); n < count; n++ {
			if !b.numbers[n] {
				b.ctx.error(errMissingFieldNumber(r.name, n))
				break
			}
		}
	}
	slices.Sort(r.removedNumbers)
	return r
}
