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
)

// A RecordKey uniquely identifies a record within a set of modules. It is
// formed from the module path and the byte offset of the record's name.
type RecordKey string

func newRecordKey(modulePath string, name *Token) RecordKey {
	return RecordKey(fmt.Sprintf("%s:%d", modulePath, name.position))
}

type RecordType uint8

const (
	RecordType_STRUCT RecordType = iota
	RecordType_ENUM
)

func (t RecordType) String() string {
	switch t {
	case RecordType_STRUCT:
		return "struct"
	case RecordType_ENUM:
		return "enum"
	default:
		return fmt.Sprintf("RecordType(%d)", uint8(t))
	}
}

type Numbering uint8

const (
	NumberingUnset Numbering = iota
	NumberingImplicit
	NumberingExplicit

	// NumberingBroken marks a record that mixed implicit and explicit
	// numbering. No further numbering diagnostics are reported for it.
	NumberingBroken
)

func (n Numbering) String() string {
	switch n {
	case NumberingUnset:
		return "unset"
	case NumberingImplicit:
		return "implicit"
	case NumberingExplicit:
		return "explicit"
	case NumberingBroken:
		return "broken"
	default:
		return fmt.Sprintf("Numbering(%d)", uint8(n))
	}
}

// Module is the parsed form of one schema file.
type Module struct {
	path              string
	tokens            []*Token
	declarations      []Declaration
	nameToDeclaration map[string]Declaration
	records           []*Record
	procedures        []*Procedure
	constants         []*Constant
	imports           []Declaration
}

func (m *Module) Path() string {
	return m.path
}

// Tokens returns every token of the module, ending with T_EOF.
func (m *Module) Tokens() []*Token {
	return m.tokens
}

// Declarations returns the top-level declarations in source order.
func (m *Module) Declarations() []Declaration {
	return m.declarations
}

func (m *Module) Declaration(name string) (Declaration, bool) {
	decl, ok := m.nameToDeclaration[name]
	return decl, ok
}

// Records returns every record of the module, including nested ones. Nested
// records come before the record that contains them.
func (m *Module) Records() []*Record {
	return m.records
}

func (m *Module) Procedures() []*Procedure {
	return m.procedures
}

func (m *Module) Constants() []*Constant {
	return m.constants
}

// Imports returns the module's *Import and *ImportAlias declarations in
// source order.
func (m *Module) Imports() []Declaration {
	return m.imports
}

type Declaration interface {
	Name() *Token
	isDeclaration()
}

func (*Record) isDeclaration()      {}
func (*Field) isDeclaration()       {}
func (*Removed) isDeclaration()     {}
func (*Import) isDeclaration()      {}
func (*ImportAlias) isDeclaration() {}
func (*Procedure) isDeclaration()   {}
func (*Constant) isDeclaration()    {}

type Record struct {
	key               RecordKey
	name              *Token
	recordType        RecordType
	declarations      []Declaration
	nameToDeclaration map[string]Declaration
	fields            []*Field
	nestedRecords     []*Record
	numbering         Numbering
	removedNumbers    []int32
}

func (r *Record) Key() RecordKey {
	return r.key
}

func (r *Record) Name() *Token {
	return r.name
}

func (r *Record) RecordType() RecordType {
	return r.recordType
}

// Declarations returns the fields, removed numbers and nested records of
// the record body in source order.
func (r *Record) Declarations() []Declaration {
	return r.declarations
}

// Declaration looks up a field or nested record by name.
func (r *Record) Declaration(name string) (Declaration, bool) {
	decl, ok := r.nameToDeclaration[name]
	return decl, ok
}

func (r *Record) Fields() []*Field {
	return r.fields
}

func (r *Record) NestedRecords() []*Record {
	return r.nestedRecords
}

func (r *Record) Numbering() Numbering {
	return r.numbering
}

func (r *Record) RemovedNumbers() []int32 {
	return r.removedNumbers
}

type Field struct {
	name        *Token
	number      int32
	numberToken *Token
	fieldType   TypeExpr
}

func (f *Field) Name() *Token {
	return f.name
}

func (f *Field) Number() int32 {
	return f.number
}

// NumberToken is the token of an explicit field number, or nil.
func (f *Field) NumberToken() *Token {
	return f.numberToken
}

// Type is nil for constant fields of an enum.
func (f *Field) Type() TypeExpr {
	return f.fieldType
}

// Removed reserves field numbers that may not be reused.
type Removed struct {
	keyword *Token
	numbers []int32
}

// Name returns the "removed" keyword. Removed declarations are not named.
func (r *Removed) Name() *Token {
	return r.keyword
}

func (r *Removed) Numbers() []int32 {
	return r.numbers
}

// Import is one name of an "import A, B from ..." statement. A statement
// importing several names produces one *Import per name.
type Import struct {
	name       *Token
	modulePath *Token
}

func (i *Import) Name() *Token {
	return i.name
}

// ModulePath is the string literal token naming the imported module.
func (i *Import) ModulePath() *Token {
	return i.modulePath
}

type ImportAlias struct {
	name       *Token
	modulePath *Token
}

func (i *ImportAlias) Name() *Token {
	return i.name
}

func (i *ImportAlias) ModulePath() *Token {
	return i.modulePath
}

type Procedure struct {
	name         *Token
	requestType  TypeExpr
	responseType TypeExpr
	number       uint32
	numberToken  *Token
}

func (p *Procedure) Name() *Token {
	return p.name
}

func (p *Procedure) RequestType() TypeExpr {
	return p.requestType
}

func (p *Procedure) ResponseType() TypeExpr {
	return p.responseType
}

// Number is either explicit or derived from the module path and the
// procedure name.
func (p *Procedure) Number() uint32 {
	return p.number
}

func (p *Procedure) HasExplicitNumber() bool {
	return p.numberToken != nil
}

type Constant struct {
	name      *Token
	constType TypeExpr
	value     Value
}

func (c *Constant) Name() *Token {
	return c.name
}

func (c *Constant) Type() TypeExpr {
	return c.constType
}

func (c *Constant) Value() Value {
	return c.value
}

type TypeExpr interface {
	FirstToken() *Token
	isTypeExpr()
}

func (*PrimitiveTypeExpr) isTypeExpr() {}
func (*RecordRefExpr) isTypeExpr()     {}
func (*ArrayTypeExpr) isTypeExpr()     {}
func (*NullableTypeExpr) isTypeExpr()  {}

type PrimitiveTypeExpr struct {
	token     *Token
	primitive Primitive
}

func (t *PrimitiveTypeExpr) FirstToken() *Token {
	return t.token
}

func (t *PrimitiveTypeExpr) Primitive() Primitive {
	return t.primitive
}

// RecordRefExpr is a possibly qualified reference to a record, such as
// "Foo", "Outer.Inner", ".Foo" or "alias.Foo".
type RecordRefExpr struct {
	firstToken *Token
	absolute   bool
	nameParts  []*Token
}

func (t *RecordRefExpr) FirstToken() *Token {
	return t.firstToken
}

// Absolute is true for references starting with '.', which are resolved from
// the module scope.
func (t *RecordRefExpr) Absolute() bool {
	return t.absolute
}

func (t *RecordRefExpr) NameParts() []*Token {
	return t.nameParts
}

type ArrayTypeExpr struct {
	open    *Token
	item    TypeExpr
	keyPath []*Token
}

func (t *ArrayTypeExpr) FirstToken() *Token {
	return t.open
}

func (t *ArrayTypeExpr) Item() TypeExpr {
	return t.item
}

// KeyPath is empty for arrays that are not keyed.
func (t *ArrayTypeExpr) KeyPath() []*Token {
	return t.keyPath
}

type NullableTypeExpr struct {
	value TypeExpr
}

func (t *NullableTypeExpr) FirstToken() *Token {
	return t.value.FirstToken()
}

func (t *NullableTypeExpr) Value() TypeExpr {
	return t.value
}

type Value interface {
	FirstToken() *Token
	isValue()
}

func (*LiteralValue) isValue() {}
func (*ArrayValue) isValue()   {}
func (*ObjectValue) isValue()  {}

// LiteralValue is a number, string, "true", "false" or "null".
type LiteralValue struct {
	token *Token
}

func (v *LiteralValue) FirstToken() *Token {
	return v.token
}

func (v *LiteralValue) Token() *Token {
	return v.token
}

func (v *LiteralValue) IsNull() bool {
	return v.token.kind == T_IDENT && v.token.text == "null"
}

type ArrayValue struct {
	open  *Token
	items []Value
}

func (v *ArrayValue) FirstToken() *Token {
	return v.open
}

func (v *ArrayValue) Items() []Value {
	return v.items
}

type ObjectValue struct {
	open    *Token
	entries []*ObjectEntry
}

func (v *ObjectValue) FirstToken() *Token {
	return v.open
}

func (v *ObjectValue) Entries() []*ObjectEntry {
	return v.entries
}

// Entry returns the first entry with the given name.
func (v *ObjectValue) Entry(name string) (*ObjectEntry, bool) {
	for _, entry := range v.entries {
		if entry.name.text == name {
			return entry, true
		}
	}
	return nil, false
}

type ObjectEntry struct {
	name  *Token
	value Value
}

func (e *ObjectEntry) Name() *Token {
	return e.name
}

func (e *ObjectEntry) Value() Value {
	return e.value
}
