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

package compiler

import (
	"maps"
	"slices"
	"strings"

	"go.soia-lang.org/soia/syntax"
)

// A Module is the resolved form of one schema file. Modules returned by a
// Resolver are never modified afterwards, and expose no way to modify them.
type Module struct {
	path                string
	node                *syntax.Module
	records             []*Record
	recordsByKey        map[syntax.RecordKey]*Record
	procedures          []*Procedure
	constants           []*Constant
	pathToImportedNames map[string]*ImportedNames
}

func (m *Module) Path() string {
	return m.path
}

// Syntax returns the parsed module the IR was built from.
func (m *Module) Syntax() *syntax.Module {
	return m.node
}

// Records returns the module's records, nested records before the record
// that contains them.
func (m *Module) Records() []*Record {
	return slices.Clone(m.records)
}

// Record looks up one of the module's own records.
func (m *Module) Record(key syntax.RecordKey) (*Record, bool) {
	r, ok := m.recordsByKey[key]
	return r, ok
}

func (m *Module) Procedures() []*Procedure {
	return slices.Clone(m.procedures)
}

func (m *Module) Constants() []*Constant {
	return slices.Clone(m.constants)
}

func (m *Module) Declarations() []syntax.Declaration {
	return slices.Clone(m.node.Declarations())
}

func (m *Module) Declaration(name string) (syntax.Declaration, bool) {
	return m.node.Declaration(name)
}

// PathToImportedNames maps the normalized path of each imported module to
// the names imported from it.
func (m *Module) PathToImportedNames() map[string]*ImportedNames {
	return maps.Clone(m.pathToImportedNames)
}

// ImportedModulePaths returns the normalized paths of imported modules,
// sorted.
func (m *Module) ImportedModulePaths() []string {
	return slices.Sorted(maps.Keys(m.pathToImportedNames))
}

// ImportedNames is either a set of names or a single alias, never both.
type ImportedNames struct {
	token *syntax.Token
	names map[string]*syntax.Import
	order []*syntax.Import
	alias *syntax.ImportAlias
	used  map[string]bool
	// failed is set when the imported module could not be resolved.
	failed bool
}

func newImportedNames() *ImportedNames {
	return &ImportedNames{
		names: make(map[string]*syntax.Import),
		used:  make(map[string]bool),
	}
}

// Alias returns the alias of "import * as alias", or "".
func (n *ImportedNames) Alias() string {
	if n.alias == nil {
		return ""
	}
	return n.alias.Name().Text()
}

func (n *ImportedNames) Names() []string {
	return slices.Sorted(maps.Keys(n.names))
}

type Record struct {
	key           syntax.RecordKey
	node          *syntax.Record
	modulePath    string
	qualifiedName string
	fields        []*Field
	fieldsByName  map[string]*Field
	nested        []*Record
	nestedByName  map[string]*Record
}

func (r *Record) Key() syntax.RecordKey {
	return r.key
}

func (r *Record) Name() string {
	return r.node.Name().Text()
}

// QualifiedName is the name of the record prefixed by the names of the
// records that contain it, e.g. "Outer.Inner".
func (r *Record) QualifiedName() string {
	return r.qualifiedName
}

func (r *Record) Token() *syntax.Token {
	return r.node.Name()
}

func (r *Record) Kind() syntax.RecordType {
	return r.node.RecordType()
}

func (r *Record) Numbering() syntax.Numbering {
	return r.node.Numbering()
}

func (r *Record) RemovedNumbers() []int32 {
	return slices.Clone(r.node.RemovedNumbers())
}

func (r *Record) ModulePath() string {
	return r.modulePath
}

func (r *Record) Fields() []*Field {
	return slices.Clone(r.fields)
}

func (r *Record) Field(name string) (*Field, bool) {
	f, ok := r.fieldsByName[name]
	return f, ok
}

// FieldByNumber returns the field with the given number, if any.
func (r *Record) FieldByNumber(number int32) (*Field, bool) {
	for _, f := range r.fields {
		if f.Number() == number {
			return f, true
		}
	}
	return nil, false
}

func (r *Record) NestedRecords() []*Record {
	return slices.Clone(r.nested)
}

type Field struct {
	node        *syntax.Field
	fieldType   Type
	isRecursive bool
}

func (f *Field) Name() string {
	return f.node.Name().Text()
}

func (f *Field) Token() *syntax.Token {
	return f.node.Name()
}

func (f *Field) Number() int32 {
	return f.node.Number()
}

// Type is nil for the constant fields of an enum, and for fields whose type
// could not be resolved.
func (f *Field) Type() Type {
	return f.fieldType
}

// IsConstant reports whether the field is a constant of an enum.
func (f *Field) IsConstant() bool {
	return f.node.Type() == nil
}

// IsRecursive is true if the field's record can be reached from the field's
// type, so that a value of the record may contain itself.
func (f *Field) IsRecursive() bool {
	return f.isRecursive
}

type Procedure struct {
	node         *syntax.Procedure
	requestType  Type
	responseType Type
}

func (p *Procedure) Name() string {
	return p.node.Name().Text()
}

func (p *Procedure) Token() *syntax.Token {
	return p.node.Name()
}

func (p *Procedure) Number() uint32 {
	return p.node.Number()
}

func (p *Procedure) RequestType() Type {
	return p.requestType
}

func (p *Procedure) ResponseType() Type {
	return p.responseType
}

type Constant struct {
	node      *syntax.Constant
	constType Type
}

func (c *Constant) Name() string {
	return c.node.Name().Text()
}

func (c *Constant) Token() *syntax.Token {
	return c.node.Name()
}

func (c *Constant) Type() Type {
	return c.constType
}

func (c *Constant) Value() syntax.Value {
	return c.node.Value()
}

// Type is one of PrimitiveType, *RecordRefType, *ArrayType or
// *NullableType.
type Type interface {
	String() string
	isType()
}

func (PrimitiveType) isType()  {}
func (*RecordRefType) isType() {}
func (*ArrayType) isType()     {}
func (*NullableType) isType()  {}

type PrimitiveType struct {
	primitive syntax.Primitive
}

func (t PrimitiveType) Primitive() syntax.Primitive {
	return t.primitive
}

func (t PrimitiveType) String() string {
	return t.primitive.String()
}

type RecordRefType struct {
	key   syntax.RecordKey
	kind  syntax.RecordType
	name  string
	token *syntax.Token
}

func (t *RecordRefType) Key() syntax.RecordKey {
	return t.key
}

func (t *RecordRefType) Kind() syntax.RecordType {
	return t.kind
}

// Token is the last name segment of the reference.
func (t *RecordRefType) Token() *syntax.Token {
	return t.token
}

func (t *RecordRefType) String() string {
	return t.name
}

type ArrayType struct {
	item    Type
	keyPath *KeyPath
}

func (t *ArrayType) Item() Type {
	return t.item
}

// KeyPath is nil for arrays that are not keyed.
func (t *ArrayType) KeyPath() *KeyPath {
	return t.keyPath
}

func (t *ArrayType) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(t.item.String())
	if t.keyPath != nil {
		b.WriteByte('|')
		b.WriteString(t.keyPath.String())
	}
	b.WriteByte(']')
	return b.String()
}

type KeyPath struct {
	segments []*syntax.Token
	keyType  Type
}

func (p *KeyPath) Segments() []*syntax.Token {
	return slices.Clone(p.segments)
}

// KeyType is the type of the field at the end of the path: a primitive or
// an enum. It is nil if the path is invalid.
func (p *KeyPath) KeyType() Type {
	return p.keyType
}

func (p *KeyPath) String() string {
	names := make([]string, 0, len(p.segments))
	for _, seg := range p.segments {
		names = append(names, seg.Text())
	}
	return strings.Join(names, ".")
}

type NullableType struct {
	value Type
}

func (t *NullableType) Value() Type {
	return t.value
}

func (t *NullableType) String() string {
	return t.value.String() + "?"
}

// RecordLocation is a record together with the records that lexically
// contain it, outermost first.
type RecordLocation struct {
	record     *Record
	ancestors  []*Record
	modulePath string
}

func (l *RecordLocation) Record() *Record {
	return l.record
}

func (l *RecordLocation) Ancestors() []*Record {
	return slices.Clone(l.ancestors)
}

func (l *RecordLocation) ModulePath() string {
	return l.modulePath
}

// RecordMap holds the records of every module resolved in a session.
type RecordMap map[syntax.RecordKey]*RecordLocation
