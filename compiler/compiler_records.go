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
	"slices"

	"go.soia-lang.org/soia/syntax"
)

// resolveTypes resolves the type of every field, procedure and constant of
// the module. Types that cannot be resolved are left nil.
func (c *compiler) resolveTypes() {
	for _, record := range c.module.records {
		loc := c.records[record.key]
		scope := append(slices.Clip(loc.ancestors), record)
		for _, field := range record.fields {
			if expr := field.node.Type(); expr != nil {
				field.fieldType = c.resolveType(expr, scope)
			}
		}
	}
	for _, node := range c.node.Procedures() {
		c.module.procedures = append(c.module.procedures, &Procedure{
			node:         node,
			requestType:  c.resolveType(node.RequestType(), nil),
			responseType: c.resolveType(node.ResponseType(), nil),
		})
	}
	for _, node := range c.node.Constants() {
		c.module.constants = append(c.module.constants, &Constant{
			node:      node,
			constType: c.resolveType(node.Type(), nil),
		})
	}
}

// resolveType resolves a type expression. Record references are looked up
// first in the records enclosing the reference, innermost first, then at
// module scope.
func (c *compiler) resolveType(expr syntax.TypeExpr, scope []*Record) Type {
	switch expr := expr.(type) {
	case *syntax.PrimitiveTypeExpr:
		return PrimitiveType{primitive: expr.Primitive()}
	case *syntax.ArrayTypeExpr:
		item := c.resolveType(expr.Item(), scope)
		if item == nil {
			return nil
		}
		array := &ArrayType{item: item}
		if keyPath := expr.KeyPath(); len(keyPath) > 0 {
			array.keyPath = &KeyPath{segments: keyPath}
		}
		return array
	case *syntax.NullableTypeExpr:
		value := c.resolveType(expr.Value(), scope)
		if value == nil {
			return nil
		}
		return &NullableType{value: value}
	case *syntax.RecordRefExpr:
		record := c.resolveRecordRef(expr, scope)
		if record == nil {
			return nil
		}
		parts := expr.NameParts()
		return &RecordRefType{
			key:   record.key,
			kind:  record.Kind(),
			name:  record.qualifiedName,
			token: parts[len(parts)-1],
		}
	}
	panic("unreachable")
}

func (c *compiler) resolveRecordRef(expr *syntax.RecordRefExpr, scope []*Record) *Record {
	parts := expr.NameParts()
	first, rest := parts[0], parts[1:]

	var record *Record
	if !expr.Absolute() {
		for ii := len(scope) - 1; ii >= 0; ii-- {
			if nested, ok := scope[ii].nestedByName[first.Text()]; ok {
				record = nested
				break
			}
		}
	}
	if record == nil {
		decl, ok := c.node.Declaration(first.Text())
		if !ok {
			c.err(errNameNotFound(first))
			return nil
		}
		switch decl := decl.(type) {
		case *syntax.Record:
			record = c.module.recordsByKey[decl.Key()]
		case *syntax.Import:
			if record = c.importedRecord(decl, decl.Name(), first); record == nil {
				return nil
			}
		case *syntax.ImportAlias:
			if len(rest) == 0 {
				c.markUsed(decl)
				c.err(errNotAType(first))
				return nil
			}
			if record = c.importedRecord(decl, rest[0], rest[0]); record == nil {
				return nil
			}
			rest = rest[1:]
		default:
			c.err(errNotAType(first))
			return nil
		}
	}

	for _, part := range rest {
		nested, ok := record.nestedByName[part.Text()]
		if !ok {
			if _, isField := record.fieldsByName[part.Text()]; isField {
				c.err(errNotAType(part))
			} else {
				c.err(errNameNotFound(part))
			}
			return nil
		}
		record = nested
	}
	return record
}

func (c *compiler) markUsed(decl syntax.Declaration) *ImportedNames {
	modulePath, ok := c.importPaths[decl]
	if !ok {
		return nil
	}
	names := c.module.pathToImportedNames[modulePath]
	names.used[decl.Name().Text()] = true
	return names
}

// importedRecord looks up a top-level record of an imported module. Errors
// in the import itself have already been reported, so they resolve to nil
// silently.
func (c *compiler) importedRecord(decl syntax.Declaration, name, useToken *syntax.Token) *Record {
	names := c.markUsed(decl)
	if names == nil || names.failed {
		return nil
	}
	target := c.importedModules[c.importPaths[decl]]
	targetDecl, ok := target.Declaration(name.Text())
	if !ok {
		if _, isAlias := decl.(*syntax.ImportAlias); isAlias {
			c.err(errNameNotInModule(name))
		}
		return nil
	}
	switch targetDecl := targetDecl.(type) {
	case *syntax.Record:
		record, _ := target.Record(targetDecl.Key())
		return record
	case *syntax.Import, *syntax.ImportAlias:
		if _, isAlias := decl.(*syntax.ImportAlias); isAlias {
			c.err(errReimport(name))
		}
		return nil
	}
	c.err(errNotAType(useToken))
	return nil
}

// markRecursiveFields flags the fields whose type can reach the record the
// field belongs to.
func (c *compiler) markRecursiveFields() {
	for _, record := range c.module.records {
		for _, field := range record.fields {
			for _, key := range recordRefs(field.fieldType) {
				if key == record.key || c.reaches(key, record.key) {
					field.isRecursive = true
					break
				}
			}
		}
	}
}

// reaches reports whether the record "to" can be reached from the record
// "from" by following the types of record fields.
func (c *compiler) reaches(from, to syntax.RecordKey) bool {
	reachable, ok := c.resolver.reachable[from]
	if !ok {
		reachable, ok = c.reachable[from]
	}
	if !ok {
		reachable = make(map[syntax.RecordKey]bool)
		stack := []syntax.RecordKey{from}
		for len(stack) > 0 {
			key := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			loc := c.location(key)
			if loc == nil {
				continue
			}
			for _, field := range loc.record.fields {
				for _, ref := range recordRefs(field.fieldType) {
					if !reachable[ref] {
						reachable[ref] = true
						stack = append(stack, ref)
					}
				}
			}
		}
		c.reachable[from] = reachable
	}
	return reachable[to]
}

// recordRefs returns the keys of the records a type refers to, looking
// through arrays and nullables.
func recordRefs(t Type) []syntax.RecordKey {
	if ref := directRecordRef(t); ref != nil {
		return []syntax.RecordKey{ref.key}
	}
	return nil
}

func directRecordRef(t Type) *RecordRefType {
	for {
		switch tt := t.(type) {
		case *ArrayType:
			t = tt.item
		case *NullableType:
			t = tt.value
		case *RecordRefType:
			return tt
		default:
			return nil
		}
	}
}

// location finds a record of the module being resolved, or of a module
// that resolved without errors.
func (c *compiler) location(key syntax.RecordKey) *RecordLocation {
	if loc, ok := c.records[key]; ok {
		return loc
	}
	return c.resolver.records[key]
}

func (c *compiler) record(key syntax.RecordKey) *Record {
	if loc := c.location(key); loc != nil {
		return loc.record
	}
	return nil
}
