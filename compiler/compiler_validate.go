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
	"go.soia-lang.org/soia/syntax"
)

// checkNumberingReferences rejects fields of explicitly numbered records
// whose type refers directly to an implicitly numbered record, possibly
// through arrays and nullables.
func (c *compiler) checkNumberingReferences() {
	for _, record := range c.module.records {
		if record.Numbering() != syntax.NumberingExplicit {
			continue
		}
		for _, field := range record.fields {
			ref := directRecordRef(field.fieldType)
			if ref == nil {
				continue
			}
			target := c.record(ref.key)
			if target != nil && target.Numbering() == syntax.NumberingImplicit {
				c.err(errExplicitToImplicit(ref.token, target.Kind(), record.Kind()))
			}
		}
	}
}

// checkKeyPaths resolves the key path of every keyed array type used in the
// module.
func (c *compiler) checkKeyPaths() {
	for _, record := range c.module.records {
		for _, field := range record.fields {
			c.checkTypeKeyPaths(field.fieldType)
		}
	}
	for _, procedure := range c.module.procedures {
		c.checkTypeKeyPaths(procedure.requestType)
		c.checkTypeKeyPaths(procedure.responseType)
	}
	for _, constant := range c.module.constants {
		c.checkTypeKeyPaths(constant.constType)
	}
}

func (c *compiler) checkTypeKeyPaths(t Type) {
	switch t := t.(type) {
	case *ArrayType:
		if t.keyPath != nil {
			c.resolveKeyPath(t)
		}
		c.checkTypeKeyPaths(t.item)
	case *NullableType:
		c.checkTypeKeyPaths(t.value)
	}
}

// resolveKeyPath follows the key path of an array through the fields of its
// item type. Every segment but the last must name a field of struct type,
// and the last must name a field of primitive or enum type.
func (c *compiler) resolveKeyPath(array *ArrayType) {
	segments := array.keyPath.segments
	current := array.item
	for ii, seg := range segments {
		ref, ok := current.(*RecordRefType)
		if !ok || ref.kind != syntax.RecordType_STRUCT {
			token := seg
			if ii > 0 {
				token = segments[ii-1]
			}
			c.err(errNotAStruct(token))
			return
		}
		record := c.record(ref.key)
		if record == nil {
			return
		}
		field, ok := record.fieldsByName[seg.Text()]
		if !ok {
			c.err(errFieldNotFound(seg, record.qualifiedName))
			return
		}
		if current = field.fieldType; current == nil {
			return
		}
	}
	switch t := current.(type) {
	case PrimitiveType:
	case *RecordRefType:
		if t.kind != syntax.RecordType_ENUM {
			c.err(errInvalidKeyType(segments[len(segments)-1]))
			return
		}
	default:
		c.err(errInvalidKeyType(segments[len(segments)-1]))
		return
	}
	array.keyPath.keyType = current
}

// checkEnumDefaults rejects enums whose default value would contain itself.
// The default of an enum is its field numbered 0. When that field holds a
// value of another enum, the default includes that enum's default, and so on.
func (c *compiler) checkEnumDefaults() {
	for _, record := range c.module.records {
		if record.Kind() != syntax.RecordType_ENUM {
			continue
		}
		if c.hasInfiniteDefault(record) {
			zero, _ := record.FieldByNumber(0)
			c.err(errInfiniteDefault(zero.Token()))
		}
	}
}

func (c *compiler) hasInfiniteDefault(enum *Record) bool {
	seen := map[syntax.RecordKey]bool{enum.key: true}
	current := enum
	for {
		zero, ok := current.FieldByNumber(0)
		if !ok {
			return false
		}
		ref, ok := zero.fieldType.(*RecordRefType)
		if !ok || ref.kind != syntax.RecordType_ENUM {
			return false
		}
		if seen[ref.key] {
			return true
		}
		seen[ref.key] = true
		if current = c.record(ref.key); current == nil {
			return false
		}
	}
}

// checkProcedureNumbers rejects procedures sharing a number within the
// module.
func (c *compiler) checkProcedureNumbers() {
	byNumber := make(map[uint32]*Procedure)
	for _, procedure := range c.module.procedures {
		number := procedure.Number()
		if other, dup := byNumber[number]; dup {
			c.err(errDuplicateProcedureNumber(procedure.Token(), other.Name()))
			continue
		}
		byNumber[number] = procedure
	}
}
