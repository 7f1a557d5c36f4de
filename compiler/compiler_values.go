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

// checkConstants checks the value of every constant against its type.
func (c *compiler) checkConstants() {
	for _, constant := range c.module.constants {
		if constant.constType != nil {
			c.checkValue(constant.Value(), constant.constType)
		}
	}
}

func (c *compiler) checkValue(value syntax.Value, t Type) {
	switch t := t.(type) {
	case PrimitiveType:
		lit, ok := value.(*syntax.LiteralValue)
		if !ok || !syntax.LiteralHasType(lit.Token(), t.primitive) {
			c.err(errValueTypeMismatch(value.FirstToken(), t))
		}
	case *NullableType:
		if lit, ok := value.(*syntax.LiteralValue); ok && lit.IsNull() {
			return
		}
		c.checkValue(value, t.value)
	case *ArrayType:
		array, ok := value.(*syntax.ArrayValue)
		if !ok {
			c.err(errValueTypeMismatch(value.FirstToken(), t))
			return
		}
		keys := make(map[string]bool)
		for _, item := range array.Items() {
			c.checkValue(item, t.item)
			if t.keyPath == nil || t.keyPath.keyType == nil {
				continue
			}
			key, ok := valueKey(item, t.keyPath)
			if !ok {
				continue
			}
			if keys[key] {
				c.err(errDuplicateKey(item.FirstToken()))
			}
			keys[key] = true
		}
	case *RecordRefType:
		record := c.record(t.key)
		if record == nil {
			return
		}
		if t.kind == syntax.RecordType_STRUCT {
			c.checkStructValue(value, record, t)
		} else {
			c.checkEnumValue(value, record, t)
		}
	default:
		panic("unreachable")
	}
}

// A struct value is an object whose entries are named after the struct's
// fields. Fields may be omitted.
func (c *compiler) checkStructValue(value syntax.Value, record *Record, t Type) {
	object, ok := value.(*syntax.ObjectValue)
	if !ok {
		c.err(errValueTypeMismatch(value.FirstToken(), t))
		return
	}
	seen := make(map[string]bool)
	for _, entry := range object.Entries() {
		name := entry.Name()
		if seen[name.Text()] {
			c.err(errDuplicateValueField(name))
			continue
		}
		seen[name.Text()] = true
		field, ok := record.fieldsByName[name.Text()]
		if !ok {
			c.err(errUnknownField(name))
			continue
		}
		if field.fieldType != nil {
			c.checkValue(entry.Value(), field.fieldType)
		}
	}
}

// An enum value is either the name of a constant field as a string, or an
// object {kind: "field", value: ...} for fields that hold a value.
func (c *compiler) checkEnumValue(value syntax.Value, record *Record, t Type) {
	switch value := value.(type) {
	case *syntax.LiteralValue:
		if name, ok := stringValue(value); ok {
			if field, ok := record.fieldsByName[name]; ok && field.IsConstant() {
				return
			}
		}
	case *syntax.ObjectValue:
		kind, hasKind := value.Entry("kind")
		inner, hasValue := value.Entry("value")
		if !hasKind || !hasValue || len(value.Entries()) != 2 {
			break
		}
		name, ok := stringValue(kind.Value())
		if !ok {
			break
		}
		field, ok := record.fieldsByName[name]
		if !ok || field.IsConstant() {
			c.err(errValueTypeMismatch(kind.Value().FirstToken(), t))
			return
		}
		if field.fieldType != nil {
			c.checkValue(inner.Value(), field.fieldType)
		}
		return
	}
	c.err(errValueTypeMismatch(value.FirstToken(), t))
}

func stringValue(value syntax.Value) (string, bool) {
	lit, ok := value.(*syntax.LiteralValue)
	if !ok || lit.Token().Kind() != syntax.T_STRING_LIT {
		return "", false
	}
	s, err := syntax.UnquoteString(lit.Token())
	return s, err == nil
}

// valueKey extracts the key of an item of a keyed array by following the
// key path through nested objects. Enum keys are compared by field name.
func valueKey(item syntax.Value, keyPath *KeyPath) (string, bool) {
	current := item
	for _, seg := range keyPath.segments {
		object, ok := current.(*syntax.ObjectValue)
		if !ok {
			return "", false
		}
		entry, ok := object.Entry(seg.Text())
		if !ok {
			return "", false
		}
		current = entry.Value()
	}
	if object, ok := current.(*syntax.ObjectValue); ok {
		kind, ok := object.Entry("kind")
		if !ok {
			return "", false
		}
		current = kind.Value()
	}
	lit, ok := current.(*syntax.LiteralValue)
	if !ok {
		return "", false
	}
	if s, ok := stringValue(lit); ok {
		return "s:" + s, true
	}
	return lit.Token().Text(), true
}
