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
	"fmt"

	"go.soia-lang.org/soia/syntax"
)

const (
	codeModuleNotFound           = 3000
	codeModuleOutsideRoot        = 3001
	codeImportedWithAlias        = 3002
	codeImportedWithoutAlias     = 3003
	codeImportedWithOtherAlias   = 3004
	codeCircularDependency       = 3005
	codeImportedModuleHasErrors  = 3006
	codeNameNotFound             = 3007
	codeNameNotInModule          = 3008
	codeReimport                 = 3009
	codeNotAType                 = 3010
	codeExplicitToImplicit       = 3011
	codeNotAStruct               = 3012
	codeFieldNotFound            = 3013
	codeInvalidKeyType           = 3014
	codeInfiniteDefault          = 3015
	codeUnusedImport             = 3016
	codeCannotRead               = 3017
	codeDuplicateProcedureNumber = 3018
	codeValueTypeMismatch        = 3019
	codeUnknownField             = 3020
	codeDuplicateKey             = 3021
	codeDuplicateValueField      = 3022
)

func errModuleNotFound(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeModuleNotFound, token, "Module not found")
}

func errModuleOutsideRoot(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeModuleOutsideRoot, token, "Module path must point to a file within root")
}

func errImportedWithAlias(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeImportedWithAlias, token, "Module already imported with an alias")
}

func errImportedWithoutAlias(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeImportedWithoutAlias, token, "Module already imported without an alias")
}

func errImportedWithOtherAlias(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeImportedWithOtherAlias, token, "Module already imported with a different alias")
}

func errCircularDependency(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeCircularDependency, token, "Circular dependency between modules")
}

func errImportedModuleHasErrors(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeImportedModuleHasErrors, token, "Imported module has errors")
}

func errNameNotFound(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeNameNotFound, token, fmt.Sprintf("Cannot find name '%s'", token.Text()))
}

func errNameNotInModule(token *syntax.Token) *syntax.Error {
	return syntax.NewError(
		codeNameNotInModule,
		token,
		fmt.Sprintf("Module has no declaration named '%s'", token.Text()),
	)
}

func errReimport(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeReimport, token, "Cannot reimport imported name")
}

func errNotAType(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeNotAType, token, "Not a type")
}

func errExplicitToImplicit(token *syntax.Token, target, owner syntax.RecordType) *syntax.Error {
	return syntax.NewError(codeExplicitToImplicit, token, fmt.Sprintf(
		"Field type references %s %s with implicit numbering, but field belongs to %s %s with explicit numbering",
		article(target), target, article(owner), owner,
	))
}

func article(kind syntax.RecordType) string {
	if kind == syntax.RecordType_ENUM {
		return "an"
	}
	return "a"
}

func errNotAStruct(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeNotAStruct, token, "Not a struct type")
}

func errFieldNotFound(token *syntax.Token, recordName string) *syntax.Error {
	return syntax.NewError(codeFieldNotFound, token, "Field not found in struct "+recordName)
}

func errInvalidKeyType(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeInvalidKeyType, token, "Key must have primitive or enum type")
}

func errInfiniteDefault(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeInfiniteDefault, token, "Default value has an infinite representation")
}

func errUnusedImport(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeUnusedImport, token, "Unused import")
}

func errCannotRead(token *syntax.Token, err error) *syntax.Error {
	return syntax.NewError(codeCannotRead, token, fmt.Sprintf("Cannot read module: %v", err))
}

func errDuplicateProcedureNumber(token *syntax.Token, other string) *syntax.Error {
	return syntax.NewError(codeDuplicateProcedureNumber, token, "Same number as procedure "+other)
}

func errValueTypeMismatch(token *syntax.Token, t Type) *syntax.Error {
	return syntax.NewError(codeValueTypeMismatch, token, "Value does not match type "+t.String())
}

func errUnknownField(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeUnknownField, token, "Unknown field "+token.Text())
}

func errDuplicateKey(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeDuplicateKey, token, "Duplicate key in keyed array")
}

func errDuplicateValueField(token *syntax.Token) *syntax.Error {
	return syntax.NewError(codeDuplicateValueField, token, "Duplicate field "+token.Text())
}
