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
	"io"
	"maps"
	"slices"

	"github.com/sirupsen/logrus"

	"go.soia-lang.org/soia/syntax"
)

const DefaultExtension = ".soia"

type ResolverOption interface {
	apply(*resolverOptions)
}

type resolverOption func(*resolverOptions)

func (f resolverOption) apply(opts *resolverOptions) { f(opts) }

type resolverOptions struct {
	logger    logrus.FieldLogger
	extension string
}

// WithLogger sets the logger used to report module loads at debug level.
func WithLogger(logger logrus.FieldLogger) ResolverOption {
	return resolverOption(func(opts *resolverOptions) {
		opts.logger = logger
	})
}

// WithExtension sets the file extension of schema modules, used when
// listing the modules of a root.
func WithExtension(extension string) ResolverOption {
	return resolverOption(func(opts *resolverOptions) {
		opts.extension = extension
	})
}

func newResolverOptions(opts ...ResolverOption) resolverOptions {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	resolverOpts := resolverOptions{
		logger:    discard,
		extension: DefaultExtension,
	}
	for _, opt := range opts {
		opt.apply(&resolverOpts)
	}
	return resolverOpts
}

// A Resolver parses modules and resolves the references between them. Each
// module is resolved at most once; later requests for the same path return
// the same result.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	root       string
	reader     ModuleReader
	opts       resolverOptions
	results    map[string]*Result
	inProgress map[string]bool
	records    RecordMap
	reachable  map[syntax.RecordKey]map[syntax.RecordKey]bool
}

func NewResolver(root string, reader ModuleReader, opts ...ResolverOption) *Resolver {
	return &Resolver{
		root:       root,
		reader:     reader,
		opts:       newResolverOptions(opts...),
		results:    make(map[string]*Result),
		inProgress: make(map[string]bool),
		records:    make(RecordMap),
		reachable:  make(map[syntax.RecordKey]map[syntax.RecordKey]bool),
	}
}

type Result struct {
	Path string

	// Module is nil if the module does not exist, or if it could not be
	// parsed. Otherwise it is set even when there are errors.
	Module *Module
	Errors []*syntax.Error
}

func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// RecordMap returns the records of every module resolved without errors so
// far.
func (r *Resolver) RecordMap() RecordMap {
	return maps.Clone(r.records)
}

// ParseAndResolve returns the resolved module at a root-relative path such
// as "dir/file.soia".
func (r *Resolver) ParseAndResolve(modulePath string) *Result {
	log := r.opts.logger.WithFields(logrus.Fields{
		"module": modulePath,
		"root":   r.root,
	})
	if result, ok := r.results[modulePath]; ok {
		log.Debug("Module already resolved")
		return result
	}
	log.Debug("Resolving module")
	result := r.resolve(modulePath)
	r.results[modulePath] = result
	switch {
	case result.HasErrors():
		log.WithField("errors", len(result.Errors)).Debug("Module has errors")
	case result.Module == nil:
		log.Debug("Module not found")
	}
	return result
}

func (r *Resolver) resolve(modulePath string) *Result {
	result := &Result{Path: modulePath}
	src, ok, err := r.reader.ReadModule(modulePath)
	if err != nil {
		result.Errors = []*syntax.Error{errCannotRead(startToken(modulePath), err)}
		return result
	}
	if !ok {
		return result
	}
	parsed, errs := syntax.ParseSource(src, modulePath)
	if len(errs) > 0 {
		result.Errors = errs
		return result
	}

	r.inProgress[modulePath] = true
	defer delete(r.inProgress, modulePath)

	c := newCompiler(r, parsed)
	c.registerImports()
	c.resolveImports()
	c.registerRecords()
	c.resolveTypes()
	c.markRecursiveFields()
	c.checkNumberingReferences()
	c.checkKeyPaths()
	c.checkEnumDefaults()
	c.checkConstants()
	c.checkProcedureNumbers()
	c.checkUnusedImports()

	result.Module = c.module
	result.Errors = c.errors
	if len(c.errors) == 0 {
		maps.Copy(r.records, c.records)
		maps.Copy(r.reachable, c.reachable)
	}
	return result
}

func startToken(modulePath string) *syntax.Token {
	line := syntax.NewCodeLine(0, "", 0, modulePath)
	return syntax.NewToken("", syntax.T_EOF, 0, line, 0)
}

// compiler holds the state of one module while it is being resolved. The
// module it builds is published only once every pass has run, and its
// records join the session's record map only if no pass reported an error.
type compiler struct {
	resolver        *Resolver
	node            *syntax.Module
	module          *Module
	errors          []*syntax.Error
	importOrder     []string
	importPaths     map[syntax.Declaration]string
	importedModules map[string]*Module
	badPathTokens   map[*syntax.Token]bool
	records         RecordMap
	reachable       map[syntax.RecordKey]map[syntax.RecordKey]bool
}

func newCompiler(r *Resolver, node *syntax.Module) *compiler {
	return &compiler{
		resolver: r,
		node:     node,
		module: &Module{
			path:                node.Path(),
			node:                node,
			recordsByKey:        make(map[syntax.RecordKey]*Record),
			pathToImportedNames: make(map[string]*ImportedNames),
		},
		importPaths:     make(map[syntax.Declaration]string),
		importedModules: make(map[string]*Module),
		badPathTokens:   make(map[*syntax.Token]bool),
		records:         make(RecordMap),
		reachable:       make(map[syntax.RecordKey]map[syntax.RecordKey]bool),
	}
}

func (c *compiler) err(err *syntax.Error) {
	c.errors = append(c.errors, err)
}

func (c *compiler) importPath(token *syntax.Token) (string, bool) {
	target, err := syntax.UnquoteString(token)
	if err == nil {
		if modulePath, ok := resolveImportPath(c.module.path, target); ok {
			return modulePath, true
		}
	}
	if !c.badPathTokens[token] {
		c.badPathTokens[token] = true
		c.err(errModuleOutsideRoot(token))
	}
	return "", false
}

func (c *compiler) importedNames(modulePath string, token *syntax.Token) *ImportedNames {
	names, ok := c.module.pathToImportedNames[modulePath]
	if !ok {
		names = newImportedNames()
		names.token = token
		c.module.pathToImportedNames[modulePath] = names
		c.importOrder = append(c.importOrder, modulePath)
	}
	return names
}

// registerImports groups the import declarations by the normalized path of
// the imported module.
func (c *compiler) registerImports() {
	for _, decl := range c.node.Imports() {
		switch decl := decl.(type) {
		case *syntax.Import:
			modulePath, ok := c.importPath(decl.ModulePath())
			if !ok {
				continue
			}
			names := c.importedNames(modulePath, decl.ModulePath())
			if names.alias != nil {
				c.err(errImportedWithAlias(decl.ModulePath()))
				continue
			}
			names.names[decl.Name().Text()] = decl
			names.order = append(names.order, decl)
			c.importPaths[decl] = modulePath
		case *syntax.ImportAlias:
			modulePath, ok := c.importPath(decl.ModulePath())
			if !ok {
				continue
			}
			names := c.importedNames(modulePath, decl.ModulePath())
			switch {
			case len(names.names) > 0:
				c.err(errImportedWithoutAlias(decl.ModulePath()))
				continue
			case names.alias != nil:
				c.err(errImportedWithOtherAlias(decl.ModulePath()))
				continue
			}
			names.alias = decl
			c.importPaths[decl] = modulePath
		default:
			panic("unreachable")
		}
	}
}

// resolveImports resolves each imported module, and checks that the names
// imported from it exist.
func (c *compiler) resolveImports() {
	for _, modulePath := range c.importOrder {
		names := c.module.pathToImportedNames[modulePath]
		if c.resolver.inProgress[modulePath] {
			c.err(errCircularDependency(names.token))
			names.failed = true
			continue
		}
		result := c.resolver.ParseAndResolve(modulePath)
		switch {
		case result.HasErrors():
			if hasCircularDependency(result.Errors) {
				c.err(errCircularDependency(names.token))
			} else {
				c.err(errImportedModuleHasErrors(names.token))
			}
			names.failed = true
			continue
		case result.Module == nil:
			c.err(errModuleNotFound(names.token))
			names.failed = true
			continue
		}
		c.importedModules[modulePath] = result.Module
		for _, decl := range names.order {
			name := decl.Name()
			target, ok := result.Module.Declaration(name.Text())
			if !ok {
				c.err(errNameNotInModule(name))
				names.used[name.Text()] = true
				continue
			}
			switch target.(type) {
			case *syntax.Import, *syntax.ImportAlias:
				c.err(errReimport(name))
				names.used[name.Text()] = true
			}
		}
	}
}

func hasCircularDependency(errs []*syntax.Error) bool {
	for _, err := range errs {
		if err.Code() == codeCircularDependency {
			return true
		}
	}
	return false
}

// registerRecords adds the module's records to the record map of the module
// being resolved.
func (c *compiler) registerRecords() {
	for _, decl := range c.node.Declarations() {
		if node, ok := decl.(*syntax.Record); ok {
			c.registerRecord(node, nil)
		}
	}
	for _, node := range c.node.Records() {
		c.module.records = append(c.module.records, c.module.recordsByKey[node.Key()])
	}
}

func (c *compiler) registerRecord(node *syntax.Record, ancestors []*Record) *Record {
	qualifiedName := node.Name().Text()
	if len(ancestors) > 0 {
		qualifiedName = ancestors[len(ancestors)-1].qualifiedName + "." + qualifiedName
	}
	record := &Record{
		key:           node.Key(),
		node:          node,
		modulePath:    c.module.path,
		qualifiedName: qualifiedName,
		fieldsByName:  make(map[string]*Field),
		nestedByName:  make(map[string]*Record),
	}
	for _, fieldNode := range node.Fields() {
		field := &Field{node: fieldNode}
		record.fields = append(record.fields, field)
		record.fieldsByName[field.Name()] = field
	}
	c.records[record.key] = &RecordLocation{
		record:     record,
		ancestors:  ancestors,
		modulePath: c.module.path,
	}
	c.module.recordsByKey[record.key] = record

	scope := append(slices.Clip(ancestors), record)
	for _, nestedNode := range node.NestedRecords() {
		nested := c.registerRecord(nestedNode, scope)
		record.nested = append(record.nested, nested)
		record.nestedByName[nested.Name()] = nested
	}
	return record
}

// checkUnusedImports reports imported names that no type refers to.
func (c *compiler) checkUnusedImports() {
	for _, decl := range c.node.Imports() {
		modulePath, ok := c.importPaths[decl]
		if !ok {
			continue
		}
		names := c.module.pathToImportedNames[modulePath]
		if names.failed || names.used[decl.Name().Text()] {
			continue
		}
		c.err(errUnusedImport(decl.Name()))
	}
}
