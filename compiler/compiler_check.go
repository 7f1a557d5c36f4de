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
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RootResult holds the resolution of every module under one root.
type RootResult struct {
	Root    string
	Modules []*Result
	Records RecordMap
}

func (r *RootResult) ErrorCount() int {
	var n int
	for _, result := range r.Modules {
		n += len(result.Errors)
	}
	return n
}

// CheckAll resolves every module under each root. Each root gets its own
// Resolver, and up to jobs roots are checked concurrently; jobs <= 0 means
// no limit. Results are in the order of roots.
func CheckAll(
	ctx context.Context,
	roots []string,
	jobs int,
	newSource func(root string) ModuleSource,
	opts ...ResolverOption,
) ([]*RootResult, error) {
	results := make([]*RootResult, len(roots))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for ii, root := range roots {
		g.Go(func() error {
			source := newSource(root)
			resolver := NewResolver(root, source, opts...)
			paths, err := source.ListModules(resolver.opts.extension)
			if err != nil {
				return fmt.Errorf("listing modules in %s: %w", root, err)
			}
			rootResult := &RootResult{Root: root}
			for _, modulePath := range paths {
				if err := ctx.Err(); err != nil {
					return err
				}
				rootResult.Modules = append(rootResult.Modules, resolver.ParseAndResolve(modulePath))
			}
			rootResult.Records = resolver.RecordMap()
			results[ii] = rootResult
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
