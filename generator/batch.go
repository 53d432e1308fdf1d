/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package generator

import (
	"context"
	"fmt"

	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds GenerateAll when no limit is given.
const DefaultParallelism = 4

// GenerateAll runs independent requests concurrently, at most limit at a
// time. Requests touching the same file are serialized by the path locks.
// Results are returned in request order; the first request that fails to
// resolve or render cancels the ones not yet started.
func (g *Generator) GenerateAll(ctx context.Context, reqs []Request, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = DefaultParallelism
	}
	logging.DebugContext(ctx, "Generating %d requests with parallelism %d", len(reqs), limit)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	results := make([]*Result, len(reqs))
	for i, req := range reqs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := g.Generate(ctx, req)
			if err != nil {
				return errors.Wrap("generate", fmt.Sprintf("request %d (%s)", i, req.Selectors.Target), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
