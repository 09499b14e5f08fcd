package batch

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"clearurls/pkg/cleaner"
)

// Run cleans every item with c using up to parallel goroutines. Items keep
// their order. A URL that fails to clean does not stop the others: its Error
// field is set and the failure is part of the returned multierr. Cancelling
// ctx stops handing out work and returns ctx.Err().
func Run(ctx context.Context, c *cleaner.Cleaner, items []Item, parallel int, observe func(Item)) (*File, error) {
	if parallel < 1 {
		parallel = 1
	}
	out := &File{Version: 1, Items: make([]Item, len(items))}
	errs := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, it := range items {
		if gctx.Err() != nil {
			break
		}
		i, it := i, it
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := c.CleanURL(it.URL)
			it.Cleaned, it.Changed = res.URL, res.Changed
			if err != nil {
				it.Error = err.Error()
				errs[i] = fmt.Errorf("line %d: %w", it.Line, err)
			}
			out.Items[i] = it
			if observe != nil {
				observe(it)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, multierr.Combine(errs...)
}
