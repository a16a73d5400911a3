package quiver

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Preload materializes the whole subtree of lib: notebooks, their notes and
// every note's content. At most workers notebooks are loaded concurrently;
// values below 1 mean one at a time. The first error cancels the remaining
// work and is returned.
func Preload(ctx context.Context, lib *Library, workers int) error {
	notebooks, err := lib.Notebooks()
	if err != nil {
		return err
	}
	if workers < 1 {
		workers = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, nb := range notebooks {
		nb := nb
		g.Go(func() error {
			return preloadNotebook(gCtx, nb)
		})
	}
	return g.Wait()
}

func preloadNotebook(ctx context.Context, nb *Notebook) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	notes, err := nb.Notes()
	if err != nil {
		return err
	}
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.Content(); err != nil {
			return err
		}
	}
	return nil
}
