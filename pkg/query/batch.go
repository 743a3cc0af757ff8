package query

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the answer to one segment of a batch.
type Result struct {
	Hit Hit
	OK  bool
}

// Batch runs FirstHit for every segment on up to workers goroutines
// (unbounded when workers < 1). Results are in input order. The first
// failing segment or a cancelled ctx stops the batch and no results are
// returned.
func (idx *Index) Batch(ctx context.Context, segs []Segment, workers int) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(segs))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, s := range segs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			h, ok, err := idx.FirstHit(s.P0, s.P1)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			results[i] = Result{Hit: h, OK: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		idx.log.Debug().Err(err).Int("segments", len(segs)).Msg("batch failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hits int
	for _, r := range results {
		if r.OK {
			hits++
		}
	}
	idx.log.Debug().
		Int("segments", len(segs)).
		Int("workers", workers).
		Int("hits", hits).
		Dur("elapsed", time.Since(start)).
		Msg("batch done")
	return results, nil
}
