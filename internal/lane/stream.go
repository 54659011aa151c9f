package lane

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/lane-tools-mcp/internal/geometry"
)

// FrameInput is one frame's worth of detector output.
type FrameInput struct {
	ID       string             `json:"id,omitempty"`
	Frame    geometry.Frame     `json:"frame"`
	Segments []geometry.Segment `json:"segments"`
}

// FrameResult pairs a FrameInput with its outcome. Err is set only for
// contract violations such as an invalid frame.
type FrameResult struct {
	Index  int     `json:"index"`
	ID     string  `json:"id,omitempty"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// ProcessBatch runs frames on up to workers goroutines and returns results in
// input order. A failing frame does not stop the batch; only cancellation of
// ctx does, in which case ctx.Err() is returned.
func (p *Pipeline) ProcessBatch(ctx context.Context, frames []FrameInput, workers int) ([]FrameResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]FrameResult, len(frames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, fi := range frames {
		if gctx.Err() != nil {
			break
		}
		i, fi := i, fi
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.Process(fi.Frame, fi.Segments)
			results[i] = FrameResult{Index: i, ID: fi.ID, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Stream processes frames from in on up to workers goroutines and emits
// results in arrival order (FIFO per stream). The output channel is closed
// once in is drained or ctx is cancelled; frames still in flight at
// cancellation are discarded.
func (p *Pipeline) Stream(ctx context.Context, in <-chan FrameInput, workers int) <-chan FrameResult {
	if workers < 1 {
		workers = 1
	}
	out := make(chan FrameResult)
	pending := make(chan chan FrameResult, workers)

	go func() {
		defer close(pending)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		defer func() { _ = g.Wait() }()

		for idx := 0; ; idx++ {
			var fi FrameInput
			var ok bool
			select {
			case <-gctx.Done():
				return
			case fi, ok = <-in:
				if !ok {
					return
				}
			}

			slot := make(chan FrameResult, 1)
			select {
			case pending <- slot:
			case <-gctx.Done():
				return
			}

			i := idx
			g.Go(func() error {
				res, err := p.Process(fi.Frame, fi.Segments)
				slot <- FrameResult{Index: i, ID: fi.ID, Result: res, Err: err}
				return nil
			})
		}
	}()

	go func() {
		defer close(out)
		for slot := range pending {
			r := <-slot
			select {
			case out <- r:
			case <-ctx.Done():
				for range pending {
				}
				return
			}
		}
	}()

	return out
}
