package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/ifcscene/internal/host"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
)

type job struct {
	seq      int
	el       *ifcgeom.Element
	progress float64
}

// RunPooled imports like Run but builds meshes on workers goroutines. The
// iterator is pulled from one goroutine, and materials and nodes are
// created by the caller's goroutine in iterator order, so the resulting
// scene is the same as Run's.
func (s *Session) RunPooled(ctx context.Context, it Iterator, progress host.Progress, workers int) (Stats, error) {
	if workers <= 1 {
		return s.Run(ctx, it, progress)
	}
	if progress == nil {
		progress = host.NopProgress{}
	}
	if err := it.Initialize(); err != nil {
		return s.Stats(), fmt.Errorf("%w: %w", ErrInitialize, err)
	}

	start := time.Now()
	progress.Start(ProgressTitle)
	defer progress.End()

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, workers)
	results := make(chan *prepared, workers)

	g.Go(func() error {
		defer close(jobs)
		for seq := 0; ; seq++ {
			j := job{seq: seq, el: it.Current(), progress: it.Progress()}
			select {
			case jobs <- j:
			case <-gctx.Done():
				return gctx.Err()
			}
			if !it.Next() {
				return nil
			}
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				p := s.prepare(j.el)
				p.seq = j.seq
				p.progress = j.progress
				select {
				case results <- p:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Results arrive out of order; pending holds them until their turn.
	pending := make(map[int]*prepared)
	next := 0
	for p := range results {
		pending[p.seq] = p
		for {
			q, ok := pending[next]
			if !ok || ctx.Err() != nil {
				break
			}
			delete(pending, next)
			s.finish(q)
			progress.Update(q.progress)
			next++
		}
	}

	err := g.Wait()
	s.stats.Duration = time.Since(start)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.log.Debug("pooled import stopped",
			zap.Int("imported", next),
			zap.Int("discarded", len(pending)))
		return s.Stats(), fmt.Errorf("import cancelled after %d elements: %w", s.stats.Elements, err)
	}
	return s.Stats(), nil
}
