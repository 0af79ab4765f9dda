package engine

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// chunkQueueSize bounds how far reading may run ahead of applying.
const chunkQueueSize = 4

type readResult struct {
	chunk []byte
	err   error
}

// readChunks reads r on its own goroutine until an error (io.EOF included) or until
// done is closed. A Read blocked when done closes is left to finish on its own.
func readChunks(r io.Reader, size int, done <-chan struct{}) <-chan readResult {
	out := make(chan readResult)
	go func() {
		defer close(out)
		for {
			buf := make([]byte, size)
			n, err := r.Read(buf)
			select {
			case out <- readResult{chunk: buf[:n], err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

// Run reads r in chunks and feeds them to the engine on another goroutine.
// Chunks travel over a single channel, so records are still applied in input order.
// It returns the final snapshots once r is exhausted.
//
// Cancelling ctx makes Run return promptly even while r is blocked in Read;
// if r is an io.Closer it is closed to release that Read.
func (e *Engine) Run(ctx context.Context, r io.Reader) ([]domain.Snapshot, error) {
	if c, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() {
			_ = c.Close()
		})
		defer stop()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunkSize := e.cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	chunks := make(chan []byte, chunkQueueSize)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chunks)
		reads := readChunks(r, chunkSize, gctx.Done())
		for {
			var res readResult
			select {
			case got, ok := <-reads:
				if !ok {
					return gctx.Err()
				}
				res = got
			case <-gctx.Done():
				return gctx.Err()
			}

			if len(res.chunk) > 0 {
				select {
				case chunks <- res.chunk:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if errors.Is(res.err, io.EOF) {
				return nil
			}
			if res.err != nil {
				return errors.Wrap(res.err, "read input")
			}
		}
	})

	g.Go(func() error {
		fed := 0
		for chunk := range chunks {
			if err := e.Feed(chunk); err != nil {
				return err
			}
			fed++
		}
		e.l.Debug("input drained", zap.Int("chunks", fed))
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	return e.Finish()
}
