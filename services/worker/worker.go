package worker

import (
	"context"
	"time"

	"offerbot/logger"
)

// Cycler runs one dispatch cycle to completion.
type Cycler interface {
	RunCycle(ctx context.Context)
}

// Worker drives the dispatch loop. A cycle always finishes (including every
// sequential image fallback attempt) before the delay to the next one starts,
// so cycles can never overlap.
type Worker struct {
	ctx      context.Context
	cycler   Cycler
	interval time.Duration
	log      *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(ctx context.Context, cycler Cycler, interval time.Duration) *Worker {
	return &Worker{
		ctx:      ctx,
		cycler:   cycler,
		interval: interval,
		log:      logger.ForWorker(),
	}
}

// Start runs the dispatch loop until the context is cancelled
func (w *Worker) Start() {
	for {
		start := time.Now()
		w.cycler.RunCycle(w.ctx)
		w.log.Debug().
			Dur("elapsed", time.Since(start)).
			Dur("interval", w.interval).
			Msg("dispatch cycle finished")

		select {
		case <-w.ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}
