package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

type ProgressSource interface {
	Progress(ctx context.Context) (model.Progress, error)
}

// Reporter periodically logs the current progress. It only reads.
type Reporter struct {
	source   ProgressSource
	logger   *zap.Logger
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
	once     sync.Once
}

func NewReporter(source ProgressSource, logger *zap.Logger, interval time.Duration) *Reporter {
	return &Reporter{
		source:   source,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (r *Reporter) Start(ctx context.Context) {
	r.logger.Info("Starting progress reporter", zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go r.run(ctx)
}

// Stop is safe to call more than once.
func (r *Reporter) Stop() {
	r.once.Do(func() {
		r.logger.Info("Stopping progress reporter...")
		close(r.stop)
	})
	r.wg.Wait()
}

func (r *Reporter) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

func (r *Reporter) report(ctx context.Context) {
	p, err := r.source.Progress(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("progress report failed", zap.Error(err))
		}
		return
	}

	r.logger.Info("progress",
		zap.Int("total", p.Total),
		zap.Int("completed", p.Completed),
		zap.String("progress", p.Progress),
	)
}
