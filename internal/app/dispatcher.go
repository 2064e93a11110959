package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/internal/metrics"
	"github.com/simplay/seismograph-server/internal/ports"
)

// Dispatcher runs every flush on its own goroutine so the receive loop never
// waits on a sink. Workers are detached: the caller does not observe their
// outcome, and there is no limit on how many run at once.
type Dispatcher struct {
	logger   ports.Logger
	metrics  *metrics.Metrics
	observer FlushObserver

	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// FlushResult describes one finished flush.
type FlushResult struct {
	Sink     string
	BatchID  string
	Sequence uint64
	Records  int
	Duration time.Duration
	Err      error
}

// FlushObserver is called from the worker goroutine after every flush.
type FlushObserver interface {
	OnFlush(result FlushResult)
}

// NewDispatcher creates a dispatcher. m and observer may be nil.
func NewDispatcher(logger ports.Logger, m *metrics.Metrics, observer FlushObserver) *Dispatcher {
	return &Dispatcher{
		logger:   logger,
		metrics:  m,
		observer: observer,
	}
}

// Dispatch hands batch to a new worker that flushes it to sink and returns
// immediately. The worker owns batch; the caller must not touch it again.
func (d *Dispatcher) Dispatch(batch domain.Batch, sink ports.Sink, meta domain.Metadata) {
	d.wg.Add(1)
	d.inFlight.Add(1)
	d.metrics.FlushStarted(batch.Size())

	go d.flush(batch, sink, meta)
}

// flush runs on the worker goroutine. Failures and panics stay here.
func (d *Dispatcher) flush(batch domain.Batch, sink ports.Sink, meta domain.Metadata) {
	start := time.Now()
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("flush panic: %v", r)
		}
		elapsed := time.Since(start)
		d.metrics.FlushFinished(sink.Name(), elapsed, err)
		d.report(batch, sink.Name(), elapsed, err)
		if d.observer != nil {
			d.observer.OnFlush(FlushResult{
				Sink:     sink.Name(),
				BatchID:  batch.ID,
				Sequence: batch.Sequence,
				Records:  batch.Size(),
				Duration: elapsed,
				Err:      err,
			})
		}
		d.inFlight.Add(-1)
		d.wg.Done()
	}()

	// No cancellation: once dispatched a flush runs to completion or failure.
	err = sink.Flush(context.Background(), batch, meta)
}

func (d *Dispatcher) report(batch domain.Batch, sink string, elapsed time.Duration, err error) {
	fields := []ports.Field{
		ports.String("sink", sink),
		ports.String("batch_id", batch.ID),
		ports.Uint64("sequence", batch.Sequence),
		ports.Int("records", batch.Size()),
		ports.Duration("duration", elapsed),
	}
	if err != nil {
		d.logger.Error("flush failed, batch discarded", append(fields, ports.Err(err))...)
		return
	}
	d.logger.Info("flushed batch", fields...)
}

// InFlight returns the number of running workers.
func (d *Dispatcher) InFlight() int {
	return int(d.inFlight.Load())
}

// Wait blocks until every worker has finished or timeout expires.
// Only process shutdown uses it; the receive loop never waits.
func (d *Dispatcher) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		d.logger.Warn("flush workers still running at shutdown",
			ports.Int("in_flight", d.InFlight()),
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
