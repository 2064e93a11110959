package app

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/simplay/seismograph-server/internal/batch"
	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/internal/metrics"
	"github.com/simplay/seismograph-server/internal/ports"
)

// DefaultErrorPause is how long the loop waits after a receive error.
const DefaultErrorPause = 100 * time.Millisecond

// AgentConfig contains configuration for the receive loop.
type AgentConfig struct {
	// MaxSamples is the batch threshold; a batch flushes above it
	MaxSamples int

	// ErrorPause throttles the loop after a receive error
	ErrorPause time.Duration

	// Metadata is attached to every flush
	Metadata domain.Metadata
}

// Agent is the receive loop: source to accumulator to dispatcher, and back
// to the source for the acknowledgement.
type Agent struct {
	config     AgentConfig
	source     ports.Source
	sink       ports.Sink
	dispatcher *Dispatcher
	batcher    *batch.Accumulator
	logger     ports.Logger
	metrics    *metrics.Metrics
}

// NewAgent creates a new agent with the given dependencies. m may be nil.
func NewAgent(
	config AgentConfig,
	source ports.Source,
	sink ports.Sink,
	dispatcher *Dispatcher,
	logger ports.Logger,
	m *metrics.Metrics,
) *Agent {
	if config.ErrorPause <= 0 {
		config.ErrorPause = DefaultErrorPause
	}
	return &Agent{
		config:     config,
		source:     source,
		sink:       sink,
		dispatcher: dispatcher,
		batcher:    batch.NewAccumulator(config.MaxSamples),
		logger:     logger,
		metrics:    m,
	}
}

// Run executes the receive loop until the context is canceled, the source
// is closed, or a finite source is exhausted (which returns nil).
// No flush outcome and no acknowledgement failure ever stops the loop.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("receive loop started",
		ports.String("sink", a.sink.Name()),
		ports.Int("max_samples", a.batcher.MaxSamples()),
	)
	defer a.logPending()

	for {
		rec, err := a.source.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrSourceExhausted):
				a.logger.Info("source exhausted")
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, net.ErrClosed):
				return err
			}

			a.metrics.ReceiveError()
			a.logger.Error("receive error", ports.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.config.ErrorPause):
			}
			continue
		}

		a.handle(ctx, rec)
	}
}

// handle runs one cycle of the loop for a received record.
func (a *Agent) handle(ctx context.Context, rec domain.Record) {
	a.metrics.RecordReceived(rec.Size())

	a.batcher.Append(rec)
	if a.batcher.IsFull() {
		b := a.batcher.DrainAndAdvance()
		a.logger.Debug("batch full",
			ports.String("batch_id", b.ID),
			ports.Uint64("sequence", b.Sequence),
			ports.Int("records", b.Size()),
		)
		a.dispatcher.Dispatch(b, a.sink, a.config.Metadata)
	}

	err := a.source.Acknowledge(ctx, rec.Addr)
	a.metrics.Ack(err)
	if err != nil {
		a.logger.Warn("acknowledge failed", ports.Err(err))
	}
}

// Pending returns the number of records waiting for the next flush.
// Only call it while Run is not executing.
func (a *Agent) Pending() int {
	return a.batcher.Len()
}

// Sequence returns the sequence number of the batch being filled.
// Only call it while Run is not executing.
func (a *Agent) Sequence() uint64 {
	return a.batcher.Sequence()
}

func (a *Agent) logPending() {
	if n := a.batcher.Len(); n > 0 {
		a.logger.Info("receive loop stopped with partial batch discarded",
			ports.Int("records", n),
			ports.Uint64("sequence", a.batcher.Sequence()),
		)
	}
}
