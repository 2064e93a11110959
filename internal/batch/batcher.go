// Package batch accumulates received records into numbered batches.
package batch

import (
	"time"

	"github.com/google/uuid"

	"github.com/simplay/seismograph-server/internal/domain"
)

// Batcher decides when the records received so far make a full batch.
type Batcher interface {
	// Append adds a record to the tail of the current batch.
	Append(record domain.Record)

	// IsFull returns true when the current batch must be flushed.
	IsFull() bool

	// DrainAndAdvance hands over the current batch and starts the next one.
	DrainAndAdvance() domain.Batch

	// Len returns the number of records in the current batch.
	Len() int
}

// Accumulator is the count-based Batcher.
// A batch is full once it holds more than maxSamples records, so with the
// default threshold of 100 the flush happens on the 101st record.
//
// Accumulator is not safe for concurrent use. Only the receive loop owns it.
type Accumulator struct {
	records    []domain.Record
	sequence   uint64
	maxSamples int
	now        func() time.Time
}

// NewAccumulator creates an accumulator with the given threshold.
// A non-positive maxSamples falls back to domain.MaxSamples.
func NewAccumulator(maxSamples int) *Accumulator {
	if maxSamples <= 0 {
		maxSamples = domain.MaxSamples
	}
	return &Accumulator{
		records:    make([]domain.Record, 0, maxSamples+1),
		sequence:   1,
		maxSamples: maxSamples,
		now:        time.Now,
	}
}

// Append adds a record to the current batch.
func (a *Accumulator) Append(record domain.Record) {
	a.records = append(a.records, record)
}

// IsFull returns true when the batch holds more than the threshold.
func (a *Accumulator) IsFull() bool {
	return len(a.records) > a.maxSamples
}

// DrainAndAdvance returns the current records with the sequence number they
// belong to, then resets to a fresh empty batch and increments the sequence.
// The returned batch shares no memory with the accumulator.
func (a *Accumulator) DrainAndAdvance() domain.Batch {
	b := domain.Batch{
		ID:        uuid.NewString(),
		Sequence:  a.sequence,
		Records:   a.records,
		CreatedAt: a.now(),
	}
	a.records = make([]domain.Record, 0, a.maxSamples+1)
	a.sequence++
	return b
}

// Len returns the number of records in the current batch.
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Sequence returns the number the current batch will be flushed with.
func (a *Accumulator) Sequence() uint64 {
	return a.sequence
}

// MaxSamples returns the configured threshold.
func (a *Accumulator) MaxSamples() int {
	return a.maxSamples
}

// Records returns a copy of the pending records in receipt order.
func (a *Accumulator) Records() []domain.Record {
	out := make([]domain.Record, len(a.records))
	copy(out, a.records)
	return out
}

// Ensure Accumulator implements Batcher.
var _ Batcher = (*Accumulator)(nil)
