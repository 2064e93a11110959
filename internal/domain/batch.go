package domain

import "time"

// Batch is an ordered run of records that is flushed as a unit.
// Records are kept in receipt order. Once a batch is handed to the
// dispatcher it belongs to the flush worker and is never touched again by
// the receive loop.
type Batch struct {
	// ID correlates the log lines of one flush
	ID string

	// Sequence is the batch number, starting at 1
	Sequence uint64

	// Records in the order they were received
	Records []Record

	// CreatedAt is when the batch was drained from the accumulator
	CreatedAt time.Time
}

// Size returns the number of records in the batch.
func (b Batch) Size() int {
	return len(b.Records)
}

// Empty returns true if the batch has no records.
func (b Batch) Empty() bool {
	return len(b.Records) == 0
}

// Bytes returns the total payload size of the batch.
func (b Batch) Bytes() int {
	var total int
	for _, r := range b.Records {
		total += r.Size()
	}
	return total
}

// Lines returns every payload decoded as text, in receipt order.
func (b Batch) Lines() []string {
	lines := make([]string, len(b.Records))
	for i, r := range b.Records {
		lines[i] = r.Text()
	}
	return lines
}
