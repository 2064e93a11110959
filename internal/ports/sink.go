package ports

import (
	"context"

	"github.com/simplay/seismograph-server/internal/domain"
)

// Sink is the destination of a completed batch.
// Flush is called from a dispatcher worker, never from the receive loop,
// and may be called concurrently for different batches.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string

	// Flush writes the whole batch. There is no retry: a returned error
	// means the batch is lost.
	Flush(ctx context.Context, batch domain.Batch, meta domain.Metadata) error
}
