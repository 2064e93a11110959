package ports

import (
	"context"
	"net"

	"github.com/simplay/seismograph-server/internal/domain"
)

// Source produces records and acknowledges them back to their sender.
type Source interface {
	// Next blocks until one record is available.
	// Returns domain.ErrSourceExhausted when a finite source has nothing left,
	// net.ErrClosed once the source is closed, and ctx.Err() on cancellation.
	Next(ctx context.Context) (domain.Record, error)

	// Acknowledge confirms receipt to addr. A nil addr is a no-op.
	Acknowledge(ctx context.Context, addr net.Addr) error

	// Close releases the underlying resources and unblocks a pending Next.
	Close() error
}
