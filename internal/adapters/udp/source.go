// Package udp provides the live Source: a UDP socket the seismograph
// streams datagrams to.
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/internal/ports"
)

// Source implements ports.Source over a bound UDP socket.
// Next and Acknowledge are meant to be called from one goroutine.
type Source struct {
	conn   *net.UDPConn
	buf    []byte
	logger ports.Logger

	closeOnce sync.Once
	closeErr  error
}

// Listen binds ip:port and returns a ready Source.
// An empty ip binds every interface. Bind failure is returned as is.
func Listen(ip string, port int, logger ports.Logger) (*Source, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(ip, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("resolve udp address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind udp %s: %w", addr, err)
	}

	logger.Info("reading data on udp", ports.String("addr", conn.LocalAddr().String()))

	return &Source{
		conn:   conn,
		buf:    make([]byte, domain.BufferSize),
		logger: logger,
	}, nil
}

// LocalAddr returns the bound address.
func (s *Source) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Next performs exactly one receive of up to domain.BufferSize bytes.
// Larger datagrams are truncated by the kernel to the buffer size.
// Cancelling ctx closes the socket, which unblocks the receive.
func (s *Source) Next(ctx context.Context) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	n, addr, err := s.conn.ReadFromUDP(s.buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, net.ErrClosed) {
			return domain.Record{}, ctxErr
		}
		return domain.Record{}, err
	}

	// buf is reused on the next receive, so the record gets its own copy.
	return domain.NewRecord(s.buf[:n], addr), nil
}

// Acknowledge sends domain.AckMessage back to addr.
func (s *Source) Acknowledge(_ context.Context, addr net.Addr) error {
	if addr == nil {
		return nil
	}
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return fmt.Errorf("acknowledge: unsupported address type %T", addr)
	}
	if _, err := s.conn.WriteToUDP(domain.AckMessage, udpAddr); err != nil {
		return fmt.Errorf("acknowledge %s: %w", udpAddr, err)
	}
	return nil
}

// Close closes the socket. Safe to call more than once.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
