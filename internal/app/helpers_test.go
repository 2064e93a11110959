package app

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/internal/ports"
)

// recordingLogger keeps messages per level for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
	infos  []string
}

func (l *recordingLogger) Debug(msg string, fields ...ports.Field) {}

func (l *recordingLogger) Info(msg string, fields ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Warn(msg string, fields ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(msg string, fields ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

func (l *recordingLogger) Warns() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

// scriptedSource returns n numbered records, optionally injecting errors,
// then ErrSourceExhausted. Every record carries a fake sender address.
type scriptedSource struct {
	mu       sync.Mutex
	n        int
	served   int
	errsAt   map[int]error
	ackErr   error
	nextCall int
	acks     []net.Addr
}

func newScriptedSource(n int) *scriptedSource {
	return &scriptedSource{n: n, errsAt: map[int]error{}}
}

func (s *scriptedSource) Next(ctx context.Context) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCall++
	if err, ok := s.errsAt[s.nextCall]; ok {
		return domain.Record{}, err
	}
	if s.served >= s.n {
		return domain.Record{}, domain.ErrSourceExhausted
	}
	s.served++
	addr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 40000 + s.served}
	return domain.NewRecord([]byte(fmt.Sprintf("r%d", s.served)), addr), nil
}

func (s *scriptedSource) Acknowledge(ctx context.Context, addr net.Addr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acks = append(s.acks, addr)
	return s.ackErr
}

func (s *scriptedSource) Close() error { return nil }

func (s *scriptedSource) Acks() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]net.Addr(nil), s.acks...)
}

// blockingSource blocks in Next until the context ends.
type blockingSource struct{}

func (blockingSource) Next(ctx context.Context) (domain.Record, error) {
	<-ctx.Done()
	return domain.Record{}, ctx.Err()
}
func (blockingSource) Acknowledge(context.Context, net.Addr) error { return nil }
func (blockingSource) Close() error                                { return nil }

// recordingSink keeps every flushed batch. A non-nil gate makes Flush wait.
type recordingSink struct {
	mu      sync.Mutex
	batches []domain.Batch
	metas   []domain.Metadata
	gate    chan struct{}
	err     error
	panicOn uint64
	flushed chan domain.Batch
}

func newRecordingSink() *recordingSink {
	return &recordingSink{flushed: make(chan domain.Batch, 64)}
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Flush(ctx context.Context, b domain.Batch, meta domain.Metadata) error {
	if s.gate != nil {
		<-s.gate
	}
	if s.panicOn != 0 && b.Sequence == s.panicOn {
		panic("sink exploded")
	}
	s.mu.Lock()
	s.batches = append(s.batches, b)
	s.metas = append(s.metas, meta)
	s.mu.Unlock()
	s.flushed <- b
	return s.err
}

func (s *recordingSink) Batches() []domain.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Batch(nil), s.batches...)
}

// waitFlushes collects n flushed batches or gives up after timeout.
func (s *recordingSink) waitFlushes(n int, timeout time.Duration) []domain.Batch {
	deadline := time.After(timeout)
	var got []domain.Batch
	for len(got) < n {
		select {
		case b := <-s.flushed:
			got = append(got, b)
		case <-deadline:
			return got
		}
	}
	return got
}
