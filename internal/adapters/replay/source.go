// Package replay provides the test Source: a fixture file replayed line by
// line, standing in for the seismograph during development.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/internal/ports"
)

// DefaultDelay is the pause between replayed records.
const DefaultDelay = 50 * time.Millisecond

// Config controls how a fixture is replayed.
type Config struct {
	// Path of the fixture file, one record per line
	Path string

	// OnExhaust decides what happens after the last line
	OnExhaust domain.ExhaustPolicy

	// Delay between records. Zero replays as fast as the loop reads.
	Delay time.Duration
}

// Source implements ports.Source over a fixture loaded once at construction.
type Source struct {
	lines  [][]byte
	policy domain.ExhaustPolicy
	delay  time.Duration
	logger ports.Logger

	mu     sync.Mutex
	next   int
	passes int
	served int
	closed bool
	done   chan struct{}
}

// Open loads the fixture at cfg.Path.
func Open(cfg Config, logger ports.Logger) (*Source, error) {
	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	lines, err := splitLines(data)
	if err != nil {
		return nil, fmt.Errorf("scan fixture: %w", err)
	}
	src, err := New(lines, cfg.OnExhaust, cfg.Delay, logger)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", cfg.Path, err)
	}
	logger.Info("replaying fixture",
		ports.String("path", cfg.Path),
		ports.Int("records", len(src.lines)),
		ports.String("on_exhaust", string(src.policy)),
		ports.Duration("delay", src.delay),
	)
	return src, nil
}

// New creates a Source over lines already in memory.
// An empty policy means domain.ExhaustLoop.
func New(lines [][]byte, policy domain.ExhaustPolicy, delay time.Duration, logger ports.Logger) (*Source, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: fixture has no records", domain.ErrInvalidConfig)
	}
	if policy == "" {
		policy = domain.ExhaustLoop
	}
	if _, err := domain.ParseExhaustPolicy(string(policy)); err != nil {
		return nil, err
	}
	if delay < 0 {
		delay = 0
	}
	return &Source{
		lines:  lines,
		policy: policy,
		delay:  delay,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// splitLines strips surrounding whitespace from each line. Blank lines in the
// middle of the fixture are kept as empty records.
func splitLines(data []byte) ([][]byte, error) {
	var lines [][]byte
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		lines = append(lines, append([]byte(nil), line...))
	}
	return lines, sc.Err()
}

// Next returns the next fixture line with a nil address.
func (s *Source) Next(ctx context.Context) (domain.Record, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Record{}, net.ErrClosed
	}
	if s.next >= len(s.lines) {
		if s.policy == domain.ExhaustExit {
			s.mu.Unlock()
			return domain.Record{}, domain.ErrSourceExhausted
		}
		s.next = 0
		s.passes++
		s.logger.Debug("fixture exhausted, restarting", ports.Int("passes", s.passes))
	}
	wait := s.served > 0 && s.delay > 0
	s.mu.Unlock()

	if wait {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Record{}, ctx.Err()
		case <-s.done:
			timer.Stop()
			return domain.Record{}, net.ErrClosed
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Record{}, net.ErrClosed
	}
	line := s.lines[s.next]
	s.next++
	s.served++
	return domain.NewRecord(line, nil), nil
}

// Acknowledge is a no-op: there is no sender to answer.
func (s *Source) Acknowledge(context.Context, net.Addr) error {
	return nil
}

// Close stops the replay and unblocks a pending delay.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

// Len returns the number of records in the fixture.
func (s *Source) Len() int {
	return len(s.lines)
}

// Served returns how many records Next has returned.
func (s *Source) Served() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.served
}
