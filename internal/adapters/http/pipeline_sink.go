package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/internal/ports"
)

// PipelineSinkName is reported in logs and metrics.
const PipelineSinkName = "pipeline"

const sensorsEndpoint = "/sensors/seismograph"

// maxErrorBody caps how much of a failed response body is kept for the log.
const maxErrorBody = 4 << 10

// Payload is one element of the JSON array posted to the backend.
type Payload struct {
	Data      []string `json:"data"`
	Timestamp float64  `json:"timestamp"`
	Location  string   `json:"location"`
	IP        string   `json:"ip"`
}

// PipelineSink implements ports.Sink by posting batches to the backend.
type PipelineSink struct {
	client ports.HTTPClient
	logger ports.Logger
	now    func() time.Time
}

// NewPipelineSink creates a PipelineSink using client for requests.
// The client should carry a timeout; the sink does not retry.
func NewPipelineSink(client ports.HTTPClient, logger ports.Logger) *PipelineSink {
	return &PipelineSink{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Name returns the sink identifier.
func (s *PipelineSink) Name() string {
	return PipelineSinkName
}

// Endpoint returns the URL batches are posted to for the given backend.
// A backend without a scheme is reached over plain http.
func Endpoint(backendURL string) string {
	base := strings.TrimRight(backendURL, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return base + sensorsEndpoint
}

// NewPayload builds the request body for batch, stamped with the flush time.
func NewPayload(batch domain.Batch, meta domain.Metadata, at time.Time) []Payload {
	return []Payload{{
		Data:      batch.Lines(),
		Timestamp: float64(at.UnixNano()) / float64(time.Second),
		Location:  meta.Location,
		IP:        meta.HostIP,
	}}
}

// Flush posts the batch. Only 201 Created counts as success.
func (s *PipelineSink) Flush(ctx context.Context, batch domain.Batch, meta domain.Metadata) error {
	if meta.BackendURL == "" {
		return fmt.Errorf("%w: backend url is empty", domain.ErrInvalidConfig)
	}

	body, err := json.Marshal(NewPayload(batch, meta, s.now()))
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	url := Endpoint(meta.BackendURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Batch-Id", batch.ID)
	if meta.Hostname != "" {
		req.Header.Set("X-Seismograph-Hostname", meta.Hostname)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Debug("pipeline accepted batch",
		ports.String("url", url),
		ports.Uint64("sequence", batch.Sequence),
		ports.Int("bytes", len(body)),
	)
	return nil
}
