package fs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/internal/ports"
)

// FileSinkName is reported in logs and metrics.
const FileSinkName = "file"

// FileSink implements ports.Sink by writing one text file per batch.
type FileSink struct {
	dir    string
	logger ports.Logger
	now    func() time.Time
}

// NewFileSink creates a FileSink writing into dir.
func NewFileSink(dir string, logger ports.Logger) *FileSink {
	return &FileSink{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
}

// Name returns the sink identifier.
func (s *FileSink) Name() string {
	return FileSinkName
}

// Dir returns the output directory.
func (s *FileSink) Dir() string {
	return s.dir
}

// FileName returns the name used for a batch flushed at t.
func FileName(t time.Time, sequence uint64) string {
	return fmt.Sprintf("seismograph_%d_%d.txt", t.UnixMilli(), sequence)
}

// Flush writes every record as one newline-terminated line, in receipt order.
// The file is written under a temporary name and renamed once complete, so a
// reader never sees a partial batch.
func (s *FileSink) Flush(ctx context.Context, batch domain.Batch, _ domain.Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(s.dir, FileName(s.now(), batch.Sequence))
	tmp := path + ".tmp"

	s.logger.Debug("saving samples",
		ports.String("path", path),
		ports.Int("records", batch.Size()),
	)

	if err := writeLines(tmp, batch.Records); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeLines(path string, records []domain.Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}

	w := bufio.NewWriter(f)
	for _, r := range records {
		if _, err := w.Write(r.Payload); err != nil {
			f.Close()
			return fmt.Errorf("write record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
