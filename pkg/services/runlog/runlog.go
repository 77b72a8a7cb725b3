package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	runFileName    = "report_current.log"
	retainedPrefix = "report_"
	retainedSuffix = ".log"
)

// Entry is one timestamped message of a pipeline run.
type Entry struct {
	Timestamp time.Time
	Message   string
}

type Options struct {
	// Dir is the retained log directory. When empty, the log is
	// in-memory only and rotation is a no-op.
	Dir string
	// Retention is how long rotated logs are kept. Default 7 days.
	Retention time.Duration
}

// Log is the append-only run log for a single pipeline run. It is an
// explicit instance passed through the pipeline, never process-global.
type Log struct {
	logger    zerolog.Logger
	dir       string
	retention time.Duration

	mu      sync.Mutex
	entries []Entry
	file    *os.File
}

func New(logger zerolog.Logger, opts Options) *Log {
	if opts.Retention <= 0 {
		opts.Retention = 7 * 24 * time.Hour
	}
	l := &Log{logger: logger, dir: opts.Dir, retention: opts.Retention}

	if l.dir != "" {
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			logger.Warn().Err(err).Str("dir", l.dir).Msg("failed to create log directory, run log is memory-only")
			return l
		}
		f, err := os.OpenFile(filepath.Join(l.dir, runFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to open run log file, run log is memory-only")
			return l
		}
		l.file = f
	}
	return l
}

// Append records a message with the current timestamp.
func (l *Log) Append(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{Timestamp: time.Now(), Message: msg}
	l.entries = append(l.entries, e)
	if l.file != nil {
		line := fmt.Sprintf("%s %s\n", e.Timestamp.Format(time.RFC3339), e.Message)
		if _, err := l.file.WriteString(line); err != nil {
			l.logger.Warn().Err(err).Msg("failed to append to run log file")
		}
	}
}

// Appendf is Append with formatting.
func (l *Log) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Entries returns a copy of the ordered entry sequence.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Rotate flushes the run's entries into a timestamped retained file and
// purges retained files older than the retention window. Called on
// successful completion only.
func (l *Log) Rotate() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dir == "" {
		return "", nil
	}
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	name := fmt.Sprintf("%s%s%s", retainedPrefix, time.Now().Format("20060102_150405"), retainedSuffix)
	path := filepath.Join(l.dir, name)

	var b strings.Builder
	for _, e := range l.entries {
		fmt.Fprintf(&b, "%s %s\n", e.Timestamp.Format(time.RFC3339), e.Message)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to rotate run log to %s: %w", path, err)
	}
	_ = os.Remove(filepath.Join(l.dir, runFileName))

	l.purgeLocked()
	return path, nil
}

// Close releases the on-disk run file without rotating. Used on failed
// runs so the next run can start fresh.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *Log) purgeLocked() {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		l.logger.Warn().Err(err).Str("dir", l.dir).Msg("failed to scan log directory for purge")
		return
	}

	cutoff := time.Now().Add(-l.retention)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, retainedPrefix) || !strings.HasSuffix(name, retainedSuffix) || name == runFileName {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(l.dir, name)
		if err := os.Remove(path); err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("failed to purge retained log")
			continue
		}
		l.logger.Debug().Str("path", path).Msg("purged retained log")
	}
}
