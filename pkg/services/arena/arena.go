package arena

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DirPrefix is the name prefix of every arena directory under the temp root.
const DirPrefix = "report_arena_"

type Options struct {
	// Root is the shared temp root. Defaults to os.TempDir().
	Root string
	// TTL is the age after which an arena left behind by a previous run
	// is considered stale and eligible for sweeping.
	TTL time.Duration
}

func (o Options) root() string {
	if o.Root == "" {
		return os.TempDir()
	}
	return o.Root
}

// Arena is a scoped temp directory for one report run. It tracks every
// path it issues and removes all of them, plus the directory itself,
// on CloseAll.
type Arena struct {
	dir    string
	logger zerolog.Logger

	mu     sync.Mutex
	issued []string
	seq    int
	closed bool
}

// Open creates a fresh arena directory under the temp root and verifies
// it is writable.
func Open(logger zerolog.Logger, opts Options) (*Arena, error) {
	dir := filepath.Join(opts.root(), DirPrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create arena directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("arena directory %s is not writable: %w", dir, err)
	}
	_ = os.Remove(probe)

	logger.Debug().Str("dir", dir).Msg("arena opened")
	return &Arena{dir: dir, logger: logger}, nil
}

// Dir returns the arena directory.
func (a *Arena) Dir() string {
	return a.dir
}

// Issue returns a fresh unique path inside the arena and records it for
// teardown. The file itself is not created; that is the caller's job.
func (a *Arena) Issue(prefix, suffix string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return "", fmt.Errorf("arena %s is closed", a.dir)
	}

	a.seq++
	name := fmt.Sprintf("%s%04d_%s%s", prefix, a.seq, shortID(), suffix)
	path := filepath.Join(a.dir, name)
	a.issued = append(a.issued, path)
	return path, nil
}

// CloseAll deletes every issued path that exists and removes the arena
// directory. It is idempotent and best-effort: deletion failures are
// logged, never escalated.
func (a *Arena) CloseAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, path := range a.issued {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			a.logger.Warn().Err(err).Str("path", path).Msg("failed to remove arena artifact")
		}
	}
	a.issued = nil

	if !a.closed {
		if err := os.RemoveAll(a.dir); err != nil {
			a.logger.Warn().Err(err).Str("dir", a.dir).Msg("failed to remove arena directory")
		}
		a.closed = true
	}
}

// SweepStale removes arena directories under the temp root whose age
// exceeds the TTL. It recovers space left behind by runs that died
// before their own teardown.
func SweepStale(logger zerolog.Logger, opts Options) error {
	entries, err := os.ReadDir(opts.root())
	if err != nil {
		return fmt.Errorf("failed to scan temp root %s: %w", opts.root(), err)
	}

	cutoff := time.Now().Add(-opts.TTL)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), DirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(opts.root(), entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("failed to sweep stale arena")
			continue
		}
		logger.Info().Str("dir", dir).Msg("swept stale arena")
	}
	return nil
}

func shortID() string {
	id := uuid.NewString()
	return id[:8]
}
