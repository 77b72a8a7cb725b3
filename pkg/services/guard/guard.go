package guard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"
)

var (
	// ErrPathOutsideAllowedDir means the canonicalized parent of the
	// requested path is not the allowed output directory.
	ErrPathOutsideAllowedDir = errors.New("path outside allowed directory")
	// ErrInvalidFilename means the filename contains characters outside
	// the allowed charset.
	ErrInvalidFilename = errors.New("invalid filename")
	// ErrNotWritable means the target directory or an existing file at
	// the target path cannot be written.
	ErrNotWritable = errors.New("target not writable")
	// ErrLockTimeout means the exclusive lock could not be acquired
	// within the configured retries.
	ErrLockTimeout = errors.New("lock acquisition timed out")

	// errLockHeld is the internal signal that another process holds the lock.
	errLockHeld = errors.New("lock held by another process")
)

// filename characters allowed besides letters and digits
const filenamePunct = "._- ()"

type Options struct {
	// Retries is the number of lock attempts before giving up. Default 10.
	Retries int
	// Backoff is the sleep between lock attempts. Default 1s.
	Backoff time.Duration
}

// Guard validates report destinations and serializes concurrent writers
// to the same path with an exclusive sidecar file lock.
type Guard struct {
	retries int
	backoff time.Duration
	logger  zerolog.Logger
}

func New(logger zerolog.Logger, opts Options) *Guard {
	if opts.Retries <= 0 {
		opts.Retries = 10
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Guard{retries: opts.Retries, backoff: opts.Backoff, logger: logger}
}

// Validate checks the requested destination against the allowed directory
// and the filename charset, and returns the canonical target path.
func (g *Guard) Validate(requestedPath, allowedDir string) (string, error) {
	if allowedDir == "" {
		return "", fmt.Errorf("%w: no allowed output directory configured", ErrPathOutsideAllowedDir)
	}

	abs, err := filepath.Abs(requestedPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", requestedPath, err)
	}

	name := filepath.Base(abs)
	if err := checkFilename(name); err != nil {
		return "", err
	}

	canonAllowed, err := canonicalDir(allowedDir)
	if err != nil {
		return "", fmt.Errorf("%w: allowed directory %s: %v", ErrNotWritable, allowedDir, err)
	}
	canonParent, err := canonicalDir(filepath.Dir(abs))
	if err != nil {
		return "", fmt.Errorf("%w: %s resolves outside any known directory: %v", ErrPathOutsideAllowedDir, requestedPath, err)
	}
	if canonParent != canonAllowed {
		return "", fmt.Errorf("%w: %s is not inside %s", ErrPathOutsideAllowedDir, requestedPath, canonAllowed)
	}

	canonical := filepath.Join(canonParent, name)
	if err := checkWritable(canonParent, canonical); err != nil {
		return "", err
	}
	return canonical, nil
}

func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolved), nil
}

func checkFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(filenamePunct, r) {
			continue
		}
		return fmt.Errorf("%w: %q contains disallowed character %q", ErrInvalidFilename, name, r)
	}
	return nil
}

func checkWritable(dir, target string) error {
	probe, err := os.CreateTemp(dir, ".guard_probe_*")
	if err != nil {
		return fmt.Errorf("%w: directory %s: %v", ErrNotWritable, dir, err)
	}
	probe.Close()
	_ = os.Remove(probe.Name())

	f, err := os.OpenFile(target, os.O_WRONLY, 0)
	switch {
	case err == nil:
		f.Close()
	case os.IsNotExist(err):
		// fresh file, directory probe already passed
	default:
		return fmt.Errorf("%w: existing file %s: %v", ErrNotWritable, target, err)
	}
	return nil
}

// LockTicket is the live state of an acquired lock. It exists only
// between AcquireLock and ReleaseLock.
type LockTicket struct {
	TargetPath string
	LockPath   string
	PID        int
	AcquiredAt time.Time

	file     *os.File
	mu       sync.Mutex
	released bool
}

// AcquireLock opens the sidecar lock file next to the canonical path and
// takes a non-blocking exclusive lock, retrying with backoff. On success
// the holder PID is written into the lock file for diagnostics.
func (g *Guard) AcquireLock(ctx context.Context, canonicalPath string) (*LockTicket, error) {
	lockPath := canonicalPath + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", lockPath, err)
	}

	for attempt := 1; ; attempt++ {
		err = flockExclusive(f)
		if err == nil {
			break
		}
		if !errors.Is(err, errLockHeld) {
			f.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", lockPath, err)
		}
		if attempt >= g.retries {
			f.Close()
			return nil, fmt.Errorf("%w: %s after %d attempts", ErrLockTimeout, lockPath, attempt)
		}
		g.logger.Debug().Str("lock", lockPath).Int("attempt", attempt).Msg("lock busy, retrying")
		select {
		case <-ctx.Done():
			f.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", lockPath, ctx.Err())
		case <-time.After(g.backoff):
		}
	}

	ticket := &LockTicket{
		TargetPath: canonicalPath,
		LockPath:   lockPath,
		PID:        os.Getpid(),
		AcquiredAt: time.Now(),
		file:       f,
	}

	// Diagnostic only; a failure here does not invalidate the lock.
	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(fmt.Sprintf("pid=%d acquired=%s\n", ticket.PID, ticket.AcquiredAt.Format(time.RFC3339))), 0)
	}

	g.logger.Debug().Str("lock", lockPath).Int("pid", ticket.PID).Msg("lock acquired")
	return ticket, nil
}

// ReleaseLock unlocks, closes and deletes the sidecar lock file. It is
// idempotent: releasing an already-released or nil ticket is a no-op.
func (g *Guard) ReleaseLock(ticket *LockTicket) error {
	if ticket == nil {
		return nil
	}
	ticket.mu.Lock()
	defer ticket.mu.Unlock()
	if ticket.released {
		return nil
	}
	ticket.released = true

	if err := funlock(ticket.file); err != nil {
		g.logger.Warn().Err(err).Str("lock", ticket.LockPath).Msg("failed to unlock")
	}
	if err := ticket.file.Close(); err != nil {
		g.logger.Warn().Err(err).Str("lock", ticket.LockPath).Msg("failed to close lock file")
	}
	if err := os.Remove(ticket.LockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file %s: %w", ticket.LockPath, err)
	}

	g.logger.Debug().Str("lock", ticket.LockPath).Msg("lock released")
	return nil
}
