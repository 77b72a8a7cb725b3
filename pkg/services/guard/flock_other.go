//go:build !unix

package guard

import "os"

// Advisory flock(2) is unavailable on this platform; locking degrades to
// a no-op and concurrent-writer safety relies on single-instance use.
func flockExclusive(f *os.File) error { return nil }

func funlock(f *os.File) error { return nil }
