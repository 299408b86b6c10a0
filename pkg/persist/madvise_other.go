//go:build !linux

package persist

import "os"

// adviseDontNeed is a no-op on platforms without a Fadvise/madvise
// equivalent wired up; the in-memory buffer returned by Load is correct
// either way, this only affects page-cache pressure.
func adviseDontNeed(f *os.File) {}
