//go:build linux

package persist

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseDontNeed tells the kernel the file's page-cache pages are no
// longer needed now that Load has its own private copy in buf, matching
// the reference behaviour of advising the OS after a full read.
func adviseDontNeed(f *os.File) {
	st, err := f.Stat()
	if err != nil {
		return
	}
	_ = unix.Fadvise(int(f.Fd()), 0, st.Size(), unix.FADV_DONTNEED)
}
