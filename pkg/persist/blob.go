// Package persist implements the single-blob save/load of a finalised
// quadtree: Save writes the tree's backing buffer in one write, Load reads
// it back byte-for-byte with no parsing step. The persisted format stores
// every multi-byte field in the host's native byte order and float
// representation (see pkg/quadtree/record.go) and is therefore only
// portable between machines of identical representation and alignment --
// this is an explicit, documented non-goal, not an oversight.
package persist

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"qtidx/pkg/qtlog"
	"qtidx/pkg/quadtree"
)

// DefaultChunkSize is the chunk size Load uses when none is supplied,
// matching the teacher's storage.PageSize page-at-a-time I/O unit.
const DefaultChunkSize = 4096

var (
	// ErrIO wraps any open/read/write/stat failure encountered while
	// saving or loading a tree.
	ErrIO = errors.New("persist: I/O failure")
)

// Save writes t's backing buffer to path in a single Write, via a
// temp-file-then-rename so a reader never observes a partially written
// file. The temp file's name is suffixed with a fresh UUID so concurrent
// Saves targeting the same path never collide, the same concern the
// teacher's BTree.Open addresses by bootstrapping a brand new file only
// when none exists.
func Save(t *quadtree.FinalTree, path string) error {
	return SaveLogged(t, path, nil)
}

// SaveLogged is Save with an optional *qtlog.Logger for diagnostics.
func SaveLogged(t *quadtree.FinalTree, path string, lg *qtlog.Logger) error {
	buf := t.Bytes()

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return errors.Wrapf(ErrIO, "open temp file %s: %v", tmp, err)
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(ErrIO, "write %s: %v", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(ErrIO, "sync %s: %v", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(ErrIO, "close %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(ErrIO, "rename %s -> %s: %v", tmp, path, err)
	}

	if lg != nil {
		lg.Debugf("saved %s (%s)", path, qtlog.Bytes(uint64(len(buf))))
	}
	return nil
}

// Load reads the finalised buffer at path back into memory and wraps it as
// a *quadtree.FinalTree. No validation of internal offsets is performed --
// this is a trusted format, matching the reference's raw-copy contract.
func Load(path string) (*quadtree.FinalTree, error) {
	return LoadLogged(path, DefaultChunkSize, nil)
}

// LoadLogged is Load with an explicit chunk size and optional logger.
func LoadLogged(path string, chunkSize int, lg *qtlog.Logger) (*quadtree.FinalTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "open %s: %v", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "stat %s: %v", path, err)
	}
	size := st.Size()

	buf := make([]byte, size)
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	var off int64
	for off < size {
		n := int64(chunkSize)
		if off+n > size {
			n = size - off // final short read for the tail
		}
		if _, err := io.ReadFull(f, buf[off:off+n]); err != nil {
			return nil, errors.Wrapf(ErrIO, "read %s at %d: %v", path, off, err)
		}
		off += n
	}

	adviseDontNeed(f)

	if lg != nil {
		lg.Debugf("loaded %s (%s)", path, qtlog.Bytes(uint64(size)))
	}
	return quadtree.NewFinalTreeFromBuffer(buf), nil
}
