// Package ooxmlzip provides read-only access to the entries of an Office Open XML package.
// Entries are located through the zip central directory and decompressed into memory one at a time.
package ooxmlzip

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
)

// DefaultMaxEntrySize is used when no limit is given to Open or New.
const DefaultMaxEntrySize uint64 = 64 << 20

var (
	ErrNotAnArchive = errors.New("not a zip archive")
	ErrNotFound     = errors.New("entry not found in archive")
	ErrExtract      = errors.New("could not extract entry")
	ErrTooLarge     = errors.New("entry exceeds size limit")
)

// Entry describes a single file inside the archive.
type Entry struct {
	Name             string
	CompressedSize   uint64
	UncompressedSize uint64
	// Offset of the entry's data relative to the start of the archive; -1 if unknown
	Offset int64
	file   *zip.File
}

// Archive is an opened zip container. It is never written to.
type Archive struct {
	zr           *zip.Reader
	index        map[string]*zip.File
	path         string
	file         *os.File
	maxEntrySize uint64
}

// Open opens the zip file at path. The caller must call Close.
func Open(path string, maxEntrySize uint64) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	a, err := New(f, info.Size(), maxEntrySize)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.path = path
	a.file = f
	return a, nil
}

// NewFromBytes reads the archive from memory.
func NewFromBytes(data []byte, maxEntrySize uint64) (*Archive, error) {
	return New(bytes.NewReader(data), int64(len(data)), maxEntrySize)
}

// New reads the central directory of the zip data in r.
func New(r io.ReaderAt, size int64, maxEntrySize uint64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAnArchive, err)
	}
	if maxEntrySize == 0 {
		maxEntrySize = DefaultMaxEntrySize
	}
	a := &Archive{zr: zr, index: make(map[string]*zip.File, len(zr.File)), maxEntrySize: maxEntrySize}
	for _, f := range zr.File {
		// first one wins, like the central directory lookup of most zip tools
		if _, ok := a.index[f.Name]; !ok {
			a.index[f.Name] = f
		}
	}
	return a, nil
}

func newEntry(f *zip.File) Entry {
	offset, err := f.DataOffset()
	if err != nil {
		offset = -1
	}
	return Entry{
		Name:             f.Name,
		CompressedSize:   f.CompressedSize64,
		UncompressedSize: f.UncompressedSize64,
		Offset:           offset,
		file:             f,
	}
}

// Locate returns the entry with exactly the given name (case-sensitive).
func (a *Archive) Locate(name string) (Entry, error) {
	f, ok := a.index[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return newEntry(f), nil
}

// Extract decompresses the entry into a newly allocated buffer owned by the caller.
func (a *Archive) Extract(e Entry) ([]byte, error) {
	if e.file == nil {
		return nil, fmt.Errorf("%w: %s: entry does not belong to an archive", ErrExtract, e.Name)
	}
	if e.UncompressedSize > a.maxEntrySize {
		return nil, fmt.Errorf("%w: %s (%d bytes)", ErrTooLarge, e.Name, e.UncompressedSize)
	}
	r, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtract, e.Name, err)
	}
	defer r.Close()
	// the declared size may lie, so the limit is enforced on the stream as well
	data, err := io.ReadAll(io.LimitReader(r, int64(a.maxEntrySize)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtract, e.Name, err)
	}
	if uint64(len(data)) > a.maxEntrySize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, e.Name)
	}
	return data, nil
}

// ExtractNamed locates and extracts the entry called name.
func (a *Archive) ExtractNamed(name string) ([]byte, error) {
	e, err := a.Locate(name)
	if err != nil {
		return nil, err
	}
	return a.Extract(e)
}

// ListEntriesUnder returns all entries whose name starts with prefix and ends with suffix,
// in central directory order.
func (a *Archive) ListEntriesUnder(prefix, suffix string) []Entry {
	var entries []Entry
	for _, f := range a.zr.File {
		if strings.HasPrefix(f.Name, prefix) && strings.HasSuffix(f.Name, suffix) {
			entries = append(entries, newEntry(f))
		}
	}
	return entries
}

// Path returns the filesystem path the archive was opened from, or an empty string.
func (a *Archive) Path() string {
	return a.path
}

// Close releases the underlying file handle, if any. It is safe to call Close more than once.
func (a *Archive) Close() error {
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}
