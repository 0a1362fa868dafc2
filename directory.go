// File directory.go implements read-only enumeration of a FAT12 volume's
// root directory. Nested directory traversal isn't supported: the only
// path a Directory can be opened on is the root, "\".

package fat12

import (
	"fmt"
	"time"
)

// DirEntry is the output of Directory.Read: a present root-directory slot
// converted to its displayable form plus its boolean attribute flags.
type DirEntry struct {
	Name      string
	ReadOnly  bool
	Hidden    bool
	System    bool
	Directory bool
	Archive   bool

	// Size carries the directory's total entry count, matching disk.c's
	// dir_entry_t.size (set from dir_t.number_of_files) rather than the
	// file's byte size; kept as-is for parity with the original. ModTime
	// below supplements it with the value a caller more likely wants.
	Size uint32

	// ModTime is the entry's last-write time; the zero Time if unset.
	ModTime time.Time
}

// Directory enumerates a Volume's root directory entries in on-disk order,
// skipping slots that are free (0x00) or deleted (0xE5).
type Directory struct {
	entries []ShortEntry
	cursor  int
	closed  bool
}

// OpenDirectory opens path on vol. The only supported path is "\" (the
// root); any other path fails with NotFound.
func OpenDirectory(vol *Volume, path string) (*Directory, error) {
	if vol == nil {
		return nil, wrap(fmt.Errorf("nil volume"), ErrInvalidArgument)
	}
	if path != `\` {
		return nil, wrap(fmt.Errorf("unsupported directory path %q (only \\ is supported)", path), ErrNotFound)
	}

	return &Directory{entries: vol.root}, nil
}

// Read advances the cursor to the next present entry (first name byte
// neither 0x00 nor 0xE5) and returns it. It reports (DirEntry{}, false, nil)
// once every entry has been visited.
func (d *Directory) Read() (DirEntry, bool, error) {
	if d.closed {
		return DirEntry{}, false, wrap(fmt.Errorf("directory already closed"), ErrInvalidArgument)
	}

	for d.cursor < len(d.entries) {
		e := d.entries[d.cursor]
		d.cursor++
		if !e.Present() {
			continue
		}

		return DirEntry{
			Name:      e.DisplayName(),
			ReadOnly:  e.Attributes&AttrReadOnly == AttrReadOnly,
			Hidden:    e.Attributes&AttrHidden == AttrHidden,
			System:    e.Attributes&AttrSystem == AttrSystem,
			Directory: e.IsDir(),
			Archive:   e.Attributes&AttrArchive == AttrArchive,
			Size:      uint32(len(d.entries)),
			ModTime:   e.ModTime(),
		}, true, nil
	}

	return DirEntry{}, false, nil
}

// Rewind resets the cursor to the beginning of the directory.
func (d *Directory) Rewind() {
	d.cursor = 0
}

// Close releases the Directory. It does not touch the Volume, which the
// Directory only borrows.
func (d *Directory) Close() error {
	if d.closed {
		return wrap(fmt.Errorf("directory already closed"), ErrInvalidArgument)
	}
	d.closed = true
	d.entries = nil
	return nil
}
