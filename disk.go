// File disk.go implements the raw, sector-addressable view of a FAT12 disk
// image backed by an afero filesystem. Using afero.Fs instead of a bare
// *os.File lets the exact same Disk code path open a real image
// (afero.NewOsFs()) or a synthetic one built in memory for tests
// (afero.NewMemMapFs()).

package fat12

import (
	"fmt"
	"io"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/wojtek20032/fat12/checkpoint"
)

// sectorReader is the narrow surface File's read path depends on (through
// Volume). *Disk is the only production implementation; tests substitute a
// gomock-generated mock (see mock_sector_reader.go) so File unit tests need
// no real backing image. Directory reads only the in-memory root table and
// never touches the disk.
//
//go:generate mockgen -source=disk.go -destination=mock_sector_reader.go -package=fat12
type sectorReader interface {
	Read(firstSector uint32, buf []byte, sectorsToRead uint32) (uint32, error)
}

// Disk owns a seekable handle to the backing image and a cached sector
// count. It serves fixed-size 512-byte sector reads by absolute sector
// index. A Disk is not safe for concurrent use: every Read mutates the
// underlying file position.
type Disk struct {
	file        afero.File
	sectorCount uint32
	closed      bool
}

// OpenDisk opens path for binary sequential+random read through fs and
// determines the sector count from the file's byte length, rounded down to
// a whole number of 512-byte sectors.
func OpenDisk(fs afero.Fs, path string) (*Disk, error) {
	if fs == nil {
		return nil, wrap(fmt.Errorf("nil filesystem"), ErrInvalidArgument)
	}
	if path == "" {
		return nil, wrap(fmt.Errorf("empty path"), ErrInvalidArgument)
	}

	file, err := fs.Open(path)
	if err != nil {
		return nil, wrap(checkpoint.From(err), ErrNotFound)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, wrap(checkpoint.From(err), ErrNotFound)
	}

	return &Disk{
		file:        file,
		sectorCount: uint32(info.Size() / sectorSize),
	}, nil
}

// Open opens path on the real filesystem. It is a convenience wrapper over
// OpenDisk(afero.NewOsFs(), path).
func Open(path string) (*Disk, error) {
	return OpenDisk(afero.NewOsFs(), path)
}

// SectorCount returns the number of whole 512-byte sectors in the image.
func (d *Disk) SectorCount() uint32 {
	return d.sectorCount
}

// Read reads sectorsToRead*512 bytes starting at sector firstSector into
// buf, which must be at least that large. It returns the number of sectors
// actually read.
//
// The inclusive upper bound on firstSector (firstSector == SectorCount()) is
// accepted only when sectorsToRead == 0: a zero-length read at the
// one-past-end sector is a degenerate success. Any positive-length read
// that would cross the end of the disk fails with OutOfRange.
func (d *Disk) Read(firstSector uint32, buf []byte, sectorsToRead uint32) (uint32, error) {
	if buf == nil {
		return 0, wrap(fmt.Errorf("nil buffer"), ErrInvalidArgument)
	}
	if firstSector > d.sectorCount {
		return 0, wrap(fmt.Errorf("first sector %d beyond %s", firstSector, humanize.Comma(int64(d.sectorCount))), ErrOutOfRange)
	}
	if sectorsToRead == 0 {
		return 0, nil
	}
	if firstSector+sectorsToRead > d.sectorCount {
		return 0, wrap(fmt.Errorf(
			"read of %d sector(s) from sector %d crosses the end of a %s-sector disk",
			sectorsToRead, firstSector, humanize.Comma(int64(d.sectorCount)),
		), ErrOutOfRange)
	}

	want := int64(sectorsToRead) * sectorSize
	if int64(len(buf)) < want {
		return 0, wrap(fmt.Errorf("buffer too small: need %d bytes, got %d", want, len(buf)), ErrInvalidArgument)
	}

	if _, err := d.file.Seek(int64(firstSector)*sectorSize, io.SeekStart); err != nil {
		return 0, wrap(checkpoint.From(err), ErrOutOfRange)
	}

	if _, err := io.ReadFull(d.file, buf[:want]); err != nil {
		return 0, wrap(checkpoint.From(err), ErrOutOfRange)
	}

	return sectorsToRead, nil
}

// Close releases the underlying handle. Idempotence is not guaranteed: like
// disk.c's disk_close, a second Close observes the handle already gone and
// fails rather than silently succeeding.
func (d *Disk) Close() error {
	if d.closed {
		return wrap(fmt.Errorf("disk already closed"), ErrInvalidArgument)
	}
	d.closed = true
	if err := d.file.Close(); err != nil {
		return checkpoint.From(err)
	}
	return nil
}

// String summarizes the disk for diagnostics/logging.
func (d *Disk) String() string {
	return fmt.Sprintf("disk(%s sectors, %s)", humanize.Comma(int64(d.sectorCount)), humanize.Bytes(uint64(d.sectorCount)*sectorSize))
}
