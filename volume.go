// File volume.go implements mounting a FAT12 volume on top of a Disk:
// boot-sector validation, FAT1/FAT2 mirror verification, and loading the
// fixed-size root directory table into memory.

package fat12

import (
	"bytes"
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/go-restruct/restruct"
	"github.com/hashicorp/go-multierror"

	"github.com/wojtek20032/fat12/checkpoint"
)

// Volume is a mounted FAT12 filesystem rooted at a caller-supplied starting
// sector on a Disk. It borrows the Disk (does not own it) and owns the
// first FAT copy and the root directory table in memory.
type Volume struct {
	disk sectorReader
	boot BootSector

	fat  []byte
	root []ShortEntry

	firstDataSector uint32
	closed          bool
}

// Mount reads and validates the boot sector at firstSector on disk, loads
// both FAT copies and verifies they are bitwise identical, and loads the
// root directory table. Mount is all-or-nothing: on any failure no Volume
// is returned and nothing more is read from disk.
func Mount(disk *Disk, firstSector uint32) (*Volume, error) {
	if disk == nil {
		return nil, wrap(fmt.Errorf("nil disk"), ErrInvalidArgument)
	}

	bootBuf := make([]byte, sectorSize)
	if _, err := disk.Read(firstSector, bootBuf, 1); err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidArgument)
	}

	var boot BootSector
	if err := restruct.Unpack(bootBuf, defaultByteOrder, &boot); err != nil {
		return nil, wrap(checkpoint.From(err), ErrInvalidData)
	}

	if err := validateBootSector(boot); err != nil {
		return nil, err
	}

	v := &Volume{disk: disk, boot: boot}

	fatBytes := uint32(boot.BytesPerSector) * uint32(boot.SectorsPerFAT)
	v.fat = make([]byte, fatBytes)
	if _, err := disk.Read(uint32(boot.ReservedSectorCount), v.fat, uint32(boot.SectorsPerFAT)); err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidData)
	}

	if boot.NumFATs >= 2 {
		scratch := make([]byte, fatBytes)
		fat2Sector := uint32(boot.ReservedSectorCount) + uint32(boot.SectorsPerFAT)
		if _, err := disk.Read(fat2Sector, scratch, uint32(boot.SectorsPerFAT)); err != nil {
			return nil, checkpoint.Wrap(err, ErrInvalidData)
		}
		if err := compareFATs(v.fat, scratch); err != nil {
			return nil, err
		}
	}

	rootSectors := (uint32(boot.MaxRootEntries) * shortEntrySize) / uint32(boot.BytesPerSector)
	rootSectorStart := uint32(boot.ReservedSectorCount) + uint32(boot.NumFATs)*uint32(boot.SectorsPerFAT)
	rootBuf := make([]byte, rootSectors*uint32(boot.BytesPerSector))
	if _, err := disk.Read(rootSectorStart, rootBuf, rootSectors); err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidData)
	}

	root, err := decodeRootDirectory(rootBuf, int(boot.MaxRootEntries))
	if err != nil {
		return nil, err
	}
	v.root = root

	v.firstDataSector = rootSectorStart + rootSectors

	return v, nil
}

// validateBootSector checks the three mount-time invariants (signature,
// extended boot signature, FAT count), aggregating every violation found
// (not just the first) via multierror so a caller sees the whole picture
// for a malformed image in one error.
func validateBootSector(boot BootSector) error {
	var result *multierror.Error

	if boot.Signature != 0xAA55 {
		result = multierror.Append(result, fmt.Errorf("signature is 0x%04X, want 0xAA55", boot.Signature))
	}
	if boot.ExtendedBootSig != 0x28 && boot.ExtendedBootSig != 0x29 {
		result = multierror.Append(result, fmt.Errorf("extended boot signature is 0x%02X, want 0x28 or 0x29", boot.ExtendedBootSig))
	}
	if boot.NumFATs != 1 && boot.NumFATs != 2 {
		result = multierror.Append(result, fmt.Errorf("number of FATs is %d, want 1 or 2", boot.NumFATs))
	}

	if result.ErrorOrNil() == nil {
		return nil
	}
	return wrap(checkpoint.From(result), ErrInvalidData)
}

// compareFATs reports every mismatching byte offset between the two FAT
// copies, up to a small cap, aggregated into one InvalidData error.
func compareFATs(fat1, fat2 []byte) error {
	if bytes.Equal(fat1, fat2) {
		return nil
	}

	const maxReported = 8
	var result *multierror.Error
	reported := 0
	for i := range fat1 {
		if fat1[i] != fat2[i] {
			result = multierror.Append(result, fmt.Errorf("FAT mirror mismatch at byte offset %s: 0x%02X != 0x%02X",
				humanize.Comma(int64(i)), fat1[i], fat2[i]))
			reported++
			if reported >= maxReported {
				result = multierror.Append(result, fmt.Errorf("... additional mismatches not shown"))
				break
			}
		}
	}
	return wrap(checkpoint.From(result), ErrInvalidData)
}

func decodeRootDirectory(buf []byte, count int) ([]ShortEntry, error) {
	if len(buf) < count*shortEntrySize {
		return nil, wrap(fmt.Errorf("root directory buffer too small for %d entries", count), ErrInvalidData)
	}

	entries := make([]ShortEntry, count)
	for i := 0; i < count; i++ {
		raw := buf[i*shortEntrySize : (i+1)*shortEntrySize]
		if err := restruct.Unpack(raw, defaultByteOrder, &entries[i]); err != nil {
			return nil, wrap(checkpoint.From(err), ErrInvalidData)
		}
	}
	return entries, nil
}

// Close releases the Volume. It does not close the underlying Disk, which
// the Volume only borrows.
func (v *Volume) Close() error {
	if v.closed {
		return wrap(fmt.Errorf("volume already closed"), ErrInvalidArgument)
	}
	v.closed = true
	v.fat = nil
	v.root = nil
	return nil
}

// RootEntries returns the volume's root directory table, including slots
// that are free or deleted. Callers that need only present entries should
// check ShortEntry.Present().
func (v *Volume) RootEntries() []ShortEntry {
	return v.root
}

// FirstDataSector is the physical sector number of data cluster 2.
func (v *Volume) FirstDataSector() uint32 {
	return v.firstDataSector
}

// BytesPerSector is the volume's sector size, taken from the boot sector.
func (v *Volume) BytesPerSector() uint16 {
	return v.boot.BytesPerSector
}

// SectorsPerCluster is the volume's cluster size in sectors.
func (v *Volume) SectorsPerCluster() uint8 {
	return v.boot.SectorsPerCluster
}

// ClusterBytes is BytesPerSector * SectorsPerCluster.
func (v *Volume) ClusterBytes() uint32 {
	return uint32(v.boot.BytesPerSector) * uint32(v.boot.SectorsPerCluster)
}

// Label returns the volume label with trailing spaces trimmed.
func (v *Volume) Label() string {
	return trimTrailingSpace(v.boot.VolumeLabel[:])
}

// String summarizes the volume for diagnostics/logging.
func (v *Volume) String() string {
	return fmt.Sprintf("volume(FAT12, label=%q, %s/cluster, %d root entries)",
		v.Label(), humanize.Bytes(uint64(v.ClusterBytes())), len(v.root))
}
