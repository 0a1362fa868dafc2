// File model.go contains the on-disk, packed structures of a FAT12 volume.
// Every field is decoded explicitly by restruct.Unpack from a raw sector
// buffer (see volume.go) rather than relying on Go's native struct layout,
// which would be hazardous to pack/align byte-for-byte against the on-disk
// format.

package fat12

import (
	"encoding/binary"
	"time"
)

// defaultByteOrder is the byte order of every multi-byte integer in a FAT12
// volume.
var defaultByteOrder = binary.LittleEndian

const (
	sectorSize     = 512
	bootSectorSize = 512
	shortEntrySize = 32
)

// BootSector is the 512-byte FAT12 boot sector (BPB + extended BIOS
// parameter block), little-endian throughout.
type BootSector struct {
	BSJumpBoot          [3]byte
	BSOEMName           [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   uint8
	ReservedSectorCount uint16
	NumFATs             uint8
	MaxRootEntries      uint16
	TotalSectors16      uint16
	MediaType           uint8
	SectorsPerFAT       uint16
	SectorsPerTrack     uint16
	Heads               uint16
	HiddenSectors       uint32
	TotalSectors32      uint32
	DriveNumber         uint8
	Reserved1           uint8
	ExtendedBootSig     uint8
	VolumeSerial        uint32
	VolumeLabel         [11]byte
	FSType              [8]byte
	BootCode            [448]byte
	Signature           uint16
}

// Attribute bits of a ShortEntry.
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeID  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20
)

// ShortEntry is a 32-byte 8.3 directory entry.
type ShortEntry struct {
	Name            [11]byte
	Attributes      uint8
	NTReserved      uint8
	CreateTimeTenth uint8
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// Present reports whether the slot holds a live (non-deleted, ever-used)
// entry: the first name byte is neither 0x00 (never used) nor 0xE5 (deleted).
func (e ShortEntry) Present() bool {
	return e.Name[0] != 0x00 && e.Name[0] != 0xE5
}

// IsDir reports whether the entry carries the directory attribute.
func (e ShortEntry) IsDir() bool {
	return e.Attributes&AttrDirectory == AttrDirectory
}

// FirstCluster is the entry's first data cluster. FAT12 only ever uses the
// low 16 bits; FirstClusterHI exists for layout compatibility with FAT32 and
// is always zero on a FAT12 volume.
func (e ShortEntry) FirstCluster() uint16 {
	return e.FirstClusterLO
}

// DisplayName converts the 8.3 name to "NAME.EXT" form: trailing spaces are
// stripped from each part, and the dot is omitted when the extension is all
// spaces.
func (e ShortEntry) DisplayName() string {
	base := trimTrailingSpace(e.Name[:8])
	ext := trimTrailingSpace(e.Name[8:11])
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// ModTime returns the entry's last-write date and time, or the zero Time if
// the write date is unspecified. Surfaces the SFN timestamp fields that
// disk.c's dir_read never exposed.
func (e ShortEntry) ModTime() time.Time {
	return combineDateTime(e.WriteDate, e.WriteTime)
}

// CreatedAt returns the entry's creation date and time, or the zero Time if
// the creation date is unspecified.
func (e ShortEntry) CreatedAt() time.Time {
	return combineDateTime(e.CreateDate, e.CreateTime)
}

func trimTrailingSpace(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end])
}
