// File file.go implements read-only File handles: binding a root-directory
// entry to a decoded ClusterChain and supporting seek and sequential read
// that maps logical file bytes to physical sectors through the chain.

package fat12

import (
	"fmt"
	"io"
	"strings"

	"github.com/wojtek20032/fat12/checkpoint"
)

// File is a stateful cursor over a Volume's data for one regular file.
type File struct {
	vol        *Volume
	entryIndex int
	cursor     uint32
	dataStart  uint32
	chain      ClusterChain

	cache        []byte
	cachedSector uint32
	cacheValid   bool
	closed       bool
}

// OpenFile normalizes name to 8.3 form and linearly scans the volume's root
// directory for a byte-exact match. A match on a directory entry fails with
// IsADirectory; no match fails with NotFound.
func OpenFile(vol *Volume, name string) (*File, error) {
	if vol == nil {
		return nil, wrap(fmt.Errorf("nil volume"), ErrInvalidArgument)
	}
	if name == "" {
		return nil, wrap(fmt.Errorf("empty name"), ErrInvalidArgument)
	}

	target, ok := buildShortName(name)
	if !ok {
		// Malformed names (extra dots, an over-long stem or extension) can
		// never match a valid on-disk 8.3 entry, so they resolve directly
		// to NotFound, without scanning the root directory, rather than
		// failing with InvalidArgument.
		return nil, wrap(fmt.Errorf("%q is not a valid 8.3 name", name), ErrNotFound)
	}

	for i, entry := range vol.root {
		if entry.Name != target {
			continue
		}
		if entry.IsDir() {
			return nil, wrap(fmt.Errorf("%q is a directory", name), ErrIsADirectory)
		}

		chain, err := buildClusterChain(vol.fat, entry.FirstCluster())
		if err != nil {
			return nil, err
		}

		return &File{
			vol:        vol,
			entryIndex: i,
			dataStart:  vol.firstDataSector,
			chain:      chain,
			cache:      make([]byte, vol.ClusterBytes()),
		}, nil
	}

	return nil, wrap(fmt.Errorf("no entry named %q", name), ErrNotFound)
}

// buildShortName converts name to its packed 8.3 form: the stem fills bytes
// [0:8] and the extension (the text after the first '.') fills bytes
// [8:11], both space-padded. It reports ok=false for a stem or extension
// that cannot fit, or for a name with more than one '.', since such a name
// can never match a valid on-disk entry.
func buildShortName(name string) (out [11]byte, ok bool) {
	for i := range out {
		out[i] = ' '
	}

	base, ext := name, ""
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		base, ext = name[:dot], name[dot+1:]
	}
	if len(base) > 8 || len(ext) > 3 || strings.IndexByte(ext, '.') >= 0 {
		return out, false
	}

	copy(out[0:8], base)
	copy(out[8:11], ext)
	return out, true
}

func (f *File) entry() ShortEntry {
	return f.vol.root[f.entryIndex]
}

// Name returns the file's display name ("STEM.EXT").
func (f *File) Name() string {
	return f.entry().DisplayName()
}

// Size returns the file's size in bytes, per its root directory entry.
func (f *File) Size() uint32 {
	return f.entry().FileSize
}

// Seek repositions the cursor. whence is one of io.SeekStart, io.SeekCurrent
// or io.SeekEnd; any other value fails with InvalidArgument. A resulting
// negative cursor also fails with InvalidArgument rather than wrapping or
// saturating at zero. Unlike disk.c's file_seek (whose switch falls through
// from SEEK_END into the default case, rejecting otherwise valid END seeks)
// io.SeekEnd is accepted here as a normal, successful whence.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = int64(f.cursor)
	case io.SeekEnd:
		base = int64(f.Size())
	default:
		return 0, wrap(fmt.Errorf("unsupported whence %d", whence), ErrInvalidArgument)
	}

	next := base + offset
	if next < 0 || next > int64(^uint32(0)) {
		return 0, wrap(fmt.Errorf("seek to %d is out of range for a 32-bit cursor", next), ErrInvalidArgument)
	}

	f.cursor = uint32(next)
	return int64(f.cursor), nil
}

// Read delivers up to count elements of elementSize bytes each into buf,
// which must be able to hold elementSize*count bytes. It returns the number
// of whole elements delivered; a partial trailing element consumed at EOF
// is not counted. elementSize == 0 or count == 0 returns (0, nil) without
// touching the disk.
//
// Sequential reads within one cluster reuse the last fetched sector buffer
// instead of reissuing disk I/O.
func (f *File) Read(buf []byte, elementSize, count int) (int, error) {
	if elementSize == 0 || count == 0 {
		return 0, nil
	}
	if elementSize < 0 || count < 0 {
		return 0, wrap(fmt.Errorf("negative elementSize or count"), ErrInvalidArgument)
	}
	need := elementSize * count
	if len(buf) < need {
		return 0, wrap(fmt.Errorf("buffer too small: need %d bytes, got %d", need, len(buf)), ErrInvalidArgument)
	}

	clusterBytes := int(f.vol.ClusterBytes())
	fileSize := f.Size()

	elementsDelivered := 0
	bytesInElement := 0
	outPos := 0

	for outPos < need {
		if f.cursor >= fileSize {
			break
		}

		clusterIndex := int(f.cursor) / clusterBytes
		inClusterOffset := int(f.cursor) % clusterBytes
		if clusterIndex >= f.chain.Len() {
			break
		}

		physicalSector := f.dataStart + uint32(f.chain.At(clusterIndex)-2)*uint32(f.vol.SectorsPerCluster())
		if !f.cacheValid || f.cachedSector != physicalSector {
			if _, err := f.vol.disk.Read(physicalSector, f.cache, uint32(f.vol.SectorsPerCluster())); err != nil {
				return elementsDelivered, checkpoint.Wrap(err, ErrOutOfRange)
			}
			f.cachedSector = physicalSector
			f.cacheValid = true
		}

		buf[outPos] = f.cache[inClusterOffset]
		outPos++
		f.cursor++
		bytesInElement++
		if bytesInElement == elementSize {
			elementsDelivered++
			bytesInElement = 0
		}
	}

	return elementsDelivered, nil
}

// Close releases the File's decoded ClusterChain and cluster scratch
// buffer.
func (f *File) Close() error {
	if f.closed {
		return wrap(fmt.Errorf("file already closed"), ErrInvalidArgument)
	}
	f.closed = true
	f.cache = nil
	f.chain = ClusterChain{}
	return nil
}
