// File chain.go is the pure FAT12 cluster-chain decoder: given the FAT byte
// buffer and a starting cluster number, it produces the ordered list of
// cluster indices comprising a file. It never touches a Disk.

package fat12

import (
	"fmt"
	"reflect"

	"github.com/boljen/go-bitmap"
	log "github.com/dsoprea/go-logging"
)

// End-of-chain and special FAT12 cluster values.
const (
	clusterFree        = 0x000
	clusterReserved    = 0x001
	clusterBad         = 0xFF7
	clusterEOCRangeLo  = 0xFF8
	clusterEOCRangeHi  = 0xFFF
	clusterMinDataLink = 0x002
)

func isEndOfChain(v uint16) bool {
	return v >= clusterEOCRangeLo && v <= clusterEOCRangeHi
}

// glueTwoBytes composes a 12-bit FAT entry from the two packed bytes at
// offset cluster*3/2. odd selects which nibble-aligned half of the pair of
// entries that offset represents.
func glueTwoBytes(left, right byte, odd bool) uint16 {
	if odd {
		return uint16(left>>4) | uint16(right)<<4
	}
	return uint16(left) | (uint16(right)&0x0F)<<8
}

// ClusterChain is the ordered, immutable sequence of cluster indices making
// up a file, decoded once at File.Open time and held by value for the
// lifetime of the File.
type ClusterChain struct {
	clusters []uint16
}

// Len returns the number of clusters in the chain.
func (c ClusterChain) Len() int {
	return len(c.clusters)
}

// At returns the cluster index at position i in the chain.
func (c ClusterChain) At(i int) uint16 {
	return c.clusters[i]
}

// buildClusterChain decodes the chain starting at firstCluster from fat, the
// in-memory FAT byte buffer. It performs two passes: Phase 1 computes
// the chain length (bounded by the maximum number of 12-bit entries the
// buffer can hold) and Phase 2 fills the cluster slice.
//
// A bitmap.Bitmap sized to the Phase-1 bound tracks every cluster visited so
// far; revisiting one means the FAT contains a cycle, which is reported as
// InvalidData immediately instead of being caught only once the length
// counter runs out (which would also be correct, but later and with a less
// specific diagnostic).
func buildClusterChain(fat []byte, firstCluster uint16) (cc ClusterChain, err error) {
	defer func() {
		if r := recover(); r != nil {
			rErr, ok := r.(error)
			if !ok {
				rErr = fmt.Errorf("cluster chain decode panic: %v", r)
			}
			err = wrap(log.Wrap(rErr), ErrInvalidData)
		}
	}()

	maxClusters := (len(fat) * 2) / 3
	if maxClusters <= 0 {
		return ClusterChain{}, wrap(fmt.Errorf("FAT buffer too small (%d bytes)", len(fat)), ErrInvalidData)
	}

	visited := bitmap.New(maxClusters)

	next := func(cluster uint16) (uint16, error) {
		offset := int(cluster) * 3 / 2
		if offset+1 >= len(fat) {
			return 0, fmt.Errorf("cluster %d is out of range for a %d-byte FAT", cluster, len(fat))
		}
		log.PanicIf(validateByteIndex(fat, offset+1))
		return glueTwoBytes(fat[offset], fat[offset+1], cluster%2 == 1), nil
	}

	markVisited := func(cluster uint16) error {
		idx := int(cluster)
		if idx < 0 || idx >= maxClusters {
			return fmt.Errorf("cluster %d exceeds the chain's maximum length %d", cluster, maxClusters)
		}
		if visited.Get(idx) {
			return fmt.Errorf("cluster %d revisited: the FAT contains a cycle", cluster)
		}
		visited.Set(idx, true)
		return nil
	}

	if firstCluster < clusterMinDataLink {
		return ClusterChain{}, wrap(fmt.Errorf("first cluster %d is below the minimum valid data cluster", firstCluster), ErrInvalidData)
	}
	if err := markVisited(firstCluster); err != nil {
		return ClusterChain{}, wrap(err, ErrInvalidData)
	}

	// Phase 1: sizing.
	length := 1
	current, err := next(firstCluster)
	if err != nil {
		return ClusterChain{}, wrap(err, ErrInvalidData)
	}
	for !isEndOfChain(current) {
		if current == clusterFree || current == clusterReserved || current == clusterBad {
			return ClusterChain{}, wrap(fmt.Errorf("cluster chain hit reserved value 0x%03X before end-of-chain", current), ErrInvalidData)
		}
		if current < clusterMinDataLink {
			return ClusterChain{}, wrap(fmt.Errorf("cluster %d is below the minimum valid data cluster", current), ErrInvalidData)
		}
		if err := markVisited(current); err != nil {
			return ClusterChain{}, wrap(err, ErrInvalidData)
		}
		length++
		if length > maxClusters {
			return ClusterChain{}, wrap(fmt.Errorf("cluster chain exceeds the FAT's maximum representable length %d", maxClusters), ErrInvalidData)
		}
		current, err = next(current)
		if err != nil {
			return ClusterChain{}, wrap(err, ErrInvalidData)
		}
	}

	// Phase 2: populate.
	clusters := make([]uint16, length)
	clusters[0] = firstCluster
	current, err = next(firstCluster)
	if err != nil {
		return ClusterChain{}, wrap(err, ErrInvalidData)
	}
	for i := 1; i < length; i++ {
		clusters[i] = current
		current, err = next(current)
		if err != nil {
			return ClusterChain{}, wrap(err, ErrInvalidData)
		}
	}

	return ClusterChain{clusters: clusters}, nil
}

// validateByteIndex is an internal invariant guard: Phase 1 and Phase 2 walk
// the same chain the same way, so a bounds failure here means the two
// passes disagreed, which should be unreachable. It exists to turn such a
// bug into a reported InvalidData error instead of a slice-bounds panic
// escaping the package, mirroring go-exfat's ExfatReader.parseN recover
// pattern.
func validateByteIndex(buf []byte, i int) error {
	if i < 0 || i >= len(buf) {
		return fmt.Errorf("internal error: byte index %d out of range for %d-byte buffer (buffer kind %s)",
			i, len(buf), reflect.TypeOf(buf))
	}
	return nil
}
