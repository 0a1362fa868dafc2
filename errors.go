package fat12

import (
	"errors"

	"github.com/wojtek20032/fat12/checkpoint"
)

// Kind is this package's abstract error taxonomy: every boundary operation
// resolves a non-nil error to exactly one of these via KindOf, in place of
// disk.c's ambient errno.
type Kind int

const (
	// KindNone is returned by KindOf for a nil error.
	KindNone Kind = iota
	// KindInvalidArgument marks a null/empty required input or an unsupported whence.
	KindInvalidArgument
	// KindNotFound marks a missing path or a file name with no matching root entry.
	KindNotFound
	// KindIsADirectory marks a name match whose entry carries the directory attribute.
	KindIsADirectory
	// KindInvalidData marks a bad boot sector, mismatched FAT mirrors, or a
	// corrupt cluster chain.
	KindInvalidData
	// KindOutOfMemory marks an allocation failure.
	KindOutOfMemory
	// KindOutOfRange marks a sector index outside the disk or a read spanning past it.
	KindOutOfRange
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindNotFound:
		return "NotFound"
	case KindIsADirectory:
		return "IsADirectory"
	case KindInvalidData:
		return "InvalidData"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindOutOfRange:
		return "OutOfRange"
	default:
		return "None"
	}
}

// Sentinel errors, one per Kind. checkpoint.Wrap(cause, ErrXxx) attaches one
// of these to a more specific cause so that both errors.Is(err, ErrXxx) and
// errors.Is(err, cause) succeed.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrIsADirectory    = errors.New("is a directory")
	ErrInvalidData     = errors.New("invalid data")
	ErrOutOfMemory     = errors.New("out of memory")
	ErrOutOfRange      = errors.New("out of range")
)

var kindSentinels = []struct {
	kind Kind
	err  error
}{
	{KindInvalidArgument, ErrInvalidArgument},
	{KindNotFound, ErrNotFound},
	{KindIsADirectory, ErrIsADirectory},
	{KindInvalidData, ErrInvalidData},
	{KindOutOfMemory, ErrOutOfMemory},
	{KindOutOfRange, ErrOutOfRange},
}

// KindOf resolves err to the abstract Kind a caller should branch on. It
// returns KindNone for a nil error and for an error that does not wrap one
// of the package's sentinels (which should not happen for an error returned
// by this package).
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindNone
}

// wrap is a small convenience over checkpoint.Wrap that reads better at call
// sites: wrap(cause, ErrNotFound) instead of checkpoint.Wrap(cause, ErrNotFound).
func wrap(cause, sentinel error) error {
	return checkpoint.Wrap(cause, sentinel)
}
