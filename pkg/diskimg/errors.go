// file: pkg/diskimg/errors.go

package diskimg

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrFileExists       = errors.New("file already exists")
	ErrDiskFull         = errors.New("no space left on disk")
	ErrDirectoryFull    = errors.New("directory is full")
	ErrNameTooLong      = errors.New("file name too long")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrInvalidQualifier = errors.New("invalid type/encoding qualifier")
	ErrCorruptChain     = errors.New("corrupt granule chain")
	ErrShortRead        = errors.New("short read from source file")
	ErrShortWrite       = errors.New("short write")
	ErrReadOnly         = errors.New("disk image opened read-only")
	ErrInvalidTrack     = errors.New("invalid track number")
	ErrInvalidSector    = errors.New("invalid sector number")
	ErrInvalidGranule   = errors.New("invalid granule number")
)

// Reasons carried by CorruptChainError.
const (
	ReasonInvalidGranule  = "invalid granule"
	ReasonInvalidMapEntry = "invalid granule map entry"
	ReasonCycle           = "granule map cycle detected"
	ReasonLastSectors     = "unexpected sector count in last granule"
)

// CorruptChainError describes a broken link found while following a
// granule chain. Granule is the index being visited at the time (which may
// itself be out of range) and Hop is its position in the chain.
type CorruptChainError struct {
	Granule int
	Hop     int
	Raw     byte
	Reason  string
}

func (e *CorruptChainError) Error() string {
	switch e.Reason {
	case ReasonInvalidGranule:
		return fmt.Sprintf("%s #%d: %d", e.Reason, e.Hop, e.Granule)
	case ReasonCycle:
		return fmt.Sprintf("%s after %d hops", e.Reason, e.Hop)
	default:
		return fmt.Sprintf("%s %d: %d -> 0x%02x", e.Reason, e.Hop, e.Granule, e.Raw)
	}
}

// Is lets errors.Is(err, ErrCorruptChain) match any chain corruption.
func (e *CorruptChainError) Is(target error) bool {
	return target == ErrCorruptChain
}
