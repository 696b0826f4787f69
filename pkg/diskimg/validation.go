// file: pkg/diskimg/validation.go

package diskimg

import (
	"fmt"
)

// FindingKind classifies a problem reported by DumpCheck.
type FindingKind int

const (
	FindingInvalidGranule FindingKind = iota
	FindingInvalidMapEntry
	FindingCycle
	FindingLastSectors
	FindingLastBytes
	FindingDoubleAllocation
	FindingOrphanGranule
	FindingFreeCountMismatch
)

var findingNames = map[FindingKind]string{
	FindingInvalidGranule:    "invalid granule",
	FindingInvalidMapEntry:   "invalid granule map entry",
	FindingCycle:             "granule list cycle",
	FindingLastSectors:       "bad last granule sector count",
	FindingLastBytes:         "bad last sector byte count",
	FindingDoubleAllocation:  "double allocation",
	FindingOrphanGranule:     "orphan granule",
	FindingFreeCountMismatch: "free count mismatch",
}

func (k FindingKind) String() string {
	if s, ok := findingNames[k]; ok {
		return s
	}
	return fmt.Sprintf("finding(%d)", int(k))
}

// IsCorruption reports whether the finding describes a broken chain, as
// opposed to an informational inconsistency.
func (k FindingKind) IsCorruption() bool {
	switch k {
	case FindingInvalidGranule, FindingInvalidMapEntry, FindingCycle, FindingLastSectors:
		return true
	}
	return false
}

// Finding is one problem found by DumpCheck. Slot is -1 for findings that
// do not belong to a directory entry.
type Finding struct {
	Kind    FindingKind
	Slot    int
	Granule int
	Hop     int
	Raw     byte
	Owner   int // first claimant, FindingDoubleAllocation only
	Message string
}

func (f Finding) Error() string {
	if f.Slot < 0 {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	return fmt.Sprintf("slot %d: %s: %s", f.Slot, f.Kind, f.Message)
}

// Is lets errors.Is(f, ErrCorruptChain) match chain corruption findings.
func (f Finding) Is(target error) bool {
	return target == ErrCorruptChain && f.Kind.IsCorruption()
}

func findingFromChainError(slot int, e *CorruptChainError) Finding {
	f := Finding{Slot: slot, Granule: e.Granule, Hop: e.Hop, Raw: e.Raw, Owner: -1, Message: e.Error()}
	switch e.Reason {
	case ReasonInvalidGranule:
		f.Kind = FindingInvalidGranule
	case ReasonCycle:
		f.Kind = FindingCycle
	case ReasonLastSectors:
		f.Kind = FindingLastSectors
	default:
		f.Kind = FindingInvalidMapEntry
	}
	return f
}

// Validate runs DumpCheck and returns its findings as errors. An empty
// result means the image is consistent.
func (di *DiskImage) Validate() []error {
	var errs []error
	for _, f := range di.DumpCheck().AllFindings() {
		errs = append(errs, f)
	}
	return errs
}
