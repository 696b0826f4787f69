// file: pkg/diskimg/allocation.go

package diskimg

import (
	log "github.com/dsoprea/go-logging"

	"github.com/ha1tch/cocofs/internal"
)

// Granule map byte values. Reserved never reaches the disk: it only marks a
// granule handed out by AllocateNear that has not been linked yet.
const (
	GranuleFreeByte     = 0xFF
	GranuleReservedByte = 0xFE
	GranuleLastByte     = 0xC0
	granuleLastMax      = GranuleLastByte | internal.SectorsPerGranule
)

// GranuleKind classifies a granule map entry.
type GranuleKind int

const (
	GranuleFree GranuleKind = iota
	GranuleNext
	GranuleLast
	GranuleReserved
	GranuleInvalid
)

func (k GranuleKind) String() string {
	switch k {
	case GranuleFree:
		return "free"
	case GranuleNext:
		return "next"
	case GranuleLast:
		return "last"
	case GranuleReserved:
		return "reserved"
	default:
		return "invalid"
	}
}

// GranuleState is the decoded form of one granule map byte.
type GranuleState struct {
	Kind    GranuleKind
	Next    int  // GranuleNext only
	Sectors int  // GranuleLast only: sectors used in the final granule
	Raw     byte // the byte as stored
}

// DecodeGranule interprets a raw granule map byte.
func DecodeGranule(raw byte) GranuleState {
	st := GranuleState{Raw: raw}
	switch {
	case raw == GranuleFreeByte:
		st.Kind = GranuleFree
	case raw == GranuleReservedByte:
		st.Kind = GranuleReserved
	case int(raw) < internal.NumGranules:
		st.Kind = GranuleNext
		st.Next = int(raw)
	case raw >= GranuleLastByte && raw <= granuleLastMax:
		st.Kind = GranuleLast
		st.Sectors = int(raw & 0x0F)
	default:
		st.Kind = GranuleInvalid
	}
	return st
}

// IsValidGranuleEntry reports whether raw is FREE, a next-granule link or a
// last-granule marker.
func IsValidGranuleEntry(raw byte) bool {
	switch DecodeGranule(raw).Kind {
	case GranuleFree, GranuleNext, GranuleLast:
		return true
	}
	return false
}

// GranuleMap is a view of the granule map sector inside the image. It does
// not own its bytes.
type GranuleMap struct {
	table []byte
	free  int
}

func newGranuleMap(table []byte) *GranuleMap {
	gm := &GranuleMap{table: table[:internal.NumGranules:internal.NumGranules]}
	gm.CountFree()
	return gm
}

// Len returns the number of granules tracked by the map.
func (gm *GranuleMap) Len() int {
	return len(gm.table)
}

// Raw returns the stored byte for granule g.
func (gm *GranuleMap) Raw(g int) byte {
	return gm.table[g]
}

// State decodes the entry for granule g.
func (gm *GranuleMap) State(g int) GranuleState {
	return DecodeGranule(gm.table[g])
}

// FreeCount returns the cached number of free granules.
func (gm *GranuleMap) FreeCount() int {
	return gm.free
}

// CountFree rescans the table and refreshes the free-granule cache.
func (gm *GranuleMap) CountFree() int {
	gm.free = 0
	for _, v := range gm.table {
		if v == GranuleFreeByte {
			gm.free++
		}
	}
	return gm.free
}

// AllocateNear scans forward from hint, wrapping at the end of the map, and
// reserves the first free granule. The caller must have checked that a free
// granule exists; running out is an internal invariant violation.
func (gm *GranuleMap) AllocateNear(hint int) int {
	n := len(gm.table)
	g := hint % n
	for loop := 0; loop < n; loop++ {
		if gm.table[g] == GranuleFreeByte {
			gm.table[g] = GranuleReservedByte
			gm.free--
			return g
		}
		g++
		if g == n {
			g = 0
		}
	}

	log.Panicf("no free granule found starting at %d (cached free count %d)", hint, gm.free)
	return -1
}

// Link points granule g at next.
func (gm *GranuleMap) Link(g, next int) {
	gm.table[g] = byte(next)
}

// Terminate marks g as the last granule of its chain with nsec sectors used.
func (gm *GranuleMap) Terminate(g, nsec int) {
	if nsec < 1 || nsec > internal.SectorsPerGranule {
		log.Panicf("invalid last-granule sector count: %d", nsec)
	}
	gm.table[g] = byte(GranuleLastByte | nsec)
}

// Walk follows the chain starting at head and calls visit for each granule
// whose entry is a link or a last marker. It stops at the last granule, when
// visit returns false, or at the first corrupt link, which is returned as a
// *CorruptChainError. At most NumGranules+1 granules are visited.
func (gm *GranuleMap) Walk(head int, visit func(hop, g int, st GranuleState) bool) error {
	g := head
	for hop := 0; ; hop++ {
		if hop > len(gm.table) {
			return &CorruptChainError{Granule: g, Hop: hop, Reason: ReasonCycle}
		}
		if g < 0 || g >= len(gm.table) {
			return &CorruptChainError{Granule: g, Hop: hop, Reason: ReasonInvalidGranule}
		}

		st := gm.State(g)
		if st.Kind != GranuleNext && st.Kind != GranuleLast {
			return &CorruptChainError{Granule: g, Hop: hop, Raw: st.Raw, Reason: ReasonInvalidMapEntry}
		}
		if !visit(hop, g, st) || st.Kind == GranuleLast {
			return nil
		}
		g = st.Next
	}
}

// ReleaseChain frees every granule of the chain starting at head. A broken
// link stops the release; granules freed before it stay free.
func (gm *GranuleMap) ReleaseChain(head int) error {
	g := head
	for hop := 0; ; hop++ {
		// Freed granules read back as FREE, so a cycle ends here as an
		// invalid entry. The bound covers anything else.
		if hop > len(gm.table) {
			return &CorruptChainError{Granule: g, Hop: hop, Reason: ReasonCycle}
		}
		if g < 0 || g >= len(gm.table) {
			return &CorruptChainError{Granule: g, Hop: hop, Reason: ReasonInvalidGranule}
		}

		st := gm.State(g)
		if st.Kind != GranuleNext && st.Kind != GranuleLast {
			return &CorruptChainError{Granule: g, Hop: hop, Raw: st.Raw, Reason: ReasonInvalidMapEntry}
		}

		gm.table[g] = GranuleFreeByte
		gm.free++
		if st.Kind == GranuleLast {
			return nil
		}
		g = st.Next
	}
}

// granuleSnapshot is a rollback point for the map and its free counter.
type granuleSnapshot struct {
	table []byte
	free  int
}

func (gm *GranuleMap) snapshot() granuleSnapshot {
	return granuleSnapshot{
		table: append([]byte(nil), gm.table...),
		free:  gm.free,
	}
}

func (gm *GranuleMap) restore(s granuleSnapshot) {
	copy(gm.table, s.table)
	gm.free = s.free
}
