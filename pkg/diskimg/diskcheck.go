// file: pkg/diskimg/diskcheck.go

package diskimg

import (
	"fmt"
)

// ChainLink is one granule visited while walking a file's chain.
type ChainLink struct {
	Hop     int
	Granule int
	State   GranuleState
}

// EntryReport is what DumpCheck found in one directory slot.
type EntryReport struct {
	Slot     int
	RawType  byte
	Skipped  bool // not a file: free or unknown type
	Stat     FileStat
	Chain    []ChainLink
	LastRaw  [2]byte // last sector byte count as stored
	Findings []Finding
}

// Report is the result of a consistency check.
type Report struct {
	Entries      []EntryReport
	Findings     []Finding // not tied to a single entry
	Files        int
	CachedFree   int
	ComputedFree int
}

// AllFindings returns every finding, per-entry ones first.
func (r *Report) AllFindings() []Finding {
	var all []Finding
	for _, e := range r.Entries {
		all = append(all, e.Findings...)
	}
	return append(all, r.Findings...)
}

// OK reports whether no problem was found.
func (r *Report) OK() bool {
	return len(r.AllFindings()) == 0
}

// DumpCheck walks every file's chain against a shadow map that starts out
// all free. Each granule is credited to the first entry that reaches it;
// later claimants get a double allocation finding and the walk goes on.
// Granules never reached are the computed free count, compared against the
// cached one. Nothing is repaired.
func (di *DiskImage) DumpCheck() *Report {
	const unowned = -1

	shadow := make([]int, NumGranules)
	for i := range shadow {
		shadow[i] = unowned
	}

	r := &Report{
		CachedFree:   di.granules.FreeCount(),
		ComputedFree: NumGranules,
	}

	for slot := 0; slot < di.directory.Len(); slot++ {
		typ := di.directory.SlotType(slot)
		er := EntryReport{Slot: slot, RawType: byte(typ)}
		if !typ.IsFile() {
			er.Skipped = true
			r.Entries = append(r.Entries, er)
			continue
		}
		r.Files++

		de := di.directory.Entry(slot)
		er.Stat, _ = di.Stat(slot)
		er.LastRaw = [2]byte{byte(de.LastBytes >> 8), byte(de.LastBytes)}
		if de.LastBytes > BytesPerSector {
			er.Findings = append(er.Findings, Finding{
				Kind: FindingLastBytes, Slot: slot, Granule: -1, Owner: unowned,
				Message: fmt.Sprintf("%d bytes in last sector", de.LastBytes),
			})
		}

		g := int(de.FirstGranule)
	walk:
		for hop := 0; ; hop++ {
			if hop > NumGranules {
				er.Findings = append(er.Findings, findingFromChainError(slot,
					&CorruptChainError{Granule: g, Hop: hop, Reason: ReasonCycle}))
				break
			}
			if g < 0 || g >= NumGranules {
				er.Findings = append(er.Findings, findingFromChainError(slot,
					&CorruptChainError{Granule: g, Hop: hop, Reason: ReasonInvalidGranule}))
				break
			}

			switch owner := shadow[g]; {
			case owner == unowned:
				shadow[g] = slot
				r.ComputedFree--
			case owner == slot:
				er.Findings = append(er.Findings, findingFromChainError(slot,
					&CorruptChainError{Granule: g, Hop: hop, Reason: ReasonCycle}))
				break walk
			default:
				er.Findings = append(er.Findings, Finding{
					Kind: FindingDoubleAllocation, Slot: slot, Granule: g, Hop: hop, Owner: owner,
					Message: fmt.Sprintf("granule %d already allocated to slot %d", g, owner),
				})
			}

			st := di.granules.State(g)
			if st.Kind != GranuleNext && st.Kind != GranuleLast {
				er.Findings = append(er.Findings, findingFromChainError(slot,
					&CorruptChainError{Granule: g, Hop: hop, Raw: st.Raw, Reason: ReasonInvalidMapEntry}))
				break
			}
			er.Chain = append(er.Chain, ChainLink{Hop: hop, Granule: g, State: st})

			if st.Kind == GranuleLast {
				if st.Sectors < 1 || st.Sectors > SectorsPerGranule {
					er.Findings = append(er.Findings, findingFromChainError(slot,
						&CorruptChainError{Granule: g, Hop: hop, Raw: st.Raw, Reason: ReasonLastSectors}))
				}
				break
			}
			g = st.Next
		}

		r.Entries = append(r.Entries, er)
	}

	for g, owner := range shadow {
		if owner == unowned && di.granules.Raw(g) != GranuleFreeByte {
			r.Findings = append(r.Findings, Finding{
				Kind: FindingOrphanGranule, Slot: -1, Granule: g, Raw: di.granules.Raw(g), Owner: unowned,
				Message: fmt.Sprintf("granule %d is 0x%02x but no file reaches it", g, di.granules.Raw(g)),
			})
		}
	}

	if r.ComputedFree != r.CachedFree {
		r.Findings = append(r.Findings, Finding{
			Kind: FindingFreeCountMismatch, Slot: -1, Granule: -1, Owner: unowned,
			Message: fmt.Sprintf("free granules loaded %d != computed %d", r.CachedFree, r.ComputedFree),
		})
		logger.Warningf(nil, "free granules loaded %d != computed %d", r.CachedFree, r.ComputedFree)
	}

	return r
}
