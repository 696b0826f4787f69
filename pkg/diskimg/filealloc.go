// file: pkg/diskimg/filealloc.go

package diskimg

import (
	"bytes"
	"fmt"
	"io"
)

// firstGranuleHint is where copy-in starts looking for space: the middle of
// the disk, next to the directory track.
const firstGranuleHint = NumGranules / 2

// allocation is one copy-in in progress. It records everything it touches
// so that rollback can put the image back byte for byte.
type allocation struct {
	di       *DiskImage
	slot     int
	gmap     granuleSnapshot
	slotData []byte
	granules []int
	saved    [][]byte
}

func (di *DiskImage) beginAllocation(slot int) *allocation {
	return &allocation{
		di:       di,
		slot:     slot,
		gmap:     di.granules.snapshot(),
		slotData: bytes.Clone(di.directory.slot(slot)),
	}
}

// lastSectorCounts returns the sector count for the last granule's map
// entry and the byte count for the directory entry, given the number of
// bytes stored in the last granule.
func lastSectorCounts(resid int64) (nsec, lastBytes int) {
	if resid == 0 {
		return 1, 0
	}
	nsec = int((resid + BytesPerSector - 1) / BytesPerSector)
	lastBytes = int(resid % BytesPerSector)
	if lastBytes == 0 {
		lastBytes = BytesPerSector
	}
	return nsec, lastBytes
}

// fill allocates need granules, copies size bytes of src into them and
// chains them together. It returns the head of the chain.
func (a *allocation) fill(src Source, size int64, need int) (first, lastBytes int, err error) {
	gm := a.di.granules
	hint := firstGranuleHint
	prev := -1

	var off int64
	for i := 0; i < need; i++ {
		g := gm.AllocateNear(hint)
		a.granules = append(a.granules, g)

		buf := a.di.granuleData(g)
		a.saved = append(a.saved, bytes.Clone(buf))

		n := min(int64(BytesPerGranule), size-off)
		if n > 0 {
			got, rerr := src.ReadAt(buf[:n], off)
			if int64(got) < n {
				if rerr == nil || rerr == io.EOF {
					rerr = ErrShortRead
				}
				return -1, 0, fmt.Errorf("reading %d bytes at offset %d: %w", n, off, rerr)
			}
		}
		clear(buf[n:])

		if prev >= 0 {
			gm.Link(prev, g)
		} else {
			first = g
		}
		prev = g
		hint = g
		off += n
	}

	nsec, lastBytes := lastSectorCounts(size - int64(need-1)*BytesPerGranule)
	gm.Terminate(prev, nsec)
	return first, lastBytes, nil
}

func (a *allocation) commit(entry *DirectoryEntry) {
	a.di.directory.WriteEntry(a.slot, entry)
	a.di.Modified = true
}

// rollback restores the granule map, the free count, the contents of every
// granule written and the directory slot.
func (a *allocation) rollback() {
	for i := len(a.granules) - 1; i >= 0; i-- {
		copy(a.di.granuleData(a.granules[i]), a.saved[i])
	}
	a.di.granules.restore(a.gmap)
	copy(a.di.directory.slot(a.slot), a.slotData)
	logger.Debugf(nil, "rolled back allocation of %d granules", len(a.granules))
}
