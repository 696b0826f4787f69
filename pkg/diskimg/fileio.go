// file: pkg/diskimg/fileio.go

//go:generate mockgen -source=fileio.go -destination=source_mock_test.go -package diskimg

package diskimg

import (
	"bytes"
	"fmt"
	"io"

	log "github.com/dsoprea/go-logging"
)

// Source is the content of a file being copied in. *bytes.Reader satisfies
// it, as does a host file wrapped by OpenSource.
type Source interface {
	io.ReaderAt
	Size() int64
}

// FileStat is the derived summary of a file. It is computed by walking the
// chain and is never stored.
type FileStat struct {
	Slot         int
	Filename     string
	Name         string
	Ext          string
	Type         FileType
	Encoding     Encoding
	FirstGranule int
	Granules     int
	LastSectors  int
	LastBytes    int
	Size         int64
}

// trailingBytes is the number of bytes used in a last granule holding nsec
// sectors whose final sector holds lastBytes bytes.
func trailingBytes(nsec, lastBytes int) int {
	n := nsec*BytesPerSector - (BytesPerSector - lastBytes)
	if n < 0 {
		return 0
	}
	return n
}

func (di *DiskImage) fileEntry(slot int) (*DirectoryEntry, error) {
	if slot < 0 || slot >= di.directory.Len() || !di.directory.SlotType(slot).IsFile() {
		return nil, ErrFileNotFound
	}
	return di.directory.Entry(slot), nil
}

// Stat computes the size of the file in slot. It never fails hard: when the
// chain breaks, the size counted so far is returned together with the
// corruption error.
func (di *DiskImage) Stat(slot int) (FileStat, error) {
	de, err := di.fileEntry(slot)
	if err != nil {
		return FileStat{}, err
	}

	st := FileStat{
		Slot:         slot,
		Filename:     de.GetFilename(),
		Name:         de.BaseName(),
		Ext:          de.Ext(),
		Type:         de.FileType(),
		Encoding:     de.FileEncoding(),
		FirstGranule: int(de.FirstGranule),
		LastBytes:    int(min(de.LastBytes, BytesPerSector)),
	}

	err = di.granules.Walk(st.FirstGranule, func(hop, g int, gs GranuleState) bool {
		st.Granules++
		if gs.Kind == GranuleLast {
			st.LastSectors = gs.Sectors
			st.Size += int64(trailingBytes(gs.Sectors, st.LastBytes))
		} else {
			st.Size += BytesPerGranule
		}
		return true
	})
	return st, err
}

// StatFile is Stat by name.
func (di *DiskImage) StatFile(filename string) (FileStat, error) {
	slot, err := di.Lookup(filename)
	if err != nil {
		return FileStat{}, err
	}
	return di.Stat(slot)
}

// CopyOut writes the content of the file in slot to w. On a broken chain the
// bytes already written stay written and a *CorruptChainError is returned.
func (di *DiskImage) CopyOut(slot int, w io.Writer) ([]Warning, error) {
	de, err := di.fileEntry(slot)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	lastBytes := int(de.LastBytes)
	if lastBytes > BytesPerSector {
		warnings = append(warnings, warnf("%s: unexpected last sector byte count %d, using %d",
			de.GetFilename(), lastBytes, BytesPerSector))
		lastBytes = BytesPerSector
	}

	var ioErr error
	err = di.granules.Walk(int(de.FirstGranule), func(hop, g int, gs GranuleState) bool {
		data := di.granuleData(g)
		if gs.Kind == GranuleLast {
			if gs.Sectors < 1 || gs.Sectors > SectorsPerGranule {
				ioErr = &CorruptChainError{Granule: g, Hop: hop, Raw: gs.Raw, Reason: ReasonLastSectors}
				return false
			}
			data = data[:trailingBytes(gs.Sectors, lastBytes)]
		}

		n, werr := w.Write(data)
		if werr == nil && n != len(data) {
			werr = ErrShortWrite
		}
		if werr != nil {
			ioErr = fmt.Errorf("%s: write failed after %d granules: %w", de.GetFilename(), hop, werr)
			return false
		}
		return true
	})
	if err == nil {
		err = ioErr
	}
	if err != nil {
		return warnings, err
	}

	logger.Debugf(nil, "copied out %s", de.GetFilename())
	return warnings, nil
}

// CopyOutFile is CopyOut by name.
func (di *DiskImage) CopyOutFile(filename string, w io.Writer) ([]Warning, error) {
	slot, err := di.Lookup(filename)
	if err != nil {
		return nil, err
	}
	return di.CopyOut(slot, w)
}

// granulesNeeded returns how many granules a file of size bytes occupies.
// An empty file still owns one granule.
func granulesNeeded(size int64) int {
	if size == 0 {
		return 1
	}
	return int((size + BytesPerGranule - 1) / BytesPerGranule)
}

// CopyIn stores the content of src as filename. Either the whole file is
// written and entered in the directory, or the image is left exactly as it
// was before the call.
func (di *DiskImage) CopyIn(src Source, filename string, typ FileType, enc Encoding) (err error) {
	name, ext, err := ConvertName(filename)
	if err != nil {
		return err
	}
	if _, found := di.directory.Find(name, ext); found {
		return fmt.Errorf("%w: %s", ErrFileExists, filename)
	}

	size := src.Size()
	need := granulesNeeded(size)
	if size > di.FreeBytes() || need > di.granules.FreeCount() {
		return fmt.Errorf("%w: %s needs %d bytes, %d free", ErrDiskFull, filename, size, di.FreeBytes())
	}

	slot, ok := di.directory.FindFreeSlot()
	if !ok {
		return ErrDirectoryFull
	}

	txn := di.beginAllocation(slot)
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("copy-in of %s aborted: %v", filename, errRaw)
			}
		}
		if err != nil {
			txn.rollback()
		}
	}()

	first, lastBytes, err := txn.fill(src, size, need)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	entry := newDirectoryEntry(name, ext, typ, enc)
	entry.FirstGranule = byte(first)
	entry.LastBytes = uint16(lastBytes)
	txn.commit(entry)

	logger.Debugf(nil, "copied in %s: %d bytes, %d granules from %d, slot %d", filename, size, need, first, slot)
	return nil
}

// CopyInBytes stores data as filename.
func (di *DiskImage) CopyInBytes(data []byte, filename string, typ FileType, enc Encoding) error {
	return di.CopyIn(bytes.NewReader(data), filename, typ, enc)
}
