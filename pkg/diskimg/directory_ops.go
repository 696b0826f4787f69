// file: pkg/diskimg/directory_ops.go

package diskimg

import (
	"fmt"
	"iter"
)

// Lookup resolves NAME.EXT to a directory slot. A name that cannot be
// converted fails with ErrNameTooLong or ErrInvalidFilename.
func (di *DiskImage) Lookup(filename string) (int, error) {
	return di.directory.FindFile(filename)
}

// Find resolves an already padded name and extension.
func (di *DiskImage) Find(name [NameLength]byte, ext [ExtensionLength]byte) (int, bool) {
	return di.directory.Find(name, ext)
}

// Entries yields the slots that hold files, in directory order.
func (di *DiskImage) Entries() iter.Seq2[int, *DirectoryEntry] {
	return func(yield func(int, *DirectoryEntry) bool) {
		for i, de := range di.directory.Entries() {
			if !de.IsFile() {
				continue
			}
			if !yield(i, de) {
				return
			}
		}
	}
}

// FileCount returns the number of slots holding files.
func (di *DiskImage) FileCount() int {
	n := 0
	for i := 0; i < di.directory.Len(); i++ {
		if di.directory.SlotType(i).IsFile() {
			n++
		}
	}
	return n
}

// Remove releases the chain of the file in slot and frees the slot. The slot
// is freed even when the chain turns out to be corrupt; the granules
// released before the break stay free and the corruption is returned.
func (di *DiskImage) Remove(slot int) error {
	if slot < 0 || slot >= di.directory.Len() || !di.directory.SlotType(slot).IsFile() {
		return ErrFileNotFound
	}

	de := di.directory.Entry(slot)
	err := di.granules.ReleaseChain(int(de.FirstGranule))
	di.directory.MarkFree(slot)
	di.Modified = true

	if err != nil {
		logger.Warningf(nil, "removing %s: %v", de.GetFilename(), err)
		return fmt.Errorf("%s: %w", de.GetFilename(), err)
	}
	logger.Debugf(nil, "removed %s from slot %d", de.GetFilename(), slot)
	return nil
}

// RemoveFile removes the file named NAME.EXT.
func (di *DiskImage) RemoveFile(filename string) error {
	slot, err := di.Lookup(filename)
	if err != nil {
		return err
	}
	return di.Remove(slot)
}
