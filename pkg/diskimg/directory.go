// file: pkg/diskimg/directory.go

package diskimg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"iter"
	"strings"

	log "github.com/dsoprea/go-logging"
	"github.com/go-restruct/restruct"

	"github.com/ha1tch/cocofs/internal"
)

const (
	// Directory entry layout on the directory track
	DirectoryEntrySize  = 32
	MaxDirectoryEntries = internal.DirSectors * internal.BytesPerSector / DirectoryEntrySize

	NameLength      = 8
	ExtensionLength = 3

	dirTypeOffset = NameLength + ExtensionLength
	freeFill      = 0xFF
)

// DirectoryEntry is one 32-byte CoCo DOS directory record. LastBytes is the
// number of bytes used in the final sector and is stored big-endian.
type DirectoryEntry struct {
	Name         [NameLength]byte      // padded with spaces
	Extension    [ExtensionLength]byte // padded with spaces
	Type         byte
	Encoding     byte
	FirstGranule byte
	LastBytes    uint16
	Reserved     [16]byte
}

// NewDirectoryEntry builds an entry for a file name of the form NAME.EXT.
func NewDirectoryEntry(filename string, typ FileType, enc Encoding) (*DirectoryEntry, error) {
	name, ext, err := ConvertName(filename)
	if err != nil {
		return nil, err
	}
	return newDirectoryEntry(name, ext, typ, enc), nil
}

func newDirectoryEntry(name [NameLength]byte, ext [ExtensionLength]byte, typ FileType, enc Encoding) *DirectoryEntry {
	entry := &DirectoryEntry{
		Name:      name,
		Extension: ext,
		Type:      byte(typ),
		Encoding:  byte(enc),
	}
	for i := range entry.Reserved {
		entry.Reserved[i] = freeFill
	}
	return entry
}

// FileType returns the typed entry type.
func (de *DirectoryEntry) FileType() FileType {
	return FileType(de.Type)
}

// FileEncoding returns the typed entry encoding.
func (de *DirectoryEntry) FileEncoding() Encoding {
	return Encoding(de.Encoding)
}

// IsFree reports whether the slot is available for a new file.
func (de *DirectoryEntry) IsFree() bool {
	return FileType(de.Type) == TypeFree
}

// IsFile reports whether the slot holds a file that enumeration shows.
func (de *DirectoryEntry) IsFile() bool {
	return FileType(de.Type).IsFile()
}

// BaseName returns the name with padding removed.
func (de *DirectoryEntry) BaseName() string {
	return strings.TrimRight(string(de.Name[:]), " ")
}

// Ext returns the extension with padding removed.
func (de *DirectoryEntry) Ext() string {
	return strings.TrimRight(string(de.Extension[:]), " ")
}

// GetFilename returns NAME.EXT, or NAME when there is no extension.
func (de *DirectoryEntry) GetFilename() string {
	if ext := de.Ext(); ext != "" {
		return fmt.Sprintf("%s.%s", de.BaseName(), ext)
	}
	return de.BaseName()
}

func (de *DirectoryEntry) toBytes() []byte {
	raw, err := restruct.Pack(binary.BigEndian, de)
	log.PanicIf(err)
	return raw
}

func directoryEntryFromBytes(raw []byte) *DirectoryEntry {
	de := new(DirectoryEntry)
	err := restruct.Unpack(raw, binary.BigEndian, de)
	log.PanicIf(err)
	return de
}

// Directory is a view of the directory sectors inside the image. Slots are
// addressed by index; the directory is unsorted.
type Directory struct {
	data []byte
}

func newDirectory(data []byte) *Directory {
	size := MaxDirectoryEntries * DirectoryEntrySize
	return &Directory{data: data[:size:size]}
}

// Len returns the number of slots.
func (dir *Directory) Len() int {
	return MaxDirectoryEntries
}

func (dir *Directory) slot(i int) []byte {
	off := i * DirectoryEntrySize
	return dir.data[off : off+DirectoryEntrySize]
}

// Entry decodes slot i.
func (dir *Directory) Entry(i int) *DirectoryEntry {
	return directoryEntryFromBytes(dir.slot(i))
}

// SlotType returns the raw type byte of slot i without decoding it.
func (dir *Directory) SlotType(i int) FileType {
	return FileType(dir.slot(i)[dirTypeOffset])
}

// Entries yields every slot in storage order, free ones included.
func (dir *Directory) Entries() iter.Seq2[int, *DirectoryEntry] {
	return func(yield func(int, *DirectoryEntry) bool) {
		for i := 0; i < MaxDirectoryEntries; i++ {
			if !yield(i, dir.Entry(i)) {
				return
			}
		}
	}
}

// Find returns the first file slot whose padded name and extension match.
func (dir *Directory) Find(name [NameLength]byte, ext [ExtensionLength]byte) (int, bool) {
	for i := 0; i < MaxDirectoryEntries; i++ {
		if !dir.SlotType(i).IsFile() {
			continue
		}
		s := dir.slot(i)
		if bytes.Equal(s[:NameLength], name[:]) && bytes.Equal(s[NameLength:dirTypeOffset], ext[:]) {
			return i, true
		}
	}
	return -1, false
}

// FindFile looks a file up by its NAME.EXT form.
func (dir *Directory) FindFile(filename string) (int, error) {
	name, ext, err := ConvertName(filename)
	if err != nil {
		return -1, err
	}
	i, ok := dir.Find(name, ext)
	if !ok {
		return -1, ErrFileNotFound
	}
	return i, nil
}

// FindFreeSlot returns the first slot whose type byte is the free marker.
func (dir *Directory) FindFreeSlot() (int, bool) {
	for i := 0; i < MaxDirectoryEntries; i++ {
		if dir.SlotType(i) == TypeFree {
			return i, true
		}
	}
	return -1, false
}

// MarkFree overwrites the whole slot with the free fill byte.
func (dir *Directory) MarkFree(i int) {
	s := dir.slot(i)
	for j := range s {
		s[j] = freeFill
	}
}

// WriteEntry stores entry into slot i.
func (dir *Directory) WriteEntry(i int, entry *DirectoryEntry) {
	copy(dir.slot(i), entry.toBytes())
}

// ConvertName splits NAME.EXT into space-padded, upper-cased name and
// extension fields. Only ASCII lowercase letters are mapped.
func ConvertName(full string) (name [NameLength]byte, ext [ExtensionLength]byte, err error) {
	copy(name[:], padRight("", NameLength))
	copy(ext[:], padRight("", ExtensionLength))

	base, extension, _ := strings.Cut(full, ".")
	if base == "" {
		return name, ext, fmt.Errorf("%w: %q", ErrInvalidFilename, full)
	}
	if len(base) > NameLength {
		return name, ext, fmt.Errorf("%w: %q (max %d chars)", ErrNameTooLong, full, NameLength)
	}
	if len(extension) > ExtensionLength {
		return name, ext, fmt.Errorf("%w: %q (extension max %d chars)", ErrNameTooLong, full, ExtensionLength)
	}

	for i := 0; i < len(base); i++ {
		name[i] = mapChar(base[i])
	}
	for i := 0; i < len(extension); i++ {
		ext[i] = mapChar(extension[i])
	}
	return name, ext, nil
}

func mapChar(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// padRight pads a string with spaces to the specified length
func padRight(str string, length int) string {
	if len(str) >= length {
		return str[:length]
	}
	return str + strings.Repeat(" ", length-len(str))
}
