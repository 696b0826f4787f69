// file: pkg/diskimg/fileattr.go

package diskimg

import (
	"fmt"
	"strings"
)

// FileType is the directory entry type byte.
type FileType byte

const (
	TypeBasic FileType = 0x00 // tokenized Color BASIC program
	TypeData  FileType = 0x01
	TypeCode  FileType = 0x02 // machine code program
	TypeText  FileType = 0x03 // text editor source
	TypeFree  FileType = 0xFF // unused directory slot
)

// Encoding is the directory entry encoding byte.
type Encoding byte

const (
	EncodingBinary Encoding = 0x00
	EncodingASCII  Encoding = 0xFF
)

var fileTypeNames = []struct {
	name string
	typ  FileType
}{
	{"Basic", TypeBasic},
	{"Data", TypeData},
	{"Code", TypeCode},
	{"Text", TypeText},
}

var encodingNames = []struct {
	name string
	enc  Encoding
}{
	{"Binary", EncodingBinary},
	{"ASCII", EncodingASCII},
}

// defaultTypes maps a host file extension to the type and encoding a file
// gets when no qualifier is given.
var defaultTypes = []struct {
	ext string
	typ FileType
	enc Encoding
}{
	{"ASM", TypeData, EncodingASCII},
	{"BAS", TypeBasic, EncodingBinary},
	{"BIN", TypeCode, EncodingBinary},
	{"DAT", TypeData, EncodingBinary},
	{"TXT", TypeText, EncodingASCII},
	{"C", TypeData, EncodingASCII},
	{"H", TypeData, EncodingASCII},
}

// IsFile reports whether t marks a directory slot in use.
func (t FileType) IsFile() bool {
	return t <= TypeText
}

func (t FileType) String() string {
	for _, e := range fileTypeNames {
		if e.typ == t {
			return e.name
		}
	}
	return fmt.Sprintf("<type 0x%02x>", byte(t))
}

func (e Encoding) String() string {
	for _, n := range encodingNames {
		if n.enc == e {
			return n.name
		}
	}
	return fmt.Sprintf("<encoding 0x%02x>", byte(e))
}

// ParseFileType looks up a type by name, ignoring case.
func ParseFileType(s string) (FileType, bool) {
	for _, e := range fileTypeNames {
		if strings.EqualFold(e.name, s) {
			return e.typ, true
		}
	}
	return 0, false
}

// ParseEncoding looks up an encoding by name, ignoring case.
func ParseEncoding(s string) (Encoding, bool) {
	for _, n := range encodingNames {
		if strings.EqualFold(n.name, s) {
			return n.enc, true
		}
	}
	return 0, false
}

// DefaultTypeForExtension guesses type and encoding from a host extension.
// Unknown extensions are binary data.
func DefaultTypeForExtension(ext string) (FileType, Encoding) {
	for _, d := range defaultTypes {
		if strings.EqualFold(d.ext, ext) {
			return d.typ, d.enc
		}
	}
	return TypeData, EncodingBinary
}
