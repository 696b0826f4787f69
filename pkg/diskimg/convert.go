// file: pkg/diskimg/convert.go

package diskimg

import (
	"fmt"
	"path/filepath"
	"strings"
)

// HostName is a host file argument for copy-in, split into the host path
// and the name, type and encoding the file gets on the disk.
type HostName struct {
	Path     string // host path without the qualifier suffix
	Filename string // final path component, as given
	Name     [NameLength]byte
	Ext      [ExtensionLength]byte
	Type     FileType
	Encoding Encoding

	TypeGiven     bool
	EncodingGiven bool
}

// DiskName returns the NAME.EXT form stored in the directory.
func (hn *HostName) DiskName() string {
	name := strings.TrimRight(string(hn.Name[:]), " ")
	if ext := strings.TrimRight(string(hn.Ext[:]), " "); ext != "" {
		return name + "." + ext
	}
	return name
}

// ParseHostName parses a copy-in argument of the form
//
//	path/to/FILE.EXT[qual1,qual2]
//
// where each optional qualifier names a file type (Basic, Data, Code, Text)
// or an encoding (Binary, ASCII), at most one of each, in any case. Only the
// final path component becomes the disk name. Without qualifiers the type
// and encoding are guessed from the extension.
func ParseHostName(arg string) (*HostName, error) {
	hn := &HostName{
		Path:     arg,
		Type:     TypeData,
		Encoding: EncodingBinary,
	}

	if strings.HasSuffix(arg, "]") {
		if open := strings.LastIndexByte(arg, '['); open > 0 {
			hn.Path = arg[:open]
			quals := strings.SplitN(arg[open+1:len(arg)-1], ",", 2)
			for _, q := range quals {
				if err := hn.applyQualifier(q); err != nil {
					return nil, err
				}
			}
		}
	}

	hn.Filename = filepath.Base(hn.Path)
	name, ext, err := ConvertName(hn.Filename)
	if err != nil {
		return nil, err
	}
	hn.Name, hn.Ext = name, ext

	if !hn.TypeGiven && !hn.EncodingGiven {
		if _, hostExt, ok := strings.Cut(hn.Filename, "."); ok {
			hn.Type, hn.Encoding = DefaultTypeForExtension(hostExt)
		}
	}
	return hn, nil
}

func (hn *HostName) applyQualifier(q string) error {
	if t, ok := ParseFileType(q); ok {
		if hn.TypeGiven {
			return fmt.Errorf("%w: multiple types specified for %s", ErrInvalidQualifier, hn.Path)
		}
		hn.Type, hn.TypeGiven = t, true
		return nil
	}
	if e, ok := ParseEncoding(q); ok {
		if hn.EncodingGiven {
			return fmt.Errorf("%w: multiple encodings specified for %s", ErrInvalidQualifier, hn.Path)
		}
		hn.Encoding, hn.EncodingGiven = e, true
		return nil
	}
	return fmt.Errorf("%w: unknown type/encoding qualifier for %s: %q", ErrInvalidQualifier, hn.Path, q)
}
