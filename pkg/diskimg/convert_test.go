// file: pkg/diskimg/convert_test.go

package diskimg

import (
	"errors"
	"testing"
)

func TestParseHostName(t *testing.T) {
	tests := []struct {
		arg      string
		path     string
		diskName string
		typ      FileType
		enc      Encoding
	}{
		{"hello.bas", "hello.bas", "HELLO.BAS", TypeBasic, EncodingBinary},
		{"src/game.asm", "src/game.asm", "GAME.ASM", TypeData, EncodingASCII},
		{"/tmp/x/README", "/tmp/x/README", "README", TypeData, EncodingBinary},
		{"notes.txt[binary]", "notes.txt", "NOTES.TXT", TypeData, EncodingBinary},
		{"loader.dat[code]", "loader.dat", "LOADER.DAT", TypeCode, EncodingBinary},
		{"prog.x[ASCII,basic]", "prog.x", "PROG.X", TypeBasic, EncodingASCII},
		{"prog.x[Text,Binary]", "prog.x", "PROG.X", TypeText, EncodingBinary},
		{"odd]", "odd]", "ODD]", TypeData, EncodingBinary},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			hn, err := ParseHostName(tt.arg)
			if err != nil {
				t.Fatalf("ParseHostName(%q): %v", tt.arg, err)
			}
			if hn.Path != tt.path {
				t.Errorf("Path = %q, want %q", hn.Path, tt.path)
			}
			if hn.DiskName() != tt.diskName {
				t.Errorf("DiskName() = %q, want %q", hn.DiskName(), tt.diskName)
			}
			if hn.Type != tt.typ || hn.Encoding != tt.enc {
				t.Errorf("type/encoding = %s/%s, want %s/%s", hn.Type, hn.Encoding, tt.typ, tt.enc)
			}
		})
	}
}

func TestParseHostNameErrors(t *testing.T) {
	tests := []struct {
		arg  string
		want error
	}{
		{"a.dat[code,basic]", ErrInvalidQualifier},
		{"a.dat[ascii,binary]", ErrInvalidQualifier},
		{"a.dat[fancy]", ErrInvalidQualifier},
		{"a.dat[]", ErrInvalidQualifier},
		{"a.dat[code,ascii,data]", ErrInvalidQualifier},
		{"toolongname.dat", ErrNameTooLong},
		{"dir/a.text[data]", ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			if _, err := ParseHostName(tt.arg); !errors.Is(err, tt.want) {
				t.Errorf("ParseHostName(%q) error = %v, want %v", tt.arg, err, tt.want)
			}
		})
	}
}
