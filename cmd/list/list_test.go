// file: cmd/list/list_test.go

package list

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/pkg/diskimg"
)

func setup(t *testing.T) (*ListOptions, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	img := diskimg.Format()
	files := []struct {
		name string
		size int
		typ  diskimg.FileType
		enc  diskimg.Encoding
	}{
		{"ZED.BAS", 1, diskimg.TypeBasic, diskimg.EncodingBinary},
		{"ALPHA.TXT", 3000, diskimg.TypeText, diskimg.EncodingASCII},
		{"MID.BIN", 300, diskimg.TypeCode, diskimg.EncodingBinary},
	}
	for _, f := range files {
		if err := img.CopyInBytes(make([]byte, f.size), f.name, f.typ, f.enc); err != nil {
			t.Fatal(err)
		}
	}
	if err := img.SaveToFile(fs, "/d.dsk"); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	opts := DefaultListOptions()
	opts.Fs = fs
	opts.Out = &out
	opts.Err = &errOut
	return opts, &out, &errOut
}

func TestListAll(t *testing.T) {
	opts, out, _ := setup(t)

	if err := List("/d.dsk", nil, opts); err != nil {
		t.Fatal(err)
	}

	want := "\n" +
		"  ZED        BAS       1 byte  (Basic, Binary)\n" +
		"  ALPHA      TXT    3000 bytes (Text, ASCII)\n" +
		"  MID        BIN     300 bytes (Code, Binary)\n" +
		"\n" +
		"3 files, 64 granules (147456 bytes) free\n"
	if out.String() != want {
		t.Errorf("listing:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestListEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	diskimg.Format().SaveToFile(fs, "/e.dsk")

	var out bytes.Buffer
	opts := DefaultListOptions()
	opts.Fs = fs
	opts.Out = &out

	if err := List("/e.dsk", nil, opts); err != nil {
		t.Fatal(err)
	}
	if out.String() != "\n0 files, 68 granules (156672 bytes) free\n" {
		t.Errorf("listing = %q", out.String())
	}
}

func TestListNamed(t *testing.T) {
	opts, out, errOut := setup(t)

	err := List("/d.dsk", []string{"mid.bin", "GHOST.DAT", "ZED.BAS"}, opts)
	if !errors.Is(err, diskimg.ErrFileNotFound) {
		t.Errorf("error = %v, want ErrFileNotFound", err)
	}
	if !strings.Contains(errOut.String(), "GHOST.DAT") {
		t.Errorf("missing name not reported: %q", errOut.String())
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "MID") || !strings.Contains(lines[1], "ZED") {
		t.Errorf("listing = %q", out.String())
	}
	if strings.Contains(out.String(), "free") {
		t.Error("named listing should not print the summary")
	}
}

func TestListSortAndPattern(t *testing.T) {
	tests := []struct {
		sort    string
		reverse bool
		pattern string
		want    []string
	}{
		{"none", false, "*", []string{"ZED.BAS", "ALPHA.TXT", "MID.BIN"}},
		{"none", true, "*", []string{"MID.BIN", "ALPHA.TXT", "ZED.BAS"}},
		{"name", false, "*", []string{"ALPHA.TXT", "MID.BIN", "ZED.BAS"}},
		{"size", true, "*", []string{"ALPHA.TXT", "MID.BIN", "ZED.BAS"}},
		{"type", false, "*", []string{"ZED.BAS", "MID.BIN", "ALPHA.TXT"}},
		{"name", false, "*.b??", []string{"MID.BIN", "ZED.BAS"}},
	}

	for _, tt := range tests {
		t.Run(tt.sort+"/"+tt.pattern, func(t *testing.T) {
			opts, out, _ := setup(t)
			opts.JSON = true
			opts.Sort = tt.sort
			opts.Reverse = tt.reverse
			opts.Pattern = tt.pattern

			if err := List("/d.dsk", nil, opts); err != nil {
				t.Fatal(err)
			}

			var got struct {
				Files   []FileEntry `json:"files"`
				Summary Summary     `json:"summary"`
			}
			if err := json.Unmarshal(out.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if len(got.Files) != len(tt.want) {
				t.Fatalf("got %d files, want %v", len(got.Files), tt.want)
			}
			for i, name := range tt.want {
				if got.Files[i].Filename != name {
					t.Errorf("file %d = %s, want %s", i, got.Files[i].Filename, name)
				}
			}
			if got.Summary.FreeGranules != 64 {
				t.Errorf("summary = %+v", got.Summary)
			}
		})
	}
}

func TestListLongShowsCorruption(t *testing.T) {
	opts, out, _ := setup(t)
	opts.Long = true

	img, _, _ := diskimg.LoadFromFile(opts.Fs, "/d.dsk")
	slot, _ := img.Lookup("ALPHA.TXT")
	de := img.Directory().Entry(slot)
	de.FirstGranule = 0x50
	img.Directory().WriteEntry(slot, de)
	img.SaveToFile(opts.Fs, "/d.dsk")

	if err := List("/d.dsk", nil, opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "0 granules from 80") {
		t.Errorf("long listing = %q", out.String())
	}
}
