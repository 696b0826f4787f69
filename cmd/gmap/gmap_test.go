// file: cmd/gmap/gmap_test.go

package gmap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/pkg/diskimg"
)

func testImage(t *testing.T) *diskimg.DiskImage {
	t.Helper()
	img := diskimg.Format()
	if err := img.CopyInBytes(make([]byte, 5000), "BIG.DAT", diskimg.TypeData, diskimg.EncodingBinary); err != nil {
		t.Fatal(err)
	}
	if err := img.CopyInBytes([]byte("x"), "SMALL.TXT", diskimg.TypeText, diskimg.EncodingASCII); err != nil {
		t.Fatal(err)
	}
	return img
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	s.SetSize(60, 40)
	t.Cleanup(s.Fini)
	return s
}

func screenRow(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(b.String(), " ")
}

func TestTrackGranule(t *testing.T) {
	tests := []struct {
		track int
		g     int
		ok    bool
	}{
		{0, 0, true},
		{16, 32, true},
		{17, 0, false},
		{18, 34, true},
		{34, 66, true},
	}
	for _, tt := range tests {
		g, ok := trackGranule(tt.track)
		if g != tt.g || ok != tt.ok {
			t.Errorf("trackGranule(%d) = %d, %v, want %d, %v", tt.track, g, ok, tt.g, tt.ok)
		}
	}
}

func TestBuild(t *testing.T) {
	m := Build("t.dsk", testImage(t))

	// BIG.DAT takes 34 to 36, SMALL.TXT 37
	for g, want := range map[int]int{34: 0, 35: 0, 36: 0, 37: 1} {
		if c := m.Cells[g]; c.Kind != cellFile || c.Slot != want {
			t.Errorf("cell %d = %+v, want slot %d", g, c, want)
		}
	}
	if c := m.Cells[0]; c.Kind != cellFree {
		t.Errorf("cell 0 = %+v, want free", c)
	}

	lines := m.Lines()
	if len(lines) != diskimg.Tracks {
		t.Fatalf("%d lines, want %d", len(lines), diskimg.Tracks)
	}
	if lines[17] != "T17  directory" {
		t.Errorf("line 17 = %q", lines[17])
	}
	if lines[18] != "T18   0   0" || lines[19] != "T19   0   1" {
		t.Errorf("lines 18-19 = %q, %q", lines[18], lines[19])
	}
	if lines[0] != "T00  ..  .." {
		t.Errorf("line 0 = %q", lines[0])
	}
}

func TestBuildFlagsProblems(t *testing.T) {
	img := testImage(t)
	sec, _ := img.GetSectorData(diskimg.DirectoryTrack, 2)
	sec[3] = 0xC1 // not reached by any file

	de := img.Directory().Entry(1)
	de.FirstGranule = 36 // shares BIG.DAT's last granule
	img.Directory().WriteEntry(1, de)

	m := Build("t.dsk", img)
	if m.Cells[3].Kind != cellOrphan || m.Cells[3].label() != " ??" {
		t.Errorf("cell 3 = %+v", m.Cells[3])
	}
	if m.Cells[36].Kind != cellConflict || m.Cells[36].label() != " !!" {
		t.Errorf("cell 36 = %+v", m.Cells[36])
	}
	legend := strings.Join(m.Legend(), "\n")
	if !strings.Contains(legend, "problems") {
		t.Errorf("legend = %q", legend)
	}
}

func TestDraw(t *testing.T) {
	s := newScreen(t)
	m := Build("t.dsk", testImage(t))
	m.Draw(s)

	if row := screenRow(s, 0); !strings.Contains(row, " t.dsk ") {
		t.Errorf("title row = %q", row)
	}
	if row := screenRow(s, 19); !strings.HasPrefix(row, "T18   0   0") {
		t.Errorf("track 18 row = %q", row)
	}
	if row := screenRow(s, 1); !strings.Contains(row, "  0 BIG.DAT") {
		t.Errorf("legend row = %q", row)
	}
	if row := screenRow(s, 39); row != "q: quit" {
		t.Errorf("status row = %q", row)
	}

	cells, w, _ := s.GetContents()
	fg, _, _ := cells[19*w+6].Style.Decompose()
	if fg != tcell.ColorAqua {
		t.Errorf("file cell colour = %v", fg)
	}
}

func TestRunQuits(t *testing.T) {
	for _, key := range []struct {
		k tcell.Key
		r rune
	}{
		{tcell.KeyRune, 'q'},
		{tcell.KeyEscape, 0},
		{tcell.KeyCtrlC, 0},
	} {
		s := newScreen(t)
		s.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
		s.InjectKey(key.k, key.r, tcell.ModNone)
		Build("t.dsk", testImage(t)).Run(s)
	}
}

func TestGmap(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := testImage(t).SaveToFile(fs, "/d.dsk"); err != nil {
		t.Fatal(err)
	}

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		opts := DefaultGmapOptions()
		opts.Fs = fs
		opts.Out = &out
		opts.Text = true

		if err := Gmap("/d.dsk", opts); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "T17  directory") || !strings.Contains(out.String(), "64 granules free") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("screen", func(t *testing.T) {
		s := newScreen(t)
		s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

		opts := DefaultGmapOptions()
		opts.Fs = fs
		opts.Screen = s
		if err := Gmap("/d.dsk", opts); err != nil {
			t.Fatal(err)
		}
		if row := screenRow(s, 20); !strings.HasPrefix(row, "T19   0   1") {
			t.Errorf("track 19 row = %q", row)
		}
	})
}
