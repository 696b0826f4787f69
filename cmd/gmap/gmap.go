// file: cmd/gmap/gmap.go

package gmap

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/afero"
	"golang.org/x/term"

	"github.com/ha1tch/cocofs/pkg/disk"
	"github.com/ha1tch/cocofs/pkg/diskimg"
)

// Cell kinds in the rendered map.
const (
	cellFree = iota
	cellFile
	cellOrphan
	cellConflict
)

// Cell is one granule as shown by the viewer.
type Cell struct {
	Granule int
	Kind    int
	Slot    int // owning directory slot, -1 when none
	Raw     byte
}

// Map is the granule map laid out by track, with owner information from a
// consistency check.
type Map struct {
	Path   string
	Cells  []Cell
	Names  map[int]string // slot to filename
	Report *diskimg.Report
}

// GmapOptions configures the granule map viewer
type GmapOptions struct {
	Fs     afero.Fs     // Filesystem holding the image
	Out    io.Writer    // Text output when not interactive
	Screen tcell.Screen // Initialized screen to draw on; nil opens the terminal
	Text   bool         // Print the map as text instead of drawing it
}

// DefaultGmapOptions returns default options for Gmap
func DefaultGmapOptions() *GmapOptions {
	return &GmapOptions{
		Fs:  afero.NewOsFs(),
		Out: os.Stdout,
	}
}

// Build computes the map for img.
func Build(path string, img *diskimg.DiskImage) *Map {
	report := img.DumpCheck()
	gm := img.GranuleMap()

	m := &Map{
		Path:   path,
		Cells:  make([]Cell, diskimg.NumGranules),
		Names:  make(map[int]string),
		Report: report,
	}
	for g := range m.Cells {
		m.Cells[g] = Cell{Granule: g, Kind: cellFree, Slot: -1, Raw: gm.Raw(g)}
		if gm.Raw(g) != diskimg.GranuleFreeByte {
			m.Cells[g].Kind = cellOrphan
		}
	}

	for _, er := range report.Entries {
		if er.Skipped {
			continue
		}
		m.Names[er.Slot] = er.Stat.Filename
		for _, link := range er.Chain {
			c := &m.Cells[link.Granule]
			if c.Slot < 0 {
				c.Slot, c.Kind = er.Slot, cellFile
			}
		}
		for _, f := range er.Findings {
			if f.Kind == diskimg.FindingDoubleAllocation {
				m.Cells[f.Granule].Kind = cellConflict
			}
		}
	}
	return m
}

func (c Cell) label() string {
	switch c.Kind {
	case cellFree:
		return " .."
	case cellFile:
		return fmt.Sprintf("%3d", c.Slot)
	case cellConflict:
		return " !!"
	}
	return " ??"
}

func (c Cell) style() tcell.Style {
	switch c.Kind {
	case cellFree:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case cellFile:
		return tcell.StyleDefault.Foreground(tcell.ColorAqua)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
}

// trackGranule returns the first granule on track, or false for the
// directory track.
func trackGranule(track int) (int, bool) {
	switch {
	case track == diskimg.DirectoryTrack:
		return 0, false
	case track > diskimg.DirectoryTrack:
		return (track - 1) * 2, true
	}
	return track * 2, true
}

// Lines renders the map as text, one track per line.
func (m *Map) Lines() []string {
	var lines []string
	for track := 0; track < diskimg.Tracks; track++ {
		g, ok := trackGranule(track)
		if !ok {
			lines = append(lines, fmt.Sprintf("T%02d  directory", track))
			continue
		}
		lines = append(lines, fmt.Sprintf("T%02d %s %s", track, m.Cells[g].label(), m.Cells[g+1].label()))
	}
	return lines
}

// Legend lists the files by slot followed by the summary.
func (m *Map) Legend() []string {
	var lines []string
	for slot := 0; slot < diskimg.MaxDirectoryEntries; slot++ {
		if name, ok := m.Names[slot]; ok {
			lines = append(lines, fmt.Sprintf("%3d %s", slot, name))
		}
	}
	lines = append(lines, fmt.Sprintf("%d granules free", m.Report.ComputedFree))
	if n := len(m.Report.AllFindings()); n > 0 {
		lines = append(lines, fmt.Sprintf("%d problems, run info for details", n))
	}
	return lines
}

func putStr(s tcell.Screen, x, y int, str string, style tcell.Style) {
	w, _ := s.Size()
	for i, r := range []rune(str) {
		if x+i >= w {
			break
		}
		s.SetContent(x+i, y, r, nil, style)
	}
}

// Draw renders the map on s: tracks in the left column, the legend to the
// right of them.
func (m *Map) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()

	title := " " + m.Path + " "
	putStr(s, 0, 0, strings.Repeat("═", w), tcell.StyleDefault)
	putStr(s, max(0, (w-len(title))/2), 0, title, tcell.StyleDefault)

	for track := 0; track < diskimg.Tracks; track++ {
		y := track + 1
		if y >= h {
			break
		}
		putStr(s, 0, y, fmt.Sprintf("T%02d", track), tcell.StyleDefault)
		g, ok := trackGranule(track)
		if !ok {
			putStr(s, 5, y, "directory", tcell.StyleDefault.Dim(true))
			continue
		}
		for j, c := range m.Cells[g : g+2] {
			putStr(s, 4+j*4, y, c.label(), c.style())
		}
	}

	for i, line := range m.Legend() {
		y := i + 1
		if y >= h {
			break
		}
		putStr(s, 16, y, line, tcell.StyleDefault)
	}

	if h > 0 {
		putStr(s, 0, h-1, "q: quit", tcell.StyleDefault.Reverse(true))
	}
	s.Show()
}

// Run draws the map and waits for q, Escape or Ctrl-C, redrawing on
// resize.
func (m *Map) Run(s tcell.Screen) {
	m.Draw(s)
	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyEscape:
				return
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
				return
			}
		case *tcell.EventResize:
			s.Sync()
			m.Draw(s)
		case nil:
			return
		}
	}
}

// Gmap shows the granule map of an image. Without a terminal, or with
// Text set, the map is printed instead.
func Gmap(diskPath string, opts *GmapOptions) error {
	if opts == nil {
		opts = DefaultGmapOptions()
	}

	d, err := disk.Open(opts.Fs, diskPath, disk.ReadOnly)
	if err != nil {
		return err
	}
	m := Build(diskPath, d.Image)

	if opts.Text || (opts.Screen == nil && !term.IsTerminal(int(os.Stdout.Fd()))) {
		for _, line := range m.Lines() {
			fmt.Fprintln(opts.Out, line)
		}
		for _, line := range m.Legend() {
			fmt.Fprintln(opts.Out, line)
		}
		return nil
	}

	s := opts.Screen
	if s == nil {
		if s, err = tcell.NewScreen(); err != nil {
			return fmt.Errorf("unable to open terminal: %w", err)
		}
		if err := s.Init(); err != nil {
			return fmt.Errorf("unable to initialize screen: %w", err)
		}
		defer s.Fini()
		s.DisableMouse()
	}

	m.Run(s)
	return nil
}
