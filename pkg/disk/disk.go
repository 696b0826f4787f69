// file: pkg/disk/disk.go

package disk

import (
	"errors"
	"fmt"
	"io"

	log "github.com/dsoprea/go-logging"
	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/pkg/diskimg"
)

var logger = log.NewLogger("disk")

// Mode says how an image is opened.
type Mode int

const (
	ReadOnly  Mode = iota // load, never save
	ReadWrite             // load, save after changes
	Create                // format, replacing any existing image
)

func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	case Create:
		return "create"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Disk is one session on an image file: it is opened (loaded or
// formatted), queried or changed, and saved back.
type Disk struct {
	fs       afero.Fs
	Path     string
	Mode     Mode
	Image    *diskimg.DiskImage
	Warnings []diskimg.Warning // raised while loading
}

// Open starts a session on path. A Create session starts from a freshly
// formatted image and does not read the file.
func Open(fs afero.Fs, path string, mode Mode) (*Disk, error) {
	if path == "" {
		return nil, errors.New("no disk image given")
	}

	d := &Disk{fs: fs, Path: path, Mode: mode}
	if mode == Create {
		d.Image = diskimg.Format()
		return d, nil
	}

	img, warnings, err := diskimg.LoadFromFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("unable to open image %s: %w", path, err)
	}
	d.Image = img
	d.Warnings = warnings

	logger.Debugf(nil, "opened %s %s: %d files, %d granules free",
		path, mode, img.FileCount(), img.FreeGranules())
	return d, nil
}

// Save writes the image back to its file.
func (d *Disk) Save() error {
	if d.Mode == ReadOnly {
		return diskimg.ErrReadOnly
	}
	if err := d.Image.SaveToFile(d.fs, d.Path); err != nil {
		return fmt.Errorf("unable to save image %s: %w", d.Path, err)
	}
	return nil
}

// Fs returns the filesystem the session works on.
func (d *Disk) Fs() afero.Fs {
	return d.fs
}

// PrintDetails writes a short geometry and usage summary.
func (d *Disk) PrintDetails(w io.Writer) {
	img := d.Image
	fmt.Fprintf(w, "Image: %s\n", d.Path)
	fmt.Fprintf(w, "Tracks: %d\n", diskimg.Tracks)
	fmt.Fprintf(w, "Sectors Per Track: %d\n", diskimg.SectorsPerTrack)
	fmt.Fprintf(w, "Sector Size: %d bytes\n", diskimg.BytesPerSector)
	fmt.Fprintf(w, "Granule Size: %d bytes\n", diskimg.BytesPerGranule)
	fmt.Fprintf(w, "Files: %d of %d\n", img.FileCount(), diskimg.MaxDirectoryEntries)
	fmt.Fprintf(w, "Free Granules: %d of %d (%d bytes)\n", img.FreeGranules(), diskimg.NumGranules, img.FreeBytes())
}
