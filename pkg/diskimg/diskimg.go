// file: pkg/diskimg/diskimg.go

package diskimg

import (
	"errors"
	"fmt"
	"io"

	log "github.com/dsoprea/go-logging"

	"github.com/ha1tch/cocofs/internal"
)

const (
	Tracks            = internal.Tracks
	SectorsPerTrack   = internal.SectorsPerTrack
	BytesPerSector    = internal.BytesPerSector
	SectorsPerGranule = internal.SectorsPerGranule
	BytesPerGranule   = internal.BytesPerGranule
	NumGranules       = internal.NumGranules
	DirectoryTrack    = internal.DirectoryTrack
	DiskSizeInBytes   = internal.TotalSize // 35 tracks, single sided
	UsableBytes       = internal.UsableSize
)

var logger = log.NewLogger("diskimg")

// Warning is a non-fatal condition found while reading an image. Warnings
// are also logged as they are raised.
type Warning string

func warnf(format string, args ...interface{}) Warning {
	w := Warning(fmt.Sprintf(format, args...))
	logger.Warningf(nil, "%s", w)
	return w
}

// DiskImage represents a CoCo DOS disk image held entirely in memory. The
// granule map and directory are views into the same buffer.
type DiskImage struct {
	data      []byte
	granules  *GranuleMap
	directory *Directory
	Modified  bool
}

func newDiskImage(data []byte) *DiskImage {
	di := &DiskImage{data: data}
	di.attachViews()
	return di
}

// attachViews (re)creates the granule map and directory over di.data.
func (di *DiskImage) attachViews() {
	di.granules = newGranuleMap(di.mustSector(DirectoryTrack, internal.GranuleMapSector))

	start := internal.TrackSectorToOffset(DirectoryTrack, internal.DirFirstSector)
	end := start + internal.DirSectors*BytesPerSector
	di.directory = newDirectory(di.data[start:end])
}

// Format returns a freshly formatted image: every byte is 0xFF, which reads
// as a free granule, a free map entry and a free directory slot at once.
func Format() *DiskImage {
	di := newDiskImage(make([]byte, DiskSizeInBytes))
	di.Format()
	return di
}

// Format erases di in place.
func (di *DiskImage) Format() {
	for i := range di.data {
		di.data[i] = freeFill
	}
	di.granules.CountFree()
	di.Modified = true
}

// Load reads an image from r. A short image is not an error: the missing
// tail reads as zero and a warning is returned, so a truncated image can
// still be listed. Bytes past the fixed image size are ignored.
func Load(r io.Reader) (*DiskImage, []Warning, error) {
	data := make([]byte, DiskSizeInBytes)

	var warnings []Warning
	n, err := io.ReadFull(r, data)
	switch {
	case err == nil:
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		warnings = append(warnings, warnf("disk image is short: read %d of %d bytes", n, DiskSizeInBytes))
	default:
		return nil, nil, fmt.Errorf("failed to read disk image: %w", err)
	}

	di := newDiskImage(data)
	logger.Debugf(nil, "loaded image: %d free granules", di.granules.FreeCount())
	return di, warnings, nil
}

// Bytes returns the whole image buffer. It is shared with the engine, not
// copied.
func (di *DiskImage) Bytes() []byte {
	return di.data
}

// GranuleMap returns the allocation table view.
func (di *DiskImage) GranuleMap() *GranuleMap {
	return di.granules
}

// Directory returns the directory view.
func (di *DiskImage) Directory() *Directory {
	return di.directory
}

// FreeGranules returns the cached free granule count.
func (di *DiskImage) FreeGranules() int {
	return di.granules.FreeCount()
}

// FreeBytes returns the space available for new files.
func (di *DiskImage) FreeBytes() int64 {
	return int64(di.granules.FreeCount()) * BytesPerGranule
}
