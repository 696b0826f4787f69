// file: pkg/diskimg/track.go

package diskimg

import (
	"fmt"

	log "github.com/dsoprea/go-logging"

	"github.com/ha1tch/cocofs/internal"
)

// GetSectorData returns the bytes of a sector (1-based) as a view into the
// image.
func (di *DiskImage) GetSectorData(track, sector int) ([]byte, error) {
	if track < 0 || track >= Tracks {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTrack, track)
	}
	if sector < internal.FirstSectorNumber || sector > SectorsPerTrack {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSector, sector)
	}

	off := internal.TrackSectorToOffset(track, sector)
	return di.data[off : off+BytesPerSector : off+BytesPerSector], nil
}

// SetSectorData overwrites a whole sector.
func (di *DiskImage) SetSectorData(track, sector int, data []byte) error {
	if len(data) != BytesPerSector {
		return fmt.Errorf("data length %d does not match sector size %d", len(data), BytesPerSector)
	}

	dst, err := di.GetSectorData(track, sector)
	if err != nil {
		return err
	}
	copy(dst, data)
	di.Modified = true
	return nil
}

func (di *DiskImage) mustSector(track, sector int) []byte {
	data, err := di.GetSectorData(track, sector)
	log.PanicIf(err)
	return data
}

// GetGranuleData returns the bytes of granule g as a view into the image.
func (di *DiskImage) GetGranuleData(g int) ([]byte, error) {
	if g < 0 || g >= NumGranules {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGranule, g)
	}
	return di.granuleData(g), nil
}

// granuleData is GetGranuleData without the range check.
func (di *DiskImage) granuleData(g int) []byte {
	off := internal.GranuleOffset(g)
	return di.data[off : off+BytesPerGranule : off+BytesPerGranule]
}

// GranuleLocation reports the track and first sector of granule g.
func GranuleLocation(g int) (track, sector int) {
	track = internal.GranuleTrack(g)
	sector = internal.FirstSectorNumber + (g%internal.GranulesPerTrack)*SectorsPerGranule
	return track, sector
}
