package internal

// CoCo DOS single-density geometry. One head, 35 tracks of 18 sectors,
// 256 bytes per sector. Each track holds 2 granules of 9 sectors. Track 17
// is the directory track and is not part of the granule numbering.
const (
	Tracks            = 35
	SectorsPerTrack   = 18
	BytesPerSector    = 256
	SectorsPerGranule = 9
	GranulesPerTrack  = SectorsPerTrack / SectorsPerGranule
	BytesPerTrack     = SectorsPerTrack * BytesPerSector
	BytesPerGranule   = SectorsPerGranule * BytesPerSector
	DirectoryTrack    = 17
	NumGranules       = (Tracks - 1) * GranulesPerTrack
	TotalSize         = Tracks * SectorsPerTrack * BytesPerSector
	UsableSize        = NumGranules * BytesPerGranule
	FirstSectorNumber = 1
	GranuleMapSector  = 2
	DirFirstSector    = 3
	DirLastSector     = 11
	DirSectors        = DirLastSector - DirFirstSector + 1
)

// TrackOffset returns the byte offset of the start of a track.
func TrackOffset(track int) int {
	return track * BytesPerTrack
}

// SectorOffset returns the offset of a 1-based sector within its track.
func SectorOffset(sector int) int {
	return (sector - FirstSectorNumber) * BytesPerSector
}

// GranuleTrack returns the physical track holding a granule.
func GranuleTrack(granule int) int {
	track := granule / GranulesPerTrack
	if track >= DirectoryTrack {
		track++
	}
	return track
}

// GranuleOffset converts a granule index into an absolute image offset.
func GranuleOffset(granule int) int {
	offset := TrackOffset(GranuleTrack(granule))
	if granule%GranulesPerTrack == 1 {
		offset += BytesPerGranule
	}
	return offset
}

// TrackSectorToOffset converts a track and 1-based sector into an absolute
// image offset.
func TrackSectorToOffset(track, sector int) int {
	return TrackOffset(track) + SectorOffset(sector)
}
