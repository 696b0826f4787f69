package internal

import "testing"

func TestGeometryConstants(t *testing.T) {
	if TotalSize != 161280 {
		t.Errorf("TotalSize = %d, want 161280", TotalSize)
	}
	if BytesPerGranule != 2304 {
		t.Errorf("BytesPerGranule = %d, want 2304", BytesPerGranule)
	}
	if NumGranules != 68 {
		t.Errorf("NumGranules = %d, want 68", NumGranules)
	}
	if UsableSize != 156672 {
		t.Errorf("UsableSize = %d, want 156672", UsableSize)
	}
}

func TestGranuleTrack(t *testing.T) {
	tests := []struct {
		granule int
		want    int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{33, 16},
		{34, 18}, // directory track is skipped
		{35, 18},
		{36, 19},
		{67, 34},
	}
	for _, tt := range tests {
		if got := GranuleTrack(tt.granule); got != tt.want {
			t.Errorf("GranuleTrack(%d) = %d, want %d", tt.granule, got, tt.want)
		}
	}
}

func TestGranuleOffset(t *testing.T) {
	tests := []struct {
		granule int
		want    int
	}{
		{0, 0},
		{1, BytesPerGranule},
		{2, BytesPerTrack},
		{33, 16*BytesPerTrack + BytesPerGranule},
		{34, 18 * BytesPerTrack},
		{67, 34*BytesPerTrack + BytesPerGranule},
	}
	for _, tt := range tests {
		if got := GranuleOffset(tt.granule); got != tt.want {
			t.Errorf("GranuleOffset(%d) = %d, want %d", tt.granule, got, tt.want)
		}
	}

	// Last granule must end exactly at the end of the image.
	if end := GranuleOffset(NumGranules-1) + BytesPerGranule; end != TotalSize {
		t.Errorf("last granule ends at %d, want %d", end, TotalSize)
	}
}

func TestGranulesNeverTouchDirectoryTrack(t *testing.T) {
	dirStart := TrackOffset(DirectoryTrack)
	dirEnd := dirStart + BytesPerTrack
	for g := 0; g < NumGranules; g++ {
		start := GranuleOffset(g)
		end := start + BytesPerGranule
		if start < dirEnd && end > dirStart {
			t.Errorf("granule %d [%d,%d) overlaps directory track", g, start, end)
		}
	}
}

func TestSectorOffsets(t *testing.T) {
	if got := SectorOffset(1); got != 0 {
		t.Errorf("SectorOffset(1) = %d, want 0", got)
	}
	if got := SectorOffset(18); got != 17*BytesPerSector {
		t.Errorf("SectorOffset(18) = %d, want %d", got, 17*BytesPerSector)
	}
	want := DirectoryTrack*BytesPerTrack + BytesPerSector
	if got := TrackSectorToOffset(DirectoryTrack, GranuleMapSector); got != want {
		t.Errorf("granule map offset = %d, want %d", got, want)
	}
}
