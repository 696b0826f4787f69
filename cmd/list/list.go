// file: cmd/list/list.go

package list

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/pkg/disk"
	"github.com/ha1tch/cocofs/pkg/diskimg"
)

// FileEntry represents a file in the directory listing
type FileEntry struct {
	Name         string `json:"name"`
	Ext          string `json:"ext"`
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	Encoding     string `json:"encoding"`
	FirstGranule int    `json:"first_granule"`
	Granules     int    `json:"granules"`
	Error        string `json:"error,omitempty"`
}

// Summary is the free space line of a full listing.
type Summary struct {
	Files        int   `json:"files"`
	FreeGranules int   `json:"free_granules"`
	FreeBytes    int64 `json:"free_bytes"`
}

// ListOptions configures the directory listing
type ListOptions struct {
	Fs      afero.Fs  // Filesystem holding the image
	Out     io.Writer // Where the listing goes
	Err     io.Writer // Where missing names are reported
	JSON    bool      // Output in JSON format
	Long    bool      // Show the granule chain summary
	Sort    string    // Sort order: none, name, size, type
	Reverse bool      // Reverse sort order
	Pattern string    // Filter by filename pattern
}

// DefaultListOptions returns default options for List
func DefaultListOptions() *ListOptions {
	return &ListOptions{
		Fs:      afero.NewOsFs(),
		Out:     os.Stdout,
		Err:     os.Stderr,
		JSON:    false,
		Long:    false,
		Sort:    "none",
		Reverse: false,
		Pattern: "*",
	}
}

// List displays the contents of a disk image. Without filenames every file
// is listed in directory order followed by the free space; with filenames
// only those are listed, and names that are not on the disk are reported
// without stopping the listing.
func List(diskPath string, filenames []string, opts *ListOptions) error {
	if opts == nil {
		opts = DefaultListOptions()
	}

	d, err := disk.Open(opts.Fs, diskPath, disk.ReadOnly)
	if err != nil {
		return err
	}

	var files []FileEntry
	add := func(st diskimg.FileStat, err error) {
		fe := fileEntryFromStat(st, err)
		if matchesPattern(fe.Filename, opts.Pattern) {
			files = append(files, fe)
		}
	}

	var listErr error
	if len(filenames) == 0 {
		// broken chains still list with their partial size
		for slot := range d.Image.Entries() {
			add(d.Image.Stat(slot))
		}
	} else {
		var stats []diskimg.FileStat
		stats, listErr = d.StatFiles(filenames)
		for _, st := range stats {
			add(st, nil)
		}
		if listErr != nil {
			fmt.Fprintln(opts.Err, listErr)
		}
	}
	sortFiles(files, opts)

	var summary *Summary
	if len(filenames) == 0 {
		summary = &Summary{
			Files:        len(files),
			FreeGranules: d.Image.FreeGranules(),
			FreeBytes:    d.Image.FreeBytes(),
		}
	}

	if opts.JSON {
		if err := outputJSON(opts.Out, files, summary); err != nil {
			return err
		}
	} else {
		outputText(opts.Out, files, summary, opts)
	}
	return listErr
}

func fileEntryFromStat(st diskimg.FileStat, err error) FileEntry {
	fe := FileEntry{
		Name:         st.Name,
		Ext:          st.Ext,
		Filename:     st.Filename,
		Size:         st.Size,
		Type:         st.Type.String(),
		Encoding:     st.Encoding.String(),
		FirstGranule: st.FirstGranule,
		Granules:     st.Granules,
	}
	if err != nil {
		fe.Error = err.Error()
	}
	return fe
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	matched, err := filepath.Match(strings.ToUpper(pattern), strings.ToUpper(name))
	return err == nil && matched
}

func sortFiles(files []FileEntry, opts *ListOptions) {
	var less func(i, j int) bool
	switch strings.ToLower(opts.Sort) {
	case "size":
		less = func(i, j int) bool { return files[i].Size < files[j].Size }
	case "type":
		less = func(i, j int) bool { return files[i].Type < files[j].Type }
	case "name":
		less = func(i, j int) bool { return files[i].Filename < files[j].Filename }
	default:
		// directory order
		if opts.Reverse {
			for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
				files[i], files[j] = files[j], files[i]
			}
		}
		return
	}

	sort.SliceStable(files, func(i, j int) bool {
		if opts.Reverse {
			return less(j, i)
		}
		return less(i, j)
	})
}

func plural(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func outputJSON(w io.Writer, files []FileEntry, summary *Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if summary == nil {
		return encoder.Encode(files)
	}
	return encoder.Encode(struct {
		Files   []FileEntry `json:"files"`
		Summary *Summary    `json:"summary"`
	}{files, summary})
}

// PrintFile writes one listing line.
func PrintFile(w io.Writer, fe FileEntry) {
	fmt.Fprintf(w, "  %-8s   %-3s  %6d byte%-1s (%s, %s)\n",
		fe.Name, fe.Ext, fe.Size, plural(fe.Size), fe.Type, fe.Encoding)
}

// PrintSummary writes the file count and free space line.
func PrintSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "%d file%s, %d granule%s (%d bytes) free\n",
		s.Files, plural(int64(s.Files)),
		s.FreeGranules, plural(int64(s.FreeGranules)),
		s.FreeBytes)
}

func outputText(w io.Writer, files []FileEntry, summary *Summary, opts *ListOptions) {
	if summary != nil {
		fmt.Fprintln(w)
	}

	for _, fe := range files {
		PrintFile(w, fe)
		if opts.Long {
			fmt.Fprintf(w, "\t%d granule%s from %d\n", fe.Granules, plural(int64(fe.Granules)), fe.FirstGranule)
			if fe.Error != "" {
				fmt.Fprintf(w, "\t%s\n", fe.Error)
			}
		}
	}

	if summary == nil {
		return
	}
	if len(files) > 0 {
		fmt.Fprintln(w)
	}
	PrintSummary(w, summary)
}
