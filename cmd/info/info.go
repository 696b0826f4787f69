// file: cmd/info/info.go

package info

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/cmd/list"
	"github.com/ha1tch/cocofs/pkg/disk"
	"github.com/ha1tch/cocofs/pkg/diskimg"
)

// EntryInfo is one directory slot in the structured report.
type EntryInfo struct {
	Slot      int      `json:"slot"`
	Filename  string   `json:"filename"`
	Size      int64    `json:"size"`
	Type      string   `json:"type"`
	Encoding  string   `json:"encoding"`
	Chain     []int    `json:"chain"`
	LastBytes int      `json:"last_bytes"`
	Findings  []string `json:"findings,omitempty"`
}

// DiskInfo represents disk information in a structured format
type DiskInfo struct {
	Path         string      `json:"path"`
	Files        int         `json:"files"`
	FreeGranules int         `json:"free_granules"`
	FreeSpace    int64       `json:"free_space"`
	CachedFree   int         `json:"cached_free_granules"`
	TotalSpace   int64       `json:"total_space"`
	Modified     time.Time   `json:"modified_time,omitempty"`
	Entries      []EntryInfo `json:"entries"`
	Validation   []string    `json:"validation_issues,omitempty"`
}

// InfoOptions configures the information display
type InfoOptions struct {
	Fs       afero.Fs  // Filesystem holding the image
	Out      io.Writer // Where the report goes
	JSON     bool      // Output in JSON format
	Verbose  bool      // Show disk geometry first
	Strict   bool      // Fail when any problem is found
	ShowFree bool      // List unused directory slots too
}

// DefaultInfoOptions returns default options for Info
func DefaultInfoOptions() *InfoOptions {
	return &InfoOptions{
		Fs:       afero.NewOsFs(),
		Out:      os.Stdout,
		JSON:     false,
		Verbose:  false,
		Strict:   false,
		ShowFree: true,
	}
}

// Info walks every file on the disk image, prints its granule chain, and
// reports any inconsistency found. Nothing is repaired. Problems are only
// an error when Strict is set.
func Info(diskPath string, opts *InfoOptions) error {
	if opts == nil {
		opts = DefaultInfoOptions()
	}

	d, err := disk.Open(opts.Fs, diskPath, disk.ReadOnly)
	if err != nil {
		return err
	}
	report := d.Image.DumpCheck()

	if opts.JSON {
		info := buildInfo(d, report)
		if stat, err := opts.Fs.Stat(diskPath); err == nil {
			info.Modified = stat.ModTime()
		}
		if err := outputJSON(opts.Out, info); err != nil {
			return err
		}
	} else {
		if opts.Verbose {
			d.PrintDetails(opts.Out)
		}
		for _, w := range d.Warnings {
			fmt.Fprintf(opts.Out, "WARNING: %s\n", w)
		}
		outputText(opts.Out, report, opts)
	}

	if opts.Strict && !report.OK() {
		return fmt.Errorf("%s: %d problems found", diskPath, len(report.AllFindings()))
	}
	return nil
}

func buildInfo(d *disk.Disk, report *diskimg.Report) *DiskInfo {
	info := &DiskInfo{
		Path:         d.Path,
		Files:        report.Files,
		FreeGranules: report.ComputedFree,
		FreeSpace:    int64(report.ComputedFree) * diskimg.BytesPerGranule,
		CachedFree:   report.CachedFree,
		TotalSpace:   diskimg.UsableBytes,
	}

	for _, er := range report.Entries {
		if er.Skipped {
			continue
		}
		ei := EntryInfo{
			Slot:      er.Slot,
			Filename:  er.Stat.Filename,
			Size:      er.Stat.Size,
			Type:      er.Stat.Type.String(),
			Encoding:  er.Stat.Encoding.String(),
			Chain:     []int{},
			LastBytes: int(er.LastRaw[0])<<8 | int(er.LastRaw[1]),
		}
		for _, link := range er.Chain {
			ei.Chain = append(ei.Chain, link.Granule)
		}
		for _, f := range er.Findings {
			ei.Findings = append(ei.Findings, f.Error())
		}
		info.Entries = append(info.Entries, ei)
	}

	for _, f := range report.AllFindings() {
		info.Validation = append(info.Validation, f.Error())
	}
	return info
}

// outputJSON writes disk information in JSON format
func outputJSON(w io.Writer, info *DiskInfo) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func printFinding(w io.Writer, f diskimg.Finding) {
	switch f.Kind {
	case diskimg.FindingInvalidGranule:
		fmt.Fprintf(w, "\tINVALID GRANULE #%d: %d\n", f.Hop, f.Granule)
	case diskimg.FindingDoubleAllocation:
		fmt.Fprintf(w, "\tGRANULE %d ALREADY ALLOCATED TO FILE %d\n", f.Granule, f.Owner)
	case diskimg.FindingInvalidMapEntry:
		fmt.Fprintf(w, "\tINVALID GRANULE MAP ENTRY %2d: %d -> 0x%02x\n", f.Hop, f.Granule, f.Raw)
	case diskimg.FindingCycle:
		fmt.Fprintf(w, "\tGRANULE LIST CYCLE DETECTED\n")
	case diskimg.FindingLastSectors:
		fmt.Fprintf(w, "\tUNEXPECTED LAST NSEC %d IN GRANULE %d\n", f.Raw&0x0F, f.Granule)
	case diskimg.FindingLastBytes:
		fmt.Fprintf(w, "\tUNEXPECTED LAST BYTES: %s\n", f.Message)
	case diskimg.FindingOrphanGranule:
		fmt.Fprintf(w, "WARNING: GRANULE %d (0x%02x) IS NOT PART OF ANY FILE\n", f.Granule, f.Raw)
	case diskimg.FindingFreeCountMismatch:
		// printed with the summary
	default:
		fmt.Fprintf(w, "\t%s\n", f.Error())
	}
}

// outputText writes the dump in the classic per-entry layout.
func outputText(w io.Writer, report *diskimg.Report, opts *InfoOptions) {
	fmt.Fprintln(w)

	for _, er := range report.Entries {
		if er.Skipped {
			if opts.ShowFree || er.RawType != byte(diskimg.TypeFree) {
				fmt.Fprintf(w, "%2d: entry type 0x%02x, skipping.\n", er.Slot, er.RawType)
			}
			continue
		}

		list.PrintFile(w, list.FileEntry{
			Name:     er.Stat.Name,
			Ext:      er.Stat.Ext,
			Size:     er.Stat.Size,
			Type:     er.Stat.Type.String(),
			Encoding: er.Stat.Encoding.String(),
		})

		printed := make([]bool, len(er.Findings))
		for _, link := range er.Chain {
			for i, f := range er.Findings {
				if f.Kind == diskimg.FindingDoubleAllocation && f.Hop == link.Hop {
					printFinding(w, f)
					printed[i] = true
				}
			}
			if link.State.Kind == diskimg.GranuleLast {
				fmt.Fprintf(w, "\tGranule %2d: %d (last, nsec=%d)\n", link.Hop, link.Granule, link.State.Sectors)
			} else {
				fmt.Fprintf(w, "\tGranule %2d: %d\n", link.Hop, link.Granule)
			}
		}
		for i, f := range er.Findings {
			if !printed[i] {
				printFinding(w, f)
			}
		}

		fmt.Fprintf(w, "\tBytes in last sector: %d (0x%02x 0x%02x)\n",
			int(er.LastRaw[0])<<8|int(er.LastRaw[1]), er.LastRaw[0], er.LastRaw[1])
	}

	if report.Files > 0 {
		fmt.Fprintln(w)
	}

	list.PrintSummary(w, &list.Summary{
		Files:        report.Files,
		FreeGranules: report.ComputedFree,
		FreeBytes:    int64(report.ComputedFree) * diskimg.BytesPerGranule,
	})
	if report.ComputedFree != report.CachedFree {
		fmt.Fprintf(w, "WARNING: FREE GRANULES LOADED %d != COMPUTED %d\n", report.CachedFree, report.ComputedFree)
	}
	for _, f := range report.Findings {
		printFinding(w, f)
	}
}
