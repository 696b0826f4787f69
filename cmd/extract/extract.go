// file: cmd/extract/extract.go

package extract

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/pkg/disk"
)

// ExtractOptions configures the file extraction operation
type ExtractOptions struct {
	Fs        afero.Fs  // Filesystem holding the image and the output directory
	Out       io.Writer // Where progress messages go
	Err       io.Writer // Where copy-out warnings go
	OutputDir string    // Directory to extract files to
	Overwrite bool      // Allow overwriting existing files
	Quiet     bool      // Suppress non-error output
}

// DefaultExtractOptions returns default options for Extract
func DefaultExtractOptions() *ExtractOptions {
	return &ExtractOptions{
		Fs:        afero.NewOsFs(),
		Out:       os.Stdout,
		Err:       os.Stderr,
		OutputDir: ".",
		Overwrite: true,
		Quiet:     false,
	}
}

// Extract copies files from the disk image to the host filesystem, each
// under its NAME.EXT in OutputDir. A file that fails is reported and the
// rest are still extracted; a file with a broken chain keeps whatever was
// written before the break.
func Extract(diskPath string, filenames []string, opts *ExtractOptions) error {
	if opts == nil {
		opts = DefaultExtractOptions()
	}
	if len(filenames) == 0 {
		return fmt.Errorf("filename cannot be empty")
	}

	d, err := disk.Open(opts.Fs, diskPath, disk.ReadOnly)
	if err != nil {
		return err
	}

	if opts.OutputDir != "" {
		if err := opts.Fs.MkdirAll(opts.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	paths, warnings, err := d.ExtractFiles(filenames, opts.OutputDir, opts.Overwrite)

	for _, w := range warnings {
		fmt.Fprintf(opts.Err, "WARNING: %s\n", w)
	}
	if !opts.Quiet {
		for _, p := range paths {
			fmt.Fprintf(opts.Out, "Extracted %s\n", p)
		}
	}
	return err
}

// ExtractAll extracts all files from the disk image
func ExtractAll(diskPath string, opts *ExtractOptions) error {
	if opts == nil {
		opts = DefaultExtractOptions()
	}

	d, err := disk.Open(opts.Fs, diskPath, disk.ReadOnly)
	if err != nil {
		return err
	}

	var names []string
	for _, de := range d.Image.Entries() {
		names = append(names, de.GetFilename())
	}

	if len(names) == 0 {
		if !opts.Quiet {
			fmt.Fprintln(opts.Out, "No files on disk image")
		}
		return nil
	}

	err = Extract(diskPath, names, opts)
	if !opts.Quiet {
		fmt.Fprintf(opts.Out, "Extracted %d files from disk image\n", len(names))
	}
	return err
}
