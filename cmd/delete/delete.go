// file: cmd/delete/delete.go

package delete

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/pkg/disk"
	"github.com/ha1tch/cocofs/pkg/diskimg"
)

// DeleteOptions configures the deletion operation
type DeleteOptions struct {
	Fs          afero.Fs  // Filesystem holding the image
	Out         io.Writer // Where progress messages and prompts go
	In          io.Reader // Where confirmations are read from
	Interactive bool      // Ask before each file
	Quiet       bool      // Suppress non-error output
}

// DefaultDeleteOptions returns default options for Delete
func DefaultDeleteOptions() *DeleteOptions {
	return &DeleteOptions{
		Fs:          afero.NewOsFs(),
		Out:         os.Stdout,
		In:          os.Stdin,
		Interactive: false,
		Quiet:       false,
	}
}

// Delete removes files from the disk image, saving after each one. Names
// that are not found are reported and the rest are still removed.
func Delete(diskPath string, filenames []string, opts *DeleteOptions) error {
	if opts == nil {
		opts = DefaultDeleteOptions()
	}
	if len(filenames) == 0 {
		return fmt.Errorf("filename cannot be empty")
	}

	d, err := disk.Open(opts.Fs, diskPath, disk.ReadWrite)
	if err != nil {
		return err
	}

	names := filenames
	if opts.Interactive {
		names = confirmed(d.Image, filenames, opts)
	}

	removed, err := d.RemoveFiles(names)

	if !opts.Quiet {
		for _, name := range removed {
			fmt.Fprintf(opts.Out, "Deleted %s\n", strings.ToUpper(name))
		}
	}
	return err
}

// DeleteAll removes every file from the image.
func DeleteAll(diskPath string, opts *DeleteOptions) error {
	if opts == nil {
		opts = DefaultDeleteOptions()
	}

	img, _, err := diskimg.LoadFromFile(opts.Fs, diskPath)
	if err != nil {
		return fmt.Errorf("failed to open disk: %w", err)
	}

	var names []string
	for _, de := range img.Entries() {
		names = append(names, de.GetFilename())
	}
	if len(names) == 0 {
		if !opts.Quiet {
			fmt.Fprintln(opts.Out, "No files to delete")
		}
		return nil
	}
	return Delete(diskPath, names, opts)
}

// confirmed asks about each name that exists and keeps the ones answered
// with yes. Missing names are kept so the batch reports them.
func confirmed(img *diskimg.DiskImage, names []string, opts *DeleteOptions) []string {
	in := bufio.NewScanner(opts.In)
	var keep []string
	for _, name := range names {
		if _, err := img.Lookup(name); err != nil {
			keep = append(keep, name)
			continue
		}
		fmt.Fprintf(opts.Out, "Delete %s? (y/N) ", strings.ToUpper(name))
		var response string
		if in.Scan() {
			response = in.Text()
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y") {
			keep = append(keep, name)
		} else if !opts.Quiet {
			fmt.Fprintln(opts.Out, "Deletion cancelled")
		}
	}
	return keep
}
