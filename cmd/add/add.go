// file: cmd/add/add.go

package add

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/pkg/disk"
	"github.com/ha1tch/cocofs/pkg/diskimg"
)

// AddOptions configures the Add operation
type AddOptions struct {
	Fs    afero.Fs  // Filesystem holding the image and the host files
	Out   io.Writer // Where progress messages go
	Quiet bool      // Suppress non-error output
}

// DefaultAddOptions returns default options for Add
func DefaultAddOptions() *AddOptions {
	return &AddOptions{
		Fs:    afero.NewOsFs(),
		Out:   os.Stdout,
		Quiet: false,
	}
}

// Add copies host files into the disk image. Each argument is a host path,
// optionally followed by qualifiers such as FOO.DAT[text,ascii]. The image
// is saved after every file that was added; a file that fails is reported
// and the rest are still added.
func Add(diskPath string, files []string, opts *AddOptions) error {
	if opts == nil {
		opts = DefaultAddOptions()
	}
	if len(files) == 0 {
		return fmt.Errorf("no files to add")
	}

	d, err := disk.Open(opts.Fs, diskPath, disk.ReadWrite)
	if err != nil {
		return err
	}

	added, err := d.AddFiles(files)

	if !opts.Quiet {
		for _, hn := range added {
			fmt.Fprintf(opts.Out, "Added %s as %s (%s, %s)\n", hn.Path, hn.DiskName(), hn.Type, hn.Encoding)
		}
	}
	return err
}

// AddAll adds every regular file in dir, in name order.
func AddAll(diskPath, dir string, opts *AddOptions) error {
	if opts == nil {
		opts = DefaultAddOptions()
	}

	infos, err := afero.ReadDir(opts.Fs, dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, info := range infos {
		if info.Mode().IsRegular() {
			files = append(files, filepath.Join(dir, info.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: %w", dir, diskimg.ErrFileNotFound)
	}
	return Add(diskPath, files, opts)
}
