// file: cmd/create/create.go

package create

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/pkg/disk"
	"github.com/ha1tch/cocofs/pkg/diskimg"
)

// CreateOptions configures the disk creation
type CreateOptions struct {
	Fs        afero.Fs  // Filesystem holding the image
	Out       io.Writer // Where progress messages go
	NoClobber bool      // Refuse to replace an existing image
	Quiet     bool      // Suppress non-error output
}

// DefaultCreateOptions returns default options for Create
func DefaultCreateOptions() *CreateOptions {
	return &CreateOptions{
		Fs:        afero.NewOsFs(),
		Out:       os.Stdout,
		NoClobber: false,
		Quiet:     false,
	}
}

// Create writes a freshly formatted image to outPath, replacing any
// existing file unless NoClobber is set.
func Create(outPath string, opts *CreateOptions) error {
	if opts == nil {
		opts = DefaultCreateOptions()
	}

	outPath = filepath.Clean(outPath)

	if opts.NoClobber {
		if exists, _ := afero.Exists(opts.Fs, outPath); exists {
			return fmt.Errorf("file already exists: %s", outPath)
		}
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := opts.Fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	d, err := disk.Open(opts.Fs, outPath, disk.Create)
	if err != nil {
		return err
	}
	if err := d.Save(); err != nil {
		opts.Fs.Remove(outPath)
		return err
	}

	if err := verifyDiskImage(opts.Fs, outPath); err != nil {
		opts.Fs.Remove(outPath)
		return fmt.Errorf("disk image verification failed: %w", err)
	}

	if !opts.Quiet {
		fmt.Fprintf(opts.Out, "Created disk image: %s (%d granules free)\n", outPath, d.Image.FreeGranules())
	}
	return nil
}

// verifyDiskImage reloads the written image and checks it.
func verifyDiskImage(fs afero.Fs, path string) error {
	img, warnings, err := diskimg.LoadFromFile(fs, path)
	if err != nil {
		return err
	}
	if len(warnings) > 0 {
		return fmt.Errorf("%s", warnings[0])
	}
	if errs := img.Validate(); len(errs) > 0 {
		return fmt.Errorf("disk validation errors: %v", errs[0])
	}
	if img.FreeGranules() != diskimg.NumGranules {
		return fmt.Errorf("formatted image has %d free granules", img.FreeGranules())
	}
	return nil
}
