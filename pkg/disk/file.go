// file: pkg/disk/file.go

package disk

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ha1tch/cocofs/pkg/diskimg"
)

// FileError is the failure of one file in a batch.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Each runs op for every name. A failing name is recorded and the batch
// moves on. With save set, the image is written after each name that
// succeeded; a failed save ends the batch, since nothing after it would be
// persisted. The result joins every failure.
func (d *Disk) Each(names []string, save bool, op func(name string) error) error {
	var errs []error
	for _, name := range names {
		if err := op(name); err != nil {
			logger.Debugf(nil, "%s: %v", name, err)
			errs = append(errs, &FileError{Name: name, Err: err})
			continue
		}
		if save {
			if err := d.Save(); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}

// AddFiles copies host files into the image, saving after each one.
// Arguments may carry type and encoding qualifiers.
func (d *Disk) AddFiles(args []string) ([]*diskimg.HostName, error) {
	var added []*diskimg.HostName
	err := d.Each(args, true, func(arg string) error {
		hn, err := d.Image.ImportFile(d.fs, arg)
		if err != nil {
			return err
		}
		added = append(added, hn)
		return nil
	})
	return added, err
}

// RemoveFiles deletes files from the image, saving after each one. It
// returns the names removed cleanly.
func (d *Disk) RemoveFiles(names []string) ([]string, error) {
	var removed []string
	err := d.Each(names, true, func(name string) error {
		err := d.Image.RemoveFile(name)
		if errors.Is(err, diskimg.ErrCorruptChain) {
			// the slot was freed anyway
			if serr := d.Save(); serr != nil {
				return errors.Join(err, serr)
			}
		}
		if err == nil {
			removed = append(removed, name)
		}
		return err
	})
	return removed, err
}

// ExtractFiles copies files out of the image into dir. Unless overwrite
// is set, a file that already exists on the host is left alone and
// reported. It returns the host paths written.
func (d *Disk) ExtractFiles(names []string, dir string, overwrite bool) ([]string, []diskimg.Warning, error) {
	var paths []string
	var warnings []diskimg.Warning
	err := d.Each(names, false, func(name string) error {
		if !overwrite {
			st, err := d.Image.StatFile(name)
			if err == nil || errors.Is(err, diskimg.ErrCorruptChain) {
				path := filepath.Join(dir, diskimg.HostFileName(st))
				if exists, _ := afero.Exists(d.fs, path); exists {
					return fmt.Errorf("%w: %s", diskimg.ErrFileExists, path)
				}
			}
		}

		path, w, err := d.Image.ExportFileTo(d.fs, name, dir)
		warnings = append(warnings, w...)
		if path != "" {
			paths = append(paths, path)
		}
		return err
	})
	return paths, warnings, err
}

// StatFiles looks up each name. Missing names are reported in the error and
// skipped in the result.
func (d *Disk) StatFiles(names []string) ([]diskimg.FileStat, error) {
	var stats []diskimg.FileStat
	err := d.Each(names, false, func(name string) error {
		slot, err := d.Image.Lookup(name)
		if err != nil {
			return err
		}
		st, err := d.Image.Stat(slot)
		stats = append(stats, st)
		return err
	})
	return stats, err
}

// AllFiles returns the stat of every file in directory order. Chain errors
// are joined into the error; the lenient sizes are still returned.
func (d *Disk) AllFiles() ([]diskimg.FileStat, error) {
	var stats []diskimg.FileStat
	var errs []error
	for slot := range d.Image.Entries() {
		st, err := d.Image.Stat(slot)
		stats = append(stats, st)
		if err != nil {
			errs = append(errs, &FileError{Name: st.Filename, Err: err})
		}
	}
	return stats, errors.Join(errs...)
}
