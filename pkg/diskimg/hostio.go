// file: pkg/diskimg/hostio.go

package diskimg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// HostFile is a host file opened as a copy-in Source.
type HostFile struct {
	afero.File
	size int64
}

// Size returns the size of the file when it was opened.
func (hf *HostFile) Size() int64 {
	return hf.size
}

// OpenSource opens path on fs for copy-in.
func OpenSource(fs afero.Fs, path string) (*HostFile, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	return &HostFile{File: f, size: info.Size()}, nil
}

// ImportFile copies a host file into the image. arg may carry type and
// encoding qualifiers, see ParseHostName.
func (di *DiskImage) ImportFile(fs afero.Fs, arg string) (*HostName, error) {
	hn, err := ParseHostName(arg)
	if err != nil {
		return nil, err
	}
	if _, found := di.directory.Find(hn.Name, hn.Ext); found {
		return hn, fmt.Errorf("%w: %s", ErrFileExists, hn.DiskName())
	}

	src, err := OpenSource(fs, hn.Path)
	if err != nil {
		return hn, err
	}
	defer src.Close()

	if err := di.CopyIn(src, hn.DiskName(), hn.Type, hn.Encoding); err != nil {
		return hn, err
	}
	return hn, nil
}

// HostFileName is the name a file is extracted under: NAME.EXT, or NAME
// when there is no extension.
func HostFileName(st FileStat) string {
	if st.Ext == "" {
		return st.Name
	}
	return st.Name + "." + st.Ext
}

// ExportFile copies the file in slot to hostPath on fs, replacing any
// existing file.
func (di *DiskImage) ExportFile(fs afero.Fs, slot int, hostPath string) ([]Warning, error) {
	if _, err := di.fileEntry(slot); err != nil {
		return nil, err
	}

	dst, err := fs.OpenFile(hostPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}

	warnings, err := di.CopyOut(slot, dst)
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = cerr
	}
	return warnings, err
}

// ExportFileTo extracts filename into dir under its own name and returns
// the host path written.
func (di *DiskImage) ExportFileTo(fs afero.Fs, filename, dir string) (string, []Warning, error) {
	slot, err := di.Lookup(filename)
	if err != nil {
		return "", nil, err
	}

	// A broken chain is reported by the copy itself.
	st, _ := di.Stat(slot)
	hostPath := filepath.Join(dir, HostFileName(st))
	warnings, err := di.ExportFile(fs, slot, hostPath)
	return hostPath, warnings, err
}
