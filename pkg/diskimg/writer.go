// file: pkg/diskimg/writer.go

package diskimg

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// SaveToFile writes the disk image to a file, creating or truncating it.
func (di *DiskImage) SaveToFile(fs afero.Fs, filename string) error {
	file, err := fs.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}

	if err := di.Save(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Save writes the whole image to w. Anything short of the full image is an
// error.
func (di *DiskImage) Save(w io.Writer) error {
	n, err := w.Write(di.data)
	if err == nil && n != len(di.data) {
		err = ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("unable to write image data (%d of %d bytes): %w", n, len(di.data), err)
	}

	di.Modified = false
	logger.Debugf(nil, "saved image: %d bytes", n)
	return nil
}
