// file: pkg/diskimg/reader.go

package diskimg

import (
	"github.com/spf13/afero"
)

// LoadFromFile loads a disk image from a file
func LoadFromFile(fs afero.Fs, filename string) (*DiskImage, []Warning, error) {
	file, err := fs.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	di, warnings, err := Load(file)
	if err != nil {
		return nil, warnings, err
	}

	for _, w := range warnings {
		logger.Debugf(nil, "%s: %s", filename, w)
	}
	return di, warnings, nil
}
