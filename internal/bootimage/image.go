// Package bootimage loads the program image copied into the address space at
// reset. Images may be stored raw or inside a .gz, .zip or .7z archive.
package bootimage

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
	"github.com/pkg/errors"

	"github.com/richardwooding/dmgcore/internal/memory"
)

// ErrEmptyArchive indicates an archive holds no regular file.
var ErrEmptyArchive = errors.New("archive contains no files")

// Image is a boot image validated to fit the address space.
type Image struct {
	data        []byte
	fingerprint uint64
}

// New validates data and returns an Image holding a copy of it.
func New(data []byte) (*Image, error) {
	if len(data) > memory.Size {
		return nil, errors.Wrapf(memory.ErrImageTooLarge, "bootimage: got %d bytes", len(data))
	}

	img := &Image{data: make([]byte, len(data))}
	copy(img.data, data)
	img.fingerprint = xxhash.Sum64(img.data)

	return img, nil
}

// Load reads an image from path, decompressing it by file extension.
func Load(path string) (*Image, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	return New(data)
}

// Bytes returns the image contents.
func (i *Image) Bytes() []byte {
	return i.data
}

// Len returns the image size in bytes.
func (i *Image) Len() int {
	return len(i.data)
}

// Fingerprint returns the xxhash64 of the image contents.
func (i *Image) Fingerprint() uint64 {
	return i.fingerprint
}

// FingerprintString returns the fingerprint as 16 hex digits.
func (i *Image) FingerprintString() string {
	return fmt.Sprintf("%016x", i.fingerprint)
}

// Header parses the cartridge header carried by the image, if any.
func (i *Image) Header() (*Header, error) {
	return ParseHeader(i.data)
}

func readFile(path string) ([]byte, error) {
	// #nosec G304 - path is provided by the user via CLI argument
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "bootimage: open")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "bootimage: stat")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "bootimage: invalid gzip %s", path)
		}
		defer gz.Close()
		return readAll(gz)

	case ".zip":
		zr, err := zip.NewReader(f, info.Size())
		if err != nil {
			return nil, errors.Wrapf(err, "bootimage: invalid zip %s", path)
		}
		for _, zf := range zr.File {
			if zf.FileInfo().IsDir() {
				continue
			}
			return readEntry(zf.Open)
		}
		return nil, errors.Wrap(ErrEmptyArchive, path)

	case ".7z":
		sr, err := sevenzip.NewReader(f, info.Size())
		if err != nil {
			return nil, errors.Wrapf(err, "bootimage: invalid 7z %s", path)
		}
		for _, sf := range sr.File {
			if sf.FileInfo().IsDir() {
				continue
			}
			return readEntry(sf.Open)
		}
		return nil, errors.Wrap(ErrEmptyArchive, path)

	default:
		return readAll(f)
	}
}

// readEntry reads the archive entry returned by open.
func readEntry(open func() (io.ReadCloser, error)) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, errors.Wrap(err, "bootimage: open archive entry")
	}
	defer rc.Close()

	return readAll(rc)
}

// readAll reads at most one byte more than the address space holds, so
// oversized images are still rejected by New without being read in full.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, memory.Size+1))
	if err != nil {
		return nil, errors.Wrap(err, "bootimage: read")
	}
	return data, nil
}
