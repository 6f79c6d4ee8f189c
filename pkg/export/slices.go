package export

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/chazu/twirl/pkg/raster"
	"github.com/chazu/twirl/pkg/volume"
)

// ErrUnknownFormat is returned for an unsupported slice image format.
var ErrUnknownFormat = errors.New("export: unknown image format")

// Format is a slice image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
)

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension without a dot.
func (f Format) Ext() string {
	return string(f)
}

// Encode writes one slice in the given format.
func Encode(w io.Writer, img *raster.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// SliceName returns the file name used for depth index i.
func SliceName(i int, f Format) string {
	return fmt.Sprintf("slice_%04d.%s", i, f.Ext())
}

// WriteSlices writes every slice of v into dir, creating it if needed, and
// returns the written paths in depth order.
func WriteSlices(v *volume.Volume, dir string, f Format) ([]string, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", dir, err)
	}
	paths := make([]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		path := filepath.Join(dir, SliceName(i, f))
		if err := writeSlice(path, v.Slice(i), f); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeSlice(path string, img *raster.Image, f Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export: close %s: %w", path, cerr)
		}
	}()
	if err := Encode(file, img, f); err != nil {
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	return nil
}
