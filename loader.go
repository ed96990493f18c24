package geocsv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the raster file extensions picked up from the input
// folder when none are configured.
var DefaultExtensions = []string{".tif", ".tiff"}

// RasterHandle is one input raster and the metadata needed to emit it.
type RasterHandle struct {
	Path   string    // File the raster was opened from
	Field  string    // Output column name
	Type   PixelType // Band 1 pixel type
	NoData NoData    // Band 1 no-data value
	Raster Raster
}

// FieldName derives a column name from a raster path: the file name without
// directory and extension, cut at the first underscore.
func FieldName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.IndexByte(name, '_'); i >= 0 {
		return name[:i]
	}
	return name
}

// ListRasters returns the files in dir whose extension is one of exts,
// compared case-insensitively, in directory listing order.
func ListRasters(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == strings.ToLower(want) {
				paths = append(paths, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	return paths, nil
}

// LoadRasters opens every raster in dir. On error nothing is left open.
func LoadRasters(dir string, exts []string, opener Opener) ([]*RasterHandle, error) {
	paths, err := ListRasters(dir, exts)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputFound, dir)
	}

	handles := make([]*RasterHandle, 0, len(paths))
	for _, path := range paths {
		r, err := opener.Open(path)
		if err != nil {
			CloseRasters(handles)
			return nil, fmt.Errorf("%w %s: %w", ErrRasterOpen, path, err)
		}
		handles = append(handles, &RasterHandle{
			Path:   path,
			Field:  FieldName(path),
			Type:   r.PixelType(),
			NoData: r.NoData(),
			Raster: r,
		})
	}
	return handles, nil
}

// CloseRasters closes every handle and returns the first error.
func CloseRasters(handles []*RasterHandle) error {
	var first error
	for _, h := range handles {
		if h == nil || h.Raster == nil {
			continue
		}
		if err := h.Raster.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", h.Path, err)
		}
	}
	return first
}

// Fields returns the column names of handles in order.
func Fields(handles []*RasterHandle) []string {
	fields := make([]string, len(handles))
	for i, h := range handles {
		fields[i] = h.Field
	}
	return fields
}
