// Package presets holds named, embedded mkfs geometries so vfs-mkfs --preset
// NAME doesn't require callers to compute block/inode counts by hand.
package presets

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Geometry is one named total_blocks/total_inodes pair vfs-mkfs can format
// an image with.
type Geometry struct {
	Name        string `csv:"name"`
	TotalBlocks uint   `csv:"total_blocks"`
	TotalInodes uint   `csv:"total_inodes"`
	Notes       string `csv:"notes"`
}

//go:embed presets.csv
var rawCSV string

var geometries map[string]Geometry

func init() {
	geometries = make(map[string]Geometry)
	reader := strings.NewReader(rawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Geometry) error {
		if _, exists := geometries[row.Name]; exists {
			return fmt.Errorf("duplicate preset name %q", row.Name)
		}
		geometries[row.Name] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}

// Get looks up a named preset geometry.
func Get(name string) (Geometry, error) {
	g, ok := geometries[name]
	if !ok {
		return Geometry{}, fmt.Errorf("no preset geometry named %q", name)
	}
	return g, nil
}

// Names returns every known preset name, in file order.
func Names() []string {
	names := make([]string, 0, len(geometries))
	// Re-walk the CSV for stable ordering; the map itself doesn't preserve it.
	reader := strings.NewReader(rawCSV)
	gocsv.UnmarshalToCallback(reader, func(row Geometry) error {
		names = append(names, row.Name)
		return nil
	})
	return names
}
