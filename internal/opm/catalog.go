package opm

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Catalog is the ordered list of valid packages found in a store, in
// directory listing order.
type Catalog []Descriptor

// List renders the machine-readable package list, one
// "<name>|<version>|<title>" line per package.
func (c Catalog) List() string {
	lines := make([]string, 0, len(c))
	for _, d := range c {
		lines = append(lines, d.Name+"|"+d.Version+"|"+d.Title())
	}
	return strings.Join(lines, "\n")
}

// BuildCatalog returns the valid packages in dir. A missing or unreadable
// directory yields an empty catalog.
func BuildCatalog(ctx context.Context, fsys afero.Fs, dir string) Catalog {
	catalog, _ := ScanCatalog(ctx, fsys, dir)
	return catalog
}

// ScanCatalog is like BuildCatalog but also reports why the directory could
// not be listed. Metadata files that fail to read or parse are skipped and
// never cause an error.
func ScanCatalog(ctx context.Context, fsys afero.Fs, dir string) (Catalog, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	catalog := make(Catalog, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return catalog, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), MetadataExt) {
			continue
		}
		d, err := ReadDescriptor(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		catalog = append(catalog, d)
	}
	return catalog, nil
}
