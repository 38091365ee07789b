package store

import (
	"github.com/spf13/afero"
)

// NewRepoFs returns a read-only view of the package store rooted at root.
// Paths cannot escape the root.
func NewRepoFs(root string) afero.Fs {
	return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), root))
}
