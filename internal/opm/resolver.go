package opm

import (
	"context"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Extensions lists the archive extensions probed for a package, highest
// priority first. The order decides which archive is served when several
// exist for the same package.
var Extensions = []string{"tar", "zip", "tar.gz", "gz", "xz"}

// Artifact is the archive resolved for a package.
type Artifact struct {
	ID        string
	Extension string
	Size      int64
}

// FileName returns the archive's file name inside the data directory.
func (a Artifact) FileName() string {
	return a.ID + "." + a.Extension
}

// ResolveArtifact returns the first archive named "<id>.<ext>" in dir,
// probing Extensions in order. A failed stat moves on to the next
// candidate. ErrNotFound is returned when nothing matches.
func ResolveArtifact(ctx context.Context, fsys afero.Fs, dir, id string) (Artifact, error) {
	for _, ext := range Extensions {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		info, err := fsys.Stat(path.Join(dir, id+"."+ext))
		if err != nil || info.IsDir() {
			continue
		}
		return Artifact{ID: id, Extension: ext, Size: info.Size()}, nil
	}
	return Artifact{}, ErrNotFound
}

// SplitArtifactName splits an archive file name into its package identifier
// and extension. The longest matching extension wins, so "a.tar.gz" is
// ("a", "tar.gz") and not ("a.tar", "gz").
func SplitArtifactName(name string) (id, ext string, ok bool) {
	for _, candidate := range Extensions {
		suffix := "." + candidate
		if !strings.HasSuffix(name, suffix) || len(candidate) <= len(ext) {
			continue
		}
		if base := strings.TrimSuffix(name, suffix); base != "" {
			id, ext = base, candidate
		}
	}
	return id, ext, ext != ""
}
