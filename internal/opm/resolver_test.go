package opm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestResolveArtifact(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]int
		wantExt string
		wantErr error
	}{
		{name: "tar preferred over zip", files: map[string]int{"foo.tar": 10, "foo.zip": 20}, wantExt: "tar"},
		{name: "zip preferred over tar.gz", files: map[string]int{"foo.zip": 1, "foo.tar.gz": 2}, wantExt: "zip"},
		{name: "tar.gz preferred over gz", files: map[string]int{"foo.gz": 1, "foo.tar.gz": 2}, wantExt: "tar.gz"},
		{name: "xz last", files: map[string]int{"foo.xz": 3}, wantExt: "xz"},
		{name: "other packages ignored", files: map[string]int{"foobar.tar": 3, "bar.tar": 1}, wantErr: ErrNotFound},
		{name: "unknown extension ignored", files: map[string]int{"foo.rar": 3}, wantErr: ErrNotFound},
		{name: "nothing", files: map[string]int{}, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			for name, size := range tt.files {
				writeFile(t, fsys, "packagedata/"+name, strings.Repeat("x", size))
			}

			got, err := ResolveArtifact(context.Background(), fsys, "packagedata", "foo")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if err != nil {
				return
			}
			if got.Extension != tt.wantExt {
				t.Errorf("Expected extension %q, got %q", tt.wantExt, got.Extension)
			}
			if want := int64(tt.files["foo."+tt.wantExt]); got.Size != want {
				t.Errorf("Expected size %d, got %d", want, got.Size)
			}
			if got.FileName() != "foo."+tt.wantExt {
				t.Errorf("Expected file name %q, got %q", "foo."+tt.wantExt, got.FileName())
			}
		})
	}
}

func TestResolveArtifactSkipsDirectories(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("packagedata/foo.tar", 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, fsys, "packagedata/foo.zip", "zz")

	got, err := ResolveArtifact(context.Background(), fsys, "packagedata", "foo")
	if err != nil {
		t.Fatalf("Expected match, got %v", err)
	}
	if got.Extension != "zip" {
		t.Errorf("Expected zip, got %q", got.Extension)
	}
}

func TestResolveArtifactEmptyFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "packagedata/foo.gz", "")

	got, err := ResolveArtifact(context.Background(), fsys, "packagedata", "foo")
	if err != nil {
		t.Fatalf("Expected match, got %v", err)
	}
	if got.Size != 0 {
		t.Errorf("Expected size 0, got %d", got.Size)
	}
}

func TestResolveArtifactCanceled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "packagedata/foo.tar", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ResolveArtifact(ctx, fsys, "packagedata", "foo"); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSplitArtifactName(t *testing.T) {
	tests := []struct {
		file   string
		wantID string
		ext    string
		ok     bool
	}{
		{file: "foo.tar", wantID: "foo", ext: "tar", ok: true},
		{file: "foo.tar.gz", wantID: "foo", ext: "tar.gz", ok: true},
		{file: "foo.gz", wantID: "foo", ext: "gz", ok: true},
		{file: "foo-1.2.zip", wantID: "foo-1.2", ext: "zip", ok: true},
		{file: "foo.xz", wantID: "foo", ext: "xz", ok: true},
		{file: "foo.rar", ok: false},
		{file: ".tar", ok: false},
		{file: "tar", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			id, ext, ok := SplitArtifactName(tt.file)
			if ok != tt.ok || id != tt.wantID || ext != tt.ext {
				t.Errorf("Expected (%q, %q, %v), got (%q, %q, %v)", tt.wantID, tt.ext, tt.ok, id, ext, ok)
			}
		})
	}
}
