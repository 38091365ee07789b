package opm

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// MetadataExt is the file extension of package metadata files.
const MetadataExt = ".opm"

const defaultSummary = "No description available"

// Directive prefixes recognized in metadata files. Each one ends at the
// second colon of the line, everything after it is the value.
const (
	directiveName        = "# :opm packagename:"
	directiveVersion     = "# :opm packagever:"
	directiveDisplayName = "# :opm packagedisplay:"
	directiveDescription = "# :opm packagedesc:"
)

// Descriptor describes one package as declared by its metadata file.
type Descriptor struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
}

// Title returns the display name, falling back to the package name.
func (d Descriptor) Title() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// Summary returns the description, falling back to a placeholder.
func (d Descriptor) Summary() string {
	if d.Description != "" {
		return d.Description
	}
	return defaultSummary
}

// descriptorBuilder accumulates directive values while scanning lines.
type descriptorBuilder struct {
	name        string
	version     string
	displayName string
	description string
}

func (b *descriptorBuilder) apply(line string) {
	switch {
	case strings.HasPrefix(line, directiveName):
		b.name = directiveValue(line, directiveName)
	case strings.HasPrefix(line, directiveVersion):
		b.version = directiveValue(line, directiveVersion)
	case strings.HasPrefix(line, directiveDisplayName):
		b.displayName = directiveValue(line, directiveDisplayName)
	case strings.HasPrefix(line, directiveDescription):
		b.description = directiveValue(line, directiveDescription)
	}
}

func (b *descriptorBuilder) build() (Descriptor, error) {
	if b.name == "" || b.version == "" {
		return Descriptor{}, ErrInvalidDescriptor
	}
	return Descriptor{
		Name:        b.name,
		Version:     b.version,
		DisplayName: b.displayName,
		Description: b.description,
	}, nil
}

func directiveValue(line, prefix string) string {
	return strings.TrimSpace(line[len(prefix):])
}

// Parse parses the text of a metadata file. Unrecognized lines are ignored
// and a repeated directive overrides the earlier one. The result is valid
// only when both the name and the version are present.
func Parse(text string) (Descriptor, error) {
	var b descriptorBuilder
	for _, line := range strings.Split(text, "\n") {
		b.apply(line)
	}
	return b.build()
}

// ReadDescriptor reads and parses the metadata file at path.
func ReadDescriptor(fsys afero.Fs, path string) (Descriptor, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to read metadata %s: %w", path, err)
	}
	return Parse(string(data))
}
