package opm

import (
	"fmt"
	"strings"
)

// DynamicMarker is replaced with the resolved artifact fields when a
// metadata file is served.
const DynamicMarker = "# :opm-dynamic:"

// Materialize substitutes the first DynamicMarker in text with the
// artifact's extension and size. Text without a marker is returned as is.
func Materialize(text string, a Artifact) string {
	block := fmt.Sprintf("# :opm ext: %s\n# :opm filesize: %d\n# :opm-end:", a.Extension, a.Size)
	return strings.Replace(text, DynamicMarker, block, 1)
}
