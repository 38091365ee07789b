package opm

import "testing"

func TestMaterialize(t *testing.T) {
	text := "#!/bin/sh\n# :opm packagename:foo\n# :opm-dynamic:\necho done\n"
	got := Materialize(text, Artifact{ID: "foo", Extension: "tar.gz", Size: 1024})

	want := "#!/bin/sh\n# :opm packagename:foo\n# :opm ext: tar.gz\n# :opm filesize: 1024\n# :opm-end:\necho done\n"
	if got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestMaterializeReplacesFirstMarkerOnly(t *testing.T) {
	text := "# :opm-dynamic:\n# :opm-dynamic:"
	got := Materialize(text, Artifact{Extension: "xz", Size: 7})

	want := "# :opm ext: xz\n# :opm filesize: 7\n# :opm-end:\n# :opm-dynamic:"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestMaterializeWithoutMarker(t *testing.T) {
	text := "# :opm packagename:foo\r\n# :opm packagever:1\r\n"
	if got := Materialize(text, Artifact{Extension: "tar", Size: 1}); got != text {
		t.Errorf("Expected text unchanged, got %q", got)
	}
}
