package pathutil

import "testing"

func TestToRelativeJoinsUnderRoot(t *testing.T) {
	got := ToRelative("/home/user/project/src/main.go", "/home/user/project")
	if got != "src/main.go" {
		t.Errorf("got %q, want src/main.go", got)
	}
}

func TestToRelativeFallsBackWhenOutsideRoot(t *testing.T) {
	got := ToRelative("/elsewhere/file.go", "/home/user/project")
	if got != "/elsewhere/file.go" {
		t.Errorf("expected the cleaned absolute path as fallback, got %q", got)
	}
}

func TestToRelativeNormalizesToForwardSlashes(t *testing.T) {
	got := ToRelative("/root/a/b/c.go", "/root")
	if got != "a/b/c.go" {
		t.Errorf("got %q, want forward-slash relative path", got)
	}
}

func TestToAbsoluteRoundTripsWithToRelative(t *testing.T) {
	root := "/home/user/project"
	rel := ToRelative("/home/user/project/src/main.go", root)
	abs := ToAbsolute(rel, root)
	if abs != "/home/user/project/src/main.go" {
		t.Errorf("round trip mismatch, got %q", abs)
	}
}
