package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func newNormalizer(t *testing.T) (Normalizer, string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval root: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "docs", "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "docs", "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return Normalizer{Root: root, Cwd: root}, root
}

func TestKey(t *testing.T) {
	n, root := newNormalizer(t)
	sub := n
	sub.Cwd = filepath.Join(root, "docs", "sub")

	tests := []struct {
		name string
		n    Normalizer
		in   string
		want string
	}{
		{"relative", n, "docs/a.txt", "docs/a.txt"},
		{"dot prefix", n, "./docs/a.txt", "docs/a.txt"},
		{"dotdot", n, "docs/sub/../a.txt", "docs/a.txt"},
		{"absolute", n, filepath.Join(root, "docs", "a.txt"), "docs/a.txt"},
		{"from subdir", sub, "../a.txt", "docs/a.txt"},
		{"missing file", n, "docs/new.txt", "docs/new.txt"},
		{"missing dirs", n, "x/y/z.txt", "x/y/z.txt"},
		{"root", n, ".", RootKey},
		{"empty", n, "", RootKey},
		{"root from subdir", sub, "../..", RootKey},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.n.Key(tc.in)
			if err != nil {
				t.Fatalf("Key(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("Key(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestKeyIsIdempotent(t *testing.T) {
	n, _ := newNormalizer(t)
	for _, in := range []string{"docs/a.txt", "docs/sub", "x/y.txt", "."} {
		first, err := n.Key(in)
		if err != nil {
			t.Fatalf("Key(%q): %v", in, err)
		}
		second, err := n.Key(first)
		if err != nil {
			t.Fatalf("Key(%q): %v", first, err)
		}
		if first != second {
			t.Fatalf("Key not idempotent: %q -> %q -> %q", in, first, second)
		}
	}
}

func TestKeyOutsideRoot(t *testing.T) {
	n, root := newNormalizer(t)
	for _, in := range []string{"..", "../other.txt", filepath.Dir(root)} {
		_, err := n.Key(in)
		if !errors.Is(err, ErrPathOutsideRoot) {
			t.Fatalf("Key(%q) error = %v, want ErrPathOutsideRoot", in, err)
		}
	}
}

func TestKeyResolvesSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	n, root := newNormalizer(t)
	if err := os.Symlink(filepath.Join(root, "docs"), filepath.Join(root, "link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	viaLink, err := n.Key("link/a.txt")
	if err != nil {
		t.Fatalf("Key via link: %v", err)
	}
	direct, err := n.Key("docs/a.txt")
	if err != nil {
		t.Fatalf("Key direct: %v", err)
	}
	if viaLink != direct {
		t.Fatalf("two spellings differ: %q vs %q", viaLink, direct)
	}

	// A symlink pointing outside the root resolves outside the root.
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if _, err := n.Key("escape/file"); !errors.Is(err, ErrPathOutsideRoot) {
		t.Fatalf("expected ErrPathOutsideRoot, got %v", err)
	}
}

func TestAbsAndDisplay(t *testing.T) {
	n, root := newNormalizer(t)
	if got := n.Abs("docs/a.txt"); got != filepath.Join(root, "docs", "a.txt") {
		t.Fatalf("Abs = %q", got)
	}
	if got := n.Abs(RootKey); got != root {
		t.Fatalf("Abs(root) = %q", got)
	}
	n.Cwd = filepath.Join(root, "docs")
	if got := n.Display("docs/a.txt"); got != "a.txt" {
		t.Fatalf("Display = %q", got)
	}
}

func TestKeyRejectsInvalidUTF8(t *testing.T) {
	n, root := newNormalizer(t)

	for _, in := range []string{
		"caf\xe9.txt",
		"docs/\xff/a.txt",
		filepath.Join(root, "docs", "bad\xfe"),
	} {
		if _, err := n.Key(in); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Key(%q) err = %v, want ErrInvalidPath", in, err)
		}
	}
	if got, err := n.Key("café.txt"); err != nil || got != "café.txt" {
		t.Fatalf("Key(café.txt) = %q, %v", got, err)
	}
}
