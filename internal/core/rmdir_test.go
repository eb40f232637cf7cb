package core

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRemoveTreeNested(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tree")
	writeFile(t, filepath.Join(root, "a.log"), 10)
	writeFile(t, filepath.Join(root, "x", "b.log"), 10)
	writeFile(t, filepath.Join(root, "x", "y", "z", "c.log"), 10)
	if err := os.MkdirAll(filepath.Join(root, "empty", "deeper"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := RemoveTree(root); err != nil {
		t.Fatalf("RemoveTree: %v", err)
	}
	if _, err := os.Lstat(root); !os.IsNotExist(err) {
		t.Errorf("root still exists: %v", err)
	}
}

func TestRemoveTreeMissingRoot(t *testing.T) {
	if err := RemoveTree(filepath.Join(t.TempDir(), "never-created")); err != nil {
		t.Errorf("RemoveTree on missing path = %v, want nil", err)
	}
}

func TestRemoveTreeDoesNotFollowSymlinks(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(base, "outside")
	writeFile(t, filepath.Join(outside, "keep.txt"), 42)

	root := filepath.Join(base, "tree")
	writeFile(t, filepath.Join(root, "junk.txt"), 1)
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}

	if err := RemoveTree(root); err != nil {
		t.Fatalf("RemoveTree: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outside, "keep.txt")); err != nil {
		t.Errorf("file behind symlink was removed: %v", err)
	}
}

func TestRemoveTreeOnFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "single.log")
	writeFile(t, p, 5)
	if err := RemoveTree(p); err != nil {
		t.Fatalf("RemoveTree: %v", err)
	}
	if _, err := os.Lstat(p); !os.IsNotExist(err) {
		t.Errorf("file still exists")
	}
}

func TestRemoveTreeEntriesVanishMidWalk(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tree")
	writeFile(t, filepath.Join(root, "keep.log"), 10)
	writeFile(t, filepath.Join(root, "gone.log"), 10)
	writeFile(t, filepath.Join(root, "sub", "deep", "c.log"), 10)

	// Another cleaner removes sub/ and gone.log right after the root has
	// been listed, before the walk reaches them.
	orig := readDir
	t.Cleanup(func() { readDir = orig })
	readDir = func(dir string) ([]fs.DirEntry, error) {
		entries, err := orig(dir)
		if dir == root {
			if err := os.RemoveAll(filepath.Join(root, "sub")); err != nil {
				t.Fatal(err)
			}
			if err := os.Remove(filepath.Join(root, "gone.log")); err != nil {
				t.Fatal(err)
			}
		}
		return entries, err
	}

	if err := RemoveTree(root); err != nil {
		t.Fatalf("RemoveTree: %v", err)
	}
	if _, err := os.Lstat(root); !os.IsNotExist(err) {
		t.Errorf("root still exists: %v", err)
	}
}
