package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// RemoveTree deletes the directory at root and everything below it.
//
// The walk is depth-first: every non-directory entry is removed before its
// parent, subdirectories are removed bottom-up and root goes last. Symbolic
// links are removed as links and never followed, so nothing outside the
// subtree is touched. Entries that disappear while the walk is running
// (another process cleaning the same tree) count as removed.
//
// Failures do not stop the walk. They are collected and returned joined;
// a nil error means the whole subtree is gone.
func RemoveTree(root string) error {
	info, err := os.Lstat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	// A link or plain file handed in as root is simply unlinked.
	if !info.IsDir() {
		return ignoreMissing(os.Remove(root))
	}

	var errs []error
	removeChildren(root, &errs)
	if err := ignoreMissing(os.Remove(root)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// readDir is swapped in tests to make entries vanish mid-walk.
var readDir = os.ReadDir

func removeChildren(dir string, errs *[]error) {
	entries, err := readDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			*errs = append(*errs, fmt.Errorf("read %s: %w", dir, err))
		}
		return
	}

	// Files and links first, then recurse into subdirectories.
	var subdirs []string
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			subdirs = append(subdirs, p)
			continue
		}
		if err := ignoreMissing(os.Remove(p)); err != nil {
			*errs = append(*errs, err)
		}
	}

	for _, sub := range subdirs {
		removeChildren(sub, errs)
		if err := ignoreMissing(os.Remove(sub)); err != nil {
			*errs = append(*errs, err)
		}
	}
}

func ignoreMissing(err error) error {
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
