package fileset

import (
	"errors"
	"fmt"
	"os"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
)

// Remover abstracts the filesystem delete calls so tests can inject
// failures without relying on permissions (which root ignores).
type Remover interface {
	// Remove deletes a single file or symbolic link.
	Remove(path string) error
	// RemoveAll deletes a directory and its contents.
	RemoveAll(path string) error
}

// OSRemover deletes through the os package and core.RemoveTree.
type OSRemover struct{}

// Remove implements Remover.
func (OSRemover) Remove(path string) error { return os.Remove(path) }

// RemoveAll implements Remover.
func (OSRemover) RemoveAll(path string) error { return core.RemoveTree(path) }

// ErrNotConfirmed is returned by Delete when the caller has not obtained
// consent. Nothing is removed.
var ErrNotConfirmed = errors.New("deletion not confirmed")

// ErrProtected marks a matched path skipped because it is protected.
var ErrProtected = errors.New("path is protected")

// RemoveError records one entry that could not be removed.
type RemoveError struct {
	Path string
	Err  error
}

func (e RemoveError) Error() string {
	return fmt.Sprintf("remove %s: %v", e.Path, e.Err)
}

func (e RemoveError) Unwrap() error { return e.Err }
