package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ─── Pattern validation ──────────────────────────────────────────────────────

// validatePattern checks that pattern is a well-formed filepath.Match
// pattern that can match a single path element.
func validatePattern(pattern string) error {
	if pattern == "" {
		return errors.New("empty pattern")
	}
	if strings.ContainsRune(pattern, filepath.Separator) {
		return fmt.Errorf("pattern %q must not contain %q", pattern, filepath.Separator)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}
	return nil
}

// validateDirectory checks a root directory entry, which may itself hold
// glob metacharacters (e.g. "/tmp/upgrade*").
func validateDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty directory")
	}
	if _, err := filepath.Match(dir, ""); err != nil {
		return fmt.Errorf("directory %q: %w", dir, err)
	}
	return nil
}

// ─── Discovery ───────────────────────────────────────────────────────────────

// expandRoots resolves a configured directory into the existing paths it
// names. Plain directories are returned as-is (absolute); globs are
// expanded. Nothing is returned for paths that do not exist.
func expandRoots(dir string) []string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	if !hasMeta(abs) {
		if _, err := os.Lstat(abs); err != nil {
			return nil
		}
		return []string{abs}
	}
	matches, err := filepath.Glob(abs)
	if err != nil {
		return nil
	}
	return matches
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[\`)
}

// matchName applies pattern to an entry name with shell-glob rules: a
// leading dot must be matched explicitly.
func matchName(pattern, name string) bool {
	if strings.HasPrefix(name, ".") && !strings.HasPrefix(pattern, ".") {
		return false
	}
	ok, _ := filepath.Match(pattern, name)
	return ok
}

// walkRoot matches every pattern against the entries of root and, when
// recursive, of all nested subdirectories with no depth limit. Results are
// bucketed per pattern in walk (lexical) order. Hidden and symlinked
// directories are never descended. Unreadable subtrees are reported through
// onErr and skipped.
func walkRoot(root string, patterns []string, recursive bool, onErr func(path string, err error)) [][]string {
	buckets := make([][]string, len(patterns))

	// The root itself may be a symlink to a directory; following it once is
	// what the configuration asked for. WalkDir does not, so walk the target
	// and report paths under the configured name.
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return buckets
	}
	walkFrom := root
	if real, err := filepath.EvalSymlinks(root); err == nil {
		walkFrom = real
	}

	_ = filepath.WalkDir(walkFrom, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == walkFrom {
				return fs.SkipDir
			}
			if !errors.Is(err, fs.ErrNotExist) {
				onErr(path, err)
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == walkFrom {
			return nil
		}

		name := d.Name()
		for i, pattern := range patterns {
			if matchName(pattern, name) {
				buckets[i] = append(buckets[i], underRoot(root, walkFrom, path))
			}
		}

		if d.IsDir() && (!recursive || strings.HasPrefix(name, ".")) {
			return fs.SkipDir
		}
		return nil
	})
	return buckets
}

func underRoot(root, walkFrom, path string) string {
	if root == walkFrom {
		return path
	}
	rel, err := filepath.Rel(walkFrom, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

// ─── Path identity ───────────────────────────────────────────────────────────

// resolver maps a path to its identity: the parent directory with symlinks
// resolved, joined with the unresolved base name. Two configured roots that
// alias the same directory therefore yield the same key, while a matched
// symlink stays distinct from its target.
type resolver struct {
	parents map[string]string
}

func newResolver() *resolver {
	return &resolver{parents: make(map[string]string)}
}

func (r *resolver) key(path string) string {
	dir, base := filepath.Split(filepath.Clean(path))
	dir = filepath.Clean(dir)
	resolved, ok := r.parents[dir]
	if !ok {
		resolved = dir
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			resolved = real
		}
		r.parents[dir] = resolved
	}
	return filepath.Join(resolved, base)
}

// dedupe keeps the first occurrence of every path identity, preserving order.
func dedupe(r *resolver, paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		k := r.key(p)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ─── Size accounting ─────────────────────────────────────────────────────────

// measure sums the bytes covered by paths. Non-directories count their own
// Lstat size (links are not followed). A matched directory counts every
// non-directory below it. Each underlying entry is counted once even when
// reached through several matches. Entries that vanished since the scan
// count as zero.
func measure(r *resolver, paths []string) int64 {
	counted := make(map[string]struct{})
	var total int64

	add := func(path string, size int64) {
		k := r.key(path)
		if _, dup := counted[k]; dup {
			return
		}
		counted[k] = struct{}{}
		total += size
	}

	for _, p := range paths {
		info, err := os.Lstat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			add(p, info.Size())
			continue
		}
		_ = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != p {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return nil
			}
			add(path, fi.Size())
			return nil
		})
	}
	return total
}

// hasFiles reports whether any non-directory entry exists below dir.
func hasFiles(dir string) (bool, error) {
	found := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found, err
}
