// Package whitelist decides which paths must never be deleted.
package whitelist

import (
	"path/filepath"
	"strings"

	"github.com/IGLOU-EU/go-wildcard"
)

// neverDelete are system roots that no cleanup rule may remove, whatever the
// configured patterns say. Files below them are fine; the directories
// themselves are not.
var neverDelete = []string{
	"/",
	"/bin",
	"/boot",
	"/dev",
	"/etc",
	"/home",
	"/lib",
	"/lib64",
	"/opt",
	"/proc",
	"/root",
	"/run",
	"/sbin",
	"/srv",
	"/sys",
	"/tmp",
	"/usr",
	"/var",
	"/var/lib",
	"/var/log",
	"/var/log/journal",
}

// Whitelist holds user-supplied wildcard patterns plus the built-in
// never-delete list. The zero value protects only the built-in list.
type Whitelist struct {
	patterns []string
}

// New returns a Whitelist with the given wildcard patterns ("*" matches any
// run of characters, including "/").
func New(patterns ...string) *Whitelist {
	w := &Whitelist{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		w.patterns = append(w.patterns, p)
	}
	return w
}

// Patterns returns a copy of the user patterns.
func (w *Whitelist) Patterns() []string {
	if w == nil {
		return nil
	}
	return append([]string(nil), w.patterns...)
}

// IsProtected reports whether path is a never-delete root or matches one of
// the user patterns. A nil Whitelist still enforces the built-in list.
func (w *Whitelist) IsProtected(path string) bool {
	cleaned := filepath.Clean(path)
	for _, p := range neverDelete {
		if cleaned == p {
			return true
		}
	}
	if w == nil {
		return false
	}
	for _, pattern := range w.patterns {
		if wildcard.Match(pattern, cleaned) {
			return true
		}
	}
	return false
}

// NeverDelete returns the built-in protected roots.
func NeverDelete() []string {
	return append([]string(nil), neverDelete...)
}
