package config

import (
	"fmt"
	"sort"
	"strings"
)

// Category is a named group of files that can be cleaned.
type Category struct {
	// Key is the unique identifier used on the command line, e.g. "cvp-logs".
	Key string `json:"key"`

	// Name is the human-readable label, e.g. "CVP Rotated logs".
	Name string `json:"name"`

	// Description is shown by the categories command.
	Description string `json:"description,omitempty"`

	// Directories are searched for Patterns. Entries may be globs.
	Directories []string `json:"directories"`

	// Patterns are matched against entry names.
	Patterns []string `json:"patterns"`

	// Recursive extends matching to nested directories.
	Recursive bool `json:"recursive"`

	// RemoveDirectories removes emptied roots after cleaning.
	RemoveDirectories bool `json:"remove_directories,omitempty"`

	// Group is one of "system", "cvp" or "kubelet".
	Group string `json:"group,omitempty"`

	// Default marks categories cleaned by clean --all.
	Default bool `json:"default,omitempty"`

	// Risky categories hold files still in use; cleaning them warns first.
	Risky bool `json:"risky,omitempty"`
}

// Kubelet log levels accepted by KubeletKey.
var KubeletLevels = []string{"all", "info", "warning", "error"}

// KubeletKey maps a kubelet log level to its category key.
func KubeletKey(level string) (string, error) {
	level = strings.ToLower(level)
	for _, l := range KubeletLevels {
		if l == level {
			return "kubelet-" + l, nil
		}
	}
	return "", fmt.Errorf("unknown kubelet log level %q (want one of %s)", level, strings.Join(KubeletLevels, ", "))
}

// cvpLogDirs returns every directory CVP writes logs to.
func cvpLogDirs() []string {
	return []string{
		"/cvpi/logs",
		"/cvpi/hadoop/logs",
		"/cvpi/hbase/logs",
		"/cvpi/apps/turbine/logs",
		"/cvpi/apps/aeris/logs",
		"/cvpi/apps/cvp/logs",
	}
}

// GetCategories returns the built-in categories in menu order.
func GetCategories() []Category {
	return []Category{
		// ── System ──────────────────────────────────────────────
		{
			Key:         "system-logs",
			Name:        "System logs",
			Description: "Compressed and rotated logs under /var/log",
			Directories: []string{"/var/log"},
			Patterns:    []string{"*.gz", "*.[0-9]"},
			Recursive:   true,
			Group:       "system",
			Default:     true,
		},
		{
			Key:         "system-crash",
			Name:        "System crash files",
			Description: "Kernel and application crash dumps",
			Directories: []string{"/var/crash"},
			Patterns:    []string{"*"},
			Recursive:   true,
			Group:       "system",
			Default:     true,
		},

		// ── CVP ─────────────────────────────────────────────────
		{
			Key:         "cvp-logs",
			Name:        "CVP Rotated logs",
			Description: "Rotated CVP service logs",
			Directories: cvpLogDirs(),
			Patterns:    []string{"*.log.*", "*.out.*", "*.gc.*", "*.gz", "*.[0-9]"},
			Recursive:   true,
			Group:       "cvp",
			Default:     true,
		},
		{
			Key:         "cvp-current-logs",
			Name:        "CVP Current logs",
			Description: "Logs CVP is still writing; restart CVP afterwards",
			Directories: cvpLogDirs(),
			Patterns:    []string{"*.log", "*.out", "*.gc"},
			Recursive:   true,
			Group:       "cvp",
			Risky:       true,
		},
		{
			Key:         "cvp-images",
			Name:        "CVP docker images",
			Description: "Saved docker image archives",
			Directories: []string{"/cvpi/docker"},
			Patterns:    []string{"*.gz"},
			Recursive:   true,
			Group:       "cvp",
			Default:     true,
		},
		{
			Key:         "cvp-rpms",
			Name:        "CVP RPMs",
			Description: "Installer RPM packages",
			Directories: []string{"/RPMS"},
			Patterns:    []string{"*.rpm"},
			Recursive:   true,
			Group:       "cvp",
			Default:     true,
		},
		{
			Key:         "cvp-esdumps",
			Name:        "CVP Elasticsearch Heap Dumps",
			Description: "Elasticsearch .hprof heap dumps",
			Directories: []string{"/cvpi/apps/aeris/elasticsearch"},
			Patterns:    []string{"*.hprof"},
			Recursive:   true,
			Group:       "cvp",
			Default:     true,
		},
		{
			Key:               "cvp-tmpupgrade",
			Name:              "Temporary upgrade files",
			Description:       "Leftover /tmp/upgrade* directories",
			Directories:       []string{"/tmp/upgrade*"},
			Patterns:          []string{"*"},
			Recursive:         true,
			RemoveDirectories: true,
			Group:             "cvp",
			Default:           true,
		},

		// ── Kubelet ─────────────────────────────────────────────
		kubelet("all", "kubelet.*.root.log.*", true),
		kubelet("info", "kubelet.*.root.log.INFO.*", false),
		kubelet("warning", "kubelet.*.root.log.WARNING.*", false),
		kubelet("error", "kubelet.*.root.log.ERROR.*", false),
	}
}

func kubelet(level, pattern string, def bool) Category {
	label := strings.ToUpper(level[:1]) + level[1:]
	return Category{
		Key:         "kubelet-" + level,
		Name:        "Kubelet Logs - " + label,
		Description: "Rotated kubelet logs (" + level + ")",
		Directories: []string{"/var/log"},
		Patterns:    []string{pattern},
		Recursive:   true,
		Group:       "kubelet",
		Default:     def,
	}
}

// GetCategoriesByGroup returns categories filtered by group.
func GetCategoriesByGroup(categories []Category, group string) []Category {
	var result []Category
	for _, c := range categories {
		if c.Group == group {
			result = append(result, c)
		}
	}
	return result
}

// mergeCategories overlays custom on base: entries with a known key replace
// the preset in place, new keys are appended in file order.
func mergeCategories(base, custom []Category) []Category {
	out := append([]Category(nil), base...)
	index := make(map[string]int, len(out))
	for i, c := range out {
		index[c.Key] = i
	}
	for _, c := range custom {
		if i, ok := index[c.Key]; ok {
			out[i] = c
			continue
		}
		index[c.Key] = len(out)
		out = append(out, c)
	}
	return out
}

// Keys returns the sorted category keys.
func Keys(categories []Category) []string {
	keys := make([]string, 0, len(categories))
	for _, c := range categories {
		keys = append(keys, c.Key)
	}
	sort.Strings(keys)
	return keys
}
