package status

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sync/errgroup"

	"github.com/lakshaymaurya-felt/reclaim/internal/session"
)

// DiskUsage is the usage of one mounted filesystem.
type DiskUsage struct {
	Mountpoint  string  `json:"mountpoint"`
	Fstype      string  `json:"fstype"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// CategorySummary is what one category currently matches.
type CategorySummary struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Files int    `json:"files"`
	Size  int64  `json:"size"`
	Risky bool   `json:"risky,omitempty"`
}

// Report is one snapshot for the status view.
type Report struct {
	Disks      []DiskUsage       `json:"disks"`
	Categories []CategorySummary `json:"categories"`
	Reclaim    int64             `json:"reclaimable"`
	Collected  time.Time         `json:"collected"`
}

// Seams for tests.
var (
	usageFn      = disk.UsageWithContext
	partitionsFn = disk.PartitionsWithContext
)

// maxScans bounds how many categories are scanned at once.
const maxScans = 4

// Collect rescans every category of sess and gathers usage for the
// filesystems behind their directories. Categories and filesystems are
// collected concurrently; the snapshot keeps configured order.
func Collect(ctx context.Context, sess *session.Session) (*Report, error) {
	entries := sess.Categories()
	summaries := make([]CategorySummary, len(entries))

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Category.Directories...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxScans)

	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.Set.Refresh()
			summaries[i] = CategorySummary{
				Key:   e.Category.Key,
				Name:  e.Category.Name,
				Files: len(e.Set.List()),
				Size:  e.Set.Size(),
				Risky: e.Category.Risky,
			}
			return nil
		})
	}

	var disks []DiskUsage
	g.Go(func() error {
		var err error
		disks, err = CollectDisks(gctx, paths)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &Report{Disks: disks, Categories: summaries, Collected: time.Now()}
	for _, c := range summaries {
		if !c.Risky {
			r.Reclaim += c.Size
		}
	}
	return r, nil
}

// CollectDisks returns usage for the distinct filesystems holding paths,
// sorted by mount point. Paths may be globs or not exist yet; the nearest
// existing ancestor is used.
func CollectDisks(ctx context.Context, paths []string) ([]DiskUsage, error) {
	var mounts []string
	if parts, err := partitionsFn(ctx, false); err == nil {
		for _, p := range parts {
			mounts = append(mounts, p.Mountpoint)
		}
	}

	targets := make(map[string]bool)
	for _, p := range paths {
		targets[mountFor(existingAncestor(p), mounts)] = true
	}
	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]DiskUsage, len(keys))
	ok := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, mp := range keys {
		g.Go(func() error {
			u, err := usageFn(gctx, mp)
			if err != nil {
				// A vanished mount is not worth failing the view for.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return nil
			}
			out[i] = DiskUsage{
				Mountpoint:  mp,
				Fstype:      u.Fstype,
				Total:       u.Total,
				Used:        u.Used,
				Free:        u.Free,
				UsedPercent: u.UsedPercent,
			}
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result []DiskUsage
	for i := range out {
		if ok[i] {
			result = append(result, out[i])
		}
	}
	return result, nil
}

// existingAncestor strips glob components and walks up until a path exists.
func existingAncestor(path string) string {
	p := filepath.Clean(path)
	if i := strings.IndexAny(p, `*?[\`); i >= 0 {
		p = filepath.Dir(p[:i] + "x")
	}
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}

// mountFor returns the longest mount point containing path, or path itself
// when no mount table is available.
func mountFor(path string, mounts []string) string {
	best := ""
	for _, m := range mounts {
		if m == path || m == "/" || strings.HasPrefix(path, strings.TrimSuffix(m, "/")+"/") {
			if len(m) > len(best) {
				best = m
			}
		}
	}
	if best == "" {
		return path
	}
	return best
}
