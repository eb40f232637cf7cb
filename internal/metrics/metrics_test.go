package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lakshaymaurya-felt/reclaim/internal/session"
)

func TestObserveStep(t *testing.T) {
	r := NewRecorder()
	r.ObserveStep(session.Step{Key: "system-logs", Matched: 300, Freed: 200, Failures: 1})
	r.ObserveStep(session.Step{Key: "system-logs", Matched: 100, Freed: 100})
	r.ObserveStep(session.Step{Key: session.JournalKey, Freed: 1024})

	if got := testutil.ToFloat64(r.FreedBytes.WithLabelValues("system-logs")); got != 300 {
		t.Errorf("freed = %v, want 300", got)
	}
	if got := testutil.ToFloat64(r.MatchedBytes.WithLabelValues("system-logs")); got != 100 {
		t.Errorf("matched = %v, want 100", got)
	}
	if got := testutil.ToFloat64(r.RemovalFailures.WithLabelValues("system-logs")); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.FreedBytes.WithLabelValues(session.JournalKey)); got != 1024 {
		t.Errorf("journal freed = %v, want 1024", got)
	}
	if n := testutil.CollectAndCount(r.MatchedBytes); n != 1 {
		t.Errorf("matched series = %d, want 1 (journal has no match size)", n)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	r.ObserveStep(session.Step{Key: "cvp-rpms", Freed: 4096})

	path := filepath.Join(t.TempDir(), "textfile", "reclaim.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`reclaim_freed_bytes{category="cvp-rpms"} 4096`,
		"# TYPE reclaim_removal_failures_total counter",
		"reclaim_last_run_timestamp_seconds 1.7e+09",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}
