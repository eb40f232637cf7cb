package whitelist

import "testing"

func TestIsProtected(t *testing.T) {
	w := New("/var/log/audit*", "  ", "*/keep-me")

	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/var/log", true},
		{"/var/log/", true},
		{"/var/log/syslog.1", false},
		{"/var/log/audit", true},
		{"/var/log/audit/audit.log.1", true},
		{"/data/x/keep-me", true},
		{"/data/x/keep-me-not", false},
		{"/tmp/upgrade-1", false},
	}
	for _, tt := range tests {
		if got := w.IsProtected(tt.path); got != tt.want {
			t.Errorf("IsProtected(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if n := len(w.Patterns()); n != 2 {
		t.Errorf("blank pattern kept: %d patterns", n)
	}
}

func TestNilWhitelistKeepsBuiltins(t *testing.T) {
	var w *Whitelist
	if !w.IsProtected("/etc") {
		t.Error("nil whitelist must still protect /etc")
	}
	if w.IsProtected("/var/crash/core.1") {
		t.Error("nil whitelist protected an ordinary file")
	}
}

func TestNeverDeleteReturnsCopy(t *testing.T) {
	roots := NeverDelete()
	if len(roots) == 0 || roots[0] != "/" {
		t.Fatalf("NeverDelete() = %v", roots)
	}
	roots[0] = "/nowhere"
	if !New().IsProtected("/") {
		t.Error("modifying the returned slice changed the built-in list")
	}
}
