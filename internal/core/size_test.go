package core

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0B"},
		{-5, "0B"},
		{1, "1.0 B"},
		{100, "100.0 B"},
		{1023, "1023.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1500, "1.46 KB"},
		{1048576, "1.0 MB"},
		{1288490189, "1.2 GB"},
		{1 << 40, "1.0 TB"},
		{1 << 50, "1.0 PB"},
		{1 << 60, "1.0 EB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFreedString(t *testing.T) {
	var total Freed
	total += Freed(1024)
	total += Freed(512)
	if total.Bytes() != 1536 {
		t.Fatalf("Bytes() = %d, want 1536", total.Bytes())
	}
	if total.String() != "1.5 KB" {
		t.Errorf("String() = %q, want %q", total.String(), "1.5 KB")
	}
}
