package journal

import (
	"errors"
	"testing"
)

func TestParseVacuumOutput(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    int64
		wantErr error
	}{
		{"bytes", "Vacuuming done, freed 512B of archived journals from /var/log/journal.", 512, nil},
		{"kilobytes", "freed 4.0K of archived journals", 4096, nil},
		{"megabytes", "Vacuuming done, freed 1.5M of archived journals from /var/log/journal/abc.", 1572864, nil},
		{"gigabytes", "freed 2G of archived journals", 2 << 30, nil},
		{"rounding", "freed 1.3K of archived journals", 1331, nil},
		{"zero", "Vacuuming done, freed 0B of archived journals from /run/log/journal.", 0, nil},
		{
			"several directories summed",
			"Deleted archived journal /var/log/journal/x/system@1.journal (8.0M).\n" +
				"Vacuuming done, freed 8.0M of archived journals from /var/log/journal/x.\n" +
				"Vacuuming done, freed 0B of archived journals from /run/log/journal.\n" +
				"Vacuuming done, freed 512K of archived journals from /var/log/journal.\n",
			8<<20 + 512<<10,
			nil,
		},
		{"no report", "Failed to open journal directory: permission denied", 0, ErrNoFreedReport},
		{"empty", "", 0, ErrNoFreedReport},
		{"terabytes unknown", "freed 1.0T of archived journals", 0, ErrUnknownUnit},
		{"missing unit", "freed 12 of archived journals", 0, ErrUnknownUnit},
		{
			"unknown unit keeps the rest",
			"freed 1.0X of archived journals\nfreed 1K of archived journals\n",
			1024,
			ErrUnknownUnit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVacuumOutput(tt.output)
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
