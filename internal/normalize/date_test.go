package normalize

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Time
		wantOK bool
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), true},
		{"2024-03-15T10:30:00Z", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), true},
		{"2024-03-15, 10:30:00", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"3/5/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"03/15/2024 as of 03/14/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15.03.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15-03-2024 09:00", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"20240315", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{`"2024-01-02"`, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"13/45/2024", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
