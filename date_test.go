package rescuefat

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{
			name:  "epoch start",
			input: 1<<5 | 1, // 01/01/1980
			want:  time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "ordinary date",
			input: 42<<9 | 3<<5 | 14, // 14/03/2022
			want:  time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "last representable year",
			input: 127<<9 | 12<<5 | 31,
			want:  time.Date(2107, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "zero day is invalid",
			input: 42<<9 | 3<<5 | 0,
			want:  time.Time{},
		},
		{
			name:  "zero month is invalid",
			input: 42<<9 | 0<<5 | 14,
			want:  time.Time{},
		},
		{
			name:  "all zero",
			input: 0,
			want:  time.Time{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{
			name:  "midnight",
			input: 0,
			want:  time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "ordinary time",
			input: 15<<11 | 9<<5 | 13, // 15:09:26
			want:  time.Date(1, 1, 1, 15, 9, 26, 0, time.UTC),
		},
		{
			name:  "two second granularity",
			input: 1, // 00:00:02
			want:  time.Date(1, 1, 1, 0, 0, 2, 0, time.UTC),
		},
		{
			name:  "end of day",
			input: 23<<11 | 59<<5 | 29,
			want:  time.Date(1, 1, 1, 23, 59, 58, 0, time.UTC),
		},
		{
			name:  "overflowing values are clamped",
			input: 31<<11 | 63<<5 | 31,
			want:  time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTime(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseTime() = %v, want %v", got, tt.want)
			}
		})
	}
}
