package conv

import (
	"testing"
	"time"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{name: "plain float", in: "8.7", want: f(8.7)},
		{name: "integer", in: "4", want: f(4)},
		{name: "surrounding spaces", in: "  3.5 ", want: f(3.5)},
		{name: "empty", in: "", want: nil},
		{name: "garbage", in: "N/A", want: nil},
		{name: "mixed text", in: "8.7分", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFloat(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseFloat(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("ParseFloat(%q) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *int64
	}{
		{name: "plain", in: "12345", want: i64(12345)},
		{name: "thousand separators", in: "1,234,567", want: i64(1234567)},
		{name: "text around digits", in: "1234人评价", want: i64(1234)},
		{name: "empty", in: "", want: nil},
		{name: "no digits", in: "暂无", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCount(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseCount(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("ParseCount(%q) = %d, want %d", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // 空串表示期望 nil
	}{
		{name: "datetime", in: "2023-10-27 15:45:00", want: "2023-10-27T15:45:00Z"},
		{name: "date only", in: "2023-10-27", want: "2023-10-27T00:00:00Z"},
		{name: "slash with minutes", in: "2023/10/27 15:45", want: "2023-10-27T15:45:00Z"},
		{name: "slash date", in: "2023/10/27", want: "2023-10-27T00:00:00Z"},
		{name: "unknown format", in: "27 Oct 2023", want: ""},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTime(tt.in)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("ParseTime(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseTime(%q) = nil, want %s", tt.in, tt.want)
			}
			if got.Format(time.RFC3339) != tt.want {
				t.Fatalf("ParseTime(%q) = %s, want %s", tt.in, got.Format(time.RFC3339), tt.want)
			}
		})
	}
}

func f(v float64) *float64 { return &v }
func i64(v int64) *int64   { return &v }
