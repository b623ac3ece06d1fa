package dsl

import (
	"testing"
	"time"

	"github.com/rushteam/truthkit/core"
)

func fp(f float64) *float64 { return &f }

func TestNewReviewFilter(t *testing.T) {
	f, err := NewReviewFilter("")
	if err != nil || f != nil {
		t.Fatalf("empty expr: got %v, %v; want nil, nil", f, err)
	}

	if _, err := NewReviewFilter("review.score >="); err == nil {
		t.Fatal("malformed expression should fail at compile time")
	}

	if f, err := NewReviewFilter("review.score != null"); err != nil || f == nil {
		t.Fatalf("valid expr: got %v, %v", f, err)
	}
}

func TestReviewFilter_Keep(t *testing.T) {
	ts := time.Date(2023, 10, 27, 15, 45, 0, 0, time.UTC)
	tests := []struct {
		name   string
		expr   string
		review *core.ReviewRecord
		want   bool
	}{
		{
			name:   "score threshold passes",
			expr:   "review.score != null && review.score >= 4.0",
			review: &core.ReviewRecord{UserID: "u", ItemID: "i", Score: fp(4.5)},
			want:   true,
		},
		{
			name:   "score threshold rejects",
			expr:   "review.score != null && review.score >= 4.0",
			review: &core.ReviewRecord{UserID: "u", ItemID: "i", Score: fp(3.0)},
			want:   false,
		},
		{
			name:   "missing score is null",
			expr:   "review.score == null",
			review: &core.ReviewRecord{UserID: "u", ItemID: "i", Status: "想看"},
			want:   true,
		},
		{
			name:   "status match",
			expr:   `review.status.contains("看过")`,
			review: &core.ReviewRecord{UserID: "u", ItemID: "i", Status: "看过"},
			want:   true,
		},
		{
			name:   "ts_unix cutoff",
			expr:   "review.ts_unix >= 1262304000",
			review: &core.ReviewRecord{UserID: "u", ItemID: "i", TS: &ts},
			want:   true,
		},
		{
			name:   "missing ts is zero unix",
			expr:   "review.ts_unix >= 1262304000",
			review: &core.ReviewRecord{UserID: "u", ItemID: "i"},
			want:   false,
		},
		{
			name:   "identity fields",
			expr:   `review.user_id == "u" && review.item_id == "i"`,
			review: &core.ReviewRecord{UserID: "u", ItemID: "i"},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewReviewFilter(tt.expr)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			got, err := f.Keep(tt.review)
			if err != nil {
				t.Fatalf("Keep: %v", err)
			}
			if got != tt.want {
				t.Errorf("Keep = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReviewFilter_NonBool(t *testing.T) {
	f, err := NewReviewFilter("review.user_id")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := f.Keep(&core.ReviewRecord{UserID: "u", ItemID: "i"}); err == nil {
		t.Fatal("non-boolean expression result should error at eval time")
	}
}

func TestReviewFilter_NilKeepsAll(t *testing.T) {
	var f *ReviewFilter
	keep, err := f.Keep(&core.ReviewRecord{UserID: "u", ItemID: "i"})
	if err != nil || !keep {
		t.Fatalf("nil filter: got %v, %v; want true, nil", keep, err)
	}
}
