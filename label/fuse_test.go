package label

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/pkg/dsl"
)

func f(v float64) *float64 { return &v }

func ts(s string) *time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return &t
}

func runBuilder(t *testing.T, b *Builder, reviews []*core.ReviewRecord) []*core.Interaction {
	t.Helper()
	out, err := b.Process(context.Background(), &core.Dataset{Reviews: reviews})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	return out.Interactions
}

func TestBuilder_ExplicitThresholds(t *testing.T) {
	tests := []struct {
		name    string
		score   float64
		wantRow bool
		wantY   int
	}{
		{name: "positive at boundary", score: 4.0, wantRow: true, wantY: 1},
		{name: "positive above", score: 5.0, wantRow: true, wantY: 1},
		{name: "negative at boundary", score: 2.0, wantRow: true, wantY: 0},
		{name: "negative below", score: 0.5, wantRow: true, wantY: 0},
		{name: "ambiguous middle dropped", score: 3.0, wantRow: false},
		{name: "just above negative dropped", score: 2.5, wantRow: false},
		{name: "just below positive dropped", score: 3.9, wantRow: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := runBuilder(t, &Builder{}, []*core.ReviewRecord{
				{UserID: "u1", ItemID: "m1", Score: f(tt.score), TS: ts("2023-01-01 00:00:00")},
			})
			if !tt.wantRow {
				if len(rows) != 0 {
					t.Fatalf("score %v: got %d rows, want 0", tt.score, len(rows))
				}
				return
			}
			if len(rows) != 1 {
				t.Fatalf("score %v: got %d rows, want 1", tt.score, len(rows))
			}
			it := rows[0]
			if it.Y != tt.wantY {
				t.Errorf("y = %d, want %d", it.Y, tt.wantY)
			}
			if it.Weight != 1.0 {
				t.Errorf("weight = %v, want 1.0", it.Weight)
			}
			if it.Source != core.LabelSourceExplicit {
				t.Errorf("source = %s, want explicit_rating", it.Source)
			}
			if it.RawScore == nil || *it.RawScore != tt.score {
				t.Errorf("raw_score = %v, want %v", it.RawScore, tt.score)
			}
		})
	}
}

func TestBuilder_ImplicitMarkers(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantRow    bool
		wantWeight float64
	}{
		{name: "want to watch", status: "想看", wantRow: true, wantWeight: 0.3},
		{name: "watched", status: "看过", wantRow: true, wantWeight: 0.6},
		{name: "unknown marker still weak positive", status: "未知", wantRow: true, wantWeight: 0.1},
		{name: "marker inside longer text", status: "2023年想看的片子", wantRow: true, wantWeight: 0.3},
		{name: "unrecognized dropped", status: "在看", wantRow: false},
		{name: "empty dropped", status: "", wantRow: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := runBuilder(t, &Builder{}, []*core.ReviewRecord{
				{UserID: "u1", ItemID: "m1", Status: tt.status, TS: ts("2023-01-01 00:00:00")},
			})
			if !tt.wantRow {
				if len(rows) != 0 {
					t.Fatalf("status %q: got %d rows, want 0", tt.status, len(rows))
				}
				return
			}
			if len(rows) != 1 {
				t.Fatalf("status %q: got %d rows, want 1", tt.status, len(rows))
			}
			it := rows[0]
			if it.Y != 1 {
				t.Errorf("y = %d, want 1 (implicit path never yields negatives)", it.Y)
			}
			if it.Weight != tt.wantWeight {
				t.Errorf("weight = %v, want %v", it.Weight, tt.wantWeight)
			}
			if it.Source != core.LabelSourceImplicit {
				t.Errorf("source = %s, want implicit_status", it.Source)
			}
			if it.RawScore != nil {
				t.Errorf("raw_score = %v, want nil for implicit rows", *it.RawScore)
			}
		})
	}
}

func TestBuilder_ScoreTakesExplicitPath(t *testing.T) {
	// 有评分的行即使带状态词也只走显式路径
	rows := runBuilder(t, &Builder{}, []*core.ReviewRecord{
		{UserID: "u1", ItemID: "m1", Score: f(3.0), Status: "看过", TS: ts("2023-01-01 00:00:00")},
	})
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0 (ambiguous explicit score wins over status)", len(rows))
	}
}

func TestBuilder_DedupeKeepsLatest(t *testing.T) {
	rows := runBuilder(t, &Builder{}, []*core.ReviewRecord{
		{UserID: "u1", ItemID: "m1", Status: "想看", TS: ts("2023-01-01 00:00:00")},
		{UserID: "u1", ItemID: "m1", Score: f(5.0), TS: ts("2023-06-01 00:00:00")},
		{UserID: "u1", ItemID: "m2", Score: f(1.0), TS: ts("2023-02-01 00:00:00")},
	})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	byItem := make(map[string]*core.Interaction)
	for _, it := range rows {
		if prev, ok := byItem[it.ItemID]; ok {
			t.Fatalf("duplicate (user,item) pair survived merge: %+v / %+v", prev, it)
		}
		byItem[it.ItemID] = it
	}

	m1 := byItem["m1"]
	if m1.Source != core.LabelSourceExplicit || m1.Y != 1 {
		t.Errorf("m1: latest signal (explicit 5.0) should win, got source=%s y=%d", m1.Source, m1.Y)
	}
}

func TestBuilder_MissingTimestampSentinel(t *testing.T) {
	// 无时间的行兜底到 epoch，排为最旧：去重时输给任何有时间的行
	rows := runBuilder(t, &Builder{}, []*core.ReviewRecord{
		{UserID: "u1", ItemID: "m1", Score: f(5.0)},
		{UserID: "u1", ItemID: "m1", Score: f(1.0), TS: ts("2001-01-01 00:00:00")},
	})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Y != 0 {
		t.Errorf("timestamped row should win over epoch-sentinel row, got y=%d", rows[0].Y)
	}

	rows = runBuilder(t, &Builder{}, []*core.ReviewRecord{
		{UserID: "u2", ItemID: "m1", Score: f(5.0)},
	})
	if got := rows[0].TS; !got.Equal(core.EpochSentinel) {
		t.Errorf("missing ts resolved to %v, want epoch sentinel", got)
	}
}

func TestBuilder_WithFilter(t *testing.T) {
	filter, err := dsl.NewReviewFilter(`review.item_id != "m2"`)
	if err != nil {
		t.Fatalf("NewReviewFilter: %v", err)
	}
	rows := runBuilder(t, &Builder{Filter: filter}, []*core.ReviewRecord{
		{UserID: "u1", ItemID: "m1", Score: f(5.0), TS: ts("2023-01-01 00:00:00")},
		{UserID: "u1", ItemID: "m2", Score: f(5.0), TS: ts("2023-01-01 00:00:00")},
	})
	if len(rows) != 1 || rows[0].ItemID != "m1" {
		t.Fatalf("filter should drop m2, got %d rows", len(rows))
	}
}

func TestBuilder_CustomMarkers(t *testing.T) {
	b := &Builder{Markers: []StatusWeight{{Marker: "watchlist", Weight: 0.5}}}
	rows := runBuilder(t, b, []*core.ReviewRecord{
		{UserID: "u1", ItemID: "m1", Status: "on my watchlist", TS: ts("2023-01-01 00:00:00")},
		{UserID: "u1", ItemID: "m2", Status: "想看", TS: ts("2023-01-01 00:00:00")},
	})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (default markers replaced)", len(rows))
	}
	if rows[0].ItemID != "m1" || rows[0].Weight != 0.5 {
		t.Fatalf("got %+v, want m1 with weight 0.5", rows[0])
	}
}
