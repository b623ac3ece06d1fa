package sink

import (
	"context"
	"testing"

	"github.com/goccy/go-json"

	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/store"
)

func TestStorePublisher(t *testing.T) {
	mem := store.NewMemoryStore()
	p := &StorePublisher{Store: mem}

	ds := sampleDataset()
	if _, err := p.Process(context.Background(), ds); err != nil {
		t.Fatalf("Process: %v", err)
	}

	ctx := context.Background()

	// 有序集合按 s_hat 降序给出 TopN 榜单
	top, err := mem.ZRange(ctx, "quality:items", 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0] != "tt001" || top[1] != "tt002" {
		t.Errorf("top list = %v", top)
	}

	score, err := mem.ZScore(ctx, "quality:items", "tt001")
	if err != nil || score != 4.426 {
		t.Errorf("ZScore = %v, %v", score, err)
	}

	// 哈希表存完整质量行
	raw, err := mem.HGet(ctx, "quality:meta", "tt001")
	if err != nil {
		t.Fatal(err)
	}
	var entry struct {
		ItemID string  `json:"item_id"`
		SHat   float64 `json:"s_hat"`
		Title  string  `json:"title"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		t.Fatal(err)
	}
	if entry.ItemID != "tt001" || entry.SHat != 4.426 || entry.Title != "盗梦空间" {
		t.Errorf("meta entry = %+v", entry)
	}
}

func TestStorePublisher_KeyPrefix(t *testing.T) {
	mem := store.NewMemoryStore()
	p := &StorePublisher{Store: mem, KeyPrefix: "truth:v2"}

	if _, err := p.Process(context.Background(), sampleDataset()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	top, err := mem.ZRange(context.Background(), "truth:v2:items", 0, -1)
	if err != nil || len(top) != 2 {
		t.Errorf("prefixed key: top = %v, err = %v", top, err)
	}
}

func TestStorePublisher_Validation(t *testing.T) {
	p := &StorePublisher{}
	if _, err := p.Process(context.Background(), sampleDataset()); !core.IsInvalidInput(err) {
		t.Fatalf("nil store: got %v, want invalid input", err)
	}

	p = &StorePublisher{Store: store.NewMemoryStore()}
	if _, err := p.Process(context.Background(), &core.Dataset{}); !core.IsInvalidInput(err) {
		t.Fatalf("missing quality table: got %v, want invalid input", err)
	}
}
