package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_GetSet(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: got %v, want ErrNotFound", err)
	}

	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	v, err := m.Get(ctx, "k")
	if err != nil || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, err)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted key: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("before expiry: %v", err)
	}

	// 直接拨快过期时间，避免在测试里真睡一秒
	m.mu.Lock()
	past := time.Now().Add(-time.Second)
	m.data["k"].expireAt = &past
	m.mu.Unlock()

	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after expiry: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Batch(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if err := m.BatchSet(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}); err != nil {
		t.Fatal(err)
	}
	got, err := m.BatchGet(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("BatchGet = %v", got)
	}
}

func TestMemoryStore_ZSet(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	// 同分成员按字典序定序
	m.ZAdd(ctx, "rank", 3.5, "b")
	m.ZAdd(ctx, "rank", 4.2, "c")
	m.ZAdd(ctx, "rank", 3.5, "a")

	top, err := m.ZRange(ctx, "rank", 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if top[i] != want[i] {
			t.Fatalf("ZRange = %v, want %v", top, want)
		}
	}

	top, err = m.ZRange(ctx, "rank", 0, 1)
	if err != nil || len(top) != 2 || top[0] != "c" {
		t.Fatalf("ZRange(0,1) = %v, %v", top, err)
	}

	// 覆盖写更新 score
	m.ZAdd(ctx, "rank", 5.0, "a")
	if s, _ := m.ZScore(ctx, "rank", "a"); s != 5.0 {
		t.Fatalf("ZScore after update = %v", s)
	}

	if _, err := m.ZScore(ctx, "rank", "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing member: got %v", err)
	}
	if got, err := m.ZRange(ctx, "nope", 0, -1); err != nil || got != nil {
		t.Fatalf("missing zset: %v, %v", got, err)
	}
}

func TestMemoryStore_Hash(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if err := m.HSet(ctx, "h", "f1", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	m.HSet(ctx, "h", "f2", []byte("v2"))

	v, err := m.HGet(ctx, "h", "f1")
	if err != nil || string(v) != "v1" {
		t.Fatalf("HGet = %q, %v", v, err)
	}
	if _, err := m.HGet(ctx, "h", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing field: got %v", err)
	}

	all, err := m.HGetAll(ctx, "h")
	if err != nil || len(all) != 2 {
		t.Fatalf("HGetAll = %v, %v", all, err)
	}
	if all, _ := m.HGetAll(ctx, "nope"); len(all) != 0 {
		t.Fatalf("missing hash should be empty map, got %v", all)
	}

	// Delete 连带清理同名 zset/hash
	m.Delete(ctx, "h")
	if _, err := m.HGet(ctx, "h", "f1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: got %v", err)
	}
}
