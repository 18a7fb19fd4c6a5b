package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestKVRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	s := New(addr, os.Getenv("TEST_REDIS_PASSWORD"), 0, fmt.Sprintf("posdemo-it-%d:", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if _, found, err := s.Load(ctx, "pos_categories"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}
	if err := s.Save(ctx, "pos_categories", []byte(`["Storage"]`)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := s.Load(ctx, "pos_categories")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if string(got) != `["Storage"]` {
		t.Fatalf("unexpected value %s", got)
	}

	if err := s.Delete(ctx, "pos_categories"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := s.Load(ctx, "pos_categories"); found {
		t.Fatalf("expected key to be gone after delete")
	}
}
