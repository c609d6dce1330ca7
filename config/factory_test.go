package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/pipeline"
	"github.com/rushteam/auctionrec/store"
)

const pipelineYAML = `
pipeline:
  name: auction_feed
  nodes:
    - type: recall.catalog
      config:
        category: camera
    - type: filter
      config:
        ended: true
        interacted: true
        own_listing: true
        rule: 'item.condition == "junk"'
    - type: rank.popularity
    - type: rerank.topn
      config:
        n: 2
        dedup: true
`

func seedCatalog(t *testing.T) *store.SnapshotAdapter {
	t.Helper()
	kv := store.NewMemoryStore()
	t.Cleanup(func() { kv.Close() })
	snap := store.NewSnapshotAdapter(kv, "t")

	now := time.Now()
	items := []*core.Item{
		{ID: "a1", Category: "camera", Condition: "good", Status: core.StatusActive, EndTime: now.Add(time.Hour)},
		{ID: "a2", Category: "camera", Condition: "junk", Status: core.StatusActive, EndTime: now.Add(time.Hour)},
		{ID: "a3", Category: "camera", Condition: "fair", Status: core.StatusActive, EndTime: now.Add(time.Hour)},
		{ID: "a4", Category: "camera", Condition: "good", Status: core.StatusActive, EndTime: now.Add(time.Hour)},
		{ID: "a5", Category: "watch", Condition: "new", Status: core.StatusActive, EndTime: now.Add(time.Hour)},
	}
	if err := snap.SeedAuctions(context.Background(), items); err != nil {
		t.Fatalf("SeedAuctions() error = %v", err)
	}
	return snap
}

func TestDefaultFactory_BuildFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(pipelineYAML), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := pipeline.LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}
	if cfg.Pipeline.Name != "auction_feed" {
		t.Errorf("pipeline name = %s", cfg.Pipeline.Name)
	}

	snap := seedCatalog(t)
	p, err := cfg.BuildPipeline(DefaultFactory(snap))
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(p.Nodes) != 4 {
		t.Fatalf("pipeline has %d nodes, want 4", len(p.Nodes))
	}

	rctx := &core.RecommendContext{UserID: "u1", Now: time.Now()}
	items, err := p.Run(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// catalog recall is scoped to camera, junk condition is ruled out,
	// topn caps the rest at two
	if len(items) != 2 {
		t.Fatalf("Run() = %d items, want 2", len(items))
	}
	for _, it := range items {
		if it.Category != "camera" {
			t.Errorf("item %s category = %s, want camera", it.ID, it.Category)
		}
		if it.Condition == "junk" {
			t.Errorf("junk item %s must be ruled out", it.ID)
		}
	}
}

func TestDefaultFactory_UnknownNode(t *testing.T) {
	snap := seedCatalog(t)
	if _, err := DefaultFactory(snap).Build("rank.nonexistent", nil); err == nil {
		t.Error("unknown node type must fail to build")
	}
}

func TestLoadEngineConfig(t *testing.T) {
	const engineYAML = `
engine:
  half_life_hours: 48
  top_k: 10
  cohort_min_size: 3
  start_price_ratios:
    camera: 0.85
  cache_ttl_seconds: 600
`
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(engineYAML), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig() error = %v", err)
	}
	if cfg.HalfLife != 48*time.Hour {
		t.Errorf("half life = %v, want 48h", cfg.HalfLife)
	}
	if cfg.TopK != 10 {
		t.Errorf("top k = %d, want 10", cfg.TopK)
	}
	if cfg.CohortMinSize != 3 {
		t.Errorf("cohort min size = %d, want 3", cfg.CohortMinSize)
	}
	if cfg.StartRatio("camera") != 0.85 {
		t.Errorf("camera ratio = %v, want 0.85", cfg.StartRatio("camera"))
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("cache ttl = %v, want 10m", cfg.CacheTTL)
	}
	// unset fields fall back to defaults
	if cfg.SaleLookback != 30*24*time.Hour {
		t.Errorf("sale lookback = %v, want default 30d", cfg.SaleLookback)
	}
	if cfg.DefaultStartRatio != 0.90 {
		t.Errorf("default ratio = %v, want 0.90", cfg.DefaultStartRatio)
	}
}
