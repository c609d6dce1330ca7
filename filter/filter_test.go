package filter

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/auctionrec/core"
)

func TestEnded_ShouldFilter(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rctx := &core.RecommendContext{Now: now}

	tests := []struct {
		name   string
		status core.AuctionStatus
		end    time.Time
		want   bool
	}{
		{"active and open", core.StatusActive, now.Add(time.Hour), false},
		{"active but past end time", core.StatusActive, now.Add(-time.Minute), true},
		{"closed", core.StatusClosed, now.Add(time.Hour), true},
		{"sold", core.StatusSold, now.Add(time.Hour), true},
		{"active with no end time", core.StatusActive, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := core.NewItem("a1")
			it.Status = tt.status
			it.EndTime = tt.end
			got, err := (&Ended{}).ShouldFilter(context.Background(), rctx, it)
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInteracted_ShouldFilter(t *testing.T) {
	rctx := &core.RecommendContext{
		UserID:  "u1",
		History: map[string]float64{"seen": 1.5},
	}

	got, _ := (&Interacted{}).ShouldFilter(context.Background(), rctx, core.NewItem("seen"))
	if !got {
		t.Error("already-interacted item must be filtered")
	}
	got, _ = (&Interacted{}).ShouldFilter(context.Background(), rctx, core.NewItem("fresh"))
	if got {
		t.Error("fresh item must pass")
	}
}

func TestOwnListing_ShouldFilter(t *testing.T) {
	rctx := &core.RecommendContext{UserID: "u1"}

	own := core.NewItem("a1")
	own.SellerID = "u1"
	got, _ := (&OwnListing{}).ShouldFilter(context.Background(), rctx, own)
	if !got {
		t.Error("seller must not see their own listing")
	}

	other := core.NewItem("a2")
	other.SellerID = "u2"
	got, _ = (&OwnListing{}).ShouldFilter(context.Background(), rctx, other)
	if got {
		t.Error("other sellers' listings must pass")
	}
}

func TestRule_ShouldFilter(t *testing.T) {
	rule, err := NewRule(`item.condition == "junk"`)
	if err != nil {
		t.Fatalf("NewRule() error = %v", err)
	}

	junk := core.NewItem("a1")
	junk.Condition = "junk"
	got, err := rule.ShouldFilter(context.Background(), &core.RecommendContext{}, junk)
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if !got {
		t.Error("rule expression must match junk condition")
	}

	good := core.NewItem("a2")
	good.Condition = "good"
	got, _ = rule.ShouldFilter(context.Background(), &core.RecommendContext{}, good)
	if got {
		t.Error("good condition must pass")
	}
}

func TestRule_InvalidExpression(t *testing.T) {
	if _, err := NewRule(`item.score >`); err == nil {
		t.Error("NewRule must reject a malformed expression")
	}
}

func TestNode_Process(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rctx := &core.RecommendContext{
		UserID:  "u1",
		Now:     now,
		History: map[string]float64{"a2": 1},
	}

	mk := func(id, seller string, status core.AuctionStatus) *core.Item {
		it := core.NewItem(id)
		it.SellerID = seller
		it.Status = status
		it.EndTime = now.Add(time.Hour)
		return it
	}

	items := []*core.Item{
		mk("a1", "s1", core.StatusActive), // kept
		mk("a2", "s1", core.StatusActive), // interacted
		mk("a3", "u1", core.StatusActive), // own listing
		mk("a4", "s2", core.StatusClosed), // ended
	}

	node := &Node{Filters: []Filter{&Ended{}, &Interacted{}, &OwnListing{}}}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != "a1" {
		t.Fatalf("Process() kept %d items, want only a1", len(out))
	}
}
