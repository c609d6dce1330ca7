package feature

import (
	"math"
	"testing"
	"time"

	"github.com/rushteam/auctionrec/core"
)

func TestBuilder_Decay(t *testing.T) {
	b := &Builder{HalfLife: 72 * time.Hour}
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"fresh interaction keeps full weight", now, 1.0},
		{"one half-life halves the weight", now.Add(-72 * time.Hour), 0.5},
		{"two half-lives quarter the weight", now.Add(-144 * time.Hour), 0.25},
		{"future timestamp clamps to full weight", now.Add(time.Hour), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Decay(tt.at, now)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Decay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	b := &Builder{HalfLife: 72 * time.Hour, PopularityWindow: 72 * time.Hour}

	rows := []core.Interaction{
		{UserID: "u1", ItemID: "a1", Type: core.InteractionView, At: now},
		{UserID: "u1", ItemID: "a1", Type: core.InteractionBid, At: now},
		{UserID: "u1", ItemID: "a2", Type: core.InteractionPurchase, At: now.Add(-72 * time.Hour)},
		{UserID: "u2", ItemID: "a1", Type: core.InteractionFavorite, At: now},
		{UserID: "u2", ItemID: "a3", Type: "unknown", At: now}, // zero weight, skipped
		{UserID: "", ItemID: "a3", Type: core.InteractionView, At: now},
	}

	m := b.Build(rows, now)

	// view(1) + bid(3), both fresh
	if got := m.UserItems["u1"]["a1"]; math.Abs(got-4.0) > 1e-9 {
		t.Errorf("u1/a1 weight = %v, want 4", got)
	}
	// purchase(5) decayed by one half-life
	if got := m.UserItems["u1"]["a2"]; math.Abs(got-2.5) > 1e-9 {
		t.Errorf("u1/a2 weight = %v, want 2.5", got)
	}
	if _, ok := m.ItemUsers["a3"]; ok {
		t.Error("zero-weight and empty-user rows must not enter the matrix")
	}
	// inverted view mirrors the forward view
	if got := m.ItemUsers["a1"]["u2"]; math.Abs(got-2.0) > 1e-9 {
		t.Errorf("a1/u2 weight = %v, want 2", got)
	}
	if m.Users() != 2 || m.Items() != 2 {
		t.Errorf("matrix size = %d users / %d items, want 2/2", m.Users(), m.Items())
	}
}

func TestBuilder_Build_PopularityWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	b := &Builder{HalfLife: 72 * time.Hour, PopularityWindow: 24 * time.Hour}

	rows := []core.Interaction{
		{UserID: "u1", ItemID: "a1", Type: core.InteractionView, At: now},
		{UserID: "u2", ItemID: "a2", Type: core.InteractionPurchase, At: now.Add(-48 * time.Hour)},
	}
	m := b.Build(rows, now)

	if _, ok := m.Popularity["a2"]; ok {
		t.Error("interaction outside the window must not count toward popularity")
	}
	if _, ok := m.UserItems["u2"]["a2"]; !ok {
		t.Error("interaction outside the window must still enter the matrix")
	}
	if got := m.Popularity["a1"]; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("a1 popularity = %v, want 1", got)
	}
}

func TestMatrix_UserHistory(t *testing.T) {
	now := time.Now()
	b := &Builder{}
	m := b.Build([]core.Interaction{
		{UserID: "u1", ItemID: "a1", Type: core.InteractionView, At: now},
	}, now)

	hist, err := m.UserHistory("u1")
	if err != nil {
		t.Fatalf("UserHistory(u1) error = %v", err)
	}
	// returned map is a copy, mutating it must not leak into the matrix
	hist["a1"] = 999
	if m.UserItems["u1"]["a1"] == 999 {
		t.Error("UserHistory must return a copy")
	}

	if _, err := m.UserHistory("nobody"); !core.IsInsufficientData(err) {
		t.Errorf("UserHistory(nobody) error = %v, want INSUFFICIENT_DATA", err)
	}
}
