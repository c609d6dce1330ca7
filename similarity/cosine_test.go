package similarity

import (
	"math"
	"testing"
	"time"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/feature"
)

func buildMatrix(t *testing.T, rows []core.Interaction) *feature.Matrix {
	t.Helper()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		rows[i].At = now
	}
	b := &feature.Builder{HalfLife: 72 * time.Hour, PopularityWindow: 72 * time.Hour}
	return b.Build(rows, now)
}

func TestEngine_Fit_SharedUsers(t *testing.T) {
	// i1 and i2 are both viewed by u1 and u2 with identical weights:
	// the vectors are parallel, cosine must be 1.
	m := buildMatrix(t, []core.Interaction{
		{UserID: "u1", ItemID: "i1", Type: core.InteractionView},
		{UserID: "u1", ItemID: "i2", Type: core.InteractionView},
		{UserID: "u2", ItemID: "i1", Type: core.InteractionView},
		{UserID: "u2", ItemID: "i2", Type: core.InteractionView},
		{UserID: "u3", ItemID: "i3", Type: core.InteractionView},
	})

	model := (&Engine{MinCommonUsers: 1}).Fit(m)

	if got := model.Similarity("i1", "i2"); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Similarity(i1,i2) = %v, want 1", got)
	}
	// i3 shares no user with i1
	if got := model.Similarity("i1", "i3"); got != 0 {
		t.Errorf("Similarity(i1,i3) = %v, want 0", got)
	}
	if got := model.Similarity("i1", "i1"); got != 1 {
		t.Errorf("Similarity(i1,i1) = %v, want 1", got)
	}
}

func TestEngine_Fit_Symmetry(t *testing.T) {
	m := buildMatrix(t, []core.Interaction{
		{UserID: "u1", ItemID: "i1", Type: core.InteractionBid},
		{UserID: "u1", ItemID: "i2", Type: core.InteractionView},
		{UserID: "u2", ItemID: "i1", Type: core.InteractionView},
		{UserID: "u2", ItemID: "i2", Type: core.InteractionPurchase},
		{UserID: "u3", ItemID: "i2", Type: core.InteractionFavorite},
	})

	model := (&Engine{}).Fit(m)

	ab := model.Similarity("i1", "i2")
	ba := model.Similarity("i2", "i1")
	if ab != ba {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
	if ab <= 0 || ab > 1 {
		t.Errorf("similarity out of range: %v", ab)
	}
}

func TestEngine_Fit_Deterministic(t *testing.T) {
	rows := []core.Interaction{
		{UserID: "u1", ItemID: "i1", Type: core.InteractionView},
		{UserID: "u1", ItemID: "i2", Type: core.InteractionBid},
		{UserID: "u1", ItemID: "i3", Type: core.InteractionFavorite},
		{UserID: "u2", ItemID: "i1", Type: core.InteractionPurchase},
		{UserID: "u2", ItemID: "i3", Type: core.InteractionView},
		{UserID: "u3", ItemID: "i2", Type: core.InteractionView},
		{UserID: "u3", ItemID: "i3", Type: core.InteractionBid},
	}

	// same snapshot fitted repeatedly must yield bit-identical scores
	m := buildMatrix(t, rows)
	first := (&Engine{}).Fit(m)
	for i := 0; i < 10; i++ {
		again := (&Engine{}).Fit(m)
		for _, pair := range [][2]string{{"i1", "i2"}, {"i1", "i3"}, {"i2", "i3"}} {
			a, b := pair[0], pair[1]
			if first.Similarity(a, b) != again.Similarity(a, b) {
				t.Fatalf("run %d: Similarity(%s,%s) differs: %v vs %v",
					i, a, b, first.Similarity(a, b), again.Similarity(a, b))
			}
		}
	}
}

func TestEngine_Fit_MinCommonUsers(t *testing.T) {
	m := buildMatrix(t, []core.Interaction{
		{UserID: "u1", ItemID: "i1", Type: core.InteractionView},
		{UserID: "u1", ItemID: "i2", Type: core.InteractionView},
	})

	// only one shared user, threshold of two excludes the pair
	model := (&Engine{MinCommonUsers: 2}).Fit(m)
	if got := model.Similarity("i1", "i2"); got != 0 {
		t.Errorf("Similarity below common-user threshold = %v, want 0", got)
	}
}

func TestEngine_Fit_EmptyMatrix(t *testing.T) {
	m := buildMatrix(t, nil)
	model := (&Engine{}).Fit(m)
	if model == nil {
		t.Fatal("Fit(empty) must return an empty model, not nil")
	}
	if model.Pairs() != 0 {
		t.Errorf("empty matrix produced %d pairs", model.Pairs())
	}
}
