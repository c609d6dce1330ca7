// Package price 实现成交价估算：在可比成交（同类目同成色的同类群体）上
// 用中位数和分位数区间给出稳健的估价，并换算建议起拍价。
package price

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/auctionrec/core"
)

// 同类群体的放宽档位。类目是更强的信号，先放宽成色，最后才放宽类目。
const (
	TierExact    = "exact"    // 同类目 + 同成色
	TierCategory = "category" // 同类目，成色放宽
	TierAll      = "all"      // 类目和成色都放宽
	TierNone     = "none"     // 无任何可比成交，回退到拍品自身价格
)

// Estimator 是估价器。估价永远有产出：样本不足时降置信度而不是报错，
// 完全没有可比成交时回退到拍品自身的价格。
type Estimator struct {
	Store core.InteractionStore

	cfg *core.Config
}

// NewEstimator 创建估价器，cfg 为 nil 时使用默认参数。
func NewEstimator(store core.InteractionStore, cfg *core.Config) *Estimator {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	return &Estimator{Store: store, cfg: cfg}
}

// Estimate 对单个拍品估价。
// 存储错误（UNAVAILABLE）原样上抛，其余情况总能返回估价结果。
func (e *Estimator) Estimate(ctx context.Context, item *core.Item) (*core.PriceEstimate, error) {
	tiers := []struct {
		category  string
		condition string
		name      string
	}{
		{item.Category, item.Condition, TierExact},
		{item.Category, "", TierCategory},
		{"", "", TierAll},
	}

	var (
		prices []float64
		tier   = TierNone
	)
	for _, t := range tiers {
		sales, err := e.Store.GetClosedSales(ctx, t.category, t.condition, e.cfg.SaleLookback)
		if err != nil {
			return nil, err
		}
		if len(sales) == 0 {
			continue
		}
		candidate := make([]float64, 0, len(sales))
		for _, s := range sales {
			if s.Price > 0 {
				candidate = append(candidate, s.Price)
			}
		}
		if len(candidate) == 0 {
			continue
		}
		// 放宽档位是前一档的超集，样本只会更多；样本足够就停止放宽
		prices, tier = candidate, t.name
		if len(prices) >= e.cfg.CohortMinSize {
			break
		}
	}

	if len(prices) == 0 {
		return e.fallback(item), nil
	}

	sort.Float64s(prices)
	trimmed := trimOutliers(prices)

	point := percentile(trimmed, 0.50)
	low := percentile(trimmed, 0.25)
	high := percentile(trimmed, 0.75)

	return &core.PriceEstimate{
		ItemID:         item.ID,
		Point:          point,
		Low:            low,
		High:           high,
		SampleSize:     len(trimmed),
		Confidence:     e.confidence(len(trimmed)),
		SuggestedStart: e.suggestedStart(point, item.Category),
		CohortTier:     tier,
	}, nil
}

// fallback 在没有任何可比成交时用拍品自身价格兜底。
func (e *Estimator) fallback(item *core.Item) *core.PriceEstimate {
	p := item.CurrentPrice
	if p <= 0 {
		p = item.StartPrice
	}
	return &core.PriceEstimate{
		ItemID:         item.ID,
		Point:          p,
		Low:            p,
		High:           p,
		SampleSize:     0,
		Confidence:     core.ConfidenceLow,
		SuggestedStart: e.suggestedStart(p, item.Category),
		CohortTier:     TierNone,
	}
}

func (e *Estimator) confidence(n int) core.PriceConfidence {
	switch {
	case n >= e.cfg.ConfidenceHigh:
		return core.ConfidenceHigh
	case n >= e.cfg.ConfidenceMedium:
		return core.ConfidenceMedium
	default:
		return core.ConfidenceLow
	}
}

// suggestedStart 将估价乘以品类系数并按 RoundTo 取整，得到建议起拍价。
func (e *Estimator) suggestedStart(point float64, category string) float64 {
	v := point * e.cfg.StartRatio(category)
	if e.cfg.RoundTo > 0 {
		v = math.Round(v/e.cfg.RoundTo) * e.cfg.RoundTo
	}
	if v < 0 {
		v = 0
	}
	return v
}

// trimOutliers 用 IQR 法剔除离群点（低于 Q1-1.5*IQR 或高于 Q3+1.5*IQR）。
// 样本太少（<3）或剔除后为空时返回原样本。输入必须已升序。
func trimOutliers(sorted []float64) []float64 {
	if len(sorted) < 3 {
		return sorted
	}
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	out := make([]float64, 0, len(sorted))
	for _, p := range sorted {
		if p >= lo && p <= hi {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return sorted
	}
	return out
}

// percentile 对已升序的样本做线性插值分位数。p 取 [0,1]。
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	idx := int(math.Floor(pos))
	frac := pos - float64(idx)
	if idx+1 >= n {
		return sorted[n-1]
	}
	return sorted[idx] + frac*(sorted[idx+1]-sorted[idx])
}
