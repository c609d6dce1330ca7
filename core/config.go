package core

import "time"

// Config 是引擎的参数集合，零值字段在 WithDefaults 中回填默认值。
// 衰减半衰期、同类群体阈值、TopK 等数值来自线上调参，调整前先跑离线对比。
type Config struct {
	// HalfLife 交互权重的衰减半衰期：一条交互每经过 HalfLife，贡献减半。
	HalfLife time.Duration

	// TopK 默认返回的拍品数量（请求未指定 limit 时使用）。
	TopK int

	// PopularityWindow 热门兜底的统计窗口，窗口外的交互不计入热度。
	PopularityWindow time.Duration

	// MinCommonUsers 两个拍品至少需要多少个共同交互用户才计算相似度。
	MinCommonUsers int

	// CohortMinSize 同类群体最小样本量，不足则放宽口径（先放宽成色，再放宽类目）。
	CohortMinSize int

	// ConfidenceHigh / ConfidenceMedium 是置信档位的样本量阈值。
	ConfidenceHigh   int
	ConfidenceMedium int

	// SaleLookback 成交记录的回看窗口。
	SaleLookback time.Duration

	// StartPriceRatios 品类 → 建议起拍价系数；缺省品类使用 DefaultStartRatio。
	StartPriceRatios  map[string]float64
	DefaultStartRatio float64

	// RoundTo 建议起拍价的取整粒度。
	RoundTo float64

	// CacheTTL 结果缓存的兜底过期时间（版本戳失效逻辑之外的第二道保险）。
	CacheTTL time.Duration

	// ComputeTimeout 单次推荐/估价计算的时间预算，超时返回 TIMEOUT 错误。
	ComputeTimeout time.Duration
}

// DefaultConfig 返回默认参数。
func DefaultConfig() *Config {
	return (&Config{}).WithDefaults()
}

// WithDefaults 回填零值字段的默认值，返回自身方便链式调用。
func (c *Config) WithDefaults() *Config {
	if c.HalfLife <= 0 {
		c.HalfLife = 72 * time.Hour
	}
	if c.TopK <= 0 {
		c.TopK = 20
	}
	if c.PopularityWindow <= 0 {
		c.PopularityWindow = 72 * time.Hour
	}
	if c.MinCommonUsers <= 0 {
		c.MinCommonUsers = 1
	}
	if c.CohortMinSize <= 0 {
		c.CohortMinSize = 5
	}
	if c.ConfidenceHigh <= 0 {
		c.ConfidenceHigh = 20
	}
	if c.ConfidenceMedium <= 0 {
		c.ConfidenceMedium = 5
	}
	if c.SaleLookback <= 0 {
		c.SaleLookback = 30 * 24 * time.Hour
	}
	if c.DefaultStartRatio <= 0 {
		c.DefaultStartRatio = 0.90
	}
	if c.RoundTo <= 0 {
		c.RoundTo = 1000
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.ComputeTimeout <= 0 {
		c.ComputeTimeout = 2 * time.Second
	}
	return c
}

// StartRatio 返回品类的起拍价系数。
func (c *Config) StartRatio(category string) float64 {
	if r, ok := c.StartPriceRatios[category]; ok {
		return r
	}
	return c.DefaultStartRatio
}
