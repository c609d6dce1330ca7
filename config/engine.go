package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/auctionrec/core"
)

// EngineConfig 是引擎参数的 YAML 映射。时间类字段统一用小时/秒表示，
// 避免 YAML 里写 duration 字符串的歧义。
//
// 配置示例：
//
//	engine:
//	  half_life_hours: 72
//	  top_k: 20
//	  popularity_window_hours: 72
//	  cohort_min_size: 5
//	  sale_lookback_days: 30
//	  start_price_ratios:
//	    camera: 0.85
//	    watch: 0.95
//	  default_start_ratio: 0.90
//	  round_to: 1000
//	  cache_ttl_seconds: 3600
//	  compute_timeout_ms: 2000
type EngineConfig struct {
	Engine struct {
		HalfLifeHours         int                `yaml:"half_life_hours"`
		TopK                  int                `yaml:"top_k"`
		PopularityWindowHours int                `yaml:"popularity_window_hours"`
		MinCommonUsers        int                `yaml:"min_common_users"`
		CohortMinSize         int                `yaml:"cohort_min_size"`
		ConfidenceHigh        int                `yaml:"confidence_high"`
		ConfidenceMedium      int                `yaml:"confidence_medium"`
		SaleLookbackDays      int                `yaml:"sale_lookback_days"`
		StartPriceRatios      map[string]float64 `yaml:"start_price_ratios"`
		DefaultStartRatio     float64            `yaml:"default_start_ratio"`
		RoundTo               float64            `yaml:"round_to"`
		CacheTTLSeconds       int                `yaml:"cache_ttl_seconds"`
		ComputeTimeoutMS      int                `yaml:"compute_timeout_ms"`
	} `yaml:"engine"`
}

// LoadEngineConfig 从 YAML 文件加载引擎参数，未配置的字段使用默认值。
func LoadEngineConfig(path string) (*core.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var ec EngineConfig
	if err := yaml.Unmarshal(data, &ec); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return ec.ToConfig(), nil
}

// ToConfig 转为 core.Config，零值字段由 DefaultConfig 的默认值兜底。
func (ec *EngineConfig) ToConfig() *core.Config {
	e := ec.Engine
	cfg := &core.Config{
		HalfLife:          time.Duration(e.HalfLifeHours) * time.Hour,
		TopK:              e.TopK,
		PopularityWindow:  time.Duration(e.PopularityWindowHours) * time.Hour,
		MinCommonUsers:    e.MinCommonUsers,
		CohortMinSize:     e.CohortMinSize,
		ConfidenceHigh:    e.ConfidenceHigh,
		ConfidenceMedium:  e.ConfidenceMedium,
		SaleLookback:      time.Duration(e.SaleLookbackDays) * 24 * time.Hour,
		StartPriceRatios:  e.StartPriceRatios,
		DefaultStartRatio: e.DefaultStartRatio,
		RoundTo:           e.RoundTo,
		CacheTTL:          time.Duration(e.CacheTTLSeconds) * time.Second,
		ComputeTimeout:    time.Duration(e.ComputeTimeoutMS) * time.Millisecond,
	}
	return cfg.WithDefaults()
}
