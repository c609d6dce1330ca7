package core

import (
	"time"

	"github.com/rushteam/auctionrec/pkg/utils"
)

// AuctionStatus 是拍品状态。
type AuctionStatus string

const (
	StatusActive AuctionStatus = "active" // 竞拍中
	StatusClosed AuctionStatus = "closed" // 已截止（流拍）
	StatusSold   AuctionStatus = "sold"   // 已成交
)

// Item 是推荐链路中的统一承载结构：拍品属性、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
// 拍品属性对引擎只读——引擎从不修改目录数据，只在副本上打分打标。
type Item struct {
	ID        string        `json:"id"`
	SellerID  string        `json:"seller_id"`
	Category  string        `json:"category"`
	Condition string        `json:"condition"` // 成色等级，如 new / good / fair
	Status    AuctionStatus `json:"status"`

	StartPrice   float64   `json:"start_price"`
	CurrentPrice float64   `json:"current_price"`
	CreatedAt    time.Time `json:"created_at"`
	EndTime      time.Time `json:"end_time"`

	Score  float64                `json:"score"`
	Meta   map[string]any         `json:"meta,omitempty"`
	Labels map[string]utils.Label `json:"labels,omitempty"`
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 获取 Label。
func (it *Item) GetLabel(key string) (utils.Label, bool) {
	if it.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := it.Labels[key]
	return lbl, ok
}

// Clone 返回浅拷贝（Labels 独立），供打分链路在不污染目录数据的前提下写分数与标签。
func (it *Item) Clone() *Item {
	cp := *it
	cp.Labels = make(map[string]utils.Label, len(it.Labels))
	for k, v := range it.Labels {
		cp.Labels[k] = v
	}
	return &cp
}

// RankedResult 是一次推荐请求的最终输出：按分数非递增排列、无重复拍品。
// ColdStart 为 true 表示整份结果来自热门兜底而非个性化打分。
type RankedResult struct {
	UserID      string    `json:"user_id"`
	Items       []*Item   `json:"items"`
	ColdStart   bool      `json:"cold_start"`
	GeneratedAt time.Time `json:"generated_at"`
}

// PriceConfidence 是价格估计的置信档位。
type PriceConfidence string

const (
	ConfidenceHigh   PriceConfidence = "high"
	ConfidenceMedium PriceConfidence = "medium"
	ConfidenceLow    PriceConfidence = "low"
)

// PriceEstimate 是一次估价的输出。
// 估价从不因数据不足而失败：同类样本越少，Confidence 越低，但总会给出数字。
type PriceEstimate struct {
	ItemID         string          `json:"item_id"`
	Point          float64         `json:"point"`           // 中位数点估计
	Low            float64         `json:"low"`             // P25
	High           float64         `json:"high"`            // P75
	SampleSize     int             `json:"sample_size"`     // 同类样本量（去除离群值后）
	Confidence     PriceConfidence `json:"confidence"`
	SuggestedStart float64         `json:"suggested_start"` // 建议起拍价（点估计 × 品类系数，取整）
	CohortTier     string          `json:"cohort_tier"`     // 同类群体口径：exact / category / all / none
}
