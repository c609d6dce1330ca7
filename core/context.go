package core

import (
	"time"

	"github.com/rushteam/auctionrec/pkg/utils"
)

// RecommendContext 承载单次推荐请求的用户/场景/本轮模型信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string // 使用 string 类型（通用，支持所有 ID 格式）
	Scene  string
	Limit  int       // 期望返回的拍品数量（TopN 节点优先使用）
	Now    time.Time // 请求时间基准，衰减/截止判断统一使用它，保证可复现

	// History 是目标用户的交互历史：拍品 ID → 衰减加权后的交互权重。
	// 由 Feature Builder 在请求入口构建；为空表示冷启动用户。
	History map[string]float64

	// Model 是本轮重算周期的只读相似度/热度模型。
	Model SimilarityModel

	// Labels 是用户级标签，可驱动整个 Pipeline 行为（如 cold_start）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（类目偏好、实验参数等）。
	Params map[string]any
}

// Interacted 判断用户是否已与拍品交互过。
func (rctx *RecommendContext) Interacted(itemID string) bool {
	if rctx.History == nil {
		return false
	}
	_, ok := rctx.History[itemID]
	return ok
}

// HistoryMass 返回用户交互权重之和，用于打分归一化。
func (rctx *RecommendContext) HistoryMass() float64 {
	var total float64
	for _, w := range rctx.History {
		total += w
	}
	return total
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// SimilarityModel 是一轮重算周期内的只读模型接口。
//
// 设计原则：
//   - 定义在领域层（core），由 similarity 包实现
//   - 模型一经构建不可变，可被多个并发请求安全共享
//
// Similarity 返回两个拍品的相似度 [0,1]，对称：Similarity(a,b) == Similarity(b,a)。
// Popularity 返回拍品在近期窗口内的衰减交互热度，用于冷启动兜底排序。
type SimilarityModel interface {
	Similarity(a, b string) float64
	Popularity(itemID string) float64
}
