// Package feature 把原始交互记录转换为引擎可计算的结构：
// 稀疏的用户×拍品交互矩阵，以及近期窗口内的拍品热度。
package feature

import (
	"math"
	"time"

	"github.com/rushteam/auctionrec/core"
)

// Matrix 是稀疏交互矩阵：只存非零权重，同时维护正排与倒排两个视图。
// 每个重算周期整体重建，从不持久化、从不原地增量更新。
type Matrix struct {
	// UserItems 用户 → 拍品 → 衰减加权后的交互权重
	UserItems map[string]map[string]float64

	// ItemUsers 拍品 → 用户 → 权重（相似度计算用的倒排视图）
	ItemUsers map[string]map[string]float64

	// Popularity 拍品 → 近期窗口内的衰减交互热度（冷启动兜底用）
	Popularity map[string]float64

	// BuiltAt 矩阵构建的时间基准
	BuiltAt time.Time
}

// Builder 是交互矩阵构建器。
//
// 权重策略：基础权重由交互类型决定（view=1 < favorite=2 < bid=3 < purchase=5），
// 再乘以指数衰减因子 0.5^(age/HalfLife)——陈旧信号贡献变小但不被丢弃。
// 同一 (用户, 拍品) 的多条交互权重累加；加法可交换，结果与到达顺序无关。
type Builder struct {
	// HalfLife 衰减半衰期，<=0 时使用 72h。
	HalfLife time.Duration

	// PopularityWindow 热度统计窗口，窗口外交互不计入热度（但仍进矩阵）。
	// <=0 时使用 72h。
	PopularityWindow time.Duration
}

// NewBuilder 按配置创建构建器。
func NewBuilder(cfg *core.Config) *Builder {
	return &Builder{
		HalfLife:         cfg.HalfLife,
		PopularityWindow: cfg.PopularityWindow,
	}
}

func (b *Builder) halfLife() time.Duration {
	if b.HalfLife > 0 {
		return b.HalfLife
	}
	return 72 * time.Hour
}

func (b *Builder) popularityWindow() time.Duration {
	if b.PopularityWindow > 0 {
		return b.PopularityWindow
	}
	return 72 * time.Hour
}

// Decay 返回交互在 now 时刻的衰减因子：0.5^(age/HalfLife)。
// 对给定 (at, now) 完全确定；未来时间戳按 age=0 处理。
func (b *Builder) Decay(at, now time.Time) float64 {
	age := now.Sub(at)
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(b.halfLife()))
}

// Build 从交互快照构建矩阵。未知交互类型（权重 0）的记录被跳过。
func (b *Builder) Build(interactions []core.Interaction, now time.Time) *Matrix {
	m := &Matrix{
		UserItems:  make(map[string]map[string]float64),
		ItemUsers:  make(map[string]map[string]float64),
		Popularity: make(map[string]float64),
		BuiltAt:    now,
	}

	popCutoff := now.Add(-b.popularityWindow())

	for _, r := range interactions {
		base := r.Type.Weight()
		if base == 0 || r.UserID == "" || r.ItemID == "" {
			continue
		}
		w := base * b.Decay(r.At, now)

		if m.UserItems[r.UserID] == nil {
			m.UserItems[r.UserID] = make(map[string]float64)
		}
		m.UserItems[r.UserID][r.ItemID] += w

		if m.ItemUsers[r.ItemID] == nil {
			m.ItemUsers[r.ItemID] = make(map[string]float64)
		}
		m.ItemUsers[r.ItemID][r.UserID] += w

		if !r.At.Before(popCutoff) {
			m.Popularity[r.ItemID] += w
		}
	}
	return m
}

// UserHistory 返回用户的交互权重向量（拍品 ID → 权重）。
// 用户没有任何交互时返回 ErrInsufficientData——这是信号而非硬错误，
// 调用方捕获后转入冷启动路径。
func (m *Matrix) UserHistory(userID string) (map[string]float64, error) {
	hist, ok := m.UserItems[userID]
	if !ok || len(hist) == 0 {
		return nil, core.ErrInsufficientData
	}
	out := make(map[string]float64, len(hist))
	for k, v := range hist {
		out[k] = v
	}
	return out, nil
}

// Items 返回矩阵中出现过的拍品数量。
func (m *Matrix) Items() int { return len(m.ItemUsers) }

// Users 返回矩阵中出现过的用户数量。
func (m *Matrix) Users() int { return len(m.UserItems) }
