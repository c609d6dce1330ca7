package core

import "time"

// InteractionType 是用户与拍品的交互类型。
// 权重随交互强度单调递增：view < favorite < bid < purchase。
type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionFavorite InteractionType = "favorite"
	InteractionBid      InteractionType = "bid"
	InteractionPurchase InteractionType = "purchase"
)

// interactionWeights 是交互权重策略。
// 权重只取决于交互类型（而非到达顺序），保证同一批数据构建出的矩阵完全一致。
var interactionWeights = map[InteractionType]float64{
	InteractionView:     1,
	InteractionFavorite: 2,
	InteractionBid:      3,
	InteractionPurchase: 5,
}

// Weight 返回交互类型的基础权重；未知类型返回 0。
func (t InteractionType) Weight() float64 {
	return interactionWeights[t]
}

// Valid 检查交互类型是否已知。
func (t InteractionType) Valid() bool {
	_, ok := interactionWeights[t]
	return ok
}

// Interaction 是一条用户-拍品交互记录。
// 对本引擎而言只读、追加式：引擎从不回写交互数据。
type Interaction struct {
	UserID string          `json:"user_id"`
	ItemID string          `json:"item_id"`
	Type   InteractionType `json:"type"`
	Amount float64         `json:"amount,omitempty"` // 出价金额（仅 bid/purchase）
	At     time.Time       `json:"at"`
}

// SalePrice 是一条成交记录（落锤价），价格估计的同类群体由它构成。
type SalePrice struct {
	Price  float64   `json:"price"`
	SoldAt time.Time `json:"sold_at"`
}
