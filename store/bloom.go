package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// ItemBloom 是拍品 ID 的布隆过滤器，用于防止缓存穿透：
// 对一定不存在的拍品 ID（恶意或过期请求），GetAuction 无需访问后端即可判定 NOT_FOUND。
//
// 返回 true 表示可能存在（有误判可能），false 表示一定不存在。
type ItemBloom struct {
	mu sync.RWMutex
	f  *bloom.BloomFilter
}

// NewItemBloom 创建拍品布隆过滤器。
//
// 参数：
//   - capacity: 预期拍品数量
//   - falsePositiveRate: 期望误判率（如 0.01 表示 1%）
func NewItemBloom(capacity uint, falsePositiveRate float64) *ItemBloom {
	return &ItemBloom{
		f: bloom.NewWithEstimates(capacity, falsePositiveRate),
	}
}

// Add 登记一个拍品 ID。
func (b *ItemBloom) Add(itemID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.f.Add([]byte(itemID))
}

// Test 检查拍品 ID 是否可能存在。
func (b *ItemBloom) Test(itemID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.f.Test([]byte(itemID))
}
