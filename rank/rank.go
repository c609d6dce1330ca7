// Package rank 提供打分与排序节点。
//
// 所有排序节点遵循同一套确定性规则：分数降序，分数相同时
// 上架时间新的优先，仍相同时按拍品 ID 字典序升序。
// 同一份输入在任何时刻排序结果都完全一致。
package rank

import (
	"sort"

	"github.com/rushteam/auctionrec/core"
)

// SortItems 按统一的确定性规则对候选排序（原地）。
func SortItems(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
