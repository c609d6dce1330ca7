// Package store 只包含实现，接口定义在 core 包。
// KV 后端使用 core.Store 接口；交互数据契约使用 core.InteractionStore 接口。
//
// 示例：
//
//	kv := store.NewMemoryStore()
//	adapter := store.NewSnapshotAdapter(kv, "auctionrec")
package store
