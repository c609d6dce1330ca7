package core

import (
	"context"
	"time"
)

// Store 是 KV 存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 使用场景：
//   - 结果缓存：推荐/估价结果的读穿缓存后端
//   - 快照存储：交互/拍品/成交数据的 JSON 快照（SnapshotAdapter）
//
// 实现：
//   - store.MemoryStore（测试/开发/原型）
//   - store.RedisStore（生产）
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，可选 TTL（秒）
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// BatchGet 批量读取（减少网络往返）
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// BatchSet 批量写入
	BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error

	// Close 关闭连接/释放资源
	Close() error
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreUnavailable 表示存储后端不可用。
	// 引擎从不重试此类错误，原样传播给调用方。
	ErrStoreUnavailable = NewDomainError(ModuleStore, ErrorCodeUnavailable, "store: backend unavailable")
)

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// NewStoreUnavailable 把底层存储错误包装为 UNAVAILABLE 领域错误。
func NewStoreUnavailable(err error) *DomainError {
	return NewDomainError(ModuleStore, ErrorCodeUnavailable, "store: "+err.Error())
}

// InteractionStore 是交互数据存储的领域接口——引擎消费的唯一上游数据契约。
//
// 全部只读；任何方法都可能因后端故障返回 UNAVAILABLE 错误，
// 引擎原样传播、从不重试（重试策略归调用方）。
//
// 实现：
//   - store.SnapshotAdapter（基于 core.Store 的 JSON 快照，内存/Redis 通用）
type InteractionStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// GetInteractions 获取单个用户的交互记录，按时间升序。
	// since 为零值时返回全部。
	GetInteractions(ctx context.Context, userID string, since time.Time) ([]Interaction, error)

	// GetAllInteractions 获取全量交互快照（构建交互矩阵用）。
	GetAllInteractions(ctx context.Context, since time.Time) ([]Interaction, error)

	// GetAuction 按 ID 获取单个拍品；不存在时返回 ErrStoreNotFound。
	GetAuction(ctx context.Context, itemID string) (*Item, error)

	// GetActiveAuctions 获取竞拍中的拍品目录；category 为空表示全部类目。
	GetActiveAuctions(ctx context.Context, category string) ([]*Item, error)

	// GetClosedSales 获取窗口期内的成交记录，按成交时间升序。
	// category / condition 为空表示该维度不限。
	GetClosedSales(ctx context.Context, category, condition string, window time.Duration) ([]SalePrice, error)

	// LastUpdated 返回最近一次交互/成交写入的时间，作为缓存版本戳的来源：
	// 新数据到达即产生新的缓存 key，无需显式失效信号。
	LastUpdated(ctx context.Context) (time.Time, error)
}
