package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/rushteam/auctionrec/core"
)

// SnapshotAdapter 是基于 core.Store 的交互数据适配器，实现 core.InteractionStore。
// 上游写路径（应用服务器/同步任务）以 JSON 快照写入，引擎只读消费。
//
// key 布局（前缀默认 "auctionrec"）：
//
//	{p}:users                      所有用户 ID 列表
//	{p}:interactions:{userID}      单个用户的交互记录
//	{p}:items                      所有拍品 ID 列表
//	{p}:item:{itemID}              单个拍品文档
//	{p}:cohorts                    成交口径列表（"category|condition"）
//	{p}:sales:{category}:{condition} 某口径下的成交记录
//	{p}:last_updated               最近写入时间（缓存版本戳来源）
type SnapshotAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀。
	KeyPrefix string

	// Bloom 可选的拍品 ID 布隆过滤器：命中失败直接判定 NOT_FOUND，
	// 避免未知 ID 的探测请求穿透到后端。
	Bloom *ItemBloom
}

// NewSnapshotAdapter 创建一个基于 core.Store 的交互数据适配器。
func NewSnapshotAdapter(s core.Store, keyPrefix string) *SnapshotAdapter {
	if keyPrefix == "" {
		keyPrefix = "auctionrec"
	}
	return &SnapshotAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (a *SnapshotAdapter) Name() string { return "snapshot(" + a.store.Name() + ")" }

func (a *SnapshotAdapter) keyUsers() string          { return a.KeyPrefix + ":users" }
func (a *SnapshotAdapter) keyItems() string          { return a.KeyPrefix + ":items" }
func (a *SnapshotAdapter) keyCohorts() string        { return a.KeyPrefix + ":cohorts" }
func (a *SnapshotAdapter) keyLastUpdated() string    { return a.KeyPrefix + ":last_updated" }
func (a *SnapshotAdapter) keyUser(id string) string  { return a.KeyPrefix + ":interactions:" + id }
func (a *SnapshotAdapter) keyItem(id string) string  { return a.KeyPrefix + ":item:" + id }
func (a *SnapshotAdapter) keySales(category, condition string) string {
	return a.KeyPrefix + ":sales:" + category + ":" + condition
}

func (a *SnapshotAdapter) getList(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: corrupt list at "+key)
	}
	return out, nil
}

func (a *SnapshotAdapter) GetInteractions(ctx context.Context, userID string, since time.Time) ([]core.Interaction, error) {
	data, err := a.store.Get(ctx, a.keyUser(userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var rows []core.Interaction
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: corrupt interactions for user "+userID)
	}
	rows = filterSince(rows, since)
	sortInteractions(rows)
	return rows, nil
}

func (a *SnapshotAdapter) GetAllInteractions(ctx context.Context, since time.Time) ([]core.Interaction, error) {
	users, err := a.getList(ctx, a.keyUsers())
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(users))
	for _, u := range users {
		keys = append(keys, a.keyUser(u))
	}
	kvs, err := a.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	var all []core.Interaction
	for _, k := range keys {
		data, ok := kvs[k]
		if !ok {
			continue
		}
		var rows []core.Interaction
		if err := json.Unmarshal(data, &rows); err != nil {
			continue
		}
		all = append(all, filterSince(rows, since)...)
	}
	sortInteractions(all)
	return all, nil
}

func (a *SnapshotAdapter) GetAuction(ctx context.Context, itemID string) (*core.Item, error) {
	if a.Bloom != nil && !a.Bloom.Test(itemID) {
		return nil, core.ErrStoreNotFound
	}
	data, err := a.store.Get(ctx, a.keyItem(itemID))
	if err != nil {
		return nil, err
	}
	var item core.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: corrupt auction "+itemID)
	}
	return &item, nil
}

func (a *SnapshotAdapter) GetActiveAuctions(ctx context.Context, category string) ([]*core.Item, error) {
	ids, err := a.getList(ctx, a.keyItems())
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, a.keyItem(id))
	}
	kvs, err := a.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(ids))
	for _, k := range keys {
		data, ok := kvs[k]
		if !ok {
			continue
		}
		var item core.Item
		if err := json.Unmarshal(data, &item); err != nil {
			continue
		}
		if item.Status != core.StatusActive {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		cp := item
		out = append(out, &cp)
	}
	// 目录顺序与 key 列表一致，本身确定；再按 ID 排一次防御上游乱序
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *SnapshotAdapter) GetClosedSales(ctx context.Context, category, condition string, window time.Duration) ([]core.SalePrice, error) {
	cohorts, err := a.getList(ctx, a.keyCohorts())
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(cohorts))
	for _, c := range cohorts {
		cat, cond, ok := splitCohort(c)
		if !ok {
			continue
		}
		if category != "" && cat != category {
			continue
		}
		if condition != "" && cond != condition {
			continue
		}
		keys = append(keys, a.keySales(cat, cond))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	kvs, err := a.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if window > 0 {
		cutoff = time.Now().Add(-window)
	}

	var all []core.SalePrice
	for _, k := range keys {
		data, ok := kvs[k]
		if !ok {
			continue
		}
		var rows []core.SalePrice
		if err := json.Unmarshal(data, &rows); err != nil {
			continue
		}
		for _, s := range rows {
			if !cutoff.IsZero() && s.SoldAt.Before(cutoff) {
				continue
			}
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].SoldAt.Equal(all[j].SoldAt) {
			return all[i].SoldAt.Before(all[j].SoldAt)
		}
		return all[i].Price < all[j].Price
	})
	return all, nil
}

func (a *SnapshotAdapter) LastUpdated(ctx context.Context) (time.Time, error) {
	data, err := a.store.Get(ctx, a.keyLastUpdated())
	if err != nil {
		if core.IsStoreNotFound(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, core.NewDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: corrupt last_updated stamp")
	}
	return t, nil
}

// ========== 写路径（同步任务/测试夹具使用，引擎本身从不调用） ==========

// SeedAuctions 写入拍品文档并维护拍品索引与布隆过滤器。
func (a *SnapshotAdapter) SeedAuctions(ctx context.Context, items []*core.Item) error {
	ids, err := a.getList(ctx, a.keyItems())
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	kvs := make(map[string][]byte, len(items))
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return err
		}
		kvs[a.keyItem(it.ID)] = data
		if !known[it.ID] {
			known[it.ID] = true
			ids = append(ids, it.ID)
		}
		if a.Bloom != nil {
			a.Bloom.Add(it.ID)
		}
	}
	if err := a.store.BatchSet(ctx, kvs); err != nil {
		return err
	}
	return a.putList(ctx, a.keyItems(), ids)
}

// SeedInteractions 追加交互记录（按用户分桶）并推进版本戳。
func (a *SnapshotAdapter) SeedInteractions(ctx context.Context, rows []core.Interaction) error {
	byUser := make(map[string][]core.Interaction)
	var latest time.Time
	for _, r := range rows {
		byUser[r.UserID] = append(byUser[r.UserID], r)
		if r.At.After(latest) {
			latest = r.At
		}
	}

	users, err := a.getList(ctx, a.keyUsers())
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u] = true
	}

	for userID, added := range byUser {
		existing, err := a.GetInteractions(ctx, userID, time.Time{})
		if err != nil {
			return err
		}
		merged := append(existing, added...)
		sortInteractions(merged)
		data, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		if err := a.store.Set(ctx, a.keyUser(userID), data); err != nil {
			return err
		}
		if !known[userID] {
			known[userID] = true
			users = append(users, userID)
		}
	}
	if err := a.putList(ctx, a.keyUsers(), users); err != nil {
		return err
	}
	return a.touch(ctx, latest)
}

// SeedSales 追加某口径下的成交记录并推进版本戳。
func (a *SnapshotAdapter) SeedSales(ctx context.Context, category, condition string, sales []core.SalePrice) error {
	key := a.keySales(category, condition)
	var existing []core.SalePrice
	if data, err := a.store.Get(ctx, key); err == nil {
		_ = json.Unmarshal(data, &existing)
	} else if !core.IsStoreNotFound(err) {
		return err
	}

	var latest time.Time
	for _, s := range sales {
		if s.SoldAt.After(latest) {
			latest = s.SoldAt
		}
	}
	merged := append(existing, sales...)
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	if err := a.store.Set(ctx, key, data); err != nil {
		return err
	}

	cohorts, err := a.getList(ctx, a.keyCohorts())
	if err != nil {
		return err
	}
	tag := category + "|" + condition
	found := false
	for _, c := range cohorts {
		if c == tag {
			found = true
			break
		}
	}
	if !found {
		cohorts = append(cohorts, tag)
		if err := a.putList(ctx, a.keyCohorts(), cohorts); err != nil {
			return err
		}
	}
	return a.touch(ctx, latest)
}

func (a *SnapshotAdapter) putList(ctx context.Context, key string, list []string) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data)
}

// touch 推进 last_updated 版本戳（只前进不后退）。
func (a *SnapshotAdapter) touch(ctx context.Context, t time.Time) error {
	if t.IsZero() {
		t = time.Now()
	}
	cur, err := a.LastUpdated(ctx)
	if err == nil && cur.After(t) {
		return nil
	}
	return a.store.Set(ctx, a.keyLastUpdated(), []byte(t.Format(time.RFC3339Nano)))
}

func filterSince(rows []core.Interaction, since time.Time) []core.Interaction {
	if since.IsZero() {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if r.At.Before(since) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// sortInteractions 按 (时间, 用户, 拍品, 类型) 排序，保证快照遍历顺序确定。
func sortInteractions(rows []core.Interaction) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].At.Equal(rows[j].At) {
			return rows[i].At.Before(rows[j].At)
		}
		if rows[i].UserID != rows[j].UserID {
			return rows[i].UserID < rows[j].UserID
		}
		if rows[i].ItemID != rows[j].ItemID {
			return rows[i].ItemID < rows[j].ItemID
		}
		return rows[i].Type < rows[j].Type
	})
}

func splitCohort(tag string) (category, condition string, ok bool) {
	for i := 0; i < len(tag); i++ {
		if tag[i] == '|' {
			return tag[:i], tag[i+1:], true
		}
	}
	return "", "", false
}

var _ core.InteractionStore = (*SnapshotAdapter)(nil)
