// Package store 只包含实现，接口定义在 core 包。
// 使用 core.Store 和 core.KeyValueStore 接口。
//
// truthkit 里 store 的用途是质量真值发布（sink.store）：
// 服务层从有序集合读 s_hat TopN 做冷启动排序，从哈希表读质量明细。
//
// 示例：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	p := &sink.StorePublisher{Store: kv}
package store

import "github.com/rushteam/truthkit/core"

// ErrNotFound 表示 key 不存在（复用统一的领域错误）。
var ErrNotFound = core.ErrStoreNotFound
