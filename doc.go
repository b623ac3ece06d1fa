// Package truthkit 是电影推荐系统的真值层（Truth Kit）：
// 把多源评分与用户行为离线加工成校准后的质量分数与评测数据集。
//
// 设计要点：
// - Pipeline-first: 整条真值流水线通过 Stage 串联（Load → Quality → Label → Split → Sample → Sink）
// - Tables-first: 每个 Stage 完整物化自己的表再交给下一个，核心只产出内存表，不假设任何存储
// - Stage 可扩展: 自定义 Stage 即可插拔扩展，内置 Stage 支持 YAML/JSON 配置驱动
package truthkit

import "github.com/rushteam/truthkit/pipeline"

// 轻量 facade：便于用户直接 import "truthkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Stage = pipeline.Stage
type Kind = pipeline.Kind

const (
	KindLoad    = pipeline.KindLoad
	KindQuality = pipeline.KindQuality
	KindLabel   = pipeline.KindLabel
	KindSplit   = pipeline.KindSplit
	KindSample  = pipeline.KindSample
	KindSink    = pipeline.KindSink
)
