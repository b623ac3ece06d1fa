package pipeline

import (
	"context"

	"github.com/rushteam/truthkit/core"
)

// Kind 用于标记 Stage 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindLoad    Kind = "load"    // 读取与清洗：原始 CSV → 规范化表
	KindQuality Kind = "quality" // 质量真值：贝叶斯校准 s_hat
	KindLabel   Kind = "label"   // 标签融合：显式+隐式 → 去重真值交互表
	KindSplit   Kind = "split"   // 时序切分：train / val / test
	KindSample  Kind = "sample"  // 负采样：test 正样本 → 评测样本
	KindSink    Kind = "sink"    // 产物输出：CSV 落盘 / Store 发布
)

// Stage 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 Dataset -> 输出 Dataset”的形态：每个阶段读取前序的表、
// 填充自己的表。除 split 阶段对 Interactions 的一次性标注外，
// 不原地修改前序阶段的输出。
type Stage interface {
	Name() string
	Kind() Kind

	Process(ctx context.Context, ds *core.Dataset) (*core.Dataset, error)
}
