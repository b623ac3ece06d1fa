// Package label 把显式评分与隐式行为融合成统一的 (user, item) 真值交互表。
package label

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/pipeline"
	"github.com/rushteam/truthkit/pkg/dsl"
)

// 显式评分的默认阈值：≥4 为正，≤2 为负，(2,4) 开区间视为模糊信号丢弃。
const (
	DefaultPositiveMin = 4.0
	DefaultNegativeMax = 2.0
)

// StatusWeight 是一档隐式状态词及其置信权重，按切片顺序优先匹配。
type StatusWeight struct {
	Marker string
	Weight float64
}

// DefaultMarkers 是隐式行为的默认分档：
// 想看=0.3，看过=0.6，未知=0.1。
// “未知”给极低权重的正标签而不是丢弃——没有显式低分不构成“不喜欢”的证据，
// 隐式路径从不产生负标签。
func DefaultMarkers() []StatusWeight {
	return []StatusWeight{
		{Marker: "想看", Weight: 0.3},
		{Marker: "看过", Weight: 0.6},
		{Marker: "未知", Weight: 0.1},
	}
}

// Builder 是 label.fuse Stage：两条独立的标签路径各自产出候选行后合并去重。
//
//   - 显式路径：只看有评分的行；分数落在阈值外侧给满置信标签，中间丢弃
//   - 隐式路径：只看无评分的行；按状态词分档给弱正标签，无词可认丢弃
//   - 合并：缺失时间兜底到 epoch 哨兵（无时间的行排最旧）；
//     按 (user, item, ts) 稳定升序排序；同一 (user, item) 保留时间最新的一条
type Builder struct {
	PositiveMin float64 // 显式正标签下界，默认 4.0
	NegativeMax float64 // 显式负标签上界，默认 2.0

	// Markers 是隐式状态词分档，按顺序优先匹配；nil 使用 DefaultMarkers。
	Markers []StatusWeight

	// Filter 是可选的行级 CEL 过滤器，标注前先过一遍（nil 不过滤）。
	Filter *dsl.ReviewFilter
}

func (b *Builder) Name() string        { return "label.fuse" }
func (b *Builder) Kind() pipeline.Kind { return pipeline.KindLabel }

func (b *Builder) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	if ds.Reviews == nil {
		return nil, core.NewDomainError(core.ModuleLabel, core.ErrorCodeInvalidInput,
			"label: review table not loaded")
	}

	posMin := b.PositiveMin
	if posMin == 0 {
		posMin = DefaultPositiveMin
	}
	negMax := b.NegativeMax
	if negMax == 0 {
		negMax = DefaultNegativeMax
	}
	markers := b.Markers
	if markers == nil {
		markers = DefaultMarkers()
	}

	var rows []*core.Interaction
	for _, r := range ds.Reviews {
		keep, err := b.Filter.Keep(r)
		if err != nil {
			return nil, fmt.Errorf("label: filter: %w", err)
		}
		if !keep {
			continue
		}

		if r.Score != nil {
			if it := explicitLabel(r, posMin, negMax); it != nil {
				rows = append(rows, it)
			}
			continue
		}
		if it := implicitLabel(r, markers); it != nil {
			rows = append(rows, it)
		}
	}

	out := *ds
	out.Interactions = dedupe(rows)
	return &out, nil
}

// explicitLabel 处理显式评分路径：阈值外侧给满置信标签，中间区间丢弃。
func explicitLabel(r *core.ReviewRecord, posMin, negMax float64) *core.Interaction {
	s := *r.Score
	var y int
	switch {
	case s >= posMin:
		y = 1
	case s <= negMax:
		y = 0
	default:
		return nil
	}
	return &core.Interaction{
		UserID:   r.UserID,
		ItemID:   r.ItemID,
		TS:       resolveTS(r),
		Y:        y,
		Weight:   1.0,
		Source:   core.LabelSourceExplicit,
		RawScore: r.Score,
	}
}

// implicitLabel 处理隐式行为路径：按分档顺序匹配状态词，全部给正标签。
func implicitLabel(r *core.ReviewRecord, markers []StatusWeight) *core.Interaction {
	for _, mk := range markers {
		if !strings.Contains(r.Status, mk.Marker) {
			continue
		}
		return &core.Interaction{
			UserID: r.UserID,
			ItemID: r.ItemID,
			TS:     resolveTS(r),
			Y:      1,
			Weight: mk.Weight,
			Source: core.LabelSourceImplicit,
		}
	}
	return nil
}

func resolveTS(r *core.ReviewRecord) time.Time {
	if r.TS != nil {
		return *r.TS
	}
	return core.EpochSentinel
}

// dedupe 按 (user, item, ts) 稳定升序排序后，同一 (user, item) 保留最后一条
// （即时间最新的那条）——这是一个用户对同一电影有多个重叠信号时的冲突化解规则。
func dedupe(rows []*core.Interaction) []*core.Interaction {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.ItemID != b.ItemID {
			return a.ItemID < b.ItemID
		}
		return a.TS.Before(b.TS)
	})

	out := make([]*core.Interaction, 0, len(rows))
	for i, it := range rows {
		// 同 key 的下一条会覆盖当前条，只保留每组的末尾
		if i+1 < len(rows) && rows[i+1].Key() == it.Key() {
			continue
		}
		out = append(out, it)
	}
	return out
}
