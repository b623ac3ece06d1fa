// Package split 实现留一法时序切分：用用户最近的正反馈做评测，防止未来信息泄漏。
package split

import (
	"context"
	"sort"

	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/pipeline"
)

// Temporal 是 split.temporal Stage。对每个用户，只看其正样本（y=1）按时间升序：
//
//   - 最后一个正样本 → test
//   - 倒数第二个正样本（若有 ≥2 个） → val
//   - 其余所有行（包括全部负样本） → train
//
// 模拟真实的“下一个物品”评测：模型只能用 T 之前的历史预测 T 之后的交互。
// 只有 1 个正样本的用户没有 val；没有正样本的用户全部留在 train。
// 这是流水线中唯一的原地修改：给交互表标注 Split，行本身不增不删。
type Temporal struct{}

func (s *Temporal) Name() string        { return "split.temporal" }
func (s *Temporal) Kind() pipeline.Kind { return pipeline.KindSplit }

func (s *Temporal) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	if ds.Interactions == nil {
		return nil, core.NewDomainError(core.ModuleSplit, core.ErrorCodeInvalidInput,
			"split: interaction table not built")
	}

	// 显式的“分组 → 排序 → 取尾”实现：每个用户一份自有的正样本列表，
	// 构建一次、遍历一次，不依赖任何全表位置索引技巧。
	byUser := make(map[string][]*core.Interaction)
	for _, it := range ds.Interactions {
		it.Split = core.SplitTrain
		if it.Y == 1 {
			byUser[it.UserID] = append(byUser[it.UserID], it)
		}
	}

	for _, pos := range byUser {
		// 时间升序，时间相同按 item_id 定序，保证重跑结果逐字节一致
		sort.SliceStable(pos, func(i, j int) bool {
			if !pos[i].TS.Equal(pos[j].TS) {
				return pos[i].TS.Before(pos[j].TS)
			}
			return pos[i].ItemID < pos[j].ItemID
		})

		pos[len(pos)-1].Split = core.SplitTest
		if len(pos) >= 2 {
			pos[len(pos)-2].Split = core.SplitVal
		}
	}

	out := *ds
	return &out, nil
}
