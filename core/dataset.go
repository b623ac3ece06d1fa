package core

// Dataset 是贯穿整个流水线的物化数据集：每个阶段读取前序阶段的表、
// 填充自己的表。数据严格向前流动，唯一的原地修改是切分阶段给
// Interactions 标注 Split。
type Dataset struct {
	Movies       []*MovieRecord
	Reviews      []*ReviewRecord
	Quality      []*ItemQuality
	Interactions []*Interaction
	EvalCases    []*EvalCase
}

// Summary 是一次成功运行后的汇总计数，供日志与调用方使用。
type Summary struct {
	Movies       int
	Reviews      int
	Interactions int
	Positives    int
	Negatives    int
	Train        int
	Val          int
	Test         int
	EvalCases    int
}

// Summarize 对当前数据集做一次汇总统计。
func (ds *Dataset) Summarize() Summary {
	s := Summary{
		Movies:       len(ds.Movies),
		Reviews:      len(ds.Reviews),
		Interactions: len(ds.Interactions),
		EvalCases:    len(ds.EvalCases),
	}
	for _, it := range ds.Interactions {
		if it.Y == 1 {
			s.Positives++
		} else {
			s.Negatives++
		}
		switch it.Split {
		case SplitTrain:
			s.Train++
		case SplitVal:
			s.Val++
		case SplitTest:
			s.Test++
		}
	}
	return s
}

// SeenItems 返回每个用户的已观测物品集合（任意标签、任意切分）。
// 负采样用它过滤用户见过的物品。
func (ds *Dataset) SeenItems() map[string]map[string]struct{} {
	seen := make(map[string]map[string]struct{})
	for _, it := range ds.Interactions {
		s, ok := seen[it.UserID]
		if !ok {
			s = make(map[string]struct{})
			seen[it.UserID] = s
		}
		s[it.ItemID] = struct{}{}
	}
	return seen
}
