package core

import "time"

// LabelSource 标注一条真值交互的标签来源。
type LabelSource string

const (
	LabelSourceExplicit LabelSource = "explicit_rating" // 显式评分（≥4 正 / ≤2 负）
	LabelSourceImplicit LabelSource = "implicit_status" // 隐式行为（想看/看过/未知 → 弱正）
)

// Split 是时序切分结果。
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
)

// EpochSentinel 是缺失时间戳的统一兜底值：让无时间的行排在最旧，
// 排序与去重因此是确定的。
var EpochSentinel = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Interaction 是一条融合后的 (user, item) 真值偏好：
// 二元标签 + 置信权重 + 标签来源。同一 (user, item) 去重后全表唯一，
// 冲突时保留时间最新的一条。Split 由切分阶段赋值一次，此外只读。
type Interaction struct {
	UserID string
	ItemID string
	TS     time.Time

	Y      int     // 1=正样本，0=负样本
	Weight float64 // 置信度 [0,1]：显式 1.0，隐式按状态分档
	Source LabelSource

	// RawScore 保留原始评分用于审计；隐式行为行为 nil。
	RawScore *float64

	Split Split
}

// Key 返回 (user, item) 对的去重键。
func (it *Interaction) Key() string {
	return it.UserID + "\x00" + it.ItemID
}
