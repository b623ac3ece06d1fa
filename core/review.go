package core

import "time"

// ReviewRecord 是清洗后的原始评论/行为行。
// 本数据集的约定：Score 与 Status 每行只有一个承担语义——有分数走显式路径，
// 无分数看状态词走隐式路径（见 label 包）。
type ReviewRecord struct {
	UserID string
	ItemID string

	Score  *float64 // 站点评分（0~5 制），解析失败/缺失为 nil
	Status string   // 行为状态原文（如 "想看"/"看过"），可为空

	// TS 为解析后的评论时间；四种格式都解析失败时为 nil，
	// 由 label 阶段统一兜底到 epoch 哨兵，保证排序确定。
	TS *time.Time
}
