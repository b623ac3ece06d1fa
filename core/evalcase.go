package core

// EvalCase 是一条离线排序评测样本：一个 test 正样本配 K 个负样本。
// 不变量：负例不含正样本本身、不含该用户任何已观测物品，长度恰为 K。
// 下游用它计算 HR@K / NDCG@K，本包只负责产出。
type EvalCase struct {
	UserID    string
	PosItemID string
	Negatives []string // 有序，恰好 K 个
}
