package core

// ItemQuality 是单部电影的贝叶斯校准质量真值。
// SHat 是原始均值与全局先验的单调混合：评分人数越多越接近自身均值，
// 人数趋近 0 时回退到先验均值。原始输入全部保留用于审计。
type ItemQuality struct {
	ItemID      string
	Title       string
	ReleaseYear *int
	GenreList   string

	AverageScore *float64 // 原始均分（0~10）
	StarRating   *float64 // 原始星级（0~5）
	RatingCount  *int64   // 原始评分人数

	SHat          float64 // 校准后的 0~5 质量估计，保留 3 位小数
	PriorMean     float64 // 全局先验均值 m（保留 3 位小数）
	PriorStrength int     // 先验强度 C（伪计数）
}
