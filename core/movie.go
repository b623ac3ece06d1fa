package core

import "strings"

// MovieRecord 是清洗后的电影元数据行，一次流水线运行中构建一次，之后只读。
// 均分是 0~10 制；StarRating 是 0~5 制，缺失时由 AverageScore/2 兜底
// （兜底发生在 dataset 清洗阶段，兜底之后两者不会同时缺失、也不会冲突）。
type MovieRecord struct {
	ItemID      string
	Title       string
	ReleaseYear *int

	// GenreList 保留原始类型串（如 "剧情,科幻"），产物表原样回写。
	GenreList string

	AverageScore *float64 // 0~10，解析失败为 nil
	StarRating   *float64 // 0~5，缺失时清洗阶段用 AverageScore/2 回填
	RatingCount  *int64   // 评分人数，缺失在质量估计中按 0 处理
}

// Genres 把 GenreList 拆成类型集合，兼容常见分隔符。
func (m *MovieRecord) Genres() []string {
	if m.GenreList == "" {
		return nil
	}
	fields := strings.FieldsFunc(m.GenreList, func(r rune) bool {
		return r == ',' || r == '|' || r == '/' || r == '、'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
