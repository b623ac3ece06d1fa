package conv

import (
	"strconv"
	"strings"
	"time"
)

// TimeLayouts 是评论时间的候选格式，按顺序尝试，首个命中即生效。
var TimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04",
	"2006/01/02",
}

// ParseFloat 把单元格文本解析为 float64；解析失败视为缺失（返回 nil），
// 不产生错误——脏数据行继续流过流水线。
func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseCount 把计数文本解析为非负整数：剔除所有非数字字符
// （兼容 "12,345" 这类带千分位的写法），剩余为空视为缺失。
func ParseCount(s string) *int64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ParseTime 按 TimeLayouts 顺序解析时间文本，全部失败返回 nil，
// 由 label 阶段统一兜底到 epoch 哨兵。
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range TimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}
