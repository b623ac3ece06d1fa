package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/truthkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("review", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// ReviewFilter 是评论行过滤器，使用 CEL (Common Expression Language) 实现。
// 表达式在构建时编译一次，之后逐行求值，返回 true 的行保留。
//
// 可访问的变量（review.*）：
//   - review.user_id / review.item_id：string
//   - review.score：double，缺失时为 null（用 review.score != null 判存在性）
//   - review.status：string，可为空串
//   - review.ts：string（"2006-01-02 15:04:05"，缺失为空串）
//   - review.ts_unix：int，缺失时为 0
//
// 示例：
//   - `review.score == null || review.score >= 1.0` → 丢掉可疑的超低显式分
//   - `review.ts_unix >= 1262304000` → 只保留 2010 年以后的行为
//   - `review.status.contains("看过")` → 只保留看过类行为
type ReviewFilter struct {
	expr string
	prg  cel.Program
}

// NewReviewFilter 编译表达式并返回过滤器。空表达式返回 nil（不过滤）。
func NewReviewFilter(expr string) (*ReviewFilter, error) {
	if expr == "" {
		return nil, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}

	return &ReviewFilter{expr: expr, prg: prg}, nil
}

// Keep 判定一条评论行是否保留。nil 过滤器保留所有行。
func (f *ReviewFilter) Keep(r *core.ReviewRecord) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, _, err := f.prg.Eval(map[string]interface{}{
		"review": buildInput(r),
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。
// 缺失的 score 映射为 null，用户应使用 review.score != null 判断存在性。
func buildInput(r *core.ReviewRecord) map[string]interface{} {
	var score interface{}
	if r.Score != nil {
		score = *r.Score
	}

	ts := ""
	var tsUnix int64
	if r.TS != nil {
		ts = r.TS.Format("2006-01-02 15:04:05")
		tsUnix = r.TS.Unix()
	}

	return map[string]interface{}{
		"user_id": r.UserID,
		"item_id": r.ItemID,
		"score":   score,
		"status":  r.Status,
		"ts":      ts,
		"ts_unix": tsUnix,
	}
}
