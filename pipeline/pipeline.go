package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/truthkit/core"
)

// Pipeline 是 truthkit 的核心抽象：把真值层流水线拆成顺序执行的 Stage 链
// （load → quality → label → split → sample → sink）。
// 每个 Stage 完整物化自己的表后下一个 Stage 才开始；任一 Stage 出错即
// 整体终止，不会留下半成品产物。
type Pipeline struct {
	Stages []Stage

	// Logger 可选；为空时静默运行（库内不打日志，和调用方日志体系解耦）。
	Logger *zap.Logger
}

func (p *Pipeline) Run(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if ds == nil {
		ds = &core.Dataset{}
	}

	cur := ds
	for _, stage := range p.Stages {
		start := time.Now()
		next, err := stage.Process(ctx, cur)
		if err != nil {
			logger.Error("stage failed",
				zap.String("stage", stage.Name()),
				zap.String("kind", string(stage.Kind())),
				zap.Error(err))
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		logger.Info("stage done",
			zap.String("stage", stage.Name()),
			zap.String("kind", string(stage.Kind())),
			zap.Duration("took", time.Since(start)))
		cur = next
	}
	return cur, nil
}
