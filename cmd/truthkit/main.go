// truthkit 命令行入口：从配置文件构建并运行一次真值层流水线。
//
// 用法：
//
//	truthkit -config truthkit.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rushteam/truthkit/config"
	_ "github.com/rushteam/truthkit/config/builders"
	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/pipeline"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "truthkit.yaml", "pipeline config file (yaml or json)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	if err := run(configPath, logger); err != nil {
		// 失败的运行只报告出错的阶段与原因，不留半成品产物
		logger.Error("pipeline run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(configPath string, logger *zap.Logger) error {
	var (
		cfg *pipeline.Config
		err error
	)
	if strings.HasSuffix(configPath, ".json") {
		cfg, err = pipeline.LoadFromJSON(configPath)
	} else {
		cfg, err = pipeline.LoadFromYAML(configPath)
	}
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}

	if err := config.ValidatePipelineConfig(cfg); err != nil {
		return err
	}

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		return err
	}
	p.Logger = logger

	ds, err := p.Run(context.Background(), &core.Dataset{})
	if err != nil {
		return err
	}

	s := ds.Summarize()
	logger.Info("pipeline run complete",
		zap.String("pipeline", cfg.Pipeline.Name),
		zap.Int("movies", s.Movies),
		zap.Int("reviews", s.Reviews),
		zap.Int("interactions", s.Interactions),
		zap.Int("positives", s.Positives),
		zap.Int("negatives", s.Negatives),
		zap.Int("train", s.Train),
		zap.Int("val", s.Val),
		zap.Int("test", s.Test),
		zap.Int("eval_cases", s.EvalCases),
	)
	return nil
}
