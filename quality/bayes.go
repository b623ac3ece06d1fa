// Package quality 实现电影“质量真值”的贝叶斯校准。
package quality

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/pipeline"
)

// DefaultPriorStrength 是先验强度 C 的默认值（伪计数）。
const DefaultPriorStrength = 80

// Estimator 是 quality.bayes Stage：对每部电影计算
//
//	s_hat = (m*C + R*N) / (C + N)
//
// R: 电影的平均星级(0~5)；N: 评分人数；m: 全局先验均值；C: 先验强度。
// N→∞ 时收敛到 R，N→0 时回退到 m——小样本电影向全局均值收缩，
// 大样本电影由自身均值主导。输入快照的纯函数，无副作用。
type Estimator struct {
	// PriorStrength 即 C，必须 ≥ 0；0 表示完全信任原始均值。
	PriorStrength int
}

func (e *Estimator) Name() string        { return "quality.bayes" }
func (e *Estimator) Kind() pipeline.Kind { return pipeline.KindQuality }

func (e *Estimator) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	if e.PriorStrength < 0 {
		return nil, core.NewDomainError(core.ModuleQuality, core.ErrorCodeInvalidInput,
			fmt.Sprintf("quality: prior strength must be >= 0, got %d", e.PriorStrength))
	}
	if ds.Movies == nil {
		return nil, core.NewDomainError(core.ModuleQuality, core.ErrorCodeInvalidInput,
			"quality: movie table not loaded")
	}

	m := priorMean(ds.Movies)
	c := float64(e.PriorStrength)

	rows := make([]*core.ItemQuality, 0, len(ds.Movies))
	for _, mv := range ds.Movies {
		var n float64
		if mv.RatingCount != nil {
			n = float64(*mv.RatingCount)
		}

		// N=0 或星级未定义时直接回退到先验均值，不允许除零/NaN 流出
		sHat := m
		if mv.StarRating != nil && n > 0 {
			sHat = (m*c + *mv.StarRating*n) / (c + n)
		}

		rows = append(rows, &core.ItemQuality{
			ItemID:        mv.ItemID,
			Title:         mv.Title,
			ReleaseYear:   mv.ReleaseYear,
			GenreList:     mv.GenreList,
			AverageScore:  mv.AverageScore,
			StarRating:    mv.StarRating,
			RatingCount:   mv.RatingCount,
			SHat:          round3(sHat),
			PriorMean:     round3(m),
			PriorStrength: e.PriorStrength,
		})
	}

	out := *ds
	out.Quality = rows
	return &out, nil
}

// priorMean 计算全局先验均值 m：所有有星级（含兜底回填）电影的均值。
// 一部有星级的电影都没有时返回 0。
func priorMean(movies []*core.MovieRecord) float64 {
	var sum float64
	var cnt int
	for _, mv := range movies {
		if mv.StarRating != nil {
			sum += *mv.StarRating
			cnt++
		}
	}
	if cnt == 0 {
		return 0
	}
	return sum / float64(cnt)
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
