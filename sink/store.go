package sink

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/pipeline"
)

// StorePublisher 是 sink.store Stage：把质量真值发布到 KeyValueStore，
// 供服务层的冷启动排序直接消费：
//
//   - 有序集合 {prefix}:items：member=item_id，score=s_hat（ZRange 即 TopN 榜单）
//   - 哈希表 {prefix}:meta：field=item_id，value=质量行 JSON
//
// 核心流水线不假设任何缓存存在；这个 Stage 由需要的调用方显式挂载。
type StorePublisher struct {
	Store core.KeyValueStore

	// KeyPrefix 默认 "quality"。
	KeyPrefix string
}

// qualityEntry 是发布到哈希表的质量行。
type qualityEntry struct {
	ItemID        string   `json:"item_id"`
	Title         string   `json:"title,omitempty"`
	ReleaseYear   *int     `json:"release_year,omitempty"`
	GenreList     string   `json:"genre_list,omitempty"`
	AverageScore  *float64 `json:"average_score,omitempty"`
	StarRating    *float64 `json:"star_rating,omitempty"`
	RatingCount   *int64   `json:"rating_count,omitempty"`
	SHat          float64  `json:"s_hat"`
	PriorMean     float64  `json:"prior_mean"`
	PriorStrength int      `json:"prior_strength"`
}

func (p *StorePublisher) Name() string        { return "sink.store" }
func (p *StorePublisher) Kind() pipeline.Kind { return pipeline.KindSink }

func (p *StorePublisher) Process(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	if p.Store == nil {
		return nil, core.NewDomainError(core.ModuleSink, core.ErrorCodeInvalidInput,
			"sink: store not configured")
	}
	if ds.Quality == nil {
		return nil, core.NewDomainError(core.ModuleSink, core.ErrorCodeInvalidInput,
			"sink: quality table not built, store sink must run after quality stage")
	}

	prefix := p.KeyPrefix
	if prefix == "" {
		prefix = "quality"
	}
	itemsKey := prefix + ":items"
	metaKey := prefix + ":meta"

	for _, q := range ds.Quality {
		if err := p.Store.ZAdd(ctx, itemsKey, q.SHat, q.ItemID); err != nil {
			return nil, err
		}

		data, err := json.Marshal(&qualityEntry{
			ItemID:        q.ItemID,
			Title:         q.Title,
			ReleaseYear:   q.ReleaseYear,
			GenreList:     q.GenreList,
			AverageScore:  q.AverageScore,
			StarRating:    q.StarRating,
			RatingCount:   q.RatingCount,
			SHat:          q.SHat,
			PriorMean:     q.PriorMean,
			PriorStrength: q.PriorStrength,
		})
		if err != nil {
			return nil, err
		}
		if err := p.Store.HSet(ctx, metaKey, q.ItemID, data); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
