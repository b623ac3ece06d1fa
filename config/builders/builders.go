package builders

import (
	"fmt"

	"github.com/rushteam/truthkit/config"
	"github.com/rushteam/truthkit/dataset"
	"github.com/rushteam/truthkit/label"
	"github.com/rushteam/truthkit/pipeline"
	"github.com/rushteam/truthkit/pkg/conv"
	"github.com/rushteam/truthkit/pkg/dsl"
	"github.com/rushteam/truthkit/quality"
	"github.com/rushteam/truthkit/sample"
	"github.com/rushteam/truthkit/sink"
	"github.com/rushteam/truthkit/split"
)

func init() {
	config.Register("load.csv", BuildCSVLoader)
	config.Register("quality.bayes", BuildBayesEstimator)
	config.Register("label.fuse", BuildLabelBuilder)
	config.Register("split.temporal", BuildTemporalSplitter)
	config.Register("sample.popularity", BuildPopularitySampler)
	config.Register("sink.csv", BuildCSVSink)
	// sink.store 需要调用方注入存活的 core.KeyValueStore，不从配置构建
}

func BuildCSVLoader(cfg map[string]interface{}) (pipeline.Stage, error) {
	movies := conv.ConfigGet(cfg, "movies", "")
	reviews := conv.ConfigGet(cfg, "reviews", "")
	if movies == "" || reviews == "" {
		return nil, fmt.Errorf("load.csv requires movies and reviews paths")
	}

	l := &dataset.CSVLoader{
		MoviesPath:  movies,
		ReviewsPath: reviews,
	}
	if m := stringMap(cfg["movie_columns"]); m != nil {
		l.MovieCols = &dataset.MovieColumns{
			ItemID:       m["item_id"],
			Title:        m["title"],
			ReleaseYear:  m["release_year"],
			GenreList:    m["genre_list"],
			AverageScore: m["average_score"],
			StarRating:   m["star_rating"],
			RatingCount:  m["rating_count"],
		}
	}
	if m := stringMap(cfg["review_columns"]); m != nil {
		l.ReviewCols = &dataset.ReviewColumns{
			UserID:    m["user_id"],
			ItemID:    m["item_id"],
			Score:     m["score"],
			Status:    m["status_text"],
			Timestamp: m["timestamp_text"],
		}
	}
	return l, nil
}

func BuildBayesEstimator(cfg map[string]interface{}) (pipeline.Stage, error) {
	c := conv.ConfigGetInt64(cfg, "prior_strength", quality.DefaultPriorStrength)
	if c < 0 {
		return nil, fmt.Errorf("quality.bayes: prior_strength must be >= 0, got %d", c)
	}
	return &quality.Estimator{PriorStrength: int(c)}, nil
}

func BuildLabelBuilder(cfg map[string]interface{}) (pipeline.Stage, error) {
	b := &label.Builder{
		PositiveMin: conv.ConfigGetFloat64(cfg, "positive_min", label.DefaultPositiveMin),
		NegativeMax: conv.ConfigGetFloat64(cfg, "negative_max", label.DefaultNegativeMax),
	}

	if raw, ok := cfg["markers"].([]interface{}); ok {
		markers := make([]label.StatusWeight, 0, len(raw))
		for _, e := range raw {
			m, ok := e.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("label.fuse: marker entry must be a map")
			}
			marker := conv.ConfigGet(m, "marker", "")
			if marker == "" {
				return nil, fmt.Errorf("label.fuse: marker entry missing marker text")
			}
			markers = append(markers, label.StatusWeight{
				Marker: marker,
				Weight: conv.ConfigGetFloat64(m, "weight", 0),
			})
		}
		b.Markers = markers
	}

	if expr := conv.ConfigGet(cfg, "filter", ""); expr != "" {
		f, err := dsl.NewReviewFilter(expr)
		if err != nil {
			return nil, fmt.Errorf("label.fuse: %w", err)
		}
		b.Filter = f
	}
	return b, nil
}

func BuildTemporalSplitter(_ map[string]interface{}) (pipeline.Stage, error) {
	return &split.Temporal{}, nil
}

func BuildPopularitySampler(cfg map[string]interface{}) (pipeline.Stage, error) {
	k := conv.ConfigGetInt64(cfg, "k", sample.DefaultK)
	if k <= 0 {
		return nil, fmt.Errorf("sample.popularity: k must be > 0, got %d", k)
	}
	return &sample.Popularity{
		K:          int(k),
		Oversample: int(conv.ConfigGetInt64(cfg, "oversample", sample.DefaultOversample)),
		Seed:       conv.ConfigGetInt64(cfg, "seed", sample.DefaultSeed),
	}, nil
}

func BuildCSVSink(cfg map[string]interface{}) (pipeline.Stage, error) {
	dir := conv.ConfigGet(cfg, "dir", "")
	if dir == "" {
		return nil, fmt.Errorf("sink.csv requires dir")
	}
	return &sink.CSVSink{Dir: dir}, nil
}

// stringMap 把 config 里嵌套的 map[string]interface{} 转成 map[string]string，
// 非字符串 value 被跳过。
func stringMap(v interface{}) map[string]string {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return conv.ConvertMap(raw, func(e interface{}) (string, bool) {
		s, ok := e.(string)
		return s, ok
	})
}
