// Package dataset 负责流水线第一步：读取原始 CSV 并清洗成规范化表。
// 清洗遵循“失败即缺失”：单元格解析失败不终止运行；
// 文件缺失 / 编码无法识别才是致命的配置错误。
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/pipeline"
	"github.com/rushteam/truthkit/pkg/conv"
)

// MovieColumns 是电影表的列名映射，零值字段回落到规范列名。
// 豆瓣爬虫产物可以用配置映射过来（douban_average_score → average_score 等）。
type MovieColumns struct {
	ItemID       string // 默认 "item_id"
	Title        string // 默认 "title"
	ReleaseYear  string // 默认 "release_year"
	GenreList    string // 默认 "genre_list"
	AverageScore string // 默认 "average_score"
	StarRating   string // 默认 "star_rating"
	RatingCount  string // 默认 "rating_count"
}

// ReviewColumns 是评论表的列名映射，零值字段回落到规范列名。
type ReviewColumns struct {
	UserID    string // 默认 "user_id"
	ItemID    string // 默认 "item_id"
	Score     string // 默认 "score"
	Status    string // 默认 "status_text"
	Timestamp string // 默认 "timestamp_text"
}

func (c *MovieColumns) withDefaults() MovieColumns {
	out := MovieColumns{
		ItemID:       "item_id",
		Title:        "title",
		ReleaseYear:  "release_year",
		GenreList:    "genre_list",
		AverageScore: "average_score",
		StarRating:   "star_rating",
		RatingCount:  "rating_count",
	}
	if c == nil {
		return out
	}
	apply := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	apply(&out.ItemID, c.ItemID)
	apply(&out.Title, c.Title)
	apply(&out.ReleaseYear, c.ReleaseYear)
	apply(&out.GenreList, c.GenreList)
	apply(&out.AverageScore, c.AverageScore)
	apply(&out.StarRating, c.StarRating)
	apply(&out.RatingCount, c.RatingCount)
	return out
}

func (c *ReviewColumns) withDefaults() ReviewColumns {
	out := ReviewColumns{
		UserID:    "user_id",
		ItemID:    "item_id",
		Score:     "score",
		Status:    "status_text",
		Timestamp: "timestamp_text",
	}
	if c == nil {
		return out
	}
	apply := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	apply(&out.UserID, c.UserID)
	apply(&out.ItemID, c.ItemID)
	apply(&out.Score, c.Score)
	apply(&out.Status, c.Status)
	apply(&out.Timestamp, c.Timestamp)
	return out
}

// CSVLoader 是 load.csv Stage：读取电影表与评论表两个 CSV，
// 产出规范化的 MovieRecord / ReviewRecord 集合。
// 两个文件相互独立，并发读取（这是流水线中仅有的并发点）。
type CSVLoader struct {
	MoviesPath  string
	ReviewsPath string

	// 列名映射，nil 使用规范列名（见 MovieColumns / ReviewColumns）。
	MovieCols  *MovieColumns
	ReviewCols *ReviewColumns
}

func (l *CSVLoader) Name() string        { return "load.csv" }
func (l *CSVLoader) Kind() pipeline.Kind { return pipeline.KindLoad }

func (l *CSVLoader) Process(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	var (
		movies  []*core.MovieRecord
		reviews []*core.ReviewRecord
	)

	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		movies, err = l.loadMovies()
		return err
	})
	eg.Go(func() error {
		var err error
		reviews, err = l.loadReviews()
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := *ds
	out.Movies = movies
	out.Reviews = reviews
	return &out, nil
}

func (l *CSVLoader) loadMovies() ([]*core.MovieRecord, error) {
	cols := l.MovieCols.withDefaults()
	t, err := readTable(l.MoviesPath)
	if err != nil {
		return nil, err
	}
	if err := t.require(l.MoviesPath, cols.ItemID); err != nil {
		return nil, err
	}

	movies := make([]*core.MovieRecord, 0, len(t.rows))
	for _, row := range t.rows {
		itemID := strings.TrimSpace(t.cell(row, cols.ItemID))
		if itemID == "" {
			// 没有稳定外部标识的行无法参与后续任何阶段
			continue
		}

		m := &core.MovieRecord{
			ItemID:       itemID,
			Title:        strings.TrimSpace(t.cell(row, cols.Title)),
			GenreList:    strings.TrimSpace(t.cell(row, cols.GenreList)),
			AverageScore: conv.ParseFloat(t.cell(row, cols.AverageScore)),
			StarRating:   conv.ParseFloat(t.cell(row, cols.StarRating)),
			RatingCount:  conv.ParseCount(t.cell(row, cols.RatingCount)),
		}
		if y := conv.ParseCount(t.cell(row, cols.ReleaseYear)); y != nil {
			year := int(*y)
			m.ReleaseYear = &year
		}

		// 星级兜底：缺失时用均分/2（必须在数值清洗之后）
		if m.StarRating == nil && m.AverageScore != nil {
			star := *m.AverageScore / 2.0
			m.StarRating = &star
		}

		movies = append(movies, m)
	}
	return movies, nil
}

func (l *CSVLoader) loadReviews() ([]*core.ReviewRecord, error) {
	cols := l.ReviewCols.withDefaults()
	t, err := readTable(l.ReviewsPath)
	if err != nil {
		return nil, err
	}
	if err := t.require(l.ReviewsPath, cols.UserID, cols.ItemID); err != nil {
		return nil, err
	}

	reviews := make([]*core.ReviewRecord, 0, len(t.rows))
	for _, row := range t.rows {
		userID := strings.TrimSpace(t.cell(row, cols.UserID))
		itemID := strings.TrimSpace(t.cell(row, cols.ItemID))
		if userID == "" || itemID == "" {
			continue
		}

		reviews = append(reviews, &core.ReviewRecord{
			UserID: userID,
			ItemID: itemID,
			Score:  conv.ParseFloat(t.cell(row, cols.Score)),
			Status: strings.TrimSpace(t.cell(row, cols.Status)),
			TS:     conv.ParseTime(t.cell(row, cols.Timestamp)),
		})
	}
	return reviews, nil
}

// table 是 DictReader 风格的内存表：按列名取单元格，缺列返回空串。
type table struct {
	header map[string]int
	rows   [][]string
}

func (t *table) cell(row []string, col string) string {
	idx, ok := t.header[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func (t *table) require(path string, cols ...string) error {
	for _, c := range cols {
		if _, ok := t.header[c]; !ok {
			return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: %s: missing required column %q", path, c))
		}
	}
	return nil
}

// readTable 读取整个 CSV：先剥 UTF-8 BOM 再解析（兼容被 Excel 编辑过的文件），
// 非 UTF-8 内容视为致命的配置错误。行宽不做强校验，短行按缺失处理。
func readTable(path string) (*table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeNotFound,
				fmt.Sprintf("dataset: input file not found: %s", path))
		}
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: %s is not valid UTF-8", path))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err == io.EOF {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: %s is empty", path))
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}

	header := make(map[string]int, len(head))
	for i, name := range head {
		header[strings.TrimSpace(name)] = i
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return &table{header: header, rows: rows}, nil
}
