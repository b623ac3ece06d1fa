// Package sink 负责把流水线产物写出：CSV 落盘与 KeyValueStore 发布。
// 流水线核心只产出内存表；挂不挂 sink、挂哪个 sink 由调用方决定。
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/pipeline"
)

// 四个产物文件名（与上游脚本约定保持一致）。
const (
	FileItemQuality  = "item_quality.csv"
	FileInteractions = "interactions_gt.csv"
	FileSplits       = "splits.csv"
	FileEvalSamples  = "eval_samples.csv"
)

// CSVSink 是 sink.csv Stage：把四张产物表写到 Dir 下。
// 所有文件先写临时文件、全部成功后统一改名——失败的运行不留半成品产物。
type CSVSink struct {
	Dir string
}

func (s *CSVSink) Name() string        { return "sink.csv" }
func (s *CSVSink) Kind() pipeline.Kind { return pipeline.KindSink }

func (s *CSVSink) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	if ds.Quality == nil || ds.Interactions == nil || ds.EvalCases == nil {
		return nil, core.NewDomainError(core.ModuleSink, core.ErrorCodeInvalidInput,
			"sink: upstream tables incomplete, csv sink must run after sample stage")
	}
	if s.Dir == "" {
		return nil, core.NewDomainError(core.ModuleSink, core.ErrorCodeInvalidInput,
			"sink: output dir not set")
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create dir %s: %w", s.Dir, err)
	}

	w := &atomicWriter{dir: s.Dir}
	defer w.cleanup()

	if err := w.writeFile(FileItemQuality, qualityRows(ds.Quality)); err != nil {
		return nil, err
	}
	if err := w.writeFile(FileInteractions, interactionRows(ds.Interactions, true)); err != nil {
		return nil, err
	}
	if err := w.writeFile(FileSplits, interactionRows(ds.Interactions, false)); err != nil {
		return nil, err
	}
	if err := w.writeFile(FileEvalSamples, evalRows(ds.EvalCases)); err != nil {
		return nil, err
	}

	if err := w.commit(); err != nil {
		return nil, err
	}
	return ds, nil
}

func qualityRows(quality []*core.ItemQuality) [][]string {
	rows := make([][]string, 0, len(quality)+1)
	rows = append(rows, []string{
		"item_id", "title", "release_year", "genre_list",
		"average_score", "star_rating", "rating_count",
		"s_hat", "prior_mean", "prior_strength",
	})
	for _, q := range quality {
		rows = append(rows, []string{
			q.ItemID,
			q.Title,
			formatIntPtr(q.ReleaseYear),
			q.GenreList,
			formatFloatPtr(q.AverageScore),
			formatFloatPtr(q.StarRating),
			formatInt64Ptr(q.RatingCount),
			formatFloat(q.SHat),
			formatFloat(q.PriorMean),
			strconv.Itoa(q.PriorStrength),
		})
	}
	return rows
}

func interactionRows(interactions []*core.Interaction, withRawScore bool) [][]string {
	header := []string{"user_id", "item_id", "ts", "y", "weight", "label_source"}
	if withRawScore {
		header = append(header, "raw_score")
	}
	header = append(header, "split")

	rows := make([][]string, 0, len(interactions)+1)
	rows = append(rows, header)
	for _, it := range interactions {
		row := []string{
			it.UserID,
			it.ItemID,
			formatTS(it.TS),
			strconv.Itoa(it.Y),
			formatFloat(it.Weight),
			string(it.Source),
		}
		if withRawScore {
			row = append(row, formatFloatPtr(it.RawScore))
		}
		row = append(row, string(it.Split))
		rows = append(rows, row)
	}
	return rows
}

func evalRows(cases []*core.EvalCase) [][]string {
	k := 0
	if len(cases) > 0 {
		k = len(cases[0].Negatives)
	}

	header := make([]string, 0, k+2)
	header = append(header, "user_id", "pos_item_id")
	for i := 1; i <= k; i++ {
		header = append(header, "neg_"+strconv.Itoa(i))
	}

	rows := make([][]string, 0, len(cases)+1)
	rows = append(rows, header)
	for _, c := range cases {
		row := make([]string, 0, k+2)
		row = append(row, c.UserID, c.PosItemID)
		row = append(row, c.Negatives...)
		rows = append(rows, row)
	}
	return rows
}

func formatTS(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func formatIntPtr(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func formatInt64Ptr(i *int64) string {
	if i == nil {
		return ""
	}
	return strconv.FormatInt(*i, 10)
}

// atomicWriter 把每个文件写到同目录的临时文件，全部写完后统一 rename。
// commit 之前任何失败都只会留下被 cleanup 清理的临时文件。
type atomicWriter struct {
	dir     string
	pending [][2]string // {tmp path, final path}
}

func (w *atomicWriter) writeFile(name string, rows [][]string) error {
	tmp, err := os.CreateTemp(w.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("sink: create temp for %s: %w", name, err)
	}
	w.pending = append(w.pending, [2]string{tmp.Name(), filepath.Join(w.dir, name)})

	cw := csv.NewWriter(tmp)
	if err := cw.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("sink: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("sink: close %s: %w", name, err)
	}
	return nil
}

func (w *atomicWriter) commit() error {
	for _, p := range w.pending {
		if err := os.Rename(p[0], p[1]); err != nil {
			return fmt.Errorf("sink: rename %s: %w", p[1], err)
		}
	}
	w.pending = nil
	return nil
}

func (w *atomicWriter) cleanup() {
	for _, p := range w.pending {
		os.Remove(p[0])
	}
}
