// Package sample 为离线排序评测（HR@K / NDCG@K）做流行度偏置负采样。
package sample

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rushteam/truthkit/core"
	"github.com/rushteam/truthkit/pipeline"
)

const (
	DefaultK          = 50 // 每个评测样本的负例数
	DefaultOversample = 5  // 过采样倍数：一次抽 K*5 个候选以吸收碰撞
	DefaultSeed       = 42 // 固定随机种子，保证重跑逐字节一致
)

// Popularity 是 sample.popularity Stage：为每个 test 正样本抽恰好 K 个负例。
//
// 物品抽样权重 = (交互次数+1)^0.5，再归一化成全目录上的概率分布。
// 平方根阻尼防止少数爆款完全主导采样，同时仍偏向热门干扰项——
// 这是隐式反馈排序评测里标准的 hard negative 设计。
//
// 采样是“有界过采样 + 过滤 + 确定性补齐”而非无界循环：
// 一次抽 K*Oversample 个候选，滤掉该用户见过的物品与正样本本身，取前 K 个；
// 不足时从剩余可用目录（洗牌后）确定性补齐，保证必然终止且恰好 K 个。
// 重度用户的补齐会牺牲一些流行度偏置的保真度，这是保证恰好 K 的代价。
type Popularity struct {
	K          int   // 每个样本的负例数，0 使用 DefaultK
	Oversample int   // 过采样倍数，0 使用 DefaultOversample
	Seed       int64 // 随机种子，0 使用 DefaultSeed
}

func (p *Popularity) Name() string        { return "sample.popularity" }
func (p *Popularity) Kind() pipeline.Kind { return pipeline.KindSample }

func (p *Popularity) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	if ds.Movies == nil {
		return nil, core.NewDomainError(core.ModuleSample, core.ErrorCodeInvalidInput,
			"sample: movie catalog not loaded")
	}
	if ds.Interactions == nil {
		return nil, core.NewDomainError(core.ModuleSample, core.ErrorCodeInvalidInput,
			"sample: interaction table not built")
	}

	k := p.K
	if k <= 0 {
		k = DefaultK
	}
	oversample := p.Oversample
	if oversample <= 0 {
		oversample = DefaultOversample
	}
	seed := p.Seed
	if seed == 0 {
		seed = DefaultSeed
	}

	catalog := catalogItems(ds.Movies)
	dist := newPopDist(catalog, ds.Interactions)
	seen := ds.SeenItems()
	rng := rand.New(rand.NewSource(seed))

	cases := make([]*core.EvalCase, 0)
	for _, it := range ds.Interactions {
		if it.Split != core.SplitTest {
			continue
		}
		if len(catalog) == 0 {
			return nil, core.NewDomainError(core.ModuleSample, core.ErrorCodeExhausted,
				"sample: movie catalog is empty, cannot draw negatives")
		}

		negs, err := p.sampleNegatives(rng, dist, catalog, seen[it.UserID], it.ItemID, k, oversample)
		if err != nil {
			return nil, err
		}
		cases = append(cases, &core.EvalCase{
			UserID:    it.UserID,
			PosItemID: it.ItemID,
			Negatives: negs,
		})
	}

	out := *ds
	out.EvalCases = cases
	return &out, nil
}

func (p *Popularity) sampleNegatives(
	rng *rand.Rand,
	dist *popDist,
	catalog []string,
	seen map[string]struct{},
	posItem string,
	k, oversample int,
) ([]string, error) {
	excluded := func(item string) bool {
		if item == posItem {
			return true
		}
		_, ok := seen[item]
		return ok
	}

	// 第一轮：按流行度分布有放回抽 K*oversample 个候选，滤碰撞、去重、取前 K
	negs := make([]string, 0, k)
	picked := make(map[string]struct{}, k)
	for i := 0; i < k*oversample && len(negs) < k; i++ {
		item := dist.draw(rng)
		if excluded(item) {
			continue
		}
		if _, ok := picked[item]; ok {
			continue
		}
		picked[item] = struct{}{}
		negs = append(negs, item)
	}

	if len(negs) == k {
		return negs, nil
	}

	// 补齐：剩余可用目录洗牌后顺序追加，保证恰好 K 个
	fill := make([]string, 0, len(catalog))
	for _, item := range catalog {
		if excluded(item) {
			continue
		}
		if _, ok := picked[item]; ok {
			continue
		}
		fill = append(fill, item)
	}
	rng.Shuffle(len(fill), func(i, j int) { fill[i], fill[j] = fill[j], fill[i] })

	need := k - len(negs)
	if len(fill) < need {
		return nil, core.NewDomainError(core.ModuleSample, core.ErrorCodeExhausted,
			fmt.Sprintf("sample: cannot draw %d negatives for item %s: only %d eligible items in catalog",
				k, posItem, len(negs)+len(fill)))
	}
	return append(negs, fill[:need]...), nil
}

// catalogItems 返回目录中的全部物品 ID，按电影表顺序去重。
func catalogItems(movies []*core.MovieRecord) []string {
	seen := make(map[string]struct{}, len(movies))
	out := make([]string, 0, len(movies))
	for _, mv := range movies {
		if _, ok := seen[mv.ItemID]; ok {
			continue
		}
		seen[mv.ItemID] = struct{}{}
		out = append(out, mv.ItemID)
	}
	return out
}

// popDist 是全目录上的流行度概率分布，用累积权重 + 二分做一次 O(logN) 抽样。
type popDist struct {
	items []string
	cum   []float64 // 累积权重，末位为总权重
}

func newPopDist(catalog []string, interactions []*core.Interaction) *popDist {
	counts := make(map[string]int, len(catalog))
	for _, it := range interactions {
		counts[it.ItemID]++
	}

	cum := make([]float64, len(catalog))
	var total float64
	for i, item := range catalog {
		// +1 平滑后开方：零交互物品也有非零概率
		total += math.Sqrt(float64(counts[item]) + 1)
		cum[i] = total
	}
	return &popDist{items: catalog, cum: cum}
}

func (d *popDist) draw(rng *rand.Rand) string {
	total := d.cum[len(d.cum)-1]
	r := rng.Float64() * total
	idx := sort.SearchFloat64s(d.cum, r)
	if idx >= len(d.items) {
		idx = len(d.items) - 1
	}
	return d.items[idx]
}
