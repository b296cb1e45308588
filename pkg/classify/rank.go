package classify

import (
	"math"
	"sort"

	"github.com/parkerlab/ataqv-go/pkg/peaks"
	"github.com/parkerlab/ataqv-go/pkg/readgroup"
)

// topRanks are the prefix sizes the report names individually (spec.md
// §4.H): the HQAA captured by the top 1, 10, 100, 1000, and 10000 peaks,
// ranked by overlapping_hqaa descending.
var topRanks = []int{1, 10, 100, 1000, 10000}

// percentileSamples is the number of evenly spaced points the cumulative
// curves are reported at.
const percentileSamples = 100

// Rank implements the peak ranker (spec.md §4.H): it orders a bucket's own
// peak vector by overlapping_hqaa descending to find the top-N prefix
// sums and the cumulative-fraction-of-HQAA curve, and separately by size
// descending to find the cumulative-fraction-of-territory curve. Both
// curves are sampled at percentileSamples evenly spaced points.
func Rank(bucket *readgroup.Bucket) {
	list := bucket.Peaks.List()
	bucket.Ranking.TotalPeakTerritory = totalSize(list)

	byHQAA := make([]*peaks.Peak, len(list))
	copy(byHQAA, list)
	sort.SliceStable(byHQAA, func(i, j int) bool {
		return byHQAA[i].OverlappingHQAA > byHQAA[j].OverlappingHQAA
	})

	hqaaValues := make([]uint64, len(byHQAA))
	for i, p := range byHQAA {
		hqaaValues[i] = p.OverlappingHQAA
	}
	sums := topSums(hqaaValues, topRanks)
	bucket.Ranking.Top1 = sums[0]
	bucket.Ranking.Top10 = sums[1]
	bucket.Ranking.Top100 = sums[2]
	bucket.Ranking.Top1000 = sums[3]
	bucket.Ranking.Top10000 = sums[4]

	totalHQAA := sumUint64(hqaaValues)
	bucket.Ranking.CumulativeFractionOfHQAA = cumulativeFractionCurve(hqaaValues, totalHQAA, percentileSamples)

	bySize := make([]*peaks.Peak, len(list))
	copy(bySize, list)
	sort.SliceStable(bySize, func(i, j int) bool {
		return bySize[i].Interval.Size() > bySize[j].Interval.Size()
	})
	sizeValues := make([]uint64, len(bySize))
	for i, p := range bySize {
		sizeValues[i] = p.Interval.Size()
	}
	bucket.Ranking.CumulativeFractionOfTerritory = cumulativeFractionCurve(sizeValues, bucket.Ranking.TotalPeakTerritory, percentileSamples)
}

func totalSize(list []*peaks.Peak) uint64 {
	var total uint64
	for _, p := range list {
		total += p.Interval.Size()
	}
	return total
}

func sumUint64(values []uint64) uint64 {
	var total uint64
	for _, v := range values {
		total += v
	}
	return total
}

// topSums returns, for each n in ranks, the sum of the first n values
// (values is assumed sorted descending). A rank beyond len(values) sums
// everything available.
func topSums(values []uint64, ranks []int) []uint64 {
	out := make([]uint64, len(ranks))
	for i, n := range ranks {
		if n > len(values) {
			n = len(values)
		}
		var sum uint64
		for _, v := range values[:n] {
			sum += v
		}
		out[i] = sum
	}
	return out
}

// cumulativeFractionCurve samples the cumulative fraction of total
// captured by the first k values (values sorted descending) at samples
// evenly spaced percentiles of len(values). A zero total or empty input
// produces a curve of NaN, per spec.md §8's division-by-zero edge case.
func cumulativeFractionCurve(values []uint64, total uint64, samples int) []float64 {
	curve := make([]float64, samples)
	if len(values) == 0 || total == 0 {
		for i := range curve {
			curve[i] = math.NaN()
		}
		return curve
	}

	prefix := make([]uint64, len(values)+1)
	for i, v := range values {
		prefix[i+1] = prefix[i] + v
	}

	n := len(values)
	for i := 0; i < samples; i++ {
		pct := float64(i+1) / float64(samples)
		k := int(math.Ceil(pct * float64(n)))
		if k > n {
			k = n
		}
		if k == 0 {
			curve[i] = 0
			continue
		}
		curve[i] = float64(prefix[k]) / float64(total)
	}
	return curve
}
