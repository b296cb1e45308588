// Package readgroup implements the read-group registry (spec.md §4.E): the
// per-read-group metrics bucket and the map from a record's read-group (or
// nucleus barcode) tag to its bucket.
package readgroup

import (
	"math"
	"sort"

	"github.com/parkerlab/ataqv-go/pkg/peaks"
)

// Bucket owns every per-group counter, histogram, and the group's own peak
// vector. It is created lazily on first sight of a read group. Its counters
// and histograms are mutated by the classifier during Phase 1; the ranking
// and TSS fields are filled in afterwards.
type Bucket struct {
	Name    string
	Library Library

	config *Configuration

	// Peaks is this bucket's own clone of the master peak index, so its
	// OverlappingHQAA counters are independent of every other bucket's.
	Peaks *peaks.Index

	TotalReads             uint64
	ForwardReads           uint64
	ReverseReads           uint64
	SecondaryReads         uint64
	SupplementaryReads     uint64
	DuplicateReads         uint64
	PairedReads            uint64
	PairedAndMappedReads   uint64
	ProperlyPairedAndMappedReads uint64
	FirstReads             uint64
	SecondReads            uint64
	ForwardMateReads       uint64
	ReverseMateReads       uint64
	FRReads                uint64

	UnmappedReads                            uint64
	UnmappedMateReads                        uint64
	QCFailedReads                            uint64
	UnpairedReads                            uint64
	FFReads                                  uint64
	RFReads                                  uint64
	RRReads                                  uint64
	ReadsWithMateMappedToDifferentReference  uint64
	ReadsMappedWithZeroQuality                uint64
	ReadsMappedAndPairedButImproperly         uint64

	UnclassifiedReads uint64

	MaximumProperPairFragmentSize uint64
	ReadsWithMateTooDistant       uint64

	// UnlikelyFragmentSizes defers same-reference, non-proper-pair
	// fragment sizes for the aggregate diagnosis pass (spec.md §4.G),
	// keyed by QNAME.
	UnlikelyFragmentSizes map[string][]uint64

	TotalAutosomalReads       uint64
	TotalMitochondrialReads   uint64
	DuplicateAutosomalReads   uint64
	DuplicateMitochondrialReads uint64

	HQAA                       uint64
	HQAAShortCount             uint64
	HQAAMononucleosomalCount   uint64

	FragmentLengthCounts map[int]uint64
	ChromosomeCounts     map[string]uint64
	MAPQCounts           map[int]uint64

	// Peak outputs: the in/not-in-peak counters are filled in by the
	// classifier during Phase 1, the rest by the ranker at serialization
	// time.
	Ranking Ranking

	// TSS-engine outputs, filled in by the TSS enrichment engine.
	TSSCoverage       []uint64
	TSSCoverageScaled []float64
	TSSCount          uint64
	TSSEnrichment     float64
}

// Ranking holds the per-bucket peak outputs: the peak-ranker's (component
// H) territory, top-N sums and curves, plus the classifier's in/not-in-peak
// counters.
type Ranking struct {
	TotalPeakTerritory uint64

	Top1, Top10, Top100, Top1000, Top10000 uint64

	CumulativeFractionOfHQAA      []float64
	CumulativeFractionOfTerritory []float64

	HQAAInPeaks    uint64
	PPMInPeaks     uint64
	PPMNotInPeaks  uint64
	DuplicatesInPeaks    uint64
	DuplicatesNotInPeaks uint64
}

// New creates a bucket named name, owned by the given configuration. Its
// peak vector is cloned from config.MasterPeaks so the bucket's HQAA
// counters are independent of every other bucket's.
func New(name string, config *Configuration) *Bucket {
	b := &Bucket{
		Name:                  name,
		config:                config,
		FragmentLengthCounts:  make(map[int]uint64),
		ChromosomeCounts:      make(map[string]uint64),
		MAPQCounts:            make(map[int]uint64),
		UnlikelyFragmentSizes: make(map[string][]uint64),
	}
	if config.MasterPeaks != nil {
		b.Peaks = config.MasterPeaks.Clone()
	}
	if config.TSSExtension > 0 {
		b.TSSCoverage = make([]uint64, 2*config.TSSExtension+1)
	}
	return b
}

// Config returns the bucket's immutable configuration.
func (b *Bucket) Config() *Configuration { return b.config }

// MeanMAPQ is the mean of mapq_counts, weighted by count.
func (b *Bucket) MeanMAPQ() float64 {
	var sum, n float64
	for mapq, count := range b.MAPQCounts {
		sum += float64(mapq) * float64(count)
		n += float64(count)
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// MedianMAPQ is the median of mapq_counts.
func (b *Bucket) MedianMAPQ() float64 {
	return medianOfHistogram(b.MAPQCounts)
}

// MedianFragmentLength is the median of fragment_length_counts.
func (b *Bucket) MedianFragmentLength() float64 {
	return medianOfHistogram(b.FragmentLengthCounts)
}

// ShortMononucleosomalRatio is hqaa_short_count / hqaa_mononucleosomal_count,
// NaN when the denominator is zero (spec.md §8 scenario 1).
func (b *Bucket) ShortMononucleosomalRatio() float64 {
	if b.HQAAMononucleosomalCount == 0 {
		return math.NaN()
	}
	return float64(b.HQAAShortCount) / float64(b.HQAAMononucleosomalCount)
}

func medianOfHistogram(h map[int]uint64) float64 {
	var total uint64
	keys := make([]int, 0, len(h))
	for k, v := range h {
		keys = append(keys, k)
		total += v
	}
	if total == 0 {
		return 0
	}
	sort.Ints(keys)

	mid := total / 2
	var cum uint64
	for i, k := range keys {
		cum += h[k]
		if cum > mid {
			if total%2 == 1 {
				return float64(k)
			}
			// even total: average this key with the previous
			// cumulative boundary's key when the median falls
			// exactly on a boundary between two histogram keys.
			if cum-h[k] == mid && i > 0 {
				return (float64(keys[i-1]) + float64(k)) / 2
			}
			return float64(k)
		}
	}
	return float64(keys[len(keys)-1])
}
