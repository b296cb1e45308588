// Package report implements the serialiser (spec.md §4.J, component J):
// one shared assembly step from a read-group bucket's state into a
// reporting-friendly structure, fed to three emitters (json.go, tabular.go,
// text.go).
package report

import (
	"math"
	"sort"

	"github.com/parkerlab/ataqv-go/pkg/classify"
	"github.com/parkerlab/ataqv-go/pkg/natsort"
	"github.com/parkerlab/ataqv-go/pkg/readgroup"
)

// Metadata carries the run-level, caller-supplied pass-through fields
// (spec.md §6 CLI surface: --name, --description, --url,
// --library-description) that sit alongside the per-bucket metrics rather
// than inside any one bucket.
type Metadata struct {
	Name               string
	Description        string
	URL                string
	LibraryDescription string
}

// histogramEntry is one row of a per-bucket histogram, already resolved to
// its natural-sort position and its fraction of the histogram's total.
type histogramEntry struct {
	Key      interface{}
	Value    uint64
	Fraction float64
}

// Bucket is the serialisable view of a readgroup.Bucket: every counter,
// histogram, and derived field named in spec.md §3, computed once so all
// three emitters read from the same assembled state instead of
// recomputing medians or peak rankings independently.
type Bucket struct {
	Name    string
	Library readgroup.Library

	TotalReads                               uint64
	ForwardReads                             uint64
	ReverseReads                             uint64
	SecondaryReads                           uint64
	SupplementaryReads                       uint64
	DuplicateReads                           uint64
	PairedReads                              uint64
	PairedAndMappedReads                     uint64
	ProperlyPairedAndMappedReads              uint64
	FirstReads                               uint64
	SecondReads                              uint64
	ForwardMateReads                         uint64
	ReverseMateReads                         uint64
	FRReads                                  uint64
	UnmappedReads                            uint64
	UnmappedMateReads                        uint64
	QCFailedReads                            uint64
	UnpairedReads                            uint64
	FFReads                                  uint64
	RFReads                                  uint64
	RRReads                                  uint64
	ReadsWithMateMappedToDifferentReference  uint64
	ReadsMappedWithZeroQuality               uint64
	ReadsMappedAndPairedButImproperly        uint64
	UnclassifiedReads                        uint64
	MaximumProperPairFragmentSize            uint64
	ReadsWithMateTooDistant                  uint64
	TotalAutosomalReads                      uint64
	TotalMitochondrialReads                  uint64
	DuplicateAutosomalReads                  uint64
	DuplicateMitochondrialReads              uint64
	HQAA                                     uint64
	HQAAShortCount                           uint64
	HQAAMononucleosomalCount                 uint64

	MeanMAPQ                  float64
	MedianMAPQ                float64
	MedianFragmentLength      float64
	ShortMononucleosomalRatio float64

	FragmentLengthCounts []histogramEntry
	MAPQCounts           []histogramEntry
	ChromosomeCounts     []histogramEntry

	TotalPeakTerritory    uint64
	Top1, Top10, Top100   uint64
	Top1000, Top10000     uint64
	HQAAInPeaks           uint64
	PPMInPeaks            uint64
	PPMNotInPeaks         uint64
	DuplicatesInPeaks     uint64
	DuplicatesNotInPeaks  uint64

	CumulativeFractionOfHQAA      []float64
	CumulativeFractionOfTerritory []float64

	TSSCount          uint64
	TSSCoverage       []uint64
	TSSCoverageScaled []float64
	TSSEnrichment     float64

	// TopPeaks holds, for the text report's top-N table, the peaks with
	// the highest overlapping_hqaa, already sorted descending.
	TopPeaks []TopPeak
}

// TopPeak is one row of the text report's peak table.
type TopPeak struct {
	Reference       string
	Start, End      uint64
	OverlappingHQAA uint64
}

// Assemble runs the aggregate diagnoser (classify.Diagnose) and, when b has
// peaks, the peak ranker (classify.Rank) against b every time, then copies every field spec.md §3 names into a Bucket ready for
// emission. Diagnose and Rank are idempotent against a bucket that has
// already been through them once, so calling Assemble more than once on
// the same bucket (e.g. once per output mode) is safe.
func Assemble(b *readgroup.Bucket) *Bucket {
	classify.Diagnose(b)
	if b.Peaks != nil {
		classify.Rank(b)
	}

	out := &Bucket{
		Name:    b.Name,
		Library: b.Library,

		TotalReads:                              b.TotalReads,
		ForwardReads:                            b.ForwardReads,
		ReverseReads:                            b.ReverseReads,
		SecondaryReads:                          b.SecondaryReads,
		SupplementaryReads:                      b.SupplementaryReads,
		DuplicateReads:                          b.DuplicateReads,
		PairedReads:                             b.PairedReads,
		PairedAndMappedReads:                    b.PairedAndMappedReads,
		ProperlyPairedAndMappedReads:             b.ProperlyPairedAndMappedReads,
		FirstReads:                              b.FirstReads,
		SecondReads:                             b.SecondReads,
		ForwardMateReads:                        b.ForwardMateReads,
		ReverseMateReads:                         b.ReverseMateReads,
		FRReads:                                 b.FRReads,
		UnmappedReads:                           b.UnmappedReads,
		UnmappedMateReads:                       b.UnmappedMateReads,
		QCFailedReads:                           b.QCFailedReads,
		UnpairedReads:                           b.UnpairedReads,
		FFReads:                                 b.FFReads,
		RFReads:                                 b.RFReads,
		RRReads:                                 b.RRReads,
		ReadsWithMateMappedToDifferentReference: b.ReadsWithMateMappedToDifferentReference,
		ReadsMappedWithZeroQuality:               b.ReadsMappedWithZeroQuality,
		ReadsMappedAndPairedButImproperly:        b.ReadsMappedAndPairedButImproperly,
		UnclassifiedReads:                        b.UnclassifiedReads,
		MaximumProperPairFragmentSize:             b.MaximumProperPairFragmentSize,
		ReadsWithMateTooDistant:                   b.ReadsWithMateTooDistant,
		TotalAutosomalReads:                       b.TotalAutosomalReads,
		TotalMitochondrialReads:                   b.TotalMitochondrialReads,
		DuplicateAutosomalReads:                   b.DuplicateAutosomalReads,
		DuplicateMitochondrialReads:               b.DuplicateMitochondrialReads,
		HQAA:                                      b.HQAA,
		HQAAShortCount:                            b.HQAAShortCount,
		HQAAMononucleosomalCount:                  b.HQAAMononucleosomalCount,

		MeanMAPQ:                  b.MeanMAPQ(),
		MedianMAPQ:                b.MedianMAPQ(),
		MedianFragmentLength:      b.MedianFragmentLength(),
		ShortMononucleosomalRatio: b.ShortMononucleosomalRatio(),

		FragmentLengthCounts: intHistogram(b.FragmentLengthCounts),
		MAPQCounts:           intHistogram(b.MAPQCounts),
		ChromosomeCounts:     stringHistogram(b.ChromosomeCounts),

		TSSCount:          b.TSSCount,
		TSSCoverage:       b.TSSCoverage,
		TSSCoverageScaled: b.TSSCoverageScaled,
		TSSEnrichment:     b.TSSEnrichment,
	}

	if b.Peaks != nil {
		out.TotalPeakTerritory = b.Ranking.TotalPeakTerritory
		out.Top1 = b.Ranking.Top1
		out.Top10 = b.Ranking.Top10
		out.Top100 = b.Ranking.Top100
		out.Top1000 = b.Ranking.Top1000
		out.Top10000 = b.Ranking.Top10000
		out.HQAAInPeaks = b.Ranking.HQAAInPeaks
		out.PPMInPeaks = b.Ranking.PPMInPeaks
		out.PPMNotInPeaks = b.Ranking.PPMNotInPeaks
		out.DuplicatesInPeaks = b.Ranking.DuplicatesInPeaks
		out.DuplicatesNotInPeaks = b.Ranking.DuplicatesNotInPeaks
		out.CumulativeFractionOfHQAA = b.Ranking.CumulativeFractionOfHQAA
		out.CumulativeFractionOfTerritory = b.Ranking.CumulativeFractionOfTerritory
		out.TopPeaks = topPeaks(b, 20)
	}

	return out
}

func topPeaks(b *readgroup.Bucket, n int) []TopPeak {
	list := b.Peaks.List()
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].OverlappingHQAA > list[j].OverlappingHQAA
	})
	if n > len(list) {
		n = len(list)
	}
	out := make([]TopPeak, n)
	for i, p := range list[:n] {
		out[i] = TopPeak{
			Reference:       p.Interval.Reference,
			Start:           p.Interval.Start,
			End:             p.Interval.End,
			OverlappingHQAA: p.OverlappingHQAA,
		}
	}
	return out
}

func intHistogram(h map[int]uint64) []histogramEntry {
	keys := make([]int, 0, len(h))
	var total uint64
	for k, v := range h {
		keys = append(keys, k)
		total += v
	}
	sort.Ints(keys)
	out := make([]histogramEntry, len(keys))
	for i, k := range keys {
		out[i] = histogramEntry{Key: k, Value: h[k], Fraction: fraction(h[k], total)}
	}
	return out
}

func stringHistogram(h map[string]uint64) []histogramEntry {
	keys := make([]string, 0, len(h))
	var total uint64
	for k, v := range h {
		keys = append(keys, k)
		total += v
	}
	sort.Slice(keys, func(i, j int) bool { return natsort.Less(keys[i], keys[j]) })
	out := make([]histogramEntry, len(keys))
	for i, k := range keys {
		out[i] = histogramEntry{Key: k, Value: h[k], Fraction: fraction(h[k], total)}
	}
	return out
}

func fraction(v, total uint64) float64 {
	if total == 0 {
		return math.NaN()
	}
	return float64(v) / float64(total)
}
