// Package tssenrich implements the TSS enrichment engine (spec.md §4.I):
// Phase 2's parallel, per-reference fan-out over a position-indexed
// alignment source, accumulating flank-normalised coverage around every
// configured transcription start site.
package tssenrich

import (
	"math"

	"github.com/biogo/hts/sam"
	"github.com/sirupsen/logrus"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
	"github.com/parkerlab/ataqv-go/pkg/bamsrc"
	"github.com/parkerlab/ataqv-go/pkg/classify"
	"github.com/parkerlab/ataqv-go/pkg/readgroup"
	"github.com/parkerlab/ataqv-go/pkg/tss"
)

// Config is the engine's construction argument.
type Config struct {
	BAMPath       string
	Index         *bamsrc.Index
	TSSIndex      *tss.Index
	Registry      *readgroup.Registry
	Configuration *readgroup.Configuration
	Extension     int
	Threads       int
	Log           *logrus.Logger
}

type coverageDelta map[string][]uint64

type taskResult struct {
	reference string
	delta     coverageDelta
	err       error
}

// Run executes the full engine against cfg, mutating every bucket's
// TSSCoverage, TSSCount, TSSCoverageScaled, and TSSEnrichment fields.
// A TSS index with no entries is a documented no-op (spec.md §4.I "zero
// TSS count -> skip and return zero enrichment"): every bucket keeps its
// zero-value TSS fields.
func Run(cfg Config) error {
	totalTSS := cfg.TSSIndex.Len()
	if totalTSS == 0 {
		return nil
	}

	for _, b := range cfg.Registry.Buckets() {
		b.TSSCount = uint64(totalTSS)
	}

	refs := cfg.TSSIndex.ReferencesByCount()
	workers := cfg.Threads
	if workers < 1 {
		workers = 1
	}
	if workers > len(refs) {
		workers = len(refs)
	}

	jobs := make(chan string, len(refs))
	results := make(chan taskResult, len(refs))
	for _, ref := range refs {
		jobs <- ref
	}
	close(jobs)

	for w := 0; w < workers; w++ {
		go func() {
			cursor, err := bamsrc.NewCursor(cfg.BAMPath, cfg.Index)
			if err != nil {
				for ref := range jobs {
					results <- taskResult{reference: ref, err: err}
				}
				return
			}
			defer cursor.Close()

			for ref := range jobs {
				delta, err := processReference(cursor, cfg.TSSIndex, ref, cfg.Extension, cfg.Registry, cfg.Configuration)
				results <- taskResult{reference: ref, delta: delta, err: err}
			}
		}()
	}

	var firstErr error
	for i := 0; i < len(refs); i++ {
		res := <-results
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			if cfg.Log != nil {
				cfg.Log.Warnf("tss enrichment: reference %s: %v", res.reference, res.err)
			}
			continue
		}
		reduce(cfg.Registry, res.delta)
	}
	if firstErr != nil {
		return ataqverr.Wrap(ataqverr.FileFormat, "tss enrichment", firstErr)
	}

	for _, b := range cfg.Registry.Buckets() {
		Normalize(b, cfg.Extension)
	}
	return nil
}

// reduce folds a worker's local coverage delta into the shared buckets.
// Called only from the single goroutine draining results, so no
// synchronisation is needed for the addition itself (spec.md §5: "the
// reduction is not on the critical path").
func reduce(registry *readgroup.Registry, delta coverageDelta) {
	for name, coverage := range delta {
		b := registry.Get(name)
		if b.TSSCoverage == nil {
			b.TSSCoverage = make([]uint64, len(coverage))
		}
		for i, v := range coverage {
			b.TSSCoverage[i] += v
		}
	}
}

// processReference is one task of step 1 of spec.md §4.I: an independent
// cursor scans every TSS on reference, deduplicating contributing
// fragments by qname within each TSS.
func processReference(cursor *bamsrc.Cursor, tssIdx *tss.Index, reference string, extension int, registry *readgroup.Registry, config *readgroup.Configuration) (coverageDelta, error) {
	collection := tssIdx.Collection(reference)
	if collection == nil {
		return nil, nil
	}

	ref := findReference(cursor.Header(), reference)
	if ref == nil {
		return nil, ataqverr.New(ataqverr.ReferenceMismatch, "tss reference "+reference+" not present in alignment header")
	}

	delta := make(coverageDelta)

	for _, feature := range collection.Items {
		accumulateTSS(cursor, ref, feature, extension, registry, config, delta)
	}
	return delta, nil
}

func accumulateTSS(cursor *bamsrc.Cursor, ref *sam.Reference, feature *tss.Feature, extension int, registry *readgroup.Registry, config *readgroup.Configuration, delta coverageDelta) {
	windowStart := clampSub(feature.Interval.Start, extension)
	windowEnd := int(feature.Interval.End) + extension

	queryStart := clampSub(uint64(windowStart), extension)
	queryEnd := windowEnd + extension

	it, err := cursor.Query(ref, queryStart, queryEnd)
	if err != nil {
		return
	}
	defer it.Close()

	seen := make(map[string]bool)
	reverse := feature.IsReverse()

	for it.Next() {
		rec := it.Record()
		if !classify.IsHQAA(config, rec) {
			continue
		}
		if seen[rec.Name] {
			continue
		}

		fragStart := rec.Pos
		if rec.MatePos < fragStart {
			fragStart = rec.MatePos
		}
		fragLen := rec.TempLen
		if fragLen < 0 {
			fragLen = -fragLen
		}
		fragEnd := fragStart + fragLen

		lo := maxInt(fragStart, windowStart)
		hi := minInt(fragEnd-1, windowEnd)
		if lo > hi {
			continue
		}
		seen[rec.Name] = true

		bucketName := registry.ResolveName(classify.ReadGroupTag(rec))
		coverage := delta[bucketName]
		if coverage == nil {
			coverage = make([]uint64, 2*extension+1)
			delta[bucketName] = coverage
		}
		for p := lo; p <= hi; p++ {
			var b int
			if reverse {
				b = windowEnd - p
			} else {
				b = p - windowStart
			}
			if b < 0 || b >= len(coverage) {
				continue
			}
			coverage[b]++
		}
	}
}

// Normalize implements spec.md §4.I's flank normalisation: the mean of
// the first and last 100 positions of tss_coverage/n is the flank
// baseline; tss_coverage_scaled divides every position by it, and the
// scalar enrichment is the scaled value at the centre position.
func Normalize(b *readgroup.Bucket, extension int) {
	n := b.TSSCount
	if n == 0 || len(b.TSSCoverage) == 0 {
		return
	}

	b.TSSCoverageScaled = make([]float64, len(b.TSSCoverage))

	flankWidth := 100
	if flankWidth > len(b.TSSCoverage) {
		flankWidth = len(b.TSSCoverage)
	}

	var uSum, dSum float64
	for i := 0; i < flankWidth; i++ {
		uSum += float64(b.TSSCoverage[i]) / float64(n)
	}
	for i := len(b.TSSCoverage) - flankWidth; i < len(b.TSSCoverage); i++ {
		dSum += float64(b.TSSCoverage[i]) / float64(n)
	}
	meanFlank := (uSum/float64(flankWidth) + dSum/float64(flankWidth)) / 2

	for i, cov := range b.TSSCoverage {
		perTSS := float64(cov) / float64(n)
		if meanFlank == 0 {
			b.TSSCoverageScaled[i] = math.NaN()
			continue
		}
		b.TSSCoverageScaled[i] = perTSS / meanFlank
	}

	if extension < len(b.TSSCoverageScaled) {
		b.TSSEnrichment = b.TSSCoverageScaled[extension]
	}
}

func findReference(header *sam.Header, name string) *sam.Reference {
	for _, ref := range header.Refs() {
		if ref.Name() == name {
			return ref
		}
	}
	return nil
}

func clampSub(x uint64, e int) int {
	v := int(x) - e
	if v < 0 {
		return 0
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
