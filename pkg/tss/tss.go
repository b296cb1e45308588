// Package tss implements the TSS-index component: an interval collection
// of transcription-start-site features, built the same way as the peak
// index (dropping non-autosomal and excluded entries) but retaining strand
// so the coverage engine can orient its window.
package tss

import (
	"io"

	"github.com/parkerlab/ataqv-go/pkg/bed"
	"github.com/parkerlab/ataqv-go/pkg/genome"
	"github.com/parkerlab/ataqv-go/pkg/organism"

	"github.com/sirupsen/logrus"
)

// Feature is a single TSS: an interval plus strand.
type Feature struct {
	Interval genome.Interval
}

// Bounds satisfies genome.Located.
func (f *Feature) Bounds() genome.Interval { return f.Interval }

// IsReverse reports whether the TSS is on the minus strand.
func (f *Feature) IsReverse() bool { return f.Interval.Strand == genome.StrandReverse }

// Index is the per-reference sorted TSS collection.
type Index struct {
	*genome.Index[*Feature]
}

// NewIndex creates an empty TSS index.
func NewIndex() *Index {
	return &Index{Index: genome.NewIndex[*Feature]()}
}

func overlapsAny(iv genome.Interval, excluded []genome.Interval) bool {
	for _, ex := range excluded {
		if iv.Overlaps(ex) {
			return true
		}
	}
	return false
}

// Load parses a BED stream of TSS positions into idx, applying the same
// autosomal/excluded filtering as the peak index, then sorts it.
func Load(r io.Reader, sourceName string, autosomal organism.Set, excluded []genome.Interval, idx *Index, log *logrus.Logger) error {
	err := bed.Parse(r, sourceName, func(rec bed.Record) error {
		iv := rec.Interval
		if !autosomal.Contains(iv.Reference) {
			return nil
		}
		if overlapsAny(iv, excluded) {
			if log != nil {
				log.Debugf("dropping TSS %s:%d-%d: overlaps an excluded region", iv.Reference, iv.Start, iv.End)
			}
			return nil
		}
		return idx.Add(&Feature{Interval: iv})
	})
	if err != nil {
		return err
	}
	idx.Sort()
	return nil
}

// ReferencesByCount returns every reference with at least one TSS, ordered
// by descending TSS count — the load-balancing order for Phase 2's
// per-reference worker dispatch (spec.md §4.I step 1).
func (idx *Index) ReferencesByCount() []string {
	refs := idx.References()
	counts := make(map[string]int, len(refs))
	for _, ref := range refs {
		counts[ref] = len(idx.Collection(ref).Items)
	}
	out := make([]string, len(refs))
	copy(out, refs)
	// stable-ish descending sort by count; ties keep natural reference order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && counts[out[j]] > counts[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
