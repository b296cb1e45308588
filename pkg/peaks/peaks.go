// Package peaks implements the peak-index component: an interval collection
// specialized to carry a per-peak HQAA counter, built once at load time by
// dropping anything off an autosomal reference or inside an excluded
// region, then queried by the classifier via bracketed range scan.
package peaks

import (
	"io"

	"github.com/parkerlab/ataqv-go/pkg/bed"
	"github.com/parkerlab/ataqv-go/pkg/genome"
	"github.com/parkerlab/ataqv-go/pkg/organism"

	"github.com/sirupsen/logrus"
)

// Peak is a called accessibility interval, augmented with a mutable
// overlapping-HQAA counter. It is a distinct record embedding Interval,
// not a subtype of it (spec.md §9: no is-a relationship needed).
type Peak struct {
	Interval        genome.Interval
	OverlappingHQAA uint64
}

// Bounds satisfies genome.Located.
func (p *Peak) Bounds() genome.Interval { return p.Interval }

// Index is the per-reference sorted peak collection.
type Index struct {
	*genome.Index[*Peak]
}

// NewIndex creates an empty peak index.
func NewIndex() *Index {
	return &Index{Index: genome.NewIndex[*Peak]()}
}

// overlapsAny reports whether iv overlaps any of excluded, via linear scan
// (expected O(100) entries per spec.md §4.C).
func overlapsAny(iv genome.Interval, excluded []genome.Interval) bool {
	for _, ex := range excluded {
		if iv.Overlaps(ex) {
			return true
		}
	}
	return false
}

// Load parses a BED stream of called peaks into idx, dropping any peak on a
// non-autosomal reference (silently) or overlapping an excluded region
// (logged at verbose/debug level), then sorts the index once loading
// completes.
func Load(r io.Reader, sourceName string, autosomal organism.Set, excluded []genome.Interval, idx *Index, log *logrus.Logger) error {
	err := bed.Parse(r, sourceName, func(rec bed.Record) error {
		iv := rec.Interval
		if !autosomal.Contains(iv.Reference) {
			return nil
		}
		if overlapsAny(iv, excluded) {
			if log != nil {
				log.Debugf("dropping peak %s:%d-%d: overlaps an excluded region", iv.Reference, iv.Start, iv.End)
			}
			return nil
		}
		return idx.Add(&Peak{Interval: iv})
	})
	if err != nil {
		return err
	}
	idx.Sort()
	return nil
}

// List returns every peak in the index, in natural order.
func (idx *Index) List() []*Peak {
	return idx.All()
}

// Clone builds a fresh Index with the same peak positions but independent,
// zeroed OverlappingHQAA counters. Each read-group bucket needs its own
// peak vector even though the peak positions themselves are effectively
// immutable after load (spec.md §3: "shared-immutable structure, per-group
// mutable counts embedded in elements").
func (idx *Index) Clone() *Index {
	clone := NewIndex()
	for _, ref := range idx.References() {
		c := idx.Collection(ref)
		for _, p := range c.Items {
			_ = clone.Add(&Peak{Interval: p.Interval})
		}
	}
	clone.Sort()
	return clone
}
