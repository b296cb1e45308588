// Package genome implements the shared genomic-interval primitives used by
// the peak index, the TSS index, and the alignment classifier: a value type
// for a named half-open interval on a reference sequence, and a
// per-reference sorted container that answers overlap queries by a
// bracketed binary search rather than a full scan.
package genome

import (
	"sort"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
	"github.com/parkerlab/ataqv-go/pkg/natsort"
)

// Strand is the strand of a genomic feature.
type Strand byte

const (
	StrandUnknown Strand = 0
	StrandForward Strand = '+'
	StrandReverse Strand = '-'
	StrandNone    Strand = '.'
)

// Interval is a named half-open interval [Start, End) on Reference, with an
// optional score and strand. Equality ignores Score and Strand; ordering is
// natural-numeric on Reference, then Start, then End, then Name.
type Interval struct {
	Reference string
	Start     uint64
	End       uint64
	Name      string
	Score     float64
	HasScore  bool
	Strand    Strand
}

// New builds an Interval, matching the invariant Start <= End.
func New(reference string, start, end uint64, name string) Interval {
	return Interval{Reference: reference, Start: start, End: end, Name: name}
}

// Size is the interval's length in bases.
func (iv Interval) Size() uint64 {
	if iv.End < iv.Start {
		return 0
	}
	return iv.End - iv.Start
}

// Overlaps reports whether iv and other share the same reference and their
// spans overlap under the closed-boundary convention used throughout the
// classifier: a.Start <= b.End && b.Start <= a.End.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Reference == other.Reference && iv.Start <= other.End && other.Start <= iv.End
}

// Equal compares Reference, Start, End, and Name only.
func (iv Interval) Equal(other Interval) bool {
	return iv.Reference == other.Reference &&
		iv.Start == other.Start &&
		iv.End == other.End &&
		iv.Name == other.Name
}

// Less orders intervals naturally on Reference, then numerically on Start,
// End, and finally lexicographically on Name.
func (iv Interval) Less(other Interval) bool {
	if iv.Reference != other.Reference {
		return natsort.Less(iv.Reference, other.Reference)
	}
	if iv.Start != other.Start {
		return iv.Start < other.Start
	}
	if iv.End != other.End {
		return iv.End < other.End
	}
	return iv.Name < other.Name
}

// Located is implemented by any value stored in a ReferenceGroupedCollection
// or Index: Peak and TSS both embed an Interval and satisfy this by
// delegating to it.
type Located interface {
	Bounds() Interval
}

// ReferenceGroupedCollection holds every T on a single reference, kept
// sorted by Interval order once Sort is called, plus the minimum Start and
// maximum End seen across all elements.
type ReferenceGroupedCollection[T Located] struct {
	Reference string
	Items     []T
	MinStart  uint64
	MaxEnd    uint64
	sorted    bool
}

// NewReferenceGroupedCollection creates an empty collection for reference.
func NewReferenceGroupedCollection[T Located](reference string) *ReferenceGroupedCollection[T] {
	return &ReferenceGroupedCollection[T]{Reference: reference}
}

// Add appends item, updating the min/max envelope. Adding an item on a
// different reference is an internal bug trapped as ReferenceMismatch.
func (c *ReferenceGroupedCollection[T]) Add(item T) error {
	b := item.Bounds()
	if len(c.Items) == 0 {
		c.Reference = b.Reference
	} else if b.Reference != c.Reference {
		return ataqverr.New(ataqverr.ReferenceMismatch,
			"cannot add interval on reference "+b.Reference+" to collection for "+c.Reference)
	}
	if len(c.Items) == 0 || b.Start < c.MinStart {
		c.MinStart = b.Start
	}
	if len(c.Items) == 0 || b.End > c.MaxEnd {
		c.MaxEnd = b.End
	}
	c.Items = append(c.Items, item)
	c.sorted = false
	return nil
}

// Sort orders Items by Interval order. Idempotent.
func (c *ReferenceGroupedCollection[T]) Sort() {
	sort.SliceStable(c.Items, func(i, j int) bool {
		return c.Items[i].Bounds().Less(c.Items[j].Bounds())
	})
	c.sorted = true
}

// envelopeOverlaps reports whether q could possibly overlap anything in the
// collection, using the cheap [MinStart, MaxEnd] envelope check described
// for peak-index queries.
func (c *ReferenceGroupedCollection[T]) envelopeOverlaps(q Interval) bool {
	if len(c.Items) == 0 {
		return false
	}
	return c.MinStart <= q.End && q.Start <= c.MaxEnd
}

// Bracket returns the contiguous index range [lo, hi) of Items whose spans
// could overlap q, found by binary search on (End < q.Start) as the lower
// bound and (Start > q.End) as the upper bound. Sort must have been called
// first; Bracket does not sort lazily, since queries are expected to run
// many times against a structure built once.
func (c *ReferenceGroupedCollection[T]) Bracket(q Interval) (lo, hi int) {
	if !c.envelopeOverlaps(q) {
		return 0, 0
	}
	lo = sort.Search(len(c.Items), func(i int) bool {
		return c.Items[i].Bounds().End >= q.Start
	})
	hi = sort.Search(len(c.Items), func(i int) bool {
		return c.Items[i].Bounds().Start > q.End
	})
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Overlapping returns every item in the bracket that actually overlaps q
// (the bracket is a superset; elements within it may still fail the
// closed-boundary overlap test at their exact edges only in pathological
// cases, but the check is cheap and kept for correctness).
func (c *ReferenceGroupedCollection[T]) Overlapping(q Interval) []T {
	lo, hi := c.Bracket(q)
	var out []T
	for i := lo; i < hi; i++ {
		if c.Items[i].Bounds().Overlaps(q) {
			out = append(out, c.Items[i])
		}
	}
	return out
}

// Index maps reference name, in natural-numeric order, to the
// ReferenceGroupedCollection for that reference. It is populated once
// during load and queried read-only thereafter.
type Index[T Located] struct {
	byReference map[string]*ReferenceGroupedCollection[T]
}

// NewIndex creates an empty Index.
func NewIndex[T Located]() *Index[T] {
	return &Index[T]{byReference: make(map[string]*ReferenceGroupedCollection[T])}
}

// Add inserts item into the collection for its reference, creating that
// collection on first use.
func (idx *Index[T]) Add(item T) error {
	ref := item.Bounds().Reference
	c, ok := idx.byReference[ref]
	if !ok {
		c = NewReferenceGroupedCollection[T](ref)
		idx.byReference[ref] = c
	}
	return c.Add(item)
}

// Collection returns the collection for reference, or nil if none exists.
func (idx *Index[T]) Collection(reference string) *ReferenceGroupedCollection[T] {
	return idx.byReference[reference]
}

// References returns every reference with at least one indexed item,
// ordered naturally.
func (idx *Index[T]) References() []string {
	refs := make([]string, 0, len(idx.byReference))
	for ref := range idx.byReference {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return natsort.Less(refs[i], refs[j]) })
	return refs
}

// Sort sorts every reference's collection. Call once after loading.
func (idx *Index[T]) Sort() {
	for _, c := range idx.byReference {
		c.Sort()
	}
}

// Len returns the total number of indexed items across all references.
func (idx *Index[T]) Len() int {
	n := 0
	for _, c := range idx.byReference {
		n += len(c.Items)
	}
	return n
}

// Overlapping returns every item overlapping q, or nil if q's reference is
// not indexed.
func (idx *Index[T]) Overlapping(q Interval) []T {
	c := idx.Collection(q.Reference)
	if c == nil {
		return nil
	}
	return c.Overlapping(q)
}

// All returns every indexed item, in natural reference order followed by
// each reference's own sorted order.
func (idx *Index[T]) All() []T {
	var out []T
	for _, ref := range idx.References() {
		out = append(out, idx.byReference[ref].Items...)
	}
	return out
}
