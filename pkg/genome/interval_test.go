package genome

import (
	"testing"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
)

type testFeature struct {
	iv Interval
}

func (f testFeature) Bounds() Interval { return f.iv }

func feat(ref string, start, end uint64, name string) testFeature {
	return testFeature{iv: New(ref, start, end, name)}
}

func TestOverlapsClosedBoundary(t *testing.T) {
	a := New("chr1", 100, 200, "a")
	b := New("chr1", 200, 300, "b")
	if !a.Overlaps(b) {
		t.Error("expected touching intervals to overlap under closed-boundary convention")
	}
	c := New("chr1", 201, 300, "c")
	if a.Overlaps(c) {
		t.Error("expected non-touching intervals not to overlap")
	}
	d := New("chr2", 100, 200, "d")
	if a.Overlaps(d) {
		t.Error("intervals on different references must never overlap")
	}
}

func TestReferenceGroupedCollectionRejectsMismatchedReference(t *testing.T) {
	c := NewReferenceGroupedCollection[testFeature]("chr1")
	if err := c.Add(feat("chr1", 0, 10, "x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := c.Add(feat("chr2", 0, 10, "y"))
	if !ataqverr.Is(err, ataqverr.ReferenceMismatch) {
		t.Fatalf("expected ReferenceMismatch, got %v", err)
	}
}

func TestBracketFindsOverlaps(t *testing.T) {
	c := NewReferenceGroupedCollection[testFeature]("chr1")
	for _, f := range []testFeature{
		feat("chr1", 100, 500, "p1"),
		feat("chr1", 400, 800, "p2"),
		feat("chr1", 1000, 1100, "p3"),
		feat("chr1", 2000, 2100, "p4"),
	} {
		_ = c.Add(f)
	}
	c.Sort()

	q := New("chr1", 350, 450, "query")
	overlapping := c.Overlapping(q)
	if len(overlapping) != 2 {
		t.Fatalf("expected 2 overlapping peaks, got %d", len(overlapping))
	}

	none := c.Overlapping(New("chr1", 5000, 5100, "far"))
	if len(none) != 0 {
		t.Fatalf("expected no overlaps far from any peak, got %d", len(none))
	}
}

func TestIndexOverlappingUnknownReference(t *testing.T) {
	idx := NewIndex[testFeature]()
	_ = idx.Add(feat("chr1", 0, 100, "a"))
	idx.Sort()

	if got := idx.Overlapping(New("chr2", 0, 100, "q")); got != nil {
		t.Fatalf("expected nil for unindexed reference, got %v", got)
	}
}

func TestIndexReferencesNaturalOrder(t *testing.T) {
	idx := NewIndex[testFeature]()
	for _, ref := range []string{"chr2", "chr10", "chr1"} {
		_ = idx.Add(feat(ref, 0, 10, "x"))
	}
	refs := idx.References()
	want := []string{"chr1", "chr2", "chr10"}
	for i, w := range want {
		if refs[i] != w {
			t.Fatalf("References() = %v, want order %v", refs, want)
		}
	}
}
