package tss

import (
	"strings"
	"testing"

	"github.com/parkerlab/ataqv-go/pkg/organism"
)

func TestLoadRetainsStrand(t *testing.T) {
	autosomal, _ := organism.Lookup("human")
	input := "chr1\t1000\t1001\ttss1\t0\t+\nchr1\t2000\t2001\ttss2\t0\t-\n"

	idx := NewIndex()
	if err := Load(strings.NewReader(input), "tss.bed", autosomal, nil, idx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	features := idx.All()
	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}
	if features[0].IsReverse() {
		t.Error("tss1 should be forward strand")
	}
	if !features[1].IsReverse() {
		t.Error("tss2 should be reverse strand")
	}
}

func TestReferencesByCountDescending(t *testing.T) {
	autosomal, _ := organism.Lookup("human")
	input := strings.Join([]string{
		"chr1\t1\t2\ta",
		"chr2\t1\t2\tb",
		"chr2\t10\t11\tc",
		"chr2\t20\t21\td",
	}, "\n")

	idx := NewIndex()
	if err := Load(strings.NewReader(input), "tss.bed", autosomal, nil, idx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refs := idx.ReferencesByCount()
	if refs[0] != "chr2" {
		t.Fatalf("expected chr2 (3 TSSs) first, got %v", refs)
	}
}
