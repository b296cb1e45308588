package report

import (
	"math"
	"strings"
	"testing"

	"github.com/parkerlab/ataqv-go/pkg/organism"
	"github.com/parkerlab/ataqv-go/pkg/readgroup"
)

func testConfig(t *testing.T) *readgroup.Configuration {
	t.Helper()
	autosomal, err := organism.Lookup("human")
	if err != nil {
		t.Fatalf("organism.Lookup: %v", err)
	}
	return &readgroup.Configuration{Organism: "human", AutosomalReferences: autosomal, MitochondrialReference: "chrM"}
}

func TestAssembleEmptyBucketHasNaNDerivedFields(t *testing.T) {
	b := readgroup.New("empty", testConfig(t))

	out := Assemble(b)

	if out.TotalReads != 0 {
		t.Errorf("expected zero total_reads, got %d", out.TotalReads)
	}
	if out.MeanMAPQ != 0 {
		t.Errorf("expected mean_mapq == 0 for an empty bucket, got %v", out.MeanMAPQ)
	}
	if !math.IsNaN(out.ShortMononucleosomalRatio) {
		t.Errorf("expected short_mononucleosomal_ratio to be NaN, got %v", out.ShortMononucleosomalRatio)
	}
}

func TestAssembleHistogramsAreNaturallySortedWithFractions(t *testing.T) {
	b := readgroup.New("b", testConfig(t))
	b.ChromosomeCounts["chr2"] = 1
	b.ChromosomeCounts["chr10"] = 1
	b.ChromosomeCounts["chr1"] = 2

	out := Assemble(b)

	if len(out.ChromosomeCounts) != 3 {
		t.Fatalf("expected 3 histogram rows, got %d", len(out.ChromosomeCounts))
	}
	want := []string{"chr1", "chr2", "chr10"}
	for i, w := range want {
		if out.ChromosomeCounts[i].Key != w {
			t.Errorf("position %d: expected key %q, got %v", i, w, out.ChromosomeCounts[i].Key)
		}
	}
	if out.ChromosomeCounts[0].Fraction != 0.5 {
		t.Errorf("expected chr1's fraction to be 0.5, got %v", out.ChromosomeCounts[0].Fraction)
	}
}

func TestRenderEmitsNaNAsNull(t *testing.T) {
	b := readgroup.New("empty", testConfig(t))
	out := Assemble(b)

	doc := NewDocument(Metadata{Name: "run"}, []*Bucket{out})
	data, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	text := string(data)
	if !contains(text, `"short_mononucleosomal_ratio": null`) {
		t.Errorf("expected short_mononucleosomal_ratio to render as null, got:\n%s", text)
	}
	if !contains(text, `"median_mapq": 0`) {
		t.Errorf("expected median_mapq to render as a number, got:\n%s", text)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestWriteTabularOmitsHistograms(t *testing.T) {
	b := readgroup.New("b", testConfig(t))
	b.TotalReads = 10
	b.HQAA = 4

	var buf strings.Builder
	if err := WriteTabular(&buf, []*Bucket{Assemble(b)}); err != nil {
		t.Fatalf("WriteTabular: %v", err)
	}

	out := buf.String()
	if contains(out, "fragment_length_counts") {
		t.Errorf("tabular output should omit histograms, got:\n%s", out)
	}
	if !contains(out, "10") {
		t.Errorf("expected total_reads value 10 to appear, got:\n%s", out)
	}
}
