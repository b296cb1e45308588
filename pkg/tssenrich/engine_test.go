package tssenrich

import (
	"math"
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

func TestNormalizeScalesByFlankMean(t *testing.T) {
	extension := 2
	b := readgroup.New("test", testConfig(t))
	b.TSSCount = 2
	// width 2*2+1 = 5; flank width clamped to len(coverage) = 5.
	b.TSSCoverage = []uint64{2, 2, 20, 2, 2}

	Normalize(b, extension)

	if len(b.TSSCoverageScaled) != 5 {
		t.Fatalf("expected 5 scaled positions, got %d", len(b.TSSCoverageScaled))
	}
	// mean_flank over all 5 positions (flank width clamped to 5): (1+1+10+1+1)/5 = 2.8
	// center value per-tss = 20/2 = 10; scaled = 10/2.8
	want := 10.0 / 2.8
	if math.Abs(b.TSSCoverageScaled[2]-want) > 1e-9 {
		t.Errorf("expected centre scaled value %v, got %v", want, b.TSSCoverageScaled[2])
	}
	if math.Abs(b.TSSEnrichment-want) > 1e-9 {
		t.Errorf("expected enrichment %v, got %v", want, b.TSSEnrichment)
	}
}

func TestNormalizeZeroFlankMeanYieldsNaN(t *testing.T) {
	b := readgroup.New("test", testConfig(t))
	b.TSSCount = 1
	b.TSSCoverage = []uint64{0, 0, 0}

	Normalize(b, 1)

	for i, v := range b.TSSCoverageScaled {
		if !math.IsNaN(v) {
			t.Errorf("position %d: expected NaN for zero flank mean, got %v", i, v)
		}
	}
}

func TestNormalizeZeroTSSCountIsNoOp(t *testing.T) {
	b := readgroup.New("test", testConfig(t))
	b.TSSCount = 0
	b.TSSCoverage = []uint64{1, 2, 3}

	Normalize(b, 1)

	if b.TSSCoverageScaled != nil {
		t.Errorf("expected no scaled output when tss_count is zero")
	}
}

func TestReduceSumsWorkerDeltas(t *testing.T) {
	config := testConfig(t)
	registry := readgroup.NewRegistry(nil, "fallback", false, config, nil)

	reduce(registry, coverageDelta{"fallback": {1, 2, 3}})
	reduce(registry, coverageDelta{"fallback": {10, 10, 10}})

	b := registry.Get("fallback")
	want := []uint64{11, 12, 13}
	for i, v := range want {
		if b.TSSCoverage[i] != v {
			t.Errorf("position %d: expected %d, got %d", i, v, b.TSSCoverage[i])
		}
	}
}
