package classify

import (
	"math"
	"testing"

	"github.com/biogo/hts/sam"

	"github.com/parkerlab/ataqv-go/pkg/genome"
	"github.com/parkerlab/ataqv-go/pkg/organism"
	"github.com/parkerlab/ataqv-go/pkg/peaks"
	"github.com/parkerlab/ataqv-go/pkg/readgroup"
)

func testConfig(t *testing.T, masterPeaks *peaks.Index) *readgroup.Configuration {
	t.Helper()
	autosomal, err := organism.Lookup("human")
	if err != nil {
		t.Fatalf("organism.Lookup: %v", err)
	}
	return &readgroup.Configuration{
		Organism:               "human",
		AutosomalReferences:    autosomal,
		MitochondrialReference: "chrM",
		MasterPeaks:            masterPeaks,
	}
}

func newHeaderAndRef(t *testing.T, name string, length int) (*sam.Header, *sam.Reference) {
	t.Helper()
	ref, err := sam.NewReference(name, "", "", length, nil, nil)
	if err != nil {
		t.Fatalf("sam.NewReference: %v", err)
	}
	header, err := sam.NewHeader(nil, []*sam.Reference{ref})
	if err != nil {
		t.Fatalf("sam.NewHeader: %v", err)
	}
	return header, header.Refs()[0]
}

func properPairRecord(t *testing.T, ref *sam.Reference, pos, matePos, tempLen int, mapq byte) *sam.Record {
	t.Helper()
	r := &sam.Record{
		Name:    "read1",
		Ref:     ref,
		MateRef: ref,
		Pos:     pos,
		MatePos: matePos,
		TempLen: tempLen,
		MapQ:    mapq,
		Flags:   sam.Paired | sam.ProperPair | sam.MateReverse,
		Cigar:   []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 50)},
	}
	return r
}

func TestRecordClassifiesAutosomalHQAA(t *testing.T) {
	header, ref := newHeaderAndRef(t, "chr1", 1000000)
	config := testConfig(t, nil)
	bucket := readgroup.New("test", config)

	r := properPairRecord(t, ref, 100, 200, 150, 40)
	Record(header, r, bucket, nil)

	if bucket.TotalReads != 1 {
		t.Fatalf("expected 1 total read, got %d", bucket.TotalReads)
	}
	if bucket.ProperlyPairedAndMappedReads != 1 {
		t.Errorf("expected 1 properly paired and mapped read, got %d", bucket.ProperlyPairedAndMappedReads)
	}
	if bucket.TotalAutosomalReads != 1 {
		t.Errorf("expected 1 autosomal read, got %d", bucket.TotalAutosomalReads)
	}
	if bucket.HQAA != 1 {
		t.Errorf("expected 1 HQAA read, got %d", bucket.HQAA)
	}
	if bucket.FRReads != 1 {
		t.Errorf("expected 1 FR read, got %d", bucket.FRReads)
	}
	if bucket.MaximumProperPairFragmentSize != 150 {
		t.Errorf("expected max fragment size 150, got %d", bucket.MaximumProperPairFragmentSize)
	}
}

func TestRecordFFAcrossReferences(t *testing.T) {
	header, ref1 := newHeaderAndRef(t, "chr1", 1000000)
	ref2, err := sam.NewReference("chr2", "", "", 1000000, nil, nil)
	if err != nil {
		t.Fatalf("sam.NewReference: %v", err)
	}
	if err := header.AddReference(ref2); err != nil {
		t.Fatalf("AddReference: %v", err)
	}
	config := testConfig(t, nil)
	bucket := readgroup.New("test", config)

	// Neither reverse nor mate-reverse, pos and mpos both zero, mate on a
	// different reference: isFF must still fire, since the FF/RR predicate
	// carries no position or same-reference clause.
	r := &sam.Record{
		Name:    "read1",
		Ref:     ref1,
		MateRef: ref2,
		Pos:     0,
		MatePos: 0,
		Flags:   sam.Paired | sam.ProperPair,
		Cigar:   []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 50)},
	}
	Record(header, r, bucket, nil)

	if bucket.FFReads != 1 {
		t.Errorf("expected 1 FF read, got %d", bucket.FFReads)
	}
}

func TestRecordDropsLowMAPQFromHQAA(t *testing.T) {
	header, ref := newHeaderAndRef(t, "chr1", 1000000)
	config := testConfig(t, nil)
	bucket := readgroup.New("test", config)

	r := properPairRecord(t, ref, 100, 200, 150, 5)
	Record(header, r, bucket, nil)

	if bucket.HQAA != 0 {
		t.Errorf("expected 0 HQAA reads for mapq 5, got %d", bucket.HQAA)
	}
	if bucket.TotalAutosomalReads != 1 {
		t.Errorf("expected the read still counted as autosomal, got %d", bucket.TotalAutosomalReads)
	}
}

func TestRecordUnpairedAndUnmapped(t *testing.T) {
	header, ref := newHeaderAndRef(t, "chr1", 1000000)
	config := testConfig(t, nil)
	bucket := readgroup.New("test", config)

	unpaired := &sam.Record{Name: "r1", Ref: ref, Flags: 0}
	Record(header, unpaired, bucket, nil)
	if bucket.UnpairedReads != 1 {
		t.Errorf("expected 1 unpaired read, got %d", bucket.UnpairedReads)
	}

	unmapped := &sam.Record{Name: "r2", Ref: ref, Flags: sam.Paired | sam.Unmapped}
	Record(header, unmapped, bucket, nil)
	if bucket.UnmappedReads != 1 {
		t.Errorf("expected 1 unmapped read, got %d", bucket.UnmappedReads)
	}
}

func TestDiagnoseSplitsOnMaximumFragmentSize(t *testing.T) {
	config := testConfig(t, nil)
	bucket := readgroup.New("test", config)
	bucket.MaximumProperPairFragmentSize = 500
	bucket.UnlikelyFragmentSizes["q1"] = []uint64{400}
	bucket.UnlikelyFragmentSizes["q2"] = []uint64{600}

	Diagnose(bucket)

	if bucket.ReadsMappedAndPairedButImproperly != 1 {
		t.Errorf("expected 1 improperly paired read, got %d", bucket.ReadsMappedAndPairedButImproperly)
	}
	if bucket.ReadsWithMateTooDistant != 1 {
		t.Errorf("expected 1 mate-too-distant read, got %d", bucket.ReadsWithMateTooDistant)
	}
	if len(bucket.UnlikelyFragmentSizes) != 0 {
		t.Errorf("expected the deferred map to be drained, got %d entries", len(bucket.UnlikelyFragmentSizes))
	}
}

func TestRankTopSumsAndCurves(t *testing.T) {
	idx := peaks.NewIndex()
	mustAdd := func(name string, start, end uint64, hqaa uint64) {
		p := &peaks.Peak{Interval: genome.New("chr1", start, end, name), OverlappingHQAA: hqaa}
		if err := idx.Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	mustAdd("p1", 0, 100, 10)
	mustAdd("p2", 200, 250, 5)
	mustAdd("p3", 300, 300, 0)
	idx.Sort()

	config := testConfig(t, idx)
	bucket := readgroup.New("test", config)
	// New gives the bucket a clone of the master index with zeroed
	// counters; rank the peaks that carry the counts set above.
	bucket.Peaks = idx

	Rank(bucket)

	if bucket.Ranking.Top1 != 10 {
		t.Errorf("expected top1 = 10, got %d", bucket.Ranking.Top1)
	}
	if bucket.Ranking.Top10 != 15 {
		t.Errorf("expected top10 = 15, got %d", bucket.Ranking.Top10)
	}
	if bucket.Ranking.TotalPeakTerritory != 150 {
		t.Errorf("expected total territory 150, got %d", bucket.Ranking.TotalPeakTerritory)
	}
	last := bucket.Ranking.CumulativeFractionOfHQAA[len(bucket.Ranking.CumulativeFractionOfHQAA)-1]
	if math.Abs(last-1.0) > 1e-9 {
		t.Errorf("expected cumulative fraction of HQAA to reach 1.0, got %v", last)
	}
}

func TestRankEmptyPeaksProducesNaNCurve(t *testing.T) {
	idx := peaks.NewIndex()
	config := testConfig(t, idx)
	bucket := readgroup.New("test", config)

	Rank(bucket)

	if !math.IsNaN(bucket.Ranking.CumulativeFractionOfHQAA[0]) {
		t.Errorf("expected NaN curve for an empty peak set")
	}
}
