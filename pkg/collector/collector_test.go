package collector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/biogo/hts/sam"
)

func TestHeaderReadGroupsConvertsRGFields(t *testing.T) {
	rg, err := sam.NewReadGroup("rg1", "center", "desc", "lib1", "prog", "illumina", "unit1", "sample1", "ACGT", "TTTT", time.Time{}, 300)
	if err != nil {
		t.Fatalf("sam.NewReadGroup: %v", err)
	}
	header, err := sam.NewHeader(nil, nil)
	if err != nil {
		t.Fatalf("sam.NewHeader: %v", err)
	}
	if err := header.AddReadGroup(rg); err != nil {
		t.Fatalf("AddReadGroup: %v", err)
	}

	groups := headerReadGroups(header)
	if len(groups) != 1 {
		t.Fatalf("expected 1 read group, got %d", len(groups))
	}
	g := groups[0]
	if g.ID != "rg1" {
		t.Errorf("expected ID rg1, got %q", g.ID)
	}
	if g.Library != "lib1" {
		t.Errorf("expected library lib1, got %q", g.Library)
	}
	if g.Sample != "sample1" {
		t.Errorf("expected sample sample1, got %q", g.Sample)
	}
	if g.Center != "center" {
		t.Errorf("expected center center, got %q", g.Center)
	}
	if g.PlatformUnit != "unit1" {
		t.Errorf("expected platform unit unit1, got %q", g.PlatformUnit)
	}
}

func TestBucketTagPrefersNucleusBarcodeWhenConfigured(t *testing.T) {
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	if err != nil {
		t.Fatalf("sam.NewReference: %v", err)
	}
	header, err := sam.NewHeader(nil, []*sam.Reference{ref})
	if err != nil {
		t.Fatalf("sam.NewHeader: %v", err)
	}

	rgAux, err := sam.NewAux(sam.NewTag("RG"), "rg-tag")
	if err != nil {
		t.Fatalf("sam.NewAux RG: %v", err)
	}
	cbAux, err := sam.NewAux(sam.NewTag("CB"), "cb-tag")
	if err != nil {
		t.Fatalf("sam.NewAux CB: %v", err)
	}

	rec := &sam.Record{
		Name:      "read1",
		Ref:       header.Refs()[0],
		MateRef:   header.Refs()[0],
		AuxFields: sam.AuxFields{rgAux, cbAux},
	}

	if got := bucketTag(rec, ""); got != "rg-tag" {
		t.Errorf("expected RG tag rg-tag with no nucleus barcode configured, got %q", got)
	}
	if got := bucketTag(rec, "CB"); got != "cb-tag" {
		t.Errorf("expected CB tag cb-tag when nucleus barcode tag is configured, got %q", got)
	}
}

func TestResolveAutosomalUsesBuiltinOrganismByDefault(t *testing.T) {
	autosomal, err := resolveAutosomal(Config{Organism: "human"})
	if err != nil {
		t.Fatalf("resolveAutosomal: %v", err)
	}
	if !autosomal.Contains("chr1") {
		t.Errorf("expected chr1 to be autosomal for human")
	}
	if autosomal.Contains("chrM") {
		t.Errorf("expected chrM not to be autosomal")
	}
}

func TestResolveAutosomalRejectsUnknownOrganismWithoutOverride(t *testing.T) {
	_, err := resolveAutosomal(Config{Organism: "dinosaur"})
	if err == nil {
		t.Fatalf("expected an error for an unknown organism")
	}
}

func TestLoadExcludedRegionsParsesEachFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "excluded.bed")
	if err := os.WriteFile(path, []byte("chr1\t100\t200\nchr2\t0\t50\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	excluded, err := loadExcludedRegions([]string{path})
	if err != nil {
		t.Fatalf("loadExcludedRegions: %v", err)
	}
	if len(excluded) != 2 {
		t.Fatalf("expected 2 excluded regions, got %d", len(excluded))
	}
}
