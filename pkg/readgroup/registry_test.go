package readgroup

import (
	"math"
	"testing"

	"github.com/parkerlab/ataqv-go/pkg/organism"
)

func testConfig() *Configuration {
	autosomal, _ := organism.Lookup("human")
	return &Configuration{
		Organism:               "human",
		AutosomalReferences:    autosomal,
		MitochondrialReference: "chrM",
	}
}

func TestRegistryCreatesOneBucketPerHeaderGroup(t *testing.T) {
	groups := []HeaderInfo{{ID: "rg1", Library: "lib1"}, {ID: "rg2", Library: "lib2"}}
	r := NewRegistry(groups, "fallback", false, testConfig(), nil)
	if len(r.Buckets()) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(r.Buckets()))
	}
	if r.Get("rg1").Library.Library != "lib1" {
		t.Errorf("expected rg1's library to be lib1")
	}
}

func TestRegistryFallsBackWithNoHeaderGroups(t *testing.T) {
	r := NewRegistry(nil, "myfile", false, testConfig(), nil)
	if len(r.Buckets()) != 1 {
		t.Fatalf("expected 1 fallback bucket, got %d", len(r.Buckets()))
	}
	if r.Buckets()[0].Name != "myfile" {
		t.Errorf("expected fallback bucket named myfile, got %q", r.Buckets()[0].Name)
	}
}

func TestRegistryIgnoreReadGroupsCollapsesToOneBucket(t *testing.T) {
	groups := []HeaderInfo{{ID: "rg1"}, {ID: "rg2"}}
	r := NewRegistry(groups, "all", true, testConfig(), nil)
	if len(r.Buckets()) != 1 {
		t.Fatalf("expected 1 bucket when ignoring read groups, got %d", len(r.Buckets()))
	}
	if r.Get("rg1") != r.Get("rg2") {
		t.Error("expected every tag to resolve to the same bucket")
	}
}

func TestRegistryLazilyCreatesUnknownGroup(t *testing.T) {
	groups := []HeaderInfo{{ID: "rg1"}}
	r := NewRegistry(groups, "fallback", false, testConfig(), nil)
	b := r.Get("unseen")
	if b == nil || b.Name != "unseen" {
		t.Fatalf("expected a lazily created bucket named unseen, got %+v", b)
	}
	if len(r.Buckets()) != 2 {
		t.Fatalf("expected 2 buckets after lazy creation, got %d", len(r.Buckets()))
	}
}

func TestShortMononucleosomalRatioNaN(t *testing.T) {
	b := New("x", testConfig())
	if !math.IsNaN(b.ShortMononucleosomalRatio()) {
		t.Error("expected NaN when hqaa_mononucleosomal_count is zero")
	}
	b.HQAAShortCount = 10
	b.HQAAMononucleosomalCount = 5
	if got := b.ShortMononucleosomalRatio(); got != 2 {
		t.Errorf("expected ratio 2, got %v", got)
	}
}

func TestMedianMAPQ(t *testing.T) {
	b := New("x", testConfig())
	b.MAPQCounts[10] = 1
	b.MAPQCounts[20] = 1
	b.MAPQCounts[30] = 1
	if got := b.MedianMAPQ(); got != 20 {
		t.Errorf("expected median 20, got %v", got)
	}
}
