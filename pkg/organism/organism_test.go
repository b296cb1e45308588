package organism

import (
	"strings"
	"testing"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
)

func TestBuiltinAcceptsBothSpellings(t *testing.T) {
	human, err := Lookup("human")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !human.Contains("1") || !human.Contains("chr1") {
		t.Error("expected both \"1\" and \"chr1\" to be autosomal for human")
	}
	if human.Contains("23") || human.Contains("chrX") {
		t.Error("chromosome 23/X should not be in the autosomal set")
	}
}

func TestWormUsesRomanNumerals(t *testing.T) {
	worm, err := Lookup("worm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"I", "II", "III", "IV", "V", "chrV"} {
		if !worm.Contains(want) {
			t.Errorf("expected worm autosomal set to contain %q", want)
		}
	}
	if worm.Contains("VI") {
		t.Error("worm has only 5 autosomes (I-V)")
	}
}

func TestLookupUnknownOrganism(t *testing.T) {
	_, err := Lookup("dragon")
	if !ataqverr.Is(err, ataqverr.Config) {
		t.Fatalf("expected Config error, got %v", err)
	}
}

func TestLoadOverride(t *testing.T) {
	set, err := LoadOverride(strings.NewReader("chr1\nchr2\n\nchr3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("expected 3 references, got %d", len(set))
	}
}
