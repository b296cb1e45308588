package bamsrc

import "testing"

func TestIndexCandidatesTriesBaiThenCsi(t *testing.T) {
	got := indexCandidates("sample.bam")
	want := []string{"sample.bam.bai", "sample.bam.csi"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("/nonexistent/path/does-not-exist.bam", 1)
	if err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}
