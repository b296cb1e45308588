package bed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
	"github.com/parkerlab/ataqv-go/pkg/genome"
)

func TestParseSkipsBlankLines(t *testing.T) {
	input := "chr1\t100\t200\tpeak1\n\nchr1\t300\t400\tpeak2\n"
	var got []Record
	err := Parse(strings.NewReader(input), "test.bed", func(r Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestParseRejectsMalformedLine(t *testing.T) {
	err := Parse(strings.NewReader("chr1\tnotanumber\t200\n"), "bad.bed", func(Record) error { return nil })
	if !ataqverr.Is(err, ataqverr.FileFormat) {
		t.Fatalf("expected FileFormat error, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	intervals := []genome.Interval{
		genome.New("chr1", 100, 200, "peak1"),
		genome.New("chr2", 300, 400, "peak2"),
	}
	var buf bytes.Buffer
	if err := Write(&buf, intervals); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var got []genome.Interval
	err := Parse(&buf, "roundtrip.bed", func(r Record) error {
		got = append(got, r.Interval)
		return nil
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != len(intervals) {
		t.Fatalf("expected %d intervals, got %d", len(intervals), len(got))
	}
	for i := range intervals {
		if !got[i].Equal(intervals[i]) {
			t.Errorf("round trip mismatch at %d: got %+v, want %+v", i, got[i], intervals[i])
		}
	}
}
