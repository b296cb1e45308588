package report

import (
	"fmt"
	"io"
	"math"
)

// WriteText renders a fixed-schema human-readable report for each bucket
// in buckets to w (spec.md §4.J text mode): counts, percentages, the peak
// top-N table, the flank-normalised TSS curve, and the MAPQ distribution.
func WriteText(w io.Writer, buckets []*Bucket) error {
	for i, b := range buckets {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeBucketText(w, b); err != nil {
			return err
		}
	}
	return nil
}

func writeBucketText(w io.Writer, b *Bucket) error {
	pct := func(n uint64) float64 {
		if b.TotalReads == 0 {
			return math.NaN()
		}
		return 100 * float64(n) / float64(b.TotalReads)
	}

	fmt.Fprintf(w, "== %s ==\n", b.Name)
	fmt.Fprintf(w, "total reads:                          %d\n", b.TotalReads)
	fmt.Fprintf(w, "HQAA:                                  %d (%.2f%%)\n", b.HQAA, pct(b.HQAA))
	fmt.Fprintf(w, "duplicate reads:                       %d (%.2f%%)\n", b.DuplicateReads, pct(b.DuplicateReads))
	fmt.Fprintf(w, "properly paired and mapped reads:      %d (%.2f%%)\n", b.ProperlyPairedAndMappedReads, pct(b.ProperlyPairedAndMappedReads))
	fmt.Fprintf(w, "unmapped reads:                        %d (%.2f%%)\n", b.UnmappedReads, pct(b.UnmappedReads))
	fmt.Fprintf(w, "unclassified reads:                    %d (%.2f%%)\n", b.UnclassifiedReads, pct(b.UnclassifiedReads))
	fmt.Fprintf(w, "total autosomal reads:                 %d\n", b.TotalAutosomalReads)
	fmt.Fprintf(w, "total mitochondrial reads:              %d\n", b.TotalMitochondrialReads)
	fmt.Fprintf(w, "duplicate autosomal reads:              %d\n", b.DuplicateAutosomalReads)
	fmt.Fprintf(w, "hqaa short count:                       %d\n", b.HQAAShortCount)
	fmt.Fprintf(w, "hqaa mononucleosomal count:              %d\n", b.HQAAMononucleosomalCount)
	fmt.Fprintf(w, "short/mononucleosomal ratio:            %s\n", formatFloat(b.ShortMononucleosomalRatio))
	fmt.Fprintf(w, "mean MAPQ:                               %.2f\n", b.MeanMAPQ)
	fmt.Fprintf(w, "median MAPQ:                             %s\n", formatFloat(b.MedianMAPQ))
	fmt.Fprintf(w, "median fragment length:                 %s\n", formatFloat(b.MedianFragmentLength))

	if b.TotalPeakTerritory > 0 || len(b.TopPeaks) > 0 {
		fmt.Fprintf(w, "\npeak territory: %d bp\n", b.TotalPeakTerritory)
		fmt.Fprintf(w, "properly paired and mapped reads in peaks: %d, not in peaks: %d\n", b.PPMInPeaks, b.PPMNotInPeaks)
		fmt.Fprintf(w, "top-1/10/100/1000/10000 peaks (HQAA): %d / %d / %d / %d / %d\n",
			b.Top1, b.Top10, b.Top100, b.Top1000, b.Top10000)

		fmt.Fprintln(w, "\ntop peaks by overlapping HQAA:")
		limit := len(b.TopPeaks)
		if limit > 10 {
			limit = 10
		}
		for _, p := range b.TopPeaks[:limit] {
			fmt.Fprintf(w, "  %s:%d-%d\t%d\n", p.Reference, p.Start, p.End, p.OverlappingHQAA)
		}
	}

	if b.TSSCount > 0 {
		fmt.Fprintf(w, "\nTSS enrichment: %s (over %d TSS)\n", formatFloat(b.TSSEnrichment), b.TSSCount)
		fmt.Fprintln(w, "flank-normalised coverage curve:")
		for i, v := range b.TSSCoverageScaled {
			fmt.Fprintf(w, "  %d\t%s\n", i, formatFloat(v))
		}
	}

	fmt.Fprintln(w, "\nMAPQ distribution:")
	for _, e := range b.MAPQCounts {
		fmt.Fprintf(w, "  %v\t%d\t%s\n", e.Key, e.Value, formatFloat(e.Fraction))
	}

	return nil
}

// formatFloat renders v with four decimal places and NaN as "NaN", kept as
// a named helper so every text-mode float goes through one place.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}
