package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// tabularColumns is the fixed column schema for the TSV mode (spec.md
// §4.J): one row per bucket, histograms omitted because they are too
// large for a flat table, intended for single-nucleus pipelines with many
// buckets.
var tabularColumns = []string{
	"name",
	"total_reads", "hqaa", "hqaa_short_count", "hqaa_mononucleosomal_count",
	"total_autosomal_reads", "total_mitochondrial_reads",
	"duplicate_autosomal_reads", "duplicate_mitochondrial_reads",
	"properly_paired_and_mapped_reads", "unmapped_reads", "unclassified_reads",
	"mean_mapq", "median_mapq", "median_fragment_length",
	"short_mononucleosomal_ratio",
	"total_peak_territory", "hqaa_in_peaks", "ppm_in_peaks", "ppm_not_in_peaks",
	"tss_count", "tss_enrichment",
}

// WriteTabular writes one TSV row per bucket in buckets to w.
func WriteTabular(w io.Writer, buckets []*Bucket) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(tabularColumns); err != nil {
		return err
	}
	for _, b := range buckets {
		if err := cw.Write(tabularRow(b)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func tabularRow(b *Bucket) []string {
	return []string{
		b.Name,
		fu(b.TotalReads), fu(b.HQAA), fu(b.HQAAShortCount), fu(b.HQAAMononucleosomalCount),
		fu(b.TotalAutosomalReads), fu(b.TotalMitochondrialReads),
		fu(b.DuplicateAutosomalReads), fu(b.DuplicateMitochondrialReads),
		fu(b.ProperlyPairedAndMappedReads), fu(b.UnmappedReads), fu(b.UnclassifiedReads),
		ff(b.MeanMAPQ), ff(b.MedianMAPQ), ff(b.MedianFragmentLength),
		ff(b.ShortMononucleosomalRatio),
		fu(b.TotalPeakTerritory), fu(b.HQAAInPeaks), fu(b.PPMInPeaks), fu(b.PPMNotInPeaks),
		fu(b.TSSCount), ff(b.TSSEnrichment),
	}
}

func fu(v uint64) string { return strconv.FormatUint(v, 10) }

// ff formats a float for the TSV cell, leaving NaN as the literal "NaN"
// since TSV has no null: spec.md §4.J's null convention is specific to
// the JSON mode.
func ff(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
