package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Document is the top-level shape of the JSON metrics file (spec.md §4.J,
// §6): run-level metadata alongside one entry per bucket, keyed by bucket
// name.
type Document struct {
	Name                string             `json:"name,omitempty"`
	Description         string             `json:"description,omitempty"`
	URL                 string             `json:"url,omitempty"`
	LibraryDescription  string             `json:"library_description,omitempty"`
	Metrics             map[string]*bucketJSON `json:"metrics"`
}

// NewDocument assembles a Document from meta and every bucket in buckets.
func NewDocument(meta Metadata, buckets []*Bucket) *Document {
	doc := &Document{
		Name:               meta.Name,
		Description:        meta.Description,
		URL:                meta.URL,
		LibraryDescription: meta.LibraryDescription,
		Metrics:            make(map[string]*bucketJSON, len(buckets)),
	}
	for _, b := range buckets {
		doc.Metrics[b.Name] = newBucketJSON(b)
	}
	return doc
}

// Render produces the indented JSON bytes for doc, matching the teacher's
// json.MarshalIndent convention (scttfrdmn-bams3/pkg/bams3/writer.go).
func Render(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// niceFloat marshals to JSON null instead of failing when the value is NaN
// or infinite (spec.md §4.J convention ii), since encoding/json cannot
// represent either.
type niceFloat float64

func (f niceFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// niceFloats is the slice counterpart of niceFloat, used for the TSS
// coverage curves and the peak-ranker's percentile curves.
type niceFloats []float64

func (fs niceFloats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
		} else {
			buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// histogramJSON renders a histogram's rows as the ordered
// [[key, value, fraction], ...] array spec.md §4.J convention (i) calls
// for; the companion *_fields array is a plain sibling field on
// bucketJSON, not part of this type.
type histogramJSON []histogramEntry

func (h histogramJSON) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte('[')
		buf.Write(keyBytes)
		buf.WriteByte(',')
		buf.WriteString(strconv.FormatUint(e.Value, 10))
		buf.WriteByte(',')
		if math.IsNaN(e.Fraction) {
			buf.WriteString("null")
		} else {
			buf.WriteString(strconv.FormatFloat(e.Fraction, 'g', -1, 64))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

var (
	intHistogramFields    = []string{"key", "count", "fraction"}
	stringHistogramFields = []string{"reference", "count", "fraction"}
)

// libraryJSON mirrors readgroup.Library with explicit SAM-tag-derived
// field names, matching original_source/Metrics.hpp's Library::to_json().
type libraryJSON struct {
	Library                   string `json:"library,omitempty"`
	Sample                    string `json:"sample,omitempty"`
	Description               string `json:"description,omitempty"`
	Center                    string `json:"center,omitempty"`
	Date                      string `json:"date,omitempty"`
	Platform                  string `json:"platform,omitempty"`
	PlatformModel             string `json:"platform_model,omitempty"`
	PlatformUnit              string `json:"platform_unit,omitempty"`
	FlowOrder                 string `json:"flow_order,omitempty"`
	KeySequence               string `json:"key_sequence,omitempty"`
	PredictedMedianInsertSize string `json:"predicted_median_insert_size,omitempty"`
	Programs                  string `json:"programs,omitempty"`
}

// bucketJSON is the JSON rendering of one Bucket: field names follow
// spec.md §3's per-bucket counter, histogram, and derived-field names
// verbatim.
type bucketJSON struct {
	Library libraryJSON `json:"library"`

	TotalReads                               uint64 `json:"total_reads"`
	ForwardReads                             uint64 `json:"forward_reads"`
	ReverseReads                             uint64 `json:"reverse_reads"`
	SecondaryReads                           uint64 `json:"secondary_reads"`
	SupplementaryReads                       uint64 `json:"supplementary_reads"`
	DuplicateReads                           uint64 `json:"duplicate_reads"`
	PairedReads                              uint64 `json:"paired_reads"`
	PairedAndMappedReads                     uint64 `json:"paired_and_mapped_reads"`
	ProperlyPairedAndMappedReads             uint64 `json:"properly_paired_and_mapped_reads"`
	FirstReads                               uint64 `json:"first_reads"`
	SecondReads                              uint64 `json:"second_reads"`
	ForwardMateReads                         uint64 `json:"forward_mate_reads"`
	ReverseMateReads                         uint64 `json:"reverse_mate_reads"`
	FRReads                                  uint64 `json:"fr_reads"`
	UnmappedReads                            uint64 `json:"unmapped_reads"`
	UnmappedMateReads                        uint64 `json:"unmapped_mate_reads"`
	QCFailedReads                            uint64 `json:"qcfailed_reads"`
	UnpairedReads                            uint64 `json:"unpaired_reads"`
	FFReads                                  uint64 `json:"ff_reads"`
	RFReads                                  uint64 `json:"rf_reads"`
	RRReads                                  uint64 `json:"rr_reads"`
	ReadsWithMateMappedToDifferentReference  uint64 `json:"reads_with_mate_mapped_to_different_reference"`
	ReadsMappedWithZeroQuality               uint64 `json:"reads_mapped_with_zero_quality"`
	ReadsMappedAndPairedButImproperly        uint64 `json:"reads_mapped_and_paired_but_improperly"`
	UnclassifiedReads                        uint64 `json:"unclassified_reads"`
	MaximumProperPairFragmentSize            uint64 `json:"maximum_proper_pair_fragment_size"`
	ReadsWithMateTooDistant                  uint64 `json:"reads_with_mate_too_distant"`
	TotalAutosomalReads                      uint64 `json:"total_autosomal_reads"`
	TotalMitochondrialReads                  uint64 `json:"total_mitochondrial_reads"`
	DuplicateAutosomalReads                  uint64 `json:"duplicate_autosomal_reads"`
	DuplicateMitochondrialReads              uint64 `json:"duplicate_mitochondrial_reads"`
	HQAA                                     uint64 `json:"hqaa"`
	HQAAShortCount                           uint64 `json:"hqaa_short_count"`
	HQAAMononucleosomalCount                 uint64 `json:"hqaa_mononucleosomal_count"`

	MeanMAPQ                  niceFloat `json:"mean_mapq"`
	MedianMAPQ                niceFloat `json:"median_mapq"`
	MedianFragmentLength      niceFloat `json:"median_fragment_length"`
	ShortMononucleosomalRatio niceFloat `json:"short_mononucleosomal_ratio"`

	FragmentLengthCounts       histogramJSON `json:"fragment_length_counts"`
	FragmentLengthCountsFields []string      `json:"fragment_length_counts_fields"`
	MAPQCounts                  histogramJSON `json:"mapq_counts"`
	MAPQCountsFields             []string      `json:"mapq_counts_fields"`
	ChromosomeCounts             histogramJSON `json:"chromosome_counts"`
	ChromosomeCountsFields       []string      `json:"chromosome_counts_fields"`

	TotalPeakTerritory   uint64 `json:"total_peak_territory"`
	PeakTop1             uint64 `json:"peak_percentile_1,omitempty"`
	PeakTop10            uint64 `json:"peak_percentile_10,omitempty"`
	PeakTop100           uint64 `json:"peak_percentile_100,omitempty"`
	PeakTop1000          uint64 `json:"peak_percentile_1000,omitempty"`
	PeakTop10000         uint64 `json:"peak_percentile_10000,omitempty"`
	HQAAInPeaks          uint64 `json:"hqaa_in_peaks"`
	PPMInPeaks           uint64 `json:"ppm_in_peaks"`
	PPMNotInPeaks        uint64 `json:"ppm_not_in_peaks"`
	DuplicatesInPeaks    uint64 `json:"duplicates_in_peaks"`
	DuplicatesNotInPeaks uint64 `json:"duplicates_not_in_peaks"`

	CumulativeFractionOfHQAA      niceFloats `json:"cumulative_fraction_of_hqaa,omitempty"`
	CumulativeFractionOfTerritory niceFloats `json:"cumulative_fraction_of_territory,omitempty"`

	TSSCount          uint64     `json:"tss_count,omitempty"`
	TSSCoverage       []uint64   `json:"tss_coverage,omitempty"`
	TSSCoverageScaled niceFloats `json:"tss_coverage_scaled,omitempty"`
	TSSEnrichment     niceFloat  `json:"tss_enrichment,omitempty"`
}

func newBucketJSON(b *Bucket) *bucketJSON {
	return &bucketJSON{
		Library: libraryJSON{
			Library:                   b.Library.Library,
			Sample:                    b.Library.Sample,
			Description:               b.Library.Description,
			Center:                    b.Library.Center,
			Date:                      b.Library.Date,
			Platform:                  b.Library.Platform,
			PlatformModel:             b.Library.PlatformModel,
			PlatformUnit:              b.Library.PlatformUnit,
			FlowOrder:                 b.Library.FlowOrder,
			KeySequence:               b.Library.KeySequence,
			PredictedMedianInsertSize: b.Library.PredictedMedianInsertSize,
			Programs:                  b.Library.Programs,
		},

		TotalReads:                               b.TotalReads,
		ForwardReads:                             b.ForwardReads,
		ReverseReads:                             b.ReverseReads,
		SecondaryReads:                           b.SecondaryReads,
		SupplementaryReads:                       b.SupplementaryReads,
		DuplicateReads:                           b.DuplicateReads,
		PairedReads:                              b.PairedReads,
		PairedAndMappedReads:                     b.PairedAndMappedReads,
		ProperlyPairedAndMappedReads:              b.ProperlyPairedAndMappedReads,
		FirstReads:                               b.FirstReads,
		SecondReads:                              b.SecondReads,
		ForwardMateReads:                         b.ForwardMateReads,
		ReverseMateReads:                         b.ReverseMateReads,
		FRReads:                                  b.FRReads,
		UnmappedReads:                            b.UnmappedReads,
		UnmappedMateReads:                        b.UnmappedMateReads,
		QCFailedReads:                            b.QCFailedReads,
		UnpairedReads:                            b.UnpairedReads,
		FFReads:                                  b.FFReads,
		RFReads:                                  b.RFReads,
		RRReads:                                  b.RRReads,
		ReadsWithMateMappedToDifferentReference:  b.ReadsWithMateMappedToDifferentReference,
		ReadsMappedWithZeroQuality:                b.ReadsMappedWithZeroQuality,
		ReadsMappedAndPairedButImproperly:         b.ReadsMappedAndPairedButImproperly,
		UnclassifiedReads:                         b.UnclassifiedReads,
		MaximumProperPairFragmentSize:             b.MaximumProperPairFragmentSize,
		ReadsWithMateTooDistant:                   b.ReadsWithMateTooDistant,
		TotalAutosomalReads:                       b.TotalAutosomalReads,
		TotalMitochondrialReads:                   b.TotalMitochondrialReads,
		DuplicateAutosomalReads:                   b.DuplicateAutosomalReads,
		DuplicateMitochondrialReads:               b.DuplicateMitochondrialReads,
		HQAA:                                      b.HQAA,
		HQAAShortCount:                            b.HQAAShortCount,
		HQAAMononucleosomalCount:                  b.HQAAMononucleosomalCount,

		MeanMAPQ:                  niceFloat(b.MeanMAPQ),
		MedianMAPQ:                niceFloat(b.MedianMAPQ),
		MedianFragmentLength:      niceFloat(b.MedianFragmentLength),
		ShortMononucleosomalRatio: niceFloat(b.ShortMononucleosomalRatio),

		FragmentLengthCounts:        histogramJSON(b.FragmentLengthCounts),
		FragmentLengthCountsFields:  intHistogramFields,
		MAPQCounts:                  histogramJSON(b.MAPQCounts),
		MAPQCountsFields:             intHistogramFields,
		ChromosomeCounts:             histogramJSON(b.ChromosomeCounts),
		ChromosomeCountsFields:       stringHistogramFields,

		TotalPeakTerritory:   b.TotalPeakTerritory,
		PeakTop1:             b.Top1,
		PeakTop10:            b.Top10,
		PeakTop100:           b.Top100,
		PeakTop1000:          b.Top1000,
		PeakTop10000:         b.Top10000,
		HQAAInPeaks:          b.HQAAInPeaks,
		PPMInPeaks:           b.PPMInPeaks,
		PPMNotInPeaks:        b.PPMNotInPeaks,
		DuplicatesInPeaks:    b.DuplicatesInPeaks,
		DuplicatesNotInPeaks: b.DuplicatesNotInPeaks,

		CumulativeFractionOfHQAA:      niceFloats(b.CumulativeFractionOfHQAA),
		CumulativeFractionOfTerritory: niceFloats(b.CumulativeFractionOfTerritory),

		TSSCount:          b.TSSCount,
		TSSCoverage:       b.TSSCoverage,
		TSSCoverageScaled: niceFloats(b.TSSCoverageScaled),
		TSSEnrichment:     niceFloat(b.TSSEnrichment),
	}
}
