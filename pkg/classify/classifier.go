package classify

import (
	"github.com/biogo/hts/sam"

	"github.com/parkerlab/ataqv-go/pkg/genome"
	"github.com/parkerlab/ataqv-go/pkg/readgroup"
)

// ProblemLogger receives one line per record whose categorization was
// deferred to "unclassified" or otherwise worth recording, for
// --log-problematic-reads.
type ProblemLogger interface {
	LogProblem(category, recordText string)
}

func isPairedAndMapped(r *sam.Record) bool {
	return r.Flags&sam.Paired != 0 &&
		r.Flags&sam.Unmapped == 0 &&
		r.Flags&sam.MateUnmapped == 0
}

// IsHQAA reports whether r is a high-quality autosomal alignment, per the
// predicate in spec.md §4.F. Exported for the TSS enrichment engine, which
// needs the same test when deciding whether a fragment contributes to
// coverage.
func IsHQAA(config *readgroup.Configuration, r *sam.Record) bool {
	return isHQAA(config, r)
}

func isHQAA(config *readgroup.Configuration, r *sam.Record) bool {
	if r.Flags&sam.Unmapped != 0 || r.Flags&sam.MateUnmapped != 0 || r.Flags&sam.Duplicate != 0 {
		return false
	}
	if !isPairedAndMapped(r) || r.Flags&sam.ProperPair == 0 {
		return false
	}
	if !isPrimary(r) {
		return false
	}
	if r.MapQ < 30 {
		return false
	}
	if r.Ref == nil {
		return false
	}
	return config.IsAutosomal(r.Ref.Name())
}

// Record classifies one alignment record against bucket, mutating its
// counters and histograms per spec.md §4.F. header is retained for
// signature symmetry with the BAM reader's record/header pairing, though
// every field this step needs is already resolved on the record itself by
// biogo/hts (r.Ref, r.MateRef).
func Record(header *sam.Header, r *sam.Record, bucket *readgroup.Bucket, log ProblemLogger) {
	config := bucket.Config()

	// Step 1: unconditional counters.
	bucket.TotalReads++
	bucket.MAPQCounts[int(r.MapQ)]++

	if r.Flags&sam.Reverse != 0 {
		bucket.ReverseReads++
	} else {
		bucket.ForwardReads++
	}
	if r.Flags&sam.Secondary != 0 {
		bucket.SecondaryReads++
	}
	if r.Flags&sam.Supplementary != 0 {
		bucket.SupplementaryReads++
	}
	if r.Flags&sam.Read1 != 0 {
		bucket.FirstReads++
	}
	if r.Flags&sam.Read2 != 0 {
		bucket.SecondReads++
	}
	if r.Flags&sam.Duplicate != 0 {
		bucket.DuplicateReads++
	}
	if r.Flags&sam.MateReverse != 0 {
		bucket.ReverseMateReads++
	} else {
		bucket.ForwardMateReads++
	}
	if r.Flags&sam.Paired != 0 {
		bucket.PairedReads++
	}

	// Step 2: mutually-exclusive categorization; first predicate wins.
	switch {
	case r.Flags&sam.QCFail != 0:
		bucket.QCFailedReads++

	case r.Flags&sam.Paired == 0:
		bucket.UnpairedReads++

	case r.Flags&sam.Unmapped != 0:
		bucket.UnmappedReads++

	case r.Flags&sam.MateUnmapped != 0:
		bucket.UnmappedMateReads++

	case isRF(r):
		bucket.RFReads++

	case isFF(r):
		bucket.FFReads++

	case isRR(r):
		bucket.RRReads++

	case r.MapQ == 0:
		bucket.ReadsMappedWithZeroQuality++

	case isPairedAndMapped(r):
		bucket.PairedAndMappedReads++
		classifyPairedAndMapped(config, r, bucket)

	default:
		bucket.UnclassifiedReads++
		if log != nil {
			log.LogProblem("unclassified", recordText(r))
		}
	}
}

func classifyPairedAndMapped(config *readgroup.Configuration, r *sam.Record, bucket *readgroup.Bucket) {
	if r.Flags&sam.ProperPair != 0 {
		bucket.ProperlyPairedAndMappedReads++
		if isFR(r) {
			bucket.FRReads++
		}

		if refName := referenceName(r.Ref); refName != "" {
			switch {
			case config.IsMitochondrial(refName):
				bucket.TotalMitochondrialReads++
				if r.Flags&sam.Duplicate != 0 {
					bucket.DuplicateMitochondrialReads++
				}
			case config.IsAutosomal(refName):
				bucket.TotalAutosomalReads++
				creditPeaks(config, r, bucket)

				fragmentLen := abs64(r.TempLen)
				if r.Flags&sam.Duplicate != 0 {
					bucket.DuplicateAutosomalReads++
				} else if isHQAA(config, r) {
					bucket.HQAA++
				}
				bucket.ChromosomeCounts[refName]++
				bucket.FragmentLengthCounts[int(fragmentLen)]++
				if fragmentLen >= 50 && fragmentLen <= 100 {
					bucket.HQAAShortCount++
				}
				if fragmentLen >= 150 && fragmentLen <= 200 {
					bucket.HQAAMononucleosomalCount++
				}
			}
		}

		if isPrimary(r) {
			fragmentLen := abs64(r.TempLen)
			if fragmentLen > bucket.MaximumProperPairFragmentSize {
				bucket.MaximumProperPairFragmentSize = fragmentLen
			}
		}
		return
	}

	if r.MateRef != r.Ref {
		bucket.ReadsWithMateMappedToDifferentReference++
		return
	}

	bucket.UnlikelyFragmentSizes[r.Name] = append(bucket.UnlikelyFragmentSizes[r.Name], abs64(r.TempLen))
}

// creditPeaks implements spec.md §4.F's "Peak crediting" rule: an
// autosomal proper-pair record increments overlapping_hqaa on every peak
// it overlaps, and contributes to at most one of ppm_in_peaks/
// ppm_not_in_peaks (and duplicates_in_peaks/duplicates_not_in_peaks) no
// matter how many peaks it overlaps.
func creditPeaks(config *readgroup.Configuration, r *sam.Record, bucket *readgroup.Bucket) {
	if bucket.Peaks == nil {
		return
	}
	query := genome.New(r.Ref.Name(), uint64(r.Pos), uint64(r.End()), "")
	overlapping := bucket.Peaks.Overlapping(query)

	hqaa := isHQAA(config, r)
	duplicate := r.Flags&sam.Duplicate != 0

	if len(overlapping) == 0 {
		bucket.Ranking.PPMNotInPeaks++
		if duplicate {
			bucket.Ranking.DuplicatesNotInPeaks++
		}
		return
	}

	for _, p := range overlapping {
		if hqaa {
			p.OverlappingHQAA++
		}
	}
	bucket.Ranking.PPMInPeaks++
	if duplicate {
		bucket.Ranking.DuplicatesInPeaks++
	}
	if hqaa {
		bucket.Ranking.HQAAInPeaks++
	}
}

func recordText(r *sam.Record) string {
	return r.String()
}
