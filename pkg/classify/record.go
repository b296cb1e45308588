// Package classify implements the alignment classifier (spec.md §4.F), the
// aggregate diagnoser (§4.G), and the peak ranker (§4.H): the per-record
// state machine that assigns every alignment to exactly one category, the
// post-pass resolution of "mate too distant" vs "just improper", and the
// per-bucket peak ranking used by the report.
package classify

import (
	"github.com/biogo/hts/sam"
)

var rgTag = []byte("RG")

// ReadGroupTag returns the record's RG auxiliary tag value, or "" if the
// record carries none. The TSS enrichment engine uses this to resolve which
// bucket a record belongs to; Phase 1 routing goes through the collector's
// own tag lookup instead.
func ReadGroupTag(r *sam.Record) string {
	aux, ok := r.Tag(rgTag)
	if !ok {
		return ""
	}
	if s, ok := aux.Value().(string); ok {
		return s
	}
	return ""
}

func referenceName(ref *sam.Reference) string {
	if ref == nil {
		return ""
	}
	return ref.Name()
}

func abs64(n int) uint64 {
	if n < 0 {
		n = -n
	}
	return uint64(n)
}

func isPrimary(r *sam.Record) bool {
	return r.Flags&(sam.Secondary|sam.Supplementary) == 0
}

// positionsNonZero implements spec.md §9's open question: the historical
// FR/RF predicate carries an extra clause requiring both pos and mpos to be
// non-zero. Preserved verbatim for bit-compatibility with existing reports;
// it does drop legitimate records at the very start of a reference.
func positionsNonZero(r *sam.Record) bool {
	return r.Pos != 0 && r.MatePos != 0
}

// isFF and isRR are pure flag tests per spec.md §4.F items 6-7, with no
// same-reference or position check: the historical extra clause (see
// positionsNonZero) is scoped to the FR/RF predicate alone, per
// original_source/src/cpp/Metrics.cpp's is_ff/is_rr (~lines 623-629).
func isFF(r *sam.Record) bool {
	return r.Flags&sam.Reverse == 0 && r.Flags&sam.MateReverse == 0
}

func isRR(r *sam.Record) bool {
	return r.Flags&sam.Reverse != 0 && r.Flags&sam.MateReverse != 0
}

func isRF(r *sam.Record) bool {
	if !positionsNonZero(r) || r.Ref == nil || r.MateRef == nil || r.Ref != r.MateRef {
		return false
	}
	reverse := r.Flags&sam.Reverse != 0
	mateReverse := r.Flags&sam.MateReverse != 0
	if reverse && !mateReverse && r.TempLen > 0 {
		return true
	}
	if !reverse && mateReverse && r.TempLen < 0 {
		return true
	}
	return false
}

// isFR carries the same pos/mpos-non-zero clause as isRF: spec.md §9's
// Open Question and original_source/src/cpp/Metrics.cpp's is_fr/is_rf both
// scope the clause to this predicate pair alone, not to isFF/isRR.
func isFR(r *sam.Record) bool {
	if !positionsNonZero(r) || r.Ref == nil || r.MateRef == nil || r.Ref != r.MateRef {
		return false
	}
	reverse := r.Flags&sam.Reverse != 0
	mateReverse := r.Flags&sam.MateReverse != 0
	if !reverse && mateReverse && r.TempLen > 0 {
		return true
	}
	if reverse && !mateReverse && r.TempLen < 0 {
		return true
	}
	return false
}
