package classify

import "github.com/parkerlab/ataqv-go/pkg/readgroup"

// Diagnose implements the aggregate diagnoser (spec.md §4.G): once a bucket
// has seen every record, each deferred same-reference, non-proper-pair
// fragment size recorded by the classifier is resolved against the
// bucket's own maximum_proper_pair_fragment_size, which is only known for
// certain once the whole file has been scanned.
//
// A size at or below the threshold is "mapped and paired but improperly";
// a size above it is "mate too distant". The deferred map is drained as
// it's consumed, since no later pass needs it again.
func Diagnose(bucket *readgroup.Bucket) {
	for qname, sizes := range bucket.UnlikelyFragmentSizes {
		for _, size := range sizes {
			if size > bucket.MaximumProperPairFragmentSize {
				bucket.ReadsWithMateTooDistant++
			} else {
				bucket.ReadsMappedAndPairedButImproperly++
			}
		}
		delete(bucket.UnlikelyFragmentSizes, qname)
	}
}
