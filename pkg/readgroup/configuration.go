package readgroup

import (
	"github.com/parkerlab/ataqv-go/pkg/genome"
	"github.com/parkerlab/ataqv-go/pkg/organism"
	"github.com/parkerlab/ataqv-go/pkg/peaks"
)

// Configuration is the immutable construction argument shared by every
// bucket. spec.md §9 describes breaking the source's aliasing cycle
// between a bucket and its owning collector with "a one-way relationship:
// the bucket receives, at construction, an immutable configuration record
// ... no back pointer" — this is that record.
type Configuration struct {
	Organism                 string
	AutosomalReferences      organism.Set
	MitochondrialReference   string
	ExcludedRegions          []genome.Interval
	LogProblematicReads      bool
	MasterPeaks              *peaks.Index // nil if peak metrics were not requested
	TSSExtension             int
}

// IsAutosomal reports whether reference is in the configured autosomal set.
func (c *Configuration) IsAutosomal(reference string) bool {
	return c.AutosomalReferences.Contains(reference)
}

// IsMitochondrial reports whether reference is the configured
// mitochondrial reference name.
func (c *Configuration) IsMitochondrial(reference string) bool {
	return reference == c.MitochondrialReference
}
