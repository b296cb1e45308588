package readgroup

import (
	"sort"

	"github.com/parkerlab/ataqv-go/pkg/natsort"
	"github.com/sirupsen/logrus"
)

// HeaderInfo is the subset of a BAM @RG header line the registry needs,
// decoupled from any particular BAM library's header type.
type HeaderInfo struct {
	ID                        string
	Library                   string
	Sample                    string
	Description               string
	Center                    string
	Date                      string
	Platform                  string
	PlatformModel             string
	PlatformUnit              string
	FlowOrder                 string
	KeySequence               string
	PredictedMedianInsertSize string
	Programs                  string
}

func (h HeaderInfo) toLibrary() Library {
	return Library{
		Library:                   h.Library,
		Sample:                    h.Sample,
		Description:               h.Description,
		Center:                    h.Center,
		Date:                      h.Date,
		Platform:                  h.Platform,
		PlatformModel:             h.PlatformModel,
		PlatformUnit:              h.PlatformUnit,
		FlowOrder:                 h.FlowOrder,
		KeySequence:               h.KeySequence,
		PredictedMedianInsertSize: h.PredictedMedianInsertSize,
		Programs:                  h.Programs,
	}
}

// Registry maps a read-group (or nucleus barcode) tag to its bucket,
// creating buckets lazily for tags unseen in the header.
type Registry struct {
	config           *Configuration
	buckets          map[string]*Bucket
	ignoreReadGroups bool
	singleBucketName string
	log              *logrus.Logger
}

// NewRegistry builds a registry from the BAM header's @RG lines. If there
// are none, a single bucket is created named fallbackName (the
// caller-supplied --name, or the alignment-file basename). If
// ignoreReadGroups is set, only that single bucket is ever used, regardless
// of each record's own read-group tag.
func NewRegistry(headerGroups []HeaderInfo, fallbackName string, ignoreReadGroups bool, config *Configuration, log *logrus.Logger) *Registry {
	r := &Registry{
		config:           config,
		buckets:          make(map[string]*Bucket),
		ignoreReadGroups: ignoreReadGroups,
		singleBucketName: fallbackName,
		log:              log,
	}

	if ignoreReadGroups || len(headerGroups) == 0 {
		r.buckets[fallbackName] = New(fallbackName, config)
		return r
	}

	for _, hg := range headerGroups {
		b := New(hg.ID, config)
		b.Library = hg.toLibrary()
		r.buckets[hg.ID] = b
	}
	return r
}

// Get returns the bucket for tag, the record's RG (or nucleus barcode)
// auxiliary field value. An empty tag, or a tag unrecognized from the
// header, is routed to a lazily-created bucket (logged at debug level) —
// this is a supported case per spec.md §3.
func (r *Registry) Get(tag string) *Bucket {
	if r.ignoreReadGroups {
		return r.buckets[r.singleBucketName]
	}
	if tag == "" {
		tag = r.singleBucketName
	}
	b, ok := r.buckets[tag]
	if !ok {
		if r.log != nil {
			r.log.Debugf("creating bucket for unrecognized read group %q", tag)
		}
		b = New(tag, r.config)
		r.buckets[tag] = b
	}
	return b
}

// ResolveName maps tag to the bucket name it would route to, without
// creating any bucket as a side effect. Used by the TSS enrichment engine
// (spec.md §4.I), whose workers run concurrently against buckets already
// fully populated by Phase 1 and must not race on Registry's internal map.
func (r *Registry) ResolveName(tag string) string {
	if r.ignoreReadGroups {
		return r.singleBucketName
	}
	if tag == "" {
		return r.singleBucketName
	}
	if _, ok := r.buckets[tag]; ok {
		return tag
	}
	return r.singleBucketName
}

// Buckets returns every bucket, ordered naturally by name.
func (r *Registry) Buckets() []*Bucket {
	names := make([]string, 0, len(r.buckets))
	for name := range r.buckets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return natsort.Less(names[i], names[j]) })

	out := make([]*Bucket, len(names))
	for i, name := range names {
		out[i] = r.buckets[name]
	}
	return out
}
