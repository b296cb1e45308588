// Package collector implements the top-level orchestration spec.md §6/§7
// assign to "the command-line front-end... assumed to provide": wiring the
// BAM source, the BED-backed indices, the read-group registry, the
// classifier, the aggregate diagnoser, the TSS enrichment engine, and the
// peak ranker into a single run, and turning every failure into the
// structured errors pkg/ataqverr defines.
package collector

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/biogo/hts/sam"
	"github.com/sirupsen/logrus"

	"github.com/parkerlab/ataqv-go/internal/cpuinfo"
	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
	"github.com/parkerlab/ataqv-go/pkg/bamsrc"
	"github.com/parkerlab/ataqv-go/pkg/bed"
	"github.com/parkerlab/ataqv-go/pkg/classify"
	"github.com/parkerlab/ataqv-go/pkg/genome"
	"github.com/parkerlab/ataqv-go/pkg/organism"
	"github.com/parkerlab/ataqv-go/pkg/peaks"
	"github.com/parkerlab/ataqv-go/pkg/problemlog"
	"github.com/parkerlab/ataqv-go/pkg/readgroup"
	"github.com/parkerlab/ataqv-go/pkg/report"
	"github.com/parkerlab/ataqv-go/pkg/tss"
	"github.com/parkerlab/ataqv-go/pkg/tssenrich"
)

// autoPeakFile is the sentinel value for --peak-file that requests one
// peak file per read group, named "<RG-ID>.peaks" (spec.md §6).
const autoPeakFile = "auto"

// progressInterval is the number of phase-1 records between verbose
// progress markers (spec.md §7: "per-100k-record progress marker with
// elapsed duration and throughput").
const progressInterval = 100000

// Config is the collector's construction argument: the fully resolved
// form of the CLI surface in spec.md §6.
type Config struct {
	Organism               string
	AlignmentPath          string
	PeakFilePath           string
	TSSFilePath            string
	TSSExtension           int
	ExcludedRegionFiles    []string
	AutosomalReferenceFile string
	MitochondrialName      string
	IgnoreReadGroups       bool
	NucleusBarcodeTag      string
	Name                   string
	Description            string
	URL                    string
	LibraryDescription     string
	Threads                int
	LogProblematicReads    bool
	ProblemLogDir          string
	Verbose                bool
	Log                    *logrus.Logger
}

// Result is everything a caller needs to emit a report: the assembled
// per-bucket state plus the run-level metadata.
type Result struct {
	Metadata report.Metadata
	Buckets  []*report.Bucket
}

// Run executes the full pipeline described by spec.md §2 (components A-J)
// and its expansions (K-Q): load indices, stream phase 1, run the TSS
// engine if configured, rank peaks, and assemble the per-bucket reports.
func Run(cfg Config) (*Result, error) {
	log := cfg.Log
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}

	autosomal, err := resolveAutosomal(cfg)
	if err != nil {
		return nil, err
	}

	excluded, err := loadExcludedRegions(cfg.ExcludedRegionFiles)
	if err != nil {
		return nil, err
	}

	source, err := bamsrc.Open(cfg.AlignmentPath, 1)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	header := source.Header()

	var masterPeaks *peaks.Index
	autoPeaks := strings.EqualFold(cfg.PeakFilePath, autoPeakFile)
	if cfg.PeakFilePath != "" && !autoPeaks {
		masterPeaks = peaks.NewIndex()
		if err := loadPeakFile(cfg.PeakFilePath, masterPeaks, autosomal, excluded, log); err != nil {
			return nil, err
		}
	}

	var tssIndex *tss.Index
	if cfg.TSSFilePath != "" {
		tssIndex = tss.NewIndex()
		if err := loadTSSFile(cfg.TSSFilePath, tssIndex, autosomal, excluded, log); err != nil {
			return nil, err
		}
	}

	configuration := &readgroup.Configuration{
		Organism:               cfg.Organism,
		AutosomalReferences:    autosomal,
		MitochondrialReference: cfg.MitochondrialName,
		ExcludedRegions:        excluded,
		LogProblematicReads:    cfg.LogProblematicReads,
		MasterPeaks:            masterPeaks,
		TSSExtension:           cfg.TSSExtension,
	}

	fallbackName := cfg.Name
	if fallbackName == "" {
		fallbackName = strings.TrimSuffix(filepath.Base(cfg.AlignmentPath), filepath.Ext(cfg.AlignmentPath))
	}

	registry := readgroup.NewRegistry(headerReadGroups(header), fallbackName, cfg.IgnoreReadGroups, configuration, log)

	if autoPeaks {
		if err := loadAutoPeakFiles(registry, cfg.AlignmentPath, autosomal, excluded, log); err != nil {
			return nil, err
		}
	}

	var problems *problemlog.Writer
	if cfg.LogProblematicReads {
		dir := cfg.ProblemLogDir
		if dir == "" {
			dir = "."
		}
		problems = problemlog.New(dir)
		defer problems.Close()
	}

	if err := runPhase1(source, header, registry, problems, cfg, log); err != nil {
		return nil, err
	}

	for _, b := range registry.Buckets() {
		classify.Diagnose(b)
	}

	if tssIndex != nil {
		if err := runPhase2(cfg, tssIndex, registry, configuration, log); err != nil {
			return nil, err
		}
	}

	buckets := registry.Buckets()
	out := make([]*report.Bucket, len(buckets))
	for i, b := range buckets {
		out[i] = report.Assemble(b)
	}

	return &Result{
		Metadata: report.Metadata{
			Name:               cfg.Name,
			Description:        cfg.Description,
			URL:                cfg.URL,
			LibraryDescription: cfg.LibraryDescription,
		},
		Buckets: out,
	}, nil
}

func resolveAutosomal(cfg Config) (organism.Set, error) {
	if cfg.AutosomalReferenceFile != "" {
		f, err := os.Open(cfg.AutosomalReferenceFile)
		if err != nil {
			return nil, ataqverr.Wrap(ataqverr.FileOpen, cfg.AutosomalReferenceFile, err)
		}
		defer f.Close()
		return organism.LoadOverride(f)
	}
	return organism.Lookup(cfg.Organism)
}

func loadExcludedRegions(paths []string) ([]genome.Interval, error) {
	var excluded []genome.Interval
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, ataqverr.Wrap(ataqverr.FileOpen, path, err)
		}
		err = bed.Parse(f, path, func(rec bed.Record) error {
			excluded = append(excluded, rec.Interval)
			return nil
		})
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return excluded, nil
}

func loadPeakFile(path string, idx *peaks.Index, autosomal organism.Set, excluded []genome.Interval, log *logrus.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return ataqverr.Wrap(ataqverr.FileOpen, path, err)
	}
	defer f.Close()
	return peaks.Load(f, path, autosomal, excluded, idx, log)
}

func loadTSSFile(path string, idx *tss.Index, autosomal organism.Set, excluded []genome.Interval, log *logrus.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return ataqverr.Wrap(ataqverr.FileOpen, path, err)
	}
	defer f.Close()
	return tss.Load(f, path, autosomal, excluded, idx, log)
}

// loadAutoPeakFiles implements --peak-file auto (spec.md §6): each bucket
// gets its own peak index loaded from "<RG-ID>.peaks" next to the
// alignment file, rather than sharing one master index.
func loadAutoPeakFiles(registry *readgroup.Registry, alignmentPath string, autosomal organism.Set, excluded []genome.Interval, log *logrus.Logger) error {
	dir := filepath.Dir(alignmentPath)
	for _, b := range registry.Buckets() {
		path := filepath.Join(dir, b.Name+".peaks")
		f, err := os.Open(path)
		if err != nil {
			if log != nil {
				log.Debugf("no auto peak file for read group %q: %v", b.Name, err)
			}
			continue
		}
		idx := peaks.NewIndex()
		err = peaks.Load(f, path, autosomal, excluded, idx, log)
		f.Close()
		if err != nil {
			return err
		}
		b.Peaks = idx
	}
	return nil
}

// headerReadGroups converts the BAM header's @RG lines into the
// library-agnostic form readgroup.NewRegistry expects.
func headerReadGroups(header *sam.Header) []readgroup.HeaderInfo {
	rgs := header.RGs()
	out := make([]readgroup.HeaderInfo, len(rgs))
	for i, rg := range rgs {
		out[i] = readgroup.HeaderInfo{
			ID:                        rg.Name(),
			Library:                   rg.Library(),
			Sample:                    rg.Get(sam.NewTag("SM")),
			Description:               rg.Get(sam.NewTag("DS")),
			Center:                    rg.Get(sam.NewTag("CN")),
			Date:                      rg.Get(sam.NewTag("DT")),
			Platform:                  rg.Get(sam.NewTag("PL")),
			PlatformModel:             rg.Get(sam.NewTag("PM")),
			PlatformUnit:              rg.PlatformUnit(),
			FlowOrder:                 rg.Get(sam.NewTag("FO")),
			KeySequence:               rg.Get(sam.NewTag("KS")),
			PredictedMedianInsertSize: rg.Get(sam.NewTag("PI")),
			Programs:                  rg.Get(sam.NewTag("PG")),
		}
	}
	return out
}

// bucketTag resolves the tag used to route r to a bucket: the configured
// nucleus barcode tag if one was given (spec.md §3's supplemental
// single-nucleus support), otherwise the standard RG tag.
func bucketTag(r *sam.Record, nucleusBarcodeTag string) string {
	tag := "RG"
	if nucleusBarcodeTag != "" {
		tag = nucleusBarcodeTag
	}
	aux, ok := r.Tag([]byte(tag))
	if !ok {
		return ""
	}
	if s, ok := aux.Value().(string); ok {
		return s
	}
	return ""
}

func runPhase1(source *bamsrc.Source, header *sam.Header, registry *readgroup.Registry, problems *problemlog.Writer, cfg Config, log *logrus.Logger) error {
	start := time.Now()
	var n uint64

	for {
		rec, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		n++
		bucket := registry.Get(bucketTag(rec, cfg.NucleusBarcodeTag))

		var logger classify.ProblemLogger
		if problems != nil {
			logger = problemlog.BucketLogger{Writer: problems, Bucket: bucket.Name}
		}
		classify.Record(header, rec, bucket, logger)

		if cfg.Verbose && n%progressInterval == 0 {
			elapsed := time.Since(start)
			log.Infof("processed %d records in %s (%.0f records/sec)", n, elapsed.Round(time.Second), float64(n)/elapsed.Seconds())
		}
	}

	if cfg.Verbose {
		log.Infof("processed %d records in %s", n, time.Since(start).Round(time.Second))
	}
	return nil
}

func runPhase2(cfg Config, tssIndex *tss.Index, registry *readgroup.Registry, configuration *readgroup.Configuration, log *logrus.Logger) error {
	index, err := bamsrc.OpenIndex(cfg.AlignmentPath, "")
	if err != nil {
		return err
	}

	threads := cfg.Threads
	if threads < 1 {
		threads = cpuinfo.DetectOptimalWorkers()
	}

	return tssenrich.Run(tssenrich.Config{
		BAMPath:       cfg.AlignmentPath,
		Index:         index,
		TSSIndex:      tssIndex,
		Registry:      registry,
		Configuration: configuration,
		Extension:     cfg.TSSExtension,
		Threads:       threads,
		Log:           log,
	})
}
