package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
	"github.com/parkerlab/ataqv-go/pkg/collector"
	"github.com/parkerlab/ataqv-go/pkg/report"
)

var (
	peakFile               string
	tssFile                string
	tssExtension           int
	excludedRegionFiles    []string
	autosomalReferenceFile string
	mitochondrialName      string
	ignoreReadGroups       bool
	nucleusBarcodeTag      string
	name                   string
	description            string
	url                    string
	libraryDescription     string
	threads                int
	metricsFile            string
	tabularOutput          bool
	logProblematicReads    bool
	verbose                bool
)

var rootCmd = &cobra.Command{
	Use:   "ataqv <organism> <alignment-file>",
	Short: "Calculate QC metrics for ATAC-seq alignments",
	Long: `ataqv reads a sorted, duplicate-marked alignment file produced by an
ATAC-seq pipeline and emits a structured QC report: a categorical
breakdown of every alignment, fragment length and mapping quality
distributions, per-peak overlap counts, and a TSS enrichment score, split
by read group.`,
	Args: cobra.ExactArgs(2),
	RunE: run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&peakFile, "peak-file", "", `called accessibility peaks, in BED format, or "auto" for one file per read group named <RG-ID>.peaks`)
	flags.StringVar(&tssFile, "tss-file", "", "transcription start sites, in BED format, to compute TSS enrichment against")
	flags.IntVar(&tssExtension, "tss-extension", 1000, "bases of flank on either side of each TSS to score")
	flags.StringSliceVar(&excludedRegionFiles, "excluded-region-file", nil, "BED file of regions to exclude from peak and TSS metrics (may repeat)")
	flags.StringVar(&autosomalReferenceFile, "autosomal-reference-file", "", "newline-delimited list of autosomal reference names, overriding the built-in table for the given organism")
	flags.StringVar(&mitochondrialName, "mitochondrial-reference-name", "chrM", "name of the mitochondrial reference sequence")
	flags.BoolVar(&ignoreReadGroups, "ignore-read-groups", false, "accumulate every record into a single bucket regardless of its read group")
	flags.StringVar(&nucleusBarcodeTag, "nucleus-barcode-tag", "", "auxiliary tag to bucket records by instead of RG, for single-nucleus ATAC-seq")
	flags.StringVar(&name, "name", "", "name for this dataset (defaults to the alignment file's basename)")
	flags.StringVar(&description, "description", "", "free-text description of this dataset")
	flags.StringVar(&url, "url", "", "URL describing this dataset")
	flags.StringVar(&libraryDescription, "library-description", "", "free-text description of the sequencing library")
	flags.IntVar(&threads, "threads", 0, "worker count for the TSS enrichment phase (default: detected optimal worker count)")
	flags.StringVar(&metricsFile, "metrics-file", "", "output path for the metrics report (default <bam-basename>.ataqv.json, or <bam-basename>.ataqv.txt with --tabular-output)")
	flags.BoolVar(&tabularOutput, "tabular-output", false, "emit the metrics report as TSV instead of JSON")
	flags.BoolVar(&logProblematicReads, "log-problematic-reads", false, "write a gzip-compressed per-bucket log of unclassified reads")
	flags.BoolVar(&verbose, "verbose", false, "log progress and diagnostic detail")
}

func run(cmd *cobra.Command, args []string) error {
	organismName, alignmentPath := args[0], args[1]

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	result, err := collector.Run(collector.Config{
		Organism:               organismName,
		AlignmentPath:          alignmentPath,
		PeakFilePath:           peakFile,
		TSSFilePath:            tssFile,
		TSSExtension:           tssExtension,
		ExcludedRegionFiles:    excludedRegionFiles,
		AutosomalReferenceFile: autosomalReferenceFile,
		MitochondrialName:      mitochondrialName,
		IgnoreReadGroups:       ignoreReadGroups,
		NucleusBarcodeTag:      nucleusBarcodeTag,
		Name:                   name,
		Description:            description,
		URL:                    url,
		LibraryDescription:     libraryDescription,
		Threads:                threads,
		LogProblematicReads:    logProblematicReads,
		ProblemLogDir:          filepath.Dir(alignmentPath),
		Verbose:                verbose,
		Log:                    log,
	})
	if err != nil {
		return err
	}

	if err := report.WriteText(os.Stdout, result.Buckets); err != nil {
		return err
	}

	return writeReport(result, alignmentPath)
}

func writeReport(result *collector.Result, alignmentPath string) error {
	outPath := metricsFile
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(alignmentPath), filepath.Ext(alignmentPath))
		if tabularOutput {
			outPath = base + ".ataqv.txt"
		} else {
			outPath = base + ".ataqv.json"
		}
	}

	out, err := report.CreateOutput(outPath)
	if err != nil {
		return ataqverr.Wrap(ataqverr.FileOpen, outPath, err)
	}
	defer out.Close()

	if tabularOutput {
		return report.WriteTabular(out, result.Buckets)
	}

	doc := report.NewDocument(result.Metadata, result.Buckets)
	data, err := report.Render(doc)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
