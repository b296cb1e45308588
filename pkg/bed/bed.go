// Package bed parses the plain-text BED format shared by peak, TSS, and
// exclusion-region inputs: tab-separated "reference start end name [score
// strand ...]" lines, 0-based half-open coordinates, blank lines ignored.
package bed

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
	"github.com/parkerlab/ataqv-go/pkg/genome"
)

// Record is one parsed BED line.
type Record struct {
	Interval genome.Interval
}

// Parse reads every non-blank line from r as a BED record, calling visit
// for each. A malformed line (too few fields, non-numeric start/end, or
// start > end) yields a FileFormat error identifying the line number and
// aborts the parse, per the loader-errors-are-fatal policy.
func Parse(r io.Reader, sourceName string, visit func(Record) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return ataqverr.Wrap(ataqverr.FileFormat,
				fmt.Sprintf("%s line %d", sourceName, lineNo), err)
		}
		if err := visit(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return ataqverr.Wrap(ataqverr.FileOpen, sourceName, err)
	}
	return nil
}

func parseLine(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return Record{}, fmt.Errorf("expected at least 3 tab-separated fields, got %d", len(fields))
	}

	reference := fields[0]
	start, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid start coordinate %q: %w", fields[1], err)
	}
	end, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid end coordinate %q: %w", fields[2], err)
	}
	if start > end {
		return Record{}, fmt.Errorf("start %d is greater than end %d", start, end)
	}

	iv := genome.Interval{Reference: reference, Start: start, End: end}

	if len(fields) >= 4 {
		iv.Name = fields[3]
	}
	if len(fields) >= 5 && fields[4] != "" {
		score, err := strconv.ParseFloat(fields[4], 64)
		if err == nil {
			iv.Score = score
			iv.HasScore = true
		}
	}
	if len(fields) >= 6 && len(fields[5]) == 1 {
		switch fields[5][0] {
		case '+':
			iv.Strand = genome.StrandForward
		case '-':
			iv.Strand = genome.StrandReverse
		default:
			iv.Strand = genome.StrandNone
		}
	}

	return Record{Interval: iv}, nil
}

// Write serializes intervals back to BED text, one per line. Round-tripping
// Write -> Parse preserves Reference, Start, End, and Name.
func Write(w io.Writer, intervals []genome.Interval) error {
	bw := bufio.NewWriter(w)
	for _, iv := range intervals {
		strand := "."
		switch iv.Strand {
		case genome.StrandForward:
			strand = "+"
		case genome.StrandReverse:
			strand = "-"
		}
		score := "0"
		if iv.HasScore {
			score = strconv.FormatFloat(iv.Score, 'g', -1, 64)
		}
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			iv.Reference, iv.Start, iv.End, iv.Name, score, strand); err != nil {
			return err
		}
	}
	return bw.Flush()
}
