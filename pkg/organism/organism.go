// Package organism holds the built-in per-organism autosomal reference
// tables (spec.md §6) and the loader for a user-supplied override file.
package organism

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
	"github.com/parkerlab/ataqv-go/pkg/natsort"
)

// Set is the autosomal reference set for one organism: a lookup of every
// accepted reference name, both the "chrN" and bare "N" spellings.
type Set map[string]bool

// Contains reports whether name is an autosomal reference in this set.
func (s Set) Contains(name string) bool {
	return s[name]
}

func buildNumericRange(n int) Set {
	s := make(Set, n*2)
	for i := 1; i <= n; i++ {
		num := strconv.Itoa(i)
		s[num] = true
		s["chr"+num] = true
	}
	return s
}

func buildRomanRange(n int) Set {
	s := make(Set, n*2)
	for i := 1; i <= n; i++ {
		roman := natsort.IntToRoman(i)
		s[roman] = true
		s["chr"+roman] = true
	}
	return s
}

func buildNamed(names []string) Set {
	s := make(Set, len(names)*2)
	for _, name := range names {
		s[name] = true
		s["chr"+name] = true
	}
	return s
}

// Builtin holds the default autosomal tables for the organisms spec.md §6
// names by name: human (1-22), mouse (1-19), rat (1-20), fly (2L,2R,3L,3R,4),
// worm (I-V), yeast (I-XVI).
var Builtin = map[string]Set{
	"human": buildNumericRange(22),
	"mouse": buildNumericRange(19),
	"rat":   buildNumericRange(20),
	"fly":   buildNamed([]string{"2L", "2R", "3L", "3R", "4"}),
	"worm":  buildRomanRange(5),
	"yeast": buildRomanRange(16),
}

// Lookup returns the built-in autosomal set for organism, or an error if
// the organism is unknown and no override file was supplied (spec.md §7
// Config error: "unknown organism without an override file").
func Lookup(name string) (Set, error) {
	set, ok := Builtin[name]
	if !ok {
		return nil, ataqverr.New(ataqverr.Config, fmt.Sprintf("unknown organism %q; use --autosomal-reference-file to supply one", name))
	}
	return set, nil
}

// LoadOverride parses a newline-delimited list of autosomal reference
// names, replacing the built-in table for the run.
func LoadOverride(r io.Reader) (Set, error) {
	set := make(Set)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		set[name] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, ataqverr.Wrap(ataqverr.FileOpen, "autosomal reference file", err)
	}
	return set, nil
}
