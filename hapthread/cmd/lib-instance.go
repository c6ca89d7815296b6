// Copyright © 2024-2026 erikvdp
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/erikvdp/HapThread/hapthread/readselect"
	"github.com/erikvdp/HapThread/hapthread/threading"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
)

// Instance file names inside an instance directory.
const (
	FileCandidates = "candidates.tsv"
	FileCoverage   = "coverage.tsv"
	FileRanges     = "ranges.tsv"
	FileConsensus  = "consensus.tsv"
	FileGenotypes  = "genotypes.tsv"
)

// Instance is a threading problem loaded from an instance directory.
// Ranges, Consensus and Genotypes are optional and may be nil.
type Instance struct {
	Dir     string
	NumVars int

	// Candidates[v] lists the cluster combinations allowed at variant v.
	Candidates [][][]int

	Coverage threading.CoverageTable

	Ranges *threading.ClusterRanges

	Consensus threading.ConsensusTable

	// Genotypes[v] is the expected allele dosage at variant v, -1 if unknown.
	Genotypes []int
}

// ReadInstance loads the TSV files of an instance directory.
// candidates.tsv and coverage.tsv are required, the other files are optional.
func ReadInstance(dir string, ploidy int) (*Instance, error) {
	existed, err := pathutil.DirExists(dir)
	if err != nil || !existed {
		return nil, errors.Errorf("instance directory not found: %s", dir)
	}

	ins := &Instance{Dir: dir}

	if err = ins.readCandidates(filepath.Join(dir, FileCandidates), ploidy); err != nil {
		return nil, err
	}
	if err = ins.readCoverage(filepath.Join(dir, FileCoverage)); err != nil {
		return nil, err
	}

	file := filepath.Join(dir, FileRanges)
	if ok, _ := pathutil.Exists(file); ok {
		if err = ins.readRanges(file); err != nil {
			return nil, err
		}
	}
	file = filepath.Join(dir, FileConsensus)
	if ok, _ := pathutil.Exists(file); ok {
		if err = ins.readConsensus(file); err != nil {
			return nil, err
		}
	}
	file = filepath.Join(dir, FileGenotypes)
	if ok, _ := pathutil.Exists(file); ok {
		if err = ins.readGenotypes(file); err != nil {
			return nil, err
		}
	}

	return ins, nil
}

// readTSV streams non-empty, non-comment lines of a (possibly gzipped) TSV file.
func readTSV(file string, fn func(fields []string) error) error {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return errors.Wrapf(err, "fail to read file: %s", file)
	}
	defer fh.Close()

	var line string
	for {
		line, err = fh.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			if line != "" && line[0] != '#' {
				if e := fn(strings.Split(line, "\t")); e != nil {
					return errors.Wrapf(e, "file: %s", file)
				}
			}
		}
		if err != nil {
			break
		}
	}
	return nil
}

func (ins *Instance) readCandidates(file string, ploidy int) error {
	err := readTSV(file, func(fields []string) error {
		if len(fields) < 2 {
			return errors.Errorf("invalid candidates line: %s", strings.Join(fields, "\t"))
		}
		v, err := strconv.Atoi(fields[0])
		if err != nil || v < 0 {
			return errors.Errorf("invalid variant index: %s", fields[0])
		}

		ids := strings.Split(fields[1], ",")
		if len(ids) != ploidy {
			return errors.Errorf("variant %d: combination size %d does not match ploidy %d",
				v, len(ids), ploidy)
		}
		comb := make([]int, len(ids))
		for i, id := range ids {
			comb[i], err = strconv.Atoi(id)
			if err != nil || comb[i] < 0 {
				return errors.Errorf("variant %d: invalid cluster id: %s", v, id)
			}
		}

		for v >= len(ins.Candidates) {
			ins.Candidates = append(ins.Candidates, nil)
		}
		ins.Candidates[v] = append(ins.Candidates[v], comb)
		return nil
	})
	if err != nil {
		return err
	}

	ins.NumVars = len(ins.Candidates)
	if ins.NumVars == 0 {
		return errors.Errorf("no candidates in file: %s", file)
	}
	for v, combs := range ins.Candidates {
		if len(combs) == 0 {
			return errors.Errorf("variant %d has no candidate combinations", v)
		}
	}
	return nil
}

func (ins *Instance) readCoverage(file string) error {
	ins.Coverage = make(threading.CoverageTable, ins.NumVars)
	for v := range ins.Coverage {
		ins.Coverage[v] = make(map[int]float64, 8)
	}

	return readTSV(file, func(fields []string) error {
		if len(fields) < 3 {
			return errors.Errorf("invalid coverage line: %s", strings.Join(fields, "\t"))
		}
		v, err := strconv.Atoi(fields[0])
		if err != nil || v < 0 || v >= ins.NumVars {
			return errors.Errorf("coverage: variant index out of range: %s", fields[0])
		}
		cid, err := strconv.Atoi(fields[1])
		if err != nil || cid < 0 {
			return errors.Errorf("coverage: invalid cluster id: %s", fields[1])
		}
		frac, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || frac < 0 || frac > 1 {
			return errors.Errorf("coverage: invalid fraction: %s", fields[2])
		}
		ins.Coverage[v][cid] = frac
		return nil
	})
}

func (ins *Instance) readRanges(file string) error {
	ins.Ranges = threading.NewClusterRanges()

	return readTSV(file, func(fields []string) error {
		if len(fields) < 3 {
			return errors.Errorf("invalid ranges line: %s", strings.Join(fields, "\t"))
		}
		cid, err := strconv.Atoi(fields[0])
		if err != nil || cid < 0 {
			return errors.Errorf("ranges: invalid cluster id: %s", fields[0])
		}
		first, err := strconv.Atoi(fields[1])
		if err != nil || first < 0 {
			return errors.Errorf("ranges: invalid first variant: %s", fields[1])
		}
		last, err := strconv.Atoi(fields[2])
		if err != nil || last < first {
			return errors.Errorf("ranges: invalid last variant: %s", fields[2])
		}
		return ins.Ranges.Set(cid, first, last)
	})
}

func (ins *Instance) readConsensus(file string) error {
	ins.Consensus = make(threading.ConsensusTable, ins.NumVars)
	for v := range ins.Consensus {
		ins.Consensus[v] = make(map[int]int, 8)
	}

	return readTSV(file, func(fields []string) error {
		if len(fields) < 3 {
			return errors.Errorf("invalid consensus line: %s", strings.Join(fields, "\t"))
		}
		v, err := strconv.Atoi(fields[0])
		if err != nil || v < 0 || v >= ins.NumVars {
			return errors.Errorf("consensus: variant index out of range: %s", fields[0])
		}
		cid, err := strconv.Atoi(fields[1])
		if err != nil || cid < 0 {
			return errors.Errorf("consensus: invalid cluster id: %s", fields[1])
		}
		allele, err := strconv.Atoi(fields[2])
		if err != nil || allele < 0 {
			return errors.Errorf("consensus: invalid allele: %s", fields[2])
		}
		ins.Consensus[v][cid] = allele
		return nil
	})
}

func (ins *Instance) readGenotypes(file string) error {
	ins.Genotypes = make([]int, ins.NumVars)
	for v := range ins.Genotypes {
		ins.Genotypes[v] = -1
	}

	return readTSV(file, func(fields []string) error {
		if len(fields) < 2 {
			return errors.Errorf("invalid genotypes line: %s", strings.Join(fields, "\t"))
		}
		v, err := strconv.Atoi(fields[0])
		if err != nil || v < 0 || v >= ins.NumVars {
			return errors.Errorf("genotypes: variant index out of range: %s", fields[0])
		}
		gt, err := strconv.Atoi(fields[1])
		if err != nil || gt < 0 {
			return errors.Errorf("genotypes: invalid genotype: %s", fields[1])
		}
		ins.Genotypes[v] = gt
		return nil
	})
}

// CheckRanges counts candidate cluster ids used at variants outside the
// cluster's declared active range. Returns 0 when no ranges are loaded.
func (ins *Instance) CheckRanges() int {
	if ins.Ranges == nil {
		return 0
	}
	var n int
	for v, combs := range ins.Candidates {
		active := make(map[int]interface{}, 8)
		for _, cid := range ins.Ranges.ClustersAt(v) {
			active[cid] = struct{}{}
		}
		for _, comb := range combs {
			for _, cid := range comb {
				if _, ok := active[cid]; !ok {
					if _, _, declared := ins.Ranges.Span(cid); declared {
						n++
					}
				}
			}
		}
	}
	return n
}

// ---------------------------------------------------------------

// CostConfig holds cost-model settings loadable from a TOML file,
// e.g. ~/.hapthread.toml.
type CostConfig struct {
	Ploidy        int    `toml:"ploidy"`
	SwitchPenalty uint32 `toml:"switch-penalty"`
	UseRanges     bool   `toml:"use-ranges"`
}

// ReadCostConfig parses a TOML cost-model config file.
func ReadCostConfig(file string) (*CostConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to read config file: %s", file)
	}
	cfg := &CostConfig{}
	if err = toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "fail to parse config file: %s", file)
	}
	return cfg, nil
}

// ---------------------------------------------------------------

// ReadReads loads a read set from a TSV file with one read variant per line:
// name, source id, variant index, allele, quality.
func ReadReads(file string) (readselect.ReadSet, error) {
	rs := make(readselect.ReadSet, 0, 1024)
	index := make(map[string]int, 1024)

	err := readTSV(file, func(fields []string) error {
		if len(fields) < 5 {
			return errors.Errorf("invalid reads line: %s", strings.Join(fields, "\t"))
		}
		name := fields[0]
		source, err := strconv.Atoi(fields[1])
		if err != nil || source < 0 {
			return errors.Errorf("read %s: invalid source id: %s", name, fields[1])
		}
		pos, err := strconv.Atoi(fields[2])
		if err != nil || pos < 0 {
			return errors.Errorf("read %s: invalid variant index: %s", name, fields[2])
		}
		allele, err := strconv.Atoi(fields[3])
		if err != nil || allele < 0 {
			return errors.Errorf("read %s: invalid allele: %s", name, fields[3])
		}
		quality, err := strconv.Atoi(fields[4])
		if err != nil || quality < 0 {
			return errors.Errorf("read %s: invalid quality: %s", name, fields[4])
		}

		i, ok := index[name]
		if !ok {
			i = len(rs)
			index[name] = i
			rs = append(rs, &readselect.Read{Name: name, Source: source})
		}
		rs[i].Variants = append(rs[i].Variants, readselect.Variant{
			Position: pos, Allele: allele, Quality: quality,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range rs {
		vs := rs[i].Variants
		sort.Slice(vs, func(a, b int) bool { return vs[a].Position < vs[b].Position })
	}
	return rs, nil
}
