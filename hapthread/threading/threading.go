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

// Package threading assigns read clusters to haplotype slots along a
// chromosome. At every variant it scores all candidate cluster tuples
// against the observed coverage, links them to the previous variant's
// tuples with a per-slot switch penalty, and records (cost, predecessor)
// pairs, one column per variant. The minimum-cost path through the
// resulting matrix is recovered separately by Backtrace.
package threading

import (
	"fmt"
	"sync"
)

// ThreadingOptions contains all options in cluster threading.
type ThreadingOptions struct {
	Ploidy        int    // number of haplotype slots per tuple
	SwitchPenalty uint32 // cost per slot changing clusters between variants
	UseRanges     bool   // free switches at cluster range boundaries
	NumCPUs       int    // workers scoring tuples within one column
}

// DefaultThreadingOptions is the default value of ThreadingOptions.
var DefaultThreadingOptions = ThreadingOptions{
	Ploidy:        4,
	SwitchPenalty: 32,
	UseRanges:     false,
	NumCPUs:       1,
}

// CheckThreadingOptions checks the options.
func CheckThreadingOptions(opt *ThreadingOptions) error {
	if opt.Ploidy < coverageSlots {
		return fmt.Errorf("invalid ploidy: %d, the coverage model scores %d slots", opt.Ploidy, coverageSlots)
	}
	if opt.SwitchPenalty == 0 {
		return fmt.Errorf("invalid switch penalty: 0")
	}
	if opt.NumCPUs < 1 {
		return fmt.Errorf("invalid number of CPUs: %d", opt.NumCPUs)
	}
	return nil
}

// Threader is an object for threading read clusters through the variants
// of one chromosome. It is not safe for concurrent use; create one
// Threader per goroutine.
type Threader struct {
	options *ThreadingOptions
	ranges  *ClusterRanges

	perms   [][]int // all orderings of Ploidy slot indices
	seen    map[uint64]struct{}
	group   []Tuple
	hashBuf []byte
}

// NewThreader creates a new Threader. The range table may be nil unless
// UseRanges is set.
func NewThreader(options *ThreadingOptions, ranges *ClusterRanges) (*Threader, error) {
	if err := CheckThreadingOptions(options); err != nil {
		return nil, err
	}
	if options.UseRanges && ranges == nil {
		return nil, fmt.Errorf("UseRanges set but no cluster range table given")
	}

	t := &Threader{
		options: options,
		ranges:  ranges,

		perms:   permutations(options.Ploidy),
		seen:    make(map[uint64]struct{}, 32),
		group:   make([]Tuple, 0, 32),
		hashBuf: make([]byte, 0, 64),
	}
	return t, nil
}

// Thread builds the scoring matrix, column by column. candidates holds,
// per variant, the candidate cluster combinations (each of length Ploidy);
// cov is the per-variant coverage table. Both are read-only.
//
// Column v depends on column v-1 through the minimum search, so columns
// are built strictly left to right. Within one column the current tuples
// are scored independently against the completed previous column, by
// NumCPUs workers when configured; results land in enumeration order
// either way, so the matrix is bit-identical for any worker count.
func (t *Threader) Thread(candidates [][][]int, cov CoverageTable) (Matrix, error) {
	nVars := len(candidates)
	if len(cov) != nVars {
		return nil, fmt.Errorf("threading: %d variants but coverage for %d", nVars, len(cov))
	}

	mat := make(Matrix, 0, nVars)

	var prev *Column
	for v := 0; v < nVars; v++ {
		tuples := t.EnumerateTuples(candidates[v])
		if len(tuples) == 0 {
			return nil, fmt.Errorf("%w: variant %d", ErrNoCandidates, v)
		}

		col := &Column{
			Tuples: tuples,
			Pairs:  make([]Pair, len(tuples)),
		}

		if v == 0 {
			for i, tuple := range tuples {
				col.Pairs[i] = Pair{Cost: CoverageCost(tuple, 0, cov), Pred: NoPred}
			}
		} else {
			t.scoreColumn(col, prev, v, cov)
		}

		mat = append(mat, col)
		prev = col
	}

	return mat, nil
}

// scoreColumn fills column v from the published previous column.
func (t *Threader) scoreColumn(col, prev *Column, v int, cov CoverageTable) {
	score := func(i int) {
		tuple := col.Tuples[i]

		// scan the whole previous column; strict less-than keeps the
		// lowest index on ties
		m := addCost(prev.Pairs[0].Cost, t.SwitchCost(prev.Tuples[0], tuple, v-1))
		mj := 0
		var s uint32
		for j := 1; j < len(prev.Tuples); j++ {
			s = addCost(prev.Pairs[j].Cost, t.SwitchCost(prev.Tuples[j], tuple, v-1))
			if s < m {
				m = s
				mj = j
			}
		}

		col.Pairs[i] = Pair{
			Cost: addCost(CoverageCost(tuple, v, cov), m),
			Pred: int32(mj),
		}
	}

	if t.options.NumCPUs <= 1 || len(col.Tuples) < 2 {
		for i := range col.Tuples {
			score(i)
		}
		return
	}

	var wg sync.WaitGroup
	tokens := make(chan int, t.options.NumCPUs)
	for i := range col.Tuples {
		wg.Add(1)
		tokens <- 1
		go func(i int) {
			score(i)
			wg.Done()
			<-tokens
		}(i)
	}
	wg.Wait()
}
