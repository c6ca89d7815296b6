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

package threading

import (
	"errors"
	"math"
)

// Tuple assigns one cluster id to each haplotype slot at one variant.
type Tuple []int

// Infeasible is the cost of a tuple whose coverage rules it out.
// Cost addition saturates here, so the sentinel is absorbing.
const Infeasible uint32 = math.MaxUint32

// NoPred marks entries of the first column, which have no predecessor.
const NoPred int32 = -1

// Pair is one scoring entry: the cumulative cost of the best path ending
// in this tuple, and the index of its predecessor in the previous column.
type Pair struct {
	Cost uint32
	Pred int32
}

// Column holds the scoring entries of one variant, index-aligned with the
// tuple sequence enumerated for it. The tuple sequence is carried along
// explicitly because predecessor indices are positional references into it.
// A column is never mutated after being published.
type Column struct {
	Tuples []Tuple
	Pairs  []Pair
}

// Matrix is the whole scoring table, one column per variant, in variant order.
type Matrix []*Column

// CoverageTable maps variant -> cluster id -> coverage fraction in [0, 1].
// A cluster absent from a variant's entry has coverage 0.
type CoverageTable []map[int]float64

// ConsensusTable maps variant -> cluster id -> consensus allele.
type ConsensusTable []map[int]int

// ErrNoCandidates means a variant with an empty candidate tuple set,
// which indicates malformed upstream cluster construction.
var ErrNoCandidates = errors.New("threading: no candidate tuples for variant")

// ErrBrokenTrace means a predecessor index pointing outside the previous column.
var ErrBrokenTrace = errors.New("threading: broken predecessor chain")

// ErrNoFeasiblePath means every entry of the final column is infeasible.
var ErrNoFeasiblePath = errors.New("threading: no feasible path")

// Equal reports whether two tuples assign the same clusters to the same slots.
func (t Tuple) Equal(t2 Tuple) bool {
	if len(t) != len(t2) {
		return false
	}
	for i, c := range t {
		if c != t2[i] {
			return false
		}
	}
	return true
}

func lessTuple(a, b Tuple) bool {
	for i, c := range a {
		if c != b[i] {
			return c < b[i]
		}
	}
	return false
}

// addCost adds two costs, saturating at Infeasible so that infeasible
// entries dominate every minimum search instead of wrapping around.
func addCost(a, b uint32) uint32 {
	s := uint64(a) + uint64(b)
	if s >= uint64(Infeasible) {
		return Infeasible
	}
	return uint32(s)
}
