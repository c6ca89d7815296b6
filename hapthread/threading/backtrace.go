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
	"fmt"

	"github.com/erikvdp/HapThread/hapthread/util"
)

// Backtrace recovers the minimum-cost path through the matrix: the lowest-
// cost entry of the final column (lowest index on ties), followed backwards
// along predecessor links. It returns one tuple-list index per variant, in
// variant order.
func (m Matrix) Backtrace() ([]int, error) {
	if len(m) == 0 {
		return nil, nil
	}

	last := m[len(m)-1]
	best := 0
	for j := 1; j < len(last.Pairs); j++ {
		if last.Pairs[j].Cost < last.Pairs[best].Cost {
			best = j
		}
	}
	if last.Pairs[best].Cost == Infeasible {
		return nil, ErrNoFeasiblePath
	}

	path := make([]int, 0, len(m))
	idx := best
	for v := len(m) - 1; ; v-- {
		path = append(path, idx)

		pred := m[v].Pairs[idx].Pred
		if v == 0 {
			if pred != NoPred {
				return nil, fmt.Errorf("%w: first column entry %d has predecessor %d", ErrBrokenTrace, idx, pred)
			}
			break
		}
		if pred < 0 || int(pred) >= len(m[v-1].Pairs) {
			return nil, fmt.Errorf("%w: variant %d entry %d points at %d", ErrBrokenTrace, v, idx, pred)
		}
		idx = int(pred)
	}
	util.ReverseInts(path)

	return path, nil
}

// PathTuples resolves a backtraced path into the tuples it visits.
func (m Matrix) PathTuples(path []int) []Tuple {
	tuples := make([]Tuple, len(path))
	for v, idx := range path {
		tuples[v] = m[v].Tuples[idx]
	}
	return tuples
}

// PathCost returns the cumulative cost of the entry a path ends in.
func (m Matrix) PathCost(path []int) uint32 {
	if len(m) == 0 || len(path) == 0 {
		return 0
	}
	return m[len(m)-1].Pairs[path[len(path)-1]].Cost
}
