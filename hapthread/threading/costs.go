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

// coverageSlots is the number of tuple slots the coverage model scores.
// The historical cost model always scores four slots, independent of the
// configured ploidy, and existing results depend on that. Ploidy values
// below four are rejected in CheckThreadingOptions.
const coverageSlots = 4

// expectedCopyNumber quantizes a coverage fraction into an expected copy
// number, with bucket boundaries at 0.125, 0.375, 0.625 and 0.875.
func expectedCopyNumber(c float64) int {
	switch {
	case c < 0.125:
		return 0
	case c < 0.375:
		return 1
	case c < 0.625:
		return 2
	case c < 0.875:
		return 3
	default:
		return 4
	}
}

// CoverageCost scores a tuple against the observed coverage at variant v:
// one penalty unit per scored slot whose cluster occurs in the tuple a
// different number of times than its coverage fraction predicts.
// A slot whose cluster has zero coverage at v makes the whole tuple
// infeasible, without accumulating any partial cost.
func CoverageCost(tuple Tuple, v int, cov CoverageTable) uint32 {
	m := cov[v]

	var cost uint32
	var c float64
	var cid, expected, actual int
	for i := 0; i < coverageSlots; i++ {
		cid = tuple[i]
		c = m[cid]
		if c == 0 {
			return Infeasible
		}

		expected = expectedCopyNumber(c)
		actual = 0
		for _, x := range tuple {
			if x == cid {
				actual++
			}
		}
		if expected != actual {
			cost++
		}
	}
	return cost
}

// SwitchCost scores the transition between the tuples of variants v and v+1:
// a flat penalty per slot whose cluster changes across the boundary.
// With UseRanges enabled, a change is free when the outgoing cluster's
// range ends at v or the incoming cluster's range begins at v+1.
func (t *Threader) SwitchCost(prev, cur Tuple, v int) uint32 {
	useRanges := t.options.UseRanges && t.ranges != nil

	var cost uint32
	for i := 0; i < t.options.Ploidy; i++ {
		if prev[i] == cur[i] {
			continue
		}
		if useRanges && t.ranges.FreeSwitch(prev[i], cur[i], v) {
			continue
		}
		cost += t.options.SwitchPenalty
	}
	return cost
}
