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
	"testing"
)

// two variants sharing one candidate combination, every cluster at its
// expected copy number
func twoVariantInstance() ([][][]int, CoverageTable) {
	candidates := [][][]int{
		{{0, 0, 1, 1}},
		{{0, 0, 1, 1}},
	}
	cov := CoverageTable{
		{0: 0.5, 1: 0.5},
		{0: 0.5, 1: 0.5},
	}
	return candidates, cov
}

func TestThreadTwoVariants(t *testing.T) {
	th := newTestThreader(t)
	candidates, cov := twoVariantInstance()

	mat, err := th.Thread(candidates, cov)
	if err != nil {
		t.Fatal(err)
	}
	if len(mat) != 2 {
		t.Fatalf("%d columns, answer: 2", len(mat))
	}

	// column 0: every tuple at cost 0, no predecessor
	col := mat[0]
	if len(col.Pairs) != 6 {
		t.Fatalf("column 0 has %d entries, answer: 6", len(col.Pairs))
	}
	for i, pair := range col.Pairs {
		if pair.Cost != CoverageCost(col.Tuples[i], 0, cov) {
			t.Errorf("column 0 entry %d: cost %d, answer: coverage cost %d",
				i, pair.Cost, CoverageCost(col.Tuples[i], 0, cov))
		}
		if pair.Cost != 0 {
			t.Errorf("column 0 entry %d: cost %d, answer: 0", i, pair.Cost)
		}
		if pair.Pred != NoPred {
			t.Errorf("column 0 entry %d: predecessor %d, answer: -1", i, pair.Pred)
		}
	}

	// column 1: each tuple reaches its identical twin for free
	col = mat[1]
	if len(col.Pairs) != 6 {
		t.Fatalf("column 1 has %d entries, answer: 6", len(col.Pairs))
	}
	for i, pair := range col.Pairs {
		if pair.Cost != 0 {
			t.Errorf("column 1 entry %d: cost %d, answer: 0", i, pair.Cost)
		}
		if int(pair.Pred) != i {
			t.Errorf("column 1 entry %d: predecessor %d, answer: %d", i, pair.Pred, i)
		}
	}

	path, err := mat.Backtrace()
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 2 || path[0] != 0 || path[1] != 0 {
		t.Errorf("path %v, answer: [0 0]", path)
	}
	if cost := mat.PathCost(path); cost != 0 {
		t.Errorf("path cost %d, answer: 0", cost)
	}
}

func TestThreadDeterminism(t *testing.T) {
	candidates := [][][]int{
		{{0, 0, 1, 1}, {0, 1, 1, 2}},
		{{0, 0, 1, 1}},
		{{0, 1, 1, 2}, {1, 1, 2, 2}},
		{{1, 1, 2, 2}},
	}
	cov := CoverageTable{
		{0: 0.5, 1: 0.4, 2: 0.1},
		{0: 0.45, 1: 0.55},
		{0: 0.2, 1: 0.5, 2: 0.3},
		{1: 0.5, 2: 0.5},
	}

	run := func(numCPUs int) Matrix {
		opt := DefaultThreadingOptions
		opt.NumCPUs = numCPUs
		th, err := NewThreader(&opt, nil)
		if err != nil {
			t.Fatal(err)
		}
		mat, err := th.Thread(candidates, cov)
		if err != nil {
			t.Fatal(err)
		}
		return mat
	}

	a := run(1)
	b := run(1)
	c := run(4) // concurrent scoring must not change the result

	for _, other := range []Matrix{b, c} {
		if len(other) != len(a) {
			t.Fatalf("%d columns, answer: %d", len(other), len(a))
		}
		for v := range a {
			if len(other[v].Pairs) != len(a[v].Pairs) {
				t.Fatalf("column %d: %d entries, answer: %d", v, len(other[v].Pairs), len(a[v].Pairs))
			}
			for i := range a[v].Pairs {
				if other[v].Pairs[i] != a[v].Pairs[i] {
					t.Errorf("column %d entry %d: %v, answer: %v", v, i, other[v].Pairs[i], a[v].Pairs[i])
				}
				if !other[v].Tuples[i].Equal(a[v].Tuples[i]) {
					t.Errorf("column %d tuple %d: %v, answer: %v", v, i, other[v].Tuples[i], a[v].Tuples[i])
				}
			}
		}
	}
}

func TestThreadPredecessorValidity(t *testing.T) {
	candidates := [][][]int{
		{{0, 0, 1, 1}},
		{{0, 1, 1, 2}, {0, 0, 1, 1}},
		{{0, 1, 1, 2}},
		{{1, 1, 2, 2}, {0, 1, 1, 2}},
	}
	cov := CoverageTable{
		{0: 0.5, 1: 0.5},
		{0: 0.3, 1: 0.5, 2: 0.2},
		{0: 0.2, 1: 0.5, 2: 0.3},
		{0: 0.1, 1: 0.45, 2: 0.45},
	}

	th := newTestThreader(t)
	mat, err := th.Thread(candidates, cov)
	if err != nil {
		t.Fatal(err)
	}

	for v := 1; v < len(mat); v++ {
		for i, pair := range mat[v].Pairs {
			if pair.Pred < 0 || int(pair.Pred) >= len(mat[v-1].Pairs) {
				t.Errorf("column %d entry %d: predecessor %d out of [0, %d)",
					v, i, pair.Pred, len(mat[v-1].Pairs))
			}
		}
	}

	// backtrace visits one entry per column and ends at a -1 predecessor
	path, err := mat.Backtrace()
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != len(mat) {
		t.Fatalf("path length %d, answer: %d", len(path), len(mat))
	}
	for v, idx := range path {
		if idx < 0 || idx >= len(mat[v].Pairs) {
			t.Errorf("path index %d at variant %d out of range", idx, v)
		}
	}
	if mat[0].Pairs[path[0]].Pred != NoPred {
		t.Errorf("path does not terminate at a first-column entry")
	}
}

func TestThreadInfeasibleTuplesAreAvoided(t *testing.T) {
	// cluster 2 has no coverage at variant 1, so every tuple routing
	// through it there is recorded but never on the best path
	candidates := [][][]int{
		{{0, 0, 1, 1}},
		{{0, 0, 1, 1}, {0, 1, 2, 2}},
	}
	cov := CoverageTable{
		{0: 0.5, 1: 0.5},
		{0: 0.5, 1: 0.5},
	}

	th := newTestThreader(t)
	mat, err := th.Thread(candidates, cov)
	if err != nil {
		t.Fatal(err)
	}

	col := mat[1]
	var feasible, infeasible int
	for _, pair := range col.Pairs {
		if pair.Cost == Infeasible {
			infeasible++
		} else {
			feasible++
		}
	}
	if feasible == 0 || infeasible == 0 {
		t.Fatalf("column 1: %d feasible and %d infeasible entries, both expected", feasible, infeasible)
	}

	path, err := mat.Backtrace()
	if err != nil {
		t.Fatal(err)
	}
	if mat[1].Pairs[path[1]].Cost == Infeasible {
		t.Errorf("best path routes through an infeasible tuple")
	}
}

func TestThreadNoFeasiblePath(t *testing.T) {
	candidates := [][][]int{
		{{0, 0, 1, 1}},
	}
	cov := CoverageTable{
		{0: 0.5}, // cluster 1 uncovered: every tuple infeasible
	}

	th := newTestThreader(t)
	mat, err := th.Thread(candidates, cov)
	if err != nil {
		t.Fatal(err)
	}

	_, err = mat.Backtrace()
	if !errors.Is(err, ErrNoFeasiblePath) {
		t.Errorf("error %v, answer: ErrNoFeasiblePath", err)
	}
}

func TestThreadEmptyCandidates(t *testing.T) {
	candidates := [][][]int{
		{{0, 0, 1, 1}},
		{}, // malformed upstream input
	}
	cov := CoverageTable{
		{0: 0.5, 1: 0.5},
		{0: 0.5, 1: 0.5},
	}

	th := newTestThreader(t)
	_, err := th.Thread(candidates, cov)
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("error %v, answer: ErrNoCandidates", err)
	}
}

func TestThreadRangeAwareSwitches(t *testing.T) {
	// cluster 0 is replaced by cluster 2 after variant 0
	candidates := [][][]int{
		{{0, 0, 1, 1}},
		{{2, 2, 1, 1}},
	}
	cov := CoverageTable{
		{0: 0.5, 1: 0.5},
		{1: 0.5, 2: 0.5},
	}

	run := func(useRanges bool) uint32 {
		opt := DefaultThreadingOptions
		opt.UseRanges = useRanges

		var ranges *ClusterRanges
		if useRanges {
			ranges = NewClusterRanges()
			for cid, span := range map[int][2]int{0: {0, 0}, 1: {0, 1}, 2: {1, 1}} {
				if err := ranges.Set(cid, span[0], span[1]); err != nil {
					t.Fatal(err)
				}
			}
		}

		th, err := NewThreader(&opt, ranges)
		if err != nil {
			t.Fatal(err)
		}
		mat, err := th.Thread(candidates, cov)
		if err != nil {
			t.Fatal(err)
		}
		path, err := mat.Backtrace()
		if err != nil {
			t.Fatal(err)
		}
		return mat.PathCost(path)
	}

	// flat model: two slots change clusters
	if cost := run(false); cost != 64 {
		t.Errorf("flat path cost %d, answer: 64", cost)
	}
	// range-aware model: the replacement happens exactly at the boundary
	if cost := run(true); cost != 0 {
		t.Errorf("range-aware path cost %d, answer: 0", cost)
	}
}

func TestCheckThreadingOptions(t *testing.T) {
	opt := DefaultThreadingOptions
	if err := CheckThreadingOptions(&opt); err != nil {
		t.Error(err)
	}

	bad := opt
	bad.Ploidy = 2
	if err := CheckThreadingOptions(&bad); err == nil {
		t.Error("ploidy below the coverage model's slot count accepted")
	}

	bad = opt
	bad.NumCPUs = 0
	if err := CheckThreadingOptions(&bad); err == nil {
		t.Error("zero CPUs accepted")
	}
}
