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
	"testing"
)

func newTestThreader(t *testing.T) *Threader {
	t.Helper()
	opt := DefaultThreadingOptions
	th, err := NewThreader(&opt, nil)
	if err != nil {
		t.Fatal(err)
	}
	return th
}

func TestEnumerateTuples(t *testing.T) {
	th := newTestThreader(t)

	tuples := th.EnumerateTuples([][]int{{0, 0, 1, 1}})

	// 4!/(2!2!) distinct orderings, lexicographically sorted
	answers := []Tuple{
		{0, 0, 1, 1},
		{0, 1, 0, 1},
		{0, 1, 1, 0},
		{1, 0, 0, 1},
		{1, 0, 1, 0},
		{1, 1, 0, 0},
	}
	if len(tuples) != len(answers) {
		t.Fatalf("%d tuples, answer: %d", len(tuples), len(answers))
	}
	for i, answer := range answers {
		if !tuples[i].Equal(answer) {
			t.Errorf("#%d, tuple %v, answer: %v", i, tuples[i], answer)
		}
	}
}

func TestEnumerateTuplesGroupOrder(t *testing.T) {
	th := newTestThreader(t)

	// groups are concatenated in the order the combinations are supplied,
	// even when a later group sorts before an earlier one
	tuples := th.EnumerateTuples([][]int{{2, 3, 3, 2}, {0, 0, 0, 0}})

	if len(tuples) != 7 {
		t.Fatalf("%d tuples, answer: 7", len(tuples))
	}
	if !tuples[0].Equal(Tuple{2, 2, 3, 3}) {
		t.Errorf("first tuple %v, answer: [2 2 3 3]", tuples[0])
	}
	if !tuples[5].Equal(Tuple{3, 3, 2, 2}) {
		t.Errorf("last tuple of group 1 %v, answer: [3 3 2 2]", tuples[5])
	}
	if !tuples[6].Equal(Tuple{0, 0, 0, 0}) {
		t.Errorf("group 2 tuple %v, answer: [0 0 0 0]", tuples[6])
	}
}

func TestEnumerateTuplesAllDistinct(t *testing.T) {
	th := newTestThreader(t)

	tuples := th.EnumerateTuples([][]int{{4, 7, 1, 9}})
	if len(tuples) != 24 {
		t.Fatalf("%d tuples, answer: 24", len(tuples))
	}
	for i := 1; i < len(tuples); i++ {
		if !lessTuple(tuples[i-1], tuples[i]) {
			t.Errorf("tuples %d and %d out of order: %v, %v", i-1, i, tuples[i-1], tuples[i])
		}
	}
}

func TestEnumerateTuplesEmpty(t *testing.T) {
	th := newTestThreader(t)

	if tuples := th.EnumerateTuples(nil); len(tuples) != 0 {
		t.Errorf("%d tuples, answer: 0", len(tuples))
	}
}
