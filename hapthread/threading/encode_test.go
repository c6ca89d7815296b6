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

func TestTupleGenotype(t *testing.T) {
	consensus := ConsensusTable{
		{0: 1, 1: 0},
		{0: 1, 1: 1},
	}

	if g := TupleGenotype(consensus, 0, Tuple{0, 1, 0, 1}); g != 2 {
		t.Errorf("dosage %d, answer: 2", g)
	}
	if g := TupleGenotype(consensus, 1, Tuple{0, 1, 0, 1}); g != 4 {
		t.Errorf("dosage %d, answer: 4", g)
	}
	// absent clusters contribute allele 0
	if g := TupleGenotype(consensus, 0, Tuple{2, 2, 2, 2}); g != 0 {
		t.Errorf("dosage %d, answer: 0", g)
	}
}

func TestTupleGenotypeSoft(t *testing.T) {
	consensus := ConsensusTable{
		{0: 1, 1: 0},
	}

	if d := TupleGenotypeSoft(consensus, 0, Tuple{0, 1, 0, 1}, 3); d != 1 {
		t.Errorf("difference %d, answer: 1", d)
	}
	if d := TupleGenotypeSoft(consensus, 0, Tuple{0, 1, 0, 1}, 2); d != 0 {
		t.Errorf("difference %d, answer: 0", d)
	}
	if d := TupleGenotypeSoft(consensus, 0, Tuple{1, 1, 1, 1}, 3); d != 3 {
		t.Errorf("difference %d, answer: 3", d)
	}
}

func TestTupleIndex(t *testing.T) {
	tests := []struct {
		tuple       Tuple
		numClusters int
		idx         uint64
	}{
		{Tuple{0, 0, 0, 0}, 4, 0},
		{Tuple{1, 2, 3}, 4, 1*16 + 2*4 + 3},
		{Tuple{3, 3, 3, 3}, 4, 255},
		{Tuple{0, 1}, 10, 1},
		{Tuple{1, 0}, 10, 10},
	}
	for i, test := range tests {
		if idx := TupleIndex(test.tuple, test.numClusters); idx != test.idx {
			t.Errorf("#%d, index %d, answer: %d", i, idx, test.idx)
		}
	}
}
