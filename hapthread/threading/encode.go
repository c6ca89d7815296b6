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

// TupleGenotype returns the genotype dosage a tuple predicts at variant v:
// the sum of the consensus alleles of the clusters in its slots.
func TupleGenotype(consensus ConsensusTable, v int, tuple Tuple) int {
	m := consensus[v]
	var g int
	for _, cid := range tuple {
		g += m[cid]
	}
	return g
}

// TupleGenotypeSoft returns the absolute difference between the dosage a
// tuple predicts at variant v and the target genotype.
func TupleGenotypeSoft(consensus ConsensusTable, v int, tuple Tuple, target int) int {
	d := TupleGenotype(consensus, v, tuple) - target
	if d < 0 {
		d = -d
	}
	return d
}

// TupleIndex maps a tuple to a flat integer index with mixed-radix
// positional encoding, base numClusters, most significant slot first.
// Callers needing a flat array index use this instead of the positional
// indices of the scoring columns.
func TupleIndex(tuple Tuple, numClusters int) uint64 {
	var idx uint64
	for _, cid := range tuple {
		idx = idx*uint64(numClusters) + uint64(cid)
	}
	return idx
}
