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
	"encoding/binary"
	"sort"

	"github.com/zeebo/wyhash"
	"gonum.org/v1/gonum/stat/combin"
)

var be = binary.BigEndian

const tupleHashSeed uint64 = 42

// EnumerateTuples expands a variant's candidate cluster combinations into
// the ordered tuple sequence the DP scores. Each combination contributes
// the set of its distinct orderings (repeated cluster ids yield fewer than
// ploidy! of them), sorted lexicographically; the per-combination groups
// are concatenated in input order. The resulting order is part of the
// contract: predecessor indices in scoring columns are positional
// references into this sequence.
func (t *Threader) EnumerateTuples(combinations [][]int) []Tuple {
	p := t.options.Ploidy
	tuples := make([]Tuple, 0, len(combinations)*len(t.perms))

	seen := t.seen
	group := t.group[:0]
	var h uint64
	var ok bool
	for _, comb := range combinations {
		group = group[:0]
		for k := range seen {
			delete(seen, k)
		}

		for _, perm := range t.perms {
			tuple := make(Tuple, p)
			for i, j := range perm {
				tuple[i] = comb[j]
			}

			h = t.hashTuple(tuple)
			if _, ok = seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			group = append(group, tuple)
		}

		sort.Slice(group, func(i, j int) bool { return lessTuple(group[i], group[j]) })
		tuples = append(tuples, group...)
	}
	t.group = group[:0]

	return tuples
}

// permutations returns all orderings of p slot indices.
func permutations(p int) [][]int {
	return combin.Permutations(p, p)
}

func (t *Threader) hashTuple(tuple Tuple) uint64 {
	buf := t.hashBuf[:0]
	var b [8]byte
	for _, cid := range tuple {
		be.PutUint64(b[:], uint64(cid))
		buf = append(buf, b[:]...)
	}
	t.hashBuf = buf
	return wyhash.Hash(buf, tupleHashSeed)
}
