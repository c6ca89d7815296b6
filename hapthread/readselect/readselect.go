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

// Package readselect picks a subset of sequencing reads that covers as
// many variants as possible without exceeding a per-variant coverage
// bound. Reads are taken greedily in score order, slice by slice, with an
// optional bridging pass that spends leftover coverage budget on reads
// connecting otherwise separate phased blocks.
package readselect

import (
	"fmt"

	"github.com/erikvdp/HapThread/hapthread/util"
)

// Variant is one variant observation on a read.
type Variant struct {
	Position int // genomic position
	Allele   int
	Quality  int
}

// Read is a sequencing read reduced to its variant observations,
// sorted by position.
type Read struct {
	Name     string
	Source   int // input file the read came from
	Variants []Variant
}

// ReadSet is a list of reads; selection results are indices into it.
type ReadSet []*Read

// Stats summarizes a selection run.
type Stats struct {
	Skipped  int // reads covering fewer than two variants, never considered
	Bridging int // reads selected for bridging rather than coverage
}

// positions returns the sorted distinct variant positions of the read set,
// a position -> dense index mapping, and per-index lists of the reads
// covering it.
func (rs ReadSet) positions() ([]int, map[int]int, [][]int) {
	positions := make([]int, 0, 1024)
	for _, read := range rs {
		for _, v := range read.Variants {
			positions = append(positions, v.Position)
		}
	}
	util.UniqInts(&positions)

	indices := make(map[int]int, len(positions))
	for i, pos := range positions {
		indices[pos] = i
	}

	byPosition := make([][]int, len(positions))
	for i, read := range rs {
		for _, v := range read.Variants {
			idx := indices[v.Position]
			byPosition[idx] = append(byPosition[idx], i)
		}
	}
	return positions, indices, byPosition
}

// score computes the selection score of one read: variants it would newly
// cover minus the holes it spans, the same quantity before any selection,
// and its minimum base quality.
func score(read *Read, indices map[int]int, covered map[int]struct{}) Score {
	minQuality := 1000
	var newCount, goodCount int

	first, last := -1, -1
	for _, v := range read.Variants {
		if v.Quality < minQuality {
			minQuality = v.Quality
		}
		idx, ok := indices[v.Position]
		if !ok {
			continue
		}
		if first == -1 {
			first = idx
		}
		last = idx
		goodCount++
		if _, ok = covered[v.Position]; !ok {
			newCount++
		}
	}

	// holes: spanned variants the read does not itself cover
	holes := 0
	if goodCount > 0 {
		holes = last - first + 1 - goodCount
	}
	return Score{newCount - holes, goodCount - holes, minQuality}
}

func buildQueue(rs ReadSet, undecided map[int]struct{}, indices map[int]int, covered map[int]struct{}) *PriorityQueue {
	pq := NewPriorityQueue()
	for i := range undecided {
		pq.Push(score(rs[i], indices, covered), i)
	}
	return pq
}

// span returns the dense index range [begin, end) a read covers.
func span(read *Read, indices map[int]int) (int, int) {
	begin := indices[read.Variants[0].Position]
	end := indices[read.Variants[len(read.Variants)-1].Position] + 1
	return begin, end
}

// selectSlice extracts one slice of reads: every variant gets covered at
// least once if coverage and reads allow it. Returns the reads taken and
// the reads that would violate the coverage bound.
func selectSlice(pq *PriorityQueue, rs ReadSet, cov *CovMonitor, maxCov int,
	indices map[int]int, byPosition [][]int, covered map[int]struct{}) (map[int]struct{}, map[int]struct{}) {

	inSlice := make(map[int]struct{})
	violating := make(map[int]struct{})

	for !pq.Empty() {
		_, item := pq.Pop()
		read := rs[item]

		newPositions := make([]int, 0, len(read.Variants))
		for _, v := range read.Variants {
			if _, ok := covered[v.Position]; !ok {
				newPositions = append(newPositions, v.Position)
			}
		}

		begin, end := span(read, indices)
		if cov.MaxInRange(begin, end) >= maxCov {
			violating[item] = struct{}{}
			continue
		}
		if len(newPositions) == 0 {
			continue
		}

		cov.AddRead(begin, end)
		inSlice[item] = struct{}{}

		// newly covered positions lower the scores of every other
		// undecided read touching them
		affected := make(map[int]struct{})
		for _, pos := range newPositions {
			covered[pos] = struct{}{}
			for _, r := range byPosition[indices[pos]] {
				affected[r] = struct{}{}
			}
		}
		for r := range affected {
			if _, ok := inSlice[r]; ok {
				continue
			}
			old, ok := pq.ScoreOf(r)
			if !ok {
				continue
			}
			drop := 0
			for _, v := range rs[r].Variants {
				for _, pos := range newPositions {
					if v.Position == pos {
						drop++
						break
					}
				}
			}
			pq.ChangeScore(r, Score{old[0] - drop, old[1], old[2]})
		}
	}
	return inSlice, violating
}

// Select returns the indices of the reads to keep, honoring the per-variant
// coverage bound, together with the position -> component mapping of the
// resulting phased blocks.
func Select(rs ReadSet, maxCov int, bridging bool) ([]int, map[int]int, Stats, error) {
	if maxCov < 1 {
		return nil, nil, Stats{}, fmt.Errorf("readselect: invalid maximum coverage: %d", maxCov)
	}

	positions, indices, byPosition := rs.positions()
	cov := NewCovMonitor(len(positions))

	var stats Stats

	selected := make(map[int]struct{})
	undecided := make(map[int]struct{}, len(rs))
	for i, read := range rs {
		if len(read.Variants) >= 2 {
			undecided[i] = struct{}{}
		} else {
			stats.Skipped++
		}
	}

	covered := make(map[int]struct{}, len(positions))
	finder := NewComponentFinder(positions)

	for len(undecided) > 0 {
		pq := buildQueue(rs, undecided, indices, covered)
		inSlice, violating := selectSlice(pq, rs, cov, maxCov, indices, byPosition, covered)

		for i := range inSlice {
			selected[i] = struct{}{}
			delete(undecided, i)
		}
		for i := range violating {
			delete(undecided, i)
		}

		for i := range inSlice {
			vs := rs[i].Variants
			for _, v := range vs[1:] {
				finder.Merge(vs[0].Position, v.Position)
			}
		}

		bridged := 0
		if bridging {
			pq = buildQueue(rs, undecided, indices, covered)
			for !pq.Empty() {
				_, item := pq.Pop()
				read := rs[item]

				begin, end := span(read, indices)
				if cov.MaxInRange(begin, end) >= maxCov {
					delete(undecided, item)
					continue
				}

				blocks := make(map[int]struct{})
				for _, v := range read.Variants {
					blocks[finder.Find(v.Position)] = struct{}{}
				}
				if len(blocks) < 2 {
					continue
				}

				selected[item] = struct{}{}
				delete(undecided, item)
				cov.AddRead(begin, end)
				bridged++

				vs := read.Variants
				for _, v := range vs[1:] {
					finder.Merge(vs[0].Position, v.Position)
				}
			}
		}
		stats.Bridging += bridged

		// remaining reads neither cover new variants nor bridge blocks
		if len(inSlice)+len(violating)+bridged == 0 {
			break
		}
	}

	components := make(map[int]int, len(positions))
	for _, pos := range positions {
		components[pos] = finder.Find(pos)
	}

	result := make([]int, 0, len(selected))
	for i := range selected {
		result = append(result, i)
	}
	util.UniqInts(&result)

	return result, components, stats, nil
}
