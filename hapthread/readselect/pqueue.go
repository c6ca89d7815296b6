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

package readselect

import "container/heap"

// Score orders reads for selection: newly-coverable variants first, raw
// coverage quality second, minimum base quality last. Compared
// lexicographically, larger is better.
type Score [3]int

// Less reports whether s orders strictly below o.
func (s Score) Less(o Score) bool {
	for i := range s {
		if s[i] != o[i] {
			return s[i] < o[i]
		}
	}
	return false
}

type pqItem struct {
	score Score
	item  int
}

// pqHeap is the container/heap backend; pos tracks each item's heap slot
// so scores can be changed in place.
type pqHeap struct {
	items []pqItem
	pos   map[int]int
}

func (h *pqHeap) Len() int { return len(h.items) }

func (h *pqHeap) Less(i, j int) bool { return h.items[j].score.Less(h.items[i].score) }

func (h *pqHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.items[i].item] = i
	h.pos[h.items[j].item] = j
}

func (h *pqHeap) Push(x interface{}) {
	it := x.(pqItem)
	h.pos[it.item] = len(h.items)
	h.items = append(h.items, it)
}

func (h *pqHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	delete(h.pos, it.item)
	return it
}

// PriorityQueue is a max-priority queue over read indices that supports
// changing the score of a queued read.
type PriorityQueue struct {
	h pqHeap
}

// NewPriorityQueue creates an empty queue.
func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{h: pqHeap{
		items: make([]pqItem, 0, 128),
		pos:   make(map[int]int, 128),
	}}
}

// Push queues a read index with a score.
func (pq *PriorityQueue) Push(score Score, item int) {
	heap.Push(&pq.h, pqItem{score: score, item: item})
}

// Pop removes and returns the best-scoring read index.
func (pq *PriorityQueue) Pop() (Score, int) {
	it := heap.Pop(&pq.h).(pqItem)
	return it.score, it.item
}

// Empty reports whether the queue has no reads left.
func (pq *PriorityQueue) Empty() bool { return pq.h.Len() == 0 }

// Len returns the number of queued reads.
func (pq *PriorityQueue) Len() int { return pq.h.Len() }

// ScoreOf returns the current score of a queued read.
func (pq *PriorityQueue) ScoreOf(item int) (Score, bool) {
	i, ok := pq.h.pos[item]
	if !ok {
		return Score{}, false
	}
	return pq.h.items[i].score, true
}

// ChangeScore updates the score of a queued read and restores heap order.
func (pq *PriorityQueue) ChangeScore(item int, score Score) bool {
	i, ok := pq.h.pos[item]
	if !ok {
		return false
	}
	pq.h.items[i].score = score
	heap.Fix(&pq.h, i)
	return true
}
