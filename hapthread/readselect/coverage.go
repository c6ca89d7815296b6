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

// CovMonitor tracks per-variant read coverage over the selection run.
// Positions are variant indices, not genomic coordinates.
type CovMonitor struct {
	coverage []int
}

// NewCovMonitor creates a monitor for n variant positions.
func NewCovMonitor(n int) *CovMonitor {
	return &CovMonitor{coverage: make([]int, n)}
}

// MaxInRange returns the highest coverage in [begin, end).
func (m *CovMonitor) MaxInRange(begin, end int) int {
	max := 0
	for _, c := range m.coverage[begin:end] {
		if c > max {
			max = c
		}
	}
	return max
}

// AddRead increments coverage over [begin, end).
func (m *CovMonitor) AddRead(begin, end int) {
	for i := begin; i < end; i++ {
		m.coverage[i]++
	}
}
