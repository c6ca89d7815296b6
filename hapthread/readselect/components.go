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

// ComponentFinder is a union-find structure over variant positions;
// connected positions end up in one phased block. The representative of a
// component is its smallest member.
type ComponentFinder struct {
	parent map[int]int
}

// NewComponentFinder creates a finder with every value in its own component.
func NewComponentFinder(values []int) *ComponentFinder {
	f := &ComponentFinder{parent: make(map[int]int, len(values))}
	for _, v := range values {
		f.parent[v] = v
	}
	return f
}

// Merge joins the components of a and b.
func (f *ComponentFinder) Merge(a, b int) {
	ra, rb := f.find(a), f.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	f.parent[rb] = ra
}

// Find returns the representative of the component containing x.
func (f *ComponentFinder) Find(x int) int {
	return f.find(x)
}

func (f *ComponentFinder) find(x int) int {
	r := x
	for f.parent[r] != r {
		r = f.parent[r]
	}
	// path compression
	for f.parent[x] != r {
		f.parent[x], x = r, f.parent[x]
	}
	return r
}
