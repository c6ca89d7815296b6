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
	"github.com/rdleal/intervalst/interval"
)

// ClusterRanges records, for every cluster, the variant interval
// [first, last] over which the cluster has reads. The interval tree
// answers "which clusters are active at variant v" queries; the spans
// map answers boundary queries for the range-aware switch cost.
type ClusterRanges struct {
	tree  *interval.SearchTree[int, int]
	spans map[int][2]int
}

// NewClusterRanges creates an empty range table.
func NewClusterRanges() *ClusterRanges {
	return &ClusterRanges{
		tree:  interval.NewSearchTree[int](func(a, b int) int { return a - b }),
		spans: make(map[int][2]int, 64),
	}
}

// Set records the variant range [first, last] of a cluster.
func (r *ClusterRanges) Set(cluster, first, last int) error {
	r.spans[cluster] = [2]int{first, last}
	return r.tree.Insert(first, last+1, cluster)
}

// Span returns the recorded variant range of a cluster.
func (r *ClusterRanges) Span(cluster int) (first, last int, ok bool) {
	s, ok := r.spans[cluster]
	if !ok {
		return 0, 0, false
	}
	return s[0], s[1], true
}

// ClustersAt returns the ids of all clusters whose range covers variant v.
func (r *ClusterRanges) ClustersAt(v int) []int {
	clusters, ok := r.tree.AllIntersections(v, v+1)
	if !ok {
		return nil
	}
	return clusters
}

// FreeSwitch reports whether switching a slot from cluster out to cluster in
// across the boundary between variants v and v+1 costs nothing: the outgoing
// cluster's range ends at v, or the incoming cluster's range begins at v+1.
func (r *ClusterRanges) FreeSwitch(out, in, v int) bool {
	if s, ok := r.spans[out]; ok && s[1] == v {
		return true
	}
	if s, ok := r.spans[in]; ok && s[0] == v+1 {
		return true
	}
	return false
}
