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

package util

import (
	"math"
	"math/rand"
	"testing"
)

var testsUint32 [][2]uint32

func init() {
	ntests := 10000
	testsUint32 = make([][2]uint32, ntests)
	var i int
	for ; i < ntests/4; i++ {
		testsUint32[i] = [2]uint32{rand.Uint32(), rand.Uint32()}
	}
	for ; i < ntests/2; i++ {
		testsUint32[i] = [2]uint32{uint32(rand.Intn(16777216)), rand.Uint32()}
	}
	for ; i < ntests*3/4; i++ {
		testsUint32[i] = [2]uint32{uint32(rand.Intn(65536)), uint32(rand.Intn(256))}
	}
	for ; i < ntests; i++ {
		testsUint32[i] = [2]uint32{uint32(rand.Intn(256)), uint32(rand.Intn(256))}
	}
	testsUint32 = append(testsUint32, [2]uint32{0, 0}, [2]uint32{math.MaxUint32, 0})
}

func TestStreamVByte32Pair(t *testing.T) {
	buf := make([]byte, 8)
	var ctrl byte
	var n, n2 int
	var v1, v2 uint32
	for i, test := range testsUint32 {
		ctrl, n = PutUint32Pair(buf, test[0], test[1])
		if CtrlByte2ByteLengthsUint32Pair(ctrl) != n {
			t.Errorf("#%d, wrong byte length", i)
		}

		v1, v2, n2 = Uint32Pair(ctrl, buf[0:n])
		if n2 == 0 {
			t.Errorf("#%d, wrong decoded number", i)
		}

		if v1 != test[0] || v2 != test[1] {
			t.Errorf("#%d, wrong decoded result: %d, %d, answer: %d, %d", i, v1, v2, test[0], test[1])
		}
	}
}

func TestUniqInts(t *testing.T) {
	tests := []struct {
		in, out []int
	}{
		{[]int{}, []int{}},
		{[]int{5}, []int{5}},
		{[]int{3, 1, 3, 2, 1}, []int{1, 2, 3}},
		{[]int{7, 7, 7}, []int{7}},
		{[]int{2, 1}, []int{1, 2}},
	}
	for i, test := range tests {
		list := make([]int, len(test.in))
		copy(list, test.in)
		UniqInts(&list)
		if len(list) != len(test.out) {
			t.Errorf("#%d, wrong length: %d, answer: %d", i, len(list), len(test.out))
			continue
		}
		for j, v := range list {
			if v != test.out[j] {
				t.Errorf("#%d, wrong value at %d: %d, answer: %d", i, j, v, test.out[j])
			}
		}
	}
}

func TestReverseInts(t *testing.T) {
	s := []int{1, 2, 3, 4}
	ReverseInts(s)
	for i, v := range []int{4, 3, 2, 1} {
		if s[i] != v {
			t.Errorf("wrong value at %d: %d, answer: %d", i, s[i], v)
		}
	}
}
