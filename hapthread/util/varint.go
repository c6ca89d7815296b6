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

var offsetsUint32 = []uint8{24, 16, 8, 0}

// PutUint32Pair encodes two uint32s into 2-8 bytes, and returns the control
// byte and the encoded byte length. The low nibble of the control byte holds
// the two 2-bit byte lengths, first value first.
func PutUint32Pair(buf []byte, v1, v2 uint32) (ctrl byte, n int) {
	blen := ByteLengthUint32(v1)
	ctrl |= byte(blen - 1)
	for _, offset := range offsetsUint32[4-blen:] {
		buf[n] = byte((v1 >> offset) & 0xff)
		n++
	}

	ctrl <<= 2
	blen = ByteLengthUint32(v2)
	ctrl |= byte(blen - 1)
	for _, offset := range offsetsUint32[4-blen:] {
		buf[n] = byte((v2 >> offset) & 0xff)
		n++
	}
	return
}

// Uint32Pair decodes encoded bytes.
func Uint32Pair(ctrl byte, buf []byte) (v1, v2 uint32, n int) {
	blen1 := int((ctrl>>2)&3) + 1
	blen2 := int(ctrl&3) + 1
	if len(buf) < blen1+blen2 {
		return 0, 0, 0
	}

	var j int

	for j = 0; j < blen1; j++ {
		v1 <<= 8
		v1 |= uint32(buf[n])
		n++
	}

	for j = 0; j < blen2; j++ {
		v2 <<= 8
		v2 |= uint32(buf[n])
		n++
	}

	return
}

// ByteLengthUint32 returns the minimum number of bytes to store a integer.
func ByteLengthUint32(n uint32) uint8 {
	if n < 256 {
		return 1
	}
	if n < 65536 {
		return 2
	}
	if n < 16777216 {
		return 3
	}
	return 4
}

// CtrlByte2ByteLengthsUint32Pair returns the byte length for a given control byte.
func CtrlByte2ByteLengthsUint32Pair(ctrl byte) int {
	return int(ctrl>>2&3+ctrl&3) + 2
}
