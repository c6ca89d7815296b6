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

// Package matrix persists scoring matrices as binary files: one record per
// variant column, each entry a stream-vbyte encoded (cost, predecessor)
// pair, plus a separate offset index for random access to columns.
package matrix

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/erikvdp/HapThread/hapthread/threading"
	"github.com/erikvdp/HapThread/hapthread/util"
)

var be = binary.BigEndian

// Magic number for checking file format
var Magic = [8]byte{'.', 'h', 'a', 'p', 'm', 't', 'r', 'x'}

// MagicIdx is the magic number for the index file
var MagicIdx = [8]byte{'.', 'm', 't', 'r', 'x', 'i', 'd', 'x'}

// MatrixIndexFileExt is the file extension of the scoring matrix index file.
var MatrixIndexFileExt = ".idx"

// MainVersion is use for checking compatibility
var MainVersion uint8 = 0

// MinorVersion is less important
var MinorVersion uint8 = 1

// BufferSize is size of reading and writing buffer
var BufferSize = 65536

// ErrInvalidFileFormat means invalid file format.
var ErrInvalidFileFormat = errors.New("scoring matrix: invalid binary format")

// ErrBrokenFile means the file is not complete.
var ErrBrokenFile = errors.New("scoring matrix: broken file")

// ErrVersionMismatch means version mismatch between files and program
var ErrVersionMismatch = errors.New("scoring matrix: version mismatch")

// zigzag folds predecessor indices (which include the -1 sentinel of the
// first column) into unsigned ints for varint encoding.
func zigzag(p int32) uint32 {
	return uint32((p << 1) ^ (p >> 31))
}

func unzigzag(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// Writer saves scoring columns to a file, one Write call per variant.
type Writer struct {
	ploidy uint32
	file   string
	fh     *os.File
	w      *bufio.Writer

	bBuf   bytes.Buffer
	buf    []byte
	offset int

	// column offsets and entry counts
	index [][2]int
}

// NewWriter creates a new Writer. Ploidy is recorded in the index file
// so readers can check it against the instance they re-enumerate.
func NewWriter(file string, ploidy uint32) (*Writer, error) {
	w := &Writer{
		ploidy: ploidy,
		file:   file,
		index:  make([][2]int, 0, 1024),
	}
	var err error
	w.fh, err = os.Create(file)
	if err != nil {
		return nil, err
	}
	w.w = bufio.NewWriterSize(w.fh, BufferSize)

	w.buf = make([]byte, 16)

	// 8-byte magic number
	err = binary.Write(w.w, be, Magic)
	if err != nil {
		return nil, err
	}
	w.offset += 8

	// 8-byte meta info
	// actually, only 2 bytes used and the left 6 bytes is preserved.
	err = binary.Write(w.w, be, [8]uint8{MainVersion, MinorVersion})
	if err != nil {
		return nil, err
	}
	w.offset += 8
	return w, nil
}

// Write writes one scoring column, in variant order.
func (w *Writer) Write(pairs []threading.Pair) error {
	n := len(pairs)
	// collect data for the index file
	w.index = append(w.index, [2]int{w.offset, n})

	buf := w.buf
	buf0 := w.bBuf
	buf0.Reset()

	// the number of entries
	be.PutUint32(buf[:4], uint32(n))
	buf0.Write(buf[:4])

	var ctrlByte byte
	var nBytes int
	for _, pair := range pairs {
		ctrlByte, nBytes = util.PutUint32Pair(buf[1:], pair.Cost, zigzag(pair.Pred))
		buf[0] = ctrlByte
		buf0.Write(buf[:nBytes+1])
	}

	_, err := w.w.Write(buf0.Bytes())
	if err != nil {
		return err
	}
	w.offset += buf0.Len()

	return err
}

// WriteMatrix writes all columns of a matrix.
func (w *Writer) WriteMatrix(mat threading.Matrix) error {
	for _, col := range mat {
		if err := w.Write(col.Pairs); err != nil {
			return err
		}
	}
	return nil
}

// Close writes the index file and finishes the writing.
func (w *Writer) Close() error {
	err := w.w.Flush()
	if err != nil {
		return err
	}

	err = w.fh.Close()
	if err != nil {
		return err
	}

	// write the index

	fh, err := os.Create(filepath.Clean(w.file) + MatrixIndexFileExt)
	if err != nil {
		return err
	}
	wtr := bufio.NewWriterSize(fh, BufferSize)

	// magic
	err = binary.Write(wtr, be, MagicIdx)
	if err != nil {
		return err
	}

	// versions
	// actually, only 2 bytes used and the left 6 bytes is preserved.
	err = binary.Write(wtr, be, [8]uint8{MainVersion, MinorVersion})
	if err != nil {
		return err
	}

	buf := w.buf
	buf0 := w.bBuf
	buf0.Reset()

	// ploidy
	be.PutUint32(buf[:4], w.ploidy)
	// the number of columns
	be.PutUint32(buf[4:8], uint32(len(w.index)))
	buf0.Write(buf[:8])

	buf = w.buf[:12]
	for _, data := range w.index {
		be.PutUint64(buf[:8], uint64(data[0]))   // offset
		be.PutUint32(buf[8:12], uint32(data[1])) // number of entries
		buf0.Write(buf)
	}

	_, err = wtr.Write(buf0.Bytes())
	if err != nil {
		return err
	}

	err = wtr.Flush()
	if err != nil {
		return err
	}

	return fh.Close()
}

// Reader is for random access to the scoring columns of a matrix file.
type Reader struct {
	ploidy   uint32
	nColumns uint32

	fh     *os.File
	offset int // offset of the first index record

	buf []byte

	fhData *os.File
}

var poolReader = &sync.Pool{New: func() interface{} {
	return &Reader{
		buf: make([]byte, 32),
	}
}}

// NewReader returns a reader from a scoring matrix file.
// The reader is recycled after calling Close().
func NewReader(file string) (*Reader, error) {
	if strings.HasSuffix(file, MatrixIndexFileExt) {
		return nil, fmt.Errorf("scoring matrix file, not the index file should be given")
	}

	// ------------  index file ----------------

	fileIndex := filepath.Clean(file) + MatrixIndexFileExt
	var err error
	r := poolReader.Get().(*Reader)

	r.fh, err = os.Open(fileIndex)
	if err != nil {
		return nil, err
	}
	r.offset = 0

	buf := r.buf

	// check the magic number
	n, err := io.ReadFull(r.fh, buf[:8])
	if err != nil {
		return nil, err
	}
	if n < 8 {
		return nil, ErrBrokenFile
	}
	same := true
	for i := 0; i < 8; i++ {
		if MagicIdx[i] != buf[i] {
			same = false
			break
		}
	}
	if !same {
		return nil, ErrInvalidFileFormat
	}
	r.offset += 8

	// read metadata
	n, err = io.ReadFull(r.fh, buf[:8])
	if err != nil {
		return nil, err
	}
	if n < 8 {
		return nil, ErrBrokenFile
	}
	r.offset += 8

	// check compatibility
	if MainVersion != buf[0] {
		return nil, ErrVersionMismatch
	}

	// ploidy and the number of columns
	n, err = io.ReadFull(r.fh, buf[:8])
	if err != nil {
		return nil, err
	}
	if n < 8 {
		return nil, ErrBrokenFile
	}
	r.offset += 8

	r.ploidy = be.Uint32(buf[:4])
	r.nColumns = be.Uint32(buf[4:8])

	// ------------ data file ----------------

	r.fhData, err = os.Open(file)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Ploidy returns the ploidy the matrix was computed with.
func (r *Reader) Ploidy() int {
	return int(r.ploidy)
}

// NumColumns returns the number of variant columns in the file.
func (r *Reader) NumColumns() int {
	return int(r.nColumns)
}

// Close closes and recycles the reader.
func (r *Reader) Close() error {
	err := r.fh.Close()
	if err != nil {
		poolReader.Put(r)
		return err
	}

	err = r.fhData.Close()
	if err != nil {
		poolReader.Put(r)
		return err
	}

	poolReader.Put(r)
	return nil
}

// Column reads the scoring entries of the column with an index of idx (0-based).
func (r *Reader) Column(idx int, pairs *[]threading.Pair) error {
	if idx < 0 || idx >= int(r.nColumns) {
		return fmt.Errorf("column index (%d) out of range: [0, %d]", idx, int(r.nColumns)-1)
	}

	buf := r.buf

	// -----------------------------------------------------------
	// read index information
	// 24 + 12 * idx
	r.fh.Seek(int64(r.offset)+int64(idx)<<3+int64(idx)<<2, 0)

	// offset in the data file and the number of entries
	n, err := io.ReadFull(r.fh, buf[:12])
	if err != nil {
		return err
	}
	if n < 12 {
		return ErrBrokenFile
	}
	offset := int64(be.Uint64(buf[:8]))
	nEntries := int(be.Uint32(buf[8:12]))

	if pairs == nil {
		tmp := make([]threading.Pair, 0, nEntries)
		pairs = &tmp
	} else {
		*pairs = (*pairs)[:0]
	}

	// ------------------------------------------------

	r.fhData.Seek(offset+4, 0) // 4 is the 4 bytes for storing the entry count

	var ctrlByte byte
	var nBytes, nReaded, nDecoded int
	var cost, pred uint32
	for i := 0; i < nEntries; i++ {
		// read the control byte
		_, err = io.ReadFull(r.fhData, buf[:1])
		if err != nil {
			return err
		}
		ctrlByte = buf[0]

		// parse the control byte
		nBytes = util.CtrlByte2ByteLengthsUint32Pair(ctrlByte)

		// read encoded bytes
		nReaded, err = io.ReadFull(r.fhData, buf[:nBytes])
		if err != nil {
			return err
		}
		if nReaded < nBytes {
			return ErrBrokenFile
		}

		cost, pred, nDecoded = util.Uint32Pair(ctrlByte, buf[:nBytes])
		if nDecoded == 0 {
			return ErrBrokenFile
		}

		*pairs = append(*pairs, threading.Pair{Cost: cost, Pred: unzigzag(pred)})
	}

	return nil
}

// ReadAll loads every column back into memory. The tuple lists are not
// stored in the file; callers re-enumerate them from the instance when
// they need more than the (cost, predecessor) pairs.
func (r *Reader) ReadAll() (threading.Matrix, error) {
	mat := make(threading.Matrix, 0, r.nColumns)
	for idx := 0; idx < int(r.nColumns); idx++ {
		pairs := make([]threading.Pair, 0, 8)
		if err := r.Column(idx, &pairs); err != nil {
			return nil, err
		}
		mat = append(mat, &threading.Column{Pairs: pairs})
	}
	return mat, nil
}
