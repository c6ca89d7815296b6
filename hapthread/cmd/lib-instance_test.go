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

package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, file, content string) {
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeTestInstance(t *testing.T) string {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, FileCandidates),
		"# variant\tclusters\n"+
			"0\t0,0,1,1\n"+
			"1\t0,0,1,1\n"+
			"1\t0,1,1,2\n")

	writeFile(t, filepath.Join(dir, FileCoverage),
		"0\t0\t0.5\n"+
			"0\t1\t0.5\n"+
			"1\t0\t0.25\n"+
			"1\t1\t0.5\n"+
			"1\t2\t0.25\n")

	writeFile(t, filepath.Join(dir, FileRanges),
		"0\t0\t1\n"+
			"1\t0\t1\n"+
			"2\t1\t1\n")

	writeFile(t, filepath.Join(dir, FileConsensus),
		"0\t0\t0\n"+
			"0\t1\t1\n"+
			"1\t0\t0\n"+
			"1\t1\t1\n"+
			"1\t2\t1\n")

	writeFile(t, filepath.Join(dir, FileGenotypes),
		"0\t2\n"+
			"1\t2\n")

	return dir
}

func TestReadInstance(t *testing.T) {
	dir := writeTestInstance(t)

	ins, err := ReadInstance(dir, 4)
	if err != nil {
		t.Fatal(err)
	}

	if ins.NumVars != 2 {
		t.Fatalf("expected 2 variants, got %d", ins.NumVars)
	}
	if len(ins.Candidates[0]) != 1 || len(ins.Candidates[1]) != 2 {
		t.Fatalf("unexpected candidate counts: %d, %d",
			len(ins.Candidates[0]), len(ins.Candidates[1]))
	}
	if ins.Coverage[1][2] != 0.25 {
		t.Fatalf("unexpected coverage: %f", ins.Coverage[1][2])
	}

	if ins.Ranges == nil {
		t.Fatal("ranges not loaded")
	}
	if first, last, ok := ins.Ranges.Span(2); !ok || first != 1 || last != 1 {
		t.Fatalf("unexpected span of cluster 2: %d-%d", first, last)
	}

	if ins.Consensus == nil || ins.Consensus[1][2] != 1 {
		t.Fatal("consensus not loaded")
	}
	if ins.Genotypes == nil || ins.Genotypes[0] != 2 {
		t.Fatal("genotypes not loaded")
	}

	if n := ins.CheckRanges(); n != 0 {
		t.Fatalf("expected no out-of-range candidates, got %d", n)
	}
}

func TestReadInstancePloidyMismatch(t *testing.T) {
	dir := writeTestInstance(t)

	if _, err := ReadInstance(dir, 3); err == nil {
		t.Fatal("expected error for combination size not matching ploidy")
	}
}

func TestReadInstanceMissingFiles(t *testing.T) {
	if _, err := ReadInstance(filepath.Join(t.TempDir(), "nope"), 4); err == nil {
		t.Fatal("expected error for missing instance directory")
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileCandidates), "0\t0,0,1,1\n")
	if _, err := ReadInstance(dir, 4); err == nil {
		t.Fatal("expected error for missing coverage file")
	}
}

func TestCheckRangesFlagsOutOfRangeClusters(t *testing.T) {
	dir := writeTestInstance(t)

	// cluster 2 is only active at variant 1
	writeFile(t, filepath.Join(dir, FileCandidates),
		"0\t0,0,1,2\n"+
			"1\t0,0,1,1\n")

	ins, err := ReadInstance(dir, 4)
	if err != nil {
		t.Fatal(err)
	}
	if n := ins.CheckRanges(); n != 1 {
		t.Fatalf("expected 1 out-of-range candidate, got %d", n)
	}
}

func TestReadCostConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hapthread.toml")
	writeFile(t, file,
		"ploidy = 4\n"+
			"switch-penalty = 64\n"+
			"use-ranges = true\n")

	cfg, err := ReadCostConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ploidy != 4 || cfg.SwitchPenalty != 64 || !cfg.UseRanges {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestReadReads(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sample.reads.tsv")
	// variants of r1 on purpose out of order
	writeFile(t, file,
		"r1\t0\t2\t1\t30\n"+
			"r1\t0\t0\t0\t30\n"+
			"r1\t0\t1\t1\t20\n"+
			"r2\t1\t1\t0\t40\n")

	rs, err := ReadReads(file)
	if err != nil {
		t.Fatal(err)
	}

	if len(rs) != 2 {
		t.Fatalf("expected 2 reads, got %d", len(rs))
	}
	r1 := rs[0]
	if r1.Name != "r1" || len(r1.Variants) != 3 {
		t.Fatalf("unexpected read: %+v", r1)
	}
	for i, v := range r1.Variants {
		if v.Position != i {
			t.Fatalf("variants not sorted by position: %+v", r1.Variants)
		}
	}
	if rs[1].Source != 1 || rs[1].Variants[0].Quality != 40 {
		t.Fatalf("unexpected read: %+v", rs[1])
	}
}
