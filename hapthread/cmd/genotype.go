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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erikvdp/HapThread/hapthread/matrix"
	"github.com/erikvdp/HapThread/hapthread/threading"
	"github.com/spf13/cobra"
)

var genotypeCmd = &cobra.Command{
	Use:   "genotype",
	Short: "Report allele dosages along a saved threading path",
	Long: `Report allele dosages along a saved threading path

Input is an instance directory with a consensus.tsv file, and the binary
scoring matrix written by "hapthread thread --save-matrix". The
minimum-cost path is traced back through the matrix and, per variant,
the consensus alleles of the chosen clusters are summed into an allele
dosage. With a genotypes.tsv file present, the absolute deviation from
the expected dosage is reported too.

Output is one line per variant:

  variant, haplotype slots, allele dosage[, expected dosage, deviation]

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		timeStart := time.Now()
		defer func() {
			if opt.Verbose || opt.Log2File {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
		}()

		// ------------------------------

		dir := getFlagString(cmd, "instance")
		if dir == "" {
			checkError(fmt.Errorf("flag -d/--instance needed"))
		}
		matFile := getFlagString(cmd, "matrix")
		if matFile == "" {
			checkError(fmt.Errorf("flag -m/--matrix needed"))
		}
		outFile := getFlagString(cmd, "out-file")

		// ------------------------------

		reader, err := matrix.NewReader(matFile)
		checkError(err)

		ploidy := reader.Ploidy()
		if opt.Verbose || opt.Log2File {
			log.Infof("scoring matrix: %d columns, ploidy: %d", reader.NumColumns(), ploidy)
		}

		ins, err := ReadInstance(dir, ploidy)
		checkError(err)
		if ins.Consensus == nil {
			checkError(fmt.Errorf("instance %s: %s needed for genotyping", instanceName(dir), FileConsensus))
		}
		if reader.NumColumns() != ins.NumVars {
			checkError(fmt.Errorf("%d matrix columns but %d variants in instance %s",
				reader.NumColumns(), ins.NumVars, instanceName(dir)))
		}

		mat, err := reader.ReadAll()
		checkError(err)
		checkError(reader.Close())

		// the matrix file stores (cost, predecessor) pairs only; tuples
		// are re-derived from the instance's candidate combinations
		topt := threading.DefaultThreadingOptions
		topt.Ploidy = ploidy
		topt.NumCPUs = opt.NumCPUs
		threader, err := threading.NewThreader(&topt, nil)
		checkError(err)

		for v, col := range mat {
			col.Tuples = threader.EnumerateTuples(ins.Candidates[v])
			if len(col.Tuples) != len(col.Pairs) {
				checkError(fmt.Errorf("variant %d: %d matrix entries but %d candidate tuples, wrong instance for this matrix?",
					v, len(col.Pairs), len(col.Tuples)))
			}
		}

		path, err := mat.Backtrace()
		checkError(err)
		tuples := mat.PathTuples(path)

		// ------------------------------

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		hasTargets := ins.Genotypes != nil
		if hasTargets {
			fmt.Fprintf(outfh, "variant\thaplotypes\tdosage\texpected\tdeviation\n")
		} else {
			fmt.Fprintf(outfh, "variant\thaplotypes\tdosage\n")
		}

		var deviations int
		buf := make([]string, ploidy)
		for v, tuple := range tuples {
			for k, cid := range tuple {
				buf[k] = strconv.Itoa(cid)
			}
			dosage := threading.TupleGenotype(ins.Consensus, v, tuple)

			if hasTargets && ins.Genotypes[v] >= 0 {
				dev := threading.TupleGenotypeSoft(ins.Consensus, v, tuple, ins.Genotypes[v])
				if dev > 0 {
					deviations++
				}
				fmt.Fprintf(outfh, "%d\t%s\t%d\t%d\t%d\n",
					v, strings.Join(buf, ","), dosage, ins.Genotypes[v], dev)
			} else if hasTargets {
				fmt.Fprintf(outfh, "%d\t%s\t%d\t.\t.\n", v, strings.Join(buf, ","), dosage)
			} else {
				fmt.Fprintf(outfh, "%d\t%s\t%d\n", v, strings.Join(buf, ","), dosage)
			}
		}

		if (opt.Verbose || opt.Log2File) && hasTargets {
			log.Infof("%d of %d variants deviate from the expected dosage", deviations, len(tuples))
		}
	},
}

func init() {
	RootCmd.AddCommand(genotypeCmd)

	genotypeCmd.Flags().StringP("instance", "d", "",
		formatFlagUsage(`Instance directory, must contain consensus.tsv.`))

	genotypeCmd.Flags().StringP("matrix", "m", "",
		formatFlagUsage(`Binary scoring matrix written by "hapthread thread --save-matrix".`))

	genotypeCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports and recommends a ".gz" suffix ("-" for stdout).`))

	genotypeCmd.SetUsageTemplate(usageTemplate(""))
}
