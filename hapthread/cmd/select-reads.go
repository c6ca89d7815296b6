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
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/erikvdp/HapThread/hapthread/readselect"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var selectReadsCmd = &cobra.Command{
	Use:   "select-reads",
	Short: "Select a subset of reads bounded by a coverage limit",
	Long: `Select a subset of reads bounded by a coverage limit

Input is one or more read files, given as positional arguments or found
below -I/--in-dir (*.reads.tsv). A read file has one read variant per
line:

  read name, source id, variant index, allele, quality

Reads are picked in slices of decreasing value: a read scores by the
number of yet-uncovered variants it touches, the number of variants it
touches at all, and its minimum quality. No variant exceeds the
coverage limit, reads covering a single variant are skipped, and with
bridging enabled, otherwise redundant reads connecting two haplotype
blocks are kept.

Output is one line per selected read:

  read name, source id, first variant, last variant, block

where block is the smallest variant index of the read's haplotype block.

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

		maxCov := getFlagPositiveInt(cmd, "max-coverage")
		noBridging := getFlagBool(cmd, "no-bridging")
		outDir := getFlagString(cmd, "out-dir")
		force := getFlagBool(cmd, "force")

		if outDir == "" {
			checkError(fmt.Errorf("flag -O/--out-dir needed"))
		}

		files := make([]string, 0, 8)
		files = append(files, args...)

		inDir := getFlagString(cmd, "in-dir")
		if inDir != "" {
			list, err := getFileListFromDir(inDir, reFileReads, opt.NumCPUs)
			checkError(err)
			files = append(files, list...)
		}
		files = uniqStrings(files)
		sort.Strings(files)

		if len(files) == 0 {
			checkError(fmt.Errorf("no read files given, see -I/--in-dir"))
		}
		if opt.Verbose || opt.Log2File {
			log.Infof("%d read files given", len(files))
			log.Infof("maximum coverage per variant: %d", maxCov)
		}

		makeOutDir(outDir, force, "out-dir", opt.Verbose)

		// ------------------------------

		showProgressBar := len(files) > 1 && opt.Verbose

		var pbs *mpb.Progress
		var bar *mpb.Bar
		var chDuration chan time.Duration
		var doneDuration chan int
		if showProgressBar {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(files)),
				mpb.PrependDecorators(
					decor.Name("processed files: ", decor.WC{W: len("processed files: "), C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
					decor.EwmaETA(decor.ET_STYLE_GO, 3),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)

			chDuration = make(chan time.Duration, opt.NumCPUs)
			doneDuration = make(chan int)
			go func() {
				for t := range chDuration {
					bar.EwmaIncrBy(1, t)
				}
				doneDuration <- 1
			}()
		}

		for _, file := range files {
			startTime := time.Now()

			err := selectReadsFile(opt, file, outDir, maxCov, !noBridging)
			checkError(err)

			if showProgressBar {
				chDuration <- time.Duration(float64(time.Since(startTime)))
			}
		}

		if showProgressBar {
			close(chDuration)
			<-doneDuration
			pbs.Wait()
		}
	},
}

var reFileReads = regexp.MustCompile(`\.reads\.tsv(\.gz)?$`)

func selectReadsFile(opt *Options, file string, outDir string, maxCov int, bridging bool) error {
	rs, err := ReadReads(file)
	if err != nil {
		return err
	}

	selected, components, stats, err := readselect.Select(rs, maxCov, bridging)
	if err != nil {
		return fmt.Errorf("file %s: %s", file, err)
	}

	name := filepath.Base(file)
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".tsv")
	outFile := filepath.Join(outDir, name+".selected.tsv")

	outfh, gw, w, err := outStream(outFile, false, opt.CompressionLevel)
	if err != nil {
		return err
	}

	fmt.Fprintf(outfh, "read\tsource\tfirst\tlast\tblock\n")
	for _, i := range selected {
		read := rs[i]
		first := read.Variants[0].Position
		last := read.Variants[len(read.Variants)-1].Position
		fmt.Fprintf(outfh, "%s\t%d\t%d\t%d\t%d\n",
			read.Name, read.Source, first, last, components[first])
	}

	outfh.Flush()
	if gw != nil {
		gw.Close()
	}
	w.Close()

	if opt.Verbose || opt.Log2File {
		blocks := make(map[int]interface{}, 8)
		for _, block := range components {
			blocks[block] = struct{}{}
		}
		log.Infof("file %s: %d of %d reads selected (%d single-variant reads skipped, %d kept for bridging), %d haplotype blocks",
			file, len(selected), len(rs), stats.Skipped, stats.Bridging, len(blocks))
		log.Infof("  selected reads saved to: %s", outFile)
	}

	return nil
}

func init() {
	RootCmd.AddCommand(selectReadsCmd)

	selectReadsCmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing read files (*.reads.tsv). Directory symlinks are followed.`))

	selectReadsCmd.Flags().StringP("out-dir", "O", "hapthread.reads.out",
		formatFlagUsage(`Output directory.`))

	selectReadsCmd.Flags().BoolP("force", "", false,
		formatFlagUsage(`Overwrite existing output directory.`))

	selectReadsCmd.Flags().IntP("max-coverage", "C", 15,
		formatFlagUsage(`Maximum number of selected reads covering one variant.`))

	selectReadsCmd.Flags().BoolP("no-bridging", "", false,
		formatFlagUsage(`Do not keep redundant reads connecting two haplotype blocks.`))

	selectReadsCmd.SetUsageTemplate(usageTemplate("[flags] <reads file> [<reads file> ...]"))
}
