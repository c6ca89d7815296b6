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
	"strconv"
	"strings"
	"time"

	"github.com/erikvdp/HapThread/hapthread/matrix"
	"github.com/erikvdp/HapThread/hapthread/threading"
	"github.com/erikvdp/HapThread/hapthread/util"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// MatrixFileExt is the file extension of binary scoring matrix files.
var MatrixFileExt = ".mtrx"

// ConfigFileName is the cost-model config file checked in the home
// directory when -c/--cost-config is not given.
var ConfigFileName = ".hapthread.toml"

var threadCmd = &cobra.Command{
	Use:   "thread",
	Short: "Thread read clusters through variant positions",
	Long: `Thread read clusters through variant positions

Input is one or more instance directories, given as positional arguments
or found below -I/--in-dir. An instance directory contains:

  candidates.tsv    variant<TAB>comma-separated cluster ids, one
                    candidate combination per line (required)
  coverage.tsv      variant<TAB>cluster<TAB>relative coverage (required)
  ranges.tsv        cluster<TAB>first variant<TAB>last variant
  consensus.tsv     variant<TAB>cluster<TAB>consensus allele
  genotypes.tsv     variant<TAB>expected allele dosage

For every variant, all distinct orderings of each candidate combination
are scored against the coverage, and linked to the previous variant with
a per-slot switch penalty. The minimum-cost path is written as one line
per variant:

  variant, haplotype slots (comma-separated cluster ids), path cost

Attentions:
  1. Ties in the minimum search are broken towards the lowest tuple
     index, so results are reproducible for any -j/--threads value.
  2. With -r/--use-ranges, slot switches at a cluster's range boundary
     are free; ranges.tsv is then required.

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

		outDir := getFlagString(cmd, "out-dir")
		force := getFlagBool(cmd, "force")
		saveMatrix := getFlagBool(cmd, "save-matrix")
		plotDir := getFlagString(cmd, "plot-dir")
		bins := getFlagPositiveInt(cmd, "bins")

		if outDir == "" {
			checkError(fmt.Errorf("flag -O/--out-dir needed"))
		}

		// ------------------------------
		// instance directories

		dirs := make([]string, 0, 8)
		dirs = append(dirs, args...)

		inDir := getFlagString(cmd, "in-dir")
		if inDir != "" {
			files, err := getFileListFromDir(inDir, reFileCandidates, opt.NumCPUs)
			checkError(err)
			for _, file := range files {
				dirs = append(dirs, filepath.Dir(file))
			}
		}
		dirs = uniqStrings(dirs)
		sort.Strings(dirs)

		if len(dirs) == 0 {
			checkError(fmt.Errorf("no instance directories given, see -I/--in-dir"))
		}
		if opt.Verbose || opt.Log2File {
			log.Infof("%d instance directories given", len(dirs))
		}

		// ------------------------------
		// cost model

		topt := threading.DefaultThreadingOptions
		topt.NumCPUs = opt.NumCPUs

		configFile := getFlagString(cmd, "cost-config")
		if configFile == "" {
			if home, err := homedir.Dir(); err == nil {
				file := filepath.Join(home, ConfigFileName)
				if _, err = os.Stat(file); err == nil {
					configFile = file
				}
			}
		}
		if configFile != "" {
			cfg, err := ReadCostConfig(configFile)
			checkError(err)
			if cfg.Ploidy > 0 {
				topt.Ploidy = cfg.Ploidy
			}
			if cfg.SwitchPenalty > 0 {
				topt.SwitchPenalty = cfg.SwitchPenalty
			}
			topt.UseRanges = cfg.UseRanges
			if opt.Verbose || opt.Log2File {
				log.Infof("cost-model config loaded: %s", configFile)
			}
		}

		// flags override the config file
		if cmd.Flags().Changed("ploidy") {
			topt.Ploidy = getFlagPositiveInt(cmd, "ploidy")
		}
		if cmd.Flags().Changed("switch-penalty") {
			topt.SwitchPenalty = uint32(getFlagPositiveInt(cmd, "switch-penalty"))
		}
		if cmd.Flags().Changed("use-ranges") {
			topt.UseRanges = getFlagBool(cmd, "use-ranges")
		}

		checkError(threading.CheckThreadingOptions(&topt))

		if opt.Verbose || opt.Log2File {
			log.Infof("main parameters:")
			log.Infof("  ploidy: %d", topt.Ploidy)
			log.Infof("  switch penalty: %d", topt.SwitchPenalty)
			log.Infof("  range-aware switches: %v", topt.UseRanges)
			log.Info()
		}

		// ------------------------------

		makeOutDir(outDir, force, "out-dir", opt.Verbose)
		if plotDir != "" {
			makeOutDir(plotDir, force, "plot-dir", opt.Verbose)
		}

		// ------------------------------

		showProgressBar := len(dirs) > 1 && opt.Verbose

		var pbs *mpb.Progress
		var bar *mpb.Bar
		var chDuration chan time.Duration
		var doneDuration chan int
		if showProgressBar {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(dirs)),
				mpb.PrependDecorators(
					decor.Name("processed instances: ", decor.WC{W: len("processed instances: "), C: decor.DindentRight}),
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

		for _, dir := range dirs {
			startTime := time.Now()

			err := threadInstance(opt, &topt, dir, outDir, saveMatrix, plotDir, bins)
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

var reFileCandidates = regexp.MustCompile(`^candidates\.tsv$`)

// threadInstance solves one instance directory and writes the results
// below outDir.
func threadInstance(opt *Options, topt *threading.ThreadingOptions,
	dir string, outDir string, saveMatrix bool, plotDir string, bins int) error {
	name := instanceName(dir)

	ins, err := ReadInstance(dir, topt.Ploidy)
	if err != nil {
		return err
	}
	if opt.Verbose || opt.Log2File {
		log.Infof("instance %s: %d variants", name, ins.NumVars)
	}
	if n := ins.CheckRanges(); n > 0 {
		log.Warningf("instance %s: %d candidate cluster ids outside their declared range", name, n)
	}
	if topt.UseRanges && ins.Ranges == nil {
		return fmt.Errorf("instance %s: --use-ranges requires %s", name, FileRanges)
	}

	threader, err := threading.NewThreader(topt, ins.Ranges)
	if err != nil {
		return err
	}

	mat, err := threader.Thread(ins.Candidates, ins.Coverage)
	if err != nil {
		return fmt.Errorf("instance %s: %s", name, err)
	}

	path, err := mat.Backtrace()
	if err != nil {
		return fmt.Errorf("instance %s: %s", name, err)
	}
	tuples := mat.PathTuples(path)

	// ------------------------------
	// threading result

	outFile := filepath.Join(outDir, name+".threading.tsv")
	outfh, gw, w, err := outStream(outFile, false, opt.CompressionLevel)
	if err != nil {
		return err
	}

	costs := make([]float64, len(path))
	buf := make([]string, topt.Ploidy)
	fmt.Fprintf(outfh, "variant\thaplotypes\tcost\n")
	for v, i := range path {
		for k, cid := range tuples[v] {
			buf[k] = strconv.Itoa(cid)
		}
		cost := mat[v].Pairs[i].Cost
		costs[v] = float64(cost)
		fmt.Fprintf(outfh, "%d\t%s\t%d\n", v, strings.Join(buf, ","), cost)
	}

	outfh.Flush()
	if gw != nil {
		gw.Close()
	}
	w.Close()

	if opt.Verbose || opt.Log2File {
		mean, stdev := util.MeanStdev(costs)
		log.Infof("instance %s: path cost: %d, per-variant cost: %.2f ± %.2f",
			name, mat.PathCost(path), mean, stdev)
		log.Infof("  threading result saved to: %s", outFile)
	}

	// ------------------------------
	// binary scoring matrix

	if saveMatrix {
		matFile := filepath.Join(outDir, name+MatrixFileExt)
		wtr, err := matrix.NewWriter(matFile, uint32(topt.Ploidy))
		if err != nil {
			return err
		}
		if err = wtr.WriteMatrix(mat); err != nil {
			return err
		}
		if err = wtr.Close(); err != nil {
			return err
		}
		if opt.Verbose || opt.Log2File {
			log.Infof("  scoring matrix saved to: %s", matFile)
		}
	}

	// ------------------------------
	// cost histogram

	if plotDir != "" {
		plotFile := filepath.Join(plotDir, name+".hist.png")
		if err = plotCostHist(costs, name, bins, plotFile); err != nil {
			return err
		}
		if opt.Verbose || opt.Log2File {
			log.Infof("  histogram of per-variant costs saved to: %s", plotFile)
		}
	}

	return nil
}

func uniqStrings(list []string) []string {
	if len(list) < 2 {
		return list
	}
	m := make(map[string]interface{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func init() {
	RootCmd.AddCommand(threadCmd)

	threadCmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing instance directories, i.e., those with a candidates.tsv file. Directory symlinks are followed.`))

	threadCmd.Flags().StringP("out-dir", "O", "hapthread.out",
		formatFlagUsage(`Output directory.`))

	threadCmd.Flags().BoolP("force", "", false,
		formatFlagUsage(`Overwrite existing output directory.`))

	threadCmd.Flags().IntP("ploidy", "p", 4,
		formatFlagUsage(`Number of haplotype slots.`))

	threadCmd.Flags().IntP("switch-penalty", "s", 32,
		formatFlagUsage(`Cost per haplotype slot changing clusters between two adjacent variants.`))

	threadCmd.Flags().BoolP("use-ranges", "r", false,
		formatFlagUsage(`Do not charge the switch penalty at cluster range boundaries (requires ranges.tsv).`))

	threadCmd.Flags().StringP("cost-config", "c", "",
		formatFlagUsage(`Cost-model config file in TOML format (default: ~/`+ConfigFileName+` if present). Flags given explicitly override the config file.`))

	threadCmd.Flags().BoolP("save-matrix", "m", false,
		formatFlagUsage(`Also save the binary scoring matrix ( `+MatrixFileExt+` ), for "hapthread genotype".`))

	threadCmd.Flags().StringP("plot-dir", "", "",
		formatFlagUsage(`Output directory for histograms of per-variant path costs.`))

	threadCmd.Flags().IntP("bins", "B", 20,
		formatFlagUsage(`Number of histogram bins.`))

	threadCmd.SetUsageTemplate(usageTemplate("[flags] <instance dir> [<instance dir> ...]"))
}
