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

	colorable "github.com/mattn/go-colorable"
	logging "github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

// VERSION is the version of hapthread
var VERSION = "0.1.0"

var log = logging.MustGetLogger("hapthread")

var logFormat = logging.MustStringFormatter(`%{color}[%{level:.4s}]%{color:reset} %{message}`)

func init() {
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	logging.SetBackend(logging.NewBackendFormatter(backend, logFormat))
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "hapthread",
	Short: "threading read clusters through variant positions",
	Long: fmt.Sprintf(`hapthread: threading read clusters through variant positions

Version: v%s

Source code: https://github.com/erikvdp/HapThread

hapthread assigns read clusters to haplotype slots along a chromosome,
one variant at a time, by solving a minimum-cost threading problem:
coverage decides how plausible a cluster tuple is at each variant, and a
switch penalty keeps haplotypes from hopping between clusters.

`, VERSION),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().IntP("threads", "j", 4,
		"number of CPU cores to use")
	RootCmd.PersistentFlags().BoolP("quiet", "", false,
		"do not print any verbose information")
	RootCmd.PersistentFlags().StringP("log", "", "",
		"log file (also prints the log to stderr)")

	RootCmd.CompletionOptions.DisableDefaultCmd = true
}

func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(-1)
	}
}

var logFormatFile = logging.MustStringFormatter(`%{time:15:04:05.000} [%{level:.4s}] %{message}`)

// addLogToFile duplicates the log to a file, besides stderr.
func addLogToFile(file string) {
	fh, err := os.Create(file)
	if err != nil {
		checkError(fmt.Errorf("fail to write log file: %s", file))
	}

	backendStderr := logging.NewBackendFormatter(
		logging.NewLogBackend(colorable.NewColorableStderr(), "", 0), logFormat)
	backendFile := logging.NewBackendFormatter(
		logging.NewLogBackend(fh, "", 0), logFormatFile)
	logging.SetBackend(backendStderr, backendFile)
}
