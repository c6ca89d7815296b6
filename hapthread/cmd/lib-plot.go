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
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotCostHist saves a histogram of per-variant path costs.
func plotCostHist(costs []float64, title string, bins int, file string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "per-variant path cost"
	p.Y.Label.Text = "frequency"

	h, err := plotter.NewHist(plotter.Values(costs), bins)
	if err != nil {
		return errors.Wrap(err, "fail to create histogram")
	}
	p.Add(h)

	if err = p.Save(5*vg.Inch, 4*vg.Inch, file); err != nil {
		return errors.Wrapf(err, "fail to save plot: %s", file)
	}
	return nil
}
