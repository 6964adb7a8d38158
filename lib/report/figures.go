/* Copyright (C) 2016 Philipp Benner
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package report

/* -------------------------------------------------------------------------- */

import "fmt"
import "image/color"
import "math"
import "sort"

import "gonum.org/v1/gonum/stat"
import "gonum.org/v1/plot"
import "gonum.org/v1/plot/plotter"
import "gonum.org/v1/plot/plotutil"
import "gonum.org/v1/plot/vg"
import "gonum.org/v1/plot/vg/draw"

import "github.com/pbenner/diffexpr"

/* -------------------------------------------------------------------------- */

var colorSignificant = color.RGBA{R: 200, G: 30, B: 30, A: 255}
var colorOther       = color.RGBA{R: 150, G: 150, B: 150, A: 255}

func glyphStyle(c color.Color) draw.GlyphStyle {
  return draw.GlyphStyle{Color: c, Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
}

/* violin plot
 * -------------------------------------------------------------------------- */

// Gaussian kernel density estimate with bandwidth given by Silverman's
// rule of thumb.
func kernelDensity(x []float64, n int) (plotter.XYs, error) {
  if len(x) < 2 {
    return nil, fmt.Errorf("at least two observations are required for a density estimate")
  }
  sd  := stat.StdDev(x, nil)
  y   := append([]float64{}, x...)
  sort.Float64s(y)
  iqr := stat.Quantile(0.75, stat.LinInterp, y, nil) - stat.Quantile(0.25, stat.LinInterp, y, nil)
  bw  := 0.9*math.Min(sd, iqr/1.34)*math.Pow(float64(len(x)), -0.2)
  if !(bw > 0) {
    bw = 0.9*sd*math.Pow(float64(len(x)), -0.2)
  }
  if !(bw > 0) {
    return nil, fmt.Errorf("observations have zero variance")
  }
  from := y[0]         - 3*bw
  to   := y[len(y)-1] + 3*bw
  r    := make(plotter.XYs, n)
  for i := range r {
    t := from + (to-from)*float64(i)/float64(n-1)
    d := 0.0
    for _, v := range x {
      z := (t-v)/bw
      d += math.Exp(-0.5*z*z)
    }
    r[i].X = t
    r[i].Y = d/(float64(len(x))*bw*math.Sqrt(2*math.Pi))
  }
  return r, nil
}

// Polygon of a density mirrored at position loc. The density is scaled
// to the given half width.
func violin(x []float64, loc, halfWidth float64) (*plotter.Polygon, error) {
  d, err := kernelDensity(x, 128)
  if err != nil {
    return nil, err
  }
  m := 0.0
  for _, p := range d {
    m = math.Max(m, p.Y)
  }
  ring := make(plotter.XYs, 0, 2*len(d))
  for _, p := range d {
    ring = append(ring, plotter.XY{X: loc + halfWidth*p.Y/m, Y: p.X})
  }
  for i := len(d)-1; i >= 0; i-- {
    ring = append(ring, plotter.XY{X: loc - halfWidth*d[i].Y/m, Y: d[i].X})
  }
  return plotter.NewPolygon(ring)
}

// Violin and box plots of values grouped by the levels of a factor.
// Missing values are ignored. If threshold is not NaN, a horizontal line
// marks its value.
func ViolinPlot(values []float64, groups diffexpr.Factor, title, xlabel, ylabel string, threshold float64) (*plot.Plot, error) {
  if len(values) != groups.Length() {
    return nil, fmt.Errorf("values and groups have different lengths")
  }
  p := plot.New()
  p.Title.Text   = title
  p.X.Label.Text = xlabel
  p.Y.Label.Text = ylabel

  for k, level := range groups.Levels {
    x := []float64{}
    for i, v := range values {
      if groups.Codes[i] == k && !math.IsNaN(v) {
        x = append(x, v)
      }
    }
    if len(x) == 0 {
      continue
    }
    c := plotutil.Color(k)
    if poly, err := violin(x, float64(k), 0.4); err == nil {
      poly.Color     = withAlpha(c, 80)
      poly.LineStyle = draw.LineStyle{Color: c, Width: vg.Points(1)}
      p.Add(poly)
    }
    box, err := plotter.NewBoxPlot(vg.Points(15), float64(k), plotter.Values(x))
    if err != nil {
      return nil, fmt.Errorf("group `%s': %v", level, err)
    }
    p.Add(box)
  }
  p.NominalX(groups.Levels...)
  if !math.IsNaN(threshold) {
    line, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: threshold}, {X: float64(groups.NLevels())-0.5, Y: threshold}})
    if err != nil {
      return nil, err
    }
    line.LineStyle = draw.LineStyle{Color: colorSignificant, Width: vg.Points(1), Dashes: []vg.Length{vg.Points(4), vg.Points(2)}}
    p.Add(line)
  }
  return p, nil
}

func withAlpha(c color.Color, alpha uint8) color.Color {
  r, g, b, _ := c.RGBA()
  return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}

/* volcano plot
 * -------------------------------------------------------------------------- */

// Log fold change against -log10 p-value. Genes with adjusted p-value
// below fdr are highlighted, the labels most significant genes are
// labelled with their symbol.
func VolcanoPlot(t diffexpr.DETable, fdr float64, labels int) (*plot.Plot, error) {
  p := plot.New()
  p.Title.Text   = fmt.Sprintf("Volcano plot (%s)", t.Coefficient)
  p.X.Label.Text = "log2 fold change"
  p.Y.Label.Text = "-log10 p-value"

  // largest finite value for p-values of zero
  ymax := 0.0
  for _, v := range t.PValue {
    if v > 0 {
      ymax = math.Max(ymax, -math.Log10(v))
    }
  }
  y := func(i int) float64 {
    if t.PValue[i] == 0 {
      return ymax
    }
    return -math.Log10(t.PValue[i])
  }
  xys    := plotter.XYs{}
  colors := []color.Color{}
  for i := 0; i < t.Length(); i++ {
    if math.IsNaN(t.PValue[i]) || math.IsNaN(t.LogFC[i]) {
      continue
    }
    xys = append(xys, plotter.XY{X: t.LogFC[i], Y: y(i)})
    if t.AdjPValue[i] < fdr {
      colors = append(colors, colorSignificant)
    } else {
      colors = append(colors, colorOther)
    }
  }
  if len(xys) == 0 {
    return nil, fmt.Errorf("%w: no genes with p-values", diffexpr.ErrEmptyMatrix)
  }
  s, err := plotter.NewScatter(xys)
  if err != nil {
    return nil, err
  }
  s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
    return glyphStyle(colors[i])
  }
  p.Add(s)

  top := t.OrderByP()
  if labels < len(top) {
    top = top[0:labels]
  }
  l := plotter.XYLabels{}
  for _, i := range top {
    if math.IsNaN(t.PValue[i]) {
      continue
    }
    l.XYs    = append(l.XYs, plotter.XY{X: t.LogFC[i], Y: y(i)})
    l.Labels = append(l.Labels, t.Symbol[i])
  }
  if len(l.XYs) > 0 {
    labelPlot, err := plotter.NewLabels(l)
    if err != nil {
      return nil, err
    }
    labelPlot.Offset = vg.Point{X: vg.Points(4), Y: vg.Points(4)}
    p.Add(labelPlot)
  }
  return p, nil
}

/* mds plot
 * -------------------------------------------------------------------------- */

// Samples in the first two MDS dimensions coloured by the given factor.
func MDSPlot(m diffexpr.MDSResult, groups diffexpr.Factor, title string) (*plot.Plot, error) {
  if len(m.X) != groups.Length() {
    return nil, fmt.Errorf("MDS result and groups have different lengths")
  }
  p := plot.New()
  p.Title.Text   = title
  p.X.Label.Text = fmt.Sprintf("Leading logFC dim 1 (%.0f%%)", 100*m.VarExplained[0])
  p.Y.Label.Text = fmt.Sprintf("Leading logFC dim 2 (%.0f%%)", 100*m.VarExplained[1])
  p.Legend.Top   = true

  for k, level := range groups.Levels {
    xys := plotter.XYs{}
    for i := range m.X {
      if groups.Codes[i] == k {
        xys = append(xys, plotter.XY{X: m.X[i], Y: m.Y[i]})
      }
    }
    if len(xys) == 0 {
      continue
    }
    s, err := plotter.NewScatter(xys)
    if err != nil {
      return nil, err
    }
    s.GlyphStyle = glyphStyle(plotutil.Color(k))
    s.GlyphStyle.Radius = vg.Points(4)
    p.Add(s)
    p.Legend.Add(level, s)
  }
  return p, nil
}

/* mean-variance trend
 * -------------------------------------------------------------------------- */

// Square root of the residual standard deviation against the average log
// count together with the fitted lowess trend.
func MeanVariancePlot(v diffexpr.VoomResult) (*plot.Plot, error) {
  p := plot.New()
  p.Title.Text   = "voom: mean-variance trend"
  p.X.Label.Text = "log2( count size + 0.5 )"
  p.Y.Label.Text = "Sqrt( standard deviation )"

  xys := make(plotter.XYs, len(v.TrendX))
  for i := range xys {
    xys[i] = plotter.XY{X: v.TrendX[i], Y: v.TrendY[i]}
  }
  s, err := plotter.NewScatter(xys)
  if err != nil {
    return nil, err
  }
  s.GlyphStyle = glyphStyle(colorOther)
  s.GlyphStyle.Radius = vg.Points(1)
  p.Add(s)

  lx, ly := diffexpr.Lowess(v.TrendX, v.TrendY, diffexpr.DefaultVoomOptions().Span)
  fit := make(plotter.XYs, len(lx))
  for i := range fit {
    fit[i] = plotter.XY{X: lx[i], Y: ly[i]}
  }
  line, err := plotter.NewLine(fit)
  if err != nil {
    return nil, err
  }
  line.LineStyle = draw.LineStyle{Color: colorSignificant, Width: vg.Points(1.5)}
  p.Add(line)
  return p, nil
}
