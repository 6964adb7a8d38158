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
import "math"

import "gonum.org/v1/gonum/mat"
import "gonum.org/v1/plot"
import "gonum.org/v1/plot/palette/moreland"
import "gonum.org/v1/plot/plotter"
import "gonum.org/v1/plot/plotutil"
import "gonum.org/v1/plot/vg"
import "gonum.org/v1/plot/vg/draw"

import "github.com/pbenner/diffexpr"

/* -------------------------------------------------------------------------- */

// Heatmap values with rows and columns permuted to the clustering order.
// Genes are drawn from top to bottom.
type heatmapGrid struct {
  values   *mat.Dense
  rowOrder []int
  colOrder []int
}

func (g heatmapGrid) Dims() (c, r int) {
  return len(g.colOrder), len(g.rowOrder)
}

func (g heatmapGrid) Z(c, r int) float64 {
  return g.values.At(g.rowOrder[len(g.rowOrder)-1-r], g.colOrder[c])
}

func (g heatmapGrid) X(c int) float64 {
  return float64(c)
}

func (g heatmapGrid) Y(r int) float64 {
  return float64(r)
}

/* -------------------------------------------------------------------------- */

func rectangle(x0, y0, x1, y1 float64) plotter.XYs {
  return plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// Heatmap of the top genes. Each annotation factor (one code per sample
// in the order of h.SampleIds) is drawn as a colour strip above the
// heatmap.
func HeatmapPlot(h diffexpr.Heatmap, names []string, annotations []diffexpr.Factor) (*plot.Plot, error) {
  if h.Values == nil || len(h.RowOrder) == 0 {
    return nil, fmt.Errorf("%w: heatmap has no genes", diffexpr.ErrEmptyMatrix)
  }
  if len(names) != len(annotations) {
    return nil, fmt.Errorf("number of annotation names and factors do not match")
  }
  grid := heatmapGrid{values: h.Values, rowOrder: h.RowOrder, colOrder: h.ColOrder}
  nc, nr := grid.Dims()

  // symmetric colour range around zero
  m := 0.0
  for i := 0; i < nr; i++ {
    for j := 0; j < nc; j++ {
      if v := math.Abs(h.Values.At(i, j)); !math.IsNaN(v) {
        m = math.Max(m, v)
      }
    }
  }
  if m == 0 {
    m = 1
  }
  cmap := moreland.SmoothBlueRed()
  cmap.SetMin(-m)
  cmap.SetMax( m)

  p := plot.New()
  p.Title.Text = fmt.Sprintf("Top %d genes (z-scores of log-CPM)", nr)
  p.Legend.Top  = true
  p.Legend.Left = false

  hm := plotter.NewHeatMap(grid, cmap.Palette(255))
  hm.Min = -m
  hm.Max =  m
  p.Add(hm)

  yticks := make([]plot.Tick, 0, nr+len(annotations))
  for r := 0; r < nr; r++ {
    yticks = append(yticks, plot.Tick{Value: float64(r), Label: h.Symbols[h.RowOrder[nr-1-r]]})
  }
  // annotation strips
  color := 0
  for k, f := range annotations {
    if f.Length() != nc {
      return nil, fmt.Errorf("annotation `%s' has %d entries, heatmap has %d samples", names[k], f.Length(), nc)
    }
    y := float64(nr + k) + 0.5
    seen := make([]bool, f.NLevels())
    for c := 0; c < nc; c++ {
      code := f.Codes[grid.colOrder[c]]
      poly, err := plotter.NewPolygon(rectangle(float64(c)-0.5, y-0.5, float64(c)+0.5, y+0.4))
      if err != nil {
        return nil, err
      }
      poly.LineStyle.Width = 0
      if code < 0 {
        poly.Color = colorOther
      } else {
        poly.Color = plotutil.Color(color + code)
      }
      p.Add(poly)
      if code >= 0 && !seen[code] {
        seen[code] = true
        p.Legend.Add(fmt.Sprintf("%s: %s", names[k], f.Levels[code]), poly)
      }
    }
    color += f.NLevels()
    yticks = append(yticks, plot.Tick{Value: y, Label: names[k]})
  }
  p.Y.Tick.Marker = plot.ConstantTicks(yticks)

  xticks := make([]plot.Tick, nc)
  for c := 0; c < nc; c++ {
    xticks[c] = plot.Tick{Value: float64(c), Label: h.SampleIds[grid.colOrder[c]]}
  }
  p.X.Tick.Marker = plot.ConstantTicks(xticks)
  p.X.Tick.Label.Rotation = math.Pi/2
  p.X.Tick.Label.XAlign   = draw.XRight
  p.X.Tick.Label.YAlign   = draw.YCenter
  p.Y.Tick.Label.Font.Size = vg.Points(6)
  return p, nil
}
