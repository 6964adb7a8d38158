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

import _ "embed"
import "fmt"
import "html/template"
import "io"
import "math"
import "os"
import "path/filepath"
import "strings"

import "gonum.org/v1/plot"
import "gonum.org/v1/plot/vg"

import "github.com/pbenner/diffexpr"

/* -------------------------------------------------------------------------- */

//go:embed report.html.tmpl
var reportTemplate string

// Significance level of adjusted p-values used in the narrative and the
// volcano plot.
const FDR = 0.05

/* -------------------------------------------------------------------------- */

type Figure struct {
  Name    string
  Title   string
  Caption string
  Width   vg.Length
  Height  vg.Length
  Plot    *plot.Plot
}

func (f Figure) Filename() string {
  return f.Name + ".png"
}

// Summary of the differential expression results for the narrative.
type Summary struct {
  Genes       int
  Significant int
  Up          int
  Down        int
  Top         []string
}

type Report struct {
  Analysis     diffexpr.Analysis
  Bibliography *Bibliography
  // gene symbol descriptions, may be nil
  Descriptions map[string]string
  Figures      []Figure
  // number of rows of the result table shown in the document
  TopRows      int
}

/* -------------------------------------------------------------------------- */

func summarize(t diffexpr.DETable, n int) Summary {
  s := Summary{Genes: t.Length()}
  for i := 0; i < t.Length(); i++ {
    if t.AdjPValue[i] < FDR {
      s.Significant++
      if t.LogFC[i] > 0 {
        s.Up++
      } else {
        s.Down++
      }
    }
  }
  for _, i := range t.OrderByP() {
    if len(s.Top) >= n || math.IsNaN(t.PValue[i]) {
      break
    }
    s.Top = append(s.Top, t.Symbol[i])
  }
  return s
}

// Names of the factors used for grouping samples in figures. The
// coefficient covariate comes first.
func groupingFactors(config diffexpr.Config) []string {
  r := []string{config.Coefficient.Covariate}
  for _, name := range []string{"age"} {
    if name != r[0] {
      r = append(r, name)
    }
  }
  return r
}

// Create all figures of the analysis. Figures that require missing
// factors are skipped.
func NewReport(a diffexpr.Analysis, bibliography *Bibliography) (*Report, error) {
  if bibliography == nil {
    bibliography = DefaultBibliography()
  }
  r := &Report{Analysis: a, Bibliography: bibliography, TopRows: 20}
  add := func(name, title, caption string, p *plot.Plot) {
    r.Figures = append(r.Figures, Figure{Name: name, Title: title, Caption: caption, Width: 6*vg.Inch, Height: 4.5*vg.Inch, Plot: p})
  }
  names := groupingFactors(a.Config)

  for _, name := range names {
    f, err := a.Annotated.Factor(name)
    if err != nil {
      continue
    }
    p, err := ViolinPlot(a.Annotated.Quality(), f, "Assigned gene proportion", name, "assignedgene_prop", a.Config.QualityThreshold)
    if err != nil {
      return nil, err
    }
    add("quality_"+name, fmt.Sprintf("Quality by %s", name),
      fmt.Sprintf("Proportion of reads assigned to genes for all %d samples grouped by %s. The dashed line marks the quality threshold %g.",
        a.Annotated.NSamples(), name, a.Config.QualityThreshold), p)
  }
  if p, err := MeanVariancePlot(a.Voom); err != nil {
    return nil, err
  } else {
    add("voom", "Mean-variance trend", "Gene-wise square root residual standard deviations against average log counts with the lowess trend used to compute precision weights.", p)
  }
  if p, err := VolcanoPlot(a.Table, FDR, a.Config.VolcanoLabels); err != nil {
    return nil, err
  } else {
    add("volcano", "Volcano plot",
      fmt.Sprintf("Genes with adjusted p-value below %g are shown in red, the %d most significant genes are labelled.", FDR, a.Config.VolcanoLabels), p)
  }
  if a.Heatmap.Values != nil {
    annotations := []diffexpr.Factor{}
    annotationNames := []string{}
    for _, name := range names {
      if f, ok := a.Voom.Samples.GetMetaFactor(name); ok {
        annotations     = append(annotations, f)
        annotationNames = append(annotationNames, name)
      }
    }
    p, err := HeatmapPlot(a.Heatmap, annotationNames, annotations)
    if err != nil {
      return nil, err
    }
    r.Figures = append(r.Figures, Figure{Name: "heatmap", Title: "Heatmap",
      Caption: fmt.Sprintf("Row standardized log-CPM values of the %d genes with smallest adjusted p-value. Genes and samples are ordered by complete linkage clustering.", len(a.Heatmap.GeneIds)),
      Width: 7*vg.Inch, Height: 9*vg.Inch, Plot: p})
  }
  if a.MDS.X != nil {
    for _, name := range names {
      f, ok := a.Voom.Samples.GetMetaFactor(name)
      if !ok {
        continue
      }
      p, err := MDSPlot(a.MDS, f, fmt.Sprintf("MDS (%s)", name))
      if err != nil {
        return nil, err
      }
      add("mds_"+name, fmt.Sprintf("MDS plot by %s", name),
        fmt.Sprintf("Multidimensional scaling based on the leading log fold changes of the top %d genes between each pair of samples.", a.Config.MDSTop), p)
    }
  }
  return r, nil
}

/* -------------------------------------------------------------------------- */

func (r *Report) Summary() Summary {
  return summarize(r.Analysis.Table, r.Analysis.Config.VolcanoLabels)
}

// Rows of the result table ordered by p-value.
func (r *Report) TopTable() diffexpr.DETable {
  idx := r.Analysis.Table.OrderByP()
  if len(idx) > r.TopRows {
    idx = idx[0:r.TopRows]
  }
  return r.Analysis.Table.Subset(idx)
}

type TableRow struct {
  GeneId, Symbol, Description string
  LogFC, AveExpr, T, PValue, AdjPValue, B float64
}

func (r *Report) TopRowsTable() []TableRow {
  t := r.TopTable()
  d := make([]string, t.Length())
  if r.Descriptions != nil {
    d = t.Descriptions(r.Descriptions)
  }
  rows := make([]TableRow, t.Length())
  for i := range rows {
    rows[i] = TableRow{t.GeneId[i], t.Symbol[i], d[i], t.LogFC[i], t.AveExpr[i], t.T[i], t.PValue[i], t.AdjPValue[i], t.B[i]}
  }
  return rows
}

/* -------------------------------------------------------------------------- */

func (r *Report) template() (*template.Template, error) {
  funcs := template.FuncMap{
    "cite": func(ids ...string) (string, error) {
      return r.Bibliography.Cite(ids...)
    },
    "float": func(format string, v float64) string {
      if math.IsNaN(v) {
        return "NA"
      }
      return fmt.Sprintf(format, v)
    },
    "join": strings.Join,
  }
  return template.New("report").Funcs(funcs).Parse(reportTemplate)
}

func (r *Report) WriteHTML(w io.Writer) error {
  t, err := r.template()
  if err != nil {
    return err
  }
  return t.Execute(w, r)
}

func (r *Report) SaveFigures(dir string) error {
  for _, f := range r.Figures {
    if err := f.Plot.Save(f.Width, f.Height, filepath.Join(dir, f.Filename())); err != nil {
      return fmt.Errorf("saving figure `%s' failed: %v", f.Name, err)
    }
  }
  return nil
}

// Write figures and index.html into the given directory.
func (r *Report) Save(dir string) error {
  if err := os.MkdirAll(dir, 0755); err != nil {
    return err
  }
  if err := r.SaveFigures(dir); err != nil {
    return err
  }
  f, err := os.Create(filepath.Join(dir, "index.html"))
  if err != nil {
    return err
  }
  if err := r.WriteHTML(f); err != nil {
    f.Close()
    return err
  }
  return f.Close()
}
