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

package diffexpr

/* -------------------------------------------------------------------------- */

import "fmt"
import "math"
import "sort"

/* -------------------------------------------------------------------------- */

type SortOrder int

const (
  SortNone SortOrder = iota
  SortByP
)

// Differential expression statistics of a single coefficient, one entry
// per gene.
type DETable struct {
  Coefficient string
  GeneId      []string
  Symbol      []string
  LogFC       []float64
  AveExpr     []float64
  T           []float64
  PValue      []float64
  AdjPValue   []float64
  B           []float64
}

func (t DETable) Length() int {
  return len(t.GeneId)
}

/* -------------------------------------------------------------------------- */

// Benjamini-Hochberg adjusted p-values. Missing values are kept and not
// counted.
func AdjustBH(p []float64) []float64 {
  r := make([]float64, len(p))
  i := []int{}
  for k := range p {
    if math.IsNaN(p[k]) {
      r[k] = math.NaN()
    } else {
      i = append(i, k)
    }
  }
  n := len(i)
  // decreasing p-values
  sort.SliceStable(i, func(a, b int) bool { return p[i[a]] > p[i[b]] })
  m := math.Inf(1)
  for k, j := range i {
    rank := float64(n - k)
    m = math.Min(m, float64(n)/rank*p[j])
    r[j] = math.Min(m, 1.0)
  }
  return r
}

/* -------------------------------------------------------------------------- */

// Extract the statistics of coefficient coef from an empirical Bayes fit.
// Genes are kept in the order of the fit unless SortByP is given.
func TopTable(fit EBayesFit, symbols []string, geneIds []string, coef int, order SortOrder) (DETable, error) {
  g := fit.NGenes()
  if coef < 0 || coef >= fit.Design.NCoefficients() {
    return DETable{}, fmt.Errorf("invalid coefficient index %d", coef)
  }
  if len(geneIds) != g || len(symbols) != g {
    return DETable{}, fmt.Errorf("gene annotation has %d entries, fit has %d genes", len(geneIds), g)
  }
  t := DETable{
    Coefficient: fit.Design.Columns[coef],
    GeneId     : append([]string{}, geneIds...),
    Symbol     : append([]string{}, symbols...),
    LogFC      : make([]float64, g),
    AveExpr    : append([]float64{}, fit.Amean...),
    T          : make([]float64, g),
    PValue     : make([]float64, g),
    B          : make([]float64, g) }
  for i := 0; i < g; i++ {
    t.LogFC [i] = fit.Coefficients.At(i, coef)
    t.T     [i] = fit.T           .At(i, coef)
    t.PValue[i] = fit.PValue      .At(i, coef)
    t.B     [i] = fit.Lods        .At(i, coef)
  }
  t.AdjPValue = AdjustBH(t.PValue)
  if order == SortByP {
    return t.Subset(t.OrderByP()), nil
  }
  return t, nil
}

// Indices of genes ordered by increasing p-value, ties and missing
// values keep their row order.
func (t DETable) OrderByP() []int {
  idx := seqInt(t.Length())
  sort.SliceStable(idx, func(a, b int) bool {
    pa := t.PValue[idx[a]]
    pb := t.PValue[idx[b]]
    if math.IsNaN(pb) {
      return !math.IsNaN(pa)
    }
    return pa < pb
  })
  return idx
}

func (t DETable) Subset(indices []int) DETable {
  sf := func(x []float64) []float64 {
    r := make([]float64, len(indices))
    for i, j := range indices {
      r[i] = x[j]
    }
    return r
  }
  return DETable{
    Coefficient: t.Coefficient,
    GeneId     : subsetStrings(t.GeneId, indices),
    Symbol     : subsetStrings(t.Symbol, indices),
    LogFC      : sf(t.LogFC),
    AveExpr    : sf(t.AveExpr),
    T          : sf(t.T),
    PValue     : sf(t.PValue),
    AdjPValue  : sf(t.AdjPValue),
    B          : sf(t.B) }
}

// Row indices of the n genes with smallest adjusted p-value. Ties are
// broken by row order and at most Length() indices are returned.
func (t DETable) TopGenes(n int) []int {
  idx := seqInt(t.Length())
  sort.SliceStable(idx, func(a, b int) bool {
    pa := t.AdjPValue[idx[a]]
    pb := t.AdjPValue[idx[b]]
    if math.IsNaN(pb) {
      return !math.IsNaN(pa)
    }
    return pa < pb
  })
  if n < 0 {
    n = 0
  }
  return idx[0:iMin(n, len(idx))]
}

/* -------------------------------------------------------------------------- */

func (t DETable) AsMeta() Meta {
  return NewMeta(
    []string{"gene_id", "symbol", "logFC", "AveExpr", "t", "P.Value", "adj.P.Val", "B"},
    []interface{}{t.GeneId, t.Symbol, t.LogFC, t.AveExpr, t.T, t.PValue, t.AdjPValue, t.B})
}
