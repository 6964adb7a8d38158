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

import "math"
import "testing"

import "gonum.org/v1/gonum/mat"

/* -------------------------------------------------------------------------- */

func newTestTable(p []float64) DETable {
  n := len(p)
  t := DETable{
    Coefficient: "genotypeVglut3-/-",
    GeneId     : make([]string,  n),
    Symbol     : make([]string,  n),
    LogFC      : make([]float64, n),
    AveExpr    : make([]float64, n),
    T          : make([]float64, n),
    PValue     : p,
    B          : make([]float64, n) }
  for i := 0; i < n; i++ {
    t.GeneId[i] = string(rune('a' + i))
    t.Symbol[i] = string(rune('A' + i))
    t.LogFC [i] = float64(i)
  }
  t.AdjPValue = AdjustBH(p)
  return t
}

/* -------------------------------------------------------------------------- */

func TestAdjustBH(t *testing.T) {
  equal := func(a, b []float64) bool {
    for i := range a {
      if math.IsNaN(a[i]) != math.IsNaN(b[i]) {
        return false
      }
      if !math.IsNaN(a[i]) && math.Abs(a[i] - b[i]) > 1e-12 {
        return false
      }
    }
    return true
  }
  if r := AdjustBH([]float64{0.01, 0.04, 0.03}); !equal(r, []float64{0.03, 0.04, 0.04}) {
    t.Errorf("test failed: %v", r)
  }
  if r := AdjustBH([]float64{math.NaN(), 0.02, 0.01}); !equal(r, []float64{math.NaN(), 0.02, 0.02}) {
    t.Errorf("test failed: %v", r)
  }
  if r := AdjustBH([]float64{0.9, 0.8}); !equal(r, []float64{0.9, 0.9}) {
    t.Errorf("test failed: %v", r)
  }
  if r := AdjustBH(nil); len(r) != 0 {
    t.Error("test failed")
  }
}

func TestTopTable1(t *testing.T) {
  table := newTestTable([]float64{0.5, math.NaN(), 0.01, 0.2, 0.01})
  if o := table.OrderByP(); o[0] != 2 || o[1] != 4 || o[2] != 3 || o[3] != 0 || o[4] != 1 {
    t.Errorf("test failed: %v", o)
  }
  if o := table.TopGenes(3); len(o) != 3 || o[0] != 2 || o[1] != 4 || o[2] != 3 {
    t.Errorf("test failed: %v", o)
  }
  if o := table.TopGenes(60); len(o) != 5 {
    t.Error("test failed")
  }
  s := table.Subset([]int{3, 0})
  if s.Length() != 2 || s.GeneId[0] != "d" || s.LogFC[1] != 0 || s.AdjPValue[0] != table.AdjPValue[3] {
    t.Error("test failed")
  }
  m := table.AsMeta()
  if m.Length() != 5 || m.MetaName[6] != "adj.P.Val" || m.GetMetaStr("symbol")[2] != "C" {
    t.Error("test failed")
  }
}

func TestTopTable2(t *testing.T) {
  d := DesignMatrix{X: mat.NewDense(3, 2, nil), Columns: []string{InterceptName, "genotypeVglut3-/-"}}
  fit := EBayesFit{
    LinearFit: LinearFit{
      Design      : d,
      Coefficients: mat.NewDense(3, 2, []float64{1, 0.1, 2, 3, 3, -2}),
      Sigma       : []float64{1, 1, 1},
      Amean       : []float64{5, 6, 7} },
    T     : mat.NewDense(3, 2, []float64{1, 0.2, 2, 6, 3, -4}),
    PValue: mat.NewDense(3, 2, []float64{0.3, 0.8, 0.1, 0.001, 0.05, 0.01}),
    Lods  : mat.NewDense(3, 2, []float64{-1, -5, 0, 4, 1, 2}) }

  t1, err := TopTable(fit, []string{"A", "B", "C"}, []string{"a", "b", "c"}, 1, SortNone)
  if err != nil {
    t.Fatal(err)
  }
  if t1.Coefficient != "genotypeVglut3-/-" || t1.GeneId[0] != "a" || t1.LogFC[2] != -2 || t1.AveExpr[1] != 6 {
    t.Error("test failed")
  }
  t2, err := TopTable(fit, []string{"A", "B", "C"}, []string{"a", "b", "c"}, 1, SortByP)
  if err != nil {
    t.Fatal(err)
  }
  if t2.GeneId[0] != "b" || t2.GeneId[1] != "c" || t2.GeneId[2] != "a" || t2.B[0] != 4 {
    t.Error("test failed")
  }
  if math.Abs(t2.AdjPValue[0] - 0.003) > 1e-12 {
    t.Error("test failed")
  }
  if _, err := TopTable(fit, []string{"A"}, []string{"a"}, 1, SortNone); err == nil {
    t.Error("test failed")
  }
  if _, err := TopTable(fit, []string{"A", "B", "C"}, []string{"a", "b", "c"}, 2, SortNone); err == nil {
    t.Error("test failed")
  }
}
