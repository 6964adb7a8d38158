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

import "errors"
import "testing"

/* -------------------------------------------------------------------------- */

func newVoomExperiment(t *testing.T, n int) NormalizedExperiment {
  counts := [][]float64{}
  for i := 1; i <= 20; i++ {
    row := make([]float64, n)
    for j := range row {
      row[j] = float64(10*i + 7*((i*j) % 5))
    }
    counts = append(counts, row)
  }
  for j := range counts[5] {
    counts[5][j] = 0
  }
  r, err := CalcNormFactors(newTMMExperiment(t, counts), DefaultTMMOptions())
  if err != nil {
    t.Fatal(err)
  }
  return r
}

/* -------------------------------------------------------------------------- */

func TestVoom1(t *testing.T) {
  r, err := Voom(newVoomExperiment(t, 4), newTwoGroupDesign(t, 4), DefaultVoomOptions())
  if err != nil {
    t.Fatal(err)
  }
  // the all-zero gene is not part of the trend
  if len(r.TrendX) != 19 || len(r.TrendY) != 19 {
    t.Error("test failed")
  }
  if g, n := r.Weights.Dims(); g != 20 || n != 4 {
    t.Error("test failed")
  }
  for i := 0; i < 20; i++ {
    for j := 0; j < 4; j++ {
      if !(r.Weights.At(i, j) > 0) {
        t.Error("test failed")
      }
    }
  }
}

func TestVoom2(t *testing.T) {
  // no residual degrees of freedom, no gene has a defined variance
  if _, err := Voom(newVoomExperiment(t, 2), newTwoGroupDesign(t, 2), DefaultVoomOptions()); !errors.Is(err, ErrEmptyMatrix) {
    t.Error("test failed")
  }
}
