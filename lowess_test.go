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

/* -------------------------------------------------------------------------- */

func TestLowess1(t *testing.T) {
  x := []float64{3, 1, 7, 2, 9, 5, 4, 8, 6, 0}
  y := make([]float64, len(x))
  for i := range x {
    y[i] = 2*x[i] + 1
  }
  xs, ys := Lowess(x, y, 0.8)
  for i := range xs {
    if xs[i] != float64(i) {
      t.Error("test failed")
    }
    if math.Abs(ys[i] - (2*xs[i] + 1)) > 1e-8 {
      t.Errorf("test failed: %v", ys)
    }
  }
}

func TestLowess2(t *testing.T) {
  if xs, ys := Lowess([]float64{2}, []float64{3}, 0.5); len(xs) != 1 || ys[0] != 3 {
    t.Error("test failed")
  }
  // constant data
  x := []float64{}
  y := []float64{}
  for i := 0; i < 20; i++ {
    x = append(x, float64(i%7))
    y = append(y, 4)
  }
  _, ys := Lowess(x, y, 0.3)
  for i := range ys {
    if math.Abs(ys[i] - 4) > 1e-10 {
      t.Errorf("test failed: %v", ys)
    }
  }
}

func TestInterpolation(t *testing.T) {
  f := newLinearInterpolator([]float64{0, 1, 1, 2}, []float64{0, 1, 3, 4})
  if r := f.Eval(0.5); math.Abs(r - 1) > 1e-12 {
    t.Error("test failed")
  }
  if r := f.Eval(1.5); math.Abs(r - 3) > 1e-12 {
    t.Error("test failed")
  }
  if f.Eval(-1) != 0 || f.Eval(5) != 4 {
    t.Error("test failed")
  }
  if !math.IsNaN(newLinearInterpolator(nil, nil).Eval(1)) {
    t.Error("test failed")
  }
}
