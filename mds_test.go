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
import "math"
import "testing"

import "gonum.org/v1/gonum/mat"

/* -------------------------------------------------------------------------- */

func TestMDS1(t *testing.T) {
  e := mat.NewDense(2, 3, []float64{
    0, 1, 3,
    0, 0, 4 })
  d := LeadingLogFCDistances(e, 2)
  if math.Abs(d.At(0, 1) - math.Sqrt(0.5)) > 1e-12 || math.Abs(d.At(0, 2) - math.Sqrt(12.5)) > 1e-12 {
    t.Error("test failed")
  }
  // top gene only
  d = LeadingLogFCDistances(e, 1)
  if d.At(0, 1) != 1 || d.At(0, 2) != 4 || d.At(1, 2) != 4 {
    t.Error("test failed")
  }
}

func TestMDS2(t *testing.T) {
  // one-dimensional configuration is reproduced up to sign and shift
  e := mat.NewDense(1, 3, []float64{0, 1, 3})
  r, err := PlotMDS(e, []string{"s1", "s2", "s3"}, 500)
  if err != nil {
    t.Fatal(err)
  }
  if math.Abs(math.Abs(r.X[1] - r.X[0]) - 1) > 1e-8 || math.Abs(math.Abs(r.X[2] - r.X[0]) - 3) > 1e-8 {
    t.Errorf("test failed: %v", r.X)
  }
  for i := range r.Y {
    if math.Abs(r.Y[i]) > 1e-6 {
      t.Error("test failed")
    }
  }
  if math.Abs(r.VarExplained[0] - 1) > 1e-8 || r.SampleIds[2] != "s3" {
    t.Error("test failed")
  }
}

func TestMDS3(t *testing.T) {
  if _, err := PlotMDS(mat.NewDense(2, 2, nil), []string{"a", "b"}, 10); !errors.Is(err, ErrEmptyMatrix) {
    t.Error("test failed")
  }
  if _, err := PlotMDS(nil, nil, 10); !errors.Is(err, ErrEmptyMatrix) {
    t.Error("test failed")
  }
}
