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

func newDesignSamples() Meta {
  genotype, _ := NewFactor(
    []string{"wildtype", "wildtype", "wildtype", "Vglut3-/-", "Vglut3-/-", "Vglut3-/-", "wildtype"},
    []string{"wildtype", "het", "Vglut3-/-"})
  age, _ := NewFactor([]string{"P21", "P60", "P21", "P60", "P21", "P60", "P60"}, nil)
  location, _ := NewFactor([]string{"apex", "apex", "base", "base", "apex", "base", "base"}, nil)
  return NewMeta(
    []string{"genotype", "age", "tonotopic_location", QualityColumn},
    []interface{}{genotype, age, location, []float64{0.71, 0.83, 0.77, 0.69, 0.88, 0.74, 0.62}})
}

/* -------------------------------------------------------------------------- */

func TestDesign1(t *testing.T) {
  d, err := NewDesignMatrix(newDesignSamples(), DefaultConfig().Covariates)
  if err != nil {
    t.Fatal(err)
  }
  // unused level `het' is dropped
  if d.NCoefficients() != 5 || d.NSamples() != 7 {
    t.Error("test failed")
  }
  if d.Columns[0] != InterceptName || d.Columns[1] != "genotypeVglut3-/-" || d.Columns[4] != QualityColumn {
    t.Error("test failed")
  }
  if j, err := d.Column("genotype", "Vglut3-/-"); err != nil || j != 1 {
    t.Error("test failed")
  }
  if j, err := d.ColumnByName("ageP60"); err != nil || j != 2 {
    t.Error("test failed")
  }
  if _, err := d.Column("genotype", "het"); err == nil {
    t.Error("test failed")
  }
  if d.X.At(3, 1) != 1 || d.X.At(0, 1) != 0 || d.X.At(6, 4) != 0.62 {
    t.Error("test failed")
  }
}

func TestDesign2(t *testing.T) {
  samples := newDesignSamples()
  // collinear covariates
  if _, err := NewDesignMatrix(samples, []string{"genotype", "genotype"}); !errors.Is(err, ErrRankDeficient) {
    t.Error("test failed")
  }
  if _, err := NewDesignMatrix(samples, []string{"unknown"}); !errors.Is(err, ErrMetadata) {
    t.Error("test failed")
  }
  // missing values
  f, _ := NewFactor([]string{"a", "", "b", "a", "b", "a", "b"}, nil)
  samples.AddMeta("group", f)
  if _, err := NewDesignMatrix(samples, []string{"group"}); !errors.Is(err, ErrMetadata) {
    t.Error("test failed")
  }
  // more coefficients than samples
  s := samples.Subset([]int{0, 3})
  if _, err := NewDesignMatrix(s, []string{"genotype", "age"}); !errors.Is(err, ErrRankDeficient) {
    t.Error("test failed")
  }
}
