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
import "fmt"
import "math"
import "testing"

import "gonum.org/v1/gonum/mat"

/* -------------------------------------------------------------------------- */

// Experiment with the given counts (genes by samples) and sample
// attributes as found in recount3 metadata.
func newTestExperiment(t *testing.T, counts [][]float64, attributes []string, assigned, total []float64) Experiment {
  g := len(counts)
  n := len(attributes)
  geneIds   := make([]string, g)
  sampleIds := make([]string, n)
  x := mat.NewDense(g, n, nil)
  for i := range counts {
    geneIds[i] = fmt.Sprintf("ENSMUSG%05d.1", i)
    x.SetRow(i, counts[i])
  }
  a := make([]string, n)
  b := make([]string, n)
  for j := range sampleIds {
    sampleIds[j] = fmt.Sprintf("SRR%d", j)
    a[j] = fmt.Sprintf("%g", assigned[j])
    b[j] = fmt.Sprintf("%g", total[j])
  }
  e, err := NewExperiment(geneIds, sampleIds, x, Meta{},
    NewMeta([]string{AttributeColumn, AssignedColumn, TotalColumn}, []interface{}{attributes, a, b}))
  if err != nil {
    t.Fatal(err)
  }
  return e
}

func attributeString(genotype, age, location string) string {
  return fmt.Sprintf("age;;%s|genotype;;%s|tonotopic location;;%s", age, genotype, location)
}

/* -------------------------------------------------------------------------- */

func TestSampleAttributes(t *testing.T) {
  m, err := ParseSampleAttributes("genotype;;Vglut3-/-|tonotopic location;;apex|source_name;;a;;b")
  if err != nil {
    t.Fatal(err)
  }
  if m["genotype"] != "Vglut3-/-" || m["tonotopic_location"] != "apex" || m["source_name"] != "a;;b" {
    t.Error("test failed")
  }
  if _, err := ParseSampleAttributes("genotype"); err == nil {
    t.Error("test failed")
  }
  if m, err := ParseSampleAttributes(""); err != nil || len(m) != 0 {
    t.Error("test failed")
  }
}

func TestQuality(t *testing.T) {
  q := AssignedGeneProportion([]float64{50, 0, 10}, []float64{100, 0, 10})
  if q[0] != 0.5 || !math.IsNaN(q[1]) || q[2] != 1 {
    t.Error("test failed")
  }
}

func TestAnnotate1(t *testing.T) {
  e := newTestExperiment(t, [][]float64{{1, 2, 3}},
    []string{
      attributeString("wildtype",  "P21", "apex"),
      attributeString("Vglut3-/-", "P21", "base"),
      attributeString("Vglut3-/-", "P60", "apex") },
    []float64{60, 80, 0}, []float64{100, 100, 0})
  a, err := Annotate(e, DefaultSchema())
  if err != nil {
    t.Fatal(err)
  }
  f, err := a.Factor("genotype")
  if err != nil {
    t.Fatal(err)
  }
  if f.Levels[0] != "wildtype" || f.Codes[1] != 1 {
    t.Error("test failed")
  }
  if f, _ := a.Factor("age"); f.NLevels() != 2 {
    t.Error("test failed")
  }
  q := a.Quality()
  for _, v := range q[0:2] {
    if v < 0 || v > 1 {
      t.Error("test failed")
    }
  }
  if !math.IsNaN(q[2]) {
    t.Error("test failed")
  }
  // input is not modified
  if e.Samples.HasMeta("genotype") {
    t.Error("test failed")
  }
}

func TestAnnotate2(t *testing.T) {
  // invalid genotype
  e := newTestExperiment(t, [][]float64{{1, 2}},
    []string{
      attributeString("wildtype", "P21", "apex"),
      attributeString("het",      "P21", "base") },
    []float64{60, 80}, []float64{100, 100})
  if _, err := Annotate(e, DefaultSchema()); !errors.Is(err, ErrMetadata) {
    t.Error("test failed")
  }
  // missing attribute in one sample
  e = newTestExperiment(t, [][]float64{{1, 2}},
    []string{
      attributeString("wildtype", "P21", "apex"),
      "genotype;;wildtype|age;;P21" },
    []float64{60, 80}, []float64{100, 100})
  if _, err := Annotate(e, DefaultSchema()); !errors.Is(err, ErrMetadata) {
    t.Error("test failed")
  }
}
