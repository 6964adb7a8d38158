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
import "math/rand"
import "testing"

/* -------------------------------------------------------------------------- */

// Eight samples in a full factorial design of genotype, age and
// location plus one sample of low quality. The first de genes are
// up-regulated four-fold in knockout samples.
func newSimulatedExperiment(t *testing.T, genes, de int, seed int64) Experiment {
  rng := rand.New(rand.NewSource(seed))
  quality := []float64{0.81, 0.73, 0.77, 0.69, 0.88, 0.74, 0.90, 0.79, 0.35}
  n := len(quality)

  attributes := make([]string, n)
  assigned   := make([]float64, n)
  total      := make([]float64, n)
  for j := 0; j < n; j++ {
    genotype := "wildtype"
    if j >= 4 && j < 8 {
      genotype = "Vglut3-/-"
    }
    attributes[j] = attributeString(genotype, fmt.Sprintf("P%d", 21 + 39*(j%2)), []string{"apex", "base"}[(j/2)%2])
    assigned  [j] = quality[j]*1e6
    total     [j] = 1e6
  }
  counts := make([][]float64, genes)
  for i := range counts {
    mu := 100.0 + 3000.0*rng.Float64()
    counts[i] = make([]float64, n)
    for j := 0; j < n; j++ {
      m := mu
      if i < de && j >= 4 && j < 8 {
        m *= 4
      }
      counts[i][j] = math.Round(m*math.Exp(0.1*rng.NormFloat64()))
    }
  }
  return newTestExperiment(t, counts, attributes, assigned, total)
}

/* -------------------------------------------------------------------------- */

func TestAnalysis1(t *testing.T) {
  config := DefaultConfig()
  config.Project = "SRP000002"
  a, err := Analyze(newSimulatedExperiment(t, 300, 25, 3), config, LmFitOptions{Threads: 2})
  if err != nil {
    t.Fatal(err)
  }
  if a.Filtered.Retention.SamplesAfter != 8 || a.Filtered.Retention.GenesAfter != 300 {
    t.Errorf("test failed: %s", a.Filtered.Retention)
  }
  if a.Coefficient != 1 || a.Table.Coefficient != "genotypeVglut3-/-" {
    t.Error("test failed")
  }
  for i := range a.Table.GeneId {
    if a.Table.GeneId[i] != a.Voom.GeneIds[i] {
      t.Error("test failed")
    }
  }
  // differentially expressed genes are detected
  found := 0
  for i := 0; i < 25; i++ {
    if a.Table.AdjPValue[i] < 0.05 && a.Table.LogFC[i] > 1 {
      found++
    }
  }
  if found < 20 {
    t.Errorf("test failed: %d genes found", found)
  }
  falsePositives := 0
  for i := 25; i < 300; i++ {
    if a.Table.AdjPValue[i] < 0.05 {
      falsePositives++
    }
  }
  if falsePositives > 15 {
    t.Errorf("test failed: %d false positives", falsePositives)
  }
  if len(a.Heatmap.GeneIds) != 50 || len(a.Heatmap.RowOrder) != 50 || len(a.Heatmap.ColOrder) != 8 {
    t.Error("test failed")
  }
  if len(a.MDS.X) != 8 || !(a.MDS.VarExplained[0] >= a.MDS.VarExplained[1]) {
    t.Error("test failed")
  }
  // stages hold their own copies
  if a.Annotated.NSamples() != 9 || a.Voom.NSamples() != 8 {
    t.Error("test failed")
  }
}

func TestAnalysis2(t *testing.T) {
  config := DefaultConfig()
  config.QualityThreshold = 0.95
  if _, err := Analyze(newSimulatedExperiment(t, 50, 5, 4), config, LmFitOptions{}); err == nil {
    t.Error("test failed")
  }
  config = DefaultConfig()
  config.Coefficient.Level = "het"
  if _, err := Analyze(newSimulatedExperiment(t, 50, 5, 4), config, LmFitOptions{}); err == nil {
    t.Error("test failed")
  }
}
