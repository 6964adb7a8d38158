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

package export

/* -------------------------------------------------------------------------- */

import "context"
import "database/sql"
import "math"
import "os"
import "path/filepath"
import "strings"
import "testing"
import "time"

import "github.com/pbenner/diffexpr"

/* -------------------------------------------------------------------------- */

func testAnalysis() diffexpr.Analysis {
  a := diffexpr.Analysis{}
  a.Config = diffexpr.DefaultConfig()
  a.Config.Project = "SRP000001"
  genotype, _ := diffexpr.NewFactor([]string{"wildtype", "Vglut3-/-", "wildtype"}, []string{"wildtype", "Vglut3-/-"})
  a.Annotated.SampleIds = []string{"SRR1", "SRR2", "SRR3"}
  a.Annotated.Samples   = diffexpr.NewMeta(
    []string{"genotype", diffexpr.QualityColumn},
    []interface{}{genotype, []float64{0.8, 0.7, math.NaN()}})
  a.Voom.SampleIds = []string{"SRR1", "SRR2"}
  a.Filtered.Retention = diffexpr.Retention{SamplesBefore: 3, SamplesAfter: 2, GenesBefore: 10, GenesAfter: 3}
  a.Fit.DfPrior = 4.5
  a.Table = diffexpr.DETable{
    Coefficient: "genotypeVglut3-/-",
    GeneId     : []string{"g1", "g2", "g3"},
    Symbol     : []string{"A", "B", "C"},
    LogFC      : []float64{1, -2, 0.1},
    AveExpr    : []float64{5, 6, 7},
    T          : []float64{3, -5, 0.2},
    PValue     : []float64{0.01, 0.001, math.NaN()},
    AdjPValue  : []float64{0.015, 0.003, math.NaN()},
    B          : []float64{1, 2, -3} }
  return a
}

/* -------------------------------------------------------------------------- */

func TestSQLite(t *testing.T) {
  filename := filepath.Join(t.TempDir(), "result.db")
  ctx      := context.Background()
  a        := testAnalysis()
  // writing twice replaces the tables
  for i := 0; i < 2; i++ {
    if err := SQLite(ctx, filename, a); err != nil {
      t.Fatal(err)
    }
  }
  db, err := sql.Open("sqlite", filename)
  if err != nil {
    t.Fatal(err)
  }
  defer db.Close()

  n := 0
  if err := db.QueryRow(`SELECT COUNT(*) FROM results WHERE "adj.P.Val" < 0.05`).Scan(&n); err != nil {
    t.Fatal(err)
  }
  if n != 2 {
    t.Error("test failed")
  }
  var symbol string
  if err := db.QueryRow(`SELECT symbol FROM results WHERE "P.Value" IS NULL`).Scan(&symbol); err != nil || symbol != "C" {
    t.Error("test failed")
  }
  if err := db.QueryRow(`SELECT COUNT(*) FROM samples WHERE retained = 1 AND genotype = 'wildtype'`).Scan(&n); err != nil || n != 1 {
    t.Error("test failed")
  }
}

func TestMetrics(t *testing.T) {
  a := testAnalysis()
  r := NewMetrics(a, 0.05, 2*time.Second)
  families, err := r.Gather()
  if err != nil {
    t.Fatal(err)
  }
  if len(families) != 5 {
    t.Error("test failed")
  }
  filename := filepath.Join(t.TempDir(), "diffexpr.prom")
  if err := WriteMetrics(filename, a, 0.05, time.Second); err != nil {
    t.Fatal(err)
  }
  content, err := os.ReadFile(filename)
  if err != nil {
    t.Fatal(err)
  }
  s := string(content)
  if !strings.Contains(s, `diffexpr_significant_genes{coefficient="genotypeVglut3-/-",direction="up",project="SRP000001"} 1`) {
    t.Error("test failed")
  }
  if !strings.Contains(s, `diffexpr_samples{project="SRP000001",stage="after"} 2`) {
    t.Error("test failed")
  }
}
