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

import "context"
import "os"
import "path/filepath"
import "testing"

import "github.com/pbenner/diffexpr/lib/remote"

/* -------------------------------------------------------------------------- */

func TestConfig1(t *testing.T) {
  filename := filepath.Join(t.TempDir(), "config.yaml")
  content  := `
project: SRP123456
quality_threshold: 0.7
source:
  dir: /data/recount3
filter:
  min_count: 5
`
  if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
    t.Fatal(err)
  }
  config, err := LoadConfig(filename)
  if err != nil {
    t.Fatal(err)
  }
  if config.Project != "SRP123456" || config.QualityThreshold != 0.7 || config.Filter.MinCount != 5 {
    t.Error("test failed")
  }
  // defaults are kept
  if config.Filter.MinTotalCount != 15 || config.HeatmapGenes != 50 || len(config.Schema.Attributes) != 3 {
    t.Error("test failed")
  }
  if config.Source.URL != Recount3URL || config.Source.Dir != "/data/recount3" {
    t.Error("test failed")
  }
  // url and dir are both set
  if err := config.Verify(); err == nil {
    t.Error("test failed")
  }
  config.Source.URL = ""
  if err := config.Verify(); err != nil {
    t.Error(err)
  }
  s, err := config.Source.New(context.Background())
  if err != nil {
    t.Fatal(err)
  }
  if d, ok := s.(remote.Dir); !ok || d.Root != "/data/recount3" {
    t.Error("test failed")
  }
  if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
    t.Error("test failed")
  }
}

func TestConfig2(t *testing.T) {
  config := DefaultConfig()
  if config.Project != Vglut3Project {
    t.Error("test failed")
  }
  if err := config.Verify(); err != nil {
    t.Error(err)
  }
  config.Project = "SRP123456"
  if err := config.Verify(); err != nil {
    t.Error(err)
  }
  c := config
  c.Project = ""
  if c.Verify() == nil {
    t.Error("test failed")
  }
  c = config
  c.QualityThreshold = 1.5
  if c.Verify() == nil {
    t.Error("test failed")
  }
  c = config
  c.Covariates = []string{"age", "sex"}
  if c.Verify() == nil {
    t.Error("test failed")
  }
  c = config
  c.Covariates = []string{"age"}
  if c.Verify() == nil {
    t.Error("test failed")
  }
  c = config
  c.Filter.Group = "batch"
  if c.Verify() == nil {
    t.Error("test failed")
  }
  r := config.Recount3(remote.NewDir("/tmp"))
  if r.Project != "SRP123456" || r.Organism != "mouse" || r.Annotation != "gencode_v23" {
    t.Error("test failed")
  }
}
