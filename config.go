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
import "fmt"
import "io/ioutil"

import "gopkg.in/yaml.v3"

import "github.com/pbenner/diffexpr/lib/remote"

/* -------------------------------------------------------------------------- */

// Location of the data repository. Exactly one of URL, Dir or S3Bucket
// must be set.
type SourceConfig struct {
  URL               string `yaml:"url,omitempty"`
  Dir               string `yaml:"dir,omitempty"`
  S3Bucket          string `yaml:"s3_bucket,omitempty"`
  S3Prefix          string `yaml:"s3_prefix,omitempty"`
  S3Region          string `yaml:"s3_region,omitempty"`
  S3Endpoint        string `yaml:"s3_endpoint,omitempty"`
  S3PathStyle       bool   `yaml:"s3_path_style,omitempty"`
  S3AccessKeyID     string `yaml:"s3_access_key_id,omitempty"`
  S3SecretAccessKey string `yaml:"s3_secret_access_key,omitempty"`
  Debug             bool   `yaml:"-"`
}

type CoefficientConfig struct {
  Covariate string `yaml:"covariate"`
  Level     string `yaml:"level"`
}

type Config struct {
  Project          string            `yaml:"project"`
  ProjectHome      string            `yaml:"project_home"`
  Organism         string            `yaml:"organism"`
  Annotation       string            `yaml:"annotation"`
  Type             string            `yaml:"type"`
  Source           SourceConfig      `yaml:"source"`
  Schema           Schema            `yaml:"schema"`
  QualityThreshold float64           `yaml:"quality_threshold"`
  Filter           FilterOptions     `yaml:"filter"`
  Covariates       []string          `yaml:"covariates"`
  Coefficient      CoefficientConfig `yaml:"coefficient"`
  HeatmapGenes     int               `yaml:"heatmap_genes"`
  VolcanoLabels    int               `yaml:"volcano_labels"`
  MDSTop           int               `yaml:"mds_top"`
  Threads          int               `yaml:"threads"`
  UCSCServer       string            `yaml:"ucsc_server,omitempty"`
  UCSCGenome       string            `yaml:"ucsc_genome,omitempty"`
  Bibliography     string            `yaml:"bibliography,omitempty"`
}

func DefaultConfig() Config {
  return Config{
    Project         : Vglut3Project,
    ProjectHome     : "data_sources/sra",
    Organism        : "mouse",
    Annotation      : "gencode_v23",
    Type            : "gene",
    Source          : SourceConfig{URL: Recount3URL},
    Schema          : DefaultSchema(),
    QualityThreshold: 0.6,
    Filter          : DefaultFilterOptions(),
    Covariates      : []string{"genotype", "age", "tonotopic_location", QualityColumn},
    Coefficient     : CoefficientConfig{Covariate: "genotype", Level: "Vglut3-/-"},
    HeatmapGenes    : 50,
    VolcanoLabels   : 3,
    MDSTop          : 500,
    Threads         : 1 }
}

// Read a YAML configuration file. Values not present in the file keep
// their defaults.
func LoadConfig(filename string) (Config, error) {
  config := DefaultConfig()
  content, err := ioutil.ReadFile(filename)
  if err != nil {
    return Config{}, err
  }
  if err := yaml.Unmarshal(content, &config); err != nil {
    return Config{}, fmt.Errorf("%s: %v", filename, err)
  }
  return config, nil
}

func (config Config) Verify() error {
  if config.Project == "" {
    return fmt.Errorf("no project specified")
  }
  if err := config.Source.Verify(); err != nil {
    return err
  }
  if !(config.QualityThreshold >= 0 && config.QualityThreshold <= 1) {
    return fmt.Errorf("quality threshold must be within [0,1]")
  }
  if config.HeatmapGenes < 1 {
    return fmt.Errorf("number of heatmap genes must be positive")
  }
  if config.MDSTop < 1 {
    return fmt.Errorf("number of MDS genes must be positive")
  }
  if config.VolcanoLabels < 0 {
    return fmt.Errorf("number of volcano labels must not be negative")
  }
  attributes := make(map[string]bool)
  for _, a := range config.Schema.Attributes {
    if a.Name == "" {
      return fmt.Errorf("schema contains an attribute without name")
    }
    attributes[a.Name] = true
  }
  found := false
  for _, c := range config.Covariates {
    if !attributes[c] && c != QualityColumn {
      return fmt.Errorf("covariate `%s' is not declared in the schema", c)
    }
    if c == config.Coefficient.Covariate {
      found = true
    }
  }
  if !found {
    return fmt.Errorf("coefficient covariate `%s' is not a covariate of the model", config.Coefficient.Covariate)
  }
  if g := config.Filter.Group; g != "" && !attributes[g] {
    return fmt.Errorf("filter group `%s' is not declared in the schema", g)
  }
  return nil
}

func (config Config) Recount3(source remote.Source) Recount3 {
  r := NewRecount3(source, config.Project)
  r.ProjectHome = config.ProjectHome
  r.Organism    = config.Organism
  r.Annotation  = config.Annotation
  r.Type        = config.Type
  return r
}

/* -------------------------------------------------------------------------- */

func (config SourceConfig) Verify() error {
  n := 0
  for _, s := range []string{config.URL, config.Dir, config.S3Bucket} {
    if s != "" {
      n++
    }
  }
  if n != 1 {
    return fmt.Errorf("exactly one data source (url, dir or s3 bucket) must be specified")
  }
  return nil
}

func (config SourceConfig) New(ctx context.Context) (remote.Source, error) {
  if err := config.Verify(); err != nil {
    return nil, err
  }
  switch {
  case config.Dir != "":
    return remote.NewDir(config.Dir), nil
  case config.S3Bucket != "":
    s, err := remote.NewS3(ctx, remote.S3Config{
      Bucket         : config.S3Bucket,
      Prefix         : config.S3Prefix,
      Region         : config.S3Region,
      Endpoint       : config.S3Endpoint,
      PathStyle      : config.S3PathStyle,
      AccessKeyID    : config.S3AccessKeyID,
      SecretAccessKey: config.S3SecretAccessKey })
    if err != nil {
      return nil, err
    }
    return s, nil
  default:
    s := remote.NewHTTP(config.URL)
    s.Debug = config.Debug
    return s, nil
  }
}
