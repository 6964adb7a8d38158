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

import "gonum.org/v1/gonum/mat"

/* -------------------------------------------------------------------------- */

const InterceptName = "(Intercept)"

// Origin of a design matrix column. Level is empty for the intercept and
// for continuous covariates.
type DesignTerm struct {
  Covariate string
  Level     string
}

// Design matrix with one row per sample and one column per model term.
type DesignMatrix struct {
  X       *mat.Dense
  Columns []string
  Terms   []DesignTerm
}

/* -------------------------------------------------------------------------- */

// Build a design matrix with an intercept followed by the given
// covariates. Factors are encoded with treatment contrasts (one
// indicator column for each observed level except the first observed
// level), numeric columns
// enter the model unchanged. Column names are the covariate name
// followed by the level, e.g. `genotypeVglut3-/-'.
func NewDesignMatrix(samples Meta, covariates []string) (DesignMatrix, error) {
  n := samples.Length()
  if n == 0 {
    return DesignMatrix{}, fmt.Errorf("%w: no samples", ErrEmptyMatrix)
  }
  columns := [][]float64{}
  d := DesignMatrix{}

  intercept := make([]float64, n)
  for i := range intercept {
    intercept[i] = 1.0
  }
  columns   = append(columns,   intercept)
  d.Columns = append(d.Columns, InterceptName)
  d.Terms   = append(d.Terms,   DesignTerm{})

  for _, name := range covariates {
    switch v := samples.GetMeta(name).(type) {
    case Factor:
      v = v.DropLevels()
      if v.HasMissing() {
        return DesignMatrix{}, fmt.Errorf("%w: factor `%s' has missing values", ErrMetadata, name)
      }
      for k := 1; k < v.NLevels(); k++ {
        c := make([]float64, n)
        for i := 0; i < n; i++ {
          if v.Codes[i] == k {
            c[i] = 1.0
          }
        }
        columns   = append(columns,   c)
        d.Columns = append(d.Columns, name+v.Levels[k])
        d.Terms   = append(d.Terms,   DesignTerm{Covariate: name, Level: v.Levels[k]})
      }
    case []float64:
      for i := 0; i < n; i++ {
        if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
          return DesignMatrix{}, fmt.Errorf("%w: covariate `%s' is not finite for sample %d", ErrMetadata, name, i)
        }
      }
      c := make([]float64, n)
      copy(c, v)
      columns   = append(columns,   c)
      d.Columns = append(d.Columns, name)
      d.Terms   = append(d.Terms,   DesignTerm{Covariate: name})
    case nil:
      return DesignMatrix{}, fmt.Errorf("%w: covariate `%s' not found", ErrMetadata, name)
    default:
      return DesignMatrix{}, fmt.Errorf("%w: covariate `%s' is neither a factor nor numeric", ErrMetadata, name)
    }
  }
  d.X = mat.NewDense(n, len(columns), nil)
  for j, c := range columns {
    d.X.SetCol(j, c)
  }
  if err := d.CheckRank(); err != nil {
    return DesignMatrix{}, err
  }
  return d, nil
}

/* -------------------------------------------------------------------------- */

func (d DesignMatrix) NCoefficients() int {
  return len(d.Columns)
}

func (d DesignMatrix) NSamples() int {
  n, _ := d.X.Dims()
  return n
}

// Return an error wrapping ErrRankDeficient if the columns are linearly
// dependent or if there are fewer samples than columns.
func (d DesignMatrix) CheckRank() error {
  n, p := d.X.Dims()
  if n < p {
    return fmt.Errorf("%w: %d samples for %d coefficients", ErrRankDeficient, n, p)
  }
  var svd mat.SVD
  if ok := svd.Factorize(d.X, mat.SVDNone); !ok {
    return fmt.Errorf("%w: singular value decomposition failed", ErrRankDeficient)
  }
  if r := svd.Rank(1e-7); r < p {
    return fmt.Errorf("%w: rank %d for %d coefficients %v", ErrRankDeficient, r, p, d.Columns)
  }
  return nil
}

// Index of the column encoding the given level of a factor covariate,
// or of a continuous covariate if level is empty.
func (d DesignMatrix) Column(covariate, level string) (int, error) {
  for j, t := range d.Terms {
    if t.Covariate == covariate && t.Level == level {
      return j, nil
    }
  }
  if level == "" {
    return -1, fmt.Errorf("design matrix has no column for covariate `%s'", covariate)
  }
  return -1, fmt.Errorf("design matrix has no column for level `%s' of `%s'", level, covariate)
}

func (d DesignMatrix) ColumnByName(name string) (int, error) {
  for j, c := range d.Columns {
    if c == name {
      return j, nil
    }
  }
  return -1, fmt.Errorf("design matrix has no column `%s'", name)
}
