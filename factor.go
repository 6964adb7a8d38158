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
import "sort"

/* -------------------------------------------------------------------------- */

// A categorical column. Codes index into Levels, a code of -1 marks a
// missing value. The first level is the reference level of treatment
// contrasts.
type Factor struct {
  Levels []string
  Codes  []int
}

/* constructors
 * -------------------------------------------------------------------------- */

// Create a factor with the given levels. Values that are not among the
// levels cause an error. If levels is empty, the sorted set of distinct
// non-empty values is used.
func NewFactor(values, levels []string) (Factor, error) {
  if len(levels) == 0 {
    levels = distinctSorted(values)
  }
  index := make(map[string]int)
  for i, l := range levels {
    if _, ok := index[l]; ok {
      return Factor{}, fmt.Errorf("duplicate factor level `%s'", l)
    }
    index[l] = i
  }
  codes := make([]int, len(values))
  for i, v := range values {
    if v == "" {
      codes[i] = -1
      continue
    }
    if k, ok := index[v]; ok {
      codes[i] = k
    } else {
      return Factor{}, fmt.Errorf("value `%s' is not a valid level (levels: %v)", v, levels)
    }
  }
  l := make([]string, len(levels))
  copy(l, levels)
  return Factor{Levels: l, Codes: codes}, nil
}

func (f Factor) Clone() Factor {
  levels := make([]string, len(f.Levels))
  codes  := make([]int,    len(f.Codes))
  copy(levels, f.Levels)
  copy(codes,  f.Codes)
  return Factor{Levels: levels, Codes: codes}
}

/* -------------------------------------------------------------------------- */

func (f Factor) Length() int {
  return len(f.Codes)
}

func (f Factor) NLevels() int {
  return len(f.Levels)
}

// Value of the i-th element, or the empty string if missing.
func (f Factor) At(i int) string {
  if f.Codes[i] < 0 {
    return ""
  }
  return f.Levels[f.Codes[i]]
}

func (f Factor) Strings() []string {
  r := make([]string, f.Length())
  for i := range r {
    r[i] = f.At(i)
  }
  return r
}

func (f Factor) HasMissing() bool {
  for _, c := range f.Codes {
    if c < 0 {
      return true
    }
  }
  return false
}

// Return the index of a level or -1.
func (f Factor) LevelIndex(level string) int {
  for i, l := range f.Levels {
    if l == level {
      return i
    }
  }
  return -1
}

// Number of observations for each level.
func (f Factor) Table() []int {
  n := make([]int, len(f.Levels))
  for _, c := range f.Codes {
    if c >= 0 {
      n[c]++
    }
  }
  return n
}

func (f Factor) Subset(indices []int) Factor {
  codes := make([]int, len(indices))
  for i, j := range indices {
    codes[i] = f.Codes[j]
  }
  levels := make([]string, len(f.Levels))
  copy(levels, f.Levels)
  return Factor{Levels: levels, Codes: codes}
}

// Remove levels without observations. The order of the remaining levels
// is preserved.
func (f Factor) DropLevels() Factor {
  n      := f.Table()
  recode := make([]int, len(f.Levels))
  levels := []string{}
  for k, l := range f.Levels {
    if n[k] > 0 {
      recode[k] = len(levels)
      levels    = append(levels, l)
    }
  }
  codes := make([]int, len(f.Codes))
  for i, c := range f.Codes {
    if c < 0 {
      codes[i] = -1
    } else {
      codes[i] = recode[c]
    }
  }
  return Factor{Levels: levels, Codes: codes}
}

/* -------------------------------------------------------------------------- */

func distinctSorted(values []string) []string {
  m := make(map[string]struct{})
  r := []string{}
  for _, v := range values {
    if v == "" {
      continue
    }
    if _, ok := m[v]; !ok {
      m[v] = struct{}{}
      r    = append(r, v)
    }
  }
  sort.Strings(r)
  return r
}
