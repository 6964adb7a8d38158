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
import "sort"

/* -------------------------------------------------------------------------- */

// Column oriented table used for sample and gene annotations. Supported
// column types are []string, []float64, []int and Factor.
type Meta struct {
  MetaName []string
  MetaData []interface{}
  rows int
}

/* constructors
 * -------------------------------------------------------------------------- */

func NewMeta(names []string, data []interface{}) Meta {
  meta := Meta{}
  if len(names) != len(data) {
    panic("NewMeta(): invalid parameters!")
  }
  for i := 0; i < len(names); i++ {
    meta.AddMeta(names[i], data[i])
  }
  return meta
}

// Deep copy the Meta object.
func (m *Meta) Clone() Meta {
  result := Meta{}
  for i := 0; i < m.MetaLength(); i++ {
    switch v := m.MetaData[i].(type) {
    case []string:
      r := make([]string, len(v))
      copy(r, v)
      result.AddMeta(m.MetaName[i], r)
    case []float64:
      r := make([]float64, len(v))
      copy(r, v)
      result.AddMeta(m.MetaName[i], r)
    case []int:
      r := make([]int, len(v))
      copy(r, v)
      result.AddMeta(m.MetaName[i], r)
    case Factor:
      result.AddMeta(m.MetaName[i], v.Clone())
    default: panic("Clone(): invalid type!")
    }
  }
  result.rows = m.rows
  return result
}

/* -------------------------------------------------------------------------- */

// Returns the number of rows.
func (m *Meta) Length() int {
  return m.rows
}

// Returns the number of columns.
func (m *Meta) MetaLength() int {
  return len(m.MetaName)
}

func metaColumnLength(meta interface{}) int {
  switch v := meta.(type) {
  case []string:  return len(v)
  case []float64: return len(v)
  case []int:     return len(v)
  case Factor:    return v.Length()
  default: panic("AddMeta(): invalid type!")
  }
}

// Add a column. An existing column with the same name is replaced.
func (m *Meta) AddMeta(name string, meta interface{}) {
  n := metaColumnLength(meta)
  if m.MetaLength() > 0 && n != m.rows {
    panic("AddMeta(): column has invalid length!")
  }
  m.rows = n
  for i := 0; i < m.MetaLength(); i++ {
    if m.MetaName[i] == name {
      m.MetaData[i] = meta
      return
    }
  }
  m.MetaData = append(m.MetaData, meta)
  m.MetaName = append(m.MetaName, name)
}

func (m *Meta) DeleteMeta(name string) {
  for i := 0; i < m.MetaLength(); i++ {
    if m.MetaName[i] == name {
      m.MetaName = append(m.MetaName[:i], m.MetaName[i+1:]...)
      m.MetaData = append(m.MetaData[:i], m.MetaData[i+1:]...)
      return
    }
  }
}

func (m *Meta) RenameMeta(nameOld, nameNew string) {
  for i := 0; i < m.MetaLength(); i++ {
    if m.MetaName[i] == nameOld {
      m.MetaName[i] = nameNew
    }
  }
}

func (m *Meta) HasMeta(name string) bool {
  return m.GetMeta(name) != nil
}

func (m *Meta) GetMeta(name string) interface{} {
  for i := 0; i < m.MetaLength(); i++ {
    if m.MetaName[i] == name {
      return m.MetaData[i]
    }
  }
  return nil
}

func (m *Meta) GetMetaStr(name string) []string {
  switch r := m.GetMeta(name).(type) {
  case []string: return r
  case Factor:   return r.Strings()
  }
  return []string{}
}

func (m *Meta) GetMetaFloat(name string) []float64 {
  r := m.GetMeta(name)
  if r != nil {
    return r.([]float64)
  }
  return []float64{}
}

func (m *Meta) GetMetaInt(name string) []int {
  r := m.GetMeta(name)
  if r != nil {
    return r.([]int)
  }
  return []int{}
}

func (m *Meta) GetMetaFactor(name string) (Factor, bool) {
  r, ok := m.GetMeta(name).(Factor)
  return r, ok
}

/* -------------------------------------------------------------------------- */

// Return a new Meta object with a subset of the rows from
// this object.
func (meta *Meta) Subset(indices []int) Meta {
  n := len(indices)
  m := meta.MetaLength()
  data := []interface{}{}

  for j := 0; j < m; j++ {
    switch v := meta.MetaData[j].(type) {
    case []string :
      l := make([]string, n)
      for i := 0; i < n; i++ {
        l[i] = v[indices[i]]
      }
      data = append(data, l)
    case []float64:
      l := make([]float64, n)
      for i := 0; i < n; i++ {
        l[i] = v[indices[i]]
      }
      data = append(data, l)
    case []int    :
      l := make([]int, n)
      for i := 0; i < n; i++ {
        l[i] = v[indices[i]]
      }
      data = append(data, l)
    case Factor   :
      data = append(data, v.Subset(indices))
    }
  }
  names := make([]string, m)
  copy(names, meta.MetaName)
  result := NewMeta(names, data)
  result.rows = n
  return result
}

/* sorting
 * -------------------------------------------------------------------------- */

func (meta *Meta) sortedIndices(name string, reverse bool) ([]int, error) {
  t := meta.GetMeta(name)
  if t == nil {
    return []int{}, errors.New("meta column not found")
  }
  j := make([]int, meta.Length())
  for i := range j {
    j[i] = i
  }
  var less func(a, b int) bool
  switch s := t.(type) {
  case []float64: less = func(a, b int) bool { return s[a] < s[b] }
  case []int    : less = func(a, b int) bool { return s[a] < s[b] }
  case []string : less = func(a, b int) bool { return s[a] < s[b] }
  case Factor   : less = func(a, b int) bool { return s.Codes[a] < s.Codes[b] }
  default:
    panic("invalid type for sorting")
  }
  if reverse {
    sort.SliceStable(j, func(a, b int) bool { return less(j[b], j[a]) })
  } else {
    sort.SliceStable(j, func(a, b int) bool { return less(j[a], j[b]) })
  }
  return j, nil
}

// Sort rows by the given column. Ties keep their original order.
func (meta *Meta) Sort(name string, reverse bool) (Meta, error) {
  j, err := meta.sortedIndices(name, reverse)
  if err != nil {
    return Meta{}, err
  }
  return meta.Subset(j), nil
}
