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

import "bytes"
import "math"
import "strings"
import "testing"

/* -------------------------------------------------------------------------- */

func TestMeta1(t *testing.T) {
  f, _ := NewFactor([]string{"x", "y", "x"}, nil)
  m := NewMeta(
    []string{"name", "value", "count", "group"},
    []interface{}{[]string{"a", "b", "c"}, []float64{3, 1, 2}, []int{1, 2, 3}, f})
  if m.Length() != 3 || m.MetaLength() != 4 {
    t.Error("test failed")
  }
  s, err := m.Sort("value", false)
  if err != nil {
    t.Fatal(err)
  }
  if r := s.GetMetaStr("name"); r[0] != "b" || r[1] != "c" || r[2] != "a" {
    t.Error("test failed")
  }
  if g, ok := s.GetMetaFactor("group"); !ok || g.At(0) != "y" {
    t.Error("test failed")
  }
  if _, err := m.Sort("missing", false); err == nil {
    t.Error("test failed")
  }
  m.AddMeta("value", []float64{0, 0, 0})
  if m.MetaLength() != 4 || m.GetMetaFloat("value")[0] != 0 {
    t.Error("test failed")
  }
  c := m.Clone()
  c.GetMetaStr("name")[0] = "z"
  if m.GetMetaStr("name")[0] != "a" {
    t.Error("test failed")
  }
}

func TestMeta2(t *testing.T) {
  table := "# comment\nrail_id\tvalue\n\"1\"\t0.5\n2\tNA\n"
  m := Meta{}
  if err := m.ReadTable(strings.NewReader(table)); err != nil {
    t.Fatal(err)
  }
  if m.Length() != 2 || m.GetMetaStr("rail_id")[0] != "1" {
    t.Error("test failed")
  }
  v, err := m.ParseFloat("value")
  if err != nil {
    t.Fatal(err)
  }
  if v[0] != 0.5 || !math.IsNaN(v[1]) {
    t.Error("test failed")
  }
  if err := m.ReadTable(strings.NewReader("a\tb\n1\n")); err == nil {
    t.Error("test failed")
  }
}

func TestMeta3(t *testing.T) {
  m := NewMeta([]string{"gene_id", "P.Value"}, []interface{}{[]string{"g1", ""}, []float64{0.5, math.NaN()}})
  var buffer bytes.Buffer
  if err := m.WriteTable(&buffer, true, OptionMetaSeparator{"\t"}); err != nil {
    t.Fatal(err)
  }
  lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
  if len(lines) != 3 || !strings.Contains(lines[2], "NA") {
    t.Error("test failed")
  }
}

func TestMeta4(t *testing.T) {
  m := NewMeta([]string{"x"}, []interface{}{[]int{1, 2, 3, 4, 5, 6}})
  lines := strings.Split(strings.TrimRight(m.PrintPretty(4), "\n"), "\n")
  // header, two rows, gap, two rows
  if len(lines) != 6 || strings.TrimSpace(lines[3]) != "..." || strings.TrimSpace(lines[5]) != "6" {
    t.Errorf("test failed: %v", lines)
  }
  if lines := strings.Split(strings.TrimRight(m.PrintPretty(10), "\n"), "\n"); len(lines) != 7 {
    t.Error("test failed")
  }
}
