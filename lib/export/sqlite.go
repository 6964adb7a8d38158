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
import "fmt"
import "math"
import "strings"

import _ "modernc.org/sqlite"

import "github.com/pbenner/diffexpr"

/* -------------------------------------------------------------------------- */

func quoteIdentifier(name string) string {
  return `"` + strings.Replace(name, `"`, `""`, -1) + `"`
}

func sqlType(column interface{}) (string, error) {
  switch column.(type) {
  case []string, diffexpr.Factor:
    return "TEXT", nil
  case []float64:
    return "REAL", nil
  case []int:
    return "INTEGER", nil
  default:
    return "", fmt.Errorf("unsupported column type %T", column)
  }
}

// Value of cell (i, j), missing values are NULL.
func sqlValue(meta diffexpr.Meta, i, j int) interface{} {
  switch v := meta.MetaData[j].(type) {
  case []string:
    return v[i]
  case []float64:
    if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
      return nil
    }
    return v[i]
  case []int:
    return v[i]
  case diffexpr.Factor:
    if v.Codes[i] < 0 {
      return nil
    }
    return v.At(i)
  }
  return nil
}

/* -------------------------------------------------------------------------- */

// Replace table name in db with the content of meta.
func WriteTable(ctx context.Context, db *sql.DB, name string, meta diffexpr.Meta) error {
  columns := make([]string, meta.MetaLength())
  for j := range columns {
    t, err := sqlType(meta.MetaData[j])
    if err != nil {
      return fmt.Errorf("table `%s', column `%s': %v", name, meta.MetaName[j], err)
    }
    columns[j] = quoteIdentifier(meta.MetaName[j]) + " " + t
  }
  tx, err := db.BeginTx(ctx, nil)
  if err != nil {
    return err
  }
  defer tx.Rollback()

  if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS " + quoteIdentifier(name)); err != nil {
    return fmt.Errorf("drop table `%s': %w", name, err)
  }
  if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdentifier(name), strings.Join(columns, ", "))); err != nil {
    return fmt.Errorf("create table `%s': %w", name, err)
  }
  placeholders := strings.TrimSuffix(strings.Repeat("?, ", meta.MetaLength()), ", ")
  stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdentifier(name), placeholders))
  if err != nil {
    return err
  }
  defer stmt.Close()

  args := make([]interface{}, meta.MetaLength())
  for i := 0; i < meta.Length(); i++ {
    for j := range args {
      args[j] = sqlValue(meta, i, j)
    }
    if _, err := stmt.ExecContext(ctx, args...); err != nil {
      return fmt.Errorf("insert into `%s': %w", name, err)
    }
  }
  return tx.Commit()
}

// Export the result table and the sample annotation of the analysis to
// an sqlite database. Existing tables are replaced.
func SQLite(ctx context.Context, filename string, a diffexpr.Analysis) error {
  db, err := sql.Open("sqlite", filename)
  if err != nil {
    return fmt.Errorf("open sqlite: %w", err)
  }
  defer db.Close()

  samples := a.Annotated.Samples.Clone()
  samples.AddMeta("sample_id", a.Annotated.SampleIds)
  retained := make(map[string]bool)
  for _, id := range a.Voom.SampleIds {
    retained[id] = true
  }
  r := make([]int, len(a.Annotated.SampleIds))
  for j, id := range a.Annotated.SampleIds {
    if retained[id] {
      r[j] = 1
    }
  }
  samples.AddMeta("retained", r)

  if err := WriteTable(ctx, db, "samples", samples); err != nil {
    return err
  }
  if err := WriteTable(ctx, db, "results", a.Table.AsMeta()); err != nil {
    return err
  }
  return nil
}
