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
import "database/sql"
import "fmt"

import _ "github.com/go-sql-driver/mysql"

/* import gene descriptions from ucsc
 * -------------------------------------------------------------------------- */

const UCSCServer = "genome@tcp(genome-mysql.soe.ucsc.edu:3306)"

// Query gene descriptions from the kgXref table of a UCSC genome
// database (e.g. mm10). Only the given symbols are returned. If a symbol
// has several descriptions, the first one is used.
func ImportGeneDescriptionsFromUCSC(ctx context.Context, server, genome string, symbols []string) (map[string]string, error) {
  if server == "" {
    server = UCSCServer
  }
  /* open connection */
  db, err := sql.Open("mysql", fmt.Sprintf("%s/%s", server, genome))
  if err != nil {
    return nil, err
  }
  defer db.Close()

  if err := db.PingContext(ctx); err != nil {
    return nil, err
  }
  return queryGeneDescriptions(ctx, db, symbols)
}

func queryGeneDescriptions(ctx context.Context, db *sql.DB, symbols []string) (map[string]string, error) {
  result := make(map[string]string)
  if len(symbols) == 0 {
    return result, nil
  }
  /* variables for storing a single database row */
  var i_symbol, i_description sql.NullString

  query := "SELECT geneSymbol, description FROM kgXref WHERE geneSymbol IN (?"
  args  := []interface{}{symbols[0]}
  for _, s := range symbols[1:] {
    query += ", ?"
    args   = append(args, s)
  }
  query += ")"

  rows, err := db.QueryContext(ctx, query, args...)
  if err != nil {
    return nil, err
  }
  defer rows.Close()
  for rows.Next() {
    if err := rows.Scan(&i_symbol, &i_description); err != nil {
      return nil, err
    }
    if !i_symbol.Valid || !i_description.Valid {
      continue
    }
    if _, ok := result[i_symbol.String]; !ok {
      result[i_symbol.String] = i_description.String
    }
  }
  return result, rows.Err()
}

// Description of each gene in the table, empty if unknown.
func (t DETable) Descriptions(descriptions map[string]string) []string {
  r := make([]string, t.Length())
  for i, s := range t.Symbol {
    r[i] = descriptions[s]
  }
  return r
}
