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

/* -------------------------------------------------------------------------- */

// Data source unreachable or unknown project identifier.
var ErrDataSource = errors.New("data source unavailable")

// An expected metadata field is missing or has an invalid value.
var ErrMetadata = errors.New("invalid sample metadata")

// No genes or samples left for model fitting.
var ErrEmptyMatrix = errors.New("empty expression matrix")

// The design matrix does not have full column rank.
var ErrRankDeficient = errors.New("design matrix is rank deficient")
