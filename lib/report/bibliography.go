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

package report

/* -------------------------------------------------------------------------- */

import _ "embed"
import "fmt"
import "io"
import "io/ioutil"
import "sort"
import "strings"

import "gopkg.in/yaml.v3"

/* -------------------------------------------------------------------------- */

//go:embed bibliography.yaml
var defaultBibliography []byte

type Name struct {
  Family string `yaml:"family"`
  Given  string `yaml:"given"`
  // institutional authors
  Literal string `yaml:"literal"`
}

type Date struct {
  DateParts [][]int `yaml:"date-parts"`
}

// Bibliography entry in CSL data format.
type Reference struct {
  Id             string `yaml:"id"`
  Type           string `yaml:"type"`
  Author         []Name `yaml:"author"`
  Issued         Date   `yaml:"issued"`
  Title          string `yaml:"title"`
  ContainerTitle string `yaml:"container-title"`
  Volume         string `yaml:"volume"`
  Issue          string `yaml:"issue"`
  Page           string `yaml:"page"`
  DOI            string `yaml:"DOI"`
  URL            string `yaml:"URL"`
}

// References and the set of cited entries.
type Bibliography struct {
  References []Reference
  cited      map[string]bool
}

/* -------------------------------------------------------------------------- */

// Parse a CSL-YAML document, which is either a list of references or a
// mapping with a `references' entry.
func ReadBibliography(r io.Reader) (*Bibliography, error) {
  content, err := ioutil.ReadAll(r)
  if err != nil {
    return nil, err
  }
  var node yaml.Node
  if err := yaml.Unmarshal(content, &node); err != nil {
    return nil, err
  }
  references := []Reference{}
  if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
    err = node.Content[0].Decode(&references)
  } else {
    document := struct {
      References []Reference `yaml:"references"`
    }{}
    err = node.Decode(&document)
    references = document.References
  }
  if err != nil {
    return nil, err
  }
  ids := make(map[string]bool)
  for _, ref := range references {
    if ref.Id == "" {
      return nil, fmt.Errorf("bibliography contains an entry without id")
    }
    if ids[ref.Id] {
      return nil, fmt.Errorf("duplicate bibliography entry `%s'", ref.Id)
    }
    ids[ref.Id] = true
  }
  return &Bibliography{References: references, cited: make(map[string]bool)}, nil
}

func DefaultBibliography() *Bibliography {
  b, err := ReadBibliography(strings.NewReader(string(defaultBibliography)))
  if err != nil {
    panic(err)
  }
  return b
}

/* -------------------------------------------------------------------------- */

func (ref Reference) Year() string {
  if len(ref.Issued.DateParts) > 0 && len(ref.Issued.DateParts[0]) > 0 {
    return fmt.Sprintf("%d", ref.Issued.DateParts[0][0])
  }
  return "n.d."
}

func (name Name) String() string {
  if name.Literal != "" {
    return name.Literal
  }
  initials := ""
  for _, s := range strings.Fields(name.Given) {
    initials += s[0:1]
  }
  if initials == "" {
    return name.Family
  }
  return name.Family + " " + initials
}

func (ref Reference) firstAuthor() string {
  if len(ref.Author) == 0 {
    return ""
  }
  if ref.Author[0].Literal != "" {
    return ref.Author[0].Literal
  }
  return ref.Author[0].Family
}

// Author-year label, e.g. `Law et al. 2014'.
func (ref Reference) Label() string {
  switch len(ref.Author) {
  case 0:
    return ref.Title + " " + ref.Year()
  case 1:
    return ref.firstAuthor() + " " + ref.Year()
  case 2:
    return ref.firstAuthor() + " and " + ref.Author[1].Family + " " + ref.Year()
  default:
    return ref.firstAuthor() + " et al. " + ref.Year()
  }
}

// Full reference in a compact Vancouver-like style.
func (ref Reference) Format() string {
  authors := make([]string, len(ref.Author))
  for i, a := range ref.Author {
    authors[i] = a.String()
  }
  s := strings.Join(authors, ", ")
  if s != "" {
    s += " "
  }
  s += fmt.Sprintf("(%s). %s.", ref.Year(), strings.TrimSuffix(ref.Title, "."))
  if ref.ContainerTitle != "" {
    s += " " + ref.ContainerTitle
    if ref.Volume != "" {
      s += " " + ref.Volume
      if ref.Issue != "" {
        s += "(" + ref.Issue + ")"
      }
    }
    if ref.Page != "" {
      s += ":" + ref.Page
    }
    s += "."
  }
  if ref.DOI != "" {
    s += " doi:" + ref.DOI
  }
  return s
}

/* -------------------------------------------------------------------------- */

func (b *Bibliography) find(id string) (Reference, bool) {
  for _, ref := range b.References {
    if ref.Id == id {
      return ref, true
    }
  }
  return Reference{}, false
}

// Mark the given entries as cited and return the in-text citation.
func (b *Bibliography) Cite(ids ...string) (string, error) {
  labels := make([]string, len(ids))
  for i, id := range ids {
    ref, ok := b.find(id)
    if !ok {
      return "", fmt.Errorf("unknown citation `%s'", id)
    }
    b.cited[id] = true
    labels[i] = ref.Label()
  }
  return "(" + strings.Join(labels, "; ") + ")", nil
}

// Cited references ordered by first author and year.
func (b *Bibliography) Cited() []Reference {
  r := []Reference{}
  for _, ref := range b.References {
    if b.cited[ref.Id] {
      r = append(r, ref)
    }
  }
  sort.SliceStable(r, func(i, j int) bool {
    if r[i].firstAuthor() != r[j].firstAuthor() {
      return r[i].firstAuthor() < r[j].firstAuthor()
    }
    return r[i].Year() < r[j].Year()
  })
  return r
}
