/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package category supports declaring data categories, such as chart axes,
// bar-chart lanes, line series, or table columns.  A DataBuilder may Define
// one Category and hold that category's data in its children; other
// DataBuilders may be Tagged as belonging to categories defined elsewhere.
package category

import (
	"strings"
	"unicode"

	"github.com/ilhamster/overdoseviz/server/go/util"
)

const (
	categoryDefinedIDKey   = "category_defined_id"
	categoryDescriptionKey = "category_description"
	categoryDisplayNameKey = "category_display_name"
	categoryIDsKey         = "category_ids"
)

// Category defines a data category.
type Category struct {
	id, description, displayName string
}

// New returns a new Category with the provided ID, display name, and
// description.
func New(id, displayName, description string) *Category {
	return &Category{
		id:          id,
		description: description,
		displayName: displayName,
	}
}

// Define defines a category.  If multiple categories are Defined on the same
// DataBuilder, only the last takes effect.
func (c *Category) Define() util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(categoryDefinedIDKey, c.id),
		util.StringProperty(categoryDisplayNameKey, c.displayName),
		util.StringProperty(categoryDescriptionKey, c.description),
	)
}

// ID returns the category's ID.
func (c *Category) ID() string {
	return c.id
}

// DisplayName returns the category's display name.
func (c *Category) DisplayName() string {
	return c.displayName
}

// Tag annotates an item as belonging to a category.  Multiple Categories may
// Tag the same item in succession.
func (c *Category) Tag() util.PropertyUpdate {
	return util.StringsPropertyExtended(categoryIDsKey, c.id)
}

// Tag annotates with the provided set of Categories.
func Tag(cats ...*Category) util.PropertyUpdate {
	categoryIDs := make([]string, len(cats))
	for idx, cat := range cats {
		categoryIDs[idx] = cat.id
	}
	return util.StringsPropertyExtended(categoryIDsKey, categoryIDs...)
}

// Slug returns an identifier derived from a free-form label: lowercased, with
// each run of non-alphanumeric characters replaced by a single underscore.
// For example, "Drug overdose deaths involving any opioid" becomes
// "drug_overdose_deaths_involving_any_opioid".
func Slug(label string) string {
	var sb strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingSep = false
			sb.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return sb.String()
}

// Set is an ordered set of Categories derived from data labels, such as the
// age groups or drug types of a chart.
type Set struct {
	prefix string
	cats   []*Category
	byName map[string]*Category
}

// NewSet returns a Set with one Category per distinct label, in first-seen
// order.  Each Category's ID is prefix followed by the label's Slug, and its
// display name and description are the label itself.
func NewSet(prefix string, labels ...string) *Set {
	ret := &Set{
		prefix: prefix,
		byName: map[string]*Category{},
	}
	for _, label := range labels {
		ret.Add(label)
	}
	return ret
}

// Add returns the Category for the provided label, adding it if necessary.
func (s *Set) Add(label string) *Category {
	if cat, ok := s.byName[label]; ok {
		return cat
	}
	cat := New(s.prefix+Slug(label), label, label)
	s.byName[label] = cat
	s.cats = append(s.cats, cat)
	return cat
}

// Get returns the Category for the provided label, if there is one.
func (s *Set) Get(label string) (*Category, bool) {
	cat, ok := s.byName[label]
	return cat, ok
}

// All returns the Set's Categories in first-seen order.
func (s *Set) All() []*Category {
	return append([]*Category{}, s.cats...)
}

// Len returns the number of Categories in the Set.
func (s *Set) Len() int {
	return len(s.cats)
}
