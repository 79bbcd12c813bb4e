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

// Package mortality provides an in-memory model of drug-overdose mortality
// estimates, along with the filters and selections that feed each chart view.
//
// A Dataset is immutable once constructed: no Record is ever mutated or
// removed, so a single Dataset may be shared by any number of concurrent
// readers.
package mortality

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// Well-known field values.
const (
	PanelAllDrugs  = "All drug overdose deaths"
	PanelOpioid    = "Drug overdose deaths involving any opioid"
	PanelMethadone = "Drug overdose deaths involving methadone"
	PanelHeroin    = "Drug overdose deaths involving heroin"

	AgeAll         = "All ages"
	StubAllPersons = "All persons"
)

// DrugTypes returns the fixed drug-type panels, in display order.
func DrugTypes() []string {
	return []string{PanelAllDrugs, PanelOpioid, PanelMethadone, PanelHeroin}
}

// Record is a single mortality estimate.  Year and Estimate are NaN when
// their source text was not numeric.
type Record struct {
	Panel     string
	StubLabel string
	Age       string
	Year      float64
	Estimate  float64
}

// Dataset is a named, immutable set of Records.
type Dataset struct {
	Name    string
	Columns []string
	records []*Record
}

// New returns a new Dataset holding the provided records in order.
func New(name string, columns []string, records ...*Record) *Dataset {
	return &Dataset{
		Name:    name,
		Columns: columns,
		records: records,
	}
}

// Len returns the number of records in the receiver.
func (ds *Dataset) Len() int {
	return len(ds.records)
}

// Filter is a predicate over Records.  A nil Filter admits every Record.
type Filter func(r *Record) bool

// WithPanels admits records whose PANEL is one of the provided values.
func WithPanels(panels ...string) Filter {
	set := make(map[string]struct{}, len(panels))
	for _, panel := range panels {
		set[panel] = struct{}{}
	}
	return func(r *Record) bool {
		_, ok := set[r.Panel]
		return ok
	}
}

// WithAge admits records in the provided age group.
func WithAge(age string) Filter {
	return func(r *Record) bool {
		return r.Age == age
	}
}

// WithoutAge admits records outside the provided age group.
func WithoutAge(age string) Filter {
	return func(r *Record) bool {
		return r.Age != age
	}
}

// WithStubLabel admits records with the provided STUB_LABEL.
func WithStubLabel(stubLabel string) Filter {
	return func(r *Record) bool {
		return r.StubLabel == stubLabel
	}
}

// ConcatenateFilters returns a Filter admitting only those records admitted
// by all of the provided filters.
func ConcatenateFilters(filters ...Filter) Filter {
	return func(r *Record) bool {
		for _, filter := range filters {
			if filter != nil && !filter(r) {
				return false
			}
		}
		return true
	}
}

// ForEach invokes fn on each record admitted by filter, in load order.  It
// stops at, and returns, the first error fn returns.
func (ds *Dataset) ForEach(fn func(r *Record) error, filter Filter) error {
	for _, r := range ds.records {
		if filter != nil && !filter(r) {
			continue
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// Select returns the records admitted by filter, in load order.
func (ds *Dataset) Select(filter Filter) []*Record {
	ret := []*Record{}
	ds.ForEach(func(r *Record) error {
		ret = append(ret, r)
		return nil
	}, filter)
	return ret
}

// BarCategories returns the distinct STUB_LABELs of all-ages, all-drugs
// records, in first-seen order.
func (ds *Dataset) BarCategories() []string {
	ret := []string{}
	seen := map[string]struct{}{}
	ds.ForEach(func(r *Record) error {
		if _, ok := seen[r.StubLabel]; !ok {
			seen[r.StubLabel] = struct{}{}
			ret = append(ret, r.StubLabel)
		}
		return nil
	}, ConcatenateFilters(WithPanels(PanelAllDrugs), WithAge(AgeAll)))
	return ret
}

// BarSeries returns the all-ages, all-drugs records for the provided
// STUB_LABEL, in load order.
func (ds *Dataset) BarSeries(category string) []*Record {
	return ds.Select(ConcatenateFilters(
		WithPanels(PanelAllDrugs),
		WithAge(AgeAll),
		WithStubLabel(category),
	))
}

// AgeGroup is the set of records in one age group, ordered by ascending year.
type AgeGroup struct {
	Age     string
	Records []*Record
}

// AgeSeries returns the all-drugs records outside the all-ages group, grouped
// by age in first-seen order.  Each group's records are stably sorted by
// ascending year; records with a NaN year sort last.
func (ds *Dataset) AgeSeries() []*AgeGroup {
	ret := []*AgeGroup{}
	byAge := map[string]*AgeGroup{}
	ds.ForEach(func(r *Record) error {
		group, ok := byAge[r.Age]
		if !ok {
			group = &AgeGroup{Age: r.Age}
			byAge[r.Age] = group
			ret = append(ret, group)
		}
		group.Records = append(group.Records, r)
		return nil
	}, ConcatenateFilters(WithPanels(PanelAllDrugs), WithoutAge(AgeAll)))
	for _, group := range ret {
		sort.SliceStable(group.Records, func(a, b int) bool {
			return yearLess(group.Records[a].Year, group.Records[b].Year)
		})
	}
	return ret
}

func yearLess(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	return math.IsNaN(b) || a < b
}

// GridCell is one (year, drug type) cell of a Grid.  Record is nil when no
// record matched, in which case Estimate is 0.
type GridCell struct {
	Year     float64
	DrugType string
	Estimate float64
	Record   *Record
}

// Grid cross-tabulates years against drug types.
type Grid struct {
	// Distinct years, ascending.
	Years []float64
	// The fixed drug types, in display order.
	DrugTypes []string
	// Cells[y][d] is the cell for Years[y] and DrugTypes[d].
	Cells [][]*GridCell
}

// Records returns the records backing the receiver's cells, in grid order.
func (g *Grid) Records() []*Record {
	ret := []*Record{}
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.Record != nil {
				ret = append(ret, cell.Record)
			}
		}
	}
	return ret
}

// DrugYearGrid returns the all-ages, all-persons records of the fixed drug
// types, cross-tabulated by year.  Each cell holds the first matching
// record's estimate, or 0 when no record matches.
func (ds *Dataset) DrugYearGrid() *Grid {
	drugTypes := DrugTypes()
	records := ds.Select(ConcatenateFilters(
		WithPanels(drugTypes...),
		WithAge(AgeAll),
		WithStubLabel(StubAllPersons),
	))
	type key struct {
		year     float64
		drugType string
	}
	first := map[key]*Record{}
	for _, r := range records {
		k := key{r.Year, r.Panel}
		if _, ok := first[k]; !ok {
			first[k] = r
		}
	}
	grid := &Grid{
		Years:     SortedYears(records),
		DrugTypes: drugTypes,
	}
	for _, year := range grid.Years {
		row := make([]*GridCell, len(drugTypes))
		for idx, drugType := range drugTypes {
			cell := &GridCell{
				Year:     year,
				DrugType: drugType,
			}
			if r, ok := first[key{year, drugType}]; ok {
				cell.Record = r
				cell.Estimate = r.Estimate
			}
			row[idx] = cell
		}
		grid.Cells = append(grid.Cells, row)
	}
	return grid
}

// Years returns the distinct years among records, in first-seen order.  NaN
// years are omitted.
func Years(records []*Record) []float64 {
	ret := []float64{}
	seen := map[float64]struct{}{}
	for _, r := range records {
		if math.IsNaN(r.Year) {
			continue
		}
		if _, ok := seen[r.Year]; !ok {
			seen[r.Year] = struct{}{}
			ret = append(ret, r.Year)
		}
	}
	return ret
}

// SortedYears returns the distinct years among records, ascending.  NaN years
// are omitted.
func SortedYears(records []*Record) []float64 {
	ret := Years(records)
	sort.Float64s(ret)
	return ret
}

// MaxEstimate returns the largest finite estimate among records.  It
// returns false if there is none.
func MaxEstimate(records []*Record) (float64, bool) {
	ests := []float64{}
	for _, est := range estimates(records) {
		if !math.IsInf(est, 0) {
			ests = append(ests, est)
		}
	}
	if len(ests) == 0 {
		return 0, false
	}
	_, max := stats.Bounds(ests)
	return max, true
}

// FiniteOrZero returns v, or 0 if v is NaN or infinite.
func FiniteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func estimates(records []*Record) []float64 {
	ret := make([]float64, 0, len(records))
	for _, r := range records {
		if !math.IsNaN(r.Estimate) {
			ret = append(ret, r.Estimate)
		}
	}
	return ret
}

// Summary describes the non-NaN estimates of a set of records.
type Summary struct {
	// The number of records summarized, including NaN estimates.
	Records int
	// The number of records with a numeric estimate.
	Estimates int
	Min       float64
	Max       float64
	Mean      float64
}

// Summarize returns a Summary of the provided records.  With no numeric
// estimates, Min, Max, and Mean are NaN.
func Summarize(records []*Record) Summary {
	ests := estimates(records)
	ret := Summary{
		Records:   len(records),
		Estimates: len(ests),
		Min:       math.NaN(),
		Max:       math.NaN(),
		Mean:      math.NaN(),
	}
	if len(ests) > 0 {
		ret.Min, ret.Max = stats.Bounds(ests)
		ret.Mean = stats.Mean(ests)
	}
	return ret
}
