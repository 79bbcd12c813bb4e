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

// Package render draws the overdose chart views into scene canvases.  Render
// is a pure function of a dataset and the UI state: it builds a fresh
// canvas, selects the requested mode on it, and returns the result.
package render

import (
	"math"
	"slices"
	"strconv"

	"github.com/ilhamster/overdoseviz/overdoseviz/analysis/mortality"
	chartmode "github.com/ilhamster/overdoseviz/overdoseviz/chart_mode"
	"github.com/ilhamster/overdoseviz/server/go/scene"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Axis titles shared by every view.
const (
	XAxisTitle = "Year"
	YAxisTitle = "Estimated deaths per 100 000 resident population"
)

// Scene classes.
const (
	barClass        = "bar"
	yearGroupClass  = "year-group"
	seriesClass     = "series"
	pointClass      = "point"
	legendClass     = "legend"
	infoboxClass    = "infobox"
	noDataClass     = "no-data"
	xAxisClass      = "x-axis"
	yAxisClass      = "y-axis"
	xAxisLabelClass = "x-axis-label"
	yAxisLabelClass = "y-axis-label"
)

// State is the UI state driving a render.
type State struct {
	Mode chartmode.Mode
	// The requested bar-chart category.  Unknown or empty values fall back to
	// the first category.
	Category string
}

// View is a rendered chart, along with the picker state the page needs.
type View struct {
	Canvas *scene.Canvas
	Mode   chartmode.Mode
	// The bar-chart categories, in first-seen order.
	Categories []string
	// The resolved bar-chart category; empty if there are no categories.
	Category string
}

// ResolveCategory returns the requested category if it is among categories,
// and otherwise the first category (or "" if there are none).
func ResolveCategory(categories []string, requested string) string {
	if slices.Contains(categories, requested) {
		return requested
	}
	if len(categories) == 0 {
		return ""
	}
	return categories[0]
}

// Render draws the view selected by state from ds onto a new default canvas.
func Render(ds *mortality.Dataset, state State) (*View, error) {
	categories := ds.BarCategories()
	category := ResolveCategory(categories, state.Category)
	sel, err := chartmode.NewSelector(scene.DefaultCanvas(), Renderers(ds, category))
	if err != nil {
		return nil, err
	}
	mode := state.Mode
	if mode == "" {
		err = sel.Start()
	} else {
		err = sel.Select(mode)
	}
	if err != nil {
		return nil, err
	}
	return &View{
		Canvas:     sel.Canvas(),
		Mode:       sel.Current(),
		Categories: categories,
		Category:   category,
	}, nil
}

// Renderers returns the renderer for each chart mode over ds, with the bar
// chart showing the provided category.
func Renderers(ds *mortality.Dataset, category string) map[chartmode.Mode]chartmode.Renderer {
	return map[chartmode.Mode]chartmode.Renderer{
		chartmode.BarAll: chartmode.RendererFunc(func(c *scene.Canvas) error {
			return renderBarChart(c, ds.BarSeries(category))
		}),
		chartmode.LineAge: chartmode.RendererFunc(func(c *scene.Canvas) error {
			return renderLineChart(c, ds.AgeSeries())
		}),
		chartmode.GroupBar: chartmode.RendererFunc(func(c *scene.Canvas) error {
			return renderGroupBarChart(c, ds.DrugYearGrid())
		}),
	}
}

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatYear formats a year as a bare integer.
func FormatYear(year float64) string {
	if math.IsNaN(year) || math.IsInf(year, 0) {
		return strconv.FormatFloat(year, 'f', -1, 64)
	}
	return strconv.FormatFloat(math.Round(year), 'f', 0, 64)
}

// FormatEstimate formats an estimate for display in tooltips.
func FormatEstimate(estimate float64) string {
	if math.IsNaN(estimate) {
		return "NaN"
	}
	return printer.Sprint(number.Decimal(estimate))
}

// formatTick formats a value-axis tick with the fixed number of fraction
// digits implied by step.
func formatTick(v, step float64) string {
	digits := 0
	if step > 0 && !math.IsInf(step, 0) {
		digits = int(math.Max(0, -math.Floor(math.Log10(step)+1e-9)))
	}
	return printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
}

// valueMax returns the upper bound of the value axis for the provided
// records.  With no positive estimate it is 1, so that every bar is
// zero-height.
func valueMax(records []*mortality.Record) float64 {
	max, ok := mortality.MaxEstimate(records)
	if !ok || max <= 0 {
		return 1
	}
	return max
}

// drawNoData marks an empty view.
func drawNoData(c *scene.Canvas) {
	c.Plot().AddText(c.Width/2, c.Height/2, "No data",
		scene.Class(noDataClass),
		scene.Anchor("middle"),
		scene.FontSize(14),
	)
}
