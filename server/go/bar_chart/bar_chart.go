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

// Package barchart defines a vertical bar chart with a banded category axis
// and a continuous value axis.
//
// BarChart is constructed into a provided DataBuilder db with:
//
//	bc := New(db, categoryAxis, valueAxis, renderSettings, properties...)
//
// where categoryAxis is a categoryaxis.Axis (the years, say) and valueAxis
// is a continuousaxis.Axis.  Chart-level decorations such as palette
// definitions may be applied in the properties, or added later with
// `bc.With(properties...)`.  Each band of the category axis is then added
// with:
//
//	bcCat := bc.Category(cat, properties...)
//
// and its bars with:
//
//	bar := bcCat.Bar(lowerExtent, upperExtent)
//
// A category holding more than one bar is grouped: its bars are laid out in
// lanes, a nested band within the category's band, in definition order.  A
// bar may be assigned to a named lane, so that like lanes share a color and a
// legend entry across categories, with:
//
//	bar := bcCat.LaneBar(laneCat, lowerExtent, upperExtent)
package barchart

import (
	"github.com/ilhamster/overdoseviz/server/go/category"
	categoryaxis "github.com/ilhamster/overdoseviz/server/go/category_axis"
	continuousaxis "github.com/ilhamster/overdoseviz/server/go/continuous_axis"
	"github.com/ilhamster/overdoseviz/server/go/util"
)

const (
	// Data types
	dataTypeKey = "bar_chart_data_type"
	barKey      = "bar_chart_bar"

	// Bar datum keys
	barLowerExtentKey = "bar_chart_bar_lower_extent"
	barUpperExtentKey = "bar_chart_bar_upper_extent"

	// Rendering property keys
	lanePaddingKey     = "bar_chart_lane_padding"
	categoryAxisMinKey = "bar_chart_category_axis_min_px"
	categoryAxisMaxKey = "bar_chart_category_axis_max_px"
)

// RenderSettings is a collection of rendering settings for a bar chart.
type RenderSettings struct {
	// The padding between lanes within a category, as a fraction of the lane
	// step.
	LanePadding float64
	// The pixel extent over which the category axis lays out its bands.  This
	// may overhang the plot area slightly, as it does for grouped bars.
	CategoryAxisMinPx, CategoryAxisMaxPx int64
	XAxisRenderSettings                  *continuousaxis.XAxisRenderSettings
	YAxisRenderSettings                  *continuousaxis.YAxisRenderSettings
}

// Defines the receiver as a set of property updates.
func (rs *RenderSettings) define() util.PropertyUpdate {
	return util.Chain(
		util.DoubleProperty(lanePaddingKey, rs.LanePadding),
		util.IntegerProperty(categoryAxisMinKey, rs.CategoryAxisMinPx),
		util.IntegerProperty(categoryAxisMaxKey, rs.CategoryAxisMaxPx),
		rs.XAxisRenderSettings.Apply(),
		rs.YAxisRenderSettings.Apply(),
	)
}

// BarChart represents a bar chart with one banded category axis and one
// continuous value axis.
type BarChart struct {
	db        util.DataBuilder
	valueAxis *continuousaxis.Axis
}

// New returns a new BarChart populating the provided DataBuilder, using the
// provided axes and render settings.
func New(db util.DataBuilder, categoryAxis *categoryaxis.Axis, valueAxis *continuousaxis.Axis, renderSettings *RenderSettings, properties ...util.PropertyUpdate) *BarChart {
	return &BarChart{
		db: db.With(
			categoryAxis.Define(),
			valueAxis.Define(),
			renderSettings.define(),
		).With(
			properties...,
		),
		valueAxis: valueAxis,
	}
}

// With annotates the receiver with the provided properties.
func (bc *BarChart) With(properties ...util.PropertyUpdate) *BarChart {
	bc.db.With(properties...)
	return bc
}

// Category adds a new category band, with the provided Category, to the
// receiver.
func (bc *BarChart) Category(category *category.Category, properties ...util.PropertyUpdate) *Category {
	db := bc.db.Child().
		With(category.Define())
	return (&Category{
		db:        db,
		valueAxis: bc.valueAxis,
	}).With(properties...)
}

// Category represents a category band within a bar chart.
type Category struct {
	db        util.DataBuilder
	valueAxis *continuousaxis.Axis
}

// With annotates the receiver with the provided properties.
func (c *Category) With(properties ...util.PropertyUpdate) *Category {
	c.db.With(properties...)
	return c
}

// Bar returns a new bar spanning [lower, upper] along the value axis, added
// into the receiving Category.
func (c *Category) Bar(lower, upper float64) *Bar {
	return &Bar{
		db: c.db.Child().With(
			util.StringProperty(dataTypeKey, barKey),
			util.DoubleProperty(barLowerExtentKey, lower),
			util.DoubleProperty(barUpperExtentKey, upper),
		),
	}
}

// LaneBar returns a new bar in the specified lane, added into the receiving
// Category.
func (c *Category) LaneBar(lane *category.Category, lower, upper float64) *Bar {
	return c.Bar(lower, upper).With(lane.Tag())
}

// Bar represents a single bar within a Category.
type Bar struct {
	db util.DataBuilder
}

// With annotates the receiver with the provided properties.
func (b *Bar) With(properties ...util.PropertyUpdate) *Bar {
	b.db.With(properties...)
	return b
}

// Property keys expected by the bar chart view.
const (
	DetailFormatKey = "detail_format"
	LabelFormatKey  = "label_format"
)
