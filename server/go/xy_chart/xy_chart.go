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

// Package xychart facilitates the construction of xy-chart data, such as a
// line chart with one series per age group.  Given a dedicated chartRoot
// util.DataBuilder, which must not be used for any other purpose, a new
// XYChart may be created via
//
//	chart := New(chartRoot, xAxis, yAxis, properties...)
//
// and a new data series within the chart added via
//
//	series := chart.AddSeries(category, properties...)
//
// Points are then added to the series, in drawing order, via
//
//	series.WithPoint(x, y, properties...)
//
// The structure of an xy chart response is:
//
//	xychart
//	  properties:
//	    * <decorators>
//	  children:
//	    * axes
//	    * repeated series
//
//	axes
//	  children:
//	    * x axis
//	    * y axis
//
//	series
//	  properties:
//	    * category definition
//	    * <decorators>
//	  children:
//	    repeated points
//
//	point
//	  properties:
//	    * xAxisName: x
//	    * yAxisName: y
//	    * <decorators>
package xychart

import (
	"github.com/ilhamster/overdoseviz/server/go/category"
	continuousaxis "github.com/ilhamster/overdoseviz/server/go/continuous_axis"
	"github.com/ilhamster/overdoseviz/server/go/util"
)

const (
	legendXPxKey = "xy_chart_legend_x_px"
	legendYPxKey = "xy_chart_legend_y_px"
)

// XYChart represents an xy-chart embedded in a response.
type XYChart struct {
	xAxis *continuousaxis.Axis
	yAxis *continuousaxis.Axis
	db    util.DataBuilder
}

// New constructs a new xy chart with the provided axes.
func New(
	db util.DataBuilder,
	xAxis *continuousaxis.Axis,
	yAxis *continuousaxis.Axis,
	properties ...util.PropertyUpdate,
) *XYChart {
	ret := &XYChart{
		xAxis: xAxis,
		yAxis: yAxis,
		db: db.With(
			properties...,
		),
	}
	axes := ret.db.Child()
	axes.Child().With(xAxis.Define())
	axes.Child().With(yAxis.Define())
	return ret
}

// With annotates the receiving xy-chart with the provided properties.
func (xyc *XYChart) With(properties ...util.PropertyUpdate) *XYChart {
	xyc.db.With(properties...)
	return xyc
}

// WithLegend places the chart's series legend at the specified offset from
// the plot area's top-left corner.
func (xyc *XYChart) WithLegend(xPx, yPx int64) *XYChart {
	return xyc.With(
		util.IntegerProperty(legendXPxKey, xPx),
		util.IntegerProperty(legendYPxKey, yPx),
	)
}

// AddSeries defines a series within the receiving XYChart, tagged with the
// specified Category.
func (xyc *XYChart) AddSeries(category *category.Category, properties ...util.PropertyUpdate) *Series {
	db := xyc.db.Child().With(category.Define()).With(properties...)
	return &Series{
		xyc: xyc,
		db:  db,
	}
}

// Series helps define a series within a XYChart.
type Series struct {
	xyc    *XYChart
	db     util.DataBuilder
	points int
}

// With annotates the receiving Series with the provided properties.
func (s *Series) With(properties ...util.PropertyUpdate) *Series {
	s.db.With(properties...)
	return s
}

// WithPoint adds a data point to the receiving Series, with the
// specified x and y values and arbitrary other properties.
func (s *Series) WithPoint(x, y float64, properties ...util.PropertyUpdate) *Series {
	s.db.Child().With(
		s.xyc.xAxis.Value(x),
		s.xyc.yAxis.Value(y),
	).With(properties...)
	s.points++
	return s
}

// Len returns the number of points in the receiving Series.
func (s *Series) Len() int {
	return s.points
}
