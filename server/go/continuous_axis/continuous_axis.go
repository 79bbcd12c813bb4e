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

// Package continuousaxis provides decorator helpers for defining continuous
// axes.  An axis has a category, minimum and maximum points along its
// domain, and optionally a set of tick positions and a tick label format.
package continuousaxis

import (
	"math"

	"github.com/ilhamster/overdoseviz/server/go/category"
	"github.com/ilhamster/overdoseviz/server/go/scale"
	"github.com/ilhamster/overdoseviz/server/go/util"
)

const (
	axisTypeKey       = "axis_type"
	axisMinKey        = "axis_min"
	axisMaxKey        = "axis_max"
	axisTicksKey      = "axis_ticks"
	axisTickFormatKey = "axis_tick_format"

	doubleAxisType = "double"

	xAxisRenderLabelHeightPxKey   = "x_axis_render_label_height_px"
	xAxisRenderMarkersHeightPxKey = "x_axis_render_markers_height_px"
	yAxisRenderLabelWidthPxKey    = "y_axis_render_label_width_px"
	yAxisRenderMarkersWidthPxKey  = "y_axis_render_markers_width_px"
)

// IntegerTickFormat labels ticks as whole numbers, as for years.
const IntegerTickFormat = "d"

// XAxisRenderSettings configures the rendering of an X axis.
type XAxisRenderSettings struct {
	LabelHeightPx   int64
	MarkersHeightPx int64
}

// Apply annotates with the receiving XAxisRenderSettings.
func (x XAxisRenderSettings) Apply() util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(xAxisRenderLabelHeightPxKey, x.LabelHeightPx),
		util.IntegerProperty(xAxisRenderMarkersHeightPxKey, x.MarkersHeightPx),
	)
}

// YAxisRenderSettings configures the rendering of a Y axis.
type YAxisRenderSettings struct {
	LabelWidthPx   int64
	MarkersWidthPx int64
}

// Apply annotates with the receiving YAxisRenderSettings.
func (y YAxisRenderSettings) Apply() util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(yAxisRenderLabelWidthPxKey, y.LabelWidthPx),
		util.IntegerProperty(yAxisRenderMarkersWidthPxKey, y.MarkersWidthPx),
	)
}

// Axis is a continuous axis over float64 values.
type Axis struct {
	cat        *category.Category
	min, max   float64
	ticks      []float64
	tickFormat string
}

// NewDoubleAxis returns a new Axis with the specified category.  The axis'
// extent spans the lowest and highest of the provided extents, ignoring
// NaNs; with no usable extents it is [0, 0].
func NewDoubleAxis(cat *category.Category, extents ...float64) *Axis {
	ret := &Axis{
		cat: cat,
		min: math.Inf(1),
		max: math.Inf(-1),
	}
	ret.Include(extents...)
	return ret
}

// Include widens the receiver's extent to cover the provided values,
// ignoring NaNs.
func (a *Axis) Include(values ...float64) *Axis {
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}
	return a
}

// Pad widens the receiver's extent by the specified amount at each end.
func (a *Axis) Pad(by float64) *Axis {
	lo, hi := a.Extent()
	a.min, a.max = lo-by, hi+by
	return a
}

// WithTicks sets explicit tick positions on the receiver.
func (a *Axis) WithTicks(ticks ...float64) *Axis {
	a.ticks = ticks
	return a
}

// WithNiceTicks sets up to count evenly spaced round tick positions within
// the receiver's extent.
func (a *Axis) WithNiceTicks(count int) *Axis {
	lo, hi := a.Extent()
	a.ticks = scale.NewLinear(lo, hi, 0, 1).Ticks(count)
	return a
}

// WithTickFormat sets the format of the receiver's tick labels.
func (a *Axis) WithTickFormat(format string) *Axis {
	a.tickFormat = format
	return a
}

// Extent returns the receiver's minimum and maximum.
func (a *Axis) Extent() (float64, float64) {
	if a.min > a.max {
		return 0, 0
	}
	return a.min, a.max
}

// Ticks returns the receiver's tick positions.
func (a *Axis) Ticks() []float64 {
	return a.ticks
}

// Scale returns a Linear scale mapping the receiver's extent onto [r0, r1].
func (a *Axis) Scale(r0, r1 float64) *scale.Linear {
	lo, hi := a.Extent()
	return scale.NewLinear(lo, hi, r0, r1)
}

// Define annotates with a definition of the receiver.
func (a *Axis) Define() util.PropertyUpdate {
	lo, hi := a.Extent()
	return util.Chain(
		a.cat.Define(),
		util.StringProperty(axisTypeKey, doubleAxisType),
		util.DoubleProperty(axisMinKey, lo),
		util.DoubleProperty(axisMaxKey, hi),
		util.If(len(a.ticks) > 0, util.DoublesProperty(axisTicksKey, a.ticks...)),
		util.If(a.tickFormat != "", util.StringProperty(axisTickFormatKey, a.tickFormat)),
	)
}

// Value annotates a Datum with its position along the receiver.
func (a *Axis) Value(v float64) util.PropertyUpdate {
	return util.DoubleProperty(a.cat.ID(), v)
}

// CategoryID returns the category ID of the receiving Axis.
func (a *Axis) CategoryID() string {
	return a.cat.ID()
}
