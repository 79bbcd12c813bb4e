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

package render

import (
	"math"

	"github.com/ilhamster/overdoseviz/overdoseviz/analysis/mortality"
	"github.com/ilhamster/overdoseviz/server/go/color"
	"github.com/ilhamster/overdoseviz/server/go/scale"
	"github.com/ilhamster/overdoseviz/server/go/scene"
)

const (
	lineWidthPx   = 2
	pointRadiusPx = 3
	legendRowPx   = 20
	legendFontPx  = 12
)

// renderLineChart draws one polyline, with a marker per record, for each age
// group.  Colors follow the age groups' order.
func renderLineChart(c *scene.Canvas, groups []*mortality.AgeGroup) error {
	all := []*mortality.Record{}
	ages := make([]string, len(groups))
	for idx, group := range groups {
		all = append(all, group.Records...)
		ages[idx] = group.Age
	}
	years := mortality.SortedYears(all)
	var x *scale.Linear
	if len(years) == 0 {
		x = scale.NewLinear(0, 1, 0, c.Width)
	} else {
		x = scale.NewLinear(years[0]-1, years[len(years)-1]+1, 0, c.Width)
	}
	y := scale.NewLinear(0, valueMax(all), c.Height, 0)
	xTicks := make([]tick, len(years))
	for idx, year := range years {
		xTicks[idx] = tick{x.Map(year), FormatYear(year)}
	}
	drawBottomAxis(c, 0, c.Width, xTicks)
	drawLeftAxis(c, c.Height, 0, valueTicks(y))
	drawAxisTitles(c, XAxisTitle, YAxisTitle)
	if len(all) == 0 {
		drawNoData(c)
	}
	palette := color.NewPalette("age_group", color.Category10...).WithKeys(ages...)
	for _, group := range groups {
		col := palette.Color(group.Age)
		series := c.Plot().Group(scene.Class(seriesClass))
		points := make([]scene.Point, 0, len(group.Records))
		for _, r := range group.Records {
			p := scene.Point{X: x.Map(r.Year), Y: y.Map(r.Estimate)}
			if !math.IsNaN(p.X) && !math.IsNaN(p.Y) {
				points = append(points, p)
			}
		}
		series.Polyline(points, scene.Class("line"), scene.Stroke(col, lineWidthPx))
		for _, r := range group.Records {
			cx, cy := x.Map(r.Year), y.Map(r.Estimate)
			series.Circle(cx, cy, pointRadiusPx,
				scene.Class(pointClass),
				scene.Fill(col),
				scene.WithTooltip(cx+20, cy,
					scene.TooltipLine{Label: "Age Group", Value: r.Age},
					scene.TooltipLine{Label: "Year", Value: FormatYear(r.Year)},
					scene.TooltipLine{Label: "Estimate", Value: FormatEstimate(r.Estimate)},
				),
			)
		}
	}
	legend := c.Plot().Group(scene.Class(legendClass), scene.Translate(c.Width, 20))
	for idx, age := range palette.Keys() {
		row := legend.Group(scene.Translate(0, float64(idx*legendRowPx)))
		row.Line(0, 7.5, 30, 7.5, scene.Stroke(palette.Color(age), lineWidthPx))
		row.AddText(40, 12, age, scene.Anchor("start"), scene.FontSize(legendFontPx))
	}
	return nil
}
