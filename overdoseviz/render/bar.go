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
	"github.com/ilhamster/overdoseviz/overdoseviz/analysis/mortality"
	"github.com/ilhamster/overdoseviz/server/go/color"
	"github.com/ilhamster/overdoseviz/server/go/scale"
	"github.com/ilhamster/overdoseviz/server/go/scene"
)

// BarPadding is the band padding between years in the bar chart.
const BarPadding = 0.1

// renderBarChart draws one bar per record, with years as bands in order of
// appearance.
func renderBarChart(c *scene.Canvas, records []*mortality.Record) error {
	x := scale.NewBand(mortality.Years(records), 0, c.Width, BarPadding)
	y := scale.NewLinear(0, valueMax(records), c.Height, 0)
	drawBottomAxis(c, 0, c.Width, yearBandTicks(x))
	drawLeftAxis(c, c.Height, 0, valueTicks(y))
	infoX, infoY := drawInfobox(c)
	if len(records) == 0 {
		drawNoData(c)
	}
	bars := c.Plot().Group(scene.Class("bars"))
	for _, r := range records {
		xPos, ok := x.Position(r.Year)
		if !ok {
			continue
		}
		yPos := y.Map(mortality.FiniteOrZero(r.Estimate))
		bars.Rect(xPos, yPos, x.Bandwidth(), c.Height-yPos,
			scene.Class(barClass),
			scene.Fill(color.Bar),
			scene.Hover(),
			scene.WithTooltip(infoX, infoY,
				scene.TooltipLine{Label: "Year", Value: FormatYear(r.Year)},
				scene.TooltipLine{Label: "Estimate", Value: FormatEstimate(r.Estimate)},
			),
		)
	}
	drawAxisTitles(c, XAxisTitle, YAxisTitle)
	return nil
}

// drawInfobox draws the bar chart's standing information overlay, with
// empty labels, in the legend area.  It returns the overlay's origin in plot
// coordinates; bar tooltips anchored there cover the empty labels with the
// hovered bar's values.
func drawInfobox(c *scene.Canvas) (x, y float64) {
	x, y = c.Width+10, 0
	box := c.Plot().Group(scene.Class(infoboxClass), scene.Translate(x, y))
	box.AddText(0, 12, "Year:", scene.FontSize(12))
	box.AddText(0, 28, "Estimate:", scene.FontSize(12))
	return x, y
}
