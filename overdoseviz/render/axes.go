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
	"github.com/ilhamster/overdoseviz/server/go/scale"
	"github.com/ilhamster/overdoseviz/server/go/scene"
)

const (
	tickSizePx    = 6
	tickPaddingPx = 3
	tickFontPx    = 10
	titleFontPx   = 14
	axisColor     = "currentColor"
)

type tick struct {
	pos   float64
	label string
}

// yearBandTicks returns a tick at the center of each year's band.
func yearBandTicks(band *scale.Band[float64]) []tick {
	ret := []tick{}
	for _, year := range band.Domain() {
		if center, ok := band.Center(year); ok {
			ret = append(ret, tick{center, FormatYear(year)})
		}
	}
	return ret
}

// valueTicks returns nice ticks over a value scale's domain.
func valueTicks(y *scale.Linear) []tick {
	values := y.Ticks(scale.DefaultTickCount)
	step := 0.0
	if len(values) > 1 {
		step = values[1] - values[0]
	}
	ret := make([]tick, len(values))
	for idx, v := range values {
		ret[idx] = tick{y.Map(v), formatTick(v, step)}
	}
	return ret
}

// drawBottomAxis draws a horizontal axis along the bottom of the plot,
// spanning [r0, r1].
func drawBottomAxis(c *scene.Canvas, r0, r1 float64, ticks []tick) {
	axis := c.Plot().Group(scene.Class("axis "+xAxisClass), scene.Translate(0, c.Height))
	axis.Line(r0, 0, r1, 0, scene.Class("domain"), scene.Stroke(axisColor, 1))
	for _, t := range ticks {
		g := axis.Group(scene.Class("tick"), scene.Translate(t.pos, 0))
		g.Line(0, 0, 0, tickSizePx, scene.Stroke(axisColor, 1))
		g.AddText(0, tickSizePx+tickPaddingPx+tickFontPx, t.label,
			scene.Anchor("middle"),
			scene.FontSize(tickFontPx),
		)
	}
}

// drawLeftAxis draws a vertical axis along the left of the plot, spanning
// [r0, r1].
func drawLeftAxis(c *scene.Canvas, r0, r1 float64, ticks []tick) {
	axis := c.Plot().Group(scene.Class("axis " + yAxisClass))
	axis.Line(0, r0, 0, r1, scene.Class("domain"), scene.Stroke(axisColor, 1))
	for _, t := range ticks {
		g := axis.Group(scene.Class("tick"), scene.Translate(0, t.pos))
		g.Line(-tickSizePx, 0, 0, 0, scene.Stroke(axisColor, 1))
		g.AddText(-(tickSizePx + tickPaddingPx), tickFontPx*0.32, t.label,
			scene.Anchor("end"),
			scene.FontSize(tickFontPx),
		)
	}
}

// drawAxisTitles draws the shared axis titles: the x title centered below
// the plot and the y title centered and rotated to its left.
func drawAxisTitles(c *scene.Canvas, xTitle, yTitle string) {
	plot := c.Plot()
	plot.AddText(c.Width/2, c.Height+c.Margin.Bottom, xTitle,
		scene.Class(xAxisLabelClass),
		scene.Anchor("middle"),
		scene.FontSize(titleFontPx),
	)
	plot.AddText(-c.Height/2, -c.Margin.Left+15, yTitle,
		scene.Class(yAxisLabelClass),
		scene.Anchor("middle"),
		scene.FontSize(titleFontPx),
		scene.Rotate(-90),
	)
}
