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

// Band paddings for the grouped bar chart.
const (
	YearPadding     = 0.2
	DrugTypePadding = 0.05
)

const swatchPx = 15

// renderGroupBarChart draws one bar for every (year, drug type) pair in grid,
// with drug types banded within each year's band.
func renderGroupBarChart(c *scene.Canvas, grid *mortality.Grid) error {
	x0 := scale.NewBand(grid.Years, -1, c.Width+1, YearPadding)
	x1 := scale.NewBand(grid.DrugTypes, 0, x0.Bandwidth(), DrugTypePadding)
	y := scale.NewLinear(0, valueMax(grid.Records()), c.Height, 0)
	palette := color.NewPalette("drug_type", color.DrugTypes...).WithKeys(grid.DrugTypes...)
	drawBottomAxis(c, -1, c.Width+1, yearBandTicks(x0))
	drawLeftAxis(c, c.Height, 0, valueTicks(y))
	drawAxisTitles(c, XAxisTitle, YAxisTitle)
	if len(grid.Years) == 0 {
		drawNoData(c)
	}
	for yearIdx, year := range grid.Years {
		yearPos, _ := x0.Position(year)
		g := c.Plot().Group(scene.Class(yearGroupClass), scene.Translate(yearPos, 0))
		for _, cell := range grid.Cells[yearIdx] {
			xPos, _ := x1.Position(cell.DrugType)
			yPos := y.Map(mortality.FiniteOrZero(cell.Estimate))
			g.Rect(xPos, yPos, x1.Bandwidth(), c.Height-yPos,
				scene.Class(barClass),
				scene.Fill(palette.Color(cell.DrugType)),
				scene.Hover(),
				scene.WithTooltip(xPos+x1.Bandwidth()/2, yPos,
					scene.TooltipLine{Label: "Drug Type", Value: cell.DrugType},
					scene.TooltipLine{Label: "Year", Value: FormatYear(cell.Year)},
					scene.TooltipLine{Label: "Estimate", Value: FormatEstimate(cell.Estimate)},
				),
			)
		}
	}
	legend := c.Plot().Group(scene.Class(legendClass), scene.Translate(20, 20))
	for idx, drugType := range grid.DrugTypes {
		row := legend.Group(scene.Translate(0, float64(idx*legendRowPx)))
		row.Rect(0, 0, swatchPx, swatchPx, scene.Fill(palette.Color(drugType)))
		row.AddText(20, 12, drugType, scene.Anchor("start"), scene.FontSize(legendFontPx))
	}
	return nil
}
