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

package xychart

import (
	"testing"

	"github.com/ilhamster/overdoseviz/server/go/category"
	"github.com/ilhamster/overdoseviz/server/go/color"
	continuousaxis "github.com/ilhamster/overdoseviz/server/go/continuous_axis"
	testutil "github.com/ilhamster/overdoseviz/server/go/test_util"
	"github.com/ilhamster/overdoseviz/server/go/util"
)

func TestXYChart(t *testing.T) {
	youngCat := category.New("age_15_24_years", "15-24 years", "15-24 years")
	olderCat := category.New("age_25_34_years", "25-34 years", "25-34 years")
	ages := color.NewPalette("age_groups", color.Category10...)

	xAxisName := "year"
	yAxisName := "estimate"

	xAxisCat := category.New(xAxisName, "Year", "Year")
	yAxisCat := category.New(yAxisName, "Estimate", "Deaths per 100 000")
	newXAxis := func() *continuousaxis.Axis {
		return continuousaxis.NewDoubleAxis(xAxisCat, 2015, 2016).Pad(1).WithTicks(2015, 2016)
	}
	newYAxis := func() *continuousaxis.Axis {
		return continuousaxis.NewDoubleAxis(yAxisCat, 0, 12)
	}

	for _, test := range []struct {
		description   string
		buildChart    func(db util.DataBuilder)
		buildExplicit func(db testutil.TestDataBuilder)
	}{{
		description: "builds group properly",
		buildChart: func(db util.DataBuilder) {
			chart := New(db, newXAxis(), newYAxis(), ages.Define()).WithLegend(900, 20)
			young := chart.AddSeries(youngCat, ages.Stroke("15-24 years"))
			young.WithPoint(
				2015, 3, util.StringProperty("age", "15-24 years"),
			).WithPoint(
				2016, 4,
			)
			older := chart.AddSeries(olderCat, ages.Stroke("25-34 years"))
			older.WithPoint(
				2015, 10,
			).WithPoint(
				2016, 12,
			)
			if young.Len() != 2 || older.Len() != 2 {
				t.Errorf("series lengths %d and %d, want 2 and 2", young.Len(), older.Len())
			}
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			axisGroup := db.With(
				ages.Define(),
				util.IntegerProperty(legendXPxKey, 900),
				util.IntegerProperty(legendYPxKey, 20),
			).Child()
			axisGroup.
				Child().With(newXAxis().Define()).
				AndChild().With(newYAxis().Define())
			db.Child().With(
				youngCat.Define(),
				color.Stroke("#1f77b4"),
			).Child().With(
				util.DoubleProperty(xAxisName, 2015),
				util.DoubleProperty(yAxisName, 3),
				util.StringProperty("age", "15-24 years"),
			).AndChild().With(
				util.DoubleProperty(xAxisName, 2016),
				util.DoubleProperty(yAxisName, 4),
			)
			db.Child().With(
				olderCat.Define(),
				color.Stroke("#ff7f0e"),
			).Child().With(
				util.DoubleProperty(xAxisName, 2015),
				util.DoubleProperty(yAxisName, 10),
			).AndChild().With(
				util.DoubleProperty(xAxisName, 2016),
				util.DoubleProperty(yAxisName, 12),
			)
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if err := testutil.CompareResponses(t, test.buildChart, test.buildExplicit); err != nil {
				t.Fatalf("encountered unexpected error building the chart: %s", err)
			}
		})
	}
}
