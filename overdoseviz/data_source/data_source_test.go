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

package datasource

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/overdoseviz/overdoseviz/analysis/mortality"
	chartmode "github.com/ilhamster/overdoseviz/overdoseviz/chart_mode"
	"github.com/ilhamster/overdoseviz/overdoseviz/render"
	barchart "github.com/ilhamster/overdoseviz/server/go/bar_chart"
	"github.com/ilhamster/overdoseviz/server/go/category"
	categoryaxis "github.com/ilhamster/overdoseviz/server/go/category_axis"
	"github.com/ilhamster/overdoseviz/server/go/color"
	continuousaxis "github.com/ilhamster/overdoseviz/server/go/continuous_axis"
	"github.com/ilhamster/overdoseviz/server/go/label"
	"github.com/ilhamster/overdoseviz/server/go/magnitude"
	"github.com/ilhamster/overdoseviz/server/go/payload"
	querydispatcher "github.com/ilhamster/overdoseviz/server/go/query_dispatcher"
	"github.com/ilhamster/overdoseviz/server/go/scene"
	"github.com/ilhamster/overdoseviz/server/go/style"
	"github.com/ilhamster/overdoseviz/server/go/table"
	testutil "github.com/ilhamster/overdoseviz/server/go/test_util"
	"github.com/ilhamster/overdoseviz/server/go/util"
	weightedtree "github.com/ilhamster/overdoseviz/server/go/weighted_tree"
	xychart "github.com/ilhamster/overdoseviz/server/go/xy_chart"
)

var nan = math.NaN()

const (
	under15 = "Under 15 years"
	age1524 = "15-24 years"
)

var (
	allPersons2015 = &mortality.Record{Panel: mortality.PanelAllDrugs, StubLabel: mortality.StubAllPersons, Age: mortality.AgeAll, Year: 2015, Estimate: 10}
	allPersons2016 = &mortality.Record{Panel: mortality.PanelAllDrugs, StubLabel: mortality.StubAllPersons, Age: mortality.AgeAll, Year: 2016, Estimate: 20}
	male2015       = &mortality.Record{Panel: mortality.PanelAllDrugs, StubLabel: "Male", Age: mortality.AgeAll, Year: 2015, Estimate: 12}
	under15_2015   = &mortality.Record{Panel: mortality.PanelAllDrugs, StubLabel: mortality.StubAllPersons, Age: under15, Year: 2015, Estimate: 0}
	age1524_2016   = &mortality.Record{Panel: mortality.PanelAllDrugs, StubLabel: mortality.StubAllPersons, Age: age1524, Year: 2016, Estimate: 2}
	age1524_2015   = &mortality.Record{Panel: mortality.PanelAllDrugs, StubLabel: mortality.StubAllPersons, Age: age1524, Year: 2015, Estimate: 1}
	heroin2015     = &mortality.Record{Panel: mortality.PanelHeroin, StubLabel: mortality.StubAllPersons, Age: mortality.AgeAll, Year: 2015, Estimate: 6}
)

func testDataset(name string) *mortality.Dataset {
	return mortality.New(name, []string{"PANEL", "STUB_LABEL", "AGE", "YEAR", "ESTIMATE"},
		allPersons2015, allPersons2016, male2015, under15_2015, age1524_2016, age1524_2015, heroin2015,
	)
}

type testFetcher struct {
	fetches map[string]int
}

func (tf *testFetcher) Fetch(ctx context.Context, collectionName string) (*mortality.Dataset, error) {
	switch collectionName {
	case "drugoverdose.csv":
		tf.fetches[collectionName]++
		return testDataset(collectionName), nil
	case "empty.csv":
		tf.fetches[collectionName]++
		return mortality.New(collectionName, nil), nil
	default:
		return nil, fmt.Errorf("can't find collection '%s'", collectionName)
	}
}

func newTestFetcher() *testFetcher {
	return &testFetcher{fetches: map[string]int{}}
}

func summary(records, estimates int64, min, max, mean float64) util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(recordCountKey, records),
		util.IntegerProperty(estimateCountKey, estimates),
		util.DoubleProperty(estimateMinKey, min),
		util.DoubleProperty(estimateMaxKey, max),
		util.DoubleProperty(estimateMeanKey, mean),
	)
}

func yearBand(key string) *category.Category {
	return category.New(key, key, key)
}

func barRenderSettings() *barchart.RenderSettings {
	return &barchart.RenderSettings{
		CategoryAxisMinPx:   0,
		CategoryAxisMaxPx:   scene.DefaultWidth,
		XAxisRenderSettings: &xAxisRenderSettings,
		YAxisRenderSettings: &yAxisRenderSettings,
	}
}

func TestQueries(t *testing.T) {
	drugTooltip := label.Tooltip(
		[2]string{"Drug Type", panelKey},
		[2]string{render.XAxisTitle, yearKey},
		[2]string{"Estimate", estimateKey},
	)
	for _, test := range []struct {
		description string
		req         *util.DataRequest
		wantErr     bool
		wantSeries  func(util.DataBuilder)
	}{{
		description: "categories, default collection",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: categoriesQuery,
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			db.Child().With(
				util.StringProperty(chartTypeKey, "barALL"),
				util.StringProperty("label", "Deaths by year"),
			)
			db.Child().With(
				util.StringProperty(chartTypeKey, "lineAge"),
				util.StringProperty("label", "Deaths by age group"),
			)
			db.Child().With(
				util.StringProperty(chartTypeKey, "groupBar"),
				util.StringProperty("label", "Deaths by drug type"),
			)
			db.With(
				util.StringsProperty(categoriesKey, mortality.StubAllPersons, "Male"),
				util.StringProperty(categoryKey, mortality.StubAllPersons),
				util.StringsProperty(chartTypesKey, "barALL", "lineAge", "groupBar"),
				util.StringProperty(chartTypeKey, "barALL"),
			)
		},
	}, {
		description: "categories, unknown category falls back to the first",
		req: &util.DataRequest{
			GlobalFilters: map[string]*util.V{
				collectionNameKey: util.StringValue("drugoverdose.csv"),
			},
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: categoriesQuery,
				Options: map[string]*util.V{
					categoryKey: util.StringValue("Female"),
				},
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			for _, mode := range chartmode.Modes() {
				db.Child().With(
					util.StringProperty(chartTypeKey, string(mode)),
					util.StringProperty("label", mode.DisplayName()),
				)
			}
			db.With(
				util.StringsProperty(categoriesKey, mortality.StubAllPersons, "Male"),
				util.StringProperty(categoryKey, mortality.StubAllPersons),
				util.StringsProperty(chartTypesKey, "barALL", "lineAge", "groupBar"),
				util.StringProperty(chartTypeKey, "barALL"),
			)
		},
	}, {
		description: "bar chart, all persons",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: barAllQuery,
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			bc := barchart.New(db,
				categoryaxis.New(yearCat, render.BarPadding, "2015", "2016"),
				continuousaxis.NewDoubleAxis(estimateCat, 0, 20).WithNiceTicks(0),
				barRenderSettings(),
				util.StringProperty(categoryKey, mortality.StubAllPersons),
				color.Primary(color.Bar),
				style.New().HoverOpacity(scene.HoverOpacity).Define(),
				summary(2, 2, 10, 20, 15),
			)
			bc.Category(yearBand("2015")).Bar(0, 10).With(
				util.StringProperty(yearKey, "2015"),
				util.DoubleProperty(estimateKey, 10),
				recordTooltip,
			)
			bc.Category(yearBand("2016")).Bar(0, 20).With(
				util.StringProperty(yearKey, "2016"),
				util.DoubleProperty(estimateKey, 20),
				recordTooltip,
			)
		},
	}, {
		description: "bar chart, male",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: barAllQuery,
				Options: map[string]*util.V{
					categoryKey: util.StringValue("Male"),
				},
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			bc := barchart.New(db,
				categoryaxis.New(yearCat, render.BarPadding, "2015"),
				continuousaxis.NewDoubleAxis(estimateCat, 0, 12).WithNiceTicks(0),
				barRenderSettings(),
				util.StringProperty(categoryKey, "Male"),
				color.Primary(color.Bar),
				style.New().HoverOpacity(scene.HoverOpacity).Define(),
				summary(1, 1, 12, 12, 12),
			)
			bc.Category(yearBand("2015")).Bar(0, 12).With(
				util.StringProperty(yearKey, "2015"),
				util.DoubleProperty(estimateKey, 12),
				recordTooltip,
			)
		},
	}, {
		description: "bar chart, empty collection",
		req: &util.DataRequest{
			GlobalFilters: map[string]*util.V{
				collectionNameKey: util.StringValue("empty.csv"),
			},
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: barAllQuery,
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			barchart.New(db,
				categoryaxis.New(yearCat, render.BarPadding),
				continuousaxis.NewDoubleAxis(estimateCat, 0, 1).WithNiceTicks(0),
				barRenderSettings(),
				util.StringProperty(categoryKey, ""),
				color.Primary(color.Bar),
				style.New().HoverOpacity(scene.HoverOpacity).Define(),
				summary(0, 0, nan, nan, nan),
				util.IntegerProperty(emptyKey, 1),
			)
		},
	}, {
		description: "line chart by age group",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: lineAgeQuery,
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			palette := color.NewPalette("age_group", color.Category10...).WithKeys(under15, age1524)
			chart := xychart.New(db,
				continuousaxis.NewDoubleAxis(yearCat, 2014, 2017).
					WithTicks(2015, 2016).
					WithTickFormat(continuousaxis.IntegerTickFormat),
				continuousaxis.NewDoubleAxis(estimateCat, 0, 2).WithNiceTicks(0),
				palette.Define(),
				style.New().StrokeWidth(2).Radius(3).Define(),
				summary(3, 3, 0, 2, 1),
			).WithLegend(scene.DefaultWidth, 20)
			ageTooltip := label.Tooltip(
				[2]string{"Age Group", ageKey},
				[2]string{render.XAxisTitle, yearKey},
				[2]string{"Estimate", estimateKey},
			)
			chart.AddSeries(category.New("age_under_15_years", under15, under15),
				palette.Stroke(under15),
				palette.Primary(under15),
				ageTooltip,
			).WithPoint(2015, 0,
				util.StringProperty(ageKey, under15),
				util.StringProperty(yearKey, "2015"),
				util.DoubleProperty(estimateKey, 0),
			)
			chart.AddSeries(category.New("age_15_24_years", age1524, age1524),
				palette.Stroke(age1524),
				palette.Primary(age1524),
				ageTooltip,
			).WithPoint(2015, 1,
				util.StringProperty(ageKey, age1524),
				util.StringProperty(yearKey, "2015"),
				util.DoubleProperty(estimateKey, 1),
			).WithPoint(2016, 2,
				util.StringProperty(ageKey, age1524),
				util.StringProperty(yearKey, "2016"),
				util.DoubleProperty(estimateKey, 2),
			)
		},
	}, {
		description: "grouped bar chart by drug type",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: groupBarQuery,
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			drugTypes := mortality.DrugTypes()
			palette := color.NewPalette("drug_type", color.DrugTypes...).WithKeys(drugTypes...)
			lanes := category.NewSet("drug_", drugTypes...)
			bc := barchart.New(db,
				categoryaxis.New(yearCat, render.YearPadding, "2015", "2016"),
				continuousaxis.NewDoubleAxis(estimateCat, 0, 20).WithNiceTicks(0),
				&barchart.RenderSettings{
					LanePadding:         render.DrugTypePadding,
					CategoryAxisMinPx:   -1,
					CategoryAxisMaxPx:   scene.DefaultWidth + 1,
					XAxisRenderSettings: &xAxisRenderSettings,
					YAxisRenderSettings: &yAxisRenderSettings,
				},
				palette.Define(),
				style.New().HoverOpacity(scene.HoverOpacity).Define(),
				summary(3, 3, 6, 20, 12),
			)
			estimates := map[string][]float64{
				"2015": {10, 0, 0, 6},
				"2016": {20, 0, 0, 0},
			}
			for _, year := range []string{"2015", "2016"} {
				band := bc.Category(yearBand(year))
				for idx, drugType := range drugTypes {
					lane, _ := lanes.Get(drugType)
					band.LaneBar(lane, 0, estimates[year][idx]).With(
						palette.Primary(drugType),
						util.StringProperty(panelKey, drugType),
						util.StringProperty(yearKey, year),
						util.DoubleProperty(estimateKey, estimates[year][idx]),
						drugTooltip,
					)
				}
			}
		},
	}, {
		description: "records table, grouped bar selection",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: recordsQuery,
				Options: map[string]*util.V{
					chartTypeKey: util.StringValue("groupBar"),
				},
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			tbl := table.New(db, renderSettings, panelCol, stubLabelCol, ageCol, yearCol, estimateCol).With(
				intensitySpace.Define(),
				util.StringProperty(chartTypeKey, "groupBar"),
			)
			for _, r := range []*mortality.Record{allPersons2015, heroin2015, allPersons2016} {
				tbl.Row(
					table.Cell(panelCol, util.String(r.Panel)),
					table.Cell(stubLabelCol, util.String(r.StubLabel)),
					table.Cell(ageCol, util.String(r.Age)),
					table.Cell(yearCol, util.String(render.FormatYear(r.Year))),
					table.Cell(estimateCol, util.Double(r.Estimate)),
				).With(intensitySpace.PrimaryColor(r.Estimate / 20))
			}
		},
	}, {
		description: "records table, default selection",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: recordsQuery,
				Options: map[string]*util.V{
					categoryKey: util.StringValue("Male"),
				},
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			table.New(db, renderSettings, panelCol, stubLabelCol, ageCol, yearCol, estimateCol).With(
				intensitySpace.Define(),
				util.StringProperty(chartTypeKey, "barALL"),
			).Row(
				table.Cell(panelCol, util.String(mortality.PanelAllDrugs)),
				table.Cell(stubLabelCol, util.String("Male")),
				table.Cell(ageCol, util.String(mortality.AgeAll)),
				table.Cell(yearCol, util.String("2015")),
				table.Cell(estimateCol, util.Double(12)),
			).With(intensitySpace.PrimaryColor(1))
		},
	}, {
		description: "age trends table with sparklines",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: ageTrendsQuery,
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			palette := color.NewPalette("age_group", color.Category10...).WithKeys(under15, age1524)
			tbl := table.New(db, renderSettings, ageCol, latestCol, trendCol).With(
				palette.Define(),
			)
			row := tbl.Row(
				table.Cell(ageCol, util.String(under15)),
				table.Cell(latestCol, util.Double(0)),
			).With(magnitude.SelfMagnitude(0))
			xychart.New(
				payload.New(row.AddCell(table.Cell(trendCol, util.String(""))), sparklinePayloadType),
				continuousaxis.NewDoubleAxis(yearCat, 2015).WithTicks(2015).WithTickFormat(continuousaxis.IntegerTickFormat),
				continuousaxis.NewDoubleAxis(estimateCat, 0, 1).WithNiceTicks(0),
			).AddSeries(category.New("age_under_15_years", under15, under15),
				palette.Stroke(under15),
			).WithPoint(2015, 0)
			row = tbl.Row(
				table.Cell(ageCol, util.String(age1524)),
				table.Cell(latestCol, util.Double(2)),
			).With(magnitude.SelfMagnitude(2))
			xychart.New(
				payload.New(row.AddCell(table.Cell(trendCol, util.String(""))), sparklinePayloadType),
				continuousaxis.NewDoubleAxis(yearCat, 2015, 2016).WithTicks(2015, 2016).WithTickFormat(continuousaxis.IntegerTickFormat),
				continuousaxis.NewDoubleAxis(estimateCat, 0, 2).WithNiceTicks(0),
			).AddSeries(category.New("age_15_24_years", age1524, age1524),
				palette.Stroke(age1524),
			).WithPoint(2015, 1).WithPoint(2016, 2)
			tbl.With(magnitude.TotalMagnitude(0, 2))
		},
	}, {
		description: "age breakdown, latest year",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: breakdownQuery,
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			palette := color.NewPalette("age_group", color.Category10...).WithKeys(age1524)
			tree := weightedtree.New(db, treeRenderSettings,
				util.StringProperty(yearKey, "2016"),
				palette.Define(),
			).TopDown()
			tree.Node(0, util.StringProperty(panelKey, mortality.PanelAllDrugs)).Node(2,
				util.StringProperty(ageKey, age1524),
				util.StringProperty(stubLabelKey, mortality.StubAllPersons),
				util.DoubleProperty(estimateKey, 2),
				palette.Primary(age1524),
			)
			tree.Finish()
		},
	}, {
		description: "age breakdown, explicit year",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: breakdownQuery,
				Options: map[string]*util.V{
					yearKey: util.StringValue("2015"),
				},
			}},
		},
		wantSeries: func(db util.DataBuilder) {
			palette := color.NewPalette("age_group", color.Category10...).WithKeys(under15, age1524)
			tree := weightedtree.New(db, treeRenderSettings,
				util.StringProperty(yearKey, "2015"),
				palette.Define(),
			).TopDown()
			panel := tree.Node(0, util.StringProperty(panelKey, mortality.PanelAllDrugs))
			panel.Node(0,
				util.StringProperty(ageKey, under15),
				util.StringProperty(stubLabelKey, mortality.StubAllPersons),
				util.DoubleProperty(estimateKey, 0),
				palette.Primary(under15),
			)
			panel.Node(1,
				util.StringProperty(ageKey, age1524),
				util.StringProperty(stubLabelKey, mortality.StubAllPersons),
				util.DoubleProperty(estimateKey, 1),
				palette.Primary(age1524),
			)
			tree.Finish()
		},
	}, {
		description: "age breakdown, malformed year",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: breakdownQuery,
				Options: map[string]*util.V{
					yearKey: util.StringValue("last"),
				},
			}},
		},
		wantErr: true,
	}, {
		description: "records table, unknown chart type",
		req: &util.DataRequest{
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: recordsQuery,
				Options: map[string]*util.V{
					chartTypeKey: util.StringValue("pie"),
				},
			}},
		},
		wantErr: true,
	}, {
		description: "unknown collection",
		req: &util.DataRequest{
			GlobalFilters: map[string]*util.V{
				collectionNameKey: util.StringValue("missing.csv"),
			},
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: barAllQuery,
			}},
		},
		wantErr: true,
	}, {
		description: "non-string collection name",
		req: &util.DataRequest{
			GlobalFilters: map[string]*util.V{
				collectionNameKey: util.IntegerValue(3),
			},
			SeriesRequests: []*util.DataSeriesRequest{{
				QueryName: barAllQuery,
			}},
		},
		wantErr: true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			ds, err := New(10, newTestFetcher(), "drugoverdose.csv")
			if err != nil {
				t.Fatalf("Unexpected failure creating data source: %s", err)
			}
			qd, err := querydispatcher.New(ds)
			if err != nil {
				t.Fatalf("Unexpected failure creating query dispatcher: %s", err)
			}
			gotData, err := qd.HandleDataRequest(context.Background(), test.req)
			if (err != nil) != test.wantErr {
				t.Fatalf("Unexpected error status: got %v", err)
			}
			if err != nil {
				return
			}
			drb := util.NewDataResponseBuilder()
			test.wantSeries(drb.DataSeries(test.req.SeriesRequests[0]))
			if err := testutil.CompareDataResponses(t, gotData, drb); err != nil {
				t.Fatalf("Failed to compare data responses: %s", err)
			}
		})
	}
}

func TestLatest(t *testing.T) {
	for _, test := range []struct {
		description string
		records     []*mortality.Record
		want        float64
	}{{
		description: "latest year",
		records:     []*mortality.Record{age1524_2015, age1524_2016},
		want:        2,
	}, {
		description: "NaN years are skipped",
		records: []*mortality.Record{
			age1524_2015,
			{Panel: mortality.PanelAllDrugs, Age: age1524, Year: nan, Estimate: 7},
		},
		want: 1,
	}, {
		description: "no records",
		want:        nan,
	}} {
		t.Run(test.description, func(t *testing.T) {
			got := latest(test.records)
			if got != test.want && !(got != got && test.want != test.want) {
				t.Errorf("latest() = %v, wanted %v", got, test.want)
			}
		})
	}
}

func TestDatasetCaching(t *testing.T) {
	fetcher := newTestFetcher()
	ds, err := New(1, fetcher, "drugoverdose.csv")
	if err != nil {
		t.Fatalf("Unexpected failure creating data source: %s", err)
	}
	ctx := context.Background()
	for _, name := range []string{"", "drugoverdose.csv", "empty.csv", "drugoverdose.csv"} {
		if _, err := ds.Dataset(ctx, name); err != nil {
			t.Fatalf("Dataset(%q) yielded unexpected error %s", name, err)
		}
	}
	// With capacity 1, fetching empty.csv evicts drugoverdose.csv.
	want := map[string]int{
		"drugoverdose.csv": 2,
		"empty.csv":        1,
	}
	if diff := cmp.Diff(want, fetcher.fetches); diff != "" {
		t.Errorf("Got fetch counts %v, diff (-want +got) %s", fetcher.fetches, diff)
	}
	if _, err := ds.Dataset(ctx, "missing.csv"); err == nil {
		t.Errorf("Dataset(missing.csv) yielded no error, wanted one")
	}
}

func TestNewRejectsBadCapacity(t *testing.T) {
	if _, err := New(0, DatasetFetcherFunc(func(ctx context.Context, name string) (*mortality.Dataset, error) {
		return testDataset(name), nil
	}), "drugoverdose.csv"); err == nil {
		t.Errorf("New(0, ...) yielded no error, wanted one")
	}
}
