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
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ilhamster/overdoseviz/overdoseviz/analysis/mortality"
	chartmode "github.com/ilhamster/overdoseviz/overdoseviz/chart_mode"
	"github.com/ilhamster/overdoseviz/server/go/scene"
)

func rec(panel, stub, age string, year, estimate float64) *mortality.Record {
	return &mortality.Record{
		Panel:     panel,
		StubLabel: stub,
		Age:       age,
		Year:      year,
		Estimate:  estimate,
	}
}

func dataset(records ...*mortality.Record) *mortality.Dataset {
	return mortality.New("test", nil, records...)
}

func render(t *testing.T, ds *mortality.Dataset, state State) *View {
	t.Helper()
	view, err := Render(ds, state)
	if err != nil {
		t.Fatalf("Render(%+v) yielded unexpected error %s", state, err)
	}
	return view
}

func heights(nodes []*scene.Node) []float64 {
	ret := make([]float64, len(nodes))
	for idx, n := range nodes {
		ret[idx] = n.Height
	}
	return ret
}

func TestTwoYearBarChart(t *testing.T) {
	view := render(t, dataset(
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, mortality.AgeAll, 2015, 10),
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, mortality.AgeAll, 2016, 20),
	), State{})
	if view.Mode != chartmode.BarAll {
		t.Errorf("default mode = %s, want %s", view.Mode, chartmode.BarAll)
	}
	if view.Category != mortality.StubAllPersons {
		t.Errorf("default category = %q, want %q", view.Category, mortality.StubAllPersons)
	}
	bars := view.Canvas.Find(barClass)
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if diff := cmp.Diff([]float64{225, 450}, heights(bars), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("bar heights diff (-want +got):\n%s", diff)
	}
	if bars[1].Height != 2*bars[0].Height {
		t.Errorf("2016 bar height %v is not twice the 2015 bar height %v", bars[1].Height, bars[0].Height)
	}
	for _, bar := range bars {
		if bar.Fill != "#7c6e39" || !bar.Hover || bar.Tooltip == nil {
			t.Errorf("bar %+v lacks its fill, hover, or tooltip", bar)
		}
	}
	if got, want := bars[0].Tooltip.String(), "Year: 2015\nEstimate: 10"; got != want {
		t.Errorf("tooltip = %q, want %q", got, want)
	}
	infobox := view.Canvas.Find(infoboxClass)
	if len(infobox) != 1 {
		t.Fatalf("bar chart lacks its information overlay")
	}
	for _, bar := range bars {
		if got, want := []float64{bar.Tooltip.X, bar.Tooltip.Y}, []float64{infobox[0].TranslateX, infobox[0].TranslateY}; !cmp.Equal(got, want) {
			t.Errorf("bar tooltip anchored at %v, want the information overlay at %v", got, want)
		}
	}
	var buf bytes.Buffer
	if err := view.Canvas.WriteSVG(&buf); err != nil {
		t.Fatalf("WriteSVG() yielded unexpected error %s", err)
	}
	for _, want := range []string{
		`<g class="tooltip" transform="translate(910,0)"`,
		`>Year: 2016</text>`,
		`>Estimate: 20</text>`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("bar chart SVG lacks %q", want)
		}
	}
	if len(view.Canvas.Find(noDataClass)) != 0 {
		t.Errorf("non-empty bar chart shows the empty state")
	}
}

func barChartDataset() *mortality.Dataset {
	return dataset(
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, mortality.AgeAll, 2015, 16.3),
		rec(mortality.PanelAllDrugs, "Male", mortality.AgeAll, 2015, 20.8),
		rec(mortality.PanelAllDrugs, "Male", mortality.AgeAll, 2016, 26.2),
		rec(mortality.PanelAllDrugs, "Male", mortality.AgeAll, 2017, 29.1),
		rec(mortality.PanelAllDrugs, "Male", mortality.AgeAll, 2018, math.NaN()),
		rec(mortality.PanelAllDrugs, "Male", "15-24 years", 2015, 12),
		rec(mortality.PanelHeroin, "Male", mortality.AgeAll, 2015, 6.2),
	)
}

func TestBarChartCategories(t *testing.T) {
	ds := barChartDataset()
	for _, test := range []struct {
		description  string
		category     string
		wantCategory string
		wantHeights  []float64
	}{{
		description:  "selected category",
		category:     "Male",
		wantCategory: "Male",
		// 20.8, 26.2, 29.1 against a max of 29.1, and a zero-height NaN bar.
		wantHeights: []float64{450 * 20.8 / 29.1, 450 * 26.2 / 29.1, 450, 0},
	}, {
		description:  "unknown category falls back to the first",
		category:     "Martian",
		wantCategory: mortality.StubAllPersons,
		wantHeights:  []float64{450},
	}} {
		t.Run(test.description, func(t *testing.T) {
			view := render(t, ds, State{Mode: chartmode.BarAll, Category: test.category})
			if diff := cmp.Diff([]string{mortality.StubAllPersons, "Male"}, view.Categories); diff != "" {
				t.Errorf("Categories diff (-want +got):\n%s", diff)
			}
			if view.Category != test.wantCategory {
				t.Errorf("Category = %q, want %q", view.Category, test.wantCategory)
			}
			got := heights(view.Canvas.Find(barClass))
			if diff := cmp.Diff(test.wantHeights, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("bar heights diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBarChartNonFiniteEstimates(t *testing.T) {
	for _, test := range []struct {
		description string
		estimates   []float64
		wantHeights []float64
	}{{
		description: "positive infinity",
		estimates:   []float64{10, math.Inf(1)},
		wantHeights: []float64{450, 0},
	}, {
		description: "negative infinity",
		estimates:   []float64{math.Inf(-1), 5, 20},
		wantHeights: []float64{0, 112.5, 450},
	}, {
		description: "NaN and infinity only",
		estimates:   []float64{math.NaN(), math.Inf(1)},
		wantHeights: []float64{0, 0},
	}} {
		t.Run(test.description, func(t *testing.T) {
			records := []*mortality.Record{}
			for idx, est := range test.estimates {
				records = append(records, rec(mortality.PanelAllDrugs, mortality.StubAllPersons, mortality.AgeAll, float64(2015+idx), est))
			}
			view := render(t, dataset(records...), State{Mode: chartmode.BarAll})
			got := heights(view.Canvas.Find(barClass))
			if diff := cmp.Diff(test.wantHeights, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("bar heights diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmptyViews(t *testing.T) {
	ds := dataset(rec("Unrelated panel", "All persons", "All ages", 2015, 3))
	for _, mode := range chartmode.Modes() {
		t.Run(string(mode), func(t *testing.T) {
			view := render(t, ds, State{Mode: mode})
			if len(view.Canvas.Find(noDataClass)) != 1 {
				t.Errorf("empty %s view lacks the empty state", mode)
			}
			if got := len(view.Canvas.Find(barClass)) + len(view.Canvas.Find(pointClass)); got != 0 {
				t.Errorf("empty %s view draws %d marks", mode, got)
			}
			var buf bytes.Buffer
			if err := view.Canvas.WriteSVG(&buf); err != nil {
				t.Fatalf("WriteSVG() yielded unexpected error %s", err)
			}
			if !strings.Contains(buf.String(), "No data") {
				t.Errorf("empty %s SVG lacks the empty-state message", mode)
			}
		})
	}
}

func lineChartDataset() *mortality.Dataset {
	return dataset(
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, "25-34 years", 2016, 34.5),
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, "15-24 years", 2016, 10.9),
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, "25-34 years", 2015, 25.1),
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, "15-24 years", 2015, 8.6),
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, "15-24 years", 2017, 12.6),
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, mortality.AgeAll, 2015, 16.3),
		rec(mortality.PanelHeroin, mortality.StubAllPersons, "15-24 years", 2015, 3.4),
	)
}

func TestLineChart(t *testing.T) {
	view := render(t, lineChartDataset(), State{Mode: chartmode.LineAge})
	series := view.Canvas.Find(seriesClass)
	if len(series) != 2 {
		t.Fatalf("got %d series, want 2", len(series))
	}
	type seriesSummary struct {
		Stroke  string
		Markers int
		Xs      []float64
	}
	got := []seriesSummary{}
	for _, s := range series {
		line := s.Find("line")
		if len(line) != 1 {
			t.Fatalf("series has %d lines, want 1", len(line))
		}
		xs := []float64{}
		for _, p := range line[0].Points {
			xs = append(xs, p.X)
		}
		got = append(got, seriesSummary{
			Stroke:  line[0].Stroke,
			Markers: len(s.Find(pointClass)),
			Xs:      xs,
		})
	}
	// The x domain is [2014, 2018] over 900px: 225px per year.
	want := []seriesSummary{{
		Stroke:  "#1f77b4",
		Markers: 2,
		Xs:      []float64{225, 450},
	}, {
		Stroke:  "#ff7f0e",
		Markers: 3,
		Xs:      []float64{225, 450, 675},
	}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("series diff (-want +got):\n%s", diff)
	}
	point := series[0].Find(pointClass)[0]
	if got, want := point.Tooltip.String(), "Age Group: 25-34 years\nYear: 2015\nEstimate: 25.1"; got != want {
		t.Errorf("marker tooltip = %q, want %q", got, want)
	}
	if point.Tooltip.X != point.X+20 || point.Tooltip.Y != point.Y {
		t.Errorf("marker tooltip anchored at (%v, %v), want (%v, %v)", point.Tooltip.X, point.Tooltip.Y, point.X+20, point.Y)
	}
	legend := view.Canvas.Find(legendClass)
	if len(legend) != 1 || legend[0].TranslateX != 900 || legend[0].TranslateY != 20 {
		t.Fatalf("line legend missing or misplaced: %+v", legend)
	}
	if got := legend[0].Count(scene.Text); got != 2 {
		t.Errorf("line legend has %d labels, want 2", got)
	}
	ticks := []string{}
	for _, axis := range view.Canvas.Find(xAxisClass) {
		axis.Walk(func(n *scene.Node) {
			if n.Kind == scene.Text {
				ticks = append(ticks, n.Text)
			}
		})
	}
	if diff := cmp.Diff([]string{"2015", "2016", "2017"}, ticks); diff != "" {
		t.Errorf("x ticks diff (-want +got):\n%s", diff)
	}
	if len(view.Canvas.Find(barClass)) != 0 || len(view.Canvas.Find(infoboxClass)) != 0 {
		t.Errorf("line chart holds bar chart elements")
	}
}

func TestLineChartKeepsNaNMarkers(t *testing.T) {
	view := render(t, dataset(
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, "15-24 years", 2015, 8.6),
		rec(mortality.PanelAllDrugs, mortality.StubAllPersons, "15-24 years", 2016, math.NaN()),
	), State{Mode: chartmode.LineAge})
	if got := len(view.Canvas.Find(pointClass)); got != 2 {
		t.Errorf("got %d markers, want 2", got)
	}
	if got := len(view.Canvas.Find("line")[0].Points); got != 1 {
		t.Errorf("polyline has %d points, want 1", got)
	}
}

func TestGroupBarChart(t *testing.T) {
	records := []*mortality.Record{}
	for _, year := range []float64{2016, 2015} {
		for idx, drugType := range mortality.DrugTypes() {
			if year == 2016 && drugType == mortality.PanelHeroin {
				continue
			}
			records = append(records, rec(drugType, mortality.StubAllPersons, mortality.AgeAll, year, float64(10*(idx+1))+year-2015))
		}
	}
	records = append(records, rec(mortality.PanelHeroin, "Male", mortality.AgeAll, 2016, 99))
	view := render(t, dataset(records...), State{Mode: chartmode.GroupBar})
	groups := view.Canvas.Find(yearGroupClass)
	if len(groups) != 2 {
		t.Fatalf("got %d year groups, want 2", len(groups))
	}
	if groups[0].TranslateX >= groups[1].TranslateX {
		t.Errorf("year groups are not in ascending year order")
	}
	// The max is 40, heroin in 2015; the Male heroin record is filtered out.
	want := [][]float64{
		{450 * 10 / 40.0, 450 * 20 / 40.0, 450 * 30 / 40.0, 450},
		{450 * 11 / 40.0, 450 * 21 / 40.0, 450 * 31 / 40.0, 0},
	}
	got := [][]float64{}
	fills := [][]string{}
	for _, g := range groups {
		bars := g.Find(barClass)
		got = append(got, heights(bars))
		f := []string{}
		for _, bar := range bars {
			f = append(f, bar.Fill)
		}
		fills = append(fills, f)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("bar heights diff (-want +got):\n%s", diff)
	}
	wantFills := []string{"#7c6e39", "#feb236", "#d64161", "#ff7b25"}
	if diff := cmp.Diff([][]string{wantFills, wantFills}, fills); diff != "" {
		t.Errorf("bar fills diff (-want +got):\n%s", diff)
	}
	legend := view.Canvas.Find(legendClass)
	if len(legend) != 1 || legend[0].TranslateX != 20 || legend[0].TranslateY != 20 {
		t.Fatalf("grouped bar legend missing or misplaced: %+v", legend)
	}
	if got := legend[0].Count(scene.Rect); got != 4 {
		t.Errorf("grouped bar legend has %d swatches, want 4", got)
	}
}

func TestAxisTitles(t *testing.T) {
	ds := barChartDataset()
	for _, mode := range chartmode.Modes() {
		t.Run(string(mode), func(t *testing.T) {
			view := render(t, ds, State{Mode: mode})
			xLabels := view.Canvas.Find(xAxisLabelClass)
			yLabels := view.Canvas.Find(yAxisLabelClass)
			if len(xLabels) != 1 || len(yLabels) != 1 {
				t.Fatalf("got %d x titles and %d y titles, want one each", len(xLabels), len(yLabels))
			}
			x, y := xLabels[0], yLabels[0]
			if x.Text != XAxisTitle || x.X != 450 || x.Y != 480 || x.Anchor != "middle" {
				t.Errorf("x title = %+v", x)
			}
			if y.Text != YAxisTitle || y.X != -225 || y.Y != -25 || y.Rotate != -90 || y.Anchor != "middle" {
				t.Errorf("y title = %+v", y)
			}
		})
	}
}

func TestFormatting(t *testing.T) {
	for _, test := range []struct {
		got, want string
	}{
		{FormatYear(2015), "2015"},
		{FormatYear(math.NaN()), "NaN"},
		{FormatEstimate(16.3), "16.3"},
		{FormatEstimate(1234.5), "1,234.5"},
		{FormatEstimate(math.NaN()), "NaN"},
		{formatTick(2.5, 0.5), "2.5"},
		{formatTick(5, 0.5), "5.0"},
		{formatTick(1000, 200), "1,000"},
		{formatTick(0.25, 0.05), "0.25"},
	} {
		if test.got != test.want {
			t.Errorf("got %q, want %q", test.got, test.want)
		}
	}
}

func TestRenderUnknownMode(t *testing.T) {
	if _, err := Render(barChartDataset(), State{Mode: "pie"}); err == nil {
		t.Errorf("Render() of an unknown mode yielded no error")
	}
}
