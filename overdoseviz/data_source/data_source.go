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

// Package datasource provides a chart-data source for overdose mortality
// datasets.
package datasource

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"
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
	"github.com/ilhamster/overdoseviz/server/go/scene"
	"github.com/ilhamster/overdoseviz/server/go/style"
	"github.com/ilhamster/overdoseviz/server/go/table"
	"github.com/ilhamster/overdoseviz/server/go/util"
	weightedtree "github.com/ilhamster/overdoseviz/server/go/weighted_tree"
	xychart "github.com/ilhamster/overdoseviz/server/go/xy_chart"
)

const (
	categoriesQuery = "overdose.categories"
	barAllQuery     = "overdose.bar_all"
	lineAgeQuery    = "overdose.line_age"
	groupBarQuery   = "overdose.group_bar"
	recordsQuery    = "overdose.records"
	ageTrendsQuery  = "overdose.age_trends"
	breakdownQuery  = "overdose.age_breakdown"

	sparklinePayloadType = "sparkline"

	collectionNameKey = "collection_name"
	categoryKey       = "category"
	categoriesKey     = "categories"
	chartTypeKey      = "chart_type"
	chartTypesKey     = "chart_types"

	panelKey     = "panel"
	stubLabelKey = "stub_label"
	ageKey       = "age"
	yearKey      = "year"
	estimateKey  = "estimate"

	recordCountKey   = "record_count"
	estimateCountKey = "estimate_count"
	estimateMinKey   = "estimate_min"
	estimateMaxKey   = "estimate_max"
	estimateMeanKey  = "estimate_mean"
	emptyKey         = "empty"
)

// queryFilters is assembled once per DataRequest, prior to handling any
// individual DataSeriesRequest.
type queryFilters struct {
	collectionName string
}

// filterFromGlobalFilters returns a queryFilters constructed from the provided
// DataRequest global filters, falling back to defaultCollection when no
// collection is named.
func filterFromGlobalFilters(globalFilters map[string]*util.V, defaultCollection string) (*queryFilters, error) {
	collectionName, err := util.StringOption(globalFilters, collectionNameKey, defaultCollection)
	if err != nil {
		return nil, fmt.Errorf("filter option '%s': %w", collectionNameKey, err)
	}
	if collectionName == "" {
		return nil, fmt.Errorf("missing required filter option '%s'", collectionNameKey)
	}
	return &queryFilters{
		collectionName: collectionName,
	}, nil
}

// DatasetFetcher describes types capable of fetching datasets by collection
// name.
type DatasetFetcher interface {
	// Fetch fetches the dataset specified by collectionName, returning an
	// error if a failure is encountered.
	Fetch(ctx context.Context, collectionName string) (*mortality.Dataset, error)
}

// DatasetFetcherFunc adapts a function to a DatasetFetcher.
type DatasetFetcherFunc func(ctx context.Context, collectionName string) (*mortality.Dataset, error)

// Fetch invokes the receiver.
func (f DatasetFetcherFunc) Fetch(ctx context.Context, collectionName string) (*mortality.Dataset, error) {
	return f(ctx, collectionName)
}

// DataSource implements querydispatcher.dataSource for overdose mortality
// data.  It caches the most recently used datasets, and is safe for
// concurrent use.
type DataSource struct {
	mu sync.Mutex
	// An LRU cache holding the most recently-accessed datasets.
	lru *simplelru.LRU
	// A fetcher used to fetch uncached datasets.
	fetcher           DatasetFetcher
	defaultCollection string
}

// New returns a new DataSource with the specified cache capacity, using the
// provided fetcher.  Requests naming no collection use defaultCollection.
func New(cap int, fetcher DatasetFetcher, defaultCollection string) (*DataSource, error) {
	lru, err := simplelru.NewLRU(cap /*no onEvict policy*/, nil)
	if err != nil {
		return nil, err
	}
	return &DataSource{
		lru:               lru,
		fetcher:           fetcher,
		defaultCollection: defaultCollection,
	}, nil
}

// SupportedDataSeriesQueries returns the DataSeriesRequest query names
// supported by DataSource.
func (ds *DataSource) SupportedDataSeriesQueries() []string {
	return []string{
		categoriesQuery,
		barAllQuery,
		lineAgeQuery,
		groupBarQuery,
		recordsQuery,
		ageTrendsQuery,
		breakdownQuery,
	}
}

// Dataset returns the specified dataset from the LRU if it's present there.
// If it isn't already in the LRU, it is fetched and added to the LRU before
// being returned.  An empty collectionName names the default collection.
func (ds *DataSource) Dataset(ctx context.Context, collectionName string) (*mortality.Dataset, error) {
	if collectionName == "" {
		collectionName = ds.defaultCollection
	}
	ds.mu.Lock()
	dsIf, ok := ds.lru.Get(collectionName)
	ds.mu.Unlock()
	if ok {
		dataset, ok := dsIf.(*mortality.Dataset)
		if !ok {
			return nil, fmt.Errorf("cached collection '%s' didn't contain a dataset", collectionName)
		}
		return dataset, nil
	}
	dataset, err := ds.fetcher.Fetch(ctx, collectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection '%s': %w", collectionName, err)
	}
	ds.mu.Lock()
	ds.lru.Add(collectionName, dataset)
	ds.mu.Unlock()
	return dataset, nil
}

// HandleDataSeriesRequests handles the provided set of DataSeriesRequests, with
// the provided global filters.  It assembles its responses in the provided
// DataResponseBuilder.
func (ds *DataSource) HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error {
	// Log how long it takes to handle each DataRequest.
	start := time.Now()
	queryNames := make([]string, 0, len(reqs))
	for _, req := range reqs {
		queryNames = append(queryNames, req.QueryName)
	}
	defer func() {
		log.Printf("Handled [%s] queries in %s", strings.Join(queryNames, ", "), time.Since(start))
	}()
	qf, err := filterFromGlobalFilters(globalFilters, ds.defaultCollection)
	if err != nil {
		return err
	}
	// Fetch the dataset, from the cache if it's there.
	dataset, err := ds.Dataset(ctx, qf.collectionName)
	if err != nil {
		return err
	}
	for _, req := range reqs {
		series := drb.DataSeries(req)
		var err error
		switch req.QueryName {
		case categoriesQuery:
			err = handleCategoriesQuery(dataset, series, req.Options)
		case barAllQuery:
			err = handleBarAllQuery(dataset, series, req.Options)
		case lineAgeQuery:
			err = handleLineAgeQuery(dataset, series, req.Options)
		case groupBarQuery:
			err = handleGroupBarQuery(dataset, series, req.Options)
		case recordsQuery:
			err = handleRecordsQuery(dataset, series, req.Options)
		case ageTrendsQuery:
			err = handleAgeTrendsQuery(dataset, series, req.Options)
		case breakdownQuery:
			err = handleBreakdownQuery(dataset, series, req.Options)
		default:
			err = fmt.Errorf("unsupported data query")
		}
		if err != nil {
			return fmt.Errorf("error handling data query %s: %w", req.QueryName, err)
		}
	}
	return nil
}

// selectedCategory returns the bar-chart category requested in reqOpts,
// falling back to the first category.
func selectedCategory(dataset *mortality.Dataset, reqOpts map[string]*util.V) ([]string, string, error) {
	requested, err := util.StringOption(reqOpts, categoryKey, "")
	if err != nil {
		return nil, "", err
	}
	categories := dataset.BarCategories()
	return categories, render.ResolveCategory(categories, requested), nil
}

func handleCategoriesQuery(dataset *mortality.Dataset, series util.DataBuilder, reqOpts map[string]*util.V) error {
	categories, selected, err := selectedCategory(dataset, reqOpts)
	if err != nil {
		return err
	}
	modes := chartmode.Modes()
	modeNames := make([]string, len(modes))
	for idx, mode := range modes {
		modeNames[idx] = string(mode)
		series.Child().With(
			util.StringProperty(chartTypeKey, string(mode)),
			util.StringProperty("label", mode.DisplayName()),
		)
	}
	series.With(
		util.StringsProperty(categoriesKey, categories...),
		util.StringProperty(categoryKey, selected),
		util.StringsProperty(chartTypesKey, modeNames...),
		util.StringProperty(chartTypeKey, string(chartmode.Default)),
	)
	return nil
}

var (
	yearCat     = category.New(yearKey, render.XAxisTitle, "Year of death")
	estimateCat = category.New(estimateKey, "Estimate", render.YAxisTitle)

	xAxisRenderSettings = continuousaxis.XAxisRenderSettings{
		LabelHeightPx:   int64(scene.DefaultMargin.Bottom),
		MarkersHeightPx: 20,
	}
	yAxisRenderSettings = continuousaxis.YAxisRenderSettings{
		LabelWidthPx:   15,
		MarkersWidthPx: int64(scene.DefaultMargin.Left) - 15,
	}

	recordTooltip = label.Tooltip(
		[2]string{render.XAxisTitle, yearKey},
		[2]string{"Estimate", estimateKey},
	)
)

// valueAxis returns the estimate axis over records, spanning [0, max].
func valueAxis(records []*mortality.Record) *continuousaxis.Axis {
	max, ok := mortality.MaxEstimate(records)
	if !ok || max <= 0 {
		max = 1
	}
	return continuousaxis.NewDoubleAxis(estimateCat, 0, max).WithNiceTicks(0)
}

// summarize annotates with a summary of the provided records' estimates.
func summarize(records []*mortality.Record) util.PropertyUpdate {
	summary := mortality.Summarize(records)
	return util.Chain(
		util.IntegerProperty(recordCountKey, int64(summary.Records)),
		util.IntegerProperty(estimateCountKey, int64(summary.Estimates)),
		util.DoubleProperty(estimateMinKey, summary.Min),
		util.DoubleProperty(estimateMaxKey, summary.Max),
		util.DoubleProperty(estimateMeanKey, summary.Mean),
		util.If(len(records) == 0, util.IntegerProperty(emptyKey, 1)),
	)
}

// recordProperties annotates with a record's year and estimate.
func recordProperties(year, estimate float64) util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(yearKey, render.FormatYear(year)),
		util.DoubleProperty(estimateKey, estimate),
	)
}

func handleBarAllQuery(dataset *mortality.Dataset, series util.DataBuilder, reqOpts map[string]*util.V) error {
	_, selected, err := selectedCategory(dataset, reqOpts)
	if err != nil {
		return err
	}
	records := dataset.BarSeries(selected)
	years := mortality.Years(records)
	yearKeys := make([]string, len(years))
	for idx, year := range years {
		yearKeys[idx] = render.FormatYear(year)
	}
	bc := barchart.New(
		series,
		categoryaxis.New(yearCat, render.BarPadding, yearKeys...),
		valueAxis(records),
		&barchart.RenderSettings{
			CategoryAxisMinPx:   0,
			CategoryAxisMaxPx:   scene.DefaultWidth,
			XAxisRenderSettings: &xAxisRenderSettings,
			YAxisRenderSettings: &yAxisRenderSettings,
		},
		util.StringProperty(categoryKey, selected),
		color.Primary(color.Bar),
		style.New().HoverOpacity(scene.HoverOpacity).Define(),
		summarize(records),
	)
	// Records sharing a year share a category band.
	bandsByYear := map[string]*barchart.Category{}
	for _, r := range records {
		if math.IsNaN(r.Year) {
			continue
		}
		key := render.FormatYear(r.Year)
		band, ok := bandsByYear[key]
		if !ok {
			band = bc.Category(category.New(key, key, key))
			bandsByYear[key] = band
		}
		band.Bar(0, mortality.FiniteOrZero(r.Estimate)).With(
			recordProperties(r.Year, r.Estimate),
			recordTooltip,
		)
	}
	return nil
}

func handleLineAgeQuery(dataset *mortality.Dataset, series util.DataBuilder, reqOpts map[string]*util.V) error {
	groups := dataset.AgeSeries()
	all := []*mortality.Record{}
	ages := make([]string, len(groups))
	for idx, group := range groups {
		all = append(all, group.Records...)
		ages[idx] = group.Age
	}
	years := mortality.SortedYears(all)
	xAxis := continuousaxis.NewDoubleAxis(yearCat, years...).
		WithTicks(years...).
		WithTickFormat(continuousaxis.IntegerTickFormat)
	if len(years) > 0 {
		xAxis.Pad(1)
	} else {
		xAxis.Include(0, 1)
	}
	palette := color.NewPalette("age_group", color.Category10...).WithKeys(ages...)
	ageCats := category.NewSet("age_", ages...)
	chart := xychart.New(series, xAxis, valueAxis(all),
		palette.Define(),
		style.New().StrokeWidth(2).Radius(3).Define(),
		summarize(all),
	).WithLegend(scene.DefaultWidth, 20)
	for _, group := range groups {
		ageCat, _ := ageCats.Get(group.Age)
		s := chart.AddSeries(ageCat,
			palette.Stroke(group.Age),
			palette.Primary(group.Age),
			label.Tooltip(
				[2]string{"Age Group", ageKey},
				[2]string{render.XAxisTitle, yearKey},
				[2]string{"Estimate", estimateKey},
			),
		)
		for _, r := range group.Records {
			s.WithPoint(r.Year, r.Estimate,
				util.StringProperty(ageKey, r.Age),
				recordProperties(r.Year, r.Estimate),
			)
		}
	}
	return nil
}

func handleGroupBarQuery(dataset *mortality.Dataset, series util.DataBuilder, reqOpts map[string]*util.V) error {
	grid := dataset.DrugYearGrid()
	yearKeys := make([]string, len(grid.Years))
	for idx, year := range grid.Years {
		yearKeys[idx] = render.FormatYear(year)
	}
	palette := color.NewPalette("drug_type", color.DrugTypes...).WithKeys(grid.DrugTypes...)
	lanes := category.NewSet("drug_", grid.DrugTypes...)
	records := grid.Records()
	bc := barchart.New(
		series,
		categoryaxis.New(yearCat, render.YearPadding, yearKeys...),
		valueAxis(records),
		&barchart.RenderSettings{
			LanePadding:         render.DrugTypePadding,
			CategoryAxisMinPx:   -1,
			CategoryAxisMaxPx:   scene.DefaultWidth + 1,
			XAxisRenderSettings: &xAxisRenderSettings,
			YAxisRenderSettings: &yAxisRenderSettings,
		},
		palette.Define(),
		style.New().HoverOpacity(scene.HoverOpacity).Define(),
		summarize(records),
	)
	for yearIdx, key := range yearKeys {
		band := bc.Category(category.New(key, key, key))
		for _, cell := range grid.Cells[yearIdx] {
			lane, _ := lanes.Get(cell.DrugType)
			band.LaneBar(lane, 0, mortality.FiniteOrZero(cell.Estimate)).With(
				palette.Primary(cell.DrugType),
				util.StringProperty(panelKey, cell.DrugType),
				recordProperties(cell.Year, cell.Estimate),
				label.Tooltip(
					[2]string{"Drug Type", panelKey},
					[2]string{render.XAxisTitle, yearKey},
					[2]string{"Estimate", estimateKey},
				),
			)
		}
	}
	return nil
}

var (
	panelCol     = table.Column(category.New(panelKey, "Panel", "The overdose-death subset measured"))
	stubLabelCol = table.Column(category.New(stubLabelKey, "Category", "The demographic subgroup"))
	ageCol       = table.Column(category.New(ageKey, "Age", "The age group"))
	yearCol      = table.Column(category.New(yearKey, "Year", "The year of death")).Sortable(table.Ascending)
	estimateCol  = table.Column(category.New(estimateKey, "Estimate", render.YAxisTitle))

	intensitySpace = color.NewSpace("estimate_intensity", "rgb(255, 255, 255)", color.Bar)

	renderSettings = &table.RenderSettings{
		RowHeightPx: 20,
		FontSizePx:  14,
	}
)

func handleRecordsQuery(dataset *mortality.Dataset, tableDb util.DataBuilder, reqOpts map[string]*util.V) error {
	modeName, err := util.StringOption(reqOpts, chartTypeKey, string(chartmode.Default))
	if err != nil {
		return err
	}
	mode, err := chartmode.Parse(modeName)
	if err != nil {
		return err
	}
	var records []*mortality.Record
	switch mode {
	case chartmode.BarAll:
		_, selected, err := selectedCategory(dataset, reqOpts)
		if err != nil {
			return err
		}
		records = dataset.BarSeries(selected)
	case chartmode.LineAge:
		for _, group := range dataset.AgeSeries() {
			records = append(records, group.Records...)
		}
	case chartmode.GroupBar:
		records = dataset.DrugYearGrid().Records()
	}
	max, ok := mortality.MaxEstimate(records)
	t := table.New(tableDb, renderSettings, panelCol, stubLabelCol, ageCol, yearCol, estimateCol).With(
		intensitySpace.Define(),
		util.StringProperty(chartTypeKey, string(mode)),
	)
	for _, r := range records {
		row := t.Row(
			table.Cell(panelCol, util.String(r.Panel)),
			table.Cell(stubLabelCol, util.String(r.StubLabel)),
			table.Cell(ageCol, util.String(r.Age)),
			table.Cell(yearCol, util.String(render.FormatYear(r.Year))),
			table.Cell(estimateCol, util.Double(r.Estimate)),
		)
		row.With(util.If(ok && max > 0 && !math.IsNaN(r.Estimate) && !math.IsInf(r.Estimate, 0),
			intensitySpace.PrimaryColor(r.Estimate/max)))
	}
	return nil
}

var (
	latestCol = table.Column(category.New("latest_estimate", "Latest estimate", "The estimate in the most recent year"))
	trendCol  = table.Column(category.New("trend", "Trend", "Estimates by year"))
)

// latest returns the estimate of the latest-year record in records, which
// must be sorted by ascending year with NaN years last.  It returns NaN if
// there is none.
func latest(records []*mortality.Record) float64 {
	for idx := len(records) - 1; idx >= 0; idx-- {
		if r := records[idx]; !math.IsNaN(r.Year) {
			return r.Estimate
		}
	}
	return math.NaN()
}

// handleAgeTrendsQuery builds a table with one row per age group, each
// bearing a sparkline of that group's estimates by year.
func handleAgeTrendsQuery(dataset *mortality.Dataset, tableDb util.DataBuilder, reqOpts map[string]*util.V) error {
	groups := dataset.AgeSeries()
	ages := make([]string, len(groups))
	for idx, group := range groups {
		ages[idx] = group.Age
	}
	palette := color.NewPalette("age_group", color.Category10...).WithKeys(ages...)
	t := table.New(tableDb, renderSettings, ageCol, latestCol, trendCol).With(
		palette.Define(),
	)
	latests := make([]float64, len(groups))
	for idx, group := range groups {
		latests[idx] = latest(group.Records)
		row := t.Row(
			table.Cell(ageCol, util.String(group.Age)),
			table.Cell(latestCol, util.Double(latests[idx])),
		).With(
			magnitude.SelfMagnitude(latests[idx]),
		)
		years := mortality.SortedYears(group.Records)
		xAxis := continuousaxis.NewDoubleAxis(yearCat, years...).
			WithTicks(years...).
			WithTickFormat(continuousaxis.IntegerTickFormat)
		sparkline := xychart.New(
			payload.New(row.AddCell(table.Cell(trendCol, util.String(""))), sparklinePayloadType),
			xAxis,
			valueAxis(group.Records),
		)
		series := sparkline.AddSeries(category.New("age_"+category.Slug(group.Age), group.Age, group.Age),
			palette.Stroke(group.Age),
		)
		for _, r := range group.Records {
			series.WithPoint(r.Year, r.Estimate)
		}
	}
	t.With(magnitude.TotalMagnitude(latests...))
	return nil
}

var treeRenderSettings = &weightedtree.RenderSettings{
	FrameHeightPx: 20,
}

// handleBreakdownQuery builds a weighted tree of one year's age-group
// estimates, with one root per panel.  The year is given by the 'year'
// option, defaulting to the latest year with age-group records.
func handleBreakdownQuery(dataset *mortality.Dataset, treeDb util.DataBuilder, reqOpts map[string]*util.V) error {
	records := dataset.Select(mortality.WithoutAge(mortality.AgeAll))
	yearStr, err := util.StringOption(reqOpts, yearKey, "")
	if err != nil {
		return err
	}
	year := math.NaN()
	if yearStr != "" {
		year, err = strconv.ParseFloat(yearStr, 64)
		if err != nil {
			return fmt.Errorf("option '%s': %w", yearKey, err)
		}
	} else if years := mortality.SortedYears(records); len(years) > 0 {
		year = years[len(years)-1]
	}
	ages := []string{}
	selected := []*mortality.Record{}
	seenAges := map[string]struct{}{}
	for _, r := range records {
		if r.Year != year || math.IsNaN(r.Estimate) {
			continue
		}
		selected = append(selected, r)
		if _, ok := seenAges[r.Age]; !ok {
			seenAges[r.Age] = struct{}{}
			ages = append(ages, r.Age)
		}
	}
	palette := color.NewPalette("age_group", color.Category10...).WithKeys(ages...)
	tree := weightedtree.New(treeDb, treeRenderSettings,
		util.StringProperty(yearKey, render.FormatYear(year)),
		palette.Define(),
	).TopDown()
	panels := map[string]*weightedtree.Node{}
	for _, r := range selected {
		panel, ok := panels[r.Panel]
		if !ok {
			panel = tree.Node(0, util.StringProperty(panelKey, r.Panel))
			panels[r.Panel] = panel
		}
		panel.Node(r.Estimate,
			util.StringProperty(ageKey, r.Age),
			util.StringProperty(stubLabelKey, r.StubLabel),
			util.DoubleProperty(estimateKey, r.Estimate),
			palette.Primary(r.Age),
		)
	}
	tree.Finish()
	return nil
}
