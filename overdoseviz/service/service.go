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

// Package service serves OverdoseViz charts and chart data over HTTP.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/google/safehtml/uncheckedconversions"
	"github.com/ilhamster/overdoseviz/overdoseviz/analysis/mortality"
	mortalityreader "github.com/ilhamster/overdoseviz/overdoseviz/analysis/mortality_reader"
	chartmode "github.com/ilhamster/overdoseviz/overdoseviz/chart_mode"
	datasource "github.com/ilhamster/overdoseviz/overdoseviz/data_source"
	"github.com/ilhamster/overdoseviz/overdoseviz/render"
	"github.com/ilhamster/overdoseviz/server/go/handlers"
	querydispatcher "github.com/ilhamster/overdoseviz/server/go/query_dispatcher"
)

// Request query parameters.
const (
	chartTypeParam  = "chartType"
	categoryParam   = "category"
	collectionParam = "collection"
)

const (
	pagePath  = "/"
	chartPath = "/chart.svg"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Drug overdose death rates</title>
<style>
body{font-family:sans-serif}
#header{display:flex;gap:1em;align-items:center;margin-bottom:1em}
</style>
</head>
<body>
<form id="header" method="get" action="/">
<input type="hidden" name="collection" value="{{.Collection}}">
<label>Chart
<select id="chartType" name="chartType" onchange="this.form.submit()">
{{range .Modes}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
</label>
{{if .ShowCategories}}<span id="optionforBarChart">
<label>Category
<select id="categoryDropdown" name="category" onchange="this.form.submit()">
{{range .Categories}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
</label>
</span>{{end}}
</form>
<div id="chart">{{.Chart}}</div>
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

type option struct {
	Value, Label string
	Selected     bool
}

type pageData struct {
	Collection     string
	Modes          []option
	ShowCategories bool
	Categories     []option
	Chart          safehtml.HTML
}

// Service serves the chart page, the bare chart SVG, and chart-data queries
// over the datasets under a data root.
type Service struct {
	ds           *datasource.DataSource
	queryHandler handlers.Handler
}

// New returns a new Service serving collections under dataRoot, keeping up to
// cap of them loaded.  The default collection is loaded immediately, and New
// fails if it cannot be.
func New(ctx context.Context, dataRoot, defaultCollection string, cap int) (*Service, error) {
	fetcher := datasource.DatasetFetcherFunc(func(ctx context.Context, collectionName string) (*mortality.Dataset, error) {
		return mortalityreader.Open(ctx, dataRoot, collectionName)
	})
	ds, err := datasource.New(cap, fetcher, defaultCollection)
	if err != nil {
		return nil, err
	}
	dataset, err := ds.Dataset(ctx, defaultCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to load default collection: %w", err)
	}
	log.Printf("Loaded %d records from %s", dataset.Len(), defaultCollection)
	qd, err := querydispatcher.New(ds)
	if err != nil {
		return nil, err
	}
	return &Service{
		ds:           ds,
		queryHandler: handlers.NewQueryHandler(qd).Wrap(handlers.Traced()),
	}, nil
}

// RegisterHandlers registers the receiver's handlers on mux.
func (s *Service) RegisterHandlers(mux *http.ServeMux) {
	for path, handler := range s.queryHandler.HandlersByPath() {
		mux.HandleFunc(path, handler)
	}
	traced := handlers.Traced()
	mux.HandleFunc("GET "+pagePath+"{$}", traced(s.pageHandler))
	mux.HandleFunc("GET "+chartPath, traced(s.chartHandler))
}

// httpError is an error carrying an HTTP status.
type httpError struct {
	status int
	err    error
}

func (he *httpError) Error() string {
	return he.err.Error()
}

func (he *httpError) Unwrap() error {
	return he.err
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if he, ok := err.(*httpError); ok {
		status = he.status
	}
	http.Error(w, err.Error(), status)
}

// view renders the chart requested by req.
func (s *Service) view(req *http.Request) (*render.View, error) {
	q := req.URL.Query()
	mode, err := chartmode.Parse(q.Get(chartTypeParam))
	if err != nil {
		return nil, &httpError{http.StatusBadRequest, err}
	}
	dataset, err := s.ds.Dataset(req.Context(), q.Get(collectionParam))
	if err != nil {
		return nil, err
	}
	return render.Render(dataset, render.State{
		Mode:     mode,
		Category: q.Get(categoryParam),
	})
}

func (s *Service) chartHandler(w http.ResponseWriter, req *http.Request) {
	view, err := s.view(req)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := view.Canvas.WriteSVG(&buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

// inlineSVG returns the SVG document in doc as an HTML fragment, dropping
// its XML prolog.
func inlineSVG(doc string) safehtml.HTML {
	if idx := strings.Index(doc, "<svg"); idx >= 0 {
		doc = doc[idx:]
	}
	// The canvas serializer escapes all text and attribute content.
	return uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(doc)
}

func (s *Service) pageHandler(w http.ResponseWriter, req *http.Request) {
	view, err := s.view(req)
	if err != nil {
		writeError(w, err)
		return
	}
	var svgBuf bytes.Buffer
	if err := view.Canvas.WriteSVG(&svgBuf); err != nil {
		writeError(w, err)
		return
	}
	data := &pageData{
		Collection:     req.URL.Query().Get(collectionParam),
		ShowCategories: view.Mode == chartmode.BarAll,
		Chart:          inlineSVG(svgBuf.String()),
	}
	for _, mode := range chartmode.Modes() {
		data.Modes = append(data.Modes, option{
			Value:    string(mode),
			Label:    mode.DisplayName(),
			Selected: mode == view.Mode,
		})
	}
	for _, category := range view.Categories {
		data.Categories = append(data.Categories, option{
			Value:    category,
			Label:    category,
			Selected: category == view.Category,
		})
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		writeError(w, fmt.Errorf("failed to render page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
