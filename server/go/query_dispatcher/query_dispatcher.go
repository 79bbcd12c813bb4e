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

// Package querydispatcher provides QueryDispatcher, a type for multiplexing
// multiple backend chart-data sources.
package querydispatcher

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/ilhamster/overdoseviz/server/go/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/ilhamster/overdoseviz/server/go/query_dispatcher"

// dataSource represents a single chart data source.  dataSource instances
// must support concurrent HandleDataSeriesRequests calls.
type dataSource interface {
	// SupportedDataSeriesQueries returns the list of DataSeriesRequest
	// QueryNames this dataSource is able to handle.  Query names should be
	// unique to their dataSource: e.g., they may be prefixed with the
	// dataSource's domain.
	SupportedDataSeriesQueries() []string
	// HandleDataSeriesRequests handles a set of DataSeriesRequests for the
	// supplied global filters.  dataSource implementations should use the
	// provided DataResponseBuilder to add and populate a new DataSeries.  Any
	// returned error will cancel the entire DataRequest and surface to the
	// client.
	HandleDataSeriesRequests(ctx context.Context, globalState map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error
}

// QueryDispatcher multiplexes multiple data query handlers, which may be from
// entirely different datasets and analysis libraries, allowing common queries
// to be satisfied by a variety of data providers.
type QueryDispatcher struct {
	dataSources []dataSource
	// Maps data series query names to indices (in dataSources) of the
	// dataSources that handle those queries.
	dataSeriesQueryHandlers map[string]int
}

// New returns a *QueryDispatcher wrapping the provided dataSources.
func New(dss ...dataSource) (*QueryDispatcher, error) {
	qd := &QueryDispatcher{
		dataSeriesQueryHandlers: map[string]int{},
	}
	for dsIdx, ds := range dss {
		qd.dataSources = append(qd.dataSources, ds)
		for _, queryName := range ds.SupportedDataSeriesQueries() {
			if _, ok := qd.dataSeriesQueryHandlers[queryName]; ok {
				return nil, fmt.Errorf(
					"multiple dataSources handle data query `%s`", queryName)
			}
			qd.dataSeriesQueryHandlers[queryName] = dsIdx
		}
	}
	return qd, nil
}

// SupportedDataSeriesQueries returns the sorted names of all queries
// supported by the receiver.
func (qd *QueryDispatcher) SupportedDataSeriesQueries() []string {
	ret := make([]string, 0, len(qd.dataSeriesQueryHandlers))
	for queryName := range qd.dataSeriesQueryHandlers {
		ret = append(ret, queryName)
	}
	sort.Strings(ret)
	return ret
}

// HandleDataRequest distributes the provided DataRequest's constituent
// DataSeriesRequests to their appropriate dataSources for processing, then
// assembles the returned DataSeries into a single Data response.
func (qd *QueryDispatcher) HandleDataRequest(ctx context.Context, req *util.DataRequest) (*util.Data, error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "HandleDataRequest")
	defer span.End()
	drb := util.NewDataResponseBuilder()
	// A mapping from dataSource index to a set of DataRequests that source can
	// handle.
	groupedReqs := map[int][]*util.DataSeriesRequest{}
	queryNames := make([]string, 0, len(req.SeriesRequests))
	for _, seriesReq := range req.SeriesRequests {
		dsIdx, ok := qd.dataSeriesQueryHandlers[seriesReq.QueryName]
		if !ok {
			err := fmt.Errorf("unsupported data query `%s`", seriesReq.QueryName)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		groupedReqs[dsIdx] = append(groupedReqs[dsIdx], seriesReq)
		queryNames = append(queryNames, seriesReq.QueryName)
	}
	span.SetAttributes(attribute.StringSlice("overdoseviz.queries", queryNames))
	errg, ctx := errgroup.WithContext(ctx)
	for dsIdx, seriesReqs := range groupedReqs {
		ds := qd.dataSources[dsIdx]
		errg.Go(func() error {
			return ds.HandleDataSeriesRequests(ctx, req.GlobalFilters, drb, seriesReqs)
		})
	}
	if err := errg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	log.Printf("Handled %v queries in %s", queryNames, time.Since(start))
	return drb.Data()
}
