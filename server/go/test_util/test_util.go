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

// Package testutil provides helpers for testing chart-data response
// construction.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/overdoseviz/server/go/util"
)

// UpdateComparator checks that a set of PropertyUpdates under test applies
// the same transformation as an expected set.
type UpdateComparator struct {
	got  []util.PropertyUpdate
	want []util.PropertyUpdate
}

// NewUpdateComparator returns a new, empty UpdateComparator.
func NewUpdateComparator() *UpdateComparator {
	return &UpdateComparator{}
}

// WithTestUpdates specifies the PropertyUpdates under test.
func (uc *UpdateComparator) WithTestUpdates(got ...util.PropertyUpdate) *UpdateComparator {
	uc.got = got
	return uc
}

// WithWantUpdates specifies the PropertyUpdates the test updates should
// match.
func (uc *UpdateComparator) WithWantUpdates(want ...util.PropertyUpdate) *UpdateComparator {
	uc.want = want
	return uc
}

// Compare applies the 'got' and 'want' updates to sibling Datums and
// compares them, returning a difference message and true if they differ.
// String-table ordering is ignored.
func (uc *UpdateComparator) Compare(t *testing.T) (string, bool) {
	t.Helper()
	drb := util.NewDataResponseBuilder()
	resp := drb.DataSeries(&util.DataSeriesRequest{})
	resp.Child().With(uc.got...)
	resp.Child().With(uc.want...)
	data, err := drb.Data()
	if err != nil {
		t.Fatalf("failed to build comparison response: %s", err)
	}
	seriesChildren := data.DataSeries[0].Root.Children
	diff := cmp.Diff(
		seriesChildren[1].PrettyPrint("", data.StringTable),
		seriesChildren[0].PrettyPrint("", data.StringTable))
	if diff != "" {
		return fmt.Sprintf("Got series %s, diff (-want +got):\n%s",
			data.DataSeries[0].PrettyPrint("", data.StringTable), diff), true
	}
	return "", false
}

// TestDataBuilder assembles expected responses fluently, navigating to
// siblings and parents as well as children.
type TestDataBuilder interface {
	With(updates ...util.PropertyUpdate) TestDataBuilder
	Child() TestDataBuilder
	AndChild() TestDataBuilder
	Parent() TestDataBuilder
}

type testDataBuilder struct {
	db     util.DataBuilder
	parent *testDataBuilder
}

func (tdb *testDataBuilder) With(updates ...util.PropertyUpdate) TestDataBuilder {
	tdb.db.With(updates...)
	return tdb
}

func (tdb *testDataBuilder) Child() TestDataBuilder {
	return &testDataBuilder{
		db:     tdb.db.Child(),
		parent: tdb,
	}
}

// AndChild adds a sibling of the receiver, or a child if the receiver is
// the root.
func (tdb *testDataBuilder) AndChild() TestDataBuilder {
	if tdb.parent == nil {
		return tdb.Child()
	}
	return tdb.parent.Child()
}

// Parent returns the receiver's parent, or the receiver if it is the root.
func (tdb *testDataBuilder) Parent() TestDataBuilder {
	if tdb.parent == nil {
		return tdb
	}
	return tdb.parent
}

func build(t *testing.T, drb *util.DataResponseBuilder, buildFn any) {
	t.Helper()
	ds := drb.DataSeries(&util.DataSeriesRequest{})
	switch fn := buildFn.(type) {
	case func(util.DataBuilder):
		fn(ds)
	case func(TestDataBuilder):
		fn(&testDataBuilder{db: ds})
	default:
		t.Fatalf("expected a func(util.DataBuilder) or func(testutil.TestDataBuilder), got %T", buildFn)
	}
}

func dataOf(d any) (*util.Data, error) {
	switch v := d.(type) {
	case *util.DataResponseBuilder:
		return v.Data()
	case *util.Data:
		return v, nil
	default:
		return nil, fmt.Errorf("argument must be a *util.DataResponseBuilder or a *util.Data, got %T", d)
	}
}

// CompareDataResponses compares got and want, each a *util.DataResponseBuilder
// or a *util.Data, and reports any difference on t.  Failures to produce
// either response are returned.
func CompareDataResponses(t *testing.T, got any, want any) error {
	t.Helper()
	gotData, err := dataOf(got)
	if err != nil {
		return err
	}
	wantData, err := dataOf(want)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(wantData.PrettyPrint(), gotData.PrettyPrint()); diff != "" {
		t.Errorf("Got data %s, diff (-want, +got) %s", gotData.PrettyPrint(), diff)
	}
	return nil
}

// CompareResponses builds a response with each of buildGot and buildWant,
// which accept either a util.DataBuilder or a TestDataBuilder, and compares
// the two.
func CompareResponses(t *testing.T, buildGot any, buildWant any) error {
	t.Helper()
	gotDrb := util.NewDataResponseBuilder()
	build(t, gotDrb, buildGot)
	wantDrb := util.NewDataResponseBuilder()
	build(t, wantDrb, buildWant)
	return CompareDataResponses(t, gotDrb, wantDrb)
}
