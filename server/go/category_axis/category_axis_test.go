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

package categoryaxis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/overdoseviz/server/go/category"
	testutil "github.com/ilhamster/overdoseviz/server/go/test_util"
	"github.com/ilhamster/overdoseviz/server/go/util"
)

func TestAxis(t *testing.T) {
	yearCat := category.New("year", "Year", "Year of death")
	for _, test := range []struct {
		description string
		axis        *Axis
		wantKeys    []string
		wantUpdates []util.PropertyUpdate
	}{{
		description: "years",
		axis:        New(yearCat, 0.1, "2015", "2016", "2017"),
		wantKeys:    []string{"2015", "2016", "2017"},
		wantUpdates: []util.PropertyUpdate{
			yearCat.Define(),
			util.StringProperty(axisTypeKey, bandAxisType),
			util.StringsProperty(categoryAxisKeysKey, "2015", "2016", "2017"),
			util.DoubleProperty(categoryAxisPaddingKey, 0.1),
		},
	}, {
		description: "duplicate years",
		axis:        New(yearCat, 0.2, "2016", "2015", "2016"),
		wantKeys:    []string{"2016", "2015"},
		wantUpdates: []util.PropertyUpdate{
			yearCat.Define(),
			util.StringProperty(axisTypeKey, bandAxisType),
			util.StringsProperty(categoryAxisKeysKey, "2016", "2015"),
			util.DoubleProperty(categoryAxisPaddingKey, 0.2),
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if diff := cmp.Diff(test.wantKeys, test.axis.Keys()); diff != "" {
				t.Errorf("Keys() = %v, diff (-want +got) %s", test.axis.Keys(), diff)
			}
			if msg, failed := testutil.NewUpdateComparator().
				WithTestUpdates(test.axis.Define()).
				WithWantUpdates(test.wantUpdates...).
				Compare(t); failed {
				t.Fatal(msg)
			}
		})
	}
}

func TestBand(t *testing.T) {
	axis := New(category.New("year", "Year", ""), 0, "2015", "2016")
	band := axis.Band(0, 100)
	pos, ok := band.Position("2016")
	if !ok || pos != 50 {
		t.Errorf("Position(\"2016\") = %v, %t; want 50, true", pos, ok)
	}
	if msg, failed := testutil.NewUpdateComparator().
		WithTestUpdates(axis.Value("2016")).
		WithWantUpdates(util.StringProperty("year", "2016")).
		Compare(t); failed {
		t.Fatal(msg)
	}
}
