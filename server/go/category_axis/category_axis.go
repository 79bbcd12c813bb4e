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

// Package categoryaxis provides helpers for defining banded category axes,
// such as the year axis of a bar chart.  A category axis divides its extent
// into one equal band per key, separated by padding expressed as a fraction
// of the band step.
package categoryaxis

import (
	"github.com/ilhamster/overdoseviz/server/go/category"
	"github.com/ilhamster/overdoseviz/server/go/scale"
	"github.com/ilhamster/overdoseviz/server/go/util"
)

const (
	axisTypeKey            = "axis_type"
	categoryAxisKeysKey    = "category_axis_keys"
	categoryAxisPaddingKey = "category_axis_padding"

	bandAxisType = "band"
)

// Axis is a banded axis over an ordered set of string keys.
type Axis struct {
	cat     *category.Category
	keys    []string
	padding float64
}

// New returns a new Axis with the provided category, band padding, and keys.
// Duplicate keys are dropped, keeping the first occurrence.
func New(cat *category.Category, padding float64, keys ...string) *Axis {
	seen := map[string]bool{}
	deduped := make([]string, 0, len(keys))
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			deduped = append(deduped, key)
		}
	}
	return &Axis{
		cat:     cat,
		keys:    deduped,
		padding: padding,
	}
}

// Keys returns the receiver's keys, in band order.
func (a *Axis) Keys() []string {
	return append([]string{}, a.keys...)
}

// Padding returns the receiver's band padding.
func (a *Axis) Padding() float64 {
	return a.padding
}

// Band returns a Band scale laying the receiver's keys out across [r0, r1].
func (a *Axis) Band(r0, r1 float64) *scale.Band[string] {
	return scale.NewBand(a.keys, r0, r1, a.padding)
}

// Define annotates with a definition of the receiver.
func (a *Axis) Define() util.PropertyUpdate {
	return util.Chain(
		a.cat.Define(),
		util.StringProperty(axisTypeKey, bandAxisType),
		util.StringsProperty(categoryAxisKeysKey, a.keys...),
		util.DoubleProperty(categoryAxisPaddingKey, a.padding),
	)
}

// Value annotates a Datum with the band it falls in.
func (a *Axis) Value(key string) util.PropertyUpdate {
	return util.StringProperty(a.cat.ID(), key)
}

// CategoryID returns the category ID of the receiving Axis.
func (a *Axis) CategoryID() string {
	return a.cat.ID()
}
