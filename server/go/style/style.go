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

// Package style supports attaching SVG presentation attributes to chart
// data.
//
// A Style maps SVG attribute names (see
// https://developer.mozilla.org/en-US/docs/Web/SVG/Attribute) to string
// values, and is attached to a Datum with Define().  Attributes are emitted
// in name order.
package style

import (
	"sort"
	"strconv"

	"github.com/ilhamster/overdoseviz/server/go/util"
)

const (
	keyPrefix = "style_"
)

// Style defines a set of styles that can be attached to a Datum.
type Style struct {
	attrs map[string]string
}

// New returns a new, empty Style.
func New() *Style {
	return &Style{
		attrs: map[string]string{},
	}
}

// Define returns a PropertyUpdate defining the receiver into a Datum.
func (s *Style) Define() util.PropertyUpdate {
	names := make([]string, 0, len(s.attrs))
	for name := range s.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	ret := make([]util.PropertyUpdate, len(names))
	for idx, name := range names {
		ret[idx] = util.StringProperty(keyPrefix+name, s.attrs[name])
	}
	return util.Chain(ret...)
}

// Px formats the provided value as a pixel specifier.
func Px(valPx float64) string {
	return strconv.FormatFloat(valPx, 'f', -1, 64) + "px"
}

// With sets the specified attribute type and value in the receiver.
func (s *Style) With(attrType string, attrVal string) *Style {
	s.attrs[attrType] = attrVal
	return s
}

// StrokeWidth sets the stroke width, in pixels.
func (s *Style) StrokeWidth(px float64) *Style {
	return s.With("stroke-width", Px(px))
}

// HoverOpacity sets the opacity applied while the item is hovered.
func (s *Style) HoverOpacity(opacity float64) *Style {
	return s.With("hover-opacity", strconv.FormatFloat(opacity, 'f', -1, 64))
}

// Radius sets the radius of point markers, in pixels.
func (s *Style) Radius(px float64) *Style {
	return s.With("r", Px(px))
}
