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

// Package color supports declaring color spaces and palettes, and coloring
// chart items.
//
// A Datum may carry up to three colors: a primary (the dominant fill, and the
// color conveying the item's category), a secondary (accents and hover
// highlights), and a stroke (lines, text, and borders).
//
// Colors may be given directly, with Primary(), Secondary(), or Stroke(), as
// HTML color strings.  Alternatively a continuous Space may be defined once
// in a response, and Datums then placed along it with values in [0, 1].  A
// Palette is the ordinal counterpart of a Space: each distinct key, such as
// an age group or drug type, takes the next palette color in first-seen
// order.
//
//	ages := color.NewPalette("age_groups", color.Category10...)
//	chart.With(ages.Define())
//	for _, series := range ageSeries {
//	  seriesDb.With(ages.Stroke(series.Age))
//	}
//
// A given color type may only be defined one way.  If a datum specifies a
// color for a single type in multiple ways, the result is undefined.
package color

import "github.com/ilhamster/overdoseviz/server/go/util"

const (
	// colorSpaceNamePrefix defines a color space.
	colorSpaceNamePrefix = "color_space_"
	// The primary color space and value, or raw color.
	primaryColorSpaceKey      = "primary_color_space"
	primaryColorSpaceValueKey = "primary_color_space_value"
	primaryColorKey           = "primary_color"
	// The secondary color space and value, or raw color.
	secondaryColorSpaceKey      = "secondary_color_space"
	secondaryColorSpaceValueKey = "secondary_color_space_value"
	secondaryColorKey           = "secondary_color"
	// The stroke color space and value, or raw color.
	strokeColorSpaceKey      = "stroke_color_space"
	strokeColorSpaceValueKey = "stroke_color_space_value"
	strokeColorKey           = "stroke_color"
)

// Category10 is the ten-color categorical scheme used for line series.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// DrugTypes is the four-color scheme used for the grouped drug-type bars.
var DrugTypes = []string{"#7c6e39", "#feb236", "#d64161", "#ff7b25"}

// Bar is the fill of single-series bars.
const Bar = "#7c6e39"

// Space represents a color space: a color continuum that can map double
// values to colors.
type Space struct {
	name   string
	colors []string
}

// NewSpace defines a new color space.  Colors in this space will be linearly
// interpolated between the specified colors.
func NewSpace(name string, colors ...string) *Space {
	return &Space{
		name:   name,
		colors: colors,
	}
}

// Name returns the Space's name.
func (s *Space) Name() string {
	return s.name
}

// Define annotates with a definition of the receiving Space.
func (s *Space) Define() util.PropertyUpdate {
	return util.StringsProperty(colorSpaceNamePrefix+s.name, s.colors...)
}

// PrimaryColor annotates a Datum with a primary color along the receiving
// color space.
func (s *Space) PrimaryColor(colorValue float64) util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(primaryColorSpaceKey, colorSpaceNamePrefix+s.name),
		util.DoubleProperty(primaryColorSpaceValueKey, colorValue),
	)
}

// SecondaryColor annotates a Datum with a secondary color along the receiving
// color space.
func (s *Space) SecondaryColor(colorValue float64) util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(secondaryColorSpaceKey, colorSpaceNamePrefix+s.name),
		util.DoubleProperty(secondaryColorSpaceValueKey, colorValue),
	)
}

// StrokeColor annotates a Datum with a stroke color along the receiving
// color space.
func (s *Space) StrokeColor(colorValue float64) util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(strokeColorSpaceKey, colorSpaceNamePrefix+s.name),
		util.DoubleProperty(strokeColorSpaceValueKey, colorValue),
	)
}

// Primary annotates a Datum with the specified primary color.
func Primary(colorValue string) util.PropertyUpdate {
	return util.StringProperty(primaryColorKey, colorValue)
}

// Secondary annotates a Datum with the specified secondary color.
func Secondary(colorValue string) util.PropertyUpdate {
	return util.StringProperty(secondaryColorKey, colorValue)
}

// Stroke annotates a Datum with the specified stroke color.
func Stroke(colorValue string) util.PropertyUpdate {
	return util.StringProperty(strokeColorKey, colorValue)
}

// Palette is an ordinal color scale: keys are assigned colors in the order
// they are first requested, wrapping around when the colors run out.  A
// Palette is not safe for concurrent use.
type Palette struct {
	name    string
	colors  []string
	indices map[string]int
	keys    []string
}

// NewPalette returns a new Palette over the provided colors.
func NewPalette(name string, colors ...string) *Palette {
	return &Palette{
		name:    name,
		colors:  colors,
		indices: map[string]int{},
	}
}

// WithKeys assigns colors to the provided keys in order, as if each had been
// requested with Color.
func (p *Palette) WithKeys(keys ...string) *Palette {
	for _, key := range keys {
		p.Color(key)
	}
	return p
}

// Color returns the color for the specified key, assigning it the next color
// if it has none yet.  An empty Palette always returns "black".
func (p *Palette) Color(key string) string {
	if len(p.colors) == 0 {
		return "black"
	}
	idx, ok := p.indices[key]
	if !ok {
		idx = len(p.keys)
		p.indices[key] = idx
		p.keys = append(p.keys, key)
	}
	return p.colors[idx%len(p.colors)]
}

// Keys returns the keys assigned so far, in assignment order.
func (p *Palette) Keys() []string {
	return append([]string{}, p.keys...)
}

// Define annotates with the palette's colors, as a color space of the same
// name.
func (p *Palette) Define() util.PropertyUpdate {
	return util.StringsProperty(colorSpaceNamePrefix+p.name, p.colors...)
}

// Primary annotates a Datum with the specified key's color as its primary.
func (p *Palette) Primary(key string) util.PropertyUpdate {
	return Primary(p.Color(key))
}

// Stroke annotates a Datum with the specified key's color as its stroke.
func (p *Palette) Stroke(key string) util.PropertyUpdate {
	return Stroke(p.Color(key))
}
