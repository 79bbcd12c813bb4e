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

package scale

import (
	"math"

	"github.com/aclements/go-moremath/scale"
)

// DefaultTickCount is the maximum number of ticks Ticks produces when no
// explicit count is given.
const DefaultTickCount = 10

// Linear maps a continuous domain interval onto a pixel range.  The range
// may be inverted (r0 > r1), as it is for vertical axes.
type Linear struct {
	domain scale.Linear
	r0, r1 float64
}

// NewLinear returns a new Linear scale mapping [d0, d1] onto [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{
		domain: scale.Linear{Min: d0, Max: d1},
		r0:     r0,
		r1:     r1,
	}
}

// Map maps x from the domain into the range.  Values outside the domain
// extrapolate linearly.  A degenerate domain maps everything to the middle
// of the range, and NaN maps to NaN.
func (l *Linear) Map(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if l.degenerate() {
		return (l.r0 + l.r1) / 2
	}
	return l.r0 + l.domain.Map(x)*(l.r1-l.r0)
}

// Ticks returns up to count evenly spaced, round tick values within the
// domain, in increasing order.  A count of zero or less uses
// DefaultTickCount.
func (l *Linear) Ticks(count int) []float64 {
	if count <= 0 {
		count = DefaultTickCount
	}
	if l.degenerate() {
		return []float64{l.domain.Min}
	}
	major, _ := l.domain.Ticks(scale.TickOptions{Max: count})
	if len(major) == 0 {
		return []float64{l.domain.Min, l.domain.Max}
	}
	return major
}

// Domain returns the scale's domain interval.
func (l *Linear) Domain() (float64, float64) {
	return l.domain.Min, l.domain.Max
}

// Range returns the scale's pixel range.
func (l *Linear) Range() (float64, float64) {
	return l.r0, l.r1
}

func (l *Linear) degenerate() bool {
	return l.domain.Min == l.domain.Max
}
