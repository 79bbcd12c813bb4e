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

// Package magnitude supports attaching magnitudes to items, such as table
// rows, so that clients can scale or rank them.
package magnitude

import (
	"math"

	"github.com/ilhamster/overdoseviz/server/go/util"
)

const (
	selfMagnitudeKey  = "self_magnitude"
	totalMagnitudeKey = "total_magnitude"
)

// SelfMagnitude returns a PropertyUpdate that annotates with the provided
// self-magnitude.  NaN magnitudes are not annotated.
func SelfMagnitude(selfMagnitude float64) util.PropertyUpdate {
	return util.If(!math.IsNaN(selfMagnitude), util.DoubleProperty(selfMagnitudeKey, selfMagnitude))
}

// TotalMagnitude returns a PropertyUpdate that annotates a collection of
// items with the sum of the provided non-NaN magnitudes.
func TotalMagnitude(magnitudes ...float64) util.PropertyUpdate {
	var total float64
	for _, m := range magnitudes {
		if !math.IsNaN(m) {
			total += m
		}
	}
	return util.DoubleProperty(totalMagnitudeKey, total)
}
