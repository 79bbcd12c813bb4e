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

// Package scale maps data-space values onto pixel ranges.  Band scales
// divide a range into equal bands, one per ordinal domain key; Linear
// scales map a continuous domain interval onto a range.
package scale

import "math"

// Band is an ordinal scale dividing a pixel range into equally-sized bands
// separated by padding.  Inner and outer padding are the same fraction of
// the step, and bands are centered within the range.
type Band[K comparable] struct {
	domain          []K
	indices         map[K]int
	r0, r1          float64
	padding         float64
	step, bandwidth float64
	start           float64
}

// NewBand returns a new Band scale over the provided domain keys, spanning
// [r0, r1].  Duplicate keys are dropped, keeping the first occurrence.
// padding is clamped to [0, 1].
func NewBand[K comparable](domain []K, r0, r1, padding float64) *Band[K] {
	ret := &Band[K]{
		indices: make(map[K]int, len(domain)),
		r0:      r0,
		r1:      r1,
		padding: math.Max(0, math.Min(1, padding)),
	}
	for _, key := range domain {
		if _, ok := ret.indices[key]; ok {
			continue
		}
		ret.indices[key] = len(ret.domain)
		ret.domain = append(ret.domain, key)
	}
	n := float64(len(ret.domain))
	extent := r1 - r0
	ret.step = extent / math.Max(1, n-ret.padding+2*ret.padding)
	ret.start = r0 + (extent-ret.step*(n-ret.padding))*0.5
	ret.bandwidth = ret.step * (1 - ret.padding)
	return ret
}

// Position returns the start of the band for the specified key, and false
// if the key is not in the domain.
func (b *Band[K]) Position(key K) (float64, bool) {
	idx, ok := b.indices[key]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(idx), true
}

// Center returns the midpoint of the band for the specified key.
func (b *Band[K]) Center(key K) (float64, bool) {
	pos, ok := b.Position(key)
	return pos + b.bandwidth/2, ok
}

// Bandwidth returns the width of each band.
func (b *Band[K]) Bandwidth() float64 {
	return b.bandwidth
}

// Step returns the distance between the starts of adjacent bands.
func (b *Band[K]) Step() float64 {
	return b.step
}

// Domain returns the scale's domain keys, in band order.
func (b *Band[K]) Domain() []K {
	return append([]K{}, b.domain...)
}

// Range returns the scale's pixel range.
func (b *Band[K]) Range() (float64, float64) {
	return b.r0, b.r1
}
