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

// Package label supports labeling chart items and their hover tooltips.
//
// Formats are strings in which $(key) is replaced by the value of the
// labeled Datum's property 'key', e.g. "$(year): $(estimate)".
package label

import (
	"strings"

	"github.com/ilhamster/overdoseviz/server/go/util"
)

const (
	// labelFormatKey specifies the format used to label an item.
	labelFormatKey = "label_format"
	// tooltipFormatKey specifies the format of an item's hover tooltip.
	tooltipFormatKey = "tooltip_format"
)

// Format returns a PropertyUpdate that labels with the provided label format.
func Format(labelFormat string) util.PropertyUpdate {
	return util.StringProperty(labelFormatKey, labelFormat)
}

// Tooltip returns a PropertyUpdate giving the item a hover tooltip with one
// line per provided (caption, property key) pair, each line formatted
// "Caption: $(key)".
func Tooltip(captionsAndKeys ...[2]string) util.PropertyUpdate {
	lines := make([]string, len(captionsAndKeys))
	for idx, ck := range captionsAndKeys {
		lines[idx] = ck[0] + ": $(" + ck[1] + ")"
	}
	return util.StringProperty(tooltipFormatKey, strings.Join(lines, "\n"))
}
