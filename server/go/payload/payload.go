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

// Package payload embeds one structured chart-data response inside an element
// of another, such as a per-row sparkline chart inside a table cell.
//
// Element types able to host embedded data implement Payloader; the embedded
// data is then built under the DataBuilder returned by New, tagged with a
// payload type string so that clients know how to draw it.
package payload

import "github.com/ilhamster/overdoseviz/server/go/util"

// TypeKey, if present in a Datum's properties, marks that Datum as an
// embedded payload; its string value names the payload type.
const TypeKey = "payload_type"

// Payloader is implemented by types able to host payloads.
type Payloader interface {
	// Payload adds a child to the receiver and returns it.
	Payload() util.DataBuilder
}

// New creates and returns a payload of the specified type under the provided
// parent.
func New(parent Payloader, payloadType string) util.DataBuilder {
	return parent.Payload().With(
		util.StringProperty(TypeKey, payloadType),
	)
}
