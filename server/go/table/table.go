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

// Package table provides structural helpers for defining tables, such as
// the listing of records feeding a chart.  Given a dedicated tableRoot
// util.DataBuilder, which must not be used for any other purpose, a new
// table may be created via
//
//	tab := New(tableRoot, renderSettings, columns...)
//
// and rows added via
//
//	row := tab.Row(cells...)
//
// where each cell is a Cell() or FormattedCell().  Cells may also be added
// to an existing row, and then decorated, via
//
//	cell := row.AddCell(Cell(column, value)).With(updates...)
//
// The structure of a table response is:
//
//	table
//	  properties
//	    * render settings
//	    * <decorators>
//	  children:
//	    * header row
//	    * repeated rows
//
//	header row
//	  children
//	    * repeated column definition
//
//	column definition
//	  properties
//	    * category definition
//	    * <decorators>
//
//	row
//	  properties
//	    * <decorators>
//	  children
//	    * repeated cells and formatted cells
//
//	cell
//	  properties
//	    * column tag
//	    * cellKey: Value (cell contents)
//	    * <decorators>
//
//	formatted cell
//	  properties
//	    * column tag
//	    * formattedCellKey: StringValue (cell format string)
//	    * <decorators>
package table

import (
	"github.com/ilhamster/overdoseviz/server/go/category"
	"github.com/ilhamster/overdoseviz/server/go/util"
)

const (
	cellKey          = "table_cell"
	formattedCellKey = "table_formatted_cell"

	rowHeightPxKey = "table_row_height_px"
	fontSizePxKey  = "table_font_size_px"

	sortByKey        = "sort_by"
	sortDirectionKey = "sort_direction"
)

// SortDirection is the direction in which a sortable column sorts.
type SortDirection string

// Sort directions.
const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// RenderSettings is a collection of rendering settings for tables.
type RenderSettings struct {
	// The height of a row in pixels.
	RowHeightPx int64
	// The table text font size in pixels.
	FontSizePx int64
}

func (rs *RenderSettings) define() util.PropertyUpdate {
	if rs == nil {
		return util.EmptyUpdate
	}
	return util.Chain(
		util.IntegerProperty(rowHeightPxKey, rs.RowHeightPx),
		util.IntegerProperty(fontSizePxKey, rs.FontSizePx),
	)
}

// ColumnUpdate represents a table column.  It couples a category (specifying
// the column's unique ID, display name, and description) with arbitrary column
// properties.
type ColumnUpdate struct {
	cat        *category.Category
	properties []util.PropertyUpdate
}

// Column returns a new Column with the specified category and properties.
func Column(cat *category.Category, properties ...util.PropertyUpdate) *ColumnUpdate {
	properties = append(properties, cat.Define())
	return &ColumnUpdate{
		cat:        cat,
		properties: properties,
	}
}

// With annotates the receiving column with the provided properties.
func (cu *ColumnUpdate) With(properties ...util.PropertyUpdate) *ColumnUpdate {
	cu.properties = append(cu.properties, properties...)
	return cu
}

// Sortable marks the receiving column as the table's initial sort column.
func (cu *ColumnUpdate) Sortable(direction SortDirection) *ColumnUpdate {
	return cu.With(
		util.StringProperty(sortByKey, cu.cat.ID()),
		util.StringProperty(sortDirectionKey, string(direction)),
	)
}

func (cu *ColumnUpdate) define() util.PropertyUpdate {
	return util.Chain(cu.properties...)
}

// CellUpdate is a PropertyUpdate specifically annotating a cell.
type CellUpdate util.PropertyUpdate

// Cell returns a CellUpdate annotating a datum as a cell in the specified
// column, holding the specified value.  Any specified PropertyUpdates are
// also applied.
func Cell(column *ColumnUpdate, value util.Value, cellUpdates ...util.PropertyUpdate) CellUpdate {
	cellUpdates = append(cellUpdates,
		column.cat.Tag(),
		value(cellKey),
	)
	return CellUpdate(util.Chain(cellUpdates...))
}

// FormattedCell returns a CellUpdate annotating a datum as a cell in the
// specified column, holding a format string.  Any specified PropertyUpdates,
// such as those referenced in the format string, are also applied.
func FormattedCell(column *ColumnUpdate, format string, cellUpdates ...util.PropertyUpdate) CellUpdate {
	cellUpdates = append(cellUpdates,
		column.cat.Tag(),
		util.StringProperty(formattedCellKey, format),
	)
	return CellUpdate(util.Chain(cellUpdates...))
}

// Node represents a table embedded in a response.
type Node struct {
	db   util.DataBuilder
	rows int
}

// New defines a new table in the provided DataBuilder, with the specified
// columns.
func New(db util.DataBuilder, renderSettings *RenderSettings, columns ...*ColumnUpdate) *Node {
	colGroup := db.Child()
	for _, column := range columns {
		colGroup.Child().With(column.define())
	}
	db.With(renderSettings.define())
	return &Node{
		db: db,
	}
}

// With annotates the receiving table with the provided properties.
func (n *Node) With(properties ...util.PropertyUpdate) *Node {
	n.db.With(properties...)
	return n
}

// Row adds a new row holding the specified cells to the receiving table.
func (n *Node) Row(cells ...CellUpdate) *RowNode {
	db := n.db.Child()
	for _, cell := range cells {
		db.Child().With(util.PropertyUpdate(cell))
	}
	n.rows++
	return &RowNode{
		db: db,
	}
}

// Rows returns the number of rows added to the receiving table.
func (n *Node) Rows() int {
	return n.rows
}

// RowNode represents a table row.
type RowNode struct {
	db util.DataBuilder
}

// With annotates the receiving row with the provided properties.
func (rn *RowNode) With(properties ...util.PropertyUpdate) *RowNode {
	rn.db.With(properties...)
	return rn
}

// AddCell adds the specified cell to the receiving row.
func (rn *RowNode) AddCell(cellUpdate CellUpdate) *CellNode {
	return &CellNode{
		db: rn.db.Child().With(util.PropertyUpdate(cellUpdate)),
	}
}

// CellNode is a table cell to which properties may be attached.
type CellNode struct {
	db util.DataBuilder
}

// With annotates the receiver with the provided properties.
func (cn *CellNode) With(properties ...util.PropertyUpdate) *CellNode {
	cn.db.With(properties...)
	return cn
}

// Payload supports attaching arbitrary payloads, such as sparklines, to cells.
// See payload.go.
func (cn *CellNode) Payload() util.DataBuilder {
	return cn.db.Child()
}
