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

// Package scene provides a retained-mode scene graph for charts: a Canvas
// holding a tree of groups, rects, lines, polylines, circles, and text, which
// renderers populate and which serializes to SVG.
//
// A Canvas is the explicit drawing surface shared by successive renders.
// Renderers draw only into Canvas.Plot(); Canvas.Clear() discards everything
// drawn so far, so a clear followed by a render leaves the canvas holding
// exactly that render's output.
package scene

import (
	"strings"
)

// Kind is the kind of a scene Node.
type Kind int

// Scene node kinds.
const (
	Group Kind = iota
	Rect
	Line
	Polyline
	Circle
	Text
)

func (k Kind) String() string {
	switch k {
	case Group:
		return "group"
	case Rect:
		return "rect"
	case Line:
		return "line"
	case Polyline:
		return "polyline"
	case Circle:
		return "circle"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Point is a pixel-space coordinate.
type Point struct {
	X, Y float64
}

// TooltipLine is a single labeled line in a Tooltip.
type TooltipLine struct {
	Label, Value string
}

func (tl TooltipLine) String() string {
	return tl.Label + ": " + tl.Value
}

// Tooltip is the information overlay shown while a node is hovered.  X and Y
// give its anchor in the coordinate space of the hovered node's parent.
type Tooltip struct {
	Lines []TooltipLine
	X, Y  float64
}

func (t *Tooltip) String() string {
	lines := make([]string, len(t.Lines))
	for idx, line := range t.Lines {
		lines[idx] = line.String()
	}
	return strings.Join(lines, "\n")
}

// Node is a single element in the scene graph.  Which geometry fields are
// meaningful depends on Kind:
//
//	Rect:     X, Y, Width, Height
//	Line:     X, Y, X2, Y2
//	Polyline: Points
//	Circle:   X, Y (center), R
//	Text:     X, Y, Text
//
// Groups carry only a transform and children.
type Node struct {
	Kind                   Kind
	Class                  string
	X, Y, Width, Height    float64
	X2, Y2, R              float64
	Points                 []Point
	Text                   string
	Fill, Stroke           string
	StrokeWidth            float64
	FontSize               float64
	Anchor                 string
	TranslateX, TranslateY float64
	Rotate                 float64
	// Hover dims the node while the pointer is over it.
	Hover    bool
	Tooltip  *Tooltip
	Children []*Node
}

// Option configures a Node as it is added to the scene.
type Option func(n *Node)

// Class adds the provided space-separated classes to the node.
func Class(classes string) Option {
	return func(n *Node) {
		if n.Class == "" {
			n.Class = classes
		} else {
			n.Class += " " + classes
		}
	}
}

// Fill sets the node's fill color.
func Fill(color string) Option {
	return func(n *Node) {
		n.Fill = color
	}
}

// Stroke sets the node's stroke color and width.
func Stroke(color string, width float64) Option {
	return func(n *Node) {
		n.Stroke = color
		n.StrokeWidth = width
	}
}

// FontSize sets the node's font size, in pixels.
func FontSize(px float64) Option {
	return func(n *Node) {
		n.FontSize = px
	}
}

// Anchor sets the node's text anchor ("start", "middle", or "end").
func Anchor(anchor string) Option {
	return func(n *Node) {
		n.Anchor = anchor
	}
}

// Translate offsets the node and its children.
func Translate(x, y float64) Option {
	return func(n *Node) {
		n.TranslateX, n.TranslateY = x, y
	}
}

// Rotate rotates the node by the specified number of degrees, after any
// translation.
func Rotate(degrees float64) Option {
	return func(n *Node) {
		n.Rotate = degrees
	}
}

// Hover makes the node dim while hovered.
func Hover() Option {
	return func(n *Node) {
		n.Hover = true
	}
}

// WithTooltip attaches an information overlay to the node.
func WithTooltip(x, y float64, lines ...TooltipLine) Option {
	return func(n *Node) {
		n.Tooltip = &Tooltip{
			Lines: lines,
			X:     x,
			Y:     y,
		}
	}
}

func (n *Node) add(child *Node, opts []Option) *Node {
	for _, opt := range opts {
		opt(child)
	}
	n.Children = append(n.Children, child)
	return child
}

// Group adds and returns a new group under the receiver.
func (n *Node) Group(opts ...Option) *Node {
	return n.add(&Node{Kind: Group}, opts)
}

// Rect adds and returns a new rectangle under the receiver.
func (n *Node) Rect(x, y, width, height float64, opts ...Option) *Node {
	return n.add(&Node{Kind: Rect, X: x, Y: y, Width: width, Height: height}, opts)
}

// Line adds and returns a new line segment under the receiver.
func (n *Node) Line(x1, y1, x2, y2 float64, opts ...Option) *Node {
	return n.add(&Node{Kind: Line, X: x1, Y: y1, X2: x2, Y2: y2}, opts)
}

// Polyline adds and returns a new polyline under the receiver.
func (n *Node) Polyline(points []Point, opts ...Option) *Node {
	return n.add(&Node{Kind: Polyline, Points: points}, opts)
}

// Circle adds and returns a new circle under the receiver.
func (n *Node) Circle(cx, cy, r float64, opts ...Option) *Node {
	return n.add(&Node{Kind: Circle, X: cx, Y: cy, R: r}, opts)
}

// AddText adds and returns a new text node under the receiver.
func (n *Node) AddText(x, y float64, text string, opts ...Option) *Node {
	return n.add(&Node{Kind: Text, X: x, Y: y, Text: text}, opts)
}

// HasClass returns true if the node carries the specified class.
func (n *Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Class) {
		if c == class {
			return true
		}
	}
	return false
}

// Walk visits the receiver and all its descendants in pre-order.
func (n *Node) Walk(fn func(n *Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns all nodes at or below the receiver carrying the specified
// class, in pre-order.
func (n *Node) Find(class string) []*Node {
	ret := []*Node{}
	n.Walk(func(node *Node) {
		if node.HasClass(class) {
			ret = append(ret, node)
		}
	})
	return ret
}

// Count returns the number of nodes of the specified kind at or below the
// receiver.
func (n *Node) Count(kind Kind) int {
	ret := 0
	n.Walk(func(node *Node) {
		if node.Kind == kind {
			ret++
		}
	})
	return ret
}

// Margin is the space between the canvas edge and its plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Default canvas geometry.
const (
	DefaultWidth       = 900
	DefaultHeight      = 450
	DefaultLegendWidth = 200
)

// DefaultMargin is the margin around the default plot area.
var DefaultMargin = Margin{Top: 20, Right: 20, Bottom: 30, Left: 40}

// Canvas is a drawing surface: a plot area of Width x Height pixels inside
// the margins, with LegendWidth extra pixels reserved at the right.
type Canvas struct {
	Width, Height float64
	Margin        Margin
	LegendWidth   float64
	root          *Node
	plot          *Node
}

// NewCanvas returns a new, empty Canvas with the specified geometry.
func NewCanvas(width, height float64, margin Margin, legendWidth float64) *Canvas {
	c := &Canvas{
		Width:       width,
		Height:      height,
		Margin:      margin,
		LegendWidth: legendWidth,
	}
	c.Clear()
	return c
}

// DefaultCanvas returns a new, empty Canvas with the default geometry.
func DefaultCanvas() *Canvas {
	return NewCanvas(DefaultWidth, DefaultHeight, DefaultMargin, DefaultLegendWidth)
}

// OuterWidth returns the full width of the canvas.
func (c *Canvas) OuterWidth() float64 {
	return c.Width + c.Margin.Left + c.Margin.Right + c.LegendWidth
}

// OuterHeight returns the full height of the canvas.
func (c *Canvas) OuterHeight() float64 {
	return c.Height + c.Margin.Top + c.Margin.Bottom
}

// Root returns the canvas's root node.
func (c *Canvas) Root() *Node {
	return c.root
}

// Plot returns the plot-area group, translated by the top and left margins.
func (c *Canvas) Plot() *Node {
	return c.plot
}

// Clear discards everything drawn on the canvas.
func (c *Canvas) Clear() {
	c.root = &Node{Kind: Group}
	c.plot = c.root.Group(Class("plot"), Translate(c.Margin.Left, c.Margin.Top))
}

// Empty returns true if nothing has been drawn since the last Clear.
func (c *Canvas) Empty() bool {
	return len(c.plot.Children) == 0
}

// Walk visits every node on the canvas in pre-order.
func (c *Canvas) Walk(fn func(n *Node)) {
	c.root.Walk(fn)
}

// Find returns every node on the canvas carrying the specified class.
func (c *Canvas) Find(class string) []*Node {
	return c.root.Find(class)
}

// Count returns the number of nodes of the specified kind on the canvas.
func (c *Canvas) Count(kind Kind) int {
	return c.root.Count(kind)
}
