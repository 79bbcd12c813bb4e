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

package scene

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo/float"
)

// HoverOpacity is the opacity of a Hover node while it is hovered.
const HoverOpacity = 0.7

const (
	tooltipFontPx    = 12
	tooltipLinePx    = 16
	tooltipCharPx    = 7
	tooltipPaddingPx = 4
)

var stylesheet = fmt.Sprintf(`.hover:hover{opacity:%g}
.tick text{font-size:10px;font-family:sans-serif}
.domain,.tick line{stroke:#000}
.tooltip{visibility:hidden;pointer-events:none}
.tooltip-target:hover .tooltip{visibility:visible}`, HoverOpacity)

// errWriter remembers the first error encountered by its wrapped Writer,
// since svgo does not report write errors.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}

// WriteSVG serializes the canvas as a standalone SVG document.  A node with a
// tooltip is wrapped in a group that also holds a <title> and a hidden
// overlay placed at the tooltip's anchor, shown while the group is hovered.
// Nodes with non-finite geometry are omitted, as are non-finite polyline
// vertices.
func (c *Canvas) WriteSVG(w io.Writer) error {
	ew := &errWriter{w: w}
	s := svg.New(ew)
	s.Start(c.OuterWidth(), c.OuterHeight(), attr("class", "overdoseviz"))
	s.Style("text/css", stylesheet)
	writeNode(s, c.root)
	s.End()
	if ew.err != nil {
		return fmt.Errorf("failed to write SVG: %w", ew.err)
	}
	return nil
}

func finite(fs ...float64) bool {
	for _, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func attr(key, value string) string {
	return key + `="` + html.EscapeString(value) + `"`
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// attrs returns the presentation attributes of n.
func attrs(n *Node) []string {
	ret := []string{}
	class := n.Class
	if n.Hover {
		class = strings.TrimSpace(class + " hover")
	}
	if class != "" {
		ret = append(ret, attr("class", class))
	}
	transforms := []string{}
	if n.TranslateX != 0 || n.TranslateY != 0 {
		transforms = append(transforms, "translate("+num(n.TranslateX)+","+num(n.TranslateY)+")")
	}
	if n.Rotate != 0 {
		transforms = append(transforms, "rotate("+num(n.Rotate)+")")
	}
	if len(transforms) > 0 {
		ret = append(ret, attr("transform", strings.Join(transforms, " ")))
	}
	if n.Fill != "" {
		ret = append(ret, attr("fill", n.Fill))
	}
	if n.Stroke != "" {
		ret = append(ret, attr("stroke", n.Stroke))
		if n.StrokeWidth > 0 {
			ret = append(ret, attr("stroke-width", num(n.StrokeWidth)))
		}
	}
	if n.FontSize > 0 {
		ret = append(ret, attr("font-size", num(n.FontSize)+"px"))
	}
	if n.Anchor != "" {
		ret = append(ret, attr("text-anchor", n.Anchor))
	}
	return ret
}

// writeTooltip writes the hidden overlay for t: a backing box with one text
// line per tooltip line, translated to the tooltip's anchor.
func writeTooltip(s *svg.SVG, t *Tooltip) {
	if len(t.Lines) == 0 || !finite(t.X, t.Y) {
		return
	}
	widest := 0
	for _, line := range t.Lines {
		if w := len([]rune(line.String())); w > widest {
			widest = w
		}
	}
	s.Group(attr("class", "tooltip"), attr("transform", "translate("+num(t.X)+","+num(t.Y)+")"))
	s.Rect(0, 0,
		float64(widest*tooltipCharPx+tooltipPaddingPx),
		float64(len(t.Lines)*tooltipLinePx+tooltipPaddingPx),
		attr("fill", "#fff"), attr("fill-opacity", "0.9"))
	for idx, line := range t.Lines {
		s.Text(0, float64(tooltipFontPx+idx*tooltipLinePx), line.String(),
			attr("font-size", num(tooltipFontPx)+"px"))
	}
	s.Gend()
}

func writeNode(s *svg.SVG, n *Node) {
	if n.Tooltip != nil {
		s.Group(attr("class", "tooltip-target"))
		s.Title(n.Tooltip.String())
		defer func() {
			writeTooltip(s, n.Tooltip)
			s.Gend()
		}()
	}
	a := attrs(n)
	switch n.Kind {
	case Group:
		s.Group(a...)
		for _, child := range n.Children {
			writeNode(s, child)
		}
		s.Gend()
	case Rect:
		if finite(n.X, n.Y, n.Width, n.Height) {
			s.Rect(n.X, n.Y, n.Width, n.Height, a...)
		}
	case Line:
		if finite(n.X, n.Y, n.X2, n.Y2) {
			s.Line(n.X, n.Y, n.X2, n.Y2, a...)
		}
	case Polyline:
		xs, ys := []float64{}, []float64{}
		for _, p := range n.Points {
			if finite(p.X, p.Y) {
				xs = append(xs, p.X)
				ys = append(ys, p.Y)
			}
		}
		if len(xs) > 0 {
			if n.Fill == "" {
				a = append(a, attr("fill", "none"))
			}
			s.Polyline(xs, ys, a...)
		}
	case Circle:
		if finite(n.X, n.Y, n.R) {
			s.Circle(n.X, n.Y, n.R, a...)
		}
	case Text:
		if finite(n.X, n.Y) {
			s.Text(n.X, n.Y, n.Text, a...)
		}
	}
}
