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

// Package chartmode provides the chart-mode selector: a small state machine
// choosing which single renderer populates a shared canvas.
//
// Selecting a mode always clears the canvas before invoking that mode's
// renderer, so afterwards the canvas holds only that renderer's output.
// There is no history and no re-entrancy guard; reselecting a mode simply
// clears and redraws.
package chartmode

import (
	"fmt"

	"github.com/ilhamster/overdoseviz/server/go/scene"
)

// Mode is a chart view.
type Mode string

// Supported chart modes.
const (
	BarAll   Mode = "barALL"
	LineAge  Mode = "lineAge"
	GroupBar Mode = "groupBar"

	// Default is the mode rendered before any selection is made.
	Default = BarAll
)

// Modes returns all supported modes, in display order.
func Modes() []Mode {
	return []Mode{BarAll, LineAge, GroupBar}
}

// Parse returns the Mode named by s.  The empty string parses as Default.
func Parse(s string) (Mode, error) {
	if s == "" {
		return Default, nil
	}
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown chart mode '%s'", s)
}

// DisplayName returns the mode's human-readable name.
func (m Mode) DisplayName() string {
	switch m {
	case BarAll:
		return "Deaths by year"
	case LineAge:
		return "Deaths by age group"
	case GroupBar:
		return "Deaths by drug type"
	default:
		return string(m)
	}
}

// Renderer draws one chart view onto a canvas's plot area.
type Renderer interface {
	Render(c *scene.Canvas) error
}

// RendererFunc adapts a function to a Renderer.
type RendererFunc func(c *scene.Canvas) error

// Render invokes the receiver.
func (rf RendererFunc) Render(c *scene.Canvas) error {
	return rf(c)
}

// Selector owns a canvas and the renderer for each mode.
type Selector struct {
	canvas    *scene.Canvas
	renderers map[Mode]Renderer
	current   Mode
}

// NewSelector returns a new Selector drawing onto the provided canvas.  A
// renderer must be provided for every supported mode.
func NewSelector(canvas *scene.Canvas, renderers map[Mode]Renderer) (*Selector, error) {
	for _, m := range Modes() {
		if renderers[m] == nil {
			return nil, fmt.Errorf("no renderer for chart mode '%s'", m)
		}
	}
	return &Selector{
		canvas:    canvas,
		renderers: renderers,
	}, nil
}

// Start renders the default mode.
func (s *Selector) Start() error {
	return s.Select(Default)
}

// Select clears the canvas and renders the specified mode onto it.  If the
// renderer fails, the canvas is left cleared and the current mode is
// unchanged.
func (s *Selector) Select(m Mode) error {
	renderer, ok := s.renderers[m]
	if !ok {
		return fmt.Errorf("unknown chart mode '%s'", m)
	}
	s.canvas.Clear()
	if err := renderer.Render(s.canvas); err != nil {
		s.canvas.Clear()
		return fmt.Errorf("failed to render %s: %w", m, err)
	}
	s.current = m
	return nil
}

// Current returns the most recently rendered mode, or "" if no render has
// succeeded.
func (s *Selector) Current() Mode {
	return s.current
}

// Canvas returns the selector's canvas.
func (s *Selector) Canvas() *scene.Canvas {
	return s.canvas
}
