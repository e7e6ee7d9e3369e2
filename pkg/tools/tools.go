// Package tools implements the interactive drawing tools of sketch mode.
//
// Every tool is a two-state machine, Idle -> Armed -> Idle. Start records an
// anchor and arms the tool, Move updates the preview while armed, End commits
// curves to the sketch store and disarms, and Cancel disarms without
// committing. Points are expected to be snapped by the caller already.
package tools

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/samber/lo"
)

// ErrUnknownTool is returned by New for a name no tool is registered under.
var ErrUnknownTool = errors.New("tools: unknown tool")

// Tool is a drawing tool bound to a sketch store.
type Tool interface {
	Name() string
	Start(p sketch.Point2D)
	Move(p sketch.Point2D)
	// End commits the drawn geometry. It is a no-op when the tool is idle.
	End(p sketch.Point2D) error
	Cancel()
	Armed() bool
	// Preview returns the geometry End would commit at the last Move
	// position, or nil when idle.
	Preview() []sketch.Curve
}

// anchor holds the state every tool shares.
type anchor struct {
	store  *sketch.Store
	armed  bool
	from   sketch.Point2D
	cursor sketch.Point2D
}

func (a *anchor) Start(p sketch.Point2D) {
	a.armed = true
	a.from = p
	a.cursor = p
}

func (a *anchor) Move(p sketch.Point2D) {
	if a.armed {
		a.cursor = p
	}
}

func (a *anchor) Cancel() { a.armed = false }

func (a *anchor) Armed() bool { return a.armed }

// LineTool draws one line from the press point to the release point.
type LineTool struct{ anchor }

// NewLineTool returns an idle line tool writing to s.
func NewLineTool(s *sketch.Store) *LineTool {
	return &LineTool{anchor{store: s}}
}

func (*LineTool) Name() string { return "line" }

func (t *LineTool) Preview() []sketch.Curve {
	if !t.armed {
		return nil
	}
	return []sketch.Curve{sketch.Line{Start: t.from, End: t.cursor}}
}

func (t *LineTool) End(p sketch.Point2D) error {
	if !t.armed {
		return nil
	}
	t.armed = false
	l, err := sketch.NewLine(t.from, p)
	if err != nil {
		return fmt.Errorf("tools: line: %w", err)
	}
	return t.store.Append(l)
}

// RectangleTool draws an axis-aligned rectangle between two opposite
// corners as four lines joined end to start.
type RectangleTool struct{ anchor }

// NewRectangleTool returns an idle rectangle tool writing to s.
func NewRectangleTool(s *sketch.Store) *RectangleTool {
	return &RectangleTool{anchor{store: s}}
}

func (*RectangleTool) Name() string { return "rectangle" }

func (t *RectangleTool) Preview() []sketch.Curve {
	if !t.armed {
		return nil
	}
	return Rectangle(t.from, t.cursor)
}

func (t *RectangleTool) End(p sketch.Point2D) error {
	if !t.armed {
		return nil
	}
	t.armed = false
	// One commit, so a single undo removes the whole rectangle.
	if err := t.store.AppendAll(Rectangle(t.from, p)...); err != nil {
		return fmt.Errorf("tools: rectangle: %w", err)
	}
	return nil
}

// Rectangle returns the four sides of the rectangle with corners a and c,
// starting at a and running through (c.X, a.Y), c and (a.X, c.Y).
func Rectangle(a, c sketch.Point2D) []sketch.Curve {
	b := sketch.Pt(c.X, a.Y)
	d := sketch.Pt(a.X, c.Y)
	return []sketch.Curve{
		sketch.Line{Start: a, End: b},
		sketch.Line{Start: b, End: c},
		sketch.Line{Start: c, End: d},
		sketch.Line{Start: d, End: a},
	}
}

// CircleTool draws a full circle centred on the press point through the
// release point.
type CircleTool struct{ anchor }

// NewCircleTool returns an idle circle tool writing to s.
func NewCircleTool(s *sketch.Store) *CircleTool {
	return &CircleTool{anchor{store: s}}
}

func (*CircleTool) Name() string { return "circle" }

func (t *CircleTool) Preview() []sketch.Curve {
	if !t.armed {
		return nil
	}
	c, err := sketch.NewCircle(t.from, sketch.Dist(t.from, t.cursor))
	if err != nil {
		return nil
	}
	return []sketch.Curve{c}
}

// End rejects a zero radius: the tool disarms and nothing is appended.
func (t *CircleTool) End(p sketch.Point2D) error {
	if !t.armed {
		return nil
	}
	t.armed = false
	c, err := sketch.NewCircle(t.from, sketch.Dist(t.from, p))
	if err != nil {
		return fmt.Errorf("tools: circle: %w", err)
	}
	return t.store.Append(c)
}

var registry = map[string]func(*sketch.Store) Tool{
	"line":      func(s *sketch.Store) Tool { return NewLineTool(s) },
	"rectangle": func(s *sketch.Store) Tool { return NewRectangleTool(s) },
	"circle":    func(s *sketch.Store) Tool { return NewCircleTool(s) },
}

// New returns the idle tool registered under name (case-insensitive).
func New(name string, s *sketch.Store) (Tool, error) {
	mk, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return mk(s), nil
}

// Names lists the registered tool names in sorted order.
func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}
