// Package session implements sketch mode: a sketch plane, the active drawing
// tool, input snapping, live contour feedback and turning the closed result
// into extruded or revolved bodies.
//
// A Session is driven by one event loop and is not safe for concurrent use.
package session

import (
	"errors"
	"fmt"

	"github.com/chazu/sketchsolid/pkg/config"
	"github.com/chazu/sketchsolid/pkg/contour"
	"github.com/chazu/sketchsolid/pkg/kernel"
	"github.com/chazu/sketchsolid/pkg/plane"
	"github.com/chazu/sketchsolid/pkg/shape"
	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/chazu/sketchsolid/pkg/tessellate"
	"github.com/chazu/sketchsolid/pkg/tools"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// connectionReach is the longest break, in sketch units, between consecutive
// curve ends that is still reported as a near connection.
const connectionReach = 5

var (
	// ErrNoSketch is returned by operations that need sketch mode.
	ErrNoSketch = errors.New("session: not in sketch mode")

	// ErrAlreadyActive is returned by Enter while a sketch is open.
	ErrAlreadyActive = errors.New("session: already in sketch mode")

	// ErrNotClosed is returned by Extrude and Revolve while the contour is
	// open.
	ErrNotClosed = errors.New("session: contour is not closed")
)

// Feedback is the advisory display state of the sketch, in world space.
type Feedback struct {
	Closed         bool
	Classification contour.Classification
	// Gaps are the endpoints with no partner within tolerance.
	Gaps []v3.Vec
	// Endpoints are the snap targets: the first curve's start and the last
	// curve's end.
	Endpoints []v3.Vec
	// Connections are consecutive ends that almost meet.
	Connections [][2]v3.Vec
}

// Session is the sketch-mode state machine.
type Session struct {
	cfg     config.Sketch
	extrude config.Extrude
	kernel  kernel.Kernel
	log     *zap.Logger

	detector *contour.Detector

	active    bool
	projector *plane.Projector
	store     *sketch.Store
	tool      tools.Tool

	result   contour.Result
	feedback Feedback
	bodies   []tessellate.Body
}

// New returns an idle session. A nil logger is replaced by a no-op logger.
func New(cfg config.Config, k kernel.Kernel, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d, err := contour.NewDetector(cfg.Sketch.Tolerance, contour.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return &Session{
		cfg:      cfg.Sketch,
		extrude:  cfg.Extrude,
		kernel:   k,
		log:      log,
		detector: d,
		store:    sketch.NewStore(),
	}, nil
}

// Enter opens a new empty sketch on the given plane with the line tool
// selected.
func (s *Session) Enter(o plane.Orientation, offset v3.Vec) error {
	if s.active {
		return ErrAlreadyActive
	}
	s.active = true
	s.projector = plane.NewProjector(o, offset)
	s.store = sketch.NewStore()
	s.tool = tools.NewLineTool(s.store)
	s.refresh()
	s.log.Info("entered sketch mode", zap.Stringer("plane", o), zap.Float64s("offset", []float64{offset.X, offset.Y, offset.Z}))
	return nil
}

// Exit leaves sketch mode. The drawn curves are discarded; extruded bodies
// are kept.
func (s *Session) Exit() {
	if !s.active {
		return
	}
	s.active = false
	s.tool = nil
	s.projector = nil
	s.store = sketch.NewStore()
	s.refresh()
	s.log.Info("left sketch mode")
}

// Active reports whether a sketch is open.
func (s *Session) Active() bool { return s.active }

// Projector returns the plane of the open sketch, or nil.
func (s *Session) Projector() *plane.Projector { return s.projector }

// Store returns the curve store of the open sketch.
func (s *Session) Store() *sketch.Store { return s.store }

// Tool returns the active tool, or nil outside sketch mode.
func (s *Session) Tool() tools.Tool { return s.tool }

// SetTool replaces the active tool. Any drawing in progress is cancelled.
func (s *Session) SetTool(name string) error {
	if !s.active {
		return ErrNoSketch
	}
	t, err := tools.New(name, s.store)
	if err != nil {
		return err
	}
	if s.tool != nil {
		s.tool.Cancel()
	}
	s.tool = t
	return nil
}

// Snap converts a world position to the sketch point a tool receives: it is
// projected, quantized to the grid and then pulled onto an open end of the
// sketch when one lies within the snap radius. Outside sketch mode it
// returns the zero point.
func (s *Session) Snap(world v3.Vec) (sketch.Point2D, bool) {
	if !s.active {
		return sketch.Point2D{}, false
	}
	p := plane.SnapToGrid(s.projector.Project(world), s.cfg.GridStep)
	if target, ok := s.snapTarget(p); ok {
		return target, true
	}
	return p, false
}

func (s *Session) snapTarget(p sketch.Point2D) (sketch.Point2D, bool) {
	curves := s.store.Curves()
	if len(curves) == 0 || s.cfg.SnapRadius <= 0 {
		return sketch.Point2D{}, false
	}
	targets := []sketch.Point2D{curves[0].StartPoint(), curves[len(curves)-1].EndPoint()}
	best, found := sketch.Point2D{}, false
	bestDist := s.cfg.SnapRadius
	for _, t := range targets {
		if d := sketch.Dist(p, t); d < bestDist {
			best, bestDist, found = t, d, true
		}
	}
	return best, found
}

// PointerDown handles a click: an idle tool starts at the snapped point, an
// armed tool ends there and commits.
func (s *Session) PointerDown(world v3.Vec) error {
	if !s.active {
		return ErrNoSketch
	}
	p, _ := s.Snap(world)
	if !s.tool.Armed() {
		s.tool.Start(p)
		return nil
	}
	if err := s.tool.End(p); err != nil {
		s.log.Warn("drawing rejected", zap.String("tool", s.tool.Name()), zap.Error(err))
		return err
	}
	s.refresh()
	return nil
}

// PointerMove updates the active tool's preview.
func (s *Session) PointerMove(world v3.Vec) error {
	if !s.active {
		return ErrNoSketch
	}
	p, _ := s.Snap(world)
	s.tool.Move(p)
	return nil
}

// Cancel abandons the drawing in progress.
func (s *Session) Cancel() {
	if s.tool != nil {
		s.tool.Cancel()
	}
}

// Clear removes every curve from the sketch.
func (s *Session) Clear() error {
	if !s.active {
		return ErrNoSketch
	}
	s.Cancel()
	s.store.Clear()
	s.refresh()
	return nil
}

// Undo removes the last commit. It reports whether anything changed.
func (s *Session) Undo() bool {
	if !s.active || !s.store.Undo() {
		return false
	}
	s.refresh()
	return true
}

// Redo reapplies the last undone commit.
func (s *Session) Redo() bool {
	if !s.active || !s.store.Redo() {
		return false
	}
	s.refresh()
	return true
}

// Load replaces the sketch contents, as opening a saved sketch does.
func (s *Session) Load(curves []sketch.Curve) error {
	if !s.active {
		return ErrNoSketch
	}
	s.Cancel()
	if err := s.store.Replace(curves); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// AutoClose appends the closing line the contour detector proposes as an
// undoable commit. It returns contour.ErrAlreadyClosed or
// contour.ErrNotClosable when there is nothing to add.
func (s *Session) AutoClose() error {
	if !s.active {
		return ErrNoSketch
	}
	closed, err := s.detector.Close(s.store.Curves())
	if err != nil {
		return err
	}
	if err := s.store.Append(closed[len(closed)-1]); err != nil {
		return err
	}
	s.refresh()
	s.log.Info("contour auto-closed", zap.Bool("closed", s.result.Closed))
	return nil
}

// Result returns the latest contour evaluation.
func (s *Session) Result() contour.Result { return s.result }

// Feedback returns the latest display feedback.
func (s *Session) Feedback() Feedback { return s.feedback }

// Connections returns the near connections in sketch coordinates.
func (s *Session) Connections() []contour.Segment {
	return s.detector.ConnectionGaps(s.store.Curves(), connectionReach)
}

// Preview returns the geometry the active tool would commit, in sketch
// coordinates.
func (s *Session) Preview() []sketch.Curve {
	if s.tool == nil {
		return nil
	}
	return s.tool.Preview()
}

// refresh re-runs contour detection over the whole sketch and rebuilds the
// feedback.
func (s *Session) refresh() {
	curves := s.store.Curves()
	s.result = s.detector.Evaluate(curves)
	if s.result.Closed {
		s.store.SetOrdered(s.store.Revision(), s.result.Contour)
	}

	fb := Feedback{Closed: s.result.Closed, Classification: s.result.Classification}
	if s.projector != nil && len(curves) > 0 {
		for _, g := range s.result.Gaps {
			fb.Gaps = append(fb.Gaps, s.projector.Unproject(g))
		}
		fb.Endpoints = []v3.Vec{
			s.projector.Unproject(curves[0].StartPoint()),
			s.projector.Unproject(curves[len(curves)-1].EndPoint()),
		}
		for _, seg := range s.detector.ConnectionGaps(curves, connectionReach) {
			fb.Connections = append(fb.Connections, [2]v3.Vec{
				s.projector.Unproject(seg.From),
				s.projector.Unproject(seg.To),
			})
		}
	}
	s.feedback = fb
}

// Extrude turns the closed sketch into a body of the given depth on the
// sketch plane. A non-positive depth uses the configured default.
func (s *Session) Extrude(name string, depth float64) (tessellate.Body, error) {
	if depth <= 0 {
		depth = s.extrude.Depth
	}
	return s.addBody(tessellate.Body{Name: name, Depth: depth}, "extrusion")
}

// Revolve turns the closed sketch about the plane's local v axis by angle
// degrees. A non-positive angle is a full turn.
func (s *Session) Revolve(name string, angle float64) (tessellate.Body, error) {
	if angle <= 0 {
		angle = 360
	}
	return s.addBody(tessellate.Body{Name: name, Angle: angle}, "revolution")
}

// addBody fills in the profile and placement of b from the open sketch and
// keeps it once the kernel accepts it.
func (s *Session) addBody(b tessellate.Body, kind string) (tessellate.Body, error) {
	if !s.active {
		return tessellate.Body{}, ErrNoSketch
	}
	if !s.result.Closed {
		return tessellate.Body{}, ErrNotClosed
	}
	path, err := shape.FromStore(s.store)
	if err != nil {
		return tessellate.Body{}, err
	}
	if b.Name == "" {
		b.Name = fmt.Sprintf("%s-%d", kind, len(s.bodies)+1)
	}
	b.Profile = tessellate.ProfileFromPath(path, s.extrude.ArcSegments)
	b.Orientation = s.projector.Orientation()
	b.Offset = s.projector.Offset()
	// Build the solid once so that a bad profile is reported now rather
	// than at render time.
	if _, err := tessellate.Solid(b, s.kernel); err != nil {
		return tessellate.Body{}, err
	}
	s.bodies = append(s.bodies, b)
	s.log.Info("built body from sketch",
		zap.String("body", b.Name),
		zap.Float64("depth", b.Depth),
		zap.Float64("angle", b.Angle),
		zap.Stringer("classification", s.result.Classification),
	)
	return b, nil
}

// Bodies returns the bodies in creation order.
func (s *Session) Bodies() []tessellate.Body {
	return append([]tessellate.Body(nil), s.bodies...)
}

// Meshes tessellates every body.
func (s *Session) Meshes() ([]*kernel.Mesh, error) {
	return tessellate.Tessellate(s.bodies, s.kernel)
}

// RemoveBodies forgets every body.
func (s *Session) RemoveBodies() {
	s.bodies = nil
}
