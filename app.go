package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/chazu/sketchsolid/pkg/config"
	"github.com/chazu/sketchsolid/pkg/engine"
	"github.com/chazu/sketchsolid/pkg/export"
	"github.com/chazu/sketchsolid/pkg/feedback"
	"github.com/chazu/sketchsolid/pkg/kernel"
	"github.com/chazu/sketchsolid/pkg/kernel/sdfx"
	"github.com/chazu/sketchsolid/pkg/plane"
	"github.com/chazu/sketchsolid/pkg/session"
	"github.com/chazu/sketchsolid/pkg/shape"
	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/chazu/sketchsolid/pkg/store"
	"github.com/chazu/sketchsolid/pkg/tools"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// colorPalette is a default palette used to assign distinct colors to bodies.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

var errNoLibrary = errors.New("sketch library is not open")

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Bindings may be called concurrently, so every binding that reads or
// changes the session or the library takes mu.
type App struct {
	ctx     context.Context
	cfg     config.Config
	log     *zap.Logger
	engine  *engine.Engine
	kernel  kernel.Kernel
	library *store.Store

	mu      sync.Mutex
	session *session.Session
}

// Vec3 is a JSON-serializable world-space point.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CurveData is a curve sampled into a world-space polyline for display.
type CurveData struct {
	Kind      string `json:"kind"`
	Points    []Vec3 `json:"points"`
	Synthetic bool   `json:"synthetic"`
}

// SketchState is everything the frontend needs to draw the sketch overlay.
type SketchState struct {
	Active         bool        `json:"active"`
	Plane          string      `json:"plane"`
	PlaneSize      float64     `json:"planeSize"`
	Tool           string      `json:"tool"`
	Curves         []CurveData `json:"curves"`
	Preview        []CurveData `json:"preview"`
	Closed         bool        `json:"closed"`
	Classification string      `json:"classification"`
	Gaps           []Vec3      `json:"gaps"`
	Endpoints      []Vec3      `json:"endpoints"`
	Connections    [][2]Vec3   `json:"connections"`
	CanUndo        bool        `json:"canUndo"`
	CanRedo        bool        `json:"canRedo"`
	Errors         []string    `json:"errors"`
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend after a script run
// or an extrusion.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Sketch   SketchState     `json:"sketch"`
}

// SketchSummary is one entry of the sketch library listing.
type SketchSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Plane     string `json:"plane"`
	Curves    int    `json:"curves"`
	UpdatedAt string `json:"updatedAt"`
}

// NewApp creates a new App with an engine, the sdfx kernel and an idle
// sketch session. The library database is opened in startup.
func NewApp(cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	k := sdfx.New(sdfx.WithMeshCells(cfg.Extrude.MeshCells))
	s, err := session.New(cfg, k, log.Named("session"))
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:     cfg,
		log:     log,
		engine:  engine.NewEngine(engine.WithTolerance(cfg.Sketch.Tolerance), engine.WithLogger(log.Named("engine"))),
		kernel:  k,
		session: s,
	}, nil
}

// startup is called by Wails on app startup. The context is saved so we can
// call Wails runtime methods later if needed. A library that fails to open
// is logged and the app runs without one.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	lib, err := store.Open(ctx, a.cfg.Store.Path, a.log.Named("store"))
	if err != nil {
		a.log.Error("opening sketch library", zap.String("path", a.cfg.Store.Path), zap.Error(err))
		return
	}
	a.library = lib
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(ctx context.Context) {
	if a.library == nil {
		return
	}
	if err := a.library.Close(); err != nil {
		a.log.Warn("closing sketch library", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// ---------------------------------------------------------------------------
// Sketch mode
// ---------------------------------------------------------------------------

// EnterSketch opens a sketch on the named plane (XY, XZ or YZ), offset
// along its normal. An empty name uses the configured default plane.
func (a *App) EnterSketch(planeName string, offset float64) SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if planeName == "" {
		planeName = a.cfg.Sketch.DefaultOrientation
	}
	o, err := plane.ParseOrientation(planeName)
	if err != nil {
		return a.state(err)
	}
	return a.state(a.session.Enter(o, o.Normal().MulScalar(offset)))
}

// ExitSketch leaves sketch mode, discarding the drawing.
func (a *App) ExitSketch() SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Exit()
	return a.state(nil)
}

// Tools lists the drawing tools SetTool accepts.
func (a *App) Tools() []string {
	return tools.Names()
}

// SetTool selects the active drawing tool.
func (a *App) SetTool(name string) SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state(a.session.SetTool(name))
}

// PointerDown feeds a click on the sketch plane to the active tool.
func (a *App) PointerDown(p Vec3) SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state(a.session.PointerDown(p.vec()))
}

// PointerMove feeds cursor motion to the active tool.
func (a *App) PointerMove(p Vec3) SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state(a.session.PointerMove(p.vec()))
}

// Cancel abandons the curve being drawn.
func (a *App) Cancel() SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Cancel()
	return a.state(nil)
}

// Clear removes every curve from the sketch.
func (a *App) Clear() SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state(a.session.Clear())
}

// AutoClose bridges the remaining gap with a synthetic line.
func (a *App) AutoClose() SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state(a.session.AutoClose())
}

// Undo reverts the last sketch edit.
func (a *App) Undo() SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Undo()
	return a.state(nil)
}

// Redo reapplies the last undone sketch edit.
func (a *App) Redo() SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Redo()
	return a.state(nil)
}

// GetSketch returns the current sketch state without changing it.
func (a *App) GetSketch() SketchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state(nil)
}

// ---------------------------------------------------------------------------
// Solids
// ---------------------------------------------------------------------------

// Extrude turns the closed sketch into a body and returns the meshes of
// every body so far. A depth of zero uses the configured default.
func (a *App) Extrude(name string, depth float64) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.session.Extrude(name, depth)
	return a.bodyResult("extrude", err)
}

// Revolve turns the closed sketch about the plane's vertical axis by angle
// degrees and returns the meshes of every body so far. An angle of zero is
// a full turn.
func (a *App) Revolve(name string, angle float64) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.session.Revolve(name, angle)
	return a.bodyResult("revolve", err)
}

func (a *App) bodyResult(op string, err error) EvalResult {
	result := newEvalResult()
	if err != nil {
		a.log.Warn(op+" failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		result.Sketch = a.state(nil)
		return result
	}
	a.fillMeshes(&result)
	result.Sketch = a.state(nil)
	return result
}

// ClearBodies removes every body.
func (a *App) ClearBodies() EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.RemoveBodies()
	result := newEvalResult()
	result.Sketch = a.state(nil)
	return result
}

// Evaluate takes sketch script source and replaces the current sketch with
// the curves it draws. The script describes the whole model, so previous
// bodies are dropped and, when the script extrudes or revolves a closed
// contour, the resulting body takes their place. This is the binding called by the
// script editor.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := newEvalResult()

	// Step 1: Evaluate the script into a sketch.
	sk, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate fatal error", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		result.Sketch = a.state(nil)
		return result
	}

	// Step 2: Convert eval errors to the frontend format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		result.Sketch = a.state(nil)
		return result
	}

	// Step 3: Replace the session sketch with the script's curves.
	if err := a.loadSketch(sk.Orientation, sk.Offset, sk.Curves); err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		result.Sketch = a.state(nil)
		return result
	}

	// Step 4: Build the body the script asks for.
	a.session.RemoveBodies()
	switch {
	case sk.Depth > 0 && !sk.Result.Closed:
		result.Warnings = append(result.Warnings, EvalErrorData{
			Message: "contour is not closed; nothing was extruded",
		})
	case sk.Angle > 0 && !sk.Result.Closed:
		result.Warnings = append(result.Warnings, EvalErrorData{
			Message: "contour is not closed; nothing was revolved",
		})
	case sk.Depth > 0:
		if _, err := a.session.Extrude("", sk.Depth); err != nil {
			a.log.Warn("script extrude failed", zap.Error(err))
			result.Errors = append(result.Errors, EvalErrorData{Message: "extrusion failed: " + err.Error()})
		}
	case sk.Angle > 0:
		if _, err := a.session.Revolve("", sk.Angle); err != nil {
			a.log.Warn("script revolve failed", zap.Error(err))
			result.Errors = append(result.Errors, EvalErrorData{Message: "revolve failed: " + err.Error()})
		}
	}

	a.fillMeshes(&result)
	result.Sketch = a.state(nil)
	return result
}

func newEvalResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// fillMeshes tessellates every body and converts the kernel meshes to the
// frontend MeshData format.
func (a *App) fillMeshes(result *EvalResult) {
	meshes, err := a.session.Meshes()
	if err != nil {
		a.log.Error("tessellate error", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
}

// loadSketch reopens sketch mode on the given plane with the given curves.
func (a *App) loadSketch(o plane.Orientation, offset v3.Vec, curves []sketch.Curve) error {
	a.session.Exit()
	if err := a.session.Enter(o, offset); err != nil {
		return err
	}
	return a.session.Load(curves)
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// ExportSTL writes every body, unioned, to an STL file.
func (a *App) ExportSTL(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return export.WriteSTL(path, a.session.Bodies(), a.kernel)
}

// ExportDXF writes the sketch curves to a DXF file.
func (a *App) ExportDXF(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return export.WriteDXF(path, a.session.Store().Curves())
}

// ExportSVG writes the sketch and its contour feedback to an SVG file.
func (a *App) ExportSVG(path string) (err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	curves := a.session.Store().Curves()
	if len(curves) == 0 {
		return export.ErrNothingToExport
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: %w", cerr)
		}
	}()
	return feedback.WriteSVG(f, feedback.Scene{
		Curves:      curves,
		Result:      a.session.Result(),
		Connections: a.session.Connections(),
	}, feedback.Options{})
}

// ---------------------------------------------------------------------------
// Library
// ---------------------------------------------------------------------------

// SaveSketch stores the current sketch under name and returns its id.
func (a *App) SaveSketch(name string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.library == nil {
		return "", errNoLibrary
	}
	if !a.session.Active() {
		return "", session.ErrNoSketch
	}
	p := a.session.Projector()
	return a.library.Save(a.context(), store.Record{
		Name:        name,
		Orientation: p.Orientation(),
		Offset:      p.Offset(),
		Curves:      a.session.Store().Curves(),
	})
}

// OpenSketch replaces the current sketch with a saved one.
func (a *App) OpenSketch(id string) (SketchState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.library == nil {
		return a.state(nil), errNoLibrary
	}
	r, err := a.library.Load(a.context(), id)
	if err != nil {
		return a.state(nil), err
	}
	if err := a.loadSketch(r.Orientation, r.Offset, r.Curves); err != nil {
		return a.state(nil), err
	}
	return a.state(nil), nil
}

// ListSketches returns the saved sketches, most recently updated first.
func (a *App) ListSketches() ([]SketchSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.library == nil {
		return nil, errNoLibrary
	}
	list, err := a.library.List(a.context())
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(s store.Summary, _ int) SketchSummary {
		return SketchSummary{
			ID:        s.ID,
			Name:      s.Name,
			Plane:     s.Orientation.String(),
			Curves:    s.CurveCount,
			UpdatedAt: s.UpdatedAt.Format("2006-01-02 15:04"),
		}
	}), nil
}

// DeleteSketch removes a saved sketch.
func (a *App) DeleteSketch(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.library == nil {
		return errNoLibrary
	}
	return a.library.Delete(a.context(), id)
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func (v Vec3) vec() v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func toVec3(v v3.Vec) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// state snapshots the session for the frontend. A non-nil err is logged and
// reported in Errors.
func (a *App) state(err error) SketchState {
	st := SketchState{
		Active:      a.session.Active(),
		Curves:      []CurveData{},
		Preview:     []CurveData{},
		Gaps:        []Vec3{},
		Endpoints:   []Vec3{},
		Connections: [][2]Vec3{},
		Errors:      []string{},
	}
	if err != nil {
		a.log.Debug("sketch operation rejected", zap.Error(err))
		st.Errors = append(st.Errors, err.Error())
	}
	if !st.Active {
		return st
	}

	p := a.session.Projector()
	st.Plane = p.Orientation().String()
	st.PlaneSize = a.cfg.Sketch.PlaneSize
	if t := a.session.Tool(); t != nil {
		st.Tool = t.Name()
	}
	st.Curves = a.curveData(p, a.session.Store().Curves())
	st.Preview = a.curveData(p, a.session.Preview())

	fb := a.session.Feedback()
	st.Closed = fb.Closed
	st.Classification = fb.Classification.String()
	st.Gaps = append(st.Gaps, lo.Map(fb.Gaps, func(v v3.Vec, _ int) Vec3 { return toVec3(v) })...)
	st.Endpoints = append(st.Endpoints, lo.Map(fb.Endpoints, func(v v3.Vec, _ int) Vec3 { return toVec3(v) })...)
	for _, c := range fb.Connections {
		st.Connections = append(st.Connections, [2]Vec3{toVec3(c[0]), toVec3(c[1])})
	}
	st.CanUndo = a.session.Store().CanUndo()
	st.CanRedo = a.session.Store().CanRedo()
	return st
}

func (a *App) curveData(p *plane.Projector, curves []sketch.Curve) []CurveData {
	out := make([]CurveData, 0, len(curves))
	for _, c := range curves {
		d := CurveData{Kind: c.Kind().String()}
		if l, ok := c.(sketch.Line); ok {
			d.Synthetic = l.Synthetic
		}
		for _, pt := range shape.Sample(c, a.cfg.Extrude.ArcSegments) {
			d.Points = append(d.Points, toVec3(p.Unproject(pt)))
		}
		out = append(out, d)
	}
	return out
}
