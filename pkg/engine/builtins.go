package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chazu/sketchsolid/pkg/contour"
	"github.com/chazu/sketchsolid/pkg/plane"
	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/chazu/sketchsolid/pkg/tools"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms sketch script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: auto-close -> auto_close
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpCurves wraps the curves a drawing builtin appended, so scripts can
// print or bind them.
type sexpCurves struct {
	curves []sketch.Curve
}

func (c *sexpCurves) SexpString(ps *zygo.PrintState) string {
	parts := make([]string, len(c.curves))
	for i, cv := range c.curves {
		switch v := cv.(type) {
		case sketch.Line:
			parts[i] = fmt.Sprintf("(line %g %g %g %g)", v.Start.X, v.Start.Y, v.End.X, v.End.Y)
		case sketch.Arc:
			parts[i] = fmt.Sprintf("(arc %g %g %g)", v.Center.X, v.Center.Y, v.Radius)
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(curves " + strings.Join(parts, " ") + ")"
}
func (c *sexpCurves) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toFloats extracts exactly n numbers.
func toFloats(args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d arguments", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// toBool accepts true/false, or a bare keyword flag (nil value) as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_xz) and plain strings ("xz").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// ---------------------------------------------------------------------------
// Sketch builder
// ---------------------------------------------------------------------------

var (
	errPlaneAfterDrawing = errors.New("the plane must be chosen before drawing")
	errBothOperations    = errors.New("a sketch is either extruded or revolved, not both")
)

// builder accumulates the sketch while a script runs.
type builder struct {
	detector    *contour.Detector
	orientation plane.Orientation
	offset      v3.Vec
	planeSet    bool
	store       *sketch.Store
	depth       float64
	angle       float64
}

func newBuilder(d *contour.Detector) *builder {
	return &builder{detector: d, store: sketch.NewStore()}
}

func (b *builder) add(curves ...sketch.Curve) (zygo.Sexp, error) {
	if err := b.store.AppendAll(curves...); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpCurves{curves: curves}, nil
}

func (b *builder) sketch() *Sketch {
	curves := b.store.Curves()
	return &Sketch{
		Orientation: b.orientation,
		Offset:      b.offset,
		Curves:      curves,
		Depth:       b.depth,
		Angle:       b.angle,
		Result:      b.detector.Evaluate(curves),
	}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the sketch DSL builtins into a zygomys
// environment. The builtins append to the provided builder.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (plane :xz :offset 10)
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.planeSet {
			return zygo.SexpNull, fmt.Errorf("plane: already set")
		}
		if b.store.Len() > 0 {
			return zygo.SexpNull, fmt.Errorf("plane: %w", errPlaneAfterDrawing)
		}
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("plane requires an orientation (:xy, :xz or :yz)")
		}
		// The orientation is a bare keyword, so it is taken before keyword
		// pairing.
		oname, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: orientation: %w", err)
		}
		o, err := plane.ParseOrientation(oname)
		if err != nil {
			return zygo.SexpNull, err
		}

		pa := parseArgs(args[1:])
		var offset float64
		if v, ok := pa.kw["offset"]; ok {
			if offset, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: offset: %w", err)
			}
		}

		b.orientation = o
		b.offset = o.Normal().MulScalar(offset)
		b.planeSet = true
		return &zygo.SexpStr{S: o.String()}, nil
	})

	// -----------------------------------------------------------------------
	// (line x1 y1 x2 y2)
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := toFloats(args, 4)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		l, err := sketch.NewLine(sketch.Pt(f[0], f[1]), sketch.Pt(f[2], f[3]))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		return b.add(l)
	})

	// -----------------------------------------------------------------------
	// (polyline x1 y1 x2 y2 x3 y3 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polyline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 4 || len(args)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("polyline requires at least two x y pairs, got %d numbers", len(args))
		}
		f, err := toFloats(args, len(args))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polyline: %w", err)
		}
		var curves []sketch.Curve
		for i := 0; i+3 < len(f); i += 2 {
			curves = append(curves, sketch.Line{Start: sketch.Pt(f[i], f[i+1]), End: sketch.Pt(f[i+2], f[i+3])})
		}
		return b.add(curves...)
	})

	// -----------------------------------------------------------------------
	// (rect x1 y1 x2 y2)
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := toFloats(args, 4)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: %w", err)
		}
		return b.add(tools.Rectangle(sketch.Pt(f[0], f[1]), sketch.Pt(f[2], f[3]))...)
	})

	// -----------------------------------------------------------------------
	// (circle cx cy r)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := toFloats(args, 3)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		c, err := sketch.NewCircle(sketch.Pt(f[0], f[1]), f[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		return b.add(c)
	})

	// -----------------------------------------------------------------------
	// (arc cx cy r start-deg end-deg :cw true)
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f, err := toFloats(pa.positional, 5)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", err)
		}
		var cw bool
		if v, ok := pa.kw["cw"]; ok {
			if cw, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("arc: cw: %w", err)
			}
		}
		a, err := sketch.NewArc(sketch.Pt(f[0], f[1]), f[2], radians(f[3]), radians(f[4]), cw)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", err)
		}
		return b.add(a)
	})

	// -----------------------------------------------------------------------
	// (auto-close)
	//
	// Registered as "auto_close"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("auto_close", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		closed, err := b.detector.Close(b.store.Curves())
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("auto-close: %w", err)
		}
		return b.add(closed[len(closed)-1])
	})

	// -----------------------------------------------------------------------
	// (extrude 10)
	// -----------------------------------------------------------------------
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := toFloats(args, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}
		if !(f[0] > 0) || math.IsInf(f[0], 0) {
			return zygo.SexpNull, fmt.Errorf("extrude: depth must be positive, got %g", f[0])
		}
		if b.angle > 0 {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", errBothOperations)
		}
		b.depth = f[0]
		return &zygo.SexpFloat{Val: f[0]}, nil
	})

	// -----------------------------------------------------------------------
	// (revolve)      full turn
	// (revolve 90)
	// -----------------------------------------------------------------------
	env.AddFunction("revolve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		angle := 360.0
		if len(args) > 0 {
			f, err := toFloats(args, 1)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve: %w", err)
			}
			angle = f[0]
		}
		if !(angle > 0 && angle <= 360) {
			return zygo.SexpNull, fmt.Errorf("revolve: angle must be in (0, 360], got %g", angle)
		}
		if b.depth > 0 {
			return zygo.SexpNull, fmt.Errorf("revolve: %w", errBothOperations)
		}
		b.angle = angle
		return &zygo.SexpFloat{Val: angle}, nil
	})
}
