package tools

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/sketchsolid/pkg/sketch"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"line", "line", false},
		{"Rectangle", "rectangle", false},
		{" circle ", "circle", false},
		{"spline", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, err := New(tt.name, sketch.NewStore())
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownTool) {
					t.Fatalf("New(%q) error = %v, want ErrUnknownTool", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) unexpected error: %v", tt.name, err)
			}
			if tool.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", tool.Name(), tt.want)
			}
			if tool.Armed() {
				t.Error("new tool should be idle")
			}
		})
	}
}

func TestNames(t *testing.T) {
	got := Names()
	want := []string{"circle", "line", "rectangle"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLineTool(t *testing.T) {
	s := sketch.NewStore()
	tool := NewLineTool(s)

	tool.Start(sketch.Pt(0, 0))
	if !tool.Armed() {
		t.Fatal("Start should arm the tool")
	}
	tool.Move(sketch.Pt(2, 2))
	prev := tool.Preview()
	if len(prev) != 1 || prev[0].EndPoint() != sketch.Pt(2, 2) {
		t.Errorf("Preview() = %v, want one line ending at (2,2)", prev)
	}
	if s.Len() != 0 {
		t.Fatalf("Move must not touch the store, Len() = %d", s.Len())
	}

	if err := tool.End(sketch.Pt(3, 0)); err != nil {
		t.Fatalf("End: %v", err)
	}
	if tool.Armed() {
		t.Error("End should disarm the tool")
	}
	if tool.Preview() != nil {
		t.Error("idle tool should have no preview")
	}
	curves := s.Curves()
	if len(curves) != 1 {
		t.Fatalf("Len() = %d, want 1", len(curves))
	}
	want := sketch.Line{Start: sketch.Pt(0, 0), End: sketch.Pt(3, 0)}
	if curves[0] != want {
		t.Errorf("committed %v, want %v", curves[0], want)
	}
}

func TestEndWhileIdleIsNoop(t *testing.T) {
	s := sketch.NewStore()
	for _, name := range Names() {
		tool, _ := New(name, s)
		if err := tool.End(sketch.Pt(1, 1)); err != nil {
			t.Errorf("%s: End while idle returned %v", name, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestCancel(t *testing.T) {
	s := sketch.NewStore()
	for _, name := range Names() {
		tool, _ := New(name, s)
		tool.Start(sketch.Pt(0, 0))
		tool.Move(sketch.Pt(2, 1))
		tool.Cancel()
		if tool.Armed() {
			t.Errorf("%s: still armed after Cancel", name)
		}
		if err := tool.End(sketch.Pt(2, 1)); err != nil {
			t.Errorf("%s: End after Cancel returned %v", name, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("cancelled tools committed %d curves", s.Len())
	}
}

func TestRectangleTool(t *testing.T) {
	s := sketch.NewStore()
	tool := NewRectangleTool(s)
	tool.Start(sketch.Pt(0, 0))
	tool.Move(sketch.Pt(1, 1))
	if got := len(tool.Preview()); got != 4 {
		t.Errorf("preview has %d sides, want 4", got)
	}
	if err := tool.End(sketch.Pt(4, 3)); err != nil {
		t.Fatalf("End: %v", err)
	}

	curves := s.Curves()
	if len(curves) != 4 {
		t.Fatalf("Len() = %d, want 4", len(curves))
	}
	for i, c := range curves {
		next := curves[(i+1)%len(curves)]
		if c.EndPoint() != next.StartPoint() {
			t.Errorf("side %d ends at %v but side %d starts at %v", i, c.EndPoint(), (i+1)%4, next.StartPoint())
		}
	}
	if curves[1].EndPoint() != sketch.Pt(4, 3) {
		t.Errorf("opposite corner = %v, want (4,3)", curves[1].EndPoint())
	}

	// The rectangle is one commit.
	if !s.Undo() || s.Len() != 0 {
		t.Errorf("one undo should remove the rectangle, Len() = %d", s.Len())
	}
}

func TestCircleTool(t *testing.T) {
	s := sketch.NewStore()
	tool := NewCircleTool(s)
	tool.Start(sketch.Pt(1, 1))
	if tool.Preview() != nil {
		t.Error("zero-radius preview should be empty")
	}
	if err := tool.End(sketch.Pt(4, 5)); err != nil {
		t.Fatalf("End: %v", err)
	}
	curves := s.Curves()
	if len(curves) != 1 {
		t.Fatalf("Len() = %d, want 1", len(curves))
	}
	arc, ok := curves[0].(sketch.Arc)
	if !ok {
		t.Fatalf("committed %T, want sketch.Arc", curves[0])
	}
	if math.Abs(arc.Radius-5) > 1e-12 {
		t.Errorf("Radius = %v, want 5", arc.Radius)
	}
	if !arc.IsFullCircle() {
		t.Error("circle tool should commit a full-span arc")
	}
}

func TestCircleToolRejectsZeroRadius(t *testing.T) {
	s := sketch.NewStore()
	tool := NewCircleTool(s)
	tool.Start(sketch.Pt(2, 2))
	err := tool.End(sketch.Pt(2, 2))
	if !errors.Is(err, sketch.ErrInvalidRadius) {
		t.Fatalf("End error = %v, want ErrInvalidRadius", err)
	}
	if tool.Armed() {
		t.Error("tool should return to idle after a rejected circle")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}
