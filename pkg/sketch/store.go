package sketch

import "fmt"

// MaxHistory caps the number of commits that can be undone.
const MaxHistory = 50

// Store is the ordered curve sequence of one sketch. Insertion order is
// drawing order, which is also the candidate traversal order of the contour.
//
// Each Append or AppendAll is one commit that Undo removes as a unit, so a
// rectangle drawn as four lines is undone in one step. Store is not safe for
// concurrent use; a sketch session mutates it from a single event loop.
type Store struct {
	curves   []Curve
	history  []int     // curve count of each undoable commit, oldest first
	redo     [][]Curve // commits removed by Undo, most recent last
	revision uint64

	ordered    []Curve
	orderedRev uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append validates and appends one curve as a single commit.
func (s *Store) Append(c Curve) error {
	return s.AppendAll(c)
}

// AppendAll validates every curve and appends them together as one commit.
// Nothing is appended if any curve is invalid.
func (s *Store) AppendAll(curves ...Curve) error {
	if len(curves) == 0 {
		return nil
	}
	for i, c := range curves {
		if err := Validate(c); err != nil {
			return fmt.Errorf("sketch: append curve %d: %w", i, err)
		}
	}
	s.push(curves)
	s.redo = nil
	return nil
}

func (s *Store) push(curves []Curve) {
	s.curves = append(s.curves, curves...)
	s.history = append(s.history, len(curves))
	if len(s.history) > MaxHistory {
		s.history = s.history[1:]
	}
	s.revision++
}

// Clear empties the sketch and forgets its history.
func (s *Store) Clear() {
	s.curves = nil
	s.history = nil
	s.redo = nil
	s.ordered = nil
	s.revision++
}

// Replace swaps the whole contents for curves, as loading a saved sketch
// does. History is reset.
func (s *Store) Replace(curves []Curve) error {
	for i, c := range curves {
		if err := Validate(c); err != nil {
			return fmt.Errorf("sketch: replace curve %d: %w", i, err)
		}
	}
	s.Clear()
	s.curves = append([]Curve(nil), curves...)
	return nil
}

// Curves returns a copy of the curves in insertion order.
func (s *Store) Curves() []Curve {
	return append([]Curve(nil), s.curves...)
}

// Len returns the number of curves.
func (s *Store) Len() int {
	return len(s.curves)
}

// Revision increases on every mutation.
func (s *Store) Revision() uint64 {
	return s.revision
}

// CanUndo reports whether there is a commit to undo.
func (s *Store) CanUndo() bool {
	return len(s.history) > 0
}

// CanRedo reports whether there is an undone commit to reapply.
func (s *Store) CanRedo() bool {
	return len(s.redo) > 0
}

// Undo removes the most recent commit. It returns false when there is
// nothing to undo.
func (s *Store) Undo() bool {
	if !s.CanUndo() {
		return false
	}
	n := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	cut := len(s.curves) - n
	removed := append([]Curve(nil), s.curves[cut:]...)
	s.curves = s.curves[:cut]
	s.redo = append(s.redo, removed)
	s.revision++
	return true
}

// Redo reapplies the most recently undone commit.
func (s *Store) Redo() bool {
	if !s.CanRedo() {
		return false
	}
	commit := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.push(commit)
	return true
}

// SetOrdered records the traversal order found by contour detection for the
// store contents at revision rev. A stale revision is ignored.
func (s *Store) SetOrdered(rev uint64, ordered []Curve) {
	if rev != s.revision {
		return
	}
	s.ordered = append([]Curve(nil), ordered...)
	s.orderedRev = rev
}

// Ordered returns the curves in the order a path should be assembled: the
// last detected contour order when it belongs to the current contents,
// otherwise insertion order.
func (s *Store) Ordered() []Curve {
	if s.ordered != nil && s.orderedRev == s.revision {
		return append([]Curve(nil), s.ordered...)
	}
	return s.Curves()
}
