// Package contour decides whether the curves of a sketch bound a closed
// region. A Detector classifies a curve sequence as a simple closed shape, a
// closed loop of lines, a closed loop found by cycle search over the
// end-to-start adjacency graph, or an open contour with gap points; it can
// also synthesize the single line that closes a nearly closed sketch.
//
// Every decision about whether two points coincide uses the tolerance the
// Detector was built with.
package contour
