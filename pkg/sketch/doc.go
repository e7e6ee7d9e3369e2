// Package sketch defines the planar curve model of a sketch: points in the
// sketch plane's local frame, the Line and Arc curve variants, and the
// ordered Store of curves that one sketch session draws into.
package sketch
