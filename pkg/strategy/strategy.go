// Package strategy chooses a connector archetype for a pair of analyzed
// parts under a parsed constraint set. Selection is a total function:
// every (distance, constraint set) combination maps to exactly one of
// the five archetypes, with the ordered band rules below breaking ties.
package strategy

import (
	"fmt"
	"math"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
)

// Band thresholds in millimeters. A distance exactly at a threshold
// resolves to the higher band.
const (
	directMountLimit = 20.0
	bracketLimit     = 50.0
	spacerLimit      = 100.0
)

// verticalAxisDot is the |z| component above which a connection axis
// counts as mostly vertical when no alignment constraint says otherwise.
const verticalAxisDot = 0.8

// Selection is the outcome of archetype selection. It carries the
// effective target distance and connection axis so later stages do not
// re-derive them.
type Selection struct {
	Archetype      assembly.Archetype
	TargetDistance float64   // mm, center to center
	Axis           geom.Vec3 // unit vector, part1 → part2
	Alignment      string    // requested orientation, "" when none
}

// Select inspects both part analyses and the constraint set and picks a
// connector archetype.
//
// The effective target distance is the first distance constraint's
// value converted to millimeters; with no distance constraint it falls
// back to the straight-line distance between part centers. A relative
// distance is a fraction of the larger part's bounding-box diagonal.
func Select(part1, part2 *assembly.PartAnalysis, constraints []assembly.Constraint) (Selection, error) {
	if part1 == nil || part2 == nil {
		return Selection{}, &assembly.GeometryError{Stage: "strategy", Reason: "missing part analysis"}
	}

	alignment := firstAlignment(constraints)
	axis := connectionAxis(part1, part2, alignment)

	dist, err := targetDistance(part1, part2, constraints)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{
		TargetDistance: dist,
		Axis:           axis,
		Alignment:      alignment,
	}

	switch {
	case dist < directMountLimit:
		sel.Archetype = assembly.DirectMount
	case dist < bracketLimit:
		sel.Archetype = assembly.Bracket
	case dist < spacerLimit:
		sel.Archetype = assembly.Spacer
	case wantsVertical(alignment, axis):
		sel.Archetype = assembly.VerticalPost
	default:
		sel.Archetype = assembly.HorizontalBeam
	}
	return sel, nil
}

// targetDistance resolves the effective center-to-center distance in mm.
func targetDistance(part1, part2 *assembly.PartAnalysis, constraints []assembly.Constraint) (float64, error) {
	for i, c := range constraints {
		if c.Type != assembly.ConstraintDistance {
			continue
		}
		basis := math.Max(part1.BoundingBox.Diagonal(), part2.BoundingBox.Diagonal())
		mm, err := geom.ToMillimeters(c.Value, c.Unit, basis)
		if err != nil {
			return 0, &assembly.GeometryError{
				Stage:  "strategy",
				Reason: fmt.Sprintf("distance constraint %d: %v", i, err),
			}
		}
		if mm < 0 {
			return 0, &assembly.GeometryError{
				Stage:  "strategy",
				Reason: fmt.Sprintf("distance constraint %d is negative (%.2fmm)", i, mm),
			}
		}
		return mm, nil
	}
	return part1.Center.Distance(part2.Center), nil
}

// firstAlignment returns the orientation requested by the first
// alignment constraint, or "".
func firstAlignment(constraints []assembly.Constraint) string {
	for _, c := range constraints {
		if c.Type == assembly.ConstraintAlignment && c.Orientation != "" {
			return c.Orientation
		}
	}
	return ""
}

// connectionAxis derives the unit axis from part1 toward part2. An
// explicit vertical or horizontal alignment overrides the geometric
// direction; coincident centers default to +X.
func connectionAxis(part1, part2 *assembly.PartAnalysis, alignment string) geom.Vec3 {
	switch alignment {
	case assembly.OrientVertical:
		if part2.Center.Z < part1.Center.Z {
			return geom.Vec3{Z: -1}
		}
		return geom.Vec3{Z: 1}
	case assembly.OrientHorizontal:
		flat := part2.Center.Sub(part1.Center)
		flat.Z = 0
		return flat.Normalized()
	}
	return part2.Center.Sub(part1.Center).Normalized()
}

// wantsVertical reports whether the far band should use a vertical
// post: either the constraints ask for vertical alignment, or no
// alignment was given and the connection axis is mostly vertical.
func wantsVertical(alignment string, axis geom.Vec3) bool {
	if alignment == assembly.OrientVertical {
		return true
	}
	return alignment == "" && math.Abs(axis.Z) > verticalAxisDot
}
