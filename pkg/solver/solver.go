// Package solver computes the final placement of both parts and the
// connector from the constraint set, or reports infeasibility when
// constraints contradict each other on the same degree of freedom.
//
// Constraint application order is fixed: alignment first (it fixes the
// connection axis), then distance (magnitude along the axis), then
// angle (rotation about the axis). The axis must exist before a
// magnitude or rotation is meaningful, so this ordering is not
// configurable.
package solver

import (
	"fmt"
	"math"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
	"github.com/corbel-cad/corbel/pkg/strategy"
)

// bracketDrop is how far an L-bracket sits below the lower part for
// support, in mm.
const bracketDrop = 5.0

// Solve anchors part1 at its analyzed center, places part2 at the
// target distance along the connection axis, applies any angle
// constraint as a rotation of part2 about that axis, and positions the
// connector between them with archetype-specific adjustments.
//
// The function is pure: solving the same inputs twice yields identical
// placements.
func Solve(part1, part2 *assembly.PartAnalysis, spec *assembly.ConnectorSpec, constraints []assembly.Constraint, sel strategy.Selection) (*assembly.Placement, error) {
	if err := detectConflicts(constraints); err != nil {
		return nil, err
	}

	axis := sel.Axis.Normalized()
	p1 := part1.Center
	p2 := p1.Add(axis.Scale(sel.TargetDistance))

	rot2, err := part2Rotation(constraints, sel, axis)
	if err != nil {
		return nil, err
	}

	conn := connectorPose(spec, axis, p1, p2)

	return &assembly.Placement{
		Part1:     assembly.Pose{Position: p1, Rotation: geom.Identity()},
		Part2:     assembly.Pose{Position: p2, Rotation: rot2},
		Connector: conn,
		Axis:      axis,
	}, nil
}

// part2Rotation computes part2's orientation: an explicit angle
// constraint rotates it about the connection axis; a perpendicular
// alignment without an angle implies 90°.
func part2Rotation(constraints []assembly.Constraint, sel strategy.Selection, axis geom.Vec3) (geom.Rotation, error) {
	for i, c := range constraints {
		if c.Type != assembly.ConstraintAngle {
			continue
		}
		deg, err := geom.ToDegrees(c.Value, c.Unit)
		if err != nil {
			return geom.Rotation{}, &assembly.GeometryError{
				Stage:  "solver",
				Reason: fmt.Sprintf("angle constraint %d: %v", i, err),
			}
		}
		if deg == 0 {
			return geom.Identity(), nil
		}
		return geom.Rotation{Axis: axis, AngleDeg: deg}, nil
	}
	if sel.Alignment == assembly.OrientPerpendicular {
		return geom.Rotation{Axis: axis, AngleDeg: 90}, nil
	}
	return geom.Identity(), nil
}

// connectorPose places the connector between the solved part positions.
// Most archetypes sit at the midpoint; a vertical post anchors at
// part1, and a bracket drops below the lower part for support.
func connectorPose(spec *assembly.ConnectorSpec, axis, p1, p2 geom.Vec3) assembly.Pose {
	pos := p1.Add(p2).Scale(0.5)
	switch spec.Archetype {
	case assembly.VerticalPost:
		pos = p1
	case assembly.Bracket:
		pos.Z = math.Min(p1.Z, p2.Z) - bracketDrop
	}
	return assembly.Pose{
		Position: pos,
		Rotation: geom.RotationBetween(geom.Vec3{X: 1}, axis),
	}
}

// conflictTolerance is the numeric slack when comparing two constraint
// values on the same degree of freedom.
const conflictTolerance = 1e-9

// detectConflicts scans for constraints that impose contradictory
// requirements on the same part pair: two distances with different
// values, two angles with different values, or two alignments with
// different orientations. Exact duplicates are not conflicts.
func detectConflicts(constraints []assembly.Constraint) error {
	type seenEntry struct {
		index       int
		value       float64
		orientation string
		hasValue    bool
	}
	seen := make(map[string]seenEntry)

	for i, c := range constraints {
		key := string(c.Type) + "@" + c.PairKey()

		switch c.Type {
		case assembly.ConstraintDistance, assembly.ConstraintAngle:
			// Compare in canonical units so "5cm" and "50mm" agree.
			v, err := canonicalValue(c)
			if err != nil {
				// Unit errors surface later with stage context; they are
				// not conflicts.
				continue
			}
			prev, ok := seen[key]
			if ok && prev.hasValue && math.Abs(prev.value-v) > conflictTolerance {
				return &assembly.ConstraintConflictError{
					Indices: []int{prev.index, i},
					Reason: fmt.Sprintf("%s constraints demand both %.3f and %.3f for the same part pair",
						c.Type, prev.value, v),
				}
			}
			if !ok {
				seen[key] = seenEntry{index: i, value: v, hasValue: true}
			}

		case assembly.ConstraintAlignment:
			prev, ok := seen[key]
			if ok && prev.orientation != c.Orientation {
				return &assembly.ConstraintConflictError{
					Indices: []int{prev.index, i},
					Reason: fmt.Sprintf("alignment constraints demand both %q and %q for the same part pair",
						prev.orientation, c.Orientation),
				}
			}
			if !ok {
				seen[key] = seenEntry{index: i, orientation: c.Orientation}
			}
		}
	}
	return nil
}

// canonicalValue normalizes a constraint value for comparison:
// millimeters for distances, degrees for angles. Relative distances
// compare as raw fractions since both sides share the same basis.
func canonicalValue(c assembly.Constraint) (float64, error) {
	switch c.Type {
	case assembly.ConstraintDistance:
		if c.Unit == geom.UnitRelative {
			return c.Value, nil
		}
		return geom.ToMillimeters(c.Value, c.Unit, 0)
	case assembly.ConstraintAngle:
		return geom.ToDegrees(c.Value, c.Unit)
	}
	return c.Value, nil
}
