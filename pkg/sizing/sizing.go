// Package sizing computes parametric dimensions and mounting-feature
// placement for a selected connector archetype. Dimensions scale with
// the target span and are clamped against the smaller part's
// cross-sectional extent so a connector never dwarfs the parts it joins.
package sizing

import (
	"fmt"
	"math"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
	"github.com/corbel-cad/corbel/pkg/strategy"
)

// minThickness is the floor for plate thickness in mm.
const minThickness = 5.0

// thicknessCap bounds plate thickness per archetype to avoid degenerate
// oversized geometry on long spans.
var thicknessCap = map[assembly.Archetype]float64{
	assembly.DirectMount:    10,
	assembly.Bracket:        12,
	assembly.Spacer:         15,
	assembly.VerticalPost:   20,
	assembly.HorizontalBeam: 20,
}

// Size computes the connector spec for the selected archetype. It fails
// with a GeometryError when the span is non-positive or either part has
// a degenerate (zero-volume) bounding box.
func Size(sel strategy.Selection, part1, part2 *assembly.PartAnalysis) (*assembly.ConnectorSpec, error) {
	if part1.BoundingBox.IsDegenerate() {
		return nil, &assembly.GeometryError{
			Stage:  "sizing",
			Reason: fmt.Sprintf("part %s has a zero-volume bounding box", part1.ID),
		}
	}
	if part2.BoundingBox.IsDegenerate() {
		return nil, &assembly.GeometryError{
			Stage:  "sizing",
			Reason: fmt.Sprintf("part %s has a zero-volume bounding box", part2.ID),
		}
	}
	span := sel.TargetDistance
	if span <= 0 {
		return nil, &assembly.GeometryError{
			Stage:  "sizing",
			Reason: fmt.Sprintf("computed span %.3fmm is not positive", span),
		}
	}

	crossLimit := math.Min(crossExtent(part1, sel.Axis), crossExtent(part2, sel.Axis))

	spec := template(sel, span)
	clampCross(spec, crossLimit)

	spec.Mounts = mountFeatures(sel, spec, part1, part2)
	return spec, nil
}

// template instantiates the archetype's parametric dimension set.
// Formulas follow the connector template library; thickness is
// max(5mm, 0.1 × span) capped per archetype.
func template(sel strategy.Selection, span float64) *assembly.ConnectorSpec {
	thickness := math.Min(math.Max(minThickness, 0.1*span), thicknessCap[sel.Archetype])

	switch sel.Archetype {
	case assembly.DirectMount:
		return &assembly.ConnectorSpec{
			Archetype: assembly.DirectMount,
			Span:      span,
			Dimensions: map[string]float64{
				"length":       span,
				"width":        math.Min(15, span*0.8),
				"height":       math.Min(10, span*0.5),
				"thickness":    thickness,
				"bolt_spacing": math.Max(10, span*0.3),
			},
			Material: "aluminum",
			Features: []string{"bolt_holes", "chamfered_edges"},
		}

	case assembly.Bracket:
		spec := &assembly.ConnectorSpec{
			Archetype: assembly.Bracket,
			Span:      span,
			Dimensions: map[string]float64{
				"length":    span,
				"width":     math.Max(20, span*0.4),
				"height":    math.Max(15, span*0.3),
				"thickness": thickness,
			},
			Material: "steel",
			Features: []string{"bolt_holes", "chamfered_edges"},
		}
		// The L flange exists only when the constraints ask for a
		// perpendicular or vertical relationship; otherwise the bracket
		// is a straight bridge plate.
		if sel.Alignment == assembly.OrientPerpendicular || sel.Alignment == assembly.OrientVertical {
			spec.Dimensions["flange_width"] = math.Max(15, span*0.25)
			spec.Features = append(spec.Features, "reinforcement_ribs")
		}
		return spec

	case assembly.Spacer:
		return &assembly.ConnectorSpec{
			Archetype: assembly.Spacer,
			Span:      span,
			Dimensions: map[string]float64{
				"length":        span,
				"width":         math.Max(25, span*0.5),
				"height":        math.Max(20, span*0.4),
				"thickness":     thickness,
				"bore_diameter": 8,
			},
			Material: "aluminum",
			Features: []string{"threaded_bores", "hex_socket"},
		}

	case assembly.VerticalPost:
		return &assembly.ConnectorSpec{
			Archetype: assembly.VerticalPost,
			Span:      span,
			Dimensions: map[string]float64{
				"height":         span,
				"diameter":       math.Max(20, span*0.2),
				"base_diameter":  math.Max(30, span*0.3),
				"base_thickness": 10,
				"thickness":      thickness,
			},
			Material: "steel",
			Features: []string{"base_plate", "cylindrical_post", "top_flange"},
		}

	default: // assembly.HorizontalBeam
		return &assembly.ConnectorSpec{
			Archetype: assembly.HorizontalBeam,
			Span:      span,
			Dimensions: map[string]float64{
				"length":         span,
				"width":          math.Max(30, span*0.3),
				"height":         math.Max(25, span*0.25),
				"thickness":      thickness,
				"wall_thickness": 3,
			},
			Material: "aluminum_extrusion",
			Features: []string{"hollow_section", "bolt_holes", "end_caps"},
		}
	}
}

// clampCross caps cross-section dimensions at the smaller part's
// cross extent. Dimensions stay positive because the parts are
// non-degenerate.
func clampCross(spec *assembly.ConnectorSpec, limit float64) {
	for _, name := range []string{"width", "height", "diameter", "base_diameter", "flange_width"} {
		if v, ok := spec.Dimensions[name]; ok && v > limit {
			spec.Dimensions[name] = limit
		}
	}
}

// crossExtent returns a part's largest bounding-box extent on the axes
// perpendicular to the connection axis.
func crossExtent(p *assembly.PartAnalysis, axis geom.Vec3) float64 {
	e := p.BoundingBox.Extents()
	ax, ay, az := math.Abs(axis.X), math.Abs(axis.Y), math.Abs(axis.Z)
	switch {
	case ax >= ay && ax >= az:
		return math.Max(e.Y, e.Z)
	case ay >= ax && ay >= az:
		return math.Max(e.X, e.Z)
	default:
		return math.Max(e.X, e.Y)
	}
}

// halfExtentAlong returns half the support extent of the part's
// bounding box in the axis direction.
func halfExtentAlong(p *assembly.PartAnalysis, axis geom.Vec3) float64 {
	e := p.BoundingBox.Extents()
	return 0.5 * (e.X*math.Abs(axis.X) + e.Y*math.Abs(axis.Y) + e.Z*math.Abs(axis.Z))
}

// attachPoint finds where the connector meets a part: the part's
// nearest mounting point to the face that looks toward the other part,
// or a synthesized point at that face's center when the part exposes no
// mounting points. dir points from this part toward the other one.
func attachPoint(p *assembly.PartAnalysis, dir geom.Vec3) geom.Vec3 {
	faceCenter := p.Center.Add(dir.Scale(halfExtentAlong(p, dir)))
	if len(p.MountingPoints) == 0 {
		return faceCenter
	}
	best := p.MountingPoints[0].Position
	bestDist := best.Distance(faceCenter)
	for _, mp := range p.MountingPoints[1:] {
		if d := mp.Position.Distance(faceCenter); d < bestDist {
			best, bestDist = mp.Position, d
		}
	}
	return best
}

// mountFeatures places the archetype's fastening features at each
// part's attachment point, plus the archetype-specific auxiliary holes.
func mountFeatures(sel strategy.Selection, spec *assembly.ConnectorSpec, part1, part2 *assembly.PartAnalysis) []assembly.MountFeature {
	a1 := attachPoint(part1, sel.Axis)
	a2 := attachPoint(part2, sel.Axis.Scale(-1))

	switch spec.Archetype {
	case assembly.DirectMount:
		return []assembly.MountFeature{
			{Position: a1, Kind: assembly.MountBoltHole, Diameter: 5},
			{Position: a2, Kind: assembly.MountBoltHole, Diameter: 5},
		}

	case assembly.Bracket:
		mid := a1.Add(a2).Scale(0.5)
		mid.Z -= 10 // support hole below the bridge midpoint
		return []assembly.MountFeature{
			{Position: a1, Kind: assembly.MountBoltHole, Diameter: 6},
			{Position: a2, Kind: assembly.MountBoltHole, Diameter: 6},
			{Position: mid, Kind: assembly.MountBoltHole, Diameter: 6},
		}

	case assembly.Spacer:
		return []assembly.MountFeature{
			{Position: a1, Kind: assembly.MountThreadedHole, Diameter: 8, Thread: "M8"},
			{Position: a2, Kind: assembly.MountThreadedHole, Diameter: 8, Thread: "M8"},
		}

	case assembly.VerticalPost:
		base := a1
		base.Z -= 5 // base plate bolts just under the anchor part
		return []assembly.MountFeature{
			{Position: base, Kind: assembly.MountBoltHole, Diameter: 6},
			{Position: a2, Kind: assembly.MountBoltHole, Diameter: 6},
		}

	default: // assembly.HorizontalBeam
		up1, up2 := a1, a2
		up1.Z += 15
		up2.Z += 15
		return []assembly.MountFeature{
			{Position: a1, Kind: assembly.MountBoltHole, Diameter: 8},
			{Position: a2, Kind: assembly.MountBoltHole, Diameter: 8},
			{Position: up1, Kind: assembly.MountBoltHole, Diameter: 6},
			{Position: up2, Kind: assembly.MountBoltHole, Diameter: 6},
		}
	}
}
