// Package collision verifies a solved placement against axis-aligned
// bounding-box interpenetration between part1, part2, and the
// connector. On collision the pipeline runs exactly one resolution
// pass, the minimal connector translation that separates the boxes,
// before failing the run, so collision handling always terminates.
package collision

import (
	"math"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
)

// tol is the interpenetration depth below which boxes count as merely
// touching. Attachment faces are designed to touch.
const tol = 1e-6

// Pair names two overlapping entities and the per-axis penetration
// depth between their world boxes.
type Pair struct {
	A, B    string
	Overlap geom.Vec3
}

// Report is the outcome of one collision check.
type Report struct {
	Collides bool
	Pairs    []Pair
}

// PairNames returns the overlapping pairs as "a/b" strings for error
// reporting.
func (r Report) PairNames() []string {
	names := make([]string, 0, len(r.Pairs))
	for _, p := range r.Pairs {
		names = append(names, p.A+"/"+p.B)
	}
	return names
}

// Check computes world-space bounding boxes for both parts and the
// connector under the placement and reports every interpenetrating
// pair.
func Check(placement *assembly.Placement, part1, part2 *assembly.PartAnalysis, spec *assembly.ConnectorSpec) Report {
	b1 := partWorldBox(part1, placement.Part1)
	b2 := partWorldBox(part2, placement.Part2)
	bc := connectorWorldBox(placement, part1, part2, spec)

	var report Report
	check := func(a, b geom.AABB, an, bn string) {
		if a.Intersects(b, tol) {
			report.Collides = true
			report.Pairs = append(report.Pairs, Pair{A: an, B: bn, Overlap: a.Overlap(b)})
		}
	}
	check(b1, b2, "part1", "part2")
	check(b1, bc, "part1", "connector")
	check(b2, bc, "part2", "connector")
	return report
}

// Resolve attempts the single bounded resolution pass: translate the
// connector by the smallest axis-aligned shift that moves it clear of
// the first part it interpenetrates. It returns a copy of the placement
// and reports false when no connector translation can help (the parts
// themselves interpenetrate).
func Resolve(placement *assembly.Placement, part1, part2 *assembly.PartAnalysis, spec *assembly.ConnectorSpec, report Report) (*assembly.Placement, bool) {
	other := ""
	for _, p := range report.Pairs {
		switch {
		case p.A == "connector":
			other = p.B
		case p.B == "connector":
			other = p.A
		}
		if other != "" {
			break
		}
	}
	if other == "" {
		return placement, false
	}

	partBox := partWorldBox(part1, placement.Part1)
	if other == "part2" {
		partBox = partWorldBox(part2, placement.Part2)
	}
	connBox := connectorWorldBox(placement, part1, part2, spec)

	shift, ok := separatingShift(connBox, partBox)
	if !ok {
		return placement, false
	}
	out := *placement
	out.Connector.Position = out.Connector.Position.Add(shift)
	return &out, true
}

// separatingShift returns the smallest axis-aligned translation that
// moves conn out of part. The shift lands the boxes exactly touching;
// touching is clean.
func separatingShift(conn, part geom.AABB) (geom.Vec3, bool) {
	type cand struct {
		mag float64
		dir geom.Vec3
	}
	axes := []struct {
		connMin, connMax, partMin, partMax float64
		unit                               geom.Vec3
	}{
		{conn.Min.X, conn.Max.X, part.Min.X, part.Max.X, geom.Vec3{X: 1}},
		{conn.Min.Y, conn.Max.Y, part.Min.Y, part.Max.Y, geom.Vec3{Y: 1}},
		{conn.Min.Z, conn.Max.Z, part.Min.Z, part.Max.Z, geom.Vec3{Z: 1}},
	}

	best := cand{mag: math.Inf(1)}
	for _, a := range axes {
		if pos := a.partMax - a.connMin; pos > 0 && pos < best.mag {
			best = cand{mag: pos, dir: a.unit}
		}
		if neg := a.connMax - a.partMin; neg > 0 && neg < best.mag {
			best = cand{mag: neg, dir: a.unit.Scale(-1)}
		}
	}
	if math.IsInf(best.mag, 1) {
		return geom.Vec3{}, false
	}
	return best.dir.Scale(best.mag), true
}

// partWorldBox transforms a part's analyzed bounding box by its solved
// pose: rotation about the part's own center, then translation from the
// analyzed center to the solved position.
func partWorldBox(p *assembly.PartAnalysis, pose assembly.Pose) geom.AABB {
	return p.BoundingBox.Transformed(pose.Rotation, p.Center, pose.Position.Sub(p.Center))
}

// connectorWorldBox models the connector body as an oriented box
// filling the gap between the two parts' facing surfaces, with the
// spec's cross-section, then bounds it axis-aligned. Offsets applied by
// the solver (e.g. a bracket's support drop) carry through.
func connectorWorldBox(pl *assembly.Placement, part1, part2 *assembly.PartAnalysis, spec *assembly.ConnectorSpec) geom.AABB {
	axis := pl.Axis.Normalized()
	f1 := pl.Part1.Position.Add(axis.Scale(halfExtentAlong(part1, axis)))
	f2 := pl.Part2.Position.Sub(axis.Scale(halfExtentAlong(part2, axis)))

	gap := f2.Sub(f1).Dot(axis)
	if gap < tol {
		gap = tol
	}
	center := f1.Add(f2).Scale(0.5)

	// Carry any archetype offset the solver applied relative to the
	// nominal midpoint between part positions.
	nominal := pl.Part1.Position.Add(pl.Part2.Position).Scale(0.5)
	if spec.Archetype != assembly.VerticalPost {
		center = center.Add(pl.Connector.Position.Sub(nominal))
	}

	u, v := perpBasis(axis)
	hl := axis.Scale(gap / 2)
	hw := u.Scale(spec.Width() / 2)
	hh := v.Scale(spec.Height() / 2)

	corners := make([]geom.Vec3, 0, 8)
	for _, sl := range []float64{-1, 1} {
		for _, sw := range []float64{-1, 1} {
			for _, sh := range []float64{-1, 1} {
				corners = append(corners, center.
					Add(hl.Scale(sl)).
					Add(hw.Scale(sw)).
					Add(hh.Scale(sh)))
			}
		}
	}
	return geom.BoundPoints(corners)
}

// perpBasis returns two unit vectors completing an orthonormal frame
// with the axis.
func perpBasis(axis geom.Vec3) (geom.Vec3, geom.Vec3) {
	u := axis.Cross(geom.Vec3{Z: 1})
	if u.Length() < 1e-9 {
		u = axis.Cross(geom.Vec3{Y: 1})
	}
	u = u.Normalized()
	return u, axis.Cross(u).Normalized()
}

// halfExtentAlong returns half the support extent of the part's
// bounding box in the axis direction.
func halfExtentAlong(p *assembly.PartAnalysis, axis geom.Vec3) float64 {
	e := p.BoundingBox.Extents()
	return 0.5 * (e.X*math.Abs(axis.X) + e.Y*math.Abs(axis.Y) + e.Z*math.Abs(axis.Z))
}
