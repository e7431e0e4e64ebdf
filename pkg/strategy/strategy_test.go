package strategy

import (
	"math"
	"testing"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
)

// cube returns a 20mm cube part centered at c.
func cube(id string, c geom.Vec3) *assembly.PartAnalysis {
	return &assembly.PartAnalysis{
		ID:     id,
		Center: c,
		BoundingBox: geom.AABB{
			Min: c.Sub(geom.Vec3{X: 10, Y: 10, Z: 10}),
			Max: c.Add(geom.Vec3{X: 10, Y: 10, Z: 10}),
		},
		Volume:      8000,
		SurfaceArea: 2400,
	}
}

func distMM(v float64) assembly.Constraint {
	return assembly.Constraint{
		Type:       assembly.ConstraintDistance,
		Value:      v,
		Unit:       geom.UnitMM,
		References: []string{"p1", "p2"},
		Confidence: 0.9,
	}
}

func align(o string) assembly.Constraint {
	return assembly.Constraint{
		Type:        assembly.ConstraintAlignment,
		Orientation: o,
		References:  []string{"p1", "p2"},
		Confidence:  0.8,
	}
}

func TestSelectBands(t *testing.T) {
	p1 := cube("p1", geom.Vec3{})
	p2 := cube("p2", geom.Vec3{X: 100})

	cases := []struct {
		dist float64
		want assembly.Archetype
	}{
		{5, assembly.DirectMount},
		{19.999, assembly.DirectMount},
		{20, assembly.Bracket}, // boundary resolves to the higher band
		{35, assembly.Bracket},
		{50, assembly.Spacer},
		{75, assembly.Spacer},
		{100, assembly.HorizontalBeam},
		{500, assembly.HorizontalBeam},
	}
	for _, tc := range cases {
		sel, err := Select(p1, p2, []assembly.Constraint{distMM(tc.dist)})
		if err != nil {
			t.Fatalf("Select(%vmm): %v", tc.dist, err)
		}
		if sel.Archetype != tc.want {
			t.Errorf("distance %vmm → %s, want %s", tc.dist, sel.Archetype, tc.want)
		}
		if sel.TargetDistance != tc.dist {
			t.Errorf("distance %vmm: TargetDistance = %v", tc.dist, sel.TargetDistance)
		}
	}
}

func TestSelectIsTotal(t *testing.T) {
	p1 := cube("p1", geom.Vec3{})
	p2 := cube("p2", geom.Vec3{X: 40})

	for d := 0.5; d < 400; d += 7.3 {
		sel, err := Select(p1, p2, []assembly.Constraint{distMM(d)})
		if err != nil {
			t.Fatalf("Select(%vmm): %v", d, err)
		}
		switch sel.Archetype {
		case assembly.DirectMount, assembly.Bracket, assembly.Spacer,
			assembly.VerticalPost, assembly.HorizontalBeam:
		default:
			t.Fatalf("distance %vmm produced unknown archetype %q", d, sel.Archetype)
		}
	}
}

func TestSelectVerticalPostFarBand(t *testing.T) {
	// Explicit vertical alignment at a far distance selects the post.
	p1 := cube("p1", geom.Vec3{})
	p2 := cube("p2", geom.Vec3{X: 150})
	sel, err := Select(p1, p2, []assembly.Constraint{distMM(150), align(assembly.OrientVertical)})
	if err != nil {
		t.Fatal(err)
	}
	if sel.Archetype != assembly.VerticalPost {
		t.Errorf("far + vertical → %s, want vertical_post", sel.Archetype)
	}
	if sel.Axis.Z == 0 {
		t.Errorf("vertical alignment should force a vertical axis, got %v", sel.Axis)
	}
}

func TestSelectVerticalInferenceFromGeometry(t *testing.T) {
	// No alignment constraint, but the parts are stacked: the mostly
	// vertical axis infers a post in the far band.
	p1 := cube("p1", geom.Vec3{})
	p2 := cube("p2", geom.Vec3{Z: 150})
	sel, err := Select(p1, p2, []assembly.Constraint{distMM(150)})
	if err != nil {
		t.Fatal(err)
	}
	if sel.Archetype != assembly.VerticalPost {
		t.Errorf("stacked parts at 150mm → %s, want vertical_post", sel.Archetype)
	}

	// Explicit horizontal alignment overrides the geometric inference.
	sel, err = Select(p1, p2, []assembly.Constraint{distMM(150), align(assembly.OrientHorizontal)})
	if err != nil {
		t.Fatal(err)
	}
	if sel.Archetype != assembly.HorizontalBeam {
		t.Errorf("stacked parts + horizontal → %s, want horizontal_beam", sel.Archetype)
	}
}

func TestSelectFallsBackToCenterDistance(t *testing.T) {
	p1 := cube("p1", geom.Vec3{})
	p2 := cube("p2", geom.Vec3{X: 30, Y: 40}) // 50mm apart

	sel, err := Select(p1, p2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sel.TargetDistance-50) > 1e-9 {
		t.Errorf("fallback distance = %v, want 50", sel.TargetDistance)
	}
	if sel.Archetype != assembly.Spacer {
		t.Errorf("50mm → %s, want spacer", sel.Archetype)
	}
}

func TestSelectRelativeDistance(t *testing.T) {
	// Both cubes have diagonal sqrt(3)*20; relative 0.5 resolves against
	// the larger diagonal.
	p1 := cube("p1", geom.Vec3{})
	p2 := cube("p2", geom.Vec3{X: 100})
	rel := assembly.Constraint{
		Type:       assembly.ConstraintDistance,
		Value:      0.5,
		Unit:       geom.UnitRelative,
		References: []string{"p1", "p2"},
		Confidence: 0.9,
	}
	sel, err := Select(p1, p2, []assembly.Constraint{rel})
	if err != nil {
		t.Fatal(err)
	}
	want := 0.5 * math.Sqrt(3) * 20
	if math.Abs(sel.TargetDistance-want) > 1e-9 {
		t.Errorf("relative distance = %v, want %v", sel.TargetDistance, want)
	}
}

func TestSelectNegativeDistanceFails(t *testing.T) {
	p1 := cube("p1", geom.Vec3{})
	p2 := cube("p2", geom.Vec3{X: 100})
	_, err := Select(p1, p2, []assembly.Constraint{distMM(-5)})
	if err == nil {
		t.Fatal("negative distance should fail")
	}
	if _, ok := err.(*assembly.GeometryError); !ok {
		t.Errorf("error = %T, want *assembly.GeometryError", err)
	}
}

func TestSelectCoincidentCentersDeterministic(t *testing.T) {
	p1 := cube("p1", geom.Vec3{})
	p2 := cube("p2", geom.Vec3{})
	sel, err := Select(p1, p2, []assembly.Constraint{distMM(30)})
	if err != nil {
		t.Fatal(err)
	}
	if sel.Axis != (geom.Vec3{X: 1}) {
		t.Errorf("coincident centers axis = %v, want +X", sel.Axis)
	}
}

func TestSelectDeterministic(t *testing.T) {
	p1 := cube("p1", geom.Vec3{})
	p2 := cube("p2", geom.Vec3{X: 60, Z: 25})
	cs := []assembly.Constraint{distMM(60), align(assembly.OrientParallel)}

	a, err := Select(p1, p2, cs)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Select(p1, p2, cs)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same inputs gave different selections: %+v vs %+v", a, b)
	}
}
