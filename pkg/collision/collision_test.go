package collision

import (
	"testing"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
)

func cube(id string, c geom.Vec3, half float64) *assembly.PartAnalysis {
	h := geom.Vec3{X: half, Y: half, Z: half}
	return &assembly.PartAnalysis{
		ID:          id,
		Center:      c,
		BoundingBox: geom.AABB{Min: c.Sub(h), Max: c.Add(h)},
		Volume:      8 * half * half * half,
	}
}

func pose(p geom.Vec3) assembly.Pose {
	return assembly.Pose{Position: p, Rotation: geom.Identity()}
}

// placementAlongX lays part1 at origin and part2 at distance d on +X,
// connector at the midpoint.
func placementAlongX(d float64) *assembly.Placement {
	return &assembly.Placement{
		Part1:     pose(geom.Vec3{}),
		Part2:     pose(geom.Vec3{X: d}),
		Connector: pose(geom.Vec3{X: d / 2}),
		Axis:      geom.Vec3{X: 1},
	}
}

func spacerSpec(span float64) *assembly.ConnectorSpec {
	return &assembly.ConnectorSpec{
		Archetype:  assembly.Spacer,
		Span:       span,
		Dimensions: map[string]float64{"length": span, "width": 10, "height": 10},
	}
}

func TestCheckCleanPlacement(t *testing.T) {
	p1 := cube("p1", geom.Vec3{}, 10)
	p2 := cube("p2", geom.Vec3{X: 60}, 10)
	pl := placementAlongX(60)

	report := Check(pl, p1, p2, spacerSpec(60))
	if report.Collides {
		t.Fatalf("well-separated placement reported collision: %v", report.PairNames())
	}
}

func TestCheckDetectsPartOverlap(t *testing.T) {
	p1 := cube("p1", geom.Vec3{}, 10)
	p2 := cube("p2", geom.Vec3{X: 15}, 10)
	pl := placementAlongX(15) // 20mm cubes 15mm apart interpenetrate

	report := Check(pl, p1, p2, spacerSpec(15))
	if !report.Collides {
		t.Fatal("interpenetrating parts not detected")
	}
	found := false
	for _, pair := range report.Pairs {
		if pair.A == "part1" && pair.B == "part2" {
			found = true
			if pair.Overlap.X <= 0 {
				t.Errorf("part overlap depth = %v, want positive x component", pair.Overlap)
			}
		}
	}
	if !found {
		t.Errorf("part1/part2 pair missing: %v", report.PairNames())
	}
}

func TestCheckTouchingFacesAreClean(t *testing.T) {
	// Faces exactly in contact: attachment is supposed to touch.
	p1 := cube("p1", geom.Vec3{}, 10)
	p2 := cube("p2", geom.Vec3{X: 20}, 10)
	pl := placementAlongX(20)

	report := Check(pl, p1, p2, spacerSpec(20))
	if report.Collides {
		t.Fatalf("touching faces reported as collision: %v", report.PairNames())
	}
}

func TestCheckDetectsConnectorSunkIntoPart(t *testing.T) {
	p1 := cube("p1", geom.Vec3{}, 10)
	p2 := cube("p2", geom.Vec3{X: 60}, 10)
	pl := placementAlongX(60)

	// Drop the connector so its gap box shifts into part1's volume.
	pl.Connector.Position.X -= 18

	report := Check(pl, p1, p2, spacerSpec(60))
	if !report.Collides {
		t.Fatal("connector sunk into part1 not detected")
	}
	hit := false
	for _, name := range report.PairNames() {
		if name == "part1/connector" {
			hit = true
		}
	}
	if !hit {
		t.Errorf("expected part1/connector, got %v", report.PairNames())
	}
}

func TestResolveClearsShallowOverlap(t *testing.T) {
	p1 := cube("p1", geom.Vec3{}, 10)
	p2 := cube("p2", geom.Vec3{X: 60}, 10)
	pl := placementAlongX(60)
	pl.Connector.Position.X -= 12 // shallow intrusion into part1

	spec := spacerSpec(60)
	report := Check(pl, p1, p2, spec)
	if !report.Collides {
		t.Fatal("setup should collide before resolution")
	}

	resolved, ok := Resolve(pl, p1, p2, spec, report)
	if !ok {
		t.Fatal("resolution should be possible for a connector-only collision")
	}
	if resolved == pl {
		t.Fatal("Resolve must return a copy, not mutate the input")
	}

	after := Check(resolved, p1, p2, spec)
	if after.Collides {
		t.Errorf("still colliding after resolution: %v", after.PairNames())
	}
}

func TestResolveImpossibleForPartPartCollision(t *testing.T) {
	// Only the parts collide; no connector translation helps.
	p1 := cube("p1", geom.Vec3{}, 10)
	p2 := cube("p2", geom.Vec3{X: 15}, 10)
	pl := placementAlongX(15)
	report := Report{
		Collides: true,
		Pairs:    []Pair{{A: "part1", B: "part2", Overlap: geom.Vec3{X: 5, Y: 20, Z: 20}}},
	}
	_, ok := Resolve(pl, p1, p2, spacerSpec(15), report)
	if ok {
		t.Error("part/part collision must not be resolvable by moving the connector")
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	p1 := cube("p1", geom.Vec3{}, 10)
	p2 := cube("p2", geom.Vec3{X: 60}, 10)
	pl := placementAlongX(60)
	pl.Connector.Position.X -= 12
	before := pl.Connector.Position

	spec := spacerSpec(60)
	report := Check(pl, p1, p2, spec)
	if !report.Collides {
		t.Fatal("setup should collide")
	}
	if _, ok := Resolve(pl, p1, p2, spec, report); !ok {
		t.Fatal("expected resolvable")
	}
	if pl.Connector.Position != before {
		t.Error("Resolve mutated the input placement")
	}
}

func TestPairNames(t *testing.T) {
	r := Report{Pairs: []Pair{{A: "part1", B: "connector"}, {A: "part2", B: "connector"}}}
	names := r.PairNames()
	if len(names) != 2 || names[0] != "part1/connector" || names[1] != "part2/connector" {
		t.Errorf("PairNames = %v", names)
	}
}
