package assembly

import (
	"testing"

	"github.com/corbel-cad/corbel/pkg/geom"
)

func validPart(id string) *PartAnalysis {
	return &PartAnalysis{
		ID:          id,
		Center:      geom.Vec3{},
		BoundingBox: geom.AABB{Min: geom.Vec3{X: -10, Y: -10, Z: -10}, Max: geom.Vec3{X: 10, Y: 10, Z: 10}},
		Volume:      8000,
		SurfaceArea: 2400,
		MountingPoints: []MountingPoint{
			{Position: geom.Vec3{X: 10, Y: 0, Z: 0}, Normal: geom.Vec3{X: 1}},
		},
	}
}

func TestPartAnalysisValidate(t *testing.T) {
	if err := validPart("p1").Validate(); err != nil {
		t.Fatalf("valid part rejected: %v", err)
	}

	bad := validPart("")
	if err := bad.Validate(); err == nil {
		t.Error("missing id should fail validation")
	}

	bad = validPart("p1")
	bad.BoundingBox = geom.AABB{Min: geom.Vec3{X: 5, Y: 0, Z: 0}, Max: geom.Vec3{X: 0, Y: 1, Z: 1}}
	if err := bad.Validate(); err == nil {
		t.Error("inverted bounding box should fail validation")
	}

	bad = validPart("p1")
	bad.Volume = -1
	if err := bad.Validate(); err == nil {
		t.Error("negative volume should fail validation")
	}

	bad = validPart("p1")
	bad.Features.Holes = []Hole{{Diameter: 0}}
	if err := bad.Validate(); err == nil {
		t.Error("zero-diameter hole should fail validation")
	}
}

func TestPartAnalysisCloneIsDeep(t *testing.T) {
	p := validPart("p1")
	p.Features.Holes = []Hole{{Center: geom.Vec3{X: 1, Y: 2, Z: 3}, Diameter: 5}}

	c := p.Clone()
	c.Features.Holes[0].Diameter = 99
	c.MountingPoints[0].Position.X = -123

	if p.Features.Holes[0].Diameter != 5 {
		t.Error("clone shares hole slice with original")
	}
	if p.MountingPoints[0].Position.X != 10 {
		t.Error("clone shares mounting-point slice with original")
	}
}

func TestConstraintPairKey(t *testing.T) {
	a := Constraint{References: []string{"p1", "p2"}}
	b := Constraint{References: []string{"p2", "p1"}}
	if a.PairKey() != b.PairKey() {
		t.Errorf("pair key not symmetric: %q vs %q", a.PairKey(), b.PairKey())
	}
	if (Constraint{}).PairKey() != "" {
		t.Error("empty references should key to empty string")
	}
	one := Constraint{References: []string{"p1"}}
	if one.PairKey() != "p1" {
		t.Errorf("single reference key = %q", one.PairKey())
	}
}

func TestConnectorSpecCrossSection(t *testing.T) {
	plate := &ConnectorSpec{
		Archetype:  Bracket,
		Span:       40,
		Dimensions: map[string]float64{"width": 20, "height": 15},
	}
	if plate.Width() != 20 || plate.Height() != 15 {
		t.Errorf("plate cross = %v×%v", plate.Width(), plate.Height())
	}

	post := &ConnectorSpec{
		Archetype:  VerticalPost,
		Span:       120,
		Dimensions: map[string]float64{"diameter": 24},
	}
	if post.Width() != 24 || post.Height() != 24 {
		t.Errorf("cylindrical cross should report diameter, got %v×%v", post.Width(), post.Height())
	}
}

func TestConnectorSpecCloneIsDeep(t *testing.T) {
	spec := &ConnectorSpec{
		Archetype:  Spacer,
		Span:       60,
		Dimensions: map[string]float64{"length": 60},
		Mounts:     []MountFeature{{Kind: MountThreadedHole, Diameter: 8, Thread: "M8"}},
	}
	c := spec.Clone()
	c.Dimensions["length"] = 1
	c.Mounts[0].Diameter = 1

	if spec.Dimensions["length"] != 60 {
		t.Error("clone shares dimensions map")
	}
	if spec.Mounts[0].Diameter != 8 {
		t.Error("clone shares mounts slice")
	}
}

func TestResultTerminal(t *testing.T) {
	cases := map[Status]bool{
		StatusProcessing: false,
		StatusCompleted:  true,
		StatusFailed:     true,
	}
	for status, want := range cases {
		r := &Result{Status: status}
		if r.Terminal() != want {
			t.Errorf("Terminal(%s) = %v, want %v", status, r.Terminal(), want)
		}
	}
}

func TestResultCloneIsDeep(t *testing.T) {
	r := &Result{
		ID:     "run-1",
		Status: StatusCompleted,
		Part1:  validPart("p1"),
		Part2:  validPart("p2"),
		Connector: &ConnectorSpec{
			Archetype:  DirectMount,
			Span:       15,
			Dimensions: map[string]float64{"length": 15},
		},
		Assembly:          &Record{Artifacts: []ArtifactRef{{ID: "a", Format: "stl"}}},
		ParsedConstraints: []Constraint{{Type: ConstraintDistance, Value: 15, Unit: "mm"}},
	}

	c := r.Clone()
	c.Part1.ID = "mutated"
	c.Connector.Dimensions["length"] = 1
	c.Assembly.Artifacts[0].Format = "obj"
	c.ParsedConstraints[0].Value = 999

	if r.Part1.ID != "p1" {
		t.Error("clone shares part1")
	}
	if r.Connector.Dimensions["length"] != 15 {
		t.Error("clone shares connector dimensions")
	}
	if r.Assembly.Artifacts[0].Format != "stl" {
		t.Error("clone shares artifacts")
	}
	if r.ParsedConstraints[0].Value != 15 {
		t.Error("clone shares constraints")
	}
}

func TestErrorMessagesNameStage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&GeometryError{Stage: "sizing", Reason: "bad span"}, "sizing"},
		{&ConstraintConflictError{Indices: []int{0, 2}, Reason: "contradiction"}, "conflict"},
		{&CollisionError{Pairs: []string{"part1/connector"}}, "collision"},
	}
	for _, tc := range cases {
		if msg := tc.err.Error(); !contains(msg, tc.want) {
			t.Errorf("error %T message %q missing %q", tc.err, msg, tc.want)
		}
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
