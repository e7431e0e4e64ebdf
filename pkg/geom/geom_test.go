package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func vecAlmostEqual(a, b Vec3) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) && almostEqual(a.Z, b.Z)
}

func TestVec3Basics(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale = %v", got)
	}
	cross := Vec3{X: 1}.Cross(Vec3{Y: 1})
	if !vecAlmostEqual(cross, Vec3{Z: 1}) {
		t.Errorf("x cross y = %v, want z", cross)
	}
}

func TestVec3Normalized(t *testing.T) {
	v := Vec3{3, 0, 4}.Normalized()
	if !almostEqual(v.Length(), 1) {
		t.Errorf("normalized length = %v", v.Length())
	}
	if !vecAlmostEqual(v, Vec3{0.6, 0, 0.8}) {
		t.Errorf("normalized = %v", v)
	}

	// Zero vector normalizes to a deterministic +X.
	z := Vec3{}.Normalized()
	if z != (Vec3{X: 1}) {
		t.Errorf("zero normalized = %v, want +X", z)
	}
}

func TestRotationApply(t *testing.T) {
	// 90° about Z sends +X to +Y.
	r := Rotation{Axis: Vec3{Z: 1}, AngleDeg: 90}
	got := r.Apply(Vec3{X: 1})
	if !vecAlmostEqual(got, Vec3{Y: 1}) {
		t.Errorf("90° about Z on +X = %v, want +Y", got)
	}

	// Identity leaves vectors alone.
	id := Identity()
	if !id.IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}
	v := Vec3{1, 2, 3}
	if got := id.Apply(v); !vecAlmostEqual(got, v) {
		t.Errorf("identity apply = %v", got)
	}
}

func TestRotationBetween(t *testing.T) {
	cases := []struct {
		name     string
		from, to Vec3
	}{
		{"x to y", Vec3{X: 1}, Vec3{Y: 1}},
		{"x to z", Vec3{X: 1}, Vec3{Z: 1}},
		{"x to diagonal", Vec3{X: 1}, Vec3{1, 1, 1}},
		{"antiparallel", Vec3{X: 1}, Vec3{X: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := RotationBetween(tc.from, tc.to)
			got := r.Apply(tc.from.Normalized())
			want := tc.to.Normalized()
			if !vecAlmostEqual(got, want) {
				t.Errorf("rotated %v, want %v", got, want)
			}
		})
	}
}

func TestRotationBetweenParallelIsIdentity(t *testing.T) {
	r := RotationBetween(Vec3{X: 1}, Vec3{X: 2})
	if !r.IsIdentity() {
		t.Errorf("parallel vectors should give identity, got %+v", r)
	}
}

func TestNormalizeDegrees(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		360:  0,
		450:  90,
		-90:  270,
		-360: 0,
	}
	for in, want := range cases {
		if got := NormalizeDegrees(in); !almostEqual(got, want) {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestAABBBasics(t *testing.T) {
	b := NewAABB(Vec3{2, 3, 4}, Vec3{0, 1, 2})
	if b.Min != (Vec3{0, 1, 2}) || b.Max != (Vec3{2, 3, 4}) {
		t.Fatalf("NewAABB did not order corners: %+v", b)
	}
	if !b.Valid() {
		t.Error("box should be valid")
	}
	if got := b.Extents(); got != (Vec3{2, 2, 2}) {
		t.Errorf("Extents = %v", got)
	}
	if got := b.Center(); got != (Vec3{1, 2, 3}) {
		t.Errorf("Center = %v", got)
	}
	if got := b.Volume(); got != 8 {
		t.Errorf("Volume = %v", got)
	}
	if !almostEqual(b.Diagonal(), math.Sqrt(12)) {
		t.Errorf("Diagonal = %v", b.Diagonal())
	}
}

func TestAABBDegenerate(t *testing.T) {
	flat := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{10, 10, 0}}
	if !flat.IsDegenerate() {
		t.Error("zero-thickness box should be degenerate")
	}
	solid := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}
	if solid.IsDegenerate() {
		t.Error("unit box should not be degenerate")
	}
}

func TestAABBIntersects(t *testing.T) {
	a := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{10, 10, 10}}
	b := AABB{Min: Vec3{5, 5, 5}, Max: Vec3{15, 15, 15}}
	c := AABB{Min: Vec3{20, 20, 20}, Max: Vec3{30, 30, 30}}
	touching := AABB{Min: Vec3{10, 0, 0}, Max: Vec3{20, 10, 10}}

	if !a.Intersects(b, 1e-6) {
		t.Error("overlapping boxes should intersect")
	}
	if a.Intersects(c, 1e-6) {
		t.Error("separated boxes should not intersect")
	}
	if a.Intersects(touching, 1e-6) {
		t.Error("touching faces should not count as intersection")
	}
}

func TestAABBOverlapDepths(t *testing.T) {
	a := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{10, 10, 10}}
	b := AABB{Min: Vec3{8, 5, -2}, Max: Vec3{20, 30, 4}}
	ov := a.Overlap(b)
	if !vecAlmostEqual(ov, Vec3{2, 5, 4}) {
		t.Errorf("Overlap = %v, want {2 5 4}", ov)
	}
}

func TestAABBTransformed(t *testing.T) {
	b := AABB{Min: Vec3{-1, -2, -3}, Max: Vec3{1, 2, 3}}

	// Pure translation.
	moved := b.Transformed(Identity(), Vec3{}, Vec3{10, 0, 0})
	if !vecAlmostEqual(moved.Min, Vec3{9, -2, -3}) || !vecAlmostEqual(moved.Max, Vec3{11, 2, 3}) {
		t.Errorf("translated = %+v", moved)
	}

	// 90° about Z swaps the x and y extents.
	rot := b.Transformed(Rotation{Axis: Vec3{Z: 1}, AngleDeg: 90}, Vec3{}, Vec3{})
	e := rot.Extents()
	if !almostEqual(e.X, 4) || !almostEqual(e.Y, 2) || !almostEqual(e.Z, 6) {
		t.Errorf("rotated extents = %v, want {4 2 6}", e)
	}
}

func TestBoundPoints(t *testing.T) {
	pts := []Vec3{{1, 5, -2}, {-3, 0, 7}, {2, 2, 2}}
	b := BoundPoints(pts)
	if b.Min != (Vec3{-3, 0, -2}) || b.Max != (Vec3{2, 5, 7}) {
		t.Errorf("BoundPoints = %+v", b)
	}
}

func TestToMillimeters(t *testing.T) {
	cases := []struct {
		value float64
		unit  string
		basis float64
		want  float64
	}{
		{50, UnitMM, 0, 50},
		{5, UnitCM, 0, 50},
		{2, UnitInches, 0, 50.8},
		{0.5, UnitRelative, 200, 100},
	}
	for _, tc := range cases {
		got, err := ToMillimeters(tc.value, tc.unit, tc.basis)
		if err != nil {
			t.Fatalf("ToMillimeters(%v %s): %v", tc.value, tc.unit, err)
		}
		if !almostEqual(got, tc.want) {
			t.Errorf("ToMillimeters(%v %s) = %v, want %v", tc.value, tc.unit, got, tc.want)
		}
	}

	if _, err := ToMillimeters(1, "furlongs", 0); err == nil {
		t.Error("unknown unit should fail")
	}
}

func TestToDegrees(t *testing.T) {
	got, err := ToDegrees(math.Pi/2, UnitRadians)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(got, 90) {
		t.Errorf("pi/2 rad = %v°, want 90", got)
	}
	got, err = ToDegrees(45, UnitDegrees)
	if err != nil {
		t.Fatal(err)
	}
	if got != 45 {
		t.Errorf("45° = %v", got)
	}
	if _, err := ToDegrees(1, "gradians"); err == nil {
		t.Error("unknown angle unit should fail")
	}
}
