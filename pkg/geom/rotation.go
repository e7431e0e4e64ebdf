package geom

import "math"

// Rotation is an axis-angle rotation. The axis is a unit vector and the
// angle is in degrees. The zero value is the identity rotation.
type Rotation struct {
	Axis     Vec3    `json:"axis"`
	AngleDeg float64 `json:"angle_deg"`
}

// Identity returns the identity rotation about +Z.
func Identity() Rotation {
	return Rotation{Axis: Vec3{Z: 1}}
}

// IsIdentity reports whether the rotation leaves vectors unchanged.
func (r Rotation) IsIdentity() bool {
	return r.AngleDeg == 0 || r.Axis.IsZero()
}

// Apply rotates v about the rotation axis through the origin using the
// Rodrigues formula.
func (r Rotation) Apply(v Vec3) Vec3 {
	if r.IsIdentity() {
		return v
	}
	k := r.Axis.Normalized()
	theta := r.AngleDeg * math.Pi / 180
	cos := math.Cos(theta)
	sin := math.Sin(theta)

	// v' = v cosθ + (k × v) sinθ + k (k · v)(1 - cosθ)
	return v.Scale(cos).
		Add(k.Cross(v).Scale(sin)).
		Add(k.Scale(k.Dot(v) * (1 - cos)))
}

// RotationBetween returns the rotation taking unit vector from onto
// unit vector to. Antiparallel inputs rotate 180° about a perpendicular
// axis chosen deterministically.
func RotationBetween(from, to Vec3) Rotation {
	f := from.Normalized()
	t := to.Normalized()

	dot := f.Dot(t)
	switch {
	case dot >= 1-1e-12:
		return Identity()
	case dot <= -1+1e-12:
		// Any axis perpendicular to f works; prefer Z, fall back to Y.
		perp := f.Cross(Vec3{Z: 1})
		if perp.Length() < 1e-9 {
			perp = f.Cross(Vec3{Y: 1})
		}
		return Rotation{Axis: perp.Normalized(), AngleDeg: 180}
	}

	axis := f.Cross(t).Normalized()
	angle := math.Acos(math.Max(-1, math.Min(1, dot))) * 180 / math.Pi
	return Rotation{Axis: axis, AngleDeg: angle}
}

// NormalizeDegrees maps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}
