package geom

import (
	"fmt"
	"math"
)

// Supported constraint units. Lengths normalize to millimeters, angles
// to degrees. The relative unit expresses a length as a fraction of a
// caller-supplied basis (the larger part's bounding-box diagonal).
const (
	UnitMM       = "mm"
	UnitCM       = "cm"
	UnitInches   = "inches"
	UnitDegrees  = "degrees"
	UnitRadians  = "radians"
	UnitRelative = "relative"
)

// ToMillimeters converts a length value in the given unit to
// millimeters. relativeBasis supplies the reference length for the
// relative unit and is ignored otherwise.
func ToMillimeters(value float64, unit string, relativeBasis float64) (float64, error) {
	switch unit {
	case UnitMM, "":
		return value, nil
	case UnitCM:
		return value * 10, nil
	case UnitInches:
		return value * 25.4, nil
	case UnitRelative:
		if relativeBasis <= 0 {
			return 0, fmt.Errorf("relative unit needs a positive basis, got %g", relativeBasis)
		}
		return value * relativeBasis, nil
	default:
		return 0, fmt.Errorf("unit %q is not a length unit", unit)
	}
}

// ToDegrees converts an angle value in the given unit to degrees in
// [0, 360).
func ToDegrees(value float64, unit string) (float64, error) {
	switch unit {
	case UnitDegrees, "":
		return NormalizeDegrees(value), nil
	case UnitRadians:
		return NormalizeDegrees(value * 180 / math.Pi), nil
	default:
		return 0, fmt.Errorf("unit %q is not an angle unit", unit)
	}
}
