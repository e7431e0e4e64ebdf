package script

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
)

// constraintCollector accumulates constraints emitted by builtins
// during one evaluation. Each evaluation gets its own collector.
type constraintCollector struct {
	constraints []assembly.Constraint
}

func (c *constraintCollector) add(con assembly.Constraint) {
	c.constraints = append(c.constraints, con)
}

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword tokens converted to string literals by the
// preprocessor.
const kwPrefix = "__kw_"

// preprocessSource prepares constraint-script source for zygomys:
// :keyword tokens become tagged string literals, ; comments become //
// comments, and kebab-case identifiers become underscore form (zygomys
// reads a bare hyphen as subtraction). String literal boundaries are
// respected.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to zygomys // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to a tagged string literal. := survives.
		if b[i] == ':' && i+1 < len(b) {
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Kebab-case identifier → underscore form.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

// kwArgs splits a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := keyword(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// keyword reports whether s is a preprocessed keyword and returns its
// name.
func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString accepts a preprocessed keyword or a plain string.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toStringSlice(s zygo.Sexp) ([]string, error) {
	var items []zygo.Sexp
	switch v := s.(type) {
	case *zygo.SexpPair:
		arr, err := zygo.ListToArray(v)
		if err != nil {
			return nil, err
		}
		items = arr
	case *zygo.SexpArray:
		items = v.Val
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
		return nil, fmt.Errorf("expected list of strings, got %T", s)
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", s)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		str, err := toString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, str)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

// defaultParts is used when a form does not name parts explicitly.
var defaultParts = []string{"part1", "part2"}

// commonFields pulls the shared :parts and :confidence keywords.
func commonFields(pa kwArgs, c *assembly.Constraint) error {
	c.References = defaultParts
	c.Confidence = 1

	if v, ok := pa.kw["parts"]; ok {
		parts, err := toStringSlice(v)
		if err != nil {
			return fmt.Errorf("parts: %w", err)
		}
		if n := len(parts); n < 1 || n > 2 {
			return fmt.Errorf("parts: expected 1 or 2 part names, got %d", n)
		}
		c.References = parts
	}
	if v, ok := pa.kw["confidence"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return fmt.Errorf("confidence: %w", err)
		}
		if f < 0 || f > 1 {
			return fmt.Errorf("confidence: %g outside [0,1]", f)
		}
		c.Confidence = f
	}
	return nil
}

// registerBuiltins installs the constraint forms into a zygomys
// environment, appending to the collector as the script evaluates.
func registerBuiltins(env *zygo.Zlisp, collector *constraintCollector) {

	// (distance 50 :unit :mm :parts (list "a" "b") :confidence 0.9)
	env.AddFunction("distance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("distance requires a value")
		}
		value, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distance: value: %w", err)
		}

		c := assembly.Constraint{Type: assembly.ConstraintDistance, Value: value, Unit: geom.UnitMM}
		if v, ok := pa.kw["unit"]; ok {
			u, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("distance: unit: %w", err)
			}
			switch u {
			case geom.UnitMM, geom.UnitCM, geom.UnitInches, geom.UnitRelative:
				c.Unit = u
			default:
				return zygo.SexpNull, fmt.Errorf("distance: unit %q is not a length unit", u)
			}
		}
		if err := commonFields(pa, &c); err != nil {
			return zygo.SexpNull, fmt.Errorf("distance: %w", err)
		}
		collector.add(c)
		return zygo.SexpNull, nil
	})

	// (angle 90 :unit :degrees)
	env.AddFunction("angle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("angle requires a value")
		}
		value, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("angle: value: %w", err)
		}

		c := assembly.Constraint{Type: assembly.ConstraintAngle, Value: value, Unit: geom.UnitDegrees}
		if v, ok := pa.kw["unit"]; ok {
			u, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("angle: unit: %w", err)
			}
			switch u {
			case geom.UnitDegrees, geom.UnitRadians:
				c.Unit = u
			default:
				return zygo.SexpNull, fmt.Errorf("angle: unit %q is not an angle unit", u)
			}
		}
		if err := commonFields(pa, &c); err != nil {
			return zygo.SexpNull, fmt.Errorf("angle: %w", err)
		}
		collector.add(c)
		return zygo.SexpNull, nil
	})

	// (align :perpendicular)
	env.AddFunction("align", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("align requires an orientation")
		}
		orientation, err := toKeywordString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("align: %w", err)
		}
		switch orientation {
		case assembly.OrientVertical, assembly.OrientHorizontal,
			assembly.OrientParallel, assembly.OrientPerpendicular:
		default:
			return zygo.SexpNull, fmt.Errorf(
				"align: %q is not an orientation (vertical, horizontal, parallel, perpendicular)", orientation)
		}

		c := assembly.Constraint{
			Type:        assembly.ConstraintAlignment,
			Value:       1,
			Unit:        geom.UnitRelative,
			Orientation: orientation,
		}
		if err := commonFields(pa, &c); err != nil {
			return zygo.SexpNull, fmt.Errorf("align: %w", err)
		}
		collector.add(c)
		return zygo.SexpNull, nil
	})
}
