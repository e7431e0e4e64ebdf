// Package parse extracts spatial constraints from free-form text. It is
// the built-in constraint-parser collaborator: pattern-based extraction
// of distances, angles, and alignment words, with confidence scores and
// a clarification list for anything the caller should confirm. The
// pipeline treats its output as ground truth and never re-interprets
// the text.
package parse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
)

// DefaultConfidenceThreshold marks the confidence below which a
// constraint is surfaced for confirmation.
const DefaultConfidenceThreshold = 0.5

// Result is the parser output: the constraint set, human-readable
// clarification prompts for low-confidence extractions, and an overall
// feasibility score in [0,1].
type Result struct {
	Constraints          []assembly.Constraint `json:"constraints"`
	ClarificationsNeeded []string              `json:"clarifications_needed,omitempty"`
	Feasibility          float64               `json:"feasibility"`
}

// Parser extracts constraints from natural-language text.
type Parser struct {
	threshold float64
}

// NewParser returns a parser flagging constraints below the given
// confidence threshold; threshold <= 0 selects the default.
func NewParser(threshold float64) *Parser {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Parser{threshold: threshold}
}

// distancePatterns pair a regex with the factor converting the captured
// value to millimeters. Contextual forms ("apart", "spacing") are tried
// before bare unit mentions.
var distancePatterns = []struct {
	re     *regexp.Regexp
	factor float64
}{
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*cm(?:s)?\s*(?:apart|distance|spacing)`), 10},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mm\s*(?:apart|distance|spacing)`), 1},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*inch(?:es)?\s*(?:apart|distance|spacing)`), 25.4},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:cm|centimeter)`), 10},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:mm|millimeter)`), 1},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:inch|in\b)`), 25.4},
}

var anglePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:degrees|degree|deg|°)`),
	regexp.MustCompile(`(?:at|with)\s*(\d+(?:\.\d+)?)\s*(?:degrees|degree|°)`),
}

// alignmentWords map orientation vocabulary (including positional
// phrases) to the alignment orientation they imply.
var alignmentWords = []struct {
	re          *regexp.Regexp
	orientation string
}{
	{regexp.MustCompile(`vertical|vertically`), assembly.OrientVertical},
	{regexp.MustCompile(`horizontal|horizontally`), assembly.OrientHorizontal},
	{regexp.MustCompile(`perpendicular|at right angles`), assembly.OrientPerpendicular},
	{regexp.MustCompile(`parallel`), assembly.OrientParallel},
	{regexp.MustCompile(`above|on top|below|underneath`), assembly.OrientVertical},
	{regexp.MustCompile(`beside|next to|adjacent`), assembly.OrientHorizontal},
}

// defaultPair is the reference pair assigned when the text does not
// name parts explicitly.
var defaultPair = []string{"part1", "part2"}

// Parse extracts constraints from text. It never fails on unparseable
// input; an empty or vague text yields a low-confidence default
// distance plus a clarification prompt.
func (p *Parser) Parse(ctx context.Context, text string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	res := &Result{}

	p.parseDistance(lower, res)
	p.parseAngle(lower, res)
	p.parseAlignment(lower, res)
	p.defaultDistance(lower, res)

	res.Feasibility = feasibility(res.Constraints)
	for _, c := range res.Constraints {
		if c.Confidence < p.threshold {
			res.ClarificationsNeeded = append(res.ClarificationsNeeded,
				fmt.Sprintf("low confidence (%.2f) for %s constraint %g %s, please confirm",
					c.Confidence, c.Type, c.Value, displayUnit(c)))
		}
	}
	return res, nil
}

func (p *Parser) parseDistance(text string, res *Result) {
	for _, dp := range distancePatterns {
		m := dp.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		confidence := 0.7
		if strings.Contains(text, "apart") || strings.Contains(text, "distance") {
			confidence = 0.8
		}
		res.Constraints = append(res.Constraints, assembly.Constraint{
			Type:       assembly.ConstraintDistance,
			Value:      v * dp.factor,
			Unit:       geom.UnitMM,
			References: defaultPair,
			Confidence: confidence,
		})
		return
	}
}

func (p *Parser) parseAngle(text string, res *Result) {
	for _, re := range anglePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		res.Constraints = append(res.Constraints, assembly.Constraint{
			Type:       assembly.ConstraintAngle,
			Value:      v,
			Unit:       geom.UnitDegrees,
			References: defaultPair,
			Confidence: 0.7,
		})
		return
	}
}

func (p *Parser) parseAlignment(text string, res *Result) {
	for _, aw := range alignmentWords {
		if !aw.re.MatchString(text) {
			continue
		}
		res.Constraints = append(res.Constraints, assembly.Constraint{
			Type:        assembly.ConstraintAlignment,
			Value:       1,
			Unit:        geom.UnitRelative,
			Orientation: aw.orientation,
			References:  defaultPair,
			Confidence:  0.6,
		})
		return
	}
}

// defaultDistance infers a fallback distance from qualitative wording
// when no explicit distance was found, at low confidence so the caller
// is prompted to confirm.
func (p *Parser) defaultDistance(text string, res *Result) {
	for _, c := range res.Constraints {
		if c.Type == assembly.ConstraintDistance {
			return
		}
	}

	value := 50.0
	switch {
	case containsAny(text, "close", "tight", "together"):
		value = 10
	case containsAny(text, "far", "apart", "separate"):
		value = 100
	}
	res.Constraints = append(res.Constraints, assembly.Constraint{
		Type:       assembly.ConstraintDistance,
		Value:      value,
		Unit:       geom.UnitMM,
		References: defaultPair,
		Confidence: 0.3,
	})
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// feasibility is the mean confidence across constraints, 0 when none.
func feasibility(cs []assembly.Constraint) float64 {
	if len(cs) == 0 {
		return 0
	}
	var sum float64
	for _, c := range cs {
		sum += c.Confidence
	}
	return sum / float64(len(cs))
}

func displayUnit(c assembly.Constraint) string {
	if c.Type == assembly.ConstraintAlignment {
		return c.Orientation
	}
	return c.Unit
}
