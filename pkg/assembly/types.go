// Package assembly defines the data model shared by the
// constraint-to-geometry pipeline: analyzed parts, parsed constraints,
// sized connectors, solved placements, and the externally visible
// assembly result.
package assembly

import (
	"fmt"
	"time"

	"github.com/corbel-cad/corbel/pkg/geom"
)

// ---------------------------------------------------------------------------
// Part analysis
// ---------------------------------------------------------------------------

// SurfaceType classifies a detected surface.
type SurfaceType string

const (
	SurfacePlane    SurfaceType = "plane"
	SurfaceCylinder SurfaceType = "cylinder"
	SurfaceSphere   SurfaceType = "sphere"
)

// Hole is a detected circular bore on a part.
type Hole struct {
	Center   geom.Vec3 `json:"center"`
	Diameter float64   `json:"diameter"` // mm, > 0
}

// Edge is a detected linear edge.
type Edge struct {
	Start geom.Vec3 `json:"start"`
	End   geom.Vec3 `json:"end"`
}

// Surface is a detected surface with its outward unit normal.
type Surface struct {
	Type   SurfaceType `json:"type"`
	Normal geom.Vec3   `json:"normal"`
}

// Features collects the geometric features detected on a part.
type Features struct {
	Holes    []Hole    `json:"holes,omitempty"`
	Edges    []Edge    `json:"edges,omitempty"`
	Surfaces []Surface `json:"surfaces,omitempty"`
}

// MountingPoint is a candidate attachment site: a position on the part
// and the outward unit normal at that position.
type MountingPoint struct {
	Position geom.Vec3 `json:"position"`
	Normal   geom.Vec3 `json:"normal"`
}

// PartAnalysis is the geometric summary of one uploaded part, produced
// by the external geometry-analysis collaborator. It is immutable once
// produced; the pipeline never writes to it.
type PartAnalysis struct {
	ID             string          `json:"id"`
	Center         geom.Vec3       `json:"center"`
	BoundingBox    geom.AABB       `json:"bounding_box"`
	Volume         float64         `json:"volume"`
	SurfaceArea    float64         `json:"surface_area"`
	Features       Features        `json:"features"`
	MountingPoints []MountingPoint `json:"mounting_points,omitempty"`
}

// Validate checks the structural invariants of a part analysis.
func (p *PartAnalysis) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("part analysis missing id")
	}
	if !p.BoundingBox.Valid() {
		return fmt.Errorf("part %s: bounding box min exceeds max", p.ID)
	}
	if p.Volume < 0 {
		return fmt.Errorf("part %s: negative volume %g", p.ID, p.Volume)
	}
	if p.SurfaceArea < 0 {
		return fmt.Errorf("part %s: negative surface area %g", p.ID, p.SurfaceArea)
	}
	for i, h := range p.Features.Holes {
		if h.Diameter <= 0 {
			return fmt.Errorf("part %s: hole %d has non-positive diameter %g", p.ID, i, h.Diameter)
		}
	}
	return nil
}

// Clone returns a deep copy. Results embed copies of their inputs so a
// caller mutating its own PartAnalysis cannot alias published state.
func (p *PartAnalysis) Clone() *PartAnalysis {
	if p == nil {
		return nil
	}
	out := *p
	out.Features.Holes = append([]Hole(nil), p.Features.Holes...)
	out.Features.Edges = append([]Edge(nil), p.Features.Edges...)
	out.Features.Surfaces = append([]Surface(nil), p.Features.Surfaces...)
	out.MountingPoints = append([]MountingPoint(nil), p.MountingPoints...)
	return &out
}

// ---------------------------------------------------------------------------
// Constraints
// ---------------------------------------------------------------------------

// ConstraintType enumerates the parsed constraint kinds.
type ConstraintType string

const (
	ConstraintDistance  ConstraintType = "distance"
	ConstraintAngle     ConstraintType = "angle"
	ConstraintAlignment ConstraintType = "alignment"
)

// Alignment orientations carried by alignment constraints.
const (
	OrientVertical      = "vertical"
	OrientHorizontal    = "horizontal"
	OrientParallel      = "parallel"
	OrientPerpendicular = "perpendicular"
)

// Constraint is one parsed spatial requirement. Immutable once parsed.
// Alignment constraints carry their requested relationship in
// Orientation because the numeric Value cannot express it.
type Constraint struct {
	Type        ConstraintType `json:"type"`
	Value       float64        `json:"value"`
	Unit        string         `json:"unit"`
	Orientation string         `json:"orientation,omitempty"`
	References  []string       `json:"references"`
	Confidence  float64        `json:"confidence"`
}

// PairKey returns a canonical key for the referenced part pair so that
// (a,b) and (b,a) compare equal.
func (c Constraint) PairKey() string {
	switch len(c.References) {
	case 0:
		return ""
	case 1:
		return c.References[0]
	}
	a, b := c.References[0], c.References[1]
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// ---------------------------------------------------------------------------
// Connector
// ---------------------------------------------------------------------------

// Archetype names the five connector shape families.
type Archetype string

const (
	DirectMount    Archetype = "direct_mount"
	Bracket        Archetype = "bracket"
	Spacer         Archetype = "spacer"
	VerticalPost   Archetype = "vertical_post"
	HorizontalBeam Archetype = "horizontal_beam"
)

// MountFeatureKind classifies a mounting feature on a connector.
type MountFeatureKind string

const (
	MountBoltHole     MountFeatureKind = "bolt_hole"
	MountThreadedHole MountFeatureKind = "threaded_hole"
)

// MountFeature is one hole or threaded bore on a connector face.
type MountFeature struct {
	Position geom.Vec3        `json:"position"`
	Kind     MountFeatureKind `json:"kind"`
	Diameter float64          `json:"diameter"`
	Thread   string           `json:"thread,omitempty"` // e.g. "M8"
}

// ConnectorSpec is the sized, parametric connector produced by the
// sizer. Immutable once produced. Dimensions holds the archetype's
// parameter set keyed by name (length, width, thickness, ...); Span is
// the primary dimension along the connection axis and is always set.
type ConnectorSpec struct {
	Archetype  Archetype          `json:"archetype"`
	Span       float64            `json:"span"` // mm
	Dimensions map[string]float64 `json:"dimensions"`
	Material   string             `json:"material"`
	Features   []string           `json:"features,omitempty"`
	Mounts     []MountFeature     `json:"mounting_points,omitempty"`
}

// dim returns a named dimension or the fallback when absent.
func (c *ConnectorSpec) dim(name string, fallback float64) float64 {
	if v, ok := c.Dimensions[name]; ok {
		return v
	}
	return fallback
}

// Width returns the connector's cross-section width. Cylindrical
// archetypes report their diameter.
func (c *ConnectorSpec) Width() float64 {
	if d, ok := c.Dimensions["diameter"]; ok {
		return d
	}
	return c.dim("width", c.Span*0.3)
}

// Height returns the connector's cross-section height.
func (c *ConnectorSpec) Height() float64 {
	if d, ok := c.Dimensions["diameter"]; ok {
		return d
	}
	return c.dim("height", c.Span*0.25)
}

// Clone returns a deep copy of the spec.
func (c *ConnectorSpec) Clone() *ConnectorSpec {
	if c == nil {
		return nil
	}
	out := *c
	out.Dimensions = make(map[string]float64, len(c.Dimensions))
	for k, v := range c.Dimensions {
		out.Dimensions[k] = v
	}
	out.Features = append([]string(nil), c.Features...)
	out.Mounts = append([]MountFeature(nil), c.Mounts...)
	return &out
}

// ---------------------------------------------------------------------------
// Placement
// ---------------------------------------------------------------------------

// Pose is the solved position and orientation of one entity.
type Pose struct {
	Position geom.Vec3     `json:"position"`
	Rotation geom.Rotation `json:"rotation"`
}

// Placement is the solved pose of both parts and the connector. It is
// working state owned by one pipeline run and is promoted into the
// final result only on success.
type Placement struct {
	Part1     Pose      `json:"part1"`
	Part2     Pose      `json:"part2"`
	Connector Pose      `json:"connector"`
	Axis      geom.Vec3 `json:"axis"` // unit connection axis, part1 → part2
}

// ---------------------------------------------------------------------------
// Result
// ---------------------------------------------------------------------------

// Status is the lifecycle state of one assembly run. processing is the
// only non-terminal state.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ArtifactRef is an opaque handle to an exported geometry artifact.
type ArtifactRef struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

// Record bundles the solved placement with its exported artifacts.
type Record struct {
	Placement Placement     `json:"placement"`
	Artifacts []ArtifactRef `json:"artifacts,omitempty"`
}

// Result is the externally visible outcome of one assembly run.
// Connector and Assembly are present only when Status is completed;
// Error only when Status is failed.
type Result struct {
	ID                string         `json:"id"`
	Status            Status         `json:"status"`
	Part1             *PartAnalysis  `json:"part1,omitempty"`
	Part2             *PartAnalysis  `json:"part2,omitempty"`
	Connector         *ConnectorSpec `json:"connector,omitempty"`
	Assembly          *Record        `json:"assembly,omitempty"`
	ParsedConstraints []Constraint   `json:"parsed_constraints"`
	ProcessingTime    float64        `json:"processing_time,omitempty"` // seconds
	Error             string         `json:"error,omitempty"`
	CreatedAt         time.Time      `json:"created_at,omitempty"`
}

// Terminal reports whether the run has finished.
func (r *Result) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Clone returns a deep copy so published results never alias registry
// or caller state.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Part1 = r.Part1.Clone()
	out.Part2 = r.Part2.Clone()
	out.Connector = r.Connector.Clone()
	if r.Assembly != nil {
		rec := *r.Assembly
		rec.Artifacts = append([]ArtifactRef(nil), r.Assembly.Artifacts...)
		out.Assembly = &rec
	}
	out.ParsedConstraints = append([]Constraint(nil), r.ParsedConstraints...)
	return &out
}
