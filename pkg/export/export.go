// Package export realizes a sized connector as a solid via the geometry
// kernel and writes downloadable artifacts in the supported exchange
// formats: step (ISO 10303-21), stl (binary triangle mesh), and obj
// (ASCII mesh). The pipeline receives opaque artifact handles, never
// raw bytes.
package export

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
	"github.com/corbel-cad/corbel/pkg/kernel"
)

// Formats supported by the exporter.
const (
	FormatSTEP = "step"
	FormatSTL  = "stl"
	FormatOBJ  = "obj"
)

// Service writes export artifacts for completed assemblies.
type Service struct {
	kern kernel.Kernel
	dir  string
	log  *zap.SugaredLogger
}

// NewService returns an exporter rendering solids with the given kernel
// and writing artifacts under dir.
func NewService(k kernel.Kernel, dir string, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{kern: k, dir: dir, log: log}
}

// Export writes one artifact per requested format and returns their
// handles. Formats are written concurrently; each format's work is
// fully isolated. baseName becomes the artifact file stem.
func (s *Service) Export(ctx context.Context, spec *assembly.ConnectorSpec, placement *assembly.Placement, baseName string, formats []string) ([]assembly.ArtifactRef, error) {
	if len(formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create dir: %w", err)
	}

	// Mesh formats share one tessellation.
	var mesh *kernel.Mesh
	for _, f := range formats {
		if f == FormatSTL || f == FormatOBJ {
			solid := s.buildSolid(spec, placement)
			m, err := s.kern.ToMesh(solid)
			if err != nil {
				return nil, fmt.Errorf("export: tessellate connector: %w", err)
			}
			m.Name = "connector"
			mesh = m
			break
		}
	}

	refs := make([]assembly.ArtifactRef, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(s.dir, baseName+"."+format)
			var err error
			switch format {
			case FormatSTEP:
				err = writeSTEPFile(path, baseName, spec, placement)
			case FormatSTL:
				err = writeSTLFile(path, mesh)
			case FormatOBJ:
				err = writeOBJFile(path, mesh)
			default:
				err = fmt.Errorf("unsupported export format %q", format)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", format, err)
			}
			refs[i] = assembly.ArtifactRef{
				ID:     uuid.NewString(),
				Format: format,
				Path:   path,
			}
			s.log.Debugw("artifact written", "format", format, "path", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// buildSolid constructs the connector body in a local frame with the
// span along +X, orients it onto the placement axis, and translates it
// to the connector position.
func (s *Service) buildSolid(spec *assembly.ConnectorSpec, placement *assembly.Placement) kernel.Solid {
	dims := spec.Dimensions
	span := spec.Span
	width := spec.Width()
	height := spec.Height()

	var body kernel.Solid
	switch spec.Archetype {
	case assembly.Bracket:
		thickness := dims["thickness"]
		body = s.kern.Box(span, width, thickness)
		if flange, ok := dims["flange_width"]; ok {
			leg := s.kern.Box(thickness, width, flange)
			leg = s.kern.Translate(leg, span/2-thickness/2, 0, flange/2+thickness/2)
			body = s.kern.Union(body, leg)
		}

	case assembly.VerticalPost:
		radius := dims["diameter"] / 2
		post := s.kern.Cylinder(span, radius)
		post = s.kern.Rotate(post, 0, 90, 0) // cylinder axis Z → local X
		base := s.kern.Cylinder(dims["base_thickness"], dims["base_diameter"]/2)
		base = s.kern.Rotate(base, 0, 90, 0)
		base = s.kern.Translate(base, -span/2+dims["base_thickness"]/2, 0, 0)
		body = s.kern.Union(post, base)

	case assembly.HorizontalBeam:
		wall := dims["wall_thickness"]
		outer := s.kern.Box(span, width, height)
		inner := s.kern.Box(span*1.01, width-2*wall, height-2*wall)
		body = s.kern.Difference(outer, inner)

	default: // direct_mount, spacer: solid block
		body = s.kern.Box(span, width, height)
	}

	pitch, yaw := axisEuler(placement.Axis)
	if pitch != 0 || yaw != 0 {
		body = s.kern.Rotate(body, 0, pitch, yaw)
	}
	p := placement.Connector.Position
	return s.kern.Translate(body, p.X, p.Y, p.Z)
}

// axisEuler returns the pitch (about Y) and yaw (about Z) in degrees
// that rotate +X onto the given unit axis.
func axisEuler(axis geom.Vec3) (pitch, yaw float64) {
	a := axis.Normalized()
	z := math.Max(-1, math.Min(1, a.Z))
	pitch = -math.Asin(z) * 180 / math.Pi
	yaw = math.Atan2(a.Y, a.X) * 180 / math.Pi
	return pitch, yaw
}
