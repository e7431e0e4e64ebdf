package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/geom"
	"github.com/corbel-cad/corbel/pkg/kernel"
)

// writeSTLFile writes a binary STL: an 80-byte header, a uint32
// triangle count, and 50 bytes per triangle (normal, three vertices,
// attribute word), all little-endian.
func writeSTLFile(path string, mesh *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	var header [80]byte
	copy(header[:], "corbel connector export")
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	count := uint32(mesh.TriangleCount())
	if err := binary.Write(w, binary.LittleEndian, count); err != nil {
		return err
	}

	for i := 0; i < int(count); i++ {
		tri := mesh.Triangle(i)
		normal := triangleNormal(tri)
		if err := binary.Write(w, binary.LittleEndian, normal); err != nil {
			return err
		}
		for _, v := range tri {
			if err := binary.Write(w, binary.LittleEndian, v); err != nil {
				return err
			}
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(0)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// triangleNormal computes the right-handed face normal.
func triangleNormal(tri [3][3]float32) [3]float32 {
	a := geom.Vec3{
		X: float64(tri[1][0] - tri[0][0]),
		Y: float64(tri[1][1] - tri[0][1]),
		Z: float64(tri[1][2] - tri[0][2]),
	}
	b := geom.Vec3{
		X: float64(tri[2][0] - tri[0][0]),
		Y: float64(tri[2][1] - tri[0][1]),
		Z: float64(tri[2][2] - tri[0][2]),
	}
	n := a.Cross(b).Normalized()
	return [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
}

// writeOBJFile writes a Wavefront OBJ with positions, per-vertex
// normals, and v//vn faces.
func writeOBJFile(path string, mesh *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# corbel connector export\no %s\n", mesh.Name)

	for i := 0; i < mesh.VertexCount(); i++ {
		fmt.Fprintf(w, "v %g %g %g\n",
			mesh.Vertices[i*3], mesh.Vertices[i*3+1], mesh.Vertices[i*3+2])
	}
	for i := 0; i < mesh.VertexCount(); i++ {
		fmt.Fprintf(w, "vn %g %g %g\n",
			mesh.Normals[i*3], mesh.Normals[i*3+1], mesh.Normals[i*3+2])
	}
	for i := 0; i < mesh.TriangleCount(); i++ {
		// OBJ indices are 1-based.
		a := mesh.Indices[i*3] + 1
		b := mesh.Indices[i*3+1] + 1
		c := mesh.Indices[i*3+2] + 1
		fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	return w.Flush()
}

// writeSTEPFile writes an ISO 10303-21 exchange file carrying the three
// assembly entities as products with their solved placements. The body
// geometry travels in the mesh formats; the STEP file is the
// configuration-controlled assembly structure.
func writeSTEPFile(path, name string, spec *assembly.ConnectorSpec, placement *assembly.Placement) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintln(w, "ISO-10303-21;")
	fmt.Fprintln(w, "HEADER;")
	fmt.Fprintf(w, "FILE_DESCRIPTION(('corbel generated assembly'),'2;1');\n")
	fmt.Fprintf(w, "FILE_NAME('%s.step','%s',('corbel'),(''),'corbel','corbel','');\n",
		name, time.Now().UTC().Format("2006-01-02T15:04:05"))
	fmt.Fprintln(w, "FILE_SCHEMA(('CONFIG_CONTROL_DESIGN'));")
	fmt.Fprintln(w, "ENDSEC;")
	fmt.Fprintln(w, "DATA;")

	id := 1
	next := func() int { v := id; id++; return v }

	writeEntity := func(label string, pose assembly.Pose) {
		org := next()
		zdir := next()
		xdir := next()
		place := next()
		prod := next()
		p := pose.Position
		z := pose.Rotation.Apply(geom.Vec3{Z: 1})
		x := pose.Rotation.Apply(geom.Vec3{X: 1})
		fmt.Fprintf(w, "#%d=CARTESIAN_POINT('%s origin',(%.6f,%.6f,%.6f));\n", org, label, p.X, p.Y, p.Z)
		fmt.Fprintf(w, "#%d=DIRECTION('%s z',(%.6f,%.6f,%.6f));\n", zdir, label, z.X, z.Y, z.Z)
		fmt.Fprintf(w, "#%d=DIRECTION('%s x',(%.6f,%.6f,%.6f));\n", xdir, label, x.X, x.Y, x.Z)
		fmt.Fprintf(w, "#%d=AXIS2_PLACEMENT_3D('%s',#%d,#%d,#%d);\n", place, label, org, zdir, xdir)
		fmt.Fprintf(w, "#%d=PRODUCT('%s','%s','',());\n", prod, label, label)
	}

	writeEntity("part1", placement.Part1)
	writeEntity("part2", placement.Part2)
	writeEntity(fmt.Sprintf("connector_%s", spec.Archetype), placement.Connector)

	fmt.Fprintln(w, "ENDSEC;")
	fmt.Fprintln(w, "END-ISO-10303-21;")
	return w.Flush()
}
