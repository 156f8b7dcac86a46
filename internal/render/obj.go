package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/annel0/voxel-world/internal/world"
)

// WriteOBJ выводит меш в формате Wavefront OBJ. Вершины сдвигаются
// на offset, чтобы несколько чанков можно было сложить в один файл.
// Индексы в OBJ начинаются с 1.
func WriteOBJ(w io.Writer, name string, mesh *world.Mesh, offset [3]float32) error {
	bw := bufio.NewWriter(w)
	if err := writeOBJGroup(bw, name, mesh, offset, 0); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteWorldOBJ выводит меши всех активных чанков мира в мировых координатах
func WriteWorldOBJ(w io.Writer, wd *world.World) error {
	width := wd.Settings().ChunkWidth
	base := 0

	bw := bufio.NewWriter(w)
	for _, coord := range wd.ActiveChunks() {
		c, ok := wd.GetChunk(coord)
		if !ok || c.Mesh() == nil {
			continue
		}
		origin := coord.Origin(width)
		if err := writeOBJGroup(bw, fmt.Sprintf("chunk_%d_%d", coord.X, coord.Z), c.Mesh(), origin.ToFloat(), base); err != nil {
			return err
		}
		base += len(c.Mesh().Vertices)
	}
	return bw.Flush()
}

func writeOBJGroup(w io.Writer, name string, mesh *world.Mesh, offset [3]float32, base int) error {
	if err := mesh.Validate(); err != nil {
		return fmt.Errorf("obj %s: %w", name, err)
	}
	if _, err := fmt.Fprintf(w, "g %s\n", name); err != nil {
		return err
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(w, "v %g %g %g\n", v.X()+offset[0], v.Y()+offset[1], v.Z()+offset[2])
	}
	for _, uv := range mesh.UVs {
		// В OBJ ось v направлена вверх
		fmt.Fprintf(w, "vt %g %g\n", uv.X(), 1-uv.Y())
	}
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := int(mesh.Indices[i]) + base + 1
		b := int(mesh.Indices[i+1]) + base + 1
		c := int(mesh.Indices[i+2]) + base + 1
		fmt.Fprintf(w, "f %d/%d %d/%d %d/%d\n", a, a, b, b, c, c)
	}
	return nil
}
