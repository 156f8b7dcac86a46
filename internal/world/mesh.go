package world

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/annel0/voxel-world/internal/world/voxel"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh индексированный список треугольников одного чанка.
// После построения только читается.
type Mesh struct {
	Vertices []mgl32.Vec3
	UVs      []mgl32.Vec2
	Indices  []uint32

	// MissingTextures число граней, отрисованных с текстурой-заглушкой
	MissingTextures int

	// UnknownVoxels число вокселей с ID вне таблицы блоков
	UnknownVoxels int
}

// FaceCount количество квадов
func (m *Mesh) FaceCount() int {
	return len(m.Vertices) / 4
}

// TriangleCount количество треугольников
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate проверяет согласованность буферов
func (m *Mesh) Validate() error {
	if len(m.Vertices)%4 != 0 {
		return fmt.Errorf("число вершин %d не кратно 4", len(m.Vertices))
	}
	if len(m.UVs) != len(m.Vertices) {
		return fmt.Errorf("число UV %d не совпадает с числом вершин %d", len(m.UVs), len(m.Vertices))
	}
	if len(m.Indices) != m.FaceCount()*6 {
		return fmt.Errorf("число индексов %d не равно 6 на грань (%d граней)", len(m.Indices), m.FaceCount())
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("индекс %d в позиции %d выходит за %d вершин", idx, i, len(m.Vertices))
		}
	}
	return nil
}

// meshBuilder накапливает буферы, счётчик вершин и проблемы данных
type meshBuilder struct {
	mesh        Mesh
	vertexIndex uint32
	missing     map[missingTexture]int
	unknown     map[block.ID]int
}

func (b *meshBuilder) addFace(corners [4]mgl32.Vec3, uvs [4]mgl32.Vec2) {
	b.mesh.Vertices = append(b.mesh.Vertices, corners[:]...)
	b.mesh.UVs = append(b.mesh.UVs, uvs[:]...)
	for _, qi := range voxel.QuadIndices {
		b.mesh.Indices = append(b.mesh.Indices, b.vertexIndex+qi)
	}
	b.vertexIndex += 4
}
