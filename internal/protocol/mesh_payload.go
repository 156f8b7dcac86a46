package protocol

import (
	"github.com/annel0/voxel-world/internal/world"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshPayload JSON-представление меша чанка
type MeshPayload struct {
	X        int          `json:"x"`
	Z        int          `json:"z"`
	Vertices [][3]float32 `json:"vertices"`
	UVs      [][2]float32 `json:"uvs"`
	Indices  []uint32     `json:"indices"`
	Faces    int          `json:"faces"`
}

// NewMeshPayload копирует буферы меша в JSON-структуру
func NewMeshPayload(coord world.ChunkCoord, mesh *world.Mesh) MeshPayload {
	p := MeshPayload{
		X:        coord.X,
		Z:        coord.Z,
		Vertices: make([][3]float32, len(mesh.Vertices)),
		UVs:      make([][2]float32, len(mesh.UVs)),
		Indices:  append([]uint32(nil), mesh.Indices...),
		Faces:    mesh.FaceCount(),
	}
	for i, v := range mesh.Vertices {
		p.Vertices[i] = [3]float32(v)
	}
	for i, uv := range mesh.UVs {
		p.UVs[i] = [2]float32(uv)
	}
	return p
}

// Mesh восстанавливает меш из JSON-структуры
func (p MeshPayload) Mesh() (world.ChunkCoord, *world.Mesh) {
	mesh := &world.Mesh{
		Vertices: make([]mgl32.Vec3, len(p.Vertices)),
		UVs:      make([]mgl32.Vec2, len(p.UVs)),
		Indices:  append([]uint32(nil), p.Indices...),
	}
	for i, v := range p.Vertices {
		mesh.Vertices[i] = mgl32.Vec3(v)
	}
	for i, uv := range p.UVs {
		mesh.UVs[i] = mgl32.Vec2(uv)
	}
	return world.ChunkCoord{X: p.X, Z: p.Z}, mesh
}
