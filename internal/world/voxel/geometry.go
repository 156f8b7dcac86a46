package voxel

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// Verts вершины единичного куба
var Verts = [8]mgl32.Vec3{
	{0, 0, 0},
	{1, 0, 0},
	{1, 1, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 0, 1},
	{1, 1, 1},
	{0, 1, 1},
}

// Tris индексы вершин каждой грани в порядке обхода.
// +Z направлена к наблюдателю, поэтому порядок отличается от
// левосторонних систем координат. Обращение порядка переворачивает
// видимую сторону грани.
var Tris = [FaceCount][4]int{
	{1, 2, 3, 0}, // back
	{4, 7, 6, 5}, // front
	{7, 3, 2, 6}, // top
	{5, 1, 0, 4}, // bottom
	{0, 3, 7, 4}, // left
	{5, 6, 2, 1}, // right
}

// FaceChecks смещения к соседней клетке для каждой грани
var FaceChecks = [FaceCount]vec.Vec3{
	{X: 0, Y: 0, Z: -1},
	{X: 0, Y: 0, Z: 1},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: -1, Z: 0},
	{X: -1, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
}

// UVs шаблон текстурных координат для четырёх вершин грани
var UVs = [4]mgl32.Vec2{
	{0, 1},
	{0, 0},
	{1, 0},
	{1, 1},
}

// QuadIndices два треугольника квада относительно первой вершины грани
var QuadIndices = [6]uint32{0, 1, 2, 2, 3, 0}

// Offset возвращает смещение соседа для грани
func (f Face) Offset() vec.Vec3 {
	return FaceChecks[f]
}

// Corners возвращает четыре вершины грани, сдвинутые в позицию клетки
func (f Face) Corners(pos vec.Vec3) [4]mgl32.Vec3 {
	base := pos.ToFloat()
	var out [4]mgl32.Vec3
	for i, vi := range Tris[f] {
		out[i] = base.Add(Verts[vi])
	}
	return out
}
