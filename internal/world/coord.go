package world

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
)

// ChunkCoord координаты чанка в сетке мира. Ось Y не делится на чанки.
// Значение сравнимо и используется как ключ карт.
type ChunkCoord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// String возвращает строковое представление координат
func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}

// Add сдвигает координаты на dx, dz чанков
func (c ChunkCoord) Add(dx, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// ChunkCoordOfVoxel возвращает чанк, содержащий воксель с мировыми X/Z
func ChunkCoordOfVoxel(x, z, chunkWidth int) ChunkCoord {
	return ChunkCoord{X: vec.FloorDiv(x, chunkWidth), Z: vec.FloorDiv(z, chunkWidth)}
}

// Origin мировые координаты угла чанка (x, 0, z)
func (c ChunkCoord) Origin(chunkWidth int) vec.Vec3 {
	return vec.Vec3{X: c.X * chunkWidth, Y: 0, Z: c.Z * chunkWidth}
}
