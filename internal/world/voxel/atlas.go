package voxel

import "github.com/go-gl/mathgl/mgl32"

// SentinelTexture ячейка атласа, используемая вместо некорректного индекса
const SentinelTexture = 0

// AtlasCell возвращает столбец и строку ячейки атласа для индекса текстуры
func AtlasCell(texture, atlasSize int) (col, row int) {
	return texture % atlasSize, texture / atlasSize
}

// ValidTexture проверяет, что индекс попадает в атлас N×N
func ValidTexture(texture, atlasSize int) bool {
	return atlasSize > 0 && texture >= 0 && texture < atlasSize*atlasSize
}

// AtlasUVs вычисляет UV четырёх вершин грани для индекса текстуры.
// При некорректном индексе возвращает UV ячейки SentinelTexture и ok=false.
func AtlasUVs(texture, atlasSize int) (uvs [4]mgl32.Vec2, ok bool) {
	if atlasSize <= 0 {
		return uvs, false
	}
	ok = ValidTexture(texture, atlasSize)
	if !ok {
		texture = SentinelTexture
	}

	cell := float32(1) / float32(atlasSize)
	col, row := AtlasCell(texture, atlasSize)
	base := mgl32.Vec2{float32(col) * cell, float32(row) * cell}

	uvs[0] = base.Add(mgl32.Vec2{0, cell})
	uvs[1] = base
	uvs[2] = base.Add(mgl32.Vec2{cell, 0})
	uvs[3] = base.Add(mgl32.Vec2{cell, cell})
	return uvs, ok
}
