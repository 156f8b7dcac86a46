package world

import (
	"errors"
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// Значения по умолчанию для размеров мира
const (
	DefaultChunkWidth           = 5
	DefaultChunkHeight          = 15
	DefaultWorldSizeInChunks    = 100
	DefaultViewDistanceInChunks = 5
	DefaultAtlasSizeInBlocks    = 4
)

// ErrInvalidSettings ошибка конфигурации размеров мира
var ErrInvalidSettings = errors.New("некорректные настройки мира")

// Settings размеры сетки, окна стриминга и атласа
type Settings struct {
	ChunkWidth           int
	ChunkHeight          int
	WorldSizeInChunks    int
	ViewDistanceInChunks int
	AtlasSizeInBlocks    int

	// MeshWorkers > 1 включает параллельную генерацию чанков окна
	MeshWorkers int
	// MaxInactiveChunks > 0 ограничивает число хранимых неактивных чанков
	MaxInactiveChunks int
}

// DefaultSettings возвращает настройки по умолчанию
func DefaultSettings() Settings {
	return Settings{
		ChunkWidth:           DefaultChunkWidth,
		ChunkHeight:          DefaultChunkHeight,
		WorldSizeInChunks:    DefaultWorldSizeInChunks,
		ViewDistanceInChunks: DefaultViewDistanceInChunks,
		AtlasSizeInBlocks:    DefaultAtlasSizeInBlocks,
	}
}

// Validate проверяет, что все размеры положительны и окно помещается в мир
func (s Settings) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"chunk_width", s.ChunkWidth},
		{"chunk_height", s.ChunkHeight},
		{"world_size_in_chunks", s.WorldSizeInChunks},
		{"view_distance_in_chunks", s.ViewDistanceInChunks},
		{"atlas_size_in_blocks", s.AtlasSizeInBlocks},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%w: %s должно быть положительным, получено %d", ErrInvalidSettings, c.name, c.value)
		}
	}
	if s.ViewDistanceInChunks > s.WorldSizeInChunks {
		return fmt.Errorf("%w: view_distance_in_chunks (%d) больше world_size_in_chunks (%d)",
			ErrInvalidSettings, s.ViewDistanceInChunks, s.WorldSizeInChunks)
	}
	if s.MeshWorkers < 0 || s.MaxInactiveChunks < 0 {
		return fmt.Errorf("%w: mesh_workers и max_inactive_chunks не могут быть отрицательными", ErrInvalidSettings)
	}
	return nil
}

// VoxelsPerChunk размер плоского буфера чанка
func (s Settings) VoxelsPerChunk() int {
	return s.ChunkWidth * s.ChunkHeight * s.ChunkWidth
}

// WorldSizeInVoxels горизонтальный размер мира в вокселях
func (s Settings) WorldSizeInVoxels() int {
	return s.WorldSizeInChunks * s.ChunkWidth
}

// ChunkCoordAt возвращает чанк, над которым находится точка мира
func (s Settings) ChunkCoordAt(pos mgl32.Vec3) ChunkCoord {
	return ChunkCoordOfVoxel(vec.FloorToInt(pos.X()), vec.FloorToInt(pos.Z()), s.ChunkWidth)
}

// SpawnPoint точка появления: центр мира над рельефом
func (s Settings) SpawnPoint() mgl32.Vec3 {
	center := float32(s.WorldSizeInVoxels()) / 2
	return mgl32.Vec3{center, float32(s.ChunkHeight + 2), center}
}
