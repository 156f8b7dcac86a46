package world

import (
	"fmt"
	"sync/atomic"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/annel0/voxel-world/internal/world/voxel"
)

// Chunk колонна вокселей width×height×width и её меш.
// Воксели заполняются один раз в Populate, меш полностью
// перестраивается в GenerateMesh.
type Chunk struct {
	Coord ChunkCoord

	ctx    ChunkContext
	voxels []block.ID // ((y*width)+x)*width+z
	mesh   *Mesh
	active atomic.Bool
}

// NewChunk создаёт пустой чанк. Без таблицы блоков, материала или
// генератора возвращает ошибку конфигурации.
func NewChunk(coord ChunkCoord, ctx ChunkContext) (*Chunk, error) {
	if err := ctx.Validate(); err != nil {
		return nil, fmt.Errorf("chunk %s: %w", coord, err)
	}
	if ctx.Logger == nil {
		ctx.Logger = logging.GetMeshLogger()
	}

	return &Chunk{
		Coord:  coord,
		ctx:    ctx,
		voxels: make([]block.ID, ctx.Settings.VoxelsPerChunk()),
	}, nil
}

// BuildChunk создаёт, заполняет и строит меш чанка
func BuildChunk(coord ChunkCoord, ctx ChunkContext) (*Chunk, error) {
	c, err := NewChunk(coord, ctx)
	if err != nil {
		return nil, err
	}
	c.Populate()
	c.GenerateMesh()
	return c, nil
}

func (c *Chunk) index(x, y, z int) int {
	w := c.ctx.Settings.ChunkWidth
	return ((y*w)+x)*w + z
}

// inBounds проверяет локальные координаты
func (c *Chunk) inBounds(x, y, z int) bool {
	s := c.ctx.Settings
	return x >= 0 && y >= 0 && z >= 0 &&
		x < s.ChunkWidth && y < s.ChunkHeight && z < s.ChunkWidth
}

// Populate заполняет сетку генератором по мировым координатам вокселей
func (c *Chunk) Populate() {
	s := c.ctx.Settings
	origin := c.Coord.Origin(s.ChunkWidth)

	for y := 0; y < s.ChunkHeight; y++ {
		for x := 0; x < s.ChunkWidth; x++ {
			for z := 0; z < s.ChunkWidth; z++ {
				c.voxels[c.index(x, y, z)] = c.ctx.Generator.BlockAt(origin.X+x, y, origin.Z+z)
			}
		}
	}
}

// VoxelAt возвращает ID блока по локальным координатам.
// Вне границ чанка возвращает воздух.
func (c *Chunk) VoxelAt(x, y, z int) block.ID {
	if !c.inBounds(x, y, z) {
		return block.AirBlockID
	}
	return c.voxels[c.index(x, y, z)]
}

// CheckVoxel сообщает, твёрдый ли воксель по локальным координатам.
// Позиции вне чанка считаются воздухом: соседние чанки не опрашиваются.
func (c *Chunk) CheckVoxel(pos vec.Vec3) bool {
	if !c.inBounds(pos.X, pos.Y, pos.Z) {
		return false
	}
	return c.ctx.Table.IsSolid(c.voxels[c.index(pos.X, pos.Y, pos.Z)])
}

// missingTexture запись о грани с некорректной текстурой
type missingTexture struct {
	block   string
	face    voxel.Face
	texture int
}

// GenerateMesh строит меш с отсечением граней между твёрдыми вокселями
func (c *Chunk) GenerateMesh() *Mesh {
	s := c.ctx.Settings
	b := &meshBuilder{
		missing: make(map[missingTexture]int),
		unknown: make(map[block.ID]int),
	}

	for y := 0; y < s.ChunkHeight; y++ {
		for x := 0; x < s.ChunkWidth; x++ {
			for z := 0; z < s.ChunkWidth; z++ {
				c.addVoxel(b, vec.Vec3{X: x, Y: y, Z: z})
			}
		}
	}

	mesh := &b.mesh
	for id, count := range b.unknown {
		mesh.UnknownVoxels += count
		c.ctx.Logger.Warn("Chunk %s: ID блока %d отсутствует в таблице (%d типов), %d вокселей считаются воздухом",
			c.Coord, id, c.ctx.Table.Len(), count)
	}
	for m, count := range b.missing {
		mesh.MissingTextures += count
		c.ctx.Logger.Warn("Chunk %s: блок %q, грань %s: текстура %d вне атласа %dx%d, использована заглушка (%d граней)",
			c.Coord, m.block, m.face, m.texture, s.AtlasSizeInBlocks, s.AtlasSizeInBlocks, count)
	}

	c.ctx.Metrics.observeMesh(mesh)
	logging.LogChunkMesh(c.ctx.Logger, c.Coord.X, c.Coord.Z, len(mesh.Vertices), mesh.TriangleCount())

	c.mesh = mesh
	return mesh
}

func (c *Chunk) addVoxel(b *meshBuilder, pos vec.Vec3) {
	id := c.voxels[c.index(pos.X, pos.Y, pos.Z)]
	bt, known := c.ctx.Table.Get(id)
	if !known {
		b.unknown[id]++
		return
	}
	if !bt.IsSolid {
		return
	}

	for _, face := range voxel.Faces {
		if c.CheckVoxel(pos.Add(face.Offset())) {
			// Грань закрыта соседом
			continue
		}

		texture := bt.TextureID(face)
		uvs, ok := voxel.AtlasUVs(texture, c.ctx.Settings.AtlasSizeInBlocks)
		if !ok {
			b.missing[missingTexture{block: bt.Name, face: face, texture: texture}]++
		}
		b.addFace(face.Corners(pos), uvs)
	}
}

// Mesh возвращает последний построенный меш или nil
func (c *Chunk) Mesh() *Mesh {
	return c.mesh
}

// IsActive сообщает, виден ли чанк
func (c *Chunk) IsActive() bool {
	return c.active.Load()
}

func (c *Chunk) setActive(active bool) {
	c.active.Store(active)
}

// Voxels возвращает копию сетки вокселей
func (c *Chunk) Voxels() []block.ID {
	out := make([]block.ID, len(c.voxels))
	copy(out, c.voxels)
	return out
}
