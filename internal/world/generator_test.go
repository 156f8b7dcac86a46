package world

import (
	"testing"

	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrataGenerator(t *testing.T) {
	g := NewStrataGenerator(15)
	assert.Equal(t, block.StoneBlockID, g.BlockAt(3, 0, 3))
	assert.Equal(t, block.StoneBlockID, g.BlockAt(3, 13, 3))
	assert.Equal(t, block.GrassBlockID, g.BlockAt(3, 14, 3))
	assert.Equal(t, block.AirBlockID, g.BlockAt(3, 15, 3))
	assert.Equal(t, block.AirBlockID, g.BlockAt(3, -1, 3))

	g.FloorY = 1
	assert.Equal(t, block.AirBlockID, g.BlockAt(3, 0, 3))
	assert.Equal(t, block.StoneBlockID, g.BlockAt(3, 1, 3))
}

func TestPerlinGeneratorColumns(t *testing.T) {
	g := NewPerlinGenerator(99, 15)

	for x := 0; x < 40; x += 3 {
		for z := 0; z < 40; z += 7 {
			h := g.SurfaceHeight(x, z)
			assert.GreaterOrEqual(t, h, 1)
			assert.LessOrEqual(t, h, 14)

			assert.Equal(t, block.BedrockBlockID, g.BlockAt(x, 0, z))
			assert.Equal(t, block.GrassBlockID, g.BlockAt(x, h, z))
			if h+1 < 15 {
				assert.Equal(t, block.AirBlockID, g.BlockAt(x, h+1, z))
			}
		}
	}
}

func TestResolvePalette(t *testing.T) {
	p, err := ResolvePalette(block.DefaultTable())
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette(), p)

	table, err := block.NewTable([]block.BlockType{
		{Name: "air"},
		{Name: "bedrock", IsSolid: true},
		{Name: "stone", IsSolid: true},
		{Name: "dirt", IsSolid: true},
		{Name: "grass", IsSolid: true},
	})
	require.NoError(t, err)
	p, err = ResolvePalette(table)
	require.NoError(t, err)
	assert.Equal(t, Palette{Stone: 2, Grass: 4, Dirt: 3, Bedrock: 1}, p)

	g, err := NewPerlinGeneratorForTable(99, table, 15)
	require.NoError(t, err)
	h := g.SurfaceHeight(10, 10)
	assert.Equal(t, block.ID(1), g.BlockAt(10, 0, 10))
	assert.Equal(t, block.ID(4), g.BlockAt(10, h, 10))

	strata, err := NewStrataGeneratorForTable(table, 15)
	require.NoError(t, err)
	assert.Equal(t, block.ID(2), strata.BlockAt(0, 3, 0))
	assert.Equal(t, block.ID(4), strata.BlockAt(0, 14, 0))

	small, err := block.NewTable([]block.BlockType{{Name: "air"}, {Name: "stone", IsSolid: true}})
	require.NoError(t, err)
	_, err = ResolvePalette(small)
	assert.ErrorIs(t, err, ErrInvalidSettings)
	_, err = NewStrataGeneratorForTable(small, 15)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = ResolveBlock(nil, StoneBlockName)
	assert.ErrorIs(t, err, ErrMissingTable)
}

func TestPerlinGeneratorDeterministic(t *testing.T) {
	a := NewPerlinGenerator(5, 15)
	b := NewPerlinGenerator(5, 15)
	for x := 0; x < 30; x++ {
		assert.Equal(t, a.SurfaceHeight(x, 2*x), b.SurfaceHeight(x, 2*x))
	}
}

func TestChunkCoordHelpers(t *testing.T) {
	assert.Equal(t, ChunkCoord{X: 0, Z: 0}, ChunkCoordOfVoxel(4, 0, 5))
	assert.Equal(t, ChunkCoord{X: 1, Z: 0}, ChunkCoordOfVoxel(5, 4, 5))
	assert.Equal(t, ChunkCoord{X: -1, Z: -1}, ChunkCoordOfVoxel(-1, -5, 5))
	assert.Equal(t, "(3, -2)", ChunkCoord{X: 3, Z: -2}.String())
	assert.Equal(t, ChunkCoord{X: 4, Z: -1}, ChunkCoord{X: 3, Z: -2}.Add(1, 1))

	s := DefaultSettings()
	assert.Equal(t, ChunkCoord{X: 50, Z: 50}, s.ChunkCoordAt(s.SpawnPoint()))
	assert.Equal(t, mgl32.Vec3{250, 17, 250}, s.SpawnPoint())
	assert.Equal(t, ChunkCoord{X: -1, Z: 0}, s.ChunkCoordAt(mgl32.Vec3{-0.1, 0, 0.1}))
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.AtlasSizeInBlocks = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	s = DefaultSettings()
	s.MeshWorkers = -1
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	assert.Equal(t, 375, DefaultSettings().VoxelsPerChunk())
	assert.Equal(t, 500, DefaultSettings().WorldSizeInVoxels())
}
