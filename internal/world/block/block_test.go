package block

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/voxel-world/internal/world/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, 5, table.Len())
	assert.False(t, table.IsSolid(AirBlockID), "воздух не должен быть твёрдым")
	assert.True(t, table.IsSolid(StoneBlockID))
	assert.True(t, table.IsSolid(GrassBlockID))

	grass, ok := table.Get(GrassBlockID)
	require.True(t, ok)
	assert.Equal(t, 7, grass.TextureID(voxel.FaceTop))
	assert.Equal(t, 1, grass.TextureID(voxel.FaceBottom))
	assert.Equal(t, 2, grass.TextureID(voxel.FaceLeft))

	id, ok := table.Lookup("dirt")
	assert.True(t, ok)
	assert.Equal(t, DirtBlockID, id)
}

func TestUnknownIDIsAir(t *testing.T) {
	table := DefaultTable()

	bt, ok := table.Get(200)
	assert.False(t, ok)
	assert.Equal(t, "air", bt.Name)
	assert.False(t, table.IsSolid(200))
	assert.False(t, table.IsValidBlockID(200))
}

func TestTextureIDPanicsOnBadFace(t *testing.T) {
	stone, _ := DefaultTable().Get(StoneBlockID)

	assert.Panics(t, func() { stone.TextureID(voxel.Face(6)) })
	assert.Panics(t, func() { stone.TextureID(voxel.Face(-1)) })
	assert.NotPanics(t, func() { stone.TextureID(voxel.FaceRight) })
}

func TestNewTableValidation(t *testing.T) {
	_, err := NewTable(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = NewTable([]BlockType{{Name: "air"}, {Name: "air"}})
	assert.Error(t, err, "повтор имени должен отклоняться")

	_, err = NewTable([]BlockType{{Name: ""}})
	assert.Error(t, err, "пустое имя должно отклоняться")
}

func TestParseTableYAML(t *testing.T) {
	data := []byte(`
blocks:
  - name: air
  - name: grass
    solid: true
    textures:
      all: 2
      top: 7
      bottom: 1
  - name: glass
    solid: false
    textures:
      all: 49
`)
	table, err := ParseTable(data)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	grass, _ := table.Get(1)
	assert.True(t, grass.IsSolid)
	assert.Equal(t, [6]int{2, 2, 7, 1, 2, 2}, grass.FaceTextures)

	glass, _ := table.Get(2)
	assert.False(t, glass.IsSolid)
	assert.Equal(t, 49, glass.TextureID(voxel.FaceFront))
}

func TestLoadTableJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.json")
	err := os.WriteFile(path, []byte(`{"blocks":[{"name":"air"},{"name":"stone","solid":true,"textures":{"all":0}}]}`), 0o644)
	require.NoError(t, err)

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.True(t, table.IsSolid(1))

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
