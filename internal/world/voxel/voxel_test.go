package voxel

import (
	"testing"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFaceOffsets(t *testing.T) {
	assert.Equal(t, vec.Vec3{Z: -1}, FaceBack.Offset())
	assert.Equal(t, vec.Vec3{Z: 1}, FaceFront.Offset())
	assert.Equal(t, vec.Vec3{Y: 1}, FaceTop.Offset())
	assert.Equal(t, vec.Vec3{Y: -1}, FaceBottom.Offset())
	assert.Equal(t, vec.Vec3{X: -1}, FaceLeft.Offset())
	assert.Equal(t, vec.Vec3{X: 1}, FaceRight.Offset())
}

func TestFaceValid(t *testing.T) {
	for _, f := range Faces {
		assert.True(t, f.Valid(), f.String())
	}
	assert.False(t, Face(-1).Valid())
	assert.False(t, Face(6).Valid())
	assert.Equal(t, "face(9)", Face(9).String())
}

// Все вершины грани должны лежать в плоскости, обращённой в сторону соседа.
func TestCornersLieOnFacePlane(t *testing.T) {
	pos := vec.Vec3{X: 2, Y: 3, Z: 4}
	for _, f := range Faces {
		off := f.Offset()
		corners := f.Corners(pos)
		for _, c := range corners {
			switch {
			case off.X != 0:
				want := float32(pos.X)
				if off.X > 0 {
					want++
				}
				assert.Equal(t, want, c.X(), "грань %s", f)
			case off.Y != 0:
				want := float32(pos.Y)
				if off.Y > 0 {
					want++
				}
				assert.Equal(t, want, c.Y(), "грань %s", f)
			default:
				want := float32(pos.Z)
				if off.Z > 0 {
					want++
				}
				assert.Equal(t, want, c.Z(), "грань %s", f)
			}
		}
	}
}

// Грани обходятся по часовой стрелке, если смотреть снаружи куба:
// (v1-v0)×(v2-v0) направлена внутрь, противоположно смещению соседа.
func TestWindingMatchesFaceDirection(t *testing.T) {
	for _, f := range Faces {
		c := f.Corners(vec.Vec3{})
		n := c[1].Sub(c[0]).Cross(c[2].Sub(c[0])).Normalize()
		off := f.Offset().ToFloat()
		assert.InDelta(t, -1.0, float64(n.Dot(off)), 1e-5, "грань %s смотрит не туда", f)
	}
}

func TestAtlasUVs(t *testing.T) {
	uvs, ok := AtlasUVs(5, 4)
	assert.True(t, ok)
	// столбец 1, строка 1, ячейка 0.25
	assert.Equal(t, mgl32.Vec2{0.25, 0.5}, uvs[0])
	assert.Equal(t, mgl32.Vec2{0.25, 0.25}, uvs[1])
	assert.Equal(t, mgl32.Vec2{0.5, 0.25}, uvs[2])
	assert.Equal(t, mgl32.Vec2{0.5, 0.5}, uvs[3])
}

func TestAtlasUVsInvalidFallsBackToSentinel(t *testing.T) {
	sentinel, _ := AtlasUVs(SentinelTexture, 4)
	for _, tex := range []int{-1, 16, 100} {
		uvs, ok := AtlasUVs(tex, 4)
		assert.False(t, ok, "индекс %d", tex)
		assert.Equal(t, sentinel, uvs)
	}
	_, ok := AtlasUVs(0, 0)
	assert.False(t, ok)
}

func TestAtlasCellInUnitSquare(t *testing.T) {
	for n := 1; n <= 8; n++ {
		for tex := 0; tex < n*n; tex++ {
			col, row := AtlasCell(tex, n)
			u := float64(col) / float64(n)
			v := float64(row) / float64(n)
			assert.True(t, u >= 0 && u < 1, "u=%f n=%d t=%d", u, n, tex)
			assert.True(t, v >= 0 && v < 1, "v=%f n=%d t=%d", v, n, tex)
		}
	}
}
