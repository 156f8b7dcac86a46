package world

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	return Settings{
		ChunkWidth:           5,
		ChunkHeight:          15,
		WorldSizeInChunks:    20,
		ViewDistanceInChunks: 5,
		AtlasSizeInBlocks:    4,
	}
}

func testMaterial() *Material {
	return &Material{Name: "atlas", Texture: "assets/atlas.png"}
}

func testContext(gen Generator) ChunkContext {
	return ChunkContext{
		Table:     block.DefaultTable(),
		Material:  testMaterial(),
		Generator: gen,
		Settings:  testSettings(),
		Logger:    logging.NewWriterLogger("test", &bytes.Buffer{}, logging.ERROR),
	}
}

// singleVoxels генератор, в котором твёрдые только перечисленные клетки
func singleVoxels(cells ...[3]int) Generator {
	set := make(map[[3]int]bool, len(cells))
	for _, c := range cells {
		set[c] = true
	}
	return GeneratorFunc(func(x, y, z int) block.ID {
		if set[[3]int{x, y, z}] {
			return block.StoneBlockID
		}
		return block.AirBlockID
	})
}

func newTestWorld(t *testing.T, settings Settings, opts ...Option) (*World, *recordingRenderer) {
	t.Helper()
	r := &recordingRenderer{}
	logger := logging.NewWriterLogger("world", &bytes.Buffer{}, logging.ERROR)
	opts = append([]Option{WithRenderer(r), WithLogger(logger)}, opts...)
	w, err := NewWorld(settings, block.DefaultTable(), testMaterial(), NewStrataGenerator(settings.ChunkHeight), opts...)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w, r
}

// recordingRenderer записывает вызовы рендерера по порядку
type recordingRenderer struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingRenderer) record(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recordingRenderer) Upload(coord ChunkCoord, mesh *Mesh, material *Material) {
	r.record("upload %s", coord)
}

func (r *recordingRenderer) SetVisible(coord ChunkCoord, visible bool) {
	if visible {
		r.record("show %s", coord)
	} else {
		r.record("hide %s", coord)
	}
}

func (r *recordingRenderer) Release(coord ChunkCoord) {
	r.record("release %s", coord)
}

func (r *recordingRenderer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recordingRenderer) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingRenderer) count(prefix string) int {
	n := 0
	for _, e := range r.snapshot() {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// assertActiveInvariant проверяет: координата активна тогда и только
// тогда, когда слот заполнен и чанк помечен активным
func assertActiveInvariant(t *testing.T, w *World) {
	t.Helper()
	w.mu.RLock()
	defer w.mu.RUnlock()

	size := w.settings.WorldSizeInChunks
	for x := 0; x < size; x++ {
		for z := 0; z < size; z++ {
			coord := ChunkCoord{X: x, Z: z}
			c := w.chunks[w.slot(coord)]
			_, inSet := w.active[coord]
			inGrid := c != nil && c.IsActive()
			require.Equal(t, inSet, inGrid, "чанк %s", coord)
		}
	}
}
