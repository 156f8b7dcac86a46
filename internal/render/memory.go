package render

import (
	"sync"

	"github.com/annel0/voxel-world/internal/world"
)

// Entry состояние одного загруженного меша
type Entry struct {
	Mesh     *world.Mesh
	Material *world.Material
	Visible  bool
	Uploads  int
}

// MemoryRenderer хранит загруженные меши в памяти. Используется
// REST API и инструментами вместо настоящего графического бэкенда.
type MemoryRenderer struct {
	mu       sync.RWMutex
	entries  map[world.ChunkCoord]*Entry
	released int
}

// NewMemoryRenderer создаёт пустой рендерер
func NewMemoryRenderer() *MemoryRenderer {
	return &MemoryRenderer{entries: make(map[world.ChunkCoord]*Entry)}
}

// Upload реализует world.Renderer
func (r *MemoryRenderer) Upload(coord world.ChunkCoord, mesh *world.Mesh, material *world.Material) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[coord]
	if !ok {
		e = &Entry{}
		r.entries[coord] = e
	}
	e.Mesh = mesh
	e.Material = material
	e.Uploads++
}

// SetVisible реализует world.Renderer
func (r *MemoryRenderer) SetVisible(coord world.ChunkCoord, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[coord]; ok {
		e.Visible = visible
	}
}

// Release реализует world.Renderer
func (r *MemoryRenderer) Release(coord world.ChunkCoord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[coord]; ok {
		delete(r.entries, coord)
		r.released++
	}
}

// Get возвращает копию записи чанка
func (r *MemoryRenderer) Get(coord world.ChunkCoord) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[coord]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// VisibleCount число видимых мешей
func (r *MemoryRenderer) VisibleCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if e.Visible {
			n++
		}
	}
	return n
}

// Len число загруженных мешей
func (r *MemoryRenderer) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Released сколько мешей было освобождено
func (r *MemoryRenderer) Released() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.released
}
