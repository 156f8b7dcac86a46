package world

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Ошибки жизненного цикла мира
var (
	ErrNotInitialized     = errors.New("мир не инициализирован")
	ErrAlreadyInitialized = errors.New("мир уже инициализирован")
)

// World сетка чанков worldSize×worldSize и окно видимости вокруг наблюдателя.
// Tick, Reconcile и Initialize единственные писатели, остальные методы
// берут блокировку на чтение.
type World struct {
	settings Settings
	ctx      ChunkContext
	renderer Renderer
	metrics  *Metrics
	logger   *logging.Logger
	tracer   trace.Tracer
	builder  *chunkBuilder

	mu            sync.RWMutex
	chunks        []*Chunk // x*worldSize+z, nil = чанк не создан
	active        map[ChunkCoord]struct{}
	inactive      *inactiveLRU
	observer      mgl32.Vec3
	observerChunk ChunkCoord
	initialized   bool
}

// Option настройка World
type Option func(*World)

// WithRenderer задаёт потребителя мешей
func WithRenderer(r Renderer) Option {
	return func(w *World) {
		if r != nil {
			w.renderer = r
		}
	}
}

// WithMetrics задаёт метрики
func WithMetrics(m *Metrics) Option {
	return func(w *World) { w.metrics = m }
}

// WithRegisterer создаёт метрики и регистрирует их в reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(w *World) { w.metrics = NewMetrics(reg) }
}

// WithLogger задаёт логгер мира и чанков
func WithLogger(l *logging.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithTracerProvider задаёт провайдер спанов пересчёта окна
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(w *World) {
		if tp != nil {
			w.tracer = tp.Tracer(tracerName)
		}
	}
}

const tracerName = "voxel-world/world"

// NewWorld создаёт пустой мир. Чанки появляются только после Initialize.
func NewWorld(settings Settings, table *block.Table, material *Material, gen Generator, opts ...Option) (*World, error) {
	w := &World{
		settings: settings,
		renderer: NopRenderer{},
		logger:   logging.GetWorldLogger(),
		tracer:   otel.Tracer(tracerName),
		active:   make(map[ChunkCoord]struct{}),
		inactive: newInactiveLRU(),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.ctx = ChunkContext{
		Table:     table,
		Material:  material,
		Generator: gen,
		Settings:  settings,
		Metrics:   w.metrics,
		Logger:    w.logger,
	}
	if err := w.ctx.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}

	w.chunks = make([]*Chunk, settings.WorldSizeInChunks*settings.WorldSizeInChunks)
	w.builder = newChunkBuilder(settings.MeshWorkers)
	return w, nil
}

// Close останавливает пул построения чанков
func (w *World) Close() {
	w.builder.stop()
}

// Settings возвращает размеры мира
func (w *World) Settings() Settings { return w.settings }

// Table возвращает таблицу блоков
func (w *World) Table() *block.Table { return w.ctx.Table }

// Material возвращает общий материал
func (w *World) Material() *Material { return w.ctx.Material }

// Initialize ставит наблюдателя в точку появления и строит начальное окно
func (w *World) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.initialized {
		return ErrAlreadyInitialized
	}

	spawn := w.settings.SpawnPoint()
	center := w.settings.ChunkCoordAt(spawn)
	if err := w.reconcileLocked(center); err != nil {
		return err
	}

	w.observer = spawn
	w.observerChunk = center
	w.initialized = true

	w.logger.Info("🌍 Мир инициализирован: %dx%d чанков, окно %d, спавн %v, активно %d",
		w.settings.WorldSizeInChunks, w.settings.WorldSizeInChunks,
		w.settings.ViewDistanceInChunks, spawn, len(w.active))
	return nil
}

// Tick обновляет позицию наблюдателя. Пока чанк под наблюдателем не
// меняется, состояние мира не трогается.
func (w *World) Tick(pos mgl32.Vec3) error {
	return w.TickContext(context.Background(), pos)
}

// TickContext как Tick, но пересчёт окна записывается дочерним
// спаном "world.reconcile" от спана в ctx.
func (w *World) TickContext(ctx context.Context, pos mgl32.Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.initialized {
		return ErrNotInitialized
	}

	w.observer = pos
	coord := w.settings.ChunkCoordAt(pos)
	if coord == w.observerChunk {
		return nil
	}

	_, span := w.tracer.Start(ctx, "world.reconcile", trace.WithAttributes(
		attribute.String("chunk.from", w.observerChunk.String()),
		attribute.String("chunk.to", coord.String()),
	))
	defer span.End()

	if err := w.reconcileLocked(coord); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("world.active_chunks", len(w.active)))
	w.logger.Debug("Наблюдатель перешёл из чанка %s в %s, активно %d", w.observerChunk, coord, len(w.active))
	w.observerChunk = coord
	return nil
}

// Reconcile приводит активное множество к окну вокруг center
func (w *World) Reconcile(center ChunkCoord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reconcileLocked(center)
}

// Window координаты окна вокруг center, обрезанные границами мира,
// в порядке x, затем z
func (w *World) Window(center ChunkCoord) []ChunkCoord {
	vd := w.settings.ViewDistanceInChunks
	startX := center.X - vd/2
	startZ := center.Z - vd/2

	coords := make([]ChunkCoord, 0, vd*vd)
	for x := startX; x < startX+vd; x++ {
		for z := startZ; z < startZ+vd; z++ {
			coord := ChunkCoord{X: x, Z: z}
			if w.IsChunkInWorld(coord) {
				coords = append(coords, coord)
			}
		}
	}
	return coords
}

func (w *World) reconcileLocked(center ChunkCoord) error {
	start := time.Now()
	window := w.Window(center)

	inWindow := make(map[ChunkCoord]struct{}, len(window))
	var missing []ChunkCoord
	for _, coord := range window {
		inWindow[coord] = struct{}{}
		if w.chunks[w.slot(coord)] == nil {
			missing = append(missing, coord)
		}
	}

	// Сначала строим все недостающие чанки, регистрация только после
	built, err := w.builder.build(missing, w.ctx)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", center, err)
	}
	for _, c := range built {
		w.chunks[w.slot(c.Coord)] = c
		w.metrics.chunkCreated()
		w.renderer.Upload(c.Coord, c.Mesh(), w.ctx.Material)
	}

	// Новые чанки включаются раньше, чем гаснут старые
	for _, coord := range window {
		c := w.chunks[w.slot(coord)]
		if c.IsActive() {
			continue
		}
		c.setActive(true)
		w.active[coord] = struct{}{}
		w.inactive.remove(coord)
		w.renderer.SetVisible(coord, true)
		w.metrics.chunkActivated()
	}

	var leaving []ChunkCoord
	for coord := range w.active {
		if _, ok := inWindow[coord]; !ok {
			leaving = append(leaving, coord)
		}
	}
	sortCoords(leaving)
	for _, coord := range leaving {
		w.chunks[w.slot(coord)].setActive(false)
		delete(w.active, coord)
		w.inactive.push(coord)
		w.renderer.SetVisible(coord, false)
		w.metrics.chunkDeactivated()
	}

	w.evictLocked()

	w.metrics.setActive(len(w.active))
	w.metrics.observeReconcile(time.Since(start))
	w.logger.Trace("Окно %s: создано %d, выключено %d, активно %d", center, len(built), len(leaving), len(w.active))
	return nil
}

// evictLocked выгружает самые старые неактивные чанки сверх лимита
func (w *World) evictLocked() {
	limit := w.settings.MaxInactiveChunks
	if limit <= 0 {
		return
	}
	for w.inactive.len() > limit {
		coord, ok := w.inactive.popOldest()
		if !ok {
			return
		}
		w.chunks[w.slot(coord)] = nil
		w.renderer.Release(coord)
		w.metrics.chunkEvicted()
	}
}

func (w *World) slot(coord ChunkCoord) int {
	return coord.X*w.settings.WorldSizeInChunks + coord.Z
}

// IsChunkInWorld проверяет, что координаты лежат в сетке мира
func (w *World) IsChunkInWorld(coord ChunkCoord) bool {
	size := w.settings.WorldSizeInChunks
	return coord.X >= 0 && coord.X < size && coord.Z >= 0 && coord.Z < size
}

// IsVoxelInWorld проверяет мировые координаты вокселя
func (w *World) IsVoxelInWorld(x, y, z int) bool {
	size := w.settings.WorldSizeInVoxels()
	return x >= 0 && x < size &&
		y >= 0 && y < w.settings.ChunkHeight &&
		z >= 0 && z < size
}

// GetChunk возвращает созданный чанк. Вне мира или для несозданного
// чанка возвращает nil, false.
func (w *World) GetChunk(coord ChunkCoord) (*Chunk, bool) {
	if !w.IsChunkInWorld(coord) {
		return nil, false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	c := w.chunks[w.slot(coord)]
	return c, c != nil
}

// GetVoxelBlockID возвращает ID блока по мировым координатам. Вне мира
// это воздух, для несозданного чанка значение генератора.
func (w *World) GetVoxelBlockID(x, y, z int) block.ID {
	if !w.IsVoxelInWorld(x, y, z) {
		return block.AirBlockID
	}

	coord := ChunkCoordOfVoxel(x, z, w.settings.ChunkWidth)
	if c, ok := w.GetChunk(coord); ok {
		origin := coord.Origin(w.settings.ChunkWidth)
		return c.VoxelAt(x-origin.X, y, z-origin.Z)
	}
	return w.ctx.Generator.BlockAt(x, y, z)
}

// IsActive сообщает, входит ли чанк в активное множество
func (w *World) IsActive(coord ChunkCoord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.active[coord]
	return ok
}

// ActiveChunks возвращает отсортированные координаты активных чанков
func (w *World) ActiveChunks() []ChunkCoord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	coords := make([]ChunkCoord, 0, len(w.active))
	for coord := range w.active {
		coords = append(coords, coord)
	}
	sortCoords(coords)
	return coords
}

// Observer текущая позиция наблюдателя
func (w *World) Observer() mgl32.Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.observer
}

// ObserverChunk чанк, для которого последний раз строилось окно
func (w *World) ObserverChunk() ChunkCoord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.observerChunk
}

// Initialized сообщает, был ли вызван Initialize
func (w *World) Initialized() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.initialized
}

// ChunkInfo сводка по одному созданному чанку
type ChunkInfo struct {
	X               int  `json:"x"`
	Z               int  `json:"z"`
	Active          bool `json:"active"`
	Faces           int  `json:"faces"`
	Vertices        int  `json:"vertices"`
	Triangles       int  `json:"triangles"`
	MissingTextures int  `json:"missing_textures"`
}

func newChunkInfo(c *Chunk) ChunkInfo {
	info := ChunkInfo{X: c.Coord.X, Z: c.Coord.Z, Active: c.IsActive()}
	if m := c.Mesh(); m != nil {
		info.Faces = m.FaceCount()
		info.Vertices = len(m.Vertices)
		info.Triangles = m.TriangleCount()
		info.MissingTextures = m.MissingTextures
	}
	return info
}

// ChunkInfo возвращает сводку по чанку
func (w *World) ChunkInfo(coord ChunkCoord) (ChunkInfo, bool) {
	c, ok := w.GetChunk(coord)
	if !ok {
		return ChunkInfo{}, false
	}
	return newChunkInfo(c), true
}

// Chunks сводки по всем созданным чанкам в порядке координат
func (w *World) Chunks() []ChunkInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var infos []ChunkInfo
	for _, c := range w.chunks {
		if c != nil {
			infos = append(infos, newChunkInfo(c))
		}
	}
	return infos
}

// Stats сводка состояния мира
type Stats struct {
	WorldSizeInChunks int        `json:"world_size_in_chunks"`
	ViewDistance      int        `json:"view_distance"`
	LoadedChunks      int        `json:"loaded_chunks"`
	ActiveChunks      int        `json:"active_chunks"`
	InactiveChunks    int        `json:"inactive_chunks"`
	ActiveFaces       int        `json:"active_faces"`
	Observer          [3]float32 `json:"observer"`
	ObserverChunk     ChunkCoord `json:"observer_chunk"`
	Initialized       bool       `json:"initialized"`
	ParallelMeshing   bool       `json:"parallel_meshing"`
}

// Stats возвращает снимок состояния
func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := Stats{
		WorldSizeInChunks: w.settings.WorldSizeInChunks,
		ViewDistance:      w.settings.ViewDistanceInChunks,
		ActiveChunks:      len(w.active),
		Observer:          [3]float32(w.observer),
		ObserverChunk:     w.observerChunk,
		Initialized:       w.initialized,
		ParallelMeshing:   w.builder.parallel(),
	}
	for _, c := range w.chunks {
		if c == nil {
			continue
		}
		s.LoadedChunks++
		if c.IsActive() {
			if m := c.Mesh(); m != nil {
				s.ActiveFaces += m.FaceCount()
			}
		}
	}
	s.InactiveChunks = s.LoadedChunks - s.ActiveChunks
	return s
}

func sortCoords(coords []ChunkCoord) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Z < coords[j].Z
	})
}
