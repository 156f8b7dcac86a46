package world

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics метрики стриминга и построения мешей.
// Все методы безопасны для nil.
//
// Метрики:
// * voxel_world_chunks_created_total: counter
// * voxel_world_chunks_activated_total: counter
// * voxel_world_chunks_deactivated_total: counter
// * voxel_world_chunks_evicted_total: counter
// * voxel_world_active_chunks: gauge
// * voxel_world_mesh_faces_total: counter
// * voxel_world_missing_texture_faces_total: counter
// * voxel_world_unknown_block_voxels_total: counter
// * voxel_world_reconcile_duration_seconds: histogram
type Metrics struct {
	chunksCreated     prometheus.Counter
	chunksActivated   prometheus.Counter
	chunksDeactivated prometheus.Counter
	chunksEvicted     prometheus.Counter
	activeChunks      prometheus.Gauge
	facesEmitted      prometheus.Counter
	missingTextures   prometheus.Counter
	unknownBlocks     prometheus.Counter
	reconcileDuration prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Если reg == nil, метрики работают без регистрации.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	const ns = "voxel_world"
	m := &Metrics{
		chunksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "chunks_created_total",
			Help:      "Количество созданных чанков.",
		}),
		chunksActivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "chunks_activated_total",
			Help:      "Количество активаций чанков.",
		}),
		chunksDeactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "chunks_deactivated_total",
			Help:      "Количество деактиваций чанков.",
		}),
		chunksEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "chunks_evicted_total",
			Help:      "Количество выгруженных из памяти неактивных чанков.",
		}),
		activeChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "active_chunks",
			Help:      "Текущее число активных чанков.",
		}),
		facesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "mesh_faces_total",
			Help:      "Количество сгенерированных граней.",
		}),
		missingTextures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "missing_texture_faces_total",
			Help:      "Грани, отрисованные с текстурой-заглушкой.",
		}),
		unknownBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "unknown_block_voxels_total",
			Help:      "Воксели с ID блока, отсутствующим в таблице.",
		}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "reconcile_duration_seconds",
			Help:      "Длительность пересчёта окна видимости.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.chunksCreated,
			m.chunksActivated,
			m.chunksDeactivated,
			m.chunksEvicted,
			m.activeChunks,
			m.facesEmitted,
			m.missingTextures,
			m.unknownBlocks,
			m.reconcileDuration,
		)
	}
	return m
}

func (m *Metrics) observeMesh(mesh *Mesh) {
	if m == nil {
		return
	}
	m.facesEmitted.Add(float64(mesh.FaceCount()))
	m.missingTextures.Add(float64(mesh.MissingTextures))
	m.unknownBlocks.Add(float64(mesh.UnknownVoxels))
}

func (m *Metrics) chunkCreated() {
	if m == nil {
		return
	}
	m.chunksCreated.Inc()
}

func (m *Metrics) chunkActivated() {
	if m == nil {
		return
	}
	m.chunksActivated.Inc()
}

func (m *Metrics) chunkDeactivated() {
	if m == nil {
		return
	}
	m.chunksDeactivated.Inc()
}

func (m *Metrics) chunkEvicted() {
	if m == nil {
		return
	}
	m.chunksEvicted.Inc()
}

func (m *Metrics) setActive(n int) {
	if m == nil {
		return
	}
	m.activeChunks.Set(float64(n))
}

func (m *Metrics) observeReconcile(d time.Duration) {
	if m == nil {
		return
	}
	m.reconcileDuration.Observe(d.Seconds())
}
