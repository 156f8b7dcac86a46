package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/middleware"
	"github.com/annel0/voxel-world/internal/protocol"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

// RestServer REST API для просмотра состояния мира
type RestServer struct {
	router     *gin.Engine
	httpServer *http.Server
	world      *world.World
	renderer   *render.MemoryRenderer
	serializer *protocol.MeshSerializer
	metrics    *ServerMetrics
	logger     *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string                 // адрес для запуска сервера, например ":8088"
	World    *world.World           // обязательный
	Renderer *render.MemoryRenderer // может быть nil
	Registry *prometheus.Registry   // nil = дефолтный регистр
	Logger   *logging.Logger        // nil = логгер "api"
	Tracing  bool                   // включить otelgin

	TracerProvider trace.TracerProvider // nil = глобальный провайдер otel
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ObserverRequest новая позиция наблюдателя
type ObserverRequest struct {
	X *float32 `json:"x" binding:"required"`
	Y *float32 `json:"y" binding:"required"`
	Z *float32 `json:"z" binding:"required"`
}

// VoxelResponse блок в точке мира
type VoxelResponse struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Z       int    `json:"z"`
	ID      uint8  `json:"id"`
	Name    string `json:"name"`
	Solid   bool   `json:"solid"`
	InWorld bool   `json:"in_world"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.World == nil {
		return nil, errors.New("api: не задан мир")
	}
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Logger == nil {
		config.Logger = logging.GetAPILogger()
	}

	serializer, err := protocol.NewMeshSerializer()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	// otelgin первым: RequestLogger берёт trace-id из созданного им спана
	if config.Tracing {
		var opts []otelgin.Option
		if config.TracerProvider != nil {
			opts = append(opts, otelgin.WithTracerProvider(config.TracerProvider))
		}
		router.Use(otelgin.Middleware("rest_api", opts...))
	}
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	promMw := middleware.NewPrometheusMiddleware("rest_api", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	rs := &RestServer{
		router:     router,
		world:      config.World,
		renderer:   config.Renderer,
		serializer: serializer,
		metrics:    NewServerMetrics(),
		logger:     config.Logger,
	}
	rs.httpServer = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rs.setupRoutes()
	return rs, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/world", rs.handleWorld)
		api.GET("/stats", rs.handleStats)
		api.GET("/chunks", rs.handleChunks)
		api.GET("/chunks/:x/:z", rs.handleChunk)
		api.GET("/chunks/:x/:z/mesh", rs.handleChunkMesh)
		api.GET("/voxels/:x/:y/:z", rs.handleVoxel)
		api.POST("/observer", rs.handleObserver)
		api.GET("/ws/stats", rs.handleStatsStream)
	}
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	rs.logger.Info("🌐 REST API слушает %s", rs.httpServer.Addr)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	defer rs.serializer.Close()
	return rs.httpServer.Shutdown(ctx)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"initialized": rs.world.Initialized(),
		"time":        time.Now().Unix(),
	})
}

func (rs *RestServer) handleWorld(c *gin.Context) {
	s := rs.world.Settings()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние мира",
		Data: gin.H{
			"settings": gin.H{
				"chunk_width":             s.ChunkWidth,
				"chunk_height":            s.ChunkHeight,
				"world_size_in_chunks":    s.WorldSizeInChunks,
				"view_distance_in_chunks": s.ViewDistanceInChunks,
				"atlas_size_in_blocks":    s.AtlasSizeInBlocks,
				"mesh_workers":            s.MeshWorkers,
				"max_inactive_chunks":     s.MaxInactiveChunks,
			},
			"material":      rs.world.Material(),
			"stats":         rs.world.Stats(),
			"active_chunks": rs.world.ActiveChunks(),
		},
	})
}

func (rs *RestServer) handleStats(c *gin.Context) {
	stats := gin.H{
		"server": rs.metrics.Snapshot(),
		"world":  rs.world.Stats(),
	}
	if rs.renderer != nil {
		stats["renderer"] = gin.H{
			"meshes":   rs.renderer.Len(),
			"visible":  rs.renderer.VisibleCount(),
			"released": rs.renderer.Released(),
		}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

func (rs *RestServer) handleChunks(c *gin.Context) {
	chunks := rs.world.Chunks()
	if c.Query("active") == "true" {
		active := chunks[:0]
		for _, info := range chunks {
			if info.Active {
				active = append(active, info)
			}
		}
		chunks = active
	}
	if chunks == nil {
		chunks = []world.ChunkInfo{}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("Чанков: %d", len(chunks)),
		Data:    chunks,
	})
}

func (rs *RestServer) handleChunk(c *gin.Context) {
	coord, ok := rs.parseChunkCoord(c)
	if !ok {
		return
	}
	info, ok := rs.world.ChunkInfo(coord)
	if !ok {
		rs.chunkNotFound(c, coord)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Чанк найден", Data: info})
}

func (rs *RestServer) handleChunkMesh(c *gin.Context) {
	coord, ok := rs.parseChunkCoord(c)
	if !ok {
		return
	}
	chunk, ok := rs.world.GetChunk(coord)
	if !ok || chunk.Mesh() == nil {
		rs.chunkNotFound(c, coord)
		return
	}

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		c.JSON(http.StatusOK, protocol.NewMeshPayload(coord, chunk.Mesh()))
	case "bin":
		data, err := rs.serializer.SerializeMesh(coord, chunk.Mesh())
		if err != nil {
			rs.logger.Error("Ошибка кодирования меша чанка %s: %v", coord, err)
			c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: "Ошибка кодирования меша"})
			return
		}
		c.Data(http.StatusOK, "application/octet-stream", data)
	default:
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Неизвестный формат %q, ожидается json или bin", format),
		})
	}
}

func (rs *RestServer) handleVoxel(c *gin.Context) {
	var xyz [3]int
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Координаты должны быть целыми числами"})
			return
		}
		xyz[i] = v
	}

	id := rs.world.GetVoxelBlockID(xyz[0], xyz[1], xyz[2])
	bt, _ := rs.world.Table().Get(id)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Воксель",
		Data: VoxelResponse{
			X:       xyz[0],
			Y:       xyz[1],
			Z:       xyz[2],
			ID:      uint8(id),
			Name:    bt.Name,
			Solid:   bt.IsSolid,
			InWorld: rs.world.IsVoxelInWorld(xyz[0], xyz[1], xyz[2]),
		},
	})
}

func (rs *RestServer) handleObserver(c *gin.Context) {
	var req ObserverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Неверный формат запроса"})
		return
	}

	pos := mgl32.Vec3{*req.X, *req.Y, *req.Z}
	if !validObserverPosition(pos) {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Координаты наблюдателя должны быть конечными и не больше %g по модулю", float64(MaxObserverCoord)),
		})
		return
	}

	err := rs.world.TickContext(c.Request.Context(), pos)
	if errors.Is(err, world.ErrNotInitialized) {
		c.JSON(http.StatusConflict, GenericResponse{Success: false, Message: "Мир ещё не инициализирован"})
		return
	}
	if err != nil {
		rs.logger.Error("Ошибка обновления наблюдателя: %v", err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: "Внутренняя ошибка сервера"})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Наблюдатель перемещён",
		Data:    rs.world.Stats(),
	})
}

// MaxObserverCoord предел модуля координаты наблюдателя. Дальше float32
// теряет целые значения, и позиция не указывает на конкретный воксель.
const MaxObserverCoord = 1 << 24

func validObserverPosition(pos mgl32.Vec3) bool {
	for _, v := range pos {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > MaxObserverCoord {
			return false
		}
	}
	return true
}

func (rs *RestServer) parseChunkCoord(c *gin.Context) (world.ChunkCoord, bool) {
	x, errX := strconv.Atoi(c.Param("x"))
	z, errZ := strconv.Atoi(c.Param("z"))
	if errX != nil || errZ != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Координаты чанка должны быть целыми числами"})
		return world.ChunkCoord{}, false
	}
	return world.ChunkCoord{X: x, Z: z}, true
}

func (rs *RestServer) chunkNotFound(c *gin.Context, coord world.ChunkCoord) {
	c.JSON(http.StatusNotFound, GenericResponse{
		Success: false,
		Message: fmt.Sprintf("Чанк %s не загружен", coord),
	})
}
