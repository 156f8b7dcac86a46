package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Blocks    BlocksConfig    `yaml:"blocks"`
	Mesh      MeshConfig      `yaml:"mesh"`
	Driver    DriverConfig    `yaml:"driver"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WorldConfig размеры мира и генератор рельефа
type WorldConfig struct {
	ChunkWidth           int    `yaml:"chunk_width"`
	ChunkHeight          int    `yaml:"chunk_height"`
	WorldSizeInChunks    int    `yaml:"world_size_in_chunks"`
	ViewDistanceInChunks int    `yaml:"view_distance_in_chunks"`
	AtlasSizeInBlocks    int    `yaml:"atlas_size_in_blocks"`
	MaxInactiveChunks    int    `yaml:"max_inactive_chunks"`
	Generator            string `yaml:"generator"` // strata | perlin
	Seed                 int64  `yaml:"seed"`
	FloorY               int    `yaml:"floor_y"`
}

// BlocksConfig таблица блоков и материал атласа
type BlocksConfig struct {
	TablePath    string `yaml:"table_path"` // пусто = встроенная таблица
	MaterialName string `yaml:"material_name"`
	AtlasTexture string `yaml:"atlas_texture"`
}

type MeshConfig struct {
	Workers int `yaml:"workers"`
}

// DriverConfig сценарий движения наблюдателя
type DriverConfig struct {
	Enabled        bool    `yaml:"enabled"`
	TickIntervalMs int     `yaml:"tick_interval_ms"`
	OrbitRadius    float32 `yaml:"orbit_radius"`
	OrbitPeriodSec float32 `yaml:"orbit_period_seconds"`
}

type ServerConfig struct {
	RESTPort int `yaml:"rest_port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default конфигурация без файла
func Default() *Config {
	return &Config{
		World: WorldConfig{
			ChunkWidth:           world.DefaultChunkWidth,
			ChunkHeight:          world.DefaultChunkHeight,
			WorldSizeInChunks:    world.DefaultWorldSizeInChunks,
			ViewDistanceInChunks: world.DefaultViewDistanceInChunks,
			AtlasSizeInBlocks:    world.DefaultAtlasSizeInBlocks,
			Generator:            "strata",
		},
		Blocks: BlocksConfig{
			MaterialName: "blocks",
			AtlasTexture: "assets/atlas.png",
		},
		Mesh: MeshConfig{Workers: 1},
		Driver: DriverConfig{
			Enabled:        true,
			TickIntervalMs: 50,
			OrbitRadius:    40,
			OrbitPeriodSec: 60,
		},
		Telemetry: TelemetryConfig{ServiceName: "voxel-world"},
		Logging:   LoggingConfig{Level: "INFO"},
	}
}

// Settings переводит секции world и mesh в настройки мира
func (c *Config) Settings() world.Settings {
	return world.Settings{
		ChunkWidth:           c.World.ChunkWidth,
		ChunkHeight:          c.World.ChunkHeight,
		WorldSizeInChunks:    c.World.WorldSizeInChunks,
		ViewDistanceInChunks: c.World.ViewDistanceInChunks,
		AtlasSizeInBlocks:    c.World.AtlasSizeInBlocks,
		MeshWorkers:          c.Mesh.Workers,
		MaxInactiveChunks:    c.World.MaxInactiveChunks,
	}
}

// Material общий материал атласа
func (c *Config) Material() *world.Material {
	return &world.Material{Name: c.Blocks.MaterialName, Texture: c.Blocks.AtlasTexture}
}

// NewGenerator создаёт генератор рельефа из секции world.
// ID блоков берутся из table по именам, чтобы генератор
// совпадал с порядком записей загруженной таблицы.
func (c *Config) NewGenerator(table *block.Table) (world.Generator, error) {
	switch c.World.Generator {
	case "", "strata":
		g, err := world.NewStrataGeneratorForTable(table, c.World.ChunkHeight)
		if err != nil {
			return nil, fmt.Errorf("генератор strata: %w", err)
		}
		g.FloorY = c.World.FloorY
		return g, nil
	case "perlin":
		g, err := world.NewPerlinGeneratorForTable(c.World.Seed, table, c.World.ChunkHeight)
		if err != nil {
			return nil, fmt.Errorf("генератор perlin: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: неизвестный генератор %q", world.ErrInvalidSettings, c.World.Generator)
	}
}

// BlockTable загружает таблицу блоков или возвращает встроенную
func (c *Config) BlockTable() (*block.Table, error) {
	if c.Blocks.TablePath == "" {
		return block.DefaultTable(), nil
	}
	return block.LoadTable(c.Blocks.TablePath)
}

// Validate проверяет итоговую конфигурацию вместе с таблицей блоков
func (c *Config) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return err
	}
	table, err := c.BlockTable()
	if err != nil {
		return err
	}
	if _, err := c.NewGenerator(table); err != nil {
		return err
	}
	return nil
}

// TickInterval период шага драйвера
func (d DriverConfig) TickInterval() time.Duration {
	if d.TickIntervalMs <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(d.TickIntervalMs) * time.Millisecond
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "VOXEL_REST_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берёт путь из ENV GAME_CONFIG, а если нет и его,
// возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("конфигурация %s: %w", path, err)
	}
	return cfg, nil
}
