package world

import (
	"errors"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Ошибки конфигурации чанка
var (
	ErrMissingTable     = errors.New("не задана таблица блоков")
	ErrMissingMaterial  = errors.New("не задан материал")
	ErrMissingGenerator = errors.New("не задан генератор")
)

// Material общий материал с атласом текстур. Ядро его не интерпретирует,
// только передаёт рендереру вместе с мешем.
type Material struct {
	Name    string `json:"name"`
	Texture string `json:"texture"` // путь к атласу
}

// ChunkContext набор read-only зависимостей, нужных чанку.
// Заменяет обратную ссылку на World.
type ChunkContext struct {
	Table     *block.Table
	Material  *Material
	Generator Generator
	Settings  Settings

	Metrics *Metrics        // может быть nil
	Logger  *logging.Logger // может быть nil
}

// Validate проверяет обязательные зависимости
func (c ChunkContext) Validate() error {
	if c.Table == nil {
		return ErrMissingTable
	}
	if c.Material == nil {
		return ErrMissingMaterial
	}
	if c.Generator == nil {
		return ErrMissingGenerator
	}
	return c.Settings.Validate()
}
