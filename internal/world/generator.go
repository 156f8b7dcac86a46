package world

import (
	"fmt"
	"math"

	"github.com/annel0/voxel-world/internal/util"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Generator заполняет воксели чанка. BlockAt должен быть чистой функцией
// мировых координат, иначе повторный стриминг даст другой мир.
type Generator interface {
	BlockAt(x, y, z int) block.ID
}

// GeneratorFunc позволяет использовать функцию как Generator
type GeneratorFunc func(x, y, z int) block.ID

// BlockAt реализует Generator
func (f GeneratorFunc) BlockAt(x, y, z int) block.ID {
	return f(x, y, z)
}

// Palette ID блоков, которыми генераторы заполняют рельеф
type Palette struct {
	Stone   block.ID
	Grass   block.ID
	Dirt    block.ID
	Bedrock block.ID
}

// Имена блоков палитры в таблице
const (
	StoneBlockName   = "stone"
	GrassBlockName   = "grass"
	DirtBlockName    = "dirt"
	BedrockBlockName = "bedrock"
)

// DefaultPalette ID блоков встроенной таблицы
func DefaultPalette() Palette {
	return Palette{
		Stone:   block.StoneBlockID,
		Grass:   block.GrassBlockID,
		Dirt:    block.DirtBlockID,
		Bedrock: block.BedrockBlockID,
	}
}

// ResolveBlock ищет твёрдый блок по имени. Отсутствующий или
// нетвёрдый блок является ошибкой конфигурации: ID генератора
// обязаны совпадать с порядком записей загруженной таблицы.
func ResolveBlock(table *block.Table, name string) (block.ID, error) {
	if table == nil {
		return block.AirBlockID, ErrMissingTable
	}
	id, ok := table.Lookup(name)
	if !ok {
		return block.AirBlockID, fmt.Errorf("%w: в таблице блоков нет блока %q", ErrInvalidSettings, name)
	}
	if !table.IsSolid(id) {
		return block.AirBlockID, fmt.Errorf("%w: блок %q (id=%d) не твёрдый", ErrInvalidSettings, name, id)
	}
	return id, nil
}

// ResolvePalette собирает палитру по именам блоков таблицы
func ResolvePalette(table *block.Table) (Palette, error) {
	var p Palette
	for _, entry := range []struct {
		name string
		id   *block.ID
	}{
		{StoneBlockName, &p.Stone},
		{GrassBlockName, &p.Grass},
		{DirtBlockName, &p.Dirt},
		{BedrockBlockName, &p.Bedrock},
	} {
		id, err := ResolveBlock(table, entry.name)
		if err != nil {
			return Palette{}, err
		}
		*entry.id = id
	}
	return p, nil
}

// StrataGenerator простые горизонтальные слои: воздух ниже FloorY,
// Top на верхнем слое, Fill во всех остальных.
type StrataGenerator struct {
	Height int
	FloorY int
	Fill   block.ID
	Top    block.ID
}

// NewStrataGenerator слои камня с травой сверху, сплошные от y = 0
func NewStrataGenerator(height int) StrataGenerator {
	return StrataGenerator{
		Height: height,
		FloorY: 0,
		Fill:   block.StoneBlockID,
		Top:    block.GrassBlockID,
	}
}

// NewStrataGeneratorForTable берёт ID камня и травы из таблицы
func NewStrataGeneratorForTable(table *block.Table, height int) (StrataGenerator, error) {
	g := NewStrataGenerator(height)
	var err error
	if g.Fill, err = ResolveBlock(table, StoneBlockName); err != nil {
		return StrataGenerator{}, err
	}
	if g.Top, err = ResolveBlock(table, GrassBlockName); err != nil {
		return StrataGenerator{}, err
	}
	return g, nil
}

// BlockAt реализует Generator
func (g StrataGenerator) BlockAt(x, y, z int) block.ID {
	switch {
	case y < g.FloorY || y < 0 || y >= g.Height:
		return block.AirBlockID
	case y == g.Height-1:
		return g.Top
	default:
		return g.Fill
	}
}

// PerlinGenerator рельеф по карте высот из шума Перлина
type PerlinGenerator struct {
	Height     int
	NoiseScale float64 // Масштаб шума (сглаженность ландшафта)
	BaseLevel  float64 // Доля высоты мира, ниже которой всегда камень
	Amplitude  float64 // Доля высоты мира, занимаемая холмами
	DirtDepth  int
	Palette    Palette

	noise *util.Noise
}

// NewPerlinGenerator создаёт генератор рельефа с указанным сидом
func NewPerlinGenerator(seed int64, height int) *PerlinGenerator {
	return &PerlinGenerator{
		Height:     height,
		NoiseScale: 0.05,
		BaseLevel:  0.35,
		Amplitude:  0.5,
		DirtDepth:  3,
		Palette:    DefaultPalette(),
		noise:      util.NewNoise(seed),
	}
}

// NewPerlinGeneratorForTable генератор с палитрой из таблицы блоков
func NewPerlinGeneratorForTable(seed int64, table *block.Table, height int) (*PerlinGenerator, error) {
	palette, err := ResolvePalette(table)
	if err != nil {
		return nil, err
	}
	g := NewPerlinGenerator(seed, height)
	g.Palette = palette
	return g, nil
}

// SurfaceHeight высота верхнего твёрдого блока колонки
func (g *PerlinGenerator) SurfaceHeight(x, z int) int {
	n := g.noise.Noise2D(float64(x)*g.NoiseScale, float64(z)*g.NoiseScale)
	h := int(math.Floor(float64(g.Height) * (g.BaseLevel + g.Amplitude*n)))
	if h < 1 {
		h = 1
	}
	if h > g.Height-1 {
		h = g.Height - 1
	}
	return h
}

// BlockAt реализует Generator
func (g *PerlinGenerator) BlockAt(x, y, z int) block.ID {
	if y < 0 || y >= g.Height {
		return block.AirBlockID
	}
	if y == 0 {
		return g.Palette.Bedrock
	}

	surface := g.SurfaceHeight(x, z)
	switch {
	case y > surface:
		return block.AirBlockID
	case y == surface:
		return g.Palette.Grass
	case y > surface-g.DirtDepth:
		return g.Palette.Dirt
	default:
		return g.Palette.Stone
	}
}
