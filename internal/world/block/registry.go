package block

import (
	"errors"
	"fmt"

	"github.com/annel0/voxel-world/internal/world/voxel"
)

// ID идентификатор типа блока внутри сетки чанка
type ID uint8

// Константы ID блоков таблицы по умолчанию
const (
	AirBlockID     ID = iota // 0
	StoneBlockID             // 1
	GrassBlockID             // 2
	DirtBlockID              // 3
	BedrockBlockID           // 4
)

// ErrEmptyTable возвращается при попытке собрать таблицу без блоков
var ErrEmptyTable = errors.New("таблица блоков пуста")

// BlockType неизменяемое описание типа блока
type BlockType struct {
	Name         string
	IsSolid      bool
	FaceTextures [voxel.FaceCount]int // back, front, top, bottom, left, right
}

// TextureID возвращает индекс текстуры атласа для грани.
// Грань вне [0, 5] является ошибкой программиста.
func (b BlockType) TextureID(face voxel.Face) int {
	if !face.Valid() {
		panic(fmt.Sprintf("block %q: индекс грани %d вне диапазона [0, 5]", b.Name, int(face)))
	}
	return b.FaceTextures[face]
}

// air описание, возвращаемое для неизвестных ID
var air = BlockType{Name: "air"}

// Table упорядоченный список описаний блоков, индексируемый по ID.
// После создания не изменяется и может читаться из нескольких горутин.
type Table struct {
	types  []BlockType
	byName map[string]ID
}

// NewTable создаёт таблицу из упорядоченного списка описаний
func NewTable(types []BlockType) (*Table, error) {
	if len(types) == 0 {
		return nil, ErrEmptyTable
	}
	if len(types) > 256 {
		return nil, fmt.Errorf("таблица блоков: %d типов не помещаются в ID", len(types))
	}

	t := &Table{
		types:  make([]BlockType, len(types)),
		byName: make(map[string]ID, len(types)),
	}
	copy(t.types, types)
	for i, bt := range t.types {
		if bt.Name == "" {
			return nil, fmt.Errorf("таблица блоков: у блока %d нет имени", i)
		}
		if _, dup := t.byName[bt.Name]; dup {
			return nil, fmt.Errorf("таблица блоков: имя %q повторяется", bt.Name)
		}
		t.byName[bt.Name] = ID(i)
	}
	return t, nil
}

// Get возвращает описание блока по ID
func (t *Table) Get(id ID) (BlockType, bool) {
	if int(id) >= len(t.types) {
		return air, false
	}
	return t.types[id], true
}

// Lookup ищет ID блока по имени
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// IsSolid сообщает, твёрдый ли блок. Неизвестные ID считаются воздухом.
func (t *Table) IsSolid(id ID) bool {
	bt, _ := t.Get(id)
	return bt.IsSolid
}

// IsValidBlockID проверяет, есть ли ID в таблице
func (t *Table) IsValidBlockID(id ID) bool {
	return int(id) < len(t.types)
}

// Len количество типов блоков
func (t *Table) Len() int {
	return len(t.types)
}

// DefaultTable таблица по умолчанию для атласа 4×4
func DefaultTable() *Table {
	t, err := NewTable([]BlockType{
		{Name: "air"},
		{Name: "stone", IsSolid: true, FaceTextures: [6]int{0, 0, 0, 0, 0, 0}},
		{Name: "grass", IsSolid: true, FaceTextures: [6]int{2, 2, 7, 1, 2, 2}},
		{Name: "dirt", IsSolid: true, FaceTextures: [6]int{1, 1, 1, 1, 1, 1}},
		{Name: "bedrock", IsSolid: true, FaceTextures: [6]int{9, 9, 9, 9, 9, 9}},
	})
	if err != nil {
		panic(err)
	}
	return t
}
