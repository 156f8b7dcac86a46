package block

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// faceTextures описание текстур граней в файле.
// All задаёт текстуру для граней, не указанных явно.
type faceTextures struct {
	All    *int `yaml:"all"`
	Back   *int `yaml:"back"`
	Front  *int `yaml:"front"`
	Top    *int `yaml:"top"`
	Bottom *int `yaml:"bottom"`
	Left   *int `yaml:"left"`
	Right  *int `yaml:"right"`
}

type blockDef struct {
	Name     string       `yaml:"name"`
	Solid    bool         `yaml:"solid"`
	Textures faceTextures `yaml:"textures"`
}

type tableFile struct {
	Blocks []blockDef `yaml:"blocks"`
}

// LoadTable читает таблицу блоков из YAML или JSON файла.
// Порядок записей в файле задаёт ID блоков.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения таблицы блоков %s: %w", path, err)
	}
	return ParseTable(data)
}

// ParseTable разбирает таблицу блоков из YAML/JSON
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("ошибка разбора таблицы блоков: %w", err)
	}

	types := make([]BlockType, 0, len(file.Blocks))
	for _, def := range file.Blocks {
		types = append(types, BlockType{
			Name:         def.Name,
			IsSolid:      def.Solid,
			FaceTextures: def.Textures.resolve(),
		})
	}
	return NewTable(types)
}

func (ft faceTextures) resolve() [6]int {
	fallback := 0
	if ft.All != nil {
		fallback = *ft.All
	}
	pick := func(v *int) int {
		if v != nil {
			return *v
		}
		return fallback
	}
	return [6]int{
		pick(ft.Back),
		pick(ft.Front),
		pick(ft.Top),
		pick(ft.Bottom),
		pick(ft.Left),
		pick(ft.Right),
	}
}
