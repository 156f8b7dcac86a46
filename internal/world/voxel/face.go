// Package voxel содержит неизменяемые геометрические таблицы куба:
// вершины, порядок обхода граней, смещения соседей и шаблон UV.
package voxel

import "fmt"

// Face направление грани куба. Порядок фиксирован и совпадает
// с порядком текстур в описании блока.
type Face int

const (
	FaceBack Face = iota
	FaceFront
	FaceTop
	FaceBottom
	FaceLeft
	FaceRight
)

// FaceCount количество граней куба
const FaceCount = 6

// Faces перечисляет все грани в каноническом порядке
var Faces = [FaceCount]Face{FaceBack, FaceFront, FaceTop, FaceBottom, FaceLeft, FaceRight}

// Valid сообщает, лежит ли индекс грани в диапазоне [0, 5]
func (f Face) Valid() bool {
	return f >= 0 && f < FaceCount
}

// String возвращает строковое представление грани
func (f Face) String() string {
	switch f {
	case FaceBack:
		return "back"
	case FaceFront:
		return "front"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	default:
		return fmt.Sprintf("face(%d)", int(f))
	}
}
