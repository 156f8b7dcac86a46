package vec

import "github.com/go-gl/mathgl/mgl32"

// Vec3 представляет трехмерный вектор с целочисленными координатами
type Vec3 struct {
	X int
	Y int
	Z int
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// ToFloat переводит вектор в mgl32.Vec3 для меш-буферов
func (v Vec3) ToFloat() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// FromFloat округляет позицию вниз до клетки сетки
func FromFloat(p mgl32.Vec3) Vec3 {
	return Vec3{
		X: FloorToInt(p.X()),
		Y: FloorToInt(p.Y()),
		Z: FloorToInt(p.Z()),
	}
}
