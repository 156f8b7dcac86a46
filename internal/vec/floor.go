package vec

import "math"

// FloorDiv делит с округлением к минус бесконечности.
// b должно быть положительным.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// FloorToInt округляет float32 вниз до целого. Результат зажат в
// диапазон int32, NaN даёт 0.
func FloorToInt(f float32) int {
	v := math.Floor(float64(f))
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}
