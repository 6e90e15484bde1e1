package domain

// Rect - прямоугольник комнаты в координатах углов (включительно x1..x2).
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// NewRect создает Rect из угла и размеров.
func NewRect(x, y, w, h int) Rect {
	return Rect{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// Center возвращает центр комнаты.
func (r Rect) Center() (int, int) {
	return (r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2
}

// Intersect возвращает true, если комнаты пересекаются.
func (r Rect) Intersect(other Rect) bool {
	return r.X1 <= other.X2 && r.X2 >= other.X1 &&
		r.Y1 <= other.Y2 && r.Y2 >= other.Y1
}
