package domain

import "math"

// DistanceTo возвращает точное расстояние до другой точки (float).
func (p Position) DistanceTo(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// IsAdjacent возвращает true, если цель в соседней клетке (включая диагональ).
func (p Position) IsAdjacent(other Position) bool {
	dx := p.X - other.X
	dy := p.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= 1 && dy <= 1 && (dx != 0 || dy != 0)
}

// Shift возвращает новую позицию со смещением (Position передается по значению).
func (p Position) Shift(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}
