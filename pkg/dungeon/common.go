package dungeon

import (
	"roguie-server/internal/domain"
)

// applyRoom вырезает внутренность комнаты в полу.
// Периметр прямоугольника остается стеной.
func applyRoom(m *domain.GameMap, room domain.Rect) {
	for y := room.Y1 + 1; y <= room.Y2; y++ {
		for x := room.X1 + 1; x <= room.X2; x++ {
			if m.InBounds(x, y) {
				m.Tiles[m.Idx(x, y)] = domain.TileFloor
			}
		}
	}
}

func applyHorizontalTunnel(m *domain.GameMap, x1, x2, y int) {
	start, end := x1, x2
	if start > end {
		start, end = end, start
	}
	for x := start; x <= end; x++ {
		if m.InBounds(x, y) {
			m.Tiles[m.Idx(x, y)] = domain.TileFloor
		}
	}
}

func applyVerticalTunnel(m *domain.GameMap, y1, y2, x int) {
	start, end := y1, y2
	if start > end {
		start, end = end, start
	}
	for y := start; y <= end; y++ {
		if m.InBounds(x, y) {
			m.Tiles[m.Idx(x, y)] = domain.TileFloor
		}
	}
}

// Предел глубины поля расстояний при ремонте связности: заведомо выше
// стоимости любого пути на карте 80x43.
const repairMaxDepth = 1e9

// cullUnreachable замуровывает пол, недостижимый из startIdx, и
// возвращает индекс самой дальней достижимой клетки пола.
func cullUnreachable(m *domain.GameMap, startIdx int) int {
	m.PopulateBlocked()
	distances := domain.DistanceField(m, []int{startIdx}, repairMaxDepth)

	exitIdx := startIdx
	exitDistance := 0.0
	for i, tile := range m.Tiles {
		if tile != domain.TileFloor {
			continue
		}
		if distances[i] == domain.Unreachable {
			m.Tiles[i] = domain.TileWall
			continue
		}
		if distances[i] > exitDistance {
			exitIdx = i
			exitDistance = distances[i]
		}
	}
	return exitIdx
}

// placeStairs ставит лестницу в предпочтительной клетке. Если ремонт
// связности ее замуровал, лестница уходит в самую дальнюю достижимую
// точку: уровень обязан иметь достижимый спуск.
func placeStairs(m *domain.GameMap, preferredIdx, exitIdx int) {
	if m.Tiles[preferredIdx] == domain.TileFloor {
		m.Tiles[preferredIdx] = domain.TileDownStairs
		return
	}
	m.Tiles[exitIdx] = domain.TileDownStairs
}
