package domain

import (
	"math"

	"roguie-server/internal/ecs"
)

// Размеры карты (совпадают с областью отрисовки клиента).
const (
	MapWidth  = 80
	MapHeight = 43
	MapCount  = MapWidth * MapHeight
)

// TileType - тип клетки карты.
type TileType uint8

const (
	TileWall TileType = iota
	TileFloor
	TileDownStairs
)

// GameMap - модель уровня: плоский массив клеток и параллельные массивы
// флагов, все индексируются как y*Width+x. Создается генератором заново
// на каждый уровень; внутри уровня мутирует на месте (туман войны,
// флаги блокировки, индекс содержимого клеток).
type GameMap struct {
	Tiles       []TileType   `json:"tiles"`
	Rooms       []Rect       `json:"rooms"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Revealed    []bool       `json:"revealed"`
	Visible     []bool       `json:"visible"`
	Blocked     []bool       `json:"blocked"`
	Depth       int          `json:"depth"`
	Bloodstains map[int]bool `json:"bloodstains"`

	// Индекс содержимого клеток: клетка -> сущности на ней.
	// Транзитный, перестраивается каждый тик, в сейв не попадает.
	TileContent [][]ecs.Entity `json:"-"`
}

// NewGameMap создает карту указанной глубины, целиком из стен.
func NewGameMap(depth int) *GameMap {
	m := &GameMap{
		Tiles:       make([]TileType, MapCount),
		Width:       MapWidth,
		Height:      MapHeight,
		Revealed:    make([]bool, MapCount),
		Visible:     make([]bool, MapCount),
		Blocked:     make([]bool, MapCount),
		Depth:       depth,
		Bloodstains: make(map[int]bool),
		TileContent: make([][]ecs.Entity, MapCount),
	}
	return m
}

// Idx возвращает индекс клетки (x, y).
func (m *GameMap) Idx(x, y int) int {
	return y*m.Width + x
}

// Coords возвращает координаты клетки по индексу.
func (m *GameMap) Coords(idx int) (int, int) {
	return idx % m.Width, idx / m.Width
}

// InBounds проверяет, что точка лежит на карте.
func (m *GameMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// IsBlocked возвращает true для клетки вне карты или с флагом блокировки.
func (m *GameMap) IsBlocked(x, y int) bool {
	if !m.InBounds(x, y) {
		return true
	}
	return m.Blocked[m.Idx(x, y)]
}

// IsOpaque - блокирует ли клетка взгляд.
func (m *GameMap) IsOpaque(idx int) bool {
	return m.Tiles[idx] == TileWall
}

// isExitValid повторяет граничную проверку оригинала: крайний столбец и
// крайняя строка отбрасываются, дальше решает флаг блокировки.
func (m *GameMap) isExitValid(x, y int) bool {
	if x < 1 || x > m.Width-1 || y < 1 || y > m.Height-1 {
		return false
	}
	return !m.Blocked[m.Idx(x, y)]
}

// Exit - соседняя проходимая клетка и стоимость шага в неё.
type Exit struct {
	Idx  int
	Cost float64
}

// Exits перечисляет до 8 проходимых соседей клетки: 4 ортогональных по
// цене 1.0 и 4 диагональных по 1.45. Диагональ НЕ проверяет "срезание
// угла" через две ортогональные стены - поведение сознательно сохранено,
// баланс игры на него опирается.
func (m *GameMap) Exits(idx int) []Exit {
	exits := make([]Exit, 0, 8)
	x, y := m.Coords(idx)
	w := m.Width

	if m.isExitValid(x-1, y) {
		exits = append(exits, Exit{idx - 1, 1.0})
	}
	if m.isExitValid(x+1, y) {
		exits = append(exits, Exit{idx + 1, 1.0})
	}
	if m.isExitValid(x, y-1) {
		exits = append(exits, Exit{idx - w, 1.0})
	}
	if m.isExitValid(x, y+1) {
		exits = append(exits, Exit{idx + w, 1.0})
	}

	if m.isExitValid(x-1, y-1) {
		exits = append(exits, Exit{idx - w - 1, 1.45})
	}
	if m.isExitValid(x+1, y-1) {
		exits = append(exits, Exit{idx - w + 1, 1.45})
	}
	if m.isExitValid(x-1, y+1) {
		exits = append(exits, Exit{idx + w - 1, 1.45})
	}
	if m.isExitValid(x+1, y+1) {
		exits = append(exits, Exit{idx + w + 1, 1.45})
	}

	return exits
}

// Distance - евклидово расстояние между двумя клетками.
func (m *GameMap) Distance(idx1, idx2 int) float64 {
	x1, y1 := m.Coords(idx1)
	x2, y2 := m.Coords(idx2)
	dx := float64(x1 - x2)
	dy := float64(y1 - y2)
	return math.Sqrt(dx*dx + dy*dy)
}

// PopulateBlocked пересчитывает флаги блокировки по типам клеток:
// стена блокирует, остальное - нет. Сущности с BlocksTile дополнительно
// помечает система индексации.
func (m *GameMap) PopulateBlocked() {
	for i, t := range m.Tiles {
		m.Blocked[i] = t == TileWall
	}
}

// ClearContentIndex очищает индекс содержимого клеток перед перестройкой.
func (m *GameMap) ClearContentIndex() {
	for i := range m.TileContent {
		m.TileContent[i] = m.TileContent[i][:0]
	}
}

// Clone возвращает глубокую копию карты (снимки генератора, сейв).
// Индекс содержимого клеток не копируется - у копии он пустой.
func (m *GameMap) Clone() *GameMap {
	c := &GameMap{
		Tiles:       append([]TileType(nil), m.Tiles...),
		Rooms:       append([]Rect(nil), m.Rooms...),
		Width:       m.Width,
		Height:      m.Height,
		Revealed:    append([]bool(nil), m.Revealed...),
		Visible:     append([]bool(nil), m.Visible...),
		Blocked:     append([]bool(nil), m.Blocked...),
		Depth:       m.Depth,
		Bloodstains: make(map[int]bool, len(m.Bloodstains)),
		TileContent: make([][]ecs.Entity, len(m.Tiles)),
	}
	for idx := range m.Bloodstains {
		c.Bloodstains[idx] = true
	}
	return c
}

// ResetContentIndex восстанавливает транзитные поля после десериализации.
func (m *GameMap) ResetContentIndex() {
	m.TileContent = make([][]ecs.Entity, len(m.Tiles))
	if m.Bloodstains == nil {
		m.Bloodstains = make(map[int]bool)
	}
}
