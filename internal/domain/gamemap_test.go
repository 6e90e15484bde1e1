package domain

import (
	"testing"
)

// openMap строит карту с полом во всей внутренней области.
func openMap() *GameMap {
	m := NewGameMap(1)
	for y := 1; y < m.Height-1; y++ {
		for x := 1; x < m.Width-1; x++ {
			m.Tiles[m.Idx(x, y)] = TileFloor
		}
	}
	m.PopulateBlocked()
	return m
}

func TestIdxCoordsRoundTrip(t *testing.T) {
	m := NewGameMap(1)
	idx := m.Idx(17, 23)
	x, y := m.Coords(idx)
	if x != 17 || y != 23 {
		t.Errorf("Coords(Idx(17,23)) = (%d,%d)", x, y)
	}
}

func TestIsBlockedOutOfBounds(t *testing.T) {
	m := openMap()
	if !m.IsBlocked(-1, 5) || !m.IsBlocked(5, -1) || !m.IsBlocked(m.Width, 5) {
		t.Error("out of bounds must be blocked")
	}
	if m.IsBlocked(5, 5) {
		t.Error("interior floor must not be blocked")
	}
}

func TestExitsCostsAndCount(t *testing.T) {
	m := openMap()
	exits := m.Exits(m.Idx(10, 10))
	if len(exits) != 8 {
		t.Fatalf("expected 8 exits in the open, got %d", len(exits))
	}

	cardinal, diagonal := 0, 0
	for _, exit := range exits {
		switch exit.Cost {
		case 1.0:
			cardinal++
		case 1.45:
			diagonal++
		default:
			t.Errorf("unexpected exit cost %v", exit.Cost)
		}
	}
	if cardinal != 4 || diagonal != 4 {
		t.Errorf("expected 4 cardinal and 4 diagonal exits, got %d and %d", cardinal, diagonal)
	}
}

func TestExitsRespectWalls(t *testing.T) {
	m := openMap()
	m.Tiles[m.Idx(11, 10)] = TileWall
	m.PopulateBlocked()

	for _, exit := range m.Exits(m.Idx(10, 10)) {
		if exit.Idx == m.Idx(11, 10) {
			t.Error("exit into a wall")
		}
	}
}

func TestExitsExcludeBorderColumn(t *testing.T) {
	m := openMap()
	// Клетки с x == 0 отбрасываются граничной проверкой.
	for _, exit := range m.Exits(m.Idx(1, 10)) {
		x, _ := m.Coords(exit.Idx)
		if x == 0 {
			t.Error("exit into the border column")
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := openMap()
	m.Bloodstains[m.Idx(3, 3)] = true
	c := m.Clone()

	c.Tiles[m.Idx(5, 5)] = TileWall
	c.Bloodstains[m.Idx(4, 4)] = true

	if m.Tiles[m.Idx(5, 5)] == TileWall {
		t.Error("clone shares tiles with original")
	}
	if m.Bloodstains[m.Idx(4, 4)] {
		t.Error("clone shares bloodstains with original")
	}
	if !c.Bloodstains[m.Idx(3, 3)] {
		t.Error("clone lost bloodstains")
	}
}
