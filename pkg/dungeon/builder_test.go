package dungeon

import (
	"math/rand"
	"os"
	"testing"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	os.Exit(m.Run())
}

var builderConstructors = map[string]func(int, *rand.Rand) Builder{
	"simple":   func(d int, r *rand.Rand) Builder { return NewSimpleMapBuilder(d, r) },
	"bsp":      func(d int, r *rand.Rand) Builder { return NewBspDungeonBuilder(d, r) },
	"interior": func(d int, r *rand.Rand) Builder { return NewBspInteriorBuilder(d, r) },
	"cellular": func(d int, r *rand.Rand) Builder { return NewCellularAutomataBuilder(d, r) },
}

// Каждый генератор обязан выдать играбельный уровень: стартовая клетка
// на полу, ровно один спуск и ни одной изолированной клетки пола.
func TestBuildersProducePlayableMaps(t *testing.T) {
	for name, construct := range builderConstructors {
		for seed := int64(1); seed <= 5; seed++ {
			b := construct(1, rand.New(rand.NewSource(seed)))
			b.BuildMap()
			m := b.GetMap()
			start := b.GetStartingPosition()

			if !m.InBounds(start.X, start.Y) {
				t.Fatalf("%s/seed %d: start (%d,%d) out of bounds", name, seed, start.X, start.Y)
			}
			startIdx := m.Idx(start.X, start.Y)
			if m.Tiles[startIdx] != domain.TileFloor {
				t.Errorf("%s/seed %d: start tile is not floor", name, seed)
			}

			stairs := 0
			for _, tile := range m.Tiles {
				if tile == domain.TileDownStairs {
					stairs++
				}
			}
			if stairs != 1 {
				t.Errorf("%s/seed %d: expected exactly one down staircase, got %d", name, seed, stairs)
			}

			m.PopulateBlocked()
			field := domain.DistanceField(m, []int{startIdx}, 10000.0)
			for idx, tile := range m.Tiles {
				if tile == domain.TileWall {
					continue
				}
				if field[idx] == domain.Unreachable {
					x, y := m.Coords(idx)
					t.Fatalf("%s/seed %d: walkable tile (%d,%d) unreachable from start", name, seed, x, y)
				}
			}
		}
	}
}

// Один поток случайности - одна и та же карта.
func TestBuildersAreDeterministic(t *testing.T) {
	for name, construct := range builderConstructors {
		first := construct(2, rand.New(rand.NewSource(42)))
		first.BuildMap()
		second := construct(2, rand.New(rand.NewSource(42)))
		second.BuildMap()

		a, b := first.GetMap(), second.GetMap()
		for i := range a.Tiles {
			if a.Tiles[i] != b.Tiles[i] {
				t.Fatalf("%s: same seed produced different maps at idx %d", name, i)
			}
		}
		if first.GetStartingPosition() != second.GetStartingPosition() {
			t.Errorf("%s: same seed produced different starts", name)
		}
	}
}

func TestRandomBuilderCoversEveryGenerator(t *testing.T) {
	seen := map[string]bool{}
	for seed := int64(0); seed < 64; seed++ {
		switch RandomBuilder(1, rand.New(rand.NewSource(seed))).(type) {
		case *SimpleMapBuilder:
			seen["simple"] = true
		case *BspDungeonBuilder:
			seen["bsp"] = true
		case *BspInteriorBuilder:
			seen["interior"] = true
		case *CellularAutomataBuilder:
			seen["cellular"] = true
		}
	}
	for name := range builderConstructors {
		if !seen[name] {
			t.Errorf("generator %q never selected across 64 seeds", name)
		}
	}
}

func TestSpawnEntitiesStayOnWalkableTiles(t *testing.T) {
	total := 0
	for name, construct := range builderConstructors {
		rng := rand.New(rand.NewSource(7))
		b := construct(3, rng)
		b.BuildMap()
		m := b.GetMap()

		w := ecs.NewWorld()
		b.SpawnEntities(w)

		spawned := w.Join(domain.CPosition)
		total += len(spawned)
		for _, e := range spawned {
			pos, _ := ecs.Get[domain.Position](w, e, domain.CPosition)
			if m.Tiles[m.Idx(pos.X, pos.Y)] == domain.TileWall {
				t.Errorf("%s: entity spawned inside a wall at (%d,%d)", name, pos.X, pos.Y)
			}
		}
	}
	if total == 0 {
		t.Error("no builder spawned a single entity at depth 3")
	}
}

// Серпантинный коридор через всю карту: стоимость пути до хвоста
// далеко за две сотни, ремонт связности не имеет права замуровать его.
func TestConnectivityRepairHandlesLongWindingPaths(t *testing.T) {
	m := domain.NewGameMap(1)
	for y := 1; y < m.Height-1; y += 2 {
		for x := 1; x < m.Width-1; x++ {
			m.Tiles[m.Idx(x, y)] = domain.TileFloor
		}
	}
	for y := 2; y < m.Height-1; y += 2 {
		x := 1
		if (y/2)%2 == 1 {
			x = m.Width - 2
		}
		m.Tiles[m.Idx(x, y)] = domain.TileFloor
	}

	floorsBefore := 0
	for _, tile := range m.Tiles {
		if tile == domain.TileFloor {
			floorsBefore++
		}
	}

	startIdx := m.Idx(1, 1)
	exitIdx := cullUnreachable(m, startIdx)

	floorsAfter := 0
	for _, tile := range m.Tiles {
		if tile == domain.TileFloor {
			floorsAfter++
		}
	}
	if floorsAfter != floorsBefore {
		t.Fatalf("repair walled off %d reachable floor tiles", floorsBefore-floorsAfter)
	}

	field := domain.DistanceField(m, []int{startIdx}, repairMaxDepth)
	if field[exitIdx] <= 200 {
		t.Errorf("expected the far end past cost 200, got %.1f", field[exitIdx])
	}
}

// Если предпочтительную клетку лестницы замуровал ремонт связности,
// лестница уходит в самую дальнюю достижимую точку.
func TestStairsFallBackWhenPreferredTileCulled(t *testing.T) {
	m := domain.NewGameMap(1)
	startIdx := m.Idx(5, 5)
	preferredIdx := m.Idx(60, 30)
	m.Tiles[startIdx] = domain.TileFloor
	m.Tiles[preferredIdx] = domain.TileFloor

	exitIdx := cullUnreachable(m, startIdx)
	if m.Tiles[preferredIdx] != domain.TileWall {
		t.Fatal("isolated pocket must be walled off")
	}

	placeStairs(m, preferredIdx, exitIdx)

	stairs := 0
	for idx, tile := range m.Tiles {
		if tile == domain.TileDownStairs {
			stairs++
			if idx == preferredIdx {
				t.Error("stairs must not land in the sealed pocket")
			}
		}
	}
	if stairs != 1 {
		t.Errorf("expected exactly one staircase, got %d", stairs)
	}
	if m.Tiles[exitIdx] != domain.TileDownStairs {
		t.Error("stairs must fall back to the most distant reachable tile")
	}
}

func TestGetMapReturnsIndependentCopy(t *testing.T) {
	b := NewSimpleMapBuilder(1, rand.New(rand.NewSource(3)))
	b.BuildMap()
	start := b.GetStartingPosition()

	first := b.GetMap()
	startIdx := first.Idx(start.X, start.Y)
	first.Tiles[startIdx] = domain.TileWall
	first.Rooms = nil

	second := b.GetMap()
	if second.Tiles[startIdx] != domain.TileFloor {
		t.Error("mutating a returned map must not leak into the builder")
	}
	if len(second.Rooms) == 0 {
		t.Error("returned copy must carry the room list")
	}
}

func TestRoomBuildersRecordRooms(t *testing.T) {
	for _, name := range []string{"simple", "bsp", "interior"} {
		b := builderConstructors[name](1, rand.New(rand.NewSource(4)))
		b.BuildMap()
		m := b.GetMap()
		if len(m.Rooms) == 0 {
			t.Errorf("%s: built map must list its rooms", name)
		}
		for _, room := range m.Rooms {
			if !m.InBounds(room.X1, room.Y1) || !m.InBounds(room.X2, room.Y2) {
				t.Errorf("%s: room %+v out of bounds", name, room)
			}
		}
	}

	b := NewCellularAutomataBuilder(1, rand.New(rand.NewSource(4)))
	b.BuildMap()
	if len(b.GetMap().Rooms) != 0 {
		t.Error("cave builder has no rooms to record")
	}
}

func TestSnapshotHistoryGatedByVisualizerFlag(t *testing.T) {
	b := NewSimpleMapBuilder(1, rand.New(rand.NewSource(3)))
	b.BuildMap()
	if len(b.GetSnapshotHistory()) != 0 {
		t.Error("history must stay empty with the visualizer off")
	}

	ShowMapgenVisualizer = true
	defer func() { ShowMapgenVisualizer = false }()

	b = NewSimpleMapBuilder(1, rand.New(rand.NewSource(3)))
	b.BuildMap()
	history := b.GetSnapshotHistory()
	if len(history) == 0 {
		t.Fatal("expected snapshots with the visualizer on")
	}
	for i, snapshot := range history {
		for _, revealed := range snapshot.Revealed {
			if !revealed {
				t.Fatalf("snapshot %d must be fully revealed", i)
			}
		}
	}
}
