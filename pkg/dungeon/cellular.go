package dungeon

import (
	"math/rand"
	"sort"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

// CellularAutomataBuilder выращивает пещеру клеточным автоматом:
// случайный засев пола, 15 проходов правила соседей, зачистка
// одиноких колонн, ремонт связности и лестница в самой дальней точке.
type CellularAutomataBuilder struct {
	builderBase
	noiseAreas map[int][]int
}

func NewCellularAutomataBuilder(depth int, rng *rand.Rand) *CellularAutomataBuilder {
	return &CellularAutomataBuilder{
		builderBase: newBuilderBase(depth, rng),
		noiseAreas:  make(map[int][]int),
	}
}

func (b *CellularAutomataBuilder) BuildMap() {
	// Засев: бросок d100 на каждую внутреннюю клетку, выше 55 - пол.
	for y := 1; y < b.m.Height-1; y++ {
		for x := 1; x < b.m.Width-1; x++ {
			idx := b.m.Idx(x, y)
			if b.rollDice(1, 100) > 55 {
				b.m.Tiles[idx] = domain.TileFloor
			} else {
				b.m.Tiles[idx] = domain.TileWall
			}
		}
	}
	b.TakeSnapshot()

	// Правило соседей: больше четырех стен вокруг или ни одной - стена.
	// Крайний ряд не трогаем, он и так стена.
	for i := 0; i < 15; i++ {
		newTiles := make([]domain.TileType, len(b.m.Tiles))
		copy(newTiles, b.m.Tiles)

		for y := 1; y < b.m.Height-1; y++ {
			for x := 1; x < b.m.Width-1; x++ {
				idx := b.m.Idx(x, y)
				neighbors := b.countWallNeighbors(idx)
				if neighbors > 4 || neighbors == 0 {
					newTiles[idx] = domain.TileWall
				} else {
					newTiles[idx] = domain.TileFloor
				}
			}
		}

		b.m.Tiles = newTiles
		b.TakeSnapshot()
	}

	// Одинокие колонны (меньше двух стен вокруг) срываются.
	newTiles := make([]domain.TileType, len(b.m.Tiles))
	copy(newTiles, b.m.Tiles)
	for y := 1; y < b.m.Height-1; y++ {
		for x := 1; x < b.m.Width-1; x++ {
			idx := b.m.Idx(x, y)
			if b.countWallNeighbors(idx) < 2 {
				newTiles[idx] = domain.TileFloor
			}
		}
	}
	b.m.Tiles = newTiles
	b.TakeSnapshot()

	// Старт: от центра шагаем влево до первого пола.
	b.start = domain.Position{X: b.m.Width / 2, Y: b.m.Height / 2}
	for b.start.X > 0 && b.m.Tiles[b.m.Idx(b.start.X, b.start.Y)] != domain.TileFloor {
		b.start.X--
	}
	startIdx := b.m.Idx(b.start.X, b.start.Y)

	// Недостижимый пол замуровывается, лестница - в самой дальней
	// достижимой точке.
	exitIdx := cullUnreachable(b.m, startIdx)
	b.TakeSnapshot()

	b.m.Tiles[exitIdx] = domain.TileDownStairs
	b.TakeSnapshot()

	b.buildNoiseAreas()
}

// buildNoiseAreas нарезает пол на области спавна: по карте
// разбрасываются опорные точки, каждая клетка пола прикрепляется к
// ближайшей по манхэттенскому расстоянию.
func (b *CellularAutomataBuilder) buildNoiseAreas() {
	type seed struct{ x, y int }

	numSeeds := b.m.Width * b.m.Height / 50
	seeds := make([]seed, 0, numSeeds)
	for i := 0; i < numSeeds; i++ {
		seeds = append(seeds, seed{
			x: b.rng.Intn(b.m.Width-2) + 1,
			y: b.rng.Intn(b.m.Height-2) + 1,
		})
	}

	for y := 1; y < b.m.Height-1; y++ {
		for x := 1; x < b.m.Width-1; x++ {
			idx := b.m.Idx(x, y)
			if b.m.Tiles[idx] != domain.TileFloor {
				continue
			}

			nearest := 0
			nearestDist := abs(x-seeds[0].x) + abs(y-seeds[0].y)
			for i, s := range seeds[1:] {
				d := abs(x-s.x) + abs(y-s.y)
				if d < nearestDist {
					nearest = i + 1
					nearestDist = d
				}
			}
			b.noiseAreas[nearest] = append(b.noiseAreas[nearest], idx)
		}
	}
}

// countWallNeighbors считает стены вокруг idx по восьми направлениям.
// Границы не проверяются: вызывать только для внутренних клеток.
func (b *CellularAutomataBuilder) countWallNeighbors(idx int) int {
	w := b.m.Width
	neighbors := 0
	for _, offset := range [8]int{-1, 1, -w, w, -(w - 1), -(w + 1), w - 1, w + 1} {
		if b.m.Tiles[idx+offset] == domain.TileWall {
			neighbors++
		}
	}
	return neighbors
}

func (b *CellularAutomataBuilder) SpawnEntities(w *ecs.World) {
	// Области обходятся по возрастанию ключа, чтобы засеянная сессия
	// была воспроизводимой.
	keys := make([]int, 0, len(b.noiseAreas))
	for k := range b.noiseAreas {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		fillRegion(w, b.m, b.noiseAreas[k], b.depth, b.rng)
	}
}
