package dungeon

import (
	"math/rand"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

const (
	simpleMaxRooms    = 30
	simpleMinRoomSize = 6
	simpleMaxRoomSize = 10
)

// SimpleMapBuilder - классические комнаты, соединенные Г-образными
// коридорами. Самый предсказуемый из генераторов.
type SimpleMapBuilder struct {
	builderBase
	rooms []domain.Rect
}

func NewSimpleMapBuilder(depth int, rng *rand.Rand) *SimpleMapBuilder {
	return &SimpleMapBuilder{builderBase: newBuilderBase(depth, rng)}
}

func (b *SimpleMapBuilder) BuildMap() {
	for i := 0; i < simpleMaxRooms; i++ {
		w := b.randRange(simpleMinRoomSize, simpleMaxRoomSize)
		h := b.randRange(simpleMinRoomSize, simpleMaxRoomSize)
		x := b.rollDice(1, b.m.Width-w-1) - 1
		y := b.rollDice(1, b.m.Height-h-1) - 1
		newRoom := domain.NewRect(x, y, w, h)

		ok := true
		for _, other := range b.rooms {
			if newRoom.Intersect(other) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		applyRoom(b.m, newRoom)
		b.TakeSnapshot()

		// Коридор к предыдущей комнате, случайный порядок колен.
		if len(b.rooms) > 0 {
			newX, newY := newRoom.Center()
			prevX, prevY := b.rooms[len(b.rooms)-1].Center()
			if b.rng.Intn(2) == 1 {
				applyHorizontalTunnel(b.m, prevX, newX, prevY)
				applyVerticalTunnel(b.m, prevY, newY, newX)
			} else {
				applyVerticalTunnel(b.m, prevY, newY, prevX)
				applyHorizontalTunnel(b.m, prevX, newX, newY)
			}
		}

		b.rooms = append(b.rooms, newRoom)
	}

	startX, startY := b.rooms[0].Center()
	b.start = domain.Position{X: startX, Y: startY}

	// Ремонт связности прогоняется у всех генераторов: каждый пол
	// должен быть достижим от старта.
	exitIdx := cullUnreachable(b.m, b.m.Idx(startX, startY))

	stairsX, stairsY := b.rooms[len(b.rooms)-1].Center()
	placeStairs(b.m, b.m.Idx(stairsX, stairsY), exitIdx)
	b.m.Rooms = append([]domain.Rect(nil), b.rooms...)
	b.TakeSnapshot()
}

func (b *SimpleMapBuilder) SpawnEntities(w *ecs.World) {
	for _, room := range b.rooms[1:] {
		fillRoom(w, b.m, room, b.depth, b.rng)
	}
}
