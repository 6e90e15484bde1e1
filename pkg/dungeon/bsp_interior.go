package dungeon

import (
	"math/rand"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

const interiorMinRoomSize = 8

// BspInteriorBuilder режет весь холст пополам рекурсивно и вырезает
// КАЖДЫЙ лист целиком: получается здание из смежных комнат без
// внешних пустот. Соседние по списку комнаты соединяются прокопом.
type BspInteriorBuilder struct {
	builderBase
	rooms []domain.Rect
	rects []domain.Rect
}

func NewBspInteriorBuilder(depth int, rng *rand.Rand) *BspInteriorBuilder {
	return &BspInteriorBuilder{builderBase: newBuilderBase(depth, rng)}
}

// addSubrects заменяет последний прямоугольник пула его половинами,
// случайно по горизонтали или вертикали, пока половины крупнее
// минимального размера комнаты.
func (b *BspInteriorBuilder) addSubrects(rect domain.Rect) {
	if len(b.rects) > 0 {
		b.rects = b.rects[:len(b.rects)-1]
	}

	width := rect.X2 - rect.X1
	height := rect.Y2 - rect.Y1
	halfWidth := width / 2
	halfHeight := height / 2

	if b.rollDice(1, 4) <= 2 {
		h1 := domain.NewRect(rect.X1, rect.Y1, halfWidth-1, height)
		b.rects = append(b.rects, h1)
		if halfWidth > interiorMinRoomSize {
			b.addSubrects(h1)
		}
		h2 := domain.NewRect(rect.X1+halfWidth, rect.Y1, halfWidth, height)
		b.rects = append(b.rects, h2)
		if halfWidth > interiorMinRoomSize {
			b.addSubrects(h2)
		}
	} else {
		v1 := domain.NewRect(rect.X1, rect.Y1, width, halfHeight-1)
		b.rects = append(b.rects, v1)
		if halfHeight > interiorMinRoomSize {
			b.addSubrects(v1)
		}
		v2 := domain.NewRect(rect.X1, rect.Y1+halfHeight, width, halfHeight)
		b.rects = append(b.rects, v2)
		if halfHeight > interiorMinRoomSize {
			b.addSubrects(v2)
		}
	}
}

func (b *BspInteriorBuilder) drawCorridor(x1, y1, x2, y2 int) {
	x, y := x1, y1
	for x != x2 || y != y2 {
		switch {
		case x < x2:
			x++
		case x > x2:
			x--
		case y < y2:
			y++
		default:
			y--
		}
		b.m.Tiles[b.m.Idx(x, y)] = domain.TileFloor
	}
}

func (b *BspInteriorBuilder) BuildMap() {
	b.rects = b.rects[:0]
	b.rects = append(b.rects, domain.NewRect(1, 1, b.m.Width-2, b.m.Height-2))
	b.addSubrects(b.rects[0])

	for _, room := range b.rects {
		b.rooms = append(b.rooms, room)
		for y := room.Y1; y < room.Y2; y++ {
			for x := room.X1; x < room.X2; x++ {
				if b.m.InBounds(x, y) {
					b.m.Tiles[b.m.Idx(x, y)] = domain.TileFloor
				}
			}
		}
		b.TakeSnapshot()
	}

	for i := 0; i < len(b.rooms)-1; i++ {
		room := b.rooms[i]
		next := b.rooms[i+1]
		startX := room.X1 + b.rollDice(1, abs(room.X1-room.X2)) - 1
		startY := room.Y1 + b.rollDice(1, abs(room.Y1-room.Y2)) - 1
		endX := next.X1 + b.rollDice(1, abs(next.X1-next.X2)) - 1
		endY := next.Y1 + b.rollDice(1, abs(next.Y1-next.Y2)) - 1
		b.drawCorridor(startX, startY, endX, endY)
		b.TakeSnapshot()
	}

	startX, startY := b.rooms[0].Center()
	b.start = domain.Position{X: startX, Y: startY}

	exitIdx := cullUnreachable(b.m, b.m.Idx(startX, startY))

	stairsX, stairsY := b.rooms[len(b.rooms)-1].Center()
	placeStairs(b.m, b.m.Idx(stairsX, stairsY), exitIdx)
	b.m.Rooms = append([]domain.Rect(nil), b.rooms...)
	b.TakeSnapshot()
}

func (b *BspInteriorBuilder) SpawnEntities(w *ecs.World) {
	for _, room := range b.rooms[1:] {
		fillRoom(w, b.m, room, b.depth, b.rng)
	}
}
