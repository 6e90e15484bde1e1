package dungeon

import (
	"math/rand"
	"sort"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

// BspDungeonBuilder строит уровень двоичным разбиением пространства:
// случайный прямоугольник делится на четверти, в четвертях пробуются
// комнаты, удачные соединяются коридорами слева направо.
type BspDungeonBuilder struct {
	builderBase
	rooms []domain.Rect
	rects []domain.Rect
}

func NewBspDungeonBuilder(depth int, rng *rand.Rand) *BspDungeonBuilder {
	return &BspDungeonBuilder{builderBase: newBuilderBase(depth, rng)}
}

// addSubrects разрезает rect на четыре четверти и складывает их в пул.
func (b *BspDungeonBuilder) addSubrects(rect domain.Rect) {
	width := abs(rect.X1 - rect.X2)
	height := abs(rect.Y1 - rect.Y2)
	halfWidth := max(width/2, 1)
	halfHeight := max(height/2, 1)

	b.rects = append(b.rects,
		domain.NewRect(rect.X1, rect.Y1, halfWidth, halfHeight),
		domain.NewRect(rect.X1, rect.Y1+halfHeight, halfWidth, halfHeight),
		domain.NewRect(rect.X1+halfWidth, rect.Y1, halfWidth, halfHeight),
		domain.NewRect(rect.X1+halfWidth, rect.Y1+halfHeight, halfWidth, halfHeight),
	)
}

func (b *BspDungeonBuilder) randomRect() domain.Rect {
	if len(b.rects) == 1 {
		return b.rects[0]
	}
	return b.rects[b.rollDice(1, len(b.rects))-1]
}

// randomSubRect вписывает в rect случайную комнату со стороной 3..10.
func (b *BspDungeonBuilder) randomSubRect(rect domain.Rect) domain.Rect {
	result := rect
	rectWidth := abs(rect.X1 - rect.X2)
	rectHeight := abs(rect.Y1 - rect.Y2)

	w := max(3, b.rollDice(1, min(rectWidth, 10))-1) + 1
	h := max(3, b.rollDice(1, min(rectHeight, 10))-1) + 1

	result.X1 += b.rollDice(1, 6) - 1
	result.Y1 += b.rollDice(1, 6) - 1
	result.X2 = result.X1 + w
	result.Y2 = result.Y1 + h

	return result
}

// canPlace проверяет, что комната с запасом в две клетки помещается в
// карту и не задевает уже вырезанный пол.
func (b *BspDungeonBuilder) canPlace(rect domain.Rect) bool {
	expanded := rect
	expanded.X1 -= 2
	expanded.X2 += 2
	expanded.Y1 -= 2
	expanded.Y2 += 2

	for y := expanded.Y1; y <= expanded.Y2; y++ {
		for x := expanded.X1; x <= expanded.X2; x++ {
			if x < 1 || y < 1 || x > b.m.Width-2 || y > b.m.Height-2 {
				return false
			}
			if b.m.Tiles[b.m.Idx(x, y)] != domain.TileWall {
				return false
			}
		}
	}
	return true
}

// drawCorridor прокапывает дорожку шириной в одну клетку, сначала по
// x, потом по y.
func (b *BspDungeonBuilder) drawCorridor(x1, y1, x2, y2 int) {
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

func (b *BspDungeonBuilder) BuildMap() {
	b.rects = b.rects[:0]
	b.rects = append(b.rects, domain.NewRect(2, 2, b.m.Width-5, b.m.Height-5))
	b.addSubrects(b.rects[0])

	// 240 попыток разбиения; неудачные комнаты просто пропускаются.
	for attempt := 0; attempt < 240; attempt++ {
		rect := b.randomRect()
		candidate := b.randomSubRect(rect)
		if !b.canPlace(candidate) {
			continue
		}
		applyRoom(b.m, candidate)
		b.rooms = append(b.rooms, candidate)
		b.addSubrects(rect)
		b.TakeSnapshot()
	}

	// Сортировка по x, чтобы коридоры шли между соседями.
	sort.Slice(b.rooms, func(i, j int) bool { return b.rooms[i].X1 < b.rooms[j].X1 })

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

func (b *BspDungeonBuilder) SpawnEntities(w *ecs.World) {
	for _, room := range b.rooms[1:] {
		fillRoom(w, b.m, room, b.depth, b.rng)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
