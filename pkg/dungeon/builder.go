package dungeon

import (
	"math/rand"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

// ShowMapgenVisualizer включает запись истории снимков при генерации.
// Выключено по умолчанию: история нужна только проигрывателю генерации.
var ShowMapgenVisualizer = false

// Builder - общий контракт генераторов уровня.
type Builder interface {
	BuildMap()
	GetMap() *domain.GameMap
	GetStartingPosition() domain.Position
	SpawnEntities(w *ecs.World)
	GetSnapshotHistory() []*domain.GameMap
	TakeSnapshot()
}

// builderBase - общее состояние всех генераторов: карта, стартовая
// позиция, глубина, история снимков и поток случайности сессии.
type builderBase struct {
	m       *domain.GameMap
	start   domain.Position
	depth   int
	history []*domain.GameMap
	rng     *rand.Rand
}

func newBuilderBase(depth int, rng *rand.Rand) builderBase {
	return builderBase{
		m:     domain.NewGameMap(depth),
		depth: depth,
		rng:   rng,
	}
}

// GetMap возвращает копию построенной карты: вызывающий владеет своим
// экземпляром, генератор продолжает мутировать собственный.
func (b *builderBase) GetMap() *domain.GameMap {
	return b.m.Clone()
}

func (b *builderBase) GetStartingPosition() domain.Position {
	return b.start
}

func (b *builderBase) GetSnapshotHistory() []*domain.GameMap {
	return b.history
}

// TakeSnapshot откладывает кадр для проигрывателя генерации.
// Снимок полностью раскрыт, иначе смотреть не на что.
func (b *builderBase) TakeSnapshot() {
	if !ShowMapgenVisualizer {
		return
	}
	snapshot := b.m.Clone()
	for i := range snapshot.Revealed {
		snapshot.Revealed[i] = true
	}
	b.history = append(b.history, snapshot)
}

// rollDice бросает dice кубиков по sides граней (минимум dice).
func (b *builderBase) rollDice(dice, sides int) int {
	total := 0
	for i := 0; i < dice; i++ {
		total += b.rng.Intn(sides) + 1
	}
	return total
}

func (b *builderBase) randRange(min, max int) int {
	return b.rng.Intn(max-min+1) + min
}
