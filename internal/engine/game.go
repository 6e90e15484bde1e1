// Package engine - планировщик тиков: машина состояний хода, конвейер
// систем и переходы между уровнями. Один Game - одна игровая сессия.
package engine

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/internal/infrastructure/storage"
	"roguie-server/internal/systems"
	"roguie-server/pkg/dungeon"
	"roguie-server/pkg/logger"
)

// Кадр проигрывателя генерации карты, миллисекунды.
const mapgenFrameMs = 300.0

type Game struct {
	world *ecs.World
	ctx   *systems.Context
	state domain.RunState
	rng   *rand.Rand

	savePath string

	// Проигрыватель генерации карты.
	mapgenHistory []*domain.GameMap
	mapgenIndex   int
	mapgenTimer   float64
	// Состояние после проигрывателя; в payload состояния его нет.
	nextState domain.RunState

	// Текущий ряд построчного раскрытия карты.
	magicMapRow int

	// Предмет, ожидающий выбора цели, и его дальность.
	targetingItem  ecs.Entity
	targetingRange int
}

// NewGame собирает пустую сессию в главном меню.
func NewGame(seed int64) *Game {
	rng := rand.New(rand.NewSource(seed))
	world := ecs.NewWorld()

	g := &Game{
		world: world,
		rng:   rng,
		state: domain.StateMainMenu,
		ctx: &systems.Context{
			World:     world,
			RNG:       rng,
			Log:       &domain.GameLog{},
			Particles: systems.NewParticleBuilder(),
		},
		savePath: storage.DefaultPath(),
	}

	logger.WithComponent("engine").WithField("seed", seed).Info("Session created.")
	return g
}

// StartNewGame генерирует первый уровень и запускает прогон PreRun.
func (g *Game) StartNewGame() {
	g.world.Clear()
	g.ctx.Log = &domain.GameLog{}
	g.ctx.Log.Append("Добро пожаловать в подземелье!")
	g.ctx.Requests.Reset()

	g.generateLevel(1)
	g.enterMapgenPlayback(domain.StatePreRun)
}

// generateLevel строит уровень, заселяет его и ставит игрока на старт.
// Сущность игрока создается, если ее еще нет (новая игра).
func (g *Game) generateLevel(depth int) {
	builder := dungeon.RandomBuilder(depth, g.rng)
	builder.BuildMap()

	g.ctx.Map = builder.GetMap()
	g.mapgenHistory = builder.GetSnapshotHistory()
	builder.SpawnEntities(g.world)

	start := builder.GetStartingPosition()
	if g.ctx.Player == ecs.Null || !g.world.Alive(g.ctx.Player) {
		g.ctx.Player = dungeon.SpawnPlayer(g.world, start.X, start.Y)
	}

	pos, ok := ecs.Get[domain.Position](g.world, g.ctx.Player, domain.CPosition)
	if !ok {
		logger.Log.Panicf("engine: player %v has no position", g.ctx.Player)
	}
	pos.X, pos.Y = start.X, start.Y
	g.ctx.PlayerPos = pos

	if viewshed, ok := ecs.Get[domain.Viewshed](g.world, g.ctx.Player, domain.CViewshed); ok {
		viewshed.Dirty = true
	}

	logger.WithComponent("engine").WithFields(logrus.Fields{
		"depth":    depth,
		"entities": g.world.Count(),
	}).Info("Level generated.")
}

// enterMapgenPlayback включает проигрыватель истории генерации, если
// она записана, иначе сразу переходит в целевое состояние.
func (g *Game) enterMapgenPlayback(after domain.RunState) {
	if len(g.mapgenHistory) == 0 {
		g.state = after
		return
	}
	g.mapgenIndex = 0
	g.mapgenTimer = 0
	g.nextState = after
	g.state = domain.StateMapGeneration
}

func (g *Game) State() domain.RunState { return g.state }

func (g *Game) World() *ecs.World { return g.world }

func (g *Game) Map() *domain.GameMap { return g.ctx.Map }

func (g *Game) Player() ecs.Entity { return g.ctx.Player }

func (g *Game) LogTail(n int) []string { return g.ctx.Log.Tail(n) }

// MapgenFrame возвращает текущий кадр проигрывателя генерации.
func (g *Game) MapgenFrame() *domain.GameMap {
	if g.state != domain.StateMapGeneration || g.mapgenIndex >= len(g.mapgenHistory) {
		return nil
	}
	return g.mapgenHistory[g.mapgenIndex]
}
