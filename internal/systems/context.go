package systems

import (
	"math/rand"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

// Context - разделяемые ресурсы одной игровой сессии.
// Карта, поток случайных чисел, журнал и ссылка на игрока логически
// синглтоны; системы выполняются строго последовательно, поэтому
// блокировки не нужны. Каждая система заранее знает, что она читает,
// а что мутирует.
type Context struct {
	World     *ecs.World
	Map       *domain.GameMap
	RNG       *rand.Rand
	Log       *domain.GameLog
	Player    ecs.Entity
	PlayerPos *domain.Position
	Particles *ParticleBuilder

	// Текущее состояние автомата; системы с фазовой защитой (ИИ, голод)
	// читают его и ничего не делают в чужую фазу.
	State domain.RunState

	// Запросы переходов, выставляемые системами посреди тика.
	// Планировщик разбирает их после прогона конвейера.
	Requests Requests
}

// Requests - побочные запросы систем к планировщику.
type Requests struct {
	MagicMapReveal bool
	GameOver       bool
}

// Reset сбрасывает запросы перед прогоном конвейера.
func (r *Requests) Reset() {
	r.MagicMapReveal = false
	r.GameOver = false
}

// ecsGet - локальное сокращение для типизированного доступа к компонентам.
func ecsGet[T any](ctx *Context, e ecs.Entity, id ecs.ComponentID) (*T, bool) {
	return ecs.Get[T](ctx.World, e, id)
}
