package systems

import (
	"roguie-server/internal/domain"
)

// RunHunger крутит часы голода игрока. Тикает только на ходу игрока:
// монстры не голодают. Цепочка состояний: сытый -> нормальный ->
// голодный -> истощенный; истощение наносит 1 урона каждый ход.
func RunHunger(ctx *Context) {
	if ctx.State != domain.StatePlayerTurn {
		return
	}

	for _, e := range ctx.World.Join(domain.CHungerClock) {
		if e != ctx.Player {
			continue
		}
		clock, _ := ecsGet[domain.HungerClock](ctx, e, domain.CHungerClock)

		clock.Duration--
		if clock.Duration > 0 && clock.State != domain.HungerStarving {
			continue
		}

		switch clock.State {
		case domain.HungerWellFed:
			clock.State = domain.HungerNormal
			clock.Duration = 200
			ctx.Log.Append("Вы больше не сыты.")
		case domain.HungerNormal:
			clock.State = domain.HungerHungry
			clock.Duration = 200
			ctx.Log.Append("Вы проголодались.")
		case domain.HungerHungry:
			clock.State = domain.HungerStarving
			clock.Duration = 200
			ctx.Log.Append("Вы истощены!")
		case domain.HungerStarving:
			ctx.Log.Append("Голод терзает вас: 1 урона.")
			domain.AddSufferDamage(ctx.World, e, 1)
		}
	}
}
