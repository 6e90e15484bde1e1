package systems

import (
	"roguie-server/internal/domain"
	"roguie-server/pkg/logger"
)

// RunMonsterAI решает действия монстров. Работает только в фазу хода
// монстров, в остальные - no-op.
//
// Оглушенный (Confusion) монстр тратит тик на счетчик и ничего не делает.
// Увидев игрока, монстр запоминает его позицию как цель и больше её не
// забывает: потеряв игрока из виду, он идет к последней известной точке.
func RunMonsterAI(ctx *Context) {
	if ctx.State != domain.StateMonsterTurn {
		return
	}

	aiLogger := logger.WithComponent("ai_system")

	playerIdx := ctx.Map.Idx(ctx.PlayerPos.X, ctx.PlayerPos.Y)

	for _, e := range ctx.World.Join(domain.CMonsterAI, domain.CViewshed, domain.CPosition) {
		pos, _ := ecsGet[domain.Position](ctx, e, domain.CPosition)

		// Оглушение: декремент счетчика, визуальный эффект, пропуск хода.
		if confused, ok := ecsGet[domain.Confusion](ctx, e, domain.CConfusion); ok {
			confused.Turns--
			if confused.Turns < 1 {
				ctx.World.Remove(e, domain.CConfusion)
			}
			ctx.Particles.Request(pos.X, pos.Y, "?", "#FF00FF", "#000000", 300.0)
			continue
		}

		viewshed, _ := ecsGet[domain.Viewshed](ctx, e, domain.CViewshed)
		ai, _ := ecsGet[domain.MonsterAI](ctx, e, domain.CMonsterAI)

		if viewshed.VisibleTiles[playerIdx] {
			pt := *ctx.PlayerPos
			ai.TargetPoint = &pt
		}

		if ai.TargetPoint == nil {
			continue
		}

		dist := pos.DistanceTo(*ai.TargetPoint)
		if dist < 1.5 {
			// В радиусе удара: намерение атаковать сущность игрока,
			// а не запомненную точку - игрок мог сдвинуться в этом тике.
			ctx.World.Add(e, domain.CWantsToMelee, &domain.WantsToMelee{Target: ctx.Player})
			continue
		}

		path := domain.AStar(ctx.Map, ctx.Map.Idx(pos.X, pos.Y), ctx.Map.Idx(ai.TargetPoint.X, ai.TargetPoint.Y))
		if len(path) > 1 {
			pos.X, pos.Y = ctx.Map.Coords(path[1])
			viewshed.Dirty = true
			ctx.World.Add(e, domain.CEntityMoved, &domain.EntityMoved{})
		} else {
			aiLogger.WithField("entity", e.String()).Debug("No path to target.")
		}
	}
}
