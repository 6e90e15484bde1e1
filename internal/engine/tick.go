package engine

import (
	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/internal/infrastructure/storage"
	"roguie-server/internal/systems"
	"roguie-server/pkg/logger"
)

// Tick продвигает машину состояний на один шаг. elapsedMs - время с
// прошлого тика, оно гонит проигрыватель генерации и жизнь частиц.
func (g *Game) Tick(elapsedMs float64) {
	g.ctx.State = g.state
	if g.ctx.Map != nil {
		systems.CullDeadParticles(g.ctx, elapsedMs)
	}

	switch g.state {
	case domain.StatePreRun:
		g.runPipeline()
		g.state = domain.StateAwaitingInput

	case domain.StatePlayerTurn:
		g.runPipeline()
		switch {
		case g.ctx.Requests.GameOver:
			g.finishGame()
		case g.ctx.Requests.MagicMapReveal:
			g.ctx.Requests.MagicMapReveal = false
			g.magicMapRow = 0
			g.state = domain.StateMagicMapReveal
		default:
			g.state = domain.StateMonsterTurn
		}

	case domain.StateMonsterTurn:
		g.runPipeline()
		if g.ctx.Requests.GameOver {
			g.finishGame()
		} else {
			g.state = domain.StateAwaitingInput
		}

	case domain.StateSaveGame:
		if err := storage.Save(g.world, g.ctx.Map, g.savePath); err != nil {
			logger.WithComponent("engine").WithField("error", err).Error("Save failed.")
			g.ctx.Log.Append("Не удалось сохранить игру.")
			g.state = domain.StateAwaitingInput
			return
		}
		g.ctx.Log.Append("Игра сохранена.")
		g.state = domain.StateMainMenu

	case domain.StateNextLevel:
		g.descendLevel()
		g.enterMapgenPlayback(domain.StatePreRun)

	case domain.StateMagicMapReveal:
		// Один ряд карты за тик, сверху вниз.
		for x := 0; x < g.ctx.Map.Width; x++ {
			g.ctx.Map.Revealed[g.ctx.Map.Idx(x, g.magicMapRow)] = true
		}
		g.magicMapRow++
		if g.magicMapRow >= g.ctx.Map.Height {
			g.state = domain.StateMonsterTurn
		}

	case domain.StateMapGeneration:
		g.mapgenTimer += elapsedMs
		if g.mapgenTimer < mapgenFrameMs {
			return
		}
		g.mapgenTimer -= mapgenFrameMs
		g.mapgenIndex++
		if g.mapgenIndex >= len(g.mapgenHistory) {
			g.state = g.nextState
		}
	}
}

// runPipeline прогоняет конвейер систем в закрепленном порядке и
// завершает тик коммитом отложенных удалений.
func (g *Game) runPipeline() {
	ctx := g.ctx
	ctx.State = g.state

	systems.RunVisibility(ctx)
	systems.RunMonsterAI(ctx)
	systems.RunTriggers(ctx)
	systems.RunPeriodicHiding(ctx)
	systems.RunMapIndexing(ctx)
	systems.RunMeleeCombat(ctx)
	systems.RunDamage(ctx)
	systems.DeleteTheDead(ctx)
	systems.RunItemPickup(ctx)
	systems.RunItemUse(ctx)
	systems.RunItemDrop(ctx)
	systems.RunItemRemove(ctx)
	systems.RunHunger(ctx)
	systems.RunParticleSpawn(ctx)

	g.world.Commit()
}

func (g *Game) finishGame() {
	g.ctx.Requests.Reset()
	g.state = domain.StateGameOver
}

// descendLevel уводит игрока на следующий уровень: все, кроме него и
// его вещей, удаляется, строится свежая карта, игрок подлечивается до
// половины максимума.
func (g *Game) descendLevel() {
	player := g.ctx.Player

	for _, e := range g.world.Entities() {
		if e == player {
			continue
		}
		if backpack, ok := ecs.Get[domain.InBackpack](g.world, e, domain.CInBackpack); ok && backpack.Owner == player {
			continue
		}
		if equipped, ok := ecs.Get[domain.Equipped](g.world, e, domain.CEquipped); ok && equipped.Owner == player {
			continue
		}
		g.world.Destroy(e)
	}

	g.generateLevel(g.ctx.Map.Depth + 1)

	g.ctx.Log.Append("Вы спускаетесь на следующий уровень и переводите дух.")
	if stats, ok := ecs.Get[domain.CombatStats](g.world, player, domain.CCombatStats); ok {
		if half := stats.MaxHP / 2; stats.HP < half {
			stats.HP = half
		}
	}
}
