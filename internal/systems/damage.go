package systems

import (
	"fmt"

	"roguie-server/internal/domain"
	"roguie-server/pkg/logger"
)

// RunDamage осушает накопители SufferDamage в HP.
// Каждый накопитель применяется ровно один раз за тик и снимается;
// HP может транзитно уйти в минус - решает подметание мертвых.
// Клетка пострадавшего получает пятно крови.
func RunDamage(ctx *Context) {
	for _, e := range ctx.World.Join(domain.CCombatStats, domain.CSufferDamage) {
		stats, _ := ecsGet[domain.CombatStats](ctx, e, domain.CCombatStats)
		dmg, _ := ecsGet[domain.SufferDamage](ctx, e, domain.CSufferDamage)

		for _, amount := range dmg.Amounts {
			stats.HP -= amount
		}

		if pos, ok := ecsGet[domain.Position](ctx, e, domain.CPosition); ok {
			ctx.Map.Bloodstains[ctx.Map.Idx(pos.X, pos.Y)] = true
		}

		ctx.World.Remove(e, domain.CSufferDamage)
	}
}

// DeleteTheDead убирает из мира всех, у кого HP <= 0.
// Работает всегда, в конце каждого тика, независимо от набора
// отработавших систем. Удаление немедленное: к следующему тику мертвых
// в хранилище быть не должно. Смерть игрока - запрос GameOver, самого
// игрока не удаляем (его сущность нужна экрану поражения).
func DeleteTheDead(ctx *Context) {
	deathLogger := logger.WithComponent("damage_system")

	// Join возвращает срез-снимок, поэтому удалять внутри цикла безопасно.
	for _, e := range ctx.World.Join(domain.CCombatStats) {
		stats, _ := ecsGet[domain.CombatStats](ctx, e, domain.CCombatStats)
		if stats.HP > 0 {
			continue
		}

		if ctx.World.Has(e, domain.CPlayer) {
			if !ctx.Requests.GameOver {
				ctx.Log.Append("Вы погибли.")
				ctx.Requests.GameOver = true
			}
			continue
		}

		name := "безымянное существо"
		if n, ok := ecsGet[domain.Name](ctx, e, domain.CName); ok {
			name = n.Name
		}
		ctx.Log.Append(fmt.Sprintf("%s погибает.", name))
		deathLogger.WithField("entity", e.String()).Debug("Entity died.")

		ctx.World.Destroy(e)
	}
}
