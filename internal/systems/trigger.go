package systems

import (
	"fmt"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

// RunTriggers обрабатывает вход сущностей на опасные клетки.
//
// Для каждой сдвинувшейся сущности осматриваются соседи по клетке через
// индекс содержимого. Сработавшая ловушка: пишет в журнал, наносит урон
// ДВИГАВШЕМУСЯ (не себе), при SingleActivation помечается на удаление
// после цикла (никогда посреди итерации) и безусловно перестает быть
// скрытой. Маркеры EntityMoved снимаются в конце прохода в любом случае.
func RunTriggers(ctx *Context) {
	var removeEntities []ecs.Entity

	for _, mover := range ctx.World.Join(domain.CEntityMoved, domain.CPosition) {
		pos, _ := ecsGet[domain.Position](ctx, mover, domain.CPosition)
		idx := ctx.Map.Idx(pos.X, pos.Y)

		for _, other := range ctx.Map.TileContent[idx] {
			if other == mover {
				continue // Сам себе не ловушка
			}
			if !ctx.World.Has(other, domain.CEntryTrigger) {
				continue
			}

			if name, ok := ecsGet[domain.Name](ctx, other, domain.CName); ok {
				ctx.Log.Append(fmt.Sprintf("%s срабатывает!", name.Name))
			}

			if damage, ok := ecsGet[domain.InflictsDamage](ctx, other, domain.CInflictsDamage); ok {
				ctx.Particles.Request(pos.X, pos.Y, "‼", "#FFA500", "#000000", 200.0)
				domain.AddSufferDamage(ctx.World, mover, damage.Damage)
			}

			if ctx.World.Has(other, domain.CSingleActivation) {
				removeEntities = append(removeEntities, other)
			}

			// Сработавшая ловушка больше не скрыта.
			ctx.World.Remove(other, domain.CHidden)
		}
	}

	for _, trap := range removeEntities {
		ctx.World.DestroyDeferred(trap)
	}

	for _, e := range ctx.World.Join(domain.CEntityMoved) {
		ctx.World.Remove(e, domain.CEntityMoved)
	}
}

// RunPeriodicHiding крутит счетчики периодических ловушек.
// Каждый тик Offset += 1 (mod Period); на нуле ловушка переключается
// между "скрытая и инертная" и "видимая и взведенная".
func RunPeriodicHiding(ctx *Context) {
	for _, e := range ctx.World.Join(domain.CPeriodicHiding) {
		hiding, _ := ecsGet[domain.PeriodicHiding](ctx, e, domain.CPeriodicHiding)
		hiding.Offset = (hiding.Offset + 1) % hiding.Period
		if hiding.Offset != 0 {
			continue
		}

		if ctx.World.Has(e, domain.CHidden) {
			ctx.World.Remove(e, domain.CHidden)
			ctx.World.Add(e, domain.CEntryTrigger, &domain.EntryTrigger{})
		} else {
			ctx.World.Remove(e, domain.CEntryTrigger)
			ctx.World.Add(e, domain.CHidden, &domain.Hidden{})
		}
	}
}
