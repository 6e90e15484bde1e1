package systems

import (
	"fmt"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

// RunItemPickup обрабатывает намерения поднять предмет:
// предмет теряет позицию и отправляется в рюкзак собирателя.
func RunItemPickup(ctx *Context) {
	for _, e := range ctx.World.Join(domain.CWantsToPickupItem) {
		intent, _ := ecsGet[domain.WantsToPickupItem](ctx, e, domain.CWantsToPickupItem)

		ctx.World.Remove(intent.Item, domain.CPosition)
		ctx.World.Add(intent.Item, domain.CInBackpack, &domain.InBackpack{Owner: intent.CollectedBy})

		if intent.CollectedBy == ctx.Player {
			if name, ok := ecsGet[domain.Name](ctx, intent.Item, domain.CName); ok {
				ctx.Log.Append(fmt.Sprintf("Вы подбираете: %s.", name.Name))
			}
		}

		ctx.World.Remove(e, domain.CWantsToPickupItem)
	}
}

// RunItemUse применяет предметы: лечение, еду, свитки урона и
// замешательства, магическую карту, экипировку. Расходники после
// применения уничтожаются (отложенно, на коммите тика).
func RunItemUse(ctx *Context) {
	for _, user := range ctx.World.Join(domain.CWantsToUseItem) {
		intent, _ := ecsGet[domain.WantsToUseItem](ctx, user, domain.CWantsToUseItem)
		item := intent.Item
		used := false

		itemName := ""
		if n, ok := ecsGet[domain.Name](ctx, item, domain.CName); ok {
			itemName = n.Name
		}

		targets := useTargets(ctx, user, intent)

		// Магическая карта: запрос планировщику, раскрытие идет построчно.
		if ctx.World.Has(item, domain.CMagicMapper) {
			ctx.Requests.MagicMapReveal = true
			ctx.Log.Append("Карта проясняется в вашей голове...")
			used = true
		}

		// Еда: сбрасывает часы голода.
		if ctx.World.Has(item, domain.CProvidesFood) {
			if clock, ok := ecsGet[domain.HungerClock](ctx, user, domain.CHungerClock); ok {
				clock.State = domain.HungerWellFed
				clock.Duration = 20
			}
			ctx.Log.Append(fmt.Sprintf("Вы съедаете: %s.", itemName))
			used = true
		}

		// Лечение.
		if healing, ok := ecsGet[domain.ProvidesHealing](ctx, item, domain.CProvidesHealing); ok {
			for _, target := range targets {
				stats, ok := ecsGet[domain.CombatStats](ctx, target, domain.CCombatStats)
				if !ok {
					continue
				}
				stats.HP += healing.HealAmount
				if stats.HP > stats.MaxHP {
					stats.HP = stats.MaxHP
				}
				if target == ctx.Player {
					ctx.Log.Append(fmt.Sprintf("%s восстанавливает %d HP.", itemName, healing.HealAmount))
				}
			}
			used = true
		}

		// Урон по области/цели.
		if damage, ok := ecsGet[domain.InflictsDamage](ctx, item, domain.CInflictsDamage); ok {
			for _, target := range targets {
				if target == user {
					continue
				}
				if !ctx.World.Has(target, domain.CCombatStats) {
					continue
				}
				domain.AddSufferDamage(ctx.World, target, damage.Damage)
				if name, ok := ecsGet[domain.Name](ctx, target, domain.CName); ok {
					ctx.Log.Append(fmt.Sprintf("%s поражает %s: %d урона.", itemName, name.Name, damage.Damage))
				}
				if pos, ok := ecsGet[domain.Position](ctx, target, domain.CPosition); ok {
					ctx.Particles.Request(pos.X, pos.Y, "*", "#FF0000", "#000000", 200.0)
				}
			}
			used = true
		}

		// Замешательство.
		if confusion, ok := ecsGet[domain.Confusion](ctx, item, domain.CConfusion); ok {
			for _, target := range targets {
				if target == user {
					continue
				}
				if !ctx.World.Has(target, domain.CMonsterAI) {
					continue
				}
				ctx.World.Add(target, domain.CConfusion, &domain.Confusion{Turns: confusion.Turns})
				if name, ok := ecsGet[domain.Name](ctx, target, domain.CName); ok {
					ctx.Log.Append(fmt.Sprintf("%s смущает %s!", itemName, name.Name))
				}
				if pos, ok := ecsGet[domain.Position](ctx, target, domain.CPosition); ok {
					ctx.Particles.Request(pos.X, pos.Y, "?", "#FF00FF", "#000000", 200.0)
				}
			}
			used = true
		}

		// Экипировка: надеваем, вытесняя предыдущий предмет слота в рюкзак.
		if equippable, ok := ecsGet[domain.Equippable](ctx, item, domain.CEquippable); ok {
			for _, other := range ctx.World.Join(domain.CEquipped) {
				equipped, _ := ecsGet[domain.Equipped](ctx, other, domain.CEquipped)
				if equipped.Owner != user || equipped.Slot != equippable.Slot {
					continue
				}
				ctx.World.Remove(other, domain.CEquipped)
				ctx.World.Add(other, domain.CInBackpack, &domain.InBackpack{Owner: user})
				if name, ok := ecsGet[domain.Name](ctx, other, domain.CName); ok && user == ctx.Player {
					ctx.Log.Append(fmt.Sprintf("Вы снимаете: %s.", name.Name))
				}
			}
			ctx.World.Remove(item, domain.CInBackpack)
			ctx.World.Add(item, domain.CEquipped, &domain.Equipped{Owner: user, Slot: equippable.Slot})
			if user == ctx.Player {
				ctx.Log.Append(fmt.Sprintf("Вы экипируете: %s.", itemName))
			}
			used = true
		}

		if !used {
			ctx.Log.Append(fmt.Sprintf("Непонятно, как использовать: %s.", itemName))
		}

		if used && ctx.World.Has(item, domain.CConsumable) {
			ctx.World.DestroyDeferred(item)
		}

		ctx.World.Remove(user, domain.CWantsToUseItem)
	}
}

// useTargets определяет жертв применения предмета: сам пользователь,
// содержимое клетки-цели или, при AreaOfEffect, всех в зоне взрыва
// (зона считается полем зрения из точки-цели радиусом Radius).
func useTargets(ctx *Context, user ecs.Entity, intent *domain.WantsToUseItem) []ecs.Entity {
	if intent.Target == nil {
		return []ecs.Entity{user}
	}

	var targets []ecs.Entity
	if aoe, ok := ecsGet[domain.AreaOfEffect](ctx, intent.Item, domain.CAreaOfEffect); ok {
		blast := computeVisibleTiles(ctx.Map, *intent.Target, aoe.Radius)
		for idx := range blast {
			targets = append(targets, ctx.Map.TileContent[idx]...)
		}
		return targets
	}

	idx := ctx.Map.Idx(intent.Target.X, intent.Target.Y)
	targets = append(targets, ctx.Map.TileContent[idx]...)
	return targets
}

// RunItemDrop кладет предмет из рюкзака под ноги владельцу.
func RunItemDrop(ctx *Context) {
	for _, e := range ctx.World.Join(domain.CWantsToDropItem, domain.CPosition) {
		intent, _ := ecsGet[domain.WantsToDropItem](ctx, e, domain.CWantsToDropItem)
		pos, _ := ecsGet[domain.Position](ctx, e, domain.CPosition)

		ctx.World.Add(intent.Item, domain.CPosition, &domain.Position{X: pos.X, Y: pos.Y})
		ctx.World.Remove(intent.Item, domain.CInBackpack)

		if e == ctx.Player {
			if name, ok := ecsGet[domain.Name](ctx, intent.Item, domain.CName); ok {
				ctx.Log.Append(fmt.Sprintf("Вы бросаете: %s.", name.Name))
			}
		}

		ctx.World.Remove(e, domain.CWantsToDropItem)
	}
}

// RunItemRemove снимает экипированный предмет обратно в рюкзак.
func RunItemRemove(ctx *Context) {
	for _, e := range ctx.World.Join(domain.CWantsToRemoveItem) {
		intent, _ := ecsGet[domain.WantsToRemoveItem](ctx, e, domain.CWantsToRemoveItem)

		ctx.World.Remove(intent.Item, domain.CEquipped)
		ctx.World.Add(intent.Item, domain.CInBackpack, &domain.InBackpack{Owner: e})

		if e == ctx.Player {
			if name, ok := ecsGet[domain.Name](ctx, intent.Item, domain.CName); ok {
				ctx.Log.Append(fmt.Sprintf("Вы снимаете: %s.", name.Name))
			}
		}

		ctx.World.Remove(e, domain.CWantsToRemoveItem)
	}
}
