package systems

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/pkg/logger"
)

// RunMeleeCombat превращает намерения WantsToMelee в записи урона.
//
// Урон = max(0, (power атакующего + бонусы оружия) - (defense цели +
// бонусы щитов)). Бонусы собираются со всех предметов, экипированных
// соответствующей стороной. Нулевой урон дает сообщение "без эффекта".
// Все намерения снимаются после прохода независимо от исхода.
func RunMeleeCombat(ctx *Context) {
	combatLogger := logger.WithComponent("combat_system")

	attackers := ctx.World.Join(domain.CWantsToMelee, domain.CName, domain.CCombatStats)
	for _, attacker := range attackers {
		stats, _ := ecsGet[domain.CombatStats](ctx, attacker, domain.CCombatStats)
		if stats.HP <= 0 {
			continue // Атакующий должен быть жив
		}

		intent, _ := ecsGet[domain.WantsToMelee](ctx, attacker, domain.CWantsToMelee)
		name, _ := ecsGet[domain.Name](ctx, attacker, domain.CName)

		targetStats, ok := ecsGet[domain.CombatStats](ctx, intent.Target, domain.CCombatStats)
		if !ok || targetStats.HP <= 0 {
			continue // Цель мертва или бесплотна
		}
		targetName, ok := ecsGet[domain.Name](ctx, intent.Target, domain.CName)
		if !ok {
			continue
		}

		offensiveBonus := equipmentPowerBonus(ctx, attacker)
		defensiveBonus := equipmentDefenseBonus(ctx, intent.Target)

		damage := (stats.Power + offensiveBonus) - (targetStats.Defense + defensiveBonus)
		if damage < 0 {
			damage = 0
		}

		combatLogger.WithFields(logrus.Fields{
			"attacker":        name.Name,
			"target":          targetName.Name,
			"offensive_bonus": offensiveBonus,
			"defensive_bonus": defensiveBonus,
			"damage":          damage,
		}).Debug("Attack resolved.")

		if damage == 0 {
			ctx.Log.Append(fmt.Sprintf("%s не может ранить %s.", name.Name, targetName.Name))
		} else {
			ctx.Log.Append(fmt.Sprintf("%s бьет %s: %d урона.", name.Name, targetName.Name, damage))
			domain.AddSufferDamage(ctx.World, intent.Target, damage)
		}

		if targetPos, ok := ecsGet[domain.Position](ctx, intent.Target, domain.CPosition); ok {
			ctx.Particles.Request(targetPos.X, targetPos.Y, "‼", "#FFA500", "#000000", 200.0)
		}
	}

	// Снимаем ВСЕ намерения, в том числе отбракованные проверками выше.
	for _, e := range ctx.World.Join(domain.CWantsToMelee) {
		ctx.World.Remove(e, domain.CWantsToMelee)
	}
}

// equipmentPowerBonus суммирует MeleePowerBonus по экипировке владельца.
func equipmentPowerBonus(ctx *Context, owner ecs.Entity) int {
	total := 0
	for _, item := range ctx.World.Join(domain.CEquipped, domain.CMeleePowerBonus) {
		equipped, _ := ecsGet[domain.Equipped](ctx, item, domain.CEquipped)
		if equipped.Owner != owner {
			continue
		}
		bonus, _ := ecsGet[domain.MeleePowerBonus](ctx, item, domain.CMeleePowerBonus)
		total += bonus.Power
	}
	return total
}

// equipmentDefenseBonus суммирует DefenseBonus по экипировке владельца.
func equipmentDefenseBonus(ctx *Context, owner ecs.Entity) int {
	total := 0
	for _, item := range ctx.World.Join(domain.CEquipped, domain.CDefenseBonus) {
		equipped, _ := ecsGet[domain.Equipped](ctx, item, domain.CEquipped)
		if equipped.Owner != owner {
			continue
		}
		bonus, _ := ecsGet[domain.DefenseBonus](ctx, item, domain.CDefenseBonus)
		total += bonus.Defense
	}
	return total
}
