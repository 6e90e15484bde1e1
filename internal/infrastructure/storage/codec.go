// Package storage - кодек сохранений: мир целиком уходит в JSON и
// восстанавливается из него. Формат: массив покомпонентных блоков в
// закрепленном порядке; сущности в блоках помечены стабильными
// маркерами, ссылки между сущностями переписываются при загрузке.
package storage

import (
	"os"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

// saveVersion страхует от чтения сохранений чужого формата.
const saveVersion = 1

// DefaultPath возвращает путь файла сохранения из SAVE_PATH.
func DefaultPath() string {
	if path := os.Getenv("SAVE_PATH"); path != "" {
		return path
	}
	return "./savegame.json"
}

// componentCodec привязывает идентификатор компонента к имени блока в
// файле и фабрике значения для декодирования.
type componentCodec struct {
	id   ecs.ComponentID
	name string
	new  func() any
}

// Порядок блоков закреплен и совпадает с порядком идентификаторов
// компонентов. Менять его - значит менять формат файла.
var codecs = []componentCodec{
	{domain.CPosition, "position", func() any { return new(domain.Position) }},
	{domain.CRenderable, "renderable", func() any { return new(domain.Renderable) }},
	{domain.CPlayer, "player", func() any { return new(domain.Player) }},
	{domain.CViewshed, "viewshed", func() any { return new(domain.Viewshed) }},
	{domain.CMonsterAI, "monster_ai", func() any { return new(domain.MonsterAI) }},
	{domain.CName, "name", func() any { return new(domain.Name) }},
	{domain.CBlocksTile, "blocks_tile", func() any { return new(domain.BlocksTile) }},
	{domain.CCombatStats, "combat_stats", func() any { return new(domain.CombatStats) }},
	{domain.CSufferDamage, "suffer_damage", func() any { return new(domain.SufferDamage) }},
	{domain.CWantsToMelee, "wants_to_melee", func() any { return new(domain.WantsToMelee) }},
	{domain.CItem, "item", func() any { return new(domain.Item) }},
	{domain.CConsumable, "consumable", func() any { return new(domain.Consumable) }},
	{domain.CRanged, "ranged", func() any { return new(domain.Ranged) }},
	{domain.CInflictsDamage, "inflicts_damage", func() any { return new(domain.InflictsDamage) }},
	{domain.CAreaOfEffect, "area_of_effect", func() any { return new(domain.AreaOfEffect) }},
	{domain.CConfusion, "confusion", func() any { return new(domain.Confusion) }},
	{domain.CProvidesHealing, "provides_healing", func() any { return new(domain.ProvidesHealing) }},
	{domain.CInBackpack, "in_backpack", func() any { return new(domain.InBackpack) }},
	{domain.CWantsToPickupItem, "wants_to_pickup_item", func() any { return new(domain.WantsToPickupItem) }},
	{domain.CWantsToUseItem, "wants_to_use_item", func() any { return new(domain.WantsToUseItem) }},
	{domain.CWantsToDropItem, "wants_to_drop_item", func() any { return new(domain.WantsToDropItem) }},
	{domain.CMapSnapshot, "map_snapshot", func() any { return new(domain.MapSnapshot) }},
	{domain.CEquippable, "equippable", func() any { return new(domain.Equippable) }},
	{domain.CEquipped, "equipped", func() any { return new(domain.Equipped) }},
	{domain.CMeleePowerBonus, "melee_power_bonus", func() any { return new(domain.MeleePowerBonus) }},
	{domain.CDefenseBonus, "defense_bonus", func() any { return new(domain.DefenseBonus) }},
	{domain.CWantsToRemoveItem, "wants_to_remove_item", func() any { return new(domain.WantsToRemoveItem) }},
	{domain.CHungerClock, "hunger_clock", func() any { return new(domain.HungerClock) }},
	{domain.CProvidesFood, "provides_food", func() any { return new(domain.ProvidesFood) }},
	{domain.CMagicMapper, "magic_mapper", func() any { return new(domain.MagicMapper) }},
	{domain.CHidden, "hidden", func() any { return new(domain.Hidden) }},
	{domain.CEntryTrigger, "entry_trigger", func() any { return new(domain.EntryTrigger) }},
	{domain.CEntityMoved, "entity_moved", func() any { return new(domain.EntityMoved) }},
	{domain.CSingleActivation, "single_activation", func() any { return new(domain.SingleActivation) }},
	{domain.CRevealChance, "reveal_chance", func() any { return new(domain.RevealChance) }},
	{domain.CPeriodicHiding, "periodic_hiding", func() any { return new(domain.PeriodicHiding) }},
}
