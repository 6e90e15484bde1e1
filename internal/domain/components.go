package domain

import (
	"roguie-server/internal/ecs"
)

// Идентификаторы типов компонентов.
// ВНИМАНИЕ: порядок закреплен форматом сейва (storage пишет и читает
// компоненты строго в этом порядке). Новые типы добавлять только в конец.
const (
	CPosition ecs.ComponentID = iota
	CRenderable
	CPlayer
	CViewshed
	CMonsterAI
	CName
	CBlocksTile
	CCombatStats
	CSufferDamage
	CWantsToMelee
	CItem
	CConsumable
	CRanged
	CInflictsDamage
	CAreaOfEffect
	CConfusion
	CProvidesHealing
	CInBackpack
	CWantsToPickupItem
	CWantsToUseItem
	CWantsToDropItem
	CMapSnapshot
	CEquippable
	CEquipped
	CMeleePowerBonus
	CDefenseBonus
	CWantsToRemoveItem
	CParticleLifetime
	CHungerClock
	CProvidesFood
	CMagicMapper
	CHidden
	CEntryTrigger
	CEntityMoved
	CSingleActivation
	CRevealChance
	CPeriodicHiding

	ComponentCount
)

// Position - координаты на сетке карты.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Renderable - данные отображения для клиента.
// RenderOrder задает порядок отрисовки: меньше - поверх (игрок = 0).
type Renderable struct {
	Glyph       string `json:"glyph"`
	FG          string `json:"fg"`
	BG          string `json:"bg"`
	RenderOrder int    `json:"renderOrder"`
}

// Player - маркер игрока. Ровно одна живая сущность несет его.
type Player struct{}

// Viewshed - поле зрения сущности.
// VisibleTiles - кэш, валиден только пока Dirty == false.
// Любое изменение позиции обязано выставить Dirty.
type Viewshed struct {
	VisibleTiles map[int]bool `json:"-"`
	Range        int          `json:"range"`
	Dirty        bool         `json:"-"`
}

// MonsterAI - мозги монстра. TargetPoint - последняя известная позиция
// игрока; однажды запомнив её, монстр не забывает цель никогда.
type MonsterAI struct {
	TargetPoint *Position `json:"targetPoint,omitempty"`
}

// Name - отображаемое имя.
type Name struct {
	Name string `json:"name"`
}

// BlocksTile - сущность занимает клетку и блокирует проход.
type BlocksTile struct{}

// CombatStats - боевые характеристики. HP <= 0 означает смерть
// (сущность снимается подметанием мертвых в конце тика).
type CombatStats struct {
	MaxHP   int `json:"maxHp"`
	HP      int `json:"hp"`
	Defense int `json:"defense"`
	Power   int `json:"power"`
}

// SufferDamage - накопитель еще не примененного урона.
// Осушается в HP ровно один раз за тик, затем компонент снимается.
type SufferDamage struct {
	Amounts []int `json:"amounts"`
}

// AddSufferDamage дописывает урон в накопитель жертвы (создает при нужде).
// Вызывающий обязан проверить, что жертва жива.
func AddSufferDamage(w *ecs.World, victim ecs.Entity, amount int) {
	if dmg, ok := ecs.Get[SufferDamage](w, victim, CSufferDamage); ok {
		dmg.Amounts = append(dmg.Amounts, amount)
		return
	}
	w.Add(victim, CSufferDamage, &SufferDamage{Amounts: []int{amount}})
}

// --- Компоненты-намерения. Живут не дольше одного тика:
// создаются вводом/ИИ, потребляются и снимаются своей системой. ---

type WantsToMelee struct {
	Target ecs.Entity `json:"target"`
}

type WantsToPickupItem struct {
	CollectedBy ecs.Entity `json:"collectedBy"`
	Item        ecs.Entity `json:"item"`
}

type WantsToUseItem struct {
	Item   ecs.Entity `json:"item"`
	Target *Position  `json:"target,omitempty"`
}

type WantsToDropItem struct {
	Item ecs.Entity `json:"item"`
}

type WantsToRemoveItem struct {
	Item ecs.Entity `json:"item"`
}

// --- Предметы ---

type Item struct{}

type Consumable struct{}

type ProvidesHealing struct {
	HealAmount int `json:"healAmount"`
}

type Ranged struct {
	Range int `json:"range"`
}

type InflictsDamage struct {
	Damage int `json:"damage"`
}

type AreaOfEffect struct {
	Radius int `json:"radius"`
}

type Confusion struct {
	Turns int `json:"turns"`
}

// EquipmentSlot - слот экипировки.
type EquipmentSlot string

const (
	SlotMelee  EquipmentSlot = "melee"
	SlotShield EquipmentSlot = "shield"
)

type Equippable struct {
	Slot EquipmentSlot `json:"slot"`
}

type Equipped struct {
	Owner ecs.Entity    `json:"owner"`
	Slot  EquipmentSlot `json:"slot"`
}

type MeleePowerBonus struct {
	Power int `json:"power"`
}

type DefenseBonus struct {
	Defense int `json:"defense"`
}

type InBackpack struct {
	Owner ecs.Entity `json:"owner"`
}

type ProvidesFood struct{}

type MagicMapper struct{}

// --- Ловушки ---

type EntryTrigger struct{}

// SingleActivation - ловушка исчезает после первого срабатывания.
type SingleActivation struct{}

// Hidden - сущность скрыта и не попадает в список отрисовки.
type Hidden struct{}

// RevealChance - шанс обнаружения скрытой сущности: 1 из Chance
// за каждый пересчет поля зрения игрока, в котором она видна.
type RevealChance struct {
	Chance int `json:"chance"`
}

// PeriodicHiding - ловушка циклически чередует скрытое и взведенное
// состояние: счетчик Offset крутится по модулю Period каждый тик.
type PeriodicHiding struct {
	Period int `json:"period"`
	Offset int `json:"offset"`
}

// EntityMoved - транзитный маркер "сущность сдвинулась в этом тике".
// Снимается системой триггеров.
type EntityMoved struct{}

// --- Мета ---

// HungerState - стадия голода.
type HungerState string

const (
	HungerWellFed  HungerState = "WELL_FED"
	HungerNormal   HungerState = "NORMAL"
	HungerHungry   HungerState = "HUNGRY"
	HungerStarving HungerState = "STARVING"
)

// HungerClock - часы голода игрока. Duration тикает вниз на ходу игрока;
// на нуле состояние ухудшается, Starving наносит урон каждый ход.
type HungerClock struct {
	State    HungerState `json:"state"`
	Duration int         `json:"duration"`
}

// ParticleLifetime - эфемерная сущность визуального эффекта.
type ParticleLifetime struct {
	RemainingMs float64 `json:"remainingMs"`
}

// MapSnapshot - синтетический компонент: полная копия карты внутри
// одной сущности. Существует только на время сериализации сейва.
type MapSnapshot struct {
	Map *GameMap `json:"map"`
}
