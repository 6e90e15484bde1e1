package dungeon

import (
	"math/rand"
	"sort"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

// Потолок броска на количество спавнов в комнате/области.
const maxMonstersPerRoom = 4

// spawnTable - взвешенная таблица спавна. Нулевые и отрицательные
// веса не попадают в таблицу вовсе.
type spawnTable struct {
	entries []spawnEntry
	total   int
}

type spawnEntry struct {
	name   string
	weight int
}

func (t *spawnTable) add(name string, weight int) *spawnTable {
	if weight > 0 {
		t.entries = append(t.entries, spawnEntry{name: name, weight: weight})
		t.total += weight
	}
	return t
}

func (t *spawnTable) roll(rng *rand.Rand) string {
	if t.total == 0 {
		return ""
	}
	roll := rng.Intn(t.total)
	for _, e := range t.entries {
		if roll < e.weight {
			return e.name
		}
		roll -= e.weight
	}
	return ""
}

// roomTable - таблица спавна уровня: чем глубже, тем чаще орки,
// огненные шары и тяжелое снаряжение.
func roomTable(depth int) *spawnTable {
	t := &spawnTable{}
	return t.
		add("goblin", 10).
		add("orc", 1+depth).
		add("health_potion", 7).
		add("fireball_scroll", 2+depth).
		add("confusion_scroll", 2+depth).
		add("magic_missile_scroll", 4).
		add("dagger", 3).
		add("shield", 3).
		add("longsword", depth-1).
		add("tower_shield", depth-1).
		add("rations", 10).
		add("magic_mapping_scroll", 2).
		add("bear_trap", 3).
		add("periodic_trap", 4)
}

// fillRoom засевает внутренность комнаты по таблице спавна.
func fillRoom(w *ecs.World, m *domain.GameMap, room domain.Rect, depth int, rng *rand.Rand) {
	var targets []int
	for y := room.Y1 + 1; y < room.Y2; y++ {
		for x := room.X1 + 1; x < room.X2; x++ {
			idx := m.Idx(x, y)
			if m.Tiles[idx] == domain.TileFloor {
				targets = append(targets, idx)
			}
		}
	}
	fillRegion(w, m, targets, depth, rng)
}

// fillRegion засевает произвольный набор клеток пола.
// Количество спавнов: min(размер области, 1d7 + глубина - 4).
func fillRegion(w *ecs.World, m *domain.GameMap, area []int, depth int, rng *rand.Rand) {
	table := roomTable(depth)
	numSpawns := rng.Intn(maxMonstersPerRoom+3) + 1 + (depth - 1) - 3
	if numSpawns > len(area) {
		numSpawns = len(area)
	}
	if numSpawns <= 0 {
		return
	}

	candidates := make([]int, len(area))
	copy(candidates, area)

	spawnPoints := make(map[int]string)
	for i := 0; i < numSpawns; i++ {
		pick := 0
		if len(candidates) > 1 {
			pick = rng.Intn(len(candidates))
		}
		spawnPoints[candidates[pick]] = table.roll(rng)
		candidates = append(candidates[:pick], candidates[pick+1:]...)
	}

	// Обход по возрастанию индекса ради воспроизводимости сессии.
	indices := make([]int, 0, len(spawnPoints))
	for idx := range spawnPoints {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		x, y := m.Coords(idx)
		spawnNamed(w, spawnPoints[idx], x, y, rng)
	}
}

func spawnNamed(w *ecs.World, name string, x, y int, rng *rand.Rand) {
	switch name {
	case "goblin":
		spawnMonster(w, x, y, "g", "Гоблин")
	case "orc":
		spawnMonster(w, x, y, "o", "Орк")
	case "health_potion":
		spawnHealthPotion(w, x, y)
	case "fireball_scroll":
		spawnFireballScroll(w, x, y)
	case "confusion_scroll":
		spawnConfusionScroll(w, x, y)
	case "magic_missile_scroll":
		spawnMagicMissileScroll(w, x, y)
	case "dagger":
		spawnDagger(w, x, y)
	case "shield":
		spawnShield(w, x, y)
	case "longsword":
		spawnLongsword(w, x, y)
	case "tower_shield":
		spawnTowerShield(w, x, y)
	case "rations":
		spawnRations(w, x, y)
	case "magic_mapping_scroll":
		spawnMagicMappingScroll(w, x, y)
	case "bear_trap":
		spawnBearTrap(w, x, y)
	case "periodic_trap":
		spawnPeriodicTrap(w, x, y, rng)
	}
}

// SpawnPlayer создает героя со стартовыми характеристиками и часами
// голода на отметке "сытый".
func SpawnPlayer(w *ecs.World, x, y int) ecs.Entity {
	e := w.Create()
	w.Add(e, domain.CPosition, &domain.Position{X: x, Y: y})
	w.Add(e, domain.CRenderable, &domain.Renderable{Glyph: "@", FG: "#FFFF00", BG: "#000000", RenderOrder: 0})
	w.Add(e, domain.CPlayer, &domain.Player{})
	w.Add(e, domain.CViewshed, &domain.Viewshed{VisibleTiles: make(map[int]bool), Range: 8, Dirty: true})
	w.Add(e, domain.CName, &domain.Name{Name: "Герой"})
	w.Add(e, domain.CCombatStats, &domain.CombatStats{MaxHP: 30, HP: 30, Defense: 2, Power: 5})
	w.Add(e, domain.CHungerClock, &domain.HungerClock{State: domain.HungerWellFed, Duration: 20})
	return e
}

func spawnMonster(w *ecs.World, x, y int, glyph, name string) {
	e := w.Create()
	w.Add(e, domain.CPosition, &domain.Position{X: x, Y: y})
	w.Add(e, domain.CRenderable, &domain.Renderable{Glyph: glyph, FG: "#FF0000", BG: "#000000", RenderOrder: 1})
	w.Add(e, domain.CViewshed, &domain.Viewshed{VisibleTiles: make(map[int]bool), Range: 8, Dirty: true})
	w.Add(e, domain.CMonsterAI, &domain.MonsterAI{})
	w.Add(e, domain.CName, &domain.Name{Name: name})
	w.Add(e, domain.CBlocksTile, &domain.BlocksTile{})
	w.Add(e, domain.CCombatStats, &domain.CombatStats{MaxHP: 16, HP: 16, Defense: 1, Power: 4})
}

func spawnHealthPotion(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, "¡", "#FF00FF", "Зелье лечения")
	w.Add(e, domain.CConsumable, &domain.Consumable{})
	w.Add(e, domain.CProvidesHealing, &domain.ProvidesHealing{HealAmount: 8})
}

func spawnMagicMissileScroll(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, ")", "#00FFFF", "Свиток волшебной стрелы")
	w.Add(e, domain.CConsumable, &domain.Consumable{})
	w.Add(e, domain.CRanged, &domain.Ranged{Range: 6})
	w.Add(e, domain.CInflictsDamage, &domain.InflictsDamage{Damage: 8})
}

func spawnFireballScroll(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, ")", "#FFA500", "Свиток огненного шара")
	w.Add(e, domain.CConsumable, &domain.Consumable{})
	w.Add(e, domain.CRanged, &domain.Ranged{Range: 6})
	w.Add(e, domain.CInflictsDamage, &domain.InflictsDamage{Damage: 20})
	w.Add(e, domain.CAreaOfEffect, &domain.AreaOfEffect{Radius: 3})
}

func spawnConfusionScroll(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, ")", "#FFC0CB", "Свиток замешательства")
	w.Add(e, domain.CConsumable, &domain.Consumable{})
	w.Add(e, domain.CRanged, &domain.Ranged{Range: 6})
	w.Add(e, domain.CConfusion, &domain.Confusion{Turns: 4})
}

func spawnDagger(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, "/", "#00FFFF", "Кинжал")
	w.Add(e, domain.CEquippable, &domain.Equippable{Slot: domain.SlotMelee})
	w.Add(e, domain.CMeleePowerBonus, &domain.MeleePowerBonus{Power: 2})
}

func spawnLongsword(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, "/", "#FFFF00", "Длинный меч")
	w.Add(e, domain.CEquippable, &domain.Equippable{Slot: domain.SlotMelee})
	w.Add(e, domain.CMeleePowerBonus, &domain.MeleePowerBonus{Power: 4})
}

func spawnShield(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, "(", "#00FFFF", "Щит")
	w.Add(e, domain.CEquippable, &domain.Equippable{Slot: domain.SlotShield})
	w.Add(e, domain.CDefenseBonus, &domain.DefenseBonus{Defense: 1})
}

func spawnTowerShield(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, "(", "#FFFF00", "Башенный щит")
	w.Add(e, domain.CEquippable, &domain.Equippable{Slot: domain.SlotShield})
	w.Add(e, domain.CDefenseBonus, &domain.DefenseBonus{Defense: 3})
}

func spawnRations(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, "%", "#00FF00", "Паек")
	w.Add(e, domain.CConsumable, &domain.Consumable{})
	w.Add(e, domain.CProvidesFood, &domain.ProvidesFood{})
}

func spawnMagicMappingScroll(w *ecs.World, x, y int) {
	e := spawnItemBase(w, x, y, ")", "#00CDCD", "Свиток магической картографии")
	w.Add(e, domain.CConsumable, &domain.Consumable{})
	w.Add(e, domain.CMagicMapper, &domain.MagicMapper{})
}

func spawnBearTrap(w *ecs.World, x, y int) {
	e := w.Create()
	w.Add(e, domain.CPosition, &domain.Position{X: x, Y: y})
	w.Add(e, domain.CRenderable, &domain.Renderable{Glyph: "^", FG: "#FF0000", BG: "#000000", RenderOrder: 2})
	w.Add(e, domain.CName, &domain.Name{Name: "Медвежий капкан"})
	w.Add(e, domain.CHidden, &domain.Hidden{})
	w.Add(e, domain.CEntryTrigger, &domain.EntryTrigger{})
	w.Add(e, domain.CInflictsDamage, &domain.InflictsDamage{Damage: 6})
	w.Add(e, domain.CSingleActivation, &domain.SingleActivation{})
	w.Add(e, domain.CRevealChance, &domain.RevealChance{Chance: 36})
}

func spawnPeriodicTrap(w *ecs.World, x, y int, rng *rand.Rand) {
	e := w.Create()
	w.Add(e, domain.CPosition, &domain.Position{X: x, Y: y})
	w.Add(e, domain.CRenderable, &domain.Renderable{Glyph: "^", FG: "#F5F5DC", BG: "#000000", RenderOrder: 2})
	w.Add(e, domain.CName, &domain.Name{Name: "Пульсирующая ловушка"})
	w.Add(e, domain.CHidden, &domain.Hidden{})
	w.Add(e, domain.CEntryTrigger, &domain.EntryTrigger{})
	w.Add(e, domain.CInflictsDamage, &domain.InflictsDamage{Damage: 6})
	w.Add(e, domain.CSingleActivation, &domain.SingleActivation{})
	w.Add(e, domain.CPeriodicHiding, &domain.PeriodicHiding{Period: 4, Offset: rng.Intn(3) + 1})
}

func spawnItemBase(w *ecs.World, x, y int, glyph, fg, name string) ecs.Entity {
	e := w.Create()
	w.Add(e, domain.CPosition, &domain.Position{X: x, Y: y})
	w.Add(e, domain.CRenderable, &domain.Renderable{Glyph: glyph, FG: fg, BG: "#000000", RenderOrder: 2})
	w.Add(e, domain.CName, &domain.Name{Name: name})
	w.Add(e, domain.CItem, &domain.Item{})
	return e
}
